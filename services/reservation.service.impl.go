package services

import (
	"context"
	"errors"
	"time"

	"booking-service/clients"
	"booking-service/data"
	"booking-service/domain"
	"booking-service/events"
	"booking-service/metrics"
	"booking-service/repository"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ReservationServiceImpl struct {
	repo         repository.ReservationStore
	availability clients.AvailabilityClient
	pricer       Pricer
	publisher    events.Publisher
	logger       *logrus.Logger
	tracer       trace.Tracer
}

func NewReservationServiceImpl(repo repository.ReservationStore, availability clients.AvailabilityClient,
	pricer Pricer, publisher events.Publisher, logger *logrus.Logger, tracer trace.Tracer) ReservationService {
	return &ReservationServiceImpl{
		repo:         repo,
		availability: availability,
		pricer:       pricer,
		publisher:    publisher,
		logger:       logger,
		tracer:       tracer,
	}
}

// CreateReservation persists the reservation as PENDING once the requested
// interval is clear, then consumes the ledger night by night. The per-night
// decrements run after the row is durable and are best-effort against
// infrastructure failures: such a night is logged and counted, never rolled
// back, and never fails the reservation, which stays PENDING for the host to
// reject or the guest to cancel. A night the ledger actively refuses is a
// conflict and is compensated (see consumeNights).
func (s *ReservationServiceImpl) CreateReservation(auth data.AuthContext, create *data.CreateReservation, ctx context.Context) (*data.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.CreateReservation")
	defer span.End()

	checkIn := data.NormalizeDate(create.CheckInDate)
	checkOut := data.NormalizeDate(create.CheckOutDate)
	if err := validateDateRange(checkIn, checkOut); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if create.GuestCount < 1 {
		return nil, domain.ValidationError{Message: "guest_count must be at least 1"}
	}

	nights := data.Nights(checkIn, checkOut)

	var records []*data.Availability
	result, err := s.availability.CheckAvailability(create.RoomID, checkIn, checkOut, create.GuestCount, ctx)
	if err != nil {
		// Availability service unreachable: degrade to scanning the room's
		// persisted reservations for an overlap instead of failing the
		// booking outright.
		s.logger.WithFields(logrus.Fields{
			"room_id": create.RoomID,
		}).Warn("Availability check failed, using overlap-scan fallback: ", err)
		metrics.FallbackScans.Inc()

		if err := s.scanForOverlap(create.RoomID, checkIn, checkOut, "", ctx); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	} else {
		if !result.Available {
			metrics.BookingConflicts.Inc()
			span.SetStatus(codes.Error, "room unavailable")
			return nil, domain.NewRoomUnavailable(create.RoomID)
		}
		records = result.AvailabilityData
	}

	totalAmount, currency := s.pricer.Price(records, len(nights), create.GuestCount)

	reservation := &data.Reservation{
		ReservationID:   gocql.TimeUUID(),
		CustomerID:      auth.UserID,
		HotelID:         create.HotelID,
		RoomID:          create.RoomID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		GuestCount:      create.GuestCount,
		Status:          data.ReservationPending,
		TotalAmount:     totalAmount,
		Currency:        currency,
		SpecialRequests: create.SpecialRequests,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Insert(reservation); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Consume the ledger after the row is durable. A night the ledger
	// refuses, because a concurrent booking took the last unit between our
	// check and this decrement or because the date has no declared
	// inventory, would make this reservation a double-booking; it is
	// rejected and the nights already taken are handed back. Any other
	// failure (availability service down, timeout) is swallowed: the
	// reservation is durably PENDING and the ledger is reconciled later.
	if conflictNight, conflict := s.consumeNights(reservation, nights, ctx); conflict {
		for _, night := range nights[:conflictNight] {
			if err := s.availability.RestoreAvailability(reservation.RoomID, night, 1, ctx); err != nil {
				s.logMutationFailure("restore", reservation, night, err)
			}
		}
		if err := s.repo.UpdateStatus(reservation.RoomID, reservation.ReservationID,
			data.ReservationRejected, "room no longer available"); err != nil {
			s.logger.WithFields(logrus.Fields{
				"reservation_id": reservation.ReservationID.String(),
			}).Error("Failed to reject conflicting reservation: ", err)
		}
		metrics.BookingConflicts.Inc()
		span.SetStatus(codes.Error, "room unavailable")
		return nil, domain.NewRoomUnavailable(create.RoomID)
	}

	metrics.ReservationsCreated.Inc()
	s.publish(data.ReservationCreatedEvent, reservation)

	return reservation, nil
}

func (s *ReservationServiceImpl) GetReservation(id string, ctx context.Context) (*data.Reservation, error) {
	_, span := s.tracer.Start(ctx, "ReservationService.GetReservation")
	defer span.End()

	reservationID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, domain.ValidationError{Message: "invalid reservation id"}
	}
	return s.repo.GetByID(reservationID)
}

func (s *ReservationServiceImpl) GetReservationsByCustomer(customerID string, ctx context.Context) (data.Reservations, error) {
	_, span := s.tracer.Start(ctx, "ReservationService.GetReservationsByCustomer")
	defer span.End()

	return s.repo.GetByCustomer(customerID)
}

func (s *ReservationServiceImpl) GetReservationsByRoom(roomID string, ctx context.Context) (data.Reservations, error) {
	_, span := s.tracer.Start(ctx, "ReservationService.GetReservationsByRoom")
	defer span.End()

	return s.repo.GetByRoom(roomID)
}

func (s *ReservationServiceImpl) ConfirmReservation(auth data.AuthContext, id string, ctx context.Context) (*data.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.ConfirmReservation")
	defer span.End()

	reservation, err := s.transition(id, data.ReservationConfirmed, "", span)
	if err != nil {
		return nil, err
	}
	s.publish(data.ReservationConfirmedEvent, reservation)
	return reservation, nil
}

func (s *ReservationServiceImpl) RejectReservation(auth data.AuthContext, id string, reason string, ctx context.Context) (*data.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.RejectReservation")
	defer span.End()

	reservation, err := s.transition(id, data.ReservationRejected, reason, span)
	if err != nil {
		return nil, err
	}
	s.restoreNights(reservation, ctx)
	s.publish(data.ReservationRejectedEvent, reservation)
	return reservation, nil
}

// CancelReservation releases the reservation's hold: after the row flips to
// CANCELLED every night in [checkIn, checkOut) is restored, best-effort.
// Restore clamps at capacity on the ledger side, so a duplicate cancel
// cannot inflate inventory.
func (s *ReservationServiceImpl) CancelReservation(auth data.AuthContext, id string, reason string, ctx context.Context) (*data.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.CancelReservation")
	defer span.End()

	current, err := s.GetReservation(id, ctx)
	if err != nil {
		return nil, err
	}
	if auth.IsGuest() && current.CustomerID != auth.UserID {
		return nil, domain.ErrReservationNotFound
	}

	reservation, err := s.transition(id, data.ReservationCancelled, reason, span)
	if err != nil {
		return nil, err
	}
	s.restoreNights(reservation, ctx)
	s.publish(data.ReservationCancelledEvent, reservation)
	return reservation, nil
}

// CompleteReservation marks the stay as finished. The ledger is untouched:
// those nights already happened.
func (s *ReservationServiceImpl) CompleteReservation(auth data.AuthContext, id string, ctx context.Context) (*data.Reservation, error) {
	_, span := s.tracer.Start(ctx, "ReservationService.CompleteReservation")
	defer span.End()

	reservation, err := s.transition(id, data.ReservationCompleted, "", span)
	if err != nil {
		return nil, err
	}
	s.publish(data.ReservationCompletedEvent, reservation)
	return reservation, nil
}

// UpdateReservation edits dates, guest count or special requests while the
// reservation is still PENDING or CONFIRMED. A date change re-runs the
// overlap check against the new interval with the reservation's own hold
// excluded, then adjusts the ledger on the delta: nights leaving the
// interval are restored, nights entering it are consumed.
func (s *ReservationServiceImpl) UpdateReservation(auth data.AuthContext, id string, update *data.UpdateReservation, ctx context.Context) (*data.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.UpdateReservation")
	defer span.End()

	reservation, err := s.GetReservation(id, ctx)
	if err != nil {
		return nil, err
	}
	if auth.IsGuest() && reservation.CustomerID != auth.UserID {
		return nil, domain.ErrReservationNotFound
	}
	if reservation.Status != data.ReservationPending && reservation.Status != data.ReservationConfirmed {
		return nil, domain.InvalidTransitionError{From: string(reservation.Status), To: string(reservation.Status)}
	}

	if update.GuestCount != nil {
		if *update.GuestCount < 1 {
			return nil, domain.ValidationError{Message: "guest_count must be at least 1"}
		}
		reservation.GuestCount = *update.GuestCount
	}
	if update.SpecialRequests != nil {
		reservation.SpecialRequests = *update.SpecialRequests
	}

	oldCheckIn, oldCheckOut := reservation.CheckInDate, reservation.CheckOutDate
	newCheckIn, newCheckOut := oldCheckIn, oldCheckOut
	if update.CheckInDate != nil {
		newCheckIn = data.NormalizeDate(*update.CheckInDate)
	}
	if update.CheckOutDate != nil {
		newCheckOut = data.NormalizeDate(*update.CheckOutDate)
	}

	datesChanged := !newCheckIn.Equal(oldCheckIn) || !newCheckOut.Equal(oldCheckOut)
	if datesChanged {
		if err := validateDateRange(newCheckIn, newCheckOut); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := s.scanForOverlap(reservation.RoomID, newCheckIn, newCheckOut, reservation.ReservationID.String(), ctx); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		oldNights := data.Nights(oldCheckIn, oldCheckOut)
		newNights := data.Nights(newCheckIn, newCheckOut)
		addedNights := diffNights(newNights, oldNights)
		removedNights := diffNights(oldNights, newNights)

		// Claim the nights entering the interval first; a real inventory
		// conflict on any of them fails the whole update.
		if conflictNight, conflict := s.consumeNights(reservation, addedNights, ctx); conflict {
			for _, night := range addedNights[:conflictNight] {
				if err := s.availability.RestoreAvailability(reservation.RoomID, night, 1, ctx); err != nil {
					s.logMutationFailure("restore", reservation, night, err)
				}
			}
			metrics.BookingConflicts.Inc()
			span.SetStatus(codes.Error, "room unavailable")
			return nil, domain.NewRoomUnavailable(reservation.RoomID)
		}

		// Reprice from the nightly average of the existing hold; the pricing
		// collaborator owns anything smarter.
		if len(oldNights) > 0 {
			reservation.TotalAmount = reservation.TotalAmount / float64(len(oldNights)) * float64(len(newNights))
		}
		reservation.CheckInDate = newCheckIn
		reservation.CheckOutDate = newCheckOut

		if err := s.repo.UpdateDetails(reservation); err != nil {
			span.SetStatus(codes.Error, err.Error())
			for _, night := range addedNights {
				if restoreErr := s.availability.RestoreAvailability(reservation.RoomID, night, 1, ctx); restoreErr != nil {
					s.logMutationFailure("restore", reservation, night, restoreErr)
				}
			}
			return nil, err
		}

		for _, night := range removedNights {
			if err := s.availability.RestoreAvailability(reservation.RoomID, night, 1, ctx); err != nil {
				s.logMutationFailure("restore", reservation, night, err)
			}
		}
		return reservation, nil
	}

	if err := s.repo.UpdateDetails(reservation); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return reservation, nil
}

func (s *ReservationServiceImpl) transition(id string, next data.ReservationStatus, reason string, span trace.Span) (*data.Reservation, error) {
	reservationID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, domain.ValidationError{Message: "invalid reservation id"}
	}
	reservation, err := s.repo.GetByID(reservationID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !reservation.Status.CanTransitionTo(next) {
		err := domain.InvalidTransitionError{From: string(reservation.Status), To: string(next)}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.repo.UpdateStatus(reservation.RoomID, reservationID, next, reason); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	reservation.Status = next
	reservation.CancellationReason = reason
	return reservation, nil
}

// scanForOverlap is the conflict fallback: any reservation on the room that
// is neither cancelled nor rejected and intersects the requested half-open
// interval blocks the booking. excludeID skips the caller's own row when a
// reservation re-checks its changed dates.
func (s *ReservationServiceImpl) scanForOverlap(roomID string, checkIn, checkOut time.Time, excludeID string, ctx context.Context) error {
	existing, err := s.repo.GetByRoom(roomID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if excludeID != "" && other.ReservationID.String() == excludeID {
			continue
		}
		if other.Status.Active() && other.Overlaps(checkIn, checkOut) {
			metrics.BookingConflicts.Inc()
			return domain.NewRoomUnavailable(roomID)
		}
	}
	return nil
}

// consumeNights decrements one unit per night. It reports the index of the
// first night the ledger refused, either because the units are gone or
// because no inventory was ever declared for that date; the caller treats
// that as a booking conflict. Every other error is logged and swallowed.
func (s *ReservationServiceImpl) consumeNights(reservation *data.Reservation, nights []time.Time, ctx context.Context) (int, bool) {
	for i, night := range nights {
		err := s.availability.ReduceAvailability(reservation.RoomID, night, 1, ctx)
		if errors.Is(err, domain.ErrInsufficientInventory) || errors.Is(err, domain.ErrAvailabilityNotFound) {
			return i, true
		}
		if err != nil {
			s.logMutationFailure("reduce", reservation, night, err)
		}
	}
	return 0, false
}

func (s *ReservationServiceImpl) restoreNights(reservation *data.Reservation, ctx context.Context) {
	for _, night := range data.Nights(reservation.CheckInDate, reservation.CheckOutDate) {
		if err := s.availability.RestoreAvailability(reservation.RoomID, night, 1, ctx); err != nil {
			s.logMutationFailure("restore", reservation, night, err)
		}
	}
}

func (s *ReservationServiceImpl) logMutationFailure(operation string, reservation *data.Reservation, night time.Time, err error) {
	metrics.LedgerMutationFailures.WithLabelValues(operation).Inc()
	s.logger.WithFields(logrus.Fields{
		"operation":      operation,
		"reservation_id": reservation.ReservationID.String(),
		"room_id":        reservation.RoomID,
		"night":          night.Format("2006-01-02"),
	}).Error("Ledger mutation failed, continuing: ", err)
}

func (s *ReservationServiceImpl) publish(eventType data.ReservationEventType, reservation *data.Reservation) {
	event := &data.ReservationEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ReservationID: reservation.ReservationID.String(),
		CustomerID:    reservation.CustomerID,
		HotelID:       reservation.HotelID,
		RoomID:        reservation.RoomID,
		CheckInDate:   reservation.CheckInDate,
		CheckOutDate:  reservation.CheckOutDate,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishReservationEvent(event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event_type":     string(eventType),
			"reservation_id": reservation.ReservationID.String(),
		}).Warn("Failed to publish reservation event: ", err)
	}
}

func validateDateRange(checkIn, checkOut time.Time) error {
	today := data.NormalizeDate(time.Now().UTC())
	if checkIn.Before(today) {
		return domain.ValidationError{Message: "check_in_date cannot be in the past"}
	}
	if !checkOut.After(checkIn) {
		return domain.ValidationError{Message: "check_out_date must be after check_in_date"}
	}
	return nil
}

// diffNights returns the nights present in a but not in b.
func diffNights(a, b []time.Time) []time.Time {
	inB := make(map[string]bool, len(b))
	for _, night := range b {
		inB[night.Format("2006-01-02")] = true
	}
	var diff []time.Time
	for _, night := range a {
		if !inB[night.Format("2006-01-02")] {
			diff = append(diff, night)
		}
	}
	return diff
}
