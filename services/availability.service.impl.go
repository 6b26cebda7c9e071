package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-service/cache"
	"booking-service/data"
	"booking-service/domain"
	"booking-service/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// casRetries bounds the conditional-update loop on a contended ledger row.
const casRetries = 5

type AvailabilityServiceImpl struct {
	store  repository.AvailabilityStore
	cache  *cache.AvailabilityCache
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewAvailabilityServiceImpl(store repository.AvailabilityStore, availabilityCache *cache.AvailabilityCache, logger *logrus.Logger, tracer trace.Tracer) AvailabilityService {
	return &AvailabilityServiceImpl{
		store:  store,
		cache:  availabilityCache,
		logger: logger,
		tracer: tracer,
	}
}

func (s *AvailabilityServiceImpl) InsertAvailability(create *data.CreateAvailability, ctx context.Context) (*data.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.InsertAvailability")
	defer span.End()

	if create.TotalUnits < 1 {
		return nil, domain.ValidationError{Message: "total_rooms must be at least 1"}
	}
	if create.AvailableUnits < 0 || create.AvailableUnits > create.TotalUnits {
		return nil, domain.ValidationError{Message: "available_rooms must be between 0 and total_rooms"}
	}

	availability := &data.Availability{
		RoomID:         create.RoomID,
		Date:           primitive.NewDateTimeFromTime(data.NormalizeDate(create.Date)),
		AvailableUnits: create.AvailableUnits,
		TotalUnits:     create.TotalUnits,
		BasePrice:      create.BasePrice,
	}
	if err := s.store.Insert(availability, ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.invalidate(create.RoomID, ctx)
	return availability, nil
}

func (s *AvailabilityServiceImpl) InsertMultipleAvailability(period *data.CreateAvailabilityRange, ctx context.Context) ([]*data.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.InsertMultipleAvailability")
	defer span.End()

	startDate := data.NormalizeDate(period.StartDate)
	endDate := data.NormalizeDate(period.EndDate)
	if startDate.After(endDate) {
		return nil, domain.ValidationError{Message: "start_date is after end_date"}
	}

	var inserted []*data.Availability
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		availability, err := s.InsertAvailability(&data.CreateAvailability{
			RoomID:         period.RoomID,
			Date:           d,
			AvailableUnits: period.AvailableUnits,
			TotalUnits:     period.TotalUnits,
			BasePrice:      period.BasePrice,
		}, ctx)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		inserted = append(inserted, availability)
	}
	return inserted, nil
}

func (s *AvailabilityServiceImpl) GetAvailabilityByRoom(roomID string, startDate, endDate time.Time, ctx context.Context) ([]*data.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.GetAvailabilityByRoom")
	defer span.End()

	return s.store.GetByRoomAndRange(roomID, startDate, endDate, ctx)
}

// CheckAvailability is a pure read over the half-open interval
// [checkInDate, checkOutDate). A date with no ledger row counts as
// unavailable: a room cannot be booked for nights nobody declared inventory
// for.
func (s *AvailabilityServiceImpl) CheckAvailability(roomID string, checkInDate, checkOutDate time.Time, requiredUnits int, ctx context.Context) (*data.CheckAvailabilityResult, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.CheckAvailability")
	defer span.End()

	if requiredUnits < 1 {
		requiredUnits = 1
	}
	nights := data.Nights(checkInDate, checkOutDate)
	if len(nights) == 0 {
		return nil, domain.ValidationError{Message: "check_out_date must be after check_in_date"}
	}

	if s.cache != nil && requiredUnits == 1 {
		if cached, ok := s.cache.GetCheck(roomID, checkInDate, checkOutDate, ctx); ok {
			return cached, nil
		}
	}

	result := &data.CheckAvailabilityResult{Available: true}
	for _, night := range nights {
		record, err := s.store.GetByRoomAndDate(roomID, night, ctx)
		if errors.Is(err, domain.ErrAvailabilityNotFound) {
			result.Available = false
			continue
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		result.AvailabilityData = append(result.AvailabilityData, record)
		if record.Status() == data.StatusUnavailable || record.AvailableUnits < requiredUnits {
			result.Available = false
		}
	}

	if s.cache != nil && requiredUnits == 1 {
		s.cache.PostCheck(roomID, checkInDate, checkOutDate, result, ctx)
	}
	return result, nil
}

func (s *AvailabilityServiceImpl) ReduceAvailability(roomID string, date time.Time, quantity int, ctx context.Context) (*data.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.ReduceAvailability")
	defer span.End()

	if quantity < 1 {
		return nil, domain.ValidationError{Message: "quantity must be at least 1"}
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		record, err := s.store.GetByRoomAndDate(roomID, date, ctx)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if record.AvailableUnits < quantity {
			span.SetStatus(codes.Error, domain.ErrInsufficientInventory.Error())
			return nil, domain.ErrInsufficientInventory
		}
		applied, err := s.store.CompareAndSetUnits(roomID, date, record.AvailableUnits, record.AvailableUnits-quantity, ctx)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if applied {
			record.AvailableUnits -= quantity
			s.invalidate(roomID, ctx)
			return record, nil
		}
		// Lost the race; re-read and try again.
	}
	return nil, fmt.Errorf("reduce availability: too much contention on room %s", roomID)
}

// RestoreAvailability clamps at total_units so a double-restore can never
// push the ledger above capacity.
func (s *AvailabilityServiceImpl) RestoreAvailability(roomID string, date time.Time, quantity int, ctx context.Context) (*data.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.RestoreAvailability")
	defer span.End()

	if quantity < 1 {
		return nil, domain.ValidationError{Message: "quantity must be at least 1"}
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		record, err := s.store.GetByRoomAndDate(roomID, date, ctx)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		restored := record.AvailableUnits + quantity
		if restored > record.TotalUnits {
			restored = record.TotalUnits
		}
		if restored == record.AvailableUnits {
			return record, nil
		}
		applied, err := s.store.CompareAndSetUnits(roomID, date, record.AvailableUnits, restored, ctx)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if applied {
			record.AvailableUnits = restored
			s.invalidate(roomID, ctx)
			return record, nil
		}
	}
	return nil, fmt.Errorf("restore availability: too much contention on room %s", roomID)
}

func (s *AvailabilityServiceImpl) UpdateAvailability(id primitive.ObjectID, update *data.UpdateAvailability, ctx context.Context) (*data.Availability, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.UpdateAvailability")
	defer span.End()

	record, err := s.store.Update(id, update, ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.invalidate(record.RoomID, ctx)
	return record, nil
}

func (s *AvailabilityServiceImpl) DeleteAvailability(id primitive.ObjectID, ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.DeleteAvailability")
	defer span.End()

	record, err := s.store.GetByID(id, ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.store.Delete(id, ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.invalidate(record.RoomID, ctx)
	return nil
}

func (s *AvailabilityServiceImpl) invalidate(roomID string, ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateRoom(roomID, ctx)
	}
}
