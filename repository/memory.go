package repository

import (
	"context"
	"sync"
	"time"

	"booking-service/data"
	"booking-service/domain"

	"github.com/gocql/gocql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory implementations of both stores, used by the tests so the core
// logic runs without Mongo or Cassandra.

type InMemoryAvailabilityStore struct {
	mu   sync.Mutex
	rows map[string]*data.Availability
}

func NewInMemoryAvailabilityStore() *InMemoryAvailabilityStore {
	return &InMemoryAvailabilityStore{rows: make(map[string]*data.Availability)}
}

func availabilityKey(roomID string, date time.Time) string {
	return roomID + "|" + data.NormalizeDate(date).Format("2006-01-02")
}

func (s *InMemoryAvailabilityStore) Insert(availability *data.Availability, _ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := availabilityKey(availability.RoomID, availability.Date.Time())
	if _, exists := s.rows[key]; exists {
		return domain.ErrAvailabilityExists
	}
	availability.ID = primitive.NewObjectID()
	clone := *availability
	s.rows[key] = &clone
	return nil
}

func (s *InMemoryAvailabilityStore) GetByID(id primitive.ObjectID, _ context.Context) (*data.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			clone := *row
			return &clone, nil
		}
	}
	return nil, domain.ErrAvailabilityNotFound
}

func (s *InMemoryAvailabilityStore) GetByRoomAndDate(roomID string, date time.Time, _ context.Context) (*data.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.rows[availabilityKey(roomID, date)]
	if !exists {
		return nil, domain.ErrAvailabilityNotFound
	}
	clone := *row
	return &clone, nil
}

func (s *InMemoryAvailabilityStore) GetByRoomAndRange(roomID string, startDate, endDate time.Time, _ context.Context) ([]*data.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := data.NormalizeDate(startDate)
	end := data.NormalizeDate(endDate)

	var result []*data.Availability
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if row, exists := s.rows[availabilityKey(roomID, d)]; exists {
			clone := *row
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (s *InMemoryAvailabilityStore) CompareAndSetUnits(roomID string, date time.Time, currentUnits, newUnits int, _ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.rows[availabilityKey(roomID, date)]
	if !exists || row.AvailableUnits != currentUnits {
		return false, nil
	}
	row.AvailableUnits = newUnits
	return true, nil
}

func (s *InMemoryAvailabilityStore) Update(id primitive.ObjectID, update *data.UpdateAvailability, _ context.Context) (*data.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			if update.AvailableUnits != nil {
				row.AvailableUnits = *update.AvailableUnits
			}
			if update.TotalUnits != nil {
				row.TotalUnits = *update.TotalUnits
			}
			if update.BasePrice != nil {
				row.BasePrice = *update.BasePrice
			}
			clone := *row
			return &clone, nil
		}
	}
	return nil, domain.ErrAvailabilityNotFound
}

func (s *InMemoryAvailabilityStore) Delete(id primitive.ObjectID, _ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, row := range s.rows {
		if row.ID == id {
			delete(s.rows, key)
			return nil
		}
	}
	return domain.ErrAvailabilityNotFound
}

type InMemoryReservationStore struct {
	mu   sync.Mutex
	rows map[gocql.UUID]*data.Reservation
}

func NewInMemoryReservationStore() *InMemoryReservationStore {
	return &InMemoryReservationStore{rows: make(map[gocql.UUID]*data.Reservation)}
}

func (s *InMemoryReservationStore) Insert(reservation *data.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *reservation
	s.rows[reservation.ReservationID] = &clone
	return nil
}

func (s *InMemoryReservationStore) GetByID(id gocql.UUID) (*data.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.rows[id]
	if !exists {
		return nil, domain.ErrReservationNotFound
	}
	clone := *row
	return &clone, nil
}

func (s *InMemoryReservationStore) GetByRoom(roomID string) (data.Reservations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reservations data.Reservations
	for _, row := range s.rows {
		if row.RoomID == roomID {
			clone := *row
			reservations = append(reservations, &clone)
		}
	}
	return reservations, nil
}

func (s *InMemoryReservationStore) GetByCustomer(customerID string) (data.Reservations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reservations data.Reservations
	for _, row := range s.rows {
		if row.CustomerID == customerID {
			clone := *row
			reservations = append(reservations, &clone)
		}
	}
	return reservations, nil
}

func (s *InMemoryReservationStore) UpdateStatus(_ string, id gocql.UUID, status data.ReservationStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.rows[id]
	if !exists {
		return domain.ErrReservationNotFound
	}
	row.Status = status
	row.CancellationReason = reason
	return nil
}

func (s *InMemoryReservationStore) UpdateDetails(reservation *data.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.rows[reservation.ReservationID]
	if !exists {
		return domain.ErrReservationNotFound
	}
	row.CheckInDate = reservation.CheckInDate
	row.CheckOutDate = reservation.CheckOutDate
	row.GuestCount = reservation.GuestCount
	row.SpecialRequests = reservation.SpecialRequests
	row.TotalAmount = reservation.TotalAmount
	return nil
}
