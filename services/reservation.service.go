package services

import (
	"context"

	"booking-service/data"
)

type ReservationService interface {
	CreateReservation(auth data.AuthContext, create *data.CreateReservation, ctx context.Context) (*data.Reservation, error)
	GetReservation(id string, ctx context.Context) (*data.Reservation, error)
	GetReservationsByCustomer(customerID string, ctx context.Context) (data.Reservations, error)
	GetReservationsByRoom(roomID string, ctx context.Context) (data.Reservations, error)
	ConfirmReservation(auth data.AuthContext, id string, ctx context.Context) (*data.Reservation, error)
	RejectReservation(auth data.AuthContext, id string, reason string, ctx context.Context) (*data.Reservation, error)
	CancelReservation(auth data.AuthContext, id string, reason string, ctx context.Context) (*data.Reservation, error)
	CompleteReservation(auth data.AuthContext, id string, ctx context.Context) (*data.Reservation, error)
	UpdateReservation(auth data.AuthContext, id string, update *data.UpdateReservation, ctx context.Context) (*data.Reservation, error)
}

// Pricer is the seam towards the pricing collaborator. Computation details
// live outside this service.
type Pricer interface {
	Price(records []*data.Availability, nights int, guests int) (float64, string)
}

// NightlyRatePricer sums the per-night base prices from the ledger rows the
// availability check returned, falling back to a flat rate for nights it has
// no row for (the fallback creation path carries none).
type NightlyRatePricer struct {
	DefaultRate float64
	Currency    string
}

func (p NightlyRatePricer) Price(records []*data.Availability, nights int, guests int) (float64, string) {
	total := 0.0
	priced := 0
	for _, record := range records {
		total += record.BasePrice
		priced++
		if priced == nights {
			break
		}
	}
	for ; priced < nights; priced++ {
		total += p.DefaultRate
	}
	return total, p.Currency
}
