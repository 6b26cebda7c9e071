package data

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gocql/gocql"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationRejected  ReservationStatus = "REJECTED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// Active reports whether the reservation still holds (or will hold) the room,
// which is what the overlap fallback scan cares about.
func (s ReservationStatus) Active() bool {
	return s != ReservationCancelled && s != ReservationRejected
}

// Terminal states accept no further transitions.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationRejected || s == ReservationCancelled || s == ReservationCompleted
}

// CanTransitionTo encodes the lifecycle: PENDING may confirm, reject or
// cancel; CONFIRMED may cancel or complete; everything else is final.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationPending:
		return next == ReservationConfirmed || next == ReservationRejected || next == ReservationCancelled
	case ReservationConfirmed:
		return next == ReservationCancelled || next == ReservationCompleted
	default:
		return false
	}
}

type Reservation struct {
	ReservationID      gocql.UUID        `json:"reservation_id"`
	CustomerID         string            `json:"customer_id"`
	HotelID            string            `json:"hotel_id"`
	RoomID             string            `json:"room_id"`
	CheckInDate        time.Time         `json:"check_in_date"`
	CheckOutDate       time.Time         `json:"check_out_date"`
	GuestCount         int               `json:"guest_count"`
	Status             ReservationStatus `json:"status"`
	TotalAmount        float64           `json:"total_amount"`
	Currency           string            `json:"currency"`
	SpecialRequests    string            `json:"special_requests,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Overlaps applies the standard half-open interval test against another
// stay on the same room.
func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckInDate.Before(checkOut) && r.CheckOutDate.After(checkIn)
}

type Reservations []*Reservation

type CreateReservation struct {
	HotelID         string    `json:"hotel_id" validate:"required"`
	RoomID          string    `json:"room_id" validate:"required"`
	CheckInDate     time.Time `json:"check_in_date" validate:"required"`
	CheckOutDate    time.Time `json:"check_out_date" validate:"required"`
	GuestCount      int       `json:"guest_count" validate:"gte=1"`
	SpecialRequests string    `json:"special_requests,omitempty"`
}

type UpdateReservation struct {
	CheckInDate     *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate    *time.Time `json:"check_out_date,omitempty"`
	GuestCount      *int       `json:"guest_count,omitempty"`
	SpecialRequests *string    `json:"special_requests,omitempty"`
}

type CancelReservation struct {
	Reason string `json:"reason"`
}

func (o *CreateReservation) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}

func (reservations Reservations) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(reservations)
}
