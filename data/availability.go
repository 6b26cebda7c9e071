package data

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "AVAILABLE"
	StatusLimited     AvailabilityStatus = "LIMITED"
	StatusUnavailable AvailabilityStatus = "UNAVAILABLE"
)

// Availability is one ledger row: bookable units for a single room on a
// single calendar date. Status is derived, never stored.
type Availability struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RoomID         string             `bson:"room_id" json:"room_id"`
	Date           primitive.DateTime `bson:"date" json:"date"`
	AvailableUnits int                `bson:"available_units" json:"available_units"`
	TotalUnits     int                `bson:"total_units" json:"total_units"`
	BasePrice      float64            `bson:"base_price" json:"base_price"`
}

// Status derives the availability state from the unit counts. A room/date is
// LIMITED once it drops to 20% of capacity or below.
func (a *Availability) Status() AvailabilityStatus {
	if a.AvailableUnits == 0 {
		return StatusUnavailable
	}
	if float64(a.AvailableUnits) <= 0.2*float64(a.TotalUnits) {
		return StatusLimited
	}
	return StatusAvailable
}

func (a *Availability) MarshalJSON() ([]byte, error) {
	type alias Availability
	return json.Marshal(&struct {
		*alias
		Status AvailabilityStatus `json:"status"`
	}{
		alias:  (*alias)(a),
		Status: a.Status(),
	})
}

type CreateAvailability struct {
	RoomID         string    `json:"room_id" validate:"required"`
	Date           time.Time `json:"date" validate:"required"`
	AvailableUnits int       `json:"available_rooms" validate:"gte=0"`
	TotalUnits     int       `json:"total_rooms" validate:"gte=1"`
	BasePrice      float64   `json:"base_price" validate:"gte=0"`
}

type CreateAvailabilityRange struct {
	RoomID         string    `json:"room_id" validate:"required"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	AvailableUnits int       `json:"available_rooms" validate:"gte=0"`
	TotalUnits     int       `json:"total_rooms" validate:"gte=1"`
	BasePrice      float64   `json:"base_price" validate:"gte=0"`
}

type UpdateAvailability struct {
	AvailableUnits *int     `json:"available_rooms,omitempty"`
	TotalUnits     *int     `json:"total_rooms,omitempty"`
	BasePrice      *float64 `json:"base_price,omitempty"`
}

type CheckAvailability struct {
	RoomID       string    `json:"room_id" validate:"required"`
	CheckInDate  time.Time `json:"check_in_date" validate:"required"`
	CheckOutDate time.Time `json:"check_out_date" validate:"required"`
	Guests       int       `json:"guests,omitempty"`
}

// CheckAvailabilityResult carries the per-night ledger rows alongside the
// verdict so callers can price the stay without a second round trip.
type CheckAvailabilityResult struct {
	Available        bool            `json:"available"`
	AvailabilityData []*Availability `json:"availability_data"`
}

func (a *CreateAvailability) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(a)
}

func (c *CheckAvailability) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(c)
}

// NormalizeDate strips the time component, UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights enumerates every date in the half-open interval [checkIn, checkOut).
// The check-out date itself is not a consumed night.
func Nights(checkIn, checkOut time.Time) []time.Time {
	var nights []time.Time
	for d := NormalizeDate(checkIn); d.Before(NormalizeDate(checkOut)); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}
