package data

import (
	"time"
)

type ReservationEventType string

const (
	ReservationCreatedEvent   ReservationEventType = "reservation.created"
	ReservationConfirmedEvent ReservationEventType = "reservation.confirmed"
	ReservationRejectedEvent  ReservationEventType = "reservation.rejected"
	ReservationCancelledEvent ReservationEventType = "reservation.cancelled"
	ReservationCompletedEvent ReservationEventType = "reservation.completed"
)

// ReservationEvent is what the notification service consumes off NATS.
type ReservationEvent struct {
	EventID       string               `json:"event_id"`
	Type          ReservationEventType `json:"type"`
	ReservationID string               `json:"reservation_id"`
	CustomerID    string               `json:"customer_id"`
	HotelID       string               `json:"hotel_id"`
	RoomID        string               `json:"room_id"`
	CheckInDate   time.Time            `json:"check_in_date"`
	CheckOutDate  time.Time            `json:"check_out_date"`
	OccurredAt    time.Time            `json:"occurred_at"`
}
