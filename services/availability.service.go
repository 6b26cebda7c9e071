package services

import (
	"context"
	"time"

	"booking-service/data"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AvailabilityService interface {
	InsertAvailability(availability *data.CreateAvailability, ctx context.Context) (*data.Availability, error)
	InsertMultipleAvailability(period *data.CreateAvailabilityRange, ctx context.Context) ([]*data.Availability, error)
	GetAvailabilityByRoom(roomID string, startDate, endDate time.Time, ctx context.Context) ([]*data.Availability, error)
	CheckAvailability(roomID string, checkInDate, checkOutDate time.Time, requiredUnits int, ctx context.Context) (*data.CheckAvailabilityResult, error)
	ReduceAvailability(roomID string, date time.Time, quantity int, ctx context.Context) (*data.Availability, error)
	RestoreAvailability(roomID string, date time.Time, quantity int, ctx context.Context) (*data.Availability, error)
	UpdateAvailability(id primitive.ObjectID, update *data.UpdateAvailability, ctx context.Context) (*data.Availability, error)
	DeleteAvailability(id primitive.ObjectID, ctx context.Context) error
}
