package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatusTransitions(t *testing.T) {
	tests := []struct {
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{ReservationPending, ReservationConfirmed, true},
		{ReservationPending, ReservationRejected, true},
		{ReservationPending, ReservationCancelled, true},
		{ReservationPending, ReservationCompleted, false},
		{ReservationConfirmed, ReservationCancelled, true},
		{ReservationConfirmed, ReservationCompleted, true},
		{ReservationConfirmed, ReservationConfirmed, false},
		{ReservationConfirmed, ReservationRejected, false},
		{ReservationRejected, ReservationConfirmed, false},
		{ReservationCancelled, ReservationConfirmed, false},
		{ReservationCompleted, ReservationCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, ReservationPending.Terminal())
	assert.False(t, ReservationConfirmed.Terminal())
	assert.True(t, ReservationRejected.Terminal())
	assert.True(t, ReservationCancelled.Terminal())
	assert.True(t, ReservationCompleted.Terminal())
}

func TestActiveStatuses(t *testing.T) {
	assert.True(t, ReservationPending.Active())
	assert.True(t, ReservationConfirmed.Active())
	assert.True(t, ReservationCompleted.Active())
	assert.False(t, ReservationCancelled.Active())
	assert.False(t, ReservationRejected.Active())
}

func TestOverlapsHalfOpen(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC)
	}
	existing := &Reservation{CheckInDate: day(10), CheckOutDate: day(12)}

	assert.True(t, existing.Overlaps(day(11), day(13)))
	assert.True(t, existing.Overlaps(day(9), day(11)))
	assert.True(t, existing.Overlaps(day(10), day(12)))
	assert.True(t, existing.Overlaps(day(9), day(14)))

	// Back-to-back stays share no night.
	assert.False(t, existing.Overlaps(day(12), day(14)))
	assert.False(t, existing.Overlaps(day(8), day(10)))
}
