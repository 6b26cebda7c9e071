package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"booking-service/data"
	"booking-service/domain"
	"booking-service/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestAvailabilityService() AvailabilityService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	return NewAvailabilityServiceImpl(repository.NewInMemoryAvailabilityStore(), nil, logger, tracer)
}

func seedAvailability(t *testing.T, svc AvailabilityService, roomID string, date time.Time, available, total int, price float64) *data.Availability {
	t.Helper()
	record, err := svc.InsertAvailability(&data.CreateAvailability{
		RoomID:         roomID,
		Date:           date,
		AvailableUnits: available,
		TotalUnits:     total,
		BasePrice:      price,
	}, context.Background())
	require.NoError(t, err)
	return record
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func TestInsertAvailabilityDuplicate(t *testing.T) {
	svc := newTestAvailabilityService()
	date := day(t, "2025-06-01")

	seedAvailability(t, svc, "R1", date, 2, 2, 80)

	_, err := svc.InsertAvailability(&data.CreateAvailability{
		RoomID:         "R1",
		Date:           date,
		AvailableUnits: 2,
		TotalUnits:     2,
	}, context.Background())
	assert.ErrorIs(t, err, domain.ErrAvailabilityExists)
}

func TestInsertAvailabilityRejectsOvercommit(t *testing.T) {
	svc := newTestAvailabilityService()

	_, err := svc.InsertAvailability(&data.CreateAvailability{
		RoomID:         "R1",
		Date:           day(t, "2025-06-01"),
		AvailableUnits: 5,
		TotalUnits:     2,
	}, context.Background())
	assert.IsType(t, domain.ValidationError{}, err)
}

func TestInsertMultipleAvailabilitySeedsEveryDate(t *testing.T) {
	svc := newTestAvailabilityService()

	inserted, err := svc.InsertMultipleAvailability(&data.CreateAvailabilityRange{
		RoomID:         "R1",
		StartDate:      day(t, "2025-06-01"),
		EndDate:        day(t, "2025-06-04"),
		AvailableUnits: 3,
		TotalUnits:     3,
		BasePrice:      90,
	}, context.Background())

	require.NoError(t, err)
	assert.Len(t, inserted, 4)
}

func TestCheckAvailabilityAllNightsPresent(t *testing.T) {
	svc := newTestAvailabilityService()
	seedAvailability(t, svc, "R1", day(t, "2025-06-01"), 2, 2, 80)
	seedAvailability(t, svc, "R1", day(t, "2025-06-02"), 2, 2, 80)
	seedAvailability(t, svc, "R1", day(t, "2025-06-03"), 0, 2, 80)

	// [01, 03) touches only the first two nights; the sold-out third
	// is the check-out date and must not matter.
	result, err := svc.CheckAvailability("R1", day(t, "2025-06-01"), day(t, "2025-06-03"), 1, context.Background())

	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Len(t, result.AvailabilityData, 2)
}

func TestCheckAvailabilityMissingNightIsUnavailable(t *testing.T) {
	svc := newTestAvailabilityService()
	seedAvailability(t, svc, "R1", day(t, "2025-06-01"), 2, 2, 80)
	// 2025-06-02 has no ledger row.
	seedAvailability(t, svc, "R1", day(t, "2025-06-03"), 2, 2, 80)

	result, err := svc.CheckAvailability("R1", day(t, "2025-06-01"), day(t, "2025-06-04"), 1, context.Background())

	require.NoError(t, err)
	assert.False(t, result.Available)
}

func TestCheckAvailabilityInsufficientUnits(t *testing.T) {
	svc := newTestAvailabilityService()
	seedAvailability(t, svc, "R1", day(t, "2025-06-01"), 1, 4, 80)

	result, err := svc.CheckAvailability("R1", day(t, "2025-06-01"), day(t, "2025-06-02"), 2, context.Background())

	require.NoError(t, err)
	assert.False(t, result.Available)
}

func TestCheckAvailabilityRejectsInvertedRange(t *testing.T) {
	svc := newTestAvailabilityService()

	_, err := svc.CheckAvailability("R1", day(t, "2025-06-03"), day(t, "2025-06-01"), 1, context.Background())
	assert.IsType(t, domain.ValidationError{}, err)
}

func TestReduceAvailability(t *testing.T) {
	svc := newTestAvailabilityService()
	date := day(t, "2025-07-10")
	seedAvailability(t, svc, "R1", date, 1, 1, 100)

	record, err := svc.ReduceAvailability("R1", date, 1, context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, record.AvailableUnits)
	assert.Equal(t, data.StatusUnavailable, record.Status())
}

func TestReduceAvailabilityBelowZero(t *testing.T) {
	svc := newTestAvailabilityService()
	date := day(t, "2025-07-10")
	seedAvailability(t, svc, "R1", date, 1, 1, 100)

	_, err := svc.ReduceAvailability("R1", date, 2, context.Background())
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	_, err = svc.ReduceAvailability("R1", date, 1, context.Background())
	require.NoError(t, err)
	_, err = svc.ReduceAvailability("R1", date, 1, context.Background())
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
}

func TestReduceAvailabilityUnknownDate(t *testing.T) {
	svc := newTestAvailabilityService()

	_, err := svc.ReduceAvailability("R1", day(t, "2025-07-10"), 1, context.Background())
	assert.ErrorIs(t, err, domain.ErrAvailabilityNotFound)
}

func TestRestoreAvailabilityClampsAtCapacity(t *testing.T) {
	svc := newTestAvailabilityService()
	date := day(t, "2025-07-10")
	seedAvailability(t, svc, "R1", date, 2, 2, 100)

	_, err := svc.ReduceAvailability("R1", date, 1, context.Background())
	require.NoError(t, err)

	record, err := svc.RestoreAvailability("R1", date, 1, context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, record.AvailableUnits)

	// Double restore must not exceed capacity.
	record, err = svc.RestoreAvailability("R1", date, 1, context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, record.AvailableUnits)
	assert.Equal(t, data.StatusAvailable, record.Status())
}

func TestRestoreAvailabilityUnknownDate(t *testing.T) {
	svc := newTestAvailabilityService()

	_, err := svc.RestoreAvailability("R1", day(t, "2025-07-10"), 1, context.Background())
	assert.ErrorIs(t, err, domain.ErrAvailabilityNotFound)
}

func TestUnitsInvariantUnderMixedSequence(t *testing.T) {
	svc := newTestAvailabilityService()
	date := day(t, "2025-07-10")
	seedAvailability(t, svc, "R1", date, 3, 3, 100)

	operations := []struct {
		reduce   bool
		quantity int
	}{
		{true, 1}, {true, 2}, {false, 1}, {true, 1}, {false, 5}, {false, 1}, {true, 3},
	}
	for _, op := range operations {
		var record *data.Availability
		var err error
		if op.reduce {
			record, err = svc.ReduceAvailability("R1", date, op.quantity, context.Background())
		} else {
			record, err = svc.RestoreAvailability("R1", date, op.quantity, context.Background())
		}
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
			continue
		}
		assert.GreaterOrEqual(t, record.AvailableUnits, 0)
		assert.LessOrEqual(t, record.AvailableUnits, record.TotalUnits)
	}
}

func TestConcurrentReduceLastUnit(t *testing.T) {
	svc := newTestAvailabilityService()
	date := day(t, "2025-07-10")
	seedAvailability(t, svc, "R1", date, 1, 1, 100)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReduceAvailability("R1", date, 1, context.Background())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestQueryOrderedByDate(t *testing.T) {
	svc := newTestAvailabilityService()
	seedAvailability(t, svc, "R1", day(t, "2025-06-03"), 2, 2, 80)
	seedAvailability(t, svc, "R1", day(t, "2025-06-01"), 2, 2, 80)
	seedAvailability(t, svc, "R1", day(t, "2025-06-02"), 2, 2, 80)

	records, err := svc.GetAvailabilityByRoom("R1", day(t, "2025-06-01"), day(t, "2025-06-03"), context.Background())

	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].Date.Time().Before(records[i].Date.Time()))
	}
}
