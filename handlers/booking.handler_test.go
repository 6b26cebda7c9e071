package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-service/clients"
	"booking-service/data"
	"booking-service/handlers"
	"booking-service/repository"
	"booking-service/routes"
	"booking-service/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type inProcessClient struct {
	svc services.AvailabilityService
}

func (c inProcessClient) CheckAvailability(roomID string, checkIn, checkOut time.Time, guests int, ctx context.Context) (*data.CheckAvailabilityResult, error) {
	return c.svc.CheckAvailability(roomID, checkIn, checkOut, 1, ctx)
}

func (c inProcessClient) ReduceAvailability(roomID string, date time.Time, quantity int, ctx context.Context) error {
	_, err := c.svc.ReduceAvailability(roomID, date, quantity, ctx)
	return err
}

func (c inProcessClient) RestoreAvailability(roomID string, date time.Time, quantity int, ctx context.Context) error {
	_, err := c.svc.RestoreAvailability(roomID, date, quantity, ctx)
	return err
}

type noopPublisher struct{}

func (noopPublisher) PublishReservationEvent(*data.ReservationEvent) error { return nil }
func (noopPublisher) Close()                                               {}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	availabilityService := services.NewAvailabilityServiceImpl(repository.NewInMemoryAvailabilityStore(), nil, logger, tracer)
	var client clients.AvailabilityClient = inProcessClient{svc: availabilityService}
	reservationService := services.NewReservationServiceImpl(
		repository.NewInMemoryReservationStore(), client,
		services.NightlyRatePricer{DefaultRate: 50, Currency: "EUR"},
		noopPublisher{}, logger, tracer)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, tracer)
	reservationsHandler := handlers.NewReservationsHandler(reservationService, tracer)
	routeHandler := routes.NewBookingRouteHandler(availabilityHandler, reservationsHandler)

	router := gin.New()
	routeHandler.BookingRoute(router.Group("/api"))
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var response envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return recorder, response
}

func guestHeaders(userID string) map[string]string {
	return map[string]string{"X-User-Id": userID, "X-User-Role": string(data.Guest)}
}

func hostHeaders(userID string) map[string]string {
	return map[string]string{"X-User-Id": userID, "X-User-Role": string(data.Host)}
}

func testDates(t *testing.T) (string, string) {
	t.Helper()
	checkIn := data.NormalizeDate(time.Now().UTC()).AddDate(1, 0, 0)
	return checkIn.Format(time.RFC3339), checkIn.AddDate(0, 0, 2).Format(time.RFC3339)
}

func seedRange(t *testing.T, router *gin.Engine, roomID, start, end string, units int) {
	t.Helper()
	recorder, _ := doJSON(t, router, http.MethodPost, "/api/availability/range", gin.H{
		"room_id":         roomID,
		"start_date":      start,
		"end_date":        end,
		"available_rooms": units,
		"total_rooms":     units,
		"base_price":      90,
	}, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)
}

func TestCreateAvailabilityEndpoint(t *testing.T) {
	router := newTestRouter(t)
	checkIn, _ := testDates(t)

	body := gin.H{
		"room_id":         "R1",
		"date":            checkIn,
		"available_rooms": 5,
		"total_rooms":     5,
		"base_price":      120,
	}

	recorder, response := doJSON(t, router, http.MethodPost, "/api/availability", body, nil)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.True(t, response.Success)

	var created struct {
		Status data.AvailabilityStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(response.Data, &created))
	assert.Equal(t, data.StatusAvailable, created.Status)

	// Same room and date again is a conflict.
	recorder, response = doJSON(t, router, http.MethodPost, "/api/availability", body, nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.False(t, response.Success)
}

func TestCreateAvailabilityRejectsBadBody(t *testing.T) {
	router := newTestRouter(t)
	checkIn, _ := testDates(t)

	recorder, _ := doJSON(t, router, http.MethodPost, "/api/availability", gin.H{
		"date":            checkIn,
		"available_rooms": 5,
		"total_rooms":     5,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	router := newTestRouter(t)
	checkIn, checkOut := testDates(t)
	seedRange(t, router, "R1", checkIn, checkOut, 1)

	recorder, response := doJSON(t, router, http.MethodPost, "/api/availability/check", gin.H{
		"room_id":        "R1",
		"check_in_date":  checkIn,
		"check_out_date": checkOut,
		"guests":         1,
	}, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result data.CheckAvailabilityResult
	require.NoError(t, json.Unmarshal(response.Data, &result))
	assert.True(t, result.Available)
}

func TestCheckAvailabilityIgnoresPartySize(t *testing.T) {
	router := newTestRouter(t)
	checkIn, checkOut := testDates(t)
	seedRange(t, router, "R1", checkIn, checkOut, 1)

	// A stay holds one unit per night no matter how many guests share it, so
	// a large party on a single remaining unit is still available.
	recorder, response := doJSON(t, router, http.MethodPost, "/api/availability/check", gin.H{
		"room_id":        "R1",
		"check_in_date":  checkIn,
		"check_out_date": checkOut,
		"guests":         4,
	}, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result data.CheckAvailabilityResult
	require.NoError(t, json.Unmarshal(response.Data, &result))
	assert.True(t, result.Available)
}

func TestReduceAvailabilityConflict(t *testing.T) {
	router := newTestRouter(t)
	checkIn, checkOut := testDates(t)
	seedRange(t, router, "R1", checkIn, checkOut, 1)

	date := checkIn[:10]
	recorder, _ := doJSON(t, router, http.MethodPost, "/api/availability/reduce/R1/"+date, nil, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, response := doJSON(t, router, http.MethodPost, "/api/availability/reduce/R1/"+date, nil, nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.False(t, response.Success)
}

func TestReservationRequiresAuth(t *testing.T) {
	router := newTestRouter(t)
	checkIn, checkOut := testDates(t)

	body := gin.H{
		"hotel_id":       "H1",
		"room_id":        "R1",
		"check_in_date":  checkIn,
		"check_out_date": checkOut,
		"guest_count":    1,
	}

	recorder, _ := doJSON(t, router, http.MethodPost, "/api/reservations", body, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Hosts do not book rooms.
	recorder, _ = doJSON(t, router, http.MethodPost, "/api/reservations", body, hostHeaders("host-1"))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestReservationLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)
	checkIn, checkOut := testDates(t)
	seedRange(t, router, "R1", checkIn, checkOut, 2)

	recorder, response := doJSON(t, router, http.MethodPost, "/api/reservations", gin.H{
		"hotel_id":       "H1",
		"room_id":        "R1",
		"check_in_date":  checkIn,
		"check_out_date": checkOut,
		"guest_count":    2,
	}, guestHeaders("guest-1"))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created data.Reservation
	require.NoError(t, json.Unmarshal(response.Data, &created))
	assert.Equal(t, data.ReservationPending, created.Status)
	id := created.ReservationID.String()

	// Guests cannot confirm.
	recorder, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/reservations/%s/confirm", id), nil, guestHeaders("guest-1"))
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/reservations/%s/confirm", id), nil, hostHeaders("host-1"))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, response = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/reservations/%s/cancel", id),
		gin.H{"reason": "change of plans"}, guestHeaders("guest-1"))
	require.Equal(t, http.StatusOK, recorder.Code)

	var cancelled data.Reservation
	require.NoError(t, json.Unmarshal(response.Data, &cancelled))
	assert.Equal(t, data.ReservationCancelled, cancelled.Status)
	assert.Equal(t, "change of plans", cancelled.CancellationReason)

	// Cancelling a cancelled reservation is an invalid transition.
	recorder, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/reservations/%s/cancel", id),
		gin.H{"reason": "again"}, guestHeaders("guest-1"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetReservationNotFound(t *testing.T) {
	router := newTestRouter(t)

	recorder, _ := doJSON(t, router, http.MethodGet, "/api/reservations/00000000-0000-1000-8000-000000000000", nil, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
