package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"booking-service/data"
	"booking-service/domain"
	"booking-service/metrics"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// AvailabilityClient is how the reservation side reaches the availability
// component. Mutations on the ledger go only through here.
type AvailabilityClient interface {
	CheckAvailability(roomID string, checkIn, checkOut time.Time, guests int, ctx context.Context) (*data.CheckAvailabilityResult, error)
	ReduceAvailability(roomID string, date time.Time, quantity int, ctx context.Context) error
	RestoreAvailability(roomID string, date time.Time, quantity int, ctx context.Context) error
}

type HTTPAvailabilityClient struct {
	baseURL        string
	client         *http.Client
	logger         *logrus.Logger
	circuitBreaker *gobreaker.CircuitBreaker
}

const (
	maxRetries     = 3
	requestTimeout = 3 * time.Second
)

func NewHTTPAvailabilityClient(baseURL string, logger *logrus.Logger) *HTTPAvailabilityClient {
	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "AvailabilityHTTPRequest",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(state)
			logger.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	return &HTTPAvailabilityClient{
		baseURL:        baseURL,
		client:         &http.Client{Timeout: requestTimeout},
		logger:         logger,
		circuitBreaker: circuitBreaker,
	}
}

func (c *HTTPAvailabilityClient) CheckAvailability(roomID string, checkIn, checkOut time.Time, guests int, ctx context.Context) (*data.CheckAvailabilityResult, error) {
	body, err := json.Marshal(data.CheckAvailability{
		RoomID:       roomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Guests:       guests,
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/api/availability/check"
	resp, err := c.performRequestWithCircuitBreaker(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, domain.UpstreamUnavailableError{Service: "availability-service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.UpstreamUnavailableError{
			Service: "availability-service",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var envelope struct {
		Success bool                          `json:"success"`
		Data    *data.CheckAvailabilityResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.UpstreamUnavailableError{Service: "availability-service", Err: err}
	}
	if envelope.Data == nil {
		return nil, domain.UpstreamUnavailableError{
			Service: "availability-service",
			Err:     fmt.Errorf("empty response body"),
		}
	}
	return envelope.Data, nil
}

func (c *HTTPAvailabilityClient) ReduceAvailability(roomID string, date time.Time, quantity int, ctx context.Context) error {
	return c.mutate(ctx, "reduce", roomID, date, quantity)
}

func (c *HTTPAvailabilityClient) RestoreAvailability(roomID string, date time.Time, quantity int, ctx context.Context) error {
	return c.mutate(ctx, "restore", roomID, date, quantity)
}

func (c *HTTPAvailabilityClient) mutate(ctx context.Context, operation, roomID string, date time.Time, quantity int) error {
	url := fmt.Sprintf("%s/api/availability/%s/%s/%s?quantity=%d",
		c.baseURL, operation, roomID, data.NormalizeDate(date).Format("2006-01-02"), quantity)
	resp, err := c.performRequestWithCircuitBreaker(ctx, http.MethodPost, url, nil)
	if err != nil {
		return domain.UpstreamUnavailableError{Service: "availability-service", Err: err}
	}
	defer resp.Body.Close()

	// 409 and 404 are real answers, not outages: the ledger refused the
	// mutation because the units are gone or because no inventory was ever
	// declared for that night.
	if resp.StatusCode == http.StatusConflict {
		return domain.ErrInsufficientInventory
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrAvailabilityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.UpstreamUnavailableError{
			Service: "availability-service",
			Err:     fmt.Errorf("%s returned status %d", operation, resp.StatusCode),
		}
	}
	return nil
}

func (c *HTTPAvailabilityClient) performRequestWithCircuitBreaker(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	operation := func() (interface{}, error) {
		var reader *bytes.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = bytes.NewReader(nil)
		}
		req, err := http.NewRequest(method, url, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := c.client.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return retryWithExponentialBackoff(ctx, maxRetries, operation)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from circuit breaker")
	}
	return resp, nil
}

func retryWithExponentialBackoff(ctx context.Context, maxRetries int, operation func() (interface{}, error)) (interface{}, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := operation()
		if err == nil {
			return result, nil
		}
		lastErr = err

		backoff := time.Duration(attempt*attempt) * 100 * time.Millisecond
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
