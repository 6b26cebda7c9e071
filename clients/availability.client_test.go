package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-service/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newClientAgainst(t *testing.T, status int) *HTTPAvailabilityClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHTTPAvailabilityClient(server.URL, logger)
}

func TestReduceAvailabilityMapsConflict(t *testing.T) {
	client := newClientAgainst(t, http.StatusConflict)

	err := client.ReduceAvailability("R1", time.Now(), 1, context.Background())
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
}

func TestReduceAvailabilityMapsUndeclaredNight(t *testing.T) {
	client := newClientAgainst(t, http.StatusNotFound)

	err := client.ReduceAvailability("R1", time.Now(), 1, context.Background())
	assert.ErrorIs(t, err, domain.ErrAvailabilityNotFound)
}

func TestReduceAvailabilityServerErrorIsUpstream(t *testing.T) {
	client := newClientAgainst(t, http.StatusInternalServerError)

	err := client.ReduceAvailability("R1", time.Now(), 1, context.Background())
	var upstream domain.UpstreamUnavailableError
	assert.ErrorAs(t, err, &upstream)
}
