package events

import (
	"encoding/json"
	"fmt"

	"booking-service/data"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Publisher pushes reservation lifecycle events for the notification service.
// Publishing is best-effort: a failed publish never fails the reservation
// operation that produced it.
type Publisher interface {
	PublishReservationEvent(event *data.ReservationEvent) error
	Close()
}

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *logrus.Logger
}

func NewNATSPublisher(host, port, user, pass, subject string, logger *logrus.Logger) (*NATSPublisher, error) {
	url := fmt.Sprintf("nats://%s:%s@%s:%s", user, pass, host, port)
	conn, err := nats.Connect(url)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *NATSPublisher) PublishReservationEvent(event *data.ReservationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.WithFields(logrus.Fields{
			"subject":        p.subject,
			"event_type":     string(event.Type),
			"reservation_id": event.ReservationID,
		}).Error("Error publishing reservation event: ", err)
		return err
	}
	return nil
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// NoopPublisher is wired when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishReservationEvent(*data.ReservationEvent) error { return nil }
func (NoopPublisher) Close()                                              {}
