package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

type publisherConn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes committed events as JSON on
// "<prefix>.<event name>" subjects.
type NATSPublisher struct {
	conn   publisherConn
	prefix string
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

// ConnectNATS dials url and returns a publisher plus the connection so the
// caller can drain it on shutdown.
func ConnectNATS(url string, prefix string, name string) (*NATSPublisher, *nats.Conn, error) {
	conn, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "connect nats %s", url)
	}
	return NewNATSPublisher(conn, prefix), conn, nil
}

func NewNATSPublisher(conn publisherConn, prefix string) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		prefix: strings.Trim(strings.TrimSpace(prefix), "."),
	}
}

func (p *NATSPublisher) Subject(eventName string) string {
	if p.prefix == "" {
		return eventName
	}
	return p.prefix + "." + eventName
}

func (p *NATSPublisher) Publish(ctx context.Context, event ports.Event) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	name := strings.TrimSpace(event.Name)
	if name == "" {
		return errors.New("event name is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "encode event")
	}
	if err := p.conn.Publish(p.Subject(name), payload); err != nil {
		return errs.Wrapf(err, "publish %s", name)
	}
	return nil
}

// Noop drops every event.
type Noop struct{}

var _ ports.EventPublisher = Noop{}

func (Noop) Publish(context.Context, ports.Event) error { return nil }
