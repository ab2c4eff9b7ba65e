// Package bus publishes store-change notifications over NATS JetStream so
// operator UIs and downstream consumers can react to blueprint and
// assignment mutations without polling.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event is the envelope published for every store mutation. Record carries
// the full mutated value on saves and is omitted on removals.
type Event struct {
	Op     string    `json:"op"`
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Record any       `json:"record,omitempty"`
}

// Bus wraps a NATS JetStream connection for publishing change events.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect creates a Bus connected to the provided NATS endpoint.
func Connect(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close drains the connection so queued events flush, falling back to an
// immediate close when draining fails.
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish stamps the event and sends it to the given subject.
func (b *Bus) Publish(ctx context.Context, subj string, ev Event) error {
	if b == nil {
		return errors.New("nil bus")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if _, err := b.js.Publish(subj, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subj, err)
	}
	return nil
}
