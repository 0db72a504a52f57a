package badge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/nats-io/nats.go"
)

// Channel relays scoreboard updates to the badge responder over a
// NATS request/reply round-trip. The responder's reply carries the
// tab id that keys the background-load lookup.
type Channel struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
}

// NewChannel creates a badge channel on an existing connection
func NewChannel(conn *nats.Conn, subject string, timeout time.Duration) *Channel {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Channel{conn: conn, subject: subject, timeout: timeout}
}

// Send publishes the update and waits for the responder's ack
func (c *Channel) Send(ctx context.Context, update vitals.Update) (vitals.Ack, error) {
	data, err := json.Marshal(update)
	if err != nil {
		return vitals.Ack{}, fmt.Errorf("failed to serialize badge update: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.conn.RequestWithContext(reqCtx, c.subject, data)
	if err != nil {
		return vitals.Ack{}, fmt.Errorf("badge request failed: %w", err)
	}

	var ack vitals.Ack
	if err := json.Unmarshal(msg.Data, &ack); err != nil {
		return vitals.Ack{}, fmt.Errorf("failed to parse badge ack: %w", err)
	}

	return ack, nil
}
