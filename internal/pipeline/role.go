package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"transpipe/internal/transport"
)

// Sender is the publish side of the transport pool. Roles hold the
// interface so tests can substitute an in-memory fake.
type Sender interface {
	Send(endpoint string, payload []byte) error
	SendStart(endpoint string) error
	SendEnd(endpoint string) error
}

// ReceiveFunc is the shape of transport.Receive. Receiving roles hold the
// function value for the same reason senders hold an interface.
type ReceiveFunc func(ctx context.Context, endpoint, path string, store transport.Store, opts transport.ReceiveOptions, logger zerolog.Logger) (int, error)

// defaultSettle is how long a streaming sender pauses after its START
// marker so the receiving side's subscription is warm before data flows.
const defaultSettle = 300 * time.Millisecond

func settleOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultSettle
	}
	return d
}
