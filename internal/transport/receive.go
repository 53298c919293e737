package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Store is the durable sink a receive loop appends inbound items to.
// *fqueue.Queue satisfies it.
type Store interface {
	Append(path string, payload []byte) error
}

// ReceiveOptions bound a receive loop. MaxItems == 0 means no count limit;
// the loop then runs until an END marker (ExpectEnd) or context cancel.
type ReceiveOptions struct {
	MaxItems  int
	ExpectEnd bool
}

// Receive connects a subscriber to endpoint and persists every data message
// to store at path, in arrival order. START markers are ignored; an END
// marker stops the loop when ExpectEnd is set. Returns the number of data
// items stored.
//
// The subscription must exist before the producer publishes; deploy the
// receiving role first, as the producer's START warm-up assumes.
func Receive(ctx context.Context, endpoint, path string, store Store, opts ReceiveOptions, logger zerolog.Logger) (int, error) {
	ep, err := ParseEndpoint(endpoint)
	if err != nil {
		return 0, err
	}

	log := logger.With().Str("component", "transport").Str("endpoint", endpoint).Logger()

	nc, err := nats.Connect(ep.ServerURL, nats.Name("transpipe-receiver"))
	if err != nil {
		return 0, fmt.Errorf("connect %s: %w", ep.ServerURL, err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync(ep.Subject)
	if err != nil {
		return 0, fmt.Errorf("subscribe %s: %w", ep.Subject, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			log.Warn().Err(err).Msg("unsubscribe")
		}
	}()
	if err := sub.SetPendingLimits(-1, -1); err != nil {
		return 0, fmt.Errorf("set pending limits: %w", err)
	}

	received := 0
	for opts.MaxItems == 0 || received < opts.MaxItems {
		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			return received, fmt.Errorf("receive from %s: %w", endpoint, err)
		}

		switch classify(msg.Data, opts.ExpectEnd) {
		case kindStart:
			continue
		case kindEnd:
			log.Debug().Int("received", received).Msg("end marker")
			return received, nil
		}

		if err := store.Append(path, msg.Data); err != nil {
			log.Error().Err(err).Str("path", path).Msg("store inbound item")
			continue
		}
		received++
	}
	return received, nil
}
