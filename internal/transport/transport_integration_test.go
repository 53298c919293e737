package transport

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests need a live NATS server. Run one locally and set
// NATS_URL=nats://127.0.0.1:4222 to enable them.

func natsEndpoint(t *testing.T, subject string) string {
	t.Helper()
	u := os.Getenv("NATS_URL")
	if u == "" {
		t.Skip("NATS_URL not set")
	}
	return u + "/" + subject
}

type memStore struct {
	items [][]byte
	fail  bool
}

func (m *memStore) Append(_ string, payload []byte) error {
	if m.fail {
		return assert.AnError
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.items = append(m.items, cp)
	return nil
}

func TestPoolSendReceiveRoundtrip(t *testing.T) {
	endpoint := natsEndpoint(t, "transpipe.test.roundtrip")

	pool := NewPool("transpipe-test", time.Second, zerolog.Nop())
	defer pool.Close()

	store := &memStore{}
	done := make(chan error, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var got int
	go func() {
		n, err := Receive(ctx, endpoint, "inbox", store, ReceiveOptions{ExpectEnd: true}, zerolog.Nop())
		got = n
		done <- err
	}()

	// Let the subscription land before publishing.
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, pool.SendStart(endpoint))
	payloads := [][]byte{{0x01}, {0x02, 0x03}, {0x04, 0x05, 0x06}}
	for _, p := range payloads {
		require.NoError(t, pool.Send(endpoint, p))
	}
	require.NoError(t, pool.SendEnd(endpoint))

	require.NoError(t, <-done)
	assert.Equal(t, len(payloads), got)
	assert.Equal(t, payloads, store.items)
}

func TestReceiveStopsAtMaxItems(t *testing.T) {
	endpoint := natsEndpoint(t, "transpipe.test.maxitems")

	pool := NewPool("transpipe-test", time.Second, zerolog.Nop())
	defer pool.Close()

	store := &memStore{}
	done := make(chan error, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var got int
	go func() {
		n, err := Receive(ctx, endpoint, "inbox", store, ReceiveOptions{MaxItems: 2}, zerolog.Nop())
		got = n
		done <- err
	}()

	time.Sleep(200 * time.Millisecond)

	for _, p := range [][]byte{{0x0a}, {0x0b}, {0x0c}} {
		require.NoError(t, pool.Send(endpoint, p))
	}

	require.NoError(t, <-done)
	assert.Equal(t, 2, got)
	assert.Len(t, store.items, 2)
}

func TestReceiveContinuesPastStoreFailure(t *testing.T) {
	endpoint := natsEndpoint(t, "transpipe.test.storefail")

	pool := NewPool("transpipe-test", time.Second, zerolog.Nop())
	defer pool.Close()

	store := &memStore{fail: true}
	done := make(chan error, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var got int
	go func() {
		n, err := Receive(ctx, endpoint, "inbox", store, ReceiveOptions{ExpectEnd: true}, zerolog.Nop())
		got = n
		done <- err
	}()

	time.Sleep(200 * time.Millisecond)

	require.NoError(t, pool.Send(endpoint, []byte{0x01}))
	require.NoError(t, pool.SendEnd(endpoint))

	require.NoError(t, <-done)
	assert.Equal(t, 0, got)
	assert.Empty(t, store.items)
}
