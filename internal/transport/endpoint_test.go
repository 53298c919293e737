package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	ep, err := ParseEndpoint("nats://127.0.0.1:4222/transpipe.symmetric")
	require.NoError(t, err)
	assert.Equal(t, "nats://127.0.0.1:4222", ep.ServerURL)
	assert.Equal(t, "transpipe.symmetric", ep.Subject)
	assert.Equal(t, "nats://127.0.0.1:4222/transpipe.symmetric", ep.String())
}

func TestParseEndpointHostOnly(t *testing.T) {
	ep, err := ParseEndpoint("nats://broker.internal/he")
	require.NoError(t, err)
	assert.Equal(t, "nats://broker.internal", ep.ServerURL)
	assert.Equal(t, "he", ep.Subject)
}

func TestParseEndpointRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"wrong scheme", "tcp://127.0.0.1:4222/subject"},
		{"missing host", "nats:///subject"},
		{"missing subject", "nats://127.0.0.1:4222"},
		{"empty subject path", "nats://127.0.0.1:4222/"},
		{"garbage", "::not-a-url::"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEndpoint(tc.in)
			assert.ErrorIs(t, err, ErrBadEndpoint)
		})
	}
}
