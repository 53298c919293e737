package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("HHE")
	require.NoError(t, err)
	assert.Equal(t, VariantHHE, v)

	v, err = ParseVariant("HE")
	require.NoError(t, err)
	assert.Equal(t, VariantHE, v)

	_, err = ParseVariant("hhe")
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestParseDeliveryMode(t *testing.T) {
	for s, want := range map[string]DeliveryMode{
		"STREAMING":     ModeStreaming,
		"BATCHED_FILE":  ModeBatchedFile,
		"BULK_REPLAY_A": ModeBulkReplayA,
		"BULK_REPLAY_B": ModeBulkReplayB,
	} {
		m, err := ParseDeliveryMode(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, m)
		assert.Equal(t, s, m.String())
	}

	_, err := ParseDeliveryMode("streaming")
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestParseIntegerSize(t *testing.T) {
	for _, bits := range []int{8, 16, 32, 64, 128} {
		s, err := ParseIntegerSize(bits)
		require.NoError(t, err)
		assert.Equal(t, bits/8, s.Bytes())
	}
	_, err := ParseIntegerSize(12)
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestParamsValidate(t *testing.T) {
	good := Params{Variant: VariantHHE, Mode: ModeStreaming, IntSize: 8, BatchSize: 4, BatchNumber: 25}
	require.NoError(t, good.Validate())
	assert.Equal(t, 100, good.TotalItems())

	bad := good
	bad.BatchSize = 0
	assert.ErrorIs(t, bad.Validate(), ErrBadParams)

	bad = good
	bad.BatchNumber = -1
	assert.ErrorIs(t, bad.Validate(), ErrBadParams)

	bad = good
	bad.IntSize = 7
	assert.ErrorIs(t, bad.Validate(), ErrBadParams)
}

func TestBatchFillDrainReset(t *testing.T) {
	b := NewBatch(2)
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.Full())

	b.Add([]byte{1})
	b.Add([]byte{2})
	assert.True(t, b.Full())
	assert.Equal(t, [][]byte{{1}, {2}}, b.Items())

	assert.Panics(t, func() { b.Add([]byte{3}) })

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.Full())
}

func TestStreamFilename(t *testing.T) {
	stamp := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	p := Params{Variant: VariantHHE, IntSize: 8, BatchSize: 4, BatchNumber: 25}
	name := StreamFilename(stamp, p, StreamSymmetric)
	assert.Equal(t, "20260831_140509_HHE_BatchNr:25_BatchSize:4_IntSize:8_symmetric.bin", name)
}
