package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0xFF},
		[]byte("hello"),
		bytes.Repeat([]byte{0xAB}, 64*1024),
	}

	var buf bytes.Buffer
	for _, p := range payloads {
		require.NoError(t, WriteFrame(&buf, p))
	}

	for _, want := range payloads {
		got, err := ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x00, 0x00}))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("complete payload")))
	b := buf.Bytes()

	_, err := ReadFrame(bytes.NewReader(b[:len(b)-3]))
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestReadFrameSuspiciousLength(t *testing.T) {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], MaxPayload+1)

	_, err := ReadFrame(bytes.NewReader(hdr[:]))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestWriteFrameTooLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates a payload just past the 1 GiB ceiling")
	}

	err := WriteFrame(io.Discard, make([]byte, MaxPayload+1))
	assert.ErrorIs(t, err, ErrTooLarge)
}
