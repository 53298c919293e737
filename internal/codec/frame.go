// Package codec implements the wire frame shared by the durable file queues
// and the batched-file transport path: a 4-byte big-endian length prefix
// followed by the payload bytes.
//
// A clean end of stream (zero bytes where a header is expected) is reported
// as io.EOF. Anything else that cuts a frame short is corruption, never EOF.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPayload caps the declared frame length. A header above this is treated
// as corrupt rather than as an allocation request.
const MaxPayload = 1<<30 - 1

var (
	// ErrTooLarge is returned by WriteFrame for payloads above MaxPayload.
	ErrTooLarge = errors.New("codec: payload exceeds frame size limit")

	// ErrCorrupt is returned when a frame header is present but cannot be
	// satisfied: truncated header, truncated payload, or implausible length.
	ErrCorrupt = errors.New("codec: corrupt frame")
)

// WriteFrame writes one length-prefixed frame to w. Empty payloads are valid
// and produce a header-only frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(payload))
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads the next frame from r. It returns io.EOF only when the
// stream ends exactly on a frame boundary; a partial header or a payload
// shorter than its declared length is reported as ErrCorrupt.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	length := binary.BigEndian.Uint32(hdr[:])
	if length > MaxPayload {
		return nil, fmt.Errorf("%w: declared length %d", ErrCorrupt, length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: payload truncated below declared length %d", ErrCorrupt, length)
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}
