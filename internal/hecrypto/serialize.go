package hecrypto

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Marshal serializes a ciphertext to a contiguous buffer: a 4-byte
// big-endian element count followed by each element through the
// writer-oriented exporter. The staging sink is an in-memory buffer that
// satisfies the same writer contract a file handle would.
func Marshal(ct Ciphertext, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(4 + ct.Len()*p.ElementSize())

	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(ct.Len()))
	buf.Write(count[:])

	for i := 0; i < ct.Len(); i++ {
		if err := exportElement(&buf, ct.Element(i)); err != nil {
			return nil, fmt.Errorf("marshal element %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal is the inverse of Marshal for ciphertext produced under the same
// parameter context. The context must be supplied by the caller; it travels
// out-of-band with the keys, never inline with the data.
func Unmarshal(b []byte, p Params) (Ciphertext, error) {
	if err := p.Validate(); err != nil {
		return Ciphertext{}, err
	}
	if len(b) < 4 {
		return Ciphertext{}, fmt.Errorf("%w: missing element count", ErrBadCiphertext)
	}

	n := binary.BigEndian.Uint32(b[:4])
	want := 4 + int(n)*p.ElementSize()
	if len(b) != want {
		return Ciphertext{}, fmt.Errorf("%w: %d bytes for %d elements, want %d", ErrBadCiphertext, len(b), n, want)
	}

	r := bytes.NewReader(b[4:])
	elems := make([][]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		elem, err := importElement(r, p)
		if err != nil {
			return Ciphertext{}, fmt.Errorf("unmarshal element %d: %w", i, err)
		}
		elems = append(elems, elem)
	}
	return Ciphertext{elems: elems}, nil
}
