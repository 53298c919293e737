package hecrypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrBadCiphertext is returned when ciphertext bytes cannot be decoded under
// the supplied parameter context.
var ErrBadCiphertext = errors.New("hecrypto: malformed ciphertext")

// Ciphertext is an ordered sequence of encrypted elements, one per plaintext
// bit, produced under a single parameter context. It is immutable once
// built; pipeline stages move it around as opaque frames via Marshal and
// Unmarshal.
type Ciphertext struct {
	elems [][]byte
}

// Len returns the number of elements.
func (c Ciphertext) Len() int { return len(c.elems) }

// Element returns the encoded bytes of element i.
func (c Ciphertext) Element(i int) []byte { return c.elems[i] }

// Equal reports structural equality: same element count and same per-element
// encoded bytes.
func (c Ciphertext) Equal(other Ciphertext) bool {
	if len(c.elems) != len(other.elems) {
		return false
	}
	for i := range c.elems {
		if !bytes.Equal(c.elems[i], other.elems[i]) {
			return false
		}
	}
	return true
}

// exportElement writes one element through the writer-oriented codec. This
// is the only way an element leaves memory; the encoding is owned by the
// crypto layer, not by callers.
func exportElement(w io.Writer, elem []byte) error {
	if _, err := w.Write(elem); err != nil {
		return fmt.Errorf("export element: %w", err)
	}
	return nil
}

// importElement reads one element for the given parameter context.
func importElement(r io.Reader, p Params) ([]byte, error) {
	elem := make([]byte, p.ElementSize())
	if _, err := io.ReadFull(r, elem); err != nil {
		return nil, fmt.Errorf("%w: short element read: %v", ErrBadCiphertext, err)
	}
	return elem, nil
}
