package hecrypto

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20"
)

// ErrInvalidParams is returned when a parameter context fails validation.
var ErrInvalidParams = errors.New("hecrypto: invalid parameter set")

// Params is the shared parameter context required to (de)serialize
// ciphertext objects. It is process-wide configuration distributed
// out-of-band with the keys; it is never serialized inline with data.
type Params struct {
	// Security is the advertised security level in bits.
	Security int `json:"security"`
}

// DefaultParams returns the parameter set used when generating fresh keys.
func DefaultParams() Params {
	return Params{Security: 128}
}

// Validate rejects parameter sets the element codec cannot work with.
func (p Params) Validate() error {
	switch p.Security {
	case 80, 128:
		return nil
	default:
		return fmt.Errorf("%w: security level %d", ErrInvalidParams, p.Security)
	}
}

// ElementSize returns the fixed encoded size of one ciphertext element
// under this parameter set: a nonce plus one masked byte.
func (p Params) ElementSize() int {
	return chacha20.NonceSize + 1
}

// SaveParams writes the parameter context to path as JSON.
func SaveParams(p Params, path string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// LoadParams reads a parameter context previously written by SaveParams.
func LoadParams(path string) (Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("load params: %w", err)
	}
	var p Params
	if err := json.Unmarshal(b, &p); err != nil {
		return Params{}, fmt.Errorf("parse params %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
