package hecrypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// ErrBadSymmetric is returned when symmetric ciphertext bytes are too short
// to carry their nonce.
var ErrBadSymmetric = errors.New("hecrypto: malformed symmetric ciphertext")

// StreamCipher encrypts raw blocks with a ChaCha20 keystream. Each item is
// sealed independently under a fresh nonce, so items remain individually
// decryptable regardless of arrival order.
type StreamCipher struct {
	key StreamKey
}

// NewStreamCipher creates a cipher bound to the shared stream key.
func NewStreamCipher(key StreamKey) *StreamCipher {
	return &StreamCipher{key: key}
}

// Encrypt returns nonce || keystream-XOR(plain).
func (c *StreamCipher) Encrypt(plain []byte) ([]byte, error) {
	nonce := make([]byte, chacha20.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("draw nonce: %w", err)
	}

	stream, err := chacha20.NewUnauthenticatedCipher(c.key[:], nonce)
	if err != nil {
		return nil, fmt.Errorf("init stream cipher: %w", err)
	}

	out := make([]byte, chacha20.NonceSize+len(plain))
	copy(out, nonce)
	stream.XORKeyStream(out[chacha20.NonceSize:], plain)
	return out, nil
}

// Decrypt inverts Encrypt.
func (c *StreamCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < chacha20.NonceSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadSymmetric, len(ciphertext))
	}

	stream, err := chacha20.NewUnauthenticatedCipher(c.key[:], ciphertext[:chacha20.NonceSize])
	if err != nil {
		return nil, fmt.Errorf("init stream cipher: %w", err)
	}

	plain := make([]byte, len(ciphertext)-chacha20.NonceSize)
	stream.XORKeyStream(plain, ciphertext[chacha20.NonceSize:])
	return plain, nil
}
