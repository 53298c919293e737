package hecrypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// Engine is the homomorphic-side collaborator. It encrypts one element per
// plaintext bit (most significant bit of each byte first) and decrypts an
// element sequence back into bytes.
type Engine struct {
	key    SecretKey
	params Params
}

// NewEngine binds an engine to the secret key and parameter context.
func NewEngine(key SecretKey, p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{key: key, params: p}, nil
}

// Params returns the engine's parameter context.
func (e *Engine) Params() Params { return e.params }

// Encrypt produces a ciphertext with len(plain)*8 elements. Each element is
// a fresh nonce plus the bit masked by one keystream byte.
func (e *Engine) Encrypt(plain []byte) (Ciphertext, error) {
	elems := make([][]byte, 0, len(plain)*8)
	for _, b := range plain {
		for shift := 7; shift >= 0; shift-- {
			bit := (b >> uint(shift)) & 1
			elem, err := e.encryptBit(bit)
			if err != nil {
				return Ciphertext{}, err
			}
			elems = append(elems, elem)
		}
	}
	return Ciphertext{elems: elems}, nil
}

// Decrypt reassembles the plaintext bytes from a ciphertext. The element
// count must be a multiple of eight.
func (e *Engine) Decrypt(ct Ciphertext) ([]byte, error) {
	if ct.Len()%8 != 0 {
		return nil, fmt.Errorf("%w: %d elements is not a whole number of bytes", ErrBadCiphertext, ct.Len())
	}

	plain := make([]byte, ct.Len()/8)
	for i := 0; i < ct.Len(); i++ {
		bit, err := e.decryptBit(ct.Element(i))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		plain[i/8] |= bit << uint(7-i%8)
	}
	return plain, nil
}

func (e *Engine) encryptBit(bit byte) ([]byte, error) {
	elem := make([]byte, e.params.ElementSize())
	nonce := elem[:chacha20.NonceSize]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("draw nonce: %w", err)
	}

	stream, err := chacha20.NewUnauthenticatedCipher(e.key[:], nonce)
	if err != nil {
		return nil, fmt.Errorf("init element cipher: %w", err)
	}
	stream.XORKeyStream(elem[chacha20.NonceSize:], []byte{bit})
	return elem, nil
}

func (e *Engine) decryptBit(elem []byte) (byte, error) {
	if len(elem) != e.params.ElementSize() {
		return 0, fmt.Errorf("%w: element size %d, want %d", ErrBadCiphertext, len(elem), e.params.ElementSize())
	}

	stream, err := chacha20.NewUnauthenticatedCipher(e.key[:], elem[:chacha20.NonceSize])
	if err != nil {
		return 0, fmt.Errorf("init element cipher: %w", err)
	}
	var out [1]byte
	stream.XORKeyStream(out[:], elem[chacha20.NonceSize:])
	return out[0] & 1, nil
}
