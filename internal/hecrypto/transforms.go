package hecrypto

import "fmt"

// The pipeline moves opaque payload bytes between roles; these interfaces
// are the only view it has of the cryptography. Serialization of ciphertext
// objects happens inside the implementations so that every stage input and
// output is a flat byte payload.

// Encryptor turns a raw item into its outbound payload (initiator side).
type Encryptor interface {
	Encrypt(plain []byte) ([]byte, error)
}

// Transcipherer converts an inbound payload from one ciphertext domain to
// the other (relay side).
type Transcipherer interface {
	Transcipher(payload []byte) ([]byte, error)
}

// Decryptor turns an inbound payload back into plaintext (resolver side).
type Decryptor interface {
	Decrypt(payload []byte) ([]byte, error)
}

// HybridEncryptor implements the hybrid variant's initiator transform: items
// leave as symmetric stream-cipher bytes.
type HybridEncryptor struct {
	cipher *StreamCipher
}

// NewHybridEncryptor builds the initiator transform for the hybrid variant.
func NewHybridEncryptor(key StreamKey) *HybridEncryptor {
	return &HybridEncryptor{cipher: NewStreamCipher(key)}
}

// Encrypt seals one raw item under the stream key.
func (h *HybridEncryptor) Encrypt(plain []byte) ([]byte, error) {
	return h.cipher.Encrypt(plain)
}

// HEEncryptor implements the HE-only variant's initiator transform: items
// leave as serialized homomorphic ciphertexts, ready for the resolver.
type HEEncryptor struct {
	engine *Engine
}

// NewHEEncryptor builds the initiator transform for the HE-only variant.
func NewHEEncryptor(engine *Engine) *HEEncryptor {
	return &HEEncryptor{engine: engine}
}

// Encrypt produces a serialized homomorphic ciphertext for one raw item.
func (h *HEEncryptor) Encrypt(plain []byte) ([]byte, error) {
	ct, err := h.engine.Encrypt(plain)
	if err != nil {
		return nil, err
	}
	return Marshal(ct, h.engine.Params())
}

// HybridTranscipherer converts symmetric ciphertext payloads into serialized
// homomorphic ciphertexts. It holds both keys, mirroring the relay's trust
// position in the protocol.
type HybridTranscipherer struct {
	cipher *StreamCipher
	engine *Engine
}

// NewHybridTranscipherer builds the relay transform.
func NewHybridTranscipherer(streamKey StreamKey, engine *Engine) *HybridTranscipherer {
	return &HybridTranscipherer{
		cipher: NewStreamCipher(streamKey),
		engine: engine,
	}
}

// Transcipher strips the symmetric layer and re-encrypts into the
// homomorphic domain.
func (t *HybridTranscipherer) Transcipher(payload []byte) ([]byte, error) {
	plain, err := t.cipher.Decrypt(payload)
	if err != nil {
		return nil, fmt.Errorf("transcipher: %w", err)
	}
	ct, err := t.engine.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("transcipher: %w", err)
	}
	return Marshal(ct, t.engine.Params())
}

// HEDecryptor implements the resolver transform for both variants: payloads
// arrive as serialized homomorphic ciphertexts and leave as plaintext.
type HEDecryptor struct {
	engine *Engine
}

// NewHEDecryptor builds the resolver transform.
func NewHEDecryptor(engine *Engine) *HEDecryptor {
	return &HEDecryptor{engine: engine}
}

// Decrypt deserializes and decrypts one payload.
func (d *HEDecryptor) Decrypt(payload []byte) ([]byte, error) {
	ct, err := Unmarshal(payload, d.engine.Params())
	if err != nil {
		return nil, err
	}
	return d.engine.Decrypt(ct)
}

// Identity passes payloads through untouched. It stands in for the external
// transforms in tests and pipeline dry runs.
type Identity struct{}

// Encrypt returns the payload unchanged.
func (Identity) Encrypt(plain []byte) ([]byte, error) { return plain, nil }

// Transcipher returns the payload unchanged.
func (Identity) Transcipher(payload []byte) ([]byte, error) { return payload, nil }

// Decrypt returns the payload unchanged.
func (Identity) Decrypt(payload []byte) ([]byte, error) { return payload, nil }
