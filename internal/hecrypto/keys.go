package hecrypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// KeyBytes is the size of both key kinds.
const KeyBytes = 32

// Key file names inside the key directory. All three are required by the
// relay; the initiator and resolver load subsets depending on the variant.
const (
	StreamKeyFile = "key_stream.bin"
	SecretKeyFile = "sk_he.bin"
	ParamsFile    = "params_he.json"
)

// StreamKey is the symmetric stream-cipher key shared by the initiator and
// the relay.
type StreamKey [KeyBytes]byte

// SecretKey is the homomorphic-side secret key shared by the relay and the
// resolver.
type SecretKey [KeyBytes]byte

// GenerateStreamKey draws a fresh stream-cipher key.
func GenerateStreamKey() (StreamKey, error) {
	var k StreamKey
	if _, err := rand.Read(k[:]); err != nil {
		return StreamKey{}, fmt.Errorf("generate stream key: %w", err)
	}
	return k, nil
}

// GenerateSecretKey draws a fresh homomorphic secret key.
func GenerateSecretKey() (SecretKey, error) {
	var k SecretKey
	if _, err := rand.Read(k[:]); err != nil {
		return SecretKey{}, fmt.Errorf("generate secret key: %w", err)
	}
	return k, nil
}

// Fingerprint returns a short hex fingerprint of key material for logging,
// so operators can confirm two processes loaded the same keys without ever
// printing the keys themselves.
func Fingerprint(key []byte) string {
	sum := blake3.Sum256(key)
	return hex.EncodeToString(sum[:10])
}

// SaveKeys persists the full key set plus the parameter context under dir
// with owner-only permissions.
func SaveKeys(dir string, stream StreamKey, secret SecretKey, p Params) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, StreamKeyFile), stream[:], 0o600); err != nil {
		return fmt.Errorf("save stream key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SecretKeyFile), secret[:], 0o600); err != nil {
		return fmt.Errorf("save secret key: %w", err)
	}
	if err := SaveParams(p, filepath.Join(dir, ParamsFile)); err != nil {
		return fmt.Errorf("save params: %w", err)
	}
	return nil
}

// LoadStreamKey reads the stream-cipher key from dir.
func LoadStreamKey(dir string) (StreamKey, error) {
	var k StreamKey
	if err := readKeyFile(filepath.Join(dir, StreamKeyFile), k[:]); err != nil {
		return StreamKey{}, err
	}
	return k, nil
}

// LoadSecretKey reads the homomorphic secret key from dir.
func LoadSecretKey(dir string) (SecretKey, error) {
	var k SecretKey
	if err := readKeyFile(filepath.Join(dir, SecretKeyFile), k[:]); err != nil {
		return SecretKey{}, err
	}
	return k, nil
}

// LoadParamsDir reads the parameter context stored alongside the keys.
func LoadParamsDir(dir string) (Params, error) {
	return LoadParams(filepath.Join(dir, ParamsFile))
}

func readKeyFile(path string, dst []byte) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load key %s: %w", path, err)
	}
	if len(b) != len(dst) {
		return fmt.Errorf("key %s: got %d bytes, want %d", path, len(b), len(dst))
	}
	copy(dst, b)
	return nil
}
