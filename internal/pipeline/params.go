// Package pipeline runs the three-role batch protocol: an initiator
// produces and encrypts items, a relay transciphers them, and a resolver
// decrypts them into the plaintext output queue. Roles live in separate
// processes and meet only through the message fabric and the filesystem.
package pipeline

import (
	"errors"
	"fmt"
)

// ErrBadParams is returned for configuration values the pipeline rejects.
// All of these are startup errors; nothing touches I/O first.
var ErrBadParams = errors.New("pipeline: invalid parameters")

// Variant selects the cryptographic shape of a run.
type Variant int

const (
	// VariantHHE is the hybrid run: the initiator ships symmetric
	// ciphertext, the relay transciphers it into the homomorphic domain.
	VariantHHE Variant = iota
	// VariantHE skips the relay: the initiator encrypts homomorphically
	// and ships straight to the resolver.
	VariantHE
)

// ParseVariant maps a configuration string to its variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "HHE":
		return VariantHHE, nil
	case "HE":
		return VariantHE, nil
	default:
		return 0, fmt.Errorf("%w: unknown variant %q", ErrBadParams, s)
	}
}

func (v Variant) String() string {
	switch v {
	case VariantHHE:
		return "HHE"
	case VariantHE:
		return "HE"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// DeliveryMode selects how a role's outbound items cross process
// boundaries. The mode is decided once at startup; the hot loop never
// inspects strings.
type DeliveryMode int

const (
	// ModeStreaming sends every produced item through the transport pool
	// as it is produced.
	ModeStreaming DeliveryMode = iota
	// ModeBatchedFile appends every produced item to a shared queue file;
	// a later bulk replay drains it over the transport.
	ModeBatchedFile
	// ModeBulkReplayA is the one-shot drain of the latest symmetric-stage
	// file through the transport, END marker last.
	ModeBulkReplayA
	// ModeBulkReplayB is the same drain for the homomorphic-stage file.
	ModeBulkReplayB
)

// ParseDeliveryMode maps a configuration string to its mode.
func ParseDeliveryMode(s string) (DeliveryMode, error) {
	switch s {
	case "STREAMING":
		return ModeStreaming, nil
	case "BATCHED_FILE":
		return ModeBatchedFile, nil
	case "BULK_REPLAY_A":
		return ModeBulkReplayA, nil
	case "BULK_REPLAY_B":
		return ModeBulkReplayB, nil
	default:
		return 0, fmt.Errorf("%w: unknown delivery mode %q", ErrBadParams, s)
	}
}

func (m DeliveryMode) String() string {
	switch m {
	case ModeStreaming:
		return "STREAMING"
	case ModeBatchedFile:
		return "BATCHED_FILE"
	case ModeBulkReplayA:
		return "BULK_REPLAY_A"
	case ModeBulkReplayB:
		return "BULK_REPLAY_B"
	default:
		return fmt.Sprintf("DeliveryMode(%d)", int(m))
	}
}

// IntegerSize is the width of one raw item, in bits.
type IntegerSize int

// ParseIntegerSize validates a configured item width.
func ParseIntegerSize(bits int) (IntegerSize, error) {
	switch bits {
	case 8, 16, 32, 64, 128:
		return IntegerSize(bits), nil
	default:
		return 0, fmt.Errorf("%w: unsupported integer size %d bits", ErrBadParams, bits)
	}
}

// Bytes returns the item width in bytes.
func (s IntegerSize) Bytes() int { return int(s) / 8 }

// Params fixes one run's shape. All roles of a run must agree on these;
// they are baked into the persisted file names so a mismatch is visible.
type Params struct {
	Variant     Variant
	Mode        DeliveryMode
	IntSize     IntegerSize
	BatchSize   int
	BatchNumber int
}

// Validate rejects parameter sets before any I/O happens.
func (p Params) Validate() error {
	if p.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size %d", ErrBadParams, p.BatchSize)
	}
	if p.BatchNumber <= 0 {
		return fmt.Errorf("%w: batch number %d", ErrBadParams, p.BatchNumber)
	}
	if _, err := ParseIntegerSize(int(p.IntSize)); err != nil {
		return err
	}
	return nil
}

// TotalItems is the number of items one full run moves end to end.
func (p Params) TotalItems() int { return p.BatchSize * p.BatchNumber }
