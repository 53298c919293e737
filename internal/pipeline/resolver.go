package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"transpipe/internal/fqueue"
	"transpipe/internal/hecrypto"
	"transpipe/internal/telemetry"
	"transpipe/internal/transport"
)

// Resolver is the terminal role: it takes the homomorphic-ciphertext
// stream in, decrypts each item, and appends the plaintext to its output
// queue. Nothing is forwarded further.
type Resolver struct {
	Params     Params
	Queue      *fqueue.Queue
	Receive    ReceiveFunc
	Decrypt    hecrypto.Decryptor
	InEndpoint string
	InDir      string
	OutDir     string
	// Wait blocks on the inbound directory until a file appears instead
	// of treating an empty lookup as nothing-to-do.
	Wait     bool
	Metrics  *telemetry.Metrics
	Timeline *telemetry.Timeline
	Log      zerolog.Logger
}

// Run executes the resolver's side of the protocol for one full run.
func (r *Resolver) Run(ctx context.Context) error {
	if err := r.Params.Validate(); err != nil {
		return err
	}
	log := r.Log.With().Str("role", "resolver").Logger()
	r.Timeline.Markf("resolver start mode=%s", r.Params.Mode)

	var inPath string
	switch r.Params.Mode {
	case ModeStreaming:
		p, err := r.receiveInbound(ctx, transport.ReceiveOptions{
			MaxItems:  r.Params.TotalItems(),
			ExpectEnd: true,
		}, log)
		if err != nil {
			return err
		}
		inPath = p

	case ModeBulkReplayB:
		// A replayed file has no fixed item count; the END marker is
		// the only terminator.
		p, err := r.receiveInbound(ctx, transport.ReceiveOptions{ExpectEnd: true}, log)
		if err != nil {
			return err
		}
		inPath = p

	case ModeBatchedFile:
		p, err := r.latestInbound(ctx, log)
		if err != nil || p == "" {
			return err
		}
		inPath = p

	case ModeBulkReplayA:
		return fmt.Errorf("%w: resolver does not run %s", ErrBadParams, r.Params.Mode)
	}

	outPath := filepath.Join(r.OutDir, StreamFilename(time.Now(), r.Params, StreamPlain))
	if err := r.process(ctx, inPath, outPath, log); err != nil {
		return err
	}
	r.Timeline.Mark("resolver done")
	return nil
}

func (r *Resolver) receiveInbound(ctx context.Context, opts transport.ReceiveOptions, log zerolog.Logger) (string, error) {
	inPath := filepath.Join(r.InDir, StreamFilename(time.Now(), r.Params, StreamHE))
	n, err := r.Receive(ctx, r.InEndpoint, inPath, r.Queue, opts, log)
	if err != nil {
		return "", err
	}
	r.Metrics.ItemsReceived.Add(float64(n))
	r.Timeline.Markf("received %d items", n)
	return inPath, nil
}

func (r *Resolver) latestInbound(ctx context.Context, log zerolog.Logger) (string, error) {
	if r.Wait {
		return fqueue.AwaitLatest(ctx, r.InDir, log)
	}
	path, err := fqueue.LatestFile(r.InDir)
	if err != nil {
		return "", err
	}
	if path == "" {
		log.Info().Str("dir", r.InDir).Msg("nothing to do yet")
	}
	return path, nil
}

// process reads the inbound file in rounds, decrypts each item, and
// appends the plaintext to outPath in arrival order.
func (r *Resolver) process(ctx context.Context, inPath, outPath string, log zerolog.Logger) error {
	reader, err := r.Queue.Open(inPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	batch := NewBatch(r.Params.BatchSize)
	drained := false
	for round := 1; round <= r.Params.BatchNumber && !drained; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for !batch.Full() {
			payload, err := reader.Next()
			if errors.Is(err, io.EOF) {
				drained = true
				break
			}
			if err != nil {
				r.Metrics.CorruptFrames.Inc()
				return fmt.Errorf("read %s: %w", inPath, err)
			}
			plain, derr := r.Decrypt.Decrypt(payload)
			if derr != nil {
				log.Error().Err(derr).Int("round", round).Msg("decrypt item")
				continue
			}
			batch.Add(plain)
		}

		for _, item := range batch.Items() {
			if err := r.Queue.Append(outPath, item); err != nil {
				log.Error().Err(err).Int("round", round).Msg("append plaintext")
				continue
			}
			r.Metrics.ItemsAppended.Inc()
		}
		r.Timeline.Markf("round %d resolved %d items", round, batch.Len())
		batch.Reset()
	}
	return nil
}
