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

// Relay sits between initiator and resolver in hybrid runs: it takes the
// symmetric-ciphertext stream in, transciphers each item into the
// homomorphic domain, and moves the result toward the resolver.
type Relay struct {
	Params      Params
	Queue       *fqueue.Queue
	Sender      Sender
	Receive     ReceiveFunc
	Transform   hecrypto.Transcipherer
	InEndpoint  string
	OutEndpoint string
	InDir       string
	OutDir      string
	// Wait blocks on the inbound directory until a file appears instead
	// of treating an empty lookup as nothing-to-do.
	Wait     bool
	Drain    DrainOptions
	Settle   time.Duration
	Metrics  *telemetry.Metrics
	Timeline *telemetry.Timeline
	Log      zerolog.Logger

	warmed bool
}

// Run executes the relay's side of the protocol for one full run.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.Params.Validate(); err != nil {
		return err
	}
	if r.Params.Variant != VariantHHE {
		return fmt.Errorf("%w: relay only participates in HHE runs", ErrBadParams)
	}
	log := r.Log.With().Str("role", "relay").Logger()
	r.Timeline.Markf("relay start mode=%s", r.Params.Mode)

	switch r.Params.Mode {
	case ModeStreaming:
		inPath, err := r.receiveInbound(ctx, transport.ReceiveOptions{
			MaxItems:  r.Params.TotalItems(),
			ExpectEnd: true,
		}, log)
		if err != nil {
			return err
		}
		if err := r.process(ctx, inPath, r.send, log); err != nil {
			return err
		}
		if err := r.Sender.SendEnd(r.OutEndpoint); err != nil {
			return fmt.Errorf("end marker: %w", err)
		}

	case ModeBatchedFile:
		inPath, err := r.latestInbound(ctx, log)
		if err != nil || inPath == "" {
			return err
		}
		outPath := filepath.Join(r.OutDir, StreamFilename(time.Now(), r.Params, StreamHE))
		emit := func(payload []byte) error {
			if err := r.Queue.Append(outPath, payload); err != nil {
				return err
			}
			r.Metrics.ItemsAppended.Inc()
			return nil
		}
		if err := r.process(ctx, inPath, emit, log); err != nil {
			return err
		}

	case ModeBulkReplayA:
		// The drained symmetric stream only lands here; a later
		// batched-file run picks it up.
		if _, err := r.receiveInbound(ctx, transport.ReceiveOptions{ExpectEnd: true}, log); err != nil {
			return err
		}

	case ModeBulkReplayB:
		path, err := fqueue.LatestFile(r.OutDir)
		if err != nil {
			return err
		}
		if path == "" {
			log.Info().Str("dir", r.OutDir).Msg("no completed file to replay")
			return nil
		}
		n, err := DrainFile(r.Queue, r.Sender, r.OutEndpoint, path, r.Drain, r.Metrics, log)
		if err != nil {
			return err
		}
		r.Timeline.Markf("replayed %d items from %s", n, filepath.Base(path))
	}

	r.Timeline.Mark("relay done")
	return nil
}

// receiveInbound lands the inbound stream in a fresh queue file and
// returns its path.
func (r *Relay) receiveInbound(ctx context.Context, opts transport.ReceiveOptions, log zerolog.Logger) (string, error) {
	inPath := filepath.Join(r.InDir, StreamFilename(time.Now(), r.Params, StreamSymmetric))
	n, err := r.Receive(ctx, r.InEndpoint, inPath, r.Queue, opts, log)
	if err != nil {
		return "", err
	}
	r.Metrics.ItemsReceived.Add(float64(n))
	r.Timeline.Markf("received %d items", n)
	return inPath, nil
}

// latestInbound resolves the inbound file for a batched-file run. An empty
// result without Wait is nothing-to-do, not an error.
func (r *Relay) latestInbound(ctx context.Context, log zerolog.Logger) (string, error) {
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

// process reads the inbound file in rounds, transciphers each item, and
// emits the result. Corruption is fatal for the reader; transform and emit
// failures skip the item and continue with the partial batch.
func (r *Relay) process(ctx context.Context, inPath string, emit func([]byte) error, log zerolog.Logger) error {
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
			out, terr := r.Transform.Transcipher(payload)
			if terr != nil {
				log.Error().Err(terr).Int("round", round).Msg("transcipher item")
				continue
			}
			batch.Add(out)
		}

		for _, item := range batch.Items() {
			if err := emit(item); err != nil {
				log.Error().Err(err).Int("round", round).Msg("emit item")
			}
		}
		r.Timeline.Markf("round %d relayed %d items", round, batch.Len())
		batch.Reset()
	}
	return nil
}

// send forwards one transformed payload, warming the outbound connection
// once per run.
func (r *Relay) send(payload []byte) error {
	if !r.warmed {
		if err := r.Sender.SendStart(r.OutEndpoint); err != nil {
			return fmt.Errorf("start marker: %w", err)
		}
		time.Sleep(settleOrDefault(r.Settle))
		r.warmed = true
	}
	if err := r.Sender.Send(r.OutEndpoint, payload); err != nil {
		return err
	}
	r.Metrics.ItemsSent.Inc()
	r.Metrics.BytesSent.Add(float64(len(payload)))
	return nil
}
