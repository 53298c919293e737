package pipeline

import (
	"context"
	"crypto/rand"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"transpipe/internal/fqueue"
	"transpipe/internal/hecrypto"
	"transpipe/internal/telemetry"
)

// Initiator produces raw items, encrypts them, and moves them toward the
// relay (hybrid runs) or straight to the resolver (HE runs). The field
// wiring decides which; the role itself only knows one outbound endpoint
// and one outbound directory.
type Initiator struct {
	Params   Params
	Queue    *fqueue.Queue
	Sender   Sender
	Encrypt  hecrypto.Encryptor
	Endpoint string
	OutDir   string
	Drain    DrainOptions
	Settle   time.Duration
	Metrics  *telemetry.Metrics
	Timeline *telemetry.Timeline
	Log      zerolog.Logger

	warmed bool
}

// Run executes the initiator's side of the protocol for one full run.
func (i *Initiator) Run(ctx context.Context) error {
	if err := i.Params.Validate(); err != nil {
		return err
	}
	log := i.Log.With().Str("role", "initiator").Logger()

	switch i.Params.Mode {
	case ModeBulkReplayA:
		return i.replayLatest(log)
	case ModeBulkReplayB:
		return fmt.Errorf("%w: initiator does not run %s", ErrBadParams, i.Params.Mode)
	}

	var outPath string
	if i.Params.Mode == ModeBatchedFile {
		outPath = filepath.Join(i.OutDir, StreamFilename(time.Now(), i.Params, i.streamName()))
	}

	i.Timeline.Markf("initiator start mode=%s items=%d", i.Params.Mode, i.Params.TotalItems())
	batch := NewBatch(i.Params.BatchSize)
	for round := 1; round <= i.Params.BatchNumber; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for !batch.Full() {
			item := make([]byte, i.Params.IntSize.Bytes())
			if _, err := rand.Read(item); err != nil {
				return fmt.Errorf("produce item: %w", err)
			}
			batch.Add(item)
		}

		for idx, item := range batch.Items() {
			payload, err := i.Encrypt.Encrypt(item)
			if err != nil {
				log.Error().Err(err).Int("round", round).Int("item", idx).Msg("encrypt item")
				continue
			}
			if err := i.ship(payload, outPath); err != nil {
				log.Error().Err(err).Int("round", round).Int("item", idx).Msg("ship item")
			}
		}
		i.Timeline.Markf("round %d shipped", round)
		batch.Reset()
	}

	if i.Params.Mode == ModeStreaming {
		if err := i.Sender.SendEnd(i.Endpoint); err != nil {
			return fmt.Errorf("end marker: %w", err)
		}
	}
	i.Timeline.Mark("initiator done")
	return nil
}

// ship moves one encrypted payload out, per the delivery mode.
func (i *Initiator) ship(payload []byte, outPath string) error {
	switch i.Params.Mode {
	case ModeStreaming:
		return i.send(payload)
	case ModeBatchedFile:
		if err := i.Queue.Append(outPath, payload); err != nil {
			return err
		}
		i.Metrics.ItemsAppended.Inc()
		return nil
	default:
		return fmt.Errorf("%w: delivery mode %s", ErrBadParams, i.Params.Mode)
	}
}

// send publishes one payload, warming the connection with a START marker
// before the very first one. The settle pause gives the receiver's
// subscription time to land; it is a one-time cost per run.
func (i *Initiator) send(payload []byte) error {
	if !i.warmed {
		if err := i.Sender.SendStart(i.Endpoint); err != nil {
			return fmt.Errorf("start marker: %w", err)
		}
		time.Sleep(settleOrDefault(i.Settle))
		i.warmed = true
	}
	if err := i.Sender.Send(i.Endpoint, payload); err != nil {
		return err
	}
	i.Metrics.ItemsSent.Inc()
	i.Metrics.BytesSent.Add(float64(len(payload)))
	return nil
}

// replayLatest drains the newest completed outbound file, if any.
func (i *Initiator) replayLatest(log zerolog.Logger) error {
	path, err := fqueue.LatestFile(i.OutDir)
	if err != nil {
		return err
	}
	if path == "" {
		log.Info().Str("dir", i.OutDir).Msg("no completed file to replay")
		return nil
	}
	n, err := DrainFile(i.Queue, i.Sender, i.Endpoint, path, i.Drain, i.Metrics, log)
	if err != nil {
		return err
	}
	i.Timeline.Markf("replayed %d items from %s", n, filepath.Base(path))
	return nil
}

func (i *Initiator) streamName() string {
	if i.Params.Variant == VariantHE {
		return StreamHE
	}
	return StreamSymmetric
}
