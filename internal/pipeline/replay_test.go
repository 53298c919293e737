package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transpipe/internal/fqueue"
	"transpipe/internal/telemetry"
)

func drainFixture(t *testing.T, q *fqueue.Queue) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "20260831_120000_HHE_BatchNr:2_BatchSize:4_IntSize:8_symmetric.bin")
	for _, p := range [][]byte{{1}, {2, 2}, {3, 3, 3}} {
		require.NoError(t, q.Append(path, p))
	}
	return path
}

func dataPayloads(calls []sentMsg) [][]byte {
	var out [][]byte
	for _, c := range calls {
		if c.kind == "data" {
			out = append(out, c.payload)
		}
	}
	return out
}

func TestDrainFileSendsAllThenEnd(t *testing.T) {
	q := fqueue.New(zerolog.Nop())
	path := drainFixture(t, q)
	sender := &fakeSender{}

	n, err := DrainFile(q, sender, "nats://127.0.0.1:4222/sym", path, DrainOptions{}, telemetry.NewMetrics("test"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, sender.calls, 4)
	assert.Equal(t, [][]byte{{1}, {2, 2}, {3, 3, 3}}, dataPayloads(sender.calls))
	assert.Equal(t, "end", sender.calls[3].kind)
}

func TestDrainFileIdempotentWithoutTruncate(t *testing.T) {
	q := fqueue.New(zerolog.Nop())
	path := drainFixture(t, q)
	m := telemetry.NewMetrics("test")

	first := &fakeSender{}
	n, err := DrainFile(q, first, "nats://127.0.0.1:4222/sym", path, DrainOptions{}, m, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	second := &fakeSender{}
	n, err = DrainFile(q, second, "nats://127.0.0.1:4222/sym", path, DrainOptions{}, m, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.Equal(t, dataPayloads(first.calls), dataPayloads(second.calls))
}

func TestDrainFileRemoveAfterSendEmptiesSecondDrain(t *testing.T) {
	q := fqueue.New(zerolog.Nop())
	path := drainFixture(t, q)
	m := telemetry.NewMetrics("test")

	n, err := DrainFile(q, &fakeSender{}, "nats://127.0.0.1:4222/sym", path, DrainOptions{RemoveAfterSend: true}, m, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	second := &fakeSender{}
	n, err = DrainFile(q, second, "nats://127.0.0.1:4222/sym", path, DrainOptions{}, m, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, dataPayloads(second.calls))
}

func TestDrainFileArchiveWritesCompressedCopy(t *testing.T) {
	q := fqueue.New(zerolog.Nop())
	path := drainFixture(t, q)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = DrainFile(q, &fakeSender{}, "nats://127.0.0.1:4222/sym", path,
		DrainOptions{ArchiveDrained: true, RemoveAfterSend: true}, telemetry.NewMetrics("test"), zerolog.Nop())
	require.NoError(t, err)

	archived := filepath.Join(filepath.Dir(path), "archive", filepath.Base(path)+".zst")
	compressed, err := os.ReadFile(archived)
	require.NoError(t, err)
	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	restored, err := dec.DecodeAll(compressed, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, restored)

	// Archive happened before the truncate.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
