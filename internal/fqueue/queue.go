package fqueue

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"transpipe/internal/codec"
)

// Queue is the durable path queue service. One instance is shared by all
// components of a process; cross-process coordination happens only through
// the filesystem itself.
type Queue struct {
	locks *Locker
	log   zerolog.Logger
}

// New creates a queue service with its own lock registry.
func New(logger zerolog.Logger) *Queue {
	return &Queue{
		locks: NewLocker(),
		log:   logger.With().Str("component", "fqueue").Logger(),
	}
}

// Locks exposes the per-path lock registry. Readers share it so that a
// reader and a writer on the same path never interleave mid-frame.
func (q *Queue) Locks() *Locker { return q.locks }

// Append writes one frame to the end of the stream at path, creating parent
// directories and the file as needed. The write is flushed to disk before
// the path lock is released.
func (q *Queue) Append(path string, payload []byte) error {
	mu := q.locks.ForPath(path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create queue directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open queue file %s: %w", path, err)
	}
	defer f.Close()

	if err := codec.WriteFrame(f, payload); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}

// Truncate empties the stream at path. Used after a bulk replay when the
// caller asked for remove-after-send.
func (q *Queue) Truncate(path string) error {
	mu := q.locks.ForPath(path)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("truncate %s: %w", path, err)
	}
	return f.Close()
}

// Open returns a forward-only reader over the finished or growing stream at
// path. The reader shares the queue's path lock so a concurrent Append on
// the same path cannot interleave with a read.
func (q *Queue) Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queue file %s: %w", path, err)
	}
	return &Reader{
		mu:   q.locks.ForPath(path),
		f:    f,
		br:   bufio.NewReaderSize(f, 64*1024),
		path: path,
	}, nil
}

// Reader yields the frames of one stream in write order. A corrupt frame is
// fatal for the reader; it is never folded into end-of-stream.
type Reader struct {
	mu   *sync.Mutex
	f    *os.File
	br   *bufio.Reader
	path string
}

// Next returns the next payload, or io.EOF at the end of the stream.
func (r *Reader) Next() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := codec.ReadFrame(r.br)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return payload, nil
}

// Reset rewinds to the start of the stream so it can be replayed.
func (r *Reader) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", r.path, err)
	}
	r.br.Reset(r.f)
	return nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
