package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Pool reuses one publisher connection per server URL. Connections are
// created lazily on first send and live until Close, which flushes pending
// publishes within a bounded linger so a final send is not dropped by a
// process exiting right after it.
//
// A Pool is a process-scoped service object; construct one per process and
// pass it to whoever sends.
type Pool struct {
	name   string
	linger time.Duration
	log    zerolog.Logger

	mu    sync.RWMutex
	conns map[string]*nats.Conn
}

// NewPool creates an empty pool. name labels the connections on the server
// for diagnostics; linger bounds the flush on Close.
func NewPool(name string, linger time.Duration, logger zerolog.Logger) *Pool {
	return &Pool{
		name:   name,
		linger: linger,
		log:    logger.With().Str("component", "transport").Logger(),
		conns:  make(map[string]*nats.Conn),
	}
}

// Send publishes payload to the endpoint's subject, creating the server
// connection on first use. Delivery is fire-and-forget; a send that cannot
// be enqueued at all is an error.
func (p *Pool) Send(endpoint string, payload []byte) error {
	ep, err := ParseEndpoint(endpoint)
	if err != nil {
		return err
	}

	nc, err := p.conn(ep.ServerURL)
	if err != nil {
		return err
	}
	if err := nc.Publish(ep.Subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", endpoint, err)
	}
	return nil
}

// SendStart publishes the stream-start marker to endpoint.
func (p *Pool) SendStart(endpoint string) error {
	return p.Send(endpoint, []byte{MarkerStart})
}

// SendEnd publishes the stream-end marker to endpoint.
func (p *Pool) SendEnd(endpoint string) error {
	return p.Send(endpoint, []byte{MarkerEnd})
}

// conn returns the pooled connection for serverURL, dialing it if this is
// the first use. Double-checked so concurrent senders race to at most one
// dial per server.
func (p *Pool) conn(serverURL string) (*nats.Conn, error) {
	p.mu.RLock()
	nc, ok := p.conns[serverURL]
	p.mu.RUnlock()
	if ok {
		return nc, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if nc, ok := p.conns[serverURL]; ok {
		return nc, nil
	}

	nc, err := nats.Connect(serverURL,
		nats.Name(p.name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", serverURL, err)
	}
	p.log.Info().Str("server", serverURL).Msg("publisher connection established")
	p.conns[serverURL] = nc
	return nc, nil
}

// Close flushes every connection within the linger bound and tears it down.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for server, nc := range p.conns {
		if err := nc.FlushTimeout(p.linger); err != nil {
			p.log.Warn().Err(err).Str("server", server).Msg("flush on close")
		}
		nc.Close()
		delete(p.conns, server)
	}
}
