// Package transport moves opaque payloads between roles over NATS. It pools
// one publisher connection per server, injects the stream boundary markers,
// and runs the receive loop that lands inbound items in a durable queue.
package transport

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrBadEndpoint is returned for endpoint strings the pool cannot use.
var ErrBadEndpoint = errors.New("transport: invalid endpoint")

// Endpoint identifies one logical stream on the message fabric. The wire
// form is nats://host:port/subject; the server URL selects the pooled
// connection and the subject selects the stream on it.
type Endpoint struct {
	ServerURL string
	Subject   string
}

// ParseEndpoint splits an endpoint string into server URL and subject.
func ParseEndpoint(s string) (Endpoint, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %q: %v", ErrBadEndpoint, s, err)
	}
	if u.Scheme != "nats" {
		return Endpoint{}, fmt.Errorf("%w: %q: scheme must be nats", ErrBadEndpoint, s)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: %q: missing host", ErrBadEndpoint, s)
	}
	subject := strings.TrimPrefix(u.Path, "/")
	if subject == "" {
		return Endpoint{}, fmt.Errorf("%w: %q: missing subject", ErrBadEndpoint, s)
	}
	return Endpoint{
		ServerURL: u.Scheme + "://" + u.Host,
		Subject:   subject,
	}, nil
}

// String reassembles the endpoint in its wire form.
func (e Endpoint) String() string {
	return e.ServerURL + "/" + e.Subject
}
