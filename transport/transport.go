// Package transport provides the byte stream adapters used by an IEC 104 session.
//
// A Transport is a connected, ordered, reliable byte stream. The session owns it: it connects it
// when the session opens, reads from it in the receive task, writes frames to it while holding the
// session lock, and disconnects it on close or on a fatal error. Disconnect must wake a Read that
// is blocked on the stream.
//
// Implementations:
//   - NewTCP:  plain TCP, the standard IEC 104 transport (port 2404).
//   - NewTLS:  TLS over TCP, as profiled by IEC 62351-3 (port 19998).
//   - NewQUIC: one bidirectional QUIC stream.
//   - NewConn: an already established net.Conn, e.g. one end of net.Pipe in tests.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/quic-go/quic-go"
)

// Transport is the byte stream an IEC 104 session runs on.
type Transport interface {
	// Connect establishes the stream. ctx bounds the connection attempt.
	Connect(ctx context.Context) error
	// Read reads up to len(p) bytes. A return of (0, nil) means the peer closed the stream.
	Read(p []byte) (int, error)
	// Write writes the whole of p or returns an error.
	Write(p []byte) error
	// Disconnect closes the stream and wakes a blocked Read. It is safe to call more than once.
	Disconnect() error
}

var (
	// ErrNotConnected indicates a Read or Write without an established stream.
	ErrNotConnected = errors.New("transport not connected")

	// ErrAlreadyConnected indicates a Connect on an established stream.
	ErrAlreadyConnected = errors.New("transport already connected")

	// ErrNoDialer indicates a Connect on a transport created from a net.Conn after it was disconnected.
	ErrNoDialer = errors.New("transport has no dialer")
)

// Default values of the transport options.
const (
	DefaultDialTimeout  = 3 * time.Second
	DefaultWriteTimeout = 5 * time.Second
	DefaultKeepAlive    = 15 * time.Second
)

type options struct {
	dialTimeout  time.Duration
	writeTimeout time.Duration
	keepAlive    time.Duration
	quicConfig   *quic.Config
}

func newOptions(opts []Option) options {
	o := options{
		dialTimeout:  DefaultDialTimeout,
		writeTimeout: DefaultWriteTimeout,
		keepAlive:    DefaultKeepAlive,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Option configures a transport.
type Option func(*options)

// WithDialTimeout bounds a connection attempt. Non-positive values are ignored.
//
// The default value is 3 seconds.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.dialTimeout = d
		}
	}
}

// WithWriteTimeout bounds a single Write. Zero disables the write deadline.
//
// The default value is 5 seconds.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.writeTimeout = d
		}
	}
}

// WithKeepAlive sets the TCP keep-alive period. A negative value disables keep-alive.
//
// The default value is 15 seconds.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) {
		o.keepAlive = d
	}
}

// WithQUICConfig sets the quic-go configuration used by NewQUIC.
func WithQUICConfig(cfg *quic.Config) Option {
	return func(o *options) {
		o.quicConfig = cfg
	}
}
