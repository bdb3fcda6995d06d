package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN is the application protocol negotiated on QUIC connections when the TLS config names none.
const ALPN = "iec104"

// QUIC is a Transport carrying the byte stream on one bidirectional QUIC stream.
type QUIC struct {
	mu      sync.RWMutex
	address string
	tlsCfg  *tls.Config
	conn    *quic.Conn
	stream  *quic.Stream
	opts    options
}

var _ Transport = (*QUIC)(nil)

// NewQUIC creates a transport that dials address ("host:port") over QUIC with tlsCfg.
func NewQUIC(address string, tlsCfg *tls.Config, opts ...Option) *QUIC {
	cfg := &tls.Config{MinVersion: tls.VersionTLS13}
	if tlsCfg != nil {
		cfg = tlsCfg.Clone()
	}
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = []string{ALPN}
	}

	return &QUIC{address: address, tlsCfg: cfg, opts: newOptions(opts)}
}

// Address returns the remote address.
func (q *QUIC) Address() string {
	return q.address
}

// Connect dials the QUIC connection and opens the stream.
func (q *QUIC) Connect(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn != nil {
		return ErrAlreadyConnected
	}

	ctx, cancel := context.WithTimeout(ctx, q.opts.dialTimeout)
	defer cancel()

	conn, err := quic.DialAddr(ctx, q.address, q.tlsCfg, q.opts.quicConfig)
	if err != nil {
		return fmt.Errorf("connect %s: %w", q.address, err)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "failed to open stream")
		return fmt.Errorf("open stream %s: %w", q.address, err)
	}

	q.conn = conn
	q.stream = stream

	return nil
}

// Read reads from the stream.
func (q *QUIC) Read(p []byte) (int, error) {
	stream := q.getStream()
	if stream == nil {
		return 0, ErrNotConnected
	}

	return stream.Read(p)
}

// Write writes p to the stream within the write timeout.
func (q *QUIC) Write(p []byte) error {
	stream := q.getStream()
	if stream == nil {
		return ErrNotConnected
	}

	if q.opts.writeTimeout > 0 {
		if err := stream.SetWriteDeadline(time.Now().Add(q.opts.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if _, err := stream.Write(p); err != nil {
		return fmt.Errorf("write %s: %w", q.address, err)
	}

	return nil
}

// Disconnect closes the stream and the connection.
func (q *QUIC) Disconnect() error {
	q.mu.Lock()
	conn, stream := q.conn, q.stream
	q.conn, q.stream = nil, nil
	q.mu.Unlock()

	if conn == nil {
		return nil
	}

	_ = stream.Close()

	return conn.CloseWithError(0, "disconnect")
}

func (q *QUIC) getStream() *quic.Stream {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.stream
}
