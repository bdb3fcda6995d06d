package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"
)

// Conn is a Transport backed by a net.Conn.
type Conn struct {
	mu      sync.RWMutex
	conn    net.Conn
	address string
	dial    func(ctx context.Context) (net.Conn, error)
	opts    options
}

var _ Transport = (*Conn)(nil)

// NewTCP creates a transport that dials address ("host:port") over TCP.
func NewTCP(address string, opts ...Option) *Conn {
	c := &Conn{address: address, opts: newOptions(opts)}
	c.dial = func(ctx context.Context) (net.Conn, error) {
		dialer := &net.Dialer{KeepAlive: c.opts.keepAlive}
		return dialer.DialContext(ctx, "tcp", address)
	}

	return c
}

// NewTLS creates a transport that dials address ("host:port") over TCP and runs a TLS client
// handshake with tlsCfg. When tlsCfg has no ServerName, the host part of address is used.
func NewTLS(address string, tlsCfg *tls.Config, opts ...Option) *Conn {
	c := &Conn{address: address, opts: newOptions(opts)}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if tlsCfg != nil {
		cfg = tlsCfg.Clone()
	}
	if cfg.ServerName == "" && !cfg.InsecureSkipVerify {
		if host, _, err := net.SplitHostPort(address); err == nil {
			cfg.ServerName = host
		}
	}

	c.dial = func(ctx context.Context) (net.Conn, error) {
		dialer := &tls.Dialer{
			NetDialer: &net.Dialer{KeepAlive: c.opts.keepAlive},
			Config:    cfg,
		}
		return dialer.DialContext(ctx, "tcp", address)
	}

	return c
}

// NewConn wraps an established connection. Connect succeeds without I/O while conn is open;
// once disconnected the transport can not be connected again.
func NewConn(conn net.Conn, opts ...Option) *Conn {
	address := ""
	if conn != nil && conn.RemoteAddr() != nil {
		address = conn.RemoteAddr().String()
	}

	return &Conn{conn: conn, address: address, opts: newOptions(opts)}
}

// Address returns the remote address.
func (c *Conn) Address() string {
	return c.address
}

// Connect dials the remote address, bounded by ctx and the dial timeout.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dial == nil {
		if c.conn != nil {
			return nil
		}
		return ErrNoDialer
	}

	if c.conn != nil {
		return ErrAlreadyConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.dialTimeout)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.address, err)
	}
	c.conn = conn

	return nil
}

// Read reads from the connection.
func (c *Conn) Read(p []byte) (int, error) {
	conn := c.getConn()
	if conn == nil {
		return 0, ErrNotConnected
	}

	return conn.Read(p)
}

// Write writes p to the connection within the write timeout.
func (c *Conn) Write(p []byte) error {
	conn := c.getConn()
	if conn == nil {
		return ErrNotConnected
	}

	if c.opts.writeTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(c.opts.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if _, err := conn.Write(p); err != nil {
		return fmt.Errorf("write %s: %w", c.address, err)
	}

	return nil
}

// Disconnect closes the connection.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	return conn.Close()
}

func (c *Conn) getConn() net.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.conn
}
