package master

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-iec104/iec104"
	"github.com/arloliu/go-iec104/logger"
	"github.com/arloliu/go-iec104/transport"
)

// DefaultPort is the registered TCP port of IEC 60870-5-104.
const DefaultPort = 2404

// Config represents the configuration parameters of an IEC 104 master session.
type Config struct {
	mu sync.RWMutex

	// host specifies the host of the remote controlled station.
	host string

	// port specifies the TCP port number of the remote controlled station.
	port int

	// commonAddr is the common address of ASDU put into every outgoing ASDU.
	// Defaults to 1.
	commonAddr uint16

	// originator is the originator address put into every outgoing ASDU.
	// Defaults to 0.
	originator uint8

	// orderCheck indicates whether the send sequence number of received I-format frames is checked against VR.
	// Defaults to true.
	orderCheck bool

	// t1Timeout defines the timeout of a STARTDT, STOPDT or TESTFR confirmation.
	// Defaults to 6 seconds.
	t1Timeout time.Duration
	// t2Timeout defines how long received I-format frames may stay unacknowledged.
	// Defaults to 8 seconds.
	t2Timeout time.Duration
	// t3Timeout defines the idle time after which a TESTFR is sent.
	// Defaults to 10 seconds.
	t3Timeout time.Duration
	// tickInterval is the resolution of the t1, t2 and t3 countdowns.
	// Defaults to 1 second.
	tickInterval time.Duration

	// windowK is the maximum number of unacknowledged I-format frames sent.
	// Defaults to 12.
	windowK int
	// windowW is the number of received I-format frames after which an S-format acknowledgment is sent.
	// Defaults to 8.
	windowW int

	// connectTimeout defines the timeout for establishing the transport. It should be between 0.1 and 30 seconds.
	// Defaults to 3 seconds.
	connectTimeout time.Duration

	// closeTimeout defines the timeout for waiting the session tasks to terminate on Close.
	// Defaults to 3 seconds.
	closeTimeout time.Duration

	// transport is the byte stream of the session. When nil a TCP transport to host:port is created.
	transport transport.Transport

	// logger provides a logger instance for logging protocol events and errors.
	logger logger.Logger
}

// NewConfig creates a new master session configuration with the given host, port number, and optional
// functional options.
//
// It initializes a Config struct with default values and then applies the provided options to customize
// the configuration.
//
// Returns a pointer to the initialized Config and an error if any occurred during the configuration process.
func NewConfig(host string, port int, opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		commonAddr:     1,
		originator:     0,
		orderCheck:     true,
		t1Timeout:      iec104.DefaultT1,
		t2Timeout:      iec104.DefaultT2,
		t3Timeout:      iec104.DefaultT3,
		tickInterval:   iec104.DefaultTickInterval,
		windowK:        iec104.DefaultWindowK,
		windowW:        iec104.DefaultWindowW,
		connectTimeout: 3 * time.Second,
		closeTimeout:   3 * time.Second,
		logger:         logger.GetLogger(),
	}

	if err := withRemoteHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Address returns the remote address in "host:port" form.
func (cfg *Config) Address() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
}

func (cfg *Config) CommonAddress() uint16 {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.commonAddr
}

func (cfg *Config) OriginatorAddress() uint8 {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.originator
}

func (cfg *Config) OrderCheck() bool {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.orderCheck
}

func (cfg *Config) T1Timeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.t1Timeout
}

func (cfg *Config) T2Timeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.t2Timeout
}

func (cfg *Config) T3Timeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.t3Timeout
}

func (cfg *Config) TickInterval() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.tickInterval
}

// Window returns the k and w window parameters.
func (cfg *Config) Window() (k int, w int) {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.windowK, cfg.windowW
}

func (cfg *Config) ConnectTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.connectTimeout
}

func (cfg *Config) CloseTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.closeTimeout
}

// Transport returns the configured transport, or a TCP transport to Address when none was set.
func (cfg *Config) Transport() transport.Transport {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	if cfg.transport == nil {
		cfg.transport = transport.NewTCP(
			net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port)),
			transport.WithDialTimeout(cfg.connectTimeout),
		)
	}

	return cfg.transport
}

func (cfg *Config) Logger() logger.Logger {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.logger
}

// timerTicks returns t1, t2 and t3 in ticks of the tick interval.
func (cfg *Config) timerTicks() (t1 int, t2 int, t3 int) {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return iec104.TicksFor(cfg.t1Timeout, cfg.tickInterval),
		iec104.TicksFor(cfg.t2Timeout, cfg.tickInterval),
		iec104.TicksFor(cfg.t3Timeout, cfg.tickInterval)
}

// ConfigOption represents a functional option for configuring a Config.
type ConfigOption interface {
	apply(*Config) error
}

type configOptFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (c *configOptFunc) apply(cfg *Config) error { return c.applyFunc(cfg) }

func newConfigOptFunc(name string, f func(*Config) error) *configOptFunc {
	return &configOptFunc{
		name:      name,
		applyFunc: f,
	}
}

// withRemoteHost sets the host of the remote station.
// It returns a ConfigOption that validates the host and updates the configuration.
// An error is returned if the configuration is nil.
func withRemoteHost(host string) ConfigOption {
	return newConfigOptFunc("withRemoteHost", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		// Check if it's a valid IP address
		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		// If not an IP, check if it's a valid domain name
		host = strings.TrimPrefix(host, ".")
		host = strings.TrimSuffix(host, ".")
		if _, err := net.LookupHost(host); err == nil {
			cfg.host = host
			return nil
		}

		return errors.New("invalid host")
	})
}

// withPort sets the TCP port number of the remote station.
// An error is returned if the port number is out of the valid range (1-65535) or if the configuration is nil.
func withPort(port int) ConfigOption {
	return newConfigOptFunc("withPort", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if port < 1 || port > 65535 {
			return errors.New("port is out of range [1, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithCommonAddress sets the common address of ASDU used in every outgoing ASDU.
// An error is returned if the address is 0 (unused) or if the configuration is nil.
//
// The default value is 1.
func WithCommonAddress(addr uint16) ConfigOption {
	return newConfigOptFunc("WithCommonAddress", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if addr == 0 {
			return errors.New("common address out of range [1, 65535]")
		}
		cfg.commonAddr = addr

		return nil
	})
}

// WithOriginatorAddress sets the originator address used in every outgoing ASDU.
//
// The default value is 0 (default originator).
func WithOriginatorAddress(addr uint8) ConfigOption {
	return newConfigOptFunc("WithOriginatorAddress", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.originator = addr

		return nil
	})
}

// WithOrderCheck enables or disables the check of the send sequence number of received I-format frames.
//
// When disabled, a frame with an unexpected sequence number is accepted; acknowledgments received from
// the peer are still validated.
//
// The default value is true.
func WithOrderCheck(val bool) ConfigOption {
	return newConfigOptFunc("WithOrderCheck", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.orderCheck = val

		return nil
	})
}

// WithT1Timeout sets the timeout (t1) of STARTDT, STOPDT and TESTFR confirmations.
// An error is returned if the timeout is outside the valid range (0.01-255 seconds) or if the configuration is nil.
//
// The default value is 6 seconds.
func WithT1Timeout(val time.Duration) ConfigOption {
	return newConfigOptFunc("WithT1Timeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < 10*time.Millisecond || val > 255*time.Second {
			return errors.New("t1 timeout out of range [0.01, 255]")
		}
		cfg.t1Timeout = val

		return nil
	})
}

// WithT2Timeout sets the acknowledgment timeout (t2) of received I-format frames.
// An error is returned if the timeout is outside the valid range (0.01-255 seconds) or if the configuration is nil.
//
// The default value is 8 seconds.
func WithT2Timeout(val time.Duration) ConfigOption {
	return newConfigOptFunc("WithT2Timeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < 10*time.Millisecond || val > 255*time.Second {
			return errors.New("t2 timeout out of range [0.01, 255]")
		}
		cfg.t2Timeout = val

		return nil
	})
}

// WithT3Timeout sets the idle timeout (t3) after which a TESTFR is sent.
// An error is returned if the timeout is outside the valid range (0.01 seconds - 48 hours) or if the configuration is nil.
//
// The default value is 10 seconds.
func WithT3Timeout(val time.Duration) ConfigOption {
	return newConfigOptFunc("WithT3Timeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < 10*time.Millisecond || val > 48*time.Hour {
			return errors.New("t3 timeout out of range [0.01s, 48h]")
		}
		cfg.t3Timeout = val

		return nil
	})
}

// WithTickInterval sets the resolution of the t1, t2 and t3 countdowns. Timeouts are rounded up to
// whole ticks.
// An error is returned if the interval is outside the valid range (1 millisecond - 1 second) or if the configuration is nil.
//
// The default value is 1 second.
func WithTickInterval(val time.Duration) ConfigOption {
	return newConfigOptFunc("WithTickInterval", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < time.Millisecond || val > time.Second {
			return errors.New("tick interval out of range [1ms, 1s]")
		}
		cfg.tickInterval = val

		return nil
	})
}

// WithWindowK sets the maximum number of unacknowledged I-format frames sent (k).
// An error is returned if k is outside the valid range (1-32767) or if the configuration is nil.
//
// The default value is 12.
func WithWindowK(k int) ConfigOption {
	return newConfigOptFunc("WithWindowK", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if k < 1 || k > iec104.SeqModulo-1 {
			return errors.New("window k out of range [1, 32767]")
		}
		cfg.windowK = k

		return nil
	})
}

// WithWindowW sets the number of received I-format frames after which an acknowledgment is sent (w).
// An error is returned if w is outside the valid range (1-32767) or if the configuration is nil.
//
// The default value is 8.
func WithWindowW(w int) ConfigOption {
	return newConfigOptFunc("WithWindowW", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if w < 1 || w > iec104.SeqModulo-1 {
			return errors.New("window w out of range [1, 32767]")
		}
		cfg.windowW = w

		return nil
	})
}

// WithConnectTimeout sets the timeout for establishing the transport.
// An error is returned if the timeout is outside the valid range (0.1-30 seconds) or if the configuration is nil.
//
// The default value is 3 seconds.
func WithConnectTimeout(val time.Duration) ConfigOption {
	return newConfigOptFunc("WithConnectTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < 100*time.Millisecond || val > 30*time.Second {
			return errors.New("connect timeout out of range [0.1, 30]")
		}
		cfg.connectTimeout = val

		return nil
	})
}

// WithCloseTimeout sets the timeout for waiting the session tasks to terminate on Close.
// An error is returned if the timeout is outside the valid range (0.1-30 seconds) or if the configuration is nil.
//
// The default value is 3 seconds.
func WithCloseTimeout(val time.Duration) ConfigOption {
	return newConfigOptFunc("WithCloseTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < 100*time.Millisecond || val > 30*time.Second {
			return errors.New("close timeout out of range [0.1, 30]")
		}
		cfg.closeTimeout = val

		return nil
	})
}

// WithTransport sets the transport of the session, e.g. a TLS or QUIC transport.
// An error is returned if the transport or the configuration is nil.
//
// The default transport is plain TCP to host:port.
func WithTransport(t transport.Transport) ConfigOption {
	return newConfigOptFunc("WithTransport", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if t == nil {
			return errors.New("transport is nil")
		}
		cfg.transport = t

		return nil
	})
}

// WithLogger sets the logger of the session.
// An error is returned if the configuration is nil.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) ConfigOption {
	return newConfigOptFunc("WithLogger", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.logger = l

		return nil
	})
}
