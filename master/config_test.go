package master

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-iec104/iec104"
	"github.com/arloliu/go-iec104/logger"
	"github.com/arloliu/go-iec104/transport"
)

func TestNewConfig_Defaults(t *testing.T) {
	require := require.New(t)

	cfg, err := NewConfig("127.0.0.1", DefaultPort)
	require.NoError(err)

	require.Equal("127.0.0.1:2404", cfg.Address())
	require.Equal(uint16(1), cfg.CommonAddress())
	require.Equal(uint8(0), cfg.OriginatorAddress())
	require.True(cfg.OrderCheck())
	require.Equal(6*time.Second, cfg.T1Timeout())
	require.Equal(8*time.Second, cfg.T2Timeout())
	require.Equal(10*time.Second, cfg.T3Timeout())
	require.Equal(time.Second, cfg.TickInterval())
	require.Equal(3*time.Second, cfg.ConnectTimeout())
	require.Equal(3*time.Second, cfg.CloseTimeout())
	require.NotNil(cfg.Logger())

	k, w := cfg.Window()
	require.Equal(12, k)
	require.Equal(8, w)

	t1, t2, t3 := cfg.timerTicks()
	require.Equal(6, t1)
	require.Equal(8, t2)
	require.Equal(10, t3)

	tr := cfg.Transport()
	tcp, ok := tr.(*transport.Conn)
	require.True(ok)
	require.Equal("127.0.0.1:2404", tcp.Address())
	require.Same(tr, cfg.Transport())
}

func TestNewConfig_Options(t *testing.T) {
	require := require.New(t)

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tr := transport.NewConn(client)
	l := logger.GetLogger()

	cfg, err := NewConfig("::1", 19998,
		WithCommonAddress(0x1234),
		WithOriginatorAddress(7),
		WithOrderCheck(false),
		WithT1Timeout(15*time.Second),
		WithT2Timeout(10*time.Second),
		WithT3Timeout(20*time.Second),
		WithTickInterval(100*time.Millisecond),
		WithWindowK(20),
		WithWindowW(10),
		WithConnectTimeout(time.Second),
		WithCloseTimeout(500*time.Millisecond),
		WithTransport(tr),
		WithLogger(l),
	)
	require.NoError(err)

	require.Equal("[::1]:19998", cfg.Address())
	require.Equal(uint16(0x1234), cfg.CommonAddress())
	require.Equal(uint8(7), cfg.OriginatorAddress())
	require.False(cfg.OrderCheck())
	require.Equal(time.Second, cfg.ConnectTimeout())
	require.Equal(500*time.Millisecond, cfg.CloseTimeout())
	require.Same(tr, cfg.Transport())
	require.Same(l, cfg.Logger())

	k, w := cfg.Window()
	require.Equal(20, k)
	require.Equal(10, w)

	t1, t2, t3 := cfg.timerTicks()
	require.Equal(150, t1)
	require.Equal(100, t2)
	require.Equal(200, t3)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		opt  ConfigOption
	}{
		{name: "invalid host", host: "invalid host name", port: DefaultPort},
		{name: "port zero", host: "127.0.0.1", port: 0},
		{name: "port too large", host: "127.0.0.1", port: 65536},
		{name: "common address zero", host: "127.0.0.1", port: DefaultPort, opt: WithCommonAddress(0)},
		{name: "t1 too small", host: "127.0.0.1", port: DefaultPort, opt: WithT1Timeout(time.Millisecond)},
		{name: "t1 too large", host: "127.0.0.1", port: DefaultPort, opt: WithT1Timeout(256 * time.Second)},
		{name: "t2 too large", host: "127.0.0.1", port: DefaultPort, opt: WithT2Timeout(256 * time.Second)},
		{name: "t3 too large", host: "127.0.0.1", port: DefaultPort, opt: WithT3Timeout(49 * time.Hour)},
		{name: "tick too large", host: "127.0.0.1", port: DefaultPort, opt: WithTickInterval(2 * time.Second)},
		{name: "tick too small", host: "127.0.0.1", port: DefaultPort, opt: WithTickInterval(time.Microsecond)},
		{name: "k zero", host: "127.0.0.1", port: DefaultPort, opt: WithWindowK(0)},
		{name: "k too large", host: "127.0.0.1", port: DefaultPort, opt: WithWindowK(iec104.SeqModulo)},
		{name: "w zero", host: "127.0.0.1", port: DefaultPort, opt: WithWindowW(0)},
		{name: "connect timeout", host: "127.0.0.1", port: DefaultPort, opt: WithConnectTimeout(time.Minute)},
		{name: "close timeout", host: "127.0.0.1", port: DefaultPort, opt: WithCloseTimeout(time.Millisecond)},
		{name: "nil transport", host: "127.0.0.1", port: DefaultPort, opt: WithTransport(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []ConfigOption
			if tt.opt != nil {
				opts = append(opts, tt.opt)
			}

			_, err := NewConfig(tt.host, tt.port, opts...)
			require.Error(t, err)
		})
	}
}

func TestConfigOption_NilConfig(t *testing.T) {
	require := require.New(t)

	opts := []ConfigOption{
		WithCommonAddress(1),
		WithOriginatorAddress(1),
		WithOrderCheck(true),
		WithT1Timeout(time.Second),
		WithT2Timeout(time.Second),
		WithT3Timeout(time.Second),
		WithTickInterval(time.Second),
		WithWindowK(1),
		WithWindowW(1),
		WithConnectTimeout(time.Second),
		WithCloseTimeout(time.Second),
		WithLogger(nil),
	}

	for _, opt := range opts {
		require.ErrorIs(opt.apply(nil), ErrConfigNil)
	}
}
