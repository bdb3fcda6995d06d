package master

import (
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-iec104/asdu"
	"github.com/arloliu/go-iec104/iec104"
	"github.com/arloliu/go-iec104/logger"
	"github.com/arloliu/go-iec104/transport"
)

func TestMain(m *testing.M) {
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	os.Exit(m.Run())
}

const waitTimeout = 2 * time.Second

// recordingSink records sink events in order.
type recordingSink struct {
	mu      sync.Mutex
	events  []string
	data    []asdu.InformationObject
	batches []int
	cmds    []asdu.InformationObject
	reasons []error
	diags   []error
}

var _ Sink = (*recordingSink)(nil)

func (r *recordingSink) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recordingSink) OnConnected() { r.add("connected") }

func (r *recordingSink) OnDisconnected(reason error) {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
	r.add("disconnected")
}

func (r *recordingSink) OnData(obj asdu.InformationObject, countInBatch int) {
	r.mu.Lock()
	r.data = append(r.data, obj)
	r.batches = append(r.batches, countInBatch)
	r.mu.Unlock()
	r.add("data")
}

func (r *recordingSink) OnInterrogationAck()         { r.add("gi-ack") }
func (r *recordingSink) OnInterrogationTerm()        { r.add("gi-term") }
func (r *recordingSink) OnCounterInterrogationAck()  { r.add("ci-ack") }
func (r *recordingSink) OnCounterInterrogationTerm() { r.add("ci-term") }

func (r *recordingSink) OnCommandAck(obj asdu.InformationObject) {
	r.mu.Lock()
	r.cmds = append(r.cmds, obj)
	r.mu.Unlock()
	r.add("cmd-ack")
}

func (r *recordingSink) OnCommandTerm(obj asdu.InformationObject) {
	r.mu.Lock()
	r.cmds = append(r.cmds, obj)
	r.mu.Unlock()
	r.add("cmd-term")
}

func (r *recordingSink) OnDiagnostic(err error) {
	r.mu.Lock()
	r.diags = append(r.diags, err)
	r.mu.Unlock()
	r.add("diag")
}

func (r *recordingSink) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.events...)
}

func (r *recordingSink) Data() []asdu.InformationObject {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]asdu.InformationObject(nil), r.data...)
}

func (r *recordingSink) Commands() []asdu.InformationObject {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]asdu.InformationObject(nil), r.cmds...)
}

func (r *recordingSink) Reasons() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.reasons...)
}

func (r *recordingSink) Diagnostics() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.diags...)
}

func (r *recordingSink) waitEvents(t *testing.T, n int) []string {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(r.Events()) >= n
	}, waitTimeout, 5*time.Millisecond, "expected %d sink events", n)

	return r.Events()
}

// outstation is a scripted controlled station on the other end of the session transport.
type outstation struct {
	conn   net.Conn
	frames chan *iec104.APDU
	vs     uint16
	vr     uint16
}

func newOutstation(t *testing.T, conn net.Conn) *outstation {
	t.Helper()

	o := &outstation{conn: conn, frames: make(chan *iec104.APDU, 64)}
	go o.readLoop()

	t.Cleanup(func() { _ = conn.Close() })

	return o
}

func (o *outstation) readLoop() {
	defer close(o.frames)

	reader := iec104.NewFrameReader(o.conn)
	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			return
		}

		apdu, err := iec104.Decode(frame)
		if err != nil {
			continue
		}
		o.frames <- apdu
	}
}

// next returns the next frame sent by the session.
func (o *outstation) next(t *testing.T) *iec104.APDU {
	t.Helper()

	select {
	case apdu, ok := <-o.frames:
		require.True(t, ok, "connection closed")
		return apdu
	case <-time.After(waitTimeout):
		require.FailNow(t, "no frame received")
		return nil
	}
}

// expectNone asserts that the session sends nothing for d.
func (o *outstation) expectNone(t *testing.T, d time.Duration) {
	t.Helper()

	select {
	case apdu, ok := <-o.frames:
		if ok {
			require.FailNow(t, "unexpected frame", apdu.String())
		}
	case <-time.After(d):
	}
}

func (o *outstation) expectU(t *testing.T, fn iec104.UFunction) {
	t.Helper()

	apdu := o.next(t)
	require.Equal(t, iec104.UFormat, apdu.Format, apdu.String())
	require.Equal(t, fn, apdu.Function)
}

func (o *outstation) expectS(t *testing.T) *iec104.APDU {
	t.Helper()

	apdu := o.next(t)
	require.Equal(t, iec104.SFormat, apdu.Format, apdu.String())

	return apdu
}

// expectI returns the ASDU of the next frame, which must be an I-format frame in sequence.
func (o *outstation) expectI(t *testing.T) *asdu.ASDU {
	t.Helper()

	apdu := o.next(t)
	require.Equal(t, iec104.IFormat, apdu.Format, apdu.String())
	require.Equal(t, o.vr, apdu.SendSeq)
	require.NotNil(t, apdu.ASDU)
	o.vr = (o.vr + 1) % iec104.SeqModulo

	return apdu.ASDU
}

func (o *outstation) write(t *testing.T, apdu *iec104.APDU) {
	t.Helper()

	data, err := apdu.MarshalBinary()
	require.NoError(t, err)

	_, err = o.conn.Write(data)
	require.NoError(t, err)
}

func (o *outstation) sendU(t *testing.T, fn iec104.UFunction) {
	t.Helper()
	o.write(t, iec104.NewUFrame(fn))
}

func (o *outstation) sendASDU(t *testing.T, a *asdu.ASDU) {
	t.Helper()

	o.write(t, iec104.NewIFrame(o.vs, o.vr, a))
	o.vs = (o.vs + 1) % iec104.SeqModulo
}

// reply sends a with the cause replaced, as a station mirrors an activation.
func (o *outstation) reply(t *testing.T, a *asdu.ASDU, cause asdu.Cause, negative bool) {
	t.Helper()

	m := *a
	m.Cause = cause
	m.Negative = negative
	o.sendASDU(t, &m)
}

// newPipeSession creates a session whose transport is one end of a net.Pipe, and the outstation on the other end.
func newPipeSession(t *testing.T, sink Sink, opts ...ConfigOption) (*Session, *outstation) {
	t.Helper()

	client, server := net.Pipe()
	o := newOutstation(t, server)

	opts = append([]ConfigOption{
		WithTransport(transport.NewConn(client)),
		WithTickInterval(10 * time.Millisecond),
		WithCloseTimeout(time.Second),
	}, opts...)

	cfg, err := NewConfig("127.0.0.1", DefaultPort, opts...)
	require.NoError(t, err)

	s, err := NewSession(cfg, sink)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, o
}

// startDataTransfer opens s and confirms STARTDT.
func startDataTransfer(t *testing.T, s *Session, o *outstation) {
	t.Helper()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Open(true) }()

	o.expectU(t, iec104.StartDTAct)
	o.sendU(t, iec104.StartDTCon)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		require.FailNow(t, "open did not return")
	}

	require.True(t, s.TxEnabled())
	require.Equal(t, iec104.DataTransfer, s.State())
}

func singlePoint(addr uint32, on bool, cause asdu.Cause) *asdu.ASDU {
	obj := asdu.InformationObject{Address: addr}
	if on {
		obj.Value = 1
	}

	return asdu.NewASDU(asdu.M_SP_NA_1, cause, 1, obj)
}
