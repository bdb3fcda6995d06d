package master

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-iec104/asdu"
	"github.com/arloliu/go-iec104/iec104"
	"github.com/arloliu/go-iec104/internal/pool"
	"github.com/arloliu/go-iec104/logger"
	"github.com/arloliu/go-iec104/transport"
)

// commandKey identifies an in-flight command activation.
type commandKey struct {
	typeID asdu.TypeID
	addr   uint32
}

// Session is the controlling station (master) side of one IEC 104 link.
//
// A session owns its transport. Open connects it and starts data transfer with STARTDT; received frames
// are processed by a receive task and the t1, t2 and t3 countdowns by a timer task. All protocol state
// (sequence numbers, timers, pending activations) is guarded by one lock, which is also held while a
// frame is written, so frames leave in the order their sequence numbers were assigned.
//
// Every fatal error (sequence error, t1 expiry, transport error, peer close) ends the connection once
// and is reported by Sink.OnDisconnected. Reconnection is up to the application: call Open again.
type Session struct {
	cfg      *Config
	logger   logger.Logger
	sink     Sink
	tr       transport.Transport
	stateMgr *iec104.LinkStateMgr
	taskMgr  *iec104.TaskManager
	eventMgr *iec104.TaskManager
	eventQ   *eventQueue
	metrics  Metrics
	commands *xsync.MapOf[commandKey, asdu.InformationObject]

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	openMu sync.Mutex

	mu         sync.Mutex
	seq        *iec104.SeqTracker
	timers     *iec104.Supervisor
	linkUp     bool
	txEnabled  bool
	pendingGI  bool
	pendingCI  bool
	t1Function iec104.UFunction
	lastReason error
}

// NewSession creates a session with the given configuration and sink. A nil sink ignores every event.
func NewSession(cfg *Config, sink Sink) (*Session, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if sink == nil {
		sink = NopSink{}
	}

	l := cfg.Logger()
	if l == nil {
		l = logger.GetLogger()
	}
	l = l.With("remote", cfg.Address())

	k, w := cfg.Window()

	s := &Session{
		cfg:      cfg,
		logger:   l,
		sink:     sink,
		tr:       cfg.Transport(),
		stateMgr: iec104.NewLinkStateMgr(l),
		commands: xsync.NewMapOf[commandKey, asdu.InformationObject](),
		seq:      iec104.NewSeqTracker(cfg.OrderCheck(), k, w),
		timers:   iec104.NewSupervisor(cfg.timerTicks()),
		eventQ:   newEventQueue(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.taskMgr = iec104.NewTaskManager(s.ctx, l)
	s.eventMgr = iec104.NewTaskManager(context.Background(), l)

	if err := s.eventMgr.Go("sink", s.deliverTask); err != nil {
		return nil, err
	}

	return s, nil
}

// Open connects the transport and sends STARTDT act.
//
// When waitStarted is true, Open blocks until STARTDT is confirmed or the connection ends, and returns
// the disconnect reason in the latter case, e.g. iec104.ErrStartTimeout.
func (s *Session) Open(waitStarted bool) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	s.openMu.Lock()
	defer s.openMu.Unlock()

	if !s.stateMgr.State().IsDisconnected() {
		return ErrSessionOpened
	}

	// tasks of the previous connection
	s.taskMgr.Wait()

	if err := s.stateMgr.ToConnecting(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.ConnectTimeout())
	err := s.tr.Connect(ctx)
	cancel()
	if err != nil {
		s.stateMgr.ToDisconnected()
		s.logger.Error("failed to connect", "error", err)

		return err
	}
	s.metrics.incConnectCount()

	if err := s.startLink(); err != nil {
		return err
	}

	if !waitStarted {
		return nil
	}

	state, err := s.stateMgr.WaitState(s.ctx, iec104.DataTransfer, iec104.Disconnected)
	if err != nil {
		return err
	}

	if state.IsDisconnected() {
		return s.DisconnectReason()
	}

	return nil
}

// startLink resets the connection state, starts the session tasks and sends STARTDT act.
func (s *Session) startLink() error {
	reader := iec104.NewFrameReader(s.tr)

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		_ = s.tr.Disconnect()
		s.stateMgr.ToDisconnected()

		return ErrSessionClosed
	}

	k, w := s.cfg.Window()
	s.seq = iec104.NewSeqTracker(s.cfg.OrderCheck(), k, w)
	s.timers = iec104.NewSupervisor(s.cfg.timerTicks())
	s.linkUp = true
	s.txEnabled = false
	s.pendingGI = false
	s.pendingCI = false
	s.lastReason = nil
	s.commands.Clear()
	s.mu.Unlock()

	if err := s.taskMgr.Go("receiver", s.guard("receiver", s.receiveTask(reader))); err != nil {
		s.abort(err)
		return err
	}

	if err := s.taskMgr.Every("timer", s.cfg.TickInterval(), s.guard("timer", s.tickTask)); err != nil {
		s.abort(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.linkUp {
		return s.lastReason
	}

	if err := s.stateMgr.ToWaitingStartConfirm(); err != nil {
		s.fail(err)
		return err
	}

	s.t1Function = iec104.StartDTAct
	s.timers.ArmT1()

	return s.sendFrame(iec104.NewUFrame(iec104.StartDTAct))
}

// Stop ends data transfer gracefully: it sends STOPDT act and waits until the confirmation closes
// the transport, or t1 expires, or ctx is done.
//
// Stop returns nil when STOPDT was confirmed, iec104.ErrStopTimeout when t1 expired, and ErrLinkNotReady
// when data transfer is not started.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.stateMgr.State().IsDataTransfer() {
		s.mu.Unlock()
		return ErrLinkNotReady
	}

	if err := s.stateMgr.ToStopping(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.txEnabled = false
	s.t1Function = iec104.StopDTAct
	s.timers.ArmT1()
	err := s.sendFrame(iec104.NewUFrame(iec104.StopDTAct))
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if _, err := s.stateMgr.WaitState(ctx, iec104.Disconnected); err != nil {
		return err
	}

	reason := s.DisconnectReason()
	if errors.Is(reason, iec104.ErrStopped) {
		return nil
	}

	return reason
}

// Close closes the session. The current connection, if any, ends with ErrSessionClosed.
// Close waits for the session tasks to terminate within the close timeout.
// A closed session can not be opened again.
//
// Sink events queued before Close, including the final OnDisconnected, are still delivered after Close
// returns. Close may be called from a Sink method.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	s.fail(ErrSessionClosed)
	s.mu.Unlock()

	s.eventQ.close()
	s.cancel()
	s.taskMgr.Stop()

	done := make(chan struct{})
	go func() {
		s.taskMgr.Wait()
		close(done)
	}()

	timer := pool.GetTimer(s.cfg.CloseTimeout())
	defer pool.PutTimer(timer)

	select {
	case <-done:
		s.logger.Debug("session closed")
		return nil
	case <-timer.C:
		s.logger.Warn("timeout waiting for session tasks to terminate", "timeout", s.cfg.CloseTimeout())
		return context.DeadlineExceeded
	}
}

// SolicitGeneralInterrogation sends a station interrogation (C_IC_NA_1, QOI 20).
func (s *Session) SolicitGeneralInterrogation() error {
	return s.SolicitInterrogation(asdu.QOIStation)
}

// SolicitInterrogation sends an interrogation command with the given qualifier, a station or group
// interrogation. The station answers with a confirmation, the interrogated data and a termination,
// reported by Sink.OnInterrogationAck, Sink.OnData and Sink.OnInterrogationTerm.
//
// It returns ErrInterrogationPending while a previous interrogation is not terminated. No local timeout
// applies: the flag is cleared by the termination, a negative confirmation, an unknown-activation reply,
// or the end of the connection, so a station that never terminates blocks further interrogations until
// the application reconnects.
func (s *Session) SolicitInterrogation(qoi uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.txEnabled {
		return ErrLinkNotReady
	}

	if s.pendingGI {
		return ErrInterrogationPending
	}

	err := s.sendASDU(asdu.NewASDU(asdu.C_IC_NA_1, asdu.CauseActivation, 0, asdu.InterrogationCommand(qoi)))
	if err != nil {
		return err
	}
	s.pendingGI = true

	return nil
}

// SolicitCounterInterrogation sends a counter interrogation command (C_CI_NA_1) with the given qualifier.
// The integrated totals are reported by Sink.OnData between Sink.OnCounterInterrogationAck and
// Sink.OnCounterInterrogationTerm.
func (s *Session) SolicitCounterInterrogation(qcc uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.txEnabled {
		return ErrLinkNotReady
	}

	if s.pendingCI {
		return ErrInterrogationPending
	}

	err := s.sendASDU(asdu.NewASDU(asdu.C_CI_NA_1, asdu.CauseActivation, 0, asdu.CounterInterrogationCommand(qcc)))
	if err != nil {
		return err
	}
	s.pendingCI = true

	return nil
}

// SendCommand sends a process command (types 45..51 and 58..64) with cause activation.
// Its confirmation and termination are reported by Sink.OnCommandAck and Sink.OnCommandTerm.
func (s *Session) SendCommand(obj asdu.InformationObject) error {
	if !obj.Type.IsCommand() {
		return fmt.Errorf("%s: %w", obj.Type, asdu.ErrNotCommand)
	}

	return s.sendActivation(obj, asdu.CauseActivation, true)
}

// SendClockSync sends a clock synchronization command (C_CS_NA_1) with time t.
func (s *Session) SendClockSync(t time.Time) error {
	return s.sendActivation(asdu.ClockSyncCommand(t), asdu.CauseActivation, true)
}

// SendResetProcess sends a reset process command (C_RP_NA_1) with the given qualifier.
func (s *Session) SendResetProcess(qrp uint8) error {
	return s.sendActivation(asdu.ResetProcessCommand(qrp), asdu.CauseActivation, true)
}

// SendTestCommand sends a test command with time tag (C_TS_TA_1) carrying the test sequence counter tsc.
func (s *Session) SendTestCommand(tsc uint16) error {
	return s.sendActivation(asdu.TestCommand(tsc, time.Now()), asdu.CauseActivation, true)
}

// SendRead sends a read command (C_RD_NA_1) for one information object address.
// The station answers with the object in monitor direction, cause request.
func (s *Session) SendRead(ioa uint32) error {
	return s.sendActivation(asdu.ReadCommand(ioa), asdu.CauseRequest, false)
}

func (s *Session) sendActivation(obj asdu.InformationObject, cause asdu.Cause, track bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := asdu.NewASDU(obj.Type, cause, 0, obj)
	if err := s.sendASDU(a); err != nil {
		return err
	}

	if track {
		s.commands.Store(commandKey{typeID: obj.Type, addr: obj.Address}, a.Objects[0])
	}

	return nil
}

// State returns the link state.
func (s *Session) State() iec104.LinkState {
	return s.stateMgr.State()
}

// TxEnabled reports whether STARTDT is confirmed and I-format frames may be sent.
func (s *Session) TxEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.txEnabled
}

// SequenceState returns the send and receive state variables.
func (s *Session) SequenceState() (vs uint16, vr uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.seq.VS(), s.seq.VR()
}

// InterrogationPending reports whether a general interrogation awaits its termination.
func (s *Session) InterrogationPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pendingGI
}

// PendingCommands returns the number of command activations awaiting confirmation or termination.
func (s *Session) PendingCommands() int {
	return s.commands.Size()
}

// DisconnectReason returns the reason the last connection ended, or nil.
func (s *Session) DisconnectReason() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastReason
}

// Metrics returns the session metrics.
func (s *Session) Metrics() *Metrics {
	return &s.metrics
}

// notify queues a sink event for the delivery goroutine. The caller holds mu.
func (s *Session) notify(ev func(Sink)) {
	s.eventQ.push(ev)
}

// diagnostic reports a recoverable error. The caller holds mu.
func (s *Session) diagnostic(err error) {
	s.metrics.incDiagnosticCount()
	s.logger.Warn("protocol diagnostic", "error", err)
	s.notify(func(sink Sink) { sink.OnDiagnostic(err) })
}

func (s *Session) abort(reason error) {
	s.mu.Lock()
	s.fail(reason)
	s.mu.Unlock()
}

// fail ends the current connection with reason. It is a no-op when the connection already ended.
// The caller holds mu.
func (s *Session) fail(reason error) {
	if !s.linkUp {
		return
	}

	s.linkUp = false
	s.txEnabled = false
	s.pendingGI = false
	s.pendingCI = false
	s.t1Function = 0
	s.lastReason = reason
	s.timers.StopAll()
	s.commands.Clear()

	if errors.Is(reason, iec104.ErrStopped) || errors.Is(reason, ErrSessionClosed) {
		s.logger.Info("connection closed", "reason", reason)
	} else {
		s.logger.Error("connection lost", "reason", reason)
	}

	_ = s.tr.Disconnect()
	s.taskMgr.Stop()
	s.stateMgr.ToDisconnected()

	s.notify(func(sink Sink) { sink.OnDisconnected(reason) })
}

// sendFrame encodes and writes one frame. The caller holds mu.
// A write error ends the connection.
func (s *Session) sendFrame(frame *iec104.APDU) error {
	data, err := frame.AppendBinary(pool.GetFrameBuffer())
	if err != nil {
		return err
	}
	defer pool.PutFrameBuffer(data)

	if s.logger.Level() == logger.DebugLevel {
		s.logger.Debug("send frame", "frame", frame.String(), "data", hex.EncodeToString(data))
	}

	if err := s.tr.Write(data); err != nil {
		err = fmt.Errorf("send %s frame: %w", frame.Format, err)
		s.fail(err)

		return err
	}

	s.metrics.incFrameSend(frame.Format, len(data))
	s.timers.ReloadT3()
	if frame.Format != iec104.UFormat {
		s.seq.MarkAcked()
	}

	return nil
}

// sendASDU sends a as the next I-format frame. The caller holds mu.
func (s *Session) sendASDU(a *asdu.ASDU) error {
	if !s.txEnabled {
		return ErrLinkNotReady
	}

	a.CommonAddr = s.cfg.CommonAddress()
	a.Originator = s.cfg.OriginatorAddress()

	// validate before a sequence number is consumed
	if _, err := a.MarshalBinary(); err != nil {
		return err
	}

	ns, err := s.seq.NextSend()
	if err != nil {
		return err
	}

	return s.sendFrame(iec104.NewIFrame(ns, s.seq.VR(), a))
}

func (s *Session) receiveTask(reader *iec104.FrameReader) iec104.TaskFunc {
	return func() bool {
		frame, err := reader.ReadFrame()

		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.linkUp {
			return false
		}

		if err != nil {
			return s.handleReadError(err)
		}

		return s.handleFrame(frame)
	}
}

func (s *Session) handleReadError(err error) bool {
	switch {
	case errors.Is(err, iec104.ErrInvalidStart), errors.Is(err, iec104.ErrInvalidLength):
		s.metrics.incDecodeErrCount()
		s.diagnostic(err)

		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.fail(iec104.ErrPeerClosed)
	default:
		s.fail(fmt.Errorf("receive: %w", err))
	}

	return false
}

func (s *Session) handleFrame(frame []byte) bool {
	apdu, err := iec104.Decode(frame)
	if apdu == nil {
		s.metrics.incDecodeErrCount()
		s.diagnostic(err)

		return true
	}
	s.metrics.incFrameRecv(apdu.Format, len(frame))

	if s.logger.Level() == logger.DebugLevel {
		s.logger.Debug("received frame", "frame", apdu.String(), "data", hex.EncodeToString(frame))
	}

	switch apdu.Format {
	case iec104.IFormat:
		s.handleIFrame(apdu, err)
	case iec104.SFormat:
		s.handleAck(apdu.RecvSeq)
	case iec104.UFormat:
		s.handleUFrame(apdu.Function)
	}

	return s.linkUp
}

func (s *Session) handleAck(nr uint16) bool {
	if err := s.seq.OnReceiveAck(nr); err != nil {
		s.fail(err)
		return false
	}

	return true
}

func (s *Session) handleIFrame(apdu *iec104.APDU, decodeErr error) {
	state := s.stateMgr.State()
	if state != iec104.DataTransfer && state != iec104.Stopping {
		s.diagnostic(fmt.Errorf("%w: state %s", ErrUnexpectedIFrame, state))
		return
	}

	if err := s.seq.OnReceiveI(apdu.SendSeq); err != nil {
		s.fail(err)
		return
	}

	if !s.handleAck(apdu.RecvSeq) {
		return
	}
	s.timers.ReloadT2()

	if decodeErr != nil {
		s.metrics.incDecodeErrCount()
		s.diagnostic(decodeErr)
	} else {
		s.dispatch(apdu.ASDU)
	}

	if s.linkUp && s.seq.AckDue() {
		_ = s.sendFrame(iec104.NewSFrame(s.seq.VR()))
	}
}

func (s *Session) handleUFrame(fn iec104.UFunction) {
	switch fn {
	case iec104.StartDTCon:
		if s.stateMgr.State() != iec104.WaitingStartConfirm {
			s.logger.Warn("unexpected confirmation", "function", fn, "state", s.stateMgr.State())
			return
		}

		s.timers.StopT1()
		s.t1Function = 0
		if err := s.stateMgr.ToDataTransfer(); err != nil {
			s.fail(err)
			return
		}
		s.txEnabled = true
		s.timers.StartDataTransfer()

		s.logger.Info("data transfer started")
		s.notify(func(sink Sink) { sink.OnConnected() })

	case iec104.StopDTCon:
		if s.stateMgr.State() != iec104.Stopping {
			s.logger.Warn("unexpected confirmation", "function", fn, "state", s.stateMgr.State())
			return
		}

		s.fail(iec104.ErrStopped)

	case iec104.TestFRAct:
		_ = s.sendFrame(iec104.NewUFrame(iec104.TestFRCon))

	case iec104.TestFRCon:
		if s.t1Function != iec104.TestFRAct {
			s.logger.Debug("ignore unsolicited confirmation", "function", fn)
			return
		}

		s.timers.StopT1()
		s.t1Function = 0
		s.metrics.incTestFrameConfirmCount()

	default:
		s.logger.Warn("ignore function of a controlling station", "function", fn)
	}
}

func (s *Session) tickTask() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.linkUp {
		return false
	}

	fired := s.timers.Tick()
	if fired == 0 {
		return true
	}

	if fired.Has(iec104.T1) {
		s.fail(s.t1Reason())
		return false
	}

	if fired.Has(iec104.T2) && s.seq.PendingAck() > 0 {
		if err := s.sendFrame(iec104.NewSFrame(s.seq.VR())); err != nil {
			return false
		}
	}

	if fired.Has(iec104.T3) && s.stateMgr.State().IsDataTransfer() && !s.timers.T1Armed() {
		s.t1Function = iec104.TestFRAct
		s.timers.ArmT1()
		if err := s.sendFrame(iec104.NewUFrame(iec104.TestFRAct)); err != nil {
			return false
		}
		s.metrics.incTestFrameSendCount()
	}

	return true
}

// t1Reason maps the unconfirmed function to a disconnect reason.
func (s *Session) t1Reason() error {
	switch s.t1Function {
	case iec104.StopDTAct:
		return iec104.ErrStopTimeout
	case iec104.TestFRAct:
		return iec104.ErrTestTimeout
	default:
		return iec104.ErrStartTimeout
	}
}
