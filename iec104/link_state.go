package iec104

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/looplab/fsm"

	"github.com/arloliu/go-iec104/logger"
)

// LinkState represents the stages of an IEC 104 link as seen by the controlling station.
type LinkState uint32

const (
	// Disconnected indicates that no transport connection exists.
	Disconnected LinkState = iota
	// Connecting indicates that the transport is being connected.
	Connecting
	// WaitingStartConfirm indicates that STARTDT act was sent and its confirmation is awaited.
	WaitingStartConfirm
	// DataTransfer indicates that STARTDT was confirmed and I-format frames may be exchanged.
	DataTransfer
	// Stopping indicates that STOPDT act was sent and its confirmation is awaited.
	Stopping
)

var linkStateNames = map[LinkState]string{
	Disconnected:        "disconnected",
	Connecting:          "connecting",
	WaitingStartConfirm: "waiting-start-confirm",
	DataTransfer:        "data-transfer",
	Stopping:            "stopping",
}

var linkStateByName = func() map[string]LinkState {
	m := make(map[string]LinkState, len(linkStateNames))
	for state, name := range linkStateNames {
		m[name] = state
	}
	return m
}()

// String returns string representation of the state.
func (ls LinkState) String() string {
	if name, ok := linkStateNames[ls]; ok {
		return name
	}

	return "unknown"
}

// IsDataTransfer returns if the link is started.
func (ls LinkState) IsDataTransfer() bool { return ls == DataTransfer }

// IsDisconnected returns if no transport connection exists.
func (ls LinkState) IsDisconnected() bool { return ls == Disconnected }

// link state events
const (
	eventConnect    = "connect"
	eventStart      = "start"
	eventConfirm    = "confirm"
	eventStop       = "stop"
	eventDisconnect = "disconnect"
)

// LinkStateChangeHandler is invoked when the link state changes.
//
// Note: the handler will be invoked in a blocking mode while the state manager is locked.
// It must not call back into the state manager's transition or wait methods.
type LinkStateChangeHandler func(prevState LinkState, newState LinkState)

// LinkStateMgr manages the link state of one session.
//
// The transition table is enforced by a finite state machine:
//
//	Disconnected -> Connecting -> WaitingStartConfirm -> DataTransfer -> Stopping
//	any state other than Disconnected -> Disconnected
//
// State transitions are thread safe, and WaitState can be used to block until a state is reached.
type LinkStateMgr struct {
	mu       sync.Mutex
	cond     *sync.Cond
	state    atomic.Uint32
	machine  *fsm.FSM
	logger   logger.Logger
	handlers []LinkStateChangeHandler
}

// NewLinkStateMgr creates a LinkStateMgr in the Disconnected state.
//
// It accepts optional LinkStateChangeHandler functions that will be invoked when the state changes.
func NewLinkStateMgr(l logger.Logger, handlers ...LinkStateChangeHandler) *LinkStateMgr {
	if l == nil {
		l = logger.GetLogger()
	}

	mgr := &LinkStateMgr{
		logger:   l,
		handlers: make([]LinkStateChangeHandler, 0, len(handlers)),
	}
	mgr.cond = sync.NewCond(&mgr.mu)
	mgr.state.Store(uint32(Disconnected))
	mgr.handlers = append(mgr.handlers, handlers...)

	mgr.machine = fsm.NewFSM(
		Disconnected.String(),
		fsm.Events{
			{Name: eventConnect, Src: []string{Disconnected.String()}, Dst: Connecting.String()},
			{Name: eventStart, Src: []string{Connecting.String()}, Dst: WaitingStartConfirm.String()},
			{Name: eventConfirm, Src: []string{WaitingStartConfirm.String()}, Dst: DataTransfer.String()},
			{Name: eventStop, Src: []string{DataTransfer.String()}, Dst: Stopping.String()},
			{
				Name: eventDisconnect,
				Src: []string{
					Connecting.String(), WaitingStartConfirm.String(),
					DataTransfer.String(), Stopping.String(),
				},
				Dst: Disconnected.String(),
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				mgr.onEnterState(linkStateByName[e.Src], linkStateByName[e.Dst])
			},
		},
	)

	return mgr
}

// State returns the current link state.
func (m *LinkStateMgr) State() LinkState {
	return LinkState(m.state.Load())
}

// AddHandler adds one or more LinkStateChangeHandler functions to be invoked on state changes.
func (m *LinkStateMgr) AddHandler(handlers ...LinkStateChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handlers...)
}

// WaitState waits until the link reaches one of the given states or ctx is done.
// It returns the state that was reached, or the current state and ctx.Err().
func (m *LinkStateMgr) WaitState(ctx context.Context, states ...LinkState) (LinkState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stopFunc := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cond.Broadcast()
	})
	defer stopFunc()

	for {
		cur := m.State()
		for _, s := range states {
			if cur == s {
				return cur, nil
			}
		}

		if err := ctx.Err(); err != nil {
			m.logger.Debug("wait link state receive ctx done", "cur_state", cur, "desired_states", states)
			return cur, err
		}

		m.cond.Wait()
	}
}

// ToConnecting moves the link from Disconnected to Connecting.
func (m *LinkStateMgr) ToConnecting() error {
	return m.transition(eventConnect)
}

// ToWaitingStartConfirm moves the link from Connecting to WaitingStartConfirm.
func (m *LinkStateMgr) ToWaitingStartConfirm() error {
	return m.transition(eventStart)
}

// ToDataTransfer moves the link from WaitingStartConfirm to DataTransfer.
func (m *LinkStateMgr) ToDataTransfer() error {
	return m.transition(eventConfirm)
}

// ToStopping moves the link from DataTransfer to Stopping.
func (m *LinkStateMgr) ToStopping() error {
	return m.transition(eventStop)
}

// ToDisconnected moves the link to Disconnected from any state.
// It returns false if the link was already disconnected.
func (m *LinkStateMgr) ToDisconnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.State().IsDisconnected() {
		return false
	}

	if err := m.machine.Event(context.Background(), eventDisconnect); err != nil {
		m.logger.Error("failed to move link to disconnected", "error", err)
		return false
	}

	return true
}

func (m *LinkStateMgr) transition(event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.State()
	if err := m.machine.Event(context.Background(), event); err != nil {
		return fmt.Errorf("%w: %s from %s: %w", ErrInvalidTransition, event, prev, err)
	}

	return nil
}

// onEnterState is called by the state machine with m.mu held.
func (m *LinkStateMgr) onEnterState(prevState LinkState, newState LinkState) {
	m.state.Store(uint32(newState))
	m.cond.Broadcast()

	m.logger.Debug("link state changed", "prev_state", prevState, "new_state", newState)

	for _, handler := range m.handlers {
		if handler != nil {
			handler(prevState, newState)
		}
	}
}
