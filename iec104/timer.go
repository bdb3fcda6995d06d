package iec104

import (
	"strings"
	"time"
)

// Default timer values.
const (
	DefaultT1           = 6 * time.Second
	DefaultT2           = 8 * time.Second
	DefaultT3           = 10 * time.Second
	DefaultTickInterval = 1 * time.Second
)

// Expiry is the set of timers that fired on one tick.
type Expiry uint8

const (
	// T1 supervises STARTDT, STOPDT and TESTFR confirmations. Its expiry is fatal.
	T1 Expiry = 1 << iota
	// T2 bounds how long received I-format frames stay unacknowledged.
	T2
	// T3 triggers a TESTFR when no frame has been sent for a while.
	T3
)

// Has reports whether timer t fired.
func (e Expiry) Has(t Expiry) bool {
	return e&t != 0
}

// String returns the fired timers, e.g. "t2|t3", or "none".
func (e Expiry) String() string {
	if e == 0 {
		return "none"
	}

	names := make([]string, 0, 3)
	if e.Has(T1) {
		names = append(names, "t1")
	}
	if e.Has(T2) {
		names = append(names, "t2")
	}
	if e.Has(T3) {
		names = append(names, "t3")
	}

	return strings.Join(names, "|")
}

// TicksFor converts d to a number of ticks of length tick, rounding up. The result is at least one.
func TicksFor(d time.Duration, tick time.Duration) int {
	if tick <= 0 {
		tick = DefaultTickInterval
	}

	n := int((d + tick - 1) / tick)
	if n < 1 {
		n = 1
	}

	return n
}

// countdown is a reloadable down counter measured in ticks.
type countdown struct {
	reload    int
	remaining int
	armed     bool
}

func (c *countdown) arm() {
	c.remaining = c.reload
	c.armed = true
}

func (c *countdown) stop() {
	c.armed = false
}

// tick advances the countdown and reports whether it reached zero.
func (c *countdown) tick() bool {
	if !c.armed {
		return false
	}

	c.remaining--

	return c.remaining <= 0
}

// Supervisor drives the t1, t2 and t3 countdowns of one connection from a single periodic tick.
//
// The countdowns are independent: t1 is armed for an unnumbered handshake and disarmed when it fires,
// while t2 and t3 run continuously during data transfer and reload after firing. The supervisor only
// reports expiry; the session decides what to send or whether to disconnect.
//
// Supervisor is NOT goroutine-safe; the owning session serializes access.
type Supervisor struct {
	t1 countdown
	t2 countdown
	t3 countdown
}

// NewSupervisor creates a supervisor with the given countdown lengths in ticks. All timers start disarmed.
func NewSupervisor(t1Ticks, t2Ticks, t3Ticks int) *Supervisor {
	return &Supervisor{
		t1: countdown{reload: max(t1Ticks, 1)},
		t2: countdown{reload: max(t2Ticks, 1)},
		t3: countdown{reload: max(t3Ticks, 1)},
	}
}

// ArmT1 starts t1 from its full length.
func (s *Supervisor) ArmT1() { s.t1.arm() }

// StopT1 disarms t1.
func (s *Supervisor) StopT1() { s.t1.stop() }

// T1Armed reports whether t1 is running.
func (s *Supervisor) T1Armed() bool { return s.t1.armed }

// StartDataTransfer arms t2 and t3.
func (s *Supervisor) StartDataTransfer() {
	s.t2.arm()
	s.t3.arm()
}

// ReloadT2 restarts t2 if it is running. It is called for every received I-format frame.
func (s *Supervisor) ReloadT2() {
	if s.t2.armed {
		s.t2.arm()
	}
}

// ReloadT3 restarts t3 if it is running. It is called for every sent frame.
func (s *Supervisor) ReloadT3() {
	if s.t3.armed {
		s.t3.arm()
	}
}

// StopAll disarms every timer.
func (s *Supervisor) StopAll() {
	s.t1.stop()
	s.t2.stop()
	s.t3.stop()
}

// Tick advances every armed countdown by one tick and returns the timers that fired.
// t1 is disarmed when it fires; t2 and t3 reload.
func (s *Supervisor) Tick() Expiry {
	var fired Expiry

	if s.t1.tick() {
		s.t1.stop()
		fired |= T1
	}

	if s.t2.tick() {
		s.t2.arm()
		fired |= T2
	}

	if s.t3.tick() {
		s.t3.arm()
		fired |= T3
	}

	return fired
}
