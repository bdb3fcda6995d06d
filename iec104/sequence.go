package iec104

import "fmt"

const (
	// DefaultWindowK is the default maximum number of unacknowledged I-format frames sent.
	DefaultWindowK = 12
	// DefaultWindowW is the default number of received I-format frames after which an acknowledgment is due.
	DefaultWindowW = 8
)

// SeqTracker keeps the send and receive state variables of one connection.
//
// VS is the sequence number of the next I-format frame to send and VR the sequence number expected
// in the next received I-format frame. Both count modulo 32768. The tracker also remembers the
// oldest sent frame not yet acknowledged by the peer, and how many received frames have not been
// acknowledged by us.
//
// SeqTracker is NOT goroutine-safe; the owning session serializes access.
type SeqTracker struct {
	vs          uint16
	vr          uint16
	ackedVS     uint16
	unackedRecv int
	checkOrder  bool
	k           int
	w           int
}

// NewSeqTracker creates a tracker with both state variables at zero.
//
// When checkOrder is false, received send sequence numbers are accepted without comparison to VR.
// k and w are the IEC 104 window parameters; non-positive values select the defaults.
func NewSeqTracker(checkOrder bool, k int, w int) *SeqTracker {
	if k <= 0 {
		k = DefaultWindowK
	}
	if w <= 0 {
		w = DefaultWindowW
	}

	return &SeqTracker{checkOrder: checkOrder, k: k, w: w}
}

// Reset sets every counter back to zero, as on a new connection.
func (s *SeqTracker) Reset() {
	s.vs = 0
	s.vr = 0
	s.ackedVS = 0
	s.unackedRecv = 0
}

// VS returns the send state variable.
func (s *SeqTracker) VS() uint16 { return s.vs }

// VR returns the receive state variable.
func (s *SeqTracker) VR() uint16 { return s.vr }

// NextSend returns the send sequence number for a new I-format frame and advances VS.
// It returns ErrWindowFull, without advancing, when k frames are awaiting acknowledgment.
func (s *SeqTracker) NextSend() (uint16, error) {
	if s.Outstanding() >= s.k {
		return 0, fmt.Errorf("%w: %d frames unacknowledged", ErrWindowFull, s.Outstanding())
	}

	ns := s.vs
	s.vs = (s.vs + 1) % SeqModulo

	return ns, nil
}

// OnReceiveI records a received I-format frame with send sequence number ns.
// With order checking enabled, ns must equal VR or ErrOutOfOrder is returned and VR is left unchanged.
func (s *SeqTracker) OnReceiveI(ns uint16) error {
	if s.checkOrder && ns != s.vr {
		return fmt.Errorf("%w: received ns=%d, expected %d", ErrOutOfOrder, ns, s.vr)
	}

	s.vr = (s.vr + 1) % SeqModulo
	s.unackedRecv++

	return nil
}

// OnReceiveAck records a receive sequence number nr carried by an I- or S-format frame.
// nr acknowledges every frame sent with a sequence number before nr; it must lie between the
// last acknowledged number and VS, or ErrAckAhead is returned.
func (s *SeqTracker) OnReceiveAck(nr uint16) error {
	if seqDistance(s.ackedVS, nr) > seqDistance(s.ackedVS, s.vs) {
		return fmt.Errorf("%w: received nr=%d, acknowledged=%d, vs=%d", ErrAckAhead, nr, s.ackedVS, s.vs)
	}

	s.ackedVS = nr % SeqModulo

	return nil
}

// Outstanding returns the number of sent I-format frames not yet acknowledged by the peer.
func (s *SeqTracker) Outstanding() int {
	return seqDistance(s.ackedVS, s.vs)
}

// PendingAck returns the number of received I-format frames not yet acknowledged.
func (s *SeqTracker) PendingAck() int {
	return s.unackedRecv
}

// AckDue reports whether w received frames are waiting for acknowledgment.
func (s *SeqTracker) AckDue() bool {
	return s.unackedRecv >= s.w
}

// MarkAcked records that a frame carrying VR was sent, acknowledging every received frame.
func (s *SeqTracker) MarkAcked() {
	s.unackedRecv = 0
}

// seqDistance returns (to - from) modulo 32768.
func seqDistance(from, to uint16) int {
	return int((to%SeqModulo + SeqModulo - from%SeqModulo) % SeqModulo)
}
