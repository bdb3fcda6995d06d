package iec104

import "errors"

// Framing errors. They are recoverable: the reader resynchronizes and the session continues.
var (
	// ErrInvalidStart indicates that the first byte of a frame is not the 0x68 start byte.
	ErrInvalidStart = errors.New("invalid start byte")

	// ErrNeedMoreData indicates that the buffer does not hold a whole frame yet.
	ErrNeedMoreData = errors.New("need more data")

	// ErrInvalidLength indicates an APDU length octet outside [4, 253], or a frame whose size
	// disagrees with its length octet.
	ErrInvalidLength = errors.New("invalid apdu length")

	// ErrInvalidUFunction indicates a U-format control octet with no, or more than one, function bit set.
	ErrInvalidUFunction = errors.New("invalid u-format function")

	// ErrInvalidASDU indicates that the ASDU of an I-format frame could not be decoded.
	// The error also wraps the asdu package error that caused it.
	ErrInvalidASDU = errors.New("invalid asdu")
)

// Sequence errors. They are fatal to the connection.
var (
	// ErrOutOfOrder indicates an I-format frame whose send sequence number differs from VR.
	ErrOutOfOrder = errors.New("out-of-order sequence")

	// ErrAckAhead indicates a receive sequence number acknowledging frames that were never sent.
	ErrAckAhead = errors.New("ack ahead of send sequence")
)

var (
	// ErrWindowFull indicates that k I-format frames are awaiting acknowledgment.
	ErrWindowFull = errors.New("send window full")

	// ErrInvalidTransition is returned when an attempt is made to move the link to a state
	// not reachable from the current one.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Disconnect reasons.
var (
	// ErrStartTimeout indicates that STARTDT was not confirmed within t1.
	ErrStartTimeout = errors.New("start-timeout")

	// ErrStopTimeout indicates that STOPDT was not confirmed within t1.
	ErrStopTimeout = errors.New("stop-timeout")

	// ErrTestTimeout indicates that TESTFR was not confirmed within t1.
	ErrTestTimeout = errors.New("test-timeout")

	// ErrPeerClosed indicates that the peer closed the connection.
	ErrPeerClosed = errors.New("peer-closed")

	// ErrStopped indicates that data transfer was stopped by a confirmed STOPDT.
	ErrStopped = errors.New("stopped")
)
