package master

import "errors"

var (
	// ErrConfigNil indicates an option applied to a nil configuration.
	ErrConfigNil = errors.New("config is nil")

	// ErrLinkNotReady indicates a request made while data transfer is not started.
	// The request is rejected without any I/O.
	ErrLinkNotReady = errors.New("link not ready for data transfer")

	// ErrSessionClosed indicates the session was closed by Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionOpened indicates Open on a session that is already connected.
	ErrSessionOpened = errors.New("session already opened")

	// ErrInterrogationPending indicates an interrogation requested while the previous one is not terminated.
	ErrInterrogationPending = errors.New("interrogation already pending")

	// ErrUnexpectedIFrame indicates an I-format frame received before STARTDT was confirmed. The frame is dropped.
	ErrUnexpectedIFrame = errors.New("I-format frame received outside data transfer")

	// ErrNegativeConfirm indicates the station refused an interrogation with a negative confirmation.
	ErrNegativeConfirm = errors.New("negative confirmation")

	// ErrUnknownActivation indicates the station mirrored an activation with cause 44..47
	// (unknown type, cause, common address or object address).
	ErrUnknownActivation = errors.New("activation rejected by station")
)

var (
	// ErrSinkPanic indicates that a Sink method panicked. The connection is ended.
	ErrSinkPanic = errors.New("sink panicked")
	// ErrTaskPanic indicates that the receive or timer task panicked. The connection is ended.
	ErrTaskPanic = errors.New("session task panicked")
)
