package asdu

import "errors"

var (
	// ErrTruncated indicates that the input ended before the data unit identifier or an element was complete.
	ErrTruncated = errors.New("asdu truncated")

	// ErrUnknownType indicates that the type identification is not supported by this package.
	ErrUnknownType = errors.New("unknown asdu type")

	// ErrObjectCount indicates that the number of objects does not match the bytes present,
	// or that the object count is outside [1, 127].
	ErrObjectCount = errors.New("asdu object count mismatch")

	// ErrTooLarge indicates that the encoded ASDU exceeds MaxSize.
	ErrTooLarge = errors.New("asdu exceeds maximum size")
)

var (
	// ErrInvalidAddress indicates an information object address wider than 24 bits.
	ErrInvalidAddress = errors.New("information object address out of range [0, 16777215]")

	// ErrNonSequential indicates that a sequence ASDU (SQ=1) holds objects whose addresses are not consecutive.
	ErrNonSequential = errors.New("information object addresses are not consecutive")

	// ErrTypeMismatch indicates that an information object type differs from the ASDU type.
	ErrTypeMismatch = errors.New("information object type differs from asdu type")

	// ErrInvalidCause indicates a cause of transmission outside [0, 63].
	ErrInvalidCause = errors.New("cause of transmission out of range [0, 63]")

	// ErrNotCommand indicates that the type identification is not a control direction command.
	ErrNotCommand = errors.New("type is not a command")
)
