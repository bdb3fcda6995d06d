package iec104

import (
	"fmt"

	"github.com/arloliu/go-iec104/asdu"
)

// FrameLength inspects the head of buf and returns the size of the frame it starts with,
// including start byte and length octet.
//
// It returns ErrNeedMoreData when buf holds fewer than two bytes, or fewer bytes than the frame size;
// in the latter case the returned size is already valid. ErrInvalidStart and ErrInvalidLength report
// a head that can not start a frame; the caller should drop one byte and retry.
func FrameLength(buf []byte) (int, error) {
	if len(buf) < 2 {
		if len(buf) == 1 && buf[0] != StartByte {
			return 0, ErrInvalidStart
		}

		return 0, ErrNeedMoreData
	}

	if buf[0] != StartByte {
		return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidStart, buf[0])
	}

	length := int(buf[1])
	if length < APCISize || length > MaxAPDULength {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	size := length + 2
	if len(buf) < size {
		return size, ErrNeedMoreData
	}

	return size, nil
}

// Decode decodes one whole frame.
//
// When the APCI of an I-format frame is valid but its ASDU is not, Decode returns the APDU with a nil
// ASDU together with an error wrapping ErrInvalidASDU, so the caller can still honor the sequence numbers.
// For every other error the returned APDU is nil.
func Decode(frame []byte) (*APDU, error) {
	size, err := FrameLength(frame)
	if err != nil {
		return nil, err
	}

	if len(frame) != size {
		return nil, fmt.Errorf("%w: frame has %d bytes, length octet declares %d", ErrInvalidLength, len(frame), size)
	}

	cf := frame[2:HeaderSize]

	switch {
	case cf[0]&0x01 == 0:
		apdu := &APDU{
			Format:  IFormat,
			SendSeq: decodeSeq(cf[0], cf[1]),
			RecvSeq: decodeSeq(cf[2], cf[3]),
		}

		a, err := asdu.Decode(frame[HeaderSize:])
		if err != nil {
			return apdu, fmt.Errorf("%w: %w", ErrInvalidASDU, err)
		}
		apdu.ASDU = a

		return apdu, nil

	case cf[0]&0x03 == 0x01:
		if size != HeaderSize {
			return nil, fmt.Errorf("%w: S-format frame with %d bytes", ErrInvalidLength, size)
		}

		return &APDU{Format: SFormat, RecvSeq: decodeSeq(cf[2], cf[3])}, nil

	default:
		if size != HeaderSize {
			return nil, fmt.Errorf("%w: U-format frame with %d bytes", ErrInvalidLength, size)
		}

		fn := UFunction(cf[0])
		if !fn.IsValid() {
			return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidUFunction, cf[0])
		}

		return &APDU{Format: UFormat, Function: fn}, nil
	}
}
