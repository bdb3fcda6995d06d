package iec104

import (
	"fmt"

	"github.com/arloliu/go-iec104/asdu"
)

const (
	// StartByte is the first byte of every APDU.
	StartByte = 0x68
	// APCISize is the number of control octets.
	APCISize = 4
	// HeaderSize is the size of start byte, length octet and control octets.
	HeaderSize = 2 + APCISize
	// MaxAPDULength is the largest value of the length octet.
	MaxAPDULength = 253
	// MaxFrameSize is the largest frame including start byte and length octet.
	MaxFrameSize = MaxAPDULength + 2
	// SeqModulo is the modulus of the 15-bit sequence numbers.
	SeqModulo = 1 << 15
)

// FrameFormat is the format of an APDU, selected by the low bits of the first control octet.
type FrameFormat uint8

const (
	// IFormat frames carry a numbered ASDU.
	IFormat FrameFormat = iota
	// SFormat frames acknowledge received I-format frames.
	SFormat
	// UFormat frames carry one unnumbered control function.
	UFormat
)

// String returns "I", "S" or "U".
func (f FrameFormat) String() string {
	switch f {
	case IFormat:
		return "I"
	case SFormat:
		return "S"
	case UFormat:
		return "U"
	default:
		return "?"
	}
}

// UFunction is the first control octet of a U-format frame.
type UFunction uint8

const (
	StartDTAct UFunction = 0x07
	StartDTCon UFunction = 0x0B
	StopDTAct  UFunction = 0x13
	StopDTCon  UFunction = 0x23
	TestFRAct  UFunction = 0x43
	TestFRCon  UFunction = 0x83
)

// IsValid reports whether f is exactly one of the six U-format functions.
func (f UFunction) IsValid() bool {
	switch f {
	case StartDTAct, StartDTCon, StopDTAct, StopDTCon, TestFRAct, TestFRCon:
		return true
	default:
		return false
	}
}

// String returns the function name.
func (f UFunction) String() string {
	switch f {
	case StartDTAct:
		return "STARTDT act"
	case StartDTCon:
		return "STARTDT con"
	case StopDTAct:
		return "STOPDT act"
	case StopDTCon:
		return "STOPDT con"
	case TestFRAct:
		return "TESTFR act"
	case TestFRCon:
		return "TESTFR con"
	default:
		return fmt.Sprintf("UFunction(0x%02X)", uint8(f))
	}
}

// APDU is one Application Protocol Data Unit.
//
// SendSeq is meaningful for I-format frames only, RecvSeq for I- and S-format frames,
// Function for U-format frames, and ASDU for I-format frames.
type APDU struct {
	Format   FrameFormat
	Function UFunction
	SendSeq  uint16
	RecvSeq  uint16
	ASDU     *asdu.ASDU
}

// NewIFrame creates an I-format APDU.
func NewIFrame(sendSeq, recvSeq uint16, a *asdu.ASDU) *APDU {
	return &APDU{Format: IFormat, SendSeq: sendSeq % SeqModulo, RecvSeq: recvSeq % SeqModulo, ASDU: a}
}

// NewSFrame creates an S-format APDU acknowledging frames up to recvSeq-1.
func NewSFrame(recvSeq uint16) *APDU {
	return &APDU{Format: SFormat, RecvSeq: recvSeq % SeqModulo}
}

// NewUFrame creates a U-format APDU.
func NewUFrame(fn UFunction) *APDU {
	return &APDU{Format: UFormat, Function: fn}
}

// MarshalBinary encodes the APDU including start byte and length octet.
//
// It implements encoding.BinaryMarshaler.
func (a *APDU) MarshalBinary() ([]byte, error) {
	return a.AppendBinary(nil)
}

// AppendBinary appends the encoded APDU to buf and returns the extended buffer.
func (a *APDU) AppendBinary(buf []byte) ([]byte, error) {
	switch a.Format {
	case IFormat:
		if a.ASDU == nil {
			return nil, fmt.Errorf("%w: I-format frame without asdu", ErrInvalidASDU)
		}

		body, err := a.ASDU.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidASDU, err)
		}

		buf = append(buf, StartByte, byte(APCISize+len(body))) //nolint:gosec
		buf = appendSeq(buf, a.SendSeq)
		buf = appendSeq(buf, a.RecvSeq)

		return append(buf, body...), nil

	case SFormat:
		buf = append(buf, StartByte, APCISize, 0x01, 0x00)

		return appendSeq(buf, a.RecvSeq), nil

	case UFormat:
		if !a.Function.IsValid() {
			return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidUFunction, uint8(a.Function))
		}

		return append(buf, StartByte, APCISize, byte(a.Function), 0x00, 0x00, 0x00), nil
	}

	return nil, fmt.Errorf("unknown frame format %d", a.Format)
}

// String returns a compact description, e.g. "I(ns=3 nr=5) M_SP_NA_1 cause=spontaneous ...".
func (a *APDU) String() string {
	switch a.Format {
	case IFormat:
		s := fmt.Sprintf("I(ns=%d nr=%d)", a.SendSeq, a.RecvSeq)
		if a.ASDU != nil {
			s += " " + a.ASDU.String()
		}

		return s
	case SFormat:
		return fmt.Sprintf("S(nr=%d)", a.RecvSeq)
	case UFormat:
		return "U(" + a.Function.String() + ")"
	default:
		return "APDU(?)"
	}
}

// appendSeq appends a 15-bit sequence number as two control octets, shifted left by one bit.
func appendSeq(buf []byte, seq uint16) []byte {
	seq %= SeqModulo
	return append(buf, byte(seq<<1), byte(seq>>7))
}

// decodeSeq is the inverse of appendSeq.
func decodeSeq(lo, hi byte) uint16 {
	return uint16(lo>>1) | uint16(hi)<<7
}
