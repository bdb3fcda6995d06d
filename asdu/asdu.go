package asdu

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// HeaderSize is the size of the data unit identifier in bytes.
	HeaderSize = 6
	// AddressSize is the size of an information object address in bytes.
	AddressSize = 3
	// MaxSize is the largest ASDU carried by one APDU: 253 length octets minus 4 control octets.
	MaxSize = 249
	// MaxObjects is the largest object count representable in 7 bits.
	MaxObjects = 127
)

// ASDU is an Application Service Data Unit.
//
// The object count on the wire is always len(Objects). Every object shares the ASDU type;
// when Sequence (SQ) is set the objects must have consecutive addresses starting at Objects[0].Address.
type ASDU struct {
	Type       TypeID
	Sequence   bool  // SQ: objects addressed by a base address with implicit +1 increments
	Cause      Cause // COT, 6 bits
	Test       bool  // T: test transmission
	Negative   bool  // P/N: negative confirmation
	Originator uint8
	CommonAddr uint16
	Objects    []InformationObject
}

// NewASDU creates an ASDU with the given type, cause and common address. The type of every
// object is set to typeID.
func NewASDU(typeID TypeID, cause Cause, commonAddr uint16, objs ...InformationObject) *ASDU {
	a := &ASDU{
		Type:       typeID,
		Cause:      cause,
		CommonAddr: commonAddr,
		Objects:    make([]InformationObject, len(objs)),
	}
	for i, obj := range objs {
		obj.Type = typeID
		a.Objects[i] = obj
	}

	return a
}

// Size returns the encoded size of the ASDU in bytes, or -1 for an unknown type.
func (a *ASDU) Size() int {
	objSize := a.Type.ObjectSize()
	if objSize < 0 {
		return -1
	}

	n := len(a.Objects)
	if n == 0 {
		return HeaderSize
	}

	if a.Sequence {
		return HeaderSize + AddressSize + n*objSize
	}

	return HeaderSize + n*(AddressSize+objSize)
}

// MarshalBinary encodes the ASDU into its wire representation.
//
// It implements encoding.BinaryMarshaler.
func (a *ASDU) MarshalBinary() ([]byte, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, a.Size())

	return a.AppendBinary(buf), nil
}

// AppendBinary appends the wire representation to buf without validation.
// Use MarshalBinary unless the ASDU is known to be valid.
func (a *ASDU) AppendBinary(buf []byte) []byte {
	numObjs := byte(len(a.Objects)) & 0x7F //nolint:gosec
	if a.Sequence {
		numObjs |= 0x80
	}

	cot := byte(a.Cause) & maxCause
	if a.Test {
		cot |= 0x80
	}
	if a.Negative {
		cot |= 0x40
	}

	buf = append(buf, byte(a.Type), numObjs, cot, a.Originator)
	buf = binary.LittleEndian.AppendUint16(buf, a.CommonAddr)

	info := typeInfos[a.Type]
	for i := range a.Objects {
		obj := &a.Objects[i]
		if i == 0 || !a.Sequence {
			buf = appendAddress(buf, obj.Address)
		}
		buf = appendElement(buf, info.kind, obj)
		if info.timeTag {
			buf = obj.Time.AppendBinary(buf)
		}
	}

	return buf
}

// UnmarshalBinary decodes data into a.
//
// It implements encoding.BinaryUnmarshaler.
func (a *ASDU) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*a = *decoded

	return nil
}

// String returns a one-line summary of the data unit identifier and the object count.
func (a *ASDU) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s cause=%s ca=%d org=%d objs=%d", a.Type, a.Cause, a.CommonAddr, a.Originator, len(a.Objects))
	if a.Sequence {
		sb.WriteString(" SQ")
	}
	if a.Test {
		sb.WriteString(" T")
	}
	if a.Negative {
		sb.WriteString(" N")
	}

	return sb.String()
}

func (a *ASDU) validate() error {
	if !a.Type.IsKnown() {
		return fmt.Errorf("type %d: %w", a.Type, ErrUnknownType)
	}

	if len(a.Objects) == 0 || len(a.Objects) > MaxObjects {
		return fmt.Errorf("object count %d out of range [1, %d]: %w", len(a.Objects), MaxObjects, ErrObjectCount)
	}

	if a.Cause > maxCause {
		return ErrInvalidCause
	}

	if size := a.Size(); size > MaxSize {
		return fmt.Errorf("size %d > %d: %w", size, MaxSize, ErrTooLarge)
	}

	base := a.Objects[0].Address
	for i := range a.Objects {
		obj := &a.Objects[i]
		if obj.Type != a.Type {
			return fmt.Errorf("object %d is %s: %w", i, obj.Type, ErrTypeMismatch)
		}

		if obj.Address > MaxObjectAddress {
			return fmt.Errorf("address %d: %w", obj.Address, ErrInvalidAddress)
		}

		if a.Sequence && obj.Address != base+uint32(i) { //nolint:gosec
			return fmt.Errorf("object %d address %d, want %d: %w", i, obj.Address, base+uint32(i), ErrNonSequential) //nolint:gosec
		}
	}

	return nil
}

func appendAddress(buf []byte, addr uint32) []byte {
	return append(buf, byte(addr), byte(addr>>8), byte(addr>>16))
}

func decodeAddress(data []byte) uint32 {
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
}
