package asdu

import (
	"encoding/binary"
	"fmt"
	"sync"
)

var decoderPool = sync.Pool{New: func() any { return new(asduDecoder) }}

// Decode decodes an ASDU from data. data must hold exactly one ASDU.
//
// An unknown type identification returns ErrUnknownType, and a byte count that does not match the
// declared object count returns ErrObjectCount. Both are recoverable: the enclosing frame can be dropped
// without affecting the session. Decode never panics on malformed input.
func Decode(data []byte) (*ASDU, error) {
	decoder, _ := decoderPool.Get().(*asduDecoder)
	decoder.input = data
	decoder.pos = 0

	a, err := decoder.decode()

	decoder.input = nil
	decoderPool.Put(decoder)

	return a, err
}

// asduDecoder keeps the read position within one ASDU.
type asduDecoder struct {
	input []byte
	pos   int
}

func (d *asduDecoder) remaining() int {
	return len(d.input) - d.pos
}

func (d *asduDecoder) read(length int) ([]byte, error) {
	if d.pos+length > len(d.input) {
		return nil, fmt.Errorf("need %d bytes, have %d: %w", length, d.remaining(), ErrTruncated)
	}
	result := d.input[d.pos : d.pos+length]
	d.pos += length

	return result, nil
}

func (d *asduDecoder) decode() (*ASDU, error) {
	header, err := d.read(HeaderSize)
	if err != nil {
		return nil, err
	}

	a := &ASDU{
		Type:       TypeID(header[0]),
		Sequence:   header[1]&0x80 != 0,
		Cause:      Cause(header[2] & maxCause),
		Test:       header[2]&0x80 != 0,
		Negative:   header[2]&0x40 != 0,
		Originator: header[3],
		CommonAddr: binary.LittleEndian.Uint16(header[4:6]),
	}
	numObjs := int(header[1] & 0x7F)

	info, ok := typeInfos[a.Type]
	if !ok {
		return a, fmt.Errorf("type %d: %w", header[0], ErrUnknownType)
	}

	objSize := a.Type.ObjectSize()
	expected := numObjs * (AddressSize + objSize)
	if a.Sequence && numObjs > 0 {
		expected = AddressSize + numObjs*objSize
	}

	if numObjs == 0 || d.remaining() != expected {
		return a, fmt.Errorf("%s declares %d objects, expected %d bytes, have %d: %w",
			a.Type, numObjs, expected, d.remaining(), ErrObjectCount)
	}

	a.Objects = make([]InformationObject, numObjs)

	var base uint32
	for i := range a.Objects {
		obj := &a.Objects[i]
		obj.Type = a.Type

		switch {
		case !a.Sequence:
			addr, _ := d.read(AddressSize)
			obj.Address = decodeAddress(addr)
		case i == 0:
			addr, _ := d.read(AddressSize)
			base = decodeAddress(addr)
			obj.Address = base
		default:
			obj.Address = (base + uint32(i)) & MaxObjectAddress //nolint:gosec
		}

		elem, _ := d.read(elementSizes[info.kind])
		decodeElement(elem, info.kind, obj)

		if info.timeTag {
			tag, _ := d.read(CP56Time2aSize)
			obj.Time, _ = DecodeCP56Time2a(tag)
		}
	}

	return a, nil
}
