package asdu

import "encoding/binary"

// appendElement appends the element octets of obj, without address and time tag, to buf.
func appendElement(buf []byte, kind elementKind, obj *InformationObject) []byte { //nolint:cyclop,gosec
	qds := byte(obj.Quality & qdsMask)
	raw := int64(obj.Value)

	switch kind {
	case kindNone:
		return buf

	case kindSIQ:
		return append(buf, byte(raw)&0x01|byte(obj.Quality&siqMask))

	case kindDIQ:
		return append(buf, byte(raw)&0x03|byte(obj.Quality&siqMask))

	case kindVTI:
		vti := byte(raw) & 0x7F
		if obj.Quality.Has(QualityTransient) {
			vti |= 0x80
		}
		return append(buf, vti, qds)

	case kindBSI:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(raw))
		return append(buf, qds)

	case kindNVA, kindSVA:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(raw)))
		return append(buf, qds)

	case kindFloat:
		buf = binary.LittleEndian.AppendUint32(buf, obj.float32Bits())
		return append(buf, qds)

	case kindBCR:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(raw)))
		seq := obj.Qualifier & 0x1F
		if obj.Quality.Has(QualityCarry) {
			seq |= 0x20
		}
		if obj.Quality.Has(QualityAdjusted) {
			seq |= 0x40
		}
		if obj.Quality.Has(QualityInvalid) {
			seq |= 0x80
		}
		return append(buf, seq)

	case kindNVARaw:
		return binary.LittleEndian.AppendUint16(buf, uint16(int16(raw)))

	case kindSCO:
		return append(buf, commandOctet(byte(raw)&0x01, obj))

	case kindDCO, kindRCO:
		return append(buf, commandOctet(byte(raw)&0x03, obj))

	case kindSetNVA, kindSetSVA:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(raw)))
		return append(buf, setpointQualifier(obj))

	case kindSetFloat:
		buf = binary.LittleEndian.AppendUint32(buf, obj.float32Bits())
		return append(buf, setpointQualifier(obj))

	case kindBSIRaw:
		return binary.LittleEndian.AppendUint32(buf, uint32(raw))

	case kindQualifier:
		return append(buf, obj.Qualifier)

	case kindTSC:
		return binary.LittleEndian.AppendUint16(buf, uint16(raw))
	}

	return buf
}

// commandOctet builds SCO/DCO/RCO: state bits 0-1, QU bits 2-6, S/E bit 7.
func commandOctet(state byte, obj *InformationObject) byte {
	b := state | (obj.Qualifier&0x1F)<<2
	if obj.Quality.Has(QualitySelect) {
		b |= 0x80
	}

	return b
}

// setpointQualifier builds QOS: QL bits 0-6, S/E bit 7.
func setpointQualifier(obj *InformationObject) byte {
	b := obj.Qualifier & 0x7F
	if obj.Quality.Has(QualitySelect) {
		b |= 0x80
	}

	return b
}

// decodeElement fills obj from the element octets in data. The caller guarantees len(data) matches the kind.
func decodeElement(data []byte, kind elementKind, obj *InformationObject) { //nolint:cyclop
	switch kind {
	case kindNone:

	case kindSIQ:
		obj.Value = float64(data[0] & 0x01)
		obj.Quality = Quality(data[0]) & siqMask

	case kindDIQ:
		obj.Value = float64(data[0] & 0x03)
		obj.Quality = Quality(data[0]) & siqMask

	case kindVTI:
		obj.Value = float64(int8(data[0]<<1) >> 1) //nolint:gosec
		obj.Quality = Quality(data[1]) & qdsMask
		if data[0]&0x80 != 0 {
			obj.Quality |= QualityTransient
		}

	case kindBSI:
		obj.Value = float64(binary.LittleEndian.Uint32(data))
		obj.Quality = Quality(data[4]) & qdsMask

	case kindNVA, kindSVA:
		obj.Value = float64(int16(binary.LittleEndian.Uint16(data))) //nolint:gosec
		obj.Quality = Quality(data[2]) & qdsMask

	case kindFloat:
		obj.setFloat32Bits(binary.LittleEndian.Uint32(data))
		obj.Quality = Quality(data[4]) & qdsMask

	case kindBCR:
		obj.Value = float64(int32(binary.LittleEndian.Uint32(data))) //nolint:gosec
		obj.Qualifier = data[4] & 0x1F
		if data[4]&0x20 != 0 {
			obj.Quality |= QualityCarry
		}
		if data[4]&0x40 != 0 {
			obj.Quality |= QualityAdjusted
		}
		if data[4]&0x80 != 0 {
			obj.Quality |= QualityInvalid
		}

	case kindNVARaw:
		obj.Value = float64(int16(binary.LittleEndian.Uint16(data))) //nolint:gosec

	case kindSCO:
		obj.Value = float64(data[0] & 0x01)
		decodeCommandOctet(data[0], obj)

	case kindDCO, kindRCO:
		obj.Value = float64(data[0] & 0x03)
		decodeCommandOctet(data[0], obj)

	case kindSetNVA, kindSetSVA:
		obj.Value = float64(int16(binary.LittleEndian.Uint16(data))) //nolint:gosec
		decodeSetpointQualifier(data[2], obj)

	case kindSetFloat:
		obj.setFloat32Bits(binary.LittleEndian.Uint32(data))
		decodeSetpointQualifier(data[4], obj)

	case kindBSIRaw:
		obj.Value = float64(binary.LittleEndian.Uint32(data))

	case kindQualifier:
		obj.Qualifier = data[0]

	case kindTSC:
		obj.Value = float64(binary.LittleEndian.Uint16(data))
	}
}

func decodeCommandOctet(b byte, obj *InformationObject) {
	obj.Qualifier = (b >> 2) & 0x1F
	if b&0x80 != 0 {
		obj.Quality |= QualitySelect
	}
}

func decodeSetpointQualifier(b byte, obj *InformationObject) {
	obj.Qualifier = b & 0x7F
	if b&0x80 != 0 {
		obj.Quality |= QualitySelect
	}
}
