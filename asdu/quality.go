package asdu

import "strings"

// Quality is a set of quality and type-specific flags attached to an information object.
//
// The low byte uses the bit positions of the quality descriptor (QDS) on the wire, so
// the same flags apply to single-point (SIQ) and double-point (DIQ) information. The high
// byte holds flags that live in other octets depending on the element type.
type Quality uint16

const (
	QualityOverflow    Quality = 0x0001 // OV: value beyond predefined range
	QualityBlocked     Quality = 0x0010 // BL: value blocked for transmission
	QualitySubstituted Quality = 0x0020 // SB: value provided by an operator or automatic source
	QualityNotTopical  Quality = 0x0040 // NT: last update was not successful
	QualityInvalid     Quality = 0x0080 // IV: value is invalid
	QualityTransient   Quality = 0x0100 // step position is in transient state
	QualityCarry       Quality = 0x0200 // counter overflow in the integration period
	QualityAdjusted    Quality = 0x0400 // counter was adjusted
	QualitySelect      Quality = 0x0800 // command is a select, otherwise execute
	QualityNegative    Quality = 0x1000 // activation was negatively confirmed
)

// QualityGood is the empty flag set.
const QualityGood Quality = 0

const (
	qdsMask Quality = QualityOverflow | QualityBlocked | QualitySubstituted | QualityNotTopical | QualityInvalid
	siqMask Quality = QualityBlocked | QualitySubstituted | QualityNotTopical | QualityInvalid
)

var qualityNames = []struct {
	flag Quality
	name string
}{
	{QualityOverflow, "OV"},
	{QualityBlocked, "BL"},
	{QualitySubstituted, "SB"},
	{QualityNotTopical, "NT"},
	{QualityInvalid, "IV"},
	{QualityTransient, "T"},
	{QualityCarry, "CY"},
	{QualityAdjusted, "CA"},
	{QualitySelect, "S/E"},
	{QualityNegative, "P/N"},
}

// Has reports whether all flags in f are set.
func (q Quality) Has(f Quality) bool {
	return q&f == f
}

// IsGood reports whether none of the QDS flags is set.
func (q Quality) IsGood() bool {
	return q&qdsMask == 0
}

// String returns the set flags joined by "|", or "good" for an empty set.
func (q Quality) String() string {
	if q == QualityGood {
		return "good"
	}

	var sb strings.Builder
	for _, qn := range qualityNames {
		if q&qn.flag == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(qn.name)
	}

	return sb.String()
}
