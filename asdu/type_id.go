package asdu

import "strconv"

// TypeID is the type identification octet of an ASDU.
type TypeID uint8

// Process information in monitor direction.
const (
	M_SP_NA_1 TypeID = 1  // single-point information
	M_DP_NA_1 TypeID = 3  // double-point information
	M_ST_NA_1 TypeID = 5  // step position information
	M_BO_NA_1 TypeID = 7  // bitstring of 32 bit
	M_ME_NA_1 TypeID = 9  // measured value, normalized value
	M_ME_NB_1 TypeID = 11 // measured value, scaled value
	M_ME_NC_1 TypeID = 13 // measured value, short floating point number
	M_IT_NA_1 TypeID = 15 // integrated totals
	M_ME_ND_1 TypeID = 21 // measured value, normalized value without quality descriptor
	M_SP_TB_1 TypeID = 30 // single-point information with time tag CP56Time2a
	M_DP_TB_1 TypeID = 31 // double-point information with time tag CP56Time2a
	M_ST_TB_1 TypeID = 32 // step position information with time tag CP56Time2a
	M_BO_TB_1 TypeID = 33 // bitstring of 32 bit with time tag CP56Time2a
	M_ME_TD_1 TypeID = 34 // measured value, normalized value with time tag CP56Time2a
	M_ME_TE_1 TypeID = 35 // measured value, scaled value with time tag CP56Time2a
	M_ME_TF_1 TypeID = 36 // measured value, short floating point number with time tag CP56Time2a
	M_IT_TB_1 TypeID = 37 // integrated totals with time tag CP56Time2a
)

// Process information in control direction.
const (
	C_SC_NA_1 TypeID = 45 // single command
	C_DC_NA_1 TypeID = 46 // double command
	C_RC_NA_1 TypeID = 47 // regulating step command
	C_SE_NA_1 TypeID = 48 // set-point command, normalized value
	C_SE_NB_1 TypeID = 49 // set-point command, scaled value
	C_SE_NC_1 TypeID = 50 // set-point command, short floating point number
	C_BO_NA_1 TypeID = 51 // bitstring of 32 bit
	C_SC_TA_1 TypeID = 58 // single command with time tag CP56Time2a
	C_DC_TA_1 TypeID = 59 // double command with time tag CP56Time2a
	C_RC_TA_1 TypeID = 60 // regulating step command with time tag CP56Time2a
	C_SE_TA_1 TypeID = 61 // set-point command, normalized value with time tag CP56Time2a
	C_SE_TB_1 TypeID = 62 // set-point command, scaled value with time tag CP56Time2a
	C_SE_TC_1 TypeID = 63 // set-point command, short floating point number with time tag CP56Time2a
	C_BO_TA_1 TypeID = 64 // bitstring of 32 bit with time tag CP56Time2a
)

// System information.
const (
	M_EI_NA_1 TypeID = 70  // end of initialization
	C_IC_NA_1 TypeID = 100 // interrogation command
	C_CI_NA_1 TypeID = 101 // counter interrogation command
	C_RD_NA_1 TypeID = 102 // read command
	C_CS_NA_1 TypeID = 103 // clock synchronization command
	C_RP_NA_1 TypeID = 105 // reset process command
	C_TS_TA_1 TypeID = 107 // test command with time tag CP56Time2a
)

// elementKind identifies the layout of one information element, excluding address and time tag.
type elementKind uint8

const (
	kindNone      elementKind = iota // no element octets
	kindSIQ                          // single-point with quality
	kindDIQ                          // double-point with quality
	kindVTI                          // value with transient state + QDS
	kindBSI                          // 32-bit bitstring + QDS
	kindNVA                          // normalized value + QDS
	kindSVA                          // scaled value + QDS
	kindFloat                        // IEEE 754 short float + QDS
	kindBCR                          // binary counter reading
	kindNVARaw                       // normalized value, no quality
	kindSCO                          // single command
	kindDCO                          // double command
	kindRCO                          // regulating step command
	kindSetNVA                       // normalized set-point + QOS
	kindSetSVA                       // scaled set-point + QOS
	kindSetFloat                     // short float set-point + QOS
	kindBSIRaw                       // 32-bit bitstring, no quality
	kindQualifier                    // single qualifier octet (COI, QOI, QCC, QRP)
	kindTSC                          // 16-bit test sequence counter
)

var elementSizes = [...]int{
	kindNone:      0,
	kindSIQ:       1,
	kindDIQ:       1,
	kindVTI:       2,
	kindBSI:       5,
	kindNVA:       3,
	kindSVA:       3,
	kindFloat:     5,
	kindBCR:       5,
	kindNVARaw:    2,
	kindSCO:       1,
	kindDCO:       1,
	kindRCO:       1,
	kindSetNVA:    3,
	kindSetSVA:    3,
	kindSetFloat:  5,
	kindBSIRaw:    4,
	kindQualifier: 1,
	kindTSC:       2,
}

type typeInfo struct {
	name    string
	kind    elementKind
	timeTag bool
}

var typeInfos = map[TypeID]typeInfo{
	M_SP_NA_1: {"M_SP_NA_1", kindSIQ, false},
	M_DP_NA_1: {"M_DP_NA_1", kindDIQ, false},
	M_ST_NA_1: {"M_ST_NA_1", kindVTI, false},
	M_BO_NA_1: {"M_BO_NA_1", kindBSI, false},
	M_ME_NA_1: {"M_ME_NA_1", kindNVA, false},
	M_ME_NB_1: {"M_ME_NB_1", kindSVA, false},
	M_ME_NC_1: {"M_ME_NC_1", kindFloat, false},
	M_IT_NA_1: {"M_IT_NA_1", kindBCR, false},
	M_ME_ND_1: {"M_ME_ND_1", kindNVARaw, false},
	M_SP_TB_1: {"M_SP_TB_1", kindSIQ, true},
	M_DP_TB_1: {"M_DP_TB_1", kindDIQ, true},
	M_ST_TB_1: {"M_ST_TB_1", kindVTI, true},
	M_BO_TB_1: {"M_BO_TB_1", kindBSI, true},
	M_ME_TD_1: {"M_ME_TD_1", kindNVA, true},
	M_ME_TE_1: {"M_ME_TE_1", kindSVA, true},
	M_ME_TF_1: {"M_ME_TF_1", kindFloat, true},
	M_IT_TB_1: {"M_IT_TB_1", kindBCR, true},

	C_SC_NA_1: {"C_SC_NA_1", kindSCO, false},
	C_DC_NA_1: {"C_DC_NA_1", kindDCO, false},
	C_RC_NA_1: {"C_RC_NA_1", kindRCO, false},
	C_SE_NA_1: {"C_SE_NA_1", kindSetNVA, false},
	C_SE_NB_1: {"C_SE_NB_1", kindSetSVA, false},
	C_SE_NC_1: {"C_SE_NC_1", kindSetFloat, false},
	C_BO_NA_1: {"C_BO_NA_1", kindBSIRaw, false},
	C_SC_TA_1: {"C_SC_TA_1", kindSCO, true},
	C_DC_TA_1: {"C_DC_TA_1", kindDCO, true},
	C_RC_TA_1: {"C_RC_TA_1", kindRCO, true},
	C_SE_TA_1: {"C_SE_TA_1", kindSetNVA, true},
	C_SE_TB_1: {"C_SE_TB_1", kindSetSVA, true},
	C_SE_TC_1: {"C_SE_TC_1", kindSetFloat, true},
	C_BO_TA_1: {"C_BO_TA_1", kindBSIRaw, true},

	M_EI_NA_1: {"M_EI_NA_1", kindQualifier, false},
	C_IC_NA_1: {"C_IC_NA_1", kindQualifier, false},
	C_CI_NA_1: {"C_CI_NA_1", kindQualifier, false},
	C_RD_NA_1: {"C_RD_NA_1", kindNone, false},
	C_CS_NA_1: {"C_CS_NA_1", kindNone, true},
	C_RP_NA_1: {"C_RP_NA_1", kindQualifier, false},
	C_TS_TA_1: {"C_TS_TA_1", kindTSC, true},
}

// timeTagged maps a command without time tag to its CP56Time2a variant.
var timeTagged = map[TypeID]TypeID{
	C_SC_NA_1: C_SC_TA_1,
	C_DC_NA_1: C_DC_TA_1,
	C_RC_NA_1: C_RC_TA_1,
	C_SE_NA_1: C_SE_TA_1,
	C_SE_NB_1: C_SE_TB_1,
	C_SE_NC_1: C_SE_TC_1,
	C_BO_NA_1: C_BO_TA_1,
}

// String returns the IEC mnemonic of the type, e.g. "M_SP_NA_1".
func (t TypeID) String() string {
	if info, ok := typeInfos[t]; ok {
		return info.name
	}

	return "TypeID(" + strconv.Itoa(int(t)) + ")"
}

// IsKnown reports whether the type has a known element layout.
func (t TypeID) IsKnown() bool {
	_, ok := typeInfos[t]
	return ok
}

// HasTimeTag reports whether every element of the type carries a CP56Time2a time tag.
func (t TypeID) HasTimeTag() bool {
	return typeInfos[t].timeTag
}

// IsMonitor reports whether the type is process information in monitor direction.
func (t TypeID) IsMonitor() bool {
	return t.IsKnown() && t < C_SC_NA_1
}

// IsCommand reports whether the type is process information in control direction.
func (t TypeID) IsCommand() bool {
	return t.IsKnown() && t >= C_SC_NA_1 && t <= C_BO_TA_1
}

// IsSystem reports whether the type is system information (end of initialization and system commands).
func (t TypeID) IsSystem() bool {
	return t.IsKnown() && t >= M_EI_NA_1
}

// ObjectSize returns the size in bytes of one element of the type including its time tag,
// excluding the information object address. It returns -1 for unknown types.
func (t TypeID) ObjectSize() int {
	info, ok := typeInfos[t]
	if !ok {
		return -1
	}

	size := elementSizes[info.kind]
	if info.timeTag {
		size += CP56Time2aSize
	}

	return size
}

// WithTimeTag returns the CP56Time2a variant of a command type. Types that already carry a time tag,
// or have no time-tagged variant, are returned unchanged.
func (t TypeID) WithTimeTag() TypeID {
	if tagged, ok := timeTagged[t]; ok {
		return tagged
	}

	return t
}

func (t TypeID) kind() elementKind {
	return typeInfos[t].kind
}
