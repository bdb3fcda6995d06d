package asdu

import (
	"fmt"
	"math"
	"time"
)

// MaxObjectAddress is the largest information object address (24 bits).
const MaxObjectAddress = 0xFFFFFF

// DoublePoint is the two-bit state of double-point information and double commands.
type DoublePoint uint8

const (
	DoublePointIndeterminate DoublePoint = 0 // intermediate state
	DoublePointOff           DoublePoint = 1 // determined state OFF
	DoublePointOn            DoublePoint = 2 // determined state ON
	DoublePointFaulty        DoublePoint = 3 // indeterminate state
)

// StepCommand is the two-bit state of a regulating step command.
type StepCommand uint8

const (
	StepLower  StepCommand = 1 // next step lower
	StepHigher StepCommand = 2 // next step higher
)

// Qualifier of interrogation (QOI) values.
const (
	QOIStation uint8 = 20 // station interrogation (global)
	QOIGroup1  uint8 = 21 // group 1 interrogation, groups 2..16 follow
)

// Qualifier of counter interrogation (QCC) request values; the freeze bits 6-7 are left at zero.
const (
	QCCGeneral uint8 = 5 // general request counter
	QCCGroup1  uint8 = 1 // request counter group 1, groups 2..4 follow
)

// Qualifier of reset process command (QRP) values.
const (
	QRPGeneral   uint8 = 1 // general reset of process
	QRPEventLogs uint8 = 2 // reset of pending information with time tag of the event buffer
)

// InformationObject is one addressed information element of an ASDU.
//
// Value holds the element payload as a float64. The conversion is exact for every element on the
// wire: single-point state (0/1), double-point state (0..3), step position (-64..63), normalized
// and scaled 16-bit values, IEEE 754 short floats, 32-bit counter readings and bitstrings, and the
// test sequence counter. The typed accessors interpret Value for the object type. A short float that
// decodes to NaN keeps its wire bits, and re-encodes unchanged as long as Value stays NaN.
//
// Qualifier holds the command qualifier (QU), set-point qualifier (QL), counter sequence number,
// or the single qualifier octet of system commands (COI, QOI, QCC, QRP).
type InformationObject struct {
	Address   uint32
	Type      TypeID
	Value     float64
	Quality   Quality
	Qualifier uint8
	Time      CP56Time2a

	nanBits uint32 // wire bits of a NaN short float
}

// HasTime reports whether the object carries a CP56Time2a time tag.
func (o InformationObject) HasTime() bool {
	return o.Type.HasTimeTag()
}

// Bool returns the single-point or single command state.
func (o InformationObject) Bool() bool {
	return o.Value != 0
}

// DoublePoint returns the double-point or double command state.
func (o InformationObject) DoublePoint() DoublePoint {
	return DoublePoint(uint8(o.Value) & 0x03)
}

// Int returns Value as an integer; used for step positions, scaled values, counters, bitstrings and TSC.
func (o InformationObject) Int() int64 {
	return int64(o.Value)
}

// Normalized returns a normalized value in the range [-1, 1-2^-15].
func (o InformationObject) Normalized() float64 {
	return o.Value / 32768
}

// Float32 returns the short floating point value.
func (o InformationObject) Float32() float32 {
	return float32(o.Value)
}

// Bitstring returns the 32-bit bitstring.
func (o InformationObject) Bitstring() uint32 {
	return uint32(int64(o.Value)) //nolint:gosec
}

// String returns a short, human readable representation of the object.
func (o InformationObject) String() string {
	s := fmt.Sprintf("%s ioa=%d value=%v quality=%s", o.Type, o.Address, o.Value, o.Quality)
	if o.Qualifier != 0 {
		s += fmt.Sprintf(" qualifier=%d", o.Qualifier)
	}
	if o.HasTime() {
		s += " time=" + o.Time.String()
	}

	return s
}

// WithTime returns a copy of a command object converted to its CP56Time2a variant, tagged with t.
func (o InformationObject) WithTime(t time.Time) InformationObject {
	o.Type = o.Type.WithTimeTag()
	o.Time = NewCP56Time2a(t)

	return o
}

// SingleCommand returns a C_SC_NA_1 object. When sel is true the command is a select, otherwise execute.
func SingleCommand(addr uint32, on bool, sel bool) InformationObject {
	obj := InformationObject{Address: addr, Type: C_SC_NA_1}
	if on {
		obj.Value = 1
	}
	if sel {
		obj.Quality |= QualitySelect
	}

	return obj
}

// DoubleCommand returns a C_DC_NA_1 object.
func DoubleCommand(addr uint32, state DoublePoint, sel bool) InformationObject {
	obj := InformationObject{Address: addr, Type: C_DC_NA_1, Value: float64(state & 0x03)}
	if sel {
		obj.Quality |= QualitySelect
	}

	return obj
}

// RegulatingStepCommand returns a C_RC_NA_1 object.
func RegulatingStepCommand(addr uint32, step StepCommand, sel bool) InformationObject {
	obj := InformationObject{Address: addr, Type: C_RC_NA_1, Value: float64(step & 0x03)}
	if sel {
		obj.Quality |= QualitySelect
	}

	return obj
}

// SetpointNormalized returns a C_SE_NA_1 object with the raw normalized value.
func SetpointNormalized(addr uint32, raw int16, sel bool) InformationObject {
	obj := InformationObject{Address: addr, Type: C_SE_NA_1, Value: float64(raw)}
	if sel {
		obj.Quality |= QualitySelect
	}

	return obj
}

// SetpointScaled returns a C_SE_NB_1 object.
func SetpointScaled(addr uint32, value int16, sel bool) InformationObject {
	obj := InformationObject{Address: addr, Type: C_SE_NB_1, Value: float64(value)}
	if sel {
		obj.Quality |= QualitySelect
	}

	return obj
}

// SetpointFloat returns a C_SE_NC_1 object.
func SetpointFloat(addr uint32, value float32, sel bool) InformationObject {
	obj := InformationObject{Address: addr, Type: C_SE_NC_1, Value: float64(value)}
	if sel {
		obj.Quality |= QualitySelect
	}

	return obj
}

// BitstringCommand returns a C_BO_NA_1 object.
func BitstringCommand(addr uint32, bits uint32) InformationObject {
	return InformationObject{Address: addr, Type: C_BO_NA_1, Value: float64(bits)}
}

// InterrogationCommand returns a C_IC_NA_1 object at address 0 with the given QOI.
func InterrogationCommand(qoi uint8) InformationObject {
	return InformationObject{Type: C_IC_NA_1, Qualifier: qoi}
}

// CounterInterrogationCommand returns a C_CI_NA_1 object at address 0 with the given QCC.
func CounterInterrogationCommand(qcc uint8) InformationObject {
	return InformationObject{Type: C_CI_NA_1, Qualifier: qcc}
}

// ReadCommand returns a C_RD_NA_1 object for the given address.
func ReadCommand(addr uint32) InformationObject {
	return InformationObject{Address: addr, Type: C_RD_NA_1}
}

// ClockSyncCommand returns a C_CS_NA_1 object at address 0 carrying t.
func ClockSyncCommand(t time.Time) InformationObject {
	return InformationObject{Type: C_CS_NA_1, Time: NewCP56Time2a(t)}
}

// ResetProcessCommand returns a C_RP_NA_1 object at address 0 with the given QRP.
func ResetProcessCommand(qrp uint8) InformationObject {
	return InformationObject{Type: C_RP_NA_1, Qualifier: qrp}
}

// TestCommand returns a C_TS_TA_1 object at address 0 with the test sequence counter and time tag.
func TestCommand(tsc uint16, t time.Time) InformationObject {
	return InformationObject{Type: C_TS_TA_1, Value: float64(tsc), Time: NewCP56Time2a(t)}
}

// float32Bits returns the IEEE 754 bits of the short float held in Value.
func (o *InformationObject) float32Bits() uint32 {
	if math.IsNaN(o.Value) && o.nanBits != 0 {
		return o.nanBits
	}

	return math.Float32bits(float32(o.Value))
}

// setFloat32Bits sets Value from the IEEE 754 bits of a short float.
func (o *InformationObject) setFloat32Bits(bits uint32) {
	o.Value = float64(math.Float32frombits(bits))
	o.nanBits = 0
	if math.IsNaN(o.Value) {
		o.nanBits = bits
	}
}
