package asdu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var testTime = CP56Time2a{
	Millisecond: 42123,
	Minute:      59,
	Hour:        23,
	Day:         31,
	Weekday:     5,
	Month:       12,
	Year:        24,
	Invalid:     true,
	SummerTime:  true,
}

// sampleObject returns an object exercising every bit the element layout of t can carry.
func sampleObject(t TypeID, addr uint32) InformationObject {
	obj := InformationObject{Address: addr, Type: t}

	switch t.kind() {
	case kindSIQ:
		obj.Value = 1
		obj.Quality = QualityBlocked | QualityInvalid
	case kindDIQ:
		obj.Value = float64(DoublePointOn)
		obj.Quality = QualityNotTopical | QualitySubstituted
	case kindVTI:
		obj.Value = -5
		obj.Quality = QualityTransient | QualityOverflow
	case kindBSI:
		obj.Value = 0xDEADBEEF
		obj.Quality = QualityInvalid
	case kindNVA:
		obj.Value = -12345
		obj.Quality = QualityOverflow | QualityNotTopical
	case kindSVA:
		obj.Value = 32000
	case kindFloat:
		obj.Value = float64(float32(3.14159))
		obj.Quality = QualitySubstituted
	case kindBCR:
		obj.Value = -100000
		obj.Qualifier = 17
		obj.Quality = QualityCarry | QualityAdjusted | QualityInvalid
	case kindNVARaw:
		obj.Value = 1000
	case kindSCO:
		obj.Value = 1
		obj.Qualifier = 3
		obj.Quality = QualitySelect
	case kindDCO:
		obj.Value = float64(DoublePointOff)
		obj.Qualifier = 31
	case kindRCO:
		obj.Value = float64(StepHigher)
		obj.Quality = QualitySelect
	case kindSetNVA:
		obj.Value = -1
		obj.Qualifier = 5
		obj.Quality = QualitySelect
	case kindSetSVA:
		obj.Value = 100
		obj.Qualifier = 127
	case kindSetFloat:
		obj.Value = float64(float32(-273.15))
	case kindBSIRaw:
		obj.Value = math.MaxUint32
	case kindQualifier:
		obj.Qualifier = 20
	case kindTSC:
		obj.Value = 0x1234
	case kindNone:
	}

	if t.HasTimeTag() {
		obj.Time = testTime
	}

	return obj
}

func TestASDU_RoundTripAllTypes(t *testing.T) {
	for typeID := range typeInfos {
		t.Run(typeID.String(), func(t *testing.T) {
			require := require.New(t)

			a := &ASDU{
				Type:       typeID,
				Cause:      CauseSpontaneous,
				Originator: 7,
				CommonAddr: 0xABCD,
				Objects: []InformationObject{
					sampleObject(typeID, 1),
					sampleObject(typeID, 0xFFFFFF),
				},
			}

			data, err := a.MarshalBinary()
			require.NoError(err)
			require.Len(data, a.Size())

			decoded, err := Decode(data)
			require.NoError(err)
			require.Equal(a, decoded)
		})
	}
}

func TestASDU_RoundTripSequence(t *testing.T) {
	require := require.New(t)

	a := NewASDU(M_ME_NB_1, CauseInterrogated, 1,
		InformationObject{Address: 100, Value: 1},
		InformationObject{Address: 101, Value: -2, Quality: QualityInvalid},
		InformationObject{Address: 102, Value: 3},
	)
	a.Sequence = true
	a.Test = true
	a.Negative = true

	data, err := a.MarshalBinary()
	require.NoError(err)
	require.Len(data, HeaderSize+AddressSize+3*3)
	require.Equal(byte(0x83), data[1])
	require.Equal(byte(0xC0|20), data[2])

	decoded, err := Decode(data)
	require.NoError(err)
	require.Equal(a, decoded)
}

func TestASDU_DecodeKnownBytes(t *testing.T) {
	require := require.New(t)

	// single point ON, spontaneous, CA 1, IOA 10
	data := []byte{0x01, 0x01, 0x03, 0x00, 0x01, 0x00, 0x0A, 0x00, 0x00, 0x01}

	a, err := Decode(data)
	require.NoError(err)
	require.Equal(M_SP_NA_1, a.Type)
	require.Equal(CauseSpontaneous, a.Cause)
	require.Equal(uint16(1), a.CommonAddr)
	require.Len(a.Objects, 1)
	require.Equal(uint32(10), a.Objects[0].Address)
	require.True(a.Objects[0].Bool())
	require.True(a.Objects[0].Quality.IsGood())

	// interrogation activation confirmation, QOI 20
	data = []byte{0x64, 0x01, 0x07, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x14}

	a, err = Decode(data)
	require.NoError(err)
	require.Equal(C_IC_NA_1, a.Type)
	require.Equal(CauseActivationCon, a.Cause)
	require.Equal(QOIStation, a.Objects[0].Qualifier)
}

func TestASDU_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncated},
		{"short header", []byte{0x01, 0x01, 0x03}, ErrTruncated},
		{"unknown type", []byte{0xFF, 0x01, 0x03, 0x00, 0x01, 0x00, 0x0A, 0x00, 0x00, 0x01}, ErrUnknownType},
		{"trailing byte", []byte{0x01, 0x01, 0x03, 0x00, 0x01, 0x00, 0x0A, 0x00, 0x00, 0x01, 0x00}, ErrObjectCount},
		{"missing object", []byte{0x01, 0x02, 0x03, 0x00, 0x01, 0x00, 0x0A, 0x00, 0x00, 0x01}, ErrObjectCount},
		{"zero objects", []byte{0x01, 0x00, 0x03, 0x00, 0x01, 0x00}, ErrObjectCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestASDU_MarshalErrors(t *testing.T) {
	require := require.New(t)

	_, err := NewASDU(TypeID(2), CauseSpontaneous, 1, InformationObject{}).MarshalBinary()
	require.ErrorIs(err, ErrUnknownType)

	_, err = NewASDU(M_SP_NA_1, CauseSpontaneous, 1).MarshalBinary()
	require.ErrorIs(err, ErrObjectCount)

	_, err = NewASDU(M_SP_NA_1, CauseSpontaneous, 1, InformationObject{Address: MaxObjectAddress + 1}).MarshalBinary()
	require.ErrorIs(err, ErrInvalidAddress)

	a := NewASDU(M_SP_NA_1, CauseSpontaneous, 1, InformationObject{Address: 1}, InformationObject{Address: 3})
	a.Sequence = true
	_, err = a.MarshalBinary()
	require.ErrorIs(err, ErrNonSequential)

	a = NewASDU(M_SP_NA_1, CauseSpontaneous, 1, InformationObject{Address: 1})
	a.Objects[0].Type = M_DP_NA_1
	_, err = a.MarshalBinary()
	require.ErrorIs(err, ErrTypeMismatch)

	a = NewASDU(M_SP_NA_1, Cause(64), 1, InformationObject{Address: 1})
	_, err = a.MarshalBinary()
	require.ErrorIs(err, ErrInvalidCause)
}

func TestASDU_MaxSize(t *testing.T) {
	require := require.New(t)

	// each short float object takes 3 address + 5 element bytes
	objs := make([]InformationObject, 30)
	for i := range objs {
		objs[i] = InformationObject{Address: uint32(i), Value: float64(i)} //nolint:gosec
	}

	a := NewASDU(M_ME_NC_1, CausePeriodic, 1, objs...)
	data, err := a.MarshalBinary()
	require.NoError(err)
	require.LessOrEqual(len(data), MaxSize)

	a.Objects = append(a.Objects, InformationObject{Type: M_ME_NC_1, Address: 30})
	_, err = a.MarshalBinary()
	require.ErrorIs(err, ErrTooLarge)
}

func TestTypeID_Classification(t *testing.T) {
	require := require.New(t)

	require.True(M_ME_TF_1.IsMonitor())
	require.True(M_ME_TF_1.HasTimeTag())
	require.False(M_ME_TF_1.IsCommand())
	require.True(C_SC_TA_1.IsCommand())
	require.True(C_IC_NA_1.IsSystem())
	require.False(TypeID(99).IsKnown())
	require.Equal(-1, TypeID(99).ObjectSize())
	require.Equal(1, M_SP_NA_1.ObjectSize())
	require.Equal(12, M_ME_TF_1.ObjectSize())
	require.Equal(C_DC_TA_1, C_DC_NA_1.WithTimeTag())
	require.Equal(M_SP_NA_1, M_SP_NA_1.WithTimeTag())
	require.Equal("C_SE_NC_1", C_SE_NC_1.String())
	require.Equal("TypeID(99)", TypeID(99).String())
}

func TestCause_String(t *testing.T) {
	require := require.New(t)

	require.Equal("activation-con", CauseActivationCon.String())
	require.Equal("interrogated-group-16", Cause(36).String())
	require.Equal("counter-group-2", Cause(39).String())
	require.True(Cause(36).IsInterrogated())
	require.False(Cause(37).IsInterrogated())
	require.True(CauseCounterRequest.IsCounterRequested())
	require.True(CauseUnknownObjectAddr.IsUnknownMirror())
	require.False(CauseActivationTerm.IsUnknownMirror())
}

func TestQuality_String(t *testing.T) {
	require := require.New(t)

	require.Equal("good", QualityGood.String())
	require.Equal("OV|IV", (QualityOverflow | QualityInvalid).String())
	require.True((QualityTransient | QualitySelect).IsGood())
	require.False(QualityBlocked.IsGood())
}

func TestASDU_FloatNaNBits(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "signaling NaN measured value",
			data: []byte{byte(M_ME_NC_1), 0x01, 0x03, 0x00, 0x01, 0x00, 0x10, 0x00, 0x00, 0x01, 0x00, 0x80, 0x7F, 0x00},
		},
		{
			name: "NaN payload set-point",
			data: []byte{byte(C_SE_NC_1), 0x01, 0x06, 0x00, 0x01, 0x00, 0x20, 0x00, 0x00, 0x34, 0x12, 0xC0, 0xFF, 0x00},
		},
	}

	for _, tt := range tests {
		a, err := Decode(tt.data)
		require.NoError(err, tt.name)
		require.True(math.IsNaN(a.Objects[0].Value), tt.name)

		data, err := a.MarshalBinary()
		require.NoError(err, tt.name)
		require.Equal(tt.data, data, tt.name)
	}

	// a replaced value does not reuse the wire bits
	a, err := Decode(tests[0].data)
	require.NoError(err)
	a.Objects[0].Value = 1.5

	data, err := a.MarshalBinary()
	require.NoError(err)
	require.Equal([]byte{0x00, 0x00, 0xC0, 0x3F}, data[9:13])
}
