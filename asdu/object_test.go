package asdu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCP56Time2a_Encode(t *testing.T) {
	require := require.New(t)

	data := testTime.AppendBinary(nil)
	require.Equal([]byte{0x8B, 0xA4, 0x80 | 59, 0x80 | 23, 5<<5 | 31, 12, 24}, data)

	decoded, err := DecodeCP56Time2a(data)
	require.NoError(err)
	require.Equal(testTime, decoded)
	require.True(decoded.Invalid)
}

func TestCP56Time2a_DecodeMasksReservedBits(t *testing.T) {
	require := require.New(t)

	decoded, err := DecodeCP56Time2a([]byte{0x00, 0x00, 0x7F, 0x7F, 0x01, 0xF1, 0xFF})
	require.NoError(err)
	require.Equal(uint8(0x3F), decoded.Minute)
	require.False(decoded.Invalid)
	require.Equal(uint8(0x1F), decoded.Hour)
	require.False(decoded.SummerTime)
	require.Equal(uint8(1), decoded.Month)
	require.Equal(uint8(0x7F), decoded.Year)

	_, err = DecodeCP56Time2a([]byte{0x00})
	require.ErrorIs(err, ErrTruncated)
}

func TestCP56Time2a_Time(t *testing.T) {
	require := require.New(t)

	ts := time.Date(2025, time.March, 9, 14, 7, 31, 250*int(time.Millisecond), time.UTC)
	cp := NewCP56Time2a(ts)

	require.Equal(uint16(31250), cp.Millisecond)
	require.Equal(uint8(7), cp.Weekday) // Sunday
	require.Equal(uint8(25), cp.Year)
	require.Equal(ts, cp.Time(time.UTC))
	require.Equal("25-03-09 14:07:31.250", cp.String())
	require.True(CP56Time2a{}.IsZero())
}

func TestInformationObject_Accessors(t *testing.T) {
	require := require.New(t)

	obj := InformationObject{Type: M_ME_NA_1, Value: -16384}
	require.InDelta(-0.5, obj.Normalized(), 1e-9)

	obj = InformationObject{Type: M_BO_NA_1, Value: 0x80000001}
	require.Equal(uint32(0x80000001), obj.Bitstring())

	obj = InformationObject{Type: M_DP_NA_1, Value: 2}
	require.Equal(DoublePointOn, obj.DoublePoint())

	obj = InformationObject{Type: M_ME_NC_1, Value: float64(float32(1.5))}
	require.Equal(float32(1.5), obj.Float32())
	require.False(obj.HasTime())
}

func TestCommandConstructors(t *testing.T) {
	require := require.New(t)

	ts := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	sc := SingleCommand(5000, true, true).WithTime(ts)
	require.Equal(C_SC_TA_1, sc.Type)
	require.True(sc.Bool())
	require.True(sc.Quality.Has(QualitySelect))
	require.Equal(ts, sc.Time.Time(time.UTC))

	dc := DoubleCommand(5001, DoublePointOff, false)
	require.Equal(C_DC_NA_1, dc.Type)
	require.Equal(DoublePointOff, dc.DoublePoint())

	rc := RegulatingStepCommand(5002, StepLower, false)
	require.Equal(C_RC_NA_1, rc.Type)
	require.Equal(int64(StepLower), rc.Int())

	for _, obj := range []InformationObject{
		sc, dc, rc,
		SetpointNormalized(1, 100, false),
		SetpointScaled(1, -100, false),
		SetpointFloat(1, 2.5, false),
		BitstringCommand(1, 0xF0F0),
	} {
		require.True(obj.Type.IsCommand(), obj.Type.String())

		a := NewASDU(obj.Type, CauseActivation, 1, obj)
		data, err := a.MarshalBinary()
		require.NoError(err)

		decoded, err := Decode(data)
		require.NoError(err)
		require.Equal(obj, decoded.Objects[0])
	}

	gi := InterrogationCommand(QOIStation)
	require.Equal(C_IC_NA_1, gi.Type)
	require.Equal(uint32(0), gi.Address)
	require.Equal(uint8(20), gi.Qualifier)

	tc := TestCommand(0xBEEF, ts)
	require.Equal(int64(0xBEEF), tc.Int())
	require.True(tc.HasTime())
}
