package asdu

import (
	"encoding/binary"
	"fmt"
	"time"
)

// CP56Time2a is the seven octet binary time of IEC 60870-5-4.
//
// Octet layout:
//
//	0-1  milliseconds within the minute (0..59999), little-endian
//	2    minute (bits 0-5), IV (bit 7)
//	3    hour (bits 0-4), SU summer time (bit 7)
//	4    day of month (bits 0-4), day of week (bits 5-7)
//	5    month (bits 0-3)
//	6    year within century (bits 0-6)
type CP56Time2a struct {
	Millisecond uint16 // milliseconds within the minute, 0..59999
	Minute      uint8  // 0..59
	Hour        uint8  // 0..23
	Day         uint8  // day of month, 1..31
	Weekday     uint8  // 1 = Monday .. 7 = Sunday, 0 = not used
	Month       uint8  // 1..12
	Year        uint8  // 0..99
	Invalid     bool   // IV flag
	SummerTime  bool   // SU flag
}

// CP56Time2aSize is the encoded size of CP56Time2a in bytes.
const CP56Time2aSize = 7

// NewCP56Time2a converts t to CP56Time2a. The year is taken modulo 100.
func NewCP56Time2a(t time.Time) CP56Time2a { //nolint:gosec
	weekday := uint8(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	return CP56Time2a{
		Millisecond: uint16(t.Second()*1000 + t.Nanosecond()/int(time.Millisecond)),
		Minute:      uint8(t.Minute()),
		Hour:        uint8(t.Hour()),
		Day:         uint8(t.Day()),
		Weekday:     weekday,
		Month:       uint8(t.Month()),
		Year:        uint8(t.Year() % 100),
	}
}

// DecodeCP56Time2a decodes the first seven bytes of data.
func DecodeCP56Time2a(data []byte) (CP56Time2a, error) {
	if len(data) < CP56Time2aSize {
		return CP56Time2a{}, fmt.Errorf("cp56time2a needs %d bytes, have %d: %w", CP56Time2aSize, len(data), ErrTruncated)
	}

	return CP56Time2a{
		Millisecond: binary.LittleEndian.Uint16(data),
		Minute:      data[2] & 0x3F,
		Invalid:     data[2]&0x80 != 0,
		Hour:        data[3] & 0x1F,
		SummerTime:  data[3]&0x80 != 0,
		Day:         data[4] & 0x1F,
		Weekday:     data[4] >> 5,
		Month:       data[5] & 0x0F,
		Year:        data[6] & 0x7F,
	}, nil
}

// AppendBinary appends the seven octet encoding of c to buf.
func (c CP56Time2a) AppendBinary(buf []byte) []byte {
	minute := c.Minute & 0x3F
	if c.Invalid {
		minute |= 0x80
	}

	hour := c.Hour & 0x1F
	if c.SummerTime {
		hour |= 0x80
	}

	buf = binary.LittleEndian.AppendUint16(buf, c.Millisecond)

	return append(buf,
		minute,
		hour,
		(c.Day&0x1F)|(c.Weekday&0x07)<<5,
		c.Month&0x0F,
		c.Year&0x7F,
	)
}

// Time converts c to time.Time in loc, assuming the 21st century.
// The weekday, IV and SU flags are not part of the result.
func (c CP56Time2a) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	return time.Date(
		2000+int(c.Year), time.Month(c.Month), int(c.Day),
		int(c.Hour), int(c.Minute),
		int(c.Millisecond/1000), int(c.Millisecond%1000)*int(time.Millisecond),
		loc,
	)
}

// IsZero reports whether c holds no time.
func (c CP56Time2a) IsZero() bool {
	return c == CP56Time2a{}
}

// String returns c in "YY-MM-DD hh:mm:ss.mmm" form with the IV and SU markers.
func (c CP56Time2a) String() string {
	s := fmt.Sprintf("%02d-%02d-%02d %02d:%02d:%02d.%03d",
		c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Millisecond/1000, c.Millisecond%1000)
	if c.SummerTime {
		s += " SU"
	}
	if c.Invalid {
		s += " IV"
	}

	return s
}
