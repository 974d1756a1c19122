package encoding

import (
	"encoding/binary"
	"time"
)

// MarshalUDFTimestamp converts a time.Time into the 12-byte UDF timestamp
// (ECMA-167 1/7.3): a 16-bit type-and-timezone word, then binary year (16-bit),
// month, day, hour, minute, second, centiseconds, hundreds-of-microseconds,
// and microseconds. The builder only ever needs local-time-as-UTC precision,
// so the sub-second fields are always written as zero.
func MarshalUDFTimestamp(t time.Time) [12]byte {
	var b [12]byte

	if t.IsZero() {
		// Type 0 (undefined), timezone -2047 (unspecified per ECMA-167 1/7.2.1).
		binary.LittleEndian.PutUint16(b[0:2], 0x0801)
		return b
	}

	// Type 1 (local time), timezone offset in minutes from UTC.
	_, offsetSec := t.Zone()
	offsetMin := int16(offsetSec / 60)
	tzField := uint16(offsetMin) & 0x0FFF
	tzField |= 1 << 12

	binary.LittleEndian.PutUint16(b[0:2], tzField)

	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	binary.LittleEndian.PutUint16(b[2:4], uint16(y))
	b[4] = byte(m)
	b[5] = byte(d)
	b[6] = byte(hh)
	b[7] = byte(mm)
	b[8] = byte(ss)
	b[9] = 0  // centiseconds
	b[10] = 0 // hundreds of microseconds
	b[11] = 0 // microseconds

	return b
}

// UnmarshalUDFTimestamp converts a 12-byte UDF timestamp back into a
// time.Time. A type-0 (undefined) timestamp decodes to the zero time.
func UnmarshalUDFTimestamp(b [12]byte) time.Time {
	tzField := binary.LittleEndian.Uint16(b[0:2])
	typ := tzField >> 12
	if typ == 0 {
		return time.Time{}
	}

	year := int(binary.LittleEndian.Uint16(b[2:4]))
	month := time.Month(b[4])
	day := int(b[5])
	hour := int(b[6])
	minute := int(b[7])
	second := int(b[8])

	offsetRaw := int16(tzField << 4 >> 4) // sign-extend low 12 bits
	loc := time.FixedZone("UDF", int(offsetRaw)*60)

	return time.Date(year, month, day, hour, minute, second, 0, loc)
}
