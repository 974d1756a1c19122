package encoding

import (
	"fmt"
	"time"
)

// MarshalDOSDateTime converts a time.Time into the MS-DOS packed date/time
// pair.
// The date word packs (year-1980)<<9 | month<<5 | day; the time word packs
// hour<<11 | minute<<5 | (second/2).
func MarshalDOSDateTime(t time.Time) (date uint16, tm uint16, err error) {
	if t.IsZero() {
		return 0, 0, nil
	}

	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	if y < 1980 || y > 2107 {
		return 0, 0, fmt.Errorf("year %d out of range for MS-DOS date/time (must be between 1980 and 2107)", y)
	}

	date = uint16(y-1980)<<9 | uint16(m)<<5 | uint16(d)
	tm = uint16(hh)<<11 | uint16(mm)<<5 | uint16(ss/2)
	return date, tm, nil
}

// UnmarshalDOSDateTime converts an MS-DOS packed date/time pair back into a
// time.Time in UTC. Seconds are recovered to even-second granularity only,
// matching the two-second resolution of the packed time field.
func UnmarshalDOSDateTime(date uint16, tm uint16) time.Time {
	if date == 0 && tm == 0 {
		return time.Time{}
	}

	year := int(date>>9) + 1980
	month := time.Month((date >> 5) & 0x0F)
	day := int(date & 0x1F)

	hour := int(tm >> 11)
	minute := int((tm >> 5) & 0x3F)
	second := int(tm&0x1F) * 2

	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}
