package convert

import "time"

// TimeUnit is the Parquet logical timestamp/time unit.
type TimeUnit int

const (
	Millis TimeUnit = iota
	Micros
	Nanos
)

// UnitForPrecision implements spec.md §4.1's precision->unit table:
// 0..=3 -> millis, 4..=6 -> micros, 7+ -> nanos.
func UnitForPrecision(precision int) TimeUnit {
	switch {
	case precision <= 3:
		return Millis
	case precision <= 6:
		return Micros
	default:
		return Nanos
	}
}

// Timestamp is the DB interface's broken-down timestamp representation.
type Timestamp struct {
	Year                       int
	Month                      time.Month
	Day, Hour, Minute, Second  int
	Nanosecond                 int
}

// ToUnixUnit converts a broken-down timestamp to an i64 count of the given
// unit since the Unix epoch. Values are truncated (not rounded) toward the
// requested unit when the source carries finer-than-unit precision.
func (ts Timestamp) ToUnixUnit(unit TimeUnit) int64 {
	t := time.Date(ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second, ts.Nanosecond, time.UTC)
	sec := t.Unix()
	nsec := int64(t.Nanosecond())
	switch unit {
	case Millis:
		return sec*1_000 + nsec/1_000_000
	case Micros:
		return sec*1_000_000 + nsec/1_000
	default:
		return sec*1_000_000_000 + nsec
	}
}

// UnixUnitToTimestamp is the inverse of ToUnixUnit, used on the insert
// path to convert a Parquet i64 back to a broken-down timestamp.
func UnixUnitToTimestamp(v int64, unit TimeUnit) Timestamp {
	var sec, nsec int64
	switch unit {
	case Millis:
		sec = floorDiv(v, 1_000)
		nsec = (v - sec*1_000) * 1_000_000
	case Micros:
		sec = floorDiv(v, 1_000_000)
		nsec = (v - sec*1_000_000) * 1_000
	default:
		sec = floorDiv(v, 1_000_000_000)
		nsec = v - sec*1_000_000_000
	}
	t := time.Unix(sec, nsec).UTC()
	return Timestamp{
		Year: t.Year(), Month: t.Month(), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Nanosecond: t.Nanosecond(),
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
