package colstrategy

import (
	"github.com/dbxport/odbc2parquet/internal/convert"
	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// dateStrategy copies a transport Date column (already bound as
// days-since-epoch int32 by the DB interface layer) into INT32 with the
// DATE logical annotation (spec.md §4.2).
type dateStrategy struct {
	name     string
	nullable bool
}

func (s *dateStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Int32, Logical: pqio.Logical{Kind: pqio.LogicalDate}, Repetition: repetitionOf(s.nullable)}
}

func (s *dateStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Date, Nullable: s.nullable}
}

func (s *dateStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.I32[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.I32Values[i])
		}
	}
	return dst.WriteInt32(values, defLevels)
}

func (s *dateStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.I32[:rows]
	n, err := src.ReadInt32(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	fillFromDefined32(dst, scratch.DefLevels[:rows], values[:n])
	return nil
}

// timestampNoTZStrategy copies a transport Timestamp column (already
// bound as unit-scaled int64 by the DB interface layer, unit chosen by
// convert.UnitForPrecision) into INT64 with TIMESTAMP(unit, utc=false).
type timestampNoTZStrategy struct {
	name     string
	nullable bool
	unit     convert.TimeUnit
}

func (s *timestampNoTZStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{
		Name:     s.name,
		Physical: pqio.Int64,
		Logical:  pqio.Logical{Kind: pqio.LogicalTimestamp, Unit: toPqioUnit(s.unit), UTCAdjusted: false},
		Repetition: repetitionOf(s.nullable),
	}
}

func (s *timestampNoTZStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Timestamp, Nullable: s.nullable}
}

func (s *timestampNoTZStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.I64[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.I64Values[i])
		}
	}
	return dst.WriteInt64(values, defLevels)
}

func (s *timestampNoTZStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.I64[:rows]
	n, err := src.ReadInt64(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	fillFromDefined64(dst, scratch.DefLevels[:rows], values[:n])
	return nil
}

// timestampTZStrategy handles the vendor-specific DATETIMEOFFSET escape
// hatch (other{code=-155}): the source is text
// "YYYY-MM-DD HH:MM:SS[.fff...] ±HH:MM", parsed and converted to UTC, then
// truncated to unit (spec.md §4.2, §8 scenario 4). Query-only: a
// DATETIMEOFFSET column is never the target of an insert in this system.
type timestampTZStrategy struct {
	name     string
	nullable bool
	unit     convert.TimeUnit
	maxBytes int
}

func (s *timestampTZStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{
		Name:     s.name,
		Physical: pqio.Int64,
		Logical:  pqio.Logical{Kind: pqio.LogicalTimestamp, Unit: toPqioUnit(s.unit), UTCAdjusted: true},
		Repetition: repetitionOf(s.nullable),
	}
}

func (s *timestampTZStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *timestampTZStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.I64[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		slot := trimNUL(src.TextSlot(i))
		ts, err := convert.ParseTimestampTZ(string(slot))
		if err != nil {
			return odbcerr.WithColumn(err, s.name)
		}
		values = append(values, ts.ToUnixUnit(s.unit))
	}
	return dst.WriteInt64(values, defLevels)
}

func (s *timestampTZStrategy) CopyInsert(_ *transport.Scratch, _ int, _ pqio.ColumnReader, _ *transport.Column) error {
	return errUnsupportedDirection
}

// timeTextStrategy parses "HH:MM:SS[.fff...]" source text into
// TIME(unit, utc=false), int32 for millis or int64 for micros/nanos
// (spec.md §4.2).
type timeTextStrategy struct {
	name     string
	nullable bool
	unit     convert.TimeUnit
	maxBytes int
}

func (s *timeTextStrategy) ParquetType() pqio.ColumnType {
	physical := pqio.Int64
	if s.unit == convert.Millis {
		physical = pqio.Int32
	}
	return pqio.ColumnType{
		Name:     s.name,
		Physical: physical,
		Logical:  pqio.Logical{Kind: pqio.LogicalTime, Unit: toPqioUnit(s.unit), UTCAdjusted: false},
		Repetition: repetitionOf(s.nullable),
	}
}

func (s *timeTextStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *timeTextStrategy) timeValue(slot []byte) (int64, error) {
	secs, ns, err := convert.ParseTimeOfDay(string(trimNUL(slot)))
	if err != nil {
		return 0, err
	}
	switch s.unit {
	case convert.Millis:
		return int64(secs)*1000 + int64(ns)/1_000_000, nil
	case convert.Micros:
		return int64(secs)*1_000_000 + int64(ns)/1_000, nil
	default:
		return int64(secs)*1_000_000_000 + int64(ns), nil
	}
}

func (s *timeTextStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	if s.unit == convert.Millis {
		values := scratch.I32[:0]
		for i := 0; i < rows; i++ {
			if defLevels[i] != 1 {
				continue
			}
			v, err := s.timeValue(src.TextSlot(i))
			if err != nil {
				return odbcerr.WithColumn(err, s.name)
			}
			values = append(values, int32(v))
		}
		return dst.WriteInt32(values, defLevels)
	}
	values := scratch.I64[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		v, err := s.timeValue(src.TextSlot(i))
		if err != nil {
			return odbcerr.WithColumn(err, s.name)
		}
		values = append(values, v)
	}
	return dst.WriteInt64(values, defLevels)
}

func (s *timeTextStrategy) CopyInsert(_ *transport.Scratch, _ int, _ pqio.ColumnReader, _ *transport.Column) error {
	return errUnsupportedDirection
}

func toPqioUnit(u convert.TimeUnit) pqio.TimeUnit {
	switch u {
	case convert.Millis:
		return pqio.UnitMillis
	case convert.Micros:
		return pqio.UnitMicros
	default:
		return pqio.UnitNanos
	}
}

// trimNUL truncates a fixed-width text slot at its first NUL terminator,
// the convention narrow text slots use for shorter-than-capacity values.
func trimNUL(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
