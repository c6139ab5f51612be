package colstrategy

import (
	"fmt"

	"github.com/dbxport/odbc2parquet/internal/convert"
	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// Warner receives a one-line message when a lossy conversion occurred
// (spec.md §7: warnings go to the log and do not stop processing).
// nopWarner is used when the selector is not given one.
type Warner func(msg string)

func nopWarner(string) {}

// narrowTextStrategy copies a system-encoding Text buffer into UTF8
// byte-array, lossily sanitizing and warning on invalid sequences
// (spec.md §4.2's "Narrow text").
type narrowTextStrategy struct {
	name     string
	nullable bool
	maxBytes int
	warn     Warner
}

func (s *narrowTextStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.ByteArray, Logical: pqio.Logical{Kind: pqio.LogicalUTF8}, Repetition: repetitionOf(s.nullable)}
}

func (s *narrowTextStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *narrowTextStrategy) warner() Warner {
	if s.warn != nil {
		return s.warn
	}
	return nopWarner
}

func (s *narrowTextStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.Bytes[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		raw := trimNUL(src.TextSlot(i))
		sanitized, replaced := convert.SanitizeUTF8(raw)
		if replaced {
			s.warner()("column " + s.name + ": replaced invalid UTF-8 byte sequence")
		}
		values = append(values, sanitized)
	}
	return dst.WriteByteArray(values, defLevels)
}

func (s *narrowTextStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	raw := make([][]byte, rows)
	_, err := src.ReadByteArray(raw, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	j := 0
	for i, d := range scratch.DefLevels[:rows] {
		if d != 1 {
			dst.Indicators[i] = transport.NullSentinel
			continue
		}
		v := raw[j]
		j++
		dst.EnsureMaxElementLength(len(v))
		copy(dst.TextSlot(i), v)
		dst.Indicators[i] = int32(len(v))
	}
	return nil
}

// wideTextStrategy copies a 16-bit wide-character buffer into UTF8
// byte-array, failing with BadEncoding on malformed UTF-16 rather than
// substituting (spec.md §4.2's "Wide text").
type wideTextStrategy struct {
	name     string
	nullable bool
	maxU16   int
}

func (s *wideTextStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.ByteArray, Logical: pqio.Logical{Kind: pqio.LogicalUTF8}, Repetition: repetitionOf(s.nullable)}
}

func (s *wideTextStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.WText, Nullable: s.nullable, MaxU16: s.maxU16}
}

func (s *wideTextStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.Bytes[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		units := trimNUL16(src.WTextSlot(i))
		utf8, err := convert.UTF16ToUTF8(units)
		if err != nil {
			return odbcerr.WithColumn(fmt.Errorf("%w: %v", odbcerr.ErrBadEncoding, err), s.name)
		}
		values = append(values, utf8)
	}
	return dst.WriteByteArray(values, defLevels)
}

func (s *wideTextStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	raw := make([][]byte, rows)
	_, err := src.ReadByteArray(raw, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	j := 0
	for i, d := range scratch.DefLevels[:rows] {
		if d != 1 {
			dst.Indicators[i] = transport.NullSentinel
			continue
		}
		units := convert.UTF8ToUTF16(raw[j])
		j++
		dst.EnsureMaxElementLength(len(units))
		copy(dst.WTextSlot(i), units)
		dst.Indicators[i] = int32(len(units))
	}
	return nil
}

// ignoreIndicatorsTextStrategy is the fallback for drivers that report
// garbage length indicators: it never trusts src.Indicators, instead
// scanning each fixed slot for a NUL terminator; an empty result becomes
// NULL (spec.md §4.2). Gated behind MappingOptions.DriverQuirks in the
// selector; never chosen automatically (spec.md §9's open question).
type ignoreIndicatorsTextStrategy struct {
	name     string
	nullable bool
	maxBytes int
}

func (s *ignoreIndicatorsTextStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.ByteArray, Logical: pqio.Logical{Kind: pqio.LogicalUTF8}, Repetition: repetitionOf(s.nullable)}
}

func (s *ignoreIndicatorsTextStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *ignoreIndicatorsTextStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	scratch.Reset(rows)
	defLevels := scratch.DefLevels[:rows]
	values := scratch.Bytes[:0]
	for i := 0; i < rows; i++ {
		text := trimNUL(src.TextSlot(i))
		if len(text) == 0 {
			defLevels[i] = 0
			continue
		}
		defLevels[i] = 1
		values = append(values, text)
	}
	return dst.WriteByteArray(values, defLevels)
}

func (s *ignoreIndicatorsTextStrategy) CopyInsert(_ *transport.Scratch, _ int, _ pqio.ColumnReader, _ *transport.Column) error {
	return errUnsupportedDirection
}

func trimNUL16(units []uint16) []uint16 {
	for i, u := range units {
		if u == 0 {
			return units[:i]
		}
	}
	return units
}
