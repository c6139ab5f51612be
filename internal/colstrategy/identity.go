package colstrategy

import (
	"fmt"

	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// identityI32 copies a transport I32 column straight into an INT32
// Parquet column, with an optional integer/decimal(.,0) logical
// annotation (spec.md §4.2's "Identity copy" and "Identity with logical
// annotation" classes, merged for the int32 width).
type identityI32 struct {
	name     string
	nullable bool
	logical  pqio.Logical
}

func (s *identityI32) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Int32, Logical: s.logical, Repetition: repetitionOf(s.nullable)}
}

func (s *identityI32) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.I32, Nullable: s.nullable}
}

func (s *identityI32) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.I32[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.I32Values[i])
		}
	}
	return dst.WriteInt32(values, defLevels)
}

func (s *identityI32) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.I32[:rows]
	n, err := src.ReadInt32(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	fillFromDefined32(dst, scratch.DefLevels[:rows], values[:n])
	return nil
}

// identityI64 is identityI32's INT64-width twin.
type identityI64 struct {
	name     string
	nullable bool
	logical  pqio.Logical
}

func (s *identityI64) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Int64, Logical: s.logical, Repetition: repetitionOf(s.nullable)}
}

func (s *identityI64) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.I64, Nullable: s.nullable}
}

func (s *identityI64) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.I64[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.I64Values[i])
		}
	}
	return dst.WriteInt64(values, defLevels)
}

func (s *identityI64) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.I64[:rows]
	n, err := src.ReadInt64(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	fillFromDefined64(dst, scratch.DefLevels[:rows], values[:n])
	return nil
}

// identityF32 handles real/float(precision<=24) columns.
type identityF32 struct {
	name     string
	nullable bool
}

func (s *identityF32) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Float, Repetition: repetitionOf(s.nullable)}
}

func (s *identityF32) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.F32, Nullable: s.nullable}
}

func (s *identityF32) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.F32[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.F32Values[i])
		}
	}
	return dst.WriteFloat(values, defLevels)
}

func (s *identityF32) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.F32[:rows]
	n, err := src.ReadFloat(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	for i, d := range scratch.DefLevels[:rows] {
		if d == 1 {
			dst.Indicators[i] = 0
		} else {
			dst.Indicators[i] = transport.NullSentinel
		}
	}
	j := 0
	for i, d := range scratch.DefLevels[:rows] {
		if d == 1 {
			dst.F32Values[i] = values[j]
			j++
		}
	}
	return nil
}

// identityF64 handles float(precision>24)/double columns.
type identityF64 struct {
	name     string
	nullable bool
}

func (s *identityF64) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Double, Repetition: repetitionOf(s.nullable)}
}

func (s *identityF64) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.F64, Nullable: s.nullable}
}

func (s *identityF64) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.F64[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.F64Values[i])
		}
	}
	return dst.WriteDouble(values, defLevels)
}

func (s *identityF64) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.F64[:rows]
	n, err := src.ReadDouble(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	j := 0
	for i, d := range scratch.DefLevels[:rows] {
		if d == 1 {
			dst.Indicators[i] = 0
			dst.F64Values[i] = values[j]
			j++
		} else {
			dst.Indicators[i] = transport.NullSentinel
		}
	}
	_ = n
	return nil
}

// booleanStrategy maps a bit column to Parquet BOOLEAN (spec.md §4.2). The
// transport Bit column already holds Go bools, so values are copied as is.
type booleanStrategy struct {
	name     string
	nullable bool
}

func (s *booleanStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Boolean, Repetition: repetitionOf(s.nullable)}
}

func (s *booleanStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Bit, Nullable: s.nullable}
}

func (s *booleanStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.Bool[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.BoolValues[i])
		}
	}
	return dst.WriteBoolean(values, defLevels)
}

func (s *booleanStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.Bool[:rows]
	_, err := src.ReadBoolean(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	j := 0
	for i, d := range scratch.DefLevels[:rows] {
		if d == 1 {
			dst.Indicators[i] = 0
			dst.BoolValues[i] = values[j]
			j++
		} else {
			dst.Indicators[i] = transport.NullSentinel
		}
	}
	return nil
}

func repetitionOf(nullable bool) pqio.Repetition {
	if nullable {
		return pqio.Optional
	}
	return pqio.Required
}

func fillFromDefined32(dst *transport.Column, defLevels []int16, defined []int32) {
	j := 0
	for i, d := range defLevels {
		if d == 1 {
			dst.Indicators[i] = 0
			dst.I32Values[i] = defined[j]
			j++
		} else {
			dst.Indicators[i] = transport.NullSentinel
		}
	}
}

func fillFromDefined64(dst *transport.Column, defLevels []int16, defined []int64) {
	j := 0
	for i, d := range defLevels {
		if d == 1 {
			dst.Indicators[i] = 0
			dst.I64Values[i] = defined[j]
			j++
		} else {
			dst.Indicators[i] = transport.NullSentinel
		}
	}
}

var errUnsupportedDirection = fmt.Errorf("%w: strategy does not support this direction", odbcerr.ErrUnsupportedType)
