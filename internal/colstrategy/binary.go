package colstrategy

import (
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// binaryFixedStrategy copies a fixed-length Binary transport column into
// FIXED_LEN_BYTE_ARRAY(length), an identity copy of bytes (spec.md §4.2).
type binaryFixedStrategy struct {
	name     string
	nullable bool
	length   int
}

func (s *binaryFixedStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.FixedLenByteArray, TypeLength: s.length, Repetition: repetitionOf(s.nullable)}
}

func (s *binaryFixedStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Binary, Nullable: s.nullable, MaxBinary: s.length}
}

func (s *binaryFixedStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.Bytes[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, src.BinarySlot(i))
		}
	}
	return dst.WriteFixedLenByteArray(values, defLevels)
}

func (s *binaryFixedStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	raw := make([][]byte, rows)
	_, err := src.ReadFixedLenByteArray(raw, scratch.DefLevels[:rows])
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
		copy(dst.BinarySlot(i), v)
		dst.Indicators[i] = int32(len(v))
	}
	return nil
}

// binaryVariableStrategy copies a variable-length Binary transport column
// into byte-array, identity copy; the insert-side buffer grows on demand
// (spec.md §4.2).
type binaryVariableStrategy struct {
	name     string
	nullable bool
	maxLen   int
}

func (s *binaryVariableStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.ByteArray, Repetition: repetitionOf(s.nullable)}
}

func (s *binaryVariableStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Binary, Nullable: s.nullable, MaxBinary: s.maxLen}
}

func (s *binaryVariableStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.Bytes[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		n := src.Indicators[i]
		values = append(values, src.BinarySlot(i)[:n])
	}
	return dst.WriteByteArray(values, defLevels)
}

func (s *binaryVariableStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
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
		copy(dst.BinarySlot(i), v)
		dst.Indicators[i] = int32(len(v))
	}
	return nil
}
