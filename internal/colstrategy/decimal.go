package colstrategy

import (
	"github.com/dbxport/odbc2parquet/internal/convert"
	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// textToInt32Strategy parses fixed-point decimal text into an unscaled
// int32, for decimal/numeric(precision<=9, scale>=1) (spec.md §4.2's
// "Decimal as int32" text path).
type textToInt32Strategy struct {
	name               string
	nullable           bool
	precision, scale   int
	maxBytes           int
	avoidDecimalLogical bool
}

func (s *textToInt32Strategy) logical() pqio.Logical {
	if s.avoidDecimalLogical {
		return pqio.Logical{Kind: pqio.LogicalInteger, BitWidth: 32, Signed: true}
	}
	return pqio.Logical{Kind: pqio.LogicalDecimal, Precision: s.precision, Scale: s.scale}
}

func (s *textToInt32Strategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Int32, Logical: s.logical(), Repetition: repetitionOf(s.nullable)}
}

func (s *textToInt32Strategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *textToInt32Strategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.I32[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		n, err := convert.DecimalTextToInteger(trimNUL(src.TextSlot(i)))
		if err != nil {
			return odbcerr.WithColumn(err, s.name)
		}
		values = append(values, int32(n))
	}
	return dst.WriteInt32(values, defLevels)
}

func (s *textToInt32Strategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.I32[:rows]
	n, err := src.ReadInt32(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	return writeDecimalText32(dst, scratch.DefLevels[:rows], values[:n], s.precision, s.scale)
}

// textToInt64Strategy is textToInt32Strategy's INT64-width twin, used for
// decimal/numeric(10<=precision<=18).
type textToInt64Strategy struct {
	name               string
	nullable           bool
	precision, scale   int
	maxBytes           int
	avoidDecimalLogical bool
}

func (s *textToInt64Strategy) logical() pqio.Logical {
	if s.avoidDecimalLogical {
		return pqio.Logical{Kind: pqio.LogicalInteger, BitWidth: 64, Signed: true}
	}
	return pqio.Logical{Kind: pqio.LogicalDecimal, Precision: s.precision, Scale: s.scale}
}

func (s *textToInt64Strategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.Int64, Logical: s.logical(), Repetition: repetitionOf(s.nullable)}
}

func (s *textToInt64Strategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *textToInt64Strategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.I64[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		n, err := convert.DecimalTextToInteger(trimNUL(src.TextSlot(i)))
		if err != nil {
			return odbcerr.WithColumn(err, s.name)
		}
		values = append(values, n)
	}
	return dst.WriteInt64(values, defLevels)
}

func (s *textToInt64Strategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	values := scratch.I64[:rows]
	n, err := src.ReadInt64(values, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	return writeDecimalText64(dst, scratch.DefLevels[:rows], values[:n], s.precision, s.scale)
}

// decimalAsFLBAStrategy parses decimal text into an arbitrary-precision
// integer and writes it as two's-complement big-endian
// FIXED_LEN_BYTE_ARRAY (spec.md §4.2, §8 scenario 3), for
// decimal/numeric(precision<=38).
type decimalAsFLBAStrategy struct {
	name             string
	nullable         bool
	precision, scale int
	length           int
	maxBytes         int
}

func (s *decimalAsFLBAStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{
		Name:       s.name,
		Physical:   pqio.FixedLenByteArray,
		TypeLength: s.length,
		Logical:    pqio.Logical{Kind: pqio.LogicalDecimal, Precision: s.precision, Scale: s.scale},
		Repetition: repetitionOf(s.nullable),
	}
}

func (s *decimalAsFLBAStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *decimalAsFLBAStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.Bytes[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] != 1 {
			continue
		}
		big, err := convert.DecimalTextToBigInt(trimNUL(src.TextSlot(i)))
		if err != nil {
			return odbcerr.WithColumn(err, s.name)
		}
		values = append(values, convert.I128ToBE(big, s.length))
	}
	return dst.WriteFixedLenByteArray(values, defLevels)
}

func (s *decimalAsFLBAStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
	scratch.Reset(rows)
	raw := make([][]byte, rows)
	n, err := src.ReadFixedLenByteArray(raw, scratch.DefLevels[:rows])
	if err != nil {
		return err
	}
	j := 0
	for i, d := range scratch.DefLevels[:rows] {
		if d != 1 {
			dst.Indicators[i] = transport.NullSentinel
			continue
		}
		v := convert.I128FromBE(raw[j])
		j++
		text := convert.BigIntToDecimalText(v, s.precision, s.scale)
		dst.EnsureMaxElementLength(len(text))
		copy(dst.TextSlot(i), text)
		dst.Indicators[i] = int32(len(text))
	}
	_ = n
	return nil
}

// decimalAsTextStrategy emits UTF-8 decimal text directly, used when
// avoid_decimal is set with non-zero scale or precision exceeds 38
// (spec.md §4.2).
type decimalAsTextStrategy struct {
	name             string
	nullable         bool
	precision, scale int
	maxBytes         int
}

func (s *decimalAsTextStrategy) ParquetType() pqio.ColumnType {
	return pqio.ColumnType{Name: s.name, Physical: pqio.ByteArray, Logical: pqio.Logical{Kind: pqio.LogicalUTF8}, Repetition: repetitionOf(s.nullable)}
}

func (s *decimalAsTextStrategy) BufferDesc() transport.Desc {
	return transport.Desc{Kind: transport.Text, Nullable: s.nullable, MaxBytes: s.maxBytes}
}

func (s *decimalAsTextStrategy) CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error {
	defLevels := defLevelsFromIndicators(scratch, rows, src)
	values := scratch.Bytes[:0]
	for i := 0; i < rows; i++ {
		if defLevels[i] == 1 {
			values = append(values, trimNUL(src.TextSlot(i)))
		}
	}
	return dst.WriteByteArray(values, defLevels)
}

func (s *decimalAsTextStrategy) CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error {
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

func writeDecimalText32(dst *transport.Column, defLevels []int16, defined []int32, precision, scale int) error {
	j := 0
	for i, d := range defLevels {
		if d != 1 {
			dst.Indicators[i] = transport.NullSentinel
			continue
		}
		text := convert.IntegerToDecimalText(int64(defined[j]), precision, scale)
		j++
		dst.EnsureMaxElementLength(len(text))
		copy(dst.TextSlot(i), text)
		dst.Indicators[i] = int32(len(text))
	}
	return nil
}

func writeDecimalText64(dst *transport.Column, defLevels []int16, defined []int64, precision, scale int) error {
	j := 0
	for i, d := range defLevels {
		if d != 1 {
			dst.Indicators[i] = transport.NullSentinel
			continue
		}
		text := convert.IntegerToDecimalText(defined[j], precision, scale)
		j++
		dst.EnsureMaxElementLength(len(text))
		copy(dst.TextSlot(i), text)
		dst.Indicators[i] = int32(len(text))
	}
	return nil
}
