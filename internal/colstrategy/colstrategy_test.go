package colstrategy

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbxport/odbc2parquet/internal/convert"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/reltype"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// fakeColumnWriter records whatever a strategy's CopyQuery hands it, one
// WriteXxx call per batch, so tests can assert on the exact values and
// definition levels a strategy produced.
type fakeColumnWriter struct {
	boolValues []bool
	i32Values  []int32
	i64Values  []int64
	f32Values  []float32
	f64Values  []float64
	byteValues [][]byte
	flbaValues [][]byte
	defLevels  []int16
}

func (w *fakeColumnWriter) WriteBoolean(values []bool, defLevels []int16) error {
	w.boolValues = append([]bool(nil), values...)
	w.defLevels = append([]int16(nil), defLevels...)
	return nil
}
func (w *fakeColumnWriter) WriteInt32(values []int32, defLevels []int16) error {
	w.i32Values = append([]int32(nil), values...)
	w.defLevels = append([]int16(nil), defLevels...)
	return nil
}
func (w *fakeColumnWriter) WriteInt64(values []int64, defLevels []int16) error {
	w.i64Values = append([]int64(nil), values...)
	w.defLevels = append([]int16(nil), defLevels...)
	return nil
}
func (w *fakeColumnWriter) WriteFloat(values []float32, defLevels []int16) error {
	w.f32Values = append([]float32(nil), values...)
	w.defLevels = append([]int16(nil), defLevels...)
	return nil
}
func (w *fakeColumnWriter) WriteDouble(values []float64, defLevels []int16) error {
	w.f64Values = append([]float64(nil), values...)
	w.defLevels = append([]int16(nil), defLevels...)
	return nil
}
func (w *fakeColumnWriter) WriteByteArray(values [][]byte, defLevels []int16) error {
	w.byteValues = append([][]byte(nil), values...)
	w.defLevels = append([]int16(nil), defLevels...)
	return nil
}
func (w *fakeColumnWriter) WriteFixedLenByteArray(values [][]byte, defLevels []int16) error {
	w.flbaValues = append([][]byte(nil), values...)
	w.defLevels = append([]int16(nil), defLevels...)
	return nil
}
func (w *fakeColumnWriter) Close() error { return nil }

// fakeColumnReader replays a fixed sequence of defined values back through
// ReadXxx, mimicking a single-shot Parquet column read (insert direction).
type fakeColumnReader struct {
	i32Values  []int32
	i64Values  []int64
	byteValues [][]byte
	flbaValues [][]byte
	defLevels  []int16
}

func (r *fakeColumnReader) ReadBoolean(values []bool, defLevels []int16) (int, error) {
	return 0, nil
}
func (r *fakeColumnReader) ReadInt32(values []int32, defLevels []int16) (int, error) {
	copy(defLevels, r.defLevels)
	n := copy(values, r.i32Values)
	return n, nil
}
func (r *fakeColumnReader) ReadInt64(values []int64, defLevels []int16) (int, error) {
	copy(defLevels, r.defLevels)
	n := copy(values, r.i64Values)
	return n, nil
}
func (r *fakeColumnReader) ReadFloat(values []float32, defLevels []int16) (int, error) {
	return 0, nil
}
func (r *fakeColumnReader) ReadDouble(values []float64, defLevels []int16) (int, error) {
	return 0, nil
}
func (r *fakeColumnReader) ReadByteArray(values [][]byte, defLevels []int16) (int, error) {
	copy(defLevels, r.defLevels)
	n := copy(values, r.byteValues)
	return n, nil
}
func (r *fakeColumnReader) ReadFixedLenByteArray(values [][]byte, defLevels []int16) (int, error) {
	copy(defLevels, r.defLevels)
	n := copy(values, r.flbaValues)
	return n, nil
}
func (r *fakeColumnReader) HasNext() bool { return false }

func textColumn(nullable bool, maxBytes int, rows []string, null []bool) *transport.Column {
	buf, err := transport.NewBuffer([]transport.Desc{{Kind: transport.Text, Nullable: nullable, MaxBytes: maxBytes}}, len(rows))
	if err != nil {
		panic(err)
	}
	col := buf.Column(0)
	for i, v := range rows {
		if null[i] {
			col.Indicators[i] = transport.NullSentinel
			continue
		}
		copy(col.TextSlot(i), v)
		col.Indicators[i] = int32(len(v))
	}
	return col
}

func basicColumn(name string, kind reltype.Kind, nullable bool) reltype.Column {
	nullability := reltype.NonNull
	if nullable {
		nullability = reltype.Nullable
	}
	return reltype.Column{Name: name, Type: reltype.Type{Kind: kind}, Nullability: nullability}
}

// spec.md §8 scenario: decimal(3,2) selects the text->int32 strategy with a
// DECIMAL(3,2) logical annotation, and varchar(10) selects narrow text.
func TestSelectDecimalAndVarchar(t *testing.T) {
	col := basicColumn("amount", reltype.KindDecimal, true)
	col.Type.DecimalPrecision, col.Type.DecimalScale = 3, 2
	opts := reltype.MappingOptions{}

	strat, err := Select("amount", col, opts, nil)
	require.NoError(t, err)
	pt := strat.ParquetType()
	assert.Equal(t, pqio.Int32, pt.Physical)
	assert.Equal(t, pqio.LogicalDecimal, pt.Logical.Kind)
	assert.Equal(t, 3, pt.Logical.Precision)
	assert.Equal(t, 2, pt.Logical.Scale)

	vcol := basicColumn("name", reltype.KindVarchar, true)
	vcol.Type.Length = 10
	strat2, err := Select("name", vcol, opts, nil)
	require.NoError(t, err)
	assert.IsType(t, &narrowTextStrategy{}, strat2)
	assert.Equal(t, pqio.ByteArray, strat2.ParquetType().Physical)
}

// A nullable varchar column with rows ["a", NULL, "bc", NULL] must produce
// definition levels [1,0,1,0] and pack only the two defined values.
func TestNarrowTextCopyQueryDefinitionLevels(t *testing.T) {
	src := textColumn(true, 8, []string{"a", "", "bc", ""}, []bool{false, true, false, true})
	s := &narrowTextStrategy{name: "name", nullable: true, maxBytes: 8}
	scratch := transport.NewScratch()
	w := &fakeColumnWriter{}

	require.NoError(t, s.CopyQuery(scratch, 4, src, w))
	assert.Equal(t, []int16{1, 0, 1, 0}, w.defLevels)
	require.Len(t, w.byteValues, 2)
	assert.Equal(t, "a", string(w.byteValues[0]))
	assert.Equal(t, "bc", string(w.byteValues[1]))
}

// spec.md §8 scenario: DECIMAL(33,3) selects FLBA(14) and round-trips the
// exact two's-complement bytes through convert's i128 codec.
func TestDecimalAsFLBAExactBytes(t *testing.T) {
	length := convert.DecimalFLBALength(33)
	require.Equal(t, 14, length)

	s := &decimalAsFLBAStrategy{name: "n", nullable: true, precision: 33, scale: 3, length: length, maxBytes: 40}
	pt := s.ParquetType()
	assert.Equal(t, pqio.FixedLenByteArray, pt.Physical)
	assert.Equal(t, 14, pt.TypeLength)

	src := textColumn(true, 40, []string{"+123456789012345678901234567890.123"}, []bool{false})
	scratch := transport.NewScratch()
	w := &fakeColumnWriter{}
	require.NoError(t, s.CopyQuery(scratch, 1, src, w))
	require.Len(t, w.flbaValues, 1)
	assert.Len(t, w.flbaValues[0], 14)

	back := convert.I128FromBE(w.flbaValues[0])
	want, _ := new(big.Int).SetString("123456789012345678901234567890123", 10)
	assert.Equal(t, 0, back.Cmp(want))
}

// spec.md §8 scenario: DATETIMEOFFSET precision 7 parses into
// TIMESTAMP(NANOS, utc=true) with the exact nanosecond value.
func TestTimestampTZNanosExactValue(t *testing.T) {
	s := &timestampTZStrategy{name: "ts", nullable: true, unit: convert.Nanos, maxBytes: 48}
	pt := s.ParquetType()
	assert.Equal(t, pqio.LogicalTimestamp, pt.Logical.Kind)
	assert.Equal(t, pqio.UnitNanos, pt.Logical.Unit)
	assert.True(t, pt.Logical.UTCAdjusted)

	src := textColumn(true, 48, []string{"2022-09-07 12:04:12.1234567 +00:00"}, []bool{false})
	scratch := transport.NewScratch()
	w := &fakeColumnWriter{}
	require.NoError(t, s.CopyQuery(scratch, 1, src, w))
	require.Len(t, w.i64Values, 1)
	assert.Equal(t, int64(1662552252123456700), w.i64Values[0])
}

// spec.md §8 scenario: DATE insert round-trip through three specific
// days-since-epoch values.
func TestDateInsertRoundTrip(t *testing.T) {
	s := &dateStrategy{name: "d", nullable: false}
	r := &fakeColumnReader{
		i32Values: []int32{0, 365, 18695},
		defLevels: []int16{1, 1, 1},
	}
	buf, err := transport.NewBuffer([]transport.Desc{{Kind: transport.Date}}, 3)
	require.NoError(t, err)
	dst := buf.Column(0)
	scratch := transport.NewScratch()

	require.NoError(t, s.CopyInsert(scratch, 3, r, dst))
	assert.Equal(t, []int32{0, 365, 18695}, dst.I32Values)
	for i := 0; i < 3; i++ {
		assert.False(t, dst.IsNull(i))
	}
}

// avoid_decimal with non-zero scale routes to decimal-as-text regardless
// of precision/scale class (spec.md §4.2, §9).
func TestSelectDecimalAvoidDecimalNonZeroScale(t *testing.T) {
	col := basicColumn("price", reltype.KindNumeric, false)
	col.Type.DecimalPrecision, col.Type.DecimalScale = 12, 4
	opts := reltype.MappingOptions{AvoidDecimal: true}

	strat, err := Select("price", col, opts, nil)
	require.NoError(t, err)
	assert.IsType(t, &decimalAsTextStrategy{}, strat)
	assert.Equal(t, pqio.ByteArray, strat.ParquetType().Physical)
}

// MSSQL's other{-154}/-155 escape-hatch codes dispatch to the TIME and
// DATETIMEOFFSET text strategies (spec.md §4.2).
func TestSelectOtherEscapeHatch(t *testing.T) {
	timeCol := basicColumn("t", reltype.KindOther, true)
	timeCol.Type.OtherCode = mssqlOtherCodeTime
	timeCol.Type.OtherDecimalDigits = 7
	mssql := reltype.MappingOptions{DBName: mssqlDBName}
	strat, err := Select("t", timeCol, mssql, nil)
	require.NoError(t, err)
	assert.IsType(t, &timeTextStrategy{}, strat)

	tzCol := basicColumn("tz", reltype.KindOther, true)
	tzCol.Type.OtherCode = mssqlOtherCodeTimestampTZ
	tzCol.Type.OtherDecimalDigits = 7
	strat2, err := Select("tz", tzCol, mssql, nil)
	require.NoError(t, err)
	assert.IsType(t, &timestampTZStrategy{}, strat2)

	otherCol := basicColumn("x", reltype.KindOther, true)
	otherCol.Type.OtherCode = -1
	otherCol.Type.Length = 5
	strat3, err := Select("x", otherCol, reltype.MappingOptions{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &narrowTextStrategy{}, strat3)
}

// A varbinary column with no reported length and no configured limit must
// fail with ErrLengthUndetermined rather than silently guessing a size.
func TestSelectVarbinaryLengthUndetermined(t *testing.T) {
	col := basicColumn("blob", reltype.KindVarbinary, true)
	_, err := Select("blob", col, reltype.MappingOptions{}, nil)
	require.Error(t, err)
}

// ignoreIndicatorsTextStrategy only activates when the driver-quirk flag is
// set, and never for wide text (spec.md §9's open question).
func TestSelectIgnoreIndicatorsRequiresQuirkFlag(t *testing.T) {
	col := basicColumn("s", reltype.KindVarchar, true)
	col.Type.Length = 16

	strat, err := Select("s", col, reltype.MappingOptions{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &narrowTextStrategy{}, strat)

	opts := reltype.MappingOptions{DriverQuirks: reltype.DriverQuirks{GarbageLengthIndicators: true}}
	strat2, err := Select("s", col, opts, nil)
	require.NoError(t, err)
	assert.IsType(t, &ignoreIndicatorsTextStrategy{}, strat2)
}

// ignoreIndicatorsTextStrategy scans for a NUL terminator and treats an
// empty result as NULL, ignoring whatever the driver's indicator said.
func TestIgnoreIndicatorsTextStrategyScansForNUL(t *testing.T) {
	buf, err := transport.NewBuffer([]transport.Desc{{Kind: transport.Text, MaxBytes: 4}}, 2)
	require.NoError(t, err)
	src := buf.Column(0)
	copy(src.TextSlot(0), "ab\x00\x00")
	src.Indicators[0] = 99 // garbage, must be ignored
	// row 1 left all-zero: treated as NULL regardless of its indicator.
	src.Indicators[1] = 99

	s := &ignoreIndicatorsTextStrategy{name: "s", nullable: true, maxBytes: 4}
	scratch := transport.NewScratch()
	w := &fakeColumnWriter{}
	require.NoError(t, s.CopyQuery(scratch, 2, src, w))
	assert.Equal(t, []int16{1, 0}, w.defLevels)
	require.Len(t, w.byteValues, 1)
	assert.Equal(t, "ab", string(w.byteValues[0]))
}

// identity integer strategies pick the right width and logical annotation
// per evaluation-order rule.
func TestSelectIntegerWidths(t *testing.T) {
	for _, tc := range []struct {
		kind     reltype.Kind
		want     interface{}
		physical pqio.Physical
		bitWidth int
	}{
		{reltype.KindTinyInt, &identityI32{}, pqio.Int32, 8},
		{reltype.KindSmallInt, &identityI32{}, pqio.Int32, 16},
		{reltype.KindInteger, &identityI32{}, pqio.Int32, 32},
		{reltype.KindBigInt, &identityI64{}, pqio.Int64, 64},
	} {
		col := basicColumn("n", tc.kind, false)
		col.Type.Signed = true
		strat, err := Select("n", col, reltype.MappingOptions{}, nil)
		require.NoError(t, err)
		assert.IsType(t, tc.want, strat)
		pt := strat.ParquetType()
		assert.Equal(t, tc.physical, pt.Physical)
		assert.Equal(t, pqio.LogicalInteger, pt.Logical.Kind)
		assert.Equal(t, tc.bitWidth, pt.Logical.BitWidth)
		assert.True(t, pt.Logical.Signed)
	}
}

// wideTextStrategy fails closed on malformed UTF-16 rather than
// substituting, unlike narrowTextStrategy's lossy sanitization.
func TestWideTextStrategyFailsOnBadSurrogate(t *testing.T) {
	buf, err := transport.NewBuffer([]transport.Desc{{Kind: transport.WText, MaxU16: 4}}, 1)
	require.NoError(t, err)
	src := buf.Column(0)
	slot := src.WTextSlot(0)
	slot[0] = 0xD800 // unpaired high surrogate
	src.Indicators[0] = 0

	s := &wideTextStrategy{name: "w", nullable: true, maxU16: 4}
	scratch := transport.NewScratch()
	w := &fakeColumnWriter{}
	err = s.CopyQuery(scratch, 1, src, w)
	assert.Error(t, err)
}

// binaryFixedStrategy copies bytes verbatim into FIXED_LEN_BYTE_ARRAY.
func TestBinaryFixedStrategyIdentityCopy(t *testing.T) {
	buf, err := transport.NewBuffer([]transport.Desc{{Kind: transport.Binary, MaxBinary: 4}}, 1)
	require.NoError(t, err)
	src := buf.Column(0)
	copy(src.BinarySlot(0), []byte{0xDE, 0xAD, 0xBE, 0xEF})
	src.Indicators[0] = 0

	s := &binaryFixedStrategy{name: "b", nullable: false, length: 4}
	scratch := transport.NewScratch()
	w := &fakeColumnWriter{}
	require.NoError(t, s.CopyQuery(scratch, 1, src, w))
	require.Len(t, w.flbaValues, 1)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, w.flbaValues[0])
}
