package colstrategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/reltype"
)

// SelectFromParquet picks strategies straight off the physical+logical
// type a file already has on disk; these cases mirror
// parquet_type_to_odbc_buffer_desc's dispatch table.
func TestSelectFromParquetIdentityWidths(t *testing.T) {
	i32 := pqio.ColumnType{Name: "n", Physical: pqio.Int32, Logical: pqio.Logical{Kind: pqio.LogicalInteger, BitWidth: 32, Signed: true}, Repetition: pqio.Required}
	strat, err := SelectFromParquet(i32, reltype.MappingOptions{})
	require.NoError(t, err)
	assert.IsType(t, &identityI32{}, strat)
	assert.Equal(t, pqio.Int32, strat.ParquetType().Physical)

	i64 := pqio.ColumnType{Name: "n", Physical: pqio.Int64, Repetition: pqio.Optional}
	strat2, err := SelectFromParquet(i64, reltype.MappingOptions{})
	require.NoError(t, err)
	assert.IsType(t, &identityI64{}, strat2)
	assert.True(t, strat2.BufferDesc().Nullable)
}

func TestSelectFromParquetDateAndTimestamp(t *testing.T) {
	date := pqio.ColumnType{Name: "d", Physical: pqio.Int32, Logical: pqio.Logical{Kind: pqio.LogicalDate}}
	strat, err := SelectFromParquet(date, reltype.MappingOptions{})
	require.NoError(t, err)
	assert.IsType(t, &dateStrategy{}, strat)

	ts := pqio.ColumnType{Name: "ts", Physical: pqio.Int64, Logical: pqio.Logical{Kind: pqio.LogicalTimestamp, Unit: pqio.UnitMicros}}
	strat2, err := SelectFromParquet(ts, reltype.MappingOptions{})
	require.NoError(t, err)
	assert.IsType(t, &timestampNoTZStrategy{}, strat2)
}

// A UTC-adjusted timestamp has no supported insert-direction strategy: the
// strategies that read DATETIMEOFFSET text back only exist for the query
// side.
func TestSelectFromParquetRejectsUTCAdjustedTimestamp(t *testing.T) {
	ts := pqio.ColumnType{Name: "ts", Physical: pqio.Int64, Logical: pqio.Logical{Kind: pqio.LogicalTimestamp, UTCAdjusted: true}}
	_, err := SelectFromParquet(ts, reltype.MappingOptions{})
	assert.Error(t, err)
}

func TestSelectFromParquetDecimalFLBA(t *testing.T) {
	ct := pqio.ColumnType{
		Name: "price", Physical: pqio.FixedLenByteArray, TypeLength: 14,
		Logical: pqio.Logical{Kind: pqio.LogicalDecimal, Precision: 33, Scale: 3},
	}
	strat, err := SelectFromParquet(ct, reltype.MappingOptions{})
	require.NoError(t, err)
	assert.IsType(t, &decimalAsFLBAStrategy{}, strat)
	pt := strat.ParquetType()
	assert.Equal(t, 14, pt.TypeLength)
	assert.Equal(t, 33, pt.Logical.Precision)
}

// UTF8 byte_array columns get an initial buffer sized from
// ColumnLengthLimit when set, since the Parquet schema carries no length
// hint for variable-length columns.
func TestSelectFromParquetTextUsesConfiguredLengthLimit(t *testing.T) {
	ct := pqio.ColumnType{Name: "name", Physical: pqio.ByteArray, Logical: pqio.Logical{Kind: pqio.LogicalUTF8}, Repetition: pqio.Optional}

	strat, err := SelectFromParquet(ct, reltype.MappingOptions{ColumnLengthLimit: 64})
	require.NoError(t, err)
	narrow, ok := strat.(*narrowTextStrategy)
	require.True(t, ok)
	assert.Equal(t, 64, narrow.maxBytes)

	strat2, err := SelectFromParquet(ct, reltype.MappingOptions{})
	require.NoError(t, err)
	narrow2, ok := strat2.(*narrowTextStrategy)
	require.True(t, ok)
	assert.Equal(t, defaultInsertTextBytes, narrow2.maxBytes)
}

func TestSelectFromParquetVariableBinary(t *testing.T) {
	ct := pqio.ColumnType{Name: "blob", Physical: pqio.ByteArray}
	strat, err := SelectFromParquet(ct, reltype.MappingOptions{})
	require.NoError(t, err)
	assert.IsType(t, &binaryVariableStrategy{}, strat)
}

func TestSelectFromParquetFixedBinaryAndBoolean(t *testing.T) {
	bin := pqio.ColumnType{Name: "b", Physical: pqio.FixedLenByteArray, TypeLength: 16}
	strat, err := SelectFromParquet(bin, reltype.MappingOptions{})
	require.NoError(t, err)
	fixed, ok := strat.(*binaryFixedStrategy)
	require.True(t, ok)
	assert.Equal(t, 16, fixed.length)

	flag := pqio.ColumnType{Name: "flag", Physical: pqio.Boolean}
	strat2, err := SelectFromParquet(flag, reltype.MappingOptions{})
	require.NoError(t, err)
	assert.IsType(t, &booleanStrategy{}, strat2)
}
