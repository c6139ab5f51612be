package pqio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaBuilderDeduplicatesNames(t *testing.T) {
	b := NewSchemaBuilder()
	b.AddColumn(ColumnType{Name: "id", Physical: Int64, Repetition: Required})
	b.AddColumn(ColumnType{Name: "id", Physical: Int32, Repetition: Optional})

	sch, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 2, sch.NumColumns())
	assert.Equal(t, "id", sch.Column(0).Name)
	assert.Equal(t, "id_2", sch.Column(1).Name)
}

func TestSchemaBuilderRejectsEmptySchema(t *testing.T) {
	_, err := NewSchemaBuilder().Build()
	assert.Error(t, err)
}

func TestSchemaBuilderDecimalColumn(t *testing.T) {
	b := NewSchemaBuilder()
	b.AddColumn(ColumnType{
		Name:       "amount",
		Physical:   FixedLenByteArray,
		TypeLength: 14,
		Logical:    Logical{Kind: LogicalDecimal, Precision: 33, Scale: 3},
		Repetition: Optional,
	})
	sch, err := b.Build()
	require.NoError(t, err)
	require.NotNil(t, sch.root)
	assert.Equal(t, 1, sch.NumColumns())
}
