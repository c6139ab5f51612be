package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAllocatesPerColumnSlices(t *testing.T) {
	descs := []Desc{
		{Kind: I64, Nullable: false},
		{Kind: Text, Nullable: true, MaxBytes: 10},
	}
	buf, err := NewBuffer(descs, 4)
	require.NoError(t, err)
	require.Equal(t, 2, buf.NumColumns())

	id := buf.Column(0)
	assert.Len(t, id.I64Values, 4)

	name := buf.Column(1)
	assert.Len(t, name.TextSlot(0), 10)
	assert.Len(t, name.TextSlot(3), 10)
}

func TestColumnNullIndicator(t *testing.T) {
	buf, err := NewBuffer([]Desc{{Kind: I32}}, 2)
	require.NoError(t, err)
	col := buf.Column(0)
	col.Indicators[0] = NullSentinel
	col.Indicators[1] = 0

	assert.True(t, col.IsNull(0))
	assert.False(t, col.IsNull(1))
}

func TestEnsureMaxElementLengthGrowsAndPreserves(t *testing.T) {
	buf, err := NewBuffer([]Desc{{Kind: Text, MaxBytes: 4}}, 2)
	require.NoError(t, err)
	col := buf.Column(0)
	copy(col.TextSlot(0), "abcd")

	col.EnsureMaxElementLength(8)
	assert.Equal(t, 8, col.Desc.MaxBytes)
	assert.Equal(t, "abcd", string(col.TextSlot(0)[:4]))

	// Shrinking requests are no-ops.
	col.EnsureMaxElementLength(4)
	assert.Equal(t, 8, col.Desc.MaxBytes)
}

func TestScratchResetReusesBackingArray(t *testing.T) {
	s := NewScratch()
	s.Reset(4)
	s.I32[0] = 42
	backing := s.I32

	s.Reset(2)
	assert.Equal(t, 2, len(s.I32))
	assert.Equal(t, int32(42), backing[0])
}

func TestBufferActiveRows(t *testing.T) {
	buf, err := NewBuffer([]Desc{{Kind: F64}}, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, buf.ActiveRows())

	buf.SetActiveRows(3)
	assert.Equal(t, 3, buf.ActiveRows())

	buf.SetActiveRows(1000)
	assert.Equal(t, 10, buf.ActiveRows())
}

func TestDescBytesPerRow(t *testing.T) {
	assert.Equal(t, 8, Desc{Kind: I32}.BytesPerRow())
	assert.Equal(t, 12, Desc{Kind: I64}.BytesPerRow())
	assert.Equal(t, 14, Desc{Kind: Text, MaxBytes: 10}.BytesPerRow())
}
