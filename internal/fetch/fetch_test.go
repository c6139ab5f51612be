package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbxport/odbc2parquet/internal/dbiface/memdb"
	"github.com/dbxport/odbc2parquet/internal/reltype"
	"github.com/dbxport/odbc2parquet/internal/tablestrategy"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

type recordingSink struct {
	rowGroups [][]int32
}

func (s *recordingSink) WriteRowGroup(_ *transport.Scratch, rows int, buf *transport.Buffer) error {
	values := append([]int32(nil), buf.Column(0).I32Values[:rows]...)
	s.rowGroups = append(s.rowGroups, values)
	return nil
}

func newFiveRowTable() *memdb.DB {
	db := memdb.New()
	rows := make([][]any, 5)
	for i := range rows {
		rows[i] = []any{int32(i + 1)}
	}
	db.CreateTable(&memdb.Table{
		Name:    "counters",
		Columns: []reltype.Column{{Name: "n", Type: reltype.Type{Kind: reltype.KindInteger}, Nullability: reltype.NonNull}},
		Rows:    rows,
	})
	return db
}

func TestRunSequentialDrainsCursorInCapacitySizedBatches(t *testing.T) {
	db := newFiveRowTable()
	cur, err := db.Query(context.Background(), "counters", nil)
	require.NoError(t, err)
	defer cur.Close()

	cols, err := cur.Columns()
	require.NoError(t, err)

	ts, err := tablestrategy.Build(cols, reltype.MappingOptions{}, nil, 2)
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, RunSequential(context.Background(), cur, ts, sink, transport.NewScratch()))

	require.Equal(t, [][]int32{{1, 2}, {3, 4}, {5}}, sink.rowGroups)
}

func TestRunConcurrentDrainsCursorAcrossTwoBuffers(t *testing.T) {
	db := newFiveRowTable()
	cur, err := db.Query(context.Background(), "counters", nil)
	require.NoError(t, err)
	defer cur.Close()

	cols, err := cur.Columns()
	require.NoError(t, err)

	ts, err := tablestrategy.Build(cols, reltype.MappingOptions{}, nil, 2)
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, RunConcurrent(context.Background(), cur, ts, sink, transport.NewScratch(), 2))

	total := 0
	for _, rg := range sink.rowGroups {
		total += len(rg)
	}
	require.Equal(t, 5, total)

	seen := make(map[int32]bool)
	for _, rg := range sink.rowGroups {
		for _, v := range rg {
			seen[v] = true
		}
	}
	for i := int32(1); i <= 5; i++ {
		require.True(t, seen[i], "missing value %d", i)
	}
}
