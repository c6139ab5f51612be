package memdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbxport/odbc2parquet/internal/reltype"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

func TestQueryFetchRoundTripsRows(t *testing.T) {
	db := New()
	db.CreateTable(&Table{
		Name: "people",
		Columns: []reltype.Column{
			{Name: "id", Type: reltype.Type{Kind: reltype.KindInteger}, Nullability: reltype.NonNull},
			{Name: "name", Type: reltype.Type{Kind: reltype.KindVarchar, Length: 16}, Nullability: reltype.Nullable},
		},
		Rows: [][]any{
			{int32(1), "alice"},
			{int32(2), nil},
		},
	})

	cur, err := db.Query(context.Background(), "people", nil)
	require.NoError(t, err)
	defer cur.Close()

	cols, err := cur.Columns()
	require.NoError(t, err)
	require.Len(t, cols, 2)

	buf, err := transport.NewBuffer([]transport.Desc{
		{Kind: transport.I32},
		{Kind: transport.Text, Nullable: true, MaxBytes: 16},
	}, 10)
	require.NoError(t, err)

	n, err := cur.Fetch(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(1), buf.Column(0).I32Values[0])
	assert.False(t, buf.Column(1).IsNull(0))
	assert.True(t, buf.Column(1).IsNull(1))
}

func TestPrepareExecAppendsRows(t *testing.T) {
	db := New()
	db.CreateTable(&Table{
		Name: "events",
		Columns: []reltype.Column{
			{Name: "n", Type: reltype.Type{Kind: reltype.KindInteger}, Nullability: reltype.NonNull},
		},
	})

	ins, err := db.Prepare(context.Background(), "events")
	require.NoError(t, err)
	defer ins.Close()

	buf, err := transport.NewBuffer([]transport.Desc{{Kind: transport.I32}}, 2)
	require.NoError(t, err)
	buf.Column(0).I32Values[0] = 7
	buf.Column(0).Indicators[0] = 0
	buf.Column(0).I32Values[1] = 9
	buf.Column(0).Indicators[1] = 0

	require.NoError(t, ins.Exec(context.Background(), buf, 2))

	cols, err := db.TableColumns(context.Background(), "events")
	require.NoError(t, err)
	assert.Len(t, cols, 1)

	table := db.tables["events"]
	require.Len(t, table.Rows, 2)
	assert.Equal(t, int32(7), table.Rows[0][0])
	assert.Equal(t, int32(9), table.Rows[1][0])
}

func TestQueryUnknownTableFails(t *testing.T) {
	db := New()
	_, err := db.Query(context.Background(), "missing", nil)
	assert.Error(t, err)
}

func TestListDriversAndDataSources(t *testing.T) {
	db := New()
	db.CreateTable(&Table{Name: "t1", Columns: []reltype.Column{{Name: "a"}}})

	drivers, err := db.ListDrivers(context.Background())
	require.NoError(t, err)
	assert.Len(t, drivers, 1)

	sources, err := db.ListDataSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "t1", sources[0].ServerName)
}
