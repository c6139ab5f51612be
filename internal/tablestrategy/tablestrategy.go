// Package tablestrategy implements C6: the per-stream aggregate of column
// strategies. It enumerates column names (synthesizing Column{i} for blanks),
// builds the flat Parquet schema, sizes and allocates the transport buffer,
// and drives one row group's worth of column copies at a time. Grounded on
// joechenrh-data-writer's src/writer/streaming.go ChunkSizeCalculator, whose
// per-column byte-width accumulation is the same sum-of-estimates shape
// fetch_buffer_size_per_row uses here.
package tablestrategy

import (
	"fmt"

	"github.com/dbxport/odbc2parquet/internal/colstrategy"
	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/reltype"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// TableStrategy owns one stream's column strategies, its Parquet schema,
// and its transport buffer. The same type serves both directions: query
// (CopyQuery, DB -> Parquet) and insert (CopyInsert, Parquet -> DB).
type TableStrategy struct {
	strategies []colstrategy.Strategy
	schema     *pqio.Schema
	buffer     *transport.Buffer
	descs      []transport.Desc
}

// ColumnNames synthesizes Column{i} (1-based) for any column whose
// reported name is empty (spec.md §4.4). Final de-duplication against
// collisions between a reported name and a synthesized one is
// pqio.SchemaBuilder's job.
func ColumnNames(cols []reltype.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			names[i] = fmt.Sprintf("Column%d", i+1)
		} else {
			names[i] = c.Name
		}
	}
	return names
}

// Build selects a strategy per column from relational metadata, assembles
// the flat Parquet schema, and allocates a transport buffer of rowCapacity
// rows. This is the query direction (DB -> Parquet): cols is the result
// set's column metadata, reported by the DB interface before any row is
// fetched. The insert/execute direction uses BuildFromParquetSchema
// instead, since there cols would have to come from an already-open
// Parquet file rather than a live query.
func Build(cols []reltype.Column, opts reltype.MappingOptions, warn colstrategy.Warner, rowCapacity int) (*TableStrategy, error) {
	if len(cols) == 0 {
		return nil, odbcerr.ErrNoColumns
	}

	names := ColumnNames(cols)
	strategies := make([]colstrategy.Strategy, len(cols))
	descs := make([]transport.Desc, len(cols))
	sb := pqio.NewSchemaBuilder()

	for i, c := range cols {
		strat, err := colstrategy.Select(names[i], c, opts, warn)
		if err != nil {
			return nil, odbcerr.WithColumn(err, names[i])
		}
		strategies[i] = strat
		descs[i] = strat.BufferDesc()
		sb.AddColumn(strat.ParquetType())
	}

	schema, err := sb.Build()
	if err != nil {
		return nil, err
	}

	buf, err := transport.NewBuffer(descs, rowCapacity)
	if err != nil {
		return nil, err
	}

	return &TableStrategy{strategies: strategies, schema: schema, buffer: buf, descs: descs}, nil
}

// BuildFromParquetSchema selects a strategy per column directly from an
// already-open Parquet file's own schema, for the insert/execute direction
// applied to a file this engine did not necessarily write itself (spec.md
// §4.4, §6's execute/insert-from-arbitrary-Parquet case). There is no
// separate table-metadata source to consult here: the file's own physical
// and logical types are the only ground truth, mirroring
// parquet_type_to_odbc_buffer_desc deriving the ODBC buffer descriptor
// straight from the column descriptor it is about to read. The schema is
// reused as-is rather than rebuilt, since it is already valid and final.
func BuildFromParquetSchema(sch *pqio.Schema, opts reltype.MappingOptions, rowCapacity int) (*TableStrategy, error) {
	n := sch.NumColumns()
	if n == 0 {
		return nil, odbcerr.ErrNoColumns
	}

	strategies := make([]colstrategy.Strategy, n)
	descs := make([]transport.Desc, n)

	for i := 0; i < n; i++ {
		ct := sch.Column(i)
		strat, err := colstrategy.SelectFromParquet(ct, opts)
		if err != nil {
			return nil, odbcerr.WithColumn(err, ct.Name)
		}
		strategies[i] = strat
		descs[i] = strat.BufferDesc()
	}

	buf, err := transport.NewBuffer(descs, rowCapacity)
	if err != nil {
		return nil, err
	}

	return &TableStrategy{strategies: strategies, schema: sch, buffer: buf, descs: descs}, nil
}

// NewShadowBuffer allocates a second transport buffer with this stream's
// column layout but an independent backing array, for internal/fetch's
// double-buffered concurrent mode (spec.md §4.5/§5): one buffer is owned by
// the DB driver while the other is owned by this TableStrategy's copy
// methods, and the two swap at fetch/write boundaries.
func (ts *TableStrategy) NewShadowBuffer(rowCapacity int) (*transport.Buffer, error) {
	return transport.NewBuffer(ts.descs, rowCapacity)
}

// Schema is the flat Parquet message schema this stream writes or reads.
func (ts *TableStrategy) Schema() *pqio.Schema { return ts.schema }

// Buffer is the transport buffer column strategies read from (query
// direction) or write into (insert direction).
func (ts *TableStrategy) Buffer() *transport.Buffer { return ts.buffer }

// BytesPerRow is fetch_buffer_size_per_row: the sum of every column's
// BufferDesc().BytesPerRow(), spec.md §4.4/§4.5's batch-size input.
func (ts *TableStrategy) BytesPerRow() int {
	total := 0
	for i := 0; i < ts.buffer.NumColumns(); i++ {
		total += ts.buffer.Column(i).Desc.BytesPerRow()
	}
	return total
}

// WriteRowGroup drives the query direction: one CopyQuery per column, in
// schema order, against a freshly opened row group writer (spec.md §4.4/
// §4.6). rows must be <= ts.buffer.ActiveRows().
func (ts *TableStrategy) WriteRowGroup(scratch *transport.Scratch, rows int, rgw pqio.RowGroupWriter) error {
	return ts.WriteRowGroupFrom(scratch, rows, ts.buffer, rgw)
}

// WriteRowGroupFrom is WriteRowGroup against an explicit transport buffer,
// letting internal/fetch drive copies out of whichever of its two buffers
// the DB driver has just finished filling.
func (ts *TableStrategy) WriteRowGroupFrom(scratch *transport.Scratch, rows int, buf *transport.Buffer, rgw pqio.RowGroupWriter) error {
	for i, strat := range ts.strategies {
		cw, err := rgw.NextColumn()
		if err != nil {
			return odbcerr.WithColumn(err, ts.schema.Column(i).Name)
		}
		if err := strat.CopyQuery(scratch, rows, buf.Column(i), cw); err != nil {
			return odbcerr.WithColumn(err, ts.schema.Column(i).Name)
		}
		if err := cw.Close(); err != nil {
			return odbcerr.WithColumn(err, ts.schema.Column(i).Name)
		}
	}
	return nil
}

// ReadRowGroup drives the insert direction: one CopyInsert per column,
// reading a row group already opened by the caller, writing into the
// transport buffer for dbiface.Inserter.Exec to bind from.
func (ts *TableStrategy) ReadRowGroup(scratch *transport.Scratch, rows int, rgr pqio.RowGroupReader) error {
	for i, strat := range ts.strategies {
		cr, err := rgr.Column(i)
		if err != nil {
			return odbcerr.WithColumn(err, ts.schema.Column(i).Name)
		}
		if err := strat.CopyInsert(scratch, rows, cr, ts.buffer.Column(i)); err != nil {
			return odbcerr.WithColumn(err, ts.schema.Column(i).Name)
		}
	}
	return nil
}
