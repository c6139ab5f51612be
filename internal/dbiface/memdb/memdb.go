// Package memdb is an in-memory dbiface.Conn/Catalog implementation: a
// reference DB interface for tests and for the list-drivers/
// list-data-sources CLI subcommands, standing in for the real DB interface
// library spec.md §1 places out of scope. Query's sql argument is simply a
// table name — memdb is not a SQL engine, only a columnar store with
// dbiface's query/insert contract wired to it.
package memdb

import (
	"context"
	"fmt"

	"github.com/dbxport/odbc2parquet/internal/convert"
	"github.com/dbxport/odbc2parquet/internal/dbiface"
	"github.com/dbxport/odbc2parquet/internal/reltype"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// Table is one named in-memory relation: a column description list plus
// row-major cell values. A cell is nil for NULL, or the Go value matching
// its column's transport.ElementKind (bool, int32, int64, float32,
// float64, string, []byte).
type Table struct {
	Name    string
	Columns []reltype.Column
	Rows    [][]any
}

// DB holds a fixed set of named tables.
type DB struct {
	tables map[string]*Table
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{tables: make(map[string]*Table)}
}

// CreateTable registers a table, overwriting any previous table of the
// same name.
func (db *DB) CreateTable(t *Table) {
	db.tables[t.Name] = t
}

func (db *DB) Close() error { return nil }

func (db *DB) Query(_ context.Context, sql string, _ []any) (dbiface.Cursor, error) {
	t, ok := db.tables[sql]
	if !ok {
		return nil, fmt.Errorf("memdb: no table %q", sql)
	}
	return &cursor{table: t}, nil
}

func (db *DB) Prepare(_ context.Context, sql string) (dbiface.Inserter, error) {
	t, ok := db.tables[sql]
	if !ok {
		return nil, fmt.Errorf("memdb: no table %q", sql)
	}
	return &inserter{table: t}, nil
}

func (db *DB) TableColumns(_ context.Context, table string) ([]reltype.Column, error) {
	t, ok := db.tables[table]
	if !ok {
		return nil, fmt.Errorf("memdb: no table %q", table)
	}
	return t.Columns, nil
}

// ListDrivers and ListDataSources report fixed, descriptive entries: memdb
// itself is the only "driver", fronting whatever tables were created.
func (db *DB) ListDrivers(_ context.Context) ([]dbiface.DriverInfo, error) {
	return []dbiface.DriverInfo{{Name: "memdb", Attributes: []string{"in-memory reference driver"}}}, nil
}

func (db *DB) ListDataSources(_ context.Context) ([]dbiface.DataSourceInfo, error) {
	out := make([]dbiface.DataSourceInfo, 0, len(db.tables))
	for name := range db.tables {
		out = append(out, dbiface.DataSourceInfo{ServerName: name, Description: "memdb table"})
	}
	return out, nil
}

type cursor struct {
	table *Table
	next  int
}

func (c *cursor) Columns() ([]reltype.Column, error) { return c.table.Columns, nil }

func (c *cursor) Fetch(_ context.Context, buf *transport.Buffer) (int, error) {
	n := 0
	capacity := buf.Capacity()
	for n < capacity && c.next < len(c.table.Rows) {
		row := c.table.Rows[c.next]
		for i := 0; i < buf.NumColumns(); i++ {
			if err := writeCell(buf.Column(i), n, row[i]); err != nil {
				return 0, fmt.Errorf("memdb: row %d column %d: %w", c.next, i, err)
			}
		}
		c.next++
		n++
	}
	buf.SetActiveRows(n)
	return n, nil
}

func (c *cursor) Close() error { return nil }

// writeCell converts a generic Go cell value into column's transport slot
// at row i, dispatching on the column's declared ElementKind.
func writeCell(column *transport.Column, i int, v any) error {
	if v == nil {
		column.Indicators[i] = transport.NullSentinel
		return nil
	}
	switch column.Desc.Kind {
	case transport.Bit:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		column.BoolValues[i] = b
		column.Indicators[i] = 0
	case transport.I32, transport.Date:
		n, ok := v.(int32)
		if !ok {
			return fmt.Errorf("expected int32, got %T", v)
		}
		column.I32Values[i] = n
		column.Indicators[i] = 0
	case transport.I64, transport.Timestamp:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", v)
		}
		column.I64Values[i] = n
		column.Indicators[i] = 0
	case transport.F32:
		f, ok := v.(float32)
		if !ok {
			return fmt.Errorf("expected float32, got %T", v)
		}
		column.F32Values[i] = f
		column.Indicators[i] = 0
	case transport.F64:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", v)
		}
		column.F64Values[i] = f
		column.Indicators[i] = 0
	case transport.Text:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		column.EnsureMaxElementLength(len(s))
		copy(column.TextSlot(i), s)
		column.Indicators[i] = int32(len(s))
	case transport.WText:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		units := convert.UTF8ToUTF16([]byte(s))
		column.EnsureMaxElementLength(len(units))
		copy(column.WTextSlot(i), units)
		column.Indicators[i] = int32(len(units))
	case transport.Binary:
		b, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("expected []byte, got %T", v)
		}
		column.EnsureMaxElementLength(len(b))
		copy(column.BinarySlot(i), b)
		column.Indicators[i] = int32(len(b))
	default:
		return fmt.Errorf("unhandled element kind %v", column.Desc.Kind)
	}
	return nil
}

type inserter struct {
	table *Table
}

// Exec appends rows [0,rows) from buf into the target table, reading each
// column's Go-native value back out via readCell.
func (ins *inserter) Exec(_ context.Context, buf *transport.Buffer, rows int) error {
	for r := 0; r < rows; r++ {
		row := make([]any, buf.NumColumns())
		for i := 0; i < buf.NumColumns(); i++ {
			row[i] = readCell(buf.Column(i), r)
		}
		ins.table.Rows = append(ins.table.Rows, row)
	}
	return nil
}

func (ins *inserter) Close() error { return nil }

// readCell is writeCell's inverse, used by Inserter.Exec and available to
// tests asserting on round-tripped values.
func readCell(column *transport.Column, i int) any {
	if column.IsNull(i) {
		return nil
	}
	switch column.Desc.Kind {
	case transport.Bit:
		return column.BoolValues[i]
	case transport.I32, transport.Date:
		return column.I32Values[i]
	case transport.I64, transport.Timestamp:
		return column.I64Values[i]
	case transport.F32:
		return column.F32Values[i]
	case transport.F64:
		return column.F64Values[i]
	case transport.Text:
		return string(trimNUL(column.TextSlot(i)))
	case transport.WText:
		units := column.WTextSlot(i)
		trimmed := trimNUL16(units)
		out, err := convert.UTF16ToUTF8(trimmed)
		if err != nil {
			return nil
		}
		return string(out)
	case transport.Binary:
		n := column.Indicators[i]
		return append([]byte(nil), column.BinarySlot(i)[:n]...)
	default:
		return nil
	}
}

func trimNUL(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

func trimNUL16(units []uint16) []uint16 {
	for i, u := range units {
		if u == 0 {
			return units[:i]
		}
	}
	return units
}
