// Package dbiface declares the narrow boundary this repository needs from
// a DB interface library (spec.md §1 places the library itself out of
// scope — only this contract and memdb's in-memory reference
// implementation live here). internal/fetch and cmd/odbc2parquet
// are written against these interfaces only; internal/dbarrow's
// teacher-grounded Postgres/Cockroach/CrateDB type-string mapping informed
// the shape of Cursor.Columns, generalized from Arrow types to
// reltype.Type.
package dbiface

import (
	"context"

	"github.com/dbxport/odbc2parquet/internal/reltype"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// Cursor is the query-direction (DB -> Parquet) result-set contract.
// Columns is called once, before the transport buffer is allocated; Fetch
// is called once per batch.
type Cursor interface {
	// Columns describes the result set, in positional order. The table
	// strategy synthesizes Column{i} names for empty-named columns; a
	// Cursor implementation may return an empty Name.
	Columns() ([]reltype.Column, error)

	// Fetch populates buf's columns up to buf.Capacity() rows and reports
	// how many rows were actually delivered (less than capacity on the
	// final batch, zero at end of stream). buf's columns must already be
	// allocated with descriptors matching Columns()'s order (tablestrategy's
	// responsibility); Fetch never resizes buf itself, only
	// Column.EnsureMaxElementLength when a value exceeds the bound slot
	// (spec.md §4.8).
	Fetch(ctx context.Context, buf *transport.Buffer) (rows int, err error)

	Close() error
}

// Inserter is the insert-direction (Parquet -> DB) contract: a prepared
// statement bound to one transport buffer's columns, executed once per
// row group (spec.md §4.3's "row count per execute is set per row group").
type Inserter interface {
	// Exec executes the prepared statement once per row in
	// buf[0:rows), reading parameter values from buf's columns in
	// positional order.
	Exec(ctx context.Context, buf *transport.Buffer, rows int) error

	Close() error
}

// Conn opens cursors and inserters against one data source connection.
type Conn interface {
	Query(ctx context.Context, sql string, params []any) (Cursor, error)
	Prepare(ctx context.Context, sql string) (Inserter, error)

	// TableColumns reports the target table's column descriptions, the
	// insert direction's analogue of Cursor.Columns. The insert subcommand
	// calls it only to check that the table exists; the auto-generated
	// "INSERT INTO table (c1,...) VALUES (?,...)" and the insert-side table
	// strategy both come from the Parquet file's own schema.
	TableColumns(ctx context.Context, table string) ([]reltype.Column, error)

	Close() error
}

// DriverInfo and DataSourceInfo back the list-drivers/list-data-sources
// CLI subcommands (spec.md §6).
type DriverInfo struct {
	Name       string
	Attributes []string
}

type DataSourceInfo struct {
	ServerName  string
	Description string
}

// Catalog is the connection-independent enumeration surface; a real DB
// interface library typically exposes this statically (no open connection
// required), so it is separate from Conn.
type Catalog interface {
	ListDrivers(ctx context.Context) ([]DriverInfo, error)
	ListDataSources(ctx context.Context) ([]DataSourceInfo, error)
}

// ConnOptions mirrors the subset of spec.md §6's CLI options a Conn
// implementation needs at connect time.
type ConnOptions struct {
	ConnectionString string
	DSN              string
	User             string
	Password         string

	// Mapping carries the column-strategy selection options (UseUTF16,
	// AvoidDecimal, ColumnLengthLimit, DriverQuirks, ...) resolved from the
	// CLI's --encoding/--avoid-decimal/--column-length-limit flags before
	// reaching Conn.
	Mapping reltype.MappingOptions
}
