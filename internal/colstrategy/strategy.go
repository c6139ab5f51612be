// Package colstrategy implements the column-strategy catalog (C2) and the
// strategy selector (C3). A Strategy encapsulates, for one column, the
// Parquet schema contribution, the transport buffer shape it requires, and
// the two conversion routines (query direction DB->Parquet, insert
// direction Parquet->DB). The catalog is a flat list of concrete structs,
// not an inheritance hierarchy, per spec.md §9's explicit guidance.
package colstrategy

import (
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// Strategy is the per-column handle C6 (tablestrategy) drives once per
// batch. CopyQuery/CopyInsert read/write disjoint halves of the contract;
// a strategy that only makes sense in one direction returns
// odbcerr.ErrUnsupportedType from the other.
type Strategy interface {
	// ParquetType is the schema leaf this column contributes, already
	// named (tablestrategy assigns the final, de-duplicated name).
	ParquetType() pqio.ColumnType

	// BufferDesc describes how the transport buffer must allocate this
	// column's slot.
	BufferDesc() transport.Desc

	// CopyQuery converts rows [0,rows) from the transport buffer column
	// src into the Parquet column writer dst, using scratch as a
	// per-batch arena.
	CopyQuery(scratch *transport.Scratch, rows int, src *transport.Column, dst pqio.ColumnWriter) error

	// CopyInsert converts rows [0,rows) from the Parquet column reader
	// src into the transport buffer column dst.
	CopyInsert(scratch *transport.Scratch, rows int, src pqio.ColumnReader, dst *transport.Column) error
}

// defLevelsFromIndicators fills scratch.DefLevels[0:rows] from src's null
// indicators: 1 = present, 0 = null (spec.md §3's flat-schema convention).
func defLevelsFromIndicators(scratch *transport.Scratch, rows int, src *transport.Column) []int16 {
	scratch.Reset(rows)
	for i := 0; i < rows; i++ {
		if src.IsNull(i) {
			scratch.DefLevels[i] = 0
		} else {
			scratch.DefLevels[i] = 1
		}
	}
	return scratch.DefLevels[:rows]
}
