package fetch

import (
	"strconv"

	"github.com/dbxport/odbc2parquet/internal/odbcerr"
)

// DefaultMaxRows is the row-count cap applied regardless of the memory
// budget: 65,535 keeps batches within the 16-bit fetch-size limit some
// ODBC drivers impose (spec.md §4.5).
const DefaultMaxRows = 65535

// DefaultMemoryLimitBytes is the fallback batch memory budget: 2 GiB on a
// 64-bit host, 1 GiB on a 32-bit one (spec.md §4.5).
func DefaultMemoryLimitBytes() int64 {
	if strconv.IntSize >= 64 {
		return 2 << 30
	}
	return 1 << 30
}

// BatchSizeRows computes spec.md §4.5's batch_size_rows:
// floor(limitBytes / (bytesPerRow + scratchOverheadPerRow)), capped at
// maxRows. Fails with ErrRowTooLarge if the result is zero, meaning a
// single row alone does not fit the memory budget.
func BatchSizeRows(limitBytes int64, bytesPerRow, scratchOverheadPerRow, maxRows int) (int, error) {
	denom := bytesPerRow + scratchOverheadPerRow
	if denom <= 0 {
		return 0, odbcerr.ErrRowTooLarge
	}

	rows := int(limitBytes / int64(denom))
	if rows > maxRows {
		rows = maxRows
	}
	if rows == 0 {
		return 0, odbcerr.ErrRowTooLarge
	}
	return rows, nil
}
