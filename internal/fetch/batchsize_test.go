package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbxport/odbc2parquet/internal/odbcerr"
)

func TestBatchSizeRowsFloorDivides(t *testing.T) {
	rows, err := BatchSizeRows(1000, 80, 20, 65535)
	assert.NoError(t, err)
	assert.Equal(t, 10, rows)
}

func TestBatchSizeRowsCapsAtMaxRows(t *testing.T) {
	rows, err := BatchSizeRows(1<<30, 1, 0, 100)
	assert.NoError(t, err)
	assert.Equal(t, 100, rows)
}

func TestBatchSizeRowsFailsWhenRowTooLarge(t *testing.T) {
	_, err := BatchSizeRows(100, 1000, 0, 65535)
	assert.ErrorIs(t, err, odbcerr.ErrRowTooLarge)
}

func TestDefaultMemoryLimitBytesIsPositive(t *testing.T) {
	assert.Greater(t, DefaultMemoryLimitBytes(), int64(0))
}
