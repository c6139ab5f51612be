// Package odbcerr defines the typed error kinds surfaced across the
// column-strategy engine and its control layers. Every kind is a sentinel
// that callers compare against with errors.Is; context (column name,
// row-group index, batch number) is attached by wrapping with fmt.Errorf
// and %w, never by constructing a new unrelated error.
package odbcerr

import (
	"errors"
	"strconv"
)

// Sentinel error kinds. Compare with errors.Is, not ==, since callers
// almost always receive a wrapped instance.
var (
	ErrConfigConflict      = errors.New("odbc2parquet: conflicting configuration options")
	ErrConnectionFailed    = errors.New("odbc2parquet: connection to data source failed")
	ErrNoColumns           = errors.New("odbc2parquet: result set has zero columns")
	ErrLengthUndetermined  = errors.New("odbc2parquet: variable-length column has no reported length and no limit configured")
	ErrRowTooLarge         = errors.New("odbc2parquet: a single row exceeds the batch memory budget")
	ErrUnknownPlaceholder  = errors.New("odbc2parquet: placeholder name not present in parquet schema")
	ErrSyntaxError         = errors.New("odbc2parquet: unterminated placeholder name in statement")
	ErrBadEncoding         = errors.New("odbc2parquet: invalid UTF-16 in wide-character column")
	ErrBufferTooSmall      = errors.New("odbc2parquet: driver reported a value longer than the bound buffer")
	ErrDriverNoI64         = errors.New("odbc2parquet: driver does not support 64-bit integers")
	ErrIOError             = errors.New("odbc2parquet: filesystem or network failure")
	ErrUnsupportedType     = errors.New("odbc2parquet: relational or parquet type not handled")
	ErrConflictingOutput   = errors.New("odbc2parquet: conflicting output sink options")
)

// WithColumn wraps err with the offending column name.
func WithColumn(err error, column string) error {
	if err == nil {
		return nil
	}
	return &contextErr{msg: "column " + column, err: err}
}

// WithRowGroup wraps err with the row-group index it occurred in.
func WithRowGroup(err error, rowGroup int) error {
	if err == nil {
		return nil
	}
	return &contextErr{msg: "row group " + strconv.Itoa(rowGroup), err: err}
}

// WithBatch wraps err with the batch number it occurred in.
func WithBatch(err error, batch int) error {
	if err == nil {
		return nil
	}
	return &contextErr{msg: "batch " + strconv.Itoa(batch), err: err}
}

type contextErr struct {
	msg string
	err error
}

func (e *contextErr) Error() string { return e.msg + ": " + e.err.Error() }
func (e *contextErr) Unwrap() error { return e.err }
