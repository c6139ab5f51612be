package pqio

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/file"
)

// ColumnWriter is the narrow, physical-type-dispatched write surface a
// column strategy's Copy method drives once per batch. Exactly one of the
// WriteXxx methods is valid for a given writer, matching its ColumnType's
// Physical; colstrategy selects the right one once per column and never
// type-switches again per value.
type ColumnWriter interface {
	WriteBoolean(values []bool, defLevels []int16) error
	WriteInt32(values []int32, defLevels []int16) error
	WriteInt64(values []int64, defLevels []int16) error
	WriteFloat(values []float32, defLevels []int16) error
	WriteDouble(values []float64, defLevels []int16) error
	WriteByteArray(values [][]byte, defLevels []int16) error
	WriteFixedLenByteArray(values [][]byte, defLevels []int16) error
	Close() error
}

// RowGroupWriter drives one Parquet row group: one ColumnWriter per leaf,
// visited left to right (tablestrategy enforces this order; spec.md §4.6).
type RowGroupWriter interface {
	NextColumn() (ColumnWriter, error)
	Close() error
}

// Writer is a single open Parquet file (or stdout stream).
type Writer interface {
	NewRowGroup() (RowGroupWriter, error)
	NumRowGroups() int
	Close() error
}

// CompressionCodec names the subset of compress.Codecs that
// cmd/odbc2parquet's --column-compression-default flag selects from.
type CompressionCodec int

const (
	Uncompressed CompressionCodec = iota
	Snappy
	Gzip
	Zstd
	Brotli
	Lz4Raw
)

func (c CompressionCodec) toArrow() compress.Compression {
	switch c {
	case Snappy:
		return compress.Codecs.Snappy
	case Gzip:
		return compress.Codecs.Gzip
	case Zstd:
		return compress.Codecs.Zstd
	case Brotli:
		return compress.Codecs.Brotli
	case Lz4Raw:
		return compress.Codecs.Lz4Raw
	default:
		return compress.Codecs.Uncompressed
	}
}

// WriterOptions configures Open; CompressionLevel is only honored for
// codecs that support a level (zstd, brotli, gzip).
type WriterOptions struct {
	Compression      CompressionCodec
	CompressionLevel int
}

// Open adapts sch and w to a Writer backed by parquet/file's low-level
// typed-column-writer API, the pattern joechenrh-data-writer's
// ParquetWriter.getWriter/writeNextColumn uses.
func Open(w io.Writer, sch *Schema, opts WriterOptions) (Writer, error) {
	props := []parquet.WriterProperty{parquet.WithCompression(opts.Compression.toArrow())}
	if opts.CompressionLevel != 0 {
		props = append(props, parquet.WithCompressionLevel(opts.CompressionLevel))
	}

	fw := file.NewParquetWriter(w, sch.root, file.WithWriterProps(parquet.NewWriterProperties(props...)))
	return &arrowWriter{fw: fw}, nil
}

type arrowWriter struct {
	fw        *file.Writer
	rowGroups int
}

func (a *arrowWriter) NewRowGroup() (RowGroupWriter, error) {
	a.rowGroups++
	return &arrowRowGroupWriter{rgw: a.fw.AppendRowGroup()}, nil
}

func (a *arrowWriter) NumRowGroups() int { return a.rowGroups }

func (a *arrowWriter) Close() error { return a.fw.Close() }

type arrowRowGroupWriter struct {
	rgw file.SerialRowGroupWriter
}

func (r *arrowRowGroupWriter) NextColumn() (ColumnWriter, error) {
	cw, err := r.rgw.NextColumn()
	if err != nil {
		return nil, fmt.Errorf("pqio: advancing to next column: %w", err)
	}
	return &arrowColumnWriter{cw: cw}, nil
}

func (r *arrowRowGroupWriter) Close() error { return r.rgw.Close() }

type arrowColumnWriter struct {
	cw file.ColumnChunkWriter
}

func (c *arrowColumnWriter) WriteBoolean(values []bool, defLevels []int16) error {
	w, ok := c.cw.(*file.BooleanColumnChunkWriter)
	if !ok {
		return fmt.Errorf("pqio: column writer is not BOOLEAN")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (c *arrowColumnWriter) WriteInt32(values []int32, defLevels []int16) error {
	w, ok := c.cw.(*file.Int32ColumnChunkWriter)
	if !ok {
		return fmt.Errorf("pqio: column writer is not INT32")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (c *arrowColumnWriter) WriteInt64(values []int64, defLevels []int16) error {
	w, ok := c.cw.(*file.Int64ColumnChunkWriter)
	if !ok {
		return fmt.Errorf("pqio: column writer is not INT64")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (c *arrowColumnWriter) WriteFloat(values []float32, defLevels []int16) error {
	w, ok := c.cw.(*file.Float32ColumnChunkWriter)
	if !ok {
		return fmt.Errorf("pqio: column writer is not FLOAT")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (c *arrowColumnWriter) WriteDouble(values []float64, defLevels []int16) error {
	w, ok := c.cw.(*file.Float64ColumnChunkWriter)
	if !ok {
		return fmt.Errorf("pqio: column writer is not DOUBLE")
	}
	_, err := w.WriteBatch(values, defLevels, nil)
	return err
}

func (c *arrowColumnWriter) WriteByteArray(values [][]byte, defLevels []int16) error {
	w, ok := c.cw.(*file.ByteArrayColumnChunkWriter)
	if !ok {
		return fmt.Errorf("pqio: column writer is not BYTE_ARRAY")
	}
	converted := make([]parquet.ByteArray, len(values))
	for i, v := range values {
		converted[i] = parquet.ByteArray(v)
	}
	_, err := w.WriteBatch(converted, defLevels, nil)
	return err
}

func (c *arrowColumnWriter) WriteFixedLenByteArray(values [][]byte, defLevels []int16) error {
	w, ok := c.cw.(*file.FixedLenByteArrayColumnChunkWriter)
	if !ok {
		return fmt.Errorf("pqio: column writer is not FIXED_LEN_BYTE_ARRAY")
	}
	converted := make([]parquet.FixedLenByteArray, len(values))
	for i, v := range values {
		converted[i] = parquet.FixedLenByteArray(v)
	}
	_, err := w.WriteBatch(converted, defLevels, nil)
	return err
}

func (c *arrowColumnWriter) Close() error { return c.cw.Close() }
