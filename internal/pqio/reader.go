package pqio

import (
	"fmt"

	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/file"
)

// ColumnReader is the read-side counterpart of ColumnWriter, driven by the
// insert/execute paths (internal/fetch reversed: Parquet is the source,
// the destination table the sink).
type ColumnReader interface {
	ReadBoolean(values []bool, defLevels []int16) (int, error)
	ReadInt32(values []int32, defLevels []int16) (int, error)
	ReadInt64(values []int64, defLevels []int16) (int, error)
	ReadFloat(values []float32, defLevels []int16) (int, error)
	ReadDouble(values []float64, defLevels []int16) (int, error)
	ReadByteArray(values [][]byte, defLevels []int16) (int, error)
	ReadFixedLenByteArray(values [][]byte, defLevels []int16) (int, error)
	HasNext() bool
}

// RowGroupReader drives one input row group.
type RowGroupReader interface {
	Column(i int) (ColumnReader, error)
	NumRows() int64
}

// Reader is a single open Parquet file opened for the insert/execute path.
type Reader interface {
	Schema() *Schema
	NumRowGroups() int
	RowGroup(i int) (RowGroupReader, error)
	Close() error
}

// OpenReader adapts an on-disk Parquet file to Reader, the mirror of Open.
func OpenReader(path string) (Reader, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("pqio: opening %s: %w", path, err)
	}

	sch, err := schemaFromFileMetadata(rdr)
	if err != nil {
		rdr.Close()
		return nil, err
	}

	return &arrowReader{rdr: rdr, schema: sch}, nil
}

func schemaFromFileMetadata(rdr *file.Reader) (*Schema, error) {
	root := rdr.MetaData().Schema.Root()
	cols := make([]ColumnType, 0, root.NumFields())
	for i := 0; i < root.NumFields(); i++ {
		ct, err := columnTypeFromNode(root.Field(i))
		if err != nil {
			return nil, fmt.Errorf("pqio: reading schema leaf %d: %w", i, err)
		}
		cols = append(cols, ct)
	}
	return &Schema{columns: cols}, nil
}

type arrowReader struct {
	rdr    *file.Reader
	schema *Schema
}

func (a *arrowReader) Schema() *Schema { return a.schema }

func (a *arrowReader) NumRowGroups() int { return a.rdr.NumRowGroups() }

func (a *arrowReader) RowGroup(i int) (RowGroupReader, error) {
	rgr := a.rdr.RowGroup(i)
	return &arrowRowGroupReader{rgr: rgr}, nil
}

func (a *arrowReader) Close() error { return a.rdr.Close() }

type arrowRowGroupReader struct {
	rgr *file.RowGroupReader
}

func (r *arrowRowGroupReader) NumRows() int64 { return r.rgr.NumRows() }

func (r *arrowRowGroupReader) Column(i int) (ColumnReader, error) {
	cr, err := r.rgr.Column(i)
	if err != nil {
		return nil, fmt.Errorf("pqio: opening column %d: %w", i, err)
	}
	return &arrowColumnReader{cr: cr}, nil
}

type arrowColumnReader struct {
	cr file.ColumnChunkReader
}

func (c *arrowColumnReader) HasNext() bool { return c.cr.HasNext() }

func (c *arrowColumnReader) ReadBoolean(values []bool, defLevels []int16) (int, error) {
	r, ok := c.cr.(*file.BooleanColumnChunkReader)
	if !ok {
		return 0, fmt.Errorf("pqio: column reader is not BOOLEAN")
	}
	total, _, err := r.ReadBatch(int64(len(values)), values, defLevels, nil)
	return int(total), err
}

func (c *arrowColumnReader) ReadInt32(values []int32, defLevels []int16) (int, error) {
	r, ok := c.cr.(*file.Int32ColumnChunkReader)
	if !ok {
		return 0, fmt.Errorf("pqio: column reader is not INT32")
	}
	total, _, err := r.ReadBatch(int64(len(values)), values, defLevels, nil)
	return int(total), err
}

func (c *arrowColumnReader) ReadInt64(values []int64, defLevels []int16) (int, error) {
	r, ok := c.cr.(*file.Int64ColumnChunkReader)
	if !ok {
		return 0, fmt.Errorf("pqio: column reader is not INT64")
	}
	total, _, err := r.ReadBatch(int64(len(values)), values, defLevels, nil)
	return int(total), err
}

func (c *arrowColumnReader) ReadFloat(values []float32, defLevels []int16) (int, error) {
	r, ok := c.cr.(*file.Float32ColumnChunkReader)
	if !ok {
		return 0, fmt.Errorf("pqio: column reader is not FLOAT")
	}
	total, _, err := r.ReadBatch(int64(len(values)), values, defLevels, nil)
	return int(total), err
}

func (c *arrowColumnReader) ReadDouble(values []float64, defLevels []int16) (int, error) {
	r, ok := c.cr.(*file.Float64ColumnChunkReader)
	if !ok {
		return 0, fmt.Errorf("pqio: column reader is not DOUBLE")
	}
	total, _, err := r.ReadBatch(int64(len(values)), values, defLevels, nil)
	return int(total), err
}

func (c *arrowColumnReader) ReadByteArray(values [][]byte, defLevels []int16) (int, error) {
	r, ok := c.cr.(*file.ByteArrayColumnChunkReader)
	if !ok {
		return 0, fmt.Errorf("pqio: column reader is not BYTE_ARRAY")
	}
	buf := make([]parquet.ByteArray, len(values))
	total, _, err := r.ReadBatch(int64(len(values)), buf, defLevels, nil)
	for i := 0; i < int(total); i++ {
		values[i] = []byte(buf[i])
	}
	return int(total), err
}

func (c *arrowColumnReader) ReadFixedLenByteArray(values [][]byte, defLevels []int16) (int, error) {
	r, ok := c.cr.(*file.FixedLenByteArrayColumnChunkReader)
	if !ok {
		return 0, fmt.Errorf("pqio: column reader is not FIXED_LEN_BYTE_ARRAY")
	}
	buf := make([]parquet.FixedLenByteArray, len(values))
	total, _, err := r.ReadBatch(int64(len(values)), buf, defLevels, nil)
	for i := 0; i < int(total); i++ {
		values[i] = []byte(buf[i])
	}
	return int(total), err
}
