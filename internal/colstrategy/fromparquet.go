package colstrategy

import (
	"fmt"

	"github.com/dbxport/odbc2parquet/internal/convert"
	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/reltype"
)

// defaultInsertTextBytes sizes the first allocation of a variable-length
// text/binary transport slot when neither the Parquet schema nor
// MappingOptions carries a usable length hint. narrowTextStrategy and
// binaryVariableStrategy grow the slot on demand via
// transport.Column.EnsureMaxElementLength, so this is a starting capacity,
// not a cap.
const defaultInsertTextBytes = 256

// SelectFromParquet picks the strategy that reads one on-disk Parquet
// column back into a transport buffer: the insert/execute direction, where
// a column's own physical and logical type drive the choice because no
// independent table schema exists to consult (a Parquet file opened for
// insert or execute is read on its own terms). This mirrors
// parquet_type_to_odbc_buffer_desc: match the physical type, then refine by
// the logical annotation, never invert through reltype.Column.
func SelectFromParquet(ct pqio.ColumnType, opts reltype.MappingOptions) (Strategy, error) {
	nullable := ct.Repetition == pqio.Optional
	name := ct.Name

	switch ct.Physical {
	case pqio.Boolean:
		return &booleanStrategy{name: name, nullable: nullable}, nil
	case pqio.Int32:
		return selectFromParquetInt32(name, nullable, ct)
	case pqio.Int64:
		return selectFromParquetInt64(name, nullable, ct)
	case pqio.Float:
		return &identityF32{name: name, nullable: nullable}, nil
	case pqio.Double:
		return &identityF64{name: name, nullable: nullable}, nil
	case pqio.ByteArray:
		return selectFromParquetByteArray(name, nullable, ct, opts)
	case pqio.FixedLenByteArray:
		return selectFromParquetFLBA(name, nullable, ct)
	default:
		return nil, fmt.Errorf("%w: column %q: unsupported parquet physical type %v for insert", odbcerr.ErrUnsupportedType, name, ct.Physical)
	}
}

func selectFromParquetInt32(name string, nullable bool, ct pqio.ColumnType) (Strategy, error) {
	switch ct.Logical.Kind {
	case pqio.LogicalNone, pqio.LogicalInteger, pqio.LogicalDecimal:
		return &identityI32{name: name, nullable: nullable, logical: ct.Logical}, nil
	case pqio.LogicalDate:
		return &dateStrategy{name: name, nullable: nullable}, nil
	default:
		return nil, fmt.Errorf("%w: column %q: unsupported int32 logical type %v for insert", odbcerr.ErrUnsupportedType, name, ct.Logical.Kind)
	}
}

func selectFromParquetInt64(name string, nullable bool, ct pqio.ColumnType) (Strategy, error) {
	switch ct.Logical.Kind {
	case pqio.LogicalNone, pqio.LogicalInteger, pqio.LogicalDecimal:
		return &identityI64{name: name, nullable: nullable, logical: ct.Logical}, nil
	case pqio.LogicalTimestamp:
		if ct.Logical.UTCAdjusted {
			return nil, fmt.Errorf("%w: column %q: UTC-adjusted timestamps are not a supported insert source", odbcerr.ErrUnsupportedType, name)
		}
		return &timestampNoTZStrategy{name: name, nullable: nullable, unit: fromPqioUnit(ct.Logical.Unit)}, nil
	default:
		return nil, fmt.Errorf("%w: column %q: unsupported int64 logical type %v for insert", odbcerr.ErrUnsupportedType, name, ct.Logical.Kind)
	}
}

func selectFromParquetByteArray(name string, nullable bool, ct pqio.ColumnType, opts reltype.MappingOptions) (Strategy, error) {
	maxBytes, ok := opts.ApplyLengthLimit(0, false)
	if !ok {
		maxBytes = defaultInsertTextBytes
	}

	switch ct.Logical.Kind {
	case pqio.LogicalUTF8:
		return &narrowTextStrategy{name: name, nullable: nullable, maxBytes: maxBytes}, nil
	case pqio.LogicalNone:
		return &binaryVariableStrategy{name: name, nullable: nullable, maxLen: maxBytes}, nil
	default:
		return nil, fmt.Errorf("%w: column %q: unsupported byte_array logical type %v for insert", odbcerr.ErrUnsupportedType, name, ct.Logical.Kind)
	}
}

func selectFromParquetFLBA(name string, nullable bool, ct pqio.ColumnType) (Strategy, error) {
	switch ct.Logical.Kind {
	case pqio.LogicalDecimal:
		maxBytes := convert.DecimalTextLen(ct.Logical.Precision, ct.Logical.Scale)
		return &decimalAsFLBAStrategy{
			name: name, nullable: nullable,
			precision: ct.Logical.Precision, scale: ct.Logical.Scale,
			length: ct.TypeLength, maxBytes: maxBytes,
		}, nil
	case pqio.LogicalNone:
		return &binaryFixedStrategy{name: name, nullable: nullable, length: ct.TypeLength}, nil
	default:
		return nil, fmt.Errorf("%w: column %q: unsupported fixed_len_byte_array logical type %v for insert", odbcerr.ErrUnsupportedType, name, ct.Logical.Kind)
	}
}

func fromPqioUnit(u pqio.TimeUnit) convert.TimeUnit {
	switch u {
	case pqio.UnitMillis:
		return convert.Millis
	case pqio.UnitMicros:
		return convert.Micros
	default:
		return convert.Nanos
	}
}
