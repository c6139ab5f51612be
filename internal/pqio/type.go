// Package pqio is the narrow boundary between the column-strategy engine
// and "the Parquet serializer library" (spec.md §1 places the serializer
// itself out of scope, assumed to expose row-group writers with typed
// column writers and a schema builder). ColumnType/Physical/Logical model
// the schema-node shape; ColumnWriter/RowGroupWriter/Writer/SchemaBuilder
// are the narrow interfaces colstrategy and tablestrategy program against.
// writer.go, reader.go and schema.go bind them to
// github.com/apache/arrow/go/v17/parquet.
package pqio

// Physical is the Parquet physical type.
type Physical int

const (
	Boolean Physical = iota
	Int32
	Int64
	Float
	Double
	ByteArray
	FixedLenByteArray
)

// LogicalKind discriminates the optional logical annotation.
type LogicalKind int

const (
	LogicalNone LogicalKind = iota
	LogicalInteger
	LogicalDecimal
	LogicalDate
	LogicalTime
	LogicalTimestamp
	LogicalUTF8
)

// TimeUnit mirrors convert.TimeUnit without importing internal/convert,
// keeping pqio a leaf package.
type TimeUnit int

const (
	UnitMillis TimeUnit = iota
	UnitMicros
	UnitNanos
)

// Logical is the optional Parquet logical annotation for a column.
type Logical struct {
	Kind LogicalKind

	// LogicalInteger
	BitWidth int
	Signed   bool

	// LogicalDecimal
	Precision, Scale int

	// LogicalTime / LogicalTimestamp
	Unit         TimeUnit
	UTCAdjusted bool
}

// Repetition is required or optional; spec.md §3's invariant ties this
// directly to relational nullability.
type Repetition int

const (
	Required Repetition = iota
	Optional
)

// ColumnType is the Parquet-side column description a strategy's
// ParquetType() method returns, ready to hand to a SchemaBuilder.
type ColumnType struct {
	Name       string
	Physical   Physical
	Logical    Logical
	Repetition Repetition
	// TypeLength is the FIXED_LEN_BYTE_ARRAY length; meaningless otherwise.
	TypeLength int
}
