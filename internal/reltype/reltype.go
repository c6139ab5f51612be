// Package reltype models the relational column description that feeds the
// strategy selector (C3) and the mapping options that parameterize it. It
// is a plain data model package: it describes shapes the DB interface
// hands us, but never talks to a DB itself.
package reltype

// Kind discriminates the relational type union a column description can
// carry. It intentionally mirrors a DB interface's SQL type catalog rather
// than Go's own type system, since a single Kind can map to several
// different transport/Parquet representations depending on mapping options.
type Kind int

const (
	KindBit Kind = iota
	KindTinyInt
	KindSmallInt
	KindInteger
	KindBigInt
	KindReal
	KindFloat  // float(precision)
	KindDouble
	KindDecimal
	KindNumeric
	KindDate
	KindTime      // time(precision)
	KindTimestamp // timestamp(precision)
	KindChar
	KindVarchar
	KindWChar
	KindWVarchar
	KindLongVarchar
	KindBinary
	KindVarbinary
	KindLongVarbinary
	KindOther // vendor escape hatch
)

// Nullability is tri-state: a DB interface does not always know.
type Nullability int

const (
	Unknown Nullability = iota
	Nullable
	NonNull
)

// Type is the discriminated union of spec.md §3's relational data type.
// Only the fields relevant to Kind are meaningful; zero values elsewhere.
type Type struct {
	Kind Kind

	// Integer signedness hint, for Kind in {TinyInt,SmallInt,Integer,BigInt}.
	Signed bool

	// float(precision), for KindFloat.
	Precision int

	// decimal(precision,scale) / numeric(precision,scale).
	DecimalPrecision int
	DecimalScale     int

	// time(precision) / timestamp(precision): fractional-second digits.
	TimePrecision int

	// char/varchar/wchar/wvarchar/long-varchar/binary/varbinary/long-varbinary length.
	Length int

	// KindOther escape hatch.
	OtherCode         int
	OtherColumnSize   int
	OtherDecimalDigits int
}

// Column is a single relational column description: the input to the
// strategy selector.
type Column struct {
	// Name is the column name as reported by the DB interface. An empty
	// name must be synthesized by the caller as Column{n} (1-based) before
	// it reaches the strategy selector — see tablestrategy.ColumnNames.
	Name        string
	Type        Type
	Nullability Nullability

	// DisplaySize is lazily queryable from the cursor in the original
	// interface (a round-trip some drivers make expensive); here it is a
	// function so callers that never need it never pay for it.
	DisplaySize func() (size int, ok bool)
}

// IsNullable reports whether repetition must be OPTIONAL per spec.md §3's
// invariant (repetition = optional ⇔ nullability ∈ {nullable, unknown}).
func (c Column) IsNullable() bool {
	return c.Nullability == Nullable || c.Nullability == Unknown
}

// MappingOptions are immutable per stream (spec.md §3).
type MappingOptions struct {
	// DBName identifies the vendor, for escape-hatch dispatch (e.g.
	// "Microsoft SQL Server" for other{-154}/-155).
	DBName string

	UseUTF16              bool
	PreferVarbinary       bool
	AvoidDecimal          bool
	DriverDoesSupportI64  bool
	ColumnLengthLimit     int // 0 means "unset"

	// DriverQuirks gates the ignore-indicators text strategy (spec.md §9
	// open question: never applied silently). Zero value means no quirks.
	DriverQuirks DriverQuirks
}

// DriverQuirks names specific, opt-in workarounds for known driver
// misbehavior. Never inferred automatically from DBName.
type DriverQuirks struct {
	// GarbageLengthIndicators selects the ignore-indicators text variant:
	// scan each text slot for a NUL terminator instead of trusting the
	// driver's reported length/indicator.
	GarbageLengthIndicators bool
}

// HasColumnLengthLimit reports whether ColumnLengthLimit was explicitly set.
func (o MappingOptions) HasColumnLengthLimit() bool {
	return o.ColumnLengthLimit > 0
}

// ApplyLengthLimit implements spec.md §4.2's final length decision:
// min(reported_or_default, limit); if both are absent, the caller must
// fail with ErrLengthUndetermined (reltype doesn't import odbcerr to avoid
// a dependency cycle with packages that wrap reltype errors; colstrategy
// does that check).
func (o MappingOptions) ApplyLengthLimit(reportedLen int, reportedOK bool) (length int, ok bool) {
	switch {
	case reportedOK && o.HasColumnLengthLimit():
		if reportedLen < o.ColumnLengthLimit {
			return reportedLen, true
		}
		return o.ColumnLengthLimit, true
	case reportedOK:
		return reportedLen, true
	case o.HasColumnLengthLimit():
		return o.ColumnLengthLimit, true
	default:
		return 0, false
	}
}

// IndexMapping is C9's output: the mapping from parquet columns to
// transport-buffer columns, and from SQL positional placeholders to
// transport-buffer columns (spec.md §3).
type IndexMapping struct {
	// BufferToParquetIndex[i] is the parquet column index feeding
	// transport-buffer column i.
	BufferToParquetIndex []int

	// ParameterToBufferIndex[k] is the transport-buffer column supplying
	// positional placeholder k+1.
	ParameterToBufferIndex []int
}

// Valid checks the invariant len(ParameterToBufferIndex) entries are all
// valid indices into BufferToParquetIndex (spec.md §3/§8).
func (m IndexMapping) Valid() bool {
	for _, bufIdx := range m.ParameterToBufferIndex {
		if bufIdx < 0 || bufIdx >= len(m.BufferToParquetIndex) {
			return false
		}
	}
	return true
}
