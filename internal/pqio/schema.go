package pqio

import (
	"fmt"

	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/schema"
)

// Schema is the built, immutable Parquet message schema for a result set
// or a target table, produced by a SchemaBuilder and consumed by Open.
type Schema struct {
	root    *schema.GroupNode
	columns []ColumnType
}

// NumColumns reports the flat column count (spec.md's schemas are always
// flat; C2/C3 never emit nested groups).
func (s *Schema) NumColumns() int { return len(s.columns) }

// Column returns the ColumnType that produced schema leaf i.
func (s *Schema) Column(i int) ColumnType { return s.columns[i] }

// ColumnNames lists every leaf name in schema order, the shape
// internal/placeholder's BuildIndexMapping and the auto-generated INSERT
// statement both match placeholder names/column lists against.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// SchemaBuilder accumulates ColumnTypes in column order and builds a flat
// Parquet message schema (tablestrategy.Build drives this once per table,
// spec.md §4.6).
type SchemaBuilder struct {
	columns []ColumnType
	seen    map[string]bool
}

func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{seen: make(map[string]bool)}
}

// AddColumn appends a leaf column. Names are de-duplicated by suffixing
// "_2", "_3", ... since Parquet message schemas require unique field names
// and upstream result sets do not guarantee that (spec.md §4.6 edge case).
func (b *SchemaBuilder) AddColumn(ct ColumnType) {
	name := ct.Name
	if b.seen[name] {
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s_%d", name, n)
			if !b.seen[candidate] {
				name = candidate
				break
			}
		}
	}
	b.seen[name] = true
	ct.Name = name
	b.columns = append(b.columns, ct)
}

// Build assembles the Parquet group node. Returns a plain error when zero
// columns were added; tablestrategy rejects an empty column list with
// odbcerr.ErrNoColumns before calling it.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if len(b.columns) == 0 {
		return nil, fmt.Errorf("pqio: schema has zero columns")
	}

	fields := make([]schema.Node, len(b.columns))
	for i, ct := range b.columns {
		node, err := toPrimitiveNode(ct)
		if err != nil {
			return nil, fmt.Errorf("pqio: column %q: %w", ct.Name, err)
		}
		fields[i] = node
	}

	root, err := schema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return nil, fmt.Errorf("pqio: building root schema node: %w", err)
	}

	return &Schema{root: root, columns: b.columns}, nil
}

func toPrimitiveNode(ct ColumnType) (schema.Node, error) {
	rep := parquet.Repetitions.Required
	if ct.Repetition == Optional {
		rep = parquet.Repetitions.Optional
	}

	physType, err := toPhysicalType(ct.Physical)
	if err != nil {
		return nil, err
	}

	logical := toLogicalType(ct.Logical)
	if logical == nil {
		return schema.NewPrimitiveNodeLogical(ct.Name, rep, nil, physType, ct.TypeLength, -1)
	}
	return schema.NewPrimitiveNodeLogical(ct.Name, rep, logical, physType, ct.TypeLength, -1)
}

func toPhysicalType(p Physical) (parquet.Type, error) {
	switch p {
	case Boolean:
		return parquet.Types.Boolean, nil
	case Int32:
		return parquet.Types.Int32, nil
	case Int64:
		return parquet.Types.Int64, nil
	case Float:
		return parquet.Types.Float, nil
	case Double:
		return parquet.Types.Double, nil
	case ByteArray:
		return parquet.Types.ByteArray, nil
	case FixedLenByteArray:
		return parquet.Types.FixedLenByteArray, nil
	default:
		return 0, fmt.Errorf("pqio: unknown physical type %d", p)
	}
}

// toLogicalType maps Logical to the modern schema.LogicalType annotation.
// The modern API (rather than the legacy ConvertedType triple) is required
// to express nanosecond-precision timestamps/times, which spec.md §4.1's
// unit selection can produce for precision-7-and-above source columns.
func toLogicalType(l Logical) schema.LogicalType {
	switch l.Kind {
	case LogicalDecimal:
		return schema.NewDecimalLogicalType(int32(l.Precision), int32(l.Scale))
	case LogicalDate:
		return schema.DateLogicalType{}
	case LogicalUTF8:
		return schema.StringLogicalType{}
	case LogicalInteger:
		return schema.NewIntLogicalType(int8(l.BitWidth), l.Signed)
	case LogicalTime:
		return schema.NewTimeLogicalType(l.UTCAdjusted, toTimeUnit(l.Unit))
	case LogicalTimestamp:
		return schema.NewTimestampLogicalType(l.UTCAdjusted, toTimeUnit(l.Unit))
	default:
		return nil
	}
}

func toTimeUnit(u TimeUnit) schema.TimeUnitType {
	switch u {
	case UnitMillis:
		return schema.TimeUnitMillis
	case UnitMicros:
		return schema.TimeUnitMicros
	default:
		return schema.TimeUnitNanos
	}
}

// columnTypeFromNode is the read-side mirror of toPrimitiveNode, used by
// OpenReader to recover a ColumnType from an on-disk schema leaf so the
// insert/execute path can select a column strategy the same way query does.
func columnTypeFromNode(node schema.Node) (ColumnType, error) {
	prim, ok := node.(*schema.PrimitiveNode)
	if !ok {
		return ColumnType{}, fmt.Errorf("pqio: nested group columns are not supported: %q", node.Name())
	}

	physical, err := fromPhysicalType(prim.PhysicalType())
	if err != nil {
		return ColumnType{}, err
	}

	rep := Required
	if prim.RepetitionType() == parquet.Repetitions.Optional {
		rep = Optional
	}

	return ColumnType{
		Name:       node.Name(),
		Physical:   physical,
		Logical:    fromLogicalType(prim.LogicalType()),
		Repetition: rep,
		TypeLength: prim.TypeLength(),
	}, nil
}

func fromPhysicalType(t parquet.Type) (Physical, error) {
	switch t {
	case parquet.Types.Boolean:
		return Boolean, nil
	case parquet.Types.Int32:
		return Int32, nil
	case parquet.Types.Int64:
		return Int64, nil
	case parquet.Types.Float:
		return Float, nil
	case parquet.Types.Double:
		return Double, nil
	case parquet.Types.ByteArray:
		return ByteArray, nil
	case parquet.Types.FixedLenByteArray:
		return FixedLenByteArray, nil
	default:
		return 0, fmt.Errorf("pqio: unsupported physical type %v", t)
	}
}

func fromLogicalType(lt schema.LogicalType) Logical {
	switch v := lt.(type) {
	case schema.DecimalLogicalType:
		return Logical{Kind: LogicalDecimal, Precision: int(v.Precision()), Scale: int(v.Scale())}
	case schema.DateLogicalType:
		return Logical{Kind: LogicalDate}
	case schema.StringLogicalType:
		return Logical{Kind: LogicalUTF8}
	case schema.IntLogicalType:
		return Logical{Kind: LogicalInteger, BitWidth: int(v.BitWidth()), Signed: v.IsSigned()}
	case schema.TimeLogicalType:
		return Logical{Kind: LogicalTime, Unit: fromTimeUnit(v.TimeUnit()), UTCAdjusted: v.IsAdjustedToUTC()}
	case schema.TimestampLogicalType:
		return Logical{Kind: LogicalTimestamp, Unit: fromTimeUnit(v.TimeUnit()), UTCAdjusted: v.IsAdjustedToUTC()}
	default:
		return Logical{Kind: LogicalNone}
	}
}

func fromTimeUnit(u schema.TimeUnitType) TimeUnit {
	switch u {
	case schema.TimeUnitMillis:
		return UnitMillis
	case schema.TimeUnitMicros:
		return UnitMicros
	default:
		return UnitNanos
	}
}
