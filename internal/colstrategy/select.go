package colstrategy

import (
	"github.com/dbxport/odbc2parquet/internal/convert"
	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/reltype"
)

// mssqlOtherCodeTime and mssqlOtherCodeTimestampTZ are SQL Server's
// non-standard SQL type codes for TIME and DATETIMEOFFSET respectively,
// reported through the reltype.Type "other" escape hatch. Select only
// interprets them when MappingOptions.DBName is mssqlDBName.
const (
	mssqlDBName               = "Microsoft SQL Server"
	mssqlOtherCodeTime        = -154
	mssqlOtherCodeTimestampTZ = -155
)

// maxDriverI64Width is the decimal precision at which a base-10 value
// still fits unscaled in an int64 (10^18 < 2^63-1 < 10^19).
const maxDriverI64Width = 18

// Select picks the strategy for one column (C3), in the evaluation order
// spec.md §4.2 documents. name is the already-synthesized/de-duplicated
// column name (tablestrategy's job, not the selector's); warn receives
// lossy-conversion notices (may be nil).
func Select(name string, col reltype.Column, opts reltype.MappingOptions, warn Warner) (Strategy, error) {
	nullable := col.IsNullable()
	t := col.Type

	switch t.Kind {
	case reltype.KindReal:
		return &identityF32{name: name, nullable: nullable}, nil
	case reltype.KindFloat:
		if t.Precision <= 24 {
			return &identityF32{name: name, nullable: nullable}, nil
		}
		return &identityF64{name: name, nullable: nullable}, nil
	case reltype.KindDouble:
		return &identityF64{name: name, nullable: nullable}, nil

	case reltype.KindSmallInt:
		return &identityI32{name: name, nullable: nullable, logical: integerLogical(16, t.Signed)}, nil
	case reltype.KindInteger:
		return &identityI32{name: name, nullable: nullable, logical: integerLogical(32, t.Signed)}, nil
	case reltype.KindBigInt:
		return &identityI64{name: name, nullable: nullable, logical: integerLogical(64, t.Signed)}, nil
	case reltype.KindTinyInt:
		return &identityI32{name: name, nullable: nullable, logical: integerLogical(8, t.Signed)}, nil

	case reltype.KindBit:
		return &booleanStrategy{name: name, nullable: nullable}, nil

	case reltype.KindDate:
		return &dateStrategy{name: name, nullable: nullable}, nil

	case reltype.KindTime:
		maxBytes, ok := opts.ApplyLengthLimit(32, true)
		if !ok {
			return nil, odbcerr.WithColumn(odbcerr.ErrLengthUndetermined, name)
		}
		return &timeTextStrategy{name: name, nullable: nullable, unit: convert.UnitForPrecision(t.TimePrecision), maxBytes: maxBytes}, nil

	case reltype.KindTimestamp:
		return &timestampNoTZStrategy{name: name, nullable: nullable, unit: convert.UnitForPrecision(t.TimePrecision)}, nil

	case reltype.KindDecimal, reltype.KindNumeric:
		return selectDecimal(name, nullable, t, opts)

	case reltype.KindBinary:
		if opts.PreferVarbinary {
			return &binaryVariableStrategy{name: name, nullable: nullable, maxLen: t.Length}, nil
		}
		return &binaryFixedStrategy{name: name, nullable: nullable, length: t.Length}, nil

	case reltype.KindVarbinary, reltype.KindLongVarbinary:
		maxLen, ok := lengthOrLimit(t.Length, opts)
		if !ok {
			return nil, odbcerr.WithColumn(odbcerr.ErrLengthUndetermined, name)
		}
		return &binaryVariableStrategy{name: name, nullable: nullable, maxLen: maxLen}, nil

	case reltype.KindChar, reltype.KindVarchar, reltype.KindWChar, reltype.KindWVarchar, reltype.KindLongVarchar:
		return selectCharacter(name, nullable, col, opts, warn)

	case reltype.KindOther:
		if opts.DBName != mssqlDBName {
			return selectFallbackText(name, nullable, col, opts)
		}
		switch t.OtherCode {
		case mssqlOtherCodeTime:
			maxBytes, ok := opts.ApplyLengthLimit(32, true)
			if !ok {
				return nil, odbcerr.WithColumn(odbcerr.ErrLengthUndetermined, name)
			}
			return &timeTextStrategy{name: name, nullable: nullable, unit: convert.UnitForPrecision(t.OtherDecimalDigits), maxBytes: maxBytes}, nil
		case mssqlOtherCodeTimestampTZ:
			maxBytes, ok := opts.ApplyLengthLimit(48, true)
			if !ok {
				return nil, odbcerr.WithColumn(odbcerr.ErrLengthUndetermined, name)
			}
			return &timestampTZStrategy{name: name, nullable: nullable, unit: convert.UnitForPrecision(t.OtherDecimalDigits), maxBytes: maxBytes}, nil
		default:
			return selectFallbackText(name, nullable, col, opts)
		}

	default:
		return selectFallbackText(name, nullable, col, opts)
	}
}

// integerLogical builds the INTEGER(bitWidth, signed) logical annotation
// shared by the identity-integer strategies.
func integerLogical(bitWidth int, signed bool) pqio.Logical {
	return pqio.Logical{Kind: pqio.LogicalInteger, BitWidth: bitWidth, Signed: signed}
}

func selectDecimal(name string, nullable bool, t reltype.Type, opts reltype.MappingOptions) (Strategy, error) {
	precision, scale := t.DecimalPrecision, t.DecimalScale

	if opts.AvoidDecimal && scale != 0 {
		maxBytes := precision + 2
		return &decimalAsTextStrategy{name: name, nullable: nullable, precision: precision, scale: scale, maxBytes: maxBytes}, nil
	}

	switch {
	case precision <= 9 && scale == 0:
		return &identityI32{name: name, nullable: nullable, logical: decimalOrIntegerLogical(precision, scale, opts.AvoidDecimal)}, nil

	case precision <= 9:
		maxBytes := convert.DecimalTextLen(precision, scale)
		return &textToInt32Strategy{name: name, nullable: nullable, precision: precision, scale: scale, maxBytes: maxBytes, avoidDecimalLogical: opts.AvoidDecimal}, nil

	case precision <= maxDriverI64Width && scale == 0:
		if opts.DriverDoesSupportI64 {
			return &identityI64{name: name, nullable: nullable, logical: decimalOrIntegerLogical(precision, scale, opts.AvoidDecimal)}, nil
		}
		maxBytes := convert.DecimalTextLen(precision, scale)
		return &textToInt64Strategy{name: name, nullable: nullable, precision: precision, scale: scale, maxBytes: maxBytes, avoidDecimalLogical: opts.AvoidDecimal}, nil

	case precision <= maxDriverI64Width:
		maxBytes := convert.DecimalTextLen(precision, scale)
		return &textToInt64Strategy{name: name, nullable: nullable, precision: precision, scale: scale, maxBytes: maxBytes, avoidDecimalLogical: opts.AvoidDecimal}, nil

	case precision <= 38:
		maxBytes := convert.DecimalTextLen(precision, scale)
		return &decimalAsFLBAStrategy{
			name: name, nullable: nullable, precision: precision, scale: scale,
			length: convert.DecimalFLBALength(precision), maxBytes: maxBytes,
		}, nil

	default:
		maxBytes, ok := lengthOrLimit(0, opts)
		if !ok {
			maxBytes = precision + 2
		}
		return &decimalAsTextStrategy{name: name, nullable: nullable, precision: precision, scale: scale, maxBytes: maxBytes}, nil
	}
}

// decimalOrIntegerLogical picks the logical annotation for an identity
// int32/int64 decimal strategy: plain INTEGER when avoid_decimal is set
// (spec.md §9), otherwise DECIMAL(precision,scale).
func decimalOrIntegerLogical(precision, scale int, avoidDecimal bool) pqio.Logical {
	if avoidDecimal {
		width := 32
		if precision > 9 {
			width = 64
		}
		return pqio.Logical{Kind: pqio.LogicalInteger, BitWidth: width, Signed: true}
	}
	return pqio.Logical{Kind: pqio.LogicalDecimal, Precision: precision, Scale: scale}
}

func selectCharacter(name string, nullable bool, col reltype.Column, opts reltype.MappingOptions, warn Warner) (Strategy, error) {
	reportedLen, reportedOK := col.Type.Length, col.Type.Length > 0
	if !reportedOK && col.DisplaySize != nil {
		if sz, ok := col.DisplaySize(); ok {
			reportedLen, reportedOK = sz, true
		}
	}
	length, ok := opts.ApplyLengthLimit(reportedLen, reportedOK)
	if !ok {
		return nil, odbcerr.WithColumn(odbcerr.ErrLengthUndetermined, name)
	}

	useWide := opts.UseUTF16 && col.Type.Kind != reltype.KindChar && col.Type.Kind != reltype.KindVarchar && col.Type.Kind != reltype.KindLongVarchar

	switch {
	case opts.DriverQuirks.GarbageLengthIndicators && !useWide:
		return &ignoreIndicatorsTextStrategy{name: name, nullable: nullable, maxBytes: length}, nil
	case useWide:
		return &wideTextStrategy{name: name, nullable: nullable, maxU16: length}, nil
	default:
		return &narrowTextStrategy{name: name, nullable: nullable, maxBytes: length, warn: warn}, nil
	}
}

func selectFallbackText(name string, nullable bool, col reltype.Column, opts reltype.MappingOptions) (Strategy, error) {
	reportedLen, reportedOK := col.Type.Length, col.Type.Length > 0
	if !reportedOK && col.DisplaySize != nil {
		if sz, ok := col.DisplaySize(); ok {
			reportedLen, reportedOK = sz, true
		}
	}
	length, ok := opts.ApplyLengthLimit(reportedLen, reportedOK)
	if !ok {
		return nil, odbcerr.WithColumn(odbcerr.ErrLengthUndetermined, name)
	}
	return &narrowTextStrategy{name: name, nullable: nullable, maxBytes: length}, nil
}

func lengthOrLimit(reported int, opts reltype.MappingOptions) (int, bool) {
	return opts.ApplyLengthLimit(reported, reported > 0)
}
