// Package placeholder implements C9: the `?name?` named-placeholder
// resolver. It rewrites a statement's named placeholders into ODBC-style
// positional `?`s and computes the index mapping from SQL parameter
// position to transport-buffer column (spec.md §4.7). The tokenizer state
// machine and escape convention are grounded directly on
// original_source/src/execute.rs's to_positional_arguments, including its
// two worked examples; the unterminated-name-is-an-error behavior is
// spec.md §4.7's own addition (the original silently drops it).
package placeholder

import (
	"strings"

	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/reltype"
)

// ToPositionalArguments rewrites every `?name?` in statement into a single
// positional `?`, returning the rewritten statement and the ordered list
// of names, one per placeholder occurrence (duplicates preserved). `\`
// escapes the following character, including `\` and `?` themselves.
// Returns ErrSyntaxError if the statement ends while still inside a name.
func ToPositionalArguments(statement string) (string, []string, error) {
	var out strings.Builder
	var name strings.Builder
	var names []string
	inName := false
	maskNext := false

	for _, c := range statement {
		switch {
		case maskNext:
			if inName {
				name.WriteRune(c)
			} else {
				out.WriteRune(c)
			}
			maskNext = false
		case c == '\\':
			maskNext = true
		case c == '?':
			if inName {
				names = append(names, name.String())
				name.Reset()
			} else {
				out.WriteByte('?')
			}
			inName = !inName
		default:
			if inName {
				name.WriteRune(c)
			} else {
				out.WriteRune(c)
			}
		}
	}

	if inName {
		return "", nil, odbcerr.ErrSyntaxError
	}
	return out.String(), names, nil
}

// BuildIndexMapping computes spec.md §3's IndexMapping from the ordered
// placeholder names ToPositionalArguments produced and the column names
// of the Parquet file being read (the execute subcommand passes its
// schema's ColumnNames). Unknown names fail with ErrUnknownPlaceholder;
// repeated names collapse onto the same buffer column.
func BuildIndexMapping(names []string, schemaColumnNames []string) (reltype.IndexMapping, error) {
	columnIndex := make(map[string]int, len(schemaColumnNames))
	for i, n := range schemaColumnNames {
		columnIndex[n] = i
	}

	bufferOfColumn := make(map[int]int, len(names))
	var bufferToParquet []int
	paramToBuffer := make([]int, len(names))

	for k, name := range names {
		colIdx, ok := columnIndex[name]
		if !ok {
			return reltype.IndexMapping{}, odbcerr.WithColumn(odbcerr.ErrUnknownPlaceholder, name)
		}
		bufIdx, seen := bufferOfColumn[colIdx]
		if !seen {
			bufIdx = len(bufferToParquet)
			bufferToParquet = append(bufferToParquet, colIdx)
			bufferOfColumn[colIdx] = bufIdx
		}
		paramToBuffer[k] = bufIdx
	}

	return reltype.IndexMapping{BufferToParquetIndex: bufferToParquet, ParameterToBufferIndex: paramToBuffer}, nil
}

// Resolve combines ToPositionalArguments and BuildIndexMapping, the single
// entry point cmd/odbc2parquet's execute subcommand drives (spec.md §4.7).
func Resolve(statement string, schemaColumnNames []string) (string, reltype.IndexMapping, error) {
	positional, names, err := ToPositionalArguments(statement)
	if err != nil {
		return "", reltype.IndexMapping{}, err
	}
	mapping, err := BuildIndexMapping(names, schemaColumnNames)
	if err != nil {
		return "", reltype.IndexMapping{}, err
	}
	return positional, mapping, nil
}
