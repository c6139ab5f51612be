package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbxport/odbc2parquet/internal/odbcerr"
)

func TestReplaceNamedArgsWithPositionalPlaceholders(t *testing.T) {
	statement := "INSERT INTO table (col1, col2) VALUES (?col1?, ?col2?)"

	positional, names, err := ToPositionalArguments(statement)
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO table (col1, col2) VALUES (?, ?)", positional)
	assert.Equal(t, []string{"col1", "col2"}, names)
}

func TestUseBackslashToEscapeQuestionMark(t *testing.T) {
	statement := `UPDATE table SET col1 = '\?' WHERE col2 = ?a?`

	positional, names, err := ToPositionalArguments(statement)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE table SET col1 = '?' WHERE col2 = ?", positional)
	assert.Equal(t, []string{"a"}, names)
}

func TestBackslashEscapesItself(t *testing.T) {
	positional, names, err := ToPositionalArguments(`path = '\\'`)
	require.NoError(t, err)

	assert.Equal(t, `path = '\'`, positional)
	assert.Empty(t, names)
}

func TestUnterminatedNameIsSyntaxError(t *testing.T) {
	_, _, err := ToPositionalArguments("SELECT * FROM t WHERE x = ?a")
	assert.ErrorIs(t, err, odbcerr.ErrSyntaxError)
}

func TestStatementWithoutPlaceholdersPassesThrough(t *testing.T) {
	positional, names, err := ToPositionalArguments("SELECT * FROM t")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t", positional)
	assert.Empty(t, names)
}

func TestBuildIndexMappingDeduplicatesRepeatedNames(t *testing.T) {
	names := []string{"b", "a", "b"}
	schema := []string{"a", "b", "c"}

	mapping, err := BuildIndexMapping(names, schema)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, mapping.BufferToParquetIndex)
	assert.Equal(t, []int{0, 1, 0}, mapping.ParameterToBufferIndex)
	assert.True(t, mapping.Valid())
}

func TestBuildIndexMappingFailsOnUnknownName(t *testing.T) {
	_, err := BuildIndexMapping([]string{"missing"}, []string{"a", "b"})
	assert.ErrorIs(t, err, odbcerr.ErrUnknownPlaceholder)
}

func TestResolveEndToEnd(t *testing.T) {
	positional, mapping, err := Resolve(
		"UPDATE t SET x = ?a?, y = ?b?, z = ?a?",
		[]string{"a", "b"},
	)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE t SET x = ?, y = ?, z = ?", positional)
	assert.Equal(t, []int{0, 1}, mapping.BufferToParquetIndex)
	assert.Equal(t, []int{0, 1, 0}, mapping.ParameterToBufferIndex)
}
