// Command odbc2parquet is the CLI surface over the column-strategy
// engine: it wires a dbiface.Conn to internal/fetch, internal/sink and
// internal/placeholder for the query/insert/execute/list-drivers/
// list-data-sources subcommands. Argument parsing follows the teacher's
// docopt-go main.go pattern (cmd/parquet_to_csv); structured logging
// follows integrations/iceberg.go's go-kit/log + level convention.
//
// Connection establishment and the DB interface library itself are out
// of this repository's scope (they are assumed, not implemented here).
// The only dbiface.Conn this binary can reach is internal/dbiface/memdb,
// selected with a "memdb:" connection string, seeded with one demo
// table named "demo" with columns (id INTEGER, name VARCHAR(32)) and
// three rows: a stand-in for the real driver so the engine can be
// exercised end to end without one.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/dbxport/odbc2parquet/internal/colstrategy"
	"github.com/dbxport/odbc2parquet/internal/dbiface"
	"github.com/dbxport/odbc2parquet/internal/dbiface/memdb"
	"github.com/dbxport/odbc2parquet/internal/fetch"
	"github.com/dbxport/odbc2parquet/internal/placeholder"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/reltype"
	"github.com/dbxport/odbc2parquet/internal/sink"
	"github.com/dbxport/odbc2parquet/internal/tablestrategy"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

const usage = `odbc2parquet: bridge a DB interface and Parquet files.

Usage:
  odbc2parquet query [options] <output> <sql> [<params>...]
  odbc2parquet insert [options] <parquet> <table>
  odbc2parquet execute [options] <parquet> <sql>
  odbc2parquet list-drivers [options]
  odbc2parquet list-data-sources [options]
  odbc2parquet -h | --help

Shared options:
  --connection-string=<cs>                 ODBC connection string.
  --dsn=<dsn>                               Data source name.
  --user=<user>                             Login user.
  --password=<password>                     Login password.
  --encoding=<enc>                          system|utf16|auto [default: auto].
  -v --verbose                              Verbose logging.

Query options:
  --batch-size-row=<n>                      Row count cap per batch.
  --batch-size-mib=<m>                      Memory budget per batch, MiB.
  --row-groups-per-file=<n>                 0 = no split [default: 0].
  --file-size-threshold=<size>              Split after N bytes.
  --suffix-length=<n>                       Rotated filename digits [default: 4].
  --no-empty-file                           Defer file creation to first row group.
  --prefer-varbinary                        Map fixed-length binary columns to BYTE_ARRAY.
  --avoid-decimal                           Prefer plain-text decimal over FLBA.
  --driver-does-not-support-64bit-integers  Fetch DECIMAL/NUMERIC(10..18,0) as text.
  --column-length-limit=<n>                 Upper bound for variable-length columns.
  --column-compression-default=<name>       uncompressed|gzip|lz4|zstd|snappy|brotli.
  --column-compression-level-default=<n>    Codec compression level.
  --concurrent-fetching                     Double-buffered prefetch.
`

func main() {
	arguments, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.NewLogfmtLogger(os.Stderr)
	if verbose, _ := arguments.Bool("--verbose"); !verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	if err := run(arguments, logger); err != nil {
		level.Error(logger).Log("msg", "command failed", "err", err)
		os.Exit(1)
	}
}

func run(arguments docopt.Opts, logger log.Logger) error {
	ctx := context.Background()

	connOpts := dbiface.ConnOptions{Mapping: mappingOptionsFrom(arguments)}
	connOpts.ConnectionString = stringFlagOrEnv(arguments, "--connection-string", "ODBC_CONNECTION_STRING")
	connOpts.DSN, _ = arguments.String("--dsn")
	connOpts.User = stringFlagOrEnv(arguments, "--user", "ODBC_USER")
	connOpts.Password = stringFlagOrEnv(arguments, "--password", "ODBC_PASSWORD")

	conn, catalog, err := connect(connOpts)
	if err != nil {
		return err
	}
	defer conn.Close()

	warn := colstrategy.Warner(func(msg string) {
		level.Warn(logger).Log("msg", msg)
	})

	switch {
	case truthy(arguments, "query"):
		return runQuery(ctx, arguments, conn, warn)
	case truthy(arguments, "insert"):
		return runInsert(ctx, arguments, conn, warn)
	case truthy(arguments, "execute"):
		return runExecute(ctx, arguments, conn, warn)
	case truthy(arguments, "list-drivers"):
		return runListDrivers(ctx, catalog)
	case truthy(arguments, "list-data-sources"):
		return runListDataSources(ctx, catalog)
	default:
		return fmt.Errorf("odbc2parquet: no subcommand matched")
	}
}

func truthy(arguments docopt.Opts, key string) bool {
	v, _ := arguments.Bool(key)
	return v
}

// connect resolves a dbiface.Conn from the shared connection flags. Only
// the bundled memdb demo backend ("memdb:" connection string) is wired;
// any other string fails, since the real driver is out of this
// repository's scope (spec.md §1).
func connect(opts dbiface.ConnOptions) (dbiface.Conn, dbiface.Catalog, error) {
	cs := opts.ConnectionString
	if cs == "" {
		cs = opts.DSN
	}
	if !strings.HasPrefix(cs, "memdb:") {
		return nil, nil, fmt.Errorf("odbc2parquet: no DB interface wired for %q (use a \"memdb:\" connection string for the bundled demo backend)", cs)
	}

	db := memdb.New()
	db.CreateTable(&memdb.Table{
		Name: "demo",
		Columns: []reltype.Column{
			{Name: "id", Type: reltype.Type{Kind: reltype.KindInteger}, Nullability: reltype.NonNull},
			{Name: "name", Type: reltype.Type{Kind: reltype.KindVarchar, Length: 32}, Nullability: reltype.Nullable},
		},
		Rows: [][]any{
			{int32(1), "alpha"},
			{int32(2), "beta"},
			{int32(3), nil},
		},
	})
	return db, db, nil
}

func mappingOptionsFrom(arguments docopt.Opts) reltype.MappingOptions {
	opts := reltype.MappingOptions{DriverDoesSupportI64: true}
	if v, _ := arguments.Bool("--prefer-varbinary"); v {
		opts.PreferVarbinary = true
	}
	if v, _ := arguments.Bool("--avoid-decimal"); v {
		opts.AvoidDecimal = true
	}
	if v, _ := arguments.Bool("--driver-does-not-support-64bit-integers"); v {
		opts.DriverDoesSupportI64 = false
	}
	if s, _ := arguments.String("--column-length-limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			opts.ColumnLengthLimit = n
		}
	}
	if enc, _ := arguments.String("--encoding"); enc == "utf16" {
		opts.UseUTF16 = true
	}
	return opts
}

func compressionCodecFrom(name string) pqio.CompressionCodec {
	switch strings.ToLower(name) {
	case "gzip":
		return pqio.Gzip
	case "lz4", "lz4raw", "lz4_raw":
		return pqio.Lz4Raw
	case "zstd":
		return pqio.Zstd
	case "snappy":
		return pqio.Snappy
	case "brotli":
		return pqio.Brotli
	default:
		return pqio.Uncompressed
	}
}

// stringFlagOrEnv prefers the explicit CLI flag, falling back to envVar,
// the connection options spec.md §6 lists as environment-variable capable
// (ODBC_CONNECTION_STRING, ODBC_USER, ODBC_PASSWORD).
func stringFlagOrEnv(arguments docopt.Opts, flag, envVar string) string {
	if v, _ := arguments.String(flag); v != "" {
		return v
	}
	return os.Getenv(envVar)
}

func intFlag(arguments docopt.Opts, name string, def int) int {
	s, _ := arguments.String(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func int64Flag(arguments docopt.Opts, name string, def int64) int64 {
	s, _ := arguments.String(name)
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func runQuery(ctx context.Context, arguments docopt.Opts, conn dbiface.Conn, warn colstrategy.Warner) error {
	output, _ := arguments.String("<output>")
	sqlText, _ := arguments.String("<sql>")
	if sqlText == "-" {
		data, err := readAllStdin()
		if err != nil {
			return fmt.Errorf("odbc2parquet: reading SQL from stdin: %w", err)
		}
		sqlText = data
	}

	var params []any
	if raw, ok := arguments["<params>"].([]string); ok {
		for _, p := range raw {
			params = append(params, p)
		}
	}

	mapping := mappingOptionsFrom(arguments)

	cur, err := conn.Query(ctx, sqlText, params)
	if err != nil {
		return fmt.Errorf("odbc2parquet: query: %w", err)
	}
	defer cur.Close()

	cols, err := cur.Columns()
	if err != nil {
		return fmt.Errorf("odbc2parquet: reading result set columns: %w", err)
	}

	rowGroupsPerFile := intFlag(arguments, "--row-groups-per-file", 0)
	suffixLength := intFlag(arguments, "--suffix-length", 4)
	noEmptyFile, _ := arguments.Bool("--no-empty-file")
	fileSizeThreshold := int64Flag(arguments, "--file-size-threshold", 0)
	compressionName, _ := arguments.String("--column-compression-default")
	compressionLevel := intFlag(arguments, "--column-compression-level-default", 0)
	concurrent, _ := arguments.Bool("--concurrent-fetching")

	if output == "-" && fileSizeThreshold > 0 {
		return fmt.Errorf("odbc2parquet: stdout output is incompatible with --file-size-threshold")
	}

	maxRows := intFlag(arguments, "--batch-size-row", fetch.DefaultMaxRows)
	memoryLimit := int64Flag(arguments, "--batch-size-mib", fetch.DefaultMemoryLimitBytes()/(1<<20)) * (1 << 20)

	// Build against a 1-row buffer first to measure bytes_per_row, then
	// rebuild at the computed batch size (spec.md §4.5).
	probe, err := tablestrategy.Build(cols, mapping, warn, 1)
	if err != nil {
		return fmt.Errorf("odbc2parquet: selecting column strategies: %w", err)
	}
	batchRows, err := fetch.BatchSizeRows(memoryLimit, probe.BytesPerRow(), 0, maxRows)
	if err != nil {
		return fmt.Errorf("odbc2parquet: computing batch size: %w", err)
	}

	ts, err := tablestrategy.Build(cols, mapping, warn, batchRows)
	if err != nil {
		return fmt.Errorf("odbc2parquet: selecting column strategies: %w", err)
	}

	sinkOpts := sink.Options{
		BasePath:     output,
		SuffixDigits: suffixLength,
		NoEmptyFile:  noEmptyFile,
		Writer: pqio.WriterOptions{
			Compression:      compressionCodecFrom(compressionName),
			CompressionLevel: compressionLevel,
		},
	}
	switch {
	case output == "-":
		sinkOpts.Target = sink.TargetStdout
	case fileSizeThreshold > 0:
		sinkOpts.Split = sink.SplitBySize
		sinkOpts.SizeThresholdBytes = fileSizeThreshold
	case rowGroupsPerFile > 0:
		sinkOpts.Split = sink.SplitByRowGroupCount
		sinkOpts.RowGroupsPerFile = rowGroupsPerFile
	}

	s, err := sink.New(ts, sinkOpts)
	if err != nil {
		return fmt.Errorf("odbc2parquet: configuring output sink: %w", err)
	}
	if err := s.Open(); err != nil {
		return fmt.Errorf("odbc2parquet: opening output: %w", err)
	}
	defer s.Close()

	scratch := transport.NewScratch()
	if concurrent {
		return fetch.RunConcurrent(ctx, cur, ts, s, scratch, batchRows)
	}
	return fetch.RunSequential(ctx, cur, ts, s, scratch)
}

// runInsert mirrors insert.rs's insert(): the INSERT statement's column
// list and every column's buffer strategy both come from the Parquet
// file's own on-disk schema, never from a separately queried table
// description. TableColumns is only consulted to fail fast with a clear
// error if the table does not exist.
func runInsert(ctx context.Context, arguments docopt.Opts, conn dbiface.Conn, _ colstrategy.Warner) error {
	parquetPath, _ := arguments.String("<parquet>")
	table, _ := arguments.String("<table>")

	if _, err := conn.TableColumns(ctx, table); err != nil {
		return fmt.Errorf("odbc2parquet: table %q: %w", table, err)
	}

	reader, err := pqio.OpenReader(parquetPath)
	if err != nil {
		return fmt.Errorf("odbc2parquet: opening %s: %w", parquetPath, err)
	}
	defer reader.Close()

	stmt := autoInsertStatement(table, reader.Schema().ColumnNames())
	return runInsertLikeFromReader(ctx, reader, stmt, conn, mappingOptionsFrom(arguments))
}

func runExecute(ctx context.Context, arguments docopt.Opts, conn dbiface.Conn, _ colstrategy.Warner) error {
	parquetPath, _ := arguments.String("<parquet>")
	sqlText, _ := arguments.String("<sql>")

	reader, err := pqio.OpenReader(parquetPath)
	if err != nil {
		return fmt.Errorf("odbc2parquet: opening %s: %w", parquetPath, err)
	}
	defer reader.Close()

	positionalSQL, mapping, err := placeholder.Resolve(sqlText, reader.Schema().ColumnNames())
	if err != nil {
		return fmt.Errorf("odbc2parquet: resolving placeholders: %w", err)
	}
	if !mapping.Valid() {
		return fmt.Errorf("odbc2parquet: placeholder index mapping is inconsistent")
	}

	return runInsertLikeFromReader(ctx, reader, positionalSQL, conn, mappingOptionsFrom(arguments))
}

func autoInsertStatement(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

// runInsertLikeFromReader drives both the insert and execute subcommands:
// both read an existing Parquet file's own schema to pick column
// strategies (tablestrategy.BuildFromParquetSchema), since the file being
// read already fixes each column's physical representation regardless of
// what the target statement's parameters are ultimately bound to.
func runInsertLikeFromReader(ctx context.Context, reader pqio.Reader, stmt string, conn dbiface.Conn, mapping reltype.MappingOptions) error {
	ins, err := conn.Prepare(ctx, stmt)
	if err != nil {
		return fmt.Errorf("odbc2parquet: preparing %q: %w", stmt, err)
	}
	defer ins.Close()

	rowCapacity := 0
	for i := 0; i < reader.NumRowGroups(); i++ {
		rgr, err := reader.RowGroup(i)
		if err != nil {
			return fmt.Errorf("odbc2parquet: opening row group %d: %w", i, err)
		}
		if int64(rowCapacity) < rgr.NumRows() {
			rowCapacity = int(rgr.NumRows())
		}
	}
	if rowCapacity == 0 {
		rowCapacity = 1
	}

	ts, err := tablestrategy.BuildFromParquetSchema(reader.Schema(), mapping, rowCapacity)
	if err != nil {
		return fmt.Errorf("odbc2parquet: selecting column strategies: %w", err)
	}

	scratch := transport.NewScratch()
	for i := 0; i < reader.NumRowGroups(); i++ {
		rgr, err := reader.RowGroup(i)
		if err != nil {
			return fmt.Errorf("odbc2parquet: opening row group %d: %w", i, err)
		}
		rows := int(rgr.NumRows())
		if err := ts.ReadRowGroup(scratch, rows, rgr); err != nil {
			return fmt.Errorf("odbc2parquet: row group %d: %w", i, err)
		}
		if err := ins.Exec(ctx, ts.Buffer(), rows); err != nil {
			return fmt.Errorf("odbc2parquet: row group %d: executing insert: %w", i, err)
		}
	}
	return nil
}

func runListDrivers(ctx context.Context, catalog dbiface.Catalog) error {
	drivers, err := catalog.ListDrivers(ctx)
	if err != nil {
		return fmt.Errorf("odbc2parquet: listing drivers: %w", err)
	}
	for _, d := range drivers {
		fmt.Println(d.Name)
	}
	return nil
}

func runListDataSources(ctx context.Context, catalog dbiface.Catalog) error {
	sources, err := catalog.ListDataSources(ctx)
	if err != nil {
		return fmt.Errorf("odbc2parquet: listing data sources: %w", err)
	}
	for _, s := range sources {
		fmt.Printf("%s\t%s\n", s.ServerName, s.Description)
	}
	return nil
}

func readAllStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
