// Package sink implements C8: the Parquet output side. A Sink wraps a
// tablestrategy.TableStrategy's column drive and a file-rotation policy
// (single file, split by row-group count, split by accumulated size, or
// stdout), lazily creating files the way
// internal/integrations/filesystem/parquet.go's WriteParquetFileStream
// creates its writer on the first record (spec.md §4.6's no_empty_file).
package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/pqio"
	"github.com/dbxport/odbc2parquet/internal/tablestrategy"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// Target picks the output surface: a rotatable set of files, or a single
// process-standard-output stream.
type Target int

const (
	TargetFile Target = iota
	TargetStdout
)

// SplitPolicy picks how (or whether) a file-backed sink rotates to a new
// file. Meaningless for TargetStdout.
type SplitPolicy int

const (
	NoSplit SplitPolicy = iota
	SplitByRowGroupCount
	SplitBySize
)

// Options configures a Sink. BasePath is the output file path for
// NoSplit/SplitByRowGroupCount/SplitBySize; for each rotated file its
// extension is normalized to ".par" and "_NNNN" (zero-padded to
// SuffixDigits) is inserted before it.
type Options struct {
	Target             Target
	BasePath           string
	Split              SplitPolicy
	RowGroupsPerFile   int
	SizeThresholdBytes int64
	SuffixDigits       int
	NoEmptyFile        bool
	Writer             pqio.WriterOptions

	// Stdout overrides the stream TargetStdout writes to; nil defaults to
	// os.Stdout. Exists so tests don't have to touch the real stdout.
	Stdout io.Writer
}

// Sink drives one tablestrategy's WriteRowGroupFrom calls into a rotating
// set of Parquet files (or a single stdout stream), implementing
// fetch.RowGroupSink.
type Sink struct {
	ts   *tablestrategy.TableStrategy
	opts Options

	writer          pqio.Writer
	file            *os.File
	counter         *countingWriter
	fileIndex       int
	rowGroupsInFile int
}

// New validates opts and returns a Sink ready to receive row groups.
// TargetStdout combined with SplitBySize is rejected outright (spec.md
// §4.6): the two are structurally incompatible, not just inconvenient.
func New(ts *tablestrategy.TableStrategy, opts Options) (*Sink, error) {
	if opts.Target == TargetStdout && opts.Split == SplitBySize {
		return nil, odbcerr.ErrConflictingOutput
	}
	if opts.SuffixDigits <= 0 {
		opts.SuffixDigits = 4
	}
	return &Sink{ts: ts, opts: opts}, nil
}

// Open eagerly creates the first output file (or stdout writer), unless
// NoEmptyFile is set, in which case creation is deferred to the first
// WriteRowGroup call so a stream with zero row groups leaves no file
// behind (spec.md §4.6). Callers that want the default eager-creation
// behavior must call Open before the first WriteRowGroup; calling it is
// optional otherwise, since WriteRowGroup opens lazily either way.
func (s *Sink) Open() error {
	if s.opts.NoEmptyFile {
		return nil
	}
	return s.ensureOpen()
}

// WriteRowGroup encodes one row group and rotates the output file
// afterward if the configured split policy demands it. File rotation
// happens only at a row-group boundary (spec.md §4.6/§4.8): a row group
// is always written to exactly one file.
func (s *Sink) WriteRowGroup(scratch *transport.Scratch, rows int, buf *transport.Buffer) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	rgw, err := s.writer.NewRowGroup()
	if err != nil {
		return odbcerr.WithRowGroup(err, s.writer.NumRowGroups())
	}
	if err := s.ts.WriteRowGroupFrom(scratch, rows, buf, rgw); err != nil {
		return odbcerr.WithRowGroup(err, s.writer.NumRowGroups())
	}
	if err := rgw.Close(); err != nil {
		return odbcerr.WithRowGroup(err, s.writer.NumRowGroups())
	}

	s.rowGroupsInFile++
	return s.maybeRotate()
}

// Close finalizes whatever file or stream is currently open. Safe to call
// even if no row group was ever written (the no_empty_file case: nothing
// was ever opened, so this is a no-op).
func (s *Sink) Close() error {
	return s.closeCurrent()
}

func (s *Sink) ensureOpen() error {
	if s.writer != nil {
		return nil
	}

	if s.opts.Target == TargetStdout {
		out := s.opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		w, err := pqio.Open(out, s.ts.Schema(), s.opts.Writer)
		if err != nil {
			return fmt.Errorf("sink: opening stdout writer: %w", err)
		}
		s.writer = w
		return nil
	}

	path := s.currentPath()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %q: %v", odbcerr.ErrIOError, path, err)
	}

	counter := &countingWriter{w: f}
	w, err := pqio.Open(counter, s.ts.Schema(), s.opts.Writer)
	if err != nil {
		f.Close()
		return fmt.Errorf("sink: opening writer for %q: %w", path, err)
	}

	s.file = f
	s.counter = counter
	s.writer = w
	s.rowGroupsInFile = 0
	return nil
}

func (s *Sink) maybeRotate() error {
	switch s.opts.Split {
	case SplitByRowGroupCount:
		if s.rowGroupsInFile >= s.opts.RowGroupsPerFile {
			return s.rotate()
		}
	case SplitBySize:
		if s.counter.n >= s.opts.SizeThresholdBytes {
			return s.rotate()
		}
	}
	return nil
}

func (s *Sink) rotate() error {
	if err := s.closeCurrent(); err != nil {
		return err
	}
	s.fileIndex++
	return nil
}

func (s *Sink) closeCurrent() error {
	if s.writer == nil {
		return nil
	}
	w := s.writer
	f := s.file
	s.writer = nil
	s.file = nil
	s.counter = nil

	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: closing parquet writer: %v", odbcerr.ErrIOError, err)
	}
	if f != nil {
		if err := f.Close(); err != nil {
			return fmt.Errorf("%w: closing %q: %v", odbcerr.ErrIOError, f.Name(), err)
		}
	}
	return nil
}

// currentPath computes the path for the file about to be opened. A
// NoSplit sink always writes BasePath itself; a splitting sink appends
// "_NNNN" (zero-padded to SuffixDigits) before a ".par" extension.
func (s *Sink) currentPath() string {
	if s.opts.Split == NoSplit {
		return s.opts.BasePath
	}

	dir := filepath.Dir(s.opts.BasePath)
	base := filepath.Base(s.opts.BasePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	suffix := fmt.Sprintf("_%0*d", s.opts.SuffixDigits, s.fileIndex)
	return filepath.Join(dir, stem+suffix+".par")
}

// countingWriter tracks bytes written so far, for the SplitBySize policy.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
