// Package fetch implements C7: the block-cursor loop that drives a DB
// cursor into a transport buffer and hands full buffers to a row-group
// sink. Sequential mode is grounded on the teacher's single-threaded
// read-then-write loop shape; concurrent mode is grounded on
// joechenrh-data-writer's StreamingCoordinator.CoordinateStreaming
// (errgroup-paired producer/consumer goroutines) and on
// pipeline/pipeline.go's select-on-context-and-channel cancellation
// pattern.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dbxport/odbc2parquet/internal/dbiface"
	"github.com/dbxport/odbc2parquet/internal/odbcerr"
	"github.com/dbxport/odbc2parquet/internal/tablestrategy"
	"github.com/dbxport/odbc2parquet/internal/transport"
)

// RowGroupSink is what C8 implements: given a filled transport buffer and
// the number of active rows in it, encode and write one Parquet row
// group, applying whatever file-rotation policy it was built with
// (spec.md §4.6).
type RowGroupSink interface {
	WriteRowGroup(scratch *transport.Scratch, rows int, buf *transport.Buffer) error
}

// RunSequential drives spec.md §4.5's sequential mode: a single transport
// buffer bound to cur, looping fetch -> sink.WriteRowGroup until the
// cursor reports zero rows.
func RunSequential(ctx context.Context, cur dbiface.Cursor, ts *tablestrategy.TableStrategy, sink RowGroupSink, scratch *transport.Scratch) error {
	buf := ts.Buffer()
	for {
		rows, err := cur.Fetch(ctx, buf)
		if err != nil {
			return translateFetchError(err)
		}
		if rows == 0 {
			return nil
		}
		if err := sink.WriteRowGroup(scratch, rows, buf); err != nil {
			return err
		}
	}
}

type filledBuffer struct {
	buf  *transport.Buffer
	rows int
}

// RunConcurrent drives spec.md §4.5's concurrent mode: two transport
// buffers, one owned by the DB driver and one owned by the sink at any
// given instant. A background goroutine continuously fetches into
// whichever buffer is free; the caller's goroutine consumes filled
// buffers and hands them to sink. The free/filled channel pair is the
// swap: each buffer crosses exactly one of them at a time, so the
// invariant in spec.md §5 holds without explicit locking.
func RunConcurrent(ctx context.Context, cur dbiface.Cursor, ts *tablestrategy.TableStrategy, sink RowGroupSink, scratch *transport.Scratch, shadowRowCapacity int) error {
	shadow, err := ts.NewShadowBuffer(shadowRowCapacity)
	if err != nil {
		return err
	}

	free := make(chan *transport.Buffer, 2)
	filled := make(chan filledBuffer)
	free <- ts.Buffer()
	free <- shadow

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(filled)
		for {
			var buf *transport.Buffer
			select {
			case buf = <-free:
			case <-egCtx.Done():
				return egCtx.Err()
			}

			rows, err := cur.Fetch(egCtx, buf)
			if err != nil {
				return translateFetchError(err)
			}

			select {
			case filled <- filledBuffer{buf: buf, rows: rows}:
			case <-egCtx.Done():
				return egCtx.Err()
			}

			if rows == 0 {
				return nil
			}
		}
	})

	consumeErr := func() error {
		for fb := range filled {
			if fb.rows == 0 {
				return nil
			}
			if err := sink.WriteRowGroup(scratch, fb.rows, fb.buf); err != nil {
				return err
			}
			select {
			case free <- fb.buf:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	}()
	if consumeErr != nil {
		cancel()
		if waitErr := eg.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) {
			return waitErr
		}
		return consumeErr
	}
	return eg.Wait()
}

// translateFetchError adds spec.md §4.5's user-facing hints for the two
// named DB error kinds; every other error passes through unchanged. The
// offending column, when known, is already attached by odbcerr.WithColumn
// at the point the driver raised it.
func translateFetchError(err error) error {
	switch {
	case errors.Is(err, odbcerr.ErrDriverNoI64):
		return fmt.Errorf("driver does not support 64-bit integers, retry with --driver-does-not-support-64bit-integers: %w", err)
	case errors.Is(err, odbcerr.ErrBufferTooSmall):
		return fmt.Errorf("value larger than the bound buffer, retry with --column-length-limit: %w", err)
	default:
		return err
	}
}
