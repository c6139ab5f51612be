package transport

// Scratch is the per-batch conversion arena (C5): reusable vectors for
// definition levels and the intermediate physical Parquet element types a
// column strategy's Copy assembles before handing them to a pqio.ColumnWriter
// (spec.md §3, §9's "arena-plus-index" note). The caller of the fetch or
// insert loop creates one Scratch per stream and threads it by reference
// into every column's Copy call for the duration of a batch.
type Scratch struct {
	DefLevels []int16

	I32 []int32
	I64 []int64
	F32 []float32
	F64 []float64
	Bool []bool
	Bytes [][]byte

	rows int
}

// NewScratch creates an empty arena; Reset must be called before first use.
func NewScratch() *Scratch { return &Scratch{} }

// Reset resizes every vector to rows, the current batch's row count.
// Existing backing arrays are reused across batches when large enough.
func (s *Scratch) Reset(rows int) {
	s.rows = rows
	s.DefLevels = resizeInt16(s.DefLevels, rows)
	s.I32 = resizeInt32(s.I32, rows)
	s.I64 = resizeInt64(s.I64, rows)
	s.F32 = resizeFloat32(s.F32, rows)
	s.F64 = resizeFloat64(s.F64, rows)
	s.Bool = resizeBool(s.Bool, rows)
	s.Bytes = resizeBytes(s.Bytes, rows)
}

// Rows reports the current batch row count.
func (s *Scratch) Rows() int { return s.rows }

func resizeInt16(s []int16, n int) []int16 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int16, n)
}
func resizeInt32(s []int32, n int) []int32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int32, n)
}
func resizeInt64(s []int64, n int) []int64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int64, n)
}
func resizeFloat32(s []float32, n int) []float32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float32, n)
}
func resizeFloat64(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float64, n)
}
func resizeBool(s []bool, n int) []bool {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]bool, n)
}
func resizeBytes(s [][]byte, n int) [][]byte {
	if cap(s) >= n {
		return s[:n]
	}
	return make([][]byte, n)
}
