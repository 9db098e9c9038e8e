package wavetile

import (
	"math/rand"
	"testing"
)

// NewMatrixOrFail allocates a matrix and fails the test if unsuccessful.
func NewMatrixOrFail(t testing.TB, dt DType, rows, cols int) Matrix {
	t.Helper()
	m, err := NewMatrix(dt, rows, cols)
	if err != nil {
		t.Fatalf("Failed to allocate %dx%d %s matrix: %v", rows, cols, dt, err)
	}
	return m
}

// NewMatrixTOrFail allocates a transpose-indicated matrix and fails the
// test if unsuccessful.
func NewMatrixTOrFail(t testing.TB, dt DType, rows, cols int) Matrix {
	t.Helper()
	m, err := NewMatrixT(dt, rows, cols)
	if err != nil {
		t.Fatalf("Failed to allocate %dx%d %s matrix: %v", rows, cols, dt, err)
	}
	return m
}

// FillRandom fills a matrix with deterministic pseudo-random values in
// [-1, 1) from the given seed.
func FillRandom(m Matrix, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			m.Set(r, c, rng.Float32()*2-1)
		}
	}
}

// FillConstant fills a matrix with a single value.
func FillConstant(m Matrix, v float32) {
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			m.Set(r, c, v)
		}
	}
}

// FreeMatrix releases a matrix's device memory, failing the test on error.
func FreeMatrix(t testing.TB, m Matrix) {
	t.Helper()
	if err := Free(m.Data); err != nil {
		t.Fatalf("Failed to free matrix storage: %v", err)
	}
}
