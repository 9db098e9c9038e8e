package wavetile

import (
	"github.com/x448/float16"
)

// DType identifies the element type of a global-memory tensor.
type DType int

const (
	// Float32 elements, 4 bytes each.
	Float32 DType = iota
	// Float16 elements, IEEE 754 binary16, 2 bytes each. Operands in this
	// type are widened to float32 on the way into register tiles; the
	// accumulator is always float32.
	Float16
)

// Size returns the element size in bytes.
func (d DType) Size() int {
	if d == Float16 {
		return 2
	}
	return 4
}

// String returns the element type name.
func (d DType) String() string {
	if d == Float16 {
		return "float16"
	}
	return "float32"
}

// Matrix is a 2-D tensor in device global memory with a known element type
// and row-major layout. Trans marks the operand as transpose-indicated:
// the B operand of the kernel is stored N×K with Trans set, so rows of B
// are columns of the product.
//
// A and B are immutable for the duration of a kernel; C is write-only.
type Matrix struct {
	DType  DType
	Rows   int
	Cols   int
	Stride int // row stride in elements
	Trans  bool
	Data   DevicePtr
}

// NewMatrix allocates a rows×cols row-major matrix on the default context.
func NewMatrix(dt DType, rows, cols int) (Matrix, error) {
	ptr, err := Malloc(rows * cols * dt.Size())
	if err != nil {
		return Matrix{}, err
	}
	return Matrix{DType: dt, Rows: rows, Cols: cols, Stride: cols, Data: ptr}, nil
}

// NewMatrixT allocates a transpose-indicated rows×cols matrix, the storage
// form the kernel requires for its B operand (N×K).
func NewMatrixT(dt DType, rows, cols int) (Matrix, error) {
	m, err := NewMatrix(dt, rows, cols)
	if err != nil {
		return Matrix{}, err
	}
	m.Trans = true
	return m, nil
}

// MatrixFromSlice copies host data into a freshly allocated float32 matrix.
// The slice length must be at least rows*cols.
func MatrixFromSlice(data []float32, rows, cols int) (Matrix, error) {
	m, err := NewMatrix(Float32, rows, cols)
	if err != nil {
		return Matrix{}, err
	}
	copy(m.Data.Float32(), data[:rows*cols])
	return m, nil
}

// At returns the element at (r, c) widened to float32.
func (m Matrix) At(r, c int) float32 {
	idx := r*m.Stride + c
	if m.DType == Float16 {
		return float16.Frombits(m.Data.Uint16()[idx]).Float32()
	}
	return m.Data.Float32()[idx]
}

// Set stores v at (r, c), narrowing to the matrix element type.
func (m Matrix) Set(r, c int, v float32) {
	idx := r*m.Stride + c
	if m.DType == Float16 {
		m.Data.Uint16()[idx] = float16.Fromfloat32(v).Bits()
		return
	}
	m.Data.Float32()[idx] = v
}

// gatherRow copies n elements of row r starting at column c0 into dst,
// widening to float32. Columns past the matrix extent fill with zero so
// overhanging block tiles read a defined value; the results they produce
// are discarded by the bounds-checked writeback path.
func (m Matrix) gatherRow(dst []float32, r, c0, n int) {
	if r >= m.Rows {
		clear(dst[:n])
		return
	}
	avail := m.Cols - c0
	if avail > n {
		avail = n
	}
	if avail < 0 {
		avail = 0
	}
	base := r*m.Stride + c0
	if m.DType == Float16 {
		src := m.Data.Uint16()
		for i := 0; i < avail; i++ {
			dst[i] = float16.Frombits(src[base+i]).Float32()
		}
	} else {
		copy(dst[:avail], m.Data.Float32()[base:base+avail])
	}
	if avail < n {
		clear(dst[avail:n])
	}
}

// scatterRow stores n elements into row r starting at column c0, narrowing
// to the matrix element type. The caller guarantees the range is in bounds;
// this is the unchecked direct-store path.
func (m Matrix) scatterRow(src []float32, r, c0, n int) {
	base := r*m.Stride + c0
	if m.DType == Float16 {
		dst := m.Data.Uint16()
		for i := 0; i < n; i++ {
			dst[base+i] = float16.Fromfloat32(src[i]).Bits()
		}
		return
	}
	copy(m.Data.Float32()[base:base+n], src[:n])
}

// castOut rounds v through the matrix element type, so epilogue callbacks
// observe the value exactly as a store would produce it.
func (m Matrix) castOut(v float32) float32 {
	if m.DType == Float16 {
		return float16.Fromfloat32(v).Float32()
	}
	return v
}
