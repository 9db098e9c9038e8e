package wavetile

import (
	"math"
)

// Ready-made epilogues for the fused output path. Each returns a callback
// that owns the store into the given output tensor; the kernel invokes it
// once per in-bounds element with the accumulated value.

// StoreEpilogue writes the accumulated value unchanged.
func StoreEpilogue(c Matrix) Epilogue {
	return func(row, col int, v float32) {
		c.Set(row, col, v)
	}
}

// BlendEpilogue writes alpha·v + beta·C[row,col], the conventional GEMM
// alpha/beta update. Beta reads happen before the store, so the output
// tensor may be the accumuland.
func BlendEpilogue(c Matrix, alpha, beta float32) Epilogue {
	return func(row, col int, v float32) {
		c.Set(row, col, alpha*v+beta*c.At(row, col))
	}
}

// BiasEpilogue adds a per-column bias before storing.
func BiasEpilogue(c Matrix, bias []float32) Epilogue {
	return func(row, col int, v float32) {
		c.Set(row, col, v+bias[col])
	}
}

// ReLUEpilogue clamps negative values to zero before storing.
func ReLUEpilogue(c Matrix) Epilogue {
	return func(row, col int, v float32) {
		if v < 0 {
			v = 0
		}
		c.Set(row, col, v)
	}
}

// GELUEpilogue applies the tanh-approximated GELU before storing.
func GELUEpilogue(c Matrix) Epilogue {
	const (
		sqrt2OverPi = 0.7978845608028654
		geluCoef    = 0.044715
	)
	return func(row, col int, v float32) {
		x := float64(v)
		inner := sqrt2OverPi * (x + geluCoef*x*x*x)
		c.Set(row, col, float32(0.5*x*(1.0+math.Tanh(inner))))
	}
}
