package wavetile

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Cross-check the kernel against gonum as an independent oracle, not just
// against this package's own reference loops.
func TestAgainstGonum(t *testing.T) {
	cfg := smallConfig()
	const M, N, K = 128, 64, 96

	a := NewMatrixOrFail(t, Float32, M, K)
	b := NewMatrixTOrFail(t, Float32, N, K)
	c := NewMatrixOrFail(t, Float32, M, N)
	defer FreeMatrix(t, a)
	defer FreeMatrix(t, b)
	defer FreeMatrix(t, c)
	FillRandom(a, 51)
	FillRandom(b, 52)

	g, err := NewTiledGEMM(cfg, a, b, c)
	if err != nil {
		t.Fatalf("NewTiledGEMM failed: %v", err)
	}
	if err := g.Run(); err != nil {
		t.Fatalf("Kernel run failed: %v", err)
	}

	aDense := mat.NewDense(M, K, nil)
	bDense := mat.NewDense(N, K, nil)
	for r := 0; r < M; r++ {
		for l := 0; l < K; l++ {
			aDense.Set(r, l, float64(a.At(r, l)))
		}
	}
	for r := 0; r < N; r++ {
		for l := 0; l < K; l++ {
			bDense.Set(r, l, float64(b.At(r, l)))
		}
	}

	var product mat.Dense
	product.Mul(aDense, bDense.T())

	tol := RelaxedTolerance()
	for r := 0; r < M; r++ {
		for cc := 0; cc < N; cc++ {
			want := float32(product.At(r, cc))
			got := c.At(r, cc)
			if !Float32NearEqual(want, got, tol) {
				t.Fatalf("C[%d,%d] = %v, gonum says %v", r, cc, got, want)
			}
		}
	}
}
