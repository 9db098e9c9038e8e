package wavetile

// Reference contains simple, correct implementations used to verify the
// pipelined kernel. They accumulate in float32 with the plain triple-loop
// order, which the tolerance configs account for.
type Reference struct{}

// GEMMT computes C = A × Bᵗ over row-major slices: A is m×k, B is n×k,
// C is m×n. Existing C contents are overwritten.
func (Reference) GEMMT(m, n, k int, a []float32, lda int, b []float32, ldb int, c []float32, ldc int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for l := 0; l < k; l++ {
				sum += a[i*lda+l] * b[j*ldb+l]
			}
			c[i*ldc+j] = sum
		}
	}
}

// GEMMTMatrix computes the same product over matrix descriptors, widening
// elements through the tensors' own accessors so float16 operands round
// exactly as the kernel's global loads do.
func (Reference) GEMMTMatrix(a, b Matrix, c []float32) {
	m, n, k := a.Rows, b.Rows, a.Cols
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for l := 0; l < k; l++ {
				sum += a.At(i, l) * b.At(j, l)
			}
			c[i*n+j] = sum
		}
	}
}
