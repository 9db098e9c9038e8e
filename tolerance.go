package wavetile

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point
// comparison. Different accumulation orders make bit-equality the wrong
// question for most kernel-versus-reference checks; the exception is the
// direct-store determinism property, which compares bits.
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float32

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float32

	// ULPTol is the maximum allowed difference in ULPs
	ULPTol int
}

// DefaultTolerance suits float32 operands with float32 accumulation.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{AbsTol: 1e-6, RelTol: 1e-5, ULPTol: 4}
}

// RelaxedTolerance suits long accumulations and float16 operands.
func RelaxedTolerance() ToleranceConfig {
	return ToleranceConfig{AbsTol: 1e-4, RelTol: 1e-3, ULPTol: 16}
}

// Float32NearEqual checks if two float32 values are equal within tolerance.
func Float32NearEqual(a, b float32, tol ToleranceConfig) bool {
	if a == b {
		return true
	}
	if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}

	diff := math.Abs(float64(a - b))
	if diff <= float64(tol.AbsTol) {
		return true
	}

	larger := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	if diff <= larger*float64(tol.RelTol) {
		return true
	}

	return tol.ULPTol > 0 && Float32ULPDiff(a, b) <= tol.ULPTol
}

// Float32ULPDiff computes the difference in ULPs between two float32
// values, or MaxInt32 when the signs differ.
func Float32ULPDiff(a, b float32) int {
	aBits := math.Float32bits(a)
	bBits := math.Float32bits(b)

	if (aBits^bBits)&0x80000000 != 0 {
		return math.MaxInt32
	}

	if aBits > bBits {
		return int(aBits - bBits)
	}
	return int(bBits - aBits)
}

// VerificationResult aggregates element-wise comparison of two arrays.
type VerificationResult struct {
	MaxAbsError float32
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// VerifyFloat32s compares two float32 slices element-wise within tolerance.
func VerifyFloat32s(expected, actual []float32, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{TotalItems: len(expected), FirstError: -1}

	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		return result
	}

	for i := range expected {
		if Float32NearEqual(expected[i], actual[i], tol) {
			continue
		}
		result.NumErrors++
		if result.FirstError == -1 {
			result.FirstError = i
		}
		absDiff := float32(math.Abs(float64(expected[i] - actual[i])))
		if absDiff > result.MaxAbsError {
			result.MaxAbsError = absDiff
		}
	}

	return result
}

// String formats the verification result for display.
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return "PASS: all values within tolerance"
	}
	return fmt.Sprintf("FAIL: %d/%d values differ, max abs error %e, first at index %d",
		r.NumErrors, r.TotalItems, r.MaxAbsError, r.FirstError)
}
