package wavetile

import (
	"math"
	"testing"
)

func epilogueFixture(t *testing.T) Matrix {
	t.Helper()
	c := NewMatrixOrFail(t, Float32, 4, 4)
	t.Cleanup(func() { FreeMatrix(t, c) })
	return c
}

func TestBlendEpilogue(t *testing.T) {
	c := epilogueFixture(t)
	c.Set(1, 2, 10)

	ep := BlendEpilogue(c, 2, 0.5)
	ep(1, 2, 3)

	if got := c.At(1, 2); got != 2*3+0.5*10 {
		t.Errorf("blend result = %v, want 11", got)
	}
}

func TestBlendEpilogueZeroBeta(t *testing.T) {
	c := epilogueFixture(t)
	c.Set(0, 0, float32(math.NaN()))

	// beta = 0 still reads C, so a NaN accumuland poisons the result.
	// Callers that want pure overwrite use StoreEpilogue.
	ep := BlendEpilogue(c, 1, 0)
	ep(0, 0, 7)
	if got := c.At(0, 0); !math.IsNaN(float64(got)) {
		t.Errorf("blend with NaN accumuland = %v, want NaN", got)
	}

	StoreEpilogue(c)(0, 0, 7)
	if got := c.At(0, 0); got != 7 {
		t.Errorf("store result = %v, want 7", got)
	}
}

func TestBiasEpilogue(t *testing.T) {
	c := epilogueFixture(t)
	bias := []float32{0.5, -1, 2, 0}

	ep := BiasEpilogue(c, bias)
	for col := 0; col < 4; col++ {
		ep(2, col, 1)
	}
	for col := 0; col < 4; col++ {
		if got := c.At(2, col); got != 1+bias[col] {
			t.Errorf("bias col %d = %v, want %v", col, got, 1+bias[col])
		}
	}
}

func TestReLUEpilogue(t *testing.T) {
	c := epilogueFixture(t)
	ep := ReLUEpilogue(c)

	ep(0, 0, -3)
	ep(0, 1, 0)
	ep(0, 2, 5)

	want := []float32{0, 0, 5}
	for col, w := range want {
		if got := c.At(0, col); got != w {
			t.Errorf("relu col %d = %v, want %v", col, got, w)
		}
	}
}

func TestGELUEpilogue(t *testing.T) {
	c := epilogueFixture(t)
	ep := GELUEpilogue(c)

	cases := []struct {
		in   float32
		want float32
	}{
		{0, 0},
		{1, 0.8411920},
		{-1, -0.1588080},
		{3, 2.9963627},
	}
	tol := DefaultTolerance()
	for i, tc := range cases {
		ep(3, i, tc.in)
		if got := c.At(3, i); !Float32NearEqual(tc.want, got, tol) {
			t.Errorf("gelu(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	// Large inputs saturate to identity / zero.
	ep(3, 0, 20)
	if got := c.At(3, 0); got != 20 {
		t.Errorf("gelu(20) = %v, want 20", got)
	}
	ep(3, 0, -20)
	if got := c.At(3, 0); got != 0 {
		t.Errorf("gelu(-20) = %v, want 0", got)
	}
}
