package wavetile

import (
	"testing"
)

func newTestBuffer(t *testing.T, side operandSide, src *Matrix, cfg *Config, base int) (*tileBuffer, *int) {
	t.Helper()
	epoch := new(int)
	return newTileBuffer(side, src, cfg, base, nil, epoch), epoch
}

// The cooperative load must place every element of the K-slice at its
// unswizzled staging offset exactly once, and advance the K cursor.
func TestLoadFromGlobalMapping(t *testing.T) {
	cfg := smallConfig()
	m := NewMatrixOrFail(t, Float32, cfg.BlockM, 2*cfg.BlockK)
	defer FreeMatrix(t, m)

	// Unique value per coordinate.
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			m.Set(r, c, float32(r*1000+c))
		}
	}

	tb, _ := newTestBuffer(t, operandA, &m, &cfg, 0)

	tb.LoadFromGlobal()
	for r := 0; r < cfg.BlockM; r++ {
		for k := 0; k < cfg.BlockK; k++ {
			got := tb.loadBuf[r*cfg.BlockK+k]
			if want := float32(r*1000 + k); got != want {
				t.Fatalf("loadBuf[%d,%d] = %v, want %v", r, k, got, want)
			}
		}
	}

	// Second call reads the next K-slice.
	tb.LoadFromGlobal()
	for r := 0; r < cfg.BlockM; r++ {
		for k := 0; k < cfg.BlockK; k++ {
			got := tb.loadBuf[r*cfg.BlockK+k]
			if want := float32(r*1000 + cfg.BlockK + k); got != want {
				t.Fatalf("second slice loadBuf[%d,%d] = %v, want %v", r, k, got, want)
			}
		}
	}
	if tb.loadGen != 2 {
		t.Fatalf("loadGen = %d after two loads", tb.loadGen)
	}
}

// Rows past the operand extent must stage zeros, never stale or random
// data, so overhanging blocks compute defined values.
func TestLoadFromGlobalZeroFill(t *testing.T) {
	cfg := smallConfig()
	const rows = 40 // less than BlockM
	m := NewMatrixOrFail(t, Float32, rows, 2*cfg.BlockK)
	defer FreeMatrix(t, m)
	FillConstant(m, 7)

	tb, _ := newTestBuffer(t, operandA, &m, &cfg, 0)
	for i := range tb.loadBuf {
		tb.loadBuf[i] = -1 // poison
	}
	tb.LoadFromGlobal()

	for r := 0; r < cfg.BlockM; r++ {
		for k := 0; k < cfg.BlockK; k++ {
			got := tb.loadBuf[r*cfg.BlockK+k]
			want := float32(0)
			if r < rows {
				want = 7
			}
			if got != want {
				t.Fatalf("loadBuf[%d,%d] = %v, want %v", r, k, got, want)
			}
		}
	}
}

// CopyToShared followed by swizzled reads must round-trip the staged
// slice: the permutation is invisible through sharedAt.
func TestSharedRoundTrip(t *testing.T) {
	cfg := smallConfig()
	m := NewMatrixOrFail(t, Float32, cfg.BlockN, 2*cfg.BlockK)
	defer FreeMatrix(t, m)
	FillRandom(m, 31)

	tb, _ := newTestBuffer(t, operandB, &m, &cfg, 0)
	tb.LoadFromGlobal()
	tb.CopyToShared()

	for r := 0; r < cfg.BlockN; r++ {
		for k := 0; k < cfg.BlockK; k++ {
			if got, want := tb.sharedAt(r, k), m.At(r, k); got != want {
				t.Fatalf("sharedAt(%d,%d) = %v, want %v", r, k, got, want)
			}
		}
	}
	if tb.sharedGen != 0 {
		t.Fatalf("sharedGen = %d after first publish", tb.sharedGen)
	}
}

// registerTile is pure addressing: parity follows k-group, slabs for
// distinct fragments and sub-steps never alias.
func TestRegisterTileAddressing(t *testing.T) {
	cfg := smallConfig()
	m := NewMatrixOrFail(t, Float32, cfg.BlockM, 2*cfg.BlockK)
	defer FreeMatrix(t, m)

	tb, _ := newTestBuffer(t, operandA, &m, &cfg, 0)

	var regs [2][]float32
	size := cfg.mmaCountM() * cfg.MMAM * cfg.MMAK
	regs[0] = make([]float32, size)
	regs[1] = make([]float32, size)

	// Tag each slab and verify nothing overlaps within a parity.
	tag := float32(1)
	for _, grp := range []int{0, 1} {
		for mi := 0; mi < cfg.mmaCountM(); mi++ {
			for sub := 0; sub < cfg.kSubSteps(); sub++ {
				slab := tb.registerTile(&regs, grp, mi, sub)
				if len(slab) != cfg.MMAM*cfg.simdK() {
					t.Fatalf("slab length %d, want %d", len(slab), cfg.MMAM*cfg.simdK())
				}
				for i := range slab {
					if slab[i] != 0 {
						t.Fatalf("slab (grp%d,frag%d,sub%d) overlaps a previous slab", grp, mi, sub)
					}
					slab[i] = tag
				}
				tag++
			}
		}
	}

	// Group 2 must alias group 0's parity slot.
	s0 := tb.registerTile(&regs, 0, 0, 0)
	s2 := tb.registerTile(&regs, 2, 0, 0)
	s0[0] = 99
	if s2[0] != 99 {
		t.Fatal("k-group 2 should select the same parity slot as k-group 0")
	}

	for _, p := range []int{0, 1} {
		for i, v := range regs[p] {
			if v == 0 {
				t.Fatalf("parity %d offset %d not covered by any slab", p, i)
			}
		}
	}
}
