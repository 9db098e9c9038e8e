package wavetile

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// OutputMode selects how accumulated results reach the global output
// tensor. The mode is fixed when the kernel is built; the two paths never
// coexist in one kernel instance.
type OutputMode int

const (
	// DirectStore copies accumulator rows straight into C with no bounds
	// checks. Selecting it requires the grid to cover C exactly.
	DirectStore OutputMode = iota
	// FusedEpilogue walks each wave's output elements per lane, bounds
	// checks every coordinate, and applies the epilogue callback to
	// in-bounds elements. Mandatory whenever M or N is ragged.
	FusedEpilogue
)

// Epilogue is a per-element output transform invoked exactly once per
// in-bounds output coordinate with the accumulated value cast to the
// output element type. The callback owns the store.
type Epilogue func(row, col int, value float32)

// TiledGEMM computes C = A × Bᵗ for one fixed specialization: A is M×K,
// B is N×K transpose-indicated, C is M×N. It implements BlockKernel; each
// grid block produces one BlockM×BlockN output tile.
type TiledGEMM struct {
	cfg      Config
	a, b, c  Matrix
	mode     OutputMode
	epilogue Epilogue
	trace    *pipelineTrace
}

// Option configures kernel construction.
type Option func(*TiledGEMM)

// WithEpilogue selects the fused-epilogue output path with the given
// per-element callback.
func WithEpilogue(fn Epilogue) Option {
	return func(g *TiledGEMM) {
		g.mode = FusedEpilogue
		g.epilogue = fn
	}
}

// WithBoundedStore selects the fused-epilogue output path with a plain
// bounds-checked store, for ragged M or N without a custom transform.
func WithBoundedStore() Option {
	return func(g *TiledGEMM) {
		g.mode = FusedEpilogue
		g.epilogue = nil
	}
}

// withTrace attaches a pipeline trace. Test hook.
func withTrace(t *pipelineTrace) Option {
	return func(g *TiledGEMM) {
		g.trace = t
	}
}

// NewTiledGEMM builds and validates one kernel specialization. Every
// constraint here is a specialization-time failure: nothing is re-checked
// once blocks are running, and a violated precondition that slips past
// these checks is undefined behavior by contract.
func NewTiledGEMM(cfg Config, a, b, c Matrix, opts ...Option) (*TiledGEMM, error) {
	const op = "NewTiledGEMM"

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, op)
	}
	cfg = cfg.withDefaults()

	g := &TiledGEMM{cfg: cfg, a: a, b: b, c: c, mode: DirectStore}
	for _, o := range opts {
		o(g)
	}

	if a.Trans {
		return nil, NewShapeError(op, "operand A must not be transpose-indicated")
	}
	if !b.Trans {
		return nil, NewShapeError(op, "operand B must be transpose-indicated (stored N×K)")
	}
	if a.DType != b.DType {
		return nil, NewShapeError(op, "operands must share an element type: A is %s, B is %s", a.DType, b.DType)
	}
	if a.Cols != b.Cols {
		return nil, NewShapeError(op, "K extents differ: A is %dx%d, B is %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	if c.Rows != a.Rows || c.Cols != b.Rows {
		return nil, NewShapeError(op, "C must be %dx%d, got %dx%d", a.Rows, b.Rows, c.Rows, c.Cols)
	}
	if a.Data.Size() < a.Rows*a.Stride*a.DType.Size() ||
		b.Data.Size() < b.Rows*b.Stride*b.DType.Size() ||
		c.Data.Size() < c.Rows*c.Stride*c.DType.Size() {
		return nil, NewShapeError(op, "tensor storage smaller than its extents")
	}

	k := a.Cols
	if k%cfg.BlockK != 0 {
		return nil, NewConfigError(op, "K=%d must be an exact multiple of block K %d; pad or pick a compatible tile", k, cfg.BlockK)
	}
	if k < 2*cfg.BlockK {
		return nil, NewConfigError(op, "K=%d must be at least two block K-tiles (%d) to fill the pipeline", k, 2*cfg.BlockK)
	}

	if g.mode == DirectStore {
		if a.Rows%cfg.BlockM != 0 || b.Rows%cfg.BlockN != 0 {
			return nil, NewConfigError(op,
				"direct store needs M=%d, N=%d to be multiples of the %dx%d block tile; use WithBoundedStore or WithEpilogue for ragged edges",
				a.Rows, b.Rows, cfg.BlockM, cfg.BlockN)
		}
	}

	klog.V(2).Infof("wavetile: specialized %dx%dx%d GEMM, block %dx%dx%d, %d waves of %d lanes, %s operands",
		a.Rows, b.Rows, k, cfg.BlockM, cfg.BlockN, cfg.BlockK,
		cfg.wavesPerBlock(), cfg.WaveSize, a.DType)

	return g, nil
}

// Grid returns the launch grid covering C: X spans column tiles, Y row
// tiles. Overhanging tiles are only legal in fused-epilogue mode.
func (g *TiledGEMM) Grid() Dim3 {
	return Dim3{
		X: (g.c.Cols + g.cfg.BlockN - 1) / g.cfg.BlockN,
		Y: (g.c.Rows + g.cfg.BlockM - 1) / g.cfg.BlockM,
		Z: 1,
	}
}

// Run launches the kernel on the default stream and waits for completion.
func (g *TiledGEMM) Run() error {
	if err := Launch(g, g.Grid()); err != nil {
		return errors.Wrap(err, "TiledGEMM.Run")
	}
	if err := Synchronize(); err != nil {
		return errors.Wrap(err, "TiledGEMM.Run")
	}
	return nil
}
