package wavetile

// operandSide distinguishes the two input operands of the kernel.
type operandSide int

const (
	operandA operandSide = iota // M-side operand, BlockM rows per tile
	operandB                    // N-side operand, BlockN rows per tile
)

func (s operandSide) String() string {
	if s == operandA {
		return "A"
	}
	return "B"
}

// tileBuffer manages the three storage tiers of one operand for one
// thread-block: the thread-local load buffer global memory is staged into,
// the swizzled shared tile the block cooperates through, and the
// parity-indexed register double buffer waves compute from.
//
// Both operands present the same face to the tile manager: A is M×K and B
// is N×K (transpose-indicated), so a tile of either is `rows` rows of
// BlockK contiguous K-elements.
type tileBuffer struct {
	side operandSide
	src  *Matrix
	cfg  *Config
	sw   swizzle

	rows int // BlockM for A, BlockN for B
	base int // first global row of this block's tile

	// kOff is the global K offset of the next LoadFromGlobal; it advances
	// by BlockK per call. loadGen counts completed loads, so the load
	// buffer holds generation loadGen-1.
	kOff    int
	loadGen int

	// sharedGen is the generation currently published in the shared tile,
	// -1 before the first CopyToShared. Exactly one generation is in
	// flight at a time; overwriting it requires the barrier protocol in
	// the orchestrator.
	sharedGen int

	loadBuf []float32 // rows × BlockK, thread-distributed, unswizzled
	shared  []float32 // rows × BlockK, swizzled

	trace *pipelineTrace
	epoch *int // orchestrator's barrier epoch counter
}

func newTileBuffer(side operandSide, src *Matrix, cfg *Config, base int, trace *pipelineTrace, epoch *int) *tileBuffer {
	rows := cfg.BlockM
	if side == operandB {
		rows = cfg.BlockN
	}
	return &tileBuffer{
		side:      side,
		src:       src,
		cfg:       cfg,
		sw:        newSwizzle(cfg),
		rows:      rows,
		base:      base,
		sharedGen: -1,
		loadBuf:   make([]float32, rows*cfg.BlockK),
		shared:    make([]float32, rows*cfg.BlockK),
		trace:     trace,
		epoch:     epoch,
	}
}

// LoadFromGlobal stages the next K-slice of the operand into the load
// buffer as a cooperative, block-wide strided copy: lane t of the block
// owns vectors t, t+threads, t+2·threads, …, a fixed mapping with no
// overlap. Rows past the operand's extent read as zero so overhanging
// blocks stay defined.
//
// Must be called at most once per K-tile per pipeline stage; the caller
// bounds the number of calls by K / BlockK.
func (t *tileBuffer) LoadFromGlobal() {
	vec := t.cfg.SIMDWidth
	threads := t.cfg.threadsPerBlock()
	blockK := t.cfg.BlockK
	totalVecs := t.rows * blockK / vec

	for tid := 0; tid < threads; tid++ {
		for v := tid; v < totalVecs; v += threads {
			e := v * vec
			row := e / blockK
			col := e % blockK
			t.src.gatherRow(t.loadBuf[e:e+vec], t.base+row, t.kOff+col, vec)
		}
	}

	t.kOff += blockK
	t.loadGen++
}

// CopyToShared publishes the load buffer into the shared staging tile
// through the address swizzle. The orchestrator brackets this with
// block-wide barriers: one since the previous generation's readers
// finished, one before any wave reads the new generation.
func (t *tileBuffer) CopyToShared() {
	vec := t.cfg.SIMDWidth
	blockK := t.cfg.BlockK
	vecsPerRow := blockK / vec

	for row := 0; row < t.rows; row++ {
		srcBase := row * blockK
		for v := 0; v < vecsPerRow; v++ {
			dst := srcBase + t.sw.slot(row, v)*vec
			src := srcBase + v*vec
			copy(t.shared[dst:dst+vec], t.loadBuf[src:src+vec])
		}
	}

	t.sharedGen = t.loadGen - 1
	t.trace.recordShared(sharedEvent{side: t.side, gen: t.sharedGen, epoch: *t.epoch, write: true})
}

// sharedAt reads one element of the current shared generation through the
// swizzle. row is relative to the block tile, k relative to the staged
// K-slice.
func (t *tileBuffer) sharedAt(row, k int) float32 {
	return t.shared[t.sw.index(row, k, t.cfg.BlockK)]
}

// registerTile is pure addressing into a register double buffer: it
// selects the parity slot by the k-group and returns the slab one MMA
// sub-step of one fragment reads. Layout per parity is fragment-major,
// then sub-step, then row-major rows of simdK elements. No side effects.
func (t *tileBuffer) registerTile(regs *[2][]float32, kGroup, mmaIdx, kSub int) []float32 {
	rowsPer := t.cfg.MMAM
	if t.side == operandB {
		rowsPer = t.cfg.MMAN
	}
	slab := rowsPer * t.cfg.simdK()
	off := (mmaIdx*t.cfg.kSubSteps() + kSub) * slab
	return regs[kGroup&1][off : off+slab]
}
