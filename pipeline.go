package wavetile

// waveState is the register file of one wave: double-buffered operand
// tiles indexed by k-group parity, and the accumulator tile that lives for
// the whole invocation. The accumulator is written only by the MMA unit
// and read only by the output writer.
type waveState struct {
	id       int
	row, col int // wave coordinates within the block

	regA [2][]float32
	regB [2][]float32
	acc  []float32

	// Shared generation currently held by each parity slot, per operand.
	genA [2]int
	genB [2]int
}

// blockState is the transient per-invocation storage of one thread-block:
// the two operand tile managers and the per-wave register files. Nothing
// here survives the invocation and nothing is heap-shared across blocks.
type blockState struct {
	a, b  *tileBuffer
	waves []waveState
	epoch int // barrier epoch counter
}

// barrier is the block-wide synchronization point. Within a sequentially
// simulated block it is a pure sequence point; the epoch counter makes the
// ownership handoff observable, since every shared-tile write and every
// register access is stamped with the epoch it happened in.
func (st *blockState) barrier() {
	st.epoch++
}

func (g *TiledGEMM) newBlockState(blockRow, blockCol int) *blockState {
	cfg := &g.cfg
	st := &blockState{}
	st.a = newTileBuffer(operandA, &g.a, cfg, blockRow*cfg.BlockM, g.trace, &st.epoch)
	st.b = newTileBuffer(operandB, &g.b, cfg, blockCol*cfg.BlockN, g.trace, &st.epoch)

	st.waves = make([]waveState, cfg.wavesPerBlock())
	aRegs := cfg.mmaCountM() * cfg.MMAM * cfg.MMAK
	bRegs := cfg.mmaCountN() * cfg.MMAN * cfg.MMAK
	for i := range st.waves {
		w := &st.waves[i]
		w.id = i
		w.row = i / cfg.wavesN()
		w.col = i % cfg.wavesN()
		for p := 0; p < 2; p++ {
			w.regA[p] = make([]float32, aRegs)
			w.regB[p] = make([]float32, bRegs)
			w.genA[p] = -1
			w.genB[p] = -1
		}
		w.acc = make([]float32, cfg.WaveM*cfg.WaveN)
	}
	return st
}

// ExecuteBlock runs the full load/compute pipeline for one thread-block.
//
// The schedule is a five-stage state machine: prime the first K-tile into
// shared memory; warm up by prefetching the second K-tile and loading
// register group 0; then for each remaining K-tile overlap the current
// tile's MMA work against the next tile's staging; drain the last two
// primed tiles without further global loads; and hand the accumulators to
// the output writer. The interleaving inside the steady loop is the
// latency-hiding core: group 0's MMA covers the register loads of groups
// 1..end, and the shared-copy plus next global load are issued between the
// two MMA batches so they complete behind the arithmetic.
func (g *TiledGEMM) ExecuteBlock(bid BlockID) {
	cfg := &g.cfg
	st := g.newBlockState(bid.BlockIdx.Y, bid.BlockIdx.X)
	disp := &mmaDispatcher{cfg: cfg, trace: g.trace}
	hints := cfg.Hints

	kTiles := g.a.Cols / cfg.BlockK
	kGroups := cfg.kGroups()

	// Stage 1: prime. First K-tile into shared memory.
	st.a.LoadFromGlobal()
	st.b.LoadFromGlobal()
	st.a.CopyToShared()
	st.b.CopyToShared()
	st.barrier()

	// Stage 2: warm-up. Prefetch the second K-tile and load register
	// group 0 from the generation published by the prime barrier.
	st.a.LoadFromGlobal()
	st.b.LoadFromGlobal()
	for i := range st.waves {
		disp.loadTiles(0, st.a, st.b, &st.waves[i], st.epoch)
	}
	hints.Hint(HintWarmup)

	// Stage 3: steady state over the remaining K-tiles.
	for it := 0; it < kTiles-2; it++ {
		for i := range st.waves {
			w := &st.waves[i]
			for grp := 1; grp < kGroups; grp++ {
				disp.loadTiles(grp, st.a, st.b, w, st.epoch)
			}
			disp.mma(0, st.a, st.b, w, st.epoch)
		}
		st.barrier()

		// Publish the staged tile and kick off the next global load
		// while groups 1..end still compute from registers.
		st.a.CopyToShared()
		st.b.CopyToShared()
		st.a.LoadFromGlobal()
		st.b.LoadFromGlobal()
		hints.Prefetch(st.a.loadBuf, st.b.loadBuf)

		for i := range st.waves {
			w := &st.waves[i]
			for grp := 1; grp < kGroups; grp++ {
				disp.mma(grp, st.a, st.b, w, st.epoch)
			}
		}
		st.barrier()

		for i := range st.waves {
			disp.loadTiles(0, st.a, st.b, &st.waves[i], st.epoch)
		}
		hints.Hint(HintSteady)
	}

	// Stage 4: drain. Two final passes over the already-primed tiles; the
	// first still has a staged tile to publish, the second only consumes.
	for i := range st.waves {
		w := &st.waves[i]
		for grp := 1; grp < kGroups; grp++ {
			disp.loadTiles(grp, st.a, st.b, w, st.epoch)
		}
		disp.mma(0, st.a, st.b, w, st.epoch)
	}
	st.barrier()

	st.a.CopyToShared()
	st.b.CopyToShared()

	for i := range st.waves {
		w := &st.waves[i]
		for grp := 1; grp < kGroups; grp++ {
			disp.mma(grp, st.a, st.b, w, st.epoch)
		}
	}
	st.barrier()

	for i := range st.waves {
		disp.loadTiles(0, st.a, st.b, &st.waves[i], st.epoch)
	}
	for i := range st.waves {
		w := &st.waves[i]
		for grp := 1; grp < kGroups; grp++ {
			disp.loadTiles(grp, st.a, st.b, w, st.epoch)
		}
		disp.mma(0, st.a, st.b, w, st.epoch)
		for grp := 1; grp < kGroups; grp++ {
			disp.mma(grp, st.a, st.b, w, st.epoch)
		}
	}

	// Stage 5: writeback.
	g.writeback(st, bid.BlockIdx.Y, bid.BlockIdx.X)
}
