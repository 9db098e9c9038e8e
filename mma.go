package wavetile

// mmaDispatcher issues the hardware matrix instructions of one wave: the
// load-matrix ops that fill register tiles from the shared staging tiles,
// and the multiply-accumulate ops that consume them. It has no storage of
// its own; registers live in the wave state, shared tiles in the tile
// manager.
type mmaDispatcher struct {
	cfg   *Config
	trace *pipelineTrace
}

// loadTiles fills the register buffers selected by kGroup's parity from
// the current shared generation of both operands, one load-matrix op per
// MMA fragment per sub-step. Pure data movement, no arithmetic.
func (d *mmaDispatcher) loadTiles(kGroup int, a, b *tileBuffer, w *waveState, epoch int) {
	cfg := d.cfg
	simdK := cfg.simdK()
	subs := cfg.kSubSteps()
	parity := kGroup & 1

	kBase := kGroup * cfg.MMAK
	for mi := 0; mi < cfg.mmaCountM(); mi++ {
		rowBase := w.row*cfg.WaveM + mi*cfg.MMAM
		for sub := 0; sub < subs; sub++ {
			slab := a.registerTile(&w.regA, kGroup, mi, sub)
			for r := 0; r < cfg.MMAM; r++ {
				for kk := 0; kk < simdK; kk++ {
					slab[r*simdK+kk] = a.sharedAt(rowBase+r, kBase+sub*simdK+kk)
				}
			}
		}
	}
	for ni := 0; ni < cfg.mmaCountN(); ni++ {
		rowBase := w.col*cfg.WaveN + ni*cfg.MMAN
		for sub := 0; sub < subs; sub++ {
			slab := b.registerTile(&w.regB, kGroup, ni, sub)
			for r := 0; r < cfg.MMAN; r++ {
				for kk := 0; kk < simdK; kk++ {
					slab[r*simdK+kk] = b.sharedAt(rowBase+r, kBase+sub*simdK+kk)
				}
			}
		}
	}

	w.genA[parity] = a.sharedGen
	w.genB[parity] = b.sharedGen

	if d.trace != nil {
		d.trace.recordShared(sharedEvent{side: operandA, gen: a.sharedGen, epoch: epoch})
		d.trace.recordShared(sharedEvent{side: operandB, gen: b.sharedGen, epoch: epoch})
		d.trace.recordReg(regEvent{side: operandA, wave: w.id, parity: parity, group: kGroup, gen: a.sharedGen, epoch: epoch, write: true})
		d.trace.recordReg(regEvent{side: operandB, wave: w.id, parity: parity, group: kGroup, gen: b.sharedGen, epoch: epoch, write: true})
	}
}

// mma issues the multiply-accumulate instructions of one k-group: for each
// of the kSubSteps sub-steps it multiplies the simdK-deep register slabs
// of every fragment pair into the accumulator tile, in place. The sub-step
// loop reassembles the software K-tile from the narrower native
// instruction depth. Accumulation is float32 regardless of operand type,
// and the loop order is fixed, so the accumulation order is deterministic.
func (d *mmaDispatcher) mma(kGroup int, a, b *tileBuffer, w *waveState, epoch int) {
	cfg := d.cfg
	simdK := cfg.simdK()
	subs := cfg.kSubSteps()
	waveN := cfg.WaveN
	parity := kGroup & 1

	for sub := 0; sub < subs; sub++ {
		for mi := 0; mi < cfg.mmaCountM(); mi++ {
			aSlab := a.registerTile(&w.regA, kGroup, mi, sub)
			for ni := 0; ni < cfg.mmaCountN(); ni++ {
				bSlab := b.registerTile(&w.regB, kGroup, ni, sub)
				accBase := (mi * cfg.MMAM * waveN) + ni*cfg.MMAN
				for r := 0; r < cfg.MMAM; r++ {
					aRow := aSlab[r*simdK : (r+1)*simdK]
					accRow := w.acc[accBase+r*waveN:]
					for c := 0; c < cfg.MMAN; c++ {
						bRow := bSlab[c*simdK : (c+1)*simdK]
						sum := accRow[c]
						for kk := 0; kk < simdK; kk++ {
							sum += aRow[kk] * bRow[kk]
						}
						accRow[c] = sum
					}
				}
			}
		}
	}

	if d.trace != nil {
		d.trace.recordReg(regEvent{side: operandA, wave: w.id, parity: parity, group: kGroup, gen: w.genA[parity], epoch: epoch})
		d.trace.recordReg(regEvent{side: operandB, wave: w.id, parity: parity, group: kGroup, gen: w.genB[parity], epoch: epoch})
	}
}
