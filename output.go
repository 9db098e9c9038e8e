package wavetile

// writeback maps each wave's accumulator tile to its region of the global
// output tensor. The accumulator is read-only here; which of the two paths
// runs was fixed when the kernel was specialized.
func (g *TiledGEMM) writeback(st *blockState, blockRow, blockCol int) {
	rowBase := blockRow * g.cfg.BlockM
	colBase := blockCol * g.cfg.BlockN

	for i := range st.waves {
		w := &st.waves[i]
		if g.mode == DirectStore {
			g.directStore(w, rowBase, colBase)
		} else {
			g.fusedStore(w, rowBase, colBase)
		}
	}
}

// directStore is the unchecked vectorized path: whole accumulator rows are
// stored contiguously into C. The specialization guaranteed the block tile
// lies fully inside C, so no coordinate is tested.
func (g *TiledGEMM) directStore(w *waveState, rowBase, colBase int) {
	waveN := g.cfg.WaveN
	row0 := rowBase + w.row*g.cfg.WaveM
	col0 := colBase + w.col*waveN

	for r := 0; r < g.cfg.WaveM; r++ {
		g.c.scatterRow(w.acc[r*waveN:(r+1)*waveN], row0+r, col0, waveN)
	}
}

// fusedStore is the bounds-checked path: each lane walks its fixed share
// of the wave tile (elements lane, lane+waveSize, …), recovers the global
// coordinate from the linear offset, and skips anything past the true M×N
// extent. In-bounds elements go through the epilogue callback with the
// value cast to the output element type; without a callback they are
// stored as-is.
func (g *TiledGEMM) fusedStore(w *waveState, rowBase, colBase int) {
	cfg := &g.cfg
	waveN := cfg.WaveN
	tile := cfg.WaveM * waveN
	row0 := rowBase + w.row*cfg.WaveM
	col0 := colBase + w.col*waveN

	for lane := 0; lane < cfg.WaveSize; lane++ {
		for idx := lane; idx < tile; idx += cfg.WaveSize {
			row := row0 + idx/waveN
			col := col0 + idx%waveN
			if row >= g.c.Rows || col >= g.c.Cols {
				continue
			}
			v := g.c.castOut(w.acc[idx])
			if g.epilogue != nil {
				g.epilogue(row, col, v)
			} else {
				g.c.Set(row, col, v)
			}
		}
	}
}
