// Package wavetile implements a GPU-style hierarchical tiled GEMM pipeline
// that runs on CPU through the same execution model a GPU kernel would use:
// a grid of independent thread-blocks, each owning a shared staging tile,
// per-wavefront register tiles, and a matrix-multiply-accumulate (MMA) unit
// fed by a software-pipelined load/compute schedule.
//
// The kernel computes C = A × Bᵗ with B stored transposed (N×K) and an
// optional fused per-element epilogue applied during writeback.
//
// Example usage:
//
//	cfg := wavetile.DefaultConfig()
//	a, _ := wavetile.NewMatrix(wavetile.Float32, 256, 256)
//	b, _ := wavetile.NewMatrixT(wavetile.Float32, 256, 256)
//	c, _ := wavetile.NewMatrix(wavetile.Float32, 256, 256)
//
//	gemm, err := wavetile.NewTiledGEMM(cfg, a, b, c)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := gemm.Run(); err != nil {
//		log.Fatal(err)
//	}
package wavetile
