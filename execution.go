package wavetile

import (
	"runtime"
	"sync"

	"k8s.io/klog/v2"
)

// launchInternal implements the core block-dispatch logic. Blocks are fully
// independent, so they are distributed over worker goroutines with no
// inter-block synchronization. Each worker processes a contiguous range of
// block indices to keep its staging buffers hot in cache.
func (ctx *Context) launchInternal(kernel BlockKernel, grid Dim3, stream *Stream) error {
	gridSize := grid.Size()

	// Handle edge case where grid size is zero
	if gridSize == 0 {
		// Submit an empty task to maintain stream ordering
		stream.Submit(func() {})
		return nil
	}

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	klog.V(2).Infof("wavetile: launching %dx%dx%d grid (%d blocks) over %d workers",
		grid.X, grid.Y, grid.Z, gridSize, numWorkers)

	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			go func(start, end int) {
				defer wg.Done()

				for blockID := start; blockID < end; blockID++ {
					bid := BlockID{
						BlockIdx: linearTo3D(blockID, grid),
						GridDim:  grid,
					}
					kernel.ExecuteBlock(bid)
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
	})

	return nil
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
