package wavetile

import (
	"sync/atomic"
	"testing"
)

func TestMallocFree(t *testing.T) {
	ptr, err := Malloc(1024)
	if err != nil {
		t.Fatalf("Malloc failed: %v", err)
	}
	if ptr.Size() != 1024 {
		t.Errorf("Size = %d, want 1024", ptr.Size())
	}

	f32 := ptr.Float32()
	if len(f32) != 256 {
		t.Errorf("Float32 view length = %d, want 256", len(f32))
	}
	f32[0] = 3.5
	f32[255] = -1

	if err := Free(ptr); err != nil {
		t.Errorf("Free failed: %v", err)
	}
}

func TestMallocInvalidSize(t *testing.T) {
	if _, err := Malloc(0); err != ErrInvalidSize {
		t.Errorf("Malloc(0) error = %v, want ErrInvalidSize", err)
	}
	if _, err := Malloc(-64); err != ErrInvalidSize {
		t.Errorf("Malloc(-64) error = %v, want ErrInvalidSize", err)
	}
}

func TestDoubleFree(t *testing.T) {
	ptr, err := Malloc(128)
	if err != nil {
		t.Fatalf("Malloc failed: %v", err)
	}
	if err := Free(ptr); err != nil {
		t.Fatalf("first Free failed: %v", err)
	}
	if err := Free(ptr); err != ErrDoubleFree {
		t.Errorf("second Free error = %v, want ErrDoubleFree", err)
	}
}

func TestMemoryPoolReuse(t *testing.T) {
	pool := NewMemoryPool()

	a, err := pool.Allocate(4096)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if err := pool.Free(a); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	// A same-size allocation should come back from the free list without
	// growing the peak.
	_, peakBefore := pool.GetStats()
	b, err := pool.Allocate(4096)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	_, peakAfter := pool.GetStats()
	if peakAfter != peakBefore {
		t.Errorf("peak grew from %d to %d on reuse", peakBefore, peakAfter)
	}
	if err := pool.Free(b); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
}

func TestDevicePtrOffset(t *testing.T) {
	ptr, err := Malloc(256)
	if err != nil {
		t.Fatalf("Malloc failed: %v", err)
	}
	defer Free(ptr)

	base := ptr.Float32()
	base[16] = 42

	view := ptr.Offset(64).Float32()
	if view[0] != 42 {
		t.Errorf("offset view[0] = %v, want 42", view[0])
	}
}

func TestLaunchCoversGrid(t *testing.T) {
	grid := Dim3{X: 4, Y: 3, Z: 2}

	var count int64
	seen := make([]int64, grid.Size())
	kernel := BlockKernelFunc(func(bid BlockID) {
		if bid.GridDim != grid {
			t.Errorf("GridDim = %+v, want %+v", bid.GridDim, grid)
		}
		idx := bid.BlockIdx.Z*grid.Y*grid.X + bid.BlockIdx.Y*grid.X + bid.BlockIdx.X
		atomic.AddInt64(&seen[idx], 1)
		atomic.AddInt64(&count, 1)
	})

	if err := Launch(kernel, grid); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}

	if count != int64(grid.Size()) {
		t.Errorf("executed %d blocks, want %d", count, grid.Size())
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("block %d executed %d times, want 1", i, n)
		}
	}
}

func TestStreamOrdering(t *testing.T) {
	ctx := defaultContext
	stream := ctx.CreateStream()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		stream.Submit(func() {
			order = append(order, i)
		})
	}
	stream.Synchronize()

	if len(order) != 10 {
		t.Fatalf("ran %d tasks, want 10", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("task order %v, tasks must run in submission order", order)
		}
	}
}

func TestDim3Size(t *testing.T) {
	cases := []struct {
		d    Dim3
		want int
	}{
		{Dim3{X: 1, Y: 1, Z: 1}, 1},
		{Dim3{X: 8, Y: 4, Z: 2}, 64},
		{Dim3{X: 0, Y: 4, Z: 2}, 0},
	}
	for _, tc := range cases {
		if got := tc.d.Size(); got != tc.want {
			t.Errorf("%+v Size = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestGetDevice(t *testing.T) {
	dev := GetDevice()
	if dev == nil {
		t.Fatal("GetDevice returned nil")
	}
	if dev.NumCores < 1 {
		t.Errorf("NumCores = %d, want >= 1", dev.NumCores)
	}
}

func TestHostInfo(t *testing.T) {
	// Capability tiers vary by machine; the report just has to name one.
	switch info := HostInfo(); info {
	case "AVX512", "AVX2", "vector", "scalar":
	default:
		t.Errorf("HostInfo = %q, not a known tier", info)
	}
}
