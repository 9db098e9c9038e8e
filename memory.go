package wavetile

import (
	"sync"
	"unsafe"
)

// Memory alignment for allocations, matching vector register width.
const memoryAlignment = 64

// DevicePtr represents a pointer to device memory. On CPU this is ordinary
// aligned memory, but the kernel treats it exactly as a GPU kernel treats
// global memory: bulk strided reads into staging buffers, bulk writes from
// accumulators.
type DevicePtr struct {
	buf    []byte
	offset int
}

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead.
type MemoryPool struct {
	mu         sync.Mutex
	freeList   []allocation
	live       map[*byte]int
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	buf []byte
}

// NewMemoryPool creates a new memory pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		live: make(map[*byte]int),
	}
}

// Malloc allocates device memory of the specified size in bytes.
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free releases device memory allocated by Malloc.
func (ctx *Context) Free(ptr DevicePtr) error {
	return ctx.memory.Free(ptr)
}

// Allocate allocates memory from the pool.
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alignedSize := (size + memoryAlignment - 1) &^ (memoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if len(alloc.buf) >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			mp.account(int64(len(alloc.buf)))
			mp.live[&alloc.buf[0]] = len(alloc.buf)
			return DevicePtr{buf: alloc.buf[:size]}, nil
		}
	}

	buf := make([]byte, alignedSize)
	mp.account(int64(alignedSize))
	mp.live[&buf[0]] = alignedSize

	return DevicePtr{buf: buf[:size]}, nil
}

// Free returns memory to the pool.
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	if ptr.buf == nil {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := &ptr.buf[0]
	size, ok := mp.live[key]
	if !ok {
		return ErrDoubleFree
	}
	delete(mp.live, key)

	mp.freeList = append(mp.freeList, allocation{buf: ptr.buf[:size:size]})
	mp.totalAlloc -= int64(size)
	return nil
}

// GetStats returns memory pool statistics.
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

func (mp *MemoryPool) account(size int64) {
	mp.totalAlloc += size
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
}

// DevicePtr views

// Float32 returns a float32 slice view of the device memory.
// The slice can be used directly for reading and writing data.
func (d DevicePtr) Float32() []float32 {
	if d.buf == nil {
		return nil
	}
	n := len(d.buf) / 4
	return unsafe.Slice((*float32)(unsafe.Pointer(&d.buf[0])), n)
}

// Uint16 returns a uint16 slice view of the device memory, used for
// half-precision tensors whose elements are IEEE 754 binary16 bit patterns.
func (d DevicePtr) Uint16() []uint16 {
	if d.buf == nil {
		return nil
	}
	n := len(d.buf) / 2
	return unsafe.Slice((*uint16)(unsafe.Pointer(&d.buf[0])), n)
}

// Byte returns a byte slice view of the entire memory region.
func (d DevicePtr) Byte() []byte {
	return d.buf
}

// Offset returns a new DevicePtr offset by the given number of bytes.
// The returned DevicePtr shares the same underlying memory.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		buf:    d.buf[bytes:],
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region.
func (d DevicePtr) Size() int {
	return len(d.buf)
}
