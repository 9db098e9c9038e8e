package wavetile

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Device represents a compute device. Here this is the CPU with its cores
// standing in for compute units. Each device has a unique ID and capabilities.
type Device struct {
	ID         int    // Unique device identifier
	Name       string // Human-readable device name
	NumCores   int    // Number of CPU cores
	MaxThreads int    // Maximum concurrent threads
}

// Context represents an execution context for wavetile operations.
// It manages device resources, memory allocation, and stream execution.
type Context struct {
	device        *Device
	streams       map[int]*Stream
	streamID      int32
	memory        *MemoryPool
	defaultStream *Stream
}

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order, but
// operations in different streams may execute concurrently.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

// Dim3 represents 3D dimensions for grid and block configurations,
// matching the launch geometry of a GPU runtime.
type Dim3 struct {
	X, Y, Z int
}

// BlockID identifies a thread-block's position within the launch grid.
// The kernel body is written at block granularity: all waves and lanes of
// the block execute inside one ExecuteBlock call, with block-wide barriers
// expressed as sequence points between per-wave loops.
type BlockID struct {
	BlockIdx Dim3 // Block index within the grid
	GridDim  Dim3 // Dimensions of the grid
}

// BlockKernel is a kernel whose body covers one whole thread-block.
// ExecuteBlock is called concurrently for independent blocks; blocks share
// no state, so implementations need no cross-block synchronization.
type BlockKernel interface {
	ExecuteBlock(bid BlockID)
}

// BlockKernelFunc adapts a plain function to the BlockKernel interface.
type BlockKernelFunc func(bid BlockID)

// ExecuteBlock implements BlockKernel.
func (fn BlockKernelFunc) ExecuteBlock(bid BlockID) {
	fn(bid)
}

// Global runtime state
var (
	defaultDevice  *Device
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultDevice = &Device{
			ID:         0,
			Name:       "CPU",
			NumCores:   runtime.NumCPU(),
			MaxThreads: runtime.NumCPU() * 2,
		}

		defaultContext = &Context{
			device:  defaultDevice,
			streams: make(map[int]*Stream),
			memory:  NewMemoryPool(),
		}

		defaultContext.defaultStream = defaultContext.CreateStream()
	})
}

// Malloc allocates device memory of the specified size in bytes from the
// default context. The memory is aligned for vectorized access.
func Malloc(size int) (DevicePtr, error) {
	return defaultContext.Malloc(size)
}

// Free releases device memory allocated by Malloc.
func Free(ptr DevicePtr) error {
	return defaultContext.Free(ptr)
}

// Launch executes a block kernel over a grid of independent thread-blocks
// on the default stream.
func Launch(kernel BlockKernel, grid Dim3) error {
	return defaultContext.Launch(kernel, grid)
}

// Synchronize waits for all operations on all streams of the default
// context to complete.
func Synchronize() error {
	return defaultContext.Synchronize()
}

// GetDevice returns the current device information.
func GetDevice() *Device {
	return defaultDevice
}

// Context methods

// CreateStream creates a new execution stream.
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func(), 1000),
		done:  make(chan struct{}),
	}

	// Start worker goroutine for stream
	go stream.worker()

	ctx.streams[id] = stream
	return stream
}

// Launch executes a block kernel on the default stream.
func (ctx *Context) Launch(kernel BlockKernel, grid Dim3) error {
	return ctx.LaunchStream(kernel, grid, ctx.defaultStream)
}

// LaunchStream executes a block kernel on a specific stream.
func (ctx *Context) LaunchStream(kernel BlockKernel, grid Dim3, stream *Stream) error {
	return ctx.launchInternal(kernel, grid, stream)
}

// Synchronize waits for all streams to complete.
func (ctx *Context) Synchronize() error {
	for _, stream := range ctx.streams {
		stream.Synchronize()
	}
	return nil
}

// Stream methods

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Synchronize waits for all tasks in the stream to complete.
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Submit adds a task to the stream.
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Size returns the total number of elements.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}
