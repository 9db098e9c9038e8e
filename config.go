package wavetile

// Native K-depth of one MMA issue. The hardware instruction consumes
// sixteen K-elements per lane group; a software k-group is split into
// nativeMMADepth / SIMDWidth sub-steps to reassemble full-width K-tiles
// from sub-width hardware ops.
const nativeMMADepth = 16

// Default tile geometry. One block owns a 128×128 output tile and walks K
// in slices of 32; four 64-lane waves each own a 64×64 sub-tile built from
// 16×16 MMA fragments.
const (
	DefaultBlockM = 128
	DefaultBlockN = 128
	DefaultBlockK = 32

	DefaultWaveM = 64
	DefaultWaveN = 64

	DefaultMMAM = 16
	DefaultMMAN = 16
	DefaultMMAK = 16

	// Lanes per wave (SIMD group width).
	DefaultWaveSize = 64

	// Operand elements one lane feeds per MMA issue.
	DefaultSIMDWidth = 4
)

// Default shared-memory address-swizzle parameters. These are tuned
// empirically per target; treat them as configuration, not as constants
// with a derivation.
const (
	DefaultSwizzleBits  = 2
	DefaultSwizzleBase  = 0
	DefaultSwizzleShift = 2
)

// Config is the compile-time configuration bundle of one kernel
// specialization: tile shapes at the three granularities, the wave
// geometry, and the scheduling-hint strategy. A Config is validated once,
// before launch; nothing in it is re-checked inside the hot loop.
type Config struct {
	// Block tile shape: output region owned by one thread-block, and the
	// K-slice width staged in shared memory per pipeline stage.
	BlockM, BlockN, BlockK int

	// Wave tile shape: output region owned by one wave within the block.
	WaveM, WaveN int

	// Native MMA instruction shape.
	MMAM, MMAN, MMAK int

	// WaveSize is the number of lanes per wave.
	WaveSize int

	// SIMDWidth is the per-lane operand width of one MMA issue; it also
	// sets the vector granularity of shared-memory transfers and the
	// swizzle. K-sub-steps per k-group = nativeMMADepth / SIMDWidth.
	SIMDWidth int

	// Shared-memory address swizzle parameters (XOR permutation).
	SwizzleBits, SwizzleBase, SwizzleShift int

	// Hints is the instruction-scheduling strategy. Nil selects the best
	// strategy the host supports, falling back to a no-op.
	Hints SchedHinter
}

// DefaultConfig returns the default kernel specialization.
func DefaultConfig() Config {
	return Config{
		BlockM: DefaultBlockM, BlockN: DefaultBlockN, BlockK: DefaultBlockK,
		WaveM: DefaultWaveM, WaveN: DefaultWaveN,
		MMAM: DefaultMMAM, MMAN: DefaultMMAN, MMAK: DefaultMMAK,
		WaveSize:     DefaultWaveSize,
		SIMDWidth:    DefaultSIMDWidth,
		SwizzleBits:  DefaultSwizzleBits,
		SwizzleBase:  DefaultSwizzleBase,
		SwizzleShift: DefaultSwizzleShift,
	}
}

// Derived geometry. These are pure arithmetic over validated fields.

func (c Config) wavesM() int { return c.BlockM / c.WaveM }
func (c Config) wavesN() int { return c.BlockN / c.WaveN }

func (c Config) wavesPerBlock() int { return c.wavesM() * c.wavesN() }

func (c Config) threadsPerBlock() int { return c.wavesPerBlock() * c.WaveSize }

// mmaCountM/mmaCountN are MMA fragments per wave tile along each axis.
func (c Config) mmaCountM() int { return c.WaveM / c.MMAM }
func (c Config) mmaCountN() int { return c.WaveN / c.MMAN }

// kGroups is the number of register-tile k-groups per block K-slice.
func (c Config) kGroups() int { return c.BlockK / c.MMAK }

// kSubSteps is the number of hardware MMA issues that reassemble one
// k-group: the native instruction K-depth divided by the operand width.
func (c Config) kSubSteps() int { return nativeMMADepth / c.SIMDWidth }

// simdK is the K-depth consumed by one MMA issue.
func (c Config) simdK() int { return c.MMAK / c.kSubSteps() }

// Validate performs every static constraint check of the specialization.
// All of these are compile-time failures on real hardware; here they are
// rejected before a kernel is constructed, never at runtime.
func (c Config) Validate() error {
	const op = "Config.Validate"

	if c.BlockM <= 0 || c.BlockN <= 0 || c.BlockK <= 0 {
		return NewConfigError(op, "block tile %dx%dx%d must be positive", c.BlockM, c.BlockN, c.BlockK)
	}
	if c.WaveM <= 0 || c.WaveN <= 0 {
		return NewConfigError(op, "wave tile %dx%d must be positive", c.WaveM, c.WaveN)
	}
	if c.MMAM <= 0 || c.MMAN <= 0 || c.MMAK <= 0 {
		return NewConfigError(op, "MMA shape %dx%dx%d must be positive", c.MMAM, c.MMAN, c.MMAK)
	}
	if c.BlockM%c.WaveM != 0 || c.BlockN%c.WaveN != 0 {
		return NewConfigError(op, "block tile %dx%d must be covered exactly by wave tiles %dx%d",
			c.BlockM, c.BlockN, c.WaveM, c.WaveN)
	}
	if c.WaveM%c.MMAM != 0 || c.WaveN%c.MMAN != 0 {
		return NewConfigError(op, "wave tile %dx%d must be covered exactly by MMA fragments %dx%d",
			c.WaveM, c.WaveN, c.MMAM, c.MMAN)
	}
	if c.BlockK%c.MMAK != 0 {
		return NewConfigError(op, "block K %d must be a multiple of MMA K %d", c.BlockK, c.MMAK)
	}
	if c.BlockK/c.MMAK > 2 {
		return NewConfigError(op, "block K %d stages %d k-groups of depth %d; the parity-indexed register double buffer holds at most two",
			c.BlockK, c.BlockK/c.MMAK, c.MMAK)
	}
	if c.WaveSize <= 0 {
		return NewConfigError(op, "wave size %d must be positive", c.WaveSize)
	}
	if c.SIMDWidth <= 0 || nativeMMADepth%c.SIMDWidth != 0 {
		return NewConfigError(op, "SIMD width %d must divide the native MMA depth %d",
			c.SIMDWidth, nativeMMADepth)
	}
	if c.MMAK%c.kSubSteps() != 0 {
		return NewConfigError(op, "MMA K %d must split evenly into %d sub-steps",
			c.MMAK, c.kSubSteps())
	}
	if c.SwizzleBits < 0 || c.SwizzleBase < 0 || c.SwizzleShift < 0 {
		return NewConfigError(op, "swizzle parameters (%d,%d,%d) must be non-negative",
			c.SwizzleBits, c.SwizzleBase, c.SwizzleShift)
	}
	if c.BlockK%c.SIMDWidth != 0 {
		return NewConfigError(op, "block K %d must be a multiple of the vector width %d",
			c.BlockK, c.SIMDWidth)
	}
	// The XOR permutation must stay inside one row of the shared tile.
	vecsPerRow := c.BlockK / c.SIMDWidth
	maxXor := ((1 << c.SwizzleBits) - 1) << c.SwizzleBase
	if maxXor >= vecsPerRow {
		return NewConfigError(op, "swizzle (%d,%d,%d) permutes across row boundary: %d vectors per row",
			c.SwizzleBits, c.SwizzleBase, c.SwizzleShift, vecsPerRow)
	}
	return nil
}

// withDefaults resolves the optional fields of a validated config.
func (c Config) withDefaults() Config {
	if c.Hints == nil {
		c.Hints = defaultHinter()
	}
	return c
}
