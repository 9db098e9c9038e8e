package wavetile

// swizzle is the XOR address permutation applied to shared-memory vector
// offsets. Consecutive rows of a staged tile land on rotated vector slots,
// so a wave reading a column of MMA fragments touches distinct banks
// instead of striding through one.
//
// The permutation operates at vector granularity (vec elements): vector v
// of row r is stored at slot v XOR (((r >> shift) & mask) << base), where
// mask has `bits` ones. XOR is self-inverse, so the same function maps
// logical offsets to physical slots on both the write and the read side.
type swizzle struct {
	bits  int
	base  int
	shift int
	vec   int
}

func newSwizzle(cfg *Config) swizzle {
	return swizzle{
		bits:  cfg.SwizzleBits,
		base:  cfg.SwizzleBase,
		shift: cfg.SwizzleShift,
		vec:   cfg.SIMDWidth,
	}
}

// slot permutes vector index v within row r.
func (s swizzle) slot(r, v int) int {
	mask := (1 << s.bits) - 1
	return v ^ (((r >> s.shift) & mask) << s.base)
}

// index maps a logical (row, element) coordinate of a tile with rowLen
// elements per row to its physical element offset in the swizzled buffer.
func (s swizzle) index(r, e, rowLen int) int {
	v := e / s.vec
	lane := e % s.vec
	return r*rowLen + s.slot(r, v)*s.vec + lane
}
