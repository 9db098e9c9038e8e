package wavetile

// HintPoint identifies where in the pipeline a scheduling hint is emitted.
// On hardware these points carry instruction-stream annotations that shape
// how loads interleave with MMA issues; they have no cross-thread
// synchronization semantics.
type HintPoint int

const (
	// HintWarmup follows the first register-tile load, before the steady
	// state begins.
	HintWarmup HintPoint = iota
	// HintSteady closes each steady-state iteration, once the next shared
	// generation is staged and register group 0 is prefetched.
	HintSteady
)

// SchedHinter is the capability-gated scheduling strategy of the pipeline.
// Implementations influence instruction interleaving for latency hiding and
// must be safe no-ops with respect to kernel semantics: the orchestrator
// calls them at fixed points and ignores any effect they have beyond
// timing.
type SchedHinter interface {
	// Hint marks a scheduling point in the pipeline.
	Hint(p HintPoint)
	// Prefetch receives the staging regions the next stage will stream
	// through, so the strategy can warm them ahead of use.
	Prefetch(a, b []float32)
}

// NopHinter discards all hints. It is the strategy for targets without
// instruction-scheduling controls, and the reference behavior every other
// strategy must be indistinguishable from (except in time).
type NopHinter struct{}

// Hint implements SchedHinter.
func (NopHinter) Hint(HintPoint) {}

// Prefetch implements SchedHinter.
func (NopHinter) Prefetch(a, b []float32) {}

// PrefetchHinter touches upcoming staging memory to engage the hardware
// prefetcher. Distance is the stride between touched cache lines in
// float32 elements; 16 covers one 64-byte line.
type PrefetchHinter struct {
	Distance int
}

// Hint implements SchedHinter.
func (h *PrefetchHinter) Hint(HintPoint) {}

// Prefetch implements SchedHinter.
func (h *PrefetchHinter) Prefetch(a, b []float32) {
	step := h.Distance
	if step <= 0 {
		step = 16
	}
	for i := 0; i < len(a); i += step {
		_ = a[i]
	}
	for i := 0; i < len(b); i += step {
		_ = b[i]
	}
}

// defaultHinter selects the best strategy the host supports.
func defaultHinter() SchedHinter {
	if caps.HasVectorUnit {
		return &PrefetchHinter{Distance: 16}
	}
	return NopHinter{}
}
