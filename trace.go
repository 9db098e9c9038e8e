package wavetile

import (
	"sync"
)

// pipelineTrace records the pipeline's buffer traffic so tests can check
// the scheduling discipline from the outside: shared-tile generations are
// read only after the barrier that published them, and register
// double-buffer parities alternate with the k-group sequence. A nil trace
// costs nothing; kernels only carry one when a test attaches it.
type pipelineTrace struct {
	mu     sync.Mutex
	reg    []regEvent
	shared []sharedEvent
}

// regEvent is one register double-buffer access by one wave.
type regEvent struct {
	side   operandSide
	wave   int
	parity int
	group  int
	gen    int // shared-tile generation the data belongs to
	epoch  int // barrier epoch the access happened in
	write  bool
}

// sharedEvent is one block-wide shared staging tile transfer.
type sharedEvent struct {
	side  operandSide
	gen   int
	epoch int
	write bool
}

func (t *pipelineTrace) recordReg(e regEvent) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.reg = append(t.reg, e)
	t.mu.Unlock()
}

func (t *pipelineTrace) recordShared(e sharedEvent) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.shared = append(t.shared, e)
	t.mu.Unlock()
}

func (t *pipelineTrace) regEvents() []regEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]regEvent, len(t.reg))
	copy(out, t.reg)
	return out
}

func (t *pipelineTrace) sharedEvents() []sharedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]sharedEvent, len(t.shared))
	copy(out, t.shared)
	return out
}
