package wavetile

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// hostCaps tracks the host capabilities relevant to the scheduling-hint
// strategy. GPUs expose instruction-stream hints (wait counts, scheduling
// barriers); the closest CPU analogue is software prefetch, which is only
// worth emitting on targets with a usable vector unit.
type hostCaps struct {
	HasVectorUnit bool
	HasAVX2       bool
	HasAVX512     bool
}

var caps hostCaps

func init() {
	detectHostCaps()
}

func detectHostCaps() {
	switch runtime.GOARCH {
	case "amd64":
		caps = hostCaps{
			HasVectorUnit: cpu.X86.HasSSE2 || cpu.X86.HasAVX,
			HasAVX2:       cpu.X86.HasAVX2 && cpu.X86.HasFMA,
			HasAVX512:     cpu.X86.HasAVX512F,
		}
	case "arm64":
		// NEON is baseline on arm64.
		caps = hostCaps{HasVectorUnit: true}
	default:
		caps = hostCaps{}
	}
}

// HostInfo returns a short description of detected host capabilities.
func HostInfo() string {
	switch {
	case caps.HasAVX512:
		return "AVX512"
	case caps.HasAVX2:
		return "AVX2"
	case caps.HasVectorUnit:
		return "vector"
	default:
		return "scalar"
	}
}
