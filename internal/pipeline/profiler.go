package pipeline

import (
	"sync"
	"time"

	"github.com/r3e-network/solx-go/internal/wire"
)

// TimingSample is one named stage's start/finish pair (spec §4.1
// "Profiler... Per-stage profiler entries attach start/finish
// timestamps to the build artifact").
type TimingSample struct {
	Stage  string
	Start  time.Time
	Finish time.Time
}

// Profiler accumulates TimingSamples for one segment compilation.
// Safe for concurrent use since a single contract task's runtime and
// deploy passes, and the parent orchestrating many contracts at once,
// may record into their own profiler instances from different
// goroutines racing only on log/metrics sinks, not this struct itself
// — but it costs nothing to make it safe outright.
type Profiler struct {
	mu      sync.Mutex
	samples []TimingSample
}

// NewProfiler returns an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Stage starts timing a named stage and returns a func to call on
// completion, so callers can write `defer p.Stage("codegen")()`.
func (p *Profiler) Stage(name string) func() {
	start := time.Now()
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.samples = append(p.samples, TimingSample{Stage: name, Start: start, Finish: time.Now()})
	}
}

// Samples returns a copy of the recorded samples.
func (p *Profiler) Samples() []TimingSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TimingSample, len(p.samples))
	copy(out, p.samples)
	return out
}

// ToWire converts the recorded samples to the wire protocol's
// nanosecond-timestamp shape, the form that actually crosses the
// subprocess boundary (time.Time itself is not CBOR-serializable in
// any portable way this codebase relies on).
func (p *Profiler) ToWire() []wire.TimingSample {
	samples := p.Samples()
	out := make([]wire.TimingSample, len(samples))
	for i, s := range samples {
		out[i] = wire.TimingSample{
			Stage:      s.Stage,
			StartNanos: s.Start.UnixNano(),
			EndNanos:   s.Finish.UnixNano(),
		}
	}
	return out
}

// FromWire reconstructs TimingSamples received over the wire. The
// reconstructed Start/Finish lose their monotonic reading (time.Unix
// always does), which is fine: nothing downstream subtracts across
// process boundaries except the already-computed duration implied by
// the nanosecond fields themselves.
func FromWire(samples []wire.TimingSample) []TimingSample {
	out := make([]TimingSample, len(samples))
	for i, s := range samples {
		out[i] = TimingSample{
			Stage:  s.Stage,
			Start:  time.Unix(0, s.StartNanos),
			Finish: time.Unix(0, s.EndNanos),
		}
	}
	return out
}
