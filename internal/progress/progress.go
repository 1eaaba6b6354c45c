// Package progress carries (percent, message) updates from a report run to
// whoever displays them. Reporters observe only; they cannot stop a run.
package progress

import (
	"sync"

	"github.com/rs/zerolog"
)

// Reporter receives progress updates. Percent is in [0, 100].
type Reporter interface {
	Report(percent float64, message string)
}

// Func adapts a plain function to Reporter.
type Func func(percent float64, message string)

// Report calls f.
func (f Func) Report(percent float64, message string) { f(percent, message) }

// Nop discards updates.
var Nop Reporter = Func(func(float64, string) {})

// OrNop returns r, or Nop when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop
	}
	return r
}

// Span is the slice of overall progress one stage occupies.
type Span struct {
	From float64
	To   float64
}

// Stage split of a run. Searching takes the first half, detail fetching the
// second; the first 10% cover validation and identity resolution.
var (
	SearchSpan = Span{From: 10, To: 50}
	DetailSpan = Span{From: 50, To: 100}
)

// At maps a stage-local fraction to overall percent. The fraction is
// clamped to [0, 1].
func (s Span) At(fraction float64) float64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return s.From + (s.To-s.From)*fraction
}

// Multi forwards every update to each reporter in order.
func Multi(reporters ...Reporter) Reporter {
	return Func(func(percent float64, message string) {
		for _, r := range reporters {
			if r != nil {
				r.Report(percent, message)
			}
		}
	})
}

// Log returns a reporter that writes debug events to log.
func Log(log zerolog.Logger) Reporter {
	return Func(func(percent float64, message string) {
		log.Debug().Float64("percent", percent).Msg(message)
	})
}

// Update is one recorded progress report.
type Update struct {
	Percent float64
	Message string
}

// Recorder keeps every update it receives.
type Recorder struct {
	mu      sync.Mutex
	updates []Update
}

// Report records the update.
func (r *Recorder) Report(percent float64, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, Update{Percent: percent, Message: message})
}

// Updates returns a copy of the recorded updates.
func (r *Recorder) Updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Update, len(r.updates))
	copy(out, r.updates)
	return out
}

// Monotonic reports whether percentages never decreased.
func (r *Recorder) Monotonic() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 1; i < len(r.updates); i++ {
		if r.updates[i].Percent < r.updates[i-1].Percent {
			return false
		}
	}
	return true
}
