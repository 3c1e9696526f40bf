// SPDX-License-Identifier: MIT
package ddm

import (
	"sync"
	"time"

	applog "ddm/internal/log"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Timing stage names.
const (
	StageFFT      = "fft"
	StagePass     = "pass"
	StageFinalize = "finalize"
)

// StageSummary describes the durations recorded for one stage.
type StageSummary struct {
	Stage  string
	Count  int
	Mean   time.Duration
	StdDev time.Duration
	Total  time.Duration
}

// Timings collects per-stage durations from the worker and the driver.
type Timings struct {
	mu      sync.Mutex
	order   []string
	samples map[string][]float64 // Seconds
}

// NewTimings creates an empty collector.
func NewTimings() *Timings {
	return &Timings{samples: make(map[string][]float64)}
}

// Record adds one duration sample for stage.
func (t *Timings) Record(stage string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.samples[stage]; !ok {
		t.order = append(t.order, stage)
	}
	t.samples[stage] = append(t.samples[stage], d.Seconds())
}

// Track starts a measurement; call the returned func to record it.
//
//	defer timings.Track(StagePass)()
func (t *Timings) Track(stage string) func() {
	start := time.Now()
	return func() { t.Record(stage, time.Since(start)) }
}

// Summary returns statistics per stage in first-recorded order.
func (t *Timings) Summary() []StageSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]StageSummary, 0, len(t.order))
	for _, stage := range t.order {
		xs := t.samples[stage]
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 {
			std = 0
		}
		out = append(out, StageSummary{
			Stage:  stage,
			Count:  len(xs),
			Mean:   seconds(mean),
			StdDev: seconds(std),
			Total:  seconds(floats.Sum(xs)),
		})
	}
	return out
}

// Flush logs the summary and clears all samples.
func (t *Timings) Flush() {
	for _, s := range t.Summary() {
		applog.Infof("Timing: %-8s n=%-6d mean=%-12s sd=%-12s total=%s", s.Stage, s.Count, s.Mean, s.StdDev, s.Total)
	}

	t.mu.Lock()
	t.order = nil
	t.samples = make(map[string][]float64)
	t.mu.Unlock()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
