// SPDX-License-Identifier: MIT
package ddm

import (
	"fmt"

	"ddm/internal/numeric"

	"golang.org/x/sync/errgroup"
)

// Accumulator holds, per lag, the running sum of |F(t0+lag) - F(t0)|^2
// over all accumulation passes. Index 0 is lag zero.
type Accumulator []*numeric.Matrix

// Init establishes the per-lag sums from the first full window. Each
// lag contributes the pair (frames[0], frames[lag]).
func Init(rt *numeric.Runtime, frames []*numeric.Spectrum) (Accumulator, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("cannot accumulate an empty window")
	}
	acc := make(Accumulator, len(frames))
	for lag, f := range frames {
		m, err := rt.SquaredDiff(f, frames[0])
		if err != nil {
			return nil, fmt.Errorf("lag %d: %w", lag, err)
		}
		acc[lag] = m
	}
	return acc, nil
}

// Merge folds another window into the running sums in place and returns acc.
func Merge(rt *numeric.Runtime, acc Accumulator, frames []*numeric.Spectrum) (Accumulator, error) {
	if len(acc) != len(frames) {
		return nil, fmt.Errorf("window holds %d frames, accumulator has %d lags", len(frames), len(acc))
	}
	for lag, f := range frames {
		if err := rt.AddSquaredDiff(acc[lag], f, frames[0]); err != nil {
			return nil, fmt.Errorf("lag %d: %w", lag, err)
		}
	}
	return acc, nil
}

// Normalize divides every element by passes. Lags are independent and
// processed concurrently.
func Normalize(acc Accumulator, passes int) error {
	if passes < 1 {
		return fmt.Errorf("cannot normalize by %d passes", passes)
	}
	d := float64(passes)

	var g errgroup.Group
	for _, m := range acc {
		g.Go(func() error {
			for i := range m.Data {
				m.Data[i] /= d
			}
			return nil
		})
	}
	return g.Wait()
}
