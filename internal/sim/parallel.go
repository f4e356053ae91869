package sim

import (
	"context"
	"sync"

	"github.com/san-kum/dotdrop/internal/dots"
)

// Ensemble runs the same configuration over consecutive seeds. Every run
// gets its own engine, so runs proceed in parallel.
type Ensemble struct {
	tuning     dots.Tuning
	numRuns    int
	seedStart  int64
	newMetrics func() []Metric
}

// NewEnsemble builds fresh metrics for each run from newMetrics, which may
// be nil.
func NewEnsemble(t dots.Tuning, numRuns int, seedStart int64, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{tuning: t, numRuns: numRuns, seedStart: seedStart, newMetrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			sim := New(e.tuning)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
