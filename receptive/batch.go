package receptive

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Result is the outcome of one config in a ComputeAll batch.
type Result struct {
	Config         Config
	ReceptiveField int
	Err            error
}

// ComputeAll evaluates cfgs on at most workers goroutines (runtime.NumCPU()
// when workers <= 0). Results are in input order.
func ComputeAll(cfgs []Config, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(cfgs))
	p := pool.New().WithMaxGoroutines(workers)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		p.Go(func() {
			rf, err := cfg.ReceptiveField()
			results[i] = Result{Config: cfg, ReceptiveField: rf, Err: err}
		})
	}
	p.Wait()
	return results
}
