package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ecopatch/internal/world"
)

// Member builds one independent ensemble member: its own world, stepper
// and forcing. Members never share state.
type Member func(seed int64) (*world.World, Stepper, ForcingSource, error)

// Ensemble runs the same window over members built from consecutive seeds.
type Ensemble struct {
	build     Member
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

func NewEnsemble(build Member, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a constructor for each member's metric set.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("ensemble size must be positive, got %d", e.numRuns)
	}
	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		i := i
		g.Go(func() error {
			seed := e.seedStart + int64(i)
			w, step, forcing, err := e.build(seed)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			r := New(step, forcing)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					r.AddMetric(m)
				}
			}
			res, err := r.Run(ctx, w, cfg)
			results[i] = res
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
