package metrics

import "github.com/san-kum/ecopatch/internal/sim"

// Stress is the fraction of vegetated patch-days whose met share of the
// transpiration demand fell below a threshold.
type Stress struct {
	name      string
	threshold float64
	stressed  int
	samples   int
}

func NewStress(threshold float64) *Stress {
	return &Stress{
		name:      "stress_days",
		threshold: threshold,
	}
}

func (s *Stress) Name() string {
	return s.name
}

func (s *Stress) Observe(d sim.DayResult) {
	if !d.Diag.Vegetated {
		return
	}
	s.samples++
	if d.Diag.TranspirationReductionPercent < s.threshold {
		s.stressed++
	}
}

func (s *Stress) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.stressed) / float64(s.samples)
}

func (s *Stress) Reset() {
	s.stressed = 0
	s.samples = 0
}
