package metrics

import (
	"math"

	"github.com/san-kum/ecopatch/internal/sim"
	"github.com/san-kum/ecopatch/internal/world"
)

// Residual tracks the largest absolute closure residual seen in a run.
type Residual struct {
	name    string
	pick    func(world.Balance) float64
	max     float64
	samples int
}

func NewWaterResidual() *Residual {
	return &Residual{name: "max_water_residual", pick: func(b world.Balance) float64 { return b.Water }}
}

func NewCarbonResidual() *Residual {
	return &Residual{name: "max_carbon_residual", pick: func(b world.Balance) float64 { return b.Carbon }}
}

func NewNitrogenResidual() *Residual {
	return &Residual{name: "max_nitrogen_residual", pick: func(b world.Balance) float64 { return b.Nitrogen }}
}

func (r *Residual) Name() string { return r.name }

func (r *Residual) Observe(d sim.DayResult) {
	r.max = math.Max(r.max, math.Abs(r.pick(d.Diag.Balance)))
	r.samples++
}

func (r *Residual) Value() float64 { return r.max }

func (r *Residual) Reset() {
	r.max = 0
	r.samples = 0
}
