package metrics

import (
	"github.com/san-kum/ecopatch/internal/sim"
	"github.com/san-kum/ecopatch/internal/world"
)

// MeanFlux averages a daily patch flux over all patch-days.
type MeanFlux struct {
	name    string
	pick    func(world.Fluxes) float64
	sum     float64
	samples int
}

// NewEvapotranspiration averages evaporation plus transpiration (m/day).
func NewEvapotranspiration() *MeanFlux {
	return &MeanFlux{
		name: "mean_et",
		pick: func(f world.Fluxes) float64 {
			return f.Evaporation + f.EvaporationSurf +
				f.TranspirationUnsatZone + f.TranspirationSatZone +
				f.ExfiltrationUnsatZone + f.ExfiltrationSatZone
		},
	}
}

func NewInfiltration() *MeanFlux {
	return &MeanFlux{name: "mean_infiltration", pick: func(f world.Fluxes) float64 { return f.Infiltration }}
}

func NewNetPhotosynthesis() *MeanFlux {
	return &MeanFlux{name: "mean_net_psn", pick: func(f world.Fluxes) float64 { return f.NetPlantPsn }}
}

func (m *MeanFlux) Name() string {
	return m.name
}

func (m *MeanFlux) Observe(d sim.DayResult) {
	m.sum += m.pick(d.State.Fluxes)
	m.samples++
}

func (m *MeanFlux) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanFlux) Reset() {
	m.sum = 0
	m.samples = 0
}

// Standard is the metric set attached to every run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewWaterResidual(),
		NewCarbonResidual(),
		NewNitrogenResidual(),
		NewStress(0.5),
		NewEvapotranspiration(),
		NewInfiltration(),
		NewNetPhotosynthesis(),
	}
}
