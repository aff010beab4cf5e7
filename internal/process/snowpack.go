package process

import (
	"math"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

// Snowpack is a degree-day plus radiation melt model with a cold content
// that must be satisfied before melt leaves the pack.
type Snowpack struct {
	FreshAlbedo     float64
	AgedAlbedo      float64
	AlbedoAgeScale  float64 // days
	FreshDensity    float64
	SettledDensity  float64
	DensityAgeScale float64 // days
	SublimationRate float64 // m per (m/s) of wind per day
}

func DefaultSnowpack() Snowpack {
	return Snowpack{
		FreshAlbedo:     0.85,
		AgedAlbedo:      0.5,
		AlbedoAgeScale:  5,
		FreshDensity:    0.1,
		SettledDensity:  0.4,
		DensityAgeScale: 10,
		SublimationRate: 1e-4,
	}
}

func (m Snowpack) albedo(age float64) float64 {
	return m.AgedAlbedo + (m.FreshAlbedo-m.AgedAlbedo)*math.Exp(-age/m.AlbedoAgeScale)
}

func (m Snowpack) density(age float64) float64 {
	return m.FreshDensity + (m.SettledDensity-m.FreshDensity)*(1-math.Exp(-age/m.DensityAgeScale))
}

func (m Snowpack) Snowpack(_ calendar.Date, sp *world.Snowpack, met patch.SnowMet, rad world.Radiation, soil *world.SoilDefaults) patch.SnowResult {
	albedo := m.albedo(sp.SurfaceAge)

	potential := rad.Kdown() * (1 - albedo) / latentFusion
	warm := math.Max(met.Tavg, 0)
	potential += warm * soil.SnowMeltTcoef
	// Rain carries sensible heat into the pack (c_w/L_f ~ 1/80 per degC).
	potential += met.Rain * warm / 80

	if met.Tavg < 0 {
		sp.EnergyDeficit = math.Max(sp.EnergyDeficit+met.Tavg*soil.SnowMeltTcoef, -math.Abs(soil.MaximumSnowEnergyDeficit))
	}
	if sp.EnergyDeficit < 0 {
		refill := math.Min(potential, -sp.EnergyDeficit)
		sp.EnergyDeficit += refill
		potential -= refill
	}

	melt := math.Min(math.Max(potential, 0), sp.WaterEquivalentDepth)
	sp.WaterEquivalentDepth -= melt

	sp.Sublimation = 0
	if met.Tavg < 0 {
		sp.Sublimation = math.Min(sp.WaterEquivalentDepth, m.SublimationRate*met.Wind*(1-clamp01(met.CloudFraction)))
	}

	// Liquid water is held up to the pack's capacity; the rest drains.
	liquid := melt + sp.WaterDepth
	held := math.Min(liquid, soil.SnowWaterCapacity*(sp.WaterEquivalentDepth-sp.Sublimation))
	held = math.Max(held, 0)
	sp.WaterDepth = held
	out := liquid - held

	sp.SurfaceAge++
	sp.Height = (sp.WaterEquivalentDepth + sp.WaterDepth) / m.density(sp.SurfaceAge)

	trans := (1 - albedo) * math.Exp(-soil.SnowLightExtCoef*sp.Height)
	return patch.SnowResult{Melt: out, Radiation: rad.Scale(trans)}
}
