package process

import (
	"math"

	"github.com/san-kum/ecopatch/internal/patch"
)

const (
	soilAlbedo = 0.2
	// exfiltrationDepth is the water table depth above which bare soil
	// evaporation draws on the saturated zone.
	exfiltrationDepth = 0.1
)

// Surface fills the litter store from the detention store, evaporates
// litter then detention water and sets the bare-soil exfiltration demand
// from whatever energy is left.
type Surface struct{}

func (Surface) Surface(env *patch.Env) {
	p := env.Patch
	capacity := env.Landuse.LitterRainCapacity

	take := math.Max(0, math.Min(capacity-p.Litter.RainStored, p.DetentionStore))
	p.Litter.RainStored += take
	p.DetentionStore -= take

	energy := env.Ground.Kdown() * (1 - soilAlbedo) / latentHeat
	if p.Snowpack.WaterEquivalentDepth > 0 || energy < 0 {
		energy = 0
	}

	fromLitter := math.Min(p.Litter.RainStored, energy)
	p.Litter.RainStored -= fromLitter
	energy -= fromLitter
	fromDetention := math.Min(p.DetentionStore, energy)
	p.DetentionStore -= fromDetention
	energy -= fromDetention
	p.Fluxes.EvaporationSurf = fromLitter + fromDetention

	wetness := p.S
	if p.Rootzone.Depth > 0 {
		wetness = p.Rootzone.S
	}
	demand := energy * clamp01(wetness)
	if p.SatDeficitZ <= exfiltrationDepth {
		p.Fluxes.ExfiltrationSatZone = demand
		p.Fluxes.ExfiltrationUnsatZone = 0
	} else {
		p.Fluxes.ExfiltrationUnsatZone = demand
		p.Fluxes.ExfiltrationSatZone = 0
	}
}
