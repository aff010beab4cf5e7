// Package process provides simple mass-conserving implementations of the
// collaborators driven by the patch integrator. They are not meant to be
// faithful biophysics; each moves water, carbon and nitrogen only between
// stores the closure diagnostics account for.
package process

import (
	"github.com/san-kum/ecopatch/internal/hydraulics"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

const (
	// latentHeat of vaporization per m of water (kJ/m3).
	latentHeat = 2.45e6
	// latentFusion per m of water (kJ/m3).
	latentFusion = 3.34e5
)

// Defaults returns the full default collaborator set.
func Defaults() patch.Processes {
	return patch.Processes{
		Canopy:       Canopy{},
		Surface:      Surface{},
		Snowpack:     DefaultSnowpack(),
		SoilMoisture: SoilMoisture{},
		Growth:       DefaultGrowth(),
		Kinetics:     DefaultKinetics(),
		Groundwater:  Groundwater{},
		Septic:       Septic{},
		ZeroStores:   ZeroStores{},
		Hydraulics:   SoilHydraulics,
	}
}

func SoilHydraulics(d *world.SoilDefaults) patch.Hydraulics {
	return hydraulics.ForSoil(d)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
