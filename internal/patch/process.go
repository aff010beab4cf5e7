package patch

import (
	"fmt"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/world"
)

// Flags switch optional parts of the daily routine.
type Flags struct {
	Grow          bool
	Groundwater   bool
	SnowScale     bool
	SurfaceEnergy bool
	Verbose       int
}

// Env is the context handed to collaborators for one patch-day.
type Env struct {
	Date       calendar.Date
	World      *world.World
	Zone       *world.Zone
	Hillslope  *world.Hillslope
	Patch      *world.Patch
	Soil       *world.SoilDefaults
	Landuse    *world.LanduseDefaults
	Hydraulics Hydraulics
	Flags      Flags

	// Ground is what reaches the soil surface after the canopy and the
	// snowpack. It is set before the surface process runs.
	Ground world.Cascade
}

// Hydraulics are the soil point functions bound to one soil parameter set.
type Hydraulics interface {
	WaterTableDepth(satDeficit float64) float64
	DeltaWater(zInitial, zFinal float64) float64
	LayerFieldCapacity(zWaterTable, zLayer, zSurface float64) float64
	Infiltration(z, s, ksatVertical, inflow, duration float64) float64
	UnsatZoneDrainage(s, z, ksat, maxDrain float64) float64
	PotentialCapRise(z float64) float64
	WiltingPoint(psiMaxVeg float64) float64
	SurfaceHeatFlux(snowStored, unsatStorage, satDeficit, tavg, tsoil float64) float64
	RadiativeFluxes(flux, ext, lai, albedo float64) (absorbed, transmitted float64)
}

// CanopyProcess runs the daily physics of one stratum. It receives the
// quantities entering the stratum's layer and returns its share of the
// layer exit, weighted by its cover fraction.
type CanopyProcess interface {
	Stratum(env *Env, layer *world.Layer, s *world.Stratum, in world.Cascade) world.Cascade
}

// SurfaceProcess evaporates litter and detention water and sets the
// patch exfiltration demands.
type SurfaceProcess interface {
	Surface(env *Env)
}

type SnowMet struct {
	Tavg          float64
	EDewpoint     float64
	Wind          float64
	Pa            float64
	CloudFraction float64
	Rain          float64
	Snow          float64
}

type SnowResult struct {
	Melt      float64
	Radiation world.Radiation
}

// SnowpackProcess melts and ages the pack. It sets sp.Sublimation but
// leaves removing it from the pack to the caller.
type SnowpackProcess interface {
	Snowpack(date calendar.Date, sp *world.Snowpack, met SnowMet, rad world.Radiation, soil *world.SoilDefaults) SnowResult
}

type SoilMoistureUpdater interface {
	Infiltrate(env *Env, infiltration, netInflow float64)
}

type GrowthProcess interface {
	Grow(env *Env, s *world.Stratum)
}

type Kinetics interface {
	ResolveCompetition(p *world.Patch)
	Decompose(env *Env) error
	DissolvedOrganicLosses(env *Env, rate float64) error
	Nitrify(env *Env) error
	Denitrify(env *Env) error
}

// GroundwaterDrainage may write to the patch's hillslope store.
type GroundwaterDrainage interface {
	Drain(env *Env) error
}

type SepticLoad interface {
	Apply(env *Env) error
}

type ZeroStoreGuard interface {
	Clamp(p *world.Patch)
}

// Processes is the set of collaborators the integrator drives.
type Processes struct {
	Canopy       CanopyProcess
	Surface      SurfaceProcess
	Snowpack     SnowpackProcess
	SoilMoisture SoilMoistureUpdater
	Growth       GrowthProcess
	Kinetics     Kinetics
	Groundwater  GroundwaterDrainage
	Septic       SepticLoad
	ZeroStores   ZeroStoreGuard
	Hydraulics   func(*world.SoilDefaults) Hydraulics
}

func (p Processes) validate() error {
	missing := func(name string) error { return fmt.Errorf("%w: %s", ErrMissingProcess, name) }
	switch {
	case p.Canopy == nil:
		return missing("canopy")
	case p.Surface == nil:
		return missing("surface")
	case p.Snowpack == nil:
		return missing("snowpack")
	case p.SoilMoisture == nil:
		return missing("soil moisture")
	case p.Growth == nil:
		return missing("growth")
	case p.Kinetics == nil:
		return missing("kinetics")
	case p.Groundwater == nil:
		return missing("groundwater")
	case p.Septic == nil:
		return missing("septic")
	case p.ZeroStores == nil:
		return missing("zero stores")
	case p.Hydraulics == nil:
		return missing("hydraulics")
	}
	return nil
}
