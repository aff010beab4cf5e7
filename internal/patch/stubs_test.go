package patch_test

import (
	"fmt"
	"math"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

// linearSoil is a uniform-porosity column with scripted infiltration,
// field capacity, drainage, capillary rise and wilting point.
type linearSoil struct {
	porosity       float64
	fieldCapacity  float64
	backfill       float64
	capRise        float64
	wilting        float64
	drainRate      float64
	infiltration   func(inflow float64) float64
	radiativeCalls int
}

func (s *linearSoil) WaterTableDepth(sd float64) float64 { return sd / s.porosity }
func (s *linearSoil) DeltaWater(zi, zf float64) float64  { return s.porosity * (zi - zf) }

// LayerFieldCapacity returns backfill for intervals below the surface and
// fieldCapacity for layers measured from it.
func (s *linearSoil) LayerFieldCapacity(_, _, zSurface float64) float64 {
	if zSurface > 0 {
		return s.backfill
	}
	return s.fieldCapacity
}

func (s *linearSoil) Infiltration(_, _, _, inflow, _ float64) float64 {
	if s.infiltration == nil {
		return 0
	}
	return s.infiltration(inflow)
}

func (s *linearSoil) UnsatZoneDrainage(_, _, _, maxDrain float64) float64 {
	return math.Max(0, math.Min(s.drainRate, maxDrain))
}

func (s *linearSoil) PotentialCapRise(float64) float64 { return s.capRise }
func (s *linearSoil) WiltingPoint(float64) float64     { return s.wilting }

func (s *linearSoil) SurfaceHeatFlux(_, _, _, _, _ float64) float64 { return 0 }
func (s *linearSoil) RadiativeFluxes(flux, _, _, _ float64) (float64, float64) {
	s.radiativeCalls++
	return 0, flux
}

// recorder collects the order collaborators were called in.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// passCanopy lets everything through and sets a fixed daily demand.
type passCanopy struct {
	rec        *recorder
	unsat, sat float64
}

func (c passCanopy) Stratum(_ *patch.Env, _ *world.Layer, s *world.Stratum, in world.Cascade) world.Cascade {
	c.rec.add("canopy:%d", s.ID)
	s.TranspirationUnsat = c.unsat
	s.TranspirationSat = c.sat
	return in.Scale(s.CoverFraction)
}

type noSurface struct{}

func (noSurface) Surface(*patch.Env) {}

type idleSnowpack struct{ rec *recorder }

func (sp idleSnowpack) Snowpack(_ calendar.Date, pack *world.Snowpack, _ patch.SnowMet, rad world.Radiation, _ *world.SoilDefaults) patch.SnowResult {
	sp.rec.add("snowpack")
	pack.Sublimation = 0
	return patch.SnowResult{Radiation: rad}
}

type rootzoneFill struct{}

func (rootzoneFill) Infiltrate(env *patch.Env, infiltration, _ float64) {
	env.Patch.RZStorage += infiltration
}

type countingGrowth struct{ rec *recorder }

func (g countingGrowth) Grow(_ *patch.Env, s *world.Stratum) { g.rec.add("grow:%d", s.ID) }

type scriptedKinetics struct{ decompose error }

func (scriptedKinetics) ResolveCompetition(p *world.Patch)                { p.NDF.FPI = 1 }
func (k scriptedKinetics) Decompose(*patch.Env) error                     { return k.decompose }
func (scriptedKinetics) DissolvedOrganicLosses(*patch.Env, float64) error { return nil }
func (scriptedKinetics) Nitrify(*patch.Env) error                         { return nil }
func (scriptedKinetics) Denitrify(*patch.Env) error                       { return nil }

type noop struct{}

func (noop) Drain(*patch.Env) error { return nil }
func (noop) Apply(*patch.Env) error { return nil }
func (noop) Clamp(*world.Patch)     {}

type harness struct {
	soil     *linearSoil
	rec      *recorder
	canopy   *passCanopy
	kinetics *scriptedKinetics
}

func newHarness() *harness {
	rec := &recorder{}
	return &harness{
		soil:     &linearSoil{porosity: 0.5},
		rec:      rec,
		canopy:   &passCanopy{rec: rec},
		kinetics: &scriptedKinetics{},
	}
}

func (h *harness) processes() patch.Processes {
	return patch.Processes{
		Canopy:       h.canopy,
		Surface:      noSurface{},
		Snowpack:     idleSnowpack{rec: h.rec},
		SoilMoisture: rootzoneFill{},
		Growth:       countingGrowth{rec: h.rec},
		Kinetics:     h.kinetics,
		Groundwater:  noop{},
		Septic:       noop{},
		ZeroStores:   noop{},
		Hydraulics:   func(*world.SoilDefaults) patch.Hydraulics { return h.soil },
	}
}

// singlePatch is one hillslope, zone and patch with a grass layer at
// each of the given heights, listed shortest first.
func singlePatch(heights ...float64) *world.World {
	w := &world.World{
		Hillslopes: []world.Hillslope{{Zones: []world.ZoneID{0}, Patches: []world.PatchID{0}, Area: 1}},
		Zones:      []world.Zone{{Patches: []world.PatchID{0}, ScreenHeight: 2}},
		Soils:      []world.SoilDefaults{{Name: "test", SoilDepth: 2}},
		Landuses:   []world.LanduseDefaults{{Name: "test"}},
		Vegetation: []world.VegDefaults{{Name: "grass", Type: world.Grass, PsiMax: -1.5}},
	}
	p := world.Patch{
		Area:        1,
		SatDeficit:  0.5,
		SatDeficitZ: 1,
		Rootzone:    world.Rootzone{Depth: 0.3, PotentialSat: 0.15},
	}
	for i, h := range heights {
		id := world.StratumID(i)
		w.Strata = append(w.Strata, world.Stratum{ID: id, CoverFraction: 1})
		p.Layers = append(p.Layers, world.Layer{Height: h, Strata: []world.StratumID{id}})
	}
	w.Patches = []world.Patch{p}
	return w
}
