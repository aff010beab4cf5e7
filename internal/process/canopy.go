package process

import (
	"math"

	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

const (
	mrQ10          = 2.0
	sublimationMax = 0.5
	windExtinction = 0.5
	shadeFraction  = 0.5
)

// Canopy intercepts light and precipitation with Beer-Lambert attenuation
// and evaporates intercepted water before transpiring.
type Canopy struct{}

func (Canopy) Stratum(env *patch.Env, _ *world.Layer, s *world.Stratum, in world.Cascade) world.Cascade {
	veg := env.World.Veg(s)
	h := env.Hydraulics
	f := env.Zone.Forcing
	vegetated := veg.Type != world.NonVeg

	lai := s.LAI
	if env.Flags.Grow && vegetated && veg.SLA > 0 {
		lai = s.CS.Leafc * veg.SLA
		s.LAI = lai
	}

	absDirect, trDirect := h.RadiativeFluxes(in.KdownDirect, veg.ExtCoef, lai, veg.Albedo)
	absDiffuse, trDiffuse := h.RadiativeFluxes(in.KdownDiffuse, veg.ExtCoef, lai, veg.Albedo)
	absPARDirect, trPARDirect := h.RadiativeFluxes(in.PARDirect, veg.ExtCoef, lai, veg.Albedo)
	absPARDiffuse, trPARDiffuse := h.RadiativeFluxes(in.PARDiffuse, veg.ExtCoef, lai, veg.Albedo)
	s.AbsorbedKdown = absDirect + absDiffuse
	s.AbsorbedPAR = absPARDirect + absPARDiffuse

	rainIn := math.Max(0, math.Min(in.Rain, veg.RainInterceptCoef*lai-s.RainStored))
	s.RainStored += rainIn
	rainThrough := in.Rain - rainIn

	snowIn := math.Max(0, math.Min(in.Snow, veg.SnowInterceptCoef*lai-s.SnowStored))
	s.SnowStored += snowIn
	snowThrough := in.Snow - snowIn
	if f.Tavg > 0 && s.SnowStored > 0 {
		// Warm days unload intercepted snow as drip.
		rainThrough += s.SnowStored
		s.SnowStored = 0
	}

	pet := s.AbsorbedKdown / latentHeat
	s.PET = pet
	s.Evaporation = math.Min(s.RainStored, pet)
	s.RainStored -= s.Evaporation
	energy := pet - s.Evaporation
	s.Sublimation = math.Min(s.SnowStored, sublimationMax*energy)
	s.SnowStored -= s.Sublimation
	energy -= s.Sublimation

	s.TranspirationUnsat, s.TranspirationSat = 0, 0
	s.CDF.PsnToCpool = 0
	s.GsSunlit, s.GsShade = 0, 0
	s.MultConductance.LWP = 1
	if vegetated && lai > 0 && f.Tavg > 0 && energy > 0 {
		t := energy * veg.TranspirationCoef
		satShare := 0.0
		if z := env.Patch.SatDeficitZ; s.RootDepth > 0 && z < s.RootDepth {
			satShare = clamp01((s.RootDepth - math.Max(z, 0)) / s.RootDepth)
		}
		s.TranspirationSat = t * satShare
		s.TranspirationUnsat = t - s.TranspirationSat
		s.GsSunlit = veg.GsMax * clamp01(t/pet)
		s.GsShade = shadeFraction * s.GsSunlit
		s.CDF.PsnToCpool = veg.WUE * t
	}

	s.CDF.TotalMR = 0
	if vegetated {
		mr := veg.MRCoef * (s.CS.Leafc + s.CS.Frootc) * math.Pow(mrQ10, (f.Tavg-20)/10)
		s.CDF.TotalMR = math.Max(0, math.Min(mr, s.CS.Cpool+s.CDF.PsnToCpool))
	}
	s.CS.Availc = s.CDF.PsnToCpool - s.CDF.TotalMR
	s.NDF.PotentialNUptake = 0
	if s.CS.Availc > 0 {
		s.NDF.PotentialNUptake = s.CS.Availc * nitrogenPerCarbon(veg)
	}

	shelter := math.Exp(-windExtinction * lai)
	out := world.Cascade{
		Radiation: world.Radiation{
			KdownDirect:  trDirect,
			KdownDiffuse: trDiffuse,
			PARDirect:    trPARDirect,
			PARDiffuse:   trPARDiffuse,
		},
		Rain: rainThrough,
		Snow: snowThrough,
		Ga:   in.Ga * shelter,
		Wind: in.Wind * shelter,
	}
	return out.Scale(s.CoverFraction)
}

// nitrogenPerCarbon is the N needed per unit of newly allocated carbon.
func nitrogenPerCarbon(veg *world.VegDefaults) float64 {
	total := veg.AllocLeaf + veg.AllocFroot + veg.AllocStem
	if total <= 0 {
		return 0
	}
	var n float64
	if veg.LeafCN > 0 {
		n += veg.AllocLeaf / veg.LeafCN
	}
	if veg.FrootCN > 0 {
		n += veg.AllocFroot / veg.FrootCN
	}
	if veg.StemCN > 0 {
		n += veg.AllocStem / veg.StemCN
	}
	return n / total
}
