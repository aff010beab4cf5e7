package process

import (
	"math"

	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

// Growth moves net photosynthesis into the labile pool, takes up mineral
// N, allocates to leaf, root and stem, and drops leaf litter.
type Growth struct {
	// DailyAllocation is the fraction of the labile pool allocated per day.
	DailyAllocation float64
}

func DefaultGrowth() Growth {
	return Growth{DailyAllocation: 0.2}
}

func (g Growth) Grow(env *patch.Env, s *world.Stratum) {
	if !env.Flags.Grow {
		s.CS.NetPsn = 0
		s.NDF.ActualNUptake = 0
		s.CDF.Litterfall = 0
		return
	}
	p := env.Patch
	veg := env.World.Veg(s)

	s.CDF.TotalMR = math.Min(s.CDF.TotalMR, s.CS.Cpool+s.CDF.PsnToCpool)
	s.CS.Availc = s.CDF.PsnToCpool - s.CDF.TotalMR
	s.CS.NetPsn = s.CS.Availc
	s.CS.Cpool += s.CS.Availc

	g.uptake(p, s)
	g.allocate(veg, s)
	litterfall(p, veg, s)

	if veg.SLA > 0 {
		s.LAI = s.CS.Leafc * veg.SLA
	}
}

// uptake draws the stratum's N demand from ammonium, then nitrate,
// limited by the competition fraction.
func (Growth) uptake(p *world.Patch, s *world.Stratum) {
	s.NDF.ActualNUptake = 0
	if s.CoverFraction <= 0 || s.NDF.PotentialNUptake <= 0 {
		return
	}
	perArea := s.NDF.PotentialNUptake * p.NDF.FPI * s.CoverFraction
	perArea = math.Min(perArea, math.Max(p.SoilN.Sminn, 0)+math.Max(p.SoilN.Nitrate, 0))
	if perArea <= 0 {
		return
	}
	fromNH4 := math.Min(perArea, math.Max(p.SoilN.Sminn, 0))
	p.SoilN.Sminn -= fromNH4
	p.SoilN.Nitrate -= perArea - fromNH4
	p.NDF.PlantUptake += perArea

	s.NDF.ActualNUptake = perArea / s.CoverFraction
	s.NS.Npool += s.NDF.ActualNUptake
}

func (g Growth) allocate(veg *world.VegDefaults, s *world.Stratum) {
	total := veg.AllocLeaf + veg.AllocFroot + veg.AllocStem
	if total <= 0 || s.CS.Cpool <= 0 {
		return
	}
	allocC := g.DailyAllocation * s.CS.Cpool
	need := allocC * nitrogenPerCarbon(veg)
	if need > s.NS.Npool {
		if need <= 0 {
			return
		}
		allocC *= math.Max(s.NS.Npool, 0) / need
		need = math.Max(s.NS.Npool, 0)
	}

	leaf := allocC * veg.AllocLeaf / total
	froot := allocC * veg.AllocFroot / total
	stem := allocC * veg.AllocStem / total
	s.CS.Leafc += leaf
	s.CS.Frootc += froot
	s.CS.Stemc += stem
	s.CS.Cpool -= allocC

	var n float64
	if veg.LeafCN > 0 {
		s.NS.Leafn += leaf / veg.LeafCN
		n += leaf / veg.LeafCN
	}
	if veg.FrootCN > 0 {
		s.NS.Frootn += froot / veg.FrootCN
		n += froot / veg.FrootCN
	}
	if veg.StemCN > 0 {
		s.NS.Stemn += stem / veg.StemCN
		n += stem / veg.StemCN
	}
	s.NS.Npool -= n
}

// litterfall moves the day's leaf turnover into the patch litter pools,
// weighted by cover.
func litterfall(p *world.Patch, veg *world.VegDefaults, s *world.Stratum) {
	s.CDF.Litterfall = 0
	fractions := veg.LitterLabile + veg.LitterCell + veg.LitterLignin
	if veg.LeafTurnover <= 0 || fractions <= 0 {
		return
	}
	rate := veg.LeafTurnover / 365
	c := s.CS.Leafc * rate
	n := s.NS.Leafn * rate
	s.CS.Leafc -= c
	s.NS.Leafn -= n
	s.CDF.Litterfall = c

	cover := s.CoverFraction
	labile := veg.LitterLabile / fractions
	cell := veg.LitterCell / fractions
	lignin := veg.LitterLignin / fractions
	p.LitterC.Litr1c += cover * c * labile
	p.LitterC.Litr2c += cover * c * cell
	p.LitterC.Litr4c += cover * c * lignin
	p.LitterN.Litr1n += cover * n * labile
	p.LitterN.Litr2n += cover * n * cell
	p.LitterN.Litr4n += cover * n * lignin
}
