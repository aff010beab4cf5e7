package patch

import (
	"math"

	"github.com/san-kum/ecopatch/internal/world"
)

// collectDemand sums the stratum demands, evaporation and intercepted
// stores into the patch totals.
func (d *day) collectDemand() {
	p, w := d.p, d.env.World
	p.Fluxes.TranspirationSatZone = 0
	p.Fluxes.TranspirationUnsatZone = 0
	p.Fluxes.Evaporation = p.Snowpack.Sublimation
	p.NDF.PlantPotentialNDemand = 0

	rain := p.Litter.RainStored
	snow := 0.0
	unsat := p.Fluxes.ExfiltrationUnsatZone
	sat := p.Fluxes.ExfiltrationSatZone
	psiMax := math.Inf(1)

	for _, s := range w.PatchStrata(p) {
		c := s.CoverFraction
		p.NDF.PlantPotentialNDemand += c * s.NDF.PotentialNUptake
		p.Fluxes.Evaporation += c * (s.Evaporation + s.Sublimation)
		rain += c * s.RainStored
		snow += c * s.SnowStored
		unsat += c * s.TranspirationUnsat
		sat += c * s.TranspirationSat
		if veg := w.Veg(s); veg.Type != world.NonVeg && veg.PsiMax < psiMax {
			psiMax = veg.PsiMax
		}
	}
	if !math.IsInf(psiMax, 1) {
		p.PsiMaxVeg = psiMax
	}
	p.RainStored, p.SnowStored = rain, snow
	p.Fluxes.PET = p.Fluxes.Evaporation + p.Fluxes.EvaporationSurf

	d.unsatDemand, d.satDemand = unsat, sat
	d.diag.UnsatDemandInitial, d.diag.SatDemandInitial = unsat, sat
}

// arbitrateDemand meets the day's transpiration and exfiltration demand
// from the column, wettest and nearest source first, and feeds the unmet
// fraction back into the strata before they grow.
func (d *day) arbitrateDemand() error {
	p, h, soil := d.p, d.h, d.env.Soil
	d.collectDemand()
	rzDepth := p.Rootzone.Depth

	z := d.waterTable()
	zBefore := z

	// Saturated water inside the rooting depth.
	avail := math.Max(math.Min(h.DeltaWater(rzDepth, z), d.satDemand), 0)
	p.SatDeficit += avail
	d.satDemand -= avail
	z = d.waterTable()
	d.diag.AvailableSatWater = avail

	if avail > zero {
		d.backfillFieldCapacity(zBefore, z)
	}

	above := math.Min(math.Max(p.RZStorage-p.Rootzone.FieldCapacity, 0), d.unsatDemand)
	p.RZStorage -= above
	d.unsatDemand -= above

	p.Rootzone.FieldCapacity = h.LayerFieldCapacity(z, rzDepth, 0)
	if z < rzDepth {
		p.FieldCapacity = 0
	} else {
		p.FieldCapacity = h.LayerFieldCapacity(z, z, 0) - p.Rootzone.FieldCapacity
	}

	var belowFC float64
	if z > rzDepth {
		belowFC = p.Rootzone.FieldCapacity - p.RZStorage
	} else {
		belowFC = p.Rootzone.FieldCapacity - p.RZStorage - (p.Rootzone.PotentialSat - p.SatDeficit)
	}
	capRise := math.Max(math.Min(p.PotentialCapRise, math.Min(d.unsatDemand, belowFC)), 0)
	capRise = math.Min(h.DeltaWater(soil.SoilDepth, z), capRise)
	capRise = math.Max(capRise, 0)
	d.unsatDemand -= math.Min(capRise, d.unsatDemand)
	p.CapRise += capRise
	p.PotentialCapRise -= capRise
	p.SatDeficit += capRise
	d.diag.CapRise = capRise

	// Below field capacity, down to the wilting point.
	draw := math.Min(d.unsatDemand, p.RZStorage)
	if p.RZStorage > zero && p.SatDeficit > zero {
		p.WiltingPoint = h.WiltingPoint(p.PsiMaxVeg) * math.Min(p.SatDeficit, p.Rootzone.PotentialSat)
		draw = math.Max(math.Min(p.RZStorage-p.WiltingPoint, draw), 0)
	} else {
		p.WiltingPoint = 0
	}
	p.RZStorage -= draw
	d.unsatDemand -= draw

	if d.in.flags.Grow {
		d.in.procs.Kinetics.ResolveCompetition(p)
	}

	d.diag.UnsatDemandFinal, d.diag.SatDemandFinal = d.unsatDemand, d.satDemand
	trp := reductionPercent(d.diag.UnsatDemandInitial+d.diag.SatDemandInitial, d.unsatDemand+d.satDemand)
	d.diag.TranspirationReductionPercent = trp
	d.feedback(trp)
	return nil
}

// reductionPercent is the fraction of the initial demand that was met.
func reductionPercent(initial, unmet float64) float64 {
	if initial <= zero {
		return 1
	}
	return math.Max(0, math.Min(1, 1-unmet/initial))
}

// metFraction is the share of one zone's demand that was met.
func metFraction(initial, unmet float64) float64 {
	if initial <= 0 {
		return 1
	}
	return 1 - unmet/initial
}

// backfillFieldCapacity leaves behind the field capacity water of the
// interval [zBefore, zAfter] the water table dropped through. The water is
// split between rootzone and unsaturated storage by where the table moved
// since the start of the day.
func (d *day) backfillFieldCapacity(zBefore, zAfter float64) {
	p := d.p
	add := math.Max(d.h.LayerFieldCapacity(zAfter, zAfter, zBefore), 0)
	p.SatDeficit += add
	d.diag.AddedFieldCapacity = add

	rz, pre := p.Rootzone.Depth, p.Preday.SatDeficitZ
	switch {
	case zAfter > rz && pre > rz:
		p.UnsatStorage += add
	case zAfter <= rz && pre <= rz:
		p.RZStorage += add
	default:
		span := zAfter - pre
		if math.Abs(span) <= zero {
			p.RZStorage += add
			return
		}
		inRZ := math.Max(0, math.Min(1, (rz-pre)/span))
		p.RZStorage += add * inRZ
		p.UnsatStorage += add * (1 - inRZ)
	}
}

// feedback scales the strata by the day's water stress, grows them and
// sums the realized fluxes back to the patch.
func (d *day) feedback(trp float64) {
	p, w := d.p, d.env.World
	fu := metFraction(d.diag.UnsatDemandInitial, d.unsatDemand)
	fs := metFraction(d.diag.SatDemandInitial, d.satDemand)

	p.Fluxes.ExfiltrationUnsatZone *= fu
	p.Fluxes.ExfiltrationSatZone *= fs
	p.Fluxes.PET += p.Fluxes.ExfiltrationSatZone + p.Fluxes.ExfiltrationUnsatZone
	p.Fluxes.NetPlantPsn = 0
	p.Fluxes.LAI = 0

	vegetated := false
	for _, s := range w.PatchStrata(p) {
		if w.Veg(s).Type != world.NonVeg {
			if trp < 1 {
				s.CDF.PsnToCpool *= trp
				s.CS.Availc = (s.CS.Availc+s.CDF.TotalMR)*trp - s.CDF.TotalMR
				s.GsSunlit *= trp
				s.GsShade *= trp
				s.MultConductance.LWP *= trp
				s.NDF.PotentialNUptake *= trp
			}
			vegetated = true
			d.in.procs.Growth.Grow(d.env, s)
		} else if s.Phen.AnnualAllocation {
			s.CDF.LeafcStoreToLeafcTransfer = s.CS.LeafcStore
			s.CS.LeafcTransfer += s.CS.LeafcStore
			s.CS.LeafcStore = 0
			s.NDF.LeafnStoreToLeafnTransfer = s.NS.LeafnStore
			s.NS.LeafnTransfer += s.NS.LeafnStore
			s.NS.LeafnStore = 0
		}

		s.TranspirationUnsat *= fu
		s.TranspirationSat *= fs
		c := s.CoverFraction
		p.Fluxes.TranspirationUnsatZone += c * s.TranspirationUnsat
		p.Fluxes.TranspirationSatZone += c * s.TranspirationSat
		p.Fluxes.PET += c * s.PET
		p.Fluxes.NetPlantPsn += c * s.CS.NetPsn
		s.AccYearPsn += s.CS.NetPsn
		p.Fluxes.LAI += c * s.LAI
	}
	d.diag.Vegetated = vegetated
}
