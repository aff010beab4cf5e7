package world

import "gonum.org/v1/gonum/floats"

// SoilLitterC is the carbon held in soil, litter and surface dissolved pools.
func (p *Patch) SoilLitterC() float64 {
	return floats.Sum([]float64{
		p.SoilC.Soil1c, p.SoilC.Soil2c, p.SoilC.Soil3c, p.SoilC.Soil4c, p.SoilC.DOC,
		p.LitterC.Litr1c, p.LitterC.Litr2c, p.LitterC.Litr3c, p.LitterC.Litr4c,
		p.Surface.DOC,
	})
}

// SoilLitterN is the nitrogen held in soil, litter, surface and fertilizer
// carry-over pools.
func (p *Patch) SoilLitterN() float64 {
	return floats.Sum([]float64{
		p.SoilN.Soil1n, p.SoilN.Soil2n, p.SoilN.Soil3n, p.SoilN.Soil4n,
		p.SoilN.Sminn, p.SoilN.Nitrate, p.SoilN.DON,
		p.LitterN.Litr1n, p.LitterN.Litr2n, p.LitterN.Litr3n, p.LitterN.Litr4n,
		p.Surface.NO3, p.Surface.NH4, p.Surface.DON,
		p.Surface.FertilizerNO3, p.Surface.FertilizerNH4,
	})
}

// Totals returns patch carbon and nitrogen including the cover weighted
// vegetation pools.
func (w *World) Totals(p *Patch) (totalC, totalN float64) {
	strata := w.PatchStrata(p)
	cs := make([]float64, 0, len(strata)+1)
	ns := make([]float64, 0, len(strata)+1)
	for _, s := range strata {
		cs = append(cs, s.CoverFraction*s.CS.Total())
		ns = append(ns, s.CoverFraction*s.NS.Total())
	}
	cs = append(cs, p.SoilLitterC())
	ns = append(ns, p.SoilLitterN())
	return floats.Sum(cs), floats.Sum(ns)
}

// InterceptedWater returns the cover weighted rain (including litter) and
// snow held above the soil surface.
func (w *World) InterceptedWater(p *Patch) (rain, snow float64) {
	rain = p.Litter.RainStored
	for _, s := range w.PatchStrata(p) {
		rain += s.CoverFraction * s.RainStored
		snow += s.CoverFraction * s.SnowStored
	}
	return rain, snow
}

// ColumnStorage is the liquid soil water of the patch relative to a full
// column: rootzone plus unsaturated storage minus the saturation deficit.
func (p *Patch) ColumnStorage() float64 {
	return p.RZStorage + p.UnsatStorage - p.SatDeficit
}
