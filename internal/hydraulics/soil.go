package hydraulics

import "github.com/san-kum/ecopatch/internal/world"

// Soil binds the point functions to one soil parameter set.
type Soil struct {
	Profile   Profile
	Retention Retention
	defaults  world.SoilDefaults
}

func ForSoil(d *world.SoilDefaults) *Soil {
	return &Soil{
		Profile: Profile{
			Porosity0:     d.Porosity0,
			PorosityDecay: d.PorosityDecay,
			SoilDepth:     d.SoilDepth,
		},
		Retention: Retention{
			Curve:         d.Curve,
			PsiAirEntry:   d.PsiAirEntry,
			PoreSizeIndex: d.PoreSizeIndex,
			P3:            d.P3,
			P4:            d.P4,
		},
		defaults: *d,
	}
}

func (s *Soil) WaterTableDepth(satDeficit float64) float64 {
	return WaterTableDepth(s.Profile, satDeficit)
}

func (s *Soil) DeltaWater(zInitial, zFinal float64) float64 {
	return DeltaWater(s.Profile, zInitial, zFinal)
}

func (s *Soil) LayerFieldCapacity(zWaterTable, zLayer, zSurface float64) float64 {
	return LayerFieldCapacity(s.Profile, s.Retention, zWaterTable, zLayer, zSurface)
}

func (s *Soil) Infiltration(z, sat, ksatVertical, inflow, duration float64) float64 {
	d := s.defaults
	return Infiltration(s.Profile, z, sat, ksatVertical, d.Ksat0V, d.MzV, d.PsiAirEntry, inflow, duration)
}

func (s *Soil) UnsatZoneDrainage(sat, z, ksat, maxDrain float64) float64 {
	return UnsatZoneDrainage(s.Retention, sat, s.defaults.MzV, z, ksat, maxDrain)
}

func (s *Soil) PotentialCapRise(z float64) float64 {
	return PotentialCapRise(s.Retention, z, s.defaults.Ksat0V, s.defaults.MzV)
}

func (s *Soil) WiltingPoint(psiMaxVeg float64) float64 {
	return WiltingPointCoefficient(s.Profile.Porosity0, s.Retention.PsiAirEntry, s.Retention.PoreSizeIndex, psiMaxVeg)
}

func (s *Soil) SurfaceHeatFlux(snowStored, unsatStorage, satDeficit, tavg, tsoil float64) float64 {
	d := s.defaults
	return SurfaceHeatFlux(snowStored, unsatStorage, satDeficit, tavg, tsoil, d.DeltaZ, d.MinHeatCapacity, d.MaxHeatCapacity)
}

func (s *Soil) RadiativeFluxes(flux, ext, lai, albedo float64) (absorbed, transmitted float64) {
	return RadiativeFluxes(flux, ext, lai, albedo)
}
