package hydraulics

import "math"

// Infiltration returns the Philip infiltration of inflow (m) delivered over
// duration (days) into a column with water table at z and surface
// saturation s. Before the ponding time all inflow enters the soil.
// ksatVertical is the permeable fraction of the surface.
func Infiltration(p Profile, z, s, ksatVertical, ksat0V, mzV, psiAirEntry, inflow, duration float64) float64 {
	if inflow <= 0 || z <= 0 {
		return 0
	}
	if duration <= 0 {
		duration = 1
	}
	dtheta := p.Porosity(0) * (1 - clamp01(s))
	if dtheta <= 0 {
		return 0
	}
	k := KsatAverage(ksat0V, mzV, z)
	intensity := inflow / duration

	f := inflow
	if intensity > k {
		tp := k * psiAirEntry * dtheta / (intensity * (intensity - k))
		if tp < duration {
			sp := math.Sqrt(2 * k * psiAirEntry * dtheta)
			rest := duration - tp
			f = math.Min(intensity*tp+sp*math.Sqrt(rest)+k*rest, inflow)
		}
	}
	return ksatVertical * f
}

// UnsatZoneDrainage is the gravity drainage out of a layer of depth z at
// saturation s, limited to maxDrain (the water above field capacity).
func UnsatZoneDrainage(r Retention, s, mz, z, ksat0, maxDrain float64) float64 {
	if maxDrain <= 0 {
		return 0
	}
	k := KsatAverage(ksat0, mz, z) * r.RelativeConductivity(s)
	return math.Max(math.Min(k, maxDrain), 0)
}

// PotentialCapRise is the steady Gardner upflux from a water table at
// depth z, with the Brooks-Corey exponent n = 2 + 3*lambda.
func PotentialCapRise(r Retention, z, ksat0, mz float64) float64 {
	if z <= 0 {
		return 0
	}
	n := 2 + 3*r.PoreSizeIndex
	ratio := 1.0
	if z > r.PsiAirEntry {
		ratio = math.Pow(r.PsiAirEntry/z, n)
	}
	return KsatAverage(ksat0, mz, z) * (1 + 1.5/(n-1)) * ratio
}

// WiltingPointCoefficient is the fractional rootzone storage left at the
// plant's maximum suction psiMaxVeg (MPa, negative). The caller scales it
// by the available pore volume.
func WiltingPointCoefficient(porosity0, psiAirEntry, poreSizeIndex, psiMaxVeg float64) float64 {
	if psiAirEntry <= 0 {
		return 0
	}
	ratio := -100 * psiMaxVeg / psiAirEntry
	if ratio <= 0 {
		return 0
	}
	return porosity0 * math.Exp(-math.Log(ratio)*poreSizeIndex)
}

// SurfaceHeatFlux returns the soil heat flux (kJ/m2/day) into the column
// for a surface layer of thickness deltaZ. The heat capacity is interpolated
// between minHC and maxHC by near-surface moisture. Snow insulates the soil
// and gives zero flux.
func SurfaceHeatFlux(snowStored, unsatStorage, satDeficit, tavg, tsoil, deltaZ, minHC, maxHC float64) float64 {
	if snowStored > 0 {
		return 0
	}
	theta := 1.0
	if satDeficit > 0 {
		theta = clamp01(unsatStorage / satDeficit)
	}
	hc := minHC + theta*(maxHC-minHC)
	return hc * deltaZ * (tavg - tsoil)
}

// RadiativeFluxes splits a downward flux over a canopy of the given leaf
// area into the absorbed and transmitted parts. The reflected part is lost.
func RadiativeFluxes(flux, ext, lai, albedo float64) (absorbed, transmitted float64) {
	net := flux * (1 - albedo)
	transmitted = net * math.Exp(-ext*lai)
	return net - transmitted, transmitted
}
