package hydraulics

import "math"

// ConstantPorosityDecay and above mark a uniform porosity profile.
const ConstantPorosityDecay = 999.0

// Profile describes the porosity profile of a soil column.
type Profile struct {
	Porosity0     float64
	PorosityDecay float64
	SoilDepth     float64
}

func (p Profile) uniform() bool {
	return p.PorosityDecay <= 0 || p.PorosityDecay >= ConstantPorosityDecay
}

// Porosity returns n(z).
func (p Profile) Porosity(z float64) float64 {
	if p.uniform() || z <= 0 {
		return p.Porosity0
	}
	return p.Porosity0 * math.Exp(-z/p.PorosityDecay)
}

// CumulativeWater is the pore volume between the surface and depth z.
// Heights above the surface (z < 0) count as free water.
func (p Profile) CumulativeWater(z float64) float64 {
	if z < 0 {
		return z
	}
	if p.uniform() {
		return p.Porosity0 * z
	}
	m := p.PorosityDecay
	return p.Porosity0 * m * (1 - math.Exp(-z/m))
}

// depthOf inverts CumulativeWater. Results are clamped to the soil depth.
func (p Profile) depthOf(w float64) float64 {
	if w < 0 {
		return w
	}
	var z float64
	switch {
	case p.Porosity0 <= 0:
		z = p.SoilDepth
	case p.uniform():
		z = w / p.Porosity0
	default:
		frac := 1 - w/(p.Porosity0*p.PorosityDecay)
		if frac <= 0 {
			z = p.SoilDepth
		} else {
			z = -p.PorosityDecay * math.Log(frac)
		}
	}
	if p.SoilDepth > 0 && z > p.SoilDepth {
		z = p.SoilDepth
	}
	return z
}

// DeltaWater returns the pore volume between zInitial and zFinal,
// positive when zFinal is shallower.
func DeltaWater(p Profile, zInitial, zFinal float64) float64 {
	return p.CumulativeWater(zInitial) - p.CumulativeWater(zFinal)
}

// ZFinal returns the depth reached from zInitial after deltaWater of pore
// volume has been added above it.
func ZFinal(p Profile, zInitial, deltaWater float64) float64 {
	return p.depthOf(p.CumulativeWater(zInitial) - deltaWater)
}

// WaterTableDepth returns the depth to the water table for a saturation
// deficit. A negative deficit gives a table above the surface.
func WaterTableDepth(p Profile, satDeficit float64) float64 {
	return ZFinal(p, 0, -satDeficit)
}

// KsatAverage is the conductivity averaged over [0, z] for a profile
// decaying as ksat0*exp(-z/m).
func KsatAverage(ksat0, m, z float64) float64 {
	if m <= 0 || z <= 0 || m >= ConstantPorosityDecay {
		return ksat0
	}
	return ksat0 * m * (1 - math.Exp(-z/m)) / z
}
