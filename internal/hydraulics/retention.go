package hydraulics

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/san-kum/ecopatch/internal/world"
)

// quadraturePoints is odd so Simpson's rule covers whole panels.
const quadraturePoints = 33

// Retention is a soil water retention curve. For van Genuchten P3 is alpha
// (1/m) and P4 is n.
type Retention struct {
	Curve         world.RetentionCurve
	PsiAirEntry   float64
	PoreSizeIndex float64
	P3            float64
	P4            float64
}

// Se returns effective saturation at suction head h (m).
func (r Retention) Se(h float64) float64 {
	switch r.Curve {
	case world.VanGenuchten:
		if h <= 0 || r.P4 <= 1 {
			return 1
		}
		m := 1 - 1/r.P4
		return math.Pow(1+math.Pow(r.P3*h, r.P4), -m)
	default:
		if h <= r.PsiAirEntry || h <= 0 {
			return 1
		}
		return math.Pow(r.PsiAirEntry/h, r.PoreSizeIndex)
	}
}

// RelativeConductivity returns K(S)/Ksat.
func (r Retention) RelativeConductivity(s float64) float64 {
	s = clamp01(s)
	switch r.Curve {
	case world.VanGenuchten:
		if r.P4 <= 1 {
			return s
		}
		m := 1 - 1/r.P4
		inner := 1 - math.Pow(1-math.Pow(s, 1/m), m)
		return math.Sqrt(s) * inner * inner
	default:
		if r.PoreSizeIndex <= 0 {
			return s
		}
		return math.Pow(s, (2+3*r.PoreSizeIndex)/r.PoreSizeIndex)
	}
}

// LayerFieldCapacity integrates the water retained at hydrostatic
// equilibrium with a water table at zWaterTable over the layer
// [zSurface, zLayer]. Parts of the layer below the table hold no field
// capacity water.
func LayerFieldCapacity(p Profile, r Retention, zWaterTable, zLayer, zSurface float64) float64 {
	top := math.Max(zSurface, 0)
	bottom := math.Min(zLayer, zWaterTable)
	if bottom <= top {
		return 0
	}
	x := make([]float64, quadraturePoints)
	f := make([]float64, quadraturePoints)
	dz := (bottom - top) / float64(quadraturePoints-1)
	for i := range x {
		z := top + float64(i)*dz
		x[i] = z
		f[i] = p.Porosity(z) * r.Se(zWaterTable-z)
	}
	x[quadraturePoints-1] = bottom
	return math.Max(integrate.Simpsons(x, f), 0)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
