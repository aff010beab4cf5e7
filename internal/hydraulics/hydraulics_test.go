package hydraulics

import (
	"math"
	"testing"

	"github.com/san-kum/ecopatch/internal/world"
)

var loam = world.SoilDefaults{
	Porosity0:       0.45,
	PorosityDecay:   4,
	SoilDepth:       3,
	Ksat0:           2,
	Ksat0V:          2,
	MzV:             0.4,
	PsiAirEntry:     0.3,
	PoreSizeIndex:   0.2,
	DeltaZ:          0.1,
	MinHeatCapacity: 1000,
	MaxHeatCapacity: 3000,
}

func TestWaterTableDepthRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{"decaying", Profile{Porosity0: 0.45, PorosityDecay: 4, SoilDepth: 3}},
		{"uniform", Profile{Porosity0: 0.4, PorosityDecay: 0, SoilDepth: 3}},
		{"uniform sentinel", Profile{Porosity0: 0.4, PorosityDecay: 999, SoilDepth: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, z := range []float64{0, 0.1, 0.7, 1.5, 2.9} {
				s := tt.profile.CumulativeWater(z)
				got := WaterTableDepth(tt.profile, s)
				if math.Abs(got-z) > 1e-9 {
					t.Errorf("depth(%v) = %v, want %v", s, got, z)
				}
			}
		})
	}
}

func TestWaterTableDepthMonotone(t *testing.T) {
	p := Profile{Porosity0: 0.45, PorosityDecay: 0.8, SoilDepth: 3}
	prev := math.Inf(-1)
	for s := -0.2; s < 1.5; s += 0.01 {
		z := WaterTableDepth(p, s)
		if z < prev {
			t.Fatalf("depth decreased at deficit %v: %v < %v", s, z, prev)
		}
		if z > p.SoilDepth {
			t.Fatalf("depth %v beyond soil depth", z)
		}
		prev = z
	}
}

func TestWaterTableAboveSurface(t *testing.T) {
	p := Profile{Porosity0: 0.45, PorosityDecay: 4, SoilDepth: 3}
	if got := WaterTableDepth(p, -0.05); got != -0.05 {
		t.Errorf("depth = %v, want -0.05", got)
	}
}

func TestDeltaWater(t *testing.T) {
	p := Profile{Porosity0: 0.5, PorosityDecay: 0, SoilDepth: 2}
	if got := DeltaWater(p, 1, 0.4); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("DeltaWater = %v, want 0.3", got)
	}
	if got := ZFinal(p, 1, 0.3); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("ZFinal = %v, want 0.4", got)
	}
}

func TestLayerFieldCapacity(t *testing.T) {
	soil := ForSoil(&loam)

	if got := soil.LayerFieldCapacity(0.5, 0.5, 0.5); got != 0 {
		t.Errorf("empty interval = %v, want 0", got)
	}

	// Within the air-entry height of the table the layer stays saturated.
	got := soil.LayerFieldCapacity(0.2, 0.2, 0)
	want := soil.DeltaWater(0.2, 0)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("capillary fringe = %v, want %v", got, want)
	}

	shallow := soil.LayerFieldCapacity(1.0, 0.5, 0)
	deep := soil.LayerFieldCapacity(2.0, 0.5, 0)
	if !(deep < shallow) {
		t.Errorf("field capacity should drop as the table falls: %v !< %v", deep, shallow)
	}
	if shallow > soil.DeltaWater(0.5, 0) {
		t.Errorf("field capacity %v exceeds pore volume", shallow)
	}
}

func TestVanGenuchtenRetention(t *testing.T) {
	r := Retention{Curve: world.VanGenuchten, P3: 2, P4: 1.5}
	if r.Se(0) != 1 {
		t.Error("Se(0) should be 1")
	}
	if !(r.Se(1) > r.Se(2)) {
		t.Error("Se should decrease with suction")
	}
	if got := r.RelativeConductivity(1); math.Abs(got-1) > 1e-12 {
		t.Errorf("Kr(1) = %v", got)
	}
}

func TestInfiltration(t *testing.T) {
	p := Profile{Porosity0: 0.45, PorosityDecay: 4, SoilDepth: 3}
	tests := []struct {
		name     string
		z, s     float64
		inflow   float64
		duration float64
		check    func(float64) bool
	}{
		{"no inflow", 1, 0.5, 0, 1, func(f float64) bool { return f == 0 }},
		{"saturated surface", 1, 1, 0.01, 1, func(f float64) bool { return f == 0 }},
		{"table at surface", 0, 0.5, 0.01, 1, func(f float64) bool { return f == 0 }},
		{"low intensity all enters", 1, 0.5, 0.01, 1, func(f float64) bool { return math.Abs(f-0.01) < 1e-12 }},
		{"storm is limited", 1, 0.9, 5, 0.05, func(f float64) bool { return f > 0 && f < 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infiltration(p, tt.z, tt.s, 1, 0.5, 0.4, 0.3, tt.inflow, tt.duration)
			if !tt.check(got) {
				t.Errorf("Infiltration = %v", got)
			}
		})
	}
}

func TestUnsatZoneDrainage(t *testing.T) {
	r := Retention{PsiAirEntry: 0.3, PoreSizeIndex: 0.2}
	if got := UnsatZoneDrainage(r, 0.8, 0.4, 1, 1, -0.1); got != 0 {
		t.Errorf("below field capacity drains %v", got)
	}
	if got := UnsatZoneDrainage(r, 1, 0.4, 1, 10, 0.02); got != 0.02 {
		t.Errorf("drainage = %v, want clamp at 0.02", got)
	}
	wet := UnsatZoneDrainage(r, 0.9, 0.4, 1, 1, 1)
	dry := UnsatZoneDrainage(r, 0.5, 0.4, 1, 1, 1)
	if !(wet > dry) {
		t.Errorf("wetter soil should drain faster: %v !> %v", wet, dry)
	}
}

func TestPotentialCapRise(t *testing.T) {
	r := Retention{PsiAirEntry: 0.3, PoreSizeIndex: 0.2}
	near := PotentialCapRise(r, 0.5, 1, 0.4)
	far := PotentialCapRise(r, 2, 1, 0.4)
	if !(near > far) || far <= 0 {
		t.Errorf("cap rise near=%v far=%v", near, far)
	}
}

func TestWiltingPointCoefficient(t *testing.T) {
	got := WiltingPointCoefficient(0.45, 0.3, 0.2, -1.5)
	want := 0.45 * math.Pow(500, -0.2)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("wilting point = %v, want %v", got, want)
	}
	if WiltingPointCoefficient(0.45, 0.3, 0.2, 0) != 0 {
		t.Error("zero suction should give zero coefficient")
	}
}

func TestSurfaceHeatFlux(t *testing.T) {
	if got := SurfaceHeatFlux(0.01, 0.1, 0.2, 10, 5, 0.1, 1000, 3000); got != 0 {
		t.Errorf("snow covered flux = %v", got)
	}
	got := SurfaceHeatFlux(0, 0.1, 0.2, 10, 5, 0.1, 1000, 3000)
	if math.Abs(got-2000*0.1*5) > 1e-9 {
		t.Errorf("flux = %v", got)
	}
}

func TestRadiativeFluxes(t *testing.T) {
	abs, tr := RadiativeFluxes(100, 0.5, 2, 0.2)
	if math.Abs(abs+tr-80) > 1e-12 {
		t.Errorf("absorbed+transmitted = %v, want 80", abs+tr)
	}
	abs, tr = RadiativeFluxes(1, 1, 1, 1)
	if abs != 0 || tr != 0 {
		t.Errorf("unit call = (%v, %v)", abs, tr)
	}
}
