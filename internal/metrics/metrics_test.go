package metrics

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/sim"
	"github.com/san-kum/ecopatch/internal/world"
)

func day(water, trp float64, vegetated bool) sim.DayResult {
	return sim.DayResult{
		Patch: 1,
		Diag: patch.Diagnostics{
			Balance:                       world.Balance{Water: water, Carbon: -2 * water},
			TranspirationReductionPercent: trp,
			Vegetated:                     vegetated,
			Infiltration:                  0.002,
			Warnings:                      []patch.Warning{{Stage: patch.StageClosure}},
		},
		State: sim.Sample{
			SatDeficit: 0.3,
			GWStorage:  0.01,
			Fluxes:     world.Fluxes{Infiltration: 0.002, TranspirationUnsatZone: 0.001, Evaporation: 0.0005},
		},
	}
}

func TestResidual(t *testing.T) {
	water, carbon := NewWaterResidual(), NewCarbonResidual()
	for _, d := range []sim.DayResult{day(1e-12, 1, true), day(-3e-12, 1, true), day(2e-12, 1, true)} {
		water.Observe(d)
		carbon.Observe(d)
	}
	if math.Abs(water.Value()-3e-12) > 1e-20 {
		t.Errorf("water residual = %v, want 3e-12", water.Value())
	}
	if math.Abs(carbon.Value()-6e-12) > 1e-20 {
		t.Errorf("carbon residual = %v, want 6e-12", carbon.Value())
	}

	water.Reset()
	if water.Value() != 0 {
		t.Error("expected zero residual after reset")
	}
}

func TestStress(t *testing.T) {
	m := NewStress(0.5)
	if m.Value() != 0 {
		t.Error("expected zero before any observation")
	}
	m.Observe(day(0, 0.2, true))
	m.Observe(day(0, 0.9, true))
	m.Observe(day(0, 0.1, false))
	if m.Value() != 0.5 {
		t.Errorf("stress = %v, want 0.5", m.Value())
	}
}

func TestMeanFlux(t *testing.T) {
	et := NewEvapotranspiration()
	et.Observe(day(0, 1, true))
	et.Observe(day(0, 1, true))
	if math.Abs(et.Value()-0.0015) > 1e-15 {
		t.Errorf("mean et = %v, want 0.0015", et.Value())
	}
	et.Reset()
	if et.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStandardNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector("test")
	c.OnDay(day(1e-10, 0.4, true))
	c.OnDay(day(2e-10, 1, false))

	if got := testutil.ToFloat64(c.patchDays); got != 2 {
		t.Errorf("patch days = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.warnings.WithLabelValues("closure")); got != 2 {
		t.Errorf("closure warnings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.residual.WithLabelValues("1", "water")); got != 2e-10 {
		t.Errorf("latest water residual = %v, want 2e-10", got)
	}
	if got := testutil.ToFloat64(c.satDeficit.WithLabelValues("1")); got != 0.3 {
		t.Errorf("sat deficit = %v, want 0.3", got)
	}
	if n := testutil.CollectAndCount(c.reduction); n != 1 {
		t.Errorf("expected one reduction histogram, got %d", n)
	}

	c.Reset()
	if n := testutil.CollectAndCount(c.satDeficit); n != 0 {
		t.Errorf("expected no sat deficit series after reset, got %d", n)
	}
}

func TestCollectorDefaultNamespace(t *testing.T) {
	c := NewCollector("")
	c.OnDay(day(0, 1, true))

	path := filepath.Join(t.TempDir(), "ecopatch.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ecopatch_patch_days_total 1") {
		t.Errorf("textfile missing patch day counter:\n%s", data)
	}
}
