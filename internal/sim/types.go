package sim

import (
	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

// Stepper advances one patch by one day. *patch.Integrator implements it.
type Stepper interface {
	Step(w *world.World, id world.PatchID, date calendar.Date) (patch.Diagnostics, error)
}

// ForcingSource supplies the daily meteorology of each zone.
type ForcingSource interface {
	Forcing(zone world.ZoneID, date calendar.Date) (world.Forcing, error)
}

type Metric interface {
	Name() string
	Observe(r DayResult)
	Value() float64
	Reset()
}

type Observer interface {
	OnDay(r DayResult)
}

// Sample is the end-of-day state of a patch.
type Sample struct {
	SatDeficit     float64
	SatDeficitZ    float64
	RZStorage      float64
	UnsatStorage   float64
	DetentionStore float64
	SnowpackWE     float64
	LAI            float64
	TotalC         float64
	TotalN         float64
	GWStorage      float64
	Fluxes         world.Fluxes
}

// DayResult is one stepped patch-day.
type DayResult struct {
	Hillslope world.HillslopeID
	Patch     world.PatchID
	Date      calendar.Date
	Diag      patch.Diagnostics
	State     Sample
}

type Config struct {
	Start calendar.Date
	Days  int
	// Workers bounds the hillslopes stepped concurrently; 0 means one per hillslope.
	Workers int
}

type Result struct {
	Days      int
	PatchDays int
	Warnings  int
	Metrics   map[string]float64
}

func sample(w *world.World, p *world.Patch) Sample {
	s := Sample{
		SatDeficit:     p.SatDeficit,
		SatDeficitZ:    p.SatDeficitZ,
		RZStorage:      p.RZStorage,
		UnsatStorage:   p.UnsatStorage,
		DetentionStore: p.DetentionStore,
		SnowpackWE:     p.Snowpack.WaterEquivalentDepth,
		LAI:            p.Fluxes.LAI,
		TotalC:         p.TotalC,
		TotalN:         p.TotalN,
		Fluxes:         p.Fluxes,
	}
	if hs, err := w.Hillslope(p.Hillslope); err == nil {
		s.GWStorage = hs.GW.Storage
	}
	return s
}
