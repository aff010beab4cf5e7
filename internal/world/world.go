package world

import (
	"errors"
	"fmt"
)

type (
	BasinID     int
	HillslopeID int
	ZoneID      int
	PatchID     int
	StratumID   int
	SoilID      int
	LanduseID   int
	VegID       int
)

var ErrUnknownID = errors.New("world: unknown id")

type World struct {
	Basins     []Basin
	Hillslopes []Hillslope
	Zones      []Zone
	Patches    []Patch
	Strata     []Stratum

	Soils      []SoilDefaults
	Landuses   []LanduseDefaults
	Vegetation []VegDefaults
}

type Basin struct {
	ID         BasinID
	Name       string
	Hillslopes []HillslopeID
}

// Groundwater is the hillslope-level store fed by patch drainage.
type Groundwater struct {
	Storage float64
	NO3     float64
}

type Hillslope struct {
	ID      HillslopeID
	Basin   BasinID
	Zones   []ZoneID
	Patches []PatchID
	Area    float64
	GW      Groundwater
}

type Zone struct {
	ID           ZoneID
	Hillslope    HillslopeID
	Patches      []PatchID
	ScreenHeight float64
	Forcing      Forcing
}

// Forcing is one day of zone meteorology. Radiation is in kJ/m2/day,
// water in m/day, temperatures in degC.
type Forcing struct {
	KdownDirect  float64
	KdownDiffuse float64
	PARDirect    float64
	PARDiffuse   float64

	Rain                float64
	Snow                float64
	RainHourlyTotal     float64
	DaytimeRainDuration float64 // seconds
	Dayl                float64 // seconds

	Wind          float64
	EDewpoint     float64
	Pa            float64
	CloudFraction float64

	Tavg      float64
	Tmin      float64
	Tmax      float64
	TnightMax float64
	Tsoil     float64

	NdepNO3 float64
	NdepNH4 float64
}

func (w *World) Patch(id PatchID) (*Patch, error) {
	if int(id) < 0 || int(id) >= len(w.Patches) {
		return nil, fmt.Errorf("%w: patch %d", ErrUnknownID, id)
	}
	return &w.Patches[id], nil
}

func (w *World) Zone(id ZoneID) (*Zone, error) {
	if int(id) < 0 || int(id) >= len(w.Zones) {
		return nil, fmt.Errorf("%w: zone %d", ErrUnknownID, id)
	}
	return &w.Zones[id], nil
}

func (w *World) Hillslope(id HillslopeID) (*Hillslope, error) {
	if int(id) < 0 || int(id) >= len(w.Hillslopes) {
		return nil, fmt.Errorf("%w: hillslope %d", ErrUnknownID, id)
	}
	return &w.Hillslopes[id], nil
}

// Stratum panics on an unknown id; stratum ids come from layer lists built
// with the arena.
func (w *World) Stratum(id StratumID) *Stratum {
	return &w.Strata[id]
}

func (w *World) Soil(p *Patch) *SoilDefaults {
	return &w.Soils[p.Soil]
}

func (w *World) Landuse(p *Patch) *LanduseDefaults {
	return &w.Landuses[p.Landuse]
}

func (w *World) Veg(s *Stratum) *VegDefaults {
	return &w.Vegetation[s.Veg]
}

// PatchStrata returns the strata of p in layer order.
func (w *World) PatchStrata(p *Patch) []*Stratum {
	var out []*Stratum
	for _, l := range p.Layers {
		for _, id := range l.Strata {
			out = append(out, &w.Strata[id])
		}
	}
	return out
}

// Check verifies that every id list points inside the arena and that each
// stratum is referenced by exactly one layer.
func (w *World) Check() error {
	seen := make(map[StratumID]PatchID, len(w.Strata))
	for i := range w.Patches {
		p := &w.Patches[i]
		if p.ID != PatchID(i) {
			return fmt.Errorf("world: patch at %d has id %d", i, p.ID)
		}
		if int(p.Zone) >= len(w.Zones) || int(p.Hillslope) >= len(w.Hillslopes) {
			return fmt.Errorf("%w: patch %d parent", ErrUnknownID, p.ID)
		}
		if int(p.Soil) >= len(w.Soils) || int(p.Landuse) >= len(w.Landuses) {
			return fmt.Errorf("%w: patch %d defaults", ErrUnknownID, p.ID)
		}
		for li, l := range p.Layers {
			if li > 0 && l.Height < p.Layers[li-1].Height {
				return fmt.Errorf("world: patch %d layers not ordered by height", p.ID)
			}
			for _, sid := range l.Strata {
				if int(sid) < 0 || int(sid) >= len(w.Strata) {
					return fmt.Errorf("%w: stratum %d", ErrUnknownID, sid)
				}
				if owner, dup := seen[sid]; dup {
					return fmt.Errorf("world: stratum %d in more than one layer (patch %d, %d)", sid, owner, p.ID)
				}
				seen[sid] = p.ID
				if int(w.Strata[sid].Veg) >= len(w.Vegetation) {
					return fmt.Errorf("%w: stratum %d vegetation", ErrUnknownID, sid)
				}
			}
		}
	}
	return nil
}
