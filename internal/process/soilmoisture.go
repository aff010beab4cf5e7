package process

import (
	"math"

	"github.com/san-kum/ecopatch/internal/patch"
)

// SoilMoisture routes infiltration into the rootzone, then the
// unsaturated zone. Water beyond a saturated column returns to detention.
type SoilMoisture struct{}

func (SoilMoisture) Infiltrate(env *patch.Env, infiltration, _ float64) {
	p := env.Patch
	rz := &p.Rootzone

	room := math.Max(p.SatDeficit-p.RZStorage-p.UnsatStorage, 0)
	if infiltration >= room {
		p.DetentionStore += infiltration - room
		p.SatDeficit -= room + p.RZStorage + p.UnsatStorage
		p.RZStorage = 0
		p.UnsatStorage = 0
		p.S = 1
		rz.S = 1
		return
	}

	if p.SatDeficitZ > rz.Depth {
		toRZ := math.Min(infiltration, math.Max(rz.PotentialSat-p.RZStorage, 0))
		p.RZStorage += toRZ
		p.UnsatStorage += infiltration - toRZ
		rz.S = math.Min(p.RZStorage/math.Max(rz.PotentialSat, 1e-12), 1)
		if below := p.SatDeficit - rz.PotentialSat; below > 0 {
			p.S = math.Min(p.UnsatStorage/below, 1)
		}
		return
	}
	p.RZStorage += infiltration
	if p.SatDeficit > 0 {
		p.S = math.Min(p.RZStorage/p.SatDeficit, 1)
	}
	rz.S = p.S
}
