package patch

import "math"

// drain moves gravity water down the column and finalizes the water table
// and rootzone state for the day.
func (d *day) drain() error {
	p, h, soil := d.p, d.h, d.env.Soil
	rz := &p.Rootzone
	z := d.waterTable()

	switch {
	case p.SatDeficit <= zero:
		p.S = 1
		rz.S = 1
		p.Fluxes.RZDrainage = 0
		p.Fluxes.UnsatDrainage = 0

	case z > rz.Depth:
		rz.S = math.Min(safeDiv(p.RZStorage, rz.PotentialSat), 1)
		rzDrain := h.UnsatZoneDrainage(rz.S, rz.Depth, soil.Ksat0V/2, p.RZStorage-rz.FieldCapacity)
		p.RZStorage -= rzDrain
		p.UnsatStorage += rzDrain

		p.S = math.Min(safeDiv(p.UnsatStorage, p.SatDeficit-rz.PotentialSat), 1)
		rz.S = math.Min(safeDiv(p.RZStorage, rz.PotentialSat), 1)
		unsatDrain := h.UnsatZoneDrainage(p.S, z, soil.Ksat0V/2, p.UnsatStorage-p.FieldCapacity)
		p.UnsatStorage -= unsatDrain
		p.SatDeficit -= unsatDrain

		p.Fluxes.RZDrainage = rzDrain
		p.Fluxes.UnsatDrainage = unsatDrain

	default:
		// The table is inside the rootzone: one storage above it.
		p.RZStorage += p.UnsatStorage
		p.UnsatStorage = 0
		p.S = math.Min(safeDiv(p.RZStorage, p.SatDeficit), 1)
		rzDrain := h.UnsatZoneDrainage(p.S, z, soil.Ksat0/2, p.RZStorage-rz.FieldCapacity)
		p.RZStorage -= rzDrain
		p.SatDeficit -= rzDrain

		p.Fluxes.RZDrainage = rzDrain
		p.Fluxes.UnsatDrainage = 0
	}

	switch {
	case rz.PotentialSat <= zero:
		rz.S = p.S
	case p.SatDeficit > rz.PotentialSat:
		rz.S = math.Min(p.RZStorage/rz.PotentialSat, 1)
	default:
		rz.S = math.Min((p.RZStorage+rz.PotentialSat-p.SatDeficit)/rz.PotentialSat, 1)
	}
	if rz.Depth > zero {
		rz.PotentialSat = h.DeltaWater(rz.Depth, 0)
	}

	z = d.waterTable()
	theta := rz.S
	p.ThetaStd = soil.ThetaMeanStdP2*theta*theta + soil.ThetaMeanStdP1*theta
	p.PotentialCapRise = h.PotentialCapRise(z)
	return nil
}
