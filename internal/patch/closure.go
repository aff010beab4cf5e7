package patch

import "math"

func (d *day) biogeochemistry() error {
	p, k := d.p, d.in.procs.Kinetics
	if !d.in.flags.Grow || !d.diag.Vegetated {
		return nil
	}
	if err := k.Decompose(d.env); err != nil {
		return wrap(ErrDecomposition, err)
	}
	if rate := d.env.Soil.DONProductionRate; rate > zero {
		if err := k.DissolvedOrganicLosses(d.env, rate); err != nil {
			return wrap(ErrDissolvedOrganic, err)
		}
		p.Surface.DOC += p.CDF.DOLitterC
		p.Surface.DON += p.NDF.DOLitterN
	}
	if err := k.Nitrify(d.env); err != nil {
		return wrap(ErrNitrification, err)
	}
	if err := k.Denitrify(d.env); err != nil {
		return wrap(ErrDenitrification, err)
	}
	return nil
}

func (d *day) closeBalances() error {
	p, f, pre := d.p, d.f, d.p.Preday
	p.TotalC, p.TotalN = d.env.World.Totals(p)

	p.Balance.Nitrogen = pre.TotalN - p.TotalN - p.NDF.NToGW +
		f.NdepNO3 + f.NdepNH4 - p.NDF.Denitrif +
		d.diag.FertilizerNO3 + d.diag.FertilizerNH4 + d.septicNO3

	p.Balance.Carbon = pre.TotalC + p.Fluxes.NetPlantPsn - p.TotalC - p.CDF.HeterotrophicRespiration()

	snow := f.Snow
	if d.in.flags.SnowScale {
		snow *= p.SnowRedistScale
	}
	inputs := f.Rain + snow + pre.DetentionStore + d.diag.Irrigation + d.septicWater + f.RainHourlyTotal
	outputs := p.Fluxes.GWDrainage +
		p.Fluxes.TranspirationSatZone + p.Fluxes.TranspirationUnsatZone +
		p.Fluxes.Evaporation + p.Fluxes.EvaporationSurf +
		p.Fluxes.ExfiltrationUnsatZone + p.Fluxes.ExfiltrationSatZone
	storage := (p.RZStorage - pre.RZStorage) +
		(p.UnsatStorage - pre.UnsatStorage) +
		(pre.SatDeficit - p.SatDeficit) +
		(p.Snowpack.Total() - pre.Snowpack) +
		(p.RainStored - pre.RainStored) +
		(p.SnowStored - pre.SnowStored) +
		p.DetentionStore
	p.Balance.Water = inputs - outputs - storage
	d.diag.Balance = p.Balance

	tol := d.in.tolerance
	if math.Abs(p.Balance.Water) > tol {
		d.warn(StageClosure, "water balance residual", p.Balance.Water)
	}
	if math.Abs(p.Balance.Carbon) > tol {
		d.warn(StageClosure, "carbon balance residual", p.Balance.Carbon)
	}
	if math.Abs(p.Balance.Nitrogen) > tol {
		d.warn(StageClosure, "nitrogen balance residual", p.Balance.Nitrogen)
	}

	if d.in.flags.Grow {
		d.in.procs.ZeroStores.Clamp(p)
	}
	return nil
}
