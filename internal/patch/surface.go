package patch

import (
	"math"

	"github.com/san-kum/ecopatch/internal/events"
)

func (d *day) applyNutrientEvents() error {
	p, lu, date := d.p, d.env.Landuse, d.env.Date

	no3, err := p.Events.ValueOr(events.FertilizerNO3, date, lu.FertilizerNO3)
	if err != nil {
		return wrap(ErrEvents, err)
	}
	nh4, err := p.Events.ValueOr(events.FertilizerNH4, date, lu.FertilizerNH4)
	if err != nil {
		return wrap(ErrEvents, err)
	}
	d.diag.FertilizerNO3, d.diag.FertilizerNH4 = no3, nh4

	p.Surface.FertilizerNO3 += no3
	p.Surface.FertilizerNH4 += nh4
	p.Surface.NO3 += d.f.NdepNO3
	p.Surface.NH4 += d.f.NdepNH4

	if p.Surface.FertilizerNH4 > zero {
		moved := lu.FertToSoil * p.Surface.FertilizerNH4
		p.Surface.FertilizerNH4 -= moved
		p.SoilN.Sminn += moved
	}
	if p.Surface.FertilizerNO3 > zero {
		moved := lu.FertToSoil * p.Surface.FertilizerNO3
		p.Surface.FertilizerNO3 -= moved
		p.SoilN.Nitrate += moved
	}

	ph, _, err := p.Events.Lookup(events.PH, date)
	if err != nil {
		return wrap(ErrEvents, err)
	}
	if ph.Valid {
		p.PH = ph.Value
	}
	return nil
}

func (d *day) surface() error {
	p := d.p
	p.Fluxes.RainThroughfall = d.cas.Rain
	p.DetentionStore += d.cas.Rain + d.f.RainHourlyTotal
	d.env.Ground = d.cas
	d.in.procs.Surface.Surface(d.env)
	return nil
}

// infiltrationDuration is the fraction of the day water is delivered over.
// Without daytime rain the input is melt spread over daylight.
func (d *day) infiltrationDuration() float64 {
	if d.f.DaytimeRainDuration <= zero {
		return d.f.Dayl / 86400
	}
	return d.f.DaytimeRainDuration / 86400
}

func (d *day) infiltrate() error {
	p := d.p
	var infiltration, netInflow float64
	if p.DetentionStore > zero {
		if d.in.flags.Groundwater {
			if err := d.in.procs.Groundwater.Drain(d.env); err != nil {
				return wrap(ErrGroundwater, err)
			}
		}
		netInflow = p.DetentionStore
		s := p.S
		if p.Rootzone.Depth > zero {
			s = p.Rootzone.S
		}
		infiltration = d.h.Infiltration(p.SatDeficitZ, s, p.KsatVertical, netInflow, d.infiltrationDuration())
	}
	d.diag.RawInfiltration = infiltration
	if infiltration < 0 {
		d.warn(StageInfiltration, "negative infiltration", infiltration)
	}
	infiltration = math.Max(0, math.Min(infiltration, p.DetentionStore))

	if infiltration > 0 {
		frac := infiltration / p.DetentionStore
		moved := func(pool *float64) float64 {
			m := frac * *pool
			*pool -= m
			return m
		}
		p.SoilN.DON += moved(&p.Surface.DON)
		p.SoilC.DOC += moved(&p.Surface.DOC)
		p.SoilN.Nitrate += moved(&p.Surface.NO3)
		p.SoilN.Sminn += moved(&p.Surface.NH4)
	}
	p.DetentionStore -= infiltration

	if infiltration > 0 {
		d.in.procs.SoilMoisture.Infiltrate(d.env, infiltration, netInflow)
	}
	p.Fluxes.Infiltration = infiltration
	p.Fluxes.Recharge = infiltration
	d.diag.Infiltration = infiltration
	return nil
}
