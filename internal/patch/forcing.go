package patch

import (
	"math"

	"github.com/san-kum/ecopatch/internal/events"
	"github.com/san-kum/ecopatch/internal/world"
)

const (
	vonKarman         = 0.41
	roughnessFraction = 0.1
	minScreenHeight   = 2.0
)

// aeroConductance is the neutral-stability aerodynamic conductance (m/s)
// between the surface and screen height.
func aeroConductance(wind, screenHeight float64) float64 {
	if screenHeight < minScreenHeight {
		screenHeight = minScreenHeight
	}
	z0 := roughnessFraction * screenHeight
	l := math.Log(screenHeight / z0)
	return vonKarman * vonKarman * wind / (l * l)
}

func (d *day) assembleForcing() error {
	p, f := d.p, d.f
	if !d.in.flags.SurfaceEnergy {
		p.Tsoil = f.Tsoil
	}

	irrigation, err := p.Events.ValueOr(events.Irrigation, d.env.Date, d.env.Landuse.Irrigation)
	if err != nil {
		return wrap(ErrEvents, err)
	}
	d.diag.Irrigation = irrigation

	snow := f.Snow
	if d.in.flags.SnowScale {
		snow *= p.SnowRedistScale
	}
	d.cas = world.Cascade{
		Radiation: world.Radiation{
			KdownDirect:  f.KdownDirect,
			KdownDiffuse: f.KdownDiffuse,
			PARDirect:    f.PARDirect,
			PARDiffuse:   f.PARDiffuse,
		},
		Rain: f.Rain + irrigation,
		Snow: snow,
		Ga:   aeroConductance(f.Wind, d.env.Zone.ScreenHeight),
		Wind: f.Wind,
	}

	p.AccYear.Pcp += f.Rain + f.Snow + irrigation
	p.AccYear.SnowIn += f.Snow

	p.Fluxes.SurfaceHeatFlux = -d.h.SurfaceHeatFlux(p.SnowStored, p.UnsatStorage, p.SatDeficit, f.Tavg, f.Tsoil)
	return nil
}

func (d *day) applySeptic() error {
	lu := d.env.Landuse
	if lu.SepticWaterLoad <= zero && lu.SepticNO3Load <= zero {
		return nil
	}
	if err := d.in.procs.Septic.Apply(d.env); err != nil {
		return wrap(ErrSeptic, err)
	}
	d.septicWater = lu.SepticWaterLoad
	d.septicNO3 = lu.SepticNO3Load
	return nil
}
