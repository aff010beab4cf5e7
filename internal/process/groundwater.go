package process

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/ecopatch/internal/patch"
)

var (
	ErrNoHillslope  = errors.New("process: patch has no hillslope")
	ErrNegativeLoad = errors.New("process: negative septic load")
)

// Groundwater drains a fixed fraction of the saturated-zone water to the
// hillslope store, carrying the mobile share of nitrate with it.
type Groundwater struct{}

func (Groundwater) Drain(env *patch.Env) error {
	p, hs, soil := env.Patch, env.Hillslope, env.Soil
	if hs == nil {
		return ErrNoHillslope
	}
	coef := clamp01(soil.SatToGWCoeff)
	satWater := math.Max(env.Hydraulics.DeltaWater(soil.SoilDepth, p.SatDeficitZ), 0)
	drain := coef * satWater
	if math.IsNaN(drain) || math.IsInf(drain, 0) {
		return fmt.Errorf("%w: groundwater drainage", ErrNonFinitePool)
	}
	mobile := 1 - clamp01(soil.NO3AdsorptionRate)
	n := coef * mobile * math.Max(p.SoilN.Nitrate, 0)

	p.SatDeficit += drain
	p.SoilN.Nitrate -= n
	p.Fluxes.GWDrainage += drain
	p.NDF.NToGW += n

	share := 1.0
	if hs.Area > 0 && p.Area > 0 {
		share = p.Area / hs.Area
	}
	hs.GW.Storage += drain * share
	hs.GW.NO3 += n * share
	return nil
}

// Septic adds the landuse septic loads: water to the saturated zone and
// nitrate to the soil.
type Septic struct {
	Log logrus.FieldLogger
}

func (s Septic) Apply(env *patch.Env) error {
	lu := env.Landuse
	if lu.SepticWaterLoad < 0 || lu.SepticNO3Load < 0 {
		return fmt.Errorf("%w: water %v NO3 %v", ErrNegativeLoad, lu.SepticWaterLoad, lu.SepticNO3Load)
	}
	p := env.Patch
	p.SatDeficit -= lu.SepticWaterLoad
	p.SoilN.Nitrate += lu.SepticNO3Load
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"patch": p.ID,
			"water": lu.SepticWaterLoad,
			"no3":   lu.SepticNO3Load,
		}).Debug("septic load applied")
	}
	return nil
}
