package process

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

var (
	ErrNonFinitePool = errors.New("process: non-finite pool")
	ErrNegativePool  = errors.New("process: negative pool")
	ErrInvalidRate   = errors.New("process: rate out of range")
	ErrInvalidPH     = errors.New("process: pH out of range")
)

// negativeSlack tolerates round-off below zero in a pool.
const negativeSlack = -1e-9

// Kinetics is a first-order litter and soil organic matter cascade with
// pH, moisture and temperature limited nitrification and denitrification.
// Rates are per day at 20 degC.
type Kinetics struct {
	Litr1, Litr2, Litr3, Litr4 float64
	Soil1, Soil2, Soil3, Soil4 float64

	// Respired fractions of each decomposition step.
	RfLitr1, RfLitr2, RfLitr4 float64
	RfSoil1, RfSoil2, RfSoil3 float64

	Q10          float64
	Nitrif       float64
	Denitrif     float64
	OptimumWater float64
}

func DefaultKinetics() Kinetics {
	return Kinetics{
		Litr1: 0.7, Litr2: 0.07, Litr3: 0.014, Litr4: 0.014,
		Soil1: 0.07, Soil2: 0.014, Soil3: 0.0014, Soil4: 0.0001,
		RfLitr1: 0.39, RfLitr2: 0.55, RfLitr4: 0.29,
		RfSoil1: 0.28, RfSoil2: 0.46, RfSoil3: 0.55,
		Q10:          2,
		Nitrif:       0.1,
		Denitrif:     0.05,
		OptimumWater: 0.6,
	}
}

// ResolveCompetition sets the fraction of plant N demand the mineral
// pools can satisfy today.
func (Kinetics) ResolveCompetition(p *world.Patch) {
	demand := p.NDF.PlantPotentialNDemand
	available := math.Max(p.SoilN.Sminn, 0) + math.Max(p.SoilN.Nitrate, 0)
	if demand <= 0 {
		p.NDF.FPI = 1
		return
	}
	p.NDF.FPI = clamp01(available / demand)
}

func (k Kinetics) temperature(tsoil float64) float64 {
	if tsoil < -10 {
		return 0
	}
	return math.Pow(k.Q10, (tsoil-20)/10)
}

func (k Kinetics) moisture(s float64) float64 {
	s = clamp01(s)
	if s <= k.OptimumWater {
		return s / k.OptimumWater
	}
	return 1 - 0.5*(s-k.OptimumWater)/(1-k.OptimumWater)
}

type transfer struct {
	c, n *float64
	rate float64
	rf   float64
	toC  *float64
	toN  *float64
	hr   *float64
}

func (k Kinetics) Decompose(env *patch.Env) error {
	p := env.Patch
	if err := checkPools(p); err != nil {
		return err
	}
	scalar := k.temperature(p.Tsoil) * k.moisture(p.Rootzone.S)
	lc, ln, sc, sn, cdf := &p.LitterC, &p.LitterN, &p.SoilC, &p.SoilN, &p.CDF

	steps := []transfer{
		{&lc.Litr1c, &ln.Litr1n, k.Litr1, k.RfLitr1, &sc.Soil1c, &sn.Soil1n, &cdf.Litr1cHR},
		{&lc.Litr2c, &ln.Litr2n, k.Litr2, k.RfLitr2, &sc.Soil2c, &sn.Soil2n, &cdf.Litr2cHR},
		{&lc.Litr3c, &ln.Litr3n, k.Litr3, 0, &lc.Litr2c, &ln.Litr2n, &cdf.Litr3cHR},
		{&lc.Litr4c, &ln.Litr4n, k.Litr4, k.RfLitr4, &sc.Soil3c, &sn.Soil3n, &cdf.Litr4cHR},
		{&sc.Soil1c, &sn.Soil1n, k.Soil1, k.RfSoil1, &sc.Soil2c, &sn.Soil2n, &cdf.Soil1cHR},
		{&sc.Soil2c, &sn.Soil2n, k.Soil2, k.RfSoil2, &sc.Soil3c, &sn.Soil3n, &cdf.Soil2cHR},
		{&sc.Soil3c, &sn.Soil3n, k.Soil3, k.RfSoil3, &sc.Soil4c, &sn.Soil4n, &cdf.Soil3cHR},
		{&sc.Soil4c, &sn.Soil4n, k.Soil4, 1, nil, nil, &cdf.Soil4cHR},
	}
	var mineralized float64
	for _, t := range steps {
		if *t.c <= 0 {
			continue
		}
		dc := math.Min(t.rate*scalar, 1) * *t.c
		dn := dc * *t.n / *t.c
		hr := t.rf * dc
		*t.c -= dc
		*t.n -= dn
		*t.hr += hr
		if t.toC != nil {
			*t.toC += dc - hr
			*t.toN += dn * (1 - t.rf)
		}
		mineralized += dn * t.rf
	}
	p.SoilN.Sminn += mineralized
	p.NDF.Mineralized = mineralized
	return nil
}

func (Kinetics) DissolvedOrganicLosses(env *patch.Env, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("%w: DON production %v", ErrInvalidRate, rate)
	}
	p := env.Patch
	if err := checkPools(p); err != nil {
		return err
	}
	c := rate * math.Max(p.LitterC.Litr1c, 0)
	n := rate * math.Max(p.LitterN.Litr1n, 0)
	p.LitterC.Litr1c -= c
	p.LitterN.Litr1n -= n
	p.CDF.DOLitterC = c
	p.NDF.DOLitterN = n
	return nil
}

func (k Kinetics) Nitrify(env *patch.Env) error {
	p := env.Patch
	if math.IsNaN(p.PH) || p.PH <= 0 || p.PH > 14 {
		return fmt.Errorf("%w: %v", ErrInvalidPH, p.PH)
	}
	if math.IsNaN(p.SoilN.Sminn) || math.IsInf(p.SoilN.Sminn, 0) {
		return fmt.Errorf("%w: sminn", ErrNonFinitePool)
	}
	if p.SoilN.Sminn <= 0 {
		p.NDF.Nitrif = 0
		return nil
	}
	fpH := 0.56 + math.Atan(math.Pi*0.45*(p.PH-5))/math.Pi
	spread := 0.2*0.2 + p.ThetaStd*p.ThetaStd
	dev := clamp01(p.Rootzone.S) - k.OptimumWater
	fWater := math.Exp(-dev * dev / (2 * spread))
	rate := clamp01(k.Nitrif * k.temperature(p.Tsoil) * clamp01(fpH) * fWater)

	n := rate * p.SoilN.Sminn
	p.SoilN.Sminn -= n
	p.SoilN.Nitrate += n
	p.NDF.Nitrif = n
	return nil
}

func (k Kinetics) Denitrify(env *patch.Env) error {
	p := env.Patch
	if math.IsNaN(p.SoilN.Nitrate) || math.IsInf(p.SoilN.Nitrate, 0) {
		return fmt.Errorf("%w: nitrate", ErrNonFinitePool)
	}
	p.NDF.Denitrif = 0
	if p.SoilN.Nitrate <= 0 {
		return nil
	}
	wet := math.Max(0, (clamp01(p.Rootzone.S)-0.55)/0.45)
	rate := clamp01(k.Denitrif * wet * wet * k.temperature(p.Tsoil))
	n := rate * p.SoilN.Nitrate
	p.SoilN.Nitrate -= n
	p.NDF.Denitrif = n
	return nil
}

func checkPools(p *world.Patch) error {
	pools := map[string]float64{
		"litr1c": p.LitterC.Litr1c, "litr2c": p.LitterC.Litr2c,
		"litr3c": p.LitterC.Litr3c, "litr4c": p.LitterC.Litr4c,
		"soil1c": p.SoilC.Soil1c, "soil2c": p.SoilC.Soil2c,
		"soil3c": p.SoilC.Soil3c, "soil4c": p.SoilC.Soil4c,
		"litr1n": p.LitterN.Litr1n, "litr2n": p.LitterN.Litr2n,
		"litr3n": p.LitterN.Litr3n, "litr4n": p.LitterN.Litr4n,
		"soil1n": p.SoilN.Soil1n, "soil2n": p.SoilN.Soil2n,
		"soil3n": p.SoilN.Soil3n, "soil4n": p.SoilN.Soil4n,
	}
	for name, v := range pools {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s", ErrNonFinitePool, name)
		}
		if v < negativeSlack {
			return fmt.Errorf("%w: %s = %g", ErrNegativePool, name, v)
		}
	}
	return nil
}
