// Package forcing generates synthetic daily zone meteorology: a seasonal
// temperature and radiation cycle with stochastic storms.
package forcing

import (
	"errors"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/world"
)

var ErrNoDate = errors.New("forcing: zero date")

const (
	secondsPerDay = 86400
	peakDay       = 196 // mid July
	parFraction   = 0.45
	snowThreshold = 0.0
	stormRate     = 0.002 // m/hour
)

// Climate parameterizes the generator. Radiation is kJ/m2/day, water m.
type Climate struct {
	MeanTemp        float64 `yaml:"mean_temp"`
	TempAmplitude   float64 `yaml:"temp_amplitude" validate:"gte=0"`
	TempNoise       float64 `yaml:"temp_noise" validate:"gte=0"`
	DiurnalRange    float64 `yaml:"diurnal_range" validate:"gte=0"`
	RainProbability float64 `yaml:"rain_probability" validate:"gte=0,lte=1"`
	MeanStorm       float64 `yaml:"mean_storm" validate:"gte=0"`
	KdownSummer     float64 `yaml:"kdown_summer" validate:"gte=0"`
	KdownWinter     float64 `yaml:"kdown_winter" validate:"gte=0"`
	DiffuseFraction float64 `yaml:"diffuse_fraction" validate:"gte=0,lte=1"`
	Wind            float64 `yaml:"wind" validate:"gte=0"`
	Latitude        float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Pressure        float64 `yaml:"pressure" validate:"gte=0"`
	NdepNO3         float64 `yaml:"ndep_no3" validate:"gte=0"`
	NdepNH4         float64 `yaml:"ndep_nh4" validate:"gte=0"`
}

func DefaultClimate() Climate {
	return Climate{
		MeanTemp:        8,
		TempAmplitude:   10,
		TempNoise:       2,
		DiurnalRange:    10,
		RainProbability: 0.3,
		MeanStorm:       0.008,
		KdownSummer:     25000,
		KdownWinter:     6000,
		DiffuseFraction: 0.3,
		Wind:            2,
		Latitude:        45,
		Pressure:        95000,
		NdepNO3:         2e-7,
		NdepNH4:         2e-7,
	}
}

// Generator is a ForcingSource. Each zone-day is drawn from its own
// seeded stream, so values do not depend on the order of requests.
type Generator struct {
	climate Climate
	seed    int64
}

func NewGenerator(c Climate, seed int64) *Generator {
	return &Generator{climate: c, seed: seed}
}

func (g *Generator) rng(zone world.ZoneID, d calendar.Date) *rand.Rand {
	h := fnv.New64a()
	var b [24]byte
	for i, v := range []uint64{uint64(g.seed), uint64(zone), uint64(d.JulianDay())} {
		for j := 0; j < 8; j++ {
			b[i*8+j] = byte(v >> (8 * j))
		}
	}
	h.Write(b[:])
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// season is 1 at midsummer and -1 at midwinter.
func (g *Generator) season(d calendar.Date) float64 {
	s := math.Cos(2 * math.Pi * float64(d.YearDay()-peakDay) / 365)
	if g.climate.Latitude < 0 {
		s = -s
	}
	return s
}

func (g *Generator) Forcing(zone world.ZoneID, d calendar.Date) (world.Forcing, error) {
	if d.IsZero() {
		return world.Forcing{}, ErrNoDate
	}
	c := g.climate
	r := g.rng(zone, d)
	season := g.season(d)

	tavg := c.MeanTemp + c.TempAmplitude*season + c.TempNoise*r.NormFloat64()
	f := world.Forcing{
		Tavg:      tavg,
		Tmin:      tavg - c.DiurnalRange/2,
		Tmax:      tavg + c.DiurnalRange/2,
		TnightMax: tavg - c.DiurnalRange/4,
		Tsoil:     c.MeanTemp + 0.6*c.TempAmplitude*season,
		Wind:      c.Wind * (0.5 + r.Float64()),
		Pa:        c.Pressure,
		Dayl:      DayLength(c.Latitude, d.YearDay()),
		NdepNO3:   c.NdepNO3,
		NdepNH4:   c.NdepNH4,
	}
	f.EDewpoint = SaturationVaporPressure(f.Tmin)

	f.CloudFraction = 0.2
	if r.Float64() < c.RainProbability {
		f.CloudFraction = 0.8
		amount := c.MeanStorm * r.ExpFloat64()
		if tavg < snowThreshold {
			f.Snow = amount
		} else {
			f.Rain = amount
			hours := math.Min(24, 1+amount/stormRate)
			f.DaytimeRainDuration = math.Min(hours*3600, f.Dayl)
		}
	}

	kdown := c.KdownWinter + (c.KdownSummer-c.KdownWinter)*(season+1)/2
	kdown *= 1 - 0.6*f.CloudFraction
	diffuse := math.Min(1, c.DiffuseFraction+0.5*f.CloudFraction)
	f.KdownDirect = kdown * (1 - diffuse)
	f.KdownDiffuse = kdown * diffuse
	f.PARDirect = parFraction * f.KdownDirect
	f.PARDiffuse = parFraction * f.KdownDiffuse
	return f, nil
}

// DayLength returns daylight seconds at latitude (degrees) on a day of year.
func DayLength(latitude float64, yearDay int) float64 {
	decl := 23.44 * math.Pi / 180 * math.Sin(2*math.Pi*float64(284+yearDay)/365)
	lat := latitude * math.Pi / 180
	x := -math.Tan(lat) * math.Tan(decl)
	x = math.Max(-1, math.Min(1, x))
	return secondsPerDay * math.Acos(x) / math.Pi
}

// SaturationVaporPressure (Pa) over water at t degC (Tetens).
func SaturationVaporPressure(t float64) float64 {
	return 610.78 * math.Exp(17.27*t/(t+237.3))
}
