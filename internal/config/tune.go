package config

import (
	"fmt"
	"sort"
)

// Tunables are the parameters a sweep may set. Soil and vegetation
// parameters apply to every soil or vegetation type.
var Tunables = map[string]func(c *Config, v float64){
	"porosity_0": func(c *Config, v float64) {
		for i := range c.Soils {
			c.Soils[i].Porosity0 = v
		}
	},
	"ksat_0": func(c *Config, v float64) {
		for i := range c.Soils {
			c.Soils[i].Ksat0 = v
			c.Soils[i].Ksat0V = v
		}
	},
	"mz_v": func(c *Config, v float64) {
		for i := range c.Soils {
			c.Soils[i].MzV = v
		}
	},
	"sat_to_gw_coeff": func(c *Config, v float64) {
		for i := range c.Soils {
			c.Soils[i].SatToGWCoeff = v
		}
	},
	"snow_melt_tcoef": func(c *Config, v float64) {
		for i := range c.Soils {
			c.Soils[i].SnowMeltTcoef = v
		}
	},
	"gs_max": func(c *Config, v float64) {
		for i := range c.Vegetation {
			c.Vegetation[i].GsMax = v
		}
	},
	"psi_max": func(c *Config, v float64) {
		for i := range c.Vegetation {
			c.Vegetation[i].PsiMax = v
		}
	},
	"rain_probability": func(c *Config, v float64) { c.Climate.RainProbability = v },
	"mean_temp":        func(c *Config, v float64) { c.Climate.MeanTemp = v },
}

// Set assigns a tunable parameter. The result is not validated.
func (c *Config) Set(name string, v float64) error {
	set, ok := Tunables[name]
	if !ok {
		return fmt.Errorf("config: unknown parameter %q (tunable: %v)", name, TunableNames())
	}
	set(c, v)
	return nil
}

func TunableNames() []string {
	names := make([]string, 0, len(Tunables))
	for n := range Tunables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
