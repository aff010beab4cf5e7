package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/ecopatch/internal/world"
)

// Presets build fresh configs; callers may modify the result.
var Presets = map[string]func() *Config{
	"forest":    Forest,
	"grassland": Grassland,
	"irrigated": Irrigated,
	"alpine":    Alpine,
}

var Descriptions = map[string]string{
	"forest":    "conifer catchment, two hillslopes",
	"grassland": "open pasture",
	"irrigated": "irrigated field and septic yard",
	"alpine":    "snow dominated cirque",
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loam() world.SoilDefaults {
	return world.SoilDefaults{
		Name:                     "loam",
		Porosity0:                0.45,
		PorosityDecay:            4,
		SoilDepth:                2,
		Ksat0:                    1,
		Ksat0V:                   1,
		MzV:                      0.5,
		PsiAirEntry:              0.3,
		PoreSizeIndex:            0.2,
		DeltaZ:                   0.1,
		MinHeatCapacity:          1000,
		MaxHeatCapacity:          3000,
		MaximumSnowEnergyDeficit: -0.05,
		SnowWaterCapacity:        0.05,
		SnowLightExtCoef:         10,
		SnowMeltTcoef:            0.002,
		DONProductionRate:        0.01,
		NO3AdsorptionRate:        0.5,
		ThetaMeanStdP1:           0.1,
		ThetaMeanStdP2:           -0.1,
		SatToGWCoeff:             0.01,
	}
}

func sandyLoam() world.SoilDefaults {
	s := loam()
	s.Name = "sandy_loam"
	s.Porosity0 = 0.41
	s.Ksat0, s.Ksat0V = 3, 3
	s.MzV = 0.8
	s.PsiAirEntry = 0.15
	s.PoreSizeIndex = 0.35
	s.SatToGWCoeff = 0.03
	return s
}

func conifer() world.VegDefaults {
	return world.VegDefaults{
		Name:              "conifer",
		Type:              world.Tree,
		ExtCoef:           0.5,
		Albedo:            0.1,
		RainInterceptCoef: 0.0002,
		SnowInterceptCoef: 0.0004,
		GsMax:             0.006,
		TranspirationCoef: 0.6,
		WUE:               3,
		MRCoef:            0.002,
		SLA:               10,
		PsiMax:            -2,
		LeafCN:            40,
		FrootCN:           50,
		StemCN:            300,
		AllocLeaf:         0.4,
		AllocFroot:        0.4,
		AllocStem:         0.2,
		LeafTurnover:      0.3,
		LitterLabile:      0.3,
		LitterCell:        0.45,
		LitterLignin:      0.25,
	}
}

func grass() world.VegDefaults {
	return world.VegDefaults{
		Name:              "grass",
		Type:              world.Grass,
		ExtCoef:           0.6,
		Albedo:            0.2,
		RainInterceptCoef: 0.0001,
		GsMax:             0.004,
		TranspirationCoef: 0.5,
		WUE:               2,
		MRCoef:            0.003,
		SLA:               20,
		PsiMax:            -1.5,
		LeafCN:            25,
		FrootCN:           40,
		StemCN:            100,
		AllocLeaf:         0.6,
		AllocFroot:        0.4,
		LeafTurnover:      1,
		LitterLabile:      0.4,
		LitterCell:        0.4,
		LitterLignin:      0.2,
	}
}

func bareGround() world.VegDefaults {
	return world.VegDefaults{Name: "bare", Type: world.NonVeg, Albedo: 0.25}
}

func forestLanduse() world.LanduseDefaults {
	return world.LanduseDefaults{Name: "forest", FertToSoil: 1, LitterRainCapacity: 0.001}
}

func soilPools() (world.SoilCarbon, world.SoilNitrogen) {
	return world.SoilCarbon{Soil1c: 0.2, Soil2c: 1, Soil3c: 3, Soil4c: 8},
		world.SoilNitrogen{Soil1n: 0.02, Soil2n: 0.08, Soil3n: 0.3, Soil4n: 0.8, Sminn: 0.003, Nitrate: 0.002}
}

func basePatch(soil, landuse string) PatchConfig {
	sc, sn := soilPools()
	return PatchConfig{
		Soil:            soil,
		Landuse:         landuse,
		Area:            1,
		KsatVertical:    1,
		SnowRedistScale: 1,
		PH:              DefaultPH,
		SatDeficit:      0.3,
		UnsatStorage:    0.01,
		RZStorage:       0.08,
		LitterC:         world.LitterCarbon{Litr1c: 0.05, Litr2c: 0.1, Litr3c: 0.05, Litr4c: 0.1},
		LitterN:         world.LitterNitrogen{Litr1n: 0.002, Litr2n: 0.002, Litr3n: 0.001, Litr4n: 0.001},
		SoilC:           sc,
		SoilN:           sn,
	}
}

func grassLayer(cover float64) LayerConfig {
	return LayerConfig{Height: 0.4, Strata: []StratumConfig{{
		Veg: "grass", Cover: cover, LAI: 1.5, RootDepth: 0.3,
		Cpool: 0.01, Npool: 0.001, Leafc: 0.075, Frootc: 0.05,
	}}}
}

func coniferLayer(cover float64) LayerConfig {
	return LayerConfig{Height: 15, Strata: []StratumConfig{{
		Veg: "conifer", Cover: cover, LAI: 3, RootDepth: 0.8,
		Cpool: 0.05, Npool: 0.002, Leafc: 0.3, Frootc: 0.2, Stemc: 5,
	}}}
}

// Forest is a two-hillslope conifer catchment with a grass understory.
func Forest() *Config {
	cfg := DefaultConfig()
	cfg.Name = "forest"
	cfg.Soils = []world.SoilDefaults{loam(), sandyLoam()}
	cfg.Landuses = []world.LanduseDefaults{forestLanduse()}
	cfg.Vegetation = []world.VegDefaults{conifer(), grass(), bareGround()}

	ridge := basePatch("sandy_loam", "forest")
	ridge.Name = "ridge"
	ridge.SatDeficit = 0.45
	ridge.Layers = []LayerConfig{coniferLayer(0.5), grassLayer(0.3)}

	hollow := basePatch("loam", "forest")
	hollow.Name = "hollow"
	hollow.Layers = []LayerConfig{grassLayer(0.6), coniferLayer(0.7)}

	gap := basePatch("loam", "forest")
	gap.Name = "gap"
	gap.Layers = []LayerConfig{
		{Height: 0.1, Strata: []StratumConfig{{Veg: "bare", Cover: 0.4}}},
		grassLayer(0.6),
	}

	cfg.Hillslopes = []HillslopeConfig{
		{Name: "north", Area: 2, Zones: []ZoneConfig{{Name: "upper", ScreenHeight: 2, Patches: []PatchConfig{ridge, hollow}}}},
		{Name: "south", Area: 1, Zones: []ZoneConfig{{Name: "lower", ScreenHeight: 2, Patches: []PatchConfig{gap}}}},
	}
	return cfg
}

// Grassland is a single open pasture patch.
func Grassland() *Config {
	cfg := DefaultConfig()
	cfg.Name = "grassland"
	cfg.Soils = []world.SoilDefaults{loam()}
	cfg.Landuses = []world.LanduseDefaults{{Name: "pasture", FertToSoil: 1, LitterRainCapacity: 0.0005}}
	cfg.Vegetation = []world.VegDefaults{grass()}
	cfg.Climate.RainProbability = 0.25

	p := basePatch("loam", "pasture")
	p.Name = "pasture"
	p.Layers = []LayerConfig{grassLayer(0.9)}
	cfg.Hillslopes = []HillslopeConfig{
		{Name: "plain", Area: 1, Zones: []ZoneConfig{{Name: "plain", ScreenHeight: 2, Patches: []PatchConfig{p}}}},
	}
	return cfg
}

// Irrigated is a fertilized, irrigated field next to a septic-loaded
// residential patch.
func Irrigated() *Config {
	cfg := DefaultConfig()
	cfg.Name = "irrigated"
	cfg.Start = "2021-03-01"
	cfg.Days = 240
	cfg.Soils = []world.SoilDefaults{loam()}
	cfg.Landuses = []world.LanduseDefaults{
		{
			Name:               "agriculture",
			Irrigation:         0.002,
			FertilizerNO3:      1e-5,
			FertilizerNH4:      1e-5,
			FertToSoil:         0.1,
			LitterRainCapacity: 0.0005,
		},
		{
			Name:               "residential",
			SepticWaterLoad:    0.0004,
			SepticNO3Load:      2e-6,
			FertToSoil:         1,
			LitterRainCapacity: 0.0005,
		},
	}
	cfg.Vegetation = []world.VegDefaults{grass()}
	cfg.Climate.RainProbability = 0.15
	cfg.Climate.MeanTemp = 14

	field := basePatch("loam", "agriculture")
	field.Name = "field"
	field.Layers = []LayerConfig{grassLayer(0.95)}
	field.Events = []EventConfig{
		{Kind: "irrigation", Records: weekly("2021-05-", 0.004)},
		{Kind: "fertilizer_NO3", Records: []EventRecord{{Date: "2021-04-15", Value: 5e-4}, {Date: "2021-06-15", Value: 3e-4}}},
		{Kind: "fertilizer_NH4", Records: []EventRecord{{Date: "2021-04-15", Value: 5e-4}}},
		{Kind: "PH", Records: []EventRecord{{Date: "2021-03-01", Value: 6.8}, {Date: "2021-07-01", Value: 7.2}}},
	}

	yard := basePatch("loam", "residential")
	yard.Name = "yard"
	yard.Layers = []LayerConfig{grassLayer(0.7)}

	cfg.Hillslopes = []HillslopeConfig{
		{Name: "valley", Area: 2, Zones: []ZoneConfig{{Name: "valley", ScreenHeight: 2, Patches: []PatchConfig{field, yard}}}},
	}
	return cfg
}

// Alpine is a cold, snow dominated slope with wind redistribution on.
func Alpine() *Config {
	cfg := DefaultConfig()
	cfg.Name = "alpine"
	cfg.Flags.SnowScale = true
	cfg.Climate.MeanTemp = -1
	cfg.Climate.TempAmplitude = 9
	cfg.Climate.RainProbability = 0.35
	cfg.Climate.Latitude = 47
	cfg.Soils = []world.SoilDefaults{sandyLoam()}
	cfg.Landuses = []world.LanduseDefaults{forestLanduse()}
	cfg.Vegetation = []world.VegDefaults{conifer(), grass()}

	krummholz := basePatch("sandy_loam", "forest")
	krummholz.Name = "krummholz"
	krummholz.SnowRedistScale = 1.3
	krummholz.SnowpackWE = 0.05
	krummholz.Layers = []LayerConfig{
		{Height: 1.5, Strata: []StratumConfig{{
			Veg: "conifer", Cover: 0.4, LAI: 2, RootDepth: 0.5,
			Cpool: 0.02, Npool: 0.001, Leafc: 0.2, Frootc: 0.1, Stemc: 1,
		}}},
	}

	meadow := basePatch("sandy_loam", "forest")
	meadow.Name = "meadow"
	meadow.SnowRedistScale = 0.8
	meadow.Layers = []LayerConfig{grassLayer(0.7)}

	cfg.Hillslopes = []HillslopeConfig{
		{Name: "cirque", Area: 1, Zones: []ZoneConfig{{Name: "cirque", ScreenHeight: 2, Patches: []PatchConfig{krummholz, meadow}}}},
	}
	return cfg
}

// weekly returns records on days 1, 8, 15 and 22 of a month given as
// "YYYY-MM-".
func weekly(month string, value float64) []EventRecord {
	var out []EventRecord
	for day := 1; day <= 22; day += 7 {
		out = append(out, EventRecord{Date: fmt.Sprintf("%s%02d", month, day), Value: value})
	}
	return out
}
