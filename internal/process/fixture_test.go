package process

import (
	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/hydraulics"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

var (
	testSoil = world.SoilDefaults{
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
	testConifer = world.VegDefaults{
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
)

func testEnv() *patch.Env {
	w := &world.World{
		Hillslopes: []world.Hillslope{{ID: 0, Zones: []world.ZoneID{0}, Patches: []world.PatchID{0}, Area: 4}},
		Zones: []world.Zone{{ID: 0, Patches: []world.PatchID{0}, ScreenHeight: 2, Forcing: world.Forcing{
			KdownDirect: 12000, KdownDiffuse: 4000, PARDirect: 5000, PARDiffuse: 2000,
			Tavg: 12, Tsoil: 10, Wind: 2, Dayl: 43200,
		}}},
		Soils:      []world.SoilDefaults{testSoil},
		Landuses:   []world.LanduseDefaults{{Name: "forest", FertToSoil: 1, LitterRainCapacity: 0.001}},
		Vegetation: []world.VegDefaults{testConifer},
		Strata: []world.Stratum{{
			ID: 0, CoverFraction: 0.7, LAI: 3, RootDepth: 0.8,
			CS: world.StratumCarbon{Cpool: 0.05, Leafc: 0.3, Frootc: 0.2, Stemc: 5},
			NS: world.StratumNitrogen{Npool: 0.002, Leafn: 0.3 / 40, Frootn: 0.2 / 50, Stemn: 5.0 / 300},
		}},
	}
	w.Patches = []world.Patch{{
		ID:             0,
		Area:           1,
		Layers:         []world.Layer{{Height: 15, NullCover: 0.3, Strata: []world.StratumID{0}}},
		KsatVertical:   1,
		PH:             6.5,
		Tsoil:          10,
		SatDeficit:     0.3,
		SatDeficitZ:    0.7,
		RZStorage:      0.08,
		UnsatStorage:   0.01,
		DetentionStore: 0.004,
		Rootzone:       world.Rootzone{Depth: 0.5, PotentialSat: 0.2, S: 0.4},
		S:              0.3,
		LitterC:        world.LitterCarbon{Litr1c: 0.05, Litr2c: 0.1, Litr3c: 0.05, Litr4c: 0.1},
		LitterN:        world.LitterNitrogen{Litr1n: 0.002, Litr2n: 0.002, Litr3n: 0.001, Litr4n: 0.001},
		SoilC:          world.SoilCarbon{Soil1c: 0.2, Soil2c: 1, Soil3c: 3, Soil4c: 8},
		SoilN:          world.SoilNitrogen{Soil1n: 0.02, Soil2n: 0.08, Soil3n: 0.3, Soil4n: 0.8, Sminn: 0.003, Nitrate: 0.002},
	}}
	p := &w.Patches[0]
	return &patch.Env{
		Date:       calendar.New(2020, 6, 1),
		World:      w,
		Zone:       &w.Zones[0],
		Hillslope:  &w.Hillslopes[0],
		Patch:      p,
		Soil:       &w.Soils[0],
		Landuse:    &w.Landuses[0],
		Hydraulics: hydraulics.ForSoil(&w.Soils[0]),
		Flags:      patch.Flags{Grow: true},
	}
}
