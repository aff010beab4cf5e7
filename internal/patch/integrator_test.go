package patch_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/events"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/process"
	"github.com/san-kum/ecopatch/internal/world"
)

var _ = Describe("Integrator", func() {
	var (
		h     *harness
		w     *world.World
		p     *world.Patch
		flags patch.Flags
		date  = calendar.New(2020, 7, 1)
	)

	BeforeEach(func() {
		h = newHarness()
		w = singlePatch(10)
		p = &w.Patches[0]
		flags = patch.Flags{}
	})

	step := func() (patch.Diagnostics, error) {
		integ, err := patch.New(h.processes(), flags)
		Expect(err).NotTo(HaveOccurred())
		return integ.Step(w, 0, date)
	}

	expectClosed := func(d patch.Diagnostics) {
		Expect(d.Balance.Water).To(BeNumerically("~", 0, 1e-12))
		Expect(d.Balance.Carbon).To(BeNumerically("~", 0, 1e-12))
		Expect(d.Balance.Nitrogen).To(BeNumerically("~", 0, 1e-12))
	}

	expectTrace := func(d patch.Diagnostics, want ...float64) {
		matchers := make([]any, len(want))
		for i, z := range want {
			matchers[i] = BeNumerically("~", z, 1e-12)
		}
		Expect(d.ZTrace).To(HaveExactElements(matchers...))
	}

	Context("on a dry, snow-free day", func() {
		It("takes the pack-free path and closes every balance", func() {
			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Infiltration).To(BeZero())
			Expect(d.RawInfiltration).To(BeZero())
			Expect(d.SnowBranch).To(Equal(patch.SnowAbsent))
			Expect(d.RadiativeCalls).To(Equal(4))
			Expect(h.soil.radiativeCalls).To(Equal(4))
			Expect(p.Snowpack.EnergyDeficit).To(Equal(0.001))
			Expect(d.TranspirationReductionPercent).To(Equal(1.0))
			expectTrace(d, 1, 1, 1, 1)
			Expect(d.Warnings).To(BeEmpty())
			Expect(h.rec.calls).To(Equal([]string{"canopy:0", "grow:0"}))
			expectClosed(d)
		})
	})

	Context("when rain reaches the surface", func() {
		BeforeEach(func() {
			w.Zones[0].Forcing.Rain = 0.010
		})

		It("caps infiltration at the detention store", func() {
			h.soil.infiltration = func(in float64) float64 { return 1.2 * in }

			d, err := step()
			Expect(err).NotTo(HaveOccurred())
			Expect(d.RawInfiltration).To(BeNumerically("~", 0.012, 1e-15))
			Expect(d.Infiltration).To(BeNumerically("~", 0.010, 1e-15))
			Expect(p.DetentionStore).To(BeNumerically("~", 0, 1e-15))
			Expect(p.RZStorage).To(BeNumerically("~", 0.010, 1e-15))
			expectClosed(d)
		})

		It("warns about negative infiltration and leaves the water ponded", func() {
			h.soil.infiltration = func(float64) float64 { return -0.003 }

			d, err := step()
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Infiltration).To(BeZero())
			Expect(p.DetentionStore).To(BeNumerically("~", 0.010, 1e-15))
			Expect(d.Warnings).To(HaveLen(1))
			Expect(d.Warnings[0].Stage).To(Equal(patch.StageInfiltration))
			Expect(d.Warnings[0].Value).To(Equal(-0.003))
			expectClosed(d)
		})
	})

	Context("when the pond is deeper than the snowpack", func() {
		BeforeEach(func() {
			p.Snowpack.WaterEquivalentDepth = 0.005
			p.DetentionStore = 0.02
			p.SatDeficit = 0.004
			p.SatDeficitZ = 0.008
		})

		It("melts the pack outright without the snowpack process", func() {
			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.PondHeight).To(BeNumerically("~", 0.012, 1e-15))
			Expect(d.SnowBranch).To(Equal(patch.SnowSubmerged))
			Expect(d.SnowMelt).To(BeNumerically("~", 0.005, 1e-15))
			Expect(h.rec.calls).NotTo(ContainElement("snowpack"))
			Expect(p.Snowpack.Total()).To(BeZero())
			Expect(p.DetentionStore).To(BeNumerically("~", 0.025, 1e-15))
			expectClosed(d)
		})
	})

	Context("with a snowpack above the short layer", func() {
		BeforeEach(func() {
			w = singlePatch(0.5, 10)
			p = &w.Patches[0]
			p.Snowpack.WaterEquivalentDepth = 0.1
			p.Snowpack.Height = 1
		})

		It("runs the tall layer, the snowpack and then the buried layer", func() {
			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Passes[0]).To(Equal([]int{1}))
			Expect(d.Passes[1]).To(Equal([]int{0}))
			Expect(d.Passes[2]).To(BeEmpty())
			Expect(d.SnowBranch).To(Equal(patch.SnowProcessed))
			Expect(h.rec.calls[:3]).To(Equal([]string{"canopy:1", "snowpack", "canopy:0"}))
			Expect(p.Snowpack.OverstoryFraction).To(Equal(1.0))
			expectClosed(d)
		})

		It("counts snow reaching the pack through the tall layer as throughfall", func() {
			w.Zones[0].Forcing.Snow = 0.01

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(p.Fluxes.SnowThroughfall).To(BeNumerically("~", 0.01, 1e-15))
			Expect(p.Snowpack.WaterEquivalentDepth).To(BeNumerically("~", 0.11, 1e-15))
			expectClosed(d)
		})
	})

	Context("arbitrating transpiration demand", func() {
		It("meets saturated demand from the table inside the rootzone", func() {
			h.canopy.sat, h.canopy.unsat = 0.002, 0.001
			p.SatDeficit = 0.1
			p.RZStorage = 0.01

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.SatDemandInitial).To(BeNumerically("~", 0.002, 1e-15))
			Expect(d.AvailableSatWater).To(BeNumerically("~", 0.002, 1e-15))
			Expect(d.SatDemandFinal).To(BeNumerically("~", 0, 1e-15))
			Expect(d.UnsatDemandFinal).To(BeNumerically("~", 0, 1e-15))
			Expect(d.TranspirationReductionPercent).To(Equal(1.0))
			Expect(p.Fluxes.TranspirationSatZone).To(BeNumerically("~", 0.002, 1e-15))
			Expect(p.SatDeficit).To(BeNumerically("~", 0.102, 1e-12))
			expectClosed(d)
		})

		It("scales transpiration by the met fraction under stress", func() {
			h.canopy.unsat = 0.02
			p.SatDeficit = 0.8
			p.RZStorage = 0.005

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.UnsatDemandFinal).To(BeNumerically("~", 0.015, 1e-12))
			Expect(d.TranspirationReductionPercent).To(BeNumerically("~", 0.25, 1e-12))
			Expect(d.TranspirationReductionPercent).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
			Expect(w.Strata[0].TranspirationUnsat).To(BeNumerically("~", 0.005, 1e-12))
			Expect(p.Fluxes.TranspirationUnsatZone).To(BeNumerically("~", 0.005, 1e-12))
			expectClosed(d)
		})
	})

	Context("when demand exceeds the water above field capacity", func() {
		BeforeEach(func() {
			h.canopy.unsat = 0.03
			h.soil.fieldCapacity = 0.09
			h.soil.capRise = 0.005
			h.soil.wilting = 0.4
			p.RZStorage = 0.08
			p.Rootzone.FieldCapacity = 0.07
			p.PotentialCapRise = 0.005
		})

		It("draws capillary rise and stops at the wilting point", func() {
			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.CapRise).To(BeNumerically("~", 0.005, 1e-15))
			Expect(p.CapRise).To(BeNumerically("~", 0.005, 1e-15))
			Expect(p.WiltingPoint).To(BeNumerically("~", 0.06, 1e-15))
			Expect(p.RZStorage).To(BeNumerically("~", 0.06, 1e-12))
			Expect(d.UnsatDemandFinal).To(BeNumerically("~", 0.005, 1e-12))
			Expect(d.TranspirationReductionPercent).To(BeNumerically("~", 0.8333333333333334, 1e-12))
			Expect(p.Fluxes.TranspirationUnsatZone).To(BeNumerically("~", 0.025, 1e-12))
			Expect(p.SatDeficit).To(BeNumerically("~", 0.505, 1e-12))
			Expect(p.Rootzone.FieldCapacity).To(Equal(0.09))
			Expect(p.FieldCapacity).To(BeZero())
			Expect(p.Rootzone.S).To(BeNumerically("~", 0.4, 1e-12))
			Expect(p.PotentialCapRise).To(Equal(0.005), "refreshed for the next day")
			expectTrace(d, 1, 1, 1.01, 1.01)
			expectClosed(d)
		})
	})

	Context("when saturated demand lowers the water table", func() {
		BeforeEach(func() {
			h.canopy.sat = 0.01
			p.RZStorage = 0.02
		})

		It("leaves field capacity water in the rootzone", func() {
			h.soil.backfill = 0.002
			p.SatDeficit = 0.05
			p.SatDeficitZ = 0.1

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.AvailableSatWater).To(BeNumerically("~", 0.01, 1e-15))
			Expect(d.AddedFieldCapacity).To(BeNumerically("~", 0.002, 1e-15))
			Expect(p.RZStorage).To(BeNumerically("~", 0.022, 1e-12))
			Expect(p.SatDeficit).To(BeNumerically("~", 0.062, 1e-12))
			expectTrace(d, 0.1, 0.12, 0.124, 0.124)
			expectClosed(d)
		})

		It("splits the backfill when the table rose into the rootzone overnight", func() {
			h.soil.backfill = 0.012
			p.SatDeficit = 0.13
			p.SatDeficitZ = 0.4

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(d.AddedFieldCapacity).To(BeNumerically("~", 0.012, 1e-15))
			Expect(p.RZStorage).To(BeNumerically("~", 0.03, 1e-12))
			Expect(p.UnsatStorage).To(BeNumerically("~", 0.002, 1e-12))
			Expect(p.SatDeficit).To(BeNumerically("~", 0.152, 1e-12))
			Expect(d.TranspirationReductionPercent).To(Equal(1.0))
			expectTrace(d, 0.26, 0.28, 0.304, 0.304)
			expectClosed(d)
		})
	})

	Context("finalizing the water table", func() {
		BeforeEach(func() {
			h.soil.drainRate = 0.004
		})

		It("marks a saturated column full and does not drain it", func() {
			h.soil.capRise = 0.003
			p.SatDeficit = 0
			p.SatDeficitZ = 0
			p.RZStorage = 0.05

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(p.S).To(Equal(1.0))
			Expect(p.Rootzone.S).To(Equal(1.0))
			Expect(p.Fluxes.RZDrainage).To(BeZero())
			Expect(p.Fluxes.UnsatDrainage).To(BeZero())
			Expect(p.RZStorage).To(Equal(0.05))
			Expect(p.PotentialCapRise).To(Equal(0.003))
			expectTrace(d, 0, 0, 0, 0)
			expectClosed(d)
		})

		It("drains rootzone to unsaturated zone to water table below the rootzone", func() {
			h.soil.fieldCapacity = 0.05
			p.Rootzone.FieldCapacity = 0.05
			p.RZStorage = 0.1
			p.UnsatStorage = 0.05

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(p.Fluxes.RZDrainage).To(BeNumerically("~", 0.004, 1e-15))
			Expect(p.Fluxes.UnsatDrainage).To(BeNumerically("~", 0.004, 1e-15))
			Expect(p.RZStorage).To(BeNumerically("~", 0.096, 1e-12))
			Expect(p.UnsatStorage).To(BeNumerically("~", 0.05, 1e-12))
			Expect(p.SatDeficit).To(BeNumerically("~", 0.496, 1e-12))
			Expect(p.Rootzone.S).To(BeNumerically("~", 0.64, 1e-12))
			expectTrace(d, 1, 1, 1, 0.992)
			expectClosed(d)
		})

		It("merges the unsaturated zone into the rootzone when the table is inside it", func() {
			h.soil.fieldCapacity = 0.01
			p.Rootzone.FieldCapacity = 0.01
			p.SatDeficit = 0.1
			p.SatDeficitZ = 0.2
			p.RZStorage = 0.02
			p.UnsatStorage = 0.01

			d, err := step()
			Expect(err).NotTo(HaveOccurred())

			Expect(p.UnsatStorage).To(BeZero())
			Expect(p.Fluxes.RZDrainage).To(BeNumerically("~", 0.004, 1e-15))
			Expect(p.Fluxes.UnsatDrainage).To(BeZero())
			Expect(p.RZStorage).To(BeNumerically("~", 0.026, 1e-12))
			Expect(p.SatDeficit).To(BeNumerically("~", 0.096, 1e-12))
			Expect(p.S).To(BeNumerically("~", 0.3, 1e-12))
			Expect(p.Rootzone.S).To(BeNumerically("~", 0.08/0.15, 1e-12))
			expectTrace(d, 0.2, 0.2, 0.2, 0.192)
			expectClosed(d)
		})
	})

	Context("with dated inputs", func() {
		It("fails when the days go backwards", func() {
			series, err := events.NewSeries([]events.Record{{Date: calendar.New(2020, 7, 1), Value: 0.002}})
			Expect(err).NotTo(HaveOccurred())
			p.Events = events.NewTable()
			p.Events.Set(events.Irrigation, series)

			d, err := step()
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Irrigation).To(Equal(0.002))

			integ, err := patch.New(h.processes(), flags)
			Expect(err).NotTo(HaveOccurred())
			_, err = integ.Step(w, 0, calendar.New(2020, 6, 30))
			Expect(err).To(MatchError(patch.ErrEvents))
			Expect(errors.Is(err, events.ErrCursorRewind)).To(BeTrue())

			var se *patch.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Stage).To(Equal(patch.StageForcing))
		})
	})

	Context("when a biogeochemistry collaborator fails", func() {
		It("returns a step error naming the failure", func() {
			flags.Grow = true
			boom := errors.New("litter pool went negative")
			h.kinetics.decompose = boom

			_, err := step()
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(patch.ErrDecomposition))
			Expect(err).To(MatchError(boom))

			var se *patch.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Stage).To(Equal(patch.StageBGC))
			Expect(se.Patch).To(Equal(world.PatchID(0)))
		})
	})
})

var _ = Describe("Integrator with the default processes", func() {
	It("conserves water, carbon and nitrogen over a winter and spring", func() {
		w := forestPatch()
		integ, err := patch.New(process.Defaults(), patch.Flags{Grow: true, Groundwater: true})
		Expect(err).NotTo(HaveOccurred())

		start := calendar.New(2020, 12, 1)
		branches := map[patch.SnowBranch]int{}
		for i := 0; i < 150; i++ {
			date := start.AddDays(i)
			w.Zones[0].Forcing = seasonalForcing(i)

			d, err := integ.Step(w, 0, date)
			Expect(err).NotTo(HaveOccurred(), "day %s", date)
			Expect(math.Abs(d.Balance.Water)).To(BeNumerically("<", 1e-9), "water on %s", date)
			Expect(math.Abs(d.Balance.Carbon)).To(BeNumerically("<", 1e-9), "carbon on %s", date)
			Expect(math.Abs(d.Balance.Nitrogen)).To(BeNumerically("<", 1e-9), "nitrogen on %s", date)
			Expect(d.TranspirationReductionPercent).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
			branches[d.SnowBranch]++
		}
		Expect(branches[patch.SnowProcessed]).To(BeNumerically(">", 0))
		Expect(w.Patches[0].AccYear.Year).To(Equal(2021))
		Expect(w.Hillslopes[0].GW.Storage).To(BeNumerically(">", 0))
	})
})

// seasonalForcing is a cold, snowy first month that warms into a wet spring.
func seasonalForcing(day int) world.Forcing {
	warm := math.Min(float64(day)/90, 1)
	f := world.Forcing{
		KdownDirect:   6000 + 12000*warm,
		KdownDiffuse:  2000 + 3000*warm,
		PARDirect:     2500 + 5000*warm,
		PARDiffuse:    800 + 1200*warm,
		Dayl:          32000 + 14000*warm,
		Wind:          2,
		Tavg:          -6 + 20*warm,
		Tsoil:         -1 + 12*warm,
		CloudFraction: 0.4,
		NdepNO3:       1e-6,
		NdepNH4:       1e-6,
	}
	if day%3 == 0 {
		if f.Tavg < 0 {
			f.Snow = 0.012
		} else {
			f.Rain = 0.009
			f.DaytimeRainDuration = 14400
		}
	}
	if day%7 == 0 {
		f.RainHourlyTotal = 0.001
	}
	return f
}

func forestPatch() *world.World {
	w := &world.World{
		Hillslopes: []world.Hillslope{{Zones: []world.ZoneID{0}, Patches: []world.PatchID{0}, Area: 2}},
		Zones:      []world.Zone{{Patches: []world.PatchID{0}, ScreenHeight: 2}},
		Soils: []world.SoilDefaults{{
			Name: "loam", Porosity0: 0.45, PorosityDecay: 4, SoilDepth: 2,
			Ksat0: 1, Ksat0V: 1, MzV: 0.5, PsiAirEntry: 0.3, PoreSizeIndex: 0.2,
			DeltaZ: 0.1, MinHeatCapacity: 1000, MaxHeatCapacity: 3000,
			MaximumSnowEnergyDeficit: -0.05, SnowWaterCapacity: 0.05,
			SnowLightExtCoef: 10, SnowMeltTcoef: 0.002,
			DONProductionRate: 0.01, NO3AdsorptionRate: 0.5,
			ThetaMeanStdP1: 0.1, ThetaMeanStdP2: -0.1, SatToGWCoeff: 0.01,
		}},
		Landuses: []world.LanduseDefaults{{Name: "forest", FertToSoil: 1, LitterRainCapacity: 0.001}},
		Vegetation: []world.VegDefaults{
			{
				Name: "conifer", Type: world.Tree, ExtCoef: 0.5, Albedo: 0.1,
				RainInterceptCoef: 0.0002, SnowInterceptCoef: 0.0004,
				GsMax: 0.006, TranspirationCoef: 0.6, WUE: 3, MRCoef: 0.002, SLA: 10, PsiMax: -2,
				LeafCN: 40, FrootCN: 50, StemCN: 300,
				AllocLeaf: 0.4, AllocFroot: 0.4, AllocStem: 0.2,
				LeafTurnover: 0.3, LitterLabile: 0.3, LitterCell: 0.45, LitterLignin: 0.25,
			},
			{Name: "grass", Type: world.Grass, ExtCoef: 0.6, Albedo: 0.2, RainInterceptCoef: 0.0001,
				GsMax: 0.004, TranspirationCoef: 0.5, WUE: 2, MRCoef: 0.003, SLA: 20, PsiMax: -1.5,
				LeafCN: 25, FrootCN: 40, StemCN: 100,
				AllocLeaf: 0.6, AllocFroot: 0.4, LeafTurnover: 1,
				LitterLabile: 0.4, LitterCell: 0.4, LitterLignin: 0.2},
		},
		Strata: []world.Stratum{
			{ID: 0, Veg: 1, CoverFraction: 0.6, LAI: 1.5, RootDepth: 0.3,
				CS: world.StratumCarbon{Cpool: 0.01, Leafc: 0.075, Frootc: 0.05},
				NS: world.StratumNitrogen{Npool: 0.001, Leafn: 0.003, Frootn: 0.00125}},
			{ID: 1, Veg: 0, CoverFraction: 0.7, LAI: 3, RootDepth: 0.8,
				CS: world.StratumCarbon{Cpool: 0.05, Leafc: 0.3, Frootc: 0.2, Stemc: 5},
				NS: world.StratumNitrogen{Npool: 0.002, Leafn: 0.0075, Frootn: 0.004, Stemn: 5.0 / 300}},
		},
	}
	w.Patches = []world.Patch{{
		Area: 1,
		Layers: []world.Layer{
			{Height: 0.4, NullCover: 0.4, Strata: []world.StratumID{0}},
			{Height: 15, NullCover: 0.3, Strata: []world.StratumID{1}},
		},
		KsatVertical: 1,
		PH:           6.5,
		SatDeficit:   0.3,
		RZStorage:    0.08,
		UnsatStorage: 0.01,
		Rootzone:     world.Rootzone{Depth: 0.5, PotentialSat: 0.2, S: 0.4},
		LitterC:      world.LitterCarbon{Litr1c: 0.05, Litr2c: 0.1, Litr3c: 0.05, Litr4c: 0.1},
		LitterN:      world.LitterNitrogen{Litr1n: 0.002, Litr2n: 0.002, Litr3n: 0.001, Litr4n: 0.001},
		SoilC:        world.SoilCarbon{Soil1c: 0.2, Soil2c: 1, Soil3c: 3, Soil4c: 8},
		SoilN:        world.SoilNitrogen{Soil1n: 0.02, Soil2n: 0.08, Soil3n: 0.3, Soil4n: 0.8, Sminn: 0.003, Nitrate: 0.002},
	}}
	return w
}
