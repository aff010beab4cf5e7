package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/events"
	"github.com/san-kum/ecopatch/internal/forcing"
	"github.com/san-kum/ecopatch/internal/hydraulics"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/world"
)

const (
	DefaultStart   = "2020-10-01"
	DefaultDays    = 365
	DefaultPH      = 6.5
	DefaultLogLvl  = "info"
	DefaultLogFmt  = "text"
	DefaultRedist  = 1.0
	DefaultWorkers = 0
)

var (
	ErrUnknownSoil    = errors.New("config: unknown soil")
	ErrUnknownLanduse = errors.New("config: unknown landuse")
	ErrUnknownVeg     = errors.New("config: unknown vegetation")
	ErrDuplicateName  = errors.New("config: duplicate name")
	ErrCoverExceeded  = errors.New("config: layer cover exceeds 1")
)

var validate = validator.New()

type Config struct {
	Name      string     `yaml:"name"`
	Start     string     `yaml:"start" validate:"required,datetime=2006-01-02"`
	Days      int        `yaml:"days" validate:"gt=0"`
	Seed      int64      `yaml:"seed"`
	Workers   int        `yaml:"workers" validate:"gte=0"`
	Tolerance float64    `yaml:"tolerance" validate:"gt=0"`
	Log       LogConfig  `yaml:"log"`
	Flags     FlagConfig `yaml:"flags"`

	Climate    forcing.Climate         `yaml:"climate"`
	Soils      []world.SoilDefaults    `yaml:"soils" validate:"required,min=1,dive"`
	Landuses   []world.LanduseDefaults `yaml:"landuses" validate:"required,min=1,dive"`
	Vegetation []world.VegDefaults     `yaml:"vegetation,omitempty" validate:"dive"`
	Hillslopes []HillslopeConfig       `yaml:"hillslopes" validate:"required,min=1,dive"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type FlagConfig struct {
	Grow          bool `yaml:"grow"`
	Groundwater   bool `yaml:"groundwater"`
	SnowScale     bool `yaml:"snow_scale"`
	SurfaceEnergy bool `yaml:"surface_energy"`
	Verbose       int  `yaml:"verbose" validate:"gte=0"`
}

type HillslopeConfig struct {
	Name  string       `yaml:"name"`
	Area  float64      `yaml:"area" validate:"gt=0"`
	Zones []ZoneConfig `yaml:"zones" validate:"required,min=1,dive"`
}

type ZoneConfig struct {
	Name         string        `yaml:"name"`
	ScreenHeight float64       `yaml:"screen_height" validate:"gt=0"`
	Patches      []PatchConfig `yaml:"patches" validate:"required,min=1,dive"`
}

type PatchConfig struct {
	Name    string  `yaml:"name"`
	Soil    string  `yaml:"soil" validate:"required"`
	Landuse string  `yaml:"landuse" validate:"required"`
	Area    float64 `yaml:"area" validate:"gt=0"`

	KsatVertical    float64 `yaml:"ksat_vertical" validate:"gte=0,lte=1"`
	SnowRedistScale float64 `yaml:"snow_redist_scale" validate:"gte=0"`
	PH              float64 `yaml:"ph" validate:"gte=0,lte=14"`

	SatDeficit     float64 `yaml:"sat_deficit" validate:"gte=0"`
	UnsatStorage   float64 `yaml:"unsat_storage" validate:"gte=0"`
	RZStorage      float64 `yaml:"rz_storage" validate:"gte=0"`
	DetentionStore float64 `yaml:"detention_store" validate:"gte=0"`
	// RootzoneDepth defaults to the deepest stratum rooting depth.
	RootzoneDepth float64 `yaml:"rootzone_depth" validate:"gte=0"`
	SnowpackWE    float64 `yaml:"snowpack_we" validate:"gte=0"`

	LitterC world.LitterCarbon   `yaml:"litter_c"`
	LitterN world.LitterNitrogen `yaml:"litter_n"`
	SoilC   world.SoilCarbon     `yaml:"soil_c"`
	SoilN   world.SoilNitrogen   `yaml:"soil_n"`

	Layers []LayerConfig `yaml:"layers,omitempty" validate:"dive"`
	Events []EventConfig `yaml:"events,omitempty" validate:"dive"`
}

type LayerConfig struct {
	Height float64         `yaml:"height" validate:"gte=0"`
	Strata []StratumConfig `yaml:"strata" validate:"required,min=1,dive"`
}

// StratumConfig gives the carbon pools of a stratum; nitrogen pools follow
// from the vegetation C:N ratios.
type StratumConfig struct {
	Veg       string  `yaml:"veg" validate:"required"`
	Cover     float64 `yaml:"cover" validate:"gte=0,lte=1"`
	LAI       float64 `yaml:"lai" validate:"gte=0"`
	RootDepth float64 `yaml:"root_depth" validate:"gte=0"`
	Cpool     float64 `yaml:"cpool" validate:"gte=0"`
	Npool     float64 `yaml:"npool" validate:"gte=0"`
	Leafc     float64 `yaml:"leafc" validate:"gte=0"`
	Frootc    float64 `yaml:"frootc" validate:"gte=0"`
	Stemc     float64 `yaml:"stemc" validate:"gte=0"`
}

type EventConfig struct {
	Kind     string        `yaml:"kind" validate:"oneof=irrigation fertilizer_NO3 fertilizer_NH4 PH"`
	Disabled bool          `yaml:"disabled"`
	Records  []EventRecord `yaml:"records" validate:"dive"`
}

type EventRecord struct {
	Date  string  `yaml:"date" validate:"required,datetime=2006-01-02"`
	Value float64 `yaml:"value"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:      "default",
		Start:     DefaultStart,
		Days:      DefaultDays,
		Workers:   DefaultWorkers,
		Tolerance: patch.DefaultTolerance,
		Log:       LogConfig{Level: DefaultLogLvl, Format: DefaultLogFmt},
		Flags:     FlagConfig{Grow: true, Groundwater: true},
		Climate:   forcing.DefaultClimate(),
	}
}

// Load reads a YAML config on top of DefaultConfig. A config without a
// world description takes the forest preset's.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(cfg.Hillslopes) == 0 {
		forest := Forest()
		cfg.Soils, cfg.Landuses, cfg.Vegetation = forest.Soils, forest.Landuses, forest.Vegetation
		cfg.Hillslopes = forest.Hillslopes
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Config) StartDate() (calendar.Date, error) {
	return calendar.Parse(c.Start)
}

func (c *Config) PatchFlags() patch.Flags {
	return patch.Flags{
		Grow:          c.Flags.Grow,
		Groundwater:   c.Flags.Groundwater,
		SnowScale:     c.Flags.SnowScale,
		SurfaceEnergy: c.Flags.SurfaceEnergy,
		Verbose:       c.Flags.Verbose,
	}
}

// Validate checks the struct tags, then the name references between the
// world description and the parameter sets.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	soils, err := names(c.Soils, func(s world.SoilDefaults) string { return s.Name })
	if err != nil {
		return err
	}
	landuses, err := names(c.Landuses, func(l world.LanduseDefaults) string { return l.Name })
	if err != nil {
		return err
	}
	vegs, err := names(c.Vegetation, func(v world.VegDefaults) string { return v.Name })
	if err != nil {
		return err
	}
	for hi, h := range c.Hillslopes {
		for zi, z := range h.Zones {
			for pi, p := range z.Patches {
				where := fmt.Sprintf("hillslope %d zone %d patch %d", hi, zi, pi)
				if _, ok := soils[p.Soil]; !ok {
					return fmt.Errorf("%w %q (%s)", ErrUnknownSoil, p.Soil, where)
				}
				if _, ok := landuses[p.Landuse]; !ok {
					return fmt.Errorf("%w %q (%s)", ErrUnknownLanduse, p.Landuse, where)
				}
				for li, l := range p.Layers {
					cover := 0.0
					for _, s := range l.Strata {
						if _, ok := vegs[s.Veg]; !ok {
							return fmt.Errorf("%w %q (%s)", ErrUnknownVeg, s.Veg, where)
						}
						cover += s.Cover
					}
					if cover > 1+1e-9 {
						return fmt.Errorf("%w: %s layer %d has %.3f", ErrCoverExceeded, where, li, cover)
					}
				}
			}
		}
	}
	return nil
}

func names[T any](items []T, name func(T) string) (map[string]int, error) {
	out := make(map[string]int, len(items))
	for i, it := range items {
		n := name(it)
		if _, dup := out[n]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateName, n)
		}
		out[n] = i
	}
	return out, nil
}

// BuildWorld validates c and lays its description out in a world arena.
func (c *Config) BuildWorld() (*world.World, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	soils, _ := names(c.Soils, func(s world.SoilDefaults) string { return s.Name })
	landuses, _ := names(c.Landuses, func(l world.LanduseDefaults) string { return l.Name })
	vegs, _ := names(c.Vegetation, func(v world.VegDefaults) string { return v.Name })

	w := &world.World{
		Basins:     []world.Basin{{ID: 0, Name: c.Name}},
		Soils:      slices.Clone(c.Soils),
		Landuses:   slices.Clone(c.Landuses),
		Vegetation: slices.Clone(c.Vegetation),
	}
	for _, hc := range c.Hillslopes {
		hid := world.HillslopeID(len(w.Hillslopes))
		w.Basins[0].Hillslopes = append(w.Basins[0].Hillslopes, hid)
		w.Hillslopes = append(w.Hillslopes, world.Hillslope{ID: hid, Area: hc.Area})
		for _, zc := range hc.Zones {
			zid := world.ZoneID(len(w.Zones))
			w.Hillslopes[hid].Zones = append(w.Hillslopes[hid].Zones, zid)
			w.Zones = append(w.Zones, world.Zone{ID: zid, Hillslope: hid, ScreenHeight: zc.ScreenHeight})
			for _, pc := range zc.Patches {
				pid := world.PatchID(len(w.Patches))
				p := world.Patch{
					ID:        pid,
					Zone:      zid,
					Hillslope: hid,
					Soil:      world.SoilID(soils[pc.Soil]),
					Landuse:   world.LanduseID(landuses[pc.Landuse]),
				}
				if err := c.buildPatch(w, &p, pc, vegs); err != nil {
					return nil, fmt.Errorf("config: patch %d: %w", pid, err)
				}
				w.Patches = append(w.Patches, p)
				w.Zones[zid].Patches = append(w.Zones[zid].Patches, pid)
				w.Hillslopes[hid].Patches = append(w.Hillslopes[hid].Patches, pid)
			}
		}
	}
	if err := w.Check(); err != nil {
		return nil, err
	}
	return w, nil
}

// initMoisture derives the field capacities, saturations and capillary
// rise potential the first day reads from the initial storages.
func initMoisture(p *world.Patch, soil *hydraulics.Soil, sd *world.SoilDefaults) {
	rz := &p.Rootzone
	z := p.SatDeficitZ
	rz.FieldCapacity = soil.LayerFieldCapacity(z, rz.Depth, 0)
	p.FieldCapacity = 0
	if z >= rz.Depth {
		p.FieldCapacity = soil.LayerFieldCapacity(z, z, 0) - rz.FieldCapacity
	}

	switch {
	case p.SatDeficit <= 0:
		p.S = 1
	case z > rz.Depth:
		p.S = min(ratio(p.UnsatStorage, p.SatDeficit-rz.PotentialSat), 1)
	default:
		p.S = min(ratio(p.RZStorage+p.UnsatStorage, p.SatDeficit), 1)
	}
	switch {
	case rz.PotentialSat <= 0:
		rz.S = p.S
	case p.SatDeficit > rz.PotentialSat:
		rz.S = min(p.RZStorage/rz.PotentialSat, 1)
	default:
		rz.S = min((p.RZStorage+rz.PotentialSat-p.SatDeficit)/rz.PotentialSat, 1)
	}

	p.ThetaStd = sd.ThetaMeanStdP2*rz.S*rz.S + sd.ThetaMeanStdP1*rz.S
	p.PotentialCapRise = soil.PotentialCapRise(z)
}

func ratio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

func (c *Config) buildPatch(w *world.World, p *world.Patch, pc PatchConfig, vegs map[string]int) error {
	soil := hydraulics.ForSoil(&w.Soils[p.Soil])

	p.Area = pc.Area
	p.KsatVertical = pc.KsatVertical
	p.SnowRedistScale = pc.SnowRedistScale
	if p.SnowRedistScale == 0 {
		p.SnowRedistScale = DefaultRedist
	}
	p.PH = pc.PH
	if p.PH == 0 {
		p.PH = DefaultPH
	}
	p.SatDeficit = pc.SatDeficit
	p.SatDeficitZ = soil.WaterTableDepth(pc.SatDeficit)
	p.UnsatStorage = pc.UnsatStorage
	p.RZStorage = pc.RZStorage
	p.DetentionStore = pc.DetentionStore
	p.Snowpack.WaterEquivalentDepth = pc.SnowpackWE
	p.LitterC, p.LitterN = pc.LitterC, pc.LitterN
	p.SoilC, p.SoilN = pc.SoilC, pc.SoilN

	layers := slices.Clone(pc.Layers)
	slices.SortStableFunc(layers, func(a, b LayerConfig) int {
		switch {
		case a.Height < b.Height:
			return -1
		case a.Height > b.Height:
			return 1
		}
		return 0
	})
	rootDepth := 0.0
	for _, lc := range layers {
		layer := world.Layer{Height: lc.Height, NullCover: 1}
		for _, sc := range lc.Strata {
			sid := world.StratumID(len(w.Strata))
			vid := vegs[sc.Veg]
			veg := &w.Vegetation[vid]
			w.Strata = append(w.Strata, world.Stratum{
				ID:            sid,
				Patch:         p.ID,
				Veg:           world.VegID(vid),
				CoverFraction: sc.Cover,
				LAI:           sc.LAI,
				RootDepth:     sc.RootDepth,
				CS: world.StratumCarbon{
					Cpool:  sc.Cpool,
					Leafc:  sc.Leafc,
					Frootc: sc.Frootc,
					Stemc:  sc.Stemc,
				},
				NS: world.StratumNitrogen{
					Npool:  sc.Npool,
					Leafn:  perCN(sc.Leafc, veg.LeafCN),
					Frootn: perCN(sc.Frootc, veg.FrootCN),
					Stemn:  perCN(sc.Stemc, veg.StemCN),
				},
			})
			layer.Strata = append(layer.Strata, sid)
			layer.NullCover -= sc.Cover
			rootDepth = max(rootDepth, sc.RootDepth)
		}
		layer.NullCover = max(layer.NullCover, 0)
		p.Layers = append(p.Layers, layer)
	}

	depth := pc.RootzoneDepth
	if depth == 0 {
		depth = rootDepth
	}
	depth = min(depth, w.Soils[p.Soil].SoilDepth)
	p.Rootzone.Depth = depth
	p.Rootzone.PotentialSat = soil.DeltaWater(depth, 0)
	if p.RZStorage > p.Rootzone.PotentialSat {
		return fmt.Errorf("rootzone storage %.4f exceeds pore volume %.4f", p.RZStorage, p.Rootzone.PotentialSat)
	}
	initMoisture(p, soil, &w.Soils[p.Soil])

	if len(pc.Events) > 0 {
		p.Events = events.NewTable()
		for _, ec := range pc.Events {
			kind, err := events.ParseKind(ec.Kind)
			if err != nil {
				return err
			}
			records := make([]events.Record, 0, len(ec.Records))
			for _, r := range ec.Records {
				d, err := calendar.Parse(r.Date)
				if err != nil {
					return err
				}
				records = append(records, events.Record{Date: d, Value: r.Value})
			}
			series, err := events.NewSeries(records)
			if err != nil {
				return fmt.Errorf("%s events: %w", kind, err)
			}
			p.Events.Set(kind, series)
			if ec.Disabled {
				p.Events.Disable(kind)
			}
		}
	}
	return nil
}

func perCN(c, cn float64) float64 {
	if cn <= 0 {
		return 0
	}
	return c / cn
}
