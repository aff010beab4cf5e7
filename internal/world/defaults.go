package world

import "fmt"

// RetentionCurve selects the soil water retention model.
type RetentionCurve int

const (
	BrooksCorey RetentionCurve = iota
	VanGenuchten
)

func (c RetentionCurve) String() string {
	if c == VanGenuchten {
		return "van_genuchten"
	}
	return "brooks_corey"
}

func (c RetentionCurve) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *RetentionCurve) UnmarshalText(b []byte) error {
	switch string(b) {
	case "brooks_corey", "":
		*c = BrooksCorey
	case "van_genuchten":
		*c = VanGenuchten
	default:
		return fmt.Errorf("world: unknown retention curve %q", b)
	}
	return nil
}

// SoilDefaults is a read-only soil parameter set. Depths are in m,
// conductivities in m/day.
type SoilDefaults struct {
	Name string `yaml:"name" validate:"required"`

	Porosity0     float64        `yaml:"porosity_0" validate:"gt=0,lte=1"`
	PorosityDecay float64        `yaml:"porosity_decay"`
	SoilDepth     float64        `yaml:"soil_depth" validate:"gt=0"`
	Ksat0         float64        `yaml:"ksat_0" validate:"gte=0"`
	Ksat0V        float64        `yaml:"ksat_0_v" validate:"gte=0"`
	MzV           float64        `yaml:"mz_v" validate:"gt=0"`
	PsiAirEntry   float64        `yaml:"psi_air_entry" validate:"gt=0"`
	PoreSizeIndex float64        `yaml:"pore_size_index" validate:"gt=0"`
	Curve         RetentionCurve `yaml:"curve"`
	P3            float64        `yaml:"p3"`
	P4            float64        `yaml:"p4"`

	DeltaZ          float64 `yaml:"deltaz" validate:"gte=0"`
	MinHeatCapacity float64 `yaml:"min_heat_capacity"`
	MaxHeatCapacity float64 `yaml:"max_heat_capacity"`

	MaximumSnowEnergyDeficit float64 `yaml:"maximum_snow_energy_deficit"`
	SnowWaterCapacity        float64 `yaml:"snow_water_capacity" validate:"gte=0"`
	SnowLightExtCoef         float64 `yaml:"snow_light_ext_coef" validate:"gte=0"`
	SnowMeltTcoef            float64 `yaml:"snow_melt_tcoef" validate:"gte=0"`

	DONProductionRate float64 `yaml:"don_production_rate" validate:"gte=0,lte=1"`
	NO3AdsorptionRate float64 `yaml:"no3_adsorption_rate" validate:"gte=0,lte=1"`
	ThetaMeanStdP1    float64 `yaml:"theta_mean_std_p1"`
	ThetaMeanStdP2    float64 `yaml:"theta_mean_std_p2"`
	SatToGWCoeff      float64 `yaml:"sat_to_gw_coeff" validate:"gte=0,lte=1"`
}

type LanduseDefaults struct {
	Name string `yaml:"name" validate:"required"`

	Irrigation      float64 `yaml:"irrigation" validate:"gte=0"`
	FertilizerNO3   float64 `yaml:"fertilizer_no3" validate:"gte=0"`
	FertilizerNH4   float64 `yaml:"fertilizer_nh4" validate:"gte=0"`
	SepticWaterLoad float64 `yaml:"septic_water_load" validate:"gte=0"`
	SepticNO3Load   float64 `yaml:"septic_no3_load" validate:"gte=0"`

	// FertToSoil is the fraction of the fertilizer carry-over pools moved
	// into the soil each day.
	FertToSoil         float64 `yaml:"fert_to_soil" validate:"gte=0,lte=1"`
	LitterRainCapacity float64 `yaml:"litter_rain_capacity" validate:"gte=0"`
}

// VegDefaults parameterize one plant functional type.
type VegDefaults struct {
	Name string  `yaml:"name" validate:"required"`
	Type VegType `yaml:"type"`

	ExtCoef           float64 `yaml:"ext_coef" validate:"gte=0"`
	Albedo            float64 `yaml:"albedo" validate:"gte=0,lte=1"`
	RainInterceptCoef float64 `yaml:"rain_intercept_coef" validate:"gte=0"` // m per unit LAI
	SnowInterceptCoef float64 `yaml:"snow_intercept_coef" validate:"gte=0"` // m per unit LAI
	GsMax             float64 `yaml:"gs_max" validate:"gte=0"`
	TranspirationCoef float64 `yaml:"transpiration_coef" validate:"gte=0,lte=1"`
	WUE               float64 `yaml:"wue" validate:"gte=0"`     // kgC per m of transpired water
	MRCoef            float64 `yaml:"mr_coef" validate:"gte=0"` // per day at 20 degC
	SLA               float64 `yaml:"sla" validate:"gte=0"`     // m2 leaf per kgC
	PsiMax            float64 `yaml:"psi_max" validate:"lte=0"` // MPa

	LeafCN  float64 `yaml:"leaf_cn" validate:"gte=0"`
	FrootCN float64 `yaml:"froot_cn" validate:"gte=0"`
	StemCN  float64 `yaml:"stem_cn" validate:"gte=0"`

	AllocLeaf  float64 `yaml:"alloc_leaf" validate:"gte=0"`
	AllocFroot float64 `yaml:"alloc_froot" validate:"gte=0"`
	AllocStem  float64 `yaml:"alloc_stem" validate:"gte=0"`

	LeafTurnover float64 `yaml:"leaf_turnover" validate:"gte=0"` // per year
	LitterLabile float64 `yaml:"litter_labile" validate:"gte=0"`
	LitterCell   float64 `yaml:"litter_cell" validate:"gte=0"`
	LitterLignin float64 `yaml:"litter_lignin" validate:"gte=0"`
}
