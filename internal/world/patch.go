package world

import "github.com/san-kum/ecopatch/internal/events"

// Layer groups the strata sharing one height band. NullCover is the
// fraction of the band not covered by any of its strata.
type Layer struct {
	Height    float64
	NullCover float64
	Strata    []StratumID
}

type Snowpack struct {
	WaterEquivalentDepth float64
	WaterDepth           float64
	Height               float64
	EnergyDeficit        float64
	SurfaceAge           float64
	Sublimation          float64
	OverstoryFraction    float64
	OverstoryHeight      float64
}

// Total is the water held by the pack, frozen and liquid.
func (s Snowpack) Total() float64 { return s.WaterEquivalentDepth + s.WaterDepth }

type Litter struct {
	RainStored float64
}

type Rootzone struct {
	Depth         float64
	FieldCapacity float64
	PotentialSat  float64
	S             float64
}

// SurfacePools hold nutrients ponded or applied on the soil surface (kg/m2).
type SurfacePools struct {
	NO3           float64
	NH4           float64
	DOC           float64
	DON           float64
	FertilizerNO3 float64
	FertilizerNH4 float64
}

type SoilCarbon struct {
	Soil1c, Soil2c, Soil3c, Soil4c float64
	DOC                            float64
}

type SoilNitrogen struct {
	Soil1n, Soil2n, Soil3n, Soil4n float64
	Sminn                          float64
	Nitrate                        float64
	DON                            float64
}

type LitterCarbon struct {
	Litr1c, Litr2c, Litr3c, Litr4c float64
}

type LitterNitrogen struct {
	Litr1n, Litr2n, Litr3n, Litr4n float64
}

// CarbonFlux is the daily patch carbon flux record.
type CarbonFlux struct {
	Litr1cHR, Litr2cHR, Litr3cHR, Litr4cHR float64
	Soil1cHR, Soil2cHR, Soil3cHR, Soil4cHR float64
	DOLitterC                              float64
}

// HeterotrophicRespiration sums the litter and soil respiration fluxes.
func (c CarbonFlux) HeterotrophicRespiration() float64 {
	return c.Litr1cHR + c.Litr2cHR + c.Litr3cHR + c.Litr4cHR +
		c.Soil1cHR + c.Soil2cHR + c.Soil3cHR + c.Soil4cHR
}

// NitrogenFlux is the daily patch nitrogen flux record.
type NitrogenFlux struct {
	PlantPotentialNDemand float64
	FPI                   float64
	Mineralized           float64
	Nitrif                float64
	Denitrif              float64
	NToGW                 float64
	DOLitterN             float64
	PlantUptake           float64
}

// Fluxes are the patch water and energy fluxes of the current day (m/day
// unless noted).
type Fluxes struct {
	RainThroughfall float64
	SnowThroughfall float64
	SnowMelt        float64
	Infiltration    float64
	Recharge        float64
	GWDrainage      float64

	Evaporation            float64
	EvaporationSurf        float64
	ExfiltrationUnsatZone  float64
	ExfiltrationSatZone    float64
	TranspirationUnsatZone float64
	TranspirationSatZone   float64
	PET                    float64

	RZDrainage    float64
	UnsatDrainage float64

	SurfaceHeatFlux float64 // kJ/m2/day
	NetPlantPsn     float64 // kgC/m2/day
	LAI             float64
}

// Snapshot is the start-of-day state used by the closure diagnostics.
type Snapshot struct {
	SatDeficit     float64
	SatDeficitZ    float64
	UnsatStorage   float64
	RZStorage      float64
	DetentionStore float64
	Snowpack       float64
	RainStored     float64
	SnowStored     float64
	TotalC         float64
	TotalN         float64
}

type Balance struct {
	Water    float64
	Carbon   float64
	Nitrogen float64
}

type PatchAccumulator struct {
	Year   int
	Pcp    float64
	SnowIn float64
}

type Patch struct {
	ID        PatchID
	Zone      ZoneID
	Hillslope HillslopeID
	Soil      SoilID
	Landuse   LanduseID
	Area      float64

	// Layers are ordered by increasing height.
	Layers []Layer
	Events *events.Table

	KsatVertical    float64
	SnowRedistScale float64
	PsiMaxVeg       float64 // MPa
	PH              float64
	Tsoil           float64
	ThetaStd        float64

	SatDeficit     float64
	SatDeficitZ    float64
	UnsatStorage   float64
	RZStorage      float64
	DetentionStore float64
	Rootzone       Rootzone
	FieldCapacity  float64
	S              float64

	WiltingPoint     float64
	CapRise          float64
	PotentialCapRise float64

	Snowpack   Snowpack
	RainStored float64
	SnowStored float64
	Litter     Litter

	Surface SurfacePools
	SoilC   SoilCarbon
	SoilN   SoilNitrogen
	LitterC LitterCarbon
	LitterN LitterNitrogen
	CDF     CarbonFlux
	NDF     NitrogenFlux

	Fluxes  Fluxes
	TotalC  float64
	TotalN  float64
	Preday  Snapshot
	Balance Balance
	AccYear PatchAccumulator
}
