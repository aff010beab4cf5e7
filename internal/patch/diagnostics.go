package patch

import (
	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/world"
)

type SnowBranch int

const (
	// SnowAbsent is the no-pack path with the placeholder radiation calls.
	SnowAbsent SnowBranch = iota
	SnowProcessed
	// SnowSubmerged is a pack melted outright by the pond above it.
	SnowSubmerged
)

func (b SnowBranch) String() string {
	switch b {
	case SnowProcessed:
		return "processed"
	case SnowSubmerged:
		return "submerged"
	default:
		return "absent"
	}
}

// Warning is a non-fatal anomaly found during a step.
type Warning struct {
	Stage   Stage
	Message string
	Value   float64
}

// Diagnostics describe one patch-day.
type Diagnostics struct {
	Patch world.PatchID
	Date  calendar.Date

	Irrigation    float64
	FertilizerNO3 float64
	FertilizerNH4 float64

	PondHeight     float64
	Passes         [3][]int
	SnowBranch     SnowBranch
	RadiativeCalls int
	SnowMelt       float64

	RawInfiltration float64
	Infiltration    float64

	// ZTrace holds every water table depth computed during the step, in order.
	ZTrace []float64

	UnsatDemandInitial float64
	SatDemandInitial   float64
	UnsatDemandFinal   float64
	SatDemandFinal     float64
	AvailableSatWater  float64
	AddedFieldCapacity float64
	CapRise            float64

	TranspirationReductionPercent float64
	Vegetated                     bool

	Balance  world.Balance
	Warnings []Warning
}
