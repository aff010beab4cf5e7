package patch

import (
	"errors"
	"fmt"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/world"
)

// Collaborator failures. Any of these aborts the run.
var (
	ErrDecomposition    = errors.New("patch: decomposition failed")
	ErrDissolvedOrganic = errors.New("patch: dissolved organic export failed")
	ErrNitrification    = errors.New("patch: nitrification failed")
	ErrDenitrification  = errors.New("patch: denitrification failed")
	ErrGroundwater      = errors.New("patch: groundwater drainage failed")
	ErrSeptic           = errors.New("patch: septic load failed")

	// ErrEvents indicates a dated input could not be read for the day,
	// usually because days were stepped out of order.
	ErrEvents = errors.New("patch: dated input lookup failed")

	// ErrMissingProcess indicates an Integrator built without a collaborator.
	ErrMissingProcess = errors.New("patch: missing process")
)

// Stage names a section of the daily routine.
type Stage string

const (
	StageForcing      Stage = "forcing"
	StageSeptic       Stage = "septic"
	StageCascade      Stage = "cascade"
	StageSnowpack     Stage = "snowpack"
	StageEvents       Stage = "events"
	StageSurface      Stage = "surface"
	StageInfiltration Stage = "infiltration"
	StageDemand       Stage = "demand"
	StageDrainage     Stage = "drainage"
	StageBGC          Stage = "biogeochemistry"
	StageClosure      Stage = "closure"
)

// StepError wraps a fatal failure with the patch-day it occurred on.
type StepError struct {
	Patch world.PatchID
	Date  calendar.Date
	Stage Stage
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("patch %d on %s (%s): %v", e.Patch, e.Date, e.Stage, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
