package patch

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/world"
)

// zero is the threshold below which a store or flux counts as empty.
const zero = 1e-8

// DefaultTolerance bounds the closure residuals before a warning is raised.
const DefaultTolerance = 1e-6

type Integrator struct {
	procs     Processes
	flags     Flags
	log       logrus.FieldLogger
	tolerance float64
}

type Option func(*Integrator)

func WithLogger(l logrus.FieldLogger) Option {
	return func(in *Integrator) { in.log = l }
}

func WithTolerance(tol float64) Option {
	return func(in *Integrator) { in.tolerance = tol }
}

func New(procs Processes, flags Flags, opts ...Option) (*Integrator, error) {
	if err := procs.validate(); err != nil {
		return nil, err
	}
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	in := &Integrator{
		procs:     procs,
		flags:     flags,
		log:       quiet,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

func (in *Integrator) Flags() Flags { return in.flags }

// day holds the working values of one patch-day.
type day struct {
	in   *Integrator
	env  *Env
	p    *world.Patch
	h    Hydraulics
	f    world.Forcing
	diag *Diagnostics

	cas          world.Cascade
	septicWater  float64
	septicNO3    float64
	presnowDepth float64

	unsatDemand float64
	satDemand   float64
}

// Step advances patch id by one day. Days must be stepped in increasing
// order. A returned error is fatal for the run; the diagnostics hold
// whatever was computed before the failure.
func (in *Integrator) Step(w *world.World, id world.PatchID, date calendar.Date) (Diagnostics, error) {
	p, err := w.Patch(id)
	if err != nil {
		return Diagnostics{}, err
	}
	zone, err := w.Zone(p.Zone)
	if err != nil {
		return Diagnostics{}, err
	}
	hs, err := w.Hillslope(p.Hillslope)
	if err != nil {
		return Diagnostics{}, err
	}
	soil := w.Soil(p)
	env := &Env{
		Date:       date,
		World:      w,
		Zone:       zone,
		Hillslope:  hs,
		Patch:      p,
		Soil:       soil,
		Landuse:    w.Landuse(p),
		Hydraulics: in.procs.Hydraulics(soil),
		Flags:      in.flags,
	}
	d := &day{
		in:   in,
		env:  env,
		p:    p,
		h:    env.Hydraulics,
		f:    zone.Forcing,
		diag: &Diagnostics{Patch: id, Date: date},
	}

	d.snapshot()
	stages := []struct {
		stage Stage
		run   func() error
	}{
		{StageForcing, d.assembleForcing},
		{StageSeptic, d.applySeptic},
		{StageCascade, d.classifyAndCascadeAbove},
		{StageSnowpack, d.updateSnowpack},
		{StageCascade, d.cascadeBelow},
		{StageEvents, d.applyNutrientEvents},
		{StageSurface, d.surface},
		{StageInfiltration, d.infiltrate},
		{StageDemand, d.arbitrateDemand},
		{StageDrainage, d.drain},
		{StageBGC, d.biogeochemistry},
		{StageClosure, d.closeBalances},
	}
	for _, s := range stages {
		if err := s.run(); err != nil {
			stepErr := &StepError{Patch: id, Date: date, Stage: s.stage, Err: err}
			in.log.WithFields(logrus.Fields{
				"patch": id,
				"date":  date.String(),
				"stage": s.stage,
			}).WithError(err).Error("fatal patch failure")
			return *d.diag, stepErr
		}
	}
	if in.flags.Verbose > 1 {
		in.log.WithFields(logrus.Fields{
			"patch":        id,
			"date":         date.String(),
			"infiltration": d.diag.Infiltration,
			"sat_deficit":  p.SatDeficit,
			"trp":          d.diag.TranspirationReductionPercent,
		}).Debug("patch day")
	}
	return *d.diag, nil
}

// snapshot records the start-of-day state and clears the daily records.
func (d *day) snapshot() {
	p, w := d.p, d.env.World
	rain, snow := w.InterceptedWater(p)
	totalC, totalN := w.Totals(p)
	p.Preday = world.Snapshot{
		SatDeficit:     p.SatDeficit,
		SatDeficitZ:    p.SatDeficitZ,
		UnsatStorage:   p.UnsatStorage,
		RZStorage:      p.RZStorage,
		DetentionStore: p.DetentionStore,
		Snowpack:       p.Snowpack.Total(),
		RainStored:     rain,
		SnowStored:     snow,
		TotalC:         totalC,
		TotalN:         totalN,
	}
	p.Fluxes = world.Fluxes{}
	p.CDF = world.CarbonFlux{}
	p.NDF = world.NitrogenFlux{}
	p.CapRise = 0
	p.Snowpack.Sublimation = 0

	if p.AccYear.Year != d.env.Date.Year {
		p.AccYear = world.PatchAccumulator{Year: d.env.Date.Year}
		for _, s := range w.PatchStrata(p) {
			s.AccYearPsn = 0
		}
	}
}

func (d *day) waterTable() float64 {
	z := d.h.WaterTableDepth(d.p.SatDeficit)
	d.p.SatDeficitZ = z
	d.diag.ZTrace = append(d.diag.ZTrace, z)
	return z
}

func (d *day) warn(stage Stage, msg string, v float64) {
	d.diag.Warnings = append(d.diag.Warnings, Warning{Stage: stage, Message: msg, Value: v})
	if d.in.flags.Verbose > 0 {
		d.in.log.WithFields(logrus.Fields{
			"patch": d.p.ID,
			"date":  d.env.Date.String(),
			"stage": stage,
			"value": v,
		}).Warn(msg)
	}
}

func wrap(sentinel, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}

func safeDiv(a, b float64) float64 {
	if math.Abs(b) <= zero {
		return 0
	}
	return a / b
}
