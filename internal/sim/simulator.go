package sim

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/world"
)

var ErrNoForcing = errors.New("sim: no forcing source")

// Runner drives a world through a run window one day at a time.
type Runner struct {
	step      Stepper
	forcing   ForcingSource
	metrics   []Metric
	observers []Observer
	log       logrus.FieldLogger
	buffers   *resultPool
}

func New(step Stepper, forcing ForcingSource) *Runner {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	return &Runner{
		step:      step,
		forcing:   forcing,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       quiet,
		buffers:   newResultPool(),
	}
}

func (r *Runner) AddMetric(m Metric)             { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)         { r.observers = append(r.observers, o) }
func (r *Runner) SetLogger(l logrus.FieldLogger) { r.log = l }

// Run steps every patch of w for cfg.Days days. Hillslopes are stepped
// concurrently, the patches of one hillslope in order. The first fatal
// patch error stops the run and is returned with the partial result.
func (r *Runner) Run(ctx context.Context, w *world.World, cfg Config) (*Result, error) {
	if err := r.validate(w, cfg); err != nil {
		return nil, err
	}
	for _, m := range r.metrics {
		m.Reset()
	}
	result := &Result{Metrics: make(map[string]float64)}
	defer r.collect(result)

	for i := 0; i < cfg.Days; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		date := cfg.Start.AddDays(i)
		if err := r.applyForcing(w, date); err != nil {
			return result, err
		}

		days, err := r.day(ctx, w, cfg, date)
		for _, rs := range days {
			r.deliver(result, rs)
			r.buffers.put(rs)
		}
		if err != nil {
			r.log.WithFields(logrus.Fields{"date": date.String()}).WithError(err).Error("run aborted")
			return result, err
		}
		result.Days++
	}
	r.log.WithFields(logrus.Fields{
		"days":       result.Days,
		"patch_days": result.PatchDays,
		"warnings":   result.Warnings,
	}).Info("run complete")
	return result, nil
}

func (r *Runner) validate(w *world.World, cfg Config) error {
	if r.forcing == nil {
		return ErrNoForcing
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", cfg.Days)
	}
	if cfg.Start.IsZero() {
		return fmt.Errorf("start date must be set")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	return w.Check()
}

func (r *Runner) applyForcing(w *world.World, date calendar.Date) error {
	for i := range w.Zones {
		z := &w.Zones[i]
		f, err := r.forcing.Forcing(z.ID, date)
		if err != nil {
			return fmt.Errorf("forcing for zone %d on %s: %w", z.ID, date, err)
		}
		z.Forcing = f
	}
	return nil
}

// day steps every hillslope for one date. Results come back in hillslope
// order whether or not the day failed.
func (r *Runner) day(ctx context.Context, w *world.World, cfg Config, date calendar.Date) ([][]DayResult, error) {
	out := make([][]DayResult, len(w.Hillslopes))
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i := range w.Hillslopes {
		i := i
		hs := &w.Hillslopes[i]
		g.Go(func() error {
			buf := r.buffers.get()
			defer func() { out[i] = buf }()
			for _, id := range hs.Patches {
				if err := ctx.Err(); err != nil {
					return err
				}
				diag, err := r.step.Step(w, id, date)
				if err != nil {
					return err
				}
				p, _ := w.Patch(id)
				buf = append(buf, DayResult{
					Hillslope: hs.ID,
					Patch:     id,
					Date:      date,
					Diag:      diag,
					State:     sample(w, p),
				})
			}
			return nil
		})
	}
	return out, g.Wait()
}

func (r *Runner) deliver(result *Result, rs []DayResult) {
	for _, d := range rs {
		result.PatchDays++
		result.Warnings += len(d.Diag.Warnings)
		for _, m := range r.metrics {
			m.Observe(d)
		}
		for _, o := range r.observers {
			o.OnDay(d)
		}
	}
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
