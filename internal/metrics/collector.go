// Package metrics summarises runs: sim.Metric implementations that reduce
// a run to single values, and a Prometheus Collector that exports the
// daily closure diagnostics.
package metrics

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/ecopatch/internal/sim"
)

// Collector exports per patch-day diagnostics. It implements sim.Observer.
type Collector struct {
	registry *prometheus.Registry

	patchDays    prometheus.Counter
	warnings     *prometheus.CounterVec
	snowBranches *prometheus.CounterVec
	residual     *prometheus.GaugeVec
	residualSize *prometheus.HistogramVec
	satDeficit   *prometheus.GaugeVec
	infiltration prometheus.Histogram
	reduction    prometheus.Histogram
	gwStorage    *prometheus.GaugeVec

	mu sync.Mutex
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "ecopatch"
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.patchDays = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "patch_days_total",
		Help:      "Patch-days stepped",
	})
	c.warnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Non-fatal step warnings by stage",
		},
		[]string{"stage"},
	)
	c.snowBranches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snowpack",
			Name:      "branch_total",
			Help:      "Patch-days by snowpack branch taken",
		},
		[]string{"branch"},
	)
	c.residual = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "balance",
			Name:      "residual",
			Help:      "Latest closure residual per patch",
		},
		[]string{"patch", "kind"},
	)
	c.residualSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "balance",
			Name:      "residual_abs",
			Help:      "Absolute closure residuals",
			Buckets:   prometheus.ExponentialBuckets(1e-15, 10, 14), // 1e-15 to 1e-2
		},
		[]string{"kind"},
	)
	c.satDeficit = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "soil",
			Name:      "sat_deficit_meters",
			Help:      "End-of-day saturation deficit per patch",
		},
		[]string{"patch"},
	)
	c.infiltration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "soil",
		Name:      "infiltration_meters",
		Help:      "Daily infiltration",
		Buckets:   []float64{0, 1e-4, 1e-3, 5e-3, 1e-2, 2e-2, 5e-2},
	})
	c.reduction = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "canopy",
		Name:      "transpiration_met_fraction",
		Help:      "Fraction of transpiration demand met",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})
	c.gwStorage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hillslope",
			Name:      "groundwater_meters",
			Help:      "Hillslope groundwater storage",
		},
		[]string{"hillslope"},
	)

	c.registry.MustRegister(
		c.patchDays,
		c.warnings,
		c.snowBranches,
		c.residual,
		c.residualSize,
		c.satDeficit,
		c.infiltration,
		c.reduction,
		c.gwStorage,
	)
	return c
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) OnDay(d sim.DayResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	patch := strconv.Itoa(int(d.Patch))
	c.patchDays.Inc()
	for _, w := range d.Diag.Warnings {
		c.warnings.WithLabelValues(string(w.Stage)).Inc()
	}
	c.snowBranches.WithLabelValues(d.Diag.SnowBranch.String()).Inc()

	for kind, v := range map[string]float64{
		"water":    d.Diag.Balance.Water,
		"carbon":   d.Diag.Balance.Carbon,
		"nitrogen": d.Diag.Balance.Nitrogen,
	} {
		c.residual.WithLabelValues(patch, kind).Set(v)
		c.residualSize.WithLabelValues(kind).Observe(math.Abs(v))
	}
	c.satDeficit.WithLabelValues(patch).Set(d.State.SatDeficit)
	c.infiltration.Observe(d.Diag.Infiltration)
	if d.Diag.Vegetated {
		c.reduction.Observe(d.Diag.TranspirationReductionPercent)
	}
	c.gwStorage.WithLabelValues(strconv.Itoa(int(d.Hillslope))).Set(d.State.GWStorage)
}

// WriteTextfile writes the current values in the node-exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Reset clears the per-patch gauges.
func (c *Collector) Reset() {
	c.residual.Reset()
	c.satDeficit.Reset()
	c.gwStorage.Reset()
}
