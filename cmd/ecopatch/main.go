package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/ecopatch/internal/config"
	"github.com/san-kum/ecopatch/internal/forcing"
	"github.com/san-kum/ecopatch/internal/logging"
	"github.com/san-kum/ecopatch/internal/metrics"
	"github.com/san-kum/ecopatch/internal/optim"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/process"
	"github.com/san-kum/ecopatch/internal/sim"
	"github.com/san-kum/ecopatch/internal/storage"
	"github.com/san-kum/ecopatch/internal/viz"
	"github.com/san-kum/ecopatch/internal/world"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile string
	preset     string
	start      string
	days       int
	seed       int64
	workers    int
	tolerance  float64
	grow       bool
	groundwtr  bool
	snowScale  bool
	surfEnergy bool
	verbose    int

	members     int
	metricsFile string

	plotPatch   int
	plotColumns []string
	plotSVGDir  string
	exportOut   string
	savePreset  string

	sweepParams   []string
	sweepMetric   string
	sweepMaximize bool
	sweepParallel int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ecopatch",
		Short:        "daily patch water, carbon and nitrogen simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ecopatch", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its daily series",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&members, "members", 1, "ensemble members with consecutive seeds (not stored)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics in textfile format")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot daily series of a patch",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotPatch, "patch", 0, "patch id")
	plotCmd.Flags().StringSliceVar(&plotColumns, "column", []string{"sat_deficit", "snow_we", "et"}, "columns to plot")
	plotCmd.Flags().StringVar(&plotSVGDir, "svg-dir", "", "also write each column as an svg file here")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export the daily series as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and daily rows as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&savePreset, "save", "", "write the --preset config to this yaml file")
	presetsCmd.Flags().StringVar(&preset, "preset", "", "preset to save")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter grid and report the best point",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter axis name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_water_residual", "run metric to minimize")
	sweepCmd.Flags().BoolVar(&sweepMaximize, "maximize", false, "maximize the metric instead")
	sweepCmd.Flags().IntVar(&sweepParallel, "parallel", runtime.NumCPU(), "grid points run concurrently")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, presetsCmd, sweepCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&start, "start", config.DefaultStart, "first simulated day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", config.DefaultDays, "days to simulate")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "forcing generator seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "hillslopes stepped concurrently (0: all)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", patch.DefaultTolerance, "balance residual warning threshold")
	cmd.Flags().BoolVar(&grow, "grow", true, "nutrient cycling and growth")
	cmd.Flags().BoolVar(&groundwtr, "gw", true, "hillslope groundwater drainage")
	cmd.Flags().BoolVar(&snowScale, "snow-scale", false, "snow redistribution scaling")
	cmd.Flags().BoolVar(&surfEnergy, "surface-energy", false, "soil temperature from the surface energy budget")
	cmd.Flags().IntVarP(&verbose, "verbose", "v", 0, "integrator verbosity")
}

// loadConfig starts from the preset or config file and applies the flags
// the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Forest()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("days") {
		cfg.Days = days
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("grow") {
		cfg.Flags.Grow = grow
	}
	if flags.Changed("gw") {
		cfg.Flags.Groundwater = groundwtr
	}
	if flags.Changed("snow-scale") {
		cfg.Flags.SnowScale = snowScale
	}
	if flags.Changed("surface-energy") {
		cfg.Flags.SurfaceEnergy = surfEnergy
	}
	if flags.Changed("verbose") {
		cfg.Flags.Verbose = verbose
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, cfg.Validate()
}

// setup is everything a single run needs, built from one config.
type setup struct {
	world  *world.World
	runner *sim.Runner
	simCfg sim.Config
	log    *logrus.Logger
}

func newSetup(cfg *config.Config, seed int64) (*setup, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}
	w, step, gen, err := member(cfg, log)(seed)
	if err != nil {
		return nil, err
	}
	startDate, err := cfg.StartDate()
	if err != nil {
		return nil, err
	}
	runner := sim.New(step, gen)
	runner.SetLogger(log)
	for _, m := range metrics.Standard() {
		runner.AddMetric(m)
	}
	return &setup{
		world:  w,
		runner: runner,
		simCfg: sim.Config{Start: startDate, Days: cfg.Days, Workers: cfg.Workers},
		log:    log,
	}, nil
}

func member(cfg *config.Config, log logrus.FieldLogger) sim.Member {
	return func(seed int64) (*world.World, sim.Stepper, sim.ForcingSource, error) {
		w, err := cfg.BuildWorld()
		if err != nil {
			return nil, nil, nil, err
		}
		integ, err := patch.New(process.Defaults(), cfg.PatchFlags(),
			patch.WithLogger(log),
			patch.WithTolerance(cfg.Tolerance),
		)
		if err != nil {
			return nil, nil, nil, err
		}
		return w, integ, forcing.NewGenerator(cfg.Climate, seed), nil
	}
}

func runMetadata(cfg *config.Config, w *world.World) storage.RunMetadata {
	return storage.RunMetadata{
		Name:    cfg.Name,
		Seed:    cfg.Seed,
		Start:   cfg.Start,
		Days:    cfg.Days,
		Patches: len(w.Patches),
		Flags: storage.RunFlags{
			Grow:          cfg.Flags.Grow,
			Groundwater:   cfg.Flags.Groundwater,
			SnowScale:     cfg.Flags.SnowScale,
			SurfaceEnergy: cfg.Flags.SurfaceEnergy,
		},
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if members > 1 {
		return runEnsemble(ctx, cfg)
	}

	s, err := newSetup(cfg, cfg.Seed)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.Begin(runMetadata(cfg, s.world))
	if err != nil {
		return err
	}
	s.runner.AddObserver(rec)

	var collector *metrics.Collector
	if metricsFile != "" {
		collector = metrics.NewCollector("")
		s.runner.AddObserver(collector)
	}

	fmt.Printf("running %s: %d patches, %d days from %s\n", cfg.Name, len(s.world.Patches), cfg.Days, cfg.Start)
	began := time.Now()
	result, runErr := s.runner.Run(ctx, s.world, s.simCfg)
	if err := rec.Finish(result, runErr); err != nil {
		return err
	}
	if collector != nil {
		if err := collector.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("run %s failed: %w", rec.ID(), runErr)
	}

	fmt.Println(summary(rec.ID(), result, time.Since(began)))
	return nil
}

func summary(runID string, res *sim.Result, elapsed time.Duration) string {
	labels := []string{"run id", "days", "patch-days", "warnings", "elapsed"}
	values := map[string]string{
		"run id":     runID,
		"days":       fmt.Sprint(res.Days),
		"patch-days": fmt.Sprint(res.PatchDays),
		"warnings":   fmt.Sprint(res.Warnings),
		"elapsed":    elapsed.Round(time.Millisecond).String(),
	}
	for _, m := range metrics.Standard() {
		labels = append(labels, m.Name())
		values[m.Name()] = fmt.Sprintf("%.6g", res.Metrics[m.Name()])
	}
	return viz.Summary("RUN COMPLETE", labels, values)
}

func runEnsemble(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	startDate, err := cfg.StartDate()
	if err != nil {
		return err
	}
	fmt.Printf("running %d members of %s from seed %d\n", members, cfg.Name, cfg.Seed)
	results, err := sim.NewEnsemble(member(cfg, log), members, cfg.Seed).
		WithMetrics(metrics.Standard).
		Run(ctx, sim.Config{Start: startDate, Days: cfg.Days, Workers: cfg.Workers})
	if err != nil {
		return err
	}

	names := make([]string, 0)
	for _, m := range metrics.Standard() {
		names = append(names, m.Name())
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tDAYS\tWARNINGS")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w)
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d", cfg.Seed+int64(i), r.Days, r.Warnings)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4g", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		picked, err := tea.NewProgram(viz.NewPicker("ecopatch", config.ListPresets(), config.Descriptions)).Run()
		if err != nil {
			return err
		}
		preset = picked.(viz.Picker).Chosen()
		if preset == "" {
			return nil
		}
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSetup(cfg, cfg.Seed)
	if err != nil {
		return err
	}
	logFile, err := os.CreateTemp("", "ecopatch-*.log")
	if err != nil {
		return err
	}
	defer logFile.Close()
	// the live view owns the terminal
	s.log.SetOutput(logFile)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.Begin(runMetadata(cfg, s.world))
	if err != nil {
		return err
	}
	feed := viz.NewFeed()
	s.runner.AddObserver(rec)
	s.runner.AddObserver(feed)

	depths := make([]float64, len(s.world.Patches))
	for i := range s.world.Patches {
		depths[i] = s.world.Soil(&s.world.Patches[i]).SoilDepth
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	finished := make(chan error, 1)
	go func() {
		result, runErr := s.runner.Run(ctx, s.world, s.simCfg)
		finishErr := rec.Finish(result, runErr)
		feed.Finish(result, runErr)
		finished <- errors.Join(runErr, finishErr)
	}()

	model := viz.NewLiveModel(feed, cfg.Name, cfg.Days, depths, cancel)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		cancel()
		feed.Close()
		<-finished
		return err
	}
	feed.Close()
	runErr := <-finished
	fmt.Printf("run id: %s (log: %s)\n", rec.ID(), logFile.Name())
	if errors.Is(runErr, context.Canceled) {
		fmt.Println("stopped")
		return nil
	}
	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTART\tDAYS\tPATCHES\tSTATUS\tWARNINGS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Start,
			run.DaysRun,
			run.Days,
			run.Patches,
			run.Status,
			run.Warnings,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Name)
	fmt.Printf("patch: %d\n\n", plotPatch)
	for _, col := range plotColumns {
		dates, values, err := st.LoadSeries(runID, plotPatch, col)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("no data for patch %d", plotPatch)
		}
		caption := fmt.Sprintf("%s, %s to %s", col, dates[0], dates[len(dates)-1])
		fmt.Println(viz.Plot(values, caption, 10, viz.PlotWidth))
		fmt.Println()

		if plotSVGDir != "" {
			if err := os.MkdirAll(plotSVGDir, 0755); err != nil {
				return err
			}
			name := filepath.Join(plotSVGDir, fmt.Sprintf("%s_patch%d_%s.svg", runID, plotPatch, col))
			svg := viz.SeriesSVG(values, caption, 800, 240, string(viz.ThemeForest.Water))
			if err := os.WriteFile(name, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n\n", name)
		}
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).CopyCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if exportOut != "" {
		return st.ExportJSONFile(exportOut, args[0])
	}
	return st.ExportJSON(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	if savePreset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %q (available: %v)", preset, config.ListPresets())
		}
		return config.Save(cfg, savePreset)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATCHES\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		n := 0
		for _, h := range cfg.Hillslopes {
			for _, z := range h.Zones {
				n += len(z.Patches)
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, n, config.Descriptions[name])
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return errors.New("sweep needs at least one --param")
	}
	known := false
	for _, m := range metrics.Standard() {
		known = known || m.Name() == sweepMetric
	}
	if !known {
		return fmt.Errorf("unknown metric: %s", sweepMetric)
	}
	axes := make([]optim.Axis, 0, len(sweepParams))
	for _, p := range sweepParams {
		ax, err := optim.ParseAxis(p)
		if err != nil {
			return err
		}
		if _, ok := config.Tunables[ax.Name]; !ok {
			return fmt.Errorf("unknown parameter: %s (tunable: %s)", ax.Name, strings.Join(config.TunableNames(), ", "))
		}
		axes = append(axes, ax)
	}
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(base.Log.Level, base.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	startDate, err := base.StartDate()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg, err := base.Clone()
		if err != nil {
			return 0, err
		}
		for name, v := range params {
			if err := cfg.Set(name, v); err != nil {
				return 0, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return 0, err
		}
		w, step, gen, err := member(cfg, log)(cfg.Seed)
		if err != nil {
			return 0, err
		}
		runner := sim.New(step, gen)
		runner.SetLogger(log)
		for _, m := range metrics.Standard() {
			runner.AddMetric(m)
		}
		res, err := runner.Run(ctx, w, sim.Config{Start: startDate, Days: cfg.Days, Workers: 1})
		if err != nil {
			return 0, err
		}
		v := res.Metrics[sweepMetric]
		if sweepMaximize {
			v = -v
		}
		return v, nil
	}

	grid := optim.NewGridSearch(axes, sweepParallel)
	fmt.Printf("sweeping %d points of %s, %s %s\n", len(grid.Points()), base.Name, direction(), sweepMetric)
	best, points, err := grid.Search(ctx, objective)
	if err != nil {
		return err
	}

	names := optim.Names(best.Params)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for _, p := range points {
		for _, n := range names {
			fmt.Fprintf(w, "%.4g\t", p.Params[n])
		}
		if p.Err != nil {
			fmt.Fprintf(w, "failed: %v\n", p.Err)
			continue
		}
		fmt.Fprintf(w, "%.6g\n", signed(p.Value))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	labels := append([]string{sweepMetric}, names...)
	values := map[string]string{sweepMetric: fmt.Sprintf("%.6g", signed(best.Value))}
	for _, n := range names {
		values[n] = fmt.Sprintf("%.4g", best.Params[n])
	}
	fmt.Println(viz.Summary("BEST POINT", labels, values))
	return nil
}

func direction() string {
	if sweepMaximize {
		return "maximizing"
	}
	return "minimizing"
}

func signed(v float64) float64 {
	if sweepMaximize {
		return -v
	}
	return v
}
