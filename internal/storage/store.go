package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ecopatch/internal/sim"
)

var ErrUnknownColumn = errors.New("storage: unknown column")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunFlags struct {
	Grow          bool `json:"grow"`
	Groundwater   bool `json:"groundwater"`
	SnowScale     bool `json:"snow_scale"`
	SurfaceEnergy bool `json:"surface_energy"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Start     string             `json:"start"`
	Days      int                `json:"days"`
	Patches   int                `json:"patches"`
	Flags     RunFlags           `json:"flags"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	DaysRun   int                `json:"days_run"`
	Warnings  int                `json:"warnings"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Columns of daily.csv after the date, hillslope and patch keys.
var Columns = []string{
	"sat_deficit", "sat_deficit_z", "rz_storage", "unsat_storage", "detention",
	"snow_we", "lai", "infiltration", "et", "gw_drainage", "net_psn",
	"total_c", "total_n", "gw_storage", "trp",
	"water_residual", "carbon_residual", "nitrogen_residual", "warnings",
}

func row(d sim.DayResult) []float64 {
	f := d.State.Fluxes
	et := f.Evaporation + f.EvaporationSurf + f.TranspirationUnsatZone + f.TranspirationSatZone +
		f.ExfiltrationUnsatZone + f.ExfiltrationSatZone
	return []float64{
		d.State.SatDeficit, d.State.SatDeficitZ, d.State.RZStorage, d.State.UnsatStorage, d.State.DetentionStore,
		d.State.SnowpackWE, d.State.LAI, f.Infiltration, et, f.GWDrainage, f.NetPlantPsn,
		d.State.TotalC, d.State.TotalN, d.State.GWStorage, d.Diag.TranspirationReductionPercent,
		d.Diag.Balance.Water, d.Diag.Balance.Carbon, d.Diag.Balance.Nitrogen, float64(len(d.Diag.Warnings)),
	}
}

// Recorder streams one run into its directory. It implements sim.Observer.
type Recorder struct {
	meta RunMetadata
	dir  string
	file *os.File
	csv  *csv.Writer
	err  error
	mu   sync.Mutex
}

// Begin creates a run directory with a fresh id and opens daily.csv.
func (s *Store) Begin(meta RunMetadata) (*Recorder, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now()
	meta.Status = "running"
	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	file, err := os.Create(s.dailyPath(meta.ID))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(file)
	header := append([]string{"date", "hillslope", "patch"}, Columns...)
	if err := w.Write(header); err != nil {
		file.Close()
		return nil, err
	}
	return &Recorder{meta: meta, dir: dir, file: file, csv: w}, nil
}

func (r *Recorder) ID() string { return r.meta.ID }

func (r *Recorder) OnDay(d sim.DayResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	rec := []string{d.Date.String(), strconv.Itoa(int(d.Hillslope)), strconv.Itoa(int(d.Patch))}
	for _, v := range row(d) {
		rec = append(rec, strconv.FormatFloat(v, 'g', 10, 64))
	}
	r.err = r.csv.Write(rec)
}

// Finish flushes the series and writes metadata.json. runErr is recorded
// as a failed run.
func (r *Recorder) Finish(result *sim.Result, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.csv.Flush()
	if err := r.csv.Error(); err != nil && r.err == nil {
		r.err = err
	}
	if err := r.file.Close(); err != nil && r.err == nil {
		r.err = err
	}

	r.meta.Status = "complete"
	if runErr != nil {
		r.meta.Status = "failed"
		r.meta.Error = runErr.Error()
	}
	if result != nil {
		r.meta.DaysRun = result.Days
		r.meta.Warnings = result.Warnings
		r.meta.Metrics = result.Metrics
	}

	metaFile, err := os.Create(filepath.Join(r.dir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.meta); err != nil {
		return err
	}
	return r.err
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) dailyPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "daily.csv")
}

// Row is one parsed line of daily.csv.
type Row struct {
	Date      string    `json:"date"`
	Hillslope int       `json:"hillslope"`
	Patch     int       `json:"patch"`
	Values    []float64 `json:"values"`
}

func (s *Store) LoadRows(runID string) ([]Row, error) {
	file, err := os.Open(s.dailyPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Row{}, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			continue
		}
		hs, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}
		p, err := strconv.Atoi(rec[2])
		if err != nil {
			continue
		}
		vals := make([]float64, 0, len(rec)-3)
		for _, field := range rec[3:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				v = 0
			}
			vals = append(vals, v)
		}
		rows = append(rows, Row{Date: rec[0], Hillslope: hs, Patch: p, Values: vals})
	}
	return rows, nil
}

// LoadSeries returns one column of one patch in date order.
func (s *Store) LoadSeries(runID string, patch int, column string) ([]string, []float64, error) {
	col := -1
	for i, c := range Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	rows, err := s.LoadRows(runID)
	if err != nil {
		return nil, nil, err
	}
	var dates []string
	var vals []float64
	for _, r := range rows {
		if r.Patch != patch || col >= len(r.Values) {
			continue
		}
		dates = append(dates, r.Date)
		vals = append(vals, r.Values[col])
	}
	return dates, vals, nil
}
