package patch

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/world"
)

func TestClassify(t *testing.T) {
	layers := []world.Layer{{Height: 0.5}, {Height: 3}, {Height: 20}}
	tests := []struct {
		name       string
		snow, pond float64
		want       [3][]int
	}{
		{"bare", 0, 0, [3][]int{{2, 1, 0}, nil, nil}},
		{"snow over the shrubs", 1, 0.2, [3][]int{{2, 1}, {0}, nil}},
		{"pond over snow", 1, 4, [3][]int{{2}, nil, {1, 0}}},
		{"deep snow and pond", 5, 4, [3][]int{{2}, nil, {1, 0}}},
		{"everything buried", 30, 0, [3][]int{nil, {2, 1, 0}, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(layers, tt.snow, tt.pond)
			assert.Equal(t, tt.want, got)

			seen := map[int]bool{}
			for _, pass := range got {
				for _, i := range pass {
					assert.False(t, seen[i], "layer %d in two passes", i)
					seen[i] = true
				}
			}
			assert.Len(t, seen, len(layers))
		})
	}
}

func TestReductionPercent(t *testing.T) {
	tests := []struct {
		initial, unmet, want float64
	}{
		{0, 0, 1},
		{1e-9, 1e-9, 1},
		{1, 0.25, 0.75},
		{1, 2, 0},
		{1, -1, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, reductionPercent(tt.initial, tt.unmet), 1e-12)
	}
}

func TestAeroConductance(t *testing.T) {
	l := math.Log(10)
	assert.InDelta(t, 0.41*0.41*3/(l*l), aeroConductance(3, 2), 1e-12)
	assert.Equal(t, aeroConductance(3, 2), aeroConductance(3, 0.5))
	assert.Zero(t, aeroConductance(0, 10))
}

func TestStepErrorUnwrap(t *testing.T) {
	inner := errors.New("negative pool")
	err := error(&StepError{
		Patch: 3,
		Date:  calendar.New(2001, 2, 3),
		Stage: StageBGC,
		Err:   wrap(ErrDecomposition, inner),
	})

	assert.ErrorIs(t, err, ErrDecomposition)
	assert.ErrorIs(t, err, inner)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageBGC, se.Stage)
	assert.Contains(t, err.Error(), "2001-02-03")
}

func TestValidateProcesses(t *testing.T) {
	_, err := New(Processes{}, Flags{})
	assert.ErrorIs(t, err, ErrMissingProcess)
}

func TestSnowBranchString(t *testing.T) {
	assert.Equal(t, "absent", SnowAbsent.String())
	assert.Equal(t, "processed", SnowProcessed.String())
	assert.Equal(t, "submerged", SnowSubmerged.String())
}

// fixedBackfill reports the same field capacity for every interval.
type fixedBackfill struct{ add float64 }

func (fixedBackfill) WaterTableDepth(sd float64) float64                       { return sd }
func (fixedBackfill) DeltaWater(zi, zf float64) float64                        { return zi - zf }
func (f fixedBackfill) LayerFieldCapacity(_, _, _ float64) float64             { return f.add }
func (fixedBackfill) Infiltration(_, _, _, _, _ float64) float64               { return 0 }
func (fixedBackfill) UnsatZoneDrainage(_, _, _, _ float64) float64             { return 0 }
func (fixedBackfill) PotentialCapRise(float64) float64                         { return 0 }
func (fixedBackfill) WiltingPoint(float64) float64                             { return 0 }
func (fixedBackfill) SurfaceHeatFlux(_, _, _, _, _ float64) float64            { return 0 }
func (fixedBackfill) RadiativeFluxes(flux, _, _, _ float64) (float64, float64) { return 0, flux }

func TestBackfillFieldCapacity(t *testing.T) {
	tests := []struct {
		name           string
		preday, after  float64
		wantRZ, wantUZ float64
	}{
		{"inside the rootzone", 0.1, 0.2, 0.01, 0},
		{"below the rootzone", 0.6, 0.7, 0, 0.01},
		{"table rose into the rootzone", 0.5, 0.25, 0.008, 0.002},
		{"table fell below the rootzone", 0.2, 0.6, 0.0025, 0.0075},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &world.Patch{
				SatDeficit: 1,
				Rootzone:   world.Rootzone{Depth: 0.3},
				Preday:     world.Snapshot{SatDeficitZ: tt.preday},
			}
			d := &day{p: p, h: fixedBackfill{add: 0.01}, diag: &Diagnostics{}}

			d.backfillFieldCapacity(tt.after-0.05, tt.after)

			assert.InDelta(t, tt.wantRZ, p.RZStorage, 1e-12)
			assert.InDelta(t, tt.wantUZ, p.UnsatStorage, 1e-12)
			assert.InDelta(t, 1.01, p.SatDeficit, 1e-15)
			assert.Equal(t, 0.01, d.diag.AddedFieldCapacity)
		})
	}
}
