package forcing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ecopatch/internal/calendar"
)

func TestGeneratorDeterministic(t *testing.T) {
	d := calendar.New(2021, 4, 10)
	a, err := NewGenerator(DefaultClimate(), 7).Forcing(0, d)
	require.NoError(t, err)
	b, err := NewGenerator(DefaultClimate(), 7).Forcing(0, d)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	differs := false
	g1, g2 := NewGenerator(DefaultClimate(), 1), NewGenerator(DefaultClimate(), 2)
	for i := 0; i < 30; i++ {
		x, _ := g1.Forcing(0, d.AddDays(i))
		y, _ := g2.Forcing(0, d.AddDays(i))
		if x.Tavg != y.Tavg {
			differs = true
			break
		}
	}
	assert.True(t, differs, "different seeds produced identical weather")
}

func TestGeneratorSeasons(t *testing.T) {
	g := NewGenerator(DefaultClimate(), 3)
	mean := func(month int) (tavg, kdown float64) {
		for day := 1; day <= 28; day++ {
			f, err := g.Forcing(0, calendar.New(2021, month, day))
			require.NoError(t, err)
			tavg += f.Tavg / 28
			kdown += (f.KdownDirect + f.KdownDiffuse) / 28
		}
		return tavg, kdown
	}
	janT, janK := mean(1)
	julT, julK := mean(7)
	assert.Greater(t, julT, janT)
	assert.Greater(t, julK, janK)
}

func TestGeneratorPrecipitationPhase(t *testing.T) {
	g := NewGenerator(DefaultClimate(), 11)
	start := calendar.New(2021, 1, 1)
	for i := 0; i < 365; i++ {
		f, err := g.Forcing(2, start.AddDays(i))
		require.NoError(t, err)
		assert.False(t, f.Rain > 0 && f.Snow > 0, "rain and snow on %s", start.AddDays(i))
		if f.Snow > 0 {
			assert.Less(t, f.Tavg, 0.0)
		}
		assert.GreaterOrEqual(t, f.Rain, 0.0)
		assert.LessOrEqual(t, f.DaytimeRainDuration, f.Dayl)
	}
}

func TestGeneratorZeroDate(t *testing.T) {
	_, err := NewGenerator(DefaultClimate(), 0).Forcing(0, calendar.Date{})
	assert.ErrorIs(t, err, ErrNoDate)
}

func TestDayLength(t *testing.T) {
	assert.InDelta(t, 43200, DayLength(0, 80), 300)
	assert.Greater(t, DayLength(45, 172), DayLength(45, 355))
	assert.Equal(t, 86400.0, DayLength(80, 172))
	assert.Equal(t, 0.0, DayLength(80, 355))
}

func TestSaturationVaporPressure(t *testing.T) {
	assert.InDelta(t, 610.78, SaturationVaporPressure(0), 1e-9)
	assert.InDelta(t, 2338, SaturationVaporPressure(20), 5)
}
