package viz

import (
	"fmt"
	"math"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ecopatch/internal/calendar"
	"github.com/san-kum/ecopatch/internal/patch"
	"github.com/san-kum/ecopatch/internal/sim"
)

const (
	columnWidth     = 14
	columnHeight    = 12
	historyCapacity = 365
)

var (
	columnStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(56)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type dayMsg sim.DayResult

type doneMsg struct {
	result *sim.Result
	err    error
}

// Feed carries day results from a runner to a LiveModel. OnDay blocks
// until the view has taken the result, so the view sees every day before
// the run's completion.
type Feed struct {
	days chan sim.DayResult
	done chan doneMsg
	quit chan struct{}
	once sync.Once
}

func NewFeed() *Feed {
	return &Feed{
		days: make(chan sim.DayResult),
		done: make(chan doneMsg, 1),
		quit: make(chan struct{}),
	}
}

func (f *Feed) OnDay(r sim.DayResult) {
	select {
	case f.days <- r:
	case <-f.quit:
	}
}

// Finish reports the end of the run.
func (f *Feed) Finish(res *sim.Result, err error) {
	f.done <- doneMsg{result: res, err: err}
}

// Close releases a runner blocked in OnDay after the view has gone.
func (f *Feed) Close() {
	f.once.Do(func() { close(f.quit) })
}

func (f *Feed) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-f.days:
			return dayMsg(r)
		case d := <-f.done:
			return d
		case <-f.quit:
			return nil
		}
	}
}

// LiveModel follows a running simulation: progress, the soil column and
// saturation deficit history of the selected patch, and the worst closure
// residuals so far.
type LiveModel struct {
	feed      *Feed
	stop      func()
	title     string
	days      int
	patches   int
	patchDays int
	date      calendar.Date

	latest    []sim.DayResult
	seen      []bool
	history   [][]float64
	selected  int
	residual  [3]float64
	warnings  int
	branches  map[patch.SnowBranch]int
	soilDepth []float64

	theme    Theme
	canvas   *Canvas
	showHelp bool
	done     bool
	result   *sim.Result
	err      error
}

// NewLiveModel builds a view for a run of days over the given patches.
// soilDepth holds each patch's soil depth for the column diagram; stop is
// called when the user quits before the run ends.
func NewLiveModel(feed *Feed, title string, days int, soilDepth []float64, stop func()) LiveModel {
	n := len(soilDepth)
	return LiveModel{
		feed:      feed,
		stop:      stop,
		title:     title,
		days:      days,
		patches:   n,
		latest:    make([]sim.DayResult, n),
		seen:      make([]bool, n),
		history:   make([][]float64, n),
		branches:  make(map[patch.SnowBranch]int),
		soilDepth: soilDepth,
		theme:     ThemeForest,
		canvas:    NewCanvas(columnWidth, columnHeight),
	}
}

func (m LiveModel) Init() tea.Cmd {
	return m.feed.next()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.done && m.stop != nil {
				m.stop()
			}
			m.feed.Close()
			return m, tea.Quit
		case "tab", "right", "l":
			if m.patches > 0 {
				m.selected = (m.selected + 1) % m.patches
			}
		case "shift+tab", "left", "h":
			if m.patches > 0 {
				m.selected = (m.selected + m.patches - 1) % m.patches
			}
		case "t":
			m.theme = nextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil
	case dayMsg:
		m.observe(sim.DayResult(msg))
		return m, m.feed.next()
	case doneMsg:
		m.done, m.result, m.err = true, msg.result, msg.err
		return m, nil
	}
	return m, nil
}

func (m *LiveModel) observe(r sim.DayResult) {
	i := int(r.Patch)
	if i < 0 || i >= m.patches {
		return
	}
	m.patchDays++
	if r.Date.After(m.date) {
		m.date = r.Date
	}
	m.latest[i], m.seen[i] = r, true
	h := append(m.history[i], r.State.SatDeficit)
	if len(h) > historyCapacity {
		h = h[len(h)-historyCapacity:]
	}
	m.history[i] = h
	b := r.Diag.Balance
	m.residual[0] = math.Max(m.residual[0], math.Abs(b.Water))
	m.residual[1] = math.Max(m.residual[1], math.Abs(b.Carbon))
	m.residual[2] = math.Max(m.residual[2], math.Abs(b.Nitrogen))
	m.warnings += len(r.Diag.Warnings)
	m.branches[r.Diag.SnowBranch]++
}

// Progress is the fraction of patch-days stepped.
func (m LiveModel) Progress() float64 {
	total := m.days * m.patches
	if total == 0 {
		return 0
	}
	return float64(m.patchDays) / float64(total)
}

func (m LiveModel) Err() error { return m.err }

func (m LiveModel) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED: " + m.err.Error())
	case m.done:
		return StatusDone.Render("COMPLETE")
	}
	return StatusRunning.Render("RUNNING")
}

func (m LiveModel) column() string {
	if m.patches == 0 || !m.seen[m.selected] {
		return columnStyle.Render(strings.Repeat("\n", columnHeight))
	}
	s := m.latest[m.selected].State
	layout := DrawColumn(m.canvas, Column{
		SoilDepth:  m.soilDepth[m.selected],
		WaterTable: s.SatDeficitZ,
		Moisture:   s.UnsatStorage / math.Max(s.SatDeficit, 1e-9),
		SnowWE:     s.SnowpackWE,
		Detention:  s.DetentionStore,
	})
	snow := lipgloss.NewStyle().Foreground(m.theme.Snow)
	soil := lipgloss.NewStyle().Foreground(m.theme.Soil)
	water := lipgloss.NewStyle().Foreground(m.theme.Water)
	var b strings.Builder
	for i, row := range m.canvas.Rows() {
		switch {
		case i < layout.Surface:
			b.WriteString(snow.Render(row))
		case i < layout.WaterTable:
			b.WriteString(soil.Render(row))
		default:
			b.WriteString(water.Render(row))
		}
		b.WriteString("\n")
	}
	return columnStyle.Render(b.String())
}

func (m LiveModel) View() string {
	if m.showHelp {
		return Panel.Render(strings.Join([]string{
			Title.Render("KEYS"),
			"Tab / →   next patch",
			"⇧Tab / ←  previous patch",
			"T         cycle themes",
			"?         toggle help",
			"Q         stop and quit",
		}, "\n"))
	}

	var s strings.Builder
	s.WriteString(Title.Foreground(m.theme.Primary).Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(ProgressBar(m.Progress(), 30) + fmt.Sprintf(" %5.1f%%\n", 100*m.Progress()))
	if !m.date.IsZero() {
		s.WriteString(Row("Date", "%s", m.date) + "\n")
	}
	s.WriteString(Row("Patch", "%d / %d", m.selected+1, m.patches) + "\n")

	if m.patches > 0 && m.seen[m.selected] {
		r := m.latest[m.selected]
		s.WriteString(Row("Sat deficit", "%.4f m", r.State.SatDeficit) + "\n")
		s.WriteString(Row("Water table", "%.3f m", r.State.SatDeficitZ) + "\n")
		s.WriteString(Row("Snowpack", "%.4f m (%s)", r.State.SnowpackWE, r.Diag.SnowBranch) + "\n")
		s.WriteString(Row("Infiltration", "%.4f m", r.Diag.Infiltration) + "\n")
		s.WriteString(Row("Transp. met", "%.0f%%", r.Diag.TranspirationReductionPercent*100) + "\n")
		s.WriteString(Row("Groundwater", "%.4f m", r.State.GWStorage) + "\n")
		if h := m.history[m.selected]; len(h) > 1 {
			chart := asciigraph.Plot(Downsample(h, 40), asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption("saturation deficit (m)"))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
	}

	s.WriteString("\n" + Separator(40) + "\n")
	s.WriteString(Row("Max water resid.", "%.2e", m.residual[0]) + "\n")
	s.WriteString(Row("Max carbon resid.", "%.2e", m.residual[1]) + "\n")
	s.WriteString(Row("Max N resid.", "%.2e", m.residual[2]) + "\n")
	s.WriteString(Row("Warnings", "%d", m.warnings) + "\n")
	s.WriteString(Row("Snow days", "%d processed, %d submerged",
		m.branches[patch.SnowProcessed], m.branches[patch.SnowSubmerged]) + "\n")
	s.WriteString(KeyHint.Render("\nTab:Patch T:Theme ?:Help Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, m.column(), statsStyle.Render(s.String()))
}
