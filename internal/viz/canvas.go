package viz

import (
	"math"
	"strings"
)

const brailleBase = 0x2800

// Each braille cell is 2 dots wide and 4 tall.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid of Width x Height cells.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y) in dot coordinates. Dots outside the
// canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return
	}
	c.cells[y/4][x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for _, row := range c.cells {
		for j := range row {
			row[j] = brailleBase
		}
	}
}

// HLine draws a horizontal line across the full width at dot row y.
func (c *Canvas) HLine(y int) {
	for x := 0; x < 2*c.Width; x++ {
		c.Set(x, y)
	}
}

// Fill sets every stride-th dot in the rows [y0, y1). A stride of 1 fills
// solid.
func (c *Canvas) Fill(y0, y1, stride int) {
	stride = max(stride, 1)
	for y := y0; y < y1; y++ {
		for x := (y % stride); x < 2*c.Width; x += stride {
			c.Set(x, y)
		}
	}
}

// Rows returns the canvas as one string per cell row.
func (c *Canvas) Rows() []string {
	out := make([]string, c.Height)
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

func (c *Canvas) String() string {
	return strings.Join(c.Rows(), "\n")
}

// Column describes the vertical water profile of a patch (m).
type Column struct {
	SoilDepth  float64
	WaterTable float64
	Moisture   float64 // unsaturated zone saturation, 0..1
	SnowWE     float64
	Detention  float64
}

// ColumnLayout gives the cell rows of the features drawn by DrawColumn.
type ColumnLayout struct {
	Surface    int
	WaterTable int
}

const (
	skyRows      = 2
	maxSnowDrawn = 0.5
)

// DrawColumn draws col onto c: snow and ponding above a surface line, a
// sparse unsaturated zone and a solid saturated zone below it.
func DrawColumn(c *Canvas, col Column) ColumnLayout {
	c.Clear()
	surface := 4*skyRows - 1
	soilDots := 4*c.Height - surface - 1
	depthToDot := func(z float64) int {
		if col.SoilDepth <= 0 {
			return surface
		}
		z = math.Max(0, math.Min(z, col.SoilDepth))
		return surface + 1 + int(z/col.SoilDepth*float64(soilDots-1))
	}

	if col.SnowWE > 0 {
		h := int(math.Ceil(math.Min(col.SnowWE/maxSnowDrawn, 1) * float64(surface-1)))
		c.Fill(surface-h, surface, 2)
	}
	if col.Detention > 0 {
		c.HLine(surface - 1)
	}
	c.HLine(surface)

	wt := depthToDot(col.WaterTable)
	stride := 6 - int(math.Round(4*math.Max(0, math.Min(col.Moisture, 1))))
	c.Fill(surface+1, wt, stride)
	c.Fill(wt, 4*c.Height, 1)

	return ColumnLayout{Surface: surface / 4, WaterTable: wt / 4}
}
