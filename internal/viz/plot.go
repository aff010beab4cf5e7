package viz

import (
	"github.com/guptarohit/asciigraph"
)

const (
	PlotHeight = 12
	PlotWidth  = 80
)

// Plot renders values as an asciigraph line plot. Series longer than the
// plot width are averaged down to it.
func Plot(values []float64, caption string, height, width int) string {
	if len(values) == 0 {
		return ""
	}
	if height <= 0 {
		height = PlotHeight
	}
	if width <= 0 {
		width = PlotWidth
	}
	return asciigraph.Plot(Downsample(values, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Downsample averages values into at most n buckets.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(values) / n
		hi := (i + 1) * len(values) / n
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
