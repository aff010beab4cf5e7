package patch

import (
	"math"

	"github.com/san-kum/ecopatch/internal/world"
)

// classify splits the layers into the three disjoint canopy passes: above
// both snow and pond, under the snow but above the pond, and under the pond.
// Each list runs from the tallest layer down.
func classify(layers []world.Layer, snowHeight, pondHeight float64) [3][]int {
	var passes [3][]int
	for i := len(layers) - 1; i >= 0; i-- {
		h := layers[i].Height
		switch {
		case h > snowHeight && h > pondHeight:
			passes[0] = append(passes[0], i)
		case h > pondHeight:
			passes[1] = append(passes[1], i)
		default:
			passes[2] = append(passes[2], i)
		}
	}
	return passes
}

// cascadeLayers carries the working values down through the given layers.
// Each layer passes its uncovered share and whatever its strata let through.
func (d *day) cascadeLayers(idx []int) {
	w := d.env.World
	for _, li := range idx {
		layer := &d.p.Layers[li]
		out := d.cas.Scale(layer.NullCover)
		for _, sid := range layer.Strata {
			out = out.Add(d.in.procs.Canopy.Stratum(d.env, layer, w.Stratum(sid), d.cas))
		}
		d.cas = out
	}
}

func (d *day) classifyAndCascadeAbove() error {
	p := d.p
	d.diag.PondHeight = math.Max(0, p.DetentionStore-p.SatDeficitZ)
	d.presnowDepth = p.Snowpack.Height
	d.diag.Passes = classify(p.Layers, d.presnowDepth, d.diag.PondHeight)

	p.Snowpack.OverstoryFraction = 0
	p.Snowpack.OverstoryHeight = d.env.Zone.ScreenHeight
	for _, li := range d.diag.Passes[0] {
		p.Snowpack.OverstoryFraction = 1
		p.Snowpack.OverstoryHeight = math.Min(p.Snowpack.OverstoryHeight, p.Layers[li].Height)
	}
	d.cascadeLayers(d.diag.Passes[0])
	return nil
}

func (d *day) cascadeBelow() error {
	d.cascadeLayers(d.diag.Passes[1])
	d.cascadeLayers(d.diag.Passes[2])

	// Snow let through by the lower layers joins the pack without melting.
	d.p.Snowpack.WaterEquivalentDepth += d.cas.Snow
	d.p.Fluxes.SnowThroughfall += d.cas.Snow
	d.cas.Snow = 0
	return nil
}
