// Package optim searches parameter grids for the point that minimizes a
// run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

var ErrEmptyGrid = errors.New("optim: empty grid")

// Axis is one named parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Objective evaluates a grid point. A failed evaluation is recorded and
// skipped, not fatal to the search.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	axes     []Axis
	parallel int
}

// NewGridSearch searches the cartesian product of axes, evaluating up to
// parallel points at once (1 when parallel < 1).
func NewGridSearch(axes []Axis, parallel int) *GridSearch {
	return &GridSearch{axes: axes, parallel: max(parallel, 1)}
}

// Points enumerates the grid, first axis varying slowest.
func (g *GridSearch) Points() []map[string]float64 {
	if len(g.axes) == 0 {
		return nil
	}
	var out []map[string]float64
	var walk func(depth int, current map[string]float64)
	walk = func(depth int, current map[string]float64) {
		if depth == len(g.axes) {
			p := make(map[string]float64, len(current))
			for k, v := range current {
				p[k] = v
			}
			out = append(out, p)
			return
		}
		ax := g.axes[depth]
		for _, v := range ax.Values {
			current[ax.Name] = v
			walk(depth+1, current)
		}
	}
	walk(0, make(map[string]float64, len(g.axes)))
	return out
}

// Search evaluates every grid point and returns the one with the lowest
// value along with all evaluations in grid order. It fails only when ctx
// ends or no point evaluates.
func (g *GridSearch) Search(ctx context.Context, eval Objective) (Point, []Point, error) {
	points := g.Points()
	if len(points) == 0 {
		return Point{}, nil, ErrEmptyGrid
	}
	results := make([]Point, len(points))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallel)
	for i, params := range points {
		i, params := i, params
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := eval(ctx, params)
			results[i] = Point{Params: params, Value: v, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, results, err
	}

	best := Point{Value: math.Inf(1)}
	found := false
	for _, r := range results {
		if r.Err == nil && !math.IsNaN(r.Value) && r.Value < best.Value {
			best, found = r, true
		}
	}
	if !found {
		return Point{}, results, fmt.Errorf("optim: all %d points failed: %w", len(results), results[0].Err)
	}
	return best, results, nil
}

// Names returns the axis names of params in sorted order.
func Names(params map[string]float64) []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ParseAxis reads "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return Axis{}, fmt.Errorf("optim: axis %q: want name=v1,v2", s)
	}
	ax := Axis{Name: strings.TrimSpace(name)}
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("optim: axis %q: %w", s, err)
		}
		ax.Values = append(ax.Values, v)
	}
	return ax, nil
}
