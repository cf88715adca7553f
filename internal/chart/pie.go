package chart

import (
	"fmt"
	"math"
)

// Pie geometry, in viewBox units.
const (
	PieSize   = 260.0
	pieRadius = 110.0
)

type Slice struct {
	Label   string
	Value   string
	Percent string
	Path    string
	Color   string
	// LabelX and LabelY place the percentage inside the slice.
	LabelX float64
	LabelY float64
}

type PieChart struct {
	Size   float64
	Slices []Slice
	Empty  bool
}

// NewPieChart lays out one slice per positive value, starting at twelve
// o'clock and going clockwise. Non-positive values are skipped.
func NewPieChart(labels []string, values []int64, format Formatter) PieChart {
	p := PieChart{Size: PieSize}

	var total int64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		p.Empty = true
		return p
	}

	center := PieSize / 2
	angle := -math.Pi / 2
	for i, label := range labels {
		if i >= len(values) || values[i] <= 0 {
			continue
		}
		frac := float64(values[i]) / float64(total)
		sweep := frac * 2 * math.Pi
		mid := angle + sweep/2

		p.Slices = append(p.Slices, Slice{
			Label:   label,
			Value:   format(values[i]),
			Percent: fmt.Sprintf("%.0f%%", frac*100),
			Path:    slicePath(center, pieRadius, angle, sweep),
			Color:   Palette[len(p.Slices)%len(Palette)],
			LabelX:  round2(center + pieRadius*0.65*math.Cos(mid)),
			LabelY:  round2(center + pieRadius*0.65*math.Sin(mid)),
		})
		angle += sweep
	}
	return p
}

// slicePath returns an SVG path for a wedge. A full circle cannot be drawn
// with one arc, so it is split into two half arcs.
func slicePath(c, r, start, sweep float64) string {
	if sweep >= 2*math.Pi-1e-9 {
		return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f Z",
			c, c-r, r, r, c, c+r, r, r, c, c-r)
	}
	x0, y0 := c+r*math.Cos(start), c+r*math.Sin(start)
	x1, y1 := c+r*math.Cos(start+sweep), c+r*math.Sin(start+sweep)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		c, c, x0, y0, r, r, large, x1, y1)
}
