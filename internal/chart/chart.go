// Package chart computes SVG geometry for the dashboard charts. It knows
// nothing about money or categories: values are integer amounts and labels
// come formatted by the caller.
package chart

import (
	"fmt"
	"math"
)

// Palette is the slice color cycle for pie charts.
var Palette = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff7f50", "#a29bfe", "#f8c291"}

// Bar colors.
const (
	ColorMonthly = "#4f46e5"
	ColorBudget  = "#82ca9d"
	ColorSpent   = "#8884d8"
)

// Plot area of every bar chart, in viewBox units.
const (
	Width        = 480.0
	Height       = 260.0
	marginLeft   = 64.0
	marginRight  = 12.0
	marginTop    = 12.0
	marginBottom = 40.0
	tickCount    = 4
	groupPadding = 0.2
)

// Formatter renders a value for a tick or tooltip.
type Formatter func(v int64) string

// Series names one set of bars in a grouped chart.
type Series struct {
	Name  string
	Color string
}

type Bar struct {
	Series string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Color  string
	Title  string
}

type Tick struct {
	Y     float64
	Label string
}

type AxisLabel struct {
	X     float64
	Label string
}

// BarChart is a laid out vertical bar chart with one or more series per
// category on the x axis.
type BarChart struct {
	Width     float64
	Height    float64
	PlotLeft  float64
	PlotRight float64
	Baseline  float64
	Bars      []Bar
	Ticks     []Tick
	Labels    []AxisLabel
	Legend    []Series
	Empty     bool
}

// NewBarChart lays out a single series.
func NewBarChart(labels []string, values []int64, name, color string, format Formatter) BarChart {
	return NewGroupedBarChart(labels, []Series{{Name: name, Color: color}}, [][]int64{values}, format)
}

// NewGroupedBarChart lays out len(series) bars per label. values[i][j] is the
// value of series i at label j. Negative values are drawn as zero.
func NewGroupedBarChart(labels []string, series []Series, values [][]int64, format Formatter) BarChart {
	c := BarChart{
		Width:     Width,
		Height:    Height,
		PlotLeft:  marginLeft,
		PlotRight: Width - marginRight,
		Baseline:  Height - marginBottom,
		Empty:     len(labels) == 0 || len(series) == 0,
	}
	if c.Empty {
		return c
	}
	if len(series) > 1 {
		c.Legend = series
	}

	var max int64
	for _, vs := range values {
		for _, v := range vs {
			if v > max {
				max = v
			}
		}
	}
	top, step := scale(max)

	plotHeight := c.Baseline - marginTop
	for i := 0; i <= tickCount; i++ {
		v := step * float64(i)
		c.Ticks = append(c.Ticks, Tick{
			Y:     round2(c.Baseline - v/top*plotHeight),
			Label: format(int64(math.Round(v))),
		})
	}

	groupWidth := (c.PlotRight - c.PlotLeft) / float64(len(labels))
	barWidth := groupWidth * (1 - groupPadding) / float64(len(series))
	for j, label := range labels {
		groupX := c.PlotLeft + groupWidth*float64(j)
		c.Labels = append(c.Labels, AxisLabel{X: round2(groupX + groupWidth/2), Label: label})
		for i, s := range series {
			var v int64
			if i < len(values) && j < len(values[i]) {
				v = values[i][j]
			}
			h := 0.0
			if v > 0 {
				h = float64(v) / top * plotHeight
			}
			c.Bars = append(c.Bars, Bar{
				Series: s.Name,
				X:      round2(groupX + groupWidth*groupPadding/2 + barWidth*float64(i)),
				Y:      round2(c.Baseline - h),
				Width:  round2(barWidth),
				Height: round2(h),
				Color:  s.Color,
				Title:  fmt.Sprintf("%s %s: %s", label, s.Name, format(v)),
			})
		}
	}
	return c
}

// scale picks a round axis maximum at or above max split into tickCount
// steps of 1, 2, 2.5, 5 or 10 times a power of ten, never below one unit.
func scale(max int64) (top, step float64) {
	if max <= 0 {
		return tickCount, 1
	}
	raw := float64(max) / tickCount
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step = 10 * mag
	for _, f := range []float64{1, 2, 2.5, 5} {
		if f*mag >= raw {
			step = f * mag
			break
		}
	}
	if step < 1 {
		step = 1
	}
	return step * tickCount, step
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
