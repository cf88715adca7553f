package chart

import (
	"strconv"
	"strings"
	"testing"
)

func plain(v int64) string { return strconv.FormatInt(v, 10) }

func TestScale(t *testing.T) {
	tests := []struct {
		max      int64
		wantTop  float64
		wantStep float64
	}{
		{0, 4, 1},
		{1, 4, 1},
		{100, 100, 25},
		{10000, 10000, 2500},
		{12345, 20000, 5000},
		{399, 400, 100},
	}
	for _, tt := range tests {
		top, step := scale(tt.max)
		if top != tt.wantTop || step != tt.wantStep {
			t.Errorf("scale(%d) = (%v, %v), want (%v, %v)", tt.max, top, step, tt.wantTop, tt.wantStep)
		}
		if float64(tt.max) > top {
			t.Errorf("scale(%d) top %v below max", tt.max, top)
		}
	}
}

func TestNewBarChartEmpty(t *testing.T) {
	c := NewBarChart(nil, nil, "Total", ColorMonthly, plain)
	if !c.Empty || len(c.Bars) != 0 {
		t.Errorf("empty chart = %+v", c)
	}
}

func TestNewBarChartGeometry(t *testing.T) {
	c := NewBarChart([]string{"Jan 2024", "Feb 2024"}, []int64{100, 50}, "Total", ColorMonthly, plain)
	if c.Empty || len(c.Bars) != 2 || len(c.Labels) != 2 {
		t.Fatalf("chart = %+v", c)
	}
	if c.Legend != nil {
		t.Error("single series chart should not have a legend")
	}

	a, b := c.Bars[0], c.Bars[1]
	if a.Height <= b.Height {
		t.Errorf("taller value should give taller bar: %v vs %v", a.Height, b.Height)
	}
	if a.Y+a.Height != c.Baseline {
		t.Errorf("bar should sit on the baseline: y=%v h=%v baseline=%v", a.Y, a.Height, c.Baseline)
	}
	if a.X+a.Width > b.X {
		t.Error("bars overlap")
	}
	if a.Color != ColorMonthly {
		t.Errorf("color = %s", a.Color)
	}
	if len(c.Ticks) != tickCount+1 || c.Ticks[0].Label != "0" {
		t.Errorf("ticks = %+v", c.Ticks)
	}
}

func TestNewGroupedBarChart(t *testing.T) {
	series := []Series{{Name: "Budget", Color: ColorBudget}, {Name: "Spent", Color: ColorSpent}}
	c := NewGroupedBarChart([]string{"Food", "Rent"}, series, [][]int64{{50, 0}, {100, -5}}, plain)

	if len(c.Bars) != 4 || len(c.Legend) != 2 {
		t.Fatalf("chart = %+v", c)
	}
	if c.Bars[0].Series != "Budget" || c.Bars[1].Series != "Spent" {
		t.Errorf("bars should be grouped by label: %+v", c.Bars)
	}
	if c.Bars[3].Height != 0 {
		t.Errorf("negative value drawn with height %v", c.Bars[3].Height)
	}
	if !strings.Contains(c.Bars[1].Title, "Food Spent: 100") {
		t.Errorf("title = %q", c.Bars[1].Title)
	}
}

func TestNewPieChart(t *testing.T) {
	p := NewPieChart([]string{"Food", "Rent", "Other"}, []int64{300, 0, 100}, plain)
	if p.Empty || len(p.Slices) != 2 {
		t.Fatalf("pie = %+v", p)
	}
	if p.Slices[0].Percent != "75%" || p.Slices[1].Percent != "25%" {
		t.Errorf("percents = %s, %s", p.Slices[0].Percent, p.Slices[1].Percent)
	}
	if p.Slices[0].Color != Palette[0] || p.Slices[1].Color != Palette[1] {
		t.Error("palette should follow visible slices")
	}
	if !strings.Contains(p.Slices[0].Path, " 0 1 1 ") {
		t.Errorf("75%% slice should use the large arc flag: %s", p.Slices[0].Path)
	}
}

func TestNewPieChartSingleSlice(t *testing.T) {
	p := NewPieChart([]string{"Food"}, []int64{100}, plain)
	if len(p.Slices) != 1 || p.Slices[0].Percent != "100%" {
		t.Fatalf("pie = %+v", p)
	}
	if strings.Count(p.Slices[0].Path, "A ") != 2 {
		t.Errorf("full circle should use two arcs: %s", p.Slices[0].Path)
	}
}

func TestNewPieChartEmpty(t *testing.T) {
	if p := NewPieChart([]string{"Food"}, []int64{0}, plain); !p.Empty {
		t.Error("all-zero pie should be empty")
	}
}
