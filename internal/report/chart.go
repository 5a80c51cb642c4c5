package report

import (
	"math"

	"github.com/alexanderramin/strengthscope/internal/scoring"
)

const (
	chartGridLevels   = 5
	chartFallbackMax  = 25
	chartLineColor    = "#34495e"
	chartFillOpacity  = 0.25
	chartDefaultColor = "#7f8c8d"
)

// ChartAxis is one spoke of the polar chart.
type ChartAxis struct {
	CategoryID string  `json:"category_id"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Value      int     `json:"value"`
	Angle      float64 `json:"angle"` // radians, clockwise from the top
}

// ChartPoint is a polygon vertex in polar coordinates.
type ChartPoint struct {
	Angle float64 `json:"angle"`
	Value int     `json:"value"`
}

// Chart describes the category radar chart without drawing it.
type Chart struct {
	Kind            string       `json:"kind"`
	Axes            []ChartAxis  `json:"axes"`
	Polygon         []ChartPoint `json:"polygon"` // closed: first point repeated last
	GridLevels      []float64    `json:"grid_levels"`
	Max             int          `json:"max"`
	ShowValueLabels bool         `json:"show_value_labels"`
	LineColor       string       `json:"line_color"`
	FillOpacity     float64      `json:"fill_opacity"`
}

// BuildChart lays out one axis per category with the raw category totals.
func BuildChart(categories []scoring.CategoryScore) Chart {
	n := len(categories)
	chart := Chart{
		Kind:        "polar",
		Axes:        make([]ChartAxis, 0, n),
		Polygon:     make([]ChartPoint, 0, n+1),
		LineColor:   chartLineColor,
		FillOpacity: chartFillOpacity,
	}

	for i, c := range categories {
		angle := 2 * math.Pi * float64(i) / float64(n)
		color := c.Color
		if color == "" {
			color = chartDefaultColor
		}
		chart.Axes = append(chart.Axes, ChartAxis{
			CategoryID: c.ID,
			Label:      c.Name,
			Color:      color,
			Value:      c.Score,
			Angle:      angle,
		})
		chart.Polygon = append(chart.Polygon, ChartPoint{Angle: angle, Value: c.Score})
		if c.Score > chart.Max {
			chart.Max = c.Score
		}
	}
	if n > 0 {
		chart.Polygon = append(chart.Polygon, chart.Polygon[0])
	}
	if chart.Max == 0 {
		chart.Max = chartFallbackMax
	}

	chart.GridLevels = make([]float64, chartGridLevels)
	for i := range chart.GridLevels {
		chart.GridLevels[i] = float64(chart.Max) * float64(i) / float64(chartGridLevels-1)
	}
	return chart
}

// Cartesian projects a polar value onto a plane centered at (cx, cy)
// where radius corresponds to Max. Angle 0 points up and angles run clockwise,
// matching the usual radar layout.
func (c Chart) Cartesian(angle float64, value, cx, cy, radius float64) (float64, float64) {
	r := radius * value / float64(c.Max)
	return cx + r*math.Sin(angle), cy - r*math.Cos(angle)
}
