// Package render draws dashboard charts as PNG images.
package render

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fleetdash/internal/models"
)

// ErrNotEnoughData is returned when a series has nothing to draw.
var ErrNotEnoughData = errors.New("not enough data to render chart")

// Size is the canvas size in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = 800
	}
	if s.Height <= 0 {
		s.Height = 400
	}
	return s
}

var padding = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}

// Bars draws one bar per label. All-zero values cannot be scaled.
func Bars(w io.Writer, title string, labels []string, values []float64, size Size) error {
	if len(values) == 0 || len(labels) != len(values) {
		return ErrNotEnoughData
	}
	lo, hi := 0.0, 0.0
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		bars[i] = chart.Value{Label: labels[i], Value: v}
	}
	if lo == hi {
		return ErrNotEnoughData
	}
	size = size.orDefault()
	width := int(float64(size.Width-80) / float64(len(bars)) * 0.7)
	if width < 4 {
		width = 4
	}
	bc := chart.BarChart{
		Title:      title,
		Background: padding,
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   width,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

// Pie draws the positive slices of a distribution.
func Pie(w io.Writer, title string, slices []models.Slice, size Size) error {
	var values []chart.Value
	for _, s := range slices {
		if s.Value > 0 {
			values = append(values, chart.Value{Label: s.Label, Value: s.Value})
		}
	}
	if len(values) == 0 {
		return ErrNotEnoughData
	}
	size = size.orDefault()
	pc := chart.PieChart{
		Title:      title,
		Background: padding,
		Width:      size.Width,
		Height:     size.Height,
		Values:     values,
	}
	return pc.Render(chart.PNG, w)
}

// TimeSeries draws a bucketed series as bars.
func TimeSeries(w io.Writer, ts models.TimeSeries, size Size) error {
	labels := make([]string, len(ts.Points))
	values := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		labels[i], values[i] = p.Label, p.Value
	}
	return Bars(w, ts.Metric, labels, values, size)
}

// Distribution draws a pie; weekday distributions read better as bars.
func Distribution(w io.Writer, d models.Distribution, size Size) error {
	if d.Column == "date" {
		labels := make([]string, len(d.Slices))
		values := make([]float64, len(d.Slices))
		for i, s := range d.Slices {
			labels[i], values[i] = s.Label, s.Value
		}
		return Bars(w, d.Measure+" by weekday", labels, values, size)
	}
	return Pie(w, d.Measure+" by "+d.Column, d.Slices, size)
}

// TopVehicles draws the ranking as bars.
func TopVehicles(w io.Writer, title string, items []models.TopItem, size Size) error {
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	for i, it := range items {
		labels[i], values[i] = it.Name, it.Value
	}
	return Bars(w, title, labels, values, size)
}

// Consumption draws the measured points of a vehicle and, when present, its
// trend line.
func Consumption(w io.Writer, ct models.ConsumptionTrend, size Size) error {
	xs, ys, err := timeValues(ct.Points)
	if err != nil {
		return err
	}
	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo, hi = math.Min(lo, y), math.Max(hi, y)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	series := []chart.Series{chart.TimeSeries{
		Name:    ct.Column,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: chart.ColorBlue, DotWidth: 3, DotColor: chart.ColorBlue},
	}}
	if len(ct.Trend) > 1 {
		txs, tys, err := timeValues(ct.Trend)
		if err == nil {
			for _, y := range tys {
				lo, hi = math.Min(lo, y), math.Max(hi, y)
			}
			series = append(series, chart.TimeSeries{
				Name:    "trend",
				XValues: txs,
				YValues: tys,
				Style:   chart.Style{StrokeColor: drawing.ColorRed, StrokeDashArray: []float64{5, 5}},
			})
		}
	}

	size = size.orDefault()
	ch := chart.Chart{
		Title:      ct.Vehicle,
		Background: padding,
		Width:      size.Width,
		Height:     size.Height,
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      chart.YAxis{Name: ct.Column, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func timeValues(points []models.TrendPoint) ([]time.Time, []float64, error) {
	if len(points) < 2 {
		return nil, nil, ErrNotEnoughData
	}
	xs := make([]time.Time, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		t, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			t, err = time.Parse("2006-01-02 15:04:05", p.Date)
			if err != nil {
				return nil, nil, err
			}
		}
		xs = append(xs, t)
		ys = append(ys, p.Value)
	}
	if !xs[0].Before(xs[len(xs)-1]) {
		return nil, nil, ErrNotEnoughData
	}
	return xs, ys, nil
}
