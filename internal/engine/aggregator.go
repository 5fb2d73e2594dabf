package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fleetdash/internal/models"
)

// Period is a time bucket size for series.
type Period string

const (
	Monthly Period = "M"
	Weekly  Period = "W"
	Yearly  Period = "Y"
)

// ParsePeriod accepts M, W or Y (case-insensitive); empty means monthly.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "M":
		return Monthly, nil
	case "W":
		return Weekly, nil
	case "Y":
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown period %q (use M, W or Y)", s)
}

func (p Period) bucket(t time.Time) time.Time {
	d := Day(t)
	switch p {
	case Weekly:
		return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
	case Yearly:
		return time.Date(d.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func (p Period) next(t time.Time) time.Time {
	switch p {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Yearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

func (p Period) label(t time.Time) string {
	switch p {
	case Weekly:
		return t.Format("2006-01-02")
	case Yearly:
		return t.Format("2006")
	default:
		return t.Format("Jan 2006")
	}
}

// bucketSums sums metric per period over rows with a valid date. A row with a
// date but no numeric metric still opens its bucket.
func bucketSums(ds *Dataset, metric string, p Period) map[time.Time]float64 {
	dates, ok := ds.Column(ColDate)
	if !ok {
		return nil
	}
	vals, ok := ds.Column(metric)
	if !ok {
		return nil
	}
	sums := make(map[time.Time]float64)
	for i, v := range dates.Values {
		t, ok := ToDate(v)
		if !ok {
			continue
		}
		b := p.bucket(t)
		f, _ := ToNumber(vals.Values[i])
		sums[b] += f
	}
	return sums
}

// continuous expands sums into consecutive buckets from the first to the last,
// filling gaps with zero.
func continuous(sums map[time.Time]float64, p Period) []models.TimePoint {
	points := []models.TimePoint{}
	if len(sums) == 0 {
		return points
	}
	var first, last time.Time
	for b := range sums {
		if first.IsZero() || b.Before(first) {
			first = b
		}
		if b.After(last) {
			last = b
		}
	}
	for b := first; !b.After(last); b = p.next(b) {
		points = append(points, models.TimePoint{Label: p.label(b), Start: b.Format("2006-01-02"), Value: sums[b]})
	}
	return points
}

// TimeSeries sums metric per period between the first and last dated row.
func TimeSeries(ds *Dataset, metric string, p Period) models.TimeSeries {
	return models.TimeSeries{
		Metric: metric,
		Period: string(p),
		Points: continuous(bucketSums(ds, metric, p), p),
	}
}

// groupSum sums measure per key of column. With an absent measure column each
// row counts as one.
func groupSum(ds *Dataset, column, measure string) (map[string]float64, bool) {
	col, ok := ds.Column(column)
	if !ok {
		return nil, false
	}
	m, hasMeasure := ds.Column(measure)
	out := make(map[string]float64)
	for i, v := range col.Values {
		if v.IsNull() {
			continue
		}
		if !hasMeasure {
			out[v.Key()]++
			continue
		}
		f, _ := ToNumber(m.Values[i])
		out[v.Key()] += f
	}
	return out, true
}

func slices(sums map[string]float64) []models.Slice {
	var total float64
	out := make([]models.Slice, 0, len(sums))
	for k, v := range sums {
		out = append(out, models.Slice{Label: k, Value: v})
		total += v
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Label < out[j].Label
		}
		return out[i].Value > out[j].Value
	})
	if total != 0 {
		for i := range out {
			out[i].Share = out[i].Value / total
		}
	}
	return out
}

// Distribution is the pie of column: amount refueled per value when that
// column exists, row counts otherwise.
func Distribution(ds *Dataset, column string) models.Distribution {
	measure := "count"
	if ds.Has(ColAmountRefueled) {
		measure = ColAmountRefueled
	}
	d := models.Distribution{Column: column, Measure: measure, Slices: []models.Slice{}}
	if sums, ok := groupSum(ds, column, ColAmountRefueled); ok {
		d.Slices = slices(sums)
	}
	return d
}

// Share is the amount refueled per vehicle type, or per vehicle when types are
// missing.
func Share(ds *Dataset) models.Distribution {
	group := ColVehicleType
	if !ds.Has(group) {
		group = ColVehicle
	}
	d := models.Distribution{Column: group, Measure: ColAmountRefueled, Slices: []models.Slice{}}
	if !ds.Has(ColAmountRefueled) {
		return d
	}
	if sums, ok := groupSum(ds, group, ColAmountRefueled); ok {
		d.Slices = slices(sums)
	}
	return d
}

var weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekday sums amount refueled (or counts refuels) per day of week, Monday
// first, listing only days that occur.
func Weekday(ds *Dataset) models.Distribution {
	measure := "count"
	if ds.Has(ColAmountRefueled) {
		measure = ColAmountRefueled
	}
	d := models.Distribution{Column: ColDate, Measure: measure, Slices: []models.Slice{}}
	dates, ok := ds.Column(ColDate)
	if !ok {
		return d
	}
	amounts, hasAmount := ds.Column(ColAmountRefueled)
	var sums [7]float64
	var seen [7]bool
	for i, v := range dates.Values {
		t, ok := ToDate(v)
		if !ok {
			continue
		}
		idx := (int(t.Weekday()) + 6) % 7
		seen[idx] = true
		if !hasAmount {
			sums[idx]++
			continue
		}
		f, _ := ToNumber(amounts.Values[i])
		sums[idx] += f
	}
	for i := range weekdays {
		if seen[i] {
			d.Slices = append(d.Slices, models.Slice{Label: weekdays[i], Value: sums[i]})
		}
	}
	return d
}

// TopVehicles ranks vehicles by the sum of metric, largest first.
func TopVehicles(ds *Dataset, metric string, n int) []models.TopItem {
	out := []models.TopItem{}
	if !ds.Has(metric) {
		return out
	}
	sums, ok := groupSum(ds, ColVehicle, metric)
	if !ok {
		return out
	}
	for k, v := range sums {
		out = append(out, models.TopItem{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Name < out[j].Name
		}
		return out[i].Value > out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Distinct returns the sorted non-null values of column.
func Distinct(ds *Dataset, column string) []string {
	return ValidOptions(ds, column, nil)
}

// ForVehicle keeps the rows of one vehicle.
func ForVehicle(ds *Dataset, vehicle string) *Dataset {
	return FilterDimension(ds, ColVehicle, []string{vehicle})
}

// ConsumptionTrend lists the consumption of a vehicle over time with a least
// squares trend once more than two points exist.
func ConsumptionTrend(ds *Dataset, vehicle string) models.ConsumptionTrend {
	out := models.ConsumptionTrend{Vehicle: vehicle, Column: ColConsumption, Points: []models.TrendPoint{}}
	if !ds.Has(ColConsumption) {
		out.Column, out.Fallback = ColAmountRefueled, true
	}
	if !ds.Has(ColVehicle) {
		return out
	}
	rows := ForVehicle(ds, vehicle)
	dates, ok := rows.Column(ColDate)
	if !ok {
		return out
	}
	vals, ok := rows.Column(out.Column)
	if !ok {
		return out
	}

	type obs struct {
		t time.Time
		v float64
	}
	var series []obs
	for i, dv := range dates.Values {
		t, ok := ToDate(dv)
		if !ok {
			continue
		}
		f, ok := ToNumber(vals.Values[i])
		if !ok {
			continue
		}
		series = append(series, obs{t, f})
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].t.Before(series[j].t) })
	for _, o := range series {
		out.Points = append(out.Points, models.TrendPoint{Date: Date(o.t).Key(), Value: o.v})
	}

	if len(series) <= 2 {
		return out
	}
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, o := range series {
		xs[i] = o.t.Sub(series[0].t).Hours() / 24
		ys[i] = o.v
	}
	intercept, slope, ok := leastSquares(xs, ys)
	if !ok {
		return out
	}
	for i, o := range series {
		out.Trend = append(out.Trend, models.TrendPoint{Date: Date(o.t).Key(), Value: intercept + slope*xs[i]})
	}
	return out
}

// leastSquares fits y = a + b*x. It fails when every x is equal.
func leastSquares(xs, ys []float64) (a, b float64, ok bool) {
	n := float64(len(xs))
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, 0, false
	}
	b = (n*sxy - sx*sy) / den
	a = (sy - b*sx) / n
	return a, b, true
}

// ModelComparison compares a vehicle's monthly metric with the monthly mean of
// all vehicles sharing its vehicle type. The type is read from the vehicle's
// first row.
func ModelComparison(ds *Dataset, vehicle, metric string) models.Comparison {
	out := models.Comparison{Vehicle: vehicle, Metric: metric, Series: []models.TimePoint{}, ModelMean: []models.TimePoint{}}
	if !ds.Has(ColVehicle) || !ds.Has(metric) {
		return out
	}
	types, ok := ds.Column(ColVehicleType)
	if !ok {
		return out
	}
	own := ForVehicle(ds, vehicle)
	if own.Len() == 0 {
		return out
	}
	ownTypes, _ := own.Column(ColVehicleType)
	model := ownTypes.Values[0]
	if model.IsNull() {
		return out
	}
	out.Model = model.Key()
	out.Series = continuous(bucketSums(own, metric, Monthly), Monthly)

	peers := ds.Where(func(row int) bool {
		v := types.Values[row]
		return !v.IsNull() && v.Key() == out.Model
	})
	vehicles, _ := peers.Column(ColVehicle)
	dates, ok := peers.Column(ColDate)
	if !ok {
		return out
	}
	vals, _ := peers.Column(metric)

	perVehicle := make(map[time.Time]map[string]float64)
	for i, dv := range dates.Values {
		t, ok := ToDate(dv)
		if !ok {
			continue
		}
		b := Monthly.bucket(t)
		if perVehicle[b] == nil {
			perVehicle[b] = make(map[string]float64)
		}
		f, _ := ToNumber(vals.Values[i])
		perVehicle[b][vehicles.Values[i].Key()] += f
	}
	months := make([]time.Time, 0, len(perVehicle))
	for b := range perVehicle {
		months = append(months, b)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	for _, b := range months {
		var sum float64
		for _, v := range perVehicle[b] {
			sum += v
		}
		out.ModelMean = append(out.ModelMean, models.TimePoint{
			Label: Monthly.label(b),
			Start: b.Format("2006-01-02"),
			Value: sum / float64(len(perVehicle[b])),
		})
	}
	return out
}
