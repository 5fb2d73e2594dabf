package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdash/internal/models"
)

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"": Monthly, "m": Monthly, "W": Weekly, " y ": Yearly} {
		got, err := ParsePeriod(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePeriod("Q")
	assert.Error(t, err)
}

func TestTimeSeriesMonthlyFillsGaps(t *testing.T) {
	ds, err := Standardize(raw([]string{"province", "date", "amount_refueled"},
		[]string{"A", "2024-01-10", "10"},
		[]string{"A", "2024-01-20", "5"},
		[]string{"A", "2024-03-02", "7"},
		[]string{"A", "2024-03-03", "n/a"},
		[]string{"A", "", "100"},
	))
	require.NoError(t, err)

	got := TimeSeries(ds, ColAmountRefueled, Monthly)

	assert.Equal(t, []models.TimePoint{
		{Label: "Jan 2024", Start: "2024-01-01", Value: 15},
		{Label: "Feb 2024", Start: "2024-02-01", Value: 0},
		{Label: "Mar 2024", Start: "2024-03-01", Value: 7},
	}, got.Points)
	assert.Equal(t, "M", got.Period)
}

func TestTimeSeriesWeeklyStartsMonday(t *testing.T) {
	ds := fleet(t)

	got := TimeSeries(ds, ColDistance, Weekly)

	require.NotEmpty(t, got.Points)
	assert.Equal(t, "2024-01-01", got.Points[0].Label)
	assert.Equal(t, 300.0, got.Points[0].Value)
	assert.Equal(t, "2024-01-08", got.Points[1].Label)
	last := got.Points[len(got.Points)-1]
	// 2024-03-15 is a Friday
	assert.Equal(t, "2024-03-11", last.Label)
	assert.Equal(t, 240.0, last.Value)
	assert.Len(t, got.Points, 11)
}

func TestTimeSeriesYearlyAndMissingColumns(t *testing.T) {
	ds := fleet(t)

	got := TimeSeries(ds, ColDistance, Yearly)
	assert.Equal(t, []models.TimePoint{{Label: "2024", Start: "2024-01-01", Value: 2050}}, got.Points)

	assert.Empty(t, TimeSeries(ds, ColConsumption, Monthly).Points)
	assert.Empty(t, TimeSeries(nil, ColDistance, Monthly).Points)
}

func TestDistribution(t *testing.T) {
	ds := fleet(t)

	got := Distribution(ds, ColFuelType)

	assert.Equal(t, ColAmountRefueled, got.Measure)
	require.Len(t, got.Slices, 3)
	assert.Equal(t, "diesel", got.Slices[0].Label)
	assert.Equal(t, 205.0, got.Slices[0].Value)
	assert.Equal(t, "gasoline", got.Slices[1].Label)
	assert.Equal(t, 58.5, got.Slices[1].Value)
	assert.Equal(t, "electric", got.Slices[2].Label)
	assert.Equal(t, 0.0, got.Slices[2].Value)
	assert.InDelta(t, 205.0/263.5, got.Slices[0].Share, 1e-9)
}

func TestDistributionCountsWithoutAmount(t *testing.T) {
	ds, err := Standardize(raw([]string{"province", "fuel_type"},
		[]string{"A", "diesel"}, []string{"A", "diesel"}, []string{"A", "gasoline"},
	))
	require.NoError(t, err)

	got := Distribution(ds, ColFuelType)

	assert.Equal(t, "count", got.Measure)
	assert.Equal(t, []models.Slice{
		{Label: "diesel", Value: 2, Share: 2.0 / 3},
		{Label: "gasoline", Value: 1, Share: 1.0 / 3},
	}, got.Slices)
	assert.Empty(t, Distribution(ds, ColVehicleType).Slices)
}

func TestWeekday(t *testing.T) {
	ds := fleet(t)

	got := Weekday(ds)

	assert.Equal(t, []models.Slice{
		{Label: "Monday", Value: 190},
		{Label: "Thursday", Value: 45},
		{Label: "Friday", Value: 28.5},
	}, got.Slices)
}

func TestTopVehicles(t *testing.T) {
	ds := fleet(t)

	got := TopVehicles(ds, ColAmountRefueled, 2)

	assert.Equal(t, []models.TopItem{{Name: "V3", Value: 120}, {Name: "V1", Value: 85}}, got)
	assert.Len(t, TopVehicles(ds, ColDistance, 0), 4)
	assert.Empty(t, TopVehicles(ds, ColConsumption, 3))
}

func TestShare(t *testing.T) {
	ds := fleet(t)

	got := Share(ds)

	assert.Equal(t, ColVehicleType, got.Column)
	require.Len(t, got.Slices, 3)
	assert.Equal(t, "truck", got.Slices[0].Label)
	var total float64
	for _, s := range got.Slices {
		total += s.Share
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestDistinct(t *testing.T) {
	ds := fleet(t)

	assert.Equal(t, []string{"V1", "V2", "V3", "V4"}, Distinct(ds, ColVehicle))
	assert.Equal(t, []string{"Madrid", "Sevilla", "Toledo", "Valencia"}, Distinct(ds, ColProvince))
}

func TestConsumptionTrend(t *testing.T) {
	ds, err := Standardize(raw([]string{"vehicle", "province", "date", "consumption"},
		[]string{"V1", "A", "2024-01-03", "7"},
		[]string{"V1", "A", "2024-01-01", "5"},
		[]string{"V1", "A", "2024-01-02", "6"},
		[]string{"V1", "A", "2024-01-04", ""},
		[]string{"V2", "A", "2024-01-01", "9"},
	))
	require.NoError(t, err)

	got := ConsumptionTrend(ds, "V1")

	assert.False(t, got.Fallback)
	assert.Equal(t, []models.TrendPoint{
		{Date: "2024-01-01", Value: 5},
		{Date: "2024-01-02", Value: 6},
		{Date: "2024-01-03", Value: 7},
	}, got.Points)
	require.Len(t, got.Trend, 3)
	for i, p := range got.Trend {
		assert.InDelta(t, got.Points[i].Value, p.Value, 1e-9)
	}

	short := ConsumptionTrend(ds, "V2")
	assert.Len(t, short.Points, 1)
	assert.Empty(t, short.Trend)
}

func TestConsumptionTrendFallback(t *testing.T) {
	ds := fleet(t)

	got := ConsumptionTrend(ds, "V1")

	assert.True(t, got.Fallback)
	assert.Equal(t, ColAmountRefueled, got.Column)
	assert.Equal(t, []models.TrendPoint{{Date: "2024-01-01", Value: 40}, {Date: "2024-02-15", Value: 45}}, got.Points)
	assert.Empty(t, got.Trend)
}

func TestModelComparison(t *testing.T) {
	ds, err := Standardize(raw([]string{"vehicle", "vehicle_type", "province", "date", "distance"},
		[]string{"V1", "van", "A", "2024-01-05", "100"},
		[]string{"V1", "van", "A", "2024-03-05", "50"},
		[]string{"V2", "van", "A", "2024-01-10", "200"},
		[]string{"V2", "van", "A", "2024-01-11", "100"},
		[]string{"V3", "car", "A", "2024-01-10", "999"},
	))
	require.NoError(t, err)

	got := ModelComparison(ds, "V1", ColDistance)

	assert.Equal(t, "van", got.Model)
	assert.Equal(t, []models.TimePoint{
		{Label: "Jan 2024", Start: "2024-01-01", Value: 100},
		{Label: "Feb 2024", Start: "2024-02-01", Value: 0},
		{Label: "Mar 2024", Start: "2024-03-01", Value: 50},
	}, got.Series)
	assert.Equal(t, []models.TimePoint{
		{Label: "Jan 2024", Start: "2024-01-01", Value: 200},
		{Label: "Mar 2024", Start: "2024-03-01", Value: 50},
	}, got.ModelMean)

	unknown := ModelComparison(ds, "V9", ColDistance)
	assert.Empty(t, unknown.Model)
	assert.Empty(t, unknown.Series)
}
