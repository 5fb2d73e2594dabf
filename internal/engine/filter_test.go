package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fleet(t *testing.T) *Dataset {
	t.Helper()
	ds := raw([]string{"vehicle", "vehicle_type", "fuel_type", "address", "date", "amount_refueled", "distance"},
		[]string{"V1", "van", "diesel", "Spain, Madrid, Calle Mayor 1", "2024-01-01", "40", "300"},
		[]string{"V2", "car", "gasoline", "Spain, Madrid, Gran Via 2", "2024-01-08", "30", "250"},
		[]string{"V3", "truck", "diesel", "Spain, Sevilla, Feria 3", "2024-02-12", "120", "800"},
		[]string{"V1", "van", "diesel", "Spain, Toledo, Plaza 4", "2024-02-15", "45", "310"},
		[]string{"V4", "car", "electric", "Valencia", "2024-03-04", "", "150"},
		[]string{"V2", "car", "gasoline", "Spain, Sevilla, Triana 5", "15/03/2024", "28,5", "240"},
	)
	out, err := Standardize(ds)
	require.NoError(t, err)
	return out
}

func TestValidOptionsScenario(t *testing.T) {
	ds, err := Standardize(raw([]string{"vehicle_type", "fuel_type", "province"},
		[]string{"van", "diesel", "Madrid"},
		[]string{"car", "gasoline", "Madrid"},
	))
	require.NoError(t, err)

	sel := Selection{ColFuelType: {"diesel"}}
	assert.Equal(t, []string{"van"}, ValidOptions(ds, ColVehicleType, sel))
	assert.Equal(t, []string{"Madrid"}, ValidOptions(ds, ColProvince, sel))
	// a dimension is never restricted by its own selection
	assert.Equal(t, []string{"diesel", "gasoline"}, ValidOptions(ds, ColFuelType, sel))
}

func TestValidOptionsRetainsSelection(t *testing.T) {
	ds := fleet(t)
	upstream := FilterDimension(ds, ColProvince, []string{"Madrid"})

	sel := Selection{ColProvince: {"Toledo"}}
	opts := ValidOptions(upstream, ColProvince, sel)
	assert.Equal(t, []string{"Madrid", "Toledo"}, opts)

	delete(sel, ColProvince)
	assert.Equal(t, []string{"Madrid"}, ValidOptions(upstream, ColProvince, sel))
}

func TestValidOptionsUnionInvariant(t *testing.T) {
	ds := fleet(t)
	selections := []Selection{
		{},
		{ColFuelType: {"diesel"}},
		{ColFuelType: {"electric"}, ColVehicleType: {"van"}},
		{ColProvince: {"Sevilla", "Atlantis"}, ColVehicleType: {"truck"}},
		{ColVehicleType: {"bicycle"}, ColFuelType: {"diesel"}, ColProvince: {"Madrid"}},
	}
	for _, sel := range selections {
		for _, dim := range Dimensions {
			opts := ValidOptions(ds, dim, sel)
			assert.Subset(t, opts, sel[dim], "dimension %s under %v", dim, sel)
		}
	}
}

func TestValidOptionsAbsentColumn(t *testing.T) {
	ds, err := Standardize(raw([]string{"province"}, []string{"Madrid"}))
	require.NoError(t, err)

	assert.Empty(t, ValidOptions(ds, ColFuelType, Selection{ColFuelType: {"diesel"}}))
	assert.Empty(t, ValidOptions(nil, ColProvince, nil))
	// constraints on absent dimensions do not restrict others
	assert.Equal(t, []string{"Madrid"}, ValidOptions(ds, ColProvince, Selection{ColFuelType: {"diesel"}}))
}

func TestValidOptionsNaturalOrder(t *testing.T) {
	ds, err := Standardize(raw([]string{"province", "vehicle_type", "distance"},
		[]string{"Madrid", "10", "10"},
		[]string{"Madrid", "9", "9"},
		[]string{"Madrid", "100", "100"},
		[]string{"Madrid", "", ""},
	))
	require.NoError(t, err)

	// string columns sort lexicographically, number columns numerically
	assert.Equal(t, []string{"10", "100", "9"}, ValidOptions(ds, ColVehicleType, nil))
	assert.Equal(t, []string{"10", "100", "9", "diesel"}, ValidOptions(ds, ColVehicleType, Selection{ColVehicleType: {"diesel"}}))
	assert.Equal(t, []string{"9", "10", "100"}, ValidOptions(ds, ColDistance, nil))
}

func TestNumericLookingTextKeepsSourceForm(t *testing.T) {
	ds, err := NewLoader(nil).Read(strings.NewReader(
		"vehicle,fuel_type,province,amount_refueled\n"+
			"007,diesel,Madrid,40.50\n"+
			"0012,1.50,Madrid,12\n"), "fleet.csv", "")
	require.NoError(t, err)
	out, err := Standardize(ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"0012", "007"}, Distinct(out, ColVehicle))
	assert.Equal(t, 1, ForVehicle(out, "007").Len())
	assert.Equal(t, []string{"1.50", "diesel"}, ValidOptions(out, ColFuelType, Selection{ColFuelType: {"1.50"}}))
	assert.Equal(t, 1, Apply(out, Criteria{Selection: Selection{ColFuelType: {"1.50"}}}).Len())

	amount, _ := out.Column(ColAmountRefueled)
	n, ok := ToNumber(amount.Values[0])
	require.True(t, ok)
	assert.Equal(t, 40.5, n)
	assert.Equal(t, "007", out.Row(0)[ColVehicle])
}

func TestSelectionNormalize(t *testing.T) {
	got := Selection{" Fuel_Type": {"diesel"}, "fuel_type": {"gasoline"}, "PROVINCE": {"Madrid"}}.Normalize()

	assert.ElementsMatch(t, []string{"diesel", "gasoline"}, got[ColFuelType])
	assert.Equal(t, []string{"Madrid"}, got[ColProvince])
	assert.Len(t, got, 2)
	assert.Nil(t, Selection(nil).Normalize())
}

func TestResolveOptions(t *testing.T) {
	ds := fleet(t)

	got := ResolveOptions(ds, Selection{ColProvince: {"Sevilla"}})

	assert.Equal(t, []string{"car", "truck"}, got[ColVehicleType])
	assert.Equal(t, []string{"diesel", "gasoline"}, got[ColFuelType])
	assert.Equal(t, []string{"Madrid", "Sevilla", "Toledo", "Valencia"}, got[ColProvince])
}

func TestFilterRangeInclusive(t *testing.T) {
	ds, err := Standardize(raw([]string{"province", "amount_refueled"},
		[]string{"A", "5"}, []string{"A", "10"}, []string{"A", "15"}, []string{"A", "20"}, []string{"A", "25"},
	))
	require.NoError(t, err)

	r, err := NewRange(ColAmountRefueled, 10, 20)
	require.NoError(t, err)

	got := FilterRange(ds, r)
	assert.Equal(t, []string{"10", "15", "20"}, keys(t, got, ColAmountRefueled))
}

func TestNewRangeRejectsInverted(t *testing.T) {
	_, err := NewRange(ColDistance, 20, 10)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestFilterRangeCoercesStrings(t *testing.T) {
	ds := fleet(t)

	got := FilterRange(ds, Range{Column: ColAmountRefueled, Min: 28, Max: 30})

	assert.Equal(t, []string{"V2", "V2"}, keys(t, got, ColVehicle))
}

func TestFilterDates(t *testing.T) {
	ds := fleet(t)
	day := func(s string) time.Time {
		tm, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return tm
	}

	got := FilterDates(ds, DateRange{Start: day("2024-02-01"), End: day("2024-03-15")})
	assert.Equal(t, []string{"V3", "V1", "V4", "V2"}, keys(t, got, ColVehicle))

	single := FilterDates(ds, DateRange{Start: day("2024-03-15")})
	assert.Equal(t, []string{"V2"}, keys(t, single, ColVehicle))

	endOnly := FilterDates(ds, DateRange{End: day("2024-01-08")})
	assert.Equal(t, []string{"V2"}, keys(t, endOnly, ColVehicle))
}

func TestEmptySelectionIdentity(t *testing.T) {
	ds := fleet(t)

	got := Apply(ds, Criteria{Selection: Selection{ColFuelType: {}, ColProvince: nil}})

	assert.Equal(t, ds, got)
	assert.NotSame(t, ds, got)
}

func TestApplyConjunction(t *testing.T) {
	ds := fleet(t)
	c := Criteria{
		Selection: Selection{ColFuelType: {"diesel", "gasoline"}, ColProvince: {"Madrid", "Sevilla"}},
		Ranges:    []Range{{Column: ColDistance, Min: 200, Max: 900}},
		Dates:     DateRange{Start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	got := Apply(ds, c)

	require.Equal(t, []string{"V2", "V3", "V2"}, keys(t, got, ColVehicle))
	fuel, _ := got.Column(ColFuelType)
	prov, _ := got.Column(ColProvince)
	dist, _ := got.Column(ColDistance)
	dates, _ := got.Column(ColDate)
	for i := 0; i < got.Len(); i++ {
		assert.Contains(t, c.Selection[ColFuelType], fuel.Values[i].Key())
		assert.Contains(t, c.Selection[ColProvince], prov.Values[i].Key())
		d, ok := ToNumber(dist.Values[i])
		require.True(t, ok)
		assert.True(t, d >= 200 && d <= 900)
		tm, ok := ToDate(dates.Values[i])
		require.True(t, ok)
		assert.False(t, Day(tm).Before(c.Dates.Start))
	}
}

func TestApplyCommutative(t *testing.T) {
	ds := fleet(t)
	sel := Selection{ColFuelType: {"diesel", "gasoline"}}
	rng := Range{Column: ColAmountRefueled, Min: 29, Max: 200}
	dates := DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)}

	steps := map[string]func(*Dataset) *Dataset{
		"dim": func(d *Dataset) *Dataset { return FilterDimension(d, ColFuelType, sel[ColFuelType]) },
		"rng": func(d *Dataset) *Dataset { return FilterRange(d, rng) },
		"dat": func(d *Dataset) *Dataset { return FilterDates(d, dates) },
	}
	orders := [][]string{
		{"dim", "rng", "dat"}, {"dim", "dat", "rng"}, {"rng", "dim", "dat"},
		{"rng", "dat", "dim"}, {"dat", "dim", "rng"}, {"dat", "rng", "dim"},
	}

	want := Apply(ds, Criteria{Selection: sel, Ranges: []Range{rng}, Dates: dates})
	require.Equal(t, []string{"V1", "V2", "V3", "V1"}, keys(t, want, ColVehicle))
	for _, order := range orders {
		got := ds
		for _, step := range order {
			got = steps[step](got)
		}
		assert.Equal(t, want, got, "order %v", order)
	}
}

func TestApplyIgnoresAbsentColumns(t *testing.T) {
	ds, err := Standardize(raw([]string{"province"}, []string{"Madrid"}, []string{"Sevilla"}))
	require.NoError(t, err)

	got := Apply(ds, Criteria{
		Selection: Selection{ColFuelType: {"diesel"}},
		Ranges:    []Range{{Column: ColConsumption, Min: 0, Max: 1}},
		Dates:     DateRange{Start: time.Now()},
	})

	assert.Equal(t, 2, got.Len())
	assert.Nil(t, Apply(nil, Criteria{}))
}

func TestApplyNoMatch(t *testing.T) {
	ds := fleet(t)

	got := Apply(ds, Criteria{Selection: Selection{ColVehicleType: {"bicycle"}}})

	assert.Equal(t, 0, got.Len())
	assert.Equal(t, ds.Names(), got.Names())
}

func TestMetricBounds(t *testing.T) {
	ds := fleet(t)

	b := MetricBounds(ds)

	assert.Equal(t, Bounds{Min: 28.5, Max: 120, Adjustable: true}, b[ColAmountRefueled])
	assert.Equal(t, Bounds{Min: 150, Max: 800, Adjustable: true}, b[ColDistance])
	assert.NotContains(t, b, ColConsumption)

	single := FilterDimension(ds, ColVehicleType, []string{"truck"})
	assert.False(t, MetricBounds(single)[ColDistance].Adjustable)
}
