package spatial

import (
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdash/internal/engine"
)

func dataset(t *testing.T) *engine.Dataset {
	t.Helper()
	ds := engine.NewDataset("map.csv",
		[]string{"vehicle", "address", "date", "latitude", "longitude", "amount_refueled"},
		[][]string{
			{"V1", "Spain, Madrid, Sol", "2024-01-03", "40.4168", "-3.7038", "40"},
			{"V1", "Spain, Toledo, Zocodover", "2024-01-01", "39.8628", "-4.0273", ""},
			{"V1", "Spain, Nowhere", "2024-01-02", "", "-4.0", "10"},
			{"V2", "Spain, Sevilla, Triana", "2024-01-01", "37.3891", "-5.9845", "25"},
		})
	out, err := engine.Standardize(ds)
	require.NoError(t, err)
	return out
}

func TestDistanceKm(t *testing.T) {
	madrid := s2.LatLngFromDegrees(40.4168, -3.7038)
	barcelona := s2.LatLngFromDegrees(41.3874, 2.1686)

	assert.InDelta(t, 505, DistanceKm(madrid, barcelona), 5)
	assert.Zero(t, DistanceKm(madrid, madrid))
}

func TestBuildRefuelMap(t *testing.T) {
	m := BuildRefuelMap(dataset(t), "V1")

	require.Len(t, m.Points, 2)
	assert.Equal(t, "2024-01-01", m.Points[0].Date)
	assert.Equal(t, "Spain, Toledo, Zocodover", m.Points[0].Address)
	assert.Nil(t, m.Points[0].Amount)
	require.NotNil(t, m.Points[1].Amount)
	assert.Equal(t, 40.0, *m.Points[1].Amount)

	assert.InDelta(t, (40.4168+39.8628)/2, m.Center.Lat, 1e-9)
	assert.InDelta(t, (-3.7038-4.0273)/2, m.Center.Lng, 1e-9)
	assert.InDelta(t, 39.8628, m.SW.Lat, 1e-6)
	assert.InDelta(t, -4.0273, m.SW.Lng, 1e-6)
	assert.InDelta(t, 40.4168, m.NE.Lat, 1e-6)
	assert.InDelta(t, -3.7038, m.NE.Lng, 1e-6)
	assert.InDelta(t, 67, m.PathKm, 3)
}

func TestBuildRefuelMapWithoutCoordinates(t *testing.T) {
	ds, err := engine.Standardize(engine.NewDataset("x.csv",
		[]string{"vehicle", "province"}, [][]string{{"V1", "Madrid"}}))
	require.NoError(t, err)

	m := BuildRefuelMap(ds, "V1")
	assert.Empty(t, m.Points)
	assert.Zero(t, m.PathKm)

	assert.Empty(t, BuildRefuelMap(dataset(t), "V9").Points)
}
