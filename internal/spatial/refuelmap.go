package spatial

import (
	"sort"

	"github.com/golang/geo/s2"

	"fleetdash/internal/engine"
	"fleetdash/internal/models"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b s2.LatLng) float64 {
	return a.Distance(b).Radians() * EarthRadiusKm
}

// BuildRefuelMap collects the geolocated refuels of a vehicle in date order.
// Rows without valid coordinates are skipped. Center is the mean position,
// the corners are the bounding rectangle and PathKm follows refuel order.
func BuildRefuelMap(ds *engine.Dataset, vehicle string) models.RefuelMap {
	out := models.RefuelMap{Vehicle: vehicle, Points: []models.MapPoint{}}
	rows := engine.ForVehicle(ds, vehicle)
	lats, ok := rows.Column(engine.ColLatitude)
	if !ok || !rows.Has(engine.ColVehicle) {
		return out
	}
	lngs, ok := rows.Column(engine.ColLongitude)
	if !ok {
		return out
	}
	dates, hasDates := rows.Column(engine.ColDate)
	addrs, hasAddr := rows.Column(engine.ColAddress)
	amounts, hasAmount := rows.Column(engine.ColAmountRefueled)

	type stop struct {
		ll    s2.LatLng
		point models.MapPoint
		when  float64
	}
	var stops []stop
	for i := range lats.Values {
		lat, ok1 := engine.ToNumber(lats.Values[i])
		lng, ok2 := engine.ToNumber(lngs.Values[i])
		if !ok1 || !ok2 {
			continue
		}
		ll := s2.LatLngFromDegrees(lat, lng)
		if !ll.IsValid() {
			continue
		}
		s := stop{ll: ll, point: models.MapPoint{LatLng: models.LatLng{Lat: lat, Lng: lng}}}
		if hasDates {
			if t, ok := engine.ToDate(dates.Values[i]); ok {
				s.point.Date = engine.Date(t).Key()
				s.when = float64(t.Unix())
			}
		}
		if hasAddr && !addrs.Values[i].IsNull() {
			s.point.Address = addrs.Values[i].Key()
		}
		if hasAmount {
			if f, ok := engine.ToNumber(amounts.Values[i]); ok {
				s.point.Amount = &f
			}
		}
		stops = append(stops, s)
	}
	if len(stops) == 0 {
		return out
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].when < stops[j].when })

	rect := s2.EmptyRect()
	var sumLat, sumLng float64
	for i, s := range stops {
		rect = rect.AddPoint(s.ll)
		sumLat += s.point.Lat
		sumLng += s.point.Lng
		if i > 0 {
			out.PathKm += DistanceKm(stops[i-1].ll, s.ll)
		}
		out.Points = append(out.Points, s.point)
	}
	n := float64(len(stops))
	out.Center = models.LatLng{Lat: sumLat / n, Lng: sumLng / n}
	out.SW = models.LatLng{Lat: rect.Lo().Lat.Degrees(), Lng: rect.Lo().Lng.Degrees()}
	out.NE = models.LatLng{Lat: rect.Hi().Lat.Degrees(), Lng: rect.Hi().Lng.Degrees()}
	return out
}
