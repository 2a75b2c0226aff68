// Package search implements radius and nearest-point queries over postal
// centroid records.
package search

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ziplookup/internal/dataset"
	"github.com/sells-group/ziplookup/internal/geomath"
)

// ErrEmptyDataset indicates a nearest-point query against no records.
var ErrEmptyDataset = eris.New("empty dataset")

// kmPerDegreeLat approximates one degree of latitude (and of longitude at the
// equator) for the bounding-box prune.
const kmPerDegreeLat = 111.0

// distanceEpsilon guards against floating-point misses right at the radius
// boundary.
const distanceEpsilon = 1e-9

// Result is a postal centroid together with its distance from the query point.
type Result struct {
	dataset.PostalPoint
	DistanceKm float64 `json:"distance_km"`
}

// NearbyWithinRadius returns every point within radiusKm of the query point,
// sorted ascending by distance with dataset order breaking ties.
//
// A rectangular bounding box sized from the radius is applied first so the
// exact haversine distance is only computed for nearby candidates. The box is
// conservative: it may admit points the exact check then rejects, but never
// excludes a point inside the circle.
func NearbyWithinRadius(lat, lon, radiusKm float64, points []dataset.PostalPoint) []Result {
	dlat := radiusKm / kmPerDegreeLat
	// Meridians converge toward the poles, so a degree of longitude spans
	// fewer km at high latitudes. The floor keeps the divisor sane there.
	lonScale := math.Max(1e-6, math.Cos(lat*math.Pi/180))
	dlon := radiusKm / (kmPerDegreeLat * lonScale)

	latMin, latMax := lat-dlat, lat+dlat
	lonMin, lonMax := lon-dlon, lon+dlon

	var out []Result
	for _, p := range points {
		if p.Latitude < latMin || p.Latitude > latMax || p.Longitude < lonMin || p.Longitude > lonMax {
			continue
		}
		d := geomath.HaversineKm(lat, lon, p.Latitude, p.Longitude)
		if d <= radiusKm+distanceEpsilon {
			out = append(out, Result{PostalPoint: p, DistanceKm: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

// NearestPoint returns the closest point to the query by linear scan. The
// strict less-than comparison means the earliest point at the minimum
// distance wins. Returns ErrEmptyDataset when points is empty.
func NearestPoint(lat, lon float64, points []dataset.PostalPoint) (Result, error) {
	if len(points) == 0 {
		return Result{}, eris.Wrap(ErrEmptyDataset, "search: nearest point")
	}

	best := Result{DistanceKm: math.Inf(1)}
	for _, p := range points {
		d := geomath.HaversineKm(lat, lon, p.Latitude, p.Longitude)
		if d < best.DistanceKm {
			best = Result{PostalPoint: p, DistanceKm: d}
		}
	}
	return best, nil
}
