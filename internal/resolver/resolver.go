// Package resolver composes the dataset, search engine, and reverse geocoder
// into coordinate-to-postal-code lookups.
package resolver

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ziplookup/internal/dataset"
	"github.com/sells-group/ziplookup/internal/geomath"
	"github.com/sells-group/ziplookup/internal/search"
	"github.com/sells-group/ziplookup/pkg/geocode"
)

// Strategy names how "the ZIP code here" is determined. The two strategies
// answer subtly different questions (administrative boundary vs. nearest
// centroid) and can disagree near ZIP boundaries, so reports always carry the
// strategy that produced them.
type Strategy string

const (
	// StrategyReverseGeocode resolves the code via Nominatim's
	// administrative-boundary lookup. Needs network access.
	StrategyReverseGeocode Strategy = "reverse_geocode"

	// StrategyNearestCentroid approximates the code by the nearest dataset
	// centroid. Fully offline.
	StrategyNearestCentroid Strategy = "nearest_centroid"
)

// Unit selects the distance unit for presentation.
type Unit string

const (
	UnitKm    Unit = "km"
	UnitMiles Unit = "mi"
)

// Request is a single lookup query.
type Request struct {
	Lat      float64
	Lon      float64
	Radius   float64 // in Unit
	Unit     Unit
	Strategy Strategy
}

// Report is the outcome of a lookup.
type Report struct {
	// Code is the resolved postal code, empty when reverse geocoding failed
	// and the result degraded to unknown.
	Code     string
	Strategy Strategy

	// Nearest is set for StrategyNearestCentroid: the centroid that supplied
	// Code, with its distance from the query point.
	Nearest *search.Result

	// Nearby holds every dataset point within the radius, ascending by
	// distance, uncapped. Presentation caps are the caller's concern.
	Nearby []search.Result

	// RadiusKm is the query radius after unit conversion.
	RadiusKm float64
}

// Resolver answers lookups against an immutable point collection.
type Resolver struct {
	points   []dataset.PostalPoint
	geocoder geocode.Client
}

// New creates a Resolver. The geocoder may be nil when only the offline
// strategy is used.
func New(points []dataset.PostalPoint, gc geocode.Client) *Resolver {
	return &Resolver{points: points, geocoder: gc}
}

// RadiusKm converts a radius in the request's unit to kilometers.
func (req Request) RadiusKm() float64 {
	if req.Unit == UnitMiles {
		return geomath.MilesToKm(req.Radius)
	}
	return req.Radius
}

// Lookup resolves the postal code at the request coordinate using the
// requested strategy, then gathers all dataset points within the radius.
//
// With StrategyReverseGeocode a geocoding failure degrades to an unknown code
// rather than failing the lookup, since the nearby half of the answer does
// not depend on it. Dataset-layer errors are hard failures.
func (r *Resolver) Lookup(ctx context.Context, req Request) (*Report, error) {
	log := zap.L().With(zap.String("component", "resolver"))

	report := &Report{
		Strategy: req.Strategy,
		RadiusKm: req.RadiusKm(),
	}

	switch req.Strategy {
	case StrategyReverseGeocode:
		if r.geocoder == nil {
			return nil, eris.New("resolver: reverse geocode strategy requires a geocoder")
		}
		code, err := r.geocoder.ReverseZip(ctx, req.Lat, req.Lon)
		if err != nil {
			if !eris.Is(err, geocode.ErrGeocodeFailed) {
				return nil, err
			}
			log.Warn("reverse geocode failed, postal code unknown",
				zap.Float64("lat", req.Lat),
				zap.Float64("lon", req.Lon),
				zap.Error(err),
			)
		} else {
			report.Code = code
		}

	case StrategyNearestCentroid:
		nearest, err := search.NearestPoint(req.Lat, req.Lon, r.points)
		if err != nil {
			return nil, err
		}
		report.Code = nearest.Code
		report.Nearest = &nearest

	default:
		return nil, eris.Errorf("resolver: unknown strategy %q", req.Strategy)
	}

	report.Nearby = search.NearbyWithinRadius(req.Lat, req.Lon, report.RadiusKm, r.points)
	return report, nil
}
