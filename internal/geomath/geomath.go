// Package geomath provides great-circle distance and unit conversion helpers.
package geomath

import "math"

// earthRadiusKm is the mean Earth radius (IUGG R1).
const earthRadiusKm = 6371.0088

// kmPerMile is the miles-per-kilometer conversion factor.
const kmPerMile = 0.621371

// HaversineKm returns the great-circle distance in kilometers between two
// points given in signed decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := radians(lat1)
	p2 := radians(lat2)
	dphi := radians(lat2 - lat1)
	dlambda := radians(lon2 - lon1)

	a := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(p1)*math.Cos(p2)*math.Sin(dlambda/2)*math.Sin(dlambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// KmToMiles converts kilometers to statute miles.
func KmToMiles(km float64) float64 { return km * kmPerMile }

// MilesToKm converts statute miles to kilometers.
func MilesToKm(mi float64) float64 { return mi / kmPerMile }

func radians(deg float64) float64 { return deg * math.Pi / 180 }
