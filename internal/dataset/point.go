// Package dataset manages the cached GeoNames postal-centroid dataset: keeping a
// fresh local copy and parsing it into in-memory records.
package dataset

// PostalPoint is one postal-code centroid record from the GeoNames flat file.
type PostalPoint struct {
	Code      string  `json:"code"`
	Place     string  `json:"place"`
	Region    string  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
