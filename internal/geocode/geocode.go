// Package geocode defines the postcode resolution contract.
package geocode

import "context"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a normalized UK postcode (outward + inward part) to a
// coordinate. A nil point with a nil error means the postcode is well formed
// but unknown to the resolver.
type Geocoder interface {
	Lookup(ctx context.Context, outward, inward string) (*Point, error)
}
