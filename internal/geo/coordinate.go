package geo

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies on the globe.
func (c Coordinate) Valid() bool {
	return s2.LatLngFromDegrees(c.Lat, c.Lon).IsValid()
}

// USCenter is the geographic centre of the contiguous United States.
var USCenter = Coordinate{Lat: 37.0902, Lon: -95.7129}

// Centroid returns the mean position of coords on the sphere. ok is false when
// coords is empty or the points cancel out (e.g. antipodes).
func Centroid(coords []Coordinate) (Coordinate, bool) {
	if len(coords) == 0 {
		return Coordinate{}, false
	}
	var sum r3.Vector
	for _, c := range coords {
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon)).Vector)
	}
	if sum.Norm() < 1e-12 {
		return Coordinate{}, false
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Coordinate{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}, true
}
