// Package geodesy provides great-circle helpers for paths of fixes.
package geodesy

import (
	"math"

	"github.com/golang/geo/s1"
)

// EarthRadiusKm is the sphere radius used by Distance. 6372.8 km is the
// mean radius that minimises haversine error at mid latitudes.
const EarthRadiusKm = 6372.8

// Point is a position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func radians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

// Distance returns the haversine distance between two positions in km.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	hLat := radians(lat2-lat1) / 2
	hLon := radians(lon2-lon1) / 2
	sLat, sLon := math.Sin(hLat), math.Sin(hLon)
	a := sLat*sLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sLon*sLon
	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// Heading returns the initial bearing from the first position to the
// second, in degrees clockwise from true north, in [0, 360).
func Heading(lat1, lon1, lat2, lon2 float64) float64 {
	dLon := radians(lon2 - lon1)
	phi1, phi2 := radians(lat1), radians(lat2)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	deg := s1.Angle(math.Atan2(y, x)).Degrees()
	return math.Mod(deg+360, 360)
}

// TotalDistance sums Distance over consecutive points. Paths with fewer
// than two points have length 0.
func TotalDistance(path []Point) float64 {
	if len(path) < 2 {
		return 0
	}
	var km float64
	for i := 0; i < len(path)-1; i++ {
		km += Distance(path[i].Lat, path[i].Lon, path[i+1].Lat, path[i+1].Lon)
	}
	return km
}
