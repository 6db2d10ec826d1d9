package geodesy

import (
	"math"
	"testing"

	geo "github.com/kellydunn/golang-geo"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	got := Distance(45.527517, -122.718766, 45.373373, -121.693604)
	assert.InDelta(t, 81.80760861833895, got, 1e-9)
}

func TestHeading(t *testing.T) {
	got := Heading(45.527517, -122.718766, 45.373373, -121.693604)
	assert.InDelta(t, 101.73177498132071, got, 1e-9)
}

func TestHeadingRange(t *testing.T) {
	assert.InDelta(t, 0, Heading(10, 20, 11, 20), 1e-9)
	assert.InDelta(t, 90, Heading(0, 20, 0, 21), 1e-9)
	assert.InDelta(t, 180, Heading(11, 20, 10, 20), 1e-9)
	assert.InDelta(t, 270, Heading(0, 21, 0, 20), 1e-9)

	for _, h := range []float64{
		Heading(45, -122, 44, -123),
		Heading(-33.9, 151.2, 51.5, -0.1),
	} {
		assert.GreaterOrEqual(t, h, 0.0)
		assert.Less(t, h, 360.0)
	}
}

func TestTotalDistance(t *testing.T) {
	assert.Equal(t, 0.0, TotalDistance(nil))
	assert.Equal(t, 0.0, TotalDistance([]Point{{Lat: 1, Lon: 2}}))

	path := []Point{
		{Lat: 45.527517, Lon: -122.718766},
		{Lat: 45.373373, Lon: -121.693604},
		{Lat: 45.527517, Lon: -122.718766},
	}
	assert.InDelta(t, 2*81.80760861833895, TotalDistance(path), 1e-9)
}

// The results should agree with an independent great-circle implementation
// up to the difference in earth radius.
func TestAgreesWithGolangGeo(t *testing.T) {
	pairs := [][4]float64{
		{45.527517, -122.718766, 45.373373, -121.693604},
		{48.539856, 9.059166, 48.1173, 11.522066},
		{-37.86083, 145.12266, -33.8688, 151.2093},
	}
	for _, p := range pairs {
		a, b := geo.NewPoint(p[0], p[1]), geo.NewPoint(p[2], p[3])

		want := a.GreatCircleDistance(b) * EarthRadiusKm / geo.EARTH_RADIUS
		assert.InDelta(t, want, Distance(p[0], p[1], p[2], p[3]), 1e-6)

		bearing := math.Mod(a.BearingTo(b)+360, 360)
		assert.InDelta(t, bearing, Heading(p[0], p[1], p[2], p[3]), 1e-6)
	}
}
