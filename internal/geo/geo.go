package geo

import (
	"errors"
	"fmt"
	"math"
)

// mean radius of the earth in km
const EarthRadiusKm = 6371.0

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Fence is the allowed circle around a work site.
type Fence struct {
	Name     string
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Pow(math.Sin(dLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func IsWithinRadius(userLat, userLon, siteLat, siteLon, radiusKm float64) bool {
	return DistanceKm(userLat, userLon, siteLat, siteLon) <= radiusKm
}

// ValidateCoordinate rejects NaN, infinities and out of range values.
func ValidateCoordinate(lat, lon float64) error {
	switch {
	case math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90:
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, lat)
	case math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180:
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, lon)
	}
	return nil
}

// Check validates the user position and reports whether it sits inside the
// fence along with the computed distance.
func (f Fence) Check(lat, lon float64) (bool, float64, error) {
	if err := ValidateCoordinate(lat, lon); err != nil {
		return false, 0, err
	}

	d := DistanceKm(lat, lon, f.Lat, f.Lon)

	return d <= f.RadiusKm, d, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
