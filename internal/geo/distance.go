// Package geo contains pure geographic helpers.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between two
// points given in decimal degrees, using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a fraction of an ulp past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))

	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// ValidCoordinates reports whether lat/lon are finite and inside the
// valid latitude/longitude ranges.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
