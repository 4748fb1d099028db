// Package geo implements the great-circle distance computation and the
// nearby-user filter backing discovery.
package geo

import (
	"math"
	"time"

	"github.com/dmitrijs2005/localdate/internal/models"
)

const (
	// EarthRadiusKm is the radius used by the Haversine formula.
	EarthRadiusKm = 6371

	// DefaultRadiusKm is the discovery radius when none is configured.
	DefaultRadiusKm = 10

	// DefaultStaleness is the maximum age of a position fix before it is
	// excluded from discovery.
	DefaultStaleness = 5 * time.Minute
)

func toRad(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// Distance returns the great-circle distance in kilometers between two
// points given in degrees, via the Haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Nearby filters users to those with a fresh position fix within radiusKm of
// the origin. Users with no location, or with a fix older than staleness
// relative to now, are excluded regardless of distance. Input order is
// preserved; no additional ordering is imposed.
func Nearby(users []models.User, latitude, longitude, radiusKm float64, staleness time.Duration, now time.Time) []models.User {
	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Location == nil {
			continue
		}
		if now.Sub(u.Location.LastUpdated) > staleness {
			continue
		}
		d := Distance(latitude, longitude, u.Location.Latitude, u.Location.Longitude)
		if d <= radiusKm {
			result = append(result, u)
		}
	}
	return result
}
