// Package geo ranks shops by great-circle distance from a customer location
// and estimates delivery time. All functions are pure.
package geo

import (
	"math"
	"sort"

	"github.com/grocerease/grocerease-backend/internal/models"
)

const earthRadiusKm = 6371

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm computes the haversine great-circle distance in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// ETAMinutes converts a distance to a delivery estimate at the given average
// speed, rounded up to the next whole minute for display.
func ETAMinutes(distanceKm, speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return math.Ceil(distanceKm / speedKmh * 60)
}

// RankedShop annotates a shop with its distance from the reference point.
// DistanceKm is nil when no reference point was available.
type RankedShop struct {
	models.Shop
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// RankShops sorts shops ascending by distance from the reference point. A nil
// reference point leaves the input order untouched and attaches no distance.
func RankShops(shops []*models.Shop, ref *Point) []RankedShop {
	ranked := make([]RankedShop, len(shops))
	for i, s := range shops {
		ranked[i] = RankedShop{Shop: *s}
		if ref != nil {
			d := DistanceKm(ref.Lat, ref.Lng, s.Latitude, s.Longitude)
			ranked[i].DistanceKm = &d
		}
	}
	if ref == nil {
		return ranked
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].DistanceKm < *ranked[j].DistanceKm
	})
	return ranked
}
