package geo

import (
	"testing"

	"github.com/grocerease/grocerease-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_Identity(t *testing.T) {
	assert.Zero(t, DistanceKm(28.6, 77.2, 28.6, 77.2))
}

func TestDistanceKm_Symmetry(t *testing.T) {
	d1 := DistanceKm(28.6, 77.2, 28.7, 77.1)
	d2 := DistanceKm(28.7, 77.1, 28.6, 77.2)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// New Delhi to Mumbai, roughly 1150 km great-circle.
	d := DistanceKm(28.6139, 77.2090, 19.0760, 72.8777)
	assert.InDelta(t, 1150, d, 20)
}

func TestETAMinutes_RoundsUp(t *testing.T) {
	// 2.5 km at 20 km/h is 7.5 minutes, displayed as 8.
	assert.Equal(t, 8.0, ETAMinutes(2.5, 20))
	assert.Equal(t, 0.0, ETAMinutes(0, 20))
}

func TestETAMinutes_MonotoneInDistance(t *testing.T) {
	prev := 0.0
	for d := 0.0; d < 30; d += 0.7 {
		eta := ETAMinutes(d, 20)
		assert.GreaterOrEqual(t, eta, prev, "distance %f", d)
		prev = eta
	}
}

func TestETAMinutes_ZeroSpeed(t *testing.T) {
	assert.Zero(t, ETAMinutes(10, 0))
}

func TestRankShops_SortsAscending(t *testing.T) {
	shops := []*models.Shop{
		{ID: "far", Latitude: 29.0, Longitude: 77.8},
		{ID: "near", Latitude: 28.61, Longitude: 77.21},
		{ID: "mid", Latitude: 28.8, Longitude: 77.4},
	}

	ranked := RankShops(shops, &Point{Lat: 28.6, Lng: 77.2})
	require.Len(t, ranked, 3)

	assert.Equal(t, "near", ranked[0].ID)
	assert.Equal(t, "mid", ranked[1].ID)
	assert.Equal(t, "far", ranked[2].ID)
	for _, r := range ranked {
		require.NotNil(t, r.DistanceKm)
	}
}

func TestRankShops_NoReferencePoint(t *testing.T) {
	shops := []*models.Shop{
		{ID: "b", Latitude: 29.0, Longitude: 77.8},
		{ID: "a", Latitude: 28.61, Longitude: 77.21},
	}

	ranked := RankShops(shops, nil)
	require.Len(t, ranked, 2)

	// Input order preserved, no distance badge.
	assert.Equal(t, "b", ranked[0].ID)
	assert.Equal(t, "a", ranked[1].ID)
	assert.Nil(t, ranked[0].DistanceKm)
	assert.Nil(t, ranked[1].DistanceKm)
}
