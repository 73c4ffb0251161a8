package geo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openintel/casegraph/internal/domain/scoring"
)

// near offsets a base point by roughly the given meters in latitude.
func near(id string, baseLat, baseLng, meters float64) Point {
	return Point{ID: id, Lat: baseLat + meters/111000.0, Lng: baseLng}
}

func TestDetectClustersBasic(t *testing.T) {
	base := Point{ID: "a", Lat: 40.75, Lng: -73.99}
	points := []Point{
		base,
		near("b", base.Lat, base.Lng, 50),
		near("c", base.Lat, base.Lng, 100),
		// A lone point far away.
		{ID: "d", Lat: 41.5, Lng: -72.0},
	}

	clusters := DetectClusters(points, 500, 3)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 3)
}

func TestDetectClustersMinPoints(t *testing.T) {
	base := Point{ID: "a", Lat: 40.75, Lng: -73.99}
	points := []Point{base, near("b", base.Lat, base.Lng, 50)}

	assert.Empty(t, DetectClusters(points, 500, 3))
	assert.Len(t, DetectClusters(points, 500, 2), 1)
}

func TestDetectClustersNoClusterBelowMinimum(t *testing.T) {
	// Property: no returned cluster has fewer than minPoints members, and
	// every member lies within radius of at least one other member.
	var points []Point
	for i := 0; i < 12; i++ {
		points = append(points, near(fmt.Sprintf("p%d", i), 40.0+float64(i/4)*0.1, -74.0, float64(i%4)*80))
	}

	radius := 500.0
	minPoints := 3
	for _, cluster := range DetectClusters(points, radius, minPoints) {
		assert.GreaterOrEqual(t, len(cluster.Members), minPoints)
		for i, m := range cluster.Members {
			closeToAnother := false
			for j, other := range cluster.Members {
				if i == j {
					continue
				}
				if scoring.HaversineMeters(m.Lng, m.Lat, other.Lng, other.Lat) <= radius {
					closeToAnother = true
					break
				}
			}
			assert.True(t, closeToAnother, "member %s has no neighbour in radius", m.ID)
		}
	}
}

func TestDetectClustersCentroid(t *testing.T) {
	points := []Point{
		{ID: "a", Lat: 10.0, Lng: 20.0},
		{ID: "b", Lat: 10.002, Lng: 20.0},
		{ID: "c", Lat: 10.001, Lng: 20.002},
	}
	clusters := DetectClusters(points, 1000, 3)
	require.Len(t, clusters, 1)
	assert.InDelta(t, 10.001, clusters[0].CentroidLat, 1e-9)
	assert.InDelta(t, 20.000666666, clusters[0].CentroidLng, 1e-6)
}

func TestDetectClustersRejectedSeedConsumesNeighbours(t *testing.T) {
	// Seed "a" gathers only "b" and fails minPoints=3; "b" stays consumed.
	// "c" then seeds with "d" and "e" forming the only cluster. This
	// order-dependent behaviour is the defined tie-break.
	base := 40.0
	points := []Point{
		{ID: "a", Lat: base, Lng: -74.0},
		near("b", base, -74.0, 100),
		{ID: "c", Lat: base + 0.1, Lng: -74.0},
		near("d", base+0.1, -74.0, 100),
		near("e", base+0.1, -74.0, 200),
	}

	clusters := DetectClusters(points, 500, 3)
	require.Len(t, clusters, 1)

	ids := make([]string, 0, 3)
	for _, m := range clusters[0].Members {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"c", "d", "e"}, ids)
}

func TestDetectClustersConsumedNeighbourStaysUnclustered(t *testing.T) {
	// "b" is consumed by rejected seed "a" and is skipped by the later
	// cluster around "c" even though it lies within radius of it.
	points := []Point{
		{ID: "a", Lat: 40.0, Lng: -74.0},
		near("b", 40.0, -74.0, 450),
		near("c", 40.0, -74.0, 900),
		near("d", 40.0, -74.0, 1000),
		near("e", 40.0, -74.0, 800),
	}

	clusters := DetectClusters(points, 500, 3)
	require.Len(t, clusters, 1)

	ids := make([]string, 0, 3)
	for _, m := range clusters[0].Members {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"c", "d", "e"}, ids)
}

func TestDetectClustersEmptyInput(t *testing.T) {
	assert.Empty(t, DetectClusters(nil, 500, 3))
}
