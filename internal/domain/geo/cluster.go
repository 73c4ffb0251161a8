package geo

import "github.com/openintel/casegraph/internal/domain/scoring"

// Point is a geo-point with its source identifier.
type Point struct {
	ID  string
	Lat float64
	Lng float64
}

// Cluster is a committed group of points and its centroid (arithmetic mean
// of member coordinates).
type Cluster struct {
	Members     []Point
	CentroidLat float64
	CentroidLng float64
}

// DetectClusters groups points by greedy radius expansion. The scan is
// single-pass and order-dependent: input iteration order is the defined
// tie-break, not nondeterminism.
//
// Each unassigned point seeds a candidate group; every other unassigned
// point within radiusMeters joins the group and is marked assigned during
// the scan. The group commits as a cluster only when it reaches minPoints,
// at which point the seed is assigned too; a rejected seed stays unassigned
// and may still join a later seed's group, but its scanned neighbours stay
// consumed. This mirrors the historic behaviour exactly; upgrading to
// canonical DBSCAN core-point propagation would change cluster membership
// and counts.
//
// O(n²); callers pre-filter by date/tag/bbox to keep the input bounded.
func DetectClusters(points []Point, radiusMeters float64, minPoints int) []Cluster {
	assigned := make(map[string]struct{}, len(points))
	var clusters []Cluster

	for _, seed := range points {
		if _, ok := assigned[seed.ID]; ok {
			continue
		}

		members := []Point{seed}
		for _, other := range points {
			if other.ID == seed.ID {
				continue
			}
			if _, ok := assigned[other.ID]; ok {
				continue
			}
			d := scoring.HaversineMeters(seed.Lng, seed.Lat, other.Lng, other.Lat)
			if d <= radiusMeters {
				members = append(members, other)
				assigned[other.ID] = struct{}{}
			}
		}

		if len(members) >= minPoints {
			assigned[seed.ID] = struct{}{}
			clusters = append(clusters, newCluster(members))
		}
	}
	return clusters
}

func newCluster(members []Point) Cluster {
	var sumLat, sumLng float64
	for _, m := range members {
		sumLat += m.Lat
		sumLng += m.Lng
	}
	n := float64(len(members))
	return Cluster{
		Members:     members,
		CentroidLat: sumLat / n,
		CentroidLng: sumLng / n,
	}
}
