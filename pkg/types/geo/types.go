// Package geo defines the wire types returned by the geospatial endpoints,
// shared by the HTTP API and the Go SDK.
package geo

// Density bands reported per heatmap cell.
const (
	DensityNone   = "NONE"
	DensityLow    = "LOW"
	DensityMedium = "MEDIUM"
	DensityHigh   = "HIGH"
)

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// HeatmapCell is one occupied grid cell.
type HeatmapCell struct {
	MinLat        float64 `json:"min_lat"`
	MinLng        float64 `json:"min_lng"`
	MaxLat        float64 `json:"max_lat"`
	MaxLng        float64 `json:"max_lng"`
	CenterLat     float64 `json:"center_lat"`
	CenterLng     float64 `json:"center_lng"`
	IncidentCount int     `json:"incident_count"`
	Density       string  `json:"density"`
}

// HeatmapResult is the heatmap report.
type HeatmapResult struct {
	Bounds         Bounds        `json:"bounds"`
	CellSizeMeters float64       `json:"cell_size_meters"`
	Rows           int           `json:"rows"`
	Cols           int           `json:"cols"`
	TotalIncidents int           `json:"total_incidents"`
	Cells          []HeatmapCell `json:"cells"`
}

// ClusterCentroid is the arithmetic mean of a cluster's member coordinates.
type ClusterCentroid struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DetectedCluster is one committed cluster.
type DetectedCluster struct {
	ClusterID     int             `json:"cluster_id"`
	IncidentCount int             `json:"incident_count"`
	Centroid      ClusterCentroid `json:"centroid"`
}

// ClusterResult is the cluster detection report.
type ClusterResult struct {
	RadiusMeters float64           `json:"radius_meters"`
	MinPoints    int               `json:"min_points"`
	Clusters     []DetectedCluster `json:"clusters"`
}
