// Package geo builds the geospatial reports: incident heatmaps over an
// adaptive grid and hotspot detection by radius clustering. It layers the
// stateless spatial primitives over the incident store.
package geo

import (
	"context"
	"time"

	"github.com/openintel/casegraph/internal/config"
	"github.com/openintel/casegraph/internal/domain/casefile"
	domgeo "github.com/openintel/casegraph/internal/domain/geo"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
	"github.com/openintel/casegraph/pkg/errors"
)

// Service is the application-level contract for geospatial reporting.
type Service interface {
	BuildHeatmap(ctx context.Context, in HeatmapInput) (*HeatmapResult, error)
	DetectClusters(ctx context.Context, in ClusterInput) (*ClusterResult, error)
}

// HeatmapInput parameterises heatmap generation. Zero CellSizeMeters takes
// the configured default; nil date endpoints are open; empty Tags matches
// all incidents.
type HeatmapInput struct {
	Bounds         domgeo.Bounds
	CellSizeMeters float64
	From           *time.Time
	To             *time.Time
	Tags           []string
}

// HeatmapCell is one occupied grid cell. Cells without incidents are
// omitted from the report.
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

// HeatmapResult is the heatmap report. TotalIncidents always equals the sum
// of the cell counts.
type HeatmapResult struct {
	Bounds         domgeo.Bounds `json:"bounds"`
	CellSizeMeters float64       `json:"cell_size_meters"`
	Rows           int           `json:"rows"`
	Cols           int           `json:"cols"`
	TotalIncidents int           `json:"total_incidents"`
	Cells          []HeatmapCell `json:"cells"`
}

// ClusterInput parameterises cluster detection. Zero RadiusMeters and
// MinPoints take the configured defaults.
type ClusterInput struct {
	RadiusMeters float64
	MinPoints    int
	From         *time.Time
	To           *time.Time
	Tags         []string
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

type serviceImpl struct {
	store   casefile.IncidentReader
	cfg     config.GeoConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewService constructs the geospatial Service. metrics may be nil.
func NewService(store casefile.IncidentReader, cfg config.GeoConfig, logger logging.Logger, metrics *prometheus.AppMetrics) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		store:   store,
		cfg:     cfg,
		logger:  logger.Named("geo"),
		metrics: metrics,
	}
}

// BuildHeatmap counts incidents per grid cell inside the bounding box. Each
// incident lands in exactly the first cell that contains it, scanning the
// grid row-major, so boundary points on shared cell edges are counted once
// and the cell counts always sum to the incident total.
func (s *serviceImpl) BuildHeatmap(ctx context.Context, in HeatmapInput) (*HeatmapResult, error) {
	start := time.Now()

	if err := in.Bounds.Validate(); err != nil {
		return nil, err
	}
	cellSize := in.CellSizeMeters
	if cellSize == 0 {
		cellSize = s.cfg.DefaultCellSizeMeters
	}
	if cellSize <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidCellSize, "").WithDetailf("cell_size_meters %g must be > 0", in.CellSizeMeters)
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, errors.New(errors.ErrCodeInvalidDateRange, "").WithDetail("from_date is after to_date")
	}

	points, err := s.store.FindIncidentPoints(ctx, casefile.IncidentQuery{
		MinLat: &in.Bounds.MinLat,
		MinLng: &in.Bounds.MinLng,
		MaxLat: &in.Bounds.MaxLat,
		MaxLng: &in.Bounds.MaxLng,
		From:   in.From,
		To:     in.To,
		Tags:   in.Tags,
	})
	if err != nil {
		return nil, err
	}

	cells := domgeo.BuildCells(in.Bounds, cellSize, s.cfg.MaxGridCells)
	rows, cols, _, _ := domgeo.GridDimensions(in.Bounds, cellSize, s.cfg.MaxGridCells)

	counts := make([]int, len(cells))
	total := 0
	maxCount := 0
	for _, p := range points {
		for i, cell := range cells {
			if cell.Contains(p.Lat, p.Lng) {
				counts[i]++
				total++
				if counts[i] > maxCount {
					maxCount = counts[i]
				}
				break
			}
		}
	}

	result := &HeatmapResult{
		Bounds:         in.Bounds,
		CellSizeMeters: cellSize,
		Rows:           rows,
		Cols:           cols,
		TotalIncidents: total,
		Cells:          []HeatmapCell{},
	}
	for i, cell := range cells {
		if counts[i] == 0 {
			continue
		}
		result.Cells = append(result.Cells, HeatmapCell{
			MinLat:        cell.MinLat,
			MinLng:        cell.MinLng,
			MaxLat:        cell.MaxLat,
			MaxLng:        cell.MaxLng,
			CenterLat:     cell.CenterLat,
			CenterLng:     cell.CenterLng,
			IncidentCount: counts[i],
			Density:       string(domgeo.Density(counts[i], maxCount)),
		})
	}

	if s.metrics != nil {
		s.metrics.HeatmapDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		s.metrics.HeatmapCellCount.WithLabelValues().Observe(float64(len(cells)))
	}
	s.logger.Debug("heatmap built",
		logging.Int("grid_cells", len(cells)),
		logging.Int("occupied_cells", len(result.Cells)),
		logging.Int("incidents", total),
	)
	return result, nil
}

// DetectClusters runs greedy radius clustering over the filtered incident
// points and reports each cluster's size and centroid.
func (s *serviceImpl) DetectClusters(ctx context.Context, in ClusterInput) (result *ClusterResult, err error) {
	defer func() {
		if s.metrics == nil {
			return
		}
		status := "success"
		if err != nil {
			status = "failure"
		}
		s.metrics.ClusterRunsTotal.WithLabelValues(status).Inc()
		if result != nil {
			s.metrics.ClustersFound.WithLabelValues().Observe(float64(len(result.Clusters)))
		}
	}()

	radius := in.RadiusMeters
	if radius == 0 {
		radius = s.cfg.ClusterRadiusMeters
	}
	minPoints := in.MinPoints
	if minPoints == 0 {
		minPoints = s.cfg.ClusterMinPoints
	}
	if radius <= 0 || minPoints < 2 {
		return nil, errors.New(errors.ErrCodeInvalidClusterSpec, "").
			WithDetailf("radius_meters %g must be > 0 and min_points %d must be >= 2", radius, minPoints)
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, errors.New(errors.ErrCodeInvalidDateRange, "").WithDetail("from_date is after to_date")
	}

	points, err := s.store.FindIncidentPoints(ctx, casefile.IncidentQuery{
		From: in.From,
		To:   in.To,
		Tags: in.Tags,
	})
	if err != nil {
		return nil, err
	}

	geoPoints := make([]domgeo.Point, 0, len(points))
	for _, p := range points {
		geoPoints = append(geoPoints, domgeo.Point{ID: p.IncidentID, Lat: p.Lat, Lng: p.Lng})
	}
	clusters := domgeo.DetectClusters(geoPoints, radius, minPoints)

	result = &ClusterResult{
		RadiusMeters: radius,
		MinPoints:    minPoints,
		Clusters:     []DetectedCluster{},
	}
	for i, c := range clusters {
		result.Clusters = append(result.Clusters, DetectedCluster{
			ClusterID:     i + 1,
			IncidentCount: len(c.Members),
			Centroid:      ClusterCentroid{Lat: c.CentroidLat, Lng: c.CentroidLng},
		})
	}

	s.logger.Debug("clusters detected",
		logging.Int("points", len(points)),
		logging.Int("clusters", len(result.Clusters)),
	)
	return result, nil
}
