package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	geotypes "github.com/openintel/casegraph/pkg/types/geo"
)

// GeoClient calls the geospatial endpoints.
type GeoClient struct {
	client *Client
}

// HeatmapOptions parameterise heatmap generation. Bounds are required; the
// rest are optional and default server-side.
type HeatmapOptions struct {
	Bounds         geotypes.Bounds
	CellSizeMeters float64
	From           *time.Time
	To             *time.Time
	Tags           []string
}

// Heatmap builds an incident density grid over the bounding box.
func (gc *GeoClient) Heatmap(ctx context.Context, opts HeatmapOptions) (*geotypes.HeatmapResult, error) {
	query := url.Values{}
	query.Set("min_lat", formatFloat(opts.Bounds.MinLat))
	query.Set("min_lng", formatFloat(opts.Bounds.MinLng))
	query.Set("max_lat", formatFloat(opts.Bounds.MaxLat))
	query.Set("max_lng", formatFloat(opts.Bounds.MaxLng))
	if opts.CellSizeMeters != 0 {
		query.Set("cell_size_meters", formatFloat(opts.CellSizeMeters))
	}
	if opts.From != nil {
		query.Set("from_date", opts.From.Format(time.RFC3339))
	}
	if opts.To != nil {
		query.Set("to_date", opts.To.Format(time.RFC3339))
	}
	if len(opts.Tags) > 0 {
		query.Set("tags", strings.Join(opts.Tags, ","))
	}

	var result geotypes.HeatmapResult
	if err := gc.client.get(ctx, "/api/v1/geo/heatmap", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClusterOptions parameterise cluster detection. Zero values default
// server-side.
type ClusterOptions struct {
	RadiusMeters float64
	MinPoints    int
	From         *time.Time
	To           *time.Time
	Tags         []string
}

// Clusters detects incident hotspots by radius clustering.
func (gc *GeoClient) Clusters(ctx context.Context, opts ClusterOptions) (*geotypes.ClusterResult, error) {
	query := url.Values{}
	if opts.RadiusMeters != 0 {
		query.Set("radius_meters", formatFloat(opts.RadiusMeters))
	}
	if opts.MinPoints != 0 {
		query.Set("min_points", strconv.Itoa(opts.MinPoints))
	}
	if opts.From != nil {
		query.Set("from_date", opts.From.Format(time.RFC3339))
	}
	if opts.To != nil {
		query.Set("to_date", opts.To.Format(time.RFC3339))
	}
	if len(opts.Tags) > 0 {
		query.Set("tags", strings.Join(opts.Tags, ","))
	}

	var result geotypes.ClusterResult
	if err := gc.client.get(ctx, "/api/v1/geo/clusters", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
