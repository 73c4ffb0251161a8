package geo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openintel/casegraph/internal/config"
	"github.com/openintel/casegraph/internal/domain/casefile"
	domgeo "github.com/openintel/casegraph/internal/domain/geo"
	"github.com/openintel/casegraph/pkg/errors"
)

type MockIncidentReader struct {
	mock.Mock
}

func (m *MockIncidentReader) FindIncidentPoints(ctx context.Context, q casefile.IncidentQuery) ([]casefile.IncidentPoint, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.IncidentPoint), args.Error(1)
}

func testGeoConfig() config.GeoConfig {
	return config.GeoConfig{
		DefaultCellSizeMeters: 250,
		MaxGridCells:          100,
		ClusterRadiusMeters:   500,
		ClusterMinPoints:      3,
	}
}

func newTestService(store casefile.IncidentReader) Service {
	return NewService(store, testGeoConfig(), nil, nil)
}

func TestBuildHeatmapCornerCluster(t *testing.T) {
	store := new(MockIncidentReader)
	svc := newTestService(store)

	// Roughly 1.1 km square on the equator; 250 m cells give a 4x4 grid.
	bounds := domgeo.Bounds{MinLat: 0, MinLng: 0, MaxLat: 0.01, MaxLng: 0.01}
	store.On("FindIncidentPoints", mock.Anything, mock.Anything).Return([]casefile.IncidentPoint{
		{IncidentID: "i-1", Lat: 0.0005, Lng: 0.0005},
		{IncidentID: "i-2", Lat: 0.0010, Lng: 0.0010},
		{IncidentID: "i-3", Lat: 0.0015, Lng: 0.0008},
	}, nil)

	result, err := svc.BuildHeatmap(context.Background(), HeatmapInput{Bounds: bounds})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 4, result.Cols)
	assert.Equal(t, 3, result.TotalIncidents)

	// All three incidents share the corner cell; empty cells are omitted.
	require.Len(t, result.Cells, 1)
	cell := result.Cells[0]
	assert.Equal(t, 3, cell.IncidentCount)
	assert.Equal(t, string(domgeo.DensityHigh), cell.Density)
	assert.Equal(t, 0.0, cell.MinLat)
	assert.Equal(t, 0.0, cell.MinLng)
	store.AssertExpectations(t)
}

func TestBuildHeatmapCountsConserveOnCellEdges(t *testing.T) {
	store := new(MockIncidentReader)
	svc := newTestService(store)

	bounds := domgeo.Bounds{MinLat: 0, MinLng: 0, MaxLat: 0.01, MaxLng: 0.01}
	// Exactly on the edge shared by two cell rows.
	edgeLat := 2 * 250.0 / 111000.0
	store.On("FindIncidentPoints", mock.Anything, mock.Anything).Return([]casefile.IncidentPoint{
		{IncidentID: "i-1", Lat: edgeLat, Lng: 0.001},
		{IncidentID: "i-2", Lat: 0.004, Lng: 0.004},
	}, nil)

	result, err := svc.BuildHeatmap(context.Background(), HeatmapInput{Bounds: bounds})
	require.NoError(t, err)

	sum := 0
	for _, c := range result.Cells {
		sum += c.IncidentCount
	}
	assert.Equal(t, 2, result.TotalIncidents)
	assert.Equal(t, result.TotalIncidents, sum)
}

func TestBuildHeatmapHonorsConfiguredGridCap(t *testing.T) {
	store := new(MockIncidentReader)
	cfg := testGeoConfig()
	cfg.MaxGridCells = 4
	svc := NewService(store, cfg, nil, nil)

	store.On("FindIncidentPoints", mock.Anything, mock.Anything).Return([]casefile.IncidentPoint{}, nil)

	// The same box yields a 4x4 grid under the default cap; a cap of 4
	// forces a coarser layout.
	bounds := domgeo.Bounds{MinLat: 0, MinLng: 0, MaxLat: 0.01, MaxLng: 0.01}
	result, err := svc.BuildHeatmap(context.Background(), HeatmapInput{Bounds: bounds})
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Rows*result.Cols, 4)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.Cols)
}

func TestBuildHeatmapPassesFilters(t *testing.T) {
	store := new(MockIncidentReader)
	svc := newTestService(store)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	bounds := domgeo.Bounds{MinLat: 10, MinLng: 20, MaxLat: 11, MaxLng: 21}

	store.On("FindIncidentPoints", mock.Anything, mock.MatchedBy(func(q casefile.IncidentQuery) bool {
		return q.MinLat != nil && *q.MinLat == 10 &&
			q.MaxLng != nil && *q.MaxLng == 21 &&
			q.From != nil && q.From.Equal(from) &&
			len(q.Tags) == 1 && q.Tags[0] == "burglary"
	})).Return([]casefile.IncidentPoint{}, nil)

	_, err := svc.BuildHeatmap(context.Background(), HeatmapInput{
		Bounds: bounds,
		From:   &from,
		To:     &to,
		Tags:   []string{"burglary"},
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestBuildHeatmapValidation(t *testing.T) {
	store := new(MockIncidentReader)
	svc := newTestService(store)

	good := domgeo.Bounds{MinLat: 0, MinLng: 0, MaxLat: 1, MaxLng: 1}
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, -1, 0)

	tests := []struct {
		name string
		in   HeatmapInput
		code errors.ErrorCode
	}{
		{"inverted bounds", HeatmapInput{Bounds: domgeo.Bounds{MinLat: 1, MinLng: 0, MaxLat: 0, MaxLng: 1}}, errors.ErrCodeInvalidBounds},
		{"latitude out of range", HeatmapInput{Bounds: domgeo.Bounds{MinLat: -91, MinLng: 0, MaxLat: 0, MaxLng: 1}}, errors.ErrCodeInvalidBounds},
		{"negative cell size", HeatmapInput{Bounds: good, CellSizeMeters: -100}, errors.ErrCodeInvalidCellSize},
		{"inverted date range", HeatmapInput{Bounds: good, From: &from, To: &to}, errors.ErrCodeInvalidDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.BuildHeatmap(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code))
		})
	}
	store.AssertNotCalled(t, "FindIncidentPoints", mock.Anything, mock.Anything)
}

func TestDetectClusters(t *testing.T) {
	store := new(MockIncidentReader)
	svc := newTestService(store)

	// Three points within ~150 m of each other and one far away.
	store.On("FindIncidentPoints", mock.Anything, mock.Anything).Return([]casefile.IncidentPoint{
		{IncidentID: "i-1", Lat: 40.0000, Lng: -74.0000},
		{IncidentID: "i-2", Lat: 40.0010, Lng: -74.0000},
		{IncidentID: "i-3", Lat: 40.0000, Lng: -74.0010},
		{IncidentID: "i-4", Lat: 41.0000, Lng: -74.0000},
	}, nil)

	result, err := svc.DetectClusters(context.Background(), ClusterInput{RadiusMeters: 500, MinPoints: 3})
	require.NoError(t, err)

	assert.Equal(t, 500.0, result.RadiusMeters)
	assert.Equal(t, 3, result.MinPoints)
	require.Len(t, result.Clusters, 1)

	c := result.Clusters[0]
	assert.Equal(t, 1, c.ClusterID)
	assert.Equal(t, 3, c.IncidentCount)
	assert.InDelta(t, 40.000333, c.Centroid.Lat, 1e-6)
	assert.InDelta(t, -74.000333, c.Centroid.Lng, 1e-6)
	store.AssertExpectations(t)
}

func TestDetectClustersDefaults(t *testing.T) {
	store := new(MockIncidentReader)
	svc := newTestService(store)

	store.On("FindIncidentPoints", mock.Anything, mock.Anything).Return([]casefile.IncidentPoint{}, nil)

	result, err := svc.DetectClusters(context.Background(), ClusterInput{})
	require.NoError(t, err)
	assert.Equal(t, 500.0, result.RadiusMeters)
	assert.Equal(t, 3, result.MinPoints)
	assert.Empty(t, result.Clusters)
}

func TestDetectClustersValidation(t *testing.T) {
	store := new(MockIncidentReader)
	svc := newTestService(store)

	tests := []struct {
		name string
		in   ClusterInput
	}{
		{"negative radius", ClusterInput{RadiusMeters: -5, MinPoints: 3}},
		{"min points below two", ClusterInput{RadiusMeters: 500, MinPoints: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DetectClusters(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidClusterSpec))
		})
	}
	store.AssertNotCalled(t, "FindIncidentPoints", mock.Anything, mock.Anything)
}
