package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	geotypes "github.com/openintel/casegraph/pkg/types/geo"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)

	_, err = NewClient("ftp://example.com")
	require.Error(t, err)

	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestClientSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "casegraph-go-sdk")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"person_id":"p-1","risk_score":14.5,"risk_level":"HIGH","breakdown":{}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	result, err := c.Intel().RiskScore(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", result.PersonID)
	assert.Equal(t, "HIGH", result.RiskLevel)
	assert.Equal(t, 14.5, result.RiskScore)
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"INTEL_001","message":"case not found","detail":"case missing"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Intel().RelatedCases(context.Background(), "missing", RelatedCasesOptions{})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "INTEL_001", apiErr.Code)
	assert.Equal(t, "case not found", apiErr.Message)
	assert.Equal(t, "case missing", apiErr.Detail)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reference_case_id":"case-1","results":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	result, err := c.Intel().RelatedCases(context.Background(), "case-1", RelatedCasesOptions{})
	require.NoError(t, err)
	assert.Equal(t, "case-1", result.ReferenceCaseID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"COMMON_007","message":"validation failed"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Intel().RiskScore(context.Background(), "p-1")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRelatedCasesQueryEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cases/case-1/related", r.URL.Path)
		assert.Equal(t, "2.5", r.URL.Query().Get("radius_km"))
		assert.Equal(t, "14", r.URL.Query().Get("days_range"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{"reference_case_id": "case-1"}) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Intel().RelatedCases(context.Background(), "case-1", RelatedCasesOptions{
		RadiusKM:  2.5,
		DaysRange: 14,
		Limit:     5,
	})
	require.NoError(t, err)
}

func TestRepeatOffendersQueryEncoding(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/offenders/repeat", r.URL.Path)
		assert.Equal(t, "burglary,night", r.URL.Query().Get("tags"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("from_date"))
		assert.Equal(t, "4", r.URL.Query().Get("min_cases"))
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}}) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Intel().RepeatOffenders(context.Background(), RepeatOffendersOptions{
		Tags:     []string{"burglary", "night"},
		From:     &from,
		MinCases: 4,
	})
	require.NoError(t, err)
}

func TestHeatmapQueryEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/geo/heatmap", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("min_lat"))
		assert.Equal(t, "-74", r.URL.Query().Get("min_lng"))
		assert.Equal(t, "40.1", r.URL.Query().Get("max_lat"))
		assert.Equal(t, "-73.9", r.URL.Query().Get("max_lng"))
		assert.Equal(t, "500", r.URL.Query().Get("cell_size_meters"))
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"rows": 4,
			"cols": 4,
			"cells": []map[string]any{
				{"incident_count": 7, "density": "HIGH"},
				{"incident_count": 1, "density": "LOW"},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	result, err := c.Geo().Heatmap(context.Background(), HeatmapOptions{
		Bounds:         geotypes.Bounds{MinLat: 40, MinLng: -74, MaxLat: 40.1, MaxLng: -73.9},
		CellSizeMeters: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows)

	// The exported density constants match the server's band values.
	require.Len(t, result.Cells, 2)
	assert.Equal(t, geotypes.DensityHigh, result.Cells[0].Density)
	assert.Equal(t, geotypes.DensityLow, result.Cells[1].Density)
}

func TestClustersQueryEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/geo/clusters", r.URL.Path)
		assert.Equal(t, "300", r.URL.Query().Get("radius_meters"))
		assert.Equal(t, "4", r.URL.Query().Get("min_points"))
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"radius_meters": 300,
			"min_points":    4,
			"clusters": []map[string]any{
				{"cluster_id": 1, "incident_count": 5, "centroid": map[string]any{"lat": 40.0, "lng": -74.0}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	result, err := c.Geo().Clusters(context.Background(), ClusterOptions{
		RadiusMeters: 300,
		MinPoints:    4,
	})
	require.NoError(t, err)
	require.Len(t, result.Clusters, 1)
	assert.Equal(t, 5, result.Clusters[0].IncidentCount)
}

func TestContextCancellationStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryWait(time.Minute, time.Minute))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Intel().RiskScore(ctx, "p-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
