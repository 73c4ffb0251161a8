package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appgeo "github.com/openintel/casegraph/internal/application/geo"
	"github.com/openintel/casegraph/internal/application/intel"
	"github.com/openintel/casegraph/internal/config"
	"github.com/openintel/casegraph/internal/domain/casefile"
	httpapi "github.com/openintel/casegraph/internal/interfaces/http"
	geotypes "github.com/openintel/casegraph/pkg/types/geo"
	inteltypes "github.com/openintel/casegraph/pkg/types/intel"
)

var baseTime = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

// fixtureStore builds three cases: two burglaries two kilometers apart with
// a shared suspect, and one distant assault by the same suspect.
func fixtureStore() *memoryStore {
	store := newMemoryStore()
	store.persons["p-1"] = casefile.Person{ID: "p-1", Name: "Dana Reyes"}
	store.persons["p-2"] = casefile.Person{ID: "p-2", Name: "Kim Okafor"}

	// 2 km due north of (40, -74).
	northLat := 40.0 + (2.0/6371.0)*(180.0/3.141592653589793)

	store.addCase(
		casefile.Case{ID: "case-1", PrimaryIncidentID: "i-1", Status: casefile.StatusPending, CreatedAt: baseTime},
		casefile.Incident{ID: "i-1", OccurredAt: baseTime, Location: &casefile.Point{Lat: 40.0, Lng: -74.0}},
		[]string{"burglary", "night"},
		"p-1",
	)
	store.addCase(
		casefile.Case{ID: "case-2", PrimaryIncidentID: "i-2", Status: casefile.StatusPending, CreatedAt: baseTime.Add(time.Hour)},
		casefile.Incident{ID: "i-2", OccurredAt: baseTime, Location: &casefile.Point{Lat: northLat, Lng: -74.0}},
		[]string{"burglary", "night"},
		"p-1", "p-2",
	)
	store.addCase(
		casefile.Case{ID: "case-3", PrimaryIncidentID: "i-3", Status: casefile.StatusUnderInvestigation, CreatedAt: baseTime.Add(2 * time.Hour)},
		casefile.Incident{ID: "i-3", OccurredAt: baseTime.Add(24 * time.Hour), Location: &casefile.Point{Lat: 41.0, Lng: -74.0}},
		[]string{"assault"},
		"p-1",
	)
	return store
}

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	store := fixtureStore()
	return httpapi.NewRouter(httpapi.RouterConfig{
		IntelService: intel.NewService(store, cfg.Intel, nil, nil, nil),
		GeoService:   appgeo.NewService(store, cfg.Geo, nil, nil),
		Mode:         "test",
	})
}

func get(t *testing.T, api http.Handler, target string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestRelatedCasesFlow(t *testing.T) {
	api := newTestAPI(t)

	var result inteltypes.RelatedCasesResult
	rec := get(t, api, "/api/v1/cases/case-1/related", &result)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "case-1", result.ReferenceCaseID)
	require.Len(t, result.Results, 1)

	related := result.Results[0]
	assert.Equal(t, "case-2", related.CaseID)
	assert.InDelta(t, 12.2, related.Score, 0.01)
	assert.InDelta(t, 2.0, related.DistanceKM, 0.01)
	assert.Equal(t, 2, related.TagOverlapCount)
	assert.Equal(t, 1, related.SuspectOverlapCount)
	assert.Equal(t, []string{"burglary", "night"}, related.SharedTags)
}

func TestRelatedCasesUnknownCase(t *testing.T) {
	api := newTestAPI(t)

	rec := get(t, api, "/api/v1/cases/nope/related", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTEL_001")
}

func TestRepeatOffendersFlow(t *testing.T) {
	api := newTestAPI(t)

	var result inteltypes.RepeatOffendersResult
	rec := get(t, api, "/api/v1/offenders/repeat", &result)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "p-1", result.Results[0].PersonID)
	assert.Equal(t, "Dana Reyes", result.Results[0].Name)
	assert.Equal(t, 3, result.Results[0].CaseCount)
	assert.Equal(t, 1, result.Results[0].PatternMatchCount)
	assert.True(t, result.Results[0].LastSeenDate.Equal(baseTime.Add(24*time.Hour)))
}

func TestRiskScoreFlow(t *testing.T) {
	api := newTestAPI(t)

	var result inteltypes.RiskScoreResult
	rec := get(t, api, "/api/v1/persons/p-1/risk-score", &result)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", result.PersonID)
	assert.Equal(t, inteltypes.RiskHigh, result.RiskLevel)
	assert.InDelta(t, 15.13, result.RiskScore, 0.01)

	assert.Equal(t, 3, result.Breakdown.RepeatOffenseCount)
	assert.Equal(t, 1, result.Breakdown.ViolentTagFrequency)
	assert.InDelta(t, 0.667, result.Breakdown.PatternConsistency, 0.001)
	assert.InDelta(t, 0.4, result.Breakdown.ProximityFactor, 0.001)
}

func TestHeatmapFlow(t *testing.T) {
	api := newTestAPI(t)

	var result geotypes.HeatmapResult
	rec := get(t, api, "/api/v1/geo/heatmap?min_lat=39.99&min_lng=-74.01&max_lat=40.03&max_lng=-73.99&cell_size_meters=500", &result)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, result.TotalIncidents)

	sum := 0
	for _, cell := range result.Cells {
		assert.Positive(t, cell.IncidentCount)
		// Both occupied cells hold one incident each, tying the maximum, so
		// the wire density matches the exported HIGH constant.
		assert.Equal(t, geotypes.DensityHigh, cell.Density)
		sum += cell.IncidentCount
	}
	assert.Equal(t, result.TotalIncidents, sum)
}

func TestClustersFlow(t *testing.T) {
	api := newTestAPI(t)

	var result geotypes.ClusterResult
	rec := get(t, api, "/api/v1/geo/clusters?radius_meters=2500&min_points=2", &result)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, result.Clusters, 1)
	assert.Equal(t, 1, result.Clusters[0].ClusterID)
	assert.Equal(t, 2, result.Clusters[0].IncidentCount)
	assert.InDelta(t, -74.0, result.Clusters[0].Centroid.Lng, 0.0001)
}

func TestPatternCorrelationFlow(t *testing.T) {
	api := newTestAPI(t)

	var result inteltypes.PatternCorrelationResult
	rec := get(t, api, "/api/v1/patterns/correlation?min_occurrence=2", &result)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, result.TagCorrelations, 1)
	assert.Equal(t, []string{"burglary", "night"}, result.TagCorrelations[0].TagCombination)
	assert.Equal(t, 2, result.TagCorrelations[0].OccurrenceCount)
}
