// Package intel provides the correlation analyzers: related-case ranking,
// repeat-offender detection, pattern correlation, behavioral similarity,
// and person risk scoring. Analyzers are stateless; each request fetches
// its candidates through the injected data-access contract, scores them
// with the scoring kernel, and returns ranked result records.
package intel

import (
	"context"
	"time"

	"github.com/openintel/casegraph/internal/config"
	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
	"github.com/openintel/casegraph/pkg/errors"
)

// Service is the application-level contract for intelligence analysis.
type Service interface {
	FindRelatedCases(ctx context.Context, in RelatedCasesInput) (*RelatedCasesResult, error)
	FindRepeatOffenders(ctx context.Context, in RepeatOffendersInput) (*RepeatOffendersResult, error)
	AnalyzePatternCorrelation(ctx context.Context, in PatternCorrelationInput) (*PatternCorrelationResult, error)
	FindBehavioralSimilar(ctx context.Context, in BehaviorSimilarityInput) (*BehaviorSimilarityResult, error)
	ScorePersonRisk(ctx context.Context, personID string) (*RiskScoreResult, error)
}

// RelatedCasesInput parameterises the related-case search. Zero values take
// the configured defaults.
type RelatedCasesInput struct {
	CaseID    string
	RadiusKM  float64
	DaysRange int
	Limit     int
}

// RelatedCase is one scored candidate.
type RelatedCase struct {
	CaseID              string   `json:"case_id"`
	Score               float64  `json:"score"`
	DistanceKM          float64  `json:"distance_km"`
	TagOverlapCount     int      `json:"tag_overlap_count"`
	SuspectOverlapCount int      `json:"suspect_overlap_count"`
	SharedTags          []string `json:"shared_tags,omitempty"`
}

// RelatedCasesResult is the ranked related-case response.
type RelatedCasesResult struct {
	ReferenceCaseID string        `json:"reference_case_id"`
	Results         []RelatedCase `json:"results"`
}

// RepeatOffendersInput filters the repeat-offender search. Zero MinCases
// takes the configured default.
type RepeatOffendersInput struct {
	Tags     []string
	From     *time.Time
	To       *time.Time
	MinCases int
}

// RepeatOffender is one qualifying person.
type RepeatOffender struct {
	PersonID          string    `json:"person_id"`
	Name              string    `json:"name"`
	CaseCount         int       `json:"case_count"`
	PatternMatchCount int       `json:"pattern_match_count"`
	LastSeenDate      time.Time `json:"last_seen_date"`
}

// RepeatOffendersResult is the repeat-offender response.
type RepeatOffendersResult struct {
	Results []RepeatOffender `json:"results"`
}

// PatternCorrelationInput parameterises pattern analysis. An empty CaseID
// analyses the whole corpus; zero MinOccurrence takes the default.
type PatternCorrelationInput struct {
	CaseID        string
	MinOccurrence int
}

// TagCorrelation is a recurring tag combination.
type TagCorrelation struct {
	TagCombination  []string `json:"tag_combination"`
	OccurrenceCount int      `json:"occurrence_count"`
}

// SuspectPattern scores a suspect by distinct case involvement.
type SuspectPattern struct {
	PersonID     string  `json:"person_id"`
	PatternScore float64 `json:"pattern_score"`
}

// PatternCorrelationResult is the pattern-correlation response.
type PatternCorrelationResult struct {
	TagCorrelations   []TagCorrelation `json:"tag_correlations"`
	SuspectPatternMap []SuspectPattern `json:"suspect_pattern_map"`
}

// BehaviorSimilarityInput parameterises behavioral similarity search.
type BehaviorSimilarityInput struct {
	CaseID string
	Limit  int
}

// BehaviorSimilarity is one scored candidate.
type BehaviorSimilarity struct {
	CaseID         string  `json:"case_id"`
	BehaviorScore  float64 `json:"behavior_score"`
	TimeSimilarity float64 `json:"time_similarity"`
	TagSimilarity  float64 `json:"tag_similarity"`
}

// BehaviorSimilarityResult is the behavioral-similarity response.
type BehaviorSimilarityResult struct {
	ReferenceCaseID           string               `json:"reference_case_id"`
	BehaviorSimilarityResults []BehaviorSimilarity `json:"behavior_similarity_results"`
}

// RiskBreakdown itemises the risk score components.
type RiskBreakdown struct {
	RepeatOffenseCount  int     `json:"repeat_offense_count"`
	ViolentTagFrequency int     `json:"violent_tag_frequency"`
	PatternConsistency  float64 `json:"pattern_consistency"`
	ProximityFactor     float64 `json:"proximity_factor"`
}

// RiskScoreResult is the person risk assessment.
type RiskScoreResult struct {
	PersonID  string        `json:"person_id"`
	RiskScore float64       `json:"risk_score"`
	RiskLevel string        `json:"risk_level"`
	Breakdown RiskBreakdown `json:"breakdown"`
}

type serviceImpl struct {
	store   casefile.Store
	cfg     config.IntelConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	alerts  AlertPublisher
}

// NewService constructs the intelligence Service. metrics and alerts may be
// nil; the corresponding hooks become no-ops.
func NewService(store casefile.Store, cfg config.IntelConfig, logger logging.Logger, metrics *prometheus.AppMetrics, alerts AlertPublisher) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		store:   store,
		cfg:     cfg,
		logger:  logger.Named("intel"),
		metrics: metrics,
		alerts:  alerts,
	}
}

func (s *serviceImpl) record(kind string, start time.Time, err error, results int) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAnalysis(kind, err, time.Since(start), results)
}

// candidateMultiplier widens the pre-scoring candidate fetch so the final
// truncation to limit happens after scoring, not before.
const candidateMultiplier = 3

func (s *serviceImpl) resolveRadius(radiusKM float64) (float64, error) {
	if radiusKM == 0 {
		return s.cfg.RelatedCaseRadiusKM, nil
	}
	if radiusKM < 0 {
		return 0, errors.New(errors.ErrCodeInvalidRadius, "").WithDetailf("radius_km %g", radiusKM)
	}
	return radiusKM, nil
}

func (s *serviceImpl) resolveDays(days int) (int, error) {
	if days == 0 {
		return s.cfg.RelatedCaseWindowDays, nil
	}
	if days < 0 {
		return 0, errors.New(errors.ErrCodeInvalidDateRange, "").WithDetailf("days_range %d", days)
	}
	return days, nil
}

func (s *serviceImpl) resolveLimit(limit int) (int, error) {
	if limit == 0 {
		return s.cfg.DefaultLimit, nil
	}
	if limit < 0 || limit > s.cfg.MaxLimit {
		return 0, errors.New(errors.ErrCodeInvalidLimit, "").WithDetailf("limit %d must be in [1, %d]", limit, s.cfg.MaxLimit)
	}
	return limit, nil
}
