// Package intel defines the wire types returned by the intelligence
// endpoints, shared by the HTTP API and the Go SDK.
package intel

import "time"

// Risk bands reported by the risk-score endpoint.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// RelatedCase is one scored candidate from related-case search.
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

// RepeatOffender is one person qualifying for the repeat-offender report.
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

// BehaviorSimilarity is one scored candidate from behavioral search.
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
