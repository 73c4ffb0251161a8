package intel

import (
	"context"
	"time"

	"github.com/openintel/casegraph/internal/domain/scoring"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
)

// Risk score weights. Counts and ratios are mixed deliberately; changing a
// weight shifts every stored score, so treat these as part of the API.
const (
	weightRepeatOffense      = 3
	weightViolentTags        = 4
	weightPatternConsistency = 2
	weightProximity          = 2
)

// proximityDivisor and proximityCap normalise the nearby-active-case count
// into the proximity factor: min(count/5, 2.0).
const (
	proximityDivisor = 5.0
	proximityCap     = 2.0
)

// ScorePersonRisk assesses a person from their suspect-role case history:
// how often they reoffend, how violent their cases are, how consistent
// their tag fingerprint is, and how close their incidents sit to ongoing
// investigations. A HIGH band additionally publishes a risk alert.
func (s *serviceImpl) ScorePersonRisk(ctx context.Context, personID string) (result *RiskScoreResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = 1
		}
		s.record("risk_score", start, err, n)
	}()

	person, err := s.store.GetPersonByID(ctx, personID)
	if err != nil {
		return nil, err
	}

	suspectCases, err := s.store.GetSuspectCases(ctx, person.ID)
	if err != nil {
		return nil, err
	}

	distinctCases := make(map[string]struct{}, len(suspectCases))
	for _, sc := range suspectCases {
		distinctCases[sc.CaseID] = struct{}{}
	}
	repeatOffenseCount := len(distinctCases)

	tagSetsByPerson, err := s.store.GetSuspectCaseTagSets(ctx, []string{person.ID})
	if err != nil {
		return nil, err
	}
	tagSets := tagSetsByPerson[person.ID]

	var allTags []string
	for _, tags := range tagSets {
		allTags = append(allTags, tags...)
	}
	violentTagFrequency := scoring.CountViolentTags(allTags)

	// Pattern consistency: share of cases carrying the most common tag
	// fingerprint. Zero when the person has no cases.
	patternConsistency := 0.0
	if len(tagSets) > 0 {
		counts := make(map[string]int, len(tagSets))
		mostCommon := 0
		for _, tags := range tagSets {
			key := fingerprint(tags)
			counts[key]++
			if counts[key] > mostCommon {
				mostCommon = counts[key]
			}
		}
		patternConsistency = float64(mostCommon) / float64(len(tagSets))
	}

	// Proximity: the maximum number of active cases within the configured
	// radius of any of the person's incident locations.
	maxNearby := 0
	for _, sc := range suspectCases {
		if sc.Location == nil {
			continue
		}
		nearby, nerr := s.store.CountActiveCasesNear(ctx, *sc.Location, s.cfg.RiskProximityRadiusKM*1000)
		if nerr != nil {
			return nil, nerr
		}
		if nearby > maxNearby {
			maxNearby = nearby
		}
	}
	proximityFactor := float64(maxNearby) / proximityDivisor
	if proximityFactor > proximityCap {
		proximityFactor = proximityCap
	}

	riskScore := scoring.WeightedScore(map[string]scoring.Component{
		"repeat_offense":      {Value: float64(repeatOffenseCount), Weight: weightRepeatOffense},
		"violent_tags":        {Value: float64(violentTagFrequency), Weight: weightViolentTags},
		"pattern_consistency": {Value: patternConsistency, Weight: weightPatternConsistency},
		"proximity":           {Value: proximityFactor, Weight: weightProximity},
	})
	band := scoring.RiskLevel(riskScore)

	if s.metrics != nil {
		s.metrics.RiskAssessmentsTotal.WithLabelValues(string(band)).Inc()
	}

	result = &RiskScoreResult{
		PersonID:  person.ID,
		RiskScore: scoring.Round2(riskScore),
		RiskLevel: string(band),
		Breakdown: RiskBreakdown{
			RepeatOffenseCount:  repeatOffenseCount,
			ViolentTagFrequency: violentTagFrequency,
			PatternConsistency:  scoring.Round3(patternConsistency),
			ProximityFactor:     scoring.Round2(proximityFactor),
		},
	}

	if band == scoring.RiskHigh {
		s.publishRiskAlert(ctx, result)
	}

	s.logger.Info("person risk assessed",
		logging.String("person_id", person.ID),
		logging.Float64("risk_score", result.RiskScore),
		logging.String("risk_level", result.RiskLevel),
	)
	return result, nil
}

// publishRiskAlert emits a HIGH-band alert. Failures are logged and counted
// but never surfaced to the caller.
func (s *serviceImpl) publishRiskAlert(ctx context.Context, r *RiskScoreResult) {
	if s.alerts == nil {
		return
	}
	alert := RiskAlert{
		PersonID:  r.PersonID,
		RiskScore: r.RiskScore,
		RiskLevel: r.RiskLevel,
		EmittedAt: time.Now().UTC(),
	}
	if err := s.alerts.PublishRiskAlert(ctx, alert); err != nil {
		s.logger.Error("risk alert publish failed",
			logging.String("person_id", r.PersonID),
			logging.Err(err),
		)
		if s.metrics != nil {
			s.metrics.RiskAlertsPublishedTotal.WithLabelValues("failure").Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.RiskAlertsPublishedTotal.WithLabelValues("success").Inc()
	}
}
