package intel

import (
	"context"
	"sort"
	"time"

	"github.com/openintel/casegraph/internal/domain/scoring"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
)

// Behavior score blends tag similarity and time-pattern similarity.
const (
	tagSimilarityWeight  = 0.6
	timeSimilarityWeight = 0.4
)

// FindBehavioralSimilar ranks all other cases against a reference case by
// modus operandi: what fraction of tags coincide and how alike the
// incident time patterns are.
func (s *serviceImpl) FindBehavioralSimilar(ctx context.Context, in BehaviorSimilarityInput) (result *BehaviorSimilarityResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = len(result.BehaviorSimilarityResults)
		}
		s.record("behavior_similarity", start, err, n)
	}()

	limit, err := s.resolveLimit(in.Limit)
	if err != nil {
		return nil, err
	}

	refCase, err := s.store.GetCaseByID(ctx, in.CaseID)
	if err != nil {
		return nil, err
	}
	refIncident, err := s.store.GetIncidentByID(ctx, refCase.PrimaryIncidentID)
	if err != nil {
		return nil, err
	}
	refTags, err := s.store.GetTagsForIncident(ctx, refIncident.ID)
	if err != nil {
		return nil, err
	}
	refPattern := scoring.ExtractTimePatterns([]time.Time{refIncident.OccurredAt})

	others, err := s.store.ListCasesWithIncidents(ctx, refCase.ID)
	if err != nil {
		return nil, err
	}

	result = &BehaviorSimilarityResult{
		ReferenceCaseID:           refCase.ID,
		BehaviorSimilarityResults: []BehaviorSimilarity{},
	}
	if len(others) == 0 {
		return result, nil
	}

	incidentIDs := make([]string, 0, len(others))
	for _, o := range others {
		incidentIDs = append(incidentIDs, o.Incident.ID)
	}
	tagsByIncident, err := s.store.GetTagsForIncidents(ctx, incidentIDs)
	if err != nil {
		return nil, err
	}

	scored := make([]BehaviorSimilarity, 0, len(others))
	for _, other := range others {
		otherTags := tagsByIncident[other.Incident.ID]

		overlapCount, _ := scoring.TagOverlap(refTags, otherTags)
		tagSimilarity := 0.0
		if denom := max(len(refTags), len(otherTags)); denom > 0 {
			tagSimilarity = float64(overlapCount) / float64(denom)
		}

		otherPattern := scoring.ExtractTimePatterns([]time.Time{other.Incident.OccurredAt})
		timeSimilarity := scoring.PatternSimilarity(refPattern, otherPattern)

		behaviorScore := tagSimilarity*tagSimilarityWeight + timeSimilarity*timeSimilarityWeight

		scored = append(scored, BehaviorSimilarity{
			CaseID:         other.Case.ID,
			BehaviorScore:  scoring.Round3(behaviorScore),
			TimeSimilarity: scoring.Round3(timeSimilarity),
			TagSimilarity:  scoring.Round3(tagSimilarity),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].BehaviorScore > scored[j].BehaviorScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	s.logger.Debug("behavioral similarity ranked",
		logging.String("case_id", refCase.ID),
		logging.Int("compared", len(others)),
		logging.Int("returned", len(scored)),
	)

	result.BehaviorSimilarityResults = scored
	return result, nil
}
