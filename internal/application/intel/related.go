package intel

import (
	"context"
	"sort"
	"time"

	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/internal/domain/scoring"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
)

// Composite score weights for related-case ranking. Counts and 0-1 ratios
// are mixed deliberately; clients rank on the raw score, so the weights are
// part of the API.
const (
	weightTagOverlap     = 3
	weightSuspectOverlap = 4
	weightGeoProximity   = 2
	weightTimeSimilarity = 1
)

// FindRelatedCases ranks other cases against a reference case by tag
// overlap, shared suspects, geographic proximity, and temporal closeness.
// Candidates come from a single radius+window query; their tags and
// suspects are batch-fetched before scoring.
func (s *serviceImpl) FindRelatedCases(ctx context.Context, in RelatedCasesInput) (result *RelatedCasesResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = len(result.Results)
		}
		s.record("related_cases", start, err, n)
	}()

	radiusKM, err := s.resolveRadius(in.RadiusKM)
	if err != nil {
		return nil, err
	}
	daysRange, err := s.resolveDays(in.DaysRange)
	if err != nil {
		return nil, err
	}
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

	result = &RelatedCasesResult{ReferenceCaseID: refCase.ID, Results: []RelatedCase{}}
	if refIncident.Location == nil {
		// No reference location means no spatial candidate set.
		return result, nil
	}

	refTags, err := s.store.GetTagsForIncident(ctx, refIncident.ID)
	if err != nil {
		return nil, err
	}
	refSuspects, err := s.store.GetSuspectsForCase(ctx, refCase.ID)
	if err != nil {
		return nil, err
	}
	refSuspectIDs := make(map[string]struct{}, len(refSuspects))
	for _, p := range refSuspects {
		refSuspectIDs[p.ID] = struct{}{}
	}

	windowFrom := refIncident.OccurredAt.AddDate(0, 0, -daysRange)
	windowTo := refIncident.OccurredAt.AddDate(0, 0, daysRange)
	candidates, err := s.store.FindCasesNear(ctx, *refIncident.Location, radiusKM*1000,
		casefile.DateRange{From: &windowFrom, To: &windowTo}, refCase.ID, limit*candidateMultiplier)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return result, nil
	}

	incidentIDs := make([]string, 0, len(candidates))
	caseIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		incidentIDs = append(incidentIDs, c.Incident.ID)
		caseIDs = append(caseIDs, c.Case.ID)
	}
	tagsByIncident, err := s.store.GetTagsForIncidents(ctx, incidentIDs)
	if err != nil {
		return nil, err
	}
	suspectsByCase, err := s.store.GetSuspectIDsForCases(ctx, caseIDs)
	if err != nil {
		return nil, err
	}

	scored := make([]RelatedCase, 0, len(candidates))
	for _, cand := range candidates {
		distanceKM := cand.DistanceMeters / 1000

		tagOverlapCount, sharedTags := scoring.TagOverlap(refTags, tagsByIncident[cand.Incident.ID])

		suspectOverlapCount := 0
		for _, id := range suspectsByCase[cand.Case.ID] {
			if _, ok := refSuspectIDs[id]; ok {
				suspectOverlapCount++
			}
		}

		geoScore := 1 - distanceKM/radiusKM
		if geoScore < 0 {
			geoScore = 0
		}
		timeSimilarity := scoring.TemporalSimilarity(refIncident.OccurredAt, cand.Incident.OccurredAt, daysRange)

		score := scoring.WeightedScore(map[string]scoring.Component{
			"tag_overlap":     {Value: float64(tagOverlapCount), Weight: weightTagOverlap},
			"suspect_overlap": {Value: float64(suspectOverlapCount), Weight: weightSuspectOverlap},
			"geo_proximity":   {Value: geoScore, Weight: weightGeoProximity},
			"time_similarity": {Value: timeSimilarity, Weight: weightTimeSimilarity},
		})

		scored = append(scored, RelatedCase{
			CaseID:              cand.Case.ID,
			Score:               scoring.Round2(score),
			DistanceKM:          scoring.Round2(distanceKM),
			TagOverlapCount:     tagOverlapCount,
			SuspectOverlapCount: suspectOverlapCount,
			SharedTags:          sharedTags,
		})
	}

	// Stable sort keeps candidate input order as the tie-break.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	s.logger.Debug("related cases ranked",
		logging.String("case_id", refCase.ID),
		logging.Int("candidates", len(candidates)),
		logging.Int("returned", len(scored)),
	)

	result.Results = scored
	return result, nil
}
