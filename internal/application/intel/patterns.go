package intel

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/pkg/errors"
)

// AnalyzePatternCorrelation surfaces recurring tag combinations across
// incidents and scores suspects by distinct case involvement. A CaseID
// restricts the tag analysis to that case's primary incident.
func (s *serviceImpl) AnalyzePatternCorrelation(ctx context.Context, in PatternCorrelationInput) (result *PatternCorrelationResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = len(result.TagCorrelations) + len(result.SuspectPatternMap)
		}
		s.record("pattern_correlation", start, err, n)
	}()

	minOccurrence := in.MinOccurrence
	if minOccurrence == 0 {
		minOccurrence = 2
	}
	if minOccurrence < 1 {
		return nil, errors.New(errors.ErrCodeBadRequest, "").WithDetailf("min_occurrence %d must be >= 1", in.MinOccurrence)
	}

	tagSets, err := s.store.ListIncidentTagSets(ctx, in.CaseID)
	if err != nil {
		return nil, err
	}

	// Incidents carrying at least two tags contribute their sorted tag
	// tuple as a combination.
	comboCounts := make(map[string]int)
	comboTags := make(map[string][]string)
	for _, tags := range tagSets {
		if len(tags) < 2 {
			continue
		}
		sorted := append([]string(nil), tags...)
		sort.Strings(sorted)
		key := strings.Join(sorted, "\x1f")
		comboCounts[key]++
		comboTags[key] = sorted
	}

	result = &PatternCorrelationResult{
		TagCorrelations:   []TagCorrelation{},
		SuspectPatternMap: []SuspectPattern{},
	}
	for key, count := range comboCounts {
		if count >= minOccurrence {
			result.TagCorrelations = append(result.TagCorrelations, TagCorrelation{
				TagCombination:  comboTags[key],
				OccurrenceCount: count,
			})
		}
	}
	// Count descending; ties ordered by combination for determinism.
	sort.Slice(result.TagCorrelations, func(i, j int) bool {
		a, b := result.TagCorrelations[i], result.TagCorrelations[j]
		if a.OccurrenceCount != b.OccurrenceCount {
			return a.OccurrenceCount > b.OccurrenceCount
		}
		return strings.Join(a.TagCombination, "\x1f") < strings.Join(b.TagCombination, "\x1f")
	})

	suspects, err := s.store.FindPersonsWithCaseCounts(ctx, casefile.OffenderQuery{MinCases: minOccurrence})
	if err != nil {
		return nil, err
	}
	for _, sp := range suspects {
		result.SuspectPatternMap = append(result.SuspectPatternMap, SuspectPattern{
			PersonID:     sp.Person.ID,
			PatternScore: float64(sp.CaseCount),
		})
	}
	sort.SliceStable(result.SuspectPatternMap, func(i, j int) bool {
		return result.SuspectPatternMap[i].PatternScore > result.SuspectPatternMap[j].PatternScore
	})

	s.logger.Debug("pattern correlation analyzed",
		logging.String("case_id", in.CaseID),
		logging.Int("tag_correlations", len(result.TagCorrelations)),
		logging.Int("suspect_patterns", len(result.SuspectPatternMap)),
	)
	return result, nil
}
