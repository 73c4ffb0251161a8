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

// fingerprint canonicalises a case's tag set for pattern matching. Tag sets
// arrive pre-sorted from the store; joining keeps map keys comparable.
func fingerprint(tags []string) string {
	return strings.Join(tags, "\x1f")
}

// FindRepeatOffenders lists persons linked as suspect to at least MinCases
// distinct cases, with a count of how many of their cases share an
// identical tag fingerprint with another of their cases.
func (s *serviceImpl) FindRepeatOffenders(ctx context.Context, in RepeatOffendersInput) (result *RepeatOffendersResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = len(result.Results)
		}
		s.record("repeat_offenders", start, err, n)
	}()

	minCases := in.MinCases
	if minCases == 0 {
		minCases = s.cfg.RepeatOffenderMinCases
	}
	if minCases < 1 {
		return nil, errors.New(errors.ErrCodeBadRequest, "").WithDetailf("min_cases %d must be >= 1", in.MinCases)
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, errors.New(errors.ErrCodeInvalidDateRange, "").WithDetail("from_date is after to_date")
	}

	offenders, err := s.store.FindPersonsWithCaseCounts(ctx, casefile.OffenderQuery{
		Tags:     in.Tags,
		From:     in.From,
		To:       in.To,
		MinCases: minCases,
	})
	if err != nil {
		return nil, err
	}

	result = &RepeatOffendersResult{Results: []RepeatOffender{}}
	if len(offenders) == 0 {
		return result, nil
	}

	personIDs := make([]string, 0, len(offenders))
	for _, o := range offenders {
		personIDs = append(personIDs, o.Person.ID)
	}
	tagSetsByPerson, err := s.store.GetSuspectCaseTagSets(ctx, personIDs)
	if err != nil {
		return nil, err
	}

	for _, o := range offenders {
		counts := make(map[string]int)
		for _, tags := range tagSetsByPerson[o.Person.ID] {
			counts[fingerprint(tags)]++
		}
		patternMatches := 0
		for _, c := range counts {
			if c > 1 {
				patternMatches++
			}
		}
		result.Results = append(result.Results, RepeatOffender{
			PersonID:          o.Person.ID,
			Name:              o.Person.Name,
			CaseCount:         o.CaseCount,
			PatternMatchCount: patternMatches,
			LastSeenDate:      o.LastSeen,
		})
	}

	sort.SliceStable(result.Results, func(i, j int) bool {
		return result.Results[i].CaseCount > result.Results[j].CaseCount
	})

	s.logger.Debug("repeat offenders found",
		logging.Int("min_cases", minCases),
		logging.Int("offenders", len(result.Results)),
	)
	return result, nil
}
