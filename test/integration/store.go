// Package integration exercises the full request path, from the HTTP router
// through the application services, over an in-memory casefile store.
package integration

import (
	"context"
	"sort"
	"time"

	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/internal/domain/scoring"
	"github.com/openintel/casegraph/pkg/errors"
)

// memoryStore implements casefile.Store over fixture maps.
type memoryStore struct {
	cases     map[string]casefile.Case
	incidents map[string]casefile.Incident
	persons   map[string]casefile.Person
	tags      map[string][]string // incident ID -> tags
	suspects  map[string][]string // case ID -> person IDs
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		cases:     make(map[string]casefile.Case),
		incidents: make(map[string]casefile.Incident),
		persons:   make(map[string]casefile.Person),
		tags:      make(map[string][]string),
		suspects:  make(map[string][]string),
	}
}

func (s *memoryStore) addCase(c casefile.Case, i casefile.Incident, tags []string, suspectIDs ...string) {
	s.cases[c.ID] = c
	s.incidents[i.ID] = i
	if len(tags) > 0 {
		s.tags[i.ID] = tags
	}
	s.suspects[c.ID] = suspectIDs
}

func (s *memoryStore) GetCaseByID(_ context.Context, id string) (*casefile.Case, error) {
	c, ok := s.cases[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeCaseNotFound, "").WithDetailf("case %s", id)
	}
	return &c, nil
}

func (s *memoryStore) GetIncidentByID(_ context.Context, id string) (*casefile.Incident, error) {
	i, ok := s.incidents[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeIncidentNotFound, "").WithDetailf("incident %s", id)
	}
	return &i, nil
}

func (s *memoryStore) GetPersonByID(_ context.Context, id string) (*casefile.Person, error) {
	p, ok := s.persons[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePersonNotFound, "").WithDetailf("person %s", id)
	}
	return &p, nil
}

func (s *memoryStore) distanceMeters(center casefile.Point, loc *casefile.Point) (float64, bool) {
	if loc == nil {
		return 0, false
	}
	return scoring.HaversineKm(center.Lng, center.Lat, loc.Lng, loc.Lat) * 1000, true
}

func (s *memoryStore) FindCasesNear(_ context.Context, center casefile.Point, radiusMeters float64, window casefile.DateRange, excludeCaseID string, limit int) ([]casefile.CandidateCase, error) {
	var out []casefile.CandidateCase
	for _, c := range s.cases {
		if c.ID == excludeCaseID {
			continue
		}
		inc := s.incidents[c.PrimaryIncidentID]
		dist, ok := s.distanceMeters(center, inc.Location)
		if !ok || dist > radiusMeters || !window.Contains(inc.OccurredAt) {
			continue
		}
		out = append(out, casefile.CandidateCase{Case: c, Incident: inc, DistanceMeters: dist})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) CountActiveCasesNear(_ context.Context, center casefile.Point, radiusMeters float64) (int, error) {
	count := 0
	for _, c := range s.cases {
		if !c.Status.Active() {
			continue
		}
		inc := s.incidents[c.PrimaryIncidentID]
		if dist, ok := s.distanceMeters(center, inc.Location); ok && dist <= radiusMeters {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) GetTagsForIncident(_ context.Context, incidentID string) ([]string, error) {
	return append([]string(nil), s.tags[incidentID]...), nil
}

func (s *memoryStore) GetTagsForIncidents(_ context.Context, incidentIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, id := range incidentIDs {
		if tags, ok := s.tags[id]; ok {
			out[id] = append([]string(nil), tags...)
		}
	}
	return out, nil
}

func (s *memoryStore) ListIncidentTagSets(_ context.Context, caseID string) (map[string][]string, error) {
	out := make(map[string][]string)
	if caseID != "" {
		c, ok := s.cases[caseID]
		if !ok {
			return out, nil
		}
		if tags, ok := s.tags[c.PrimaryIncidentID]; ok {
			out[c.PrimaryIncidentID] = append([]string(nil), tags...)
		}
		return out, nil
	}
	for id, tags := range s.tags {
		out[id] = append([]string(nil), tags...)
	}
	return out, nil
}

func (s *memoryStore) GetSuspectsForCase(_ context.Context, caseID string) ([]casefile.Person, error) {
	var out []casefile.Person
	for _, pid := range s.suspects[caseID] {
		out = append(out, s.persons[pid])
	}
	return out, nil
}

func (s *memoryStore) GetSuspectIDsForCases(_ context.Context, caseIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, cid := range caseIDs {
		if ids := s.suspects[cid]; len(ids) > 0 {
			out[cid] = append([]string(nil), ids...)
		}
	}
	return out, nil
}

func (s *memoryStore) suspectCaseIDs(personID string) []string {
	var out []string
	for cid, ids := range s.suspects {
		for _, pid := range ids {
			if pid == personID {
				out = append(out, cid)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func (s *memoryStore) FindPersonsWithCaseCounts(_ context.Context, q casefile.OffenderQuery) ([]casefile.PersonCaseCount, error) {
	var out []casefile.PersonCaseCount
	for pid, p := range s.persons {
		var lastSeen time.Time
		count := 0
		for _, cid := range s.suspectCaseIDs(pid) {
			inc := s.incidents[s.cases[cid].PrimaryIncidentID]
			if q.From != nil && inc.OccurredAt.Before(*q.From) {
				continue
			}
			if q.To != nil && inc.OccurredAt.After(*q.To) {
				continue
			}
			if len(q.Tags) > 0 && !hasAnyTag(s.tags[inc.ID], q.Tags) {
				continue
			}
			count++
			if inc.OccurredAt.After(lastSeen) {
				lastSeen = inc.OccurredAt
			}
		}
		if count >= q.MinCases {
			out = append(out, casefile.PersonCaseCount{Person: p, CaseCount: count, LastSeen: lastSeen})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CaseCount != out[j].CaseCount {
			return out[i].CaseCount > out[j].CaseCount
		}
		return out[i].Person.ID < out[j].Person.ID
	})
	return out, nil
}

func (s *memoryStore) GetSuspectCases(_ context.Context, personID string) ([]casefile.SuspectCase, error) {
	var out []casefile.SuspectCase
	for _, cid := range s.suspectCaseIDs(personID) {
		c := s.cases[cid]
		inc := s.incidents[c.PrimaryIncidentID]
		out = append(out, casefile.SuspectCase{
			CaseID:     cid,
			IncidentID: inc.ID,
			Location:   inc.Location,
			OccurredAt: inc.OccurredAt,
		})
	}
	return out, nil
}

func (s *memoryStore) GetSuspectCaseTagSets(_ context.Context, personIDs []string) (map[string][][]string, error) {
	out := make(map[string][][]string)
	for _, pid := range personIDs {
		var sets [][]string
		for _, cid := range s.suspectCaseIDs(pid) {
			tags := append([]string(nil), s.tags[s.cases[cid].PrimaryIncidentID]...)
			sort.Strings(tags)
			if tags == nil {
				tags = []string{}
			}
			sets = append(sets, tags)
		}
		out[pid] = sets
	}
	return out, nil
}

func (s *memoryStore) ListCasesWithIncidents(_ context.Context, excludeCaseID string) ([]casefile.CaseIncident, error) {
	var out []casefile.CaseIncident
	for _, c := range s.cases {
		if c.ID == excludeCaseID {
			continue
		}
		out = append(out, casefile.CaseIncident{Case: c, Incident: s.incidents[c.PrimaryIncidentID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Case.CreatedAt.Equal(out[j].Case.CreatedAt) {
			return out[i].Case.CreatedAt.Before(out[j].Case.CreatedAt)
		}
		return out[i].Case.ID < out[j].Case.ID
	})
	return out, nil
}

func (s *memoryStore) FindIncidentPoints(_ context.Context, q casefile.IncidentQuery) ([]casefile.IncidentPoint, error) {
	var out []casefile.IncidentPoint
	for _, inc := range s.incidents {
		if inc.Location == nil {
			continue
		}
		if q.MinLat != nil && inc.Location.Lat < *q.MinLat {
			continue
		}
		if q.MaxLat != nil && inc.Location.Lat > *q.MaxLat {
			continue
		}
		if q.MinLng != nil && inc.Location.Lng < *q.MinLng {
			continue
		}
		if q.MaxLng != nil && inc.Location.Lng > *q.MaxLng {
			continue
		}
		if q.From != nil && inc.OccurredAt.Before(*q.From) {
			continue
		}
		if q.To != nil && inc.OccurredAt.After(*q.To) {
			continue
		}
		if len(q.Tags) > 0 && !hasAnyTag(s.tags[inc.ID], q.Tags) {
			continue
		}
		out = append(out, casefile.IncidentPoint{IncidentID: inc.ID, Lat: inc.Location.Lat, Lng: inc.Location.Lng})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IncidentID < out[j].IncidentID })
	return out, nil
}

func hasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}
