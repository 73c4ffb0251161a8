package casefile

import (
	"context"
	"time"
)

// The interfaces below form the read-only data-access contract the engine
// consumes. They are grouped as capability sets so each analyzer depends
// only on the lookups it actually performs; Store composes all of them for
// concrete implementations. Implementations return a NotFound-coded error
// for absent reference entities and wrap store failures in a
// DataAccess-coded error.

// CandidateCase is a case joined with its primary incident and the distance
// from a reference point.
type CandidateCase struct {
	Case           Case
	Incident       Incident
	DistanceMeters float64
}

// CaseIncident is a case joined with its primary incident.
type CaseIncident struct {
	Case     Case
	Incident Incident
}

// PersonCaseCount is a person with their distinct suspect-role case count
// and the time of their most recent incident.
type PersonCaseCount struct {
	Person    Person
	CaseCount int
	LastSeen  time.Time
}

// SuspectCase links one of a person's suspect-role cases to its primary
// incident.
type SuspectCase struct {
	CaseID     string
	IncidentID string
	Location   *Point
	OccurredAt time.Time
}

// OffenderQuery filters the repeat-offender search. Zero-valued fields are
// ignored.
type OffenderQuery struct {
	Tags     []string
	From     *time.Time
	To       *time.Time
	MinCases int
}

// IncidentQuery filters incident point lookups. A nil Bounds-side field
// leaves that side open.
type IncidentQuery struct {
	MinLat, MinLng *float64
	MaxLat, MaxLng *float64
	From, To       *time.Time
	Tags           []string
}

// IncidentPoint is an incident reduced to its identifier and coordinates.
type IncidentPoint struct {
	IncidentID string
	Lat        float64
	Lng        float64
}

// EntityReader resolves reference entities by identifier.
type EntityReader interface {
	GetCaseByID(ctx context.Context, id string) (*Case, error)
	GetIncidentByID(ctx context.Context, id string) (*Incident, error)
	GetPersonByID(ctx context.Context, id string) (*Person, error)
}

// ProximityReader answers spatial queries over cases.
type ProximityReader interface {
	// FindCasesNear returns cases other than excludeCaseID whose primary
	// incident lies within radiusMeters of center and inside window,
	// ordered by distance, at most limit rows.
	FindCasesNear(ctx context.Context, center Point, radiusMeters float64, window DateRange, excludeCaseID string, limit int) ([]CandidateCase, error)

	// CountActiveCasesNear counts cases in an active status whose primary
	// incident lies within radiusMeters of center.
	CountActiveCasesNear(ctx context.Context, center Point, radiusMeters float64) (int, error)
}

// TagReader resolves incident tag sets.
type TagReader interface {
	GetTagsForIncident(ctx context.Context, incidentID string) ([]string, error)

	// GetTagsForIncidents batch-fetches tags for many incidents in one
	// round trip. Incidents with no tags are absent from the result map.
	GetTagsForIncidents(ctx context.Context, incidentIDs []string) (map[string][]string, error)

	// ListIncidentTagSets returns the tag set of every incident, keyed by
	// incident ID. A non-empty caseID restricts the listing to that case's
	// primary incident.
	ListIncidentTagSets(ctx context.Context, caseID string) (map[string][]string, error)
}

// SuspectReader resolves suspect-role links.
type SuspectReader interface {
	GetSuspectsForCase(ctx context.Context, caseID string) ([]Person, error)

	// GetSuspectIDsForCases batch-fetches suspect person IDs for many
	// cases in one round trip.
	GetSuspectIDsForCases(ctx context.Context, caseIDs []string) (map[string][]string, error)
}

// OffenderReader supports repeat-offender and risk analysis.
type OffenderReader interface {
	// FindPersonsWithCaseCounts returns persons linked as suspect to at
	// least q.MinCases distinct cases matching the filters.
	FindPersonsWithCaseCounts(ctx context.Context, q OffenderQuery) ([]PersonCaseCount, error)

	// GetSuspectCases returns every suspect-role case of a person joined
	// with its primary incident.
	GetSuspectCases(ctx context.Context, personID string) ([]SuspectCase, error)

	// GetSuspectCaseTagSets returns, per person, one sorted tag set for
	// each of their distinct suspect-role cases. Cases without tags
	// contribute an empty set.
	GetSuspectCaseTagSets(ctx context.Context, personIDs []string) (map[string][][]string, error)
}

// CaseLister enumerates cases for whole-corpus comparisons.
type CaseLister interface {
	// ListCasesWithIncidents returns every case except excludeCaseID
	// joined with its primary incident, in stable (created_at, id) order.
	ListCasesWithIncidents(ctx context.Context, excludeCaseID string) ([]CaseIncident, error)
}

// IncidentReader answers point queries for the geospatial reports.
type IncidentReader interface {
	FindIncidentPoints(ctx context.Context, q IncidentQuery) ([]IncidentPoint, error)
}

// Store composes the full data-access contract.
type Store interface {
	EntityReader
	ProximityReader
	TagReader
	SuspectReader
	OffenderReader
	CaseLister
	IncidentReader
}
