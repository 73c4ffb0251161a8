package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
	"github.com/openintel/casegraph/pkg/errors"
)

// querier abstracts pgxpool.Pool for testing.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	db      querier
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewStore builds a casefile.Store over the connection pool. metrics may be
// nil.
func NewStore(conn *Connection, log logging.Logger, metrics *prometheus.AppMetrics) casefile.Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &store{db: conn.Pool(), logger: log.Named("postgres"), metrics: metrics}
}

// newStoreWithQuerier exists for tests.
func newStoreWithQuerier(db querier, log logging.Logger) *store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &store{db: db, logger: log}
}

func (s *store) observe(operation string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (s *store) GetCaseByID(ctx context.Context, id string) (*casefile.Case, error) {
	defer s.observe("get_case", time.Now())

	const q = `
		SELECT id, title, primary_incident_id, status, created_at
		FROM cases WHERE id = $1`
	var c casefile.Case
	err := s.db.QueryRow(ctx, q, id).Scan(&c.ID, &c.Title, &c.PrimaryIncidentID, &c.Status, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeCaseNotFound, "").WithDetailf("case %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to fetch case")
	}
	return &c, nil
}

func (s *store) GetIncidentByID(ctx context.Context, id string) (*casefile.Incident, error) {
	defer s.observe("get_incident", time.Now())

	const q = `
		SELECT id, occurred_at, lat, lng, COALESCE(description, '')
		FROM incidents WHERE id = $1`
	var (
		inc      casefile.Incident
		lat, lng *float64
	)
	err := s.db.QueryRow(ctx, q, id).Scan(&inc.ID, &inc.OccurredAt, &lat, &lng, &inc.Description)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeIncidentNotFound, "").WithDetailf("incident %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to fetch incident")
	}
	if lat != nil && lng != nil {
		inc.Location = &casefile.Point{Lat: *lat, Lng: *lng}
	}
	return &inc, nil
}

func (s *store) GetPersonByID(ctx context.Context, id string) (*casefile.Person, error) {
	defer s.observe("get_person", time.Now())

	const q = `SELECT id, name FROM persons WHERE id = $1`
	var p casefile.Person
	err := s.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodePersonNotFound, "").WithDetailf("person %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to fetch person")
	}
	return &p, nil
}

func (s *store) FindCasesNear(ctx context.Context, center casefile.Point, radiusMeters float64, window casefile.DateRange, excludeCaseID string, limit int) ([]casefile.CandidateCase, error) {
	defer s.observe("find_cases_near", time.Now())

	const q = `
		SELECT * FROM (
			SELECT c.id, c.title, c.primary_incident_id, c.status, c.created_at,
			       i.id, i.occurred_at, i.lat, i.lng, COALESCE(i.description, ''),
			       6371000 * 2 * asin(sqrt(
			           power(sin(radians(i.lat - $1) / 2), 2) +
			           cos(radians($1)) * cos(radians(i.lat)) *
			           power(sin(radians(i.lng - $2) / 2), 2)
			       )) AS distance_meters
			FROM cases c
			JOIN incidents i ON i.id = c.primary_incident_id
			WHERE i.lat IS NOT NULL AND i.lng IS NOT NULL
			  AND c.id <> $3
			  AND ($4::timestamptz IS NULL OR i.occurred_at >= $4)
			  AND ($5::timestamptz IS NULL OR i.occurred_at <= $5)
		) candidates
		WHERE distance_meters <= $6
		ORDER BY distance_meters
		LIMIT $7`
	rows, err := s.db.Query(ctx, q, center.Lat, center.Lng, excludeCaseID, window.From, window.To, radiusMeters, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query nearby cases")
	}
	defer rows.Close()

	var out []casefile.CandidateCase
	for rows.Next() {
		var (
			cand     casefile.CandidateCase
			lat, lng *float64
		)
		if err := rows.Scan(
			&cand.Case.ID, &cand.Case.Title, &cand.Case.PrimaryIncidentID, &cand.Case.Status, &cand.Case.CreatedAt,
			&cand.Incident.ID, &cand.Incident.OccurredAt, &lat, &lng, &cand.Incident.Description,
			&cand.DistanceMeters,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan nearby case")
		}
		if lat != nil && lng != nil {
			cand.Incident.Location = &casefile.Point{Lat: *lat, Lng: *lng}
		}
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate nearby cases")
	}
	return out, nil
}

func (s *store) CountActiveCasesNear(ctx context.Context, center casefile.Point, radiusMeters float64) (int, error) {
	defer s.observe("count_active_cases_near", time.Now())

	const q = `
		SELECT count(*) FROM (
			SELECT 6371000 * 2 * asin(sqrt(
			           power(sin(radians(i.lat - $1) / 2), 2) +
			           cos(radians($1)) * cos(radians(i.lat)) *
			           power(sin(radians(i.lng - $2) / 2), 2)
			       )) AS distance_meters
			FROM cases c
			JOIN incidents i ON i.id = c.primary_incident_id
			WHERE i.lat IS NOT NULL AND i.lng IS NOT NULL
			  AND c.status = ANY($3)
		) candidates
		WHERE distance_meters <= $4`
	statuses := make([]string, len(casefile.ActiveStatuses))
	for i, st := range casefile.ActiveStatuses {
		statuses[i] = string(st)
	}
	var count int
	if err := s.db.QueryRow(ctx, q, center.Lat, center.Lng, statuses, radiusMeters).Scan(&count); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count nearby active cases")
	}
	return count, nil
}

func (s *store) GetTagsForIncident(ctx context.Context, incidentID string) ([]string, error) {
	defer s.observe("get_tags_for_incident", time.Now())

	const q = `SELECT tag FROM incident_tags WHERE incident_id = $1 ORDER BY tag`
	rows, err := s.db.Query(ctx, q, incidentID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query incident tags")
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan incident tag")
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate incident tags")
	}
	return tags, nil
}

func (s *store) GetTagsForIncidents(ctx context.Context, incidentIDs []string) (map[string][]string, error) {
	defer s.observe("get_tags_for_incidents", time.Now())

	if len(incidentIDs) == 0 {
		return map[string][]string{}, nil
	}
	const q = `
		SELECT incident_id, tag FROM incident_tags
		WHERE incident_id = ANY($1)
		ORDER BY incident_id, tag`
	rows, err := s.db.Query(ctx, q, incidentIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query incident tags")
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var incidentID, tag string
		if err := rows.Scan(&incidentID, &tag); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan incident tag")
		}
		out[incidentID] = append(out[incidentID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate incident tags")
	}
	return out, nil
}

func (s *store) ListIncidentTagSets(ctx context.Context, caseID string) (map[string][]string, error) {
	defer s.observe("list_incident_tag_sets", time.Now())

	const q = `
		SELECT t.incident_id, t.tag FROM incident_tags t
		WHERE $1 = '' OR t.incident_id IN (
			SELECT primary_incident_id FROM cases WHERE id = $1
		)
		ORDER BY t.incident_id, t.tag`
	rows, err := s.db.Query(ctx, q, caseID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query tag sets")
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var incidentID, tag string
		if err := rows.Scan(&incidentID, &tag); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan tag set row")
		}
		out[incidentID] = append(out[incidentID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate tag sets")
	}
	return out, nil
}

func (s *store) GetSuspectsForCase(ctx context.Context, caseID string) ([]casefile.Person, error) {
	defer s.observe("get_suspects_for_case", time.Now())

	const q = `
		SELECT p.id, p.name FROM persons p
		JOIN case_persons cp ON cp.person_id = p.id
		WHERE cp.case_id = $1 AND cp.role = 'suspect'
		ORDER BY p.id`
	rows, err := s.db.Query(ctx, q, caseID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query case suspects")
	}
	defer rows.Close()

	var out []casefile.Person
	for rows.Next() {
		var p casefile.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan suspect")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate suspects")
	}
	return out, nil
}

func (s *store) GetSuspectIDsForCases(ctx context.Context, caseIDs []string) (map[string][]string, error) {
	defer s.observe("get_suspect_ids_for_cases", time.Now())

	if len(caseIDs) == 0 {
		return map[string][]string{}, nil
	}
	const q = `
		SELECT case_id, person_id FROM case_persons
		WHERE case_id = ANY($1) AND role = 'suspect'
		ORDER BY case_id, person_id`
	rows, err := s.db.Query(ctx, q, caseIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query case suspects")
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var caseID, personID string
		if err := rows.Scan(&caseID, &personID); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan case suspect")
		}
		out[caseID] = append(out[caseID], personID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate case suspects")
	}
	return out, nil
}

func (s *store) FindPersonsWithCaseCounts(ctx context.Context, q casefile.OffenderQuery) ([]casefile.PersonCaseCount, error) {
	defer s.observe("find_persons_with_case_counts", time.Now())

	const query = `
		SELECT p.id, p.name,
		       count(DISTINCT cp.case_id) AS case_count,
		       max(i.occurred_at) AS last_seen
		FROM persons p
		JOIN case_persons cp ON cp.person_id = p.id AND cp.role = 'suspect'
		JOIN cases c ON c.id = cp.case_id
		JOIN incidents i ON i.id = c.primary_incident_id
		WHERE ($1::timestamptz IS NULL OR i.occurred_at >= $1)
		  AND ($2::timestamptz IS NULL OR i.occurred_at <= $2)
		  AND (cardinality($3::text[]) = 0 OR EXISTS (
		      SELECT 1 FROM incident_tags t
		      WHERE t.incident_id = i.id AND t.tag = ANY($3)))
		GROUP BY p.id, p.name
		HAVING count(DISTINCT cp.case_id) >= $4
		ORDER BY case_count DESC, p.id`
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	rows, err := s.db.Query(ctx, query, q.From, q.To, tags, q.MinCases)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query offender counts")
	}
	defer rows.Close()

	var out []casefile.PersonCaseCount
	for rows.Next() {
		var pc casefile.PersonCaseCount
		if err := rows.Scan(&pc.Person.ID, &pc.Person.Name, &pc.CaseCount, &pc.LastSeen); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan offender count")
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate offender counts")
	}
	return out, nil
}

func (s *store) GetSuspectCases(ctx context.Context, personID string) ([]casefile.SuspectCase, error) {
	defer s.observe("get_suspect_cases", time.Now())

	const q = `
		SELECT cp.case_id, i.id, i.lat, i.lng, i.occurred_at
		FROM case_persons cp
		JOIN cases c ON c.id = cp.case_id
		JOIN incidents i ON i.id = c.primary_incident_id
		WHERE cp.person_id = $1 AND cp.role = 'suspect'
		ORDER BY i.occurred_at, cp.case_id`
	rows, err := s.db.Query(ctx, q, personID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query suspect cases")
	}
	defer rows.Close()

	var out []casefile.SuspectCase
	for rows.Next() {
		var (
			sc       casefile.SuspectCase
			lat, lng *float64
		)
		if err := rows.Scan(&sc.CaseID, &sc.IncidentID, &lat, &lng, &sc.OccurredAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan suspect case")
		}
		if lat != nil && lng != nil {
			sc.Location = &casefile.Point{Lat: *lat, Lng: *lng}
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate suspect cases")
	}
	return out, nil
}

func (s *store) GetSuspectCaseTagSets(ctx context.Context, personIDs []string) (map[string][][]string, error) {
	defer s.observe("get_suspect_case_tag_sets", time.Now())

	if len(personIDs) == 0 {
		return map[string][][]string{}, nil
	}
	const q = `
		SELECT cp.person_id,
		       COALESCE(array_agg(t.tag ORDER BY t.tag) FILTER (WHERE t.tag IS NOT NULL), '{}')
		FROM case_persons cp
		JOIN cases c ON c.id = cp.case_id
		LEFT JOIN incident_tags t ON t.incident_id = c.primary_incident_id
		WHERE cp.person_id = ANY($1) AND cp.role = 'suspect'
		GROUP BY cp.person_id, cp.case_id
		ORDER BY cp.person_id, cp.case_id`
	rows, err := s.db.Query(ctx, q, personIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query suspect tag sets")
	}
	defer rows.Close()

	out := make(map[string][][]string)
	for rows.Next() {
		var (
			personID string
			tags     []string
		)
		if err := rows.Scan(&personID, &tags); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan suspect tag set")
		}
		out[personID] = append(out[personID], tags)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate suspect tag sets")
	}
	return out, nil
}

func (s *store) ListCasesWithIncidents(ctx context.Context, excludeCaseID string) ([]casefile.CaseIncident, error) {
	defer s.observe("list_cases_with_incidents", time.Now())

	const q = `
		SELECT c.id, c.title, c.primary_incident_id, c.status, c.created_at,
		       i.id, i.occurred_at, i.lat, i.lng, COALESCE(i.description, '')
		FROM cases c
		JOIN incidents i ON i.id = c.primary_incident_id
		WHERE c.id <> $1
		ORDER BY c.created_at, c.id`
	rows, err := s.db.Query(ctx, q, excludeCaseID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list cases")
	}
	defer rows.Close()

	var out []casefile.CaseIncident
	for rows.Next() {
		var (
			ci       casefile.CaseIncident
			lat, lng *float64
		)
		if err := rows.Scan(
			&ci.Case.ID, &ci.Case.Title, &ci.Case.PrimaryIncidentID, &ci.Case.Status, &ci.Case.CreatedAt,
			&ci.Incident.ID, &ci.Incident.OccurredAt, &lat, &lng, &ci.Incident.Description,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan case")
		}
		if lat != nil && lng != nil {
			ci.Incident.Location = &casefile.Point{Lat: *lat, Lng: *lng}
		}
		out = append(out, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate cases")
	}
	return out, nil
}

func (s *store) FindIncidentPoints(ctx context.Context, q casefile.IncidentQuery) ([]casefile.IncidentPoint, error) {
	defer s.observe("find_incident_points", time.Now())

	const query = `
		SELECT i.id, i.lat, i.lng FROM incidents i
		WHERE i.lat IS NOT NULL AND i.lng IS NOT NULL
		  AND ($1::float8 IS NULL OR i.lat >= $1)
		  AND ($2::float8 IS NULL OR i.lng >= $2)
		  AND ($3::float8 IS NULL OR i.lat <= $3)
		  AND ($4::float8 IS NULL OR i.lng <= $4)
		  AND ($5::timestamptz IS NULL OR i.occurred_at >= $5)
		  AND ($6::timestamptz IS NULL OR i.occurred_at <= $6)
		  AND (cardinality($7::text[]) = 0 OR EXISTS (
		      SELECT 1 FROM incident_tags t
		      WHERE t.incident_id = i.id AND t.tag = ANY($7)))
		ORDER BY i.occurred_at, i.id`
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	rows, err := s.db.Query(ctx, query, q.MinLat, q.MinLng, q.MaxLat, q.MaxLng, q.From, q.To, tags)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query incident points")
	}
	defer rows.Close()

	var out []casefile.IncidentPoint
	for rows.Next() {
		var p casefile.IncidentPoint
		if err := rows.Scan(&p.IncidentID, &p.Lat, &p.Lng); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan incident point")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate incident points")
	}
	return out, nil
}
