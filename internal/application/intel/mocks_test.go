package intel

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/openintel/casegraph/internal/domain/casefile"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetCaseByID(ctx context.Context, id string) (*casefile.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*casefile.Case), args.Error(1)
}

func (m *MockStore) GetIncidentByID(ctx context.Context, id string) (*casefile.Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*casefile.Incident), args.Error(1)
}

func (m *MockStore) GetPersonByID(ctx context.Context, id string) (*casefile.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*casefile.Person), args.Error(1)
}

func (m *MockStore) FindCasesNear(ctx context.Context, center casefile.Point, radiusMeters float64, window casefile.DateRange, excludeCaseID string, limit int) ([]casefile.CandidateCase, error) {
	args := m.Called(ctx, center, radiusMeters, window, excludeCaseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.CandidateCase), args.Error(1)
}

func (m *MockStore) CountActiveCasesNear(ctx context.Context, center casefile.Point, radiusMeters float64) (int, error) {
	args := m.Called(ctx, center, radiusMeters)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) GetTagsForIncident(ctx context.Context, incidentID string) ([]string, error) {
	args := m.Called(ctx, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) GetTagsForIncidents(ctx context.Context, incidentIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, incidentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockStore) ListIncidentTagSets(ctx context.Context, caseID string) (map[string][]string, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockStore) GetSuspectsForCase(ctx context.Context, caseID string) ([]casefile.Person, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.Person), args.Error(1)
}

func (m *MockStore) GetSuspectIDsForCases(ctx context.Context, caseIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, caseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockStore) FindPersonsWithCaseCounts(ctx context.Context, q casefile.OffenderQuery) ([]casefile.PersonCaseCount, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.PersonCaseCount), args.Error(1)
}

func (m *MockStore) GetSuspectCases(ctx context.Context, personID string) ([]casefile.SuspectCase, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.SuspectCase), args.Error(1)
}

func (m *MockStore) GetSuspectCaseTagSets(ctx context.Context, personIDs []string) (map[string][][]string, error) {
	args := m.Called(ctx, personIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][][]string), args.Error(1)
}

func (m *MockStore) ListCasesWithIncidents(ctx context.Context, excludeCaseID string) ([]casefile.CaseIncident, error) {
	args := m.Called(ctx, excludeCaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.CaseIncident), args.Error(1)
}

func (m *MockStore) FindIncidentPoints(ctx context.Context, q casefile.IncidentQuery) ([]casefile.IncidentPoint, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.IncidentPoint), args.Error(1)
}

type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishRiskAlert(ctx context.Context, alert RiskAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
