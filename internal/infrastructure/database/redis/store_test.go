package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/pkg/errors"
)

// fakeCache is an in-memory Cache for decorator tests.
type fakeCache struct {
	values map[string][]byte
	broken bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) error {
	if f.broken {
		return errors.New(errors.ErrCodeCacheError, "cache down")
	}
	data, ok := f.values[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.broken {
		return errors.New(errors.ErrCodeCacheError, "cache down")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = data
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

// mockInner mocks only the lookups the decorator intercepts; the embedded
// Store keeps the full contract satisfied.
type mockInner struct {
	casefile.Store
	mock.Mock
}

func (m *mockInner) GetCaseByID(ctx context.Context, id string) (*casefile.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*casefile.Case), args.Error(1)
}

func (m *mockInner) GetTagsForIncident(ctx context.Context, incidentID string) ([]string, error) {
	args := m.Called(ctx, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockInner) GetSuspectsForCase(ctx context.Context, caseID string) ([]casefile.Person, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]casefile.Person), args.Error(1)
}

func TestCachingStoreReadThrough(t *testing.T) {
	inner := new(mockInner)
	cache := newFakeCache()
	store := NewCachingStore(inner, cache, nil, nil, time.Minute)

	want := &casefile.Case{ID: "case-1", PrimaryIncidentID: "inc-1", Status: casefile.StatusPending}
	inner.On("GetCaseByID", mock.Anything, "case-1").Return(want, nil).Once()

	// First call loads and fills the cache, second is served from it.
	got, err := store.GetCaseByID(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)

	got, err = store.GetCaseByID(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, want.PrimaryIncidentID, got.PrimaryIncidentID)
	inner.AssertNumberOfCalls(t, "GetCaseByID", 1)
}

func TestCachingStoreDoesNotCacheNotFound(t *testing.T) {
	inner := new(mockInner)
	cache := newFakeCache()
	store := NewCachingStore(inner, cache, nil, nil, time.Minute)

	inner.On("GetCaseByID", mock.Anything, "ghost").
		Return(nil, errors.New(errors.ErrCodeCaseNotFound, "")).Twice()

	for i := 0; i < 2; i++ {
		_, err := store.GetCaseByID(context.Background(), "ghost")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	}
	inner.AssertNumberOfCalls(t, "GetCaseByID", 2)
	assert.Empty(t, cache.values)
}

func TestCachingStoreDegradesWhenCacheFails(t *testing.T) {
	inner := new(mockInner)
	cache := newFakeCache()
	cache.broken = true
	store := NewCachingStore(inner, cache, nil, nil, time.Minute)

	want := &casefile.Case{ID: "case-1"}
	inner.On("GetCaseByID", mock.Anything, "case-1").Return(want, nil)

	got, err := store.GetCaseByID(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, "case-1", got.ID)
}

func TestCachingStoreTagLookup(t *testing.T) {
	inner := new(mockInner)
	cache := newFakeCache()
	store := NewCachingStore(inner, cache, nil, nil, time.Minute)

	inner.On("GetTagsForIncident", mock.Anything, "inc-1").Return([]string{"burglary", "night"}, nil).Once()

	tags, err := store.GetTagsForIncident(context.Background(), "inc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"burglary", "night"}, tags)

	tags, err = store.GetTagsForIncident(context.Background(), "inc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"burglary", "night"}, tags)
	inner.AssertNumberOfCalls(t, "GetTagsForIncident", 1)
}

func TestCachingStoreSuspectLookup(t *testing.T) {
	inner := new(mockInner)
	cache := newFakeCache()
	store := NewCachingStore(inner, cache, nil, nil, time.Minute)

	want := []casefile.Person{{ID: "p-1", Name: "Dana Reyes"}}
	inner.On("GetSuspectsForCase", mock.Anything, "case-1").Return(want, nil).Once()

	suspects, err := store.GetSuspectsForCase(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, want, suspects)

	suspects, err = store.GetSuspectsForCase(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, want, suspects)
	inner.AssertNumberOfCalls(t, "GetSuspectsForCase", 1)

	// A case with no suspect links caches the empty set rather than
	// re-querying.
	inner.On("GetSuspectsForCase", mock.Anything, "case-2").Return([]casefile.Person{}, nil).Once()
	suspects, err = store.GetSuspectsForCase(context.Background(), "case-2")
	require.NoError(t, err)
	assert.Empty(t, suspects)
	_, err = store.GetSuspectsForCase(context.Background(), "case-2")
	require.NoError(t, err)
	inner.AssertNumberOfCalls(t, "GetSuspectsForCase", 2)
}
