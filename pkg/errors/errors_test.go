package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeCaseNotFound, "case missing")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeCaseNotFound, err.Code)
	assert.Equal(t, "case missing", err.Message)
	assert.Contains(t, err.Error(), "INTEL_001")
	assert.Contains(t, err.Error(), "case missing")
}

func TestNewDefaultMessage(t *testing.T) {
	err := New(ErrCodeInvalidBounds, "")
	assert.Equal(t, "invalid bounding box", err.Message)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "query failed")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapNil(t *testing.T) {
	var err *AppError = Wrap(nil, ErrCodeInternal, "should be nil")
	assert.Nil(t, err)
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeInvalidRadius, GetCode(New(ErrCodeInvalidRadius, "")))

	wrapped := fmt.Errorf("outer: %w", New(ErrCodeIncidentNotFound, ""))
	assert.Equal(t, ErrCodeIncidentNotFound, GetCode(wrapped))
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodePersonNotFound, "")
	outer := Wrap(inner, ErrCodeInternal, "lookup failed")

	assert.True(t, IsCode(outer, ErrCodeInternal))
	assert.True(t, IsCode(outer, ErrCodePersonNotFound))
	assert.False(t, IsCode(outer, ErrCodeCaseNotFound))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeNotFound, "")))
	assert.True(t, IsNotFound(New(ErrCodeCaseNotFound, "")))
	assert.True(t, IsNotFound(New(ErrCodeIncidentNotFound, "")))
	assert.True(t, IsNotFound(New(ErrCodePersonNotFound, "")))
	assert.False(t, IsNotFound(New(ErrCodeBadRequest, "")))
	assert.False(t, IsNotFound(nil))
}

func TestWithDetail(t *testing.T) {
	base := New(ErrCodeInvalidBounds, "")
	detailed := base.WithDetailf("min_lat %f >= max_lat %f", 10.0, 5.0)

	assert.Empty(t, base.Detail)
	assert.Contains(t, detailed.Detail, "min_lat")
	assert.Equal(t, base.Code, detailed.Code)
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeCaseNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusForCode(ErrCodeInvalidBounds))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrCodeDatabaseError))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE_999")))
}

func TestClientServerSplit(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeInvalidLimit))
	assert.False(t, IsServerError(ErrCodeInvalidLimit))
	assert.True(t, IsServerError(ErrCodeCacheError))
	assert.False(t, IsClientError(ErrCodeCacheError))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "INTEL", ModuleForCode(ErrCodeCaseNotFound))
	assert.Equal(t, "GEO", ModuleForCode(ErrCodeInvalidBounds))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
}

func TestAsAppError(t *testing.T) {
	app := New(ErrCodeConflict, "")
	assert.Same(t, app, AsAppError(app))

	plain := stderrors.New("boom")
	converted := AsAppError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, ErrCodeInternal, converted.Code)
	assert.True(t, stderrors.Is(converted, plain))

	assert.Nil(t, AsAppError(nil))
}
