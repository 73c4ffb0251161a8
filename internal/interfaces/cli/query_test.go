package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelatedCommandPrintsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cases/case-1/related", r.URL.Path)
		assert.Equal(t, "2.5", r.URL.Query().Get("radius_km"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reference_case_id":"case-1","results":[{"case_id":"case-2","score":12.09}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"related", "case-1", "--server", srv.URL, "--radius-km", "2.5"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"reference_case_id": "case-1"`)
	assert.Contains(t, out.String(), `"case-2"`)
}

func TestRiskCommandReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"INTEL_003","message":"person not found"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"risk", "ghost", "--server", srv.URL})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTEL_003")
}
