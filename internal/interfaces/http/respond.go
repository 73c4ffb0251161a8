// Package http exposes the correlation engine over a gin-based REST API.
// Handlers are thin: parse, delegate to the application services, map
// errors to statuses.
package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openintel/casegraph/pkg/errors"
)

// ErrorResponse is the error envelope every endpoint returns on failure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an application error to its HTTP status. Server-side
// errors are masked; their detail stays in the logs.
func respondError(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)
	status := appErr.HTTPStatus()
	resp := ErrorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	}
	if errors.IsClientError(appErr.Code) {
		resp.Detail = appErr.Detail
	} else {
		resp.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
		resp.Code = string(errors.ErrCodeInternal)
	}
	c.AbortWithStatusJSON(status, resp)
}

// Query parsing helpers. A missing parameter yields the zero value; a
// malformed one is a validation error.

func queryFloat(c *gin.Context, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeValidation, "").WithDetailf("%s: %q is not a number", name, raw)
	}
	return v, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeValidation, "").WithDetailf("%s: %q is not an integer", name, raw)
	}
	return v, nil
}

// queryTime accepts RFC 3339 timestamps or bare dates.
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New(errors.ErrCodeValidation, "").WithDetailf("%s: %q is not a valid timestamp", name, raw)
}

// queryTags splits a comma-separated tag list, dropping empty entries.
func queryTags(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// requireFloat is queryFloat for mandatory parameters.
func requireFloat(c *gin.Context, name string) (float64, error) {
	if c.Query(name) == "" {
		return 0, errors.New(errors.ErrCodeValidation, "").WithDetailf("%s is required", name)
	}
	return queryFloat(c, name)
}
