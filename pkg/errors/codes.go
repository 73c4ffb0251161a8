package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
)

// Intelligence module error codes.
const (
	ErrCodeCaseNotFound       ErrorCode = "INTEL_001"
	ErrCodeIncidentNotFound   ErrorCode = "INTEL_002"
	ErrCodePersonNotFound     ErrorCode = "INTEL_003"
	ErrCodeInvalidRadius      ErrorCode = "INTEL_004"
	ErrCodeInvalidLimit       ErrorCode = "INTEL_005"
	ErrCodeInvalidDateRange   ErrorCode = "INTEL_006"
	ErrCodeAlertPublishFailed ErrorCode = "INTEL_007"
)

// Geospatial module error codes.
const (
	ErrCodeInvalidBounds      ErrorCode = "GEO_001"
	ErrCodeInvalidCellSize    ErrorCode = "GEO_002"
	ErrCodeInvalidClusterSpec ErrorCode = "GEO_003"
)

// Sentinel codes reported by GetCode for errors outside the taxonomy.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,

	ErrCodeCaseNotFound:       http.StatusNotFound,
	ErrCodeIncidentNotFound:   http.StatusNotFound,
	ErrCodePersonNotFound:     http.StatusNotFound,
	ErrCodeInvalidRadius:      http.StatusBadRequest,
	ErrCodeInvalidLimit:       http.StatusBadRequest,
	ErrCodeInvalidDateRange:   http.StatusBadRequest,
	ErrCodeAlertPublishFailed: http.StatusInternalServerError,

	ErrCodeInvalidBounds:      http.StatusBadRequest,
	ErrCodeInvalidCellSize:    http.StatusBadRequest,
	ErrCodeInvalidClusterSpec: http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",

	ErrCodeCaseNotFound:       "case not found",
	ErrCodeIncidentNotFound:   "incident not found",
	ErrCodePersonNotFound:     "person not found",
	ErrCodeInvalidRadius:      "radius must be positive",
	ErrCodeInvalidLimit:       "limit out of range",
	ErrCodeInvalidDateRange:   "invalid date range",
	ErrCodeAlertPublishFailed: "failed to publish alert",

	ErrCodeInvalidBounds:      "invalid bounding box",
	ErrCodeInvalidCellSize:    "cell size must be positive",
	ErrCodeInvalidClusterSpec: "invalid cluster parameters",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
