package oddsapi

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the odds provider. Endpoint
// is the request path with the query string stripped so the API key never
// appears in error output.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("odds API error: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// PlanRestrictedError represents a 403/422 response signaling that the
// caller's plan lacks access to the requested markets. It is a soft
// failure: the affected event contributes nothing and processing continues.
type PlanRestrictedError struct {
	StatusCode int
	Markets    string
}

func (e *PlanRestrictedError) Error() string {
	return fmt.Sprintf("odds API plan does not cover requested markets %q (status %d)", e.Markets, e.StatusCode)
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{StatusCode: statusCode, Endpoint: endpoint, Message: message}
}

// NewPlanRestrictedError creates a new PlanRestrictedError.
func NewPlanRestrictedError(statusCode int, markets string) *PlanRestrictedError {
	return &PlanRestrictedError{StatusCode: statusCode, Markets: markets}
}

// IsPlanRestricted reports whether err is a plan restriction.
func IsPlanRestricted(err error) bool {
	var pr *PlanRestrictedError
	return errors.As(err, &pr)
}

// StatusOf returns the upstream HTTP status carried by err, or 0 when err
// carries none.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var pr *PlanRestrictedError
	if errors.As(err, &pr) {
		return pr.StatusCode
	}
	return 0
}
