package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNetwork wraps transport failures (no HTTP response at all).
var ErrNetwork = errors.New("network error")

// NetworkMessage is the operator-facing text for ErrNetwork.
const NetworkMessage = "Network error. Please check your connection"

// FieldError is one entry of a 422 "detail" list.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Field returns the offending field name: the second location element when
// present (the first is the request part, e.g. "body").
func (f FieldError) Field() string {
	switch {
	case len(f.Loc) > 1 && f.Loc[1] != nil && fmt.Sprint(f.Loc[1]) != "":
		return fmt.Sprint(f.Loc[1])
	case len(f.Loc) == 1:
		return fmt.Sprint(f.Loc[0])
	}
	return "Field"
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	return e.Message
}

// parseError builds an APIError from a response body of the form
// {"detail": "..."} or {"detail": [{"loc": [...], "msg": "..."}]}.
// A string detail is kept verbatim.
func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
			apiErr.Message = detail
		} else {
			var fields []FieldError
			if err := json.Unmarshal(envelope.Detail, &fields); err == nil && len(fields) > 0 {
				apiErr.Fields = fields
				parts := make([]string, 0, len(fields))
				for _, f := range fields {
					parts = append(parts, fmt.Sprintf("%s: %s", f.Field(), f.Msg))
				}
				apiErr.Message = "Validation errors: " + strings.Join(parts, ", ")
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = defaultMessage(status)
	}
	return apiErr
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Invalid credentials or expired session"
	case http.StatusForbidden:
		return "Access denied. Insufficient permissions"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusUnprocessableEntity:
		return "Validation failed"
	}
	if status >= 500 {
		return "Server error. Please try again later"
	}
	return fmt.Sprintf("Request failed with status %d", status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsNotFound(err error) bool     { return StatusOf(err) == http.StatusNotFound }
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsValidation reports a 400 or 422 rejection of the request's content.
func IsValidation(err error) bool {
	s := StatusOf(err)
	return s == http.StatusBadRequest || s == http.StatusUnprocessableEntity
}
