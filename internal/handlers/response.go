// Package handlers implements the portal's HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-portal/internal/apiclient"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError writes {"error": message}.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// validationFailed writes the 422 used for every field-level rejection.
func validationFailed(w http.ResponseWriter, details map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":   "Validation failed",
		"details": details,
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// backendError relays a failed backend call. Backend 4xx statuses pass
// through with their message; transport failures and 5xx become 502.
func backendError(w http.ResponseWriter, err error) {
	var apiErr *apiclient.APIError
	switch {
	case apiclient.IsNetwork(err):
		JSONError(w, http.StatusBadGateway, apiclient.NetworkMessage)

	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity && len(apiErr.Fields) > 0:
		details := make(map[string]string, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			details[f.Field()] = f.Msg
		}
		JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   apiErr.Message,
			"details": details,
		})

	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		JSONError(w, apiErr.Status, apiErr.Message)

	case errors.As(err, &apiErr):
		JSONError(w, http.StatusBadGateway, apiErr.Message)

	default:
		JSONError(w, http.StatusInternalServerError, "Unexpected error")
	}
}
