package devapi

import (
	"encoding/json"
	"net/http"

	"github.com/me/adminportal/pkg/model"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, apiErr *model.APIError) {
	respondJSON(w, status, map[string]*model.APIError{"error": apiErr})
}

func respondUnauthorized(w http.ResponseWriter, msg string) {
	respondError(w, http.StatusUnauthorized, &model.APIError{Code: model.ErrUnauthorized, Message: msg})
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, model.NewValidationError("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}
