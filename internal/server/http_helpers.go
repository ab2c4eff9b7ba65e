package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/dashboard"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondDomainError maps store and canvas sentinels onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrProtectedRecord):
		return http.StatusForbidden
	case errors.Is(err, dashboard.ErrUnknownWidgetType),
		errors.Is(err, dashboard.ErrInvalidOrder),
		errors.Is(err, dashboard.ErrInvalidSpan),
		errors.Is(err, dashboard.ErrIncompleteBlueprint):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
