package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finboard/internal/dashboard"
)

func (a *API) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"widgets": a.catalog.Entries()})
}

func (a *API) handleListViews(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"views": a.views})
}

func (a *API) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"users": a.users})
}

// handleUserDashboard resolves the single effective blueprint for a user.
// Resolution is recomputed from live store state on every request.
func (a *API) handleUserDashboard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, ok := a.usersByID[userID]
	if !ok {
		respondDomainError(w, dashboard.ErrNotFound)
		return
	}

	res := dashboard.Resolve(user, a.assignments.List(), a.blueprints.List(dashboard.Filter{}))
	resolutionsTotal.WithLabelValues(string(res.Source)).Inc()

	respondJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"source":    res.Source,
		"blueprint": res.Blueprint,
	})
}
