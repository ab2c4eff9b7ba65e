package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finboard/internal/dashboard"
)

func (a *API) handleListAssignments(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"assignments": a.assignments.List()})
}

func (a *API) handleUpsertAssignment(w http.ResponseWriter, r *http.Request) {
	targetType, err := dashboard.ParseTargetType(chi.URLParam(r, "targetType"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	targetID := chi.URLParam(r, "targetID")

	var req struct {
		BlueprintID string `json:"blueprintId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	// Assignments must reference a live blueprint at creation time; only a
	// later blueprint deletion may leave one dangling.
	if _, ok := a.blueprints.Get(req.BlueprintID); !ok {
		respondDomainError(w, dashboard.ErrNotFound)
		return
	}

	asgn, err := a.assignments.Upsert(targetType, targetID, req.BlueprintID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	assignmentMutations.WithLabelValues("upsert").Inc()
	a.recordAssignmentSave(r.Context(), asgn)
	a.publishEvent(r.Context(), assignmentSavedTopic, "saved", asgn.ID, asgn)

	respondJSON(w, http.StatusOK, map[string]any{"assignment": asgn})
}

func (a *API) handleRemoveAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assignmentID")
	if err := a.assignments.Remove(id); err != nil {
		respondDomainError(w, err)
		return
	}
	assignmentMutations.WithLabelValues("remove").Inc()
	a.recordAssignmentDelete(r.Context(), id)
	a.publishEvent(r.Context(), assignmentRemovedTopic, "removed", id, nil)

	respondJSON(w, http.StatusNoContent, nil)
}
