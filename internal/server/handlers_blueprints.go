package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finboard/internal/dashboard"
)

type widgetRequest struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	ColSpan int            `json:"colSpan"`
	Config  map[string]any `json:"config"`
}

type blueprintRequest struct {
	Name        string          `json:"name"`
	Persona     string          `json:"persona"`
	Description string          `json:"description"`
	LicenseTier string          `json:"licenseTier"`
	Widgets     []widgetRequest `json:"widgets"`
}

// buildWidgets validates the requested placements against the catalog and the
// grid bound. Request order is the render order; positions are assigned 0..n-1.
func (a *API) buildWidgets(reqs []widgetRequest) ([]dashboard.PlacedWidget, error) {
	out := make([]dashboard.PlacedWidget, 0, len(reqs))
	for i, req := range reqs {
		entry, ok := a.catalog.Lookup(req.Type)
		if !ok {
			return nil, dashboard.ErrUnknownWidgetType
		}
		span := req.ColSpan
		if span == 0 {
			span = entry.DefaultColSpan
		}
		if span < 1 || span > a.gridCols {
			return nil, dashboard.ErrInvalidSpan
		}
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		config := req.Config
		if config == nil {
			config = map[string]any{}
		}
		out = append(out, dashboard.PlacedWidget{
			ID:       id,
			Type:     req.Type,
			ColSpan:  span,
			Position: i,
			Config:   config,
		})
	}
	return out, nil
}

func (a *API) blueprintFromRequest(req blueprintRequest) (dashboard.Blueprint, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return dashboard.Blueprint{}, errors.New("name is required")
	}
	persona, err := dashboard.ParsePersona(req.Persona)
	if err != nil {
		return dashboard.Blueprint{}, err
	}
	tier := dashboard.TierStandard
	if req.LicenseTier != "" {
		tier, err = dashboard.ParseLicenseTier(req.LicenseTier)
		if err != nil {
			return dashboard.Blueprint{}, err
		}
	}
	widgets, err := a.buildWidgets(req.Widgets)
	if err != nil {
		return dashboard.Blueprint{}, err
	}
	return dashboard.Blueprint{
		Name:        req.Name,
		Persona:     persona,
		Description: req.Description,
		LicenseTier: tier,
		WidgetCount: len(widgets),
		Widgets:     widgets,
	}, nil
}

func (a *API) handleListBlueprints(w http.ResponseWriter, r *http.Request) {
	var filter dashboard.Filter
	if p := r.URL.Query().Get("persona"); p != "" {
		persona, err := dashboard.ParsePersona(p)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		filter.Persona = persona
	}
	filter.Query = r.URL.Query().Get("q")

	respondJSON(w, http.StatusOK, map[string]any{"blueprints": a.blueprints.List(filter)})
}

func (a *API) handleCreateBlueprint(w http.ResponseWriter, r *http.Request) {
	var req blueprintRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	bp, err := a.blueprintFromRequest(req)
	if err != nil {
		if statusFor(err) != http.StatusInternalServerError {
			respondDomainError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, err)
		return
	}

	now := time.Now().UTC()
	bp.ID = uuid.NewString()
	bp.CreatedAt = now
	bp.ModifiedAt = now

	if err := a.blueprints.Add(bp); err != nil {
		respondDomainError(w, err)
		return
	}
	blueprintMutations.WithLabelValues("create").Inc()
	a.recordBlueprintSave(r.Context(), bp)
	a.publishEvent(r.Context(), blueprintSavedTopic, "saved", bp.ID, bp)

	respondJSON(w, http.StatusCreated, map[string]any{"blueprint": bp})
}

func (a *API) handleGetBlueprint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "blueprintID")
	bp, ok := a.blueprints.Get(id)
	if !ok {
		respondDomainError(w, dashboard.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"blueprint": bp})
}

func (a *API) handleUpdateBlueprint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "blueprintID")
	existing, ok := a.blueprints.Get(id)
	if !ok {
		respondDomainError(w, dashboard.ErrNotFound)
		return
	}

	var req blueprintRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	bp, err := a.blueprintFromRequest(req)
	if err != nil {
		if statusFor(err) != http.StatusInternalServerError {
			respondDomainError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, err)
		return
	}

	// Identity and provenance carry over; the payload replaces the rest.
	bp.ID = existing.ID
	bp.IsSystemDefault = existing.IsSystemDefault
	bp.AssignedUsers = existing.AssignedUsers
	bp.CreatedAt = existing.CreatedAt
	bp.ModifiedAt = time.Now().UTC()

	if err := a.blueprints.Update(bp); err != nil {
		respondDomainError(w, err)
		return
	}
	blueprintMutations.WithLabelValues("update").Inc()
	a.recordBlueprintSave(r.Context(), bp)
	a.publishEvent(r.Context(), blueprintSavedTopic, "saved", bp.ID, bp)

	respondJSON(w, http.StatusOK, map[string]any{"blueprint": bp})
}

func (a *API) handleDeleteBlueprint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "blueprintID")
	if err := a.blueprints.Remove(id); err != nil {
		respondDomainError(w, err)
		return
	}
	blueprintMutations.WithLabelValues("delete").Inc()
	a.recordBlueprintDelete(r.Context(), id)
	a.publishEvent(r.Context(), blueprintRemovedTopic, "removed", id, nil)

	respondJSON(w, http.StatusNoContent, nil)
}
