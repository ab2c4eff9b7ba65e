package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"finboard/internal/builder"
	"finboard/internal/dashboard"
)

// sessionState is the wire shape of a builder canvas.
type sessionState struct {
	ID       string                   `json:"id"`
	Widgets  []dashboard.PlacedWidget `json:"widgets"`
	Selected string                   `json:"selected"`
	Dirty    bool                     `json:"dirty"`
	Metadata builder.Metadata         `json:"metadata"`
	Editing  string                   `json:"editing"`
}

func snapshotState(id string, c *builder.Canvas) sessionState {
	return sessionState{
		ID:       id,
		Widgets:  c.Widgets(),
		Selected: c.Selected(),
		Dirty:    c.Dirty(),
		Metadata: c.Metadata(),
		Editing:  c.Editing(),
	}
}

// respondSession runs fn against the session canvas and, on success, responds
// with the canvas state.
func (a *API) respondSession(w http.ResponseWriter, sessionID string, fn func(*builder.Canvas) error) {
	var state sessionState
	err := a.sessions.With(sessionID, func(c *builder.Canvas) error {
		if fn != nil {
			if err := fn(c); err != nil {
				return err
			}
		}
		state = snapshotState(sessionID, c)
		return nil
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session": state})
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlueprintID string `json:"blueprintId"`
	}
	// An empty body starts a blank session; chunked requests carry no
	// Content-Length, so only a decode that hits EOF means "no payload".
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var id string
	if req.BlueprintID != "" {
		bp, ok := a.blueprints.Get(req.BlueprintID)
		if !ok {
			respondDomainError(w, dashboard.ErrNotFound)
			return
		}
		id = a.sessions.CreateFrom(bp)
	} else {
		id = a.sessions.Create()
	}

	var state sessionState
	if err := a.sessions.With(id, func(c *builder.Canvas) error {
		state = snapshotState(id, c)
		return nil
	}); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"session": state})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	a.respondSession(w, chi.URLParam(r, "sessionID"), nil)
}

func (a *API) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	a.sessions.Discard(chi.URLParam(r, "sessionID"))
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleAddWidget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		_, err := c.AddWidget(req.Type)
		return err
	})
}

func (a *API) handleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetID")
	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		// Removing an absent widget is a deliberate no-op.
		c.RemoveWidget(widgetID)
		return nil
	})
}

func (a *API) handleSetSpan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ColSpan int `json:"colSpan"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	widgetID := chi.URLParam(r, "widgetID")
	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		return c.SetColumnSpan(widgetID, req.ColSpan)
	})
}

func (a *API) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	widgetID := chi.URLParam(r, "widgetID")
	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		return c.UpdateWidgetConfig(widgetID, patch)
	})
}

func (a *API) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		return c.Reorder(req.Order)
	})
}

func (a *API) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WidgetID string `json:"widgetId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		c.Select(req.WidgetID)
		return nil
	})
}

func (a *API) handlePatchMetadata(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Persona     *string `json:"persona"`
		Description *string `json:"description"`
		Tier        *string `json:"tier"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	patch := builder.MetadataPatch{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Persona != nil {
		persona, err := dashboard.ParsePersona(*req.Persona)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		patch.Persona = &persona
	}
	if req.Tier != nil {
		tier, err := dashboard.ParseLicenseTier(*req.Tier)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		patch.Tier = &tier
	}

	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		c.SetMetadata(patch)
		return nil
	})
}

// handleSaveSession finalizes the canvas into the blueprint store. A session
// editing an existing blueprint updates it; otherwise a new record is added.
func (a *API) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var saved dashboard.Blueprint
	var isEdit bool
	err := a.sessions.With(sessionID, func(c *builder.Canvas) error {
		isEdit = c.Editing() != ""
		bp, err := c.Save(time.Now())
		if err != nil {
			return err
		}
		saved = bp
		return nil
	})
	if err != nil {
		builderSaves.WithLabelValues("rejected").Inc()
		respondDomainError(w, err)
		return
	}

	if isEdit {
		// The canvas does not track the system-default flag; carry it over so
		// editing a shipped default does not strip its protection.
		if existing, ok := a.blueprints.Get(saved.ID); ok {
			saved.IsSystemDefault = existing.IsSystemDefault
		}
		err = a.blueprints.Update(saved)
		if errors.Is(err, dashboard.ErrNotFound) {
			// The record was deleted while it was being edited; keep the
			// operator's work by re-adding it under the same id.
			err = a.blueprints.Add(saved)
		}
	} else {
		err = a.blueprints.Add(saved)
	}
	if err != nil {
		builderSaves.WithLabelValues("rejected").Inc()
		respondDomainError(w, err)
		return
	}
	builderSaves.WithLabelValues("saved").Inc()
	blueprintMutations.WithLabelValues("save").Inc()
	a.recordBlueprintSave(r.Context(), saved)
	a.publishEvent(r.Context(), blueprintSavedTopic, "saved", saved.ID, saved)

	respondJSON(w, http.StatusOK, map[string]any{"blueprint": saved})
}

func (a *API) handleResetSession(w http.ResponseWriter, r *http.Request) {
	a.respondSession(w, chi.URLParam(r, "sessionID"), func(c *builder.Canvas) error {
		c.Reset()
		return nil
	})
}
