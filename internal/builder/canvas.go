// Package builder implements the blueprint editing surface: a session-scoped
// canvas of placed widgets that is composed under grid constraints and
// finalized into a blueprint on save.
package builder

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"finboard/internal/catalog"
	"finboard/internal/dashboard"
)

// DefaultGridColumns is the width bound of the dashboard grid in span units.
const DefaultGridColumns = 16

// Metadata is the blueprint-level information edited alongside the widget
// layout. Name and persona are save-time preconditions, not edit-time ones.
type Metadata struct {
	Name        string                `json:"name"`
	Persona     dashboard.Persona     `json:"persona"`
	Description string                `json:"description"`
	Tier        dashboard.LicenseTier `json:"tier"`
}

// MetadataPatch carries partial metadata edits. Nil fields are left untouched.
type MetadataPatch struct {
	Name        *string                `json:"name"`
	Persona     *dashboard.Persona     `json:"persona"`
	Description *string                `json:"description"`
	Tier        *dashboard.LicenseTier `json:"tier"`
}

// Canvas is the in-progress editing state for one blueprint. It is owned by a
// single editing session and is not safe for concurrent use; the session
// registry serializes access.
type Canvas struct {
	catalog  *catalog.Catalog
	gridCols int

	widgets  []dashboard.PlacedWidget
	selected string
	dirty    bool
	meta     Metadata

	// Carried over from the loaded blueprint when editing.
	editingID        string
	editingCreatedAt time.Time
	editingAssigned  int
}

// NewCanvas creates an empty canvas backed by the given capability table.
// gridCols <= 0 falls back to DefaultGridColumns.
func NewCanvas(cat *catalog.Catalog, gridCols int) *Canvas {
	if gridCols <= 0 {
		gridCols = DefaultGridColumns
	}
	return &Canvas{
		catalog:  cat,
		gridCols: gridCols,
		meta:     Metadata{Tier: dashboard.TierStandard},
	}
}

// LoadBlueprint seeds the canvas from an existing blueprint for editing. The
// loaded blueprint's identity and creation time are reused on save. Clears
// the dirty flag.
func (c *Canvas) LoadBlueprint(bp dashboard.Blueprint) {
	c.widgets = dashboard.CloneWidgets(bp.Widgets)
	c.selected = ""
	c.dirty = false
	c.meta = Metadata{
		Name:        bp.Name,
		Persona:     bp.Persona,
		Description: bp.Description,
		Tier:        bp.LicenseTier,
	}
	if c.meta.Tier == "" {
		c.meta.Tier = dashboard.TierStandard
	}
	c.editingID = bp.ID
	c.editingCreatedAt = bp.CreatedAt
	c.editingAssigned = bp.AssignedUsers
}

// AddWidget places a new widget of the given type at the end of the canvas,
// spanning the catalog default.
func (c *Canvas) AddWidget(widgetType string) (dashboard.PlacedWidget, error) {
	entry, ok := c.catalog.Lookup(widgetType)
	if !ok {
		return dashboard.PlacedWidget{}, dashboard.ErrUnknownWidgetType
	}

	w := dashboard.PlacedWidget{
		ID:       uuid.NewString(),
		Type:     widgetType,
		ColSpan:  entry.DefaultColSpan,
		Position: len(c.widgets),
		Config:   map[string]any{},
	}
	c.widgets = append(c.widgets, w)
	c.dirty = true
	return w, nil
}

// RemoveWidget deletes a widget by instance id. Removing an id that is not on
// the canvas is a no-op so repeated removals cannot corrupt state. Remaining
// positions are left as-is; only Reorder renumbers.
func (c *Canvas) RemoveWidget(instanceID string) bool {
	for i, w := range c.widgets {
		if w.ID == instanceID {
			c.widgets = append(c.widgets[:i], c.widgets[i+1:]...)
			if c.selected == instanceID {
				c.selected = ""
			}
			c.dirty = true
			return true
		}
	}
	return false
}

// Reorder reassigns positions 0..n-1 following the given instance id order.
// The list must be a permutation of the current canvas ids; otherwise the
// canvas is left unchanged.
func (c *Canvas) Reorder(orderedIDs []string) error {
	if len(orderedIDs) != len(c.widgets) {
		return dashboard.ErrInvalidOrder
	}

	byID := make(map[string]int, len(c.widgets))
	for i, w := range c.widgets {
		byID[w.ID] = i
	}

	seen := make(map[string]bool, len(orderedIDs))
	reordered := make([]dashboard.PlacedWidget, 0, len(orderedIDs))
	for pos, id := range orderedIDs {
		idx, ok := byID[id]
		if !ok || seen[id] {
			return dashboard.ErrInvalidOrder
		}
		seen[id] = true
		w := c.widgets[idx]
		w.Position = pos
		reordered = append(reordered, w)
	}

	c.widgets = reordered
	c.dirty = true
	return nil
}

// SetColumnSpan updates a widget's grid span within the 1..gridCols bound.
func (c *Canvas) SetColumnSpan(instanceID string, span int) error {
	if span < 1 || span > c.gridCols {
		return dashboard.ErrInvalidSpan
	}
	for i := range c.widgets {
		if c.widgets[i].ID == instanceID {
			c.widgets[i].ColSpan = span
			c.dirty = true
			return nil
		}
	}
	return dashboard.ErrNotFound
}

// UpdateWidgetConfig merges patch into the widget's per-instance
// configuration. The config shape is widget-specific and not validated here.
func (c *Canvas) UpdateWidgetConfig(instanceID string, patch map[string]any) error {
	for i := range c.widgets {
		if c.widgets[i].ID != instanceID {
			continue
		}
		if c.widgets[i].Config == nil {
			c.widgets[i].Config = make(map[string]any, len(patch))
		}
		for k, v := range patch {
			c.widgets[i].Config[k] = v
		}
		c.dirty = true
		return nil
	}
	return dashboard.ErrNotFound
}

// Select marks a widget as the current editing target. Selection is UI state
// and does not dirty the canvas. Selecting an unknown id clears selection.
func (c *Canvas) Select(instanceID string) {
	for _, w := range c.widgets {
		if w.ID == instanceID {
			c.selected = instanceID
			return
		}
	}
	c.selected = ""
}

// Selected returns the currently selected widget instance id, if any.
func (c *Canvas) Selected() string { return c.selected }

// SetMetadata merges the patch into the blueprint metadata.
func (c *Canvas) SetMetadata(patch MetadataPatch) {
	changed := false
	if patch.Name != nil {
		c.meta.Name = *patch.Name
		changed = true
	}
	if patch.Persona != nil {
		c.meta.Persona = *patch.Persona
		changed = true
	}
	if patch.Description != nil {
		c.meta.Description = *patch.Description
		changed = true
	}
	if patch.Tier != nil {
		c.meta.Tier = *patch.Tier
		changed = true
	}
	if changed {
		c.dirty = true
	}
}

// Metadata returns the current metadata being edited.
func (c *Canvas) Metadata() Metadata { return c.meta }

// Widgets returns a copy of the canvas widgets in canvas order.
func (c *Canvas) Widgets() []dashboard.PlacedWidget {
	return dashboard.CloneWidgets(c.widgets)
}

// Dirty reports whether the canvas has uncommitted edits. The host UI uses
// this to gate save and navigation affordances; the canvas itself does not
// enforce anything on it.
func (c *Canvas) Dirty() bool { return c.dirty }

// Editing reports the id of the blueprint being edited, empty for a new one.
func (c *Canvas) Editing() string { return c.editingID }

// Save finalizes the canvas into a blueprint value and resets the canvas to
// empty. A fresh id is minted for a new blueprint; an edit keeps the loaded
// id, creation time, and assigned-user count. On failure the canvas,
// including its dirty flag, is left untouched.
func (c *Canvas) Save(now time.Time) (dashboard.Blueprint, error) {
	if strings.TrimSpace(c.meta.Name) == "" || c.meta.Persona == "" {
		return dashboard.Blueprint{}, dashboard.ErrIncompleteBlueprint
	}

	widgets := dashboard.CloneWidgets(c.widgets)
	sort.SliceStable(widgets, func(i, j int) bool {
		return widgets[i].Position < widgets[j].Position
	})

	bp := dashboard.Blueprint{
		ID:              c.editingID,
		Name:            c.meta.Name,
		Persona:         c.meta.Persona,
		Description:     c.meta.Description,
		LicenseTier:     c.meta.Tier,
		IsSystemDefault: false,
		WidgetCount:     len(widgets),
		AssignedUsers:   c.editingAssigned,
		Widgets:         widgets,
		CreatedAt:       c.editingCreatedAt,
		ModifiedAt:      now.UTC(),
	}
	if bp.ID == "" {
		bp.ID = uuid.NewString()
	}
	if bp.CreatedAt.IsZero() {
		bp.CreatedAt = bp.ModifiedAt
	}
	if bp.LicenseTier == "" {
		bp.LicenseTier = dashboard.TierStandard
	}

	c.Reset()
	return bp, nil
}

// Reset discards all uncommitted state unconditionally.
func (c *Canvas) Reset() {
	c.widgets = nil
	c.selected = ""
	c.dirty = false
	c.meta = Metadata{Tier: dashboard.TierStandard}
	c.editingID = ""
	c.editingCreatedAt = time.Time{}
	c.editingAssigned = 0
}
