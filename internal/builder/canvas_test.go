package builder

import (
	"errors"
	"testing"
	"time"

	"finboard/internal/catalog"
	"finboard/internal/dashboard"
)

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	return NewCanvas(catalog.Default(), DefaultGridColumns)
}

func TestAddWidget(t *testing.T) {
	c := newTestCanvas(t)

	first, err := c.AddWidget("spend-trend")
	if err != nil {
		t.Fatalf("add spend-trend: %v", err)
	}
	if first.Position != 0 {
		t.Fatalf("first widget position = %d, want 0", first.Position)
	}
	entry, _ := catalog.Default().Lookup("spend-trend")
	if first.ColSpan != entry.DefaultColSpan {
		t.Fatalf("colSpan = %d, want catalog default %d", first.ColSpan, entry.DefaultColSpan)
	}
	if len(first.Config) != 0 {
		t.Fatalf("new widget config not empty: %v", first.Config)
	}
	if !c.Dirty() {
		t.Fatalf("add did not set dirty")
	}

	second, err := c.AddWidget("forecast")
	if err != nil {
		t.Fatalf("add forecast: %v", err)
	}
	if second.Position != 1 {
		t.Fatalf("second widget position = %d, want 1", second.Position)
	}

	if _, err := c.AddWidget("crypto-miner"); !errors.Is(err, dashboard.ErrUnknownWidgetType) {
		t.Fatalf("expected ErrUnknownWidgetType, got %v", err)
	}
	if len(c.Widgets()) != 2 {
		t.Fatalf("failed add changed the canvas")
	}
}

func TestRemoveWidgetKeepsPositions(t *testing.T) {
	c := newTestCanvas(t)
	first, _ := c.AddWidget("spend-trend")
	second, _ := c.AddWidget("forecast")

	if removed := c.RemoveWidget(first.ID); !removed {
		t.Fatalf("remove reported nothing removed")
	}

	remaining := c.Widgets()
	if len(remaining) != 1 {
		t.Fatalf("expected 1 widget, got %d", len(remaining))
	}
	// Positions are stable under removal; only Reorder renumbers.
	if remaining[0].ID != second.ID || remaining[0].Position != 1 {
		t.Fatalf("unexpected survivor: %+v", remaining[0])
	}

	// Double removal is a silent no-op.
	if removed := c.RemoveWidget(first.ID); removed {
		t.Fatalf("second removal reported success")
	}
}

func TestRemoveWidgetClearsSelection(t *testing.T) {
	c := newTestCanvas(t)
	w, _ := c.AddWidget("kpi-tile")
	c.Select(w.ID)
	if c.Selected() != w.ID {
		t.Fatalf("selection not recorded")
	}
	c.RemoveWidget(w.ID)
	if c.Selected() != "" {
		t.Fatalf("selection survived removal")
	}
}

func TestReorder(t *testing.T) {
	c := newTestCanvas(t)
	a, _ := c.AddWidget("spend-trend")
	b, _ := c.AddWidget("forecast")
	d, _ := c.AddWidget("kpi-tile")

	if err := c.Reorder([]string{d.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got := c.Widgets()
	wantOrder := []string{d.ID, a.ID, b.ID}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("slot %d = %s, want %s", i, got[i].ID, id)
		}
		if got[i].Position != i {
			t.Fatalf("slot %d position = %d, want %d", i, got[i].Position, i)
		}
	}
}

func TestReorderRejectsNonPermutations(t *testing.T) {
	c := newTestCanvas(t)
	a, _ := c.AddWidget("spend-trend")
	b, _ := c.AddWidget("forecast")

	tests := []struct {
		name string
		ids  []string
	}{
		{"missing id", []string{a.ID}},
		{"duplicated id", []string{a.ID, a.ID}},
		{"foreign id", []string{a.ID, "not-a-widget"}},
		{"extra id", []string{a.ID, b.ID, "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Reorder(tt.ids); !errors.Is(err, dashboard.ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}
			got := c.Widgets()
			if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
				t.Fatalf("rejected reorder mutated the canvas: %+v", got)
			}
		})
	}
}

func TestSetColumnSpan(t *testing.T) {
	c := newTestCanvas(t)
	w, _ := c.AddWidget("spend-trend")

	if err := c.SetColumnSpan(w.ID, 12); err != nil {
		t.Fatalf("set span: %v", err)
	}
	if got := c.Widgets()[0].ColSpan; got != 12 {
		t.Fatalf("span = %d, want 12", got)
	}

	for _, span := range []int{0, -1, DefaultGridColumns + 1} {
		if err := c.SetColumnSpan(w.ID, span); !errors.Is(err, dashboard.ErrInvalidSpan) {
			t.Fatalf("span %d: expected ErrInvalidSpan, got %v", span, err)
		}
	}
	if err := c.SetColumnSpan("missing", 4); !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateWidgetConfigMerges(t *testing.T) {
	c := newTestCanvas(t)
	w, _ := c.AddWidget("kpi-tile")

	if err := c.UpdateWidgetConfig(w.ID, map[string]any{"variant": "spend"}); err != nil {
		t.Fatalf("first patch: %v", err)
	}
	if err := c.UpdateWidgetConfig(w.ID, map[string]any{"period": "mtd"}); err != nil {
		t.Fatalf("second patch: %v", err)
	}

	cfg := c.Widgets()[0].Config
	if cfg["variant"] != "spend" || cfg["period"] != "mtd" {
		t.Fatalf("patches did not merge: %v", cfg)
	}

	if err := c.UpdateWidgetConfig("missing", map[string]any{"x": 1}); !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRequiresMetadata(t *testing.T) {
	c := newTestCanvas(t)
	if _, err := c.AddWidget("spend-trend"); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err := c.Save(time.Now())
	if !errors.Is(err, dashboard.ErrIncompleteBlueprint) {
		t.Fatalf("expected ErrIncompleteBlueprint, got %v", err)
	}
	// Failed save leaves everything in place.
	if !c.Dirty() {
		t.Fatalf("failed save cleared the dirty flag")
	}
	if len(c.Widgets()) != 1 {
		t.Fatalf("failed save mutated the canvas")
	}

	name := "   "
	persona := dashboard.PersonaFinOps
	c.SetMetadata(MetadataPatch{Name: &name, Persona: &persona})
	if _, err := c.Save(time.Now()); !errors.Is(err, dashboard.ErrIncompleteBlueprint) {
		t.Fatalf("whitespace name accepted: %v", err)
	}
}

func TestSaveNewBlueprint(t *testing.T) {
	c := newTestCanvas(t)
	a, _ := c.AddWidget("spend-trend")
	b, _ := c.AddWidget("forecast")
	if err := c.Reorder([]string{b.ID, a.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	name := "FinOps Command Center"
	persona := dashboard.PersonaFinOps
	desc := "Optimization at a glance"
	c.SetMetadata(MetadataPatch{Name: &name, Persona: &persona, Description: &desc})

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	bp, err := c.Save(now)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if bp.ID == "" {
		t.Fatalf("save did not mint an id")
	}
	if bp.IsSystemDefault {
		t.Fatalf("saved blueprint marked as system default")
	}
	if bp.WidgetCount != 2 || len(bp.Widgets) != 2 {
		t.Fatalf("widget count = %d/%d", bp.WidgetCount, len(bp.Widgets))
	}
	if bp.AssignedUsers != 0 {
		t.Fatalf("new blueprint assigned users = %d", bp.AssignedUsers)
	}
	if bp.Widgets[0].ID != b.ID || bp.Widgets[1].ID != a.ID {
		t.Fatalf("widgets not in position order: %+v", bp.Widgets)
	}
	if !bp.CreatedAt.Equal(now) || !bp.ModifiedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v, want %v", bp.CreatedAt, bp.ModifiedAt, now)
	}

	// Save resets the canvas.
	if c.Dirty() || len(c.Widgets()) != 0 || c.Metadata().Name != "" {
		t.Fatalf("canvas not reset after save")
	}
	if c.Metadata().Tier != dashboard.TierStandard {
		t.Fatalf("reset did not restore the default tier")
	}
}

func TestSaveEditedBlueprintCarriesIdentity(t *testing.T) {
	created := time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)
	existing := dashboard.Blueprint{
		ID:            "bp-finops-default",
		Name:          "FinOps Command Center",
		Persona:       dashboard.PersonaFinOps,
		LicenseTier:   dashboard.TierPremium,
		AssignedUsers: 12,
		Widgets: []dashboard.PlacedWidget{
			{ID: "w1", Type: "spend-trend", ColSpan: 8, Position: 0},
		},
		CreatedAt:  created,
		ModifiedAt: created,
	}

	c := newTestCanvas(t)
	c.LoadBlueprint(existing)
	if c.Dirty() {
		t.Fatalf("loading set the dirty flag")
	}
	if c.Editing() != "bp-finops-default" {
		t.Fatalf("editing id = %q", c.Editing())
	}

	if _, err := c.AddWidget("anomaly-feed"); err != nil {
		t.Fatalf("add: %v", err)
	}

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	bp, err := c.Save(now)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if bp.ID != "bp-finops-default" {
		t.Fatalf("edit minted a new id: %q", bp.ID)
	}
	if !bp.CreatedAt.Equal(created) {
		t.Fatalf("edit lost the creation time: %v", bp.CreatedAt)
	}
	if !bp.ModifiedAt.Equal(now) {
		t.Fatalf("modifiedAt = %v, want %v", bp.ModifiedAt, now)
	}
	if bp.AssignedUsers != 12 {
		t.Fatalf("edit lost the assigned-user count: %d", bp.AssignedUsers)
	}
	if bp.WidgetCount != 2 {
		t.Fatalf("widget count = %d, want 2", bp.WidgetCount)
	}
}

func TestLoadBlueprintCopiesWidgets(t *testing.T) {
	bp := dashboard.Blueprint{
		ID:      "bp1",
		Name:    "X",
		Persona: dashboard.PersonaAdmin,
		Widgets: []dashboard.PlacedWidget{
			{ID: "w1", Type: "kpi-tile", ColSpan: 4, Position: 0, Config: map[string]any{"variant": "spend"}},
		},
	}
	c := newTestCanvas(t)
	c.LoadBlueprint(bp)

	if err := c.UpdateWidgetConfig("w1", map[string]any{"variant": "waste"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if bp.Widgets[0].Config["variant"] != "spend" {
		t.Fatalf("canvas aliases the loaded blueprint's widgets")
	}
}

func TestResetDiscardsEverything(t *testing.T) {
	c := newTestCanvas(t)
	c.LoadBlueprint(dashboard.Blueprint{ID: "bp1", Name: "X", Persona: dashboard.PersonaAdmin})
	if _, err := c.AddWidget("kpi-tile"); err != nil {
		t.Fatalf("add: %v", err)
	}

	c.Reset()

	if len(c.Widgets()) != 0 || c.Dirty() || c.Editing() != "" {
		t.Fatalf("reset left state behind")
	}
	if _, err := c.Save(time.Now()); !errors.Is(err, dashboard.ErrIncompleteBlueprint) {
		t.Fatalf("reset canvas should be unsaveable, got %v", err)
	}
}

func TestSetMetadataPartialMerge(t *testing.T) {
	c := newTestCanvas(t)
	name := "Executive Summary"
	c.SetMetadata(MetadataPatch{Name: &name})
	if !c.Dirty() {
		t.Fatalf("metadata edit did not set dirty")
	}

	persona := dashboard.PersonaFinance
	c.SetMetadata(MetadataPatch{Persona: &persona})

	meta := c.Metadata()
	if meta.Name != name || meta.Persona != persona {
		t.Fatalf("patches did not merge: %+v", meta)
	}
	if meta.Tier != dashboard.TierStandard {
		t.Fatalf("untouched tier changed: %q", meta.Tier)
	}
}
