package dashboard

import (
	"errors"
	"testing"
)

func TestBlueprintStoreAdd(t *testing.T) {
	store := NewBlueprintStore()

	if err := store.Add(testBlueprint("bp1", PersonaFinOps)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(testBlueprint("bp1", PersonaAdmin)); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if err := store.Add(Blueprint{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 blueprint, got %d", store.Len())
	}
}

func TestBlueprintStoreUpdateReplacesWholesale(t *testing.T) {
	store := NewBlueprintStore()
	bp := testBlueprint("bp1", PersonaFinOps)
	bp.Widgets = []PlacedWidget{{ID: "w1", Type: "spend-trend", ColSpan: 8}}
	if err := store.Add(bp); err != nil {
		t.Fatalf("add: %v", err)
	}

	replacement := testBlueprint("bp1", PersonaFinance)
	replacement.Description = "replaced"
	if err := store.Update(replacement); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok := store.Get("bp1")
	if !ok {
		t.Fatalf("blueprint missing after update")
	}
	if got.Persona != PersonaFinance || got.Description != "replaced" {
		t.Fatalf("update was not wholesale: %+v", got)
	}
	if len(got.Widgets) != 0 {
		t.Fatalf("widgets from the old record survived the replacement")
	}

	if err := store.Update(testBlueprint("missing", PersonaAdmin)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBlueprintStoreRemove(t *testing.T) {
	store := NewBlueprintStore()
	system := testBlueprint("bp-system", PersonaAdmin)
	system.IsSystemDefault = true
	if err := store.Add(system); err != nil {
		t.Fatalf("add system: %v", err)
	}
	if err := store.Add(testBlueprint("bp-custom", PersonaFinOps)); err != nil {
		t.Fatalf("add custom: %v", err)
	}

	if err := store.Remove("bp-system"); !errors.Is(err, ErrProtectedRecord) {
		t.Fatalf("expected ErrProtectedRecord, got %v", err)
	}
	if _, ok := store.Get("bp-system"); !ok {
		t.Fatalf("protected blueprint was removed")
	}

	if err := store.Remove("bp-custom"); err != nil {
		t.Fatalf("remove custom: %v", err)
	}
	if err := store.Remove("bp-custom"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestBlueprintStoreRemoveDoesNotCascade(t *testing.T) {
	blueprints := NewBlueprintStore()
	assignments := NewAssignmentStore()

	if err := blueprints.Add(testBlueprint("bp1", PersonaFinOps)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := assignments.Upsert(TargetPersona, "finops", "bp1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := blueprints.Remove("bp1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// The assignment dangles but is preserved.
	if assignments.Len() != 1 {
		t.Fatalf("assignment was deleted alongside its blueprint")
	}

	user := User{ID: "u1", Persona: PersonaFinOps}
	res := Resolve(user, assignments.List(), blueprints.List(Filter{}))
	if res.Source != SourceNone || res.Blueprint != nil {
		t.Fatalf("dangling assignment should resolve to none, got %+v", res)
	}
}

func TestBlueprintStoreList(t *testing.T) {
	store := NewBlueprintStore()
	a := testBlueprint("bp1", PersonaFinOps)
	a.Name = "Alpha"
	a.Description = "cost overview"
	b := testBlueprint("bp2", PersonaFinance)
	b.Name = "Beta"
	b.Description = "executive summary"
	for _, bp := range []Blueprint{b, a} {
		if err := store.Add(bp); err != nil {
			t.Fatalf("add %s: %v", bp.ID, err)
		}
	}

	all := store.List(Filter{})
	if len(all) != 2 || all[0].Name != "Alpha" || all[1].Name != "Beta" {
		t.Fatalf("expected name-ordered listing, got %+v", all)
	}

	byPersona := store.List(Filter{Persona: PersonaFinance})
	if len(byPersona) != 1 || byPersona[0].ID != "bp2" {
		t.Fatalf("persona filter failed: %+v", byPersona)
	}

	byQuery := store.List(Filter{Query: "EXECUTIVE"})
	if len(byQuery) != 1 || byQuery[0].ID != "bp2" {
		t.Fatalf("query filter failed: %+v", byQuery)
	}
}

func TestBlueprintStoreIsolatesCallerMemory(t *testing.T) {
	store := NewBlueprintStore()
	bp := testBlueprint("bp1", PersonaFinOps)
	bp.Widgets = []PlacedWidget{{ID: "w1", Type: "forecast", ColSpan: 8, Config: map[string]any{}}}
	if err := store.Add(bp); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Mutating the value handed to Add must not affect the store.
	bp.Widgets[0].Type = "mutated"
	got, _ := store.Get("bp1")
	if got.Widgets[0].Type != "forecast" {
		t.Fatalf("store shares memory with caller input")
	}

	// Mutating a value handed out by Get must not affect the store.
	got.Widgets[0].Config["x"] = 1
	again, _ := store.Get("bp1")
	if len(again.Widgets[0].Config) != 0 {
		t.Fatalf("store shares memory with caller output")
	}
}
