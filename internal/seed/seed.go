// Package seed provides the system-default blueprints, persona assignments,
// and demo directories loaded when the service starts with an empty store.
package seed

import (
	"fmt"
	"time"

	"finboard/internal/catalog"
	"finboard/internal/dashboard"
)

// seedTime is the nominal creation time of the shipped system defaults.
var seedTime = time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)

var systemLayouts = []struct {
	id          string
	name        string
	persona     dashboard.Persona
	description string
	tier        dashboard.LicenseTier
	widgets     []string
}{
	{
		id:          "bp-admin-default",
		name:        "Platform Overview",
		persona:     dashboard.PersonaAdmin,
		description: "Instance health, adoption, and governance for administrators.",
		tier:        dashboard.TierStandard,
		widgets: []string{
			"kpi-tile", "kpi-tile", "user-adoption", "governance-compliance",
			"spend-trend", "setup-checklist",
		},
	},
	{
		id:          "bp-finops-default",
		name:        "FinOps Command Center",
		persona:     dashboard.PersonaFinOps,
		description: "Optimization opportunities, anomalies, and commitments at a glance.",
		tier:        dashboard.TierPremium,
		widgets: []string{
			"kpi-tile", "kpi-tile", "kpi-tile", "spend-trend", "anomaly-feed",
			"right-sizing", "commitment-health", "coin-score", "idle-resources",
		},
	},
	{
		id:          "bp-devops-default",
		name:        "Engineering Cost View",
		persona:     dashboard.PersonaDevOps,
		description: "Team-scoped spend and right-sizing for engineers.",
		tier:        dashboard.TierStandard,
		widgets: []string{
			"kpi-tile", "kpi-tile", "spend-breakdown", "right-sizing",
			"idle-resources", "budget-actuals",
		},
	},
	{
		id:          "bp-finance-default",
		name:        "Executive Summary",
		persona:     dashboard.PersonaFinance,
		description: "High-level financial overview for finance stakeholders.",
		tier:        dashboard.TierEssentials,
		widgets: []string{
			"kpi-tile", "kpi-tile", "spend-trend", "forecast",
			"cost-by-business-unit", "budget-actuals",
		},
	},
}

// Blueprints builds the four system-default blueprints, one per persona,
// composed from the catalog's default spans.
func Blueprints(cat *catalog.Catalog) ([]dashboard.Blueprint, error) {
	out := make([]dashboard.Blueprint, 0, len(systemLayouts))
	for _, layout := range systemLayouts {
		widgets := make([]dashboard.PlacedWidget, 0, len(layout.widgets))
		for i, widgetType := range layout.widgets {
			entry, ok := cat.Lookup(widgetType)
			if !ok {
				return nil, fmt.Errorf("seed blueprint %s: widget type %q not in catalog", layout.id, widgetType)
			}
			widgets = append(widgets, dashboard.PlacedWidget{
				ID:       fmt.Sprintf("%s-w%d", layout.id, i),
				Type:     widgetType,
				ColSpan:  entry.DefaultColSpan,
				Position: i,
				Config:   map[string]any{},
			})
		}
		out = append(out, dashboard.Blueprint{
			ID:              layout.id,
			Name:            layout.name,
			Persona:         layout.persona,
			Description:     layout.description,
			LicenseTier:     layout.tier,
			IsSystemDefault: true,
			WidgetCount:     len(widgets),
			Widgets:         widgets,
			CreatedAt:       seedTime,
			ModifiedAt:      seedTime,
		})
	}
	return out, nil
}

// Assignments returns the persona-level defaults binding each system
// blueprint to its persona.
func Assignments() []dashboard.Assignment {
	out := make([]dashboard.Assignment, 0, len(systemLayouts))
	for _, layout := range systemLayouts {
		out = append(out, dashboard.Assignment{
			ID:          "asgn-persona-" + string(layout.persona),
			BlueprintID: layout.id,
			TargetType:  dashboard.TargetPersona,
			TargetID:    string(layout.persona),
		})
	}
	return out
}

// Views returns the demo view directory.
func Views() []dashboard.View {
	return []dashboard.View{
		{ID: "all-accounts", Name: "All Accounts", Scope: "Global, all linked provider accounts", Users: 47},
		{ID: "aws-production", Name: "AWS Production", Scope: "AWS prod accounts only", Users: 12},
		{ID: "azure-dev", Name: "Azure Dev", Scope: "Azure dev subscriptions", Users: 8},
		{ID: "finance-reporting", Name: "Finance Reporting", Scope: "All accounts (read-only)", Users: 5},
	}
}

// Users returns the demo user directory.
func Users() []dashboard.User {
	return []dashboard.User{
		{ID: "u-keenan", Name: "Keenan Dolan", Email: "keenan@acmecorp.com", Persona: dashboard.PersonaFinOps, View: "all-accounts", Role: "FinOps Practitioner"},
		{ID: "u-priya", Name: "Priya Raman", Email: "priya@acmecorp.com", Persona: dashboard.PersonaAdmin, View: "all-accounts", Role: "Platform Admin"},
		{ID: "u-marcus", Name: "Marcus Webb", Email: "marcus@acmecorp.com", Persona: dashboard.PersonaDevOps, View: "aws-production", Role: "Staff Engineer"},
		{ID: "u-elena", Name: "Elena Petrova", Email: "elena@acmecorp.com", Persona: dashboard.PersonaDevOps, View: "azure-dev", Role: "SRE"},
		{ID: "u-david", Name: "David Okafor", Email: "david@acmecorp.com", Persona: dashboard.PersonaFinance, View: "finance-reporting", Role: "FP&A Director"},
		{ID: "u-sofia", Name: "Sofia Lindqvist", Email: "sofia@acmecorp.com", Persona: dashboard.PersonaFinance, View: "all-accounts", Role: "Controller"},
	}
}

// Apply loads the system defaults into empty stores. Blueprints or
// assignments already present are left alone so a persisted snapshot wins
// over the shipped seed.
func Apply(cat *catalog.Catalog, blueprints *dashboard.BlueprintStore, assignments *dashboard.AssignmentStore) error {
	seeded, err := Blueprints(cat)
	if err != nil {
		return err
	}
	for _, bp := range seeded {
		if _, ok := blueprints.Get(bp.ID); ok {
			continue
		}
		if err := blueprints.Add(bp); err != nil {
			return fmt.Errorf("seed blueprint %s: %w", bp.ID, err)
		}
	}
	for _, a := range Assignments() {
		if _, ok := assignments.FindFor(a.TargetType, a.TargetID); ok {
			continue
		}
		if err := assignments.Restore(a); err != nil {
			return fmt.Errorf("seed assignment %s: %w", a.ID, err)
		}
	}
	return nil
}
