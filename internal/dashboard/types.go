package dashboard

import (
	"fmt"
	"time"
)

// Persona is a role-based user category driving default dashboard content.
// The set is fixed by the host system.
type Persona string

const (
	PersonaAdmin   Persona = "admin"
	PersonaFinOps  Persona = "finops"
	PersonaDevOps  Persona = "devops"
	PersonaFinance Persona = "finance"
)

// Personas lists every valid persona in display order.
var Personas = []Persona{PersonaAdmin, PersonaFinOps, PersonaDevOps, PersonaFinance}

// ParsePersona validates s against the known persona tags.
func ParsePersona(s string) (Persona, error) {
	for _, p := range Personas {
		if Persona(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown persona %q", s)
}

// LicenseTier gates which widgets and blueprints a customer plan includes.
type LicenseTier string

const (
	TierEssentials LicenseTier = "essentials"
	TierStandard   LicenseTier = "standard"
	TierPremium    LicenseTier = "premium"
)

// ParseLicenseTier validates s against the known tiers.
func ParseLicenseTier(s string) (LicenseTier, error) {
	switch LicenseTier(s) {
	case TierEssentials, TierStandard, TierPremium:
		return LicenseTier(s), nil
	}
	return "", fmt.Errorf("unknown license tier %q", s)
}

// TargetType names the level an assignment binds at. Priority is a fixed
// function of the level: a user override always beats a view override, which
// always beats a persona default.
type TargetType string

const (
	TargetPersona TargetType = "persona"
	TargetView    TargetType = "view"
	TargetUser    TargetType = "user"
)

// Priority returns the resolution priority for the target type. Higher wins.
// Unknown types return 0.
func (t TargetType) Priority() int {
	switch t {
	case TargetPersona:
		return 1
	case TargetView:
		return 2
	case TargetUser:
		return 3
	}
	return 0
}

// ParseTargetType validates s against the known assignment levels.
func ParseTargetType(s string) (TargetType, error) {
	if t := TargetType(s); t.Priority() > 0 {
		return t, nil
	}
	return "", fmt.Errorf("unknown target type %q", s)
}

// User is supplied by the host identity system. The core never mutates one.
type User struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Persona Persona `json:"persona"`
	View    string  `json:"view"`
	Role    string  `json:"role"`
}

// View is a scoping boundary over underlying data. Opaque to resolution
// beyond its ID; the remaining fields exist for operator listings.
type View struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Scope string `json:"scope"`
	Users int    `json:"users"`
}

// PlacedWidget is one widget instance inside a blueprint: a widget type plus
// its grid span, render position, and per-instance configuration.
type PlacedWidget struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	ColSpan  int            `json:"colSpan"`
	Position int            `json:"position"`
	Config   map[string]any `json:"config"`
}

func (w PlacedWidget) clone() PlacedWidget {
	out := w
	if w.Config != nil {
		out.Config = make(map[string]any, len(w.Config))
		for k, v := range w.Config {
			out.Config[k] = v
		}
	}
	return out
}

// CloneWidgets deep-copies a placed-widget list so callers cannot alias store
// or canvas state through the returned slice.
func CloneWidgets(widgets []PlacedWidget) []PlacedWidget {
	if widgets == nil {
		return nil
	}
	out := make([]PlacedWidget, len(widgets))
	for i, w := range widgets {
		out[i] = w.clone()
	}
	return out
}

// Blueprint is a named, ordered collection of widget placements representing
// one dashboard layout. It is a value object: stores replace whole records.
type Blueprint struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Persona         Persona        `json:"persona"`
	Description     string         `json:"description"`
	LicenseTier     LicenseTier    `json:"licenseTier"`
	IsSystemDefault bool           `json:"isSystemDefault"`
	WidgetCount     int            `json:"widgetCount"`
	AssignedUsers   int            `json:"assignedUsers"`
	Widgets         []PlacedWidget `json:"widgets"`
	CreatedAt       time.Time      `json:"createdAt"`
	ModifiedAt      time.Time      `json:"modifiedAt"`
}

// Clone returns a deep copy of the blueprint.
func (b Blueprint) Clone() Blueprint {
	out := b
	out.Widgets = CloneWidgets(b.Widgets)
	return out
}

// Assignment binds a blueprint to a target at the priority implied by the
// target type. Priority is never stored, only derived.
type Assignment struct {
	ID          string     `json:"id"`
	BlueprintID string     `json:"blueprintId"`
	TargetType  TargetType `json:"targetType"`
	TargetID    string     `json:"targetId"`
}

// Priority reports the resolution priority of the assignment's level.
func (a Assignment) Priority() int { return a.TargetType.Priority() }
