package dashboard

// Source names the assignment level that produced a resolution.
type Source string

const (
	SourceUser    Source = "user"
	SourceView    Source = "view"
	SourcePersona Source = "persona"
	SourceNone    Source = "none"
)

// Resolution is the outcome of resolving one user's effective blueprint.
// Blueprint is nil when Source is SourceNone.
type Resolution struct {
	Blueprint *Blueprint `json:"blueprint"`
	Source    Source     `json:"source"`
}

// Resolve computes the single effective blueprint for a user: a user-level
// assignment wins over a view-level one, which wins over a persona-level one.
// First match wins; levels are never merged.
//
// An assignment whose blueprint no longer exists is treated as absent at its
// level so resolution falls through rather than erroring. When the inputs
// improperly contain several assignments for one target pair, the first in
// slice order is taken; the stores prevent that state, this is a defensive
// fallback for hand-built inputs.
//
// Pure function of its arguments: no caching, safe to call on every request.
func Resolve(user User, assignments []Assignment, blueprints []Blueprint) Resolution {
	byID := make(map[string]*Blueprint, len(blueprints))
	for i := range blueprints {
		byID[blueprints[i].ID] = &blueprints[i]
	}

	levels := []struct {
		target TargetType
		id     string
		source Source
	}{
		{TargetUser, user.ID, SourceUser},
		{TargetView, user.View, SourceView},
		{TargetPersona, string(user.Persona), SourcePersona},
	}

	for _, level := range levels {
		if level.id == "" {
			continue
		}
		for _, a := range assignments {
			if a.TargetType != level.target || a.TargetID != level.id {
				continue
			}
			if bp, ok := byID[a.BlueprintID]; ok {
				resolved := bp.Clone()
				return Resolution{Blueprint: &resolved, Source: level.source}
			}
			// Dangling reference: fall through to the next level.
			break
		}
	}

	return Resolution{Source: SourceNone}
}
