package server

import (
	"context"

	"finboard/internal/dashboard"
)

// The in-memory stores stay authoritative; a failed snapshot write is logged
// and the request still succeeds.

func (a *API) recordBlueprintSave(ctx context.Context, bp dashboard.Blueprint) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.SaveBlueprint(ctx, bp); err != nil {
		a.log.Error().Err(err).Str("blueprint_id", bp.ID).Msg("snapshot blueprint")
	}
}

func (a *API) recordBlueprintDelete(ctx context.Context, id string) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.DeleteBlueprint(ctx, id); err != nil {
		a.log.Error().Err(err).Str("blueprint_id", id).Msg("snapshot blueprint delete")
	}
}

func (a *API) recordAssignmentSave(ctx context.Context, asgn dashboard.Assignment) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.SaveAssignment(ctx, asgn); err != nil {
		a.log.Error().Err(err).Str("assignment_id", asgn.ID).Msg("snapshot assignment")
	}
}

func (a *API) recordAssignmentDelete(ctx context.Context, id string) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.DeleteAssignment(ctx, id); err != nil {
		a.log.Error().Err(err).Str("assignment_id", id).Msg("snapshot assignment delete")
	}
}
