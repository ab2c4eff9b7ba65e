package server

import (
	"context"

	"finboard/pkg/bus"
)

const (
	blueprintSavedTopic    = "finboard.blueprints.saved"
	blueprintRemovedTopic  = "finboard.blueprints.removed"
	assignmentSavedTopic   = "finboard.assignments.saved"
	assignmentRemovedTopic = "finboard.assignments.removed"
)

func (a *API) publishEvent(ctx context.Context, subject, op, id string, record any) {
	if a.bus == nil || subject == "" {
		return
	}
	ev := bus.Event{Op: op, ID: id, Record: record}
	if err := a.bus.Publish(ctx, subject, ev); err != nil {
		a.log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}
