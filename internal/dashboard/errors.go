package dashboard

import "errors"

var (
	// ErrNotFound indicates a referenced record id is absent.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID indicates an id collision on create.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrProtectedRecord indicates a forbidden mutation of a system-default record.
	ErrProtectedRecord = errors.New("record is protected")
	// ErrUnknownWidgetType indicates a widget type absent from the catalog.
	ErrUnknownWidgetType = errors.New("unknown widget type")
	// ErrInvalidOrder indicates a reorder list that is not a permutation of the canvas.
	ErrInvalidOrder = errors.New("invalid widget order")
	// ErrInvalidSpan indicates a column span outside the grid bounds.
	ErrInvalidSpan = errors.New("invalid column span")
	// ErrIncompleteBlueprint indicates a save attempted without required metadata.
	ErrIncompleteBlueprint = errors.New("blueprint name and persona are required")
)
