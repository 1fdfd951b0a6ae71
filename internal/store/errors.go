package store

import "errors"

// Store errors.
var (
	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrBlockNotFound indicates a block client ID is unknown.
	ErrBlockNotFound = errors.New("block not found")

	// ErrSelectionLocked indicates a structural edit was refused because a
	// template lock covers part of the selection.
	ErrSelectionLocked = errors.New("selection is template-locked")
)
