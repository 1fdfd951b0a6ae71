// Package execctx provides the execution context handed to action handlers.
// It decouples handlers from concrete editor subsystems via interfaces.
package execctx

import "github.com/blockpad/blockpad/internal/store"

// Store is the view of the block store that action handlers consume.
// *store.Store satisfies it; tests substitute fakes.
type Store interface {
	// Selectors
	BlockOrder(rootID string) []string
	SelectedBlockClientID() (string, bool)
	MultiSelectedBlockClientIDs() []string
	HasMultiSelection() bool
	SelectedBlockClientIDs() []string
	BlockRootClientID(id string) (string, bool)
	TemplateLock(id string) store.LockToken
	IsSelectionLocked() bool

	// Actions
	MultiSelect(start, end string)
	SelectBlock(id string)
	ClearSelectedBlock()
	Undo() error
	Redo() error
	RemoveBlocks(ids []string)
	DuplicateBlocks(ids []string) ([]string, error)
	InsertBefore(ids []string) (string, error)
	InsertAfter(ids []string) (string, error)
}

// View is the rendering surface handlers may poke.
type View interface {
	// Redraw schedules a full repaint.
	Redraw()

	// ClearTextSelection drops any native text-selection range in the view.
	ClearTextSelection()

	// ShowMessage displays a transient status message.
	ShowMessage(msg string)
}

// ExecutionContext carries the subsystems an action handler may touch.
type ExecutionContext struct {
	// Store is the block store.
	Store Store

	// View is the rendering surface (may be nil in headless tests).
	View View
}

// New creates an empty execution context.
func New() *ExecutionContext {
	return &ExecutionContext{}
}

// HasStore reports whether a store is attached.
func (ctx *ExecutionContext) HasStore() bool {
	return ctx != nil && ctx.Store != nil
}

// HasView reports whether a view is attached.
func (ctx *ExecutionContext) HasView() bool {
	return ctx != nil && ctx.View != nil
}
