// Package block provides handlers for structural block operations:
// removal, duplication, and adjacent insertion.
package block

import (
	"errors"

	"github.com/blockpad/blockpad/internal/dispatcher/execctx"
	"github.com/blockpad/blockpad/internal/dispatcher/handler"
	"github.com/blockpad/blockpad/internal/input"
	"github.com/blockpad/blockpad/internal/store"
)

// Action names for block operations.
const (
	ActionRemoveSelection = "block.removeSelection" // Backspace/Delete, access+z
	ActionDuplicate       = "block.duplicate"       // primary+shift+d
	ActionInsertBefore    = "block.insertBefore"    // primary+alt+t
	ActionInsertAfter     = "block.insertAfter"     // primary+alt+y
)

// BlockHandler handles structural block actions.
type BlockHandler struct{}

// NewBlockHandler creates a new block handler.
func NewBlockHandler() *BlockHandler {
	return &BlockHandler{}
}

// Namespace returns the block namespace.
func (h *BlockHandler) Namespace() string {
	return "block"
}

// CanHandle returns true if this handler can process the action.
func (h *BlockHandler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionRemoveSelection, ActionDuplicate, ActionInsertBefore, ActionInsertAfter:
		return true
	}
	return false
}

// HandleAction processes a block action.
func (h *BlockHandler) HandleAction(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	if !ctx.HasStore() {
		return handler.Errorf("block: no store attached")
	}

	switch action.Name {
	case ActionRemoveSelection:
		return h.removeSelection(ctx)
	case ActionDuplicate:
		return h.duplicate(ctx)
	case ActionInsertBefore:
		return h.insertBefore(ctx)
	case ActionInsertAfter:
		return h.insertAfter(ctx)
	default:
		return handler.Errorf("unknown block action: %s", action.Name)
	}
}

// removeSelection removes the selected blocks. A template lock anywhere in
// the selection's ancestry vetoes removal of the whole selection.
func (h *BlockHandler) removeSelection(ctx *execctx.ExecutionContext) handler.Result {
	ids := ctx.Store.SelectedBlockClientIDs()
	if len(ids) == 0 {
		return handler.NoOp()
	}

	if ctx.Store.IsSelectionLocked() {
		return handler.NoOpWithMessage("selection is locked")
	}

	ctx.Store.RemoveBlocks(ids)
	return handler.Success().WithRedraw()
}

func (h *BlockHandler) duplicate(ctx *execctx.ExecutionContext) handler.Result {
	ids := ctx.Store.SelectedBlockClientIDs()
	if len(ids) == 0 {
		return handler.NoOp()
	}

	newIDs, err := ctx.Store.DuplicateBlocks(ids)
	if errors.Is(err, store.ErrSelectionLocked) {
		return handler.NoOpWithMessage("selection is locked")
	}
	if err != nil || len(newIDs) == 0 {
		return handler.NoOp()
	}
	return handler.Success().WithRedraw()
}

func (h *BlockHandler) insertBefore(ctx *execctx.ExecutionContext) handler.Result {
	ids := ctx.Store.SelectedBlockClientIDs()
	if len(ids) == 0 {
		return handler.NoOp()
	}
	return h.insertResult(ctx.Store.InsertBefore(ids))
}

func (h *BlockHandler) insertAfter(ctx *execctx.ExecutionContext) handler.Result {
	ids := ctx.Store.SelectedBlockClientIDs()
	if len(ids) == 0 {
		return handler.NoOp()
	}
	return h.insertResult(ctx.Store.InsertAfter(ids))
}

func (h *BlockHandler) insertResult(id string, err error) handler.Result {
	if errors.Is(err, store.ErrSelectionLocked) {
		return handler.NoOpWithMessage("selection is locked")
	}
	if err != nil || id == "" {
		return handler.NoOp()
	}
	return handler.Success().WithRedraw()
}
