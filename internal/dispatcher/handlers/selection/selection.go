// Package selection provides handlers for block selection operations.
package selection

import (
	"github.com/blockpad/blockpad/internal/dispatcher/execctx"
	"github.com/blockpad/blockpad/internal/dispatcher/handler"
	"github.com/blockpad/blockpad/internal/input"
)

// Action names for selection operations.
const (
	ActionSelectAll = "selection.selectAll" // primary+a - select all top-level blocks
	ActionClear     = "selection.clear"     // Escape - clear multi-selection
	ActionSelect    = "selection.select"    // select a single block by id
)

// SelectionHandler handles block selection actions.
type SelectionHandler struct{}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler() *SelectionHandler {
	return &SelectionHandler{}
}

// Namespace returns the selection namespace.
func (h *SelectionHandler) Namespace() string {
	return "selection"
}

// CanHandle returns true if this handler can process the action.
func (h *SelectionHandler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionSelectAll, ActionClear, ActionSelect:
		return true
	}
	return false
}

// HandleAction processes a selection action.
func (h *SelectionHandler) HandleAction(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	if !ctx.HasStore() {
		return handler.Errorf("selection: no store attached")
	}

	switch action.Name {
	case ActionSelectAll:
		return h.selectAll(ctx)
	case ActionClear:
		return h.clear(ctx)
	case ActionSelect:
		return h.selectBlock(ctx, action.GetString("clientId"))
	default:
		return handler.Errorf("unknown selection action: %s", action.Name)
	}
}

// selectAll multi-selects the full range of top-level blocks, first to last.
func (h *SelectionHandler) selectAll(ctx *execctx.ExecutionContext) handler.Result {
	order := ctx.Store.BlockOrder("")
	if len(order) == 0 {
		return handler.NoOp()
	}

	ctx.Store.MultiSelect(order[0], order[len(order)-1])
	return handler.Success().WithRedraw()
}

// clear drops the block multi-selection and any native text range.
func (h *SelectionHandler) clear(ctx *execctx.ExecutionContext) handler.Result {
	if !ctx.Store.HasMultiSelection() {
		return handler.NoOp()
	}

	ctx.Store.ClearSelectedBlock()
	if ctx.HasView() {
		ctx.View.ClearTextSelection()
	}
	return handler.Success().WithRedraw()
}

func (h *SelectionHandler) selectBlock(ctx *execctx.ExecutionContext, id string) handler.Result {
	if id == "" {
		return handler.NoOp()
	}
	ctx.Store.SelectBlock(id)
	return handler.Success().WithRedraw()
}
