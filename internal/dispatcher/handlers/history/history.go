// Package history provides handlers for undo and redo.
package history

import (
	"errors"

	"github.com/blockpad/blockpad/internal/dispatcher/execctx"
	"github.com/blockpad/blockpad/internal/dispatcher/handler"
	"github.com/blockpad/blockpad/internal/input"
	"github.com/blockpad/blockpad/internal/store"
)

// Action names for history operations.
const (
	ActionUndo = "history.undo" // primary+z
	ActionRedo = "history.redo" // primary+shift+z
)

// HistoryHandler handles undo and redo actions.
type HistoryHandler struct{}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler() *HistoryHandler {
	return &HistoryHandler{}
}

// Namespace returns the history namespace.
func (h *HistoryHandler) Namespace() string {
	return "history"
}

// CanHandle returns true if this handler can process the action.
func (h *HistoryHandler) CanHandle(actionName string) bool {
	return actionName == ActionUndo || actionName == ActionRedo
}

// HandleAction processes a history action.
func (h *HistoryHandler) HandleAction(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	if !ctx.HasStore() {
		return handler.Errorf("history: no store attached")
	}

	switch action.Name {
	case ActionUndo:
		return h.undo(ctx)
	case ActionRedo:
		return h.redo(ctx)
	default:
		return handler.Errorf("unknown history action: %s", action.Name)
	}
}

func (h *HistoryHandler) undo(ctx *execctx.ExecutionContext) handler.Result {
	if err := ctx.Store.Undo(); err != nil {
		if errors.Is(err, store.ErrNothingToUndo) {
			return handler.NoOpWithMessage("nothing to undo")
		}
		return handler.Error(err)
	}
	return handler.Success().WithRedraw()
}

func (h *HistoryHandler) redo(ctx *execctx.ExecutionContext) handler.Result {
	if err := ctx.Store.Redo(); err != nil {
		if errors.Is(err, store.ErrNothingToRedo) {
			return handler.NoOpWithMessage("nothing to redo")
		}
		return handler.Error(err)
	}
	return handler.Success().WithRedraw()
}
