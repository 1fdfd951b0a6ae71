// Package shortcuts wires the editor's global keyboard shortcuts to the
// block store. It owns the fixed shortcut table, registers the keymaps
// that carry it, and keeps binding availability and condition flags in
// sync with store state.
package shortcuts

import (
	"sync"

	"github.com/blockpad/blockpad/internal/dispatcher/handlers/block"
	"github.com/blockpad/blockpad/internal/dispatcher/handlers/history"
	"github.com/blockpad/blockpad/internal/dispatcher/handlers/selection"
	"github.com/blockpad/blockpad/internal/input"
	"github.com/blockpad/blockpad/internal/input/keymap"
	"github.com/blockpad/blockpad/internal/store"
)

// Keymap names owned by the binder.
const (
	// KeymapEditor carries the editor-scoped shortcuts. It is active
	// only while the block canvas has focus.
	KeymapEditor = "editor-shortcuts"

	// KeymapBlockActions carries the block action shortcuts. It is
	// global, but registered only while at least one block is selected.
	KeymapBlockActions = "block-actions"
)

// Condition flag names consulted by binding When clauses.
const (
	CondHasRootBlocks     = "hasRootBlocks"
	CondHasMultiSelection = "hasMultiSelection"
	CondHasBlockSelection = "hasBlockSelection"
	CondSelectionLocked   = "selectionLocked"
)

// Binder connects the shortcut keymaps to a block store. While attached
// it refreshes condition flags on every store change and registers or
// unregisters the block action keymap as the selection comes and goes.
type Binder struct {
	mu sync.Mutex

	store       *store.Store
	handler     *input.Handler
	unsubscribe func()
	attached    bool
}

// NewBinder creates a binder for the given store and input handler.
func NewBinder(st *store.Store, h *input.Handler) *Binder {
	return &Binder{
		store:   st,
		handler: h,
	}
}

// Attach registers the shortcut keymaps and subscribes to store changes.
// Attaching twice is a no-op.
func (b *Binder) Attach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return nil
	}

	if err := b.handler.Registry().Register(editorKeymap()); err != nil {
		return err
	}

	b.refreshLocked()
	b.unsubscribe = b.store.Subscribe(b.refresh)
	b.attached = true
	return nil
}

// Detach unregisters the shortcut keymaps and stops tracking the store.
func (b *Binder) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return
	}

	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}

	reg := b.handler.Registry()
	reg.Unregister(KeymapEditor)
	reg.Unregister(KeymapBlockActions)
	b.attached = false
}

// refresh recomputes condition flags and block-action availability from
// current store state. Runs on every store change notification.
func (b *Binder) refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return
	}
	b.refreshLocked()
}

func (b *Binder) refreshLocked() {
	hasSelection := len(b.store.SelectedBlockClientIDs()) > 0

	b.handler.SetCondition(CondHasRootBlocks, len(b.store.BlockOrder("")) > 0)
	b.handler.SetCondition(CondHasMultiSelection, b.store.HasMultiSelection())
	b.handler.SetCondition(CondHasBlockSelection, hasSelection)
	b.handler.SetCondition(CondSelectionLocked, b.store.IsSelectionLocked())

	// The block action bindings do not exist at all without a selected
	// block, so their chords fall through to text input instead of
	// being swallowed by a no-op.
	reg := b.handler.Registry()
	if hasSelection {
		if !reg.Has(KeymapBlockActions) {
			// Registration cannot fail: the table is fixed and parses.
			_ = reg.Register(blockActionsKeymap())
		}
	} else {
		reg.Unregister(KeymapBlockActions)
	}
}

// editorKeymap builds the editor-scoped shortcut table.
func editorKeymap() *keymap.Keymap {
	km := keymap.NewKeymap(KeymapEditor).
		ForScope(keymap.ScopeEditor).
		WithSource("builtin")

	km.AddBinding(keymap.NewBinding("primary+a", selection.ActionSelectAll).
		WithWhen(CondHasRootBlocks).
		WithDescription("Select all blocks").
		WithCategory("selection"))

	km.AddBinding(keymap.NewBinding("primary+z", history.ActionUndo).
		WithDescription("Undo").
		WithCategory("history"))

	km.AddBinding(keymap.NewBinding("primary+shift+z", history.ActionRedo).
		WithDescription("Redo").
		WithCategory("history"))

	// Deletion keys only take over while multiple blocks are selected;
	// with a single block focused they keep editing its text.
	km.AddBinding(keymap.NewBinding("Backspace", block.ActionRemoveSelection).
		WithWhen(CondHasMultiSelection).
		WithDescription("Remove selected blocks").
		WithCategory("block"))

	km.AddBinding(keymap.NewBinding("Delete", block.ActionRemoveSelection).
		WithWhen(CondHasMultiSelection).
		WithDescription("Remove selected blocks").
		WithCategory("block"))

	km.AddBinding(keymap.NewBinding("Escape", selection.ActionClear).
		WithWhen(CondHasMultiSelection).
		WithDescription("Clear block selection").
		WithCategory("selection"))

	return km
}

// blockActionsKeymap builds the global block action table. The binder
// registers it only while a block is selected.
func blockActionsKeymap() *keymap.Keymap {
	km := keymap.NewKeymap(KeymapBlockActions).
		ForScope(keymap.ScopeGlobal).
		WithSource("builtin")

	km.AddBinding(keymap.NewBinding("primary+shift+d", block.ActionDuplicate).
		WithDescription("Duplicate selected blocks").
		WithCategory("block"))

	km.AddBinding(keymap.NewBinding("access+z", block.ActionRemoveSelection).
		WithDescription("Remove selected blocks").
		WithCategory("block"))

	km.AddBinding(keymap.NewBinding("primary+alt+t", block.ActionInsertBefore).
		WithDescription("Insert block before selection").
		WithCategory("block"))

	km.AddBinding(keymap.NewBinding("primary+alt+y", block.ActionInsertAfter).
		WithDescription("Insert block after selection").
		WithCategory("block"))

	return km
}
