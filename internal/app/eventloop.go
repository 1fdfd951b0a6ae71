package app

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/blockpad/blockpad/internal/input/key"
	"github.com/blockpad/blockpad/internal/input/keymap"
	"github.com/blockpad/blockpad/internal/render"
	"github.com/blockpad/blockpad/internal/store"
)

// Run starts the terminal event loop and blocks until quit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.view.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer app.Shutdown()

	// The canvas has focus from the start; Tab moves it to the sidebar.
	app.input.SetScope(keymap.ScopeEditor)
	app.view.Redraw()

	app.logger.Info("editor started")

	for {
		ev := app.view.PollEvent()
		if ev == nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventInterrupt:
			// Posted by requestQuit to unblock PollEvent.

		case *tcell.EventResize:
			app.view.Redraw()

		case *tcell.EventKey:
			app.handleKeyEvent(e)
		}

		if app.quitting.Load() {
			app.logger.Info("editor stopped")
			return nil
		}
	}
}

// handleKeyEvent routes a key press: shortcuts first, then fall-through
// to inline text editing. A key consumed by a shortcut never reaches
// the text, even when its handler turned out to be a no-op.
func (app *Application) handleKeyEvent(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		app.requestQuit()
		return
	}

	// Tab moves focus between the canvas and the sidebar. Editor-scoped
	// shortcuts only resolve while the canvas has it; global ones always do.
	if ev.Key() == tcell.KeyTab && ev.Modifiers() == tcell.ModNone {
		app.toggleFocus()
		return
	}

	keyEv, ok := render.TranslateKeyEvent(ev)
	if !ok {
		return
	}

	consumed := app.input.HandleKeyEvent(keyEv)
	app.view.SetPendingKeys(app.input.PendingKeys())
	if consumed {
		return
	}

	if app.input.Scope() == keymap.ScopeEditor {
		app.editText(keyEv)
	}
}

// toggleFocus flips keyboard focus between the block canvas and the
// sidebar.
func (app *Application) toggleFocus() {
	if app.input.Scope() == keymap.ScopeEditor {
		app.input.SetScope(ScopeSidebar)
	} else {
		app.input.SetScope(keymap.ScopeEditor)
	}
	app.view.SetPendingKeys("")
	app.view.Redraw()
}

// editText applies an unconsumed key to the selected block's text.
func (app *Application) editText(ev key.Event) {
	id, ok := app.store.SelectedBlockClientID()

	switch {
	case ev.Key == key.KeyUp || ev.Key == key.KeyDown:
		app.moveSelection(ev.Key == key.KeyDown)
		return

	case !ok || app.store.HasMultiSelection():
		return
	}

	b, found := app.store.Block(id)
	if !found {
		return
	}

	text := []rune(b.Text)
	cursor := app.view.Cursor()
	if cursor > len(text) {
		cursor = len(text)
	}

	switch {
	case ev.IsChar() || (ev.Key == key.KeySpace && !ev.IsModified()):
		r := ev.Rune
		if ev.Key == key.KeySpace {
			r = ' '
		}
		text = append(text[:cursor], append([]rune{r}, text[cursor:]...)...)
		cursor++

	case ev.Key == key.KeyBackspace && !ev.IsModified():
		if cursor == 0 {
			return
		}
		text = append(text[:cursor-1], text[cursor:]...)
		cursor--

	case ev.Key == key.KeyDelete && !ev.IsModified():
		if cursor >= len(text) {
			return
		}
		text = append(text[:cursor], text[cursor+1:]...)

	case ev.Key == key.KeyLeft && !ev.IsModified():
		if cursor > 0 {
			cursor--
		}
		app.view.SetCursor(cursor)
		app.view.Redraw()
		return

	case ev.Key == key.KeyRight && !ev.IsModified():
		if cursor < len(text) {
			cursor++
		}
		app.view.SetCursor(cursor)
		app.view.Redraw()
		return

	case ev.Key == key.KeyEnter && !ev.IsModified():
		if newID, err := app.store.InsertAfter([]string{id}); err == nil && newID != "" {
			app.view.SetCursor(0)
			app.view.Redraw()
		}
		return

	default:
		return
	}

	if err := app.store.UpdateBlockText(id, string(text)); err != nil {
		// A locked document refuses every keystroke; not worth logging.
		if !errors.Is(err, store.ErrSelectionLocked) {
			app.logger.WithComponent("edit").Error("updating block text: %v", err)
		}
		return
	}
	app.view.SetCursor(cursor)
	app.view.Redraw()
}

// moveSelection moves the single-block selection up or down the root
// block order.
func (app *Application) moveSelection(down bool) {
	order := app.store.BlockOrder("")
	if len(order) == 0 {
		return
	}

	id, ok := app.store.SelectedBlockClientID()
	idx := -1
	if ok {
		for i, bid := range order {
			if bid == id {
				idx = i
				break
			}
		}
	}

	switch {
	case idx < 0:
		idx = 0
	case down && idx < len(order)-1:
		idx++
	case !down && idx > 0:
		idx--
	}

	app.store.SelectBlock(order[idx])
	app.view.SetCursor(0)
	app.view.Redraw()
}
