// Package render draws the block canvas on a terminal screen using
// tcell and tracks view-local state such as the native text selection.
package render

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/blockpad/blockpad/internal/store"
)

// TextSelection is a character range inside a single block's text.
// It is the terminal analog of a native browser text selection.
type TextSelection struct {
	BlockID string
	Start   int
	End     int
}

// IsEmpty reports whether the selection covers no characters.
func (s TextSelection) IsEmpty() bool {
	return s.BlockID == "" || s.Start == s.End
}

// View renders the block list and status line. It implements the
// dispatcher's view interface: Redraw, ClearTextSelection, ShowMessage.
type View struct {
	mu sync.Mutex

	screen tcell.Screen
	store  *store.Store

	textSel TextSelection
	cursor  int
	message string
	pending string

	styleDefault  tcell.Style
	styleSelected tcell.Style
	styleMulti    tcell.Style
	styleStatus   tcell.Style
}

// New creates a view on a real terminal screen.
func New(st *store.Store) (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(st, screen), nil
}

// NewWithScreen creates a view on the given screen. Tests pass a
// tcell.SimulationScreen.
func NewWithScreen(st *store.Store, screen tcell.Screen) *View {
	return &View{
		screen:        screen,
		store:         st,
		styleDefault:  tcell.StyleDefault,
		styleSelected: tcell.StyleDefault.Reverse(true),
		styleMulti:    tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite),
		styleStatus:   tcell.StyleDefault.Reverse(true).Dim(true),
	}
}

// Init initializes the underlying screen.
func (v *View) Init() error {
	if err := v.screen.Init(); err != nil {
		return err
	}
	v.screen.EnablePaste()
	return nil
}

// Fini restores the terminal.
func (v *View) Fini() {
	v.screen.Fini()
}

// PollEvent blocks until the next terminal event.
func (v *View) PollEvent() tcell.Event {
	return v.screen.PollEvent()
}

// PostQuit interrupts a blocked PollEvent during shutdown.
func (v *View) PostQuit() {
	v.screen.PostEventWait(tcell.NewEventInterrupt(nil))
}

// Redraw repaints the whole canvas from store state.
func (v *View) Redraw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.drawLocked()
}

// ClearTextSelection drops the native text selection range.
func (v *View) ClearTextSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.textSel = TextSelection{}
}

// SetTextSelection sets the native text selection range.
func (v *View) SetTextSelection(sel TextSelection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.textSel = sel
}

// TextSelection returns the current native text selection range.
func (v *View) TextSelection() TextSelection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.textSel
}

// SetCursor sets the text cursor column within the selected block.
func (v *View) SetCursor(col int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if col < 0 {
		col = 0
	}
	v.cursor = col
}

// Cursor returns the text cursor column.
func (v *View) Cursor() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// SetPendingKeys sets the partial key sequence shown in the status line
// ("" when no sequence is pending).
func (v *View) SetPendingKeys(keys string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == keys {
		return
	}
	v.pending = keys
	v.drawLocked()
}

// ShowMessage displays a transient message in the status line.
func (v *View) ShowMessage(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = msg
	v.drawLocked()
}

// drawLocked repaints. Caller holds v.mu.
func (v *View) drawLocked() {
	v.screen.Clear()

	width, height := v.screen.Size()
	if width == 0 || height == 0 {
		v.screen.Show()
		return
	}

	selectedID, _ := v.store.SelectedBlockClientID()
	multi := make(map[string]bool)
	for _, id := range v.store.MultiSelectedBlockClientIDs() {
		multi[id] = true
	}

	row := 0
	v.screen.HideCursor()
	for _, id := range v.store.BlockOrder("") {
		row = v.drawBlock(id, 0, row, width, height, selectedID, multi)
		if row >= height-1 {
			break
		}
	}

	v.drawStatusLine(width, height)
	v.screen.Show()
}

// drawBlock draws one block and its children, returning the next row.
func (v *View) drawBlock(id string, indent, row, width, height int, selectedID string, multi map[string]bool) int {
	if row >= height-1 {
		return row
	}

	b, ok := v.store.Block(id)
	if !ok {
		return row
	}

	style := v.styleDefault
	switch {
	case multi[id]:
		style = v.styleMulti
	case id == selectedID:
		style = v.styleSelected
	}

	line := fmt.Sprintf("%*s[%s] %s", indent*2, "", b.Type, b.Text)
	drawText(v.screen, 0, row, width, line, style)

	if id == selectedID && len(multi) == 0 {
		col := indent*2 + len(b.Type) + 3 + v.cursor
		if col < width {
			v.screen.ShowCursor(col, row)
		}
	}

	row++
	for _, child := range v.store.BlockOrder(id) {
		row = v.drawBlock(child, indent+1, row, width, height, selectedID, multi)
		if row >= height-1 {
			break
		}
	}
	return row
}

// drawStatusLine draws the bottom status line.
func (v *View) drawStatusLine(width, height int) {
	status := v.message
	if status == "" {
		n := v.store.BlockCount()
		sel := len(v.store.SelectedBlockClientIDs())
		status = fmt.Sprintf(" %d blocks", n)
		if sel > 0 {
			status += fmt.Sprintf(", %d selected", sel)
		}
	}
	if v.pending != "" {
		status += fmt.Sprintf("  [%s]", v.pending)
	}
	drawText(v.screen, 0, height-1, width, padRight(status, width), v.styleStatus)
}

// drawText draws a string clipped to maxWidth.
func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}

// padRight pads a string with spaces to the given width in cells, counting
// runes the way drawText places them.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
