package key

import "testing"

func TestEventString(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"plain rune", NewRuneEvent('a', ModNone), "a"},
		{"ctrl rune", NewRuneEvent('s', ModCtrl), "C-s"},
		{"meta shift rune", NewRuneEvent('z', ModMeta|ModShift), "M-S-z"},
		{"uppercase folds to shift", NewRuneEvent('Z', ModMeta), "M-S-z"},
		{"space", NewRuneEvent(' ', ModCtrl), "C-Space"},
		{"escape", NewSpecialEvent(KeyEscape, ModNone), "Esc"},
		{"shift delete", NewSpecialEvent(KeyDelete, ModShift), "S-Del"},
		{"enter", NewSpecialEvent(KeyEnter, ModNone), "Enter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Shifted and unshifted chords must never produce the same canonical
// string, or they would collide in registry lookups.
func TestEventStringDistinguishesShift(t *testing.T) {
	plain := NewRuneEvent('z', ModCtrl)
	shifted := NewRuneEvent('z', ModCtrl|ModShift)

	if plain.String() == shifted.String() {
		t.Errorf("C-z and C-S-z collide: both %q", plain.String())
	}
}

func TestEventEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b Event
		want bool
	}{
		{"same rune", NewRuneEvent('a', ModNone), NewRuneEvent('a', ModNone), true},
		{"uppercase vs shift+lower", NewRuneEvent('Z', ModMeta), NewRuneEvent('z', ModMeta | ModShift), true},
		{"different rune", NewRuneEvent('a', ModNone), NewRuneEvent('b', ModNone), false},
		{"different mods", NewRuneEvent('a', ModCtrl), NewRuneEvent('a', ModAlt), false},
		{"shift matters", NewRuneEvent('z', ModCtrl), NewRuneEvent('z', ModCtrl | ModShift), false},
		{"special keys", NewSpecialEvent(KeyEnter, ModNone), NewSpecialEvent(KeyEnter, ModNone), true},
		{"special mods differ", NewSpecialEvent(KeyDelete, ModNone), NewSpecialEvent(KeyDelete, ModShift), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.want {
				t.Errorf("Equals() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventMatches(t *testing.T) {
	prev := platformDarwin
	platformDarwin = false
	defer func() { platformDarwin = prev }()

	ev := NewRuneEvent('a', ModCtrl)
	if !ev.Matches("primary+a") {
		t.Error("Ctrl+a should match primary+a on non-darwin")
	}
	if ev.Matches("primary+shift+a") {
		t.Error("Ctrl+a should not match primary+shift+a")
	}
}

func TestEventIsModified(t *testing.T) {
	if NewRuneEvent('A', ModShift).IsModified() {
		t.Error("shift alone should not count as modified for runes")
	}
	if !NewRuneEvent('a', ModCtrl).IsModified() {
		t.Error("ctrl should count as modified")
	}
	if !NewSpecialEvent(KeyDelete, ModShift).IsModified() {
		t.Error("shift should count as modified for special keys")
	}
}
