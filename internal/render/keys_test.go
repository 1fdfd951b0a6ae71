package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/blockpad/blockpad/internal/input/key"
)

func TestTranslateKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want key.Event
	}{
		{
			name: "plain rune",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone),
			want: key.NewRuneEvent('a', key.ModNone),
		},
		{
			name: "shifted rune",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'A', tcell.ModShift),
			want: key.NewRuneEvent('A', key.ModShift),
		},
		{
			name: "space becomes special key",
			ev:   tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone),
			want: key.NewSpecialEvent(key.KeySpace, key.ModNone),
		},
		{
			name: "escape",
			ev:   tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
			want: key.NewSpecialEvent(key.KeyEscape, key.ModNone),
		},
		{
			name: "enter",
			ev:   tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			want: key.NewSpecialEvent(key.KeyEnter, key.ModNone),
		},
		{
			name: "backspace",
			ev:   tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModNone),
			want: key.NewSpecialEvent(key.KeyBackspace, key.ModNone),
		},
		{
			name: "backspace2 maps to backspace",
			ev:   tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
			want: key.NewSpecialEvent(key.KeyBackspace, key.ModNone),
		},
		{
			name: "delete",
			ev:   tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone),
			want: key.NewSpecialEvent(key.KeyDelete, key.ModNone),
		},
		{
			name: "arrow with alt",
			ev:   tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModAlt),
			want: key.NewSpecialEvent(key.KeyUp, key.ModAlt),
		},
		{
			name: "function key",
			ev:   tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone),
			want: key.NewSpecialEvent(key.KeyF5, key.ModNone),
		},
		{
			name: "ctrl letter recovered from key code",
			ev:   tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModCtrl),
			want: key.NewRuneEvent('a', key.ModCtrl),
		},
		{
			name: "ctrl z",
			ev:   tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl),
			want: key.NewRuneEvent('z', key.ModCtrl),
		},
		{
			name: "ctrl shift letter",
			ev:   tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl|tcell.ModShift),
			want: key.NewRuneEvent('z', key.ModCtrl|key.ModShift),
		},
		{
			name: "meta rune",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModMeta),
			want: key.NewRuneEvent('d', key.ModMeta),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TranslateKeyEvent(tt.ev)
			if !ok {
				t.Fatal("TranslateKeyEvent() ok = false, want true")
			}
			if !got.Equals(tt.want) {
				t.Errorf("TranslateKeyEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateKeyEventUnmodeled(t *testing.T) {
	if _, ok := TranslateKeyEvent(tcell.NewEventKey(tcell.KeyPause, 0, tcell.ModNone)); ok {
		t.Error("unmodeled key should not translate")
	}
}
