package input

import (
	"testing"
	"time"

	"github.com/blockpad/blockpad/internal/input/key"
	"github.com/blockpad/blockpad/internal/input/keymap"
)

func newTestHandler(t *testing.T, km *keymap.Keymap) (*Handler, *[]Action) {
	t.Helper()

	reg := keymap.NewRegistry()
	if km != nil {
		if err := reg.Register(km); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	h := NewHandler(Config{SequenceTimeout: 50 * time.Millisecond}, reg)
	t.Cleanup(h.Close)

	var dispatched []Action
	h.SetDispatchFunc(func(a Action) { dispatched = append(dispatched, a) })
	return h, &dispatched
}

func TestHandleKeyEventDispatchesMatch(t *testing.T) {
	km := keymap.NewKeymap("test").Add("primary+z", "history.undo")
	h, dispatched := newTestHandler(t, km)

	if !h.HandleKeyEvent(key.MustParse("primary+z")) {
		t.Fatal("matched chord should be consumed")
	}
	if len(*dispatched) != 1 || (*dispatched)[0].Name != "history.undo" {
		t.Errorf("dispatched = %v, want [history.undo]", *dispatched)
	}
	if (*dispatched)[0].Source != SourceKeyboard {
		t.Errorf("Source = %v, want SourceKeyboard", (*dispatched)[0].Source)
	}
}

func TestHandleKeyEventUnmatchedFallsThrough(t *testing.T) {
	h, dispatched := newTestHandler(t, nil)

	if h.HandleKeyEvent(key.NewRuneEvent('x', key.ModNone)) {
		t.Error("unmatched key should not be consumed")
	}
	if len(*dispatched) != 0 {
		t.Errorf("dispatched = %v, want none", *dispatched)
	}
}

func TestHandleKeyEventMultiChordSequence(t *testing.T) {
	km := keymap.NewKeymap("test").Add("primary+k primary+c", "comment.toggle")
	h, dispatched := newTestHandler(t, km)

	if !h.HandleKeyEvent(key.MustParse("primary+k")) {
		t.Fatal("sequence prefix should be consumed while pending")
	}
	if h.PendingKeys() == "" {
		t.Error("PendingKeys should report the pending chord")
	}
	if len(*dispatched) != 0 {
		t.Fatal("nothing should dispatch on a prefix")
	}

	if !h.HandleKeyEvent(key.MustParse("primary+c")) {
		t.Fatal("sequence completion should be consumed")
	}
	if len(*dispatched) != 1 || (*dispatched)[0].Name != "comment.toggle" {
		t.Errorf("dispatched = %v, want [comment.toggle]", *dispatched)
	}
	if h.PendingKeys() != "" {
		t.Error("PendingKeys should be empty after dispatch")
	}
}

func TestHandleKeyEventBrokenSequenceConsumed(t *testing.T) {
	km := keymap.NewKeymap("test").Add("primary+k primary+c", "comment.toggle")
	h, dispatched := newTestHandler(t, km)

	h.HandleKeyEvent(key.MustParse("primary+k"))

	// The breaking key is swallowed with the dead sequence rather than
	// leaking into text input on its own.
	if !h.HandleKeyEvent(key.NewRuneEvent('q', key.ModNone)) {
		t.Error("key breaking a pending sequence should be consumed")
	}
	if len(*dispatched) != 0 {
		t.Errorf("dispatched = %v, want none", *dispatched)
	}
	if h.PendingKeys() != "" {
		t.Error("pending sequence should be dropped")
	}
}

func TestSequenceTimeoutClearsPending(t *testing.T) {
	km := keymap.NewKeymap("test").Add("primary+k primary+c", "comment.toggle")
	h, _ := newTestHandler(t, km)

	h.HandleKeyEvent(key.MustParse("primary+k"))

	deadline := time.Now().Add(time.Second)
	for h.PendingKeys() != "" {
		if time.Now().After(deadline) {
			t.Fatal("pending sequence not cleared by timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSetScopeClearsPending(t *testing.T) {
	km := keymap.NewKeymap("test").Add("primary+k primary+c", "comment.toggle")
	h, _ := newTestHandler(t, km)

	h.HandleKeyEvent(key.MustParse("primary+k"))
	h.SetScope("other")

	if h.PendingKeys() != "" {
		t.Error("scope change should drop the pending sequence")
	}
}

func TestBindingArgsCopiedToAction(t *testing.T) {
	km := keymap.NewKeymap("test")
	km.AddBinding(keymap.NewBinding("primary+1", "view.zoom").
		WithArgs(map[string]any{"level": 2}))
	h, dispatched := newTestHandler(t, km)

	if !h.HandleKeyEvent(key.MustParse("primary+1")) {
		t.Fatal("chord should be consumed")
	}
	if got := (*dispatched)[0].GetInt("level"); got != 2 {
		t.Errorf("args level = %d, want 2", got)
	}
}

func TestClosedHandlerIgnoresKeys(t *testing.T) {
	km := keymap.NewKeymap("test").Add("primary+z", "history.undo")
	h, dispatched := newTestHandler(t, km)

	h.Close()
	if h.HandleKeyEvent(key.MustParse("primary+z")) {
		t.Error("closed handler should not consume keys")
	}
	if len(*dispatched) != 0 {
		t.Errorf("dispatched = %v, want none", *dispatched)
	}
}
