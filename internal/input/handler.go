package input

import (
	"sync"
	"time"

	"github.com/blockpad/blockpad/internal/input/key"
	"github.com/blockpad/blockpad/internal/input/keymap"
)

// Config configures the input handler.
type Config struct {
	// SequenceTimeout is how long to wait for multi-key sequences.
	// Default: 1000ms
	SequenceTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SequenceTimeout: 1000 * time.Millisecond,
	}
}

// DispatchFunc executes a resolved action. The handler decides whether
// a key is consumed before invoking it, so a dispatch failure never
// lets the key fall through to text input.
type DispatchFunc func(action Action)

// Handler is the main entry point for key processing. It accumulates
// key events into sequences, resolves them against the keymap registry
// for the current scope and conditions, and dispatches matched actions.
type Handler struct {
	mu sync.Mutex

	config   Config
	registry *keymap.Registry
	context  *Context
	dispatch DispatchFunc

	seqTimer *time.Timer
	closed   bool
}

// NewHandler creates a new input handler backed by the given registry.
func NewHandler(config Config, registry *keymap.Registry) *Handler {
	if registry == nil {
		registry = keymap.NewRegistry()
	}
	return &Handler{
		config:   config,
		registry: registry,
		context:  NewContext(),
	}
}

// SetDispatchFunc sets the function invoked for matched actions.
func (h *Handler) SetDispatchFunc(fn DispatchFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatch = fn
}

// HandleKeyEvent processes a key event and reports whether it was
// consumed. Consumed events never reach text input; unconsumed events
// fall through to the focused editable.
func (h *Handler) HandleKeyEvent(event key.Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.context.AppendToSequence(event)
	h.resetSequenceTimeout()

	lookupCtx := h.context.toLookupContext()

	// Exact match wins. The event is consumed before the action runs
	// so a no-op handler still swallows the key.
	if binding := h.registry.Lookup(h.context.PendingSequence, lookupCtx); binding != nil {
		action := h.buildAction(binding)
		h.clearSequence()
		h.dispatchLocked(action)
		return true
	}

	// A prefix of a longer binding: hold the key and wait for more.
	if h.registry.HasPrefix(h.context.PendingSequence, lookupCtx) {
		return true
	}

	// No match. If this key broke a pending sequence, the earlier keys
	// are already lost to text input; drop the whole sequence.
	wasPending := h.context.PendingSequence.Len() > 1
	h.clearSequence()
	return wasPending
}

// buildAction creates an action from a binding.
func (h *Handler) buildAction(binding *keymap.Binding) Action {
	action := Action{
		Name:   binding.Action,
		Source: SourceKeyboard,
	}
	if binding.Args != nil {
		action.Args = make(map[string]any, len(binding.Args))
		for k, v := range binding.Args {
			action.Args[k] = v
		}
	}
	return action
}

func (h *Handler) dispatchLocked(action Action) {
	if h.dispatch == nil {
		return
	}
	// Release the lock for the duration of the dispatch; handlers may
	// call back into SetScope or SetCondition via store notifications.
	h.mu.Unlock()
	defer h.mu.Lock()
	h.dispatch(action)
}

// SetScope sets the current focus scope and drops any pending sequence,
// since bindings resolved under the old scope no longer apply.
func (h *Handler) SetScope(scope string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.context.Scope == scope {
		return
	}
	h.context.Scope = scope
	h.clearSequence()
}

// Scope returns the current focus scope.
func (h *Handler) Scope() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.context.Scope
}

// SetCondition sets a condition flag consulted by binding When clauses.
func (h *Handler) SetCondition(name string, value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.context.SetCondition(name, value)
}

// Registry returns the keymap registry.
func (h *Handler) Registry() *keymap.Registry {
	return h.registry
}

// Context returns a copy of the current context.
func (h *Handler) Context() *Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.context.Clone()
}

// PendingKeys returns the pending key sequence as a string.
func (h *Handler) PendingKeys() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.context.PendingSequence == nil {
		return ""
	}
	return h.context.PendingSequence.String()
}

// clearSequence clears the pending key sequence and stops the timer.
func (h *Handler) clearSequence() {
	h.context.ClearSequence()
	h.stopSequenceTimeout()
}

// resetSequenceTimeout resets the sequence timeout timer.
func (h *Handler) resetSequenceTimeout() {
	h.stopSequenceTimeout()

	if h.config.SequenceTimeout > 0 {
		h.seqTimer = time.AfterFunc(h.config.SequenceTimeout, func() {
			h.handleSequenceTimeout()
		})
	}
}

// stopSequenceTimeout stops the sequence timeout timer.
func (h *Handler) stopSequenceTimeout() {
	if h.seqTimer != nil {
		h.seqTimer.Stop()
		h.seqTimer = nil
	}
}

// handleSequenceTimeout is called when the sequence timeout fires.
func (h *Handler) handleSequenceTimeout() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.clearSequence()
}

// Close shuts down the handler.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.stopSequenceTimeout()
}
