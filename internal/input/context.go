package input

import (
	"github.com/blockpad/blockpad/internal/input/key"
	"github.com/blockpad/blockpad/internal/input/keymap"
)

// Context tracks the state that influences key binding resolution:
// the current focus scope, the condition flags derived from editor
// state, and the partially entered key sequence.
type Context struct {
	// Scope is the focus scope used for lookup. Empty means nothing
	// has focus, so only global bindings apply.
	Scope string

	// Conditions holds the current condition flags consulted by
	// binding When expressions.
	Conditions map[string]bool

	// PendingSequence is the partially entered key sequence.
	PendingSequence *key.Sequence
}

// NewContext creates an empty input context.
func NewContext() *Context {
	return &Context{
		Conditions:      make(map[string]bool),
		PendingSequence: key.NewSequence(),
	}
}

// SetCondition sets a condition flag.
func (c *Context) SetCondition(name string, value bool) {
	if c.Conditions == nil {
		c.Conditions = make(map[string]bool)
	}
	c.Conditions[name] = value
}

// GetCondition returns a condition flag value.
func (c *Context) GetCondition(name string) bool {
	return c.Conditions[name]
}

// AppendToSequence adds a key event to the pending sequence.
func (c *Context) AppendToSequence(event key.Event) {
	if c.PendingSequence == nil {
		c.PendingSequence = key.NewSequence()
	}
	c.PendingSequence.Add(event)
}

// ClearSequence resets the pending key sequence.
func (c *Context) ClearSequence() {
	if c.PendingSequence != nil {
		c.PendingSequence.Clear()
	}
}

// HasPendingKeys reports whether a partial sequence is in flight.
func (c *Context) HasPendingKeys() bool {
	return c.PendingSequence != nil && c.PendingSequence.Len() > 0
}

// Clone returns a deep copy of the context.
func (c *Context) Clone() *Context {
	clone := &Context{
		Scope:      c.Scope,
		Conditions: make(map[string]bool, len(c.Conditions)),
	}
	for k, v := range c.Conditions {
		clone.Conditions[k] = v
	}
	if c.PendingSequence != nil {
		clone.PendingSequence = c.PendingSequence.Clone()
	}
	return clone
}

// toLookupContext converts to a keymap lookup context.
func (c *Context) toLookupContext() *keymap.LookupContext {
	ctx := keymap.NewLookupContext()
	ctx.Scope = c.Scope
	for k, v := range c.Conditions {
		ctx.Conditions[k] = v
	}
	return ctx
}
