package keymap

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blockpad/blockpad/internal/input/key"
)

// Registry manages all keymaps and provides binding lookup.
type Registry struct {
	mu sync.RWMutex

	// keymaps holds all registered keymaps by name.
	keymaps map[string]*ParsedKeymap

	// prefixTree provides efficient prefix-based lookup.
	prefixTree *PrefixTree
}

// LookupContext provides context for binding lookup.
type LookupContext struct {
	// Scope is the current focus scope ("" when nothing focused maps to
	// global-only lookup; ScopeEditor while the canvas has focus).
	Scope string

	// Conditions holds current condition values.
	// Keys: "hasMultiSelection", "hasBlockSelection", "selectionLocked".
	Conditions map[string]bool
}

// NewLookupContext creates a new lookup context.
func NewLookupContext() *LookupContext {
	return &LookupContext{
		Conditions: make(map[string]bool),
	}
}

// NewRegistry creates a new keymap registry.
func NewRegistry() *Registry {
	return &Registry{
		keymaps:    make(map[string]*ParsedKeymap),
		prefixTree: NewPrefixTree(),
	}
}

// Register adds a keymap to the registry.
// If a keymap with the same name already exists, it is replaced.
func (r *Registry) Register(km *Keymap) error {
	if km == nil {
		return fmt.Errorf("cannot register nil keymap")
	}

	parsed, err := km.Parse()
	if err != nil {
		return fmt.Errorf("parsing keymap %q: %w", km.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(km.Name)

	r.keymaps[km.Name] = parsed

	for i := range parsed.ParsedBindings {
		pb := &parsed.ParsedBindings[i]
		r.prefixTree.Insert(pb.Sequence, km.Scope, pb, km)
	}

	return nil
}

// Unregister removes a keymap from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(name)
}

// unregisterLocked removes a keymap without acquiring the lock.
// Caller must hold the write lock.
func (r *Registry) unregisterLocked(name string) {
	km, ok := r.keymaps[name]
	if !ok {
		return
	}

	for i := range km.ParsedBindings {
		pb := &km.ParsedBindings[i]
		r.prefixTree.Remove(pb.Sequence, km.Scope, km.Keymap)
	}

	delete(r.keymaps, name)
}

// Get returns a keymap by name, or nil if not registered.
func (r *Registry) Get(name string) *ParsedKeymap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keymaps[name]
}

// Has reports whether a keymap with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.keymaps[name]
	return ok
}

// Lookup finds the best matching binding for a key sequence.
// If ctx is nil, a default empty context is used.
func (r *Registry) Lookup(seq *key.Sequence, ctx *LookupContext) *Binding {
	if seq == nil {
		return nil
	}
	if ctx == nil {
		ctx = NewLookupContext()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.findMatches(seq, ctx)
	if len(matches) == 0 {
		return nil
	}

	return &matches[0].Binding
}

// LookupAll finds all matching bindings for a key sequence.
func (r *Registry) LookupAll(seq *key.Sequence, ctx *LookupContext) []BindingMatch {
	if seq == nil {
		return nil
	}
	if ctx == nil {
		ctx = NewLookupContext()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findMatches(seq, ctx)
}

// HasPrefix checks if any strictly longer binding starts with the given
// sequence. Exact matches at the sequence itself do not count; those are
// Lookup's concern, and a failed Lookup must not leave the key pending.
func (r *Registry) HasPrefix(seq *key.Sequence, ctx *LookupContext) bool {
	if seq == nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefixTree.HasPrefix(seq)
}

// lookupScopes returns the scopes to consult for a focus scope:
// the focus scope itself (if any) and then global.
func lookupScopes(scope string) []string {
	if scope == "" {
		return []string{ScopeGlobal}
	}
	return []string{scope, ScopeGlobal}
}

// findMatches finds all matches and sorts by priority.
func (r *Registry) findMatches(seq *key.Sequence, ctx *LookupContext) []BindingMatch {
	matches := make([]BindingMatch, 0)

	for _, scope := range lookupScopes(ctx.Scope) {
		entries := r.prefixTree.Lookup(seq, scope)
		for _, entry := range entries {
			if entry.Binding.When != "" && !EvaluateCondition(entry.Binding.When, ctx) {
				continue
			}

			match := BindingMatch{
				ParsedBinding: entry.Binding,
				Keymap:        entry.Keymap,
			}
			match.CalculateScore()
			matches = append(matches, match)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Less(matches[j])
	})

	return matches
}

// Keymaps returns all registered keymaps.
func (r *Registry) Keymaps() []*ParsedKeymap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*ParsedKeymap, 0, len(r.keymaps))
	for _, km := range r.keymaps {
		result = append(result, km)
	}
	return result
}

// AllBindings returns all bindings visible from a focus scope, sorted by
// priority. Used for help display.
func (r *Registry) AllBindings(scope string) []BindingMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]BindingMatch, 0)
	for _, km := range r.keymaps {
		if km.Scope != "" && km.Scope != scope {
			continue
		}
		for i := range km.ParsedBindings {
			match := BindingMatch{
				ParsedBinding: &km.ParsedBindings[i],
				Keymap:        km.Keymap,
			}
			match.CalculateScore()
			matches = append(matches, match)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Less(matches[j])
	})

	return matches
}

// PrefixTree provides efficient prefix-based binding lookup keyed by
// canonical event strings.
type PrefixTree struct {
	root *prefixNode
}

type prefixNode struct {
	children map[string]*prefixNode
	entries  []prefixEntry
}

type prefixEntry struct {
	Scope   string
	Binding *ParsedBinding
	Keymap  *Keymap
}

// NewPrefixTree creates a new prefix tree.
func NewPrefixTree() *PrefixTree {
	return &PrefixTree{
		root: &prefixNode{
			children: make(map[string]*prefixNode),
		},
	}
}

// Insert adds a binding to the prefix tree.
func (t *PrefixTree) Insert(seq *key.Sequence, scope string, binding *ParsedBinding, km *Keymap) {
	node := t.root

	for _, event := range seq.Events {
		keyStr := event.String()
		child, ok := node.children[keyStr]
		if !ok {
			child = &prefixNode{
				children: make(map[string]*prefixNode),
			}
			node.children[keyStr] = child
		}
		node = child
	}

	node.entries = append(node.entries, prefixEntry{
		Scope:   scope,
		Binding: binding,
		Keymap:  km,
	})
}

// Remove removes a binding from the prefix tree for a specific keymap.
func (t *PrefixTree) Remove(seq *key.Sequence, scope string, km *Keymap) {
	if seq == nil || len(seq.Events) == 0 {
		return
	}

	// Track path for pruning
	path := make([]*prefixNode, 0, len(seq.Events)+1)
	path = append(path, t.root)

	node := t.root
	for _, event := range seq.Events {
		keyStr := event.String()
		child, ok := node.children[keyStr]
		if !ok {
			return
		}
		path = append(path, child)
		node = child
	}

	// Entries must match both scope and keymap
	filtered := node.entries[:0]
	for _, entry := range node.entries {
		if !(entry.Scope == scope && entry.Keymap == km) {
			filtered = append(filtered, entry)
		}
	}
	node.entries = filtered

	// Prune empty nodes from leaf to root
	for i := len(path) - 1; i > 0; i-- {
		current := path[i]
		if len(current.entries) == 0 && len(current.children) == 0 {
			parent := path[i-1]
			for k, child := range parent.children {
				if child == current {
					delete(parent.children, k)
					break
				}
			}
		} else {
			break
		}
	}
}

// Lookup finds exact matches for a key sequence within a single scope.
// Callers consult the global scope separately; matching it here too would
// duplicate global entries.
func (t *PrefixTree) Lookup(seq *key.Sequence, scope string) []prefixEntry {
	node := t.root

	for _, event := range seq.Events {
		keyStr := event.String()
		child, ok := node.children[keyStr]
		if !ok {
			return nil
		}
		node = child
	}

	result := make([]prefixEntry, 0)
	for _, entry := range node.entries {
		if entry.Scope == scope {
			result = append(result, entry)
		}
	}
	return result
}

// HasPrefix checks if any longer binding starts with the given sequence.
func (t *PrefixTree) HasPrefix(seq *key.Sequence) bool {
	node := t.root

	for _, event := range seq.Events {
		keyStr := event.String()
		child, ok := node.children[keyStr]
		if !ok {
			return false
		}
		node = child
	}

	return len(node.children) > 0
}

// EvaluateCondition evaluates a binding condition against the context.
// Supports: cond, !cond, cond1 && cond2, cond1 || cond2.
func EvaluateCondition(condition string, ctx *LookupContext) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true
	}

	if i := strings.Index(condition, "||"); i >= 0 {
		return EvaluateCondition(condition[:i], ctx) ||
			EvaluateCondition(condition[i+2:], ctx)
	}
	if i := strings.Index(condition, "&&"); i >= 0 {
		return EvaluateCondition(condition[:i], ctx) &&
			EvaluateCondition(condition[i+2:], ctx)
	}
	if strings.HasPrefix(condition, "!") {
		return !EvaluateCondition(condition[1:], ctx)
	}

	return ctx.Conditions[condition]
}
