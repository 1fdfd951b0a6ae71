package store

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds the editing session's block tree and selection state.
//
// Mutating actions fire change notifications; selectors are read-only.
// The zero value is not usable; use New.
type Store struct {
	mu sync.RWMutex

	// blocks maps client ID to block.
	blocks map[string]*Block

	// order maps parent client ID ("" = top level) to ordered child IDs.
	order map[string][]string

	// selected is the single-selection client ID ("" = none).
	selected string

	// multi is the ordered multi-selection ("nil" = none). A multi-selection
	// always spans siblings of one parent.
	multi []string

	// documentLock applies a template lock to the whole document.
	documentLock LockToken

	// defaultBlockType is inserted by insert-before/after.
	defaultBlockType string

	undoStack  []snapshot
	redoStack  []snapshot
	maxHistory int

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultBlockType sets the block type created by insertion shortcuts.
func WithDefaultBlockType(blockType string) Option {
	return func(s *Store) {
		if blockType != "" {
			s.defaultBlockType = blockType
		}
	}
}

// WithDocumentLock applies a template lock to the document root.
func WithDocumentLock(lock LockToken) Option {
	return func(s *Store) {
		s.documentLock = lock
	}
}

// WithMaxHistory caps the undo stack depth.
func WithMaxHistory(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		blocks:           make(map[string]*Block),
		order:            make(map[string][]string),
		defaultBlockType: DefaultBlockType,
		maxHistory:       1000,
		subs:             make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClientID returns a fresh block client ID.
func NewClientID() string {
	return uuid.NewString()
}

// Subscribe registers a change listener and returns an unsubscribe func.
// Listeners fire after every mutating action, selection changes included.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// notify invokes all subscribers. Must be called without s.mu held.
func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// --- Selectors ---

// BlockOrder returns the ordered child client IDs of the given root
// ("" = top level).
func (s *Store) BlockOrder(rootID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order[rootID]...)
}

// Block returns the block with the given client ID.
func (s *Store) Block(id string) (*Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// BlockCount returns the total number of blocks.
func (s *Store) BlockCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}

// SelectedBlockClientID returns the single-selection client ID, if any.
func (s *Store) SelectedBlockClientID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return "", false
	}
	return s.selected, true
}

// MultiSelectedBlockClientIDs returns the ordered multi-selection, or nil.
func (s *Store) MultiSelectedBlockClientIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.multi...)
}

// HasMultiSelection reports whether more than one block is selected.
func (s *Store) HasMultiSelection() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.multi) > 1
}

// SelectedBlockClientIDs returns the multi-selection if present, otherwise
// the single selection, otherwise nil.
func (s *Store) SelectedBlockClientIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.multi) > 1 {
		return append([]string(nil), s.multi...)
	}
	if s.selected != "" {
		return []string{s.selected}
	}
	return nil
}

// BlockRootClientID returns the parent client ID of a block
// ("" for top-level blocks).
func (s *Store) BlockRootClientID(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return "", false
	}
	return b.ParentID, true
}

// TemplateLock returns the template lock of a container, or the document
// lock for the top level ("").
func (s *Store) TemplateLock(id string) LockToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templateLockLocked(id)
}

func (s *Store) templateLockLocked(id string) LockToken {
	if id == "" {
		return s.documentLock
	}
	if b, ok := s.blocks[id]; ok {
		return b.TemplateLock
	}
	return LockNone
}

// IsSelectionLocked reports whether any selected block sits under a
// template-locked ancestor. A single locked block vetoes structural edits
// for the whole selection.
func (s *Store) IsSelectionLocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.selectedIDsLocked() {
		if s.ancestorLockedLocked(id) {
			return true
		}
	}
	return false
}

// ancestorLockedLocked walks the parent chain of a block, document root
// included, and reports whether any container enforces a lock.
func (s *Store) ancestorLockedLocked(id string) bool {
	b, ok := s.blocks[id]
	if !ok {
		return false
	}

	parent := b.ParentID
	for parent != "" {
		pb, ok := s.blocks[parent]
		if !ok {
			break
		}
		if pb.TemplateLock.Locked() {
			return true
		}
		parent = pb.ParentID
	}
	return s.documentLock.Locked()
}

// containerLockedLocked reports whether the container itself or any of its
// ancestors enforces a template lock. id "" checks only the document lock.
// Both LockAll and LockInsert forbid inserting into the container.
func (s *Store) containerLockedLocked(id string) bool {
	for id != "" {
		b, ok := s.blocks[id]
		if !ok {
			break
		}
		if b.TemplateLock.Locked() {
			return true
		}
		id = b.ParentID
	}
	return s.documentLock.Locked()
}

// contentLockedLocked reports whether a LockAll anywhere above the block
// freezes its inline content. LockInsert constrains structure only.
func (s *Store) contentLockedLocked(id string) bool {
	b, ok := s.blocks[id]
	if !ok {
		return false
	}
	for parent := b.ParentID; parent != ""; {
		pb, ok := s.blocks[parent]
		if !ok {
			break
		}
		if pb.TemplateLock == LockAll {
			return true
		}
		parent = pb.ParentID
	}
	return s.documentLock == LockAll
}

func (s *Store) selectedIDsLocked() []string {
	if len(s.multi) > 1 {
		return s.multi
	}
	if s.selected != "" {
		return []string{s.selected}
	}
	return nil
}

// --- Actions ---

// AppendBlock adds a block at the end of its parent's order. Used for
// document setup; not undoable.
func (s *Store) AppendBlock(b Block) {
	s.mu.Lock()
	if b.ClientID == "" {
		b.ClientID = NewClientID()
	}
	s.blocks[b.ClientID] = &b
	s.order[b.ParentID] = append(s.order[b.ParentID], b.ClientID)
	s.mu.Unlock()

	s.notify()
}

// SelectBlock sets the single selection, clearing any multi-selection.
func (s *Store) SelectBlock(id string) {
	s.mu.Lock()
	if _, ok := s.blocks[id]; !ok {
		s.mu.Unlock()
		return
	}
	s.selected = id
	s.multi = nil
	s.mu.Unlock()

	s.notify()
}

// MultiSelect selects the ordered range of sibling blocks between start and
// end (inclusive, in either direction). start==end collapses to a single
// selection. Unknown IDs or blocks with different parents are a no-op.
func (s *Store) MultiSelect(start, end string) {
	if start == end {
		s.SelectBlock(start)
		return
	}

	s.mu.Lock()
	sb, ok1 := s.blocks[start]
	eb, ok2 := s.blocks[end]
	if !ok1 || !ok2 || sb.ParentID != eb.ParentID {
		s.mu.Unlock()
		return
	}

	siblings := s.order[sb.ParentID]
	si, ei := indexOf(siblings, start), indexOf(siblings, end)
	if si < 0 || ei < 0 {
		s.mu.Unlock()
		return
	}
	if si > ei {
		si, ei = ei, si
	}

	s.multi = append([]string(nil), siblings[si:ei+1]...)
	s.selected = ""
	s.mu.Unlock()

	s.notify()
}

// ClearSelectedBlock clears both single and multi-selection.
func (s *Store) ClearSelectedBlock() {
	s.mu.Lock()
	changed := s.selected != "" || len(s.multi) > 0
	s.selected = ""
	s.multi = nil
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// RemoveBlocks removes the given blocks and their descendants.
// Selection referencing removed blocks is cleared.
func (s *Store) RemoveBlocks(ids []string) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	if !s.anyExistLocked(ids) {
		s.mu.Unlock()
		return
	}

	s.pushUndo()
	for _, id := range ids {
		s.removeBlockLocked(id)
	}
	s.pruneSelection()
	s.mu.Unlock()

	s.notify()
}

// removeBlockLocked removes a block and its subtree.
func (s *Store) removeBlockLocked(id string) {
	b, ok := s.blocks[id]
	if !ok {
		return
	}

	for _, child := range append([]string(nil), s.order[id]...) {
		s.removeBlockLocked(child)
	}
	delete(s.order, id)

	siblings := s.order[b.ParentID]
	if i := indexOf(siblings, id); i >= 0 {
		s.order[b.ParentID] = append(siblings[:i], siblings[i+1:]...)
	}
	delete(s.blocks, id)
}

// DuplicateBlocks clones the given blocks, each with its whole subtree, under
// fresh client IDs, inserts the clones after the last source block, and
// selects them. Returns the new top-level clone IDs. Fails with
// ErrSelectionLocked when a template lock covers the target container.
func (s *Store) DuplicateBlocks(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	last, ok := s.blocks[ids[len(ids)-1]]
	if !ok {
		s.mu.Unlock()
		return nil, ErrBlockNotFound
	}

	parent := last.ParentID
	if s.containerLockedLocked(parent) {
		s.mu.Unlock()
		return nil, ErrSelectionLocked
	}

	s.pushUndo()

	at := indexOf(s.order[parent], last.ClientID) + 1

	newIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		src, ok := s.blocks[id]
		if !ok {
			continue
		}
		cloneID := s.cloneSubtreeLocked(src, parent)
		s.insertAtLocked(parent, at, cloneID)
		at++
		newIDs = append(newIDs, cloneID)
	}

	s.selectIDsLocked(newIDs)
	s.mu.Unlock()

	s.notify()
	return newIDs, nil
}

// cloneSubtreeLocked deep-clones a block and its descendants under fresh
// client IDs. The clone's root is reparented to parentID; descendants keep
// their relative order. The root clone is not added to parentID's order.
func (s *Store) cloneSubtreeLocked(src *Block, parentID string) string {
	clone := src.Clone()
	clone.ClientID = NewClientID()
	clone.ParentID = parentID
	s.blocks[clone.ClientID] = clone

	for _, childID := range s.order[src.ClientID] {
		child, ok := s.blocks[childID]
		if !ok {
			continue
		}
		childClone := s.cloneSubtreeLocked(child, clone.ClientID)
		s.order[clone.ClientID] = append(s.order[clone.ClientID], childClone)
	}
	return clone.ClientID
}

// InsertBefore inserts a default block before the first of the given blocks
// and selects it. Returns the new block's client ID. Fails with
// ErrSelectionLocked when a template lock covers the container.
func (s *Store) InsertBefore(ids []string) (string, error) {
	return s.insertAdjacent(ids, false)
}

// InsertAfter inserts a default block after the last of the given blocks and
// selects it. Returns the new block's client ID. Fails with
// ErrSelectionLocked when a template lock covers the container.
func (s *Store) InsertAfter(ids []string) (string, error) {
	return s.insertAdjacent(ids, true)
}

func (s *Store) insertAdjacent(ids []string, after bool) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}

	anchor := ids[0]
	if after {
		anchor = ids[len(ids)-1]
	}

	s.mu.Lock()
	ab, ok := s.blocks[anchor]
	if !ok {
		s.mu.Unlock()
		return "", ErrBlockNotFound
	}

	if s.containerLockedLocked(ab.ParentID) {
		s.mu.Unlock()
		return "", ErrSelectionLocked
	}

	s.pushUndo()

	at := indexOf(s.order[ab.ParentID], anchor)
	if after {
		at++
	}

	nb := &Block{
		ClientID: NewClientID(),
		Type:     s.defaultBlockType,
		ParentID: ab.ParentID,
	}
	s.blocks[nb.ClientID] = nb
	s.insertAtLocked(ab.ParentID, at, nb.ClientID)
	s.selected = nb.ClientID
	s.multi = nil
	s.mu.Unlock()

	s.notify()
	return nb.ClientID, nil
}

// UpdateBlockText replaces a block's inline content. Fails with
// ErrSelectionLocked when a LockAll above the block freezes its content.
func (s *Store) UpdateBlockText(id, text string) error {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return ErrBlockNotFound
	}

	if s.contentLockedLocked(id) {
		s.mu.Unlock()
		return ErrSelectionLocked
	}

	s.pushUndo()
	b.Text = text
	s.mu.Unlock()

	s.notify()
	return nil
}

// --- internals ---

func (s *Store) anyExistLocked(ids []string) bool {
	for _, id := range ids {
		if _, ok := s.blocks[id]; ok {
			return true
		}
	}
	return false
}

// insertAtLocked inserts a client ID into a parent's order at the given
// index, clamped to the valid range.
func (s *Store) insertAtLocked(parent string, at int, id string) {
	siblings := s.order[parent]
	if at < 0 {
		at = 0
	}
	if at > len(siblings) {
		at = len(siblings)
	}
	siblings = append(siblings, "")
	copy(siblings[at+1:], siblings[at:])
	siblings[at] = id
	s.order[parent] = siblings
}

// selectIDsLocked selects a set of sibling IDs, single or multi.
func (s *Store) selectIDsLocked(ids []string) {
	switch len(ids) {
	case 0:
		s.selected = ""
		s.multi = nil
	case 1:
		s.selected = ids[0]
		s.multi = nil
	default:
		s.selected = ""
		s.multi = append([]string(nil), ids...)
	}
}

// pruneSelection drops selection entries whose blocks no longer exist.
func (s *Store) pruneSelection() {
	if s.selected != "" {
		if _, ok := s.blocks[s.selected]; !ok {
			s.selected = ""
		}
	}
	if len(s.multi) > 0 {
		kept := s.multi[:0]
		for _, id := range s.multi {
			if _, ok := s.blocks[id]; ok {
				kept = append(kept, id)
			}
		}
		s.multi = kept
		if len(s.multi) == 1 {
			s.selected = s.multi[0]
			s.multi = nil
		} else if len(s.multi) == 0 {
			s.multi = nil
		}
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
