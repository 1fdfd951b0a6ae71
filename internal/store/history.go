package store

// snapshot captures the full block tree for undo/redo.
// Selection is deliberately not captured: undoing a removal restores the
// blocks, not the selection that existed before it.
type snapshot struct {
	blocks map[string]*Block
	order  map[string][]string
}

// capture deep-copies the current tree state.
func (s *Store) capture() snapshot {
	blocks := make(map[string]*Block, len(s.blocks))
	for id, b := range s.blocks {
		blocks[id] = b.Clone()
	}
	order := make(map[string][]string, len(s.order))
	for parent, ids := range s.order {
		order[parent] = append([]string(nil), ids...)
	}
	return snapshot{blocks: blocks, order: order}
}

// restore replaces the current tree state with a snapshot.
func (s *Store) restore(snap snapshot) {
	s.blocks = snap.blocks
	s.order = snap.order
	s.pruneSelection()
}

// pushUndo records the current state on the undo stack and clears the redo
// stack. Called before every tree mutation.
func (s *Store) pushUndo() {
	s.undoStack = append(s.undoStack, s.capture())
	if len(s.undoStack) > s.maxHistory {
		s.undoStack = s.undoStack[1:]
	}
	s.redoStack = s.redoStack[:0]
}

// Undo reverts the most recent tree mutation.
func (s *Store) Undo() error {
	s.mu.Lock()
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}

	current := s.capture()
	last := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, current)
	s.restore(last)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Redo re-applies the most recently undone mutation.
func (s *Store) Redo() error {
	s.mu.Lock()
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToRedo
	}

	current := s.capture()
	last := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = append(s.undoStack, current)
	s.restore(last)
	s.mu.Unlock()

	s.notify()
	return nil
}

// CanUndo reports whether the undo stack is non-empty.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undoStack) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.redoStack) > 0
}
