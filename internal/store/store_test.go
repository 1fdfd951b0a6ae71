package store

import (
	"testing"
)

// seedBlocks appends n top-level paragraph blocks and returns their IDs.
func seedBlocks(t *testing.T, s *Store, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		id := NewClientID()
		s.AppendBlock(Block{ClientID: id, Type: DefaultBlockType})
		ids[i] = id
	}
	return ids
}

func TestAppendAndOrder(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 3)

	order := s.BlockOrder("")
	if len(order) != 3 {
		t.Fatalf("BlockOrder len = %d, want 3", len(order))
	}
	for i, id := range ids {
		if order[i] != id {
			t.Errorf("order[%d] = %s, want %s", i, order[i], id)
		}
	}
	if s.BlockCount() != 3 {
		t.Errorf("BlockCount = %d, want 3", s.BlockCount())
	}
}

func TestSelectBlock(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 2)

	s.SelectBlock(ids[0])
	if id, ok := s.SelectedBlockClientID(); !ok || id != ids[0] {
		t.Errorf("SelectedBlockClientID = %q, %v; want %q, true", id, ok, ids[0])
	}

	// Unknown ID is a no-op.
	s.SelectBlock("nope")
	if id, _ := s.SelectedBlockClientID(); id != ids[0] {
		t.Errorf("selection changed by unknown ID: %q", id)
	}
}

func TestMultiSelect(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 4)

	s.MultiSelect(ids[1], ids[3])
	got := s.MultiSelectedBlockClientIDs()
	want := ids[1:4]
	if len(got) != len(want) {
		t.Fatalf("multi selection len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("multi[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if !s.HasMultiSelection() {
		t.Error("HasMultiSelection = false, want true")
	}
}

func TestMultiSelectReversedRange(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 3)

	s.MultiSelect(ids[2], ids[0])
	got := s.MultiSelectedBlockClientIDs()
	if len(got) != 3 || got[0] != ids[0] || got[2] != ids[2] {
		t.Errorf("reversed range selection = %v, want document order %v", got, ids)
	}
}

func TestMultiSelectCollapsesToSingle(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 2)

	s.MultiSelect(ids[0], ids[0])
	if s.HasMultiSelection() {
		t.Error("start==end should collapse to single selection")
	}
	if id, ok := s.SelectedBlockClientID(); !ok || id != ids[0] {
		t.Errorf("SelectedBlockClientID = %q, want %q", id, ids[0])
	}
}

func TestMultiSelectCrossParentNoOp(t *testing.T) {
	s := New()
	parent := NewClientID()
	s.AppendBlock(Block{ClientID: parent, Type: "core/group"})
	child := NewClientID()
	s.AppendBlock(Block{ClientID: child, Type: DefaultBlockType, ParentID: parent})
	top := NewClientID()
	s.AppendBlock(Block{ClientID: top, Type: DefaultBlockType})

	s.MultiSelect(child, top)
	if s.HasMultiSelection() {
		t.Error("cross-parent range should be a no-op")
	}
}

func TestSelectedBlockClientIDs(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 3)

	if got := s.SelectedBlockClientIDs(); got != nil {
		t.Errorf("empty selection = %v, want nil", got)
	}

	s.SelectBlock(ids[1])
	if got := s.SelectedBlockClientIDs(); len(got) != 1 || got[0] != ids[1] {
		t.Errorf("single selection = %v, want [%s]", got, ids[1])
	}

	s.MultiSelect(ids[0], ids[2])
	if got := s.SelectedBlockClientIDs(); len(got) != 3 {
		t.Errorf("multi selection len = %d, want 3", len(got))
	}
}

func TestClearSelectedBlock(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 2)

	s.MultiSelect(ids[0], ids[1])
	s.ClearSelectedBlock()

	if s.HasMultiSelection() {
		t.Error("multi selection should be cleared")
	}
	if _, ok := s.SelectedBlockClientID(); ok {
		t.Error("single selection should be cleared")
	}
}

func TestRemoveBlocks(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 3)

	s.MultiSelect(ids[0], ids[1])
	s.RemoveBlocks(ids[:2])

	if s.BlockCount() != 1 {
		t.Fatalf("BlockCount = %d, want 1", s.BlockCount())
	}
	if order := s.BlockOrder(""); len(order) != 1 || order[0] != ids[2] {
		t.Errorf("BlockOrder = %v, want [%s]", order, ids[2])
	}
	// Selection referencing removed blocks is gone.
	if s.HasMultiSelection() {
		t.Error("selection should be pruned after removal")
	}
	if _, ok := s.SelectedBlockClientID(); ok {
		t.Error("single selection should be pruned after removal")
	}
}

func TestRemoveBlocksRemovesDescendants(t *testing.T) {
	s := New()
	parent := NewClientID()
	s.AppendBlock(Block{ClientID: parent, Type: "core/group"})
	child := NewClientID()
	s.AppendBlock(Block{ClientID: child, Type: DefaultBlockType, ParentID: parent})

	s.RemoveBlocks([]string{parent})
	if s.BlockCount() != 0 {
		t.Errorf("BlockCount = %d, want 0", s.BlockCount())
	}
	if _, ok := s.Block(child); ok {
		t.Error("descendant should be removed with its parent")
	}
}

func TestDuplicateBlocks(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 3)
	if err := s.UpdateBlockText(ids[1], "hello"); err != nil {
		t.Fatalf("UpdateBlockText error = %v", err)
	}

	newIDs, err := s.DuplicateBlocks(ids[:2])
	if err != nil {
		t.Fatalf("DuplicateBlocks error = %v", err)
	}
	if len(newIDs) != 2 {
		t.Fatalf("DuplicateBlocks returned %d IDs, want 2", len(newIDs))
	}

	// Clones sit directly after the last source block, before ids[2].
	order := s.BlockOrder("")
	want := []string{ids[0], ids[1], newIDs[0], newIDs[1], ids[2]}
	if len(order) != len(want) {
		t.Fatalf("BlockOrder len = %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}

	// Clones carry content but get fresh IDs, and become the selection.
	clone, ok := s.Block(newIDs[1])
	if !ok {
		t.Fatalf("clone %s not found", newIDs[1])
	}
	if clone.Text != "hello" {
		t.Errorf("clone text = %q, want %q", clone.Text, "hello")
	}
	sel := s.SelectedBlockClientIDs()
	if len(sel) != 2 || sel[0] != newIDs[0] || sel[1] != newIDs[1] {
		t.Errorf("selection = %v, want %v", sel, newIDs)
	}
}

func TestDuplicateBlocksClonesSubtree(t *testing.T) {
	s := New()
	parent := NewClientID()
	s.AppendBlock(Block{ClientID: parent, Type: "core/group"})
	child := NewClientID()
	s.AppendBlock(Block{ClientID: child, Type: DefaultBlockType, ParentID: parent})
	grandchild := NewClientID()
	s.AppendBlock(Block{ClientID: grandchild, Type: DefaultBlockType, ParentID: child})
	if err := s.UpdateBlockText(grandchild, "deep"); err != nil {
		t.Fatalf("UpdateBlockText error = %v", err)
	}

	newIDs, err := s.DuplicateBlocks([]string{parent})
	if err != nil {
		t.Fatalf("DuplicateBlocks error = %v", err)
	}
	if len(newIDs) != 1 {
		t.Fatalf("DuplicateBlocks returned %d IDs, want 1", len(newIDs))
	}

	children := s.BlockOrder(newIDs[0])
	if len(children) != 1 {
		t.Fatalf("duplicated parent has %d children, want 1", len(children))
	}
	if children[0] == child {
		t.Error("cloned child kept the source client ID")
	}
	cb, _ := s.Block(children[0])
	if cb.ParentID != newIDs[0] {
		t.Errorf("cloned child parent = %q, want %q", cb.ParentID, newIDs[0])
	}

	grandchildren := s.BlockOrder(children[0])
	if len(grandchildren) != 1 {
		t.Fatalf("cloned child has %d children, want 1", len(grandchildren))
	}
	gb, _ := s.Block(grandchildren[0])
	if gb.Text != "deep" {
		t.Errorf("cloned grandchild text = %q, want %q", gb.Text, "deep")
	}

	// Sources keep their own subtrees.
	if got := s.BlockOrder(parent); len(got) != 1 || got[0] != child {
		t.Errorf("source subtree changed: %v", got)
	}
}

func TestInsertBeforeAndAfter(t *testing.T) {
	s := New(WithDefaultBlockType("core/quote"))
	ids := seedBlocks(t, s, 2)

	before, err := s.InsertBefore([]string{ids[0], ids[1]})
	if err != nil || before == "" {
		t.Fatalf("InsertBefore = %q, %v; want new ID", before, err)
	}
	after, err := s.InsertAfter([]string{ids[0], ids[1]})
	if err != nil || after == "" {
		t.Fatalf("InsertAfter = %q, %v; want new ID", after, err)
	}

	order := s.BlockOrder("")
	want := []string{before, ids[0], ids[1], after}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	// New block uses the configured default type and is selected.
	nb, _ := s.Block(after)
	if nb.Type != "core/quote" {
		t.Errorf("inserted block type = %q, want core/quote", nb.Type)
	}
	if id, _ := s.SelectedBlockClientID(); id != after {
		t.Errorf("selection = %q, want %q", id, after)
	}
}

func TestUndoRedo(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 2)

	s.RemoveBlocks([]string{ids[0]})
	if s.BlockCount() != 1 {
		t.Fatalf("BlockCount after remove = %d, want 1", s.BlockCount())
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo error = %v", err)
	}
	if s.BlockCount() != 2 {
		t.Errorf("BlockCount after undo = %d, want 2", s.BlockCount())
	}
	if order := s.BlockOrder(""); order[0] != ids[0] {
		t.Errorf("undo should restore original order, got %v", order)
	}

	if err := s.Redo(); err != nil {
		t.Fatalf("Redo error = %v", err)
	}
	if s.BlockCount() != 1 {
		t.Errorf("BlockCount after redo = %d, want 1", s.BlockCount())
	}
}

func TestUndoRedoEmptyStacks(t *testing.T) {
	s := New()

	if err := s.Undo(); err != ErrNothingToUndo {
		t.Errorf("Undo on empty stack = %v, want ErrNothingToUndo", err)
	}
	if err := s.Redo(); err != ErrNothingToRedo {
		t.Errorf("Redo on empty stack = %v, want ErrNothingToRedo", err)
	}
}

func TestMutationClearsRedoStack(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 2)

	s.RemoveBlocks([]string{ids[0]})
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo error = %v", err)
	}
	if !s.CanRedo() {
		t.Fatal("CanRedo = false after undo")
	}

	s.RemoveBlocks([]string{ids[1]})
	if s.CanRedo() {
		t.Error("redo stack should be cleared by a new mutation")
	}
}

func TestSelectionNotUndoable(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 2)

	s.SelectBlock(ids[0])
	s.MultiSelect(ids[0], ids[1])

	if s.CanUndo() {
		t.Error("selection changes should not create undo entries")
	}
}

func TestIsSelectionLocked(t *testing.T) {
	s := New()

	group := NewClientID()
	s.AppendBlock(Block{ClientID: group, Type: "core/group", TemplateLock: LockAll})
	locked := NewClientID()
	s.AppendBlock(Block{ClientID: locked, Type: DefaultBlockType, ParentID: group})
	free := NewClientID()
	s.AppendBlock(Block{ClientID: free, Type: DefaultBlockType})

	s.SelectBlock(free)
	if s.IsSelectionLocked() {
		t.Error("top-level block should not be locked")
	}

	s.SelectBlock(locked)
	if !s.IsSelectionLocked() {
		t.Error("block under a locked group should be locked")
	}

	// The group itself sits at the top level and is removable.
	s.SelectBlock(group)
	if s.IsSelectionLocked() {
		t.Error("the locked container itself is not locked by its own token")
	}
}

func TestDocumentLock(t *testing.T) {
	s := New(WithDocumentLock(LockAll))
	ids := seedBlocks(t, s, 1)

	s.SelectBlock(ids[0])
	if !s.IsSelectionLocked() {
		t.Error("document lock should lock top-level blocks")
	}
}

func TestDocumentLockBlocksMutations(t *testing.T) {
	s := New(WithDocumentLock(LockAll))
	ids := seedBlocks(t, s, 2)

	if _, err := s.InsertAfter(ids); err != ErrSelectionLocked {
		t.Errorf("InsertAfter error = %v, want ErrSelectionLocked", err)
	}
	if _, err := s.InsertBefore(ids); err != ErrSelectionLocked {
		t.Errorf("InsertBefore error = %v, want ErrSelectionLocked", err)
	}
	if _, err := s.DuplicateBlocks(ids); err != ErrSelectionLocked {
		t.Errorf("DuplicateBlocks error = %v, want ErrSelectionLocked", err)
	}
	if err := s.UpdateBlockText(ids[0], "x"); err != ErrSelectionLocked {
		t.Errorf("UpdateBlockText error = %v, want ErrSelectionLocked", err)
	}

	// Nothing mutated, nothing pushed onto the undo stack.
	if s.BlockCount() != 2 {
		t.Errorf("BlockCount = %d, want 2", s.BlockCount())
	}
	if s.CanUndo() {
		t.Error("refused mutations should not create undo entries")
	}
}

func TestLockedGroupBlocksInsertion(t *testing.T) {
	s := New()
	group := NewClientID()
	s.AppendBlock(Block{ClientID: group, Type: "core/group", TemplateLock: LockInsert})
	child := NewClientID()
	s.AppendBlock(Block{ClientID: child, Type: DefaultBlockType, ParentID: group})

	if _, err := s.InsertAfter([]string{child}); err != ErrSelectionLocked {
		t.Errorf("InsertAfter inside locked group = %v, want ErrSelectionLocked", err)
	}
	if _, err := s.DuplicateBlocks([]string{child}); err != ErrSelectionLocked {
		t.Errorf("DuplicateBlocks inside locked group = %v, want ErrSelectionLocked", err)
	}

	// The group itself sits at the unlocked top level.
	if _, err := s.InsertAfter([]string{group}); err != nil {
		t.Errorf("InsertAfter next to locked group = %v, want nil", err)
	}
}

func TestLockInsertAllowsTextEdit(t *testing.T) {
	s := New()
	group := NewClientID()
	s.AppendBlock(Block{ClientID: group, Type: "core/group", TemplateLock: LockInsert})
	child := NewClientID()
	s.AppendBlock(Block{ClientID: child, Type: DefaultBlockType, ParentID: group})

	if err := s.UpdateBlockText(child, "still editable"); err != nil {
		t.Fatalf("UpdateBlockText under LockInsert = %v, want nil", err)
	}
	b, _ := s.Block(child)
	if b.Text != "still editable" {
		t.Errorf("text = %q, want %q", b.Text, "still editable")
	}
}

func TestSubscribe(t *testing.T) {
	s := New()

	var calls int
	unsub := s.Subscribe(func() { calls++ })

	s.AppendBlock(Block{Type: DefaultBlockType})
	if calls != 1 {
		t.Errorf("calls after append = %d, want 1", calls)
	}

	ids := s.BlockOrder("")
	s.SelectBlock(ids[0])
	if calls != 2 {
		t.Errorf("calls after select = %d, want 2", calls)
	}

	unsub()
	s.ClearSelectedBlock()
	if calls != 2 {
		t.Errorf("calls after unsubscribe = %d, want 2", calls)
	}
}

func TestPruneSelectionCollapsesToSingle(t *testing.T) {
	s := New()
	ids := seedBlocks(t, s, 3)

	s.MultiSelect(ids[0], ids[2])
	s.RemoveBlocks(ids[:2])

	// Two of three selected blocks are gone; the survivor becomes a
	// single selection.
	if s.HasMultiSelection() {
		t.Error("HasMultiSelection = true, want false")
	}
	if id, ok := s.SelectedBlockClientID(); !ok || id != ids[2] {
		t.Errorf("selection = %q, want %q", id, ids[2])
	}
}
