// Package store implements the block-editor state store: the block tree,
// selection state, template locking, undo history, and change notification.
// Shortcut handlers mutate editor state exclusively through this package.
package store

// LockToken describes a template lock on a container.
type LockToken string

const (
	// LockNone means no lock: all structural edits are allowed.
	LockNone LockToken = ""

	// LockAll prevents all structural edits (removal, insertion, moving)
	// within the container and freezes the inline content of the blocks
	// inside it.
	LockAll LockToken = "all"

	// LockInsert prevents insertion and removal but allows moving and
	// editing inline content.
	LockInsert LockToken = "insert"
)

// Locked reports whether the token prevents block removal and insertion.
func (t LockToken) Locked() bool {
	return t != LockNone
}

// DefaultBlockType is the block type inserted by insert-before/after.
const DefaultBlockType = "core/paragraph"

// Block is an atomic content unit in the editor's document model.
type Block struct {
	// ClientID uniquely identifies the block within the editing session.
	ClientID string

	// Type is the block type name, e.g. "core/paragraph".
	Type string

	// Text is the block's inline content.
	Text string

	// ParentID is the client ID of the containing block, or "" for a
	// top-level block.
	ParentID string

	// TemplateLock constrains structural edits inside this block.
	TemplateLock LockToken
}

// Clone returns a copy of the block.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
