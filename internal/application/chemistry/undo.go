package chemistry

import (
	chem "github.com/chem4word/chem4word/internal/domain/chemistry"
	"github.com/chem4word/chem4word/pkg/errors"
)

// DefaultUndoDepth is used when a non-positive depth is requested.
const DefaultUndoDepth = 50

// UndoStack keeps model snapshots for undo and redo.  The undo side holds at
// most depth snapshots; the oldest is dropped first.
type UndoStack struct {
	undo  []*chem.Model
	redo  []*chem.Model
	depth int
}

// NewUndoStack returns an empty stack.
func NewUndoStack(depth int) *UndoStack {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &UndoStack{depth: depth}
}

// Push records the state before an edit and clears the redo side.
func (u *UndoStack) Push(snapshot *chem.Model) {
	u.undo = append(u.undo, snapshot)
	if n := len(u.undo) - u.depth; n > 0 {
		for i := 0; i < n; i++ {
			u.undo[i] = nil
		}
		u.undo = append(u.undo[:0], u.undo[n:]...)
	}
	for i := range u.redo {
		u.redo[i] = nil
	}
	u.redo = u.redo[:0]
}

// Undo returns the most recent snapshot and saves current for Redo.
func (u *UndoStack) Undo(current *chem.Model) (*chem.Model, error) {
	if len(u.undo) == 0 {
		return nil, errors.New(errors.CodeNothingToUndo, "nothing to undo")
	}
	prev := pop(&u.undo)
	u.redo = append(u.redo, current)
	return prev, nil
}

// Redo reverses the last Undo and saves current for Undo.
func (u *UndoStack) Redo(current *chem.Model) (*chem.Model, error) {
	if len(u.redo) == 0 {
		return nil, errors.New(errors.CodeNothingToUndo, "nothing to redo")
	}
	next := pop(&u.redo)
	u.undo = append(u.undo, current)
	return next, nil
}

// CanUndo reports whether Undo would succeed.
func (u *UndoStack) CanUndo() bool { return len(u.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (u *UndoStack) CanRedo() bool { return len(u.redo) > 0 }

// UndoDepth returns the number of undo snapshots.
func (u *UndoStack) UndoDepth() int { return len(u.undo) }

// RedoDepth returns the number of redo snapshots.
func (u *UndoStack) RedoDepth() int { return len(u.redo) }

// Clear drops all history.
func (u *UndoStack) Clear() {
	u.undo = nil
	u.redo = nil
}

func pop(s *[]*chem.Model) *chem.Model {
	last := len(*s) - 1
	m := (*s)[last]
	(*s)[last] = nil
	*s = (*s)[:last]
	return m
}
