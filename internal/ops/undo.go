package ops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LFroesch/fcmd/internal/fileops"
)

type ActionKind int

const (
	// ActionRestore moves a held item From the trash back To its origin.
	ActionRestore ActionKind = iota
	// ActionDelete removes Path outright.
	ActionDelete
	// ActionRename moves From back To.
	ActionRename
)

// Action is one step of an inverse operation, recorded with exact paths at
// the moment the forward step succeeded.
type Action struct {
	Kind ActionKind
	From string
	To   string
	Path string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionRestore:
		return fmt.Sprintf("restore %s", a.To)
	case ActionDelete:
		return fmt.Sprintf("delete %s", a.Path)
	default:
		return fmt.Sprintf("rename %s -> %s", a.From, a.To)
	}
}

// UndoEntry is the inverse of one completed operation. Actions are applied
// last to first.
type UndoEntry struct {
	Actions []Action
	Label   string
	At      time.Time
}

// UndoStack is a bounded history; pushing past capacity drops the oldest.
type UndoStack struct {
	entries  []*UndoEntry
	capacity int
}

func NewUndoStack(capacity int) *UndoStack {
	if capacity < 1 {
		capacity = 1
	}
	return &UndoStack{capacity: capacity}
}

// Push records e and returns the entries that fell off the bottom.
func (s *UndoStack) Push(e *UndoEntry) []*UndoEntry {
	s.entries = append(s.entries, e)
	over := len(s.entries) - s.capacity
	if over <= 0 {
		return nil
	}
	evicted := append([]*UndoEntry(nil), s.entries[:over]...)
	s.entries = append([]*UndoEntry(nil), s.entries[over:]...)
	return evicted
}

// heldPaths lists the trash items an entry would restore.
func (e *UndoEntry) heldPaths() []string {
	var out []string
	for _, a := range e.Actions {
		if a.Kind == ActionRestore {
			out = append(out, a.From)
		}
	}
	return out
}

func (s *UndoStack) Peek() (*UndoEntry, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	return s.entries[len(s.entries)-1], true
}

func (s *UndoStack) Pop() (*UndoEntry, bool) {
	e, ok := s.Peek()
	if ok {
		s.entries = s.entries[:len(s.entries)-1]
	}
	return e, ok
}

func (s *UndoStack) Len() int { return len(s.entries) }

func (s *UndoStack) Capacity() int { return s.capacity }

// Labels returns entry labels, most recent first.
func (s *UndoStack) Labels() []string {
	out := make([]string, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i].Label)
	}
	return out
}

// apply runs a single inverse action. It never overwrites: an occupied
// target is reported as ErrUndoObstructed.
func apply(a Action, trash *fileops.Trash) error {
	switch a.Kind {
	case ActionRestore:
		if err := trash.Restore(a.From, a.To); err != nil {
			return obstructed(a.To, err)
		}
	case ActionDelete:
		if !fileops.Exists(a.Path) {
			return nil
		}
		if err := fileops.Remove(a.Path); err != nil {
			return fmt.Errorf("delete %s: %w", a.Path, err)
		}
	case ActionRename:
		if !fileops.Exists(a.From) {
			return fmt.Errorf("%s is gone: %w", a.From, ErrUndoObstructed)
		}
		if err := os.MkdirAll(filepath.Dir(a.To), 0755); err != nil {
			return err
		}
		if err := fileops.Move(a.From, a.To, nil); err != nil {
			return obstructed(a.To, err)
		}
	}
	return nil
}

func obstructed(path string, err error) error {
	if errors.Is(err, fileops.ErrExists) {
		return fmt.Errorf("%s is occupied: %w", path, ErrUndoObstructed)
	}
	return err
}
