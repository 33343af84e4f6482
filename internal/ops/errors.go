package ops

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrNameConflict        = errors.New("name already exists")
	ErrConflict            = errors.New("destination exists")
	ErrOperationInProgress = errors.New("another operation is in progress")
	ErrUndoObstructed      = errors.New("undo obstructed")
	ErrCancelled           = errors.New("cancelled")
	ErrNothingToUndo       = errors.New("nothing to undo")
	ErrEmptyRegister       = errors.New("nothing yanked")
	ErrInvalidName         = errors.New("invalid name")
)

// ConflictError lists paste destinations that already exist and have no
// resolution yet.
type ConflictError struct {
	Paths []string
}

func (e *ConflictError) Error() string {
	names := make([]string, len(e.Paths))
	for i, p := range e.Paths {
		names[i] = filepath.Base(p)
	}
	return fmt.Sprintf("%d conflicting item(s): %s", len(e.Paths), strings.Join(names, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidateName rejects names that are empty or would escape the directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "", name == ".", name == "..":
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	case strings.ContainsRune(name, filepath.Separator), strings.ContainsRune(name, 0):
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}
