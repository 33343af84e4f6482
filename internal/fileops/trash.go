package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Trash is a holding area that deleted items are moved into so a delete can
// be reversed by moving them back.
type Trash struct {
	dir string
}

// NewTrash prepares the holding directory.
func NewTrash(dir string) (*Trash, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("cannot create trash directory: %w", err)
	}
	return &Trash{dir: dir}, nil
}

func (t *Trash) Dir() string {
	return t.dir
}

// Put moves path into the holding area and returns where it now lives.
func (t *Trash) Put(path string) (string, error) {
	held := filepath.Join(t.dir, uuid.NewString()+"_"+filepath.Base(path))
	if err := Move(path, held, nil); err != nil {
		return "", err
	}
	return held, nil
}

// Restore moves a held item back to original, creating missing parents.
// It refuses to replace anything that now occupies original.
func (t *Trash) Restore(held, original string) error {
	if Exists(original) {
		return fmt.Errorf("%s: %w", original, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(original), 0755); err != nil {
		return err
	}
	return Move(held, original, nil)
}

// OriginalName strips the holding-area prefix from a held path.
func OriginalName(held string) string {
	base := filepath.Base(held)
	if i := strings.Index(base, "_"); i == 36 {
		return base[i+1:]
	}
	return base
}

// Discard permanently removes one held item. Paths outside the holding
// area are refused.
func (t *Trash) Discard(held string) error {
	rel, err := filepath.Rel(t.dir, held)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return fmt.Errorf("%s is not held in %s", held, t.dir)
	}
	return os.RemoveAll(held)
}

// Purge removes everything from the holding area.
func (t *Trash) Purge() error {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(t.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
