package panel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LFroesch/fcmd/internal/fileops"
)

var (
	ErrPathNotFound     = errors.New("path not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotDirectory     = errors.New("not a directory")
)

type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// Entry is an immutable snapshot of one directory member.
type Entry struct {
	Name       string
	Path       string
	Kind       Kind
	IsDir      bool // true for directories and symlinks that resolve to one
	LinkTarget string
	Size       int64
	ModTime    time.Time
	Created    time.Time
	Ext        string

	GitStatus string
	MarkLevel int
}

// Decorator supplies per-path hints. Implementations must not fail; an
// unknown path yields the zero value.
type Decorator interface {
	GitStatus(path string) string
	MarkLevel(path string) int
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", path, ErrPathNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w", path, ErrPermissionDenied)
	default:
		return fmt.Errorf("%s: %w", path, err)
	}
}

// ReadDir lists dir. It either returns the complete listing or an error;
// entries that vanish between readdir and lstat are skipped.
func ReadDir(dir string, showHidden bool, dec Decorator) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, classify(dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classify(dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if fileops.IsPartial(name) {
			continue
		}
		entry, ok := statEntry(filepath.Join(dir, name))
		if !ok {
			continue
		}
		entries = append(entries, decorate(entry, dec))
	}
	return entries, nil
}

func statEntry(path string) (Entry, bool) {
	linfo, err := os.Lstat(path)
	if err != nil {
		return Entry{}, false
	}

	e := Entry{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    linfo.Size(),
		ModTime: linfo.ModTime(),
		Created: createdTime(path, linfo),
	}

	switch {
	case linfo.Mode()&os.ModeSymlink != 0:
		e.Kind = KindSymlink
		if target, err := os.Readlink(path); err == nil {
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(path), target)
			}
			e.LinkTarget = target
		}
		if targetInfo, err := os.Stat(path); err == nil {
			e.IsDir = targetInfo.IsDir()
			e.Size = targetInfo.Size()
			e.ModTime = targetInfo.ModTime()
		}
	case linfo.IsDir():
		e.Kind = KindDir
		e.IsDir = true
	default:
		e.Kind = KindFile
	}

	if !e.IsDir {
		e.Ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name), "."))
	}
	return e, true
}

func decorate(e Entry, dec Decorator) Entry {
	if dec == nil {
		return e
	}
	e.GitStatus = dec.GitStatus(e.Path)
	e.MarkLevel = dec.MarkLevel(e.Path)
	return e
}
