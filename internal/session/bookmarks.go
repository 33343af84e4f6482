package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LFroesch/fcmd/internal/panel"
)

// SortState is a remembered sort for one directory.
type SortState struct {
	Sort    string
	Reverse bool
}

// sortMemory hands remembered per-directory sorts to panels.
type sortMemory struct{ s *Session }

func (m sortMemory) SortFor(dir string) (panel.SortMode, bool, bool) {
	st, ok := m.s.dirSorts[dir]
	if !ok {
		return panel.SortName, false, false
	}
	mode, err := panel.ParseSortMode(st.Sort)
	if err != nil {
		return panel.SortName, false, false
	}
	return mode, st.Reverse, true
}

// rememberSort records the focused panel's sort for its directory. The
// default order is stored as no entry at all.
func (s *Session) rememberSort() {
	p := s.Active()
	if p.SortMode() == panel.SortName && !p.Reversed() {
		delete(s.dirSorts, p.Path())
	} else {
		s.dirSorts[p.Path()] = SortState{Sort: p.SortMode().String(), Reverse: p.Reversed()}
	}
	s.persist()
}

// bookmarkTarget is the directory under the cursor, or the panel's own
// directory when the cursor sits on a file.
func (s *Session) bookmarkTarget() string {
	p := s.Active()
	if e, ok := p.Current(); ok && e.IsDir {
		return e.Path
	}
	return p.Path()
}

func (s *Session) promptBookmark() {
	s.openLine("bookmark " + filepath.Base(s.bookmarkTarget()))
}

func (s *Session) addBookmark(name string) {
	path := s.bookmarkTarget()
	if name == "" {
		name = filepath.Base(path)
	}
	if strings.ContainsAny(name, " \t") {
		s.fail(fmt.Errorf("bookmark name %q contains spaces", name))
		return
	}
	s.bookmarks[name] = path
	s.info("Bookmark added: %s", name)
	s.persist()
}

func (s *Session) jumpBookmark(name string) {
	path, ok := s.bookmarks[name]
	if !ok {
		s.fail(fmt.Errorf("no bookmark named %q", name))
		return
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		s.fail(fmt.Errorf("bookmark %s: directory no longer exists", name))
		return
	}
	if err := s.Active().Enter(path); err != nil {
		s.fail(err)
	}
}

func (s *Session) deleteBookmark(name string) {
	if _, ok := s.bookmarks[name]; !ok {
		s.fail(fmt.Errorf("no bookmark named %q", name))
		return
	}
	delete(s.bookmarks, name)
	s.info("Bookmark removed: %s", name)
	s.persist()
}

func (s *Session) renameBookmark(arg string) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		s.fail(fmt.Errorf("bmrename: expected old and new name"))
		return
	}
	old, name := fields[0], fields[1]
	path, ok := s.bookmarks[old]
	if !ok {
		s.fail(fmt.Errorf("no bookmark named %q", old))
		return
	}
	delete(s.bookmarks, old)
	s.bookmarks[name] = path
	s.info("Bookmark renamed: %s -> %s", old, name)
	s.persist()
}

func (s *Session) listBookmarks() {
	if len(s.bookmarks) == 0 {
		s.info("No bookmarks set. Use B to add one.")
		return
	}
	names := make([]string, 0, len(s.bookmarks))
	for n := range s.bookmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ":" + s.bookmarks[n]
	}
	s.info("%s", strings.Join(parts, "  "))
}

// Bookmarks returns a copy of the named directory bookmarks.
func (s *Session) Bookmarks() map[string]string {
	out := make(map[string]string, len(s.bookmarks))
	for k, v := range s.bookmarks {
		out[k] = v
	}
	return out
}
