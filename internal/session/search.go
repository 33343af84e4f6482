package session

import (
	"fmt"

	"github.com/LFroesch/fcmd/internal/panel"
	"github.com/LFroesch/fcmd/internal/search"
)

// searchState is the in-panel incremental search.
type searchState struct {
	origin  int
	pattern string
}

func (s *Session) searchStart() {
	s.search.origin = s.Active().Cursor()
}

// searchUpdate moves the cursor to the first match at or after the cursor
// position the search started from.
func (s *Session) searchUpdate(query string) {
	p := s.Active()
	if query == "" {
		p.SetCursor(s.search.origin)
		return
	}
	if i, ok := s.nextMatch(query, s.search.origin, 1, true); ok {
		p.SetCursor(i)
	}
}

func (s *Session) searchAccept(query string) {
	s.search.pattern = query
	if query == "" {
		return
	}
	if _, ok := s.nextMatch(query, s.Active().Cursor(), 1, true); !ok {
		s.fail(errNoMatch(query))
	}
}

func (s *Session) searchCancel() {
	s.Active().SetCursor(s.search.origin)
}

// searchStep jumps to the next (dir=1) or previous (dir=-1) match of the
// last accepted pattern, wrapping around the listing.
func (s *Session) searchStep(dir, times int) {
	if s.search.pattern == "" {
		s.info("No previous search")
		return
	}
	p := s.Active()
	for n := 0; n < times; n++ {
		i, ok := s.nextMatch(s.search.pattern, p.Cursor(), dir, false)
		if !ok {
			s.fail(errNoMatch(s.search.pattern))
			return
		}
		p.SetCursor(i)
	}
}

// nextMatch scans from start in direction dir. inclusive lets start itself
// match.
func (s *Session) nextMatch(query string, start, dir int, inclusive bool) (int, bool) {
	entries := s.Active().Entries()
	n := len(entries)
	if n == 0 {
		return 0, false
	}
	matched := make(map[int]bool)
	for _, m := range search.SubstringMatchNames(query, entryNames(entries)) {
		matched[m.Index] = true
	}
	if len(matched) == 0 {
		return 0, false
	}
	first := 1
	if inclusive {
		first = 0
	}
	for step := first; step <= n; step++ {
		i := ((start+dir*step)%n + n) % n
		if matched[i] {
			return i, true
		}
	}
	return 0, false
}

func entryNames(entries []panel.Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func errNoMatch(pattern string) error {
	return fmt.Errorf("pattern not found: %s", pattern)
}
