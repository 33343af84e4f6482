package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LFroesch/fcmd/internal/logger"
)

const maxVisualLevel = 3

// decorator feeds git tags and visual mark levels into panel listings.
type decorator struct{ s *Session }

func (d decorator) GitStatus(path string) string {
	if d.s.git == nil {
		return ""
	}
	return d.s.git.Status(path)
}

func (d decorator) MarkLevel(path string) int {
	return d.s.visualMarks[path]
}

// setMark remembers the focused directory under letter.
func (s *Session) setMark(letter string) {
	s.marks[letter] = s.Active().Path()
	s.info("Mark '%s set", letter)
	s.persist()
}

func (s *Session) jumpMark(letter string) {
	path, ok := s.marks[letter]
	if !ok {
		s.fail(fmt.Errorf("mark '%s is not set", letter))
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		s.fail(fmt.Errorf("mark '%s: %w", letter, err))
		return
	}
	p := s.Active()
	if info.IsDir() {
		if err := p.Enter(path); err != nil {
			s.fail(err)
		}
		return
	}
	if err := p.Enter(filepath.Dir(path)); err != nil {
		s.fail(err)
		return
	}
	p.SelectPath(path)
}

func (s *Session) deleteMark(letter string) {
	if _, ok := s.marks[letter]; !ok {
		s.fail(fmt.Errorf("mark '%s is not set", letter))
		return
	}
	delete(s.marks, letter)
	s.info("Mark '%s deleted", letter)
	s.persist()
}

func (s *Session) listMarks() {
	if len(s.marks) == 0 {
		s.info("No marks")
		return
	}
	letters := make([]string, 0, len(s.marks))
	for l := range s.marks {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	parts := make([]string, len(letters))
	for i, l := range letters {
		parts[i] = l + ":" + s.marks[l]
	}
	s.info("%s", strings.Join(parts, "  "))
}

// cycleVisualMark advances each target through levels 1..3 and back to
// unmarked.
func (s *Session) cycleVisualMark() {
	targets := s.Active().Targets()
	if len(targets) == 0 {
		return
	}
	for _, path := range targets {
		level := (s.visualMarks[path] + 1) % (maxVisualLevel + 1)
		if level == 0 {
			delete(s.visualMarks, path)
		} else {
			s.visualMarks[path] = level
		}
	}
	logger.Debug("visual marks cycled on %d item(s)", len(targets))
	s.redecorate()
	s.persist()
}

// nextVisualMark moves the cursor to the next marked entry, wrapping.
func (s *Session) nextVisualMark() {
	p := s.Active()
	entries := p.Entries()
	n := len(entries)
	for step := 1; step <= n; step++ {
		i := (p.Cursor() + step) % n
		if entries[i].MarkLevel > 0 {
			p.SetCursor(i)
			return
		}
	}
	s.info("No visual marks here")
}

func (s *Session) redecorate() {
	for _, t := range s.tabs {
		for _, p := range t.Panels {
			p.Redecorate()
		}
	}
}
