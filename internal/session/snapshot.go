package session

import (
	"os"

	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/LFroesch/fcmd/internal/panel"
)

// PanelState is the persisted part of one panel.
type PanelState struct {
	Path    string
	Sort    string
	Reverse bool
}

// TabState is one persisted tab. Active is the focused panel index.
type TabState struct {
	Left, Right PanelState
	Active      int
}

// Snapshot is everything that survives a restart.
type Snapshot struct {
	Tabs        []TabState
	ActiveTab   int
	Theme       string
	Marks       map[string]string
	VisualMarks map[string]int
	Bookmarks   map[string]string
	DirSorts    map[string]SortState
}

func panelState(p *panel.Panel) PanelState {
	return PanelState{Path: p.Path(), Sort: p.SortMode().String(), Reverse: p.Reversed()}
}

// Snapshot captures the current tabs, marks, bookmarks, remembered sorts
// and theme.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ActiveTab:   s.activeTab,
		Theme:       s.themeName,
		Marks:       make(map[string]string, len(s.marks)),
		VisualMarks: make(map[string]int, len(s.visualMarks)),
		Bookmarks:   s.Bookmarks(),
		DirSorts:    make(map[string]SortState, len(s.dirSorts)),
	}
	for _, t := range s.tabs {
		snap.Tabs = append(snap.Tabs, TabState{
			Left:   panelState(t.Panels[0]),
			Right:  panelState(t.Panels[1]),
			Active: t.Focus,
		})
	}
	for k, v := range s.marks {
		snap.Marks[k] = v
	}
	for k, v := range s.visualMarks {
		snap.VisualMarks[k] = v
	}
	for k, v := range s.dirSorts {
		snap.DirSorts[k] = v
	}
	return snap
}

// Restore replaces tabs, marks and theme with snap. Directories that no
// longer exist open at fallback instead. An empty snapshot changes nothing.
func (s *Session) Restore(snap Snapshot, fallback string) {
	if snap.Marks != nil {
		s.marks = make(map[string]string, len(snap.Marks))
		for k, v := range snap.Marks {
			s.marks[k] = v
		}
	}
	if snap.VisualMarks != nil {
		s.visualMarks = make(map[string]int, len(snap.VisualMarks))
		for k, v := range snap.VisualMarks {
			if v >= 1 && v <= maxVisualLevel {
				s.visualMarks[k] = v
			}
		}
	}
	if snap.Bookmarks != nil {
		s.bookmarks = make(map[string]string, len(snap.Bookmarks))
		for k, v := range snap.Bookmarks {
			s.bookmarks[k] = v
		}
	}
	if snap.DirSorts != nil {
		s.dirSorts = make(map[string]SortState, len(snap.DirSorts))
		for k, v := range snap.DirSorts {
			if _, err := panel.ParseSortMode(v.Sort); err == nil {
				s.dirSorts[k] = v
			}
		}
	}
	if snap.Theme != "" && s.themes.Has(snap.Theme) {
		s.themeName = snap.Theme
	}

	var tabs []*Tab
	for _, ts := range snap.Tabs {
		t := &Tab{Focus: ts.Active}
		if t.Focus != 0 && t.Focus != 1 {
			t.Focus = 0
		}
		ok := true
		for i, ps := range []PanelState{ts.Left, ts.Right} {
			p, id, err := s.restorePanel(ps, fallback)
			if err != nil {
				logger.Warn("cannot restore tab: %v", err)
				ok = false
				break
			}
			t.Panels[i], t.IDs[i] = p, id
		}
		if ok {
			tabs = append(tabs, t)
		}
	}
	if len(tabs) > 0 {
		s.tabs = tabs
		s.activeTab = snap.ActiveTab
		if s.activeTab < 0 || s.activeTab >= len(tabs) {
			s.activeTab = 0
		}
	}
	s.redecorate()
}

func (s *Session) restorePanel(ps PanelState, fallback string) (*panel.Panel, int, error) {
	opts := s.panelOptions()
	if mode, err := panel.ParseSortMode(ps.Sort); err == nil {
		opts.Sort = mode
	}
	opts.Reverse = ps.Reverse

	dir := ps.Path
	if info, err := os.Stat(dir); dir == "" || err != nil || !info.IsDir() {
		logger.Info("restored directory %q unavailable, using %s", ps.Path, fallback)
		dir = fallback
	}
	return s.openPanel(dir, opts)
}

func (s *Session) persist() {
	if s.save == nil {
		return
	}
	if err := s.save(s.Snapshot()); err != nil {
		logger.Warn("failed to save session: %v", err)
	}
}
