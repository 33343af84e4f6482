package session

import (
	"os"
	"path/filepath"

	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/LFroesch/fcmd/internal/panel"
)

// Tab holds the left and right panels and which of them has focus.
type Tab struct {
	Panels [2]*panel.Panel
	IDs    [2]int
	Focus  int
}

func (t *Tab) Focused() *panel.Panel   { return t.Panels[t.Focus] }
func (t *Tab) Unfocused() *panel.Panel { return t.Panels[1-t.Focus] }
func (t *Tab) FocusedID() int          { return t.IDs[t.Focus] }

func (s *Session) panelOptions() panel.Options {
	return panel.Options{
		ShowHidden: s.cfg.ShowHidden,
		Decorator:  decorator{s},
		Memory:     sortMemory{s},
	}
}

func (s *Session) openPanel(dir string, opts panel.Options) (*panel.Panel, int, error) {
	p, err := panel.Open(dir, opts)
	if err != nil {
		return nil, 0, err
	}
	p.SetHeight(s.height)
	s.nextPanel++
	return p, s.nextPanel, nil
}

func (s *Session) newTab(left, right string) (*Tab, error) {
	t := &Tab{}
	for i, dir := range []string{left, right} {
		p, id, err := s.openPanel(dir, s.panelOptions())
		if err != nil {
			return nil, err
		}
		t.Panels[i], t.IDs[i] = p, id
	}
	return t, nil
}

// tabNew appends a tab whose panels both start in the focused directory.
func (s *Session) tabNew() {
	dir := s.Active().Path()
	t, err := s.newTab(dir, dir)
	if err != nil {
		s.fail(err)
		return
	}
	s.tabs = append(s.tabs, t)
	s.activeTab = len(s.tabs) - 1
	s.info("Tab %d of %d", s.activeTab+1, len(s.tabs))
	s.persist()
}

// tabClose closes the active tab. Closing the last tab quits.
func (s *Session) tabClose() {
	if len(s.tabs) == 1 {
		s.quit = true
		return
	}
	s.tabs = append(s.tabs[:s.activeTab], s.tabs[s.activeTab+1:]...)
	if s.activeTab >= len(s.tabs) {
		s.activeTab = len(s.tabs) - 1
	}
	s.info("Tab %d of %d", s.activeTab+1, len(s.tabs))
	s.persist()
}

func (s *Session) tabStep(delta int) {
	n := len(s.tabs)
	s.activeTab = ((s.activeTab+delta)%n + n) % n
	// a tab may have sat in the background while its directory vanished
	for _, p := range s.Tab().Panels {
		s.refreshPanel(p)
	}
}

// refreshPanel re-reads p, walking up to the nearest existing ancestor when
// its directory is gone.
func (s *Session) refreshPanel(p *panel.Panel) {
	if _, err := os.Stat(p.Path()); err != nil {
		dir := p.Path()
		for {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
			if _, err := os.Stat(dir); err == nil {
				break
			}
		}
		logger.Info("directory %s vanished, moving to %s", p.Path(), dir)
		if err := p.Enter(dir); err != nil {
			s.fail(err)
		}
		return
	}
	if err := p.Refresh(); err != nil {
		s.fail(err)
	}
}

// refreshVisible re-reads both panels of the active tab.
func (s *Session) refreshVisible() {
	if s.git != nil {
		for _, p := range s.Tab().Panels {
			s.git.Invalidate(p.Path())
		}
	}
	for _, p := range s.Tab().Panels {
		s.refreshPanel(p)
	}
}

// WatchedDirs lists the directories shown by any panel of any tab.
func (s *Session) WatchedDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, t := range s.tabs {
		for _, p := range t.Panels {
			if !seen[p.Path()] {
				seen[p.Path()] = true
				dirs = append(dirs, p.Path())
			}
		}
	}
	return dirs
}

// DirsChanged refreshes every panel showing one of dirs.
func (s *Session) DirsChanged(dirs []string) {
	changed := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		changed[d] = true
		if s.git != nil {
			s.git.Invalidate(d)
		}
	}
	for _, t := range s.tabs {
		for _, p := range t.Panels {
			if changed[p.Path()] {
				s.refreshPanel(p)
			}
		}
	}
}
