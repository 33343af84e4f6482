package main

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LFroesch/fcmd/internal/session"
	"github.com/LFroesch/fcmd/internal/store"
	"github.com/LFroesch/fcmd/internal/watch"
)

// UI Layout constants
const (
	minTerminalWidth  = 60 // Minimum usable width
	minTerminalHeight = 20 // Minimum usable height
	uiOverhead        = 6  // Header (1) + panel borders (2) + panel title (1) + command line (1) + status (1)
)

const (
	tickInterval    = 100 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Message types

type tickMsg time.Time

type watchMsg watch.Event

// externalDoneMsg reports the result of an editor, opener or clipboard call.
type externalDoneMsg struct {
	status string
	err    error
	dirs   []string
}

type model struct {
	session *session.Session
	store   *store.Store
	watcher *watch.Watcher
	watched []string

	width  int
	height int

	lineInput textinput.Model
	help      help.Model
}

func newModel(s *session.Session, st *store.Store, w *watch.Watcher) *model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()

	m := &model{
		session:   s,
		store:     st,
		watcher:   w,
		lineInput: ti,
		help:      help.New(),
	}
	m.syncWatcher()
	return m
}

func (m *model) getSafeWidth() int {
	if m.width < minTerminalWidth {
		return minTerminalWidth
	}
	return m.width
}

func (m *model) getSafeHeight() int {
	if m.height < minTerminalHeight {
		return minTerminalHeight
	}
	return m.height
}

// getContentHeight returns the number of listing rows per panel
func (m *model) getContentHeight() int {
	availableHeight := m.getSafeHeight() - uiOverhead
	if availableHeight < 3 {
		availableHeight = 3
	}
	return availableHeight
}

// syncWatcher points the watcher at the directories currently on screen.
func (m *model) syncWatcher() {
	if m.watcher == nil {
		return
	}
	dirs := m.session.WatchedDirs()
	if slices.Equal(dirs, m.watched) {
		return
	}
	m.watched = dirs
	m.watcher.Set(dirs)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForWatchMsg returns a command that waits for the next change batch
func waitForWatchMsg(ch <-chan watch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return watchMsg(ev)
	}
}
