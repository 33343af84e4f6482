package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LFroesch/fcmd/internal/keymap"
	"github.com/LFroesch/fcmd/internal/logger"
)

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("fcmd"), tick()}
	if m.watcher != nil {
		cmds = append(cmds, waitForWatchMsg(m.watcher.Events()))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.session.Resize(m.getContentHeight())
		m.help.Width = m.getSafeWidth()

	case tea.KeyMsg:
		m.session.HandleKey(translateKey(msg))

	case tickMsg:
		m.session.Tick(time.Time(msg))
		cmds = append(cmds, tick())

	case watchMsg:
		m.session.DirsChanged(msg.Dirs)
		cmds = append(cmds, waitForWatchMsg(m.watcher.Events()))

	case externalDoneMsg:
		if len(msg.dirs) > 0 {
			m.session.DirsChanged(msg.dirs)
		}
		m.session.SetStatus(msg.status, msg.err)
	}

	if ext, ok := m.session.TakeExternal(); ok {
		cmds = append(cmds, m.runExternal(ext))
	}
	m.syncWatcher()

	if m.session.Quitting() {
		m.shutdown()
		return m, tea.Quit
	}
	return m, tea.Batch(cmds...)
}

// translateKey turns a bubbletea key into the input engine's event.
// Printable runes carry their text so line-editing modes can insert them.
func translateKey(msg tea.KeyMsg) keymap.Event {
	ev := keymap.Event{Key: msg.String(), At: time.Now()}
	switch {
	case msg.Type == tea.KeySpace || ev.Key == " ":
		ev.Key, ev.Text = "space", " "
	case msg.Type == tea.KeyRunes && !msg.Alt:
		ev.Text = string(msg.Runes)
		if msg.Paste {
			// bracketed paste arrives as "[text]"
			ev.Key = ev.Text
		}
	}
	return ev
}

// shutdown stops a running operation, saves the session and releases the
// watcher.
func (m *model) shutdown() {
	engine := m.session.Engine()
	if engine.Busy() {
		engine.Cancel()
		if _, ok := engine.Wait(shutdownTimeout); !ok {
			logger.Warn("background operation still running at exit")
		}
	}
	if m.store != nil {
		if err := m.store.Save(m.session.Snapshot()); err != nil {
			logger.Error("failed to save session: %v", err)
		}
	}
	if m.watcher != nil {
		m.watcher.Close()
	}
}
