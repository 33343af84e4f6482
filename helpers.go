package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"

	"github.com/LFroesch/fcmd/internal/session"
)

// Helper functions

func (m *model) runExternal(ext session.External) tea.Cmd {
	switch ext.Kind {
	case session.ExternalEdit:
		return m.editFileAtLine(ext.Path, ext.Line)
	case session.ExternalOpen:
		return openFile(ext.Path)
	case session.ExternalClipboard:
		return copyPaths(ext.Text)
	}
	return nil
}

// editFileAtLine suspends the UI and runs the editor in the terminal.
func (m *model) editFileAtLine(path string, line int) tea.Cmd {
	name, args := m.session.EditorCommand(path, line)
	if _, err := exec.LookPath(name); err != nil {
		return func() tea.Msg {
			return externalDoneMsg{err: fmt.Errorf("editor %q not found in PATH", name)}
		}
	}
	cmd := exec.Command(name, args...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return externalDoneMsg{err: fmt.Errorf("%s: %w", name, err), dirs: []string{filepath.Dir(path)}}
		}
		return externalDoneMsg{status: "Edited " + filepath.Base(path), dirs: []string{filepath.Dir(path)}}
	})
}

func openFile(path string) tea.Cmd {
	return func() tea.Msg {
		// Use system default opener (handles Linux/macOS/Windows automatically)
		if err := open.Start(path); err != nil {
			return externalDoneMsg{err: fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)}
		}
		return externalDoneMsg{status: "Opened " + filepath.Base(path)}
	}
}

func copyPaths(text string) tea.Cmd {
	return func() tea.Msg {
		// Use clipboard library for cross-platform support
		if err := clipboard.WriteAll(text); err != nil {
			return externalDoneMsg{err: fmt.Errorf("failed to copy: %w", err)}
		}
		if n := strings.Count(text, "\n") + 1; n > 1 {
			return externalDoneMsg{status: fmt.Sprintf("Copied %d paths", n)}
		}
		return externalDoneMsg{status: "Copied: " + text}
	}
}
