package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultEditor = "vim"

type ExternalKind int

const (
	ExternalEdit ExternalKind = iota
	ExternalOpen
	ExternalClipboard
)

// External is work the session cannot do itself: suspending the terminal
// for an editor, handing a file to the desktop, writing the clipboard.
// The adapter takes it with TakeExternal and reports back with SetStatus.
type External struct {
	Kind ExternalKind
	Path string
	Line int
	Text string
}

// TakeExternal returns and clears the pending external request.
func (s *Session) TakeExternal() (External, bool) {
	if s.external == nil {
		return External{}, false
	}
	ext := *s.external
	s.external = nil
	return ext, true
}

// EditorCommand resolves the editor (configured, then $EDITOR, then
// $VISUAL, then vim) and builds its argument list for path. A positive
// line asks editors that understand it to jump there.
func (s *Session) EditorCommand(path string, line int) (string, []string) {
	return editorCommand(s.cfg.Editor, path, line)
}

func editorCommand(configured, path string, line int) (string, []string) {
	value := strings.TrimSpace(configured)
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if value != "" {
			break
		}
		value = strings.TrimSpace(os.Getenv(env))
	}
	if value == "" {
		value = defaultEditor
	}
	fields := strings.Fields(value)
	name, args := fields[0], append([]string(nil), fields[1:]...)
	if line > 0 {
		switch filepath.Base(name) {
		case "code", "codium":
			return name, append(args, "-g", fmt.Sprintf("%s:%d", path, line))
		case "vim", "vi", "nvim", "nano", "hx", "emacs", "micro", "kak":
			args = append(args, fmt.Sprintf("+%d", line))
		}
	}
	return name, append(args, path)
}

func (s *Session) requestEdit() {
	e, ok := s.Active().Current()
	if !ok {
		return
	}
	if e.IsDir {
		s.fail(fmt.Errorf("%s is a directory", e.Name))
		return
	}
	s.external = &External{Kind: ExternalEdit, Path: e.Path}
}

func (s *Session) requestOpen() {
	e, ok := s.Active().Current()
	if !ok {
		return
	}
	s.external = &External{Kind: ExternalOpen, Path: e.Path}
}

func (s *Session) requestCopyPaths() {
	targets := s.Active().Targets()
	if len(targets) == 0 {
		return
	}
	s.external = &External{Kind: ExternalClipboard, Text: strings.Join(targets, "\n")}
}
