package session

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/LFroesch/fcmd/internal/keymap"
	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/LFroesch/fcmd/internal/ops"
)

type confirmAction int

const (
	confirmDelete confirmAction = iota
	confirmDeletePermanent
	confirmPasteOverwrite
)

type confirmation struct {
	prompt string
	action confirmAction
	paths  []string
	dstDir string
}

// conflictPrompt walks the user through a plan's unresolved destinations
// one at a time.
type conflictPrompt struct {
	plan  *ops.PastePlan
	index int
}

func (c *conflictPrompt) prompt() string {
	it := c.plan.Items[c.index]
	remaining := len(c.plan.Pending())
	return fmt.Sprintf("%s exists (%d left): [s]kip [o]verwrite [r]ename, capitals for all, esc aborts",
		filepath.Base(it.Dst), remaining)
}

func (s *Session) ask(c *confirmation) {
	s.confirm = c
	s.state.Mode = keymap.ModeConfirm
}

func (s *Session) yank(op ops.RegisterOp) {
	p := s.Active()
	targets := p.Targets()
	if len(targets) == 0 {
		s.info("Nothing to %s", op)
		return
	}
	s.register = ops.NewRegister(op, targets, s.Tab().FocusedID())
	p.ClearSelection()
	if op == ops.RegisterCut {
		s.info("Cut %s", itemCount(targets))
	} else {
		s.info("Yanked %s", itemCount(targets))
	}
}

func itemCount(paths []string) string {
	if len(paths) == 1 {
		return filepath.Base(paths[0])
	}
	return fmt.Sprintf("%d items", len(paths))
}

// paste plans the register into dstDir. Conflicts that need a decision
// switch to Conflict mode; everything else runs right away.
func (s *Session) paste(dstDir string, overwrite bool) {
	plan, err := ops.PlanPaste(s.register, dstDir, overwrite)
	if err != nil {
		s.fail(err)
		return
	}
	if i, ok := plan.NextConflict(); ok {
		s.conflict = &conflictPrompt{plan: plan, index: i}
		s.state.Mode = keymap.ModeConflict
		return
	}
	s.runPaste(plan)
}

func (s *Session) resolveConflict(cmd keymap.Command) {
	c := s.conflict
	if c == nil {
		s.state.Mode = keymap.ModeNormal
		return
	}
	r, ok := ops.ParseResolution(cmd.Arg)
	if !ok {
		return
	}
	if cmd.Flag {
		c.plan.ResolveRemaining(r)
	} else {
		c.plan.Resolve(c.index, r)
	}
	if i, more := c.plan.NextConflict(); more {
		c.index = i
		return
	}
	s.conflict = nil
	s.state.Mode = keymap.ModeNormal
	s.runPaste(c.plan)
}

func (s *Session) runPaste(plan *ops.PastePlan) {
	rep, err := s.engine.Paste(plan)
	s.finishCommand(rep, err)
}

func (s *Session) requestDelete(permanent bool) {
	p := s.Active()
	targets := p.Targets()
	if len(targets) == 0 {
		return
	}
	if s.engine.Busy() {
		s.fail(ops.ErrOperationInProgress)
		return
	}
	c := &confirmation{action: confirmDelete, paths: targets}
	if permanent {
		c.action = confirmDeletePermanent
		c.prompt = fmt.Sprintf("Permanently delete %s? This cannot be undone (y/n)", itemCount(targets))
	} else {
		c.prompt = fmt.Sprintf("Delete %s? (y/n)", itemCount(targets))
	}
	s.ask(c)
}

func (s *Session) requestPasteOverwrite() {
	if s.register.Empty() {
		s.fail(ops.ErrEmptyRegister)
		return
	}
	dir := s.Active().Path()
	s.ask(&confirmation{
		action: confirmPasteOverwrite,
		dstDir: dir,
		prompt: fmt.Sprintf("Paste %s into %s, overwriting existing files? (y/n)", itemCount(s.register.Paths), filepath.Base(dir)),
	})
}

func (s *Session) confirmed() {
	c := s.confirm
	s.confirm = nil
	if c == nil {
		return
	}
	switch c.action {
	case confirmDelete:
		rep, err := s.engine.Delete(c.paths)
		s.Active().ClearSelection()
		s.finishCommand(rep, err)
	case confirmDeletePermanent:
		rep, err := s.engine.DeletePermanent(c.paths)
		s.Active().ClearSelection()
		s.finishCommand(rep, err)
	case confirmPasteOverwrite:
		s.paste(c.dstDir, true)
	}
}

func (s *Session) cancelPrompt() {
	switch {
	case s.conflict != nil:
		s.conflict = nil
		s.info("Paste aborted")
	case s.confirm != nil:
		s.confirm = nil
		s.info("Cancelled")
	}
}

// finishCommand reports a synchronous result or the start of a background
// operation.
func (s *Session) finishCommand(rep ops.Report, err error) {
	if rep.Background {
		s.info("%s…", rep.Label)
		return
	}
	s.refreshVisible()
	if err != nil {
		s.fail(err)
		return
	}
	s.info("%s", rep.Label)
}

// operationFinished handles the Done event of a background operation.
func (s *Session) operationFinished(ev ops.Event) {
	for _, t := range s.tabs {
		for _, p := range t.Panels {
			if s.git != nil {
				s.git.Invalidate(p.Path())
			}
			s.refreshPanel(p)
		}
	}
	label := ev.Progress.Label
	if ev.Entry != nil {
		label = ev.Entry.Label
	}
	switch {
	case errors.Is(ev.Err, ops.ErrCancelled):
		s.info("%s", label)
	case ev.Err != nil:
		s.fail(fmt.Errorf("%s: %w", label, ev.Err))
	default:
		s.info("%s", label)
	}
}

func (s *Session) rename(newName string) {
	e, ok := s.Active().Current()
	if !ok {
		return
	}
	newPath, err := s.engine.Rename(e.Path, newName)
	if err != nil {
		s.fail(err)
		return
	}
	s.refreshVisible()
	s.Active().SelectPath(newPath)
	s.info("Renamed to %s", filepath.Base(newPath))
}

func (s *Session) create(name string, isDir bool) {
	path, err := s.engine.Create(s.Active().Path(), name, isDir)
	if err != nil {
		s.fail(err)
		return
	}
	s.refreshVisible()
	s.Active().SelectPath(path)
	s.info("Created %s", name)
}

func (s *Session) undo() {
	entry, err := s.engine.UndoLast()
	s.refreshVisible()
	if err != nil {
		if entry != nil {
			logger.Warn("undo of %q incomplete, %d action(s) left", entry.Label, len(entry.Actions))
		}
		s.fail(err)
		return
	}
	s.info("Undid: %s", entry.Label)
}

func (s *Session) cancelOperation() {
	if s.engine.Cancel() {
		s.info("Cancelling…")
		return
	}
	s.info("No operation running")
}

// openLine puts the command line in front of the user with text prefilled.
func (s *Session) openLine(text string) {
	s.state.Mode = keymap.ModeCommand
	s.state.Line = text
}
