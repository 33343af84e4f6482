package session

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/LFroesch/fcmd/internal/keymap"
	"github.com/LFroesch/fcmd/internal/ops"
	"github.com/LFroesch/fcmd/internal/panel"
)

// execute applies one command. Errors never escape: they land on the
// status line.
func (s *Session) execute(cmd keymap.Command) {
	p := s.Active()
	n := cmd.Times()

	switch cmd.Kind {
	case keymap.CmdNone:

	// navigation
	case keymap.CmdMoveDown:
		p.MoveCursor(n)
	case keymap.CmdMoveUp:
		p.MoveCursor(-n)
	case keymap.CmdTop:
		if cmd.Count > 0 {
			p.SetCursor(cmd.Count - 1)
		} else {
			p.JumpTop()
		}
	case keymap.CmdBottom:
		if cmd.Count > 0 {
			p.SetCursor(cmd.Count - 1)
		} else {
			p.JumpBottom()
		}
	case keymap.CmdHalfPageDown:
		for i := 0; i < n; i++ {
			p.HalfPage(1)
		}
	case keymap.CmdHalfPageUp:
		for i := 0; i < n; i++ {
			p.HalfPage(-1)
		}
	case keymap.CmdEnter:
		s.enter()
	case keymap.CmdParent:
		for i := 0; i < n; i++ {
			if err := p.GoParent(); err != nil {
				s.fail(err)
				break
			}
		}
	case keymap.CmdHome:
		s.fail(p.GoHome())
	case keymap.CmdSwitchPanel:
		s.Tab().Focus = 1 - s.Tab().Focus
	case keymap.CmdFocusLeft:
		s.Tab().Focus = 0
	case keymap.CmdFocusRight:
		s.Tab().Focus = 1
	case keymap.CmdRefresh:
		s.refreshVisible()
		s.info("Refreshed")
	case keymap.CmdToggleHidden:
		if err := p.ToggleHidden(); err != nil {
			s.fail(err)
		} else if p.ShowHidden() {
			s.info("Showing hidden files")
		} else {
			s.info("Hiding hidden files")
		}
	case keymap.CmdSort:
		s.sort(cmd)
	case keymap.CmdSortReverse:
		p.SetReverse(!p.Reversed())
		s.rememberSort()
		s.info("Sort: %s%s", p.SortMode(), reversedSuffix(p.Reversed()))
	case keymap.CmdCd:
		s.cd(cmd.Arg)

	// selection
	case keymap.CmdVisual:
		p.BeginVisual()
	case keymap.CmdSelectToggleDown:
		for i := 0; i < n; i++ {
			p.ToggleMove(1)
		}
	case keymap.CmdSelectToggleUp:
		for i := 0; i < n; i++ {
			p.ToggleMove(-1)
		}
	case keymap.CmdToggleCurrent:
		p.ToggleCurrent()
	case keymap.CmdExitSelection:
		p.ClearSelection()
	case keymap.CmdSelectAll:
		p.SelectAll()
		s.info("Selected %d item(s)", len(p.SelectedPaths()))
	case keymap.CmdUnselectAll:
		p.ClearSelection()
	case keymap.CmdSelectGlob, keymap.CmdUnselectGlob:
		add := cmd.Kind == keymap.CmdSelectGlob
		matched, err := p.GlobSelect(cmd.Arg, add)
		if err != nil {
			s.fail(err)
			break
		}
		s.info("%d matched, %d selected", matched, len(p.SelectedPaths()))

	// register and file operations
	case keymap.CmdYank:
		s.yank(ops.RegisterCopy)
	case keymap.CmdCut:
		s.yank(ops.RegisterCut)
	case keymap.CmdYankPath:
		s.requestCopyPaths()
	case keymap.CmdPaste:
		s.paste(p.Path(), false)
	case keymap.CmdPasteOverwrite:
		s.requestPasteOverwrite()
	case keymap.CmdPasteOther:
		s.paste(s.Other().Path(), false)
	case keymap.CmdDelete:
		s.requestDelete(false)
	case keymap.CmdDeletePermanent:
		s.requestDelete(true)
	case keymap.CmdUndo:
		for i := 0; i < n; i++ {
			s.undo()
			if s.status.Error {
				break
			}
		}
	case keymap.CmdRename:
		if e, ok := p.Current(); ok {
			s.openLine("rename " + e.Name)
		}
	case keymap.CmdCreateFile:
		s.openLine("touch ")
	case keymap.CmdCreateDir:
		s.openLine("mkdir ")
	case keymap.CmdRenameTo:
		s.rename(cmd.Arg)
	case keymap.CmdTouch:
		s.create(cmd.Arg, false)
	case keymap.CmdMkdir:
		s.create(cmd.Arg, true)
	case keymap.CmdCancelOperation:
		s.cancelOperation()

	// command line
	case keymap.CmdCommandLine, keymap.CmdCommandCancel:
	case keymap.CmdExecLine:
		s.execLine(cmd.Arg)

	// incremental search
	case keymap.CmdSearchStart:
		s.searchStart()
	case keymap.CmdSearchUpdate:
		s.searchUpdate(cmd.Arg)
	case keymap.CmdSearchAccept:
		s.searchAccept(cmd.Arg)
	case keymap.CmdSearchCancel:
		s.searchCancel()
	case keymap.CmdSearchNext:
		s.searchStep(1, n)
	case keymap.CmdSearchPrev:
		s.searchStep(-1, n)

	// find overlay
	case keymap.CmdFindLocal:
		s.openFind(ScopeLocal, cmd.Arg)
	case keymap.CmdFindGlobal:
		s.openFind(ScopeGlobal, cmd.Arg)
	case keymap.CmdGrep:
		s.grep(cmd.Arg)
	case keymap.CmdFindUpdate:
		s.findUpdate(cmd.Arg)
	case keymap.CmdFindNext:
		s.findMove(1)
	case keymap.CmdFindPrev:
		s.findMove(-1)
	case keymap.CmdFindScope:
		s.findScope()
	case keymap.CmdFindAccept:
		s.findAccept()
	case keymap.CmdFindClose:
		s.closeFind()

	// prompts
	case keymap.CmdConfirm:
		s.confirmed()
	case keymap.CmdCancelPrompt:
		s.cancelPrompt()
	case keymap.CmdResolveConflict:
		s.resolveConflict(cmd)

	// tabs
	case keymap.CmdTabNew:
		s.tabNew()
	case keymap.CmdTabClose:
		s.tabClose()
	case keymap.CmdTabNext:
		s.tabStep(n)
	case keymap.CmdTabPrev:
		s.tabStep(-n)

	// marks
	case keymap.CmdMarkSet:
		s.setMark(cmd.Arg)
	case keymap.CmdMarkJump:
		s.jumpMark(cmd.Arg)
	case keymap.CmdMarkDelete:
		s.deleteMark(cmd.Arg)
	case keymap.CmdMarkList:
		s.listMarks()
	case keymap.CmdCycleVisualMark:
		s.cycleVisualMark()
	case keymap.CmdNextVisualMark:
		s.nextVisualMark()

	// bookmarks
	case keymap.CmdBookmarkAdd:
		s.promptBookmark()
	case keymap.CmdBookmarkSet:
		s.addBookmark(cmd.Arg)
	case keymap.CmdBookmarkJump:
		s.jumpBookmark(cmd.Arg)
	case keymap.CmdBookmarkDelete:
		s.deleteBookmark(cmd.Arg)
	case keymap.CmdBookmarkRename:
		s.renameBookmark(cmd.Arg)
	case keymap.CmdBookmarkList:
		s.listBookmarks()

	// preview and help
	case keymap.CmdPreview:
		s.openPreview()
	case keymap.CmdPreviewScroll:
		for i := 0; i < n; i++ {
			s.scrollPreview(cmd.Arg)
		}
	case keymap.CmdPreviewTop:
		if s.preview != nil {
			s.preview.Scroll = 0
		}
	case keymap.CmdPreviewBottom:
		if s.preview != nil {
			s.preview.Scroll = len(s.preview.Content.Lines)
			s.clampPreview()
		}
	case keymap.CmdPreviewClose:
		s.preview = nil
	case keymap.CmdHelp:
		s.state.Mode = keymap.ModeHelp
	case keymap.CmdHelpClose:

	// external programs and look
	case keymap.CmdEdit:
		s.requestEdit()
	case keymap.CmdOpen:
		s.requestOpen()
	case keymap.CmdCycleTheme:
		s.setTheme(s.themes.Next(s.themeName))
	case keymap.CmdTheme:
		s.themeCommand(cmd.Arg)

	case keymap.CmdQuit:
		s.quit = true

	default:
		s.fail(fmt.Errorf("command %d not handled", cmd.Kind))
	}
}

func (s *Session) execLine(line string) {
	cmd, err := keymap.ParseLine(line)
	if err != nil {
		var unknown *keymap.UnknownCommandError
		if errors.As(err, &unknown) {
			s.status = Status{Text: unknown.Error(), Error: true, At: s.now()}
			return
		}
		s.fail(err)
		return
	}
	s.execute(cmd)
}

func (s *Session) enter() {
	p := s.Active()
	e, ok := p.Current()
	if !ok {
		return
	}
	if !e.IsDir {
		s.requestEdit()
		return
	}
	if err := p.EnterCurrent(); err != nil {
		s.fail(err)
	}
}

func (s *Session) cd(arg string) {
	dir, err := homedir.Expand(arg)
	if err != nil {
		s.fail(err)
		return
	}
	p := s.Active()
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.Path(), dir)
	}
	if err := p.Enter(filepath.Clean(dir)); err != nil {
		s.fail(err)
	}
}

func (s *Session) sort(cmd keymap.Command) {
	mode, err := panel.ParseSortMode(cmd.Arg)
	if err != nil {
		s.fail(err)
		return
	}
	p := s.Active()
	p.SetSort(mode)
	if cmd.Flag {
		p.SetReverse(true)
	}
	s.rememberSort()
	s.info("Sort: %s%s", mode, reversedSuffix(p.Reversed()))
}

func reversedSuffix(rev bool) string {
	if rev {
		return " (reversed)"
	}
	return ""
}

func (s *Session) setTheme(name string) {
	s.themeName = name
	s.info("Theme: %s", name)
	s.persist()
}

func (s *Session) themeCommand(arg string) {
	if arg == "" {
		s.setTheme(s.themes.Next(s.themeName))
		return
	}
	if !s.themes.Has(arg) {
		s.fail(fmt.Errorf("unknown theme %q", arg))
		return
	}
	s.setTheme(arg)
}
