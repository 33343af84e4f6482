package keymap

// CommandKind identifies what a key sequence or command line asks for.
type CommandKind int

const (
	CmdNone CommandKind = iota

	// navigation
	CmdMoveDown
	CmdMoveUp
	CmdTop
	CmdBottom
	CmdHalfPageDown
	CmdHalfPageUp
	CmdEnter
	CmdParent
	CmdHome
	CmdSwitchPanel
	CmdFocusLeft
	CmdFocusRight
	CmdRefresh
	CmdToggleHidden
	CmdSort
	CmdSortReverse

	// selection
	CmdVisual
	CmdSelectToggleDown
	CmdSelectToggleUp
	CmdToggleCurrent
	CmdExitSelection
	CmdSelectAll
	CmdUnselectAll
	CmdSelectGlob
	CmdUnselectGlob

	// register and file operations
	CmdYank
	CmdCut
	CmdYankPath
	CmdPaste
	CmdPasteOverwrite
	CmdPasteOther
	CmdDelete
	CmdDeletePermanent
	CmdUndo
	CmdRename
	CmdCreateFile
	CmdCreateDir
	CmdRenameTo
	CmdMkdir
	CmdTouch
	CmdCd
	CmdCancelOperation

	// command line
	CmdCommandLine
	CmdExecLine
	CmdCommandCancel

	// incremental search
	CmdSearchStart
	CmdSearchUpdate
	CmdSearchAccept
	CmdSearchCancel
	CmdSearchNext
	CmdSearchPrev

	// find overlay
	CmdFindLocal
	CmdFindGlobal
	CmdGrep
	CmdFindUpdate
	CmdFindNext
	CmdFindPrev
	CmdFindScope
	CmdFindAccept
	CmdFindClose

	// prompts
	CmdConfirm
	CmdCancelPrompt
	CmdResolveConflict

	// tabs
	CmdTabNew
	CmdTabClose
	CmdTabNext
	CmdTabPrev

	// marks
	CmdMarkSet
	CmdMarkJump
	CmdMarkDelete
	CmdMarkList
	CmdCycleVisualMark
	CmdNextVisualMark

	// bookmarks
	CmdBookmarkAdd
	CmdBookmarkSet
	CmdBookmarkJump
	CmdBookmarkDelete
	CmdBookmarkRename
	CmdBookmarkList

	// preview and help
	CmdPreview
	CmdPreviewScroll
	CmdPreviewTop
	CmdPreviewBottom
	CmdPreviewClose
	CmdHelp
	CmdHelpClose

	// external programs and look
	CmdEdit
	CmdOpen
	CmdCycleTheme
	CmdTheme

	CmdQuit
)

// Command is the output of the input engine. Count carries a numeric
// prefix (0 when none was typed); Flag carries a modifier such as
// "apply to all" or "reverse".
type Command struct {
	Kind  CommandKind
	Arg   string
	Count int
	Flag  bool
}

// Times returns the repeat count, treating an absent prefix as 1.
func (c Command) Times() int {
	if c.Count < 1 {
		return 1
	}
	return c.Count
}
