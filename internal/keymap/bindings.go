package keymap

import "strings"

// stay leaves the mode unchanged when a binding fires.
const stay Mode = -1

type binding struct {
	keys string // space separated key names
	cmd  Command
	to   Mode
	desc string
}

func bind(keys string, kind CommandKind, desc string) binding {
	return binding{keys: keys, cmd: Command{Kind: kind}, to: stay, desc: desc}
}

func bindArg(keys string, kind CommandKind, arg, desc string) binding {
	return binding{keys: keys, cmd: Command{Kind: kind, Arg: arg}, to: stay, desc: desc}
}

func (b binding) into(m Mode) binding {
	b.to = m
	return b
}

func (b binding) flag() binding {
	b.cmd.Flag = true
	return b
}

func letters() []string {
	out := make([]string, 0, 26)
	for c := 'a'; c <= 'z'; c++ {
		out = append(out, string(c))
	}
	return out
}

var movement = []binding{
	bind("j", CmdMoveDown, "down"),
	bind("down", CmdMoveDown, ""),
	bind("k", CmdMoveUp, "up"),
	bind("up", CmdMoveUp, ""),
	bind("g g", CmdTop, "top"),
	bind("home", CmdTop, ""),
	bind("G", CmdBottom, "bottom"),
	bind("end", CmdBottom, ""),
	bind("ctrl+d", CmdHalfPageDown, "half page down"),
	bind("ctrl+u", CmdHalfPageUp, "half page up"),
}

func normalBindings() []binding {
	b := append([]binding{}, movement...)
	b = append(b,
		bind("l", CmdEnter, "enter directory"),
		bind("right", CmdEnter, ""),
		bind("enter", CmdEnter, ""),
		bind("h", CmdParent, "parent directory"),
		bind("left", CmdParent, ""),
		bind("backspace", CmdParent, ""),
		bind("-", CmdParent, ""),
		bind("~", CmdHome, "home"),
		bind("tab", CmdSwitchPanel, "switch panel"),
		bind("ctrl+h", CmdFocusLeft, "focus left panel"),
		bind("ctrl+l", CmdFocusRight, "focus right panel"),
		bind("g t", CmdTabNext, "next tab"),
		bind("g T", CmdTabPrev, "previous tab"),
		bind("g m", CmdNextVisualMark, "next visual mark"),

		bind("y y", CmdYank, "yank"),
		bind("y p", CmdYankPath, "copy path to clipboard"),
		bind("d d", CmdCut, "cut"),
		bind("D", CmdDelete, "delete to trash"),
		bind("p", CmdPaste, "paste"),
		bind("p o", CmdPasteOverwrite, "paste, overwriting"),
		bind("P", CmdPasteOther, "paste into other panel"),
		bind("u", CmdUndo, "undo"),
		bind("r", CmdRename, "rename"),
		bind("a", CmdCreateFile, "new file"),
		bind("A", CmdCreateDir, "new directory"),
		bind("ctrl+c", CmdCancelOperation, "cancel background operation"),

		bind("v", CmdVisual, "visual mode").into(ModeVisual),
		bind("V", CmdVisual, "").into(ModeVisual),
		bind("shift+down", CmdSelectToggleDown, "select mode").into(ModeSelect),
		bind("shift+up", CmdSelectToggleUp, "").into(ModeSelect),
		bind("esc", CmdExitSelection, "clear selection"),
		bind("/", CmdSearchStart, "search").into(ModeSearch),
		bind("n", CmdSearchNext, "next match"),
		bind("N", CmdSearchPrev, "previous match"),
		bind(":", CmdCommandLine, "command line").into(ModeCommand),

		bind("s n", CmdSort, "sort by name"),
		bind("s s", CmdSort, "sort by size"),
		bind("s m", CmdSort, "sort by modified"),
		bind("s c", CmdSort, "sort by created"),
		bind("s e", CmdSort, "sort by extension"),
		bind("s r", CmdSortReverse, "reverse sort"),

		bind("M", CmdCycleVisualMark, "cycle visual mark"),
		bind("B", CmdBookmarkAdd, "bookmark directory"),
		bind("space b", CmdBookmarkList, "list bookmarks"),

		bind("space a", CmdSelectAll, "select all"),
		bind("space n", CmdUnselectAll, "unselect all"),
		bind("space h", CmdToggleHidden, "toggle hidden"),
		bind("space ,", CmdFindLocal, "find here").into(ModeFind),
		bind("space .", CmdFindGlobal, "find everywhere").into(ModeFind),
		bind("space p", CmdPreview, "").into(ModePreview),
		bind("space ?", CmdHelp, "").into(ModeHelp),
		bind("f", CmdFindLocal, "").into(ModeFind),
		bind("F", CmdFindGlobal, "").into(ModeFind),

		bind("e", CmdEdit, "edit"),
		bind("o", CmdOpen, "open with default app"),
		bind("i", CmdPreview, "preview").into(ModePreview),
		bind("ctrl+r", CmdRefresh, "refresh"),
		bind("T", CmdCycleTheme, "cycle theme"),
		bind("?", CmdHelp, "help").into(ModeHelp),
		bind("q", CmdQuit, "quit"),
	)
	// sort bindings carry their mode as the argument
	for i := range b {
		if b[i].cmd.Kind == CmdSort {
			b[i].cmd.Arg = strings.TrimPrefix(b[i].keys, "s ")
		}
	}
	for _, l := range letters() {
		b = append(b,
			bindArg("m "+l, CmdMarkSet, l, ""),
			bindArg("' "+l, CmdMarkJump, l, ""),
		)
	}
	return b
}

func visualBindings() []binding {
	b := append([]binding{}, movement...)
	return append(b,
		bind("y", CmdYank, "yank selection").into(ModeNormal),
		bind("d", CmdCut, "cut selection").into(ModeNormal),
		bind("D", CmdDelete, "delete selection").into(ModeNormal),
		bind("p", CmdPaste, "paste").into(ModeNormal),
		bind("l", CmdEnter, "enter directory").into(ModeNormal),
		bind("right", CmdEnter, "").into(ModeNormal),
		bind("enter", CmdEnter, "").into(ModeNormal),
		bind("h", CmdParent, "parent directory").into(ModeNormal),
		bind("left", CmdParent, "").into(ModeNormal),
		bind("backspace", CmdParent, "").into(ModeNormal),
		bind("tab", CmdSwitchPanel, "switch panel").into(ModeNormal),
		bind("esc", CmdExitSelection, "leave visual").into(ModeNormal),
		bind("v", CmdExitSelection, "").into(ModeNormal),
		bind("V", CmdExitSelection, "").into(ModeNormal),
		bind(":", CmdCommandLine, "").into(ModeCommand),
	)
}

func selectBindings() []binding {
	b := append([]binding{}, movement...)
	return append(b,
		bind("shift+down", CmdSelectToggleDown, "toggle and move down"),
		bind("shift+up", CmdSelectToggleUp, "toggle and move up"),
		bind("space", CmdToggleCurrent, "toggle"),
		bind("y", CmdYank, "yank selection").into(ModeNormal),
		bind("d", CmdCut, "cut selection").into(ModeNormal),
		bind("D", CmdDelete, "delete selection").into(ModeNormal),
		bind("v", CmdVisual, "").into(ModeVisual),
		bind("esc", CmdExitSelection, "leave select").into(ModeNormal),
		bind(":", CmdCommandLine, "").into(ModeCommand),
	)
}

func previewBindings() []binding {
	return []binding{
		bindArg("j", CmdPreviewScroll, "1", "scroll down"),
		bindArg("down", CmdPreviewScroll, "1", ""),
		bindArg("k", CmdPreviewScroll, "-1", "scroll up"),
		bindArg("up", CmdPreviewScroll, "-1", ""),
		bindArg("ctrl+d", CmdPreviewScroll, "half", "half page down"),
		bindArg("ctrl+u", CmdPreviewScroll, "-half", "half page up"),
		bind("g g", CmdPreviewTop, "top"),
		bind("G", CmdPreviewBottom, "bottom"),
		bind("q", CmdPreviewClose, "close").into(ModeNormal),
		bind("esc", CmdPreviewClose, "").into(ModeNormal),
		bind("i", CmdPreviewClose, "").into(ModeNormal),
	}
}

func conflictBindings() []binding {
	return []binding{
		bindArg("s", CmdResolveConflict, "skip", "skip"),
		bindArg("o", CmdResolveConflict, "overwrite", "overwrite"),
		bindArg("r", CmdResolveConflict, "rename", "keep both"),
		bindArg("S", CmdResolveConflict, "skip", "skip all").flag(),
		bindArg("O", CmdResolveConflict, "overwrite", "overwrite all").flag(),
		bindArg("R", CmdResolveConflict, "rename", "keep both for all").flag(),
		bind("esc", CmdCancelPrompt, "abort paste").into(ModeNormal),
	}
}
