package keymap

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type feeder struct {
	k   *Keymap
	st  State
	now time.Time
}

func newFeeder() *feeder {
	return &feeder{k: Default(500 * time.Millisecond), now: t0}
}

// press sends keys 10ms apart and collects every command produced.
func (f *feeder) press(keys ...string) []Command {
	var out []Command
	for _, k := range keys {
		f.now = f.now.Add(10 * time.Millisecond)
		text := ""
		if len([]rune(k)) == 1 {
			text = k
		} else if k == "space" {
			text = " "
		}
		cmds, st := f.k.Interpret(Event{Key: k, Text: text, At: f.now}, f.st)
		f.st = st
		out = append(out, cmds...)
	}
	return out
}

func (f *feeder) wait(d time.Duration) []Command {
	f.now = f.now.Add(d)
	cmds, st := f.k.Expire(f.st, f.now)
	f.st = st
	return cmds
}

func kinds(cmds []Command) []CommandKind {
	out := make([]CommandKind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}

func TestSingleKeys(t *testing.T) {
	tests := []struct {
		key  string
		want CommandKind
	}{
		{"j", CmdMoveDown},
		{"down", CmdMoveDown},
		{"k", CmdMoveUp},
		{"G", CmdBottom},
		{"ctrl+d", CmdHalfPageDown},
		{"l", CmdEnter},
		{"-", CmdParent},
		{"u", CmdUndo},
		{"D", CmdDelete},
		{"P", CmdPasteOther},
		{"B", CmdBookmarkAdd},
		{"q", CmdQuit},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			f := newFeeder()
			assert.Equal(t, []CommandKind{tt.want}, kinds(f.press(tt.key)))
			assert.Empty(t, f.st.Pending)
		})
	}
}

func TestMultiKeySequences(t *testing.T) {
	tests := []struct {
		keys []string
		want Command
	}{
		{[]string{"g", "g"}, Command{Kind: CmdTop}},
		{[]string{"d", "d"}, Command{Kind: CmdCut}},
		{[]string{"y", "y"}, Command{Kind: CmdYank}},
		{[]string{"y", "p"}, Command{Kind: CmdYankPath}},
		{[]string{"g", "t"}, Command{Kind: CmdTabNext}},
		{[]string{"s", "m"}, Command{Kind: CmdSort, Arg: "m"}},
		{[]string{"space", "h"}, Command{Kind: CmdToggleHidden}},
		{[]string{"m", "x"}, Command{Kind: CmdMarkSet, Arg: "x"}},
		{[]string{"'", "x"}, Command{Kind: CmdMarkJump, Arg: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.want.Arg+tt.keys[0]+tt.keys[1], func(t *testing.T) {
			f := newFeeder()
			cmds := f.press(tt.keys[0])
			assert.Empty(t, cmds)
			assert.Equal(t, []string{tt.keys[0]}, f.st.Pending)

			cmds = f.press(tt.keys[1])
			require.Len(t, cmds, 1)
			assert.Equal(t, tt.want, cmds[0])
			assert.Empty(t, f.st.Pending)
		})
	}
}

func TestUnmatchedPrefixIsReprocessed(t *testing.T) {
	f := newFeeder()
	cmds := f.press("g", "j")
	assert.Equal(t, []CommandKind{CmdMoveDown}, kinds(cmds))
	assert.Empty(t, f.st.Pending)
}

func TestUnmatchedPrefixStartsNewPrefix(t *testing.T) {
	f := newFeeder()
	cmds := f.press("g", "d")
	assert.Empty(t, cmds)
	assert.Equal(t, []string{"d"}, f.st.Pending)
	assert.Equal(t, []CommandKind{CmdCut}, kinds(f.press("d")))
}

func TestTimeoutDiscardsPrefix(t *testing.T) {
	f := newFeeder()
	f.press("g")
	assert.Empty(t, f.wait(100*time.Millisecond))
	assert.Equal(t, []string{"g"}, f.st.Pending)

	assert.Empty(t, f.wait(time.Second))
	assert.Empty(t, f.st.Pending)

	// the late key is read fresh, not as the second half of gg
	assert.Equal(t, []CommandKind{CmdMoveDown}, kinds(f.press("j")))
}

func TestLateKeyAfterTimeoutWithoutTick(t *testing.T) {
	f := newFeeder()
	f.press("g")
	f.now = f.now.Add(time.Second)
	assert.Empty(t, f.press("g"))
	assert.Equal(t, []string{"g"}, f.st.Pending)
}

func TestAmbiguousPrefixWaitsThenFires(t *testing.T) {
	f := newFeeder()
	assert.Empty(t, f.press("p"))
	assert.Equal(t, []string{"p"}, f.st.Pending)

	cmds := f.wait(time.Second)
	assert.Equal(t, []CommandKind{CmdPaste}, kinds(cmds))
	assert.Empty(t, f.st.Pending)
}

func TestAmbiguousPrefixExtends(t *testing.T) {
	f := newFeeder()
	assert.Equal(t, []CommandKind{CmdPasteOverwrite}, kinds(f.press("p", "o")))
}

func TestAmbiguousPrefixFiresShortOnOtherKey(t *testing.T) {
	f := newFeeder()
	assert.Equal(t, []CommandKind{CmdPaste, CmdMoveDown}, kinds(f.press("p", "j")))
}

func TestAmbiguousExpiredBeforeNextKey(t *testing.T) {
	f := newFeeder()
	f.press("p")
	f.now = f.now.Add(time.Second)
	assert.Equal(t, []CommandKind{CmdPaste, CmdMoveDown}, kinds(f.press("j")))
}

func TestCountPrefix(t *testing.T) {
	f := newFeeder()
	cmds := f.press("1", "2", "j")
	require.Len(t, cmds, 1)
	assert.Equal(t, 12, cmds[0].Count)
	assert.Equal(t, 12, cmds[0].Times())
	assert.Zero(t, f.st.Count)

	cmds = f.press("k")
	assert.Equal(t, 1, cmds[0].Times())

	// a leading zero is not a count
	assert.Empty(t, f.press("0"))
	assert.Zero(t, f.st.Count)
}

func TestVisualModeTransitions(t *testing.T) {
	f := newFeeder()
	assert.Equal(t, []CommandKind{CmdVisual}, kinds(f.press("v")))
	assert.Equal(t, ModeVisual, f.st.Mode)

	assert.Equal(t, []CommandKind{CmdMoveDown, CmdTop}, kinds(f.press("j", "g", "g")))
	assert.Equal(t, ModeVisual, f.st.Mode)

	assert.Equal(t, []CommandKind{CmdYank}, kinds(f.press("y")))
	assert.Equal(t, ModeNormal, f.st.Mode)

	f.press("v")
	assert.Equal(t, []CommandKind{CmdExitSelection}, kinds(f.press("esc")))
	assert.Equal(t, ModeNormal, f.st.Mode)
}

func TestVisualActionsReturnToNormal(t *testing.T) {
	tests := []struct {
		key  string
		want CommandKind
	}{
		{"p", CmdPaste},
		{"l", CmdEnter},
		{"enter", CmdEnter},
		{"h", CmdParent},
		{"backspace", CmdParent},
		{"tab", CmdSwitchPanel},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			f := newFeeder()
			f.press("v", "j")
			assert.Equal(t, []CommandKind{tt.want}, kinds(f.press(tt.key)))
			assert.Equal(t, ModeNormal, f.st.Mode)
			assert.Empty(t, f.st.Pending)
		})
	}
}

func TestCountBeforeTop(t *testing.T) {
	f := newFeeder()
	cmds := f.press("3", "g", "g")
	require.Len(t, cmds, 1)
	assert.Equal(t, CmdTop, cmds[0].Kind)
	assert.Equal(t, 3, cmds[0].Count)
}

func TestSelectMode(t *testing.T) {
	f := newFeeder()
	assert.Equal(t, []CommandKind{CmdSelectToggleDown}, kinds(f.press("shift+down")))
	assert.Equal(t, ModeSelect, f.st.Mode)
	assert.Equal(t, []CommandKind{CmdToggleCurrent}, kinds(f.press("space")))
	assert.Equal(t, []CommandKind{CmdVisual}, kinds(f.press("v")))
	assert.Equal(t, ModeVisual, f.st.Mode)
}

func TestCommandLineMode(t *testing.T) {
	f := newFeeder()
	f.press(":")
	assert.Equal(t, ModeCommand, f.st.Mode)

	assert.Empty(t, f.press("m", "k", "d", "i", "r", "space", "x"))
	assert.Equal(t, "mkdir x", f.st.Line)

	f.press("backspace")
	assert.Equal(t, "mkdir ", f.st.Line)
	f.press("y")

	cmds := f.press("enter")
	assert.Equal(t, []Command{{Kind: CmdExecLine, Arg: "mkdir y"}}, cmds)
	assert.Equal(t, ModeNormal, f.st.Mode)
	assert.Empty(t, f.st.Line)
}

func TestCommandLineEscAndEmptyBackspace(t *testing.T) {
	f := newFeeder()
	f.press(":", "q")
	assert.Equal(t, []CommandKind{CmdCommandCancel}, kinds(f.press("esc")))
	assert.Equal(t, ModeNormal, f.st.Mode)

	f.press(":")
	assert.Equal(t, []CommandKind{CmdCommandCancel}, kinds(f.press("backspace")))
	assert.Equal(t, ModeNormal, f.st.Mode)
}

func TestSearchModeIsIncremental(t *testing.T) {
	f := newFeeder()
	f.press("/")
	cmds := f.press("a", "b")
	assert.Equal(t, []Command{{Kind: CmdSearchUpdate, Arg: "a"}, {Kind: CmdSearchUpdate, Arg: "ab"}}, cmds)

	// digits are text here, not counts
	cmds = f.press("1")
	assert.Equal(t, "ab1", cmds[0].Arg)

	assert.Equal(t, []Command{{Kind: CmdSearchAccept, Arg: "ab1"}}, f.press("enter"))
	assert.Equal(t, ModeNormal, f.st.Mode)
}

func TestFindModeNavigation(t *testing.T) {
	f := newFeeder()
	f.press("f")
	assert.Equal(t, ModeFind, f.st.Mode)
	assert.Equal(t, []CommandKind{CmdFindUpdate, CmdFindNext, CmdFindScope, CmdFindPrev}, kinds(f.press("x", "down", "tab", "ctrl+p")))
	assert.Equal(t, []CommandKind{CmdFindAccept}, kinds(f.press("enter")))
}

func TestConfirmMode(t *testing.T) {
	f := newFeeder()
	f.st.Mode = ModeConfirm
	assert.Equal(t, []CommandKind{CmdConfirm}, kinds(f.press("y")))
	assert.Equal(t, ModeNormal, f.st.Mode)

	f.st.Mode = ModeConfirm
	assert.Equal(t, []CommandKind{CmdCancelPrompt}, kinds(f.press("n")))
}

func TestConflictMode(t *testing.T) {
	f := newFeeder()
	f.st.Mode = ModeConflict
	assert.Equal(t, []Command{{Kind: CmdResolveConflict, Arg: "rename"}}, f.press("r"))
	assert.Equal(t, []Command{{Kind: CmdResolveConflict, Arg: "overwrite", Flag: true}}, f.press("O"))
	assert.Equal(t, ModeConflict, f.st.Mode)
	assert.Empty(t, f.press("x"))
	assert.Equal(t, []CommandKind{CmdCancelPrompt}, kinds(f.press("esc")))
	assert.Equal(t, ModeNormal, f.st.Mode)
}

func TestPreviewMode(t *testing.T) {
	f := newFeeder()
	f.press("i")
	assert.Equal(t, ModePreview, f.st.Mode)
	assert.Equal(t, []Command{{Kind: CmdPreviewScroll, Arg: "1"}}, f.press("j"))
	assert.Equal(t, []CommandKind{CmdPreviewClose}, kinds(f.press("q")))
	assert.Equal(t, ModeNormal, f.st.Mode)
}

func TestHelpListsDocumentedBindings(t *testing.T) {
	k := Default(time.Second)
	var found bool
	for _, b := range k.Help(ModeNormal) {
		if b.Help().Desc == "down" {
			found = true
			assert.Equal(t, "j/down", b.Help().Key)
		}
	}
	assert.True(t, found)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"", Command{}},
		{"q", Command{Kind: CmdQuit}},
		{"cd ~/src", Command{Kind: CmdCd, Arg: "~/src"}},
		{"cd", Command{Kind: CmdCd, Arg: "~"}},
		{"mkdir  new dir ", Command{Kind: CmdMkdir, Arg: "new dir"}},
		{"touch a.txt", Command{Kind: CmdTouch, Arg: "a.txt"}},
		{"rn b.txt", Command{Kind: CmdRenameTo, Arg: "b.txt"}},
		{"sort size", Command{Kind: CmdSort, Arg: "size"}},
		{"sort mod rev", Command{Kind: CmdSort, Arg: "mod", Flag: true}},
		{"select *.log", Command{Kind: CmdSelectGlob, Arg: "*.log"}},
		{"unsel *.txt", Command{Kind: CmdUnselectGlob, Arg: "*.txt"}},
		{"tabnew", Command{Kind: CmdTabNew}},
		{"tabclose", Command{Kind: CmdTabClose}},
		{"mark a", Command{Kind: CmdMarkSet, Arg: "a"}},
		{"find main.go", Command{Kind: CmdFindGlobal, Arg: "main.go"}},
		{"delete!", Command{Kind: CmdDeletePermanent}},
		{"bm", Command{Kind: CmdBookmarkSet}},
		{"bookmark work", Command{Kind: CmdBookmarkSet, Arg: "work"}},
		{"go work", Command{Kind: CmdBookmarkJump, Arg: "work"}},
		{"bmrename old new", Command{Kind: CmdBookmarkRename, Arg: "old new"}},
		{"delbm work", Command{Kind: CmdBookmarkDelete, Arg: "work"}},
		{"bookmarks", Command{Kind: CmdBookmarkList}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	_, err := ParseLine("mkdir")
	assert.True(t, errors.Is(err, ErrMissingArgument))

	_, err = ParseLine("mark AB")
	assert.Error(t, err)

	_, err = ParseLine("bmrename onlyone")
	assert.Error(t, err)
	_, err = ParseLine("go")
	assert.True(t, errors.Is(err, ErrMissingArgument))

	_, err = ParseLine("tabnwe")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
	var uc *UnknownCommandError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "tabnew", uc.Suggestion)
	assert.Equal(t, "Unknown command: tabnwe (did you mean tabnew?)", err.Error())

	_, err = ParseLine("frobnicate")
	assert.Equal(t, "Unknown command: frobnicate", err.Error())
}

func TestSuggestPrefersNearestLength(t *testing.T) {
	// tabn and tabnew are both two edits from tabnwe
	assert.Equal(t, "tabnew", suggest("tabnwe"))
	assert.Equal(t, "tabnext", suggest("tabnxet"))
	assert.Equal(t, "", suggest("zzzzzz"))
}
