package keymap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

// UnknownCommandError names the command that failed to parse and, when one
// is close enough, the command the user probably meant.
type UnknownCommandError struct {
	Name       string
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("Unknown command: %s (did you mean %s?)", e.Name, e.Suggestion)
	}
	return "Unknown command: " + e.Name
}

func (e *UnknownCommandError) Unwrap() error { return ErrUnknownCommand }

type lineCommand struct {
	kind     CommandKind
	needsArg bool
}

var lineCommands = map[string]lineCommand{
	"q":        {kind: CmdQuit},
	"quit":     {kind: CmdQuit},
	"cd":       {kind: CmdCd},
	"mkdir":    {kind: CmdMkdir, needsArg: true},
	"touch":    {kind: CmdTouch, needsArg: true},
	"rename":   {kind: CmdRenameTo, needsArg: true},
	"rn":       {kind: CmdRenameTo, needsArg: true},
	"sort":     {kind: CmdSort, needsArg: true},
	"select":   {kind: CmdSelectGlob, needsArg: true},
	"sel":      {kind: CmdSelectGlob, needsArg: true},
	"unselect": {kind: CmdUnselectGlob, needsArg: true},
	"unsel":    {kind: CmdUnselectGlob, needsArg: true},
	"hidden":   {kind: CmdToggleHidden},
	"tabnew":   {kind: CmdTabNew},
	"tabclose": {kind: CmdTabClose},
	"tabc":     {kind: CmdTabClose},
	"tabnext":  {kind: CmdTabNext},
	"tabn":     {kind: CmdTabNext},
	"tabprev":  {kind: CmdTabPrev},
	"tabp":     {kind: CmdTabPrev},
	"mark":     {kind: CmdMarkSet, needsArg: true},
	"delmark":  {kind: CmdMarkDelete, needsArg: true},
	"marks":    {kind: CmdMarkList},

	"bookmark":    {kind: CmdBookmarkSet},
	"bm":          {kind: CmdBookmarkSet},
	"bookmarks":   {kind: CmdBookmarkList},
	"bms":         {kind: CmdBookmarkList},
	"delbookmark": {kind: CmdBookmarkDelete, needsArg: true},
	"delbm":       {kind: CmdBookmarkDelete, needsArg: true},
	"bmrename":    {kind: CmdBookmarkRename, needsArg: true},
	"go":          {kind: CmdBookmarkJump, needsArg: true},

	"find":     {kind: CmdFindGlobal},
	"grep":     {kind: CmdGrep, needsArg: true},
	"theme":    {kind: CmdTheme},
	"delete!":  {kind: CmdDeletePermanent},
	"undo":     {kind: CmdUndo},
	"help":     {kind: CmdHelp},
}

// ParseLine turns a command-line string into a Command. An empty line
// yields CmdNone.
func ParseLine(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, nil
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	lc, ok := lineCommands[name]
	if !ok {
		return Command{}, &UnknownCommandError{Name: name, Suggestion: suggest(name)}
	}
	if lc.needsArg && arg == "" {
		return Command{}, fmt.Errorf("%s: %w", name, ErrMissingArgument)
	}

	cmd := Command{Kind: lc.kind, Arg: arg}
	switch lc.kind {
	case CmdSort:
		mode, rest, _ := strings.Cut(arg, " ")
		cmd.Arg = mode
		switch strings.TrimSpace(rest) {
		case "":
		case "rev", "reverse", "desc":
			cmd.Flag = true
		default:
			return Command{}, fmt.Errorf("sort: unexpected %q", rest)
		}
	case CmdMarkSet, CmdMarkDelete:
		if len(arg) != 1 || arg[0] < 'a' || arg[0] > 'z' {
			return Command{}, fmt.Errorf("%s: mark must be a single letter a-z", name)
		}
	case CmdBookmarkRename:
		if len(strings.Fields(arg)) != 2 {
			return Command{}, fmt.Errorf("%s: expected old and new name", name)
		}
	case CmdCd:
		if arg == "" {
			cmd.Arg = "~"
		}
	}
	return cmd, nil
}

// suggest returns the closest command within edit distance 2. Ties go to
// the candidate whose length is nearest the input, then alphabetical order.
func suggest(name string) string {
	best, bestDist := "", 3
	for candidate := range lineCommands {
		d := levenshtein.ComputeDistance(name, candidate)
		switch {
		case d < bestDist:
		case d == bestDist && best != "" && closer(name, candidate, best):
		default:
			continue
		}
		best, bestDist = candidate, d
	}
	return best
}

func closer(name, a, b string) bool {
	da, db := lengthGap(name, a), lengthGap(name, b)
	if da != db {
		return da < db
	}
	return a < b
}

func lengthGap(a, b string) int {
	if n := len(a) - len(b); n > 0 {
		return n
	}
	return len(b) - len(a)
}
