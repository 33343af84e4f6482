package keymap

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeVisual
	ModeSelect
	ModeCommand
	ModeSearch
	ModePreview
	ModeFind
	ModeConfirm
	ModeConflict
	ModeHelp
)

var modeNames = map[Mode]string{
	ModeNormal:   "NORMAL",
	ModeVisual:   "VISUAL",
	ModeSelect:   "SELECT",
	ModeCommand:  "COMMAND",
	ModeSearch:   "SEARCH",
	ModePreview:  "PREVIEW",
	ModeFind:     "FIND",
	ModeConfirm:  "CONFIRM",
	ModeConflict: "CONFLICT",
	ModeHelp:     "HELP",
}

func (m Mode) String() string {
	return modeNames[m]
}

// IsText reports whether the mode edits a line buffer.
func (m Mode) IsText() bool {
	return m == ModeCommand || m == ModeSearch || m == ModeFind
}

// Event is one key press. Key is the normalized key name ("j", "G",
// "ctrl+d", "space", "shift+down"); Text holds printable input for text
// modes.
type Event struct {
	Key  string
	Text string
	At   time.Time
}

// State is everything the engine needs to interpret the next key. It is a
// value; Interpret returns the successor instead of mutating.
type State struct {
	Mode    Mode
	Pending []string
	Since   time.Time
	Count   int
	Line    string
}

func (s State) PendingKeys() string {
	return strings.Join(s.Pending, " ")
}

type node struct {
	children map[string]*node
	binding  *binding
}

func (n *node) walk(seq []string) *node {
	cur := n
	for _, k := range seq {
		next, ok := cur.children[k]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func (n *node) insert(b binding) {
	cur := n
	for _, k := range strings.Fields(b.keys) {
		next, ok := cur.children[k]
		if !ok {
			next = &node{children: make(map[string]*node)}
			cur.children[k] = next
		}
		cur = next
	}
	bb := b
	cur.binding = &bb
}

// Keymap is an immutable table of key sequences per mode.
type Keymap struct {
	roots    map[Mode]*node
	bindings map[Mode][]binding
	timeout  time.Duration
}

// Default builds the standard keymap with the given multi-key timeout.
func Default(timeout time.Duration) *Keymap {
	k := &Keymap{
		roots:    make(map[Mode]*node),
		bindings: map[Mode][]binding{},
		timeout:  timeout,
	}
	k.bindings[ModeNormal] = normalBindings()
	k.bindings[ModeVisual] = visualBindings()
	k.bindings[ModeSelect] = selectBindings()
	k.bindings[ModePreview] = previewBindings()
	k.bindings[ModeConflict] = conflictBindings()
	for mode, bs := range k.bindings {
		root := &node{children: make(map[string]*node)}
		for _, b := range bs {
			root.insert(b)
		}
		k.roots[mode] = root
	}
	return k
}

func (k *Keymap) Timeout() time.Duration {
	return k.timeout
}

// Deadline reports when a pending sequence will time out.
func (k *Keymap) Deadline(st State) (time.Time, bool) {
	if len(st.Pending) == 0 {
		return time.Time{}, false
	}
	return st.Since.Add(k.timeout), true
}

// Expire resolves a pending sequence whose timeout has passed: a sequence
// that is itself a complete command fires, anything else is discarded.
func (k *Keymap) Expire(st State, now time.Time) ([]Command, State) {
	deadline, ok := k.Deadline(st)
	if !ok || now.Before(deadline) {
		return nil, st
	}
	n := k.roots[st.Mode].walk(st.Pending)
	st.Pending = nil
	if n != nil && n.binding != nil {
		return []Command{fire(n.binding, &st)}, st
	}
	st.Count = 0
	return nil, st
}

// Interpret maps one key event to zero or more commands and the next state.
// More than one command is returned only when a timed-out or ambiguous
// prefix resolves in the same step as the key that follows it.
func (k *Keymap) Interpret(ev Event, st State) ([]Command, State) {
	out, st := k.Expire(st, ev.At)

	switch {
	case st.Mode.IsText():
		cmds, next := textInput(ev, st)
		return append(out, cmds...), next
	case st.Mode == ModeConfirm:
		st.Mode = ModeNormal
		if ev.Key == "y" || ev.Key == "Y" {
			return append(out, Command{Kind: CmdConfirm}), st
		}
		return append(out, Command{Kind: CmdCancelPrompt}), st
	case st.Mode == ModeHelp:
		st.Mode = ModeNormal
		return append(out, Command{Kind: CmdHelpClose}), st
	}

	root, ok := k.roots[st.Mode]
	if !ok {
		return out, st
	}

	if len(st.Pending) == 0 && countable(st.Mode) {
		if d, isDigit := digit(ev.Key); isDigit && (d != 0 || st.Count > 0) {
			st.Count = st.Count*10 + d
			return out, st
		}
	}

	seq := append(append([]string(nil), st.Pending...), ev.Key)
	n := root.walk(seq)

	switch {
	case n == nil && len(st.Pending) > 0:
		prev := root.walk(st.Pending)
		st.Pending = nil
		if prev != nil && prev.binding != nil {
			out = append(out, fire(prev.binding, &st))
		}
		more, next := k.Interpret(ev, st)
		return append(out, more...), next
	case n == nil:
		st.Count = 0
		return out, st
	case len(n.children) == 0:
		st.Pending = nil
		return append(out, fire(n.binding, &st)), st
	default:
		st.Pending = seq
		st.Since = ev.At
		return out, st
	}
}

func fire(b *binding, st *State) Command {
	cmd := b.cmd
	cmd.Count = st.Count
	st.Count = 0
	if b.to != stay {
		st.Mode = b.to
		if b.to.IsText() {
			st.Line = ""
		}
	}
	return cmd
}

func countable(m Mode) bool {
	return m == ModeNormal || m == ModeVisual || m == ModeSelect
}

func digit(k string) (int, bool) {
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		return int(k[0] - '0'), true
	}
	return 0, false
}

// textInput handles the line-editing modes: command line, search, find.
func textInput(ev Event, st State) ([]Command, State) {
	mode := st.Mode
	switch ev.Key {
	case "esc":
		st.Mode, st.Line = ModeNormal, ""
		switch mode {
		case ModeSearch:
			return []Command{{Kind: CmdSearchCancel}}, st
		case ModeFind:
			return []Command{{Kind: CmdFindClose}}, st
		}
		return []Command{{Kind: CmdCommandCancel}}, st
	case "enter":
		line := st.Line
		st.Mode, st.Line = ModeNormal, ""
		switch mode {
		case ModeSearch:
			return []Command{{Kind: CmdSearchAccept, Arg: line}}, st
		case ModeFind:
			return []Command{{Kind: CmdFindAccept}}, st
		}
		return []Command{{Kind: CmdExecLine, Arg: line}}, st
	case "backspace":
		if st.Line == "" {
			if mode == ModeCommand {
				st.Mode = ModeNormal
				return []Command{{Kind: CmdCommandCancel}}, st
			}
			return nil, st
		}
		r := []rune(st.Line)
		st.Line = string(r[:len(r)-1])
		return lineChanged(st)
	case "ctrl+u":
		st.Line = ""
		return lineChanged(st)
	}

	if mode == ModeFind {
		switch ev.Key {
		case "down", "ctrl+n", "ctrl+j":
			return []Command{{Kind: CmdFindNext}}, st
		case "up", "ctrl+p", "ctrl+k":
			return []Command{{Kind: CmdFindPrev}}, st
		case "tab":
			return []Command{{Kind: CmdFindScope}}, st
		}
	}

	if ev.Text == "" {
		return nil, st
	}
	st.Line += ev.Text
	return lineChanged(st)
}

func lineChanged(st State) ([]Command, State) {
	switch st.Mode {
	case ModeSearch:
		return []Command{{Kind: CmdSearchUpdate, Arg: st.Line}}, st
	case ModeFind:
		return []Command{{Kind: CmdFindUpdate, Arg: st.Line}}, st
	}
	return nil, st
}

// Help returns the documented bindings of a mode for the help overlay.
func (k *Keymap) Help(mode Mode) []key.Binding {
	var out []key.Binding
	seen := make(map[string]int)
	for _, b := range k.bindings[mode] {
		keys := strings.ReplaceAll(b.keys, " ", "")
		if b.desc == "" {
			// alias: attach to the previous binding of the same command
			if i, ok := seen[commandKey(b.cmd)]; ok {
				prev := out[i]
				out[i] = key.NewBinding(
					key.WithKeys(append(prev.Keys(), keys)...),
					key.WithHelp(prev.Help().Key+"/"+keys, prev.Help().Desc),
				)
			}
			continue
		}
		seen[commandKey(b.cmd)] = len(out)
		out = append(out, key.NewBinding(key.WithKeys(keys), key.WithHelp(keys, b.desc)))
	}
	return out
}

func commandKey(c Command) string {
	return strconv.Itoa(int(c.Kind)) + ":" + c.Arg
}
