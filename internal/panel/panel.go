package panel

import (
	"fmt"
	"os"
	"path/filepath"
)

// Panel is one directory-browsing context. Its entry slice is never
// modified in place; every change installs a fresh slice.
type Panel struct {
	path       string
	entries    []Entry
	cursor     int
	offset     int
	height     int
	sortMode   SortMode
	reverse    bool
	showHidden bool
	sel        Selection
	decorator  Decorator
	memory     SortMemory
}

// SortMemory supplies the sort a directory was last viewed with.
type SortMemory interface {
	SortFor(dir string) (mode SortMode, reverse bool, ok bool)
}

// Options configures a new Panel.
type Options struct {
	ShowHidden bool
	Sort       SortMode
	Reverse    bool
	Decorator  Decorator
	Memory     SortMemory
}

// Open creates a panel listing dir. A remembered sort for dir wins over
// opts.Sort.
func Open(dir string, opts Options) (*Panel, error) {
	p := &Panel{
		height:     20,
		sortMode:   opts.Sort,
		reverse:    opts.Reverse,
		showHidden: opts.ShowHidden,
		decorator:  opts.Decorator,
		memory:     opts.Memory,
	}
	if err := p.enter(dir, false); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Panel) Path() string { return p.path }
func (p *Panel) Entries() []Entry { return p.entries }
func (p *Panel) Len() int { return len(p.entries) }
func (p *Panel) Cursor() int { return p.cursor }
func (p *Panel) Offset() int { return p.offset }
func (p *Panel) SortMode() SortMode { return p.sortMode }
func (p *Panel) Reversed() bool { return p.reverse }
func (p *Panel) ShowHidden() bool { return p.showHidden }
func (p *Panel) Selection() Selection { return p.sel }
func (p *Panel) Decorator() Decorator { return p.decorator }
func (p *Panel) SetDecorator(d Decorator) { p.decorator = d }

// Current returns the entry under the cursor.
func (p *Panel) Current() (Entry, bool) {
	if len(p.entries) == 0 {
		return Entry{}, false
	}
	return p.entries[p.cursor], true
}

// SetHeight records how many rows the renderer shows for this panel.
func (p *Panel) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	p.height = h
	p.adjustScroll()
}

func (p *Panel) Height() int { return p.height }

// Enter switches to dir. On failure the panel is left untouched.
func (p *Panel) Enter(dir string) error {
	return p.enter(dir, true)
}

// enter lists dir. With a sort memory attached, a directory without a
// remembered sort gets the default order when reset is set.
func (p *Panel) enter(dir string, reset bool) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}
	entries, err := ReadDir(abs, p.showHidden, p.decorator)
	if err != nil {
		return err
	}
	if p.memory != nil {
		if mode, reverse, ok := p.memory.SortFor(abs); ok {
			p.sortMode, p.reverse = mode, reverse
		} else if reset {
			p.sortMode, p.reverse = SortName, false
		}
	}
	p.path = abs
	p.entries = Sort(entries, p.sortMode, p.reverse)
	p.cursor = 0
	p.offset = 0
	p.sel = Selection{}
	return nil
}

// EnterCurrent descends into the directory under the cursor.
func (p *Panel) EnterCurrent() error {
	e, ok := p.Current()
	if !ok {
		return nil
	}
	if !e.IsDir {
		return fmt.Errorf("%s: %w", e.Name, ErrNotDirectory)
	}
	return p.Enter(e.Path)
}

// GoParent moves to the parent directory and puts the cursor on the
// directory that was just left.
func (p *Panel) GoParent() error {
	parent := filepath.Dir(p.path)
	if parent == p.path {
		return nil
	}
	from := p.path
	if err := p.Enter(parent); err != nil {
		return err
	}
	p.SelectPath(from)
	return nil
}

// GoHome enters the user's home directory.
func (p *Panel) GoHome() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return p.Enter(home)
}

// Refresh re-reads the directory. The cursor follows the entry it was on
// when that entry still exists; otherwise the index is clamped.
func (p *Panel) Refresh() error {
	entries, err := ReadDir(p.path, p.showHidden, p.decorator)
	if err != nil {
		return err
	}
	p.install(Sort(entries, p.sortMode, p.reverse))
	return nil
}

// Redecorate reapplies decoration hints without touching the disk.
func (p *Panel) Redecorate() {
	fresh := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		fresh[i] = decorate(e, p.decorator)
	}
	p.entries = fresh
}

func (p *Panel) install(entries []Entry) {
	var current string
	if e, ok := p.Current(); ok {
		current = e.Path
	}
	old := p.cursor
	p.entries = entries
	p.sel.anchorIdx = clamp(p.sel.anchorIdx, 0, len(entries)-1)
	if current == "" || !p.SelectPath(current) {
		p.cursor = clamp(old, 0, len(entries)-1)
		p.adjustScroll()
	}
	p.pruneSelection()
}

// SetSort changes the sort mode and re-sorts the current listing.
func (p *Panel) SetSort(mode SortMode) {
	p.sortMode = mode
	p.install(Sort(p.entries, p.sortMode, p.reverse))
}

// SetReverse sets the direction of the primary sort key.
func (p *Panel) SetReverse(reverse bool) {
	p.reverse = reverse
	p.install(Sort(p.entries, p.sortMode, p.reverse))
}

// ToggleHidden flips hidden-file visibility; if the re-read fails the flag
// is restored.
func (p *Panel) ToggleHidden() error {
	p.showHidden = !p.showHidden
	if err := p.Refresh(); err != nil {
		p.showHidden = !p.showHidden
		return err
	}
	return nil
}

func (p *Panel) SetShowHidden(show bool) error {
	if p.showHidden == show {
		return nil
	}
	return p.ToggleHidden()
}

func (p *Panel) MoveCursor(delta int) {
	p.setCursor(p.cursor + delta)
}

func (p *Panel) JumpTop() {
	p.setCursor(0)
}

func (p *Panel) JumpBottom() {
	p.setCursor(len(p.entries) - 1)
}

// HalfPage moves half the visible height; dir is +1 for down, -1 for up.
func (p *Panel) HalfPage(dir int) {
	step := p.height / 2
	if step < 1 {
		step = 1
	}
	p.MoveCursor(dir * step)
}

// SetCursor moves to index i, clamped.
func (p *Panel) SetCursor(i int) {
	p.setCursor(i)
}

// SelectPath puts the cursor on the entry with the given path.
func (p *Panel) SelectPath(path string) bool {
	if i := p.indexOf(path); i >= 0 {
		p.setCursor(i)
		return true
	}
	return false
}

func (p *Panel) indexOf(path string) int {
	for i, e := range p.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}

func (p *Panel) setCursor(i int) {
	p.cursor = clamp(i, 0, len(p.entries)-1)
	p.adjustScroll()
}

func (p *Panel) adjustScroll() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
	p.offset = clamp(p.offset, 0, len(p.entries)-p.height)
}

// clamp bounds v to [lo, hi]; an empty range (hi < lo) yields lo.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
