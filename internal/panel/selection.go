package panel

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

type SelectionKind int

const (
	SelectionNone SelectionKind = iota
	SelectionVisual
	SelectionToggle
	SelectionGlob
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionVisual:
		return "visual"
	case SelectionToggle:
		return "select"
	case SelectionGlob:
		return "glob"
	default:
		return "none"
	}
}

// Selection is a tagged union over the three selection strategies. Visual
// keeps only its anchor and derives the range from the cursor on demand;
// Toggle and Glob keep a set of paths.
type Selection struct {
	kind      SelectionKind
	anchor    string
	anchorIdx int
	set       map[string]struct{}
}

func (s Selection) Kind() SelectionKind {
	return s.kind
}

func newSet(kind SelectionKind) Selection {
	return Selection{kind: kind, set: make(map[string]struct{})}
}

// BeginVisual anchors a range at the cursor, replacing any other selection.
func (p *Panel) BeginVisual() {
	p.sel = Selection{kind: SelectionVisual, anchorIdx: p.cursor}
	if e, ok := p.Current(); ok {
		p.sel.anchor = e.Path
	}
}

// BeginToggle switches to an empty toggle set unless one is already active.
func (p *Panel) BeginToggle() {
	if p.sel.kind != SelectionToggle {
		p.sel = newSet(SelectionToggle)
	}
}

// ClearSelection drops whatever strategy is active.
func (p *Panel) ClearSelection() {
	p.sel = Selection{}
}

// ToggleCurrent flips membership of the entry under the cursor.
func (p *Panel) ToggleCurrent() {
	e, ok := p.Current()
	if !ok {
		return
	}
	if p.sel.set == nil {
		p.BeginToggle()
	}
	if _, in := p.sel.set[e.Path]; in {
		delete(p.sel.set, e.Path)
	} else {
		p.sel.set[e.Path] = struct{}{}
	}
}

// ToggleMove toggles the entry the cursor is leaving, then moves.
func (p *Panel) ToggleMove(delta int) {
	p.BeginToggle()
	p.ToggleCurrent()
	p.MoveCursor(delta)
}

// SelectAll puts every entry into the backing set.
func (p *Panel) SelectAll() {
	p.materialize()
	if p.sel.kind == SelectionNone {
		p.sel = newSet(SelectionToggle)
	}
	for _, e := range p.entries {
		p.sel.set[e.Path] = struct{}{}
	}
}

// GlobSelect adds (or with add=false removes) every entry whose name matches
// pattern, case-insensitively. It returns the number of matching entries.
func (p *Panel) GlobSelect(pattern string, add bool) (int, error) {
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return 0, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	p.materialize()
	if p.sel.kind == SelectionNone {
		if !add {
			return 0, nil
		}
		p.sel = newSet(SelectionGlob)
	}

	matched := 0
	for _, e := range p.entries {
		if !g.Match(strings.ToLower(e.Name)) {
			continue
		}
		matched++
		if add {
			p.sel.set[e.Path] = struct{}{}
		} else {
			delete(p.sel.set, e.Path)
		}
	}
	return matched, nil
}

// materialize turns a visual range into a toggle set so set operations can
// be applied to it.
func (p *Panel) materialize() {
	if p.sel.kind != SelectionVisual {
		return
	}
	paths := p.visualPaths()
	p.sel = newSet(SelectionToggle)
	for _, path := range paths {
		p.sel.set[path] = struct{}{}
	}
}

func (p *Panel) anchorIndex() int {
	if p.sel.anchor != "" {
		if i := p.indexOf(p.sel.anchor); i >= 0 {
			return i
		}
	}
	return clamp(p.sel.anchorIdx, 0, len(p.entries)-1)
}

// VisualRange returns the inclusive display-order bounds of the visual range.
func (p *Panel) VisualRange() (lo, hi int, ok bool) {
	if p.sel.kind != SelectionVisual || len(p.entries) == 0 {
		return 0, 0, false
	}
	lo, hi = p.anchorIndex(), p.cursor
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

func (p *Panel) visualPaths() []string {
	lo, hi, ok := p.VisualRange()
	if !ok {
		return nil
	}
	paths := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		paths = append(paths, p.entries[i].Path)
	}
	return paths
}

// SelectedPaths is the single read view over every strategy, in display order.
func (p *Panel) SelectedPaths() []string {
	switch p.sel.kind {
	case SelectionVisual:
		return p.visualPaths()
	case SelectionToggle, SelectionGlob:
		var paths []string
		for _, e := range p.entries {
			if _, ok := p.sel.set[e.Path]; ok {
				paths = append(paths, e.Path)
			}
		}
		return paths
	}
	return nil
}

// IsSelected reports whether the entry at path is part of the selection.
func (p *Panel) IsSelected(path string) bool {
	switch p.sel.kind {
	case SelectionVisual:
		i := p.indexOf(path)
		lo, hi, ok := p.VisualRange()
		return ok && i >= lo && i <= hi
	case SelectionToggle, SelectionGlob:
		_, ok := p.sel.set[path]
		return ok
	}
	return false
}

// Targets is what an operation acts on: the selection, or the entry under
// the cursor when nothing is selected.
func (p *Panel) Targets() []string {
	if paths := p.SelectedPaths(); len(paths) > 0 {
		return paths
	}
	if e, ok := p.Current(); ok {
		return []string{e.Path}
	}
	return nil
}

func (p *Panel) pruneSelection() {
	if p.sel.set == nil {
		return
	}
	for path := range p.sel.set {
		if p.indexOf(path) < 0 {
			delete(p.sel.set, path)
		}
	}
}
