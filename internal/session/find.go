package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LFroesch/fcmd/internal/keymap"
	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/LFroesch/fcmd/internal/search"
)

const (
	findDebounce = 150 * time.Millisecond
	// results taken off the global channel per tick
	drainBatch = 512
)

type FindScope int

const (
	ScopeLocal FindScope = iota
	ScopeGlobal
	ScopeContent
)

func (s FindScope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeContent:
		return "content"
	}
	return "local"
}

// Find is the fuzzy-find overlay. Local scope ranks a one-off walk of the
// panel directory on every keystroke; global and content scopes run an
// external tool after the query settles and collect its output on Tick.
type Find struct {
	Scope   FindScope
	Root    string
	Query   string
	Results []search.Result
	Matches [][]int
	Cursor  int
	Loading bool
	Err     error

	candidates []search.Result
	names      []string
	ranker     search.Ranker

	dirty    bool
	edited   time.Time
	cancel   context.CancelFunc
	incoming <-chan search.Result
	content  chan contentResult
	gen      int
}

type contentResult struct {
	gen     int
	results []search.Result
	err     error
}

// Selected returns the highlighted result.
func (f *Find) Selected() (search.Result, bool) {
	if f.Cursor < 0 || f.Cursor >= len(f.Results) {
		return search.Result{}, false
	}
	return f.Results[f.Cursor], true
}

func (f *Find) stop() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.incoming = nil
	f.Loading = false
}

func (s *Session) openFind(scope FindScope, query string) {
	if s.find != nil {
		s.find.stop()
	}
	s.find = &Find{
		Scope:  scope,
		Root:   s.Active().Path(),
		ranker: search.FuzzyRanker{},
	}
	if scope == ScopeGlobal {
		s.find.Root = globalRoot()
	}
	s.state.Mode = keymap.ModeFind
	s.state.Line = query
	s.loadScope()
	s.findUpdate(query)
}

// loadScope prepares candidates for the local scope.
func (s *Session) loadScope() {
	f := s.find
	f.stop()
	f.Results, f.Matches, f.Cursor, f.Err = nil, nil, 0, nil
	if f.Scope != ScopeLocal {
		return
	}
	results, err := search.Walk(context.Background(), f.Root, search.WalkOptions{
		ShowHidden: s.Active().ShowHidden(),
		MaxDepth:   s.cfg.FindMaxDepth,
		MaxEntries: s.cfg.FindMaxEntries,
		SkipDirs:   s.cfg.SkipDirectories,
	})
	if err != nil {
		f.Err = err
		return
	}
	f.candidates = results
	f.names = make([]string, len(results))
	for i, r := range results {
		f.names[i] = r.DisplayName
	}
}

func (s *Session) findUpdate(query string) {
	f := s.find
	if f == nil {
		return
	}
	f.Query = query
	if f.Scope == ScopeLocal {
		f.Results, f.Matches = f.Results[:0], f.Matches[:0]
		for _, m := range f.ranker.Rank(query, f.names) {
			f.Results = append(f.Results, f.candidates[m.Index])
			f.Matches = append(f.Matches, m.MatchedIndexes)
		}
		f.Cursor = 0
		return
	}
	f.dirty = true
	f.edited = s.now()
}

func (s *Session) findMove(delta int) {
	f := s.find
	if f == nil || len(f.Results) == 0 {
		return
	}
	f.Cursor = ((f.Cursor+delta)%len(f.Results) + len(f.Results)) % len(f.Results)
}

// findScope switches between local and global search, keeping the query.
func (s *Session) findScope() {
	f := s.find
	if f == nil {
		return
	}
	if f.Scope == ScopeLocal {
		f.Scope = ScopeGlobal
		f.Root = globalRoot()
	} else {
		f.Scope = ScopeLocal
		f.Root = s.Active().Path()
	}
	s.loadScope()
	s.findUpdate(f.Query)
}

func (s *Session) closeFind() {
	if s.find != nil {
		s.find.stop()
		s.find = nil
	}
}

// findAccept navigates the focused panel to the chosen result. Content
// hits also open the editor at the matching line.
func (s *Session) findAccept() {
	f := s.find
	if f == nil {
		return
	}
	r, ok := f.Selected()
	scope := f.Scope
	s.closeFind()
	if !ok {
		return
	}
	path := r.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		s.fail(err)
		return
	}
	p := s.Active()
	if info.IsDir() {
		if err := p.Enter(path); err != nil {
			s.fail(err)
		}
		return
	}
	if err := p.Enter(filepath.Dir(path)); err != nil {
		s.fail(err)
		return
	}
	p.SelectPath(path)
	if scope == ScopeContent && r.LineNumber > 0 {
		s.external = &External{Kind: ExternalEdit, Path: path, Line: r.LineNumber}
	}
}

// tick starts a settled remote search and collects whatever has arrived.
func (f *Find) tick(s *Session, now time.Time) {
	if f.dirty && now.Sub(f.edited) >= findDebounce {
		f.dirty = false
		s.startRemote()
	}

	if f.incoming != nil {
	drain:
		for i := 0; i < drainBatch; i++ {
			select {
			case r, ok := <-f.incoming:
				if !ok {
					f.incoming = nil
					f.Loading = false
					break drain
				}
				f.Results = append(f.Results, r)
				f.Matches = append(f.Matches, nil)
			default:
				break drain
			}
		}
	}

	if f.content != nil {
		select {
		case res := <-f.content:
			if res.gen != f.gen {
				return
			}
			f.Loading = false
			f.Results, f.Err = res.results, res.err
			f.Matches = make([][]int, len(res.results))
		default:
		}
	}
}

func (s *Session) startRemote() {
	f := s.find
	f.stop()
	f.gen++
	f.Results, f.Matches, f.Cursor, f.Err = nil, nil, 0, nil
	if f.Query == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.Loading = true

	switch f.Scope {
	case ScopeGlobal:
		tool, err := search.FindTool()
		if err != nil {
			f.Err, f.Loading = err, false
			return
		}
		ch, err := search.Global(ctx, tool, f.Query, f.Root, s.cfg.GlobalSearchLimit)
		if err != nil {
			f.Err, f.Loading = err, false
			return
		}
		f.incoming = ch
	case ScopeContent:
		if f.content == nil {
			f.content = make(chan contentResult, 1)
		}
		gen, query, root, hidden, out := f.gen, f.Query, f.Root, s.Active().ShowHidden(), f.content
		go func() {
			results, err := search.Content(ctx, query, root, hidden)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.Debug("content search %q: %v", query, err)
			}
			// drop a stale result so the newest always fits
			select {
			case <-out:
			default:
			}
			out <- contentResult{gen: gen, results: results, err: err}
		}()
	}
}

func globalRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return string(filepath.Separator)
	}
	return home
}

// grep opens the overlay on a content search of the focused directory.
func (s *Session) grep(query string) {
	s.openFind(ScopeContent, query)
	if query == "" {
		return
	}
	// the query is already settled; no need to wait for typing to stop
	s.find.dirty = false
	s.startRemote()
}

func (f *Find) Summary() string {
	switch {
	case f.Err != nil:
		return "Error: " + f.Err.Error()
	case f.Loading:
		return fmt.Sprintf("%s: %d so far…", f.Scope, len(f.Results))
	}
	return fmt.Sprintf("%s: %d", f.Scope, len(f.Results))
}
