package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/LFroesch/fcmd/internal/config"
	"github.com/LFroesch/fcmd/internal/git"
	"github.com/LFroesch/fcmd/internal/keymap"
	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/LFroesch/fcmd/internal/ops"
	"github.com/LFroesch/fcmd/internal/panel"
	"github.com/LFroesch/fcmd/internal/preview"
	"github.com/LFroesch/fcmd/internal/theme"
)

const statusTTL = 4 * time.Second

type Options struct {
	Config   *config.Config
	Engine   *ops.Engine
	Keymap   *keymap.Keymap
	Themes   *theme.Registry
	Git      *git.Cache // nil disables git decoration
	StartDir string
	// Save persists a snapshot after mark, theme and tab changes. Optional.
	Save func(Snapshot) error
	Now  func() time.Time
}

// Status is the message line under the panels.
type Status struct {
	Text  string
	Error bool
	At    time.Time
}

// Session is the whole interactive state: tabs, register, undo history
// (through the engine), modal input state, marks and overlays. It is
// driven from a single goroutine by HandleKey and Tick.
type Session struct {
	cfg    *config.Config
	engine *ops.Engine
	km     *keymap.Keymap
	themes *theme.Registry
	git    *git.Cache
	save   func(Snapshot) error
	now    func() time.Time

	tabs      []*Tab
	activeTab int
	nextPanel int
	height    int

	state    keymap.State
	register ops.Register

	marks       map[string]string
	visualMarks map[string]int
	bookmarks   map[string]string
	dirSorts    map[string]SortState
	themeName   string

	search   searchState
	find     *Find
	preview  *PreviewState
	confirm  *confirmation
	conflict *conflictPrompt

	status   Status
	external *External
	quit     bool
}

// New opens one tab with both panels at opts.StartDir.
func New(opts Options) (*Session, error) {
	if opts.Engine == nil {
		return nil, errors.New("session: an operation engine is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Keymap == nil {
		opts.Keymap = keymap.Default(opts.Config.PendingKeyTimeout())
	}
	if opts.Themes == nil {
		opts.Themes = theme.NewRegistry("")
	}
	s := &Session{
		cfg:         opts.Config,
		engine:      opts.Engine,
		km:          opts.Keymap,
		themes:      opts.Themes,
		git:         opts.Git,
		save:        opts.Save,
		now:         opts.Now,
		marks:       make(map[string]string),
		visualMarks: make(map[string]int),
		bookmarks:   make(map[string]string),
		dirSorts:    make(map[string]SortState),
		themeName:   theme.DefaultName,
		height:      20,
	}
	if s.themes.Has(opts.Config.Theme) {
		s.themeName = opts.Config.Theme
	}

	tab, err := s.newTab(opts.StartDir, opts.StartDir)
	if err != nil {
		return nil, err
	}
	s.tabs = []*Tab{tab}
	return s, nil
}

// HandleKey feeds one key event through the input engine and executes the
// resulting commands.
func (s *Session) HandleKey(ev keymap.Event) {
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	cmds, next := s.km.Interpret(ev, s.state)
	s.state = next
	s.run(cmds)
}

func (s *Session) run(cmds []keymap.Command) {
	for _, cmd := range cmds {
		s.execute(cmd)
	}
	// a visual range only lives while visual mode (or a prompt it opened) does
	switch s.state.Mode {
	case keymap.ModeVisual, keymap.ModeCommand, keymap.ModeConfirm:
	default:
		for _, p := range s.Tab().Panels {
			if p.Selection().Kind() == panel.SelectionVisual {
				p.ClearSelection()
			}
		}
	}
}

// Tick resolves timed-out key sequences, collects background results and
// expires the status line. It never blocks.
func (s *Session) Tick(now time.Time) {
	cmds, next := s.km.Expire(s.state, now)
	s.state = next
	if len(cmds) > 0 {
		s.run(cmds)
	}

	if s.engine != nil {
		if ev, ok := s.engine.Poll(); ok {
			s.operationFinished(ev)
		}
	}
	if s.find != nil {
		s.find.tick(s, now)
	}
	if s.status.Text != "" && !s.status.Error && now.Sub(s.status.At) > statusTTL {
		s.status = Status{}
	}
}

func (s *Session) info(format string, args ...any) {
	s.status = Status{Text: fmt.Sprintf(format, args...), At: s.now()}
}

func (s *Session) fail(err error) {
	if err == nil {
		return
	}
	logger.Debug("session error: %v", err)
	s.status = Status{Text: "Error: " + err.Error(), Error: true, At: s.now()}
}

// Read-only views for the renderer.

func (s *Session) Tabs() []*Tab            { return s.tabs }
func (s *Session) ActiveTabIndex() int     { return s.activeTab }
func (s *Session) Tab() *Tab               { return s.tabs[s.activeTab] }
func (s *Session) Active() *panel.Panel    { return s.Tab().Focused() }
func (s *Session) Other() *panel.Panel     { return s.Tab().Unfocused() }
func (s *Session) Mode() keymap.Mode       { return s.state.Mode }
func (s *Session) Line() string            { return s.state.Line }
func (s *Session) PendingKeys() string     { return s.state.PendingKeys() }
func (s *Session) Count() int              { return s.state.Count }
func (s *Session) Status() Status          { return s.status }
func (s *Session) Register() ops.Register  { return s.register }
func (s *Session) Engine() *ops.Engine     { return s.engine }
func (s *Session) Keymap() *keymap.Keymap  { return s.km }
func (s *Session) Themes() *theme.Registry { return s.themes }
func (s *Session) Theme() string           { return s.themeName }
func (s *Session) Find() *Find             { return s.find }
func (s *Session) Preview() *PreviewState  { return s.preview }
func (s *Session) Quitting() bool          { return s.quit }
func (s *Session) Marks() map[string]string {
	return s.marks
}

// SetStatus lets the adapter report results of work it did on the
// session's behalf.
func (s *Session) SetStatus(msg string, err error) {
	if err != nil {
		s.fail(err)
		return
	}
	s.info("%s", msg)
}

// Prompt returns the question shown in Confirm or Conflict mode.
func (s *Session) Prompt() string {
	switch {
	case s.state.Mode == keymap.ModeConfirm && s.confirm != nil:
		return s.confirm.prompt
	case s.state.Mode == keymap.ModeConflict && s.conflict != nil:
		return s.conflict.prompt()
	}
	return ""
}

// Branch is the git branch of the active directory, if any.
func (s *Session) Branch() string {
	if s.git == nil {
		return ""
	}
	if r := s.git.Repo(s.Active().Path()); r != nil {
		return r.Branch
	}
	return ""
}

// Progress of the running background operation.
func (s *Session) Progress() (ops.Progress, bool) {
	if s.engine == nil {
		return ops.Progress{}, false
	}
	return s.engine.Active()
}

// Resize tells every panel how many rows it has.
func (s *Session) Resize(rows int) {
	s.height = rows
	for _, t := range s.tabs {
		for _, p := range t.Panels {
			p.SetHeight(rows)
		}
	}
}

// PreviewState is the open preview overlay.
type PreviewState struct {
	Content preview.Content
	Scroll  int
}

func (s *Session) openPreview() {
	e, ok := s.Active().Current()
	if !ok {
		s.state.Mode = keymap.ModeNormal
		return
	}
	s.state.Mode = keymap.ModePreview
	s.preview = &PreviewState{Content: preview.Load(e.Path, e.GitStatus)}
}

func (s *Session) scrollPreview(arg string) {
	if s.preview == nil {
		return
	}
	half := s.height / 2
	if half < 1 {
		half = 1
	}
	switch arg {
	case "1":
		s.preview.Scroll++
	case "-1":
		s.preview.Scroll--
	case "half":
		s.preview.Scroll += half
	case "-half":
		s.preview.Scroll -= half
	}
	s.clampPreview()
}

func (s *Session) clampPreview() {
	max := len(s.preview.Content.Lines) - 1
	if s.preview.Scroll > max {
		s.preview.Scroll = max
	}
	if s.preview.Scroll < 0 {
		s.preview.Scroll = 0
	}
}
