package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/LFroesch/fcmd/internal/logger"
)

type Role string

const (
	Border       Role = "border"
	BorderActive Role = "border_active"
	CursorBg     Role = "cursor_bg"
	CursorFg     Role = "cursor_fg"
	Dir          Role = "dir"
	File         Role = "file"
	Symlink      Role = "symlink"
	Selected     Role = "selected"
	Mark1        Role = "mark1"
	Mark2        Role = "mark2"
	Mark3        Role = "mark3"
	Git          Role = "git"
	Status       Role = "status"
	Error        Role = "error"
	Dim          Role = "dim"
	TabActive    Role = "tab_active"
)

var Roles = []Role{
	Border, BorderActive, CursorBg, CursorFg, Dir, File, Symlink, Selected,
	Mark1, Mark2, Mark3, Git, Status, Error, Dim, TabActive,
}

const DefaultName = "default"

// Theme maps roles to #rrggbb colors.
type Theme struct {
	Name   string          `toml:"name"`
	Colors map[Role]string `toml:"colors"`
}

var builtins = map[string]Theme{
	DefaultName: {Name: DefaultName, Colors: map[Role]string{
		Border: "#585858", BorderActive: "#5fafff", CursorBg: "#303a4a", CursorFg: "#ffffff",
		Dir: "#5fafff", File: "#d0d0d0", Symlink: "#87d7d7", Selected: "#ffd75f",
		Mark1: "#87d787", Mark2: "#ffaf5f", Mark3: "#ff5f5f", Git: "#d7af5f",
		Status: "#bcbcbc", Error: "#ff5f5f", Dim: "#6c6c6c", TabActive: "#5fafff",
	}},
	"gruvbox": {Name: "gruvbox", Colors: map[Role]string{
		Border: "#504945", BorderActive: "#fabd2f", CursorBg: "#3c3836", CursorFg: "#fbf1c7",
		Dir: "#83a598", File: "#ebdbb2", Symlink: "#8ec07c", Selected: "#fabd2f",
		Mark1: "#b8bb26", Mark2: "#fe8019", Mark3: "#fb4934", Git: "#d3869b",
		Status: "#a89984", Error: "#fb4934", Dim: "#7c6f64", TabActive: "#fabd2f",
	}},
	"nord": {Name: "nord", Colors: map[Role]string{
		Border: "#4c566a", BorderActive: "#88c0d0", CursorBg: "#3b4252", CursorFg: "#eceff4",
		Dir: "#81a1c1", File: "#d8dee9", Symlink: "#8fbcbb", Selected: "#ebcb8b",
		Mark1: "#a3be8c", Mark2: "#d08770", Mark3: "#bf616a", Git: "#b48ead",
		Status: "#e5e9f0", Error: "#bf616a", Dim: "#616e88", TabActive: "#88c0d0",
	}},
}

// Registry holds the built-in themes plus any loaded from disk.
type Registry struct {
	themes map[string]Theme
}

// NewRegistry returns the built-ins and the *.toml themes found in dir.
// Unreadable files are logged and skipped.
func NewRegistry(dir string) *Registry {
	r := &Registry{themes: make(map[string]Theme)}
	for name, t := range builtins {
		r.themes[name] = t
	}
	if dir == "" {
		return r
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return r
	}
	for _, f := range files {
		t, err := LoadFile(f)
		if err != nil {
			logger.Warn("skipping theme %s: %v", f, err)
			continue
		}
		r.themes[t.Name] = t
	}
	return r
}

// UserDir returns the user theme directory next to the config file.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fcmd", "themes")
}

// LoadFile reads one theme. The name defaults to the file name.
func LoadFile(path string) (Theme, error) {
	var t Theme
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Theme{}, err
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for role, value := range t.Colors {
		if _, err := colorful.Hex(value); err != nil {
			logger.Warn("theme %s: %s has invalid color %q", t.Name, role, value)
			delete(t.Colors, role)
		}
	}
	return t, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for n := range r.themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	_, ok := r.themes[name]
	return ok
}

// Next returns the theme after current in name order, wrapping.
func (r *Registry) Next(current string) string {
	names := r.Names()
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return DefaultName
}

// Hex resolves role in the named theme. Unknown themes and missing or
// invalid values fall back to the default theme.
func (r *Registry) Hex(name string, role Role) string {
	if t, ok := r.themes[name]; ok {
		if v, ok := t.Colors[role]; ok {
			if _, err := colorful.Hex(v); err == nil {
				return v
			}
		}
	}
	return builtins[DefaultName].Colors[role]
}

// Color is Hex as a lipgloss color.
func (r *Registry) Color(name string, role Role) lipgloss.Color {
	return lipgloss.Color(r.Hex(name, role))
}

// Blend mixes two roles in Lab space; t=0 is a, t=1 is b.
func (r *Registry) Blend(name string, a, b Role, t float64) lipgloss.Color {
	ca, errA := colorful.Hex(r.Hex(name, a))
	cb, errB := colorful.Hex(r.Hex(name, b))
	if errA != nil || errB != nil {
		return r.Color(name, a)
	}
	return lipgloss.Color(ca.BlendLab(cb, t).Clamped().Hex())
}

// Write saves t as TOML into dir.
func Write(dir string, t Theme) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, t.Name+".toml"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(t); err != nil {
		return fmt.Errorf("encode theme %s: %w", t.Name, err)
	}
	return nil
}
