package git

import (
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/LFroesch/fcmd/internal/logger"
)

// Status tags, highest priority first.
const (
	Conflicted = "U"
	Modified   = "M"
	Added      = "A"
	Renamed    = "R"
	Deleted    = "D"
	Untracked  = "?"
)

var priority = map[string]int{Conflicted: 6, Modified: 5, Added: 4, Renamed: 3, Deleted: 2, Untracked: 1}

// Repo is a snapshot of one repository's working tree status.
type Repo struct {
	Root   string
	Branch string
	status map[string]string
	loaded time.Time
}

// Tag returns the status of path, or "" when it is clean or outside the repo.
func (r *Repo) Tag(path string) string {
	if r == nil {
		return ""
	}
	return r.status[filepath.Clean(path)]
}

// Cache loads repository status on demand and keeps it until it is older
// than ttl or invalidated.
type Cache struct {
	ttl time.Duration

	mu    sync.Mutex
	roots map[string]string // dir -> repo root, "" when not in a repo
	repos map[string]*Repo
	group singleflight.Group
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		roots: make(map[string]string),
		repos: make(map[string]*Repo),
	}
}

// Repo returns the status snapshot for the repository containing dir, or
// nil when dir is not inside a work tree.
func (c *Cache) Repo(dir string) *Repo {
	root, ok := c.root(dir)
	if !ok || root == "" {
		return nil
	}

	c.mu.Lock()
	repo := c.repos[root]
	c.mu.Unlock()
	if repo != nil && time.Since(repo.loaded) < c.ttl {
		return repo
	}

	v, _, _ := c.group.Do(root, func() (any, error) {
		r := load(root)
		c.mu.Lock()
		c.repos[root] = r
		c.mu.Unlock()
		return r, nil
	})
	return v.(*Repo)
}

// Status is a convenience for Repo(filepath.Dir(path)).Tag(path).
func (c *Cache) Status(path string) string {
	return c.Repo(filepath.Dir(path)).Tag(path)
}

// Invalidate drops the cached status for the repository containing dir.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if root := c.roots[dir]; root != "" {
		delete(c.repos, root)
	}
}

func (c *Cache) root(dir string) (string, bool) {
	c.mu.Lock()
	root, ok := c.roots[dir]
	c.mu.Unlock()
	if ok {
		return root, true
	}

	v, _, _ := c.group.Do("root:"+dir, func() (any, error) {
		return topLevel(dir), nil
	})
	root = v.(string)
	c.mu.Lock()
	c.roots[dir] = root
	c.mu.Unlock()
	return root, true
}

func topLevel(dir string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return filepath.Clean(strings.TrimSpace(string(out)))
}

func load(root string) *Repo {
	repo := &Repo{Root: root, Branch: GetBranch(root), status: map[string]string{}, loaded: time.Now()}

	cmd := exec.Command("git", "status", "--porcelain", "--untracked-files=normal")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		logger.Debug("git status in %s: %v", root, err)
		return repo
	}
	repo.status = ParsePorcelain(root, string(out))
	return repo
}

// ParsePorcelain turns `git status --porcelain` output into absolute path
// tags. Every parent directory up to root carries the strongest tag found
// beneath it.
func ParsePorcelain(root, output string) map[string]string {
	status := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}
		xy, name := line[:2], strings.TrimSpace(line[3:])
		if _, after, ok := strings.Cut(name, " -> "); ok {
			name = after
		}
		name = strings.Trim(strings.TrimSuffix(name, "/"), `"`)
		if name == "" {
			continue
		}
		tag := classify(xy)
		if tag == "" {
			continue
		}

		path := filepath.Join(root, filepath.FromSlash(name))
		mark(status, path, tag)
		for dir := filepath.Dir(path); len(dir) > len(root) && strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
			mark(status, dir, tag)
		}
	}
	return status
}

func mark(status map[string]string, path, tag string) {
	if priority[tag] > priority[status[path]] {
		status[path] = tag
	}
}

func classify(xy string) string {
	switch {
	case xy == "??":
		return Untracked
	case xy == "DD", xy == "AA", strings.ContainsRune(xy, 'U'):
		return Conflicted
	case strings.ContainsRune(xy, 'M'), strings.ContainsRune(xy, 'T'):
		return Modified
	case strings.ContainsRune(xy, 'A'):
		return Added
	case strings.ContainsRune(xy, 'R'), strings.ContainsRune(xy, 'C'):
		return Renamed
	case strings.ContainsRune(xy, 'D'):
		return Deleted
	}
	return ""
}

// GetBranch returns the current git branch name
func GetBranch(dir string) string {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
