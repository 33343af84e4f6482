package search

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/LFroesch/fcmd/internal/logger"
)

// Result is one find hit.
type Result struct {
	Path        string
	DisplayName string
	IsDir       bool
	Size        int64
	ModTime     time.Time
	LineNumber  int // content searches only
}

// Large directories skipped by every recursive walk
var skipDirs = map[string]bool{
	// Version control
	".git": true, ".svn": true, ".hg": true,
	// Dependencies
	"node_modules": true, "vendor": true, ".npm": true, ".yarn": true,
	// Build outputs
	"dist": true, "build": true, "target": true, ".next": true, ".nuxt": true,
	// Caches
	".cache": true, "__pycache__": true, ".pytest_cache": true, ".mypy_cache": true,
	// Python environments
	".venv": true, "venv": true, "site-packages": true, ".tox": true,
	// Toolchains
	".cargo": true, ".rustup": true, ".gradle": true, ".m2": true,
	// System
	"proc": true, "sys": true, "lost+found": true, ".Trash": true,
}

var skipAbsolutePaths = []string{"/proc", "/sys", "/dev", "/run", "/usr", "/bin", "/sbin", "/lib", "/lib64", "/etc"}

// WalkOptions bounds a local walk.
type WalkOptions struct {
	ShowHidden bool
	MaxDepth   int
	MaxEntries int
	// SkipDirs are extra directory names to skip; a trailing * matches a prefix.
	SkipDirs []string
}

var errEnough = errors.New("enough entries")

// Walk collects the entries below root for local find. Names are relative
// to root. The walk stops quietly at the depth and entry limits.
func Walk(ctx context.Context, root string, opts WalkOptions) ([]Result, error) {
	start := time.Now()
	var out []Result
	permissionErrors := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				permissionErrors++
				return nil
			}
			if path == root {
				return err
			}
			logger.Debug("walk error at %s: %v", path, err)
			return nil
		}
		if path == root {
			return nil
		}

		if d.IsDir() && skipDir(path, d.Name(), opts.SkipDirs) {
			return filepath.SkipDir
		}
		if !opts.ShowHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		if opts.MaxDepth > 0 && strings.Count(rel, string(filepath.Separator)) >= opts.MaxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		r := Result{Path: path, DisplayName: rel, IsDir: d.IsDir()}
		if info, err := d.Info(); err == nil {
			r.Size = info.Size()
			r.ModTime = info.ModTime()
		}
		out = append(out, r)
		if opts.MaxEntries > 0 && len(out) >= opts.MaxEntries {
			return errEnough
		}
		return nil
	})
	if err != nil && !errors.Is(err, errEnough) {
		return out, err
	}

	if permissionErrors > 0 {
		logger.Debug("walk of %s: %d entries, %d permission errors in %v", root, len(out), permissionErrors, time.Since(start))
	} else {
		logger.Debug("walk of %s: %d entries in %v", root, len(out), time.Since(start))
	}
	return out, nil
}

func skipDir(path, name string, custom []string) bool {
	if skipDirs[name] {
		return true
	}
	for _, abs := range skipAbsolutePaths {
		if path == abs {
			return true
		}
	}
	for _, pattern := range custom {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		} else if name == pattern {
			return true
		}
	}
	return false
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
