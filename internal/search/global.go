package search

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/LFroesch/fcmd/internal/logger"
)

var ErrNoSearchTool = errors.New("no search tool found (install fd)")

// Tool is an external program that lists paths matching a query.
type Tool struct {
	Name string
	Args func(query, dir string) []string
}

var tools = []Tool{
	{Name: "fd", Args: func(q, dir string) []string {
		return []string{"--absolute-path", "--color=never", "--ignore-case", "--fixed-strings", q, dir}
	}},
	{Name: "fdfind", Args: func(q, dir string) []string {
		return []string{"--absolute-path", "--color=never", "--ignore-case", "--fixed-strings", q, dir}
	}},
	{Name: "mdfind", Args: func(q, dir string) []string {
		return []string{"-onlyin", dir, "-name", q}
	}},
	{Name: "find", Args: func(q, dir string) []string {
		return []string{dir, "-iname", "*" + q + "*", "-not", "-path", "*/.git/*"}
	}},
}

// FindTool returns the first available external search tool.
func FindTool() (Tool, error) {
	for _, t := range tools {
		if t.Name == "mdfind" && runtime.GOOS != "darwin" {
			continue
		}
		if commandExists(t.Name) {
			return t, nil
		}
	}
	return Tool{}, ErrNoSearchTool
}

// Global runs tool for query below dir and streams result paths on the
// returned channel, which closes when the process exits, limit paths have
// been sent, or ctx is cancelled. Cancelling ctx kills the process.
func Global(ctx context.Context, tool Tool, query, dir string, limit int) (<-chan Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	cmd := exec.CommandContext(ctx, tool.Name, tool.Args(query, dir)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", tool.Name, err)
	}
	logger.Debug("global search: %s %q in %s", tool.Name, query, dir)

	out := make(chan Result, 64)
	go func() {
		defer close(out)
		defer func() {
			// reap; an error here is the kill on cancel or a non-zero exit
			if err := cmd.Wait(); err != nil && ctx.Err() == nil {
				logger.Debug("%s exited: %v", tool.Name, err)
			}
		}()

		sc := bufio.NewScanner(stdout)
		sent := 0
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			r := Result{Path: line, DisplayName: display(dir, line), IsDir: strings.HasSuffix(line, string(filepath.Separator))}
			r.Path = strings.TrimSuffix(r.Path, string(filepath.Separator))
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
			sent++
			if limit > 0 && sent >= limit {
				if cmd.Process != nil {
					cmd.Process.Kill()
				}
				return
			}
		}
	}()
	return out, nil
}

func display(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
