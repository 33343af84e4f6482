package search

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/LFroesch/fcmd/internal/logger"
)

const contentTimeout = 30 * time.Second

// Content searches file contents below dir with ripgrep.
// Limits: depth 5, 2000 matches, files up to 1M.
func Content(ctx context.Context, query, dir string, showHidden bool) ([]Result, error) {
	start := time.Now()
	rgPath := ""
	for _, path := range []string{"rg", "ripgrep"} {
		if commandExists(path) {
			rgPath = path
			break
		}
	}
	if rgPath == "" {
		return nil, fmt.Errorf("ripgrep not found - install with: sudo apt install ripgrep")
	}

	args := []string{
		"--line-number",
		"--column",
		"--no-heading",
		"--color=never",
		"--max-depth=5",
		"--max-count=2000",
		"--max-filesize=1M",
	}
	for name := range skipDirs {
		args = append(args, "--glob", "!"+name)
	}
	if showHidden {
		args = append(args, "--hidden")
	} else {
		args = append(args, "--no-hidden")
	}
	args = append(args, "--", query, dir)

	ctx, cancel := context.WithTimeout(ctx, contentTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, rgPath, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("search cancelled or timed out")
		case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
			// rg exits 1 when nothing matched
			return []Result{}, nil
		case errors.As(err, &exitErr) && exitErr.ExitCode() == 2:
			stderr := string(exitErr.Stderr)
			if !strings.Contains(stderr, "Permission denied") {
				logger.Error("content search failed: %s", stderr)
				return nil, fmt.Errorf("ripgrep error: %s", strings.TrimSpace(stderr))
			}
		default:
			logger.Warn("content search had errors: %v", err)
		}
	}

	results := parseRipgrep(string(output), dir)
	logger.Debug("content search for %q: %d results in %v", query, len(results), time.Since(start))
	return results, nil
}

// parseRipgrep reads file:line:column:content lines.
func parseRipgrep(output, dir string) []Result {
	var results []Result
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 4)
		if len(parts) < 4 {
			continue
		}
		lineNum, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		rel := parts[0]
		if r, err := filepath.Rel(dir, parts[0]); err == nil {
			rel = r
		}
		name := fmt.Sprintf("%s:%d - %s", rel, lineNum, strings.TrimSpace(parts[3]))
		if len(name) > 100 {
			name = name[:97] + "..."
		}
		results = append(results, Result{
			Path:        parts[0],
			DisplayName: name,
			LineNumber:  lineNum,
		})
	}
	return results
}
