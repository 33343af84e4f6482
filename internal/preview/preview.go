package preview

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/LFroesch/fcmd/internal/utils"
)

const (
	MaxLines        = 500
	maxPreviewItems = 200
	sniffBytes      = 8000
)

// Content is a rendered preview: a header block followed by body lines.
type Content struct {
	Path   string
	Header []string
	Lines  []string
	Binary bool
	More   bool
}

// Load builds the preview for path. gitTag is shown when non-empty.
// Errors are rendered into the content rather than returned.
func Load(path, gitTag string) Content {
	c := Content{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		c.Header = []string{fmt.Sprintf("Error: %v", err)}
		return c
	}
	if info.IsDir() {
		return directory(c, path)
	}

	c.Header = []string{
		fmt.Sprintf("%s %s", utils.GetFileIcon(filepath.Base(path)), filepath.Base(path)),
		fmt.Sprintf("Size: %s", utils.FormatFileSize(info.Size())),
		fmt.Sprintf("Modified: %s", info.ModTime().Format("Jan 2, 2006 15:04")),
		fmt.Sprintf("Permissions: %s", info.Mode().String()),
	}
	if gitTag != "" {
		c.Header = append(c.Header, "Git: "+gitTag)
	}

	f, err := os.Open(path)
	if err != nil {
		c.Lines = []string{fmt.Sprintf("Error reading file: %v", err)}
		return c
	}
	defer f.Close()

	r := bufio.NewReader(f)
	head, _ := r.Peek(sniffBytes)
	if utils.IsBinaryFile(path) || bytes.IndexByte(head, 0) >= 0 {
		c.Binary = true
		ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
		if ext == "" {
			ext = "unknown"
		}
		notice := "(Binary file - preview unavailable)"
		if utils.IsImageFile(path) {
			notice = "(Image file - preview unavailable)"
		}
		c.Lines = []string{"Type: " + ext, "", notice}
		return c
	}

	if utils.IsCodeFile(path) {
		c.Header = append(c.Header, "Source: "+strings.TrimPrefix(filepath.Ext(path), "."))
	}

	sc := bufio.NewScanner(io.LimitReader(r, 4<<20))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		if len(c.Lines) == MaxLines {
			c.More = true
			break
		}
		c.Lines = append(c.Lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
	}
	return c
}

func directory(c Content, path string) Content {
	entries, err := os.ReadDir(path)
	if err != nil {
		c.Header = []string{fmt.Sprintf("Error reading directory: %v", err)}
		return c
	}
	c.Header = []string{
		fmt.Sprintf("📁 Directory: %s", filepath.Base(path)),
		fmt.Sprintf("Items: %d", len(entries)),
	}
	for i, entry := range entries {
		if i >= maxPreviewItems {
			c.Lines = append(c.Lines, fmt.Sprintf("... and %d more items", len(entries)-maxPreviewItems))
			c.More = true
			break
		}
		icon := utils.EntryIcon(entry.Name(), entry.IsDir(), entry.Type()&os.ModeSymlink != 0)
		c.Lines = append(c.Lines, icon+" "+entry.Name())
	}
	return c
}

// Wrap splits lines so none is wider than width cells.
func Wrap(lines []string, width int) []string {
	if width <= 0 {
		width = 50
	}
	var out []string
	for _, line := range lines {
		if runewidth.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}
		var cur strings.Builder
		w := 0
		for _, r := range line {
			rw := runewidth.RuneWidth(r)
			if w+rw > width && w > 0 {
				out = append(out, cur.String())
				cur.Reset()
				w = 0
			}
			cur.WriteRune(r)
			w += rw
		}
		if cur.Len() > 0 {
			out = append(out, cur.String())
		}
	}
	return out
}
