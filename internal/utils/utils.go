package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// GetFileIcon returns an emoji icon for a file based on its extension
func GetFileIcon(name string) string {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".go":
		return "🐹"
	case ".js", ".ts", ".jsx", ".tsx":
		return "📜"
	case ".py":
		return "🐍"
	case ".rb":
		return "💎"
	case ".java":
		return "☕"
	case ".rs":
		return "🦀"
	case ".cpp", ".c", ".h":
		return "⚙️"
	case ".html", ".htm":
		return "🌐"
	case ".css", ".scss", ".sass":
		return "🎨"
	case ".json", ".yaml", ".yml", ".toml":
		return "📋"
	case ".md", ".markdown":
		return "📝"
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico":
		return "🖼️"
	case ".mp4", ".avi", ".mov", ".mkv":
		return "🎬"
	case ".mp3", ".wav", ".flac", ".ogg":
		return "🎵"
	case ".zip", ".tar", ".gz", ".rar", ".7z":
		return "📦"
	case ".pdf":
		return "📕"
	case ".sh", ".bash", ".zsh":
		return "🖥️"
	default:
		return "📄"
	}
}

// EntryIcon picks the icon for a listing row.
func EntryIcon(name string, isDir, isLink bool) string {
	switch {
	case isLink && isDir:
		return "🔗"
	case isDir:
		return "📁"
	case isLink:
		return "🔗"
	}
	return GetFileIcon(name)
}

var codeExts = map[string]bool{
	".go": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true, ".py": true,
	".rb": true, ".java": true, ".rs": true, ".cpp": true, ".c": true, ".h": true,
	".cs": true, ".php": true, ".swift": true, ".kt": true, ".scala": true,
	".lua": true, ".dart": true, ".ex": true, ".exs": true, ".sh": true,
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".ico": true, ".webp": true, ".bmp": true,
}

var binaryExts = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true, ".dat": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".db": true,
}

// IsCodeFile returns true if the file is a code file based on extension
func IsCodeFile(name string) bool {
	return codeExts[strings.ToLower(filepath.Ext(name))]
}

// IsImageFile returns true if the file is an image based on extension
func IsImageFile(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// IsBinaryFile returns true if the file is likely binary based on extension
func IsBinaryFile(path string) bool {
	return binaryExts[strings.ToLower(filepath.Ext(path))]
}

// FormatFileSize formats a file size in bytes to a human-readable string
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// FormatFileSizeColored returns a color-styled file size string based on size ranges
func FormatFileSizeColored(size int64) string {
	const (
		KB    = 1024
		MB    = 1024 * KB
		MB100 = 100 * MB
	)

	var style lipgloss.Style
	switch {
	case size < KB:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	case size < MB:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	case size < MB100:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	default:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	}
	return style.Render(FormatFileSize(size))
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces to exactly width cells, truncating if needed.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	return runewidth.FillRight(s, width)
}

// HighlightMatches highlights matched characters in a string
func HighlightMatches(text string, matches []int, style lipgloss.Style) string {
	if len(matches) == 0 {
		return text
	}

	runes := []rune(text)
	matchMap := make(map[int]bool, len(matches))
	for _, idx := range matches {
		if idx < len(runes) {
			matchMap[idx] = true
		}
	}

	var result strings.Builder
	for i, r := range runes {
		if matchMap[i] {
			result.WriteString(style.Render(string(r)))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
