package utils

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.size); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := Truncate("a-very-long-file-name.txt", 10)
	if w := runewidth.StringWidth(got); w > 10 {
		t.Errorf("width %d exceeds 10: %q", w, got)
	}
	if Truncate("anything", 0) != "" {
		t.Error("zero width should give an empty string")
	}
	// wide runes count as two cells
	if w := runewidth.StringWidth(Truncate("日本語のファイル", 6)); w > 6 {
		t.Errorf("wide truncation width %d", w)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("got %q", got)
	}
	if w := runewidth.StringWidth(PadRight("abcdefgh", 5)); w != 5 {
		t.Errorf("expected width 5, got %d", w)
	}
}

func TestFileKinds(t *testing.T) {
	if !IsCodeFile("main.GO") {
		t.Error("extension check should be case-insensitive")
	}
	if !IsImageFile("x.png") || IsImageFile("x.txt") {
		t.Error("image detection wrong")
	}
	if !IsBinaryFile("/a/b.zip") || IsBinaryFile("/a/b.md") {
		t.Error("binary detection wrong")
	}
	if EntryIcon("src", true, false) != "📁" {
		t.Error("directories use the folder icon")
	}
}

func TestHighlightMatchesPlain(t *testing.T) {
	if got := HighlightMatches("hello", nil, lipgloss.NewStyle()); got != "hello" {
		t.Errorf("got %q", got)
	}
	// an unstyled renderer leaves the text readable
	if got := HighlightMatches("hello", []int{0, 1, 99}, lipgloss.NewStyle()); got != "hello" {
		t.Errorf("got %q", got)
	}
}
