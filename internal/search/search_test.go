package search

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func TestSubstringMatchNames(t *testing.T) {
	names := []string{
		"file1.txt",
		"file2.txt",
		"document.pdf",
		"readme.md",
		"config.json",
	}

	tests := []struct {
		name          string
		query         string
		expectedCount int
	}{
		{"exact match", "file1.txt", 1},
		{"substring match", "file", 2},
		{"partial match", "doc", 1},
		{"case insensitive", "FILE", 2},
		{"no match", "xyz", 0},
		{"empty query", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := SubstringMatchNames(tt.query, names)
			if len(results) != tt.expectedCount {
				t.Errorf("SubstringMatchNames(%s) returned %d results, expected %d", tt.query, len(results), tt.expectedCount)
			}
		})
	}
}

func TestSubstringMatchPositions(t *testing.T) {
	results := SubstringMatchNames("me", []string{"readme.md"})
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	want := []int{4, 5}
	for i, idx := range results[0].MatchedIndexes {
		if idx != want[i] {
			t.Errorf("matched index %d = %d, want %d", i, idx, want[i])
		}
	}
}

func TestFuzzyRanker(t *testing.T) {
	candidates := []string{"internal/zebra.go", "main.go", "model.go", "README.md"}

	results := FuzzyRanker{}.Rank("mgo", candidates)
	if len(results) < 2 {
		t.Fatalf("expected at least two matches, got %d", len(results))
	}
	for _, r := range results {
		if candidates[r.Index] == "README.md" {
			t.Error("README.md should not match mgo")
		}
	}

	if got := (FuzzyRanker{}).Rank("", candidates); len(got) != len(candidates) {
		t.Errorf("empty query should keep every candidate, got %d", len(got))
	}
}

func TestSubstringRankerEmptyQuery(t *testing.T) {
	got := SubstringRanker{}.Rank("", []string{"a", "b"})
	if len(got) != 2 || got[1].Index != 1 {
		t.Errorf("unexpected results %+v", got)
	}
}

func buildTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		"test1.txt",
		"test2.go",
		".hidden.txt",
		"subdir/nested.txt",
		"subdir/deeper/deep.txt",
		"node_modules/pkg/index.js",
		"cache-a/x.txt",
	}
	for _, f := range files {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func displayNames(results []Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.DisplayName)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestWalk(t *testing.T) {
	dir := buildTree(t)

	results, err := Walk(context.Background(), dir, WalkOptions{MaxDepth: 12, SkipDirs: []string{"cache-*"}})
	if err != nil {
		t.Fatal(err)
	}
	got := displayNames(results)

	for _, want := range []string{"test1.txt", "test2.go", "subdir", filepath.Join("subdir", "nested.txt"), filepath.Join("subdir", "deeper", "deep.txt")} {
		if !contains(got, want) {
			t.Errorf("missing %s in %v", want, got)
		}
	}
	for _, skipped := range []string{".hidden.txt", "node_modules", "cache-a"} {
		if contains(got, skipped) {
			t.Errorf("%s should have been skipped", skipped)
		}
	}
}

func TestWalkHidden(t *testing.T) {
	dir := buildTree(t)

	results, err := Walk(context.Background(), dir, WalkOptions{ShowHidden: true})
	if err != nil {
		t.Fatal(err)
	}
	if !contains(displayNames(results), ".hidden.txt") {
		t.Error("hidden file not found when ShowHidden=true")
	}
}

func TestWalkLimits(t *testing.T) {
	dir := buildTree(t)

	results, err := Walk(context.Background(), dir, WalkOptions{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if contains(displayNames(results), filepath.Join("subdir", "nested.txt")) {
		t.Error("depth 1 should only list direct children")
	}

	results, err = Walk(context.Background(), dir, WalkOptions{MaxEntries: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 entries, got %d", len(results))
	}
}

func TestWalkCancelled(t *testing.T) {
	dir := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Walk(ctx, dir, WalkOptions{}); err == nil {
		t.Error("expected an error from a cancelled walk")
	}
}

func TestWalkMissingRoot(t *testing.T) {
	if _, err := Walk(context.Background(), filepath.Join(t.TempDir(), "nope"), WalkOptions{}); err == nil {
		t.Error("expected an error for a missing root")
	}
}

func TestParseRipgrep(t *testing.T) {
	out := "/src/main.go:12:3:func main() {\n/src/a.go:x:1:bad\nnot a match\n"
	results := parseRipgrep(out, "/src")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Path != "/src/main.go" || r.LineNumber != 12 {
		t.Errorf("unexpected result %+v", r)
	}
	if r.DisplayName != "main.go:12 - func main() {" {
		t.Errorf("unexpected display name %q", r.DisplayName)
	}
}

func TestGlobalWithFind(t *testing.T) {
	if !commandExists("find") {
		t.Skip("find not available")
	}
	dir := buildTree(t)
	tool := tools[len(tools)-1]

	ch, err := Global(context.Background(), tool, "nested", dir, 100)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case r, ok := <-ch:
			if !ok {
				done = true
				break
			}
			got = append(got, r.DisplayName)
		case <-timeout:
			t.Fatal("global search did not finish")
		}
	}
	if !contains(got, filepath.Join("subdir", "nested.txt")) {
		t.Errorf("expected subdir/nested.txt in %v", got)
	}
}

func TestGlobalLimit(t *testing.T) {
	if !commandExists("find") {
		t.Skip("find not available")
	}
	dir := buildTree(t)

	ch, err := Global(context.Background(), tools[len(tools)-1], "t", dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for range ch {
		n++
	}
	if n != 1 {
		t.Errorf("expected exactly 1 result, got %d", n)
	}
}

func TestGlobalEmptyQuery(t *testing.T) {
	if _, err := Global(context.Background(), tools[0], " ", t.TempDir(), 10); err == nil {
		t.Error("expected an error for an empty query")
	}
}

func TestCommandExists(t *testing.T) {
	if !commandExists("ls") {
		t.Error("'ls' command should exist")
	}
	if commandExists("nonexistentcommandxyz123") {
		t.Error("Nonexistent command should return false")
	}
}
