package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePorcelain(t *testing.T) {
	root := "/repo"
	out := " M src/main.go\n" +
		"?? notes/\n" +
		"A  src/new.go\n" +
		"R  old.txt -> docs/renamed.txt\n" +
		"UU src/conflict.go\n" +
		" D gone.txt\n"

	status := ParsePorcelain(root, out)

	assert.Equal(t, Modified, status["/repo/src/main.go"])
	assert.Equal(t, Untracked, status["/repo/notes"])
	assert.Equal(t, Added, status["/repo/src/new.go"])
	assert.Equal(t, Renamed, status["/repo/docs/renamed.txt"])
	assert.Equal(t, Deleted, status["/repo/gone.txt"])
	assert.Equal(t, Conflicted, status["/repo/src"], "strongest child tag wins")
	assert.Equal(t, Renamed, status["/repo/docs"])
	assert.Empty(t, status["/repo"], "the root itself is not tagged")
}

func TestRepoTagNil(t *testing.T) {
	var r *Repo
	assert.Empty(t, r.Tag("/anything"))
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
		"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestCacheAgainstRealRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	runGit(t, dir, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("v1"), 0644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "init")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("v2"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fresh.txt"), []byte("x"), 0644))

	c := NewCache(time.Minute)
	repo := c.Repo(dir)
	require.NotNil(t, repo)
	assert.Equal(t, dir, repo.Root)
	assert.NotEmpty(t, repo.Branch)
	assert.Equal(t, Modified, c.Status(filepath.Join(dir, "tracked.txt")))
	assert.Equal(t, Untracked, c.Status(filepath.Join(dir, "fresh.txt")))

	runGit(t, dir, "add", "fresh.txt")
	assert.Equal(t, Untracked, c.Status(filepath.Join(dir, "fresh.txt")), "cached until invalidated")
	c.Invalidate(dir)
	assert.Equal(t, Added, c.Status(filepath.Join(dir, "fresh.txt")))
}

func TestCacheOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	c := NewCache(time.Minute)
	assert.Nil(t, c.Repo(dir))
	assert.Empty(t, c.Status(filepath.Join(dir, "x")))
}
