package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateFile(t *testing.T) {
	tempDir := t.TempDir()

	path, err := CreateFile(tempDir, "testfile.txt")
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	if path != filepath.Join(tempDir, "testfile.txt") {
		t.Errorf("unexpected path %s", path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("File was not created")
	}

	_, err = CreateFile(tempDir, "testfile.txt")
	if !errors.Is(err, ErrExists) {
		t.Errorf("Expected ErrExists when creating existing file, got %v", err)
	}
}

func TestCreateDir(t *testing.T) {
	tempDir := t.TempDir()

	path, err := CreateDir(tempDir, "testdir")
	if err != nil {
		t.Fatalf("CreateDir failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal("Directory was not created")
	}
	if !info.IsDir() {
		t.Error("Created path is not a directory")
	}

	_, err = CreateDir(tempDir, "testdir")
	if !errors.Is(err, ErrExists) {
		t.Errorf("Expected ErrExists when creating existing directory, got %v", err)
	}
}

func TestRename(t *testing.T) {
	tempDir := t.TempDir()
	oldPath := filepath.Join(tempDir, "old.txt")
	writeFile(t, oldPath, "test content")

	newPath, err := Rename(oldPath, "new.txt")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("Old file still exists")
	}
	content, err := os.ReadFile(newPath)
	if err != nil || string(content) != "test content" {
		t.Errorf("content mismatch after rename: %q, %v", content, err)
	}
}

func TestRenameOntoExisting(t *testing.T) {
	tempDir := t.TempDir()
	a := filepath.Join(tempDir, "a.txt")
	b := filepath.Join(tempDir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	if _, err := Rename(a, "b.txt"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	content, _ := os.ReadFile(b)
	if string(content) != "b" {
		t.Error("existing file was overwritten")
	}
}

func TestCopyFile(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "source.txt")
	dst := filepath.Join(tempDir, "dest.txt")
	writeFile(t, src, "test content for copy")
	if err := os.Chmod(src, 0600); err != nil {
		t.Fatal(err)
	}

	var copied int64
	if err := Copy(src, dst, func(n int64) { copied += n }); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read destination file: %v", err)
	}
	if string(content) != "test content for copy" {
		t.Errorf("Content mismatch: got %q", content)
	}
	if copied != int64(len("test content for copy")) {
		t.Errorf("progress reported %d bytes", copied)
	}
	info, _ := os.Stat(dst)
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode not preserved: %v", info.Mode().Perm())
	}
}

func TestCopyDir(t *testing.T) {
	tempDir := t.TempDir()
	srcDir := filepath.Join(tempDir, "srcdir")
	dstDir := filepath.Join(tempDir, "dstdir")

	writeFile(t, filepath.Join(srcDir, "file1.txt"), "content1")
	writeFile(t, filepath.Join(srcDir, "subdir", "file2.txt"), "content2")
	if err := os.Symlink("file1.txt", filepath.Join(srcDir, "link")); err != nil {
		t.Fatal(err)
	}

	if err := Copy(srcDir, dstDir, nil); err != nil {
		t.Fatalf("Copy dir failed: %v", err)
	}

	for rel, want := range map[string]string{"file1.txt": "content1", "subdir/file2.txt": "content2"} {
		content, err := os.ReadFile(filepath.Join(dstDir, rel))
		if err != nil || string(content) != want {
			t.Errorf("%s: got %q, %v", rel, content, err)
		}
	}
	target, err := os.Readlink(filepath.Join(dstDir, "link"))
	if err != nil || target != "file1.txt" {
		t.Errorf("symlink not recreated: %q, %v", target, err)
	}
}

func TestCopyRefusesExistingDestination(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "a")
	dst := filepath.Join(tempDir, "b")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	if err := Copy(src, dst, nil); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	content, _ := os.ReadFile(dst)
	if string(content) != "old" {
		t.Error("destination was modified")
	}
}

func TestCopyFailureLeavesNoPartial(t *testing.T) {
	tempDir := t.TempDir()
	dstDir := filepath.Join(tempDir, "out")
	if err := os.Mkdir(dstDir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := Copy(filepath.Join(tempDir, "missing"), filepath.Join(dstDir, "x"), nil); err == nil {
		t.Fatal("expected error copying missing source")
	}
	entries, _ := os.ReadDir(dstDir)
	if len(entries) != 0 {
		t.Errorf("partial copy left behind: %v", entries)
	}
}

func TestMove(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "a", "file.txt")
	dst := filepath.Join(tempDir, "b", "file.txt")
	writeFile(t, src, "moving")
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatal(err)
	}

	if err := Move(src, dst, nil); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if Exists(src) {
		t.Error("source still exists")
	}
	content, _ := os.ReadFile(dst)
	if string(content) != "moving" {
		t.Errorf("content mismatch: %q", content)
	}
}

func TestMoveByCopyKeepsDestinationWhenSourceStays(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tempDir := t.TempDir()
	locked := filepath.Join(tempDir, "locked")
	src := filepath.Join(locked, "file.txt")
	dst := filepath.Join(tempDir, "file.txt")
	writeFile(t, src, "stuck")
	if err := os.Chmod(locked, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	if err := moveByCopy(src, dst, nil); err != nil {
		t.Fatalf("moveByCopy failed: %v", err)
	}
	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if string(content) != "stuck" {
		t.Errorf("content mismatch: %q", content)
	}
	if !Exists(src) {
		t.Error("source should remain when it cannot be removed")
	}
}

func TestMoveByCopy(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "a", "dir")
	dst := filepath.Join(tempDir, "dir")
	writeFile(t, filepath.Join(src, "x.txt"), "x")

	var written int64
	if err := moveByCopy(src, dst, func(n int64) { written += n }); err != nil {
		t.Fatalf("moveByCopy failed: %v", err)
	}
	if Exists(src) {
		t.Error("source still exists")
	}
	if !Exists(filepath.Join(dst, "x.txt")) {
		t.Error("destination missing file")
	}
	if written != 1 {
		t.Errorf("progress = %d, want 1", written)
	}
}

func TestUniqueName(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "report.txt"), "")
	writeFile(t, filepath.Join(tempDir, "report_1.txt"), "")
	writeFile(t, filepath.Join(tempDir, ".bashrc"), "")
	writeFile(t, filepath.Join(tempDir, "Makefile"), "")

	tests := []struct {
		name string
		want string
	}{
		{"fresh.txt", "fresh.txt"},
		{"report.txt", "report_2.txt"},
		{".bashrc", ".bashrc_1"},
		{"Makefile", "Makefile_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqueName(tempDir, tt.name); got != tt.want {
				t.Errorf("UniqueName(%s) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestSize(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "d", "a"), "12345")
	writeFile(t, filepath.Join(tempDir, "d", "e", "b"), "123")

	n, err := Size(filepath.Join(tempDir, "d"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("Size = %d, want 8", n)
	}
}

func TestTrashPutRestore(t *testing.T) {
	tempDir := t.TempDir()
	trash, err := NewTrash(filepath.Join(tempDir, "trash"))
	if err != nil {
		t.Fatal(err)
	}
	original := filepath.Join(tempDir, "nested", "dir", "keep.txt")
	writeFile(t, original, "precious")

	held, err := trash.Put(original)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if Exists(original) {
		t.Fatal("original still present after Put")
	}
	if OriginalName(held) != "keep.txt" {
		t.Errorf("OriginalName = %s", OriginalName(held))
	}

	// parent removed in the meantime; Restore must recreate it
	if err := os.RemoveAll(filepath.Join(tempDir, "nested")); err != nil {
		t.Fatal(err)
	}
	if err := trash.Restore(held, original); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	content, _ := os.ReadFile(original)
	if string(content) != "precious" {
		t.Errorf("restored content mismatch: %q", content)
	}
}

func TestTrashRestoreObstructed(t *testing.T) {
	tempDir := t.TempDir()
	trash, err := NewTrash(filepath.Join(tempDir, "trash"))
	if err != nil {
		t.Fatal(err)
	}
	original := filepath.Join(tempDir, "f")
	writeFile(t, original, "one")
	held, err := trash.Put(original)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, original, "two")

	if err := trash.Restore(held, original); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if !Exists(held) {
		t.Error("held item lost after failed restore")
	}
}

func TestTrashDiscard(t *testing.T) {
	tempDir := t.TempDir()
	trash, err := NewTrash(filepath.Join(tempDir, "trash"))
	if err != nil {
		t.Fatal(err)
	}
	original := filepath.Join(tempDir, "gone.txt")
	writeFile(t, original, "x")
	held, err := trash.Put(original)
	if err != nil {
		t.Fatal(err)
	}

	outside := filepath.Join(tempDir, "keep.txt")
	writeFile(t, outside, "keep")
	if err := trash.Discard(outside); err == nil {
		t.Error("expected refusal for a path outside the trash")
	}
	if err := trash.Discard(trash.Dir()); err == nil {
		t.Error("expected refusal for the trash directory itself")
	}
	if !Exists(outside) {
		t.Error("outside file removed")
	}

	if err := trash.Discard(held); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if Exists(held) {
		t.Error("held item still present")
	}
}
