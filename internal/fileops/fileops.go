package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/LFroesch/fcmd/internal/logger"
)

// ErrExists is returned when a destination path is already occupied.
var ErrExists = errors.New("destination already exists")

// ProgressFunc receives the number of bytes written since the last call.
type ProgressFunc func(n int64)

const partialPrefix = ".fcmd-partial-"

// Exists reports whether anything (including a dangling symlink) lives at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Rename renames a file or directory within its parent and returns the new path.
func Rename(oldPath, newName string) (string, error) {
	newPath := filepath.Join(filepath.Dir(oldPath), newName)
	if Exists(newPath) {
		return "", fmt.Errorf("%s: %w", newName, ErrExists)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return "", err
	}
	return newPath, nil
}

// CreateFile creates a new empty file, failing if the name is taken.
func CreateFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%s: %w", name, ErrExists)
		}
		return "", err
	}
	return path, file.Close()
}

// CreateDir creates a new directory, failing if the name is taken.
func CreateDir(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.Mkdir(path, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%s: %w", name, ErrExists)
		}
		return "", err
	}
	return path, nil
}

// Remove permanently deletes a file or directory tree.
func Remove(path string) error {
	return os.RemoveAll(path)
}

// Size returns the aggregate byte size of a file or directory tree.
func Size(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if fi, err := d.Info(); err == nil {
				total += fi.Size()
			}
		}
		return nil
	})
	return total, err
}

// UniqueName returns name, or name with an _N suffix before the extension,
// such that dir/result does not exist yet.
func UniqueName(dir, name string) string {
	if !Exists(filepath.Join(dir, name)) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !Exists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}

// IsPartial reports whether name is an in-flight copy left by Copy.
func IsPartial(name string) bool {
	return strings.HasPrefix(name, partialPrefix)
}

// Copy copies src to dst. The copy is staged under a temporary sibling name
// and renamed into place, so dst either appears complete or not at all.
func Copy(src, dst string, progress ProgressFunc) error {
	if Exists(dst) {
		return fmt.Errorf("%s: %w", filepath.Base(dst), ErrExists)
	}
	tmp := filepath.Join(filepath.Dir(dst), partialPrefix+uuid.NewString())
	if err := copyAny(src, tmp, progress); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	return nil
}

// Move moves src to dst, falling back to copy and delete across devices.
func Move(src, dst string, progress ProgressFunc) error {
	if Exists(dst) {
		return fmt.Errorf("%s: %w", filepath.Base(dst), ErrExists)
	}
	err := os.Rename(src, dst)
	if err == nil {
		if progress != nil {
			if n, sizeErr := Size(dst); sizeErr == nil {
				progress(n)
			}
		}
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}
	return moveByCopy(src, dst, progress)
}

// moveByCopy copies src to dst and then removes src. Once the copy is in
// place the move counts as done: a source that cannot be removed is left
// behind and logged, never traded for the only complete copy.
func moveByCopy(src, dst string, progress ProgressFunc) error {
	if err := Copy(src, dst, progress); err != nil {
		return err
	}
	if err := os.RemoveAll(src); err != nil {
		logger.Warn("moved %s to %s but the source could not be removed: %v", src, dst, err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return false
}

func copyAny(src, dst string, progress ProgressFunc) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		return copyDir(src, dst, info.Mode().Perm(), progress)
	default:
		return copyFile(src, dst, info.Mode().Perm(), progress)
	}
}

// copyFile copies a single file, preserving its permission bits
func copyFile(src, dst string, perm fs.FileMode, progress ProgressFunc) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	var r io.Reader = in
	if progress != nil {
		r = &progressReader{r: in, progress: progress}
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyDir copies a directory recursively
func copyDir(src, dst string, perm fs.FileMode, progress ProgressFunc) error {
	if err := os.Mkdir(dst, perm|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := copyAny(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()), progress); err != nil {
			return err
		}
	}

	return os.Chmod(dst, perm)
}

type progressReader struct {
	r        io.Reader
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.progress(int64(n))
	}
	return n, err
}
