//go:build linux

package panel

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// createdTime asks statx for the birth time; filesystems that do not
// record one report the modification time instead.
func createdTime(path string, info fs.FileInfo) time.Time {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return info.ModTime()
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
}
