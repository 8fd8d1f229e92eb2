package sys

import (
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FreeSpace reports the available bytes on the filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}

	return stat.Bavail * uint64(stat.Bsize), nil
}

// FFmpegAvailable reports whether ffmpeg is discoverable on PATH or in
// the bundled directory.
func FFmpegAvailable(bundleDir string) bool {
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		return true
	}
	if bundleDir == "" {
		return false
	}
	if _, err := os.Stat(filepath.Join(bundleDir, "ffmpeg")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(bundleDir, "ffmpeg.exe")); err == nil {
		return true
	}
	return false
}
