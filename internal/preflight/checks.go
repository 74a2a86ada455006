package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"shotscan/internal/config"
	"shotscan/internal/featurestore"
)

// MinFreeBytes is the free space the data volume needs for imports.
const MinFreeBytes = 64 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory accepts a missing report directory as long as the
// nearest existing ancestor is writable, since reports create it on demand.
func CheckOutputDirectory(path string) Result {
	const name = "Output directory"
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil {
			res := CheckDirectoryAccess(name, dir)
			if res.Passed {
				res.Detail = fmt.Sprintf("%s (will be created)", path)
			}
			return res
		}
		if dir == filepath.Dir(dir) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
	}
}

// CheckFreeSpace verifies that the volume holding path has at least need bytes
// available to unprivileged users.
func CheckFreeSpace(name, path string, need uint64) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	if free < need {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, need %s", humanize.Bytes(free), humanize.Bytes(need))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.Bytes(free))}
}

// CheckStore opens the feature store and reads its totals.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Feature store"
	store, err := featurestore.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Store.Path, err)}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Store.Path, errors.Unwrap(err))}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d videos, %s records, %s compression)", cfg.Store.Path, stats.Videos, humanize.Comma(int64(stats.Records)), cfg.Store.Compression),
	}
}
