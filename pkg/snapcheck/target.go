package snapcheck

import (
	"fmt"
	"os"
	"path/filepath"
)

// exportFileName is the fixed file name used inside a freshly provisioned
// temp directory.
const exportFileName = "snapshot.db"

// ProvisionTarget returns a destination path for an export: a fixed file
// name inside a fresh temp directory. On return the parent directory
// exists, the path itself does not, and concurrent runs never collide
// because each run gets its own directory.
//
// dir is the parent for the temp directory; empty means the system temp
// directory. It is created if missing. Filesystem errors are fatal and
// propagate to the caller.
func ProvisionTarget(dir string) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create parent dir %s: %w", dir, err)
		}
	}

	tmp, err := os.MkdirTemp(dir, "snapcheck-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	path := filepath.Join(tmp, exportFileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrTargetExists, path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return path, nil
}

// ProvisionTargetFile is the alternative strategy: allocate a uniquely
// named temp file, remove it, and hand back only its path. The export step
// requires an absent destination, so the placeholder must not be left
// behind.
func ProvisionTargetFile(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "snapcheck-*.db")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove placeholder %s: %w", path, err)
	}
	return path, nil
}
