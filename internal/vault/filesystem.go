package vault

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/natefinch/atomic"
)

// writeFileAtomic replaces path with the contents of r. Readers see either the
// previous file or the complete new one, never a partial write.
func writeFileAtomic(path string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: creating directory for %s: %w", kerrors.ErrIO, path, err)
	}

	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("%w: writing %s: %w", kerrors.ErrIO, path, err)
	}

	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("%w: setting permissions on %s: %w", kerrors.ErrIO, path, err)
	}

	return nil
}

func writeBytesAtomic(path string, data []byte, perm os.FileMode) error {
	return writeFileAtomic(path, bytes.NewReader(data), perm)
}

// fileExists reports whether path exists. Errors other than "not exist" are returned.
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: checking %s: %w", kerrors.ErrIO, path, err)
}
