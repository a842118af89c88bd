package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxSuffix bounds the "name (n).ext" search
const maxSuffix = 100

// freeName returns the first unused name in dir: name itself, then
// "stem (1).ext" up to "stem (100).ext".
func freeName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}

	for i := 0; i <= maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		target := filepath.Join(dir, candidate)

		_, err := os.Lstat(target)
		if errors.Is(err, fs.ErrNotExist) {
			return target, nil
		}
		if err != nil {
			return "", ioError(err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrDestinationConflict, name)
}

func isCrossDevice(err error) bool {
	return err != nil && errors.Is(err, syscall.EXDEV)
}

// copyAcross moves a regular file between filesystems. The copy is
// written to a temporary file in the target directory and renamed into
// place; the source is removed last. If the source cannot be removed the
// copy is taken back out so the file exists in one place only.
func copyAcross(src, target string, info fs.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot move %s across filesystems: not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open src %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), tempPrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", target, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copy %s -> %s: %w", src, target, err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp for %s: %w", target, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp for %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", target, err)
	}

	// Keep the original modification time; a failure here is not fatal
	_ = os.Chtimes(tmpName, info.ModTime(), info.ModTime())

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", target, err)
	}

	in.Close()
	if err := os.Remove(src); err != nil {
		os.Remove(target)
		return fmt.Errorf("remove src %s: %w", src, err)
	}
	return nil
}
