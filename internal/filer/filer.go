// Package filer moves classified files into their destination buckets.
package filer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// suffixLen is the number of hex characters appended to classified names to
// keep repeated PO numbers from colliding. The suffix carries no meaning.
const suffixLen = 6

// Filer moves files out of the intake directory. Destination directories
// are created on demand; "already exists" is never an error, so concurrent
// invocations are safe.
type Filer struct {
	finishedDir string
	errorDir    string
}

// New creates a Filer targeting the given finished and error buckets.
func New(finishedDir, errorDir string) *Filer {
	return &Filer{finishedDir: finishedDir, errorDir: errorDir}
}

// FileClassified moves src into the finished bucket as
// {token}_{suffix}{ext} and returns the destination path.
func (f *Filer) FileClassified(src, token string) (string, error) {
	if err := ensureDir(f.finishedDir); err != nil {
		return "", err
	}
	ext := filepath.Ext(src)
	for attempt := 0; attempt < 8; attempt++ {
		dest := filepath.Join(f.finishedDir, token+"_"+randSuffix()+ext)
		if _, err := os.Stat(dest); err == nil {
			continue // suffix already taken, roll again
		}
		if err := moveFile(src, dest); err != nil {
			return "", err
		}
		return dest, nil
	}
	return "", fmt.Errorf("filer: could not find a free name for token %s", token)
}

// FileUnclassified moves src into the error bucket under its original
// basename. On a name collision a suffix is inserted before the extension
// rather than overwriting the existing file.
func (f *Filer) FileUnclassified(src string) (string, error) {
	if err := ensureDir(f.errorDir); err != nil {
		return "", err
	}
	base := filepath.Base(src)
	dest := filepath.Join(f.errorDir, base)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		dest = filepath.Join(f.errorDir, stem+"_"+randSuffix()+ext)
	}
	if err := moveFile(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("filer: mkdir %s: %w", dir, err)
	}
	return nil
}

// moveFile renames src to dest, falling back to copy-then-delete when the
// rename fails (cross-volume moves). The source is removed only after the
// copy has been synced, so the file is never lost and never visible as
// complete in both places.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	return copyAndRemove(src, dest)
}

func copyAndRemove(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("filer: open source: %w", err)
	}
	defer in.Close()

	// O_EXCL: a half-written destination from a crashed run must not be
	// silently clobbered.
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("filer: create destination: %w", err)
	}

	success := false
	defer func() {
		if !success {
			_ = out.Close()
			_ = os.Remove(dest)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("filer: copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("filer: fsync: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("filer: close destination: %w", err)
	}
	success = true

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("filer: remove source after copy: %w", err)
	}
	return nil
}

func randSuffix() string {
	u := uuid.New()
	return strings.ReplaceAll(u.String(), "-", "")[:suffixLen]
}
