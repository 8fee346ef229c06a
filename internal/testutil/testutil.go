// Package testutil provides shared test helpers for setting up scan
// directories, journals, and image fixtures.
package testutil

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/wavescan/internal/journal"
)

// ScanDirs holds the three working directories of one test scan root.
type ScanDirs struct {
	Root     string
	Intake   string
	Finished string
	Errors   string
}

// TestScanDirs creates a temporary scan root with the intake directory
// present. Finished and error buckets are returned as paths but not
// created, matching production where the filer creates them on demand.
func TestScanDirs(t *testing.T) ScanDirs {
	t.Helper()
	root := t.TempDir()
	dirs := ScanDirs{
		Root:     root,
		Intake:   filepath.Join(root, "waves"),
		Finished: filepath.Join(root, "wavesfinished"),
		Errors:   filepath.Join(root, "waveserrors"),
	}
	if err := os.MkdirAll(dirs.Intake, 0o755); err != nil {
		t.Fatal(err)
	}
	return dirs
}

// TestJournal creates a temporary SQLite journal that is automatically
// cleaned up.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "wavescan-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WritePNG writes a small valid PNG at path and returns path.
func WritePNG(t *testing.T, path string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(3, 3, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// StaticEngine is an ocr.Engine returning fixed output.
type StaticEngine struct {
	Text string
	Err  error
}

// Recognize returns the configured text and error.
func (s StaticEngine) Recognize(context.Context, string) (string, error) {
	return s.Text, s.Err
}
