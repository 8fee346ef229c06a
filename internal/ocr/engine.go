// Package ocr wraps the external Tesseract binary behind the Engine
// interface. The engine is a black box: this package locates it, invokes it
// once per image, and returns its text output verbatim.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Engine converts one image file into best-effort text.
type Engine interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Config selects the tesseract binary and its runtime data.
type Config struct {
	Binary      string // explicit path or name; empty means PATH discovery of "tesseract"
	TessdataDir string // forwarded as --tessdata-dir when set
	Language    string // forwarded as -l; defaults to "eng"
}

// Locate resolves the tesseract binary and verifies it exists. It is the
// startup precondition: callers must refuse to begin watching when it fails.
func Locate(cfg Config) (string, error) {
	var bin string
	switch {
	case cfg.Binary != "" && (filepath.IsAbs(cfg.Binary) || filepath.Dir(cfg.Binary) != "."):
		// Explicit path override.
		if _, err := os.Stat(cfg.Binary); err != nil {
			return "", fmt.Errorf("ocr: tesseract not found at %s: %w", cfg.Binary, err)
		}
		bin = cfg.Binary
	case cfg.Binary != "":
		// Explicit name, resolved on PATH.
		resolved, err := exec.LookPath(cfg.Binary)
		if err != nil {
			return "", fmt.Errorf("ocr: tesseract not found: %w", err)
		}
		bin = resolved
	default:
		resolved, err := exec.LookPath("tesseract")
		if err != nil {
			return "", fmt.Errorf("ocr: tesseract not found on PATH, install it or set ocr.binary: %w", err)
		}
		bin = resolved
	}

	if cfg.TessdataDir != "" {
		if info, statErr := os.Stat(cfg.TessdataDir); statErr != nil || !info.IsDir() {
			return "", fmt.Errorf("ocr: tessdata directory not found at %s", cfg.TessdataDir)
		}
	}
	return bin, nil
}

// Tesseract is the exec-based Engine implementation.
type Tesseract struct {
	bin    string
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewTesseract creates an engine bound to a resolved binary path.
func NewTesseract(bin string, cfg Config, logger *slog.Logger) *Tesseract {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{bin: bin, cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize runs `tesseract <path> stdout -l <lang>` and returns stdout
// verbatim, empty output included.
func (t *Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", t.cfg.Language}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		return "", fmt.Errorf("ocr: tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
