// Package extract turns an intake image into best-effort OCR text.
//
// Extraction has two independent failure surfaces: the image itself (still
// being flushed, truncated, or corrupt) and the OCR engine. The decode
// phase is retried on a bounded budget; the engine is invoked exactly once
// and never retried.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registered decoders define the supported intake formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/starford/wavescan/internal/ocr"
	"github.com/starford/wavescan/internal/retry"
)

var (
	// ErrUnreadable means the image could not be decoded within the retry
	// budget. The file is real but useless; route it to the error bucket.
	ErrUnreadable = errors.New("extract: image unreadable")

	// ErrEngineFailure means the OCR engine itself failed. Not retried.
	ErrEngineFailure = errors.New("extract: ocr engine failure")
)

var supportedExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// SupportedExt reports whether path carries a recognized image extension.
func SupportedExt(path string) bool {
	_, ok := supportedExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extractor runs the decode-then-recognize sequence for one file at a time.
type Extractor struct {
	engine   ocr.Engine
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

// New creates an Extractor. attempts bounds the decode retry loop; delay is
// the pause between decode attempts.
func New(engine ocr.Engine, attempts int, delay time.Duration, logger *slog.Logger) *Extractor {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, attempts: attempts, delay: delay, logger: logger}
}

// Text decodes the image at path and passes it through the OCR engine,
// returning the engine's raw text output verbatim (including empty string).
func (e *Extractor) Text(ctx context.Context, path string) (string, error) {
	err := retry.Do(ctx, retry.Policy{Attempts: e.attempts, Backoff: e.delay}, "decode", func() error {
		return decodeImage(path)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		e.logger.Error("extract: giving up on undecodable image",
			slog.String("path", path),
			slog.Int("attempts", e.attempts),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	text, err := e.engine.Recognize(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}
	e.logger.Debug("extract: ocr output",
		slog.String("path", path),
		slog.Int("text_bytes", len(text)))
	return text, nil
}

// decodeImage opens and fully decodes the file, confirming it is a complete,
// well-formed image before the engine sees it.
func decodeImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.Decode(f); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
