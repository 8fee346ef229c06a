// Package pipeline orchestrates the classification of one intake file:
// readiness gate, text extraction, token parsing, and filing. All per-file
// failures terminate here as logged outcomes; none propagate to the watcher.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/wavescan/internal/checksum"
	"github.com/starford/wavescan/internal/extract"
	"github.com/starford/wavescan/internal/filer"
	"github.com/starford/wavescan/internal/gate"
	"github.com/starford/wavescan/internal/journal"
	"github.com/starford/wavescan/internal/parser"
)

// Outcome is the terminal classification of one intake file.
type Outcome string

const (
	// OutcomeClassified: a PO token was found; filed in the finished bucket.
	OutcomeClassified Outcome = "classified"
	// OutcomeUnclassified: readable image, no PO token; filed in the error bucket.
	OutcomeUnclassified Outcome = "unclassified"
	// OutcomeUnreadable: decode or engine failure; filed in the error bucket.
	OutcomeUnreadable Outcome = "unreadable"
	// OutcomeSkipped: the file never became readable; left in intake.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeIgnored: unsupported extension; left in intake.
	OutcomeIgnored Outcome = "ignored"
)

// Result describes what happened to one intake file.
type Result struct {
	Path        string
	Outcome     Outcome
	Token       string
	Destination string
	Checksum    string
	Err         error
}

// Processor classifies intake files one at a time.
type Processor struct {
	gate      gate.Gate
	extractor *extract.Extractor
	filer     *filer.Filer
	recorder  journal.Recorder // may be nil
	notify    func(Result)     // may be nil
	logger    *slog.Logger
}

// New creates a Processor. recorder and notify are optional observers.
func New(g gate.Gate, ex *extract.Extractor, fl *filer.Filer, recorder journal.Recorder, notify func(Result), logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{gate: g, extractor: ex, filer: fl, recorder: recorder, notify: notify, logger: logger}
}

// HandleCreated is the watcher entry point for one newly created file.
func (p *Processor) HandleCreated(ctx context.Context, path string) {
	p.logger.Info("pipeline: new file detected", slog.String("path", path))
	res := p.process(ctx, path)
	p.emit(res)
}

// process runs the Detected → Gated → Extracted → Parsed → Filed sequence.
func (p *Processor) process(ctx context.Context, path string) Result {
	if !extract.SupportedExt(path) {
		p.logger.Warn("pipeline: unsupported file format", slog.String("path", path))
		return Result{Path: path, Outcome: OutcomeIgnored}
	}

	if err := p.gate.Wait(ctx, path); err != nil {
		p.logger.Warn("pipeline: file skipped, never became readable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return Result{Path: path, Outcome: OutcomeSkipped, Err: err}
	}

	// Digest before the move so the journal can attest the filed artifact
	// is byte-identical to what arrived.
	sum, sumErr := checksum.SumFile(path)
	if sumErr != nil {
		p.logger.Warn("pipeline: checksum failed", slog.String("path", path), slog.String("error", sumErr.Error()))
	}

	text, err := p.extractor.Text(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Path: path, Outcome: OutcomeSkipped, Err: err}
		}
		// Real file, unreadable content. Distinct log message from the
		// no-token branch, same destination bucket.
		switch {
		case errors.Is(err, extract.ErrUnreadable):
			p.logger.Error("pipeline: image could not be decoded", slog.String("path", path), slog.String("error", err.Error()))
		case errors.Is(err, extract.ErrEngineFailure):
			p.logger.Error("pipeline: ocr engine failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		return p.fileUnclassified(path, OutcomeUnreadable, sum, err)
	}

	token, ok := parser.FindToken(text)
	if !ok {
		p.logger.Info("pipeline: no po number found", slog.String("path", path))
		return p.fileUnclassified(path, OutcomeUnclassified, sum, nil)
	}

	p.logger.Info("pipeline: extracted po number",
		slog.String("path", path),
		slog.String("token", token))

	dest, err := p.filer.FileClassified(path, token)
	if err != nil {
		// The file stays in intake; loud log since it is now in limbo.
		p.logger.Error("pipeline: filing classified file failed",
			slog.String("path", path),
			slog.String("token", token),
			slog.String("error", err.Error()))
		return Result{Path: path, Outcome: OutcomeSkipped, Token: token, Checksum: sum, Err: err}
	}

	p.logger.Info("pipeline: file moved to finished bucket",
		slog.String("path", path),
		slog.String("destination", dest))
	return Result{Path: path, Outcome: OutcomeClassified, Token: token, Destination: dest, Checksum: sum}
}

func (p *Processor) fileUnclassified(path string, outcome Outcome, sum string, cause error) Result {
	dest, err := p.filer.FileUnclassified(path)
	if err != nil {
		p.logger.Error("pipeline: filing to error bucket failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return Result{Path: path, Outcome: OutcomeSkipped, Checksum: sum, Err: err}
	}
	p.logger.Warn("pipeline: file moved to error bucket",
		slog.String("path", path),
		slog.String("destination", dest))
	return Result{Path: path, Outcome: outcome, Destination: dest, Checksum: sum, Err: cause}
}

// emit records the result in the journal and notifies subscribers. Both are
// best-effort observers and never affect the classification itself.
func (p *Processor) emit(res Result) {
	if p.recorder != nil {
		entry := journal.Entry{
			Path:        res.Path,
			Outcome:     string(res.Outcome),
			Token:       res.Token,
			Destination: res.Destination,
			Checksum:    res.Checksum,
			ProcessedAt: time.Now().UTC(),
		}
		if res.Err != nil {
			entry.Detail = res.Err.Error()
		}
		if err := p.recorder.Record(entry); err != nil {
			p.logger.Error("pipeline: journal record failed",
				slog.String("path", res.Path),
				slog.String("error", err.Error()))
		}
	}
	if p.notify != nil {
		p.notify(res)
	}
}
