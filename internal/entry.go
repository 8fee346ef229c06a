// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/wavescan/internal/api"
	"github.com/starford/wavescan/internal/extract"
	"github.com/starford/wavescan/internal/filer"
	"github.com/starford/wavescan/internal/gate"
	"github.com/starford/wavescan/internal/journal"
	"github.com/starford/wavescan/internal/ocr"
	"github.com/starford/wavescan/internal/pipeline"
	"github.com/starford/wavescan/internal/sse"
	"github.com/starford/wavescan/internal/watch"
)

// Run starts the application with the given options. It returns an error
// only for startup preconditions (missing OCR engine, unusable directories
// or journal); per-file failures never surface here.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("intake_dir", cfg.Scan.IntakeDir()),
		slog.String("finished_dir", cfg.Scan.FinishedDir()),
		slog.String("error_dir", cfg.Scan.ErrorBucketDir()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure working directories exist before watching begins.
	for _, dir := range []string{cfg.Scan.Root, cfg.Scan.IntakeDir(), cfg.Scan.FinishedDir(), cfg.Scan.ErrorBucketDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	// Resolve the OCR engine. A missing engine is fatal: the process must
	// not start watching files it cannot classify.
	engine := app.engine
	if engine == nil {
		engineCfg := ocr.Config{
			Binary:      cfg.OCR.Binary,
			TessdataDir: cfg.OCR.TessdataDir,
			Language:    cfg.OCR.Language,
		}
		bin, err := ocr.Locate(engineCfg)
		if err != nil {
			return fmt.Errorf("startup precondition: %w", err)
		}
		logger.Info("OCR engine located", slog.String("binary", bin))
		engine = ocr.NewTesseract(bin, engineCfg, logger)
	}

	// Open the outcome journal.
	db, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer db.Close()

	// SSE broker for live outcome streaming.
	broker := sse.NewBroker()
	defer broker.Close()

	// Assemble the classification pipeline.
	readiness := gate.Gate{
		Settle:   cfg.Scan.SettleDelay.Std(),
		Backoff:  cfg.Scan.ProbeBackoff.Std(),
		Attempts: cfg.Scan.MaxProbes,
		Logger:   logger,
	}
	extractor := extract.New(engine, cfg.OCR.DecodeAttempts, cfg.OCR.DecodeDelay.Std(), logger)
	buckets := filer.New(cfg.Scan.FinishedDir(), cfg.Scan.ErrorBucketDir())

	proc := pipeline.New(readiness, extractor, buckets, db, func(res pipeline.Result) {
		broker.Publish(sse.Event{Type: "outcome", Data: map[string]string{
			"path":        res.Path,
			"outcome":     string(res.Outcome),
			"token":       res.Token,
			"destination": res.Destination,
		}})
	}, logger)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount status API under /api.
	r.Mount("/api", api.NewRouter(db, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	// A stop signal cancels the whole group so the watcher unwinds and the
	// process exits 0.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Start the intake watcher.
	g.Go(func() error {
		return watch.Watch(gCtx, cfg.Scan.IntakeDir(), proc, logger)
	})

	// Start the status server.
	g.Go(func() error {
		logger.Info("Starting status server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shut the status server down once the group context ends.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped cleanly")
	return nil
}
