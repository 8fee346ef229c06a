package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/wavescan/internal"
	pkgconfig "github.com/starford/wavescan/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Flag overrides win over file values.
	if root := cmd.String("root"); root != "" {
		cfg.Scan.Root = root
	}
	if bin := cmd.String("tesseract"); bin != "" {
		cfg.OCR.Binary = bin
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "wavescan",
		Usage:  "Watch a scan intake directory, OCR each arrival, and file it by Purchase Order number",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("WAVESCAN_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Root directory housing the waves, wavesfinished, and error directories",
				Sources: cli.EnvVars("WAVESCAN_ROOT"),
			},
			&cli.StringFlag{
				Name:    "tesseract",
				Usage:   "Explicit path to the tesseract binary (overrides PATH discovery)",
				Sources: cli.EnvVars("WAVESCAN_TESSERACT"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("application error", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
