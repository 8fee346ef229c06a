package internal

import "github.com/starford/wavescan/internal/ocr"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	engine ocr.Engine // test seam; nil means the real tesseract engine
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithEngine overrides the OCR engine, bypassing binary discovery.
func WithEngine(engine ocr.Engine) Option {
	return func(a *application) {
		a.engine = engine
	}
}
