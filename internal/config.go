package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Fixed directory names derived from the scan root.
const (
	intakeDirName   = "waves"
	finishedDirName = "wavesfinished"
	defaultErrorDir = "waveserrors"
)

// Duration wraps time.Duration with YAML support for strings like "3s".
type Duration time.Duration

// UnmarshalYAML parses a duration from a YAML scalar.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Scan    ScanConfig        `yaml:"scan"`
	OCR     OCRConfig         `yaml:"ocr"`
	Journal JournalConfig     `yaml:"journal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Scan.Validate(); err != nil {
		return err
	}
	if err := c.OCR.Validate(); err != nil {
		return err
	}
	return c.Journal.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the status server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the status server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ScanConfig holds the scan root and the readiness-gate policy. The three
// working directories are derived from Root by fixed naming convention;
// only the error bucket location is configurable, because historically it
// lived either as a sibling of the finished bucket or nested under it.
type ScanConfig struct {
	Root     string `yaml:"root"`
	ErrorDir string `yaml:"error_dir"` // joined under Root when relative

	SettleDelay  Duration `yaml:"settle_delay"`
	ProbeBackoff Duration `yaml:"probe_backoff"`
	MaxProbes    int      `yaml:"max_probes"`
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.MaxProbes, validation.Required, validation.Min(1)),
	)
}

// IntakeDir returns the watched intake directory.
func (c *ScanConfig) IntakeDir() string {
	return filepath.Join(c.Root, intakeDirName)
}

// FinishedDir returns the finished bucket directory.
func (c *ScanConfig) FinishedDir() string {
	return filepath.Join(c.Root, finishedDirName)
}

// ErrorBucketDir returns the error bucket directory.
func (c *ScanConfig) ErrorBucketDir() string {
	dir := c.ErrorDir
	if dir == "" {
		dir = defaultErrorDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Root, dir)
}

// OCRConfig holds OCR engine configuration.
type OCRConfig struct {
	Binary      string `yaml:"binary"` // explicit tesseract path; empty means PATH discovery
	TessdataDir string `yaml:"tessdata_dir"`
	Language    string `yaml:"language"`

	DecodeAttempts int      `yaml:"decode_attempts"`
	DecodeDelay    Duration `yaml:"decode_delay"`
}

// Validate validates the OCR configuration.
func (c *OCRConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DecodeAttempts, validation.Required, validation.Min(1)),
	)
}

// JournalConfig holds the outcome journal configuration.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Scan: ScanConfig{
			Root:         "./renamescans",
			ErrorDir:     defaultErrorDir,
			SettleDelay:  Duration(3 * time.Second),
			ProbeBackoff: Duration(2 * time.Second),
			MaxProbes:    15,
		},
		OCR: OCRConfig{
			Language:       "eng",
			DecodeAttempts: 5,
			DecodeDelay:    Duration(time.Second),
		},
		Journal: JournalConfig{
			Path: "./wavescan.db",
		},
	}
}
