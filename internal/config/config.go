package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/wikirip/internal/mirror"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wikirip"

	// DefaultOutputDir is the mirror root created in the working directory.
	DefaultOutputDir = mirror.DefaultRoot

	// DefaultTimeout bounds a single GET, from dial to the last body byte.
	// A stalled request would otherwise hold its round open forever.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of fetches allowed in flight at once.
	DefaultConcurrency = 16

	// DefaultMaxBodySize limits how much of one response is read.
	// Wiki images can be large, so this is well above a typical page.
	DefaultMaxBodySize = 50 * 1024 * 1024 // 50MB
)

// Config holds all options for one rip.
// Defaults come from NewConfig, the config file overrides them, and flags
// given on the command line override both.
type Config struct {
	// Root is the site root URL, e.g. "https://wiki.example.org".
	// Suffixes are resolved against it.
	Root string

	// StartPage is the suffix of the first page, e.g. "/wiki/Main_Page".
	StartPage string

	// OutputDir is the mirror root. It is deleted and recreated on every run.
	OutputDir string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Concurrency caps simultaneous fetches within a round.
	Concurrency int

	// MaxBodySize is the largest response body accepted, in bytes.
	// Larger responses are recorded as failures.
	MaxBodySize int64

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// LogJSON writes log lines as JSON instead of text.
	LogJSON bool

	// JSONReport selects the JSON report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// SaveHistory stores the finished report in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	// Defaults to XDGDataDir().
	DBDir string

	// ConfigFilePath is an explicit .wikirip file. When empty the file is
	// searched for as described in FindConfigFile.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:   DefaultOutputDir,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		MaxBodySize: DefaultMaxBodySize,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for wikirip.
// On Linux: ~/.local/share/wikirip
// On macOS: ~/Library/Application Support/wikirip
// On Windows: %LOCALAPPDATA%\wikirip
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikirip.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplySite overlays the non-zero values of site onto c.
// Flags the user set explicitly should be re-applied by the caller afterwards.
func (c *Config) ApplySite(site SiteConfig) {
	if site.Output != "" {
		c.OutputDir = site.Output
	}
	if site.Concurrency > 0 {
		c.Concurrency = site.Concurrency
	}
	if site.Timeout > 0 {
		c.Timeout = site.Timeout
	}
}

// Validate checks the configuration and returns the first problem found.
// Root URL syntax is checked by fetch.ParseRoot, which owns that rule.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrNoRoot
	}

	if c.StartPage == "" {
		return ErrNoStartPage
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
