package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the working
// and home directories.
const DefaultConfigFile = ".wikirip"

// xdgConfigFile is the configuration file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidSiteConfig is returned for negative concurrency or timeout values.
	ErrInvalidSiteConfig = errors.New("invalid site configuration: values must not be negative")
)

// LoadConfigFile loads defaults and per-site overrides from a YAML file.
// Timeouts are written as Go durations, e.g. "45s" or "2m".
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	if err := validateSite("defaults", cf.Defaults); err != nil {
		return nil, err
	}
	for root, site := range cf.Sites {
		if err := validateSite(root, site); err != nil {
			return nil, err
		}
	}

	return &cf, nil
}

func validateSite(name string, site SiteConfig) error {
	if site.Concurrency < 0 || site.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSiteConfig, name)
	}
	return nil
}

// FindConfigFile returns the configuration file to use, or "" if none exists.
// An explicit configPath is used only if it exists. Otherwise the search
// order is ./.wikirip, $XDG_CONFIG_HOME/wikirip/config.yaml, ~/.wikirip.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
