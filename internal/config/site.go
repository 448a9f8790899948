package config

import (
	"strings"
	"time"
)

// SiteConfig holds overrides for one wiki root.
type SiteConfig struct {
	// Output overrides the mirror directory.
	Output string `yaml:"output,omitempty"`

	// Concurrency overrides the number of simultaneous fetches.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Timeout overrides the per-request timeout, e.g. "45s".
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// File represents the structure of the .wikirip configuration file.
type File struct {
	// Sites maps root URLs to their overrides.
	// Keys are compared after trimming a trailing slash.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every root unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for root, merging the matching
// site entry over the defaults.
func (cf *File) GetSiteConfig(root string) SiteConfig {
	result := cf.Defaults

	site, ok := cf.Sites[root]
	if !ok {
		for key, s := range cf.Sites {
			if trimSlash(key) == trimSlash(root) {
				site, ok = s, true
				break
			}
		}
	}
	if !ok {
		return result
	}

	if site.Output != "" {
		result.Output = site.Output
	}
	if site.Concurrency != 0 {
		result.Concurrency = site.Concurrency
	}
	if site.Timeout != 0 {
		result.Timeout = site.Timeout
	}

	return result
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}
