// Package config provides the configuration for a rip: the Config struct
// filled from CLI flags, its defaults and validation, and the optional
// .wikirip YAML file with per-site overrides.
package config
