// Package config holds the process-wide tunables the numeric, kernel, and
// archive packages read at start-up: float precision ("digits"), the
// recursion-depth budget, and the range of archive format versions a reader
// will accept. It mirrors the shape of the teacher's own config loader
// (default struct, optional YAML override, environment override) scoped down
// to the handful of knobs this kernel actually exposes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/loveq369/symkernel/archive"
	"github.com/loveq369/symkernel/kernel"
	"github.com/loveq369/symkernel/numeric"
)

// Config holds every tunable this module exposes.
type Config struct {
	// Digits is the decimal-digit precision target for floating evaluation;
	// it is converted to bits (roughly digits * 3.322) before being handed
	// to numeric.SetPrecision.
	Digits int `yaml:"digits"`

	// RecursionLimit bounds the depth of eval/expand/subs/diff/normal
	// recursion (kernel.DefaultRecursionLimit).
	RecursionLimit int `yaml:"recursion_limit"`

	// ArchiveMinVersion and ArchiveMaxVersion bound which archive format
	// versions this process's archive.Read will accept, per spec.md §4.5's
	// version-window rule; Apply installs them via
	// archive.SetAcceptedVersionRange.
	ArchiveMinVersion int `yaml:"archive_min_version"`
	ArchiveMaxVersion int `yaml:"archive_max_version"`
}

// DefaultConfig returns the configuration used when no YAML file is present.
func DefaultConfig() *Config {
	return &Config{
		Digits:            17,
		RecursionLimit:    kernel.DefaultRecursionLimit,
		ArchiveMinVersion: 1,
		ArchiveMaxVersion: 1,
	}
}

// Load reads path as YAML and overlays it onto DefaultConfig; a missing
// file is not an error and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SYMKERNEL_DIGITS"); v != "" {
		if n, err := fmt.Sscanf(v, "%d", &c.Digits); err != nil || n != 1 {
			c.Digits = DefaultConfig().Digits
		}
	}
	if v := os.Getenv("SYMKERNEL_RECURSION_LIMIT"); v != "" {
		var n int
		if cnt, err := fmt.Sscanf(v, "%d", &n); err == nil && cnt == 1 {
			c.RecursionLimit = n
		}
	}
}

// Apply installs c as the process-wide configuration: it sets
// numeric.Precision (via numeric.SetPrecision, converting digits to bits),
// kernel.DefaultRecursionLimit, and the archive package's accepted version
// window. Call once during start-up, before any kernel operation runs.
func (c *Config) Apply() {
	numeric.SetPrecision(digitsToBits(c.Digits))
	kernel.DefaultRecursionLimit = c.RecursionLimit
	archive.SetAcceptedVersionRange(byte(c.ArchiveMinVersion), byte(c.ArchiveMaxVersion))
}

// digitsToBits converts a decimal-digit precision target to the bit
// precision big.Float wants, using the standard log2(10) ~= 3.32192809489
// ratio, rounded up so the requested number of decimal digits is never
// under-represented.
func digitsToBits(digits int) uint {
	if digits < 1 {
		digits = 1
	}
	bits := uint(float64(digits)*3.32192809489 + 1)
	if bits < 24 {
		bits = 24
	}
	return bits
}
