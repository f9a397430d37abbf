// Package config loads optional runtime tuning knobs for the mercha CLI
// from a TOML file, separate from the metafiles it verifies or generates.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables the CLI wires into the core packages' worker
// and SIMD overrides.
type Config struct {
	// WorkerCount overrides the dispatcher's worker count for both the
	// ChaCha20 driver and the Merkle reducer. Zero means "let the package
	// decide" (GOMAXPROCS-bounded).
	WorkerCount int `toml:"worker_count"`

	// ForceSIMD is one of "auto", "on", "off". Empty is treated as "auto".
	ForceSIMD string `toml:"force_simd"`
}

// Default returns the zero-value configuration: automatic worker count,
// automatic SIMD detection.
func Default() Config {
	return Config{WorkerCount: 0, ForceSIMD: "auto"}
}

// Load reads and parses a TOML configuration file at path. A missing file
// is not an error at this layer — callers that want "config is optional"
// semantics should check os.IsNotExist on the returned error themselves.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.ForceSIMD == "" {
		cfg.ForceSIMD = "auto"
	}
	return cfg, nil
}
