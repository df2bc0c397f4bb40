package spl

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfig is the optional per-project settings file, slc.toml,
// read from the directory containing the source file being compiled.
// Its presence is entirely optional; a missing file is not an error,
// it just leaves every field at its zero value.
type ProjectConfig struct {
	Output struct {
		Dir string `toml:"dir"`
	} `toml:"output"`

	Diagnostics struct {
		AbortOnError bool `toml:"abort_on_error"`
	} `toml:"diagnostics"`
}

// loadedConfig is the narrow view main.go actually consumes.
type loadedConfig struct {
	OutputDir    string
	AbortOnError bool
}

// LoadConfig looks for slc.toml in dir and decodes it. A missing file
// is reported as (nil, nil), matching the "defaults apply" contract of
// an optional config; a malformed file is reported as an error so the
// user finds out immediately rather than silently keeping defaults.
func LoadConfig(dir string) (*loadedConfig, error) {
	path := filepath.Join(dir, "slc.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var cfg ProjectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &loadedConfig{
		OutputDir:    cfg.Output.Dir,
		AbortOnError: cfg.Diagnostics.AbortOnError,
	}, nil
}
