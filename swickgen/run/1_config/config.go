// Package config holds the names the generated code uses to reference the mock runtime library, and the
// layout knobs of the generated text.
package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Reader reads configuration files.
type Reader interface {
	ReadFile(name string) ([]byte, error)
}

// Config is the full generator configuration.
type Config struct {
	Runtime Runtime `toml:"runtime"`
	Output  Output  `toml:"output"`
}

// Runtime names the mock runtime library the generated code references.
type Runtime struct {
	Module     string `toml:"module"`      // "Swick"
	MockMarker string `toml:"mock_marker"` // "MockType"
}

// Output controls the shape of the generated text.
type Output struct {
	Indent     string `toml:"indent"`      // "    "
	MockSuffix string `toml:"mock_suffix"` // "Mock", as in MathMock
	FileSuffix string `toml:"file_suffix"` // "Mocks.swift", as in mathMocks.swift
}

// Default returns the configuration matching the Swick runtime library.
func Default() Config {
	return Config{
		Runtime: Runtime{
			Module:     "Swick",
			MockMarker: "MockType",
		},
		Output: Output{
			Indent:     "    ",
			MockSuffix: "Mock",
			FileSuffix: "Mocks.swift",
		},
	}
}

// Load reads a TOML file at path over the defaults. An empty path returns the defaults.
func Load(fileSys Reader, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := fileSys.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}

	return Parse(data, cfg)
}

// Parse decodes TOML data over base. Keys the configuration doesn't know are rejected, and so are empty names: the
// generated class header and file names need every one of them.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base

	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(errUnknownKey, "%s", undecoded[0].String())
	}

	required := []struct {
		key   string
		value string
	}{
		{"runtime.module", cfg.Runtime.Module},
		{"runtime.mock_marker", cfg.Runtime.MockMarker},
		{"output.mock_suffix", cfg.Output.MockSuffix},
		{"output.file_suffix", cfg.Output.FileSuffix},
	}

	for _, each := range required {
		if each.value == "" {
			return Config{}, errors.Wrap(errEmptyValue, each.key)
		}
	}

	return cfg, nil
}

// Qualify returns name qualified by the runtime module, e.g. "Swick.Matcher".
func (r Runtime) Qualify(name string) string {
	return r.Module + "." + name
}

// unexported variables.
var (
	errEmptyValue = errors.New("value must not be empty")
	errUnknownKey = errors.New("unknown config key")
)
