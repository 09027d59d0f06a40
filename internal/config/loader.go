package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Load reads settings from path. With an empty path it searches the XDG
// config directories for unpack/config.toml and falls back to an empty
// File when none exists. A missing explicit path is ErrConfigNotFound.
func Load(path string) (*File, error) {
	if path == "" {
		found, err := xdg.SearchConfigFile(filepath.Join(AppName, FileName))
		if err != nil {
			return &File{}, nil
		}
		path = found
	}
	return LoadFile(path)
}

// LoadFile decodes and validates one TOML file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Decode parses TOML settings. Unknown keys are rejected so typos surface.
func Decode(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
