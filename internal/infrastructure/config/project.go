package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// Project is the [appkit] table of the project configuration file.
type Project struct {
	Apps []string `toml:"apps"`
}

type projectFile struct {
	AppKit Project `toml:"appkit"`
}

// LoadProject reads the project configuration under root. A missing file
// is a *types.ConfigError.
func LoadProject(root string) (*Project, error) {
	path := filepath.Join(root, paths.ProjectConfig)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigError{Path: path, Err: err}
	}
	return ParseProject(path, data)
}

// LoadProjectOrEmpty reads the project configuration, treating a missing
// file as a project with zero apps.
func LoadProjectOrEmpty(root string) (*Project, error) {
	p, err := LoadProject(root)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return &Project{}, nil
	}
	return p, err
}

// ParseProject decodes project configuration data read from path.
func ParseProject(path string, data []byte) (*Project, error) {
	var f projectFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, &types.ConfigError{Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}
	for _, entry := range f.AppKit.Apps {
		if entry == "" {
			return nil, &types.ConfigError{Path: path, Err: errors.New("empty app entry")}
		}
	}
	return &f.AppKit, nil
}
