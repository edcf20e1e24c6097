package resources

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Project is the configuration bundle a game ships with: a TOML file next to
// the game's scenes and scripts. The engine core only reads it.
type Project struct {
	Name         string `toml:"name"`
	DefaultScene string `toml:"default_scene"`
	ScriptsDir   string `toml:"scripts"`

	// FullPath is where the project file was loaded from. Not part of the
	// TOML document itself.
	FullPath string `toml:"-"`
}

// LoadProject reads and decodes a project TOML file.
func LoadProject(path string) (*Project, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	p := &Project{}
	if err := toml.Unmarshal(content, p); err != nil {
		return nil, fmt.Errorf("parse project file %s: %w", path, err)
	}
	if p.DefaultScene == "" {
		return nil, fmt.Errorf("project %s declares no default scene", path)
	}
	if p.ScriptsDir == "" {
		p.ScriptsDir = "scripts"
	}
	p.FullPath = path
	return p, nil
}
