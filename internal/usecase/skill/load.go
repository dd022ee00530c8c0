package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InstructionsFile is the instructions document inside a skill directory.
const InstructionsFile = "SKILL.md"

// Load reads a skill from disk. A directory must contain SKILL.md; a
// plain file is used as the instructions directly, named after the file.
func Load(path string) (Skill, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Skill{}, fmt.Errorf("load skill: %w", err)
	}

	instructionsPath := path
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	root := filepath.Dir(path)

	if info.IsDir() {
		instructionsPath = filepath.Join(path, InstructionsFile)
		name = filepath.Base(filepath.Clean(path))
		root = path
	}

	data, err := os.ReadFile(instructionsPath)
	if err != nil {
		return Skill{}, fmt.Errorf("load skill %s: %w", name, err)
	}

	instructions := strings.TrimSpace(string(data))
	if instructions == "" {
		return Skill{}, fmt.Errorf("load skill %s: instructions are empty", name)
	}

	return Skill{
		Name:         name,
		Instructions: instructions,
		ResourceRoot: root,
	}, nil
}
