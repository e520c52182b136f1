// Package project discovers and loads a specoracle project.
package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/specoracle/internal/config"
)

// ConfigFileNames lists the config files marking a project root, in
// lookup order.
var ConfigFileNames = []string{config.JSONFileName, config.TOMLFileName}

// ErrNoProjectRoot is returned when no config file is found.
var ErrNoProjectRoot = errors.New("specoracle.json or specoracle.toml not found: not a specoracle project (or any parent up to the root)")

// FindRoot walks up from the current working directory until it finds a
// config file.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds a config file.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if configFile(dir) != "" {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}

// configFile returns the config file in dir, or "" when there is none.
func configFile(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
