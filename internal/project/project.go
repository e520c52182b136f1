package project

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/AndreyAkinshin/specoracle/internal/config"
	"github.com/AndreyAkinshin/specoracle/internal/tests"
)

// Project is a loaded specoracle project.
type Project struct {
	Dir        string // directory holding the config file
	ConfigFile string // empty when running on defaults
	Config     *config.Config
	Warnings   []string
}

// LoadProject finds and loads a project from the current directory.
func LoadProject() (*Project, error) {
	dir, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadProjectFrom(dir)
}

// LoadProjectFrom loads the project whose config file lives in dir.
func LoadProjectFrom(dir string) (*Project, error) {
	path := configFile(dir)
	if path == "" {
		return nil, ErrNoProjectRoot
	}
	return LoadFile(path)
}

// LoadFile loads a project from an explicit config file.
func LoadFile(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	cfg, warnings, err := config.LoadAndValidate(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &Project{
		Dir:        filepath.Dir(abs),
		ConfigFile: abs,
		Config:     cfg,
		Warnings:   warnings,
	}, nil
}

// Default returns a project rooted at dir with the default configuration.
func Default(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Project{Dir: abs, Config: config.Default()}, nil
}

// RootDir returns the absolute corpus root.
func (p *Project) RootDir() string {
	return p.Config.RootDir(p.Dir)
}

// SuitesPath returns the path of the suite-definition file.
func (p *Project) SuitesPath() string {
	return p.Config.SuitesPath(p.Dir)
}

// SnapshotPath returns the default snapshot output path.
func (p *Project) SnapshotPath() string {
	return p.Config.SnapshotPath(p.Dir)
}

// Builder prepares a corpus builder from the suite-definition file.
// Suite-level problems are returned in the definitions, not as an error.
func (p *Project) Builder(logger *slog.Logger) (*tests.Builder, error) {
	defs, err := tests.LoadSuiteFile(p.SuitesPath())
	if err != nil {
		return nil, err
	}
	return &tests.Builder{
		Root:        p.RootDir(),
		Definitions: defs,
		Workers:     p.Config.Workers,
		Logger:      logger,
	}, nil
}

// Build ingests the project's corpus.
func (p *Project) Build(ctx context.Context, logger *slog.Logger) (*tests.Corpus, error) {
	b, err := p.Builder(logger)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx)
}
