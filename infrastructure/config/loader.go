package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var yamlExtensions = []string{"yaml", "yml"}

// Loader layers configuration from, lowest priority first: defaults,
// base.yaml, <environment>.yaml, local.yaml (development only) and
// environment variables.
type Loader struct {
	basePath    string
	environment string
	sources     []string
}

// NewLoader creates a loader reading files from basePath
func NewLoader(basePath, environment string) *Loader {
	if environment == "" {
		environment = "development"
	}
	return &Loader{basePath: basePath, environment: environment}
}

// Load builds and validates the configuration
func (l *Loader) Load() (*Config, error) {
	l.sources = nil
	cfg := Defaults()
	cfg.Environment = l.environment
	l.sources = append(l.sources, "defaults")

	layers := []string{"base", strings.ToLower(l.environment)}
	if l.environment == "development" {
		layers = append(layers, "local")
	}
	for _, name := range layers {
		if err := l.loadFile(name, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", name, err)
		}
	}

	cfg.applyEnv()
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Sources lists where the last Load read from
func (l *Loader) Sources() []string {
	return l.sources
}

// Files lists the paths a Load would try, for watching
func (l *Loader) Files() []string {
	var out []string
	for _, name := range []string{"base", strings.ToLower(l.environment), "local"} {
		for _, ext := range yamlExtensions {
			out = append(out, filepath.Join(l.basePath, name+"."+ext))
		}
	}
	return out
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	if l.basePath == "" {
		return nil
	}
	for _, ext := range yamlExtensions {
		path := filepath.Join(l.basePath, name+"."+ext)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		err = decodeYAML(f, cfg)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		l.sources = append(l.sources, path)
		return nil
	}
	return nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
