package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vvka-141/pgingest/pkg/pgingest"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// FileConfig holds the tunables that may be kept in pgingest.yaml. Nil
// fields were absent from the file.
type FileConfig struct {
	BatchSize *int  `yaml:"batch_size"`
	Progress  *bool `yaml:"progress"`
}

const ConfigFileName = "pgingest.yaml"

// Load reads the config file at path. Unknown keys are rejected so a typo
// does not silently fall back to a default.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrConfigNotFound)
		}
		return nil, err
	}

	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w: %w", path, pgingest.ErrInvalidConfig, err)
	}

	if cfg.BatchSize != nil && *cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("%s: batch_size must be positive, got %d: %w", path, *cfg.BatchSize, pgingest.ErrInvalidConfig)
	}
	return &cfg, nil
}

// LoadFromDir reads pgingest.yaml from dir.
func LoadFromDir(dir string) (*FileConfig, error) {
	return Load(filepath.Join(dir, ConfigFileName))
}

// BatchSizeOr returns the configured batch size, or fallback when unset.
func (c *FileConfig) BatchSizeOr(fallback int) int {
	if c == nil || c.BatchSize == nil {
		return fallback
	}
	return *c.BatchSize
}

// ProgressOr returns the configured progress setting, or fallback when unset.
func (c *FileConfig) ProgressOr(fallback bool) bool {
	if c == nil || c.Progress == nil {
		return fallback
	}
	return *c.Progress
}
