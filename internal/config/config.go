package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ocr-batch/internal/logger"
)

const (
	configDirName  = ".batch_image_ocr"
	configFileName = "config.json"
)

// Config holds the settings remembered between runs.
type Config struct {
	TesseractPath string `json:"tesseract_path,omitempty"`
	Engine        string `json:"engine,omitempty"`
	LastInputDir  string `json:"last_input_dir,omitempty"`
	LastOutputDir string `json:"last_output_dir,omitempty"`
}

// DefaultPath returns ~/.batch_image_ocr/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load reads the saved configuration. A missing or unreadable file yields
// zero-value defaults; settings are a convenience, never a hard requirement.
func Load() Config {
	path, err := DefaultPath()
	if err != nil {
		logger.Warnf("could not locate config file: %v", err)
		return Config{}
	}
	return LoadFrom(path)
}

func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("could not read config file %s: %v", path, err)
		}
		return Config{}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Warnf("could not parse config file %s: %v", path, err)
		return Config{}
	}
	return cfg
}

// Save writes the configuration to the default location, creating the
// directory if needed.
func (c Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
