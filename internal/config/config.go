package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds everything the server reads at startup. The file is read
// once; there is no reloading.
type Config struct {
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Model struct {
		Path        string `yaml:"path"`
		LabelsPath  string `yaml:"labels_path"`
		ImageSize   int    `yaml:"image_size"`
		Sessions    int    `yaml:"sessions"`
		LibraryPath string `yaml:"library_path"`
	} `yaml:"model"`
	Upload struct {
		MaxSizeMB  int64  `yaml:"max_size_mb"`
		ScratchDir string `yaml:"scratch_dir"`
	} `yaml:"upload"`
	Log struct {
		Level     string `yaml:"level"`
		Path      string `yaml:"path"`
		MaxSizeMB int    `yaml:"max_size_mb"`
		MaxAge    int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

func Default() *Config {
	var c Config
	c.Http.Port = 8000
	c.Model.Path = "models/cnn_lstm_action_model.onnx"
	c.Model.LabelsPath = "models/action_classes.json"
	c.Model.ImageSize = 224
	c.Model.Sessions = 2
	c.Upload.MaxSizeMB = 10
	c.Upload.ScratchDir = os.TempDir()
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 100
	c.Log.MaxAge = 14
	return &c
}

// Load reads the YAML config at path, filling in defaults for anything the
// file leaves out. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Http.Port <= 0 {
		return nil, fmt.Errorf("invalid http port: %d", config.Http.Port)
	}
	if config.Model.ImageSize <= 0 {
		return nil, fmt.Errorf("invalid image size: %d", config.Model.ImageSize)
	}
	if config.Model.Sessions <= 0 {
		return nil, fmt.Errorf("invalid session count: %d", config.Model.Sessions)
	}
	if config.Upload.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("invalid upload size limit: %d", config.Upload.MaxSizeMB)
	}
	if config.Upload.ScratchDir == "" {
		config.Upload.ScratchDir = os.TempDir()
	}

	return config, nil
}
