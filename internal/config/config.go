package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	NLPService struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int64  `yaml:"timeout_seconds"`
	} `yaml:"nlp_service"`
	Processing struct {
		DefaultLabels []string `yaml:"default_labels"`
	} `yaml:"processing"`
}

// LoadConfig reads configuration from the specified YAML file. The NLP service
// URL can be overridden with the NLP_SERVICE_URL environment variable.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if url := os.Getenv("NLP_SERVICE_URL"); url != "" {
		config.NLPService.URL = url
	}

	if config.Server.Port == "" {
		config.Server.Port = ":8080"
	}
	if config.Store.Path == "" {
		config.Store.Path = "multilingual_db.json"
	}

	return config, nil
}
