package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gsampaio-rh/virt-llm-agents/llm"
)

// Config is the on-disk configuration. Flags override file values, file
// values override env vars, env vars override defaults.
type Config struct {
	Model    string      `yaml:"model"`
	Endpoint string      `yaml:"endpoint"`
	MaxSteps int         `yaml:"max_steps"`
	Options  llm.Options `yaml:"options"`

	DBPath        string `yaml:"db_path"`
	TelemetryPath string `yaml:"telemetry_path"`

	Forklift ForkliftConfig `yaml:"forklift"`
}

// ForkliftConfig carries the migration toolkit connection and the provider
// pair every plan references.
type ForkliftConfig struct {
	URL            string `yaml:"url"`
	Token          string `yaml:"token"`
	Namespace      string `yaml:"namespace"`
	SourceProvider string `yaml:"source_provider"`
	TargetProvider string `yaml:"target_provider"`

	// Map endpoints: plan creation builds one network map and one storage
	// map per plan from these.
	SourceNetwork   string `yaml:"source_network"`
	TargetNetwork   string `yaml:"target_network"`
	SourceDatastore string `yaml:"source_datastore"`
	StorageClass    string `yaml:"storage_class"`
}

// defaultConfig seeds every field from the environment.
func defaultConfig() Config {
	return Config{
		Model:    envOrDefault("VIRTAGENT_MODEL", "llama3:instruct"),
		Endpoint: envOrDefault("VIRTAGENT_ENDPOINT", "http://localhost:11434"),
		MaxSteps: 15,
		Options:  llm.DefaultOptions(),
		DBPath:   envOrDefault("VIRTAGENT_DB", "virtagent.db"),
		Forklift: ForkliftConfig{
			URL:       os.Getenv("VIRTAGENT_FORKLIFT_URL"),
			Token:     os.Getenv("VIRTAGENT_FORKLIFT_TOKEN"),
			Namespace: envOrDefault("VIRTAGENT_FORKLIFT_NAMESPACE", "openshift-mtv"),
		},
	}
}

// loadConfig reads the YAML file at path over the defaults. A missing file
// is only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
