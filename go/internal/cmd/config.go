package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the file-based service configuration. Environment variables cover
// secrets and per-deploy settings; the YAML file covers draft defaults and
// realtime tuning.
type Config struct {
	Draft struct {
		Year   int `yaml:"year"`
		Rounds int `yaml:"rounds"`
	} `yaml:"draft"`
	Realtime struct {
		NATSURL          string   `yaml:"nats_url"`
		SubjectPrefix    string   `yaml:"subject_prefix"`
		ReconnectWait    duration `yaml:"reconnect_wait"`
		FallbackInterval duration `yaml:"fallback_interval"`
		PingInterval     duration `yaml:"ping_interval"`
	} `yaml:"realtime"`
}

// duration accepts "2s"-style values in YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = duration(parsed)
	return nil
}

func loadConfig(path string) (*Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&config)
			return &config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Draft.Year == 0 {
		config.Draft.Year = time.Now().Year()
	}
	if config.Draft.Rounds == 0 {
		config.Draft.Rounds = 7
	}
	if config.Realtime.SubjectPrefix == "" {
		config.Realtime.SubjectPrefix = "draftroom"
	}
	if config.Realtime.ReconnectWait == 0 {
		config.Realtime.ReconnectWait = duration(2 * time.Second)
	}
	if config.Realtime.FallbackInterval == 0 {
		config.Realtime.FallbackInterval = duration(30 * time.Second)
	}
	if config.Realtime.PingInterval == 0 {
		config.Realtime.PingInterval = duration(90 * time.Second)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
