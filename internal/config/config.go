// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CourtConfig holds the endpoint and credentials for one court instance.
type CourtConfig struct {
	Code         string `yaml:"code"`     // e.g. "trt3"
	Instance     string `yaml:"instance"` // "1" or "2"
	BaseURL      string `yaml:"base_url"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// CaptureConfig controls the batch orchestrator.
type CaptureConfig struct {
	ParallelEnabled  bool
	MaxConcurrent    int
	RetryEnabled     bool
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
}

// Config holds all configuration for the party ingestion service.
type Config struct {
	Courts []CourtConfig

	// SourceSystem scopes the identity mappings written by this deploy,
	// e.g. "pje-trt3".
	SourceSystem string

	// Attorney is the requesting credential owner; parties represented by
	// this CPF classify as clients.
	AttorneyCPF  string
	AttorneyName string

	Capture CaptureConfig

	// Postgres
	DatabaseURL string

	// Redis
	RedisURL        string
	DeadLetterQueue string
	SummaryQueue    string

	// Server
	Port int
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	SourceSystem string `yaml:"source_system"`
	Attorney     struct {
		CPF  string `yaml:"cpf"`
		Name string `yaml:"name"`
	} `yaml:"attorney"`
	Courts  []CourtConfig `yaml:"courts"`
	Capture struct {
		Parallel      *bool `yaml:"parallel"`
		MaxConcurrent int   `yaml:"max_concurrent"`
		Retry         struct {
			Enabled     *bool  `yaml:"enabled"`
			MaxAttempts int    `yaml:"max_attempts"`
			BaseDelay   string `yaml:"base_delay"`
			MaxDelay    string `yaml:"max_delay"`
		} `yaml:"retry"`
	} `yaml:"capture"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			DeadLetter string `yaml:"dead_letter"`
			Summaries  string `yaml:"summaries"`
		} `yaml:"queues"`
	} `yaml:"redis"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables for non-YAML settings.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "/app/config/config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	// Expand ${VAR} references in the YAML
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}

	cfg := &Config{
		SourceSystem:    firstNonEmpty(raw.SourceSystem, envOrDefault("SOURCE_SYSTEM", "pje")),
		AttorneyCPF:     firstNonEmpty(raw.Attorney.CPF, os.Getenv("ATTORNEY_CPF")),
		AttorneyName:    firstNonEmpty(raw.Attorney.Name, os.Getenv("ATTORNEY_NAME")),
		DatabaseURL:     firstNonEmpty(raw.Database.URL, envOrDefault("DATABASE_URL", "postgres://localhost:5432/partes")),
		RedisURL:        firstNonEmpty(raw.Redis.URL, envOrDefault("REDIS_URL", "redis://localhost:6379/0")),
		DeadLetterQueue: firstNonEmpty(raw.Redis.Queues.DeadLetter, envOrDefault("DEAD_LETTER_QUEUE", "partes:dead_letter")),
		SummaryQueue:    firstNonEmpty(raw.Redis.Queues.Summaries, envOrDefault("SUMMARY_QUEUE", "partes:summaries")),
		Port:            envOrDefaultInt("PORT", 8080),
	}

	cfg.Capture = CaptureConfig{
		ParallelEnabled:  boolOrDefault(raw.Capture.Parallel, true),
		MaxConcurrent:    intOrDefault(raw.Capture.MaxConcurrent, 5),
		RetryEnabled:     boolOrDefault(raw.Capture.Retry.Enabled, true),
		RetryMaxAttempts: intOrDefault(raw.Capture.Retry.MaxAttempts, 3),
		RetryBaseDelay:   durationOrDefault(raw.Capture.Retry.BaseDelay, time.Second),
		RetryMaxDelay:    durationOrDefault(raw.Capture.Retry.MaxDelay, 10*time.Second),
	}

	// Courts with empty credentials are commented out in YAML; skip them.
	for _, c := range raw.Courts {
		if c.BaseURL == "" || c.ClientID == "" || c.ClientSecret == "" {
			continue
		}
		if c.Instance == "" {
			c.Instance = "1"
		}
		cfg.Courts = append(cfg.Courts, c)
	}

	if len(cfg.Courts) == 0 {
		return nil, fmt.Errorf("no courts configured — check config.yaml and environment variables")
	}

	return cfg, nil
}

// Court returns the configured court matching code and instance.
func (c *Config) Court(code, instance string) (CourtConfig, bool) {
	for _, court := range c.Courts {
		if court.Code == code && court.Instance == instance {
			return court, true
		}
	}
	return CourtConfig{}, false
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolOrDefault(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func intOrDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func durationOrDefault(v string, fallback time.Duration) time.Duration {
	if v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
