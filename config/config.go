// Copyright 2025 Poiesic Systems
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

// Package config assembles application configuration from built-in
// defaults, an optional YAML file and the environment.
//
// Sources are applied in increasing precedence:
//
//	defaults < YAML file < .env file < process environment
//
// Environment variables use the DOCRAG_ prefix followed by the section
// prefix, for example DOCRAG_AI_GENERATOR_MODEL or DOCRAG_CHUNKING_MAX_SIZE.
// OPENAI_API_KEY is honored when DOCRAG_AI_API_KEY is unset.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/poiesic/docrag/ai"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "DOCRAG_"

	// DefaultFile is read when Load is given no explicit path and it exists.
	DefaultFile = "docrag.yaml"

	// DefaultDotEnv is loaded when Load is given no explicit .env files and it exists.
	DefaultDotEnv = ".env"

	// OpenAIKeyVar is the conventional variable holding the OpenAI API key.
	OpenAIKeyVar = "OPENAI_API_KEY"
)

// ErrInvalidConfig indicates a configuration value is missing or out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	AI         ai.Config        `yaml:"ai" envPrefix:"AI_"`
	Chunking   ChunkingConfig   `yaml:"chunking" envPrefix:"CHUNKING_"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" envPrefix:"RETRIEVAL_"`
	Index      IndexConfig      `yaml:"index" envPrefix:"INDEX_"`
	Sessions   SessionsConfig   `yaml:"sessions" envPrefix:"SESSIONS_"`
	Office     OfficeConfig     `yaml:"office" envPrefix:"OFFICE_"`
	Generation GenerationConfig `yaml:"generation" envPrefix:"GENERATION_"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// ChunkingConfig sizes the passages produced from documents, in characters.
type ChunkingConfig struct {
	MaxSize int `yaml:"max_size" env:"MAX_SIZE"`
	Overlap int `yaml:"overlap" env:"OVERLAP"`
}

// RetrievalConfig controls how many passages ground each answer.
type RetrievalConfig struct {
	K int `yaml:"k" env:"K"`
}

// IndexConfig controls where session indexes live and how they are built.
type IndexConfig struct {
	// Root holds one directory per session.
	Root string `yaml:"root" env:"ROOT"`

	// InMemory keeps indexes in memory only; Root is ignored.
	InMemory bool `yaml:"in_memory" env:"IN_MEMORY"`

	// Workers is the number of concurrent embedding requests. Zero picks a default.
	Workers int `yaml:"workers" env:"WORKERS"`
}

// SessionsConfig controls the lifetime of idle chat sessions.
type SessionsConfig struct {
	TTL time.Duration `yaml:"ttl" env:"TTL"`
}

// OfficeConfig carries the optional unidoc metered key. When set, .docx files
// are read with unioffice instead of the built-in extractor.
type OfficeConfig struct {
	LicenseKey string `yaml:"-" env:"LICENSE_KEY"`
}

// GenerationConfig holds sampling temperatures.
type GenerationConfig struct {
	AnswerTemperature  float64 `yaml:"answer_temperature" env:"ANSWER_TEMPERATURE"`
	SummaryTemperature float64 `yaml:"summary_temperature" env:"SUMMARY_TEMPERATURE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AI: *ai.DefaultConfig(),
		Chunking: ChunkingConfig{
			MaxSize: 1000,
			Overlap: 200,
		},
		Retrieval: RetrievalConfig{K: 4},
		Index: IndexConfig{
			Root: "index_db",
		},
		Sessions: SessionsConfig{TTL: time.Hour},
		Generation: GenerationConfig{
			AnswerTemperature:  0.4,
			SummaryTemperature: 0.7,
		},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path and the environment.
//
// An empty path reads DefaultFile when it exists; an explicit path must exist.
// When no dotenv files are given DefaultDotEnv is loaded if present. Values
// from .env files never override variables already set in the process.
func Load(path string, dotenv ...string) (*Config, error) {
	cfg := Default()

	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}
	if err := loadDotEnv(dotenv); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultDotEnv); err != nil {
			return nil
		}
		files = []string{DefaultDotEnv}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays DOCRAG_* environment variables onto c.
// Unset variables leave the current values in place.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv(OpenAIKeyVar)
	}
	return nil
}

// Validate checks every section. AI errors keep their ai package kinds so
// callers can tell a missing credential from other problems.
func (c *Config) Validate() error {
	if err := c.AI.Validate(); err != nil {
		return err
	}

	switch {
	case c.Chunking.MaxSize < 1:
		return fmt.Errorf("%w: chunking.max_size must be positive", ErrInvalidConfig)
	case c.Chunking.Overlap < 0:
		return fmt.Errorf("%w: chunking.overlap cannot be negative", ErrInvalidConfig)
	case c.Chunking.Overlap >= c.Chunking.MaxSize:
		return fmt.Errorf("%w: chunking.overlap must be smaller than chunking.max_size", ErrInvalidConfig)
	case c.Retrieval.K < 1:
		return fmt.Errorf("%w: retrieval.k must be at least 1", ErrInvalidConfig)
	case !c.Index.InMemory && strings.TrimSpace(c.Index.Root) == "":
		return fmt.Errorf("%w: index.root is required", ErrInvalidConfig)
	case c.Index.Workers < 0:
		return fmt.Errorf("%w: index.workers cannot be negative", ErrInvalidConfig)
	case c.Sessions.TTL <= 0:
		return fmt.Errorf("%w: sessions.ttl must be positive", ErrInvalidConfig)
	case !validTemperature(c.Generation.AnswerTemperature):
		return fmt.Errorf("%w: generation.answer_temperature must be within [0, 2]", ErrInvalidConfig)
	case !validTemperature(c.Generation.SummaryTemperature):
		return fmt.Errorf("%w: generation.summary_temperature must be within [0, 2]", ErrInvalidConfig)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func validTemperature(t float64) bool {
	return t >= 0 && t <= 2
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, name)
}
