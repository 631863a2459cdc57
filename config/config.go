//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads the YAML application configuration. Secrets are
// never stored in the file itself: each credential field names an
// environment variable to read at assembly time.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EmbedderConfig configures the embedding provider.
type EmbedderConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	APIKeyEnv  string `yaml:"api_key_env"`
	BaseURL    string `yaml:"base_url,omitempty"`
	CacheTTL   string `yaml:"cache_ttl,omitempty"`
}

// CompletionProviderConfig configures one provider in the fallback
// chain. Providers are tried in the order they appear.
type CompletionProviderConfig struct {
	Type      string `yaml:"type"`
	Model     string `yaml:"model,omitempty"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

// StoreConfig selects and configures the vector store.
type StoreConfig struct {
	Type   string `yaml:"type"`
	DSNEnv string `yaml:"dsn_env,omitempty"`
	Table  string `yaml:"table,omitempty"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Type   string `yaml:"type"`
	URLEnv string `yaml:"url_env,omitempty"`
}

// ChunkingConfig configures document chunking.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	Overlap      int `yaml:"overlap"`
	MinChunkSize int `yaml:"min_chunk_size"`
}

// EngineConfig holds the retrieval and answering knobs.
type EngineConfig struct {
	TopK          int `yaml:"top_k"`
	ContextBudget int `yaml:"context_budget"`
	Workers       int `yaml:"workers"`
}

// Config is the root application configuration.
type Config struct {
	Embedder   EmbedderConfig             `yaml:"embedder"`
	Completion []CompletionProviderConfig `yaml:"completion"`
	Store      StoreConfig                `yaml:"store"`
	Cache      CacheConfig                `yaml:"cache"`
	Chunking   ChunkingConfig             `yaml:"chunking"`
	Engine     EngineConfig               `yaml:"engine"`
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Secret resolves a credential by its configured environment variable
// name. An empty name resolves to an empty value without error.
func Secret(envName string) string {
	if envName == "" {
		return ""
	}
	return os.Getenv(envName)
}

// Default returns the configuration used when no file is present:
// in-memory store and cache, OpenAI embedding and completion.
func Default() *Config {
	cfg := &Config{
		Embedder: EmbedderConfig{Provider: "openai"},
		Completion: []CompletionProviderConfig{
			{Type: "openai"},
		},
		Store: StoreConfig{Type: "memory"},
		Cache: CacheConfig{Type: "memory"},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = "openai"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.Dimensions == 0 {
		cfg.Embedder.Dimensions = 1536
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if len(cfg.Completion) == 0 {
		cfg.Completion = []CompletionProviderConfig{{Type: "openai"}}
	}
	for i := range cfg.Completion {
		if cfg.Completion[i].APIKeyEnv == "" {
			switch cfg.Completion[i].Type {
			case "gemini":
				cfg.Completion[i].APIKeyEnv = "GOOGLE_API_KEY"
			default:
				cfg.Completion[i].APIKeyEnv = "OPENAI_API_KEY"
			}
		}
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Store.Type == "pgvector" && cfg.Store.DSNEnv == "" {
		cfg.Store.DSNEnv = "DATABASE_URL"
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "memory"
	}
	if cfg.Cache.Type == "redis" && cfg.Cache.URLEnv == "" {
		cfg.Cache.URLEnv = "REDIS_URL"
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 512
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 50
	}
	if cfg.Chunking.MinChunkSize == 0 {
		cfg.Chunking.MinChunkSize = 100
	}
	if cfg.Engine.TopK == 0 {
		cfg.Engine.TopK = 5
	}
	if cfg.Engine.ContextBudget == 0 {
		cfg.Engine.ContextBudget = 3000
	}
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = 4
	}
}
