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


package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingCatalogURL        = errors.New("catalog.url is required")
	ErrInvalidMaxPages          = errors.New("catalog.max_pages must be at least 1")
	ErrInvalidBackend           = errors.New("object_store.backend must be 's3' or 'minio'")
	ErrMissingBucket            = errors.New("object_store.bucket is required")
	ErrMissingEndpoint          = errors.New("object_store.endpoint is required for the minio backend")
	ErrMissingLedgerPath        = errors.New("ledger.path is required")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidJitter            = errors.New("retry.jitter must be between 0.0 and 1.0")
	ErrInvalidTimeout           = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidRate              = errors.New("fetch.requests_per_sec must be non-negative")
	ErrMissingIndexHost         = errors.New("index.host is required")
	ErrMissingCompletionModel   = errors.New("ai.completion_model is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete settings file for the archive tools.
// Credentials and endpoints live here instead of in ambient process state
// so that every component receives them explicitly at construction.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Retry       RetryConfig       `yaml:"retry"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Index       IndexConfig       `yaml:"index"`
	AI          AIConfig          `yaml:"ai"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CatalogConfig describes the paginated public catalog to enumerate.
type CatalogConfig struct {
	// URL is the first catalog page.
	URL string `yaml:"url"`
	// BaseURL resolves relative document links. Defaults to the catalog
	// URL's scheme and host.
	BaseURL string `yaml:"base_url"`
	// PageParam is the query parameter driving pagination.
	PageParam string `yaml:"page_param"`
	// MaxPages caps the pagination walk as a safety stop.
	MaxPages int `yaml:"max_pages"`
}

// ObjectStoreConfig describes where mirrored documents are put.
type ObjectStoreConfig struct {
	Backend         string `yaml:"backend"` // "s3" or "minio"
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// FetchConfig tunes the HTTP document fetcher.
type FetchConfig struct {
	UserAgent      string  `yaml:"user_agent"`
	TimeoutSec     int     `yaml:"timeout_sec"`
	MaxBodyMB      int     `yaml:"max_body_mb"`
	RequestsPerSec float64 `yaml:"requests_per_sec"` // 0 disables the politeness limiter
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	Jitter            float64 `yaml:"jitter"`
}

// InitialDelay returns the base delay as a duration.
func (r *RetryConfig) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMs) * time.Millisecond
}

// MaxDelay returns the delay ceiling as a duration.
func (r *RetryConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayMs) * time.Millisecond
}

// LedgerConfig locates the local mirror ledger.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig points at the external search index the retrieval client queries.
type IndexConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Name   string `yaml:"name"`
}

// AIConfig points at the hosted embedding and completion services.
type AIConfig struct {
	EmbeddingHost   string `yaml:"embedding_host"`
	EmbeddingModel  string `yaml:"embedding_model"`
	CompletionHost  string `yaml:"completion_host"`
	CompletionModel string `yaml:"completion_model"`
	APIKey          string `yaml:"api_key"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with working defaults for everything that has a
// sensible default. Required fields (catalog URL, bucket, hosts) stay empty.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			PageParam: "page",
			MaxPages:  100,
		},
		ObjectStore: ObjectStoreConfig{
			Backend: "s3",
			Region:  "us-east-1",
			UseSSL:  true,
		},
		Fetch: FetchConfig{
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			TimeoutSec:     30,
			MaxBodyMB:      512,
			RequestsPerSec: 4,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			Jitter:            0.2,
		},
		Ledger: LedgerConfig{
			Path: "./mirror_db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML settings file and merges it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the settings shared by every command. Commands with
// additional requirements call ValidateMirror or ValidateRetrieval on top.
func (c *Config) Validate() error {
	if c.Catalog.URL == "" {
		return ErrMissingCatalogURL
	}
	if c.Catalog.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}
	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}
	if c.Retry.Jitter < 0.0 || c.Retry.Jitter > 1.0 {
		return ErrInvalidJitter
	}
	if c.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.Fetch.RequestsPerSec < 0 {
		return ErrInvalidRate
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// ValidateMirror checks the settings the mirror command needs on top of
// Validate: an object store destination and a ledger location.
func (c *Config) ValidateMirror() error {
	switch c.ObjectStore.Backend {
	case "s3":
	case "minio":
		if c.ObjectStore.Endpoint == "" {
			return ErrMissingEndpoint
		}
	default:
		return ErrInvalidBackend
	}
	if c.ObjectStore.Bucket == "" {
		return ErrMissingBucket
	}
	if c.Ledger.Path == "" {
		return ErrMissingLedgerPath
	}
	return nil
}

// ValidateRetrieval checks the settings the ask command needs: the external
// index and the hosted model services.
func (c *Config) ValidateRetrieval() error {
	if c.Index.Host == "" {
		return ErrMissingIndexHost
	}
	if c.AI.CompletionModel == "" {
		return ErrMissingCompletionModel
	}
	return nil
}
