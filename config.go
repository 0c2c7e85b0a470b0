package grantly

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the relay configuration. It can
// be populated from JSON or YAML; the zero-value is useful since all nested
// fields inherit their package defaults.
type Config struct {
	Dispatcher DispatcherConfig `json:"dispatcher" yaml:"dispatcher"`
	Registry   RegistryConfig   `json:"registry" yaml:"registry"`
	Webhook    WebhookConfig    `json:"webhook" yaml:"webhook"`
	Propagator PropagatorConfig `json:"propagator" yaml:"propagator"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Audit      AuditConfig      `json:"audit" yaml:"audit"`
}

type DispatcherConfig struct {
	IntervalMs int `json:"intervalMs" yaml:"intervalMs"`
	BatchSize  int `json:"batchSize" yaml:"batchSize"`
}

type RegistryConfig struct {
	TTLSec   int `json:"ttlSec" yaml:"ttlSec"`
	SweepSec int `json:"sweepSec" yaml:"sweepSec"`
}

// WebhookConfig describes the push entry point. Token may be given inline;
// TokenURL points at a scy secret resource and wins when both are set.
type WebhookConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	TokenURL string `json:"tokenURL,omitempty" yaml:"tokenURL,omitempty"`
	TokenKey string `json:"tokenKey,omitempty" yaml:"tokenKey,omitempty"`
}

// PropagatorConfig describes the outbound outcome notification endpoint.
// Empty URL disables propagation (pure poll deployments).
type PropagatorConfig struct {
	URL      string `json:"url" yaml:"url"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	TokenURL string `json:"tokenURL,omitempty" yaml:"tokenURL,omitempty"`
	TokenKey string `json:"tokenKey,omitempty" yaml:"tokenKey,omitempty"`
}

// StoreConfig selects the task store backend. Empty DSN selects the
// in-memory store.
type StoreConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

// AuditConfig selects where denial escalations are written. Empty BaseURL
// keeps them in memory.
type AuditConfig struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

// DefaultConfig returns a Config populated with package defaults.
func DefaultConfig() *Config {
	return &Config{
		Dispatcher: DispatcherConfig{IntervalMs: 5000, BatchSize: 10},
		Registry:   RegistryConfig{TTLSec: 300, SweepSec: 60},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Dispatcher.IntervalMs < 0 {
		return fmt.Errorf("dispatcher.intervalMs must be >= 0")
	}
	if c.Dispatcher.BatchSize < 0 {
		return fmt.Errorf("dispatcher.batchSize must be >= 0")
	}
	if c.Registry.TTLSec < 0 {
		return fmt.Errorf("registry.ttlSec must be >= 0")
	}
	if c.Webhook.Addr != "" && c.Webhook.Token == "" && c.Webhook.TokenURL == "" {
		return fmt.Errorf("webhook.token or webhook.tokenURL is required when webhook.addr is set")
	}
	return nil
}

// PollInterval returns the dispatcher interval as a duration.
func (c *Config) PollInterval() time.Duration {
	if c.Dispatcher.IntervalMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Dispatcher.IntervalMs) * time.Millisecond
}

// TTL returns the registry window as a duration.
func (c *Config) TTL() time.Duration {
	if c.Registry.TTLSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Registry.TTLSec) * time.Second
}

// SweepInterval returns the registry sweep cadence as a duration.
func (c *Config) SweepInterval() time.Duration {
	if c.Registry.SweepSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.Registry.SweepSec) * time.Second
}

// LoadConfig reads YAML configuration from the given URL; any afs-supported
// scheme works (file, mem, s3, gs).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config from %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
