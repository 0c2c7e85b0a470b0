package grantly

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/grantly/config.yaml"
	err := fs.Upload(ctx, URL, 0644, strings.NewReader(`
dispatcher:
  intervalMs: 1000
  batchSize: 25
registry:
  ttlSec: 120
webhook:
  addr: ":8087"
  token: s3cret
propagator:
  url: http://origin.example/outcome
store:
  dsn: postgres://relay@localhost/relay
`))
	assert.NoError(t, err)

	config, err := LoadConfig(ctx, URL)
	assert.NoError(t, err)
	assert.Equal(t, time.Second, config.PollInterval())
	assert.Equal(t, 25, config.Dispatcher.BatchSize)
	assert.Equal(t, 2*time.Minute, config.TTL())
	assert.Equal(t, time.Minute, config.SweepInterval(), "sweep falls back to its default")
	assert.Equal(t, ":8087", config.Webhook.Addr)
	assert.Equal(t, "http://origin.example/outcome", config.Propagator.URL)
	assert.Equal(t, "postgres://relay@localhost/relay", config.Store.DSN)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(context.Background(), "mem://localhost/grantly/absent.yaml")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *Config)
		valid       bool
	}{
		{description: "defaults are valid", mutate: func(*Config) {}, valid: true},
		{description: "negative interval", mutate: func(c *Config) { c.Dispatcher.IntervalMs = -1 }},
		{description: "negative ttl", mutate: func(c *Config) { c.Registry.TTLSec = -1 }},
		{description: "webhook without credential", mutate: func(c *Config) { c.Webhook.Addr = ":8087" }},
		{description: "webhook with inline token", mutate: func(c *Config) {
			c.Webhook.Addr = ":8087"
			c.Webhook.Token = "s3cret"
		}, valid: true},
	}
	for _, testCase := range testCases {
		config := DefaultConfig()
		testCase.mutate(config)
		err := config.Validate()
		if testCase.valid {
			assert.NoError(t, err, testCase.description)
		} else {
			assert.Error(t, err, testCase.description)
		}
	}
}
