package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
kafka:
  brokers: ["localhost:9092"]
  topic: list-events
  outputTopic: list-ranges
list:
  keeps: 12
  estimateSize: 40
  bottomThreshold: 20
pipeline:
  sessionIdleTimeout: 5m
log:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesFileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "list-events", cfg.Kafka.Topic)
	assert.Equal(t, "list-ranges", cfg.Kafka.OutputTopic)
	assert.Equal(t, defaultKafkaGroupID, cfg.Kafka.GroupID)

	assert.Equal(t, 12, cfg.List.Keeps)
	assert.Equal(t, float64(40), cfg.List.EstimateSize)
	assert.Equal(t, 0, cfg.List.Buffer)
	assert.Equal(t, float64(20), cfg.List.BottomThreshold)

	assert.Equal(t, 5*time.Minute, cfg.Pipeline.SessionIdleTimeout)
	assert.Equal(t, defaultEvictionInterval, cfg.Pipeline.EvictionInterval)
	assert.Equal(t, defaultChannelBufferSize, cfg.Pipeline.ChannelBufferSize)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, defaultMetricsListenAddr, cfg.Metrics.ListenAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, defaultLogFormat, cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VIRTUALLIST_LIST_KEEPS", "42")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.List.Keeps)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReadingConfigFile) || errors.Is(err, ErrConfigFileMissing), "got %v", err)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Kafka:    KafkaConfig{Brokers: []string{"b:9092"}, Topic: "t", GroupID: "g"},
			List:     ListConfig{Keeps: 10, EstimateSize: 50},
			Pipeline: PipelineConfig{SessionIdleTimeout: time.Minute, EvictionInterval: time.Second, ChannelBufferSize: 8},
			Metrics:  MetricsConfig{Enabled: true, ListenAddr: ":0"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"no brokers", func(c *Config) { c.Kafka.Brokers = nil }, ErrEmptyKafkaBrokers},
		{"no topic", func(c *Config) { c.Kafka.Topic = "" }, ErrEmptyKafkaTopic},
		{"no group", func(c *Config) { c.Kafka.GroupID = "" }, ErrEmptyKafkaGroupID},
		{"zero keeps", func(c *Config) { c.List.Keeps = 0 }, ErrInvalidKeeps},
		{"zero estimate", func(c *Config) { c.List.EstimateSize = 0 }, ErrInvalidEstimateSize},
		{"negative buffer", func(c *Config) { c.List.Buffer = -1 }, ErrInvalidBuffer},
		{"negative threshold", func(c *Config) { c.List.TopThreshold = -5 }, ErrInvalidThreshold},
		{"zero idle", func(c *Config) { c.Pipeline.SessionIdleTimeout = 0 }, ErrInvalidIdleTimeout},
		{"zero eviction", func(c *Config) { c.Pipeline.EvictionInterval = 0 }, ErrInvalidEvictInterval},
		{"zero channel", func(c *Config) { c.Pipeline.ChannelBufferSize = 0 }, ErrInvalidChannelBuffer},
		{"metrics without addr", func(c *Config) { c.Metrics.ListenAddr = "" }, ErrEmptyMetricsListenAddr},
		{"metrics disabled without addr", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.ListenAddr = ""
		}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
