package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultKafkaGroupID      = "virtuallist-default-group"
	defaultListKeeps         = 30
	defaultListEstimateSize  = 50
	defaultListBuffer        = 0 // 0 derives round(keeps/3)
	defaultTopThreshold      = 0
	defaultBottomThreshold   = 0
	defaultSessionIdle       = 10 * time.Minute
	defaultEvictionInterval  = 1 * time.Minute
	defaultChannelBufferSize = 100
	defaultMetricsEnabled    = true
	defaultMetricsListenAddr = ":9108"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultLogFileEnabled    = false
	defaultLogDirectory      = "log"
	defaultLogFilename       = "app.log"
	defaultLogMaxSizeMB      = 100
	defaultLogMaxBackups     = 3
	defaultLogMaxAgeDays     = 7
	defaultLogCompress       = false

	// Environment variable prefix
	envPrefix = "VIRTUALLIST"
)

type Config struct {
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	List     ListConfig     `mapstructure:"list"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic"`
	GroupID     string   `mapstructure:"groupID"`
	OutputTopic string   `mapstructure:"outputTopic"` // Empty disables publishing to Kafka
}

// ListConfig holds the defaults every new list session starts with.
type ListConfig struct {
	Keeps           int     `mapstructure:"keeps"`
	EstimateSize    float64 `mapstructure:"estimateSize"`
	Buffer          int     `mapstructure:"buffer"`
	TopThreshold    float64 `mapstructure:"topThreshold"`
	BottomThreshold float64 `mapstructure:"bottomThreshold"`
}

type PipelineConfig struct {
	SessionIdleTimeout time.Duration `mapstructure:"sessionIdleTimeout"`
	EvictionInterval   time.Duration `mapstructure:"evictionInterval"`
	ChannelBufferSize  int           `mapstructure:"channelBufferSize"`
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listenAddr"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	// Read configuration from file (error if mandatory file is missing)
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("kafka.outputTopic", "")
	v.SetDefault("list.keeps", defaultListKeeps)
	v.SetDefault("list.estimateSize", defaultListEstimateSize)
	v.SetDefault("list.buffer", defaultListBuffer)
	v.SetDefault("list.topThreshold", defaultTopThreshold)
	v.SetDefault("list.bottomThreshold", defaultBottomThreshold)
	v.SetDefault("pipeline.sessionIdleTimeout", defaultSessionIdle)
	v.SetDefault("pipeline.evictionInterval", defaultEvictionInterval)
	v.SetDefault("pipeline.channelBufferSize", defaultChannelBufferSize)
	v.SetDefault("metrics.enabled", defaultMetricsEnabled)
	v.SetDefault("metrics.listenAddr", defaultMetricsListenAddr)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return ErrEmptyKafkaBrokers
	}
	if cfg.Kafka.Topic == "" {
		return ErrEmptyKafkaTopic
	}
	if cfg.Kafka.GroupID == "" {
		return ErrEmptyKafkaGroupID
	}
	if err := validateList(cfg.List); err != nil {
		return err
	}
	if cfg.Pipeline.SessionIdleTimeout <= 0 {
		return ErrInvalidIdleTimeout
	}
	if cfg.Pipeline.EvictionInterval <= 0 {
		return ErrInvalidEvictInterval
	}
	if cfg.Pipeline.ChannelBufferSize <= 0 {
		return ErrInvalidChannelBuffer
	}
	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddr == "" {
		return ErrEmptyMetricsListenAddr
	}
	return nil
}

func validateList(list ListConfig) error {
	if list.Keeps <= 0 {
		return ErrInvalidKeeps
	}
	if list.EstimateSize <= 0 {
		return ErrInvalidEstimateSize
	}
	if list.Buffer < 0 {
		return ErrInvalidBuffer
	}
	if list.TopThreshold < 0 || list.BottomThreshold < 0 {
		return ErrInvalidThreshold
	}
	return nil
}
