package config

import "errors"

var (
	ErrReadingConfigFile      = errors.New("failed to read config file")
	ErrUnmarshallingConfig    = errors.New("failed to unmarshal config")
	ErrConfigFileMissing      = errors.New("config file not found")
	ErrEmptyKafkaBrokers      = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic        = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID      = errors.New("kafka groupID cannot be empty")
	ErrInvalidKeeps           = errors.New("list keeps must be positive")
	ErrInvalidEstimateSize    = errors.New("list estimateSize must be positive")
	ErrInvalidBuffer          = errors.New("list buffer cannot be negative")
	ErrInvalidThreshold       = errors.New("list thresholds cannot be negative")
	ErrInvalidIdleTimeout     = errors.New("pipeline sessionIdleTimeout must be positive")
	ErrInvalidEvictInterval   = errors.New("pipeline evictionInterval must be positive")
	ErrInvalidChannelBuffer   = errors.New("pipeline channelBufferSize must be positive")
	ErrEmptyMetricsListenAddr = errors.New("metrics listenAddr cannot be empty when metrics are enabled")
)
