package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig     = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed       = errors.New("failed to fetch message from Kafka")
	ErrKafkaCommitFailed      = errors.New("failed to commit Kafka offset")
	ErrConsumerCreationFailed = errors.New("failed to create consumer")
	ErrConsumerRunFailed      = errors.New("consumer component failed")
	ErrTrackerRunFailed       = errors.New("tracker component failed")
	ErrPublisherRunFailed     = errors.New("publisher component failed")
	ErrPublishFailed          = errors.New("failed to publish update")
)
