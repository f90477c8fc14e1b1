package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/virtuallist/internal/config"
	"github.com/sanspareilsmyn/virtuallist/internal/message"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher records metrics for every update and forwards it to the output topic.
type Publisher struct {
	writer MessageWriter // nil when no output topic is configured
	input  <-chan message.Update
	logger *zap.Logger
}

// newKafkaWriter returns nil when publishing is disabled. Messages are keyed by
// session so updates of one list stay ordered within a partition.
func newKafkaWriter(cfg config.KafkaConfig, logger *zap.Logger) MessageWriter {
	if cfg.OutputTopic == "" {
		logger.Info("No output topic configured, updates are only logged and measured")
		return nil
	}

	logger.Info("Kafka publisher created",
		zap.String("topic", cfg.OutputTopic),
		zap.Strings("brokers", cfg.Brokers),
	)
	return &kafka.Writer{
		Addr:        kafka.TCP(cfg.Brokers...),
		Topic:       cfg.OutputTopic,
		Balancer:    &kafka.Hash{},
		Logger:      kafkaZapLogger{logger.Named("kafka-writer").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-writer-error").WithOptions(zap.AddCallerSkip(1))},
	}
}

// NewPublisher creates a new Publisher instance.
func NewPublisher(writer MessageWriter, input <-chan message.Update, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		input:  input,
		logger: logger,
	}
}

// Run starts the publisher loop.
func (p *Publisher) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	sugar.Info("Starting publisher loop...")
	defer func() {
		if p.writer != nil {
			if err := p.writer.Close(); err != nil {
				sugar.Errorw("Failed to close Kafka writer cleanly", zap.Error(err))
			}
		}
		sugar.Info("Publisher loop stopped.")
	}()

	for {
		select {
		case u, ok := <-p.input:
			if !ok {
				sugar.Info("Publisher input channel closed.")
				return nil
			}
			if err := p.publish(ctx, u); err != nil && errors.Is(err, context.Canceled) {
				return ctx.Err()
			}

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping publisher.")
			return ctx.Err()
		}
	}
}

// publish updates metrics, logs, and writes the update out. Write failures are
// counted and logged; they never stop the loop.
func (p *Publisher) publish(ctx context.Context, u message.Update) error {
	p.observe(u)

	if p.writer == nil {
		return nil
	}

	data, err := message.EncodeUpdate(u)
	if err != nil {
		publishFailures.Inc()
		p.logger.Error("Failed to encode update", zap.String("session", u.Session), zap.Error(err))
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(u.Session), Value: data}); err != nil {
		if ctx.Err() != nil {
			return context.Canceled
		}
		publishFailures.Inc()
		p.logger.Error("Failed to write update",
			zap.String("session", u.Session),
			zap.String("kind", string(u.Kind)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

func (p *Publisher) observe(u message.Update) {
	sugar := p.logger.Sugar()

	switch u.Kind {
	case message.UpdateRange:
		if u.Range == nil {
			return
		}
		rangeCommits.Inc()
		rangePadding.WithLabelValues("front").Observe(u.Range.PadFront)
		rangePadding.WithLabelValues("behind").Observe(u.Range.PadBehind)
		sugar.Debugw("Range update",
			zap.String("session", u.Session),
			zap.Int("start", u.Range.Start),
			zap.Int("end", u.Range.End),
			zap.Float64("pad_front", u.Range.PadFront),
			zap.Float64("pad_behind", u.Range.PadBehind),
		)

	case message.UpdateEdge:
		edgeEvents.WithLabelValues(u.Edge).Inc()
		sugar.Debugw("Edge reached", zap.String("session", u.Session), zap.String("edge", u.Edge))

	case message.UpdateTarget:
		if u.Target == nil {
			return
		}
		scrollTargets.Inc()
		sugar.Debugw("Scroll target resolved",
			zap.String("session", u.Session),
			zap.Int("index", u.Target.Index),
			zap.Float64("offset", u.Target.Offset),
			zap.Bool("bottom", u.Target.Bottom),
		)
	}
}
