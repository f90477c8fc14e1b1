package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/virtuallist/internal/config"
	"github.com/sanspareilsmyn/virtuallist/internal/message"
)

// Pipeline orchestrates the stages: consumer, parsing, tracking, publishing.
type Pipeline struct {
	cfg       *config.Config
	consumer  *Consumer
	tracker   *Tracker
	publisher *Publisher
	logger    *zap.Logger

	rawMessages chan []byte
	events      chan message.Event
	updates     chan message.Update
}

// New creates and wires up a pipeline backed by Kafka.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	reader, err := newKafkaReader(cfg.Kafka, logger.Named("consumer"))
	if err != nil {
		logger.Error("Failed to create consumer", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
	}
	writer := newKafkaWriter(cfg.Kafka, logger.Named("publisher"))
	return newPipeline(cfg, reader, writer, logger), nil
}

// newPipeline wires the stages around an arbitrary reader and writer.
// A nil writer disables publishing.
func newPipeline(cfg *config.Config, reader messageReader, writer MessageWriter, logger *zap.Logger) *Pipeline {
	initLogger := logger.Named("pipeline.init")
	initLogger.Debug("Creating pipeline components...")

	bufferSize := cfg.Pipeline.ChannelBufferSize
	rawMessages := make(chan []byte, bufferSize)
	events := make(chan message.Event, bufferSize)
	updates := make(chan message.Update, bufferSize)
	initLogger.Debug("Channels created", zap.Int("bufferSize", bufferSize))

	p := &Pipeline{
		cfg:         cfg,
		consumer:    newConsumer(reader, rawMessages, logger.Named("consumer")),
		tracker:     NewTracker(cfg.Pipeline, cfg.List, events, updates, logger.Named("tracker")),
		publisher:   NewPublisher(writer, updates, logger.Named("publisher")),
		logger:      logger.Named("pipeline"),
		rawMessages: rawMessages,
		events:      events,
		updates:     updates,
	}

	initLogger.Info("Pipeline instance created successfully")
	return p
}

// Run starts all pipeline components and waits for them to complete or context cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	var wg sync.WaitGroup
	pipelineErr := make(chan error, 4) // consumer, parser, tracker, publisher

	sugar.Info("Pipeline Run: Starting components...")

	wg.Add(4)
	go p.runConsumer(ctx, &wg, pipelineErr)
	go p.runParser(ctx, &wg)
	go p.runTracker(ctx, &wg, pipelineErr)
	go p.runPublisher(ctx, &wg, pipelineErr)

	var firstErr error
	select {
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for components to finish...")
		firstErr = ctx.Err()
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a component, initiating shutdown...", zap.Error(err))
		firstErr = err
	}

	sugar.Debug("Pipeline Run: Waiting on WaitGroup...")
	wg.Wait()
	sugar.Info("Pipeline Run: All components finished.")

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

// ActiveSessions reports how many list sessions the tracker holds.
func (p *Pipeline) ActiveSessions() int {
	return p.tracker.ActiveSessions()
}

func (p *Pipeline) runConsumer(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.rawMessages)
		p.logger.Debug("Raw messages channel closed")
	}()

	p.logger.Debug("Starting consumer goroutine...")
	if err := p.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Consumer component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrConsumerRunFailed, err)
	} else if err == nil {
		p.logger.Debug("Consumer goroutine finished normally")
	} else {
		p.logger.Debug("Consumer goroutine cancelled gracefully")
	}
}

// runParser decodes raw payloads into events. Rejected payloads are counted and skipped.
func (p *Pipeline) runParser(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		close(p.events)
		p.logger.Debug("Events channel closed")
	}()

	parserLogger := p.logger.Named("parser").Sugar()
	parserLogger.Debug("Starting parser goroutine...")

	for {
		select {
		case rawMsg, ok := <-p.rawMessages:
			if !ok {
				parserLogger.Debug("Parser finished (raw message channel closed).")
				return
			}

			evt, err := message.ParseEvent(rawMsg)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, message.ErrJSONUnmarshalFailed) {
					reason = "malformed"
				}
				eventsRejected.WithLabelValues(reason).Inc()
				parserLogger.Warnw("Failed to parse event, skipping",
					zap.String("reason", reason),
					zap.String("payload", message.Snippet(rawMsg, 128)),
					zap.Error(err),
				)
				continue
			}

			select {
			case p.events <- evt:
			case <-ctx.Done():
				parserLogger.Debug("Parser context cancelled during send.", zap.Error(ctx.Err()))
				return
			}

		case <-ctx.Done():
			parserLogger.Debug("Parser context cancelled while waiting for raw message.", zap.Error(ctx.Err()))
			return
		}
	}
}

func (p *Pipeline) runTracker(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.updates)
		p.logger.Debug("Updates channel closed")
	}()

	p.logger.Debug("Starting tracker goroutine...")
	if err := p.tracker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Tracker component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrTrackerRunFailed, err)
	} else if err == nil {
		p.logger.Debug("Tracker goroutine finished normally")
	} else {
		p.logger.Debug("Tracker goroutine cancelled gracefully")
	}
}

func (p *Pipeline) runPublisher(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()

	p.logger.Debug("Starting publisher goroutine...")
	if err := p.publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Publisher component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrPublisherRunFailed, err)
	} else if err == nil {
		p.logger.Debug("Publisher goroutine finished normally")
	} else {
		p.logger.Debug("Publisher goroutine cancelled gracefully")
	}
}
