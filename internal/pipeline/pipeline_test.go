package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sanspareilsmyn/virtuallist/internal/config"
	"github.com/sanspareilsmyn/virtuallist/internal/message"
)

func testConfig() *config.Config {
	return &config.Config{
		List:     testListConfig(),
		Pipeline: testPipelineConfig(),
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	ids := make([]int, 100)
	for i := range ids {
		ids[i] = i
	}

	payloads := [][]byte{
		payload(t, map[string]any{"type": "sequence", "session": "feed", "ids": ids}),
		[]byte(`{not json`),
		payload(t, map[string]any{"type": "resize", "session": "feed", "size": 50}),
	}
	for _, id := range ids {
		payloads = append(payloads, payload(t, map[string]any{"type": "resize", "session": "feed", "id": id, "size": 50}))
	}
	payloads = append(payloads,
		payload(t, map[string]any{"type": "scroll", "session": "feed", "offset": -30, "clientSize": 400, "scrollSize": 5000}),
		payload(t, map[string]any{"type": "scroll", "session": "feed", "offset": 600, "clientSize": 400, "scrollSize": 5000}),
	)

	malformedBefore := testutil.ToFloat64(eventsRejected.WithLabelValues("malformed"))
	invalidBefore := testutil.ToFloat64(eventsRejected.WithLabelValues("invalid"))

	reader := newFakeReader(payloads...)
	writer := &fakeWriter{}
	p := newPipeline(testConfig(), reader, writer, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return writer.count() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return reader.commitCount() == len(payloads) }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, p.ActiveSessions())

	cancel()
	require.NoError(t, <-done)

	updates := writer.updates(t)
	require.Len(t, updates, 2)
	assert.Equal(t, message.UpdateRange, updates[0].Kind)
	assert.Equal(t, &message.Range{Start: 0, End: 9, PadFront: 0, PadBehind: 4500}, updates[0].Range)
	assert.Equal(t, &message.Range{Start: 12, End: 21, PadFront: 600, PadBehind: 3900}, updates[1].Range)

	assert.Equal(t, malformedBefore+1, testutil.ToFloat64(eventsRejected.WithLabelValues("malformed")))
	assert.Equal(t, invalidBefore+1, testutil.ToFloat64(eventsRejected.WithLabelValues("invalid")))
	assert.True(t, writer.closed)
	assert.True(t, reader.isClosed())
	assert.Equal(t, 0, p.ActiveSessions())
}

func TestPipeline_ConsumerFailureStopsRun(t *testing.T) {
	reader := newFakeReader()
	reader.fetchErr = errors.New("broker unreachable")
	p := newPipeline(testConfig(), reader, &fakeWriter{}, zaptest.NewLogger(t))

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConsumerRunFailed)
	assert.ErrorIs(t, err, ErrKafkaFetchFailed)
}

func TestNew_RejectsInvalidKafkaConfig(t *testing.T) {
	_, err := New(testConfig(), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrConsumerCreationFailed)
	assert.ErrorIs(t, err, ErrInvalidKafkaConfig)
}
