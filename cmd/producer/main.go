package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	kafkaBroker = "localhost:9092"
	topic       = "list-events"
)

var (
	sessions = flag.Int("sessions", 3, "Number of simulated lists")
	items    = flag.Int("items", 500, "Items per simulated list")
	interval = flag.Duration("interval", 200*time.Millisecond, "Delay between scroll samples")
)

// hostEvent mirrors the inbound event format the windowing service expects.
type hostEvent struct {
	Type       string    `json:"type"`
	Session    string    `json:"session"`
	Timestamp  time.Time `json:"timestamp"`
	Offset     float64   `json:"offset,omitempty"`
	ClientSize float64   `json:"clientSize,omitempty"`
	ScrollSize float64   `json:"scrollSize,omitempty"`
	ID         string    `json:"id,omitempty"`
	Size       float64   `json:"size,omitempty"`
	IDs        []string  `json:"ids,omitempty"`
}

// simulatedList scrolls back and forth over items of random height.
type simulatedList struct {
	name     string
	ids      []string
	sizes    []float64
	viewport float64
	offset   float64
	velocity float64
}

func newSimulatedList(name string, n int, rng *rand.Rand) *simulatedList {
	l := &simulatedList{
		name:     name,
		ids:      make([]string, n),
		sizes:    make([]float64, n),
		viewport: 600,
		velocity: 40 + rng.Float64()*120,
	}
	for i := range l.ids {
		l.ids[i] = fmt.Sprintf("%s-row-%d", name, i)
		l.sizes[i] = float64(30 + rng.Intn(60))
	}
	return l
}

func (l *simulatedList) scrollSize() float64 {
	var total float64
	for _, s := range l.sizes {
		total += s
	}
	return total
}

// step advances the scroll position, bouncing off either end.
func (l *simulatedList) step() hostEvent {
	limit := l.scrollSize() - l.viewport
	l.offset += l.velocity
	if l.offset > limit {
		l.offset = limit
		l.velocity = -l.velocity
	}
	if l.offset < 0 {
		l.offset = 0
		l.velocity = -l.velocity
	}
	return hostEvent{
		Type:       "scroll",
		Session:    l.name,
		Timestamp:  time.Now(),
		Offset:     l.offset,
		ClientSize: l.viewport,
		ScrollSize: l.scrollSize(),
	}
}

func (l *simulatedList) setup() []hostEvent {
	now := time.Now()
	events := []hostEvent{{Type: "sequence", Session: l.name, Timestamp: now, IDs: l.ids}}
	for i, id := range l.ids {
		events = append(events, hostEvent{Type: "resize", Session: l.name, Timestamp: now, ID: id, Size: l.sizes[i]})
	}
	return events
}

func main() {
	flag.Parse()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(kafkaBroker),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Fatalf("Error closing kafka writer: %v", err)
		}
	}()
	log.Printf("Starting list host simulator for topic: %s on broker: %s", topic, kafkaBroker)

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping producer...")
		cancel()
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	lists := make([]*simulatedList, *sessions)
	for i := range lists {
		lists[i] = newSimulatedList(fmt.Sprintf("list-%d", i), *items, rng)
		if err := send(ctx, writer, lists[i].setup()...); err != nil {
			log.Printf("Error writing setup events for %s: %v", lists[i].name, err)
			return
		}
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l := lists[rng.Intn(len(lists))]
			evt := l.step()
			if err := send(ctx, writer, evt); err != nil {
				if ctx.Err() != nil {
					log.Println("Context cancelled, exiting message loop.")
					return
				}
				log.Printf("Error writing message: %v", err)
			} else {
				log.Printf("Produced scroll: session=%s offset=%.0f", evt.Session, evt.Offset)
			}

		case <-ctx.Done():
			log.Println("Producer loop stopped.")
			return
		}
	}
}

func send(ctx context.Context, writer *kafka.Writer, events ...hostEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(evt.Session), Value: data})
	}
	return writer.WriteMessages(ctx, msgs...)
}
