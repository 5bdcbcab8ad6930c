// Package broadcaster publishes trade events to the downstream feed.
// Each matching worker hands events off through its own SPSC ring so
// the hot path never blocks on the network; one broadcaster goroutine
// drains every attached ring on a short ticker and publishes through a
// Producer.
package broadcaster

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"kestrel/infra/ring"
)

// Event is one published fill. EventID is assigned at publish time so
// the matching worker never touches the uuid generator.
type Event struct {
	EventID        string `json:"event_id"`
	Symbol         string `json:"symbol"`
	RestingClient  string `json:"resting_client"`
	IncomingClient string `json:"incoming_client"`
	RestingPx      int64  `json:"resting_px"`
	IncomingPx     int64  `json:"incoming_px"`
	Qty            int64  `json:"qty"`
	UnixNano       int64  `json:"ts"`
}

// Producer is the egress transport. The production implementation is
// infra/kafka; tests substitute an in-memory fake.
type Producer interface {
	Send(ctx context.Context, key, value []byte) error
	Close() error
}

type Broadcaster struct {
	producer Producer
	interval time.Duration

	mu    sync.Mutex
	rings []*ring.SPSC[Event]
}

func New(producer Producer, interval time.Duration) *Broadcaster {
	return &Broadcaster{
		producer: producer,
		interval: interval,
	}
}

// Attach registers an engine's feed ring. The broadcaster becomes the
// ring's sole consumer.
func (b *Broadcaster) Attach(r *ring.SPSC[Event]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rings = append(b.rings, r)
}

// Run drains attached rings until the context ends, then performs one
// final sweep so events queued before shutdown still go out.
func (b *Broadcaster) Run(ctx context.Context) {
	log.Info().Dur("interval", b.interval).Msg("broadcaster started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.drainOnce(context.Background())
			log.Info().Msg("broadcaster stopped")
			return
		case <-ticker.C:
			b.drainOnce(ctx)
		}
	}
}

func (b *Broadcaster) drainOnce(ctx context.Context) {
	b.mu.Lock()
	rings := b.rings
	b.mu.Unlock()

	for _, r := range rings {
		for {
			ev, ok := r.Pop()
			if !ok {
				break
			}
			b.publish(ctx, ev)
		}
	}
}

// publish is best effort: a failed send is logged and the event is
// dropped, never retried.
func (b *Broadcaster) publish(ctx context.Context, ev Event) {
	ev.EventID = uuid.NewString()
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("symbol", ev.Symbol).Msg("encode trade event")
		return
	}
	if err := b.producer.Send(ctx, []byte(ev.Symbol), payload); err != nil {
		log.Error().Err(err).Str("symbol", ev.Symbol).Msg("publish trade event")
	}
}

// Close releases the producer.
func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
