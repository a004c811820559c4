// Package events provides the in-process channel-keyed pub/sub bus used
// for job lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
)

// subscriberBuffer bounds each subscriber's pending messages. A slow
// consumer drops messages rather than blocking the pipeline.
const subscriberBuffer = 256

// JobChannel returns the event channel name for a job.
func JobChannel(jobID string) string {
	return "job:" + jobID + ":events"
}

type subscriber struct {
	ch   chan []byte
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Bus implements EventService with per-channel subscriber sets.
// Publish order is preserved per channel; delivery is best-effort.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	logger arbor.ILogger
}

// NewBus creates a new event bus.
func NewBus(logger arbor.ILogger) interfaces.EventService {
	return &Bus{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger,
	}
}

// Publish serializes the payload and delivers it to every subscriber of
// the channel. Failures are logged and swallowed.
func (b *Bus) Publish(ctx context.Context, channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn().Err(err).Str("channel", channel).Msg("Failed to serialize event payload")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for sub := range b.subs[channel] {
		select {
		case sub.ch <- data:
		default:
			b.logger.Warn().Str("channel", channel).Msg("Subscriber buffer full, event dropped")
		}
	}
}

// Subscribe registers a new subscriber on the channel.
func (b *Bus) Subscribe(channel string) (<-chan []byte, func()) {
	sub := &subscriber{ch: make(chan []byte, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*subscriber]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if set, ok := b.subs[channel]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(b.subs, channel)
			}
		}
		b.mu.Unlock()
		sub.close()
	}

	return sub.ch, unsubscribe
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for channel, set := range b.subs {
		for sub := range set {
			sub.close()
		}
		delete(b.subs, channel)
	}

	return nil
}
