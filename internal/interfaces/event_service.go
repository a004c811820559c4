package interfaces

import "context"

// EventService is an in-process channel-keyed pub/sub bus used for job
// lifecycle events. Publish is best-effort: failures are logged and
// swallowed so a broker problem never propagates into the pipeline.
type EventService interface {
	// Publish serializes the payload as JSON and delivers it to every
	// subscriber of the channel in publish order.
	Publish(ctx context.Context, channel string, payload any)

	// Subscribe returns a receive channel and an unsubscribe function.
	// The channel is closed on unsubscribe or service shutdown.
	Subscribe(channel string) (<-chan []byte, func())

	Close() error
}
