// Package producer defines the interface for publishing gate events (e.g. to Kafka).
package producer

import "github.com/ninadrathod/my-website/internal/telemetry"

// Producer publishes gate events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	telemetry.EventEmitter
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
