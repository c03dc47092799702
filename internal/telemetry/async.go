package telemetry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration bounds how long shutdown waits for in-flight emits. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// Dispatcher runs emits in goroutines so request handlers are not blocked.
// A nil *Dispatcher drops every event.
type Dispatcher struct {
	emitter EventEmitter
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher over emitter. It returns nil when emitter is nil.
func NewDispatcher(emitter EventEmitter, log *zap.Logger) *Dispatcher {
	if emitter == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{emitter: emitter, log: log}
}

// Emit sends event in the background. The goroutine uses context.Background() with emitTimeout
// so request cancellation does not abort an in-flight emit. Errors are logged.
func (d *Dispatcher) Emit(event *Event) {
	if d == nil || event == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := d.emitter.Emit(ctx, event); err != nil {
			d.log.Warn("telemetry: async emit failed",
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}()
}

// Drain waits for in-flight emits or until ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
