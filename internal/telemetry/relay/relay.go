// Package relay moves gate events from Kafka to Loki.
package relay

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const pushTimeout = 10 * time.Second

// Reader is the subset of *kafka.Reader the relay needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Sink receives raw event JSON (loki.Client satisfies it).
type Sink interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

// Relay copies every message from Reader to Sink. Messages are committed after the push is
// attempted, so a failed push is logged and skipped rather than retried forever.
type Relay struct {
	reader Reader
	sink   Sink
	log    *zap.Logger
}

func New(reader Reader, sink Sink, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{reader: reader, sink: sink, log: log}
}

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (r *Relay) Run(ctx context.Context) error {
	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.log.Warn("relay: kafka read error", zap.Error(err))
			continue
		}

		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		if err := r.sink.PushEventJSON(pushCtx, msg.Value); err != nil {
			r.log.Warn("relay: loki push failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
		cancel()

		if err := r.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			r.log.Warn("relay: commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}
