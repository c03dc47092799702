package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/ninadrathod/my-website/internal/telemetry"
)

const scopeName = "portfolio-gate.events"

// recordEmitter is the part of otellog.Logger the adapter uses.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(scopeName))
}

// NewEventEmitterWithLogger wraps any record emitter, typically an otellog.Logger.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.Event) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

func severity(t telemetry.EventType) (otellog.Severity, string) {
	switch t {
	case telemetry.EventOTPRejected, telemetry.EventPrivilegedDenied, telemetry.EventSessionInvalidated:
		return otellog.SeverityWarn, "WARN"
	default:
		return otellog.SeverityInfo, "INFO"
	}
}

// Emit converts the event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	sev, text := severity(event.Type)
	rec.SetSeverity(sev)
	rec.SetSeverityText(text)
	rec.SetBody(otellog.StringValue(string(event.Type)))

	add := func(key, value string) {
		if value != "" {
			rec.AddAttributes(otellog.String(key, value))
		}
	}
	add("event_type", string(event.Type))
	add("session_id", event.SessionID)
	add("email", event.Email)
	add("action", event.Action)
	add("outcome", event.Outcome)
	add("source", event.Source)
	for k, v := range event.Metadata {
		add("meta."+k, v)
	}
	e.logger.Emit(ctx, rec)
	return nil
}
