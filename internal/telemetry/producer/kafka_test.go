package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ninadrathod/my-website/internal/telemetry"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	closed   int
	deadline bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed++
	return nil
}

var _ Producer = (*KafkaProducer)(nil)

func TestNewKafkaProducer_Unconfigured(t *testing.T) {
	if p := NewKafkaProducer(nil, "gate-events"); p != nil {
		t.Error("no brokers should yield nil producer")
	}
	if p := NewKafkaProducer([]string{"localhost:9092"}, ""); p != nil {
		t.Error("no topic should yield nil producer")
	}
	var p *KafkaProducer
	if err := p.Emit(context.Background(), &telemetry.Event{}); err != nil {
		t.Errorf("nil producer Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil producer Close: %v", err)
	}
}

func TestNewKafkaProducer_Configured(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, "gate-events")
	if p == nil {
		t.Fatal("NewKafkaProducer returned nil")
	}
	if p.Topic() != "gate-events" {
		t.Errorf("Topic() = %q, want %q", p.Topic(), "gate-events")
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestKafkaProducer_Emit(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "gate-events"}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	event := telemetry.NewEvent(telemetry.EventOTPVerified, "sess-1", at)
	event.Outcome = "match"

	if err := p.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "sess-1" {
		t.Errorf("key = %q, want %q", msg.Key, "sess-1")
	}
	if !w.deadline {
		t.Error("write context should carry a deadline")
	}
	var got telemetry.Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if got.Type != telemetry.EventOTPVerified || got.Outcome != "match" || !got.CreatedAt.Equal(at) {
		t.Errorf("decoded event = %+v", got)
	}
}

func TestKafkaProducer_EmitError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := &KafkaProducer{writer: w, topic: "gate-events"}
	if err := p.Emit(context.Background(), telemetry.NewEvent(telemetry.EventOTPIssued, "s", time.Now())); err == nil {
		t.Fatal("Emit should return the writer error")
	}
	if err := p.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(nil) = %v", err)
	}
}
