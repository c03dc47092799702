package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewWebhookNotifier_Defaults(t *testing.T) {
	n := NewWebhookNotifier("https://relay.example.com/mail", "")
	if n.HTTPClient == nil {
		t.Fatal("HTTPClient should be set")
	}
	if n.HTTPClient.Timeout != defaultTimeout {
		t.Errorf("HTTPClient.Timeout = %v, want %v", n.HTTPClient.Timeout, defaultTimeout)
	}
}

func TestWebhookNotifier_Send(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want %q", r.Method, http.MethodPost)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "test-api-key" {
			t.Errorf("Authorization = %q, want test-api-key", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, "test-api-key")
	msg := Message{To: "admin@example.com", Subject: "code", Body: "Your code is 48213"}
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.To != msg.To || got.Subject != msg.Subject || got.Body != msg.Body {
		t.Errorf("payload = %+v, want %+v", got, msg)
	}
}

func TestWebhookNotifier_NoAuthHeaderWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("Authorization = %q, want empty", r.Header.Get("Authorization"))
		}
	}))
	defer server.Close()

	if err := NewWebhookNotifier(server.URL, "").Send(context.Background(), Message{To: "a@b.c"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestWebhookNotifier_MissingURL(t *testing.T) {
	err := NewWebhookNotifier("", "").Send(context.Background(), Message{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestWebhookNotifier_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"relay down"}`))
	}))
	defer server.Close()

	err := NewWebhookNotifier(server.URL, "").Send(context.Background(), Message{To: "a@b.c"})
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "status=502") || !strings.Contains(err.Error(), "relay down") {
		t.Errorf("error message = %q, want status and body", err.Error())
	}
}

func TestWebhookNotifier_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewWebhookNotifier(server.URL, "").Send(ctx, Message{To: "a@b.c"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}
