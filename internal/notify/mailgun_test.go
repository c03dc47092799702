package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMailgunNotifier_Send(t *testing.T) {
	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/mg.example.com/messages") {
			t.Errorf("path = %q, want .../mg.example.com/messages", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "api" || pass != "key-123" {
			t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
		}
		form = map[string]string{
			"from":    r.FormValue("from"),
			"to":      r.FormValue("to"),
			"subject": r.FormValue("subject"),
			"text":    r.FormValue("text"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"<20260101.1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer server.Close()

	n := NewMailgunNotifier("mg.example.com", "key-123", server.URL+"/v3", "no-reply@example.com")
	msg := Message{To: "admin@example.com", Subject: "Your admin login code", Body: "Your code is 48213"}
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if form["from"] != "no-reply@example.com" || form["to"] != msg.To || form["subject"] != msg.Subject || form["text"] != msg.Body {
		t.Errorf("form = %v", form)
	}
}

func TestMailgunNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`Forbidden`))
	}))
	defer server.Close()

	n := NewMailgunNotifier("mg.example.com", "bad", server.URL+"/v3", "no-reply@example.com")
	if err := n.Send(context.Background(), Message{To: "admin@example.com", Subject: "s", Body: "b"}); err == nil {
		t.Fatal("Send against failing API should return error")
	}
}

func TestMailgunNotifier_NotConfigured(t *testing.T) {
	n := NewMailgunNotifier("", "", "", "no-reply@example.com")
	if err := n.Send(context.Background(), Message{To: "admin@example.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
