package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeRepo struct {
	docs []bson.M
	meta bson.M
	err  error
}

func (f *fakeRepo) All(ctx context.Context) ([]bson.M, error) { return f.docs, f.err }

func (f *fakeRepo) ByCategory(ctx context.Context, category string) ([]bson.M, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []bson.M{}
	for _, d := range f.docs {
		if d["category"] == category {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) Metadata(ctx context.Context) (bson.M, error) { return f.meta, f.err }

func (f *fakeRepo) Ping(ctx context.Context) error { return f.err }

func serve(t *testing.T, h *Handler, target string) (int, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Routes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestResumeRoutes(t *testing.T) {
	repo := &fakeRepo{
		docs: []bson.M{
			{"category": "education", "title": "BSc"},
			{"category": "experience", "title": "Engineer"},
			{"category": "experience", "title": "Intern"},
		},
		meta: bson.M{"name": "Ninad", "links": bson.A{"a", "b"}},
	}
	h := New(repo, nil)

	tests := []struct {
		name   string
		target string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{"all", "/backend-api/data", http.StatusOK, func(t *testing.T, body map[string]any) {
			if got := len(body["data"].([]any)); got != 3 {
				t.Errorf("len(data) = %d, want 3", got)
			}
		}},
		{"category", "/backend-api/data/experience", http.StatusOK, func(t *testing.T, body map[string]any) {
			if got := len(body["data"].([]any)); got != 2 {
				t.Errorf("len(data) = %d, want 2", got)
			}
		}},
		{"empty category", "/backend-api/data/awards", http.StatusOK, func(t *testing.T, body map[string]any) {
			if got := len(body["data"].([]any)); got != 0 {
				t.Errorf("len(data) = %d, want 0", got)
			}
		}},
		{"metadata", "/backend-api/metadata/name", http.StatusOK, func(t *testing.T, body map[string]any) {
			if body["data"] != "Ninad" {
				t.Errorf("data = %v, want Ninad", body["data"])
			}
		}},
		{"missing metadata", "/backend-api/metadata/phone", http.StatusNotFound, func(t *testing.T, body map[string]any) {
			if body["error"] != "Item 'phone' not found in metadata." {
				t.Errorf("error = %v", body["error"])
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := serve(t, h, tt.target)
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			tt.check(t, body)
		})
	}
}

func TestResumeRoutes_NoMetadataDocument(t *testing.T) {
	status, _ := serve(t, New(&fakeRepo{}, nil), "/backend-api/metadata/name")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestResumeRoutes_StoreErrors(t *testing.T) {
	for _, h := range []*Handler{New(nil, nil), New(&fakeRepo{err: errors.New("server selection timeout")}, nil)} {
		for _, target := range []string{"/backend-api/data", "/backend-api/data/x", "/backend-api/metadata/x"} {
			status, body := serve(t, h, target)
			if status != http.StatusInternalServerError {
				t.Errorf("%s status = %d, want 500", target, status)
			}
			if body["error"] == "" {
				t.Errorf("%s error message missing", target)
			}
		}
	}
}
