package gallery

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestCheckType(t *testing.T) {
	tests := []struct {
		name, filename, contentType string
		ok                          bool
	}{
		{"png", "a.png", "image/png", true},
		{"upper ext", "A.JPG", "image/jpeg", true},
		{"jpeg", "a.jpeg", "image/jpeg; charset=binary", true},
		{"gif", "a.gif", "image/gif", true},
		{"bad ext", "a.bmp", "image/png", false},
		{"bad mime", "a.png", "text/plain", false},
		{"no ext", "png", "image/png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckType(tt.filename, tt.contentType)
			if tt.ok && err != nil {
				t.Errorf("CheckType: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("CheckType err = %v, want ErrUnsupportedType", err)
			}
		})
	}
}

func TestStore_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(afero.NewMemMapFs(), "images")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	names, err := s.List(ctx)
	if err != nil || len(names) != 0 {
		t.Fatalf("List on empty store = %v, %v", names, err)
	}

	name, err := s.Save(ctx, ".png", strings.NewReader("pngdata"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(name, "myImage-") || !strings.HasSuffix(name, ".png") {
		t.Errorf("name = %q, want myImage-<uuid>.png", name)
	}
	other, err := s.Save(ctx, ".gif", strings.NewReader("gifdata"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if other == name {
		t.Error("each save should get a fresh name")
	}

	names, _ = s.List(ctx)
	if len(names) != 2 {
		t.Fatalf("List = %v, want 2 names", names)
	}

	if err := s.Delete(ctx, name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, name); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
	for _, bad := range []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`} {
		if err := s.Delete(ctx, bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Delete(%q) err = %v, want ErrInvalidName", bad, err)
		}
	}
}

func TestStore_Open(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(afero.NewMemMapFs(), "images")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	name, err := s.Save(ctx, ".png", strings.NewReader("pngdata"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := s.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, err := io.ReadAll(f)
	f.Close()
	if err != nil || string(body) != "pngdata" {
		t.Errorf("Open content = %q, %v, want pngdata", body, err)
	}

	if _, err := s.Open(ctx, "myImage-missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open missing err = %v, want ErrNotFound", err)
	}

	// "." would otherwise resolve to the image directory itself.
	for _, bad := range []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`} {
		if _, err := s.Open(ctx, bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Open(%q) err = %v, want ErrInvalidName", bad, err)
		}
	}
}
