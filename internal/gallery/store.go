// Package gallery stores uploaded images on an afero filesystem.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FieldName is the multipart field carrying the upload. It also prefixes stored names.
const FieldName = "myImage"

var (
	// ErrNotFound is returned when deleting a name the store does not hold.
	ErrNotFound = errors.New("gallery: image not found")
	// ErrUnsupportedType is returned for uploads outside jpeg, jpg, png and gif.
	ErrUnsupportedType = errors.New("gallery: images only (jpeg, jpg, png, gif)")
	// ErrInvalidName is returned for names that are not a plain file name.
	ErrInvalidName = errors.New("gallery: invalid image name")
)

var allowed = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// CheckType reports whether both the file extension and the declared MIME type are images
// of a supported kind. The MIME type may carry parameters.
func CheckType(filename, contentType string) (ext string, err error) {
	ext = strings.ToLower(path.Ext(filename))
	if _, ok := allowed[ext]; !ok {
		return "", ErrUnsupportedType
	}
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch mt {
	case "image/jpeg", "image/jpg", "image/png", "image/gif":
		return ext, nil
	}
	return "", ErrUnsupportedType
}

// Store is the image file store rooted at a directory of fs.
type Store struct {
	fs    afero.Fs
	dir   string
	newID func() string
}

// NewStore returns a store over dir in fs, creating dir if needed.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if dir == "" {
		dir = "images"
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("gallery: create %s: %w", dir, err)
	}
	return &Store{fs: fs, dir: dir, newID: func() string { return uuid.NewString() }}, nil
}

// List returns the stored image names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("gallery: list: %w", err)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		names = append(names, fi.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Save writes r under a fresh name myImage-<uuid><ext> and returns that name.
func (s *Store) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	name := FieldName + "-" + s.newID() + ext
	f, err := s.fs.OpenFile(path.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("gallery: create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(path.Join(s.dir, name))
		return "", fmt.Errorf("gallery: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("gallery: close: %w", err)
	}
	return name, nil
}

// validName reports whether name is a single file name inside the image directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		name == path.Base(name) && !strings.ContainsAny(name, `/\`)
}

// Delete removes name. ErrNotFound when it does not exist.
func (s *Store) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	p := path.Join(s.dir, name)
	if _, err := s.fs.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("gallery: stat: %w", err)
	}
	if err := s.fs.Remove(p); err != nil {
		return fmt.Errorf("gallery: delete: %w", err)
	}
	return nil
}

// Open returns a reader over name for serving.
func (s *Store) Open(ctx context.Context, name string) (afero.File, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	f, err := s.fs.Open(path.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gallery: open: %w", err)
	}
	return f, nil
}
