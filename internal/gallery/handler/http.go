// Package handler serves the image gallery. Uploads and deletes are privileged and run the
// gate precheck before touching the file store.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/gallery"
	gatehandler "github.com/ninadrathod/my-website/internal/gate/handler"
	"github.com/ninadrathod/my-website/internal/policy/engine"
	"github.com/ninadrathod/my-website/internal/server/render"
)

// DefaultMaxBytes bounds one upload.
const DefaultMaxBytes = 10_000_000

// Guard runs the privileged-action precheck for a session.
type Guard interface {
	RequirePrivilege(ctx context.Context, sessionID string, action engine.Action) error
}

// Handler serves /gallery/images.
type Handler struct {
	store    *gallery.Store
	guard    Guard
	maxBytes int64
	log      *zap.Logger
}

// New returns a gallery handler. maxBytes <= 0 uses DefaultMaxBytes.
func New(store *gallery.Store, guard Guard, maxBytes int64, log *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, guard: guard, maxBytes: maxBytes, log: log}
}

// Routes mounts the gallery endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/gallery/images", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upload)
		r.Get("/{name}", h.Get)
		r.Delete("/{name}", h.Delete)
	})
}

type resultResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

// List returns the stored image names as a JSON array. Public.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error("gallery list failed", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "unable to scan directory")
		return
	}
	render.JSON(w, http.StatusOK, names)
}

// Get streams one image.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.store.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.storeErr(w, err)
		return
	}
	defer f.Close()
	var mod time.Time
	if fi, err := f.Stat(); err == nil {
		mod = fi.ModTime()
	}
	http.ServeContent(w, r, f.Name(), mod, f)
}

// Upload stores the multipart field myImage.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := h.guard.RequirePrivilege(r.Context(), render.SessionID(r), engine.ActionGalleryUpload); err != nil {
		gatehandler.WriteError(w, h.log, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		render.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(gallery.FieldName)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "no file selected")
		return
	}
	defer file.Close()
	ext, err := gallery.CheckType(header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	name, err := h.store.Save(r.Context(), ext, file)
	if err != nil {
		h.log.Error("gallery save failed", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	h.log.Info("image uploaded", zap.String("name", name), zap.Int64("bytes", header.Size))
	render.JSON(w, http.StatusOK, resultResponse{
		Success:  true,
		Message:  fmt.Sprintf("File uploaded successfully: %s", name),
		Filename: name,
	})
}

// Delete removes one image.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.guard.RequirePrivilege(r.Context(), render.SessionID(r), engine.ActionGalleryDelete); err != nil {
		gatehandler.WriteError(w, h.log, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.store.Delete(r.Context(), name); err != nil {
		h.storeErr(w, err)
		return
	}
	h.log.Info("image deleted", zap.String("name", name))
	render.JSON(w, http.StatusOK, resultResponse{Success: true, Message: fmt.Sprintf("Image '%s' deleted successfully.", name)})
}

func (h *Handler) storeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gallery.ErrNotFound):
		render.JSON(w, http.StatusNotFound, resultResponse{Message: "Image not found."})
	case errors.Is(err, gallery.ErrInvalidName):
		render.JSON(w, http.StatusBadRequest, resultResponse{Message: "Invalid image name."})
	default:
		h.log.Error("gallery store failed", zap.Error(err))
		render.JSON(w, http.StatusInternalServerError, resultResponse{Message: "Failed to access image."})
	}
}
