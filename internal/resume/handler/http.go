// Package handler serves the read-only resume routes under /backend-api.
package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/resume/repository"
	"github.com/ninadrathod/my-website/internal/server/render"
)

// Handler serves resume documents. A nil repository means the store is not connected.
type Handler struct {
	repo repository.Repository
	log  *zap.Logger
}

// New returns a resume handler. repo may be nil; every route then answers 500.
func New(repo repository.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{repo: repo, log: log}
}

// Routes mounts the resume endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/backend-api", func(r chi.Router) {
		r.Get("/data", h.All)
		r.Get("/data/{category}", h.ByCategory)
		r.Get("/metadata/{property}", h.Metadata)
	})
}

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) connected(w http.ResponseWriter) bool {
	if h.repo == nil {
		render.JSON(w, http.StatusInternalServerError, errorResponse{Error: "Database connection not established."})
		return false
	}
	return true
}

// All handles GET /backend-api/data.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	if !h.connected(w) {
		return
	}
	docs, err := h.repo.All(r.Context())
	if err != nil {
		h.log.Error("fetch resume data failed", zap.Error(err))
		render.JSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch resume data."})
		return
	}
	render.JSON(w, http.StatusOK, dataResponse{Data: docs})
}

// ByCategory handles GET /backend-api/data/{category}.
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	if !h.connected(w) {
		return
	}
	category := chi.URLParam(r, "category")
	docs, err := h.repo.ByCategory(r.Context(), category)
	if err != nil {
		h.log.Error("fetch resume category failed", zap.String("category", category), zap.Error(err))
		render.JSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("Failed to fetch data for category: '%s'", category)})
		return
	}
	render.JSON(w, http.StatusOK, dataResponse{Data: docs})
}

// Metadata handles GET /backend-api/metadata/{property}. 404 when the property is absent.
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	if !h.connected(w) {
		return
	}
	property := chi.URLParam(r, "property")
	doc, err := h.repo.Metadata(r.Context())
	if err != nil {
		h.log.Error("fetch resume metadata failed", zap.String("property", property), zap.Error(err))
		render.JSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("Failed to fetch metadata item: '%s'", property)})
		return
	}
	v, ok := doc[property]
	if !ok {
		render.JSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("Item '%s' not found in metadata.", property)})
		return
	}
	render.JSON(w, http.StatusOK, dataResponse{Data: v})
}
