package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/health"
	"github.com/ninadrathod/my-website/internal/server/render"
)

// HTTP serves GET /health and GET /ready.
type HTTP struct {
	checker *health.Checker
	log     *zap.Logger
}

// NewHTTP returns the HTTP health handler. checker may be nil.
func NewHTTP(checker *health.Checker, log *zap.Logger) *HTTP {
	if checker == nil {
		checker = health.NewChecker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTP{checker: checker, log: log}
}

type readyResponse struct {
	Status string          `json:"status"`
	Checks []health.Result `json:"checks"`
}

// Live answers 200 OK as long as the process serves requests.
func (h *HTTP) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Ready runs every readiness check; 503 when any fails.
func (h *HTTP) Ready(w http.ResponseWriter, r *http.Request) {
	results, err := h.checker.Check(r.Context())
	if err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		render.JSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable", Checks: results})
		return
	}
	render.JSON(w, http.StatusOK, readyResponse{Status: "ok", Checks: results})
}
