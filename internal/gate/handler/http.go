// Package handler exposes the authorization gate over HTTP.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/gate"
	"github.com/ninadrathod/my-website/internal/server/render"
	"github.com/ninadrathod/my-website/internal/session"
)

const maxBodyBytes = 4 << 10

// Handler serves the /session and /auth routes.
type Handler struct {
	gate     *gate.Gate
	validate *validator.Validate
	log      *zap.Logger
}

// New returns a handler over g. log may be nil.
func New(g *gate.Gate, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{gate: g, validate: validator.New(validator.WithRequiredStructEnabled()), log: log}
}

// Routes mounts the gate endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/exists", h.Exists)
		r.Get("/valid", h.Valid)
		r.Post("/authorize", h.Authorize)
		r.Post("/invalidate", h.Invalidate)
	})
	r.Route("/auth", func(r chi.Router) {
		r.Get("/is-admin/{email}", h.IsAdmin)
		r.Get("/otp/send/{email}", h.SendOTP)
		r.Get("/otp/verify/{code}", h.VerifyOTP)
	})
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

type validResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
}

type authorizeRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	Grant     string `json:"grant" validate:"required,jwt"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type authorizeResponse struct {
	Success   bool      `json:"success"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sendResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type verifyResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Grant     string     `json:"grant,omitempty"`
}

// Exists handles GET /session/exists?sessionId=.
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.gate.Exists(r.Context(), render.SessionID(r))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.JSON(w, http.StatusOK, existsResponse{Exists: ok})
}

// Valid handles GET /session/valid?sessionId=.
func (h *Handler) Valid(w http.ResponseWriter, r *http.Request) {
	v, err := h.gate.Validity(r.Context(), render.SessionID(r))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.JSON(w, http.StatusOK, validResponse{Valid: v.Valid, Reason: string(v.Reason)})
}

// Authorize handles POST /session/authorize with {sessionId, grant}.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.gate.Authorize(r.Context(), req.SessionID, req.Grant)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.JSON(w, http.StatusOK, authorizeResponse{Success: true, ExpiresAt: v.ExpiresAt})
}

// Invalidate handles POST /session/invalidate with {sessionId}.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.gate.Logout(r.Context(), req.SessionID); err != nil {
		h.writeErr(w, err)
		return
	}
	render.JSON(w, http.StatusOK, successResponse{Success: true})
}

// IsAdmin handles GET /auth/is-admin/{email}.
func (h *Handler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, successResponse{Success: h.gate.IsAdmin(chi.URLParam(r, "email"))})
}

// SendOTP handles GET /auth/otp/send/{email}; the session comes from sessionId or X-Session-ID.
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	sent, err := h.gate.SendOTP(r.Context(), render.SessionID(r), email)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	msg := "OTP sent to email"
	if sent.DevMode {
		msg = "OTP issued (dev mode)"
	}
	render.JSON(w, http.StatusOK, sendResponse{Message: msg, Email: sent.Email})
}

// VerifyOTP handles GET /auth/otp/verify/{code}.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.gate.VerifyOTP(r.Context(), render.SessionID(r), chi.URLParam(r, "code"))
	if errors.Is(err, gate.ErrInvalidCode) {
		render.JSON(w, http.StatusUnauthorized, verifyResponse{Success: false, Message: "Invalid OTP"})
		return
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	render.JSON(w, http.StatusOK, verifyResponse{
		Success:   true,
		Message:   "OTP verified",
		ExpiresAt: &res.ExpiresAt,
		Grant:     res.Grant,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.Decode(w, r, v, maxBodyBytes); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) { WriteError(w, h.log, err) }

// WriteError maps gate errors to status codes. Outages are never reported as 4xx.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch {
	case errors.Is(err, session.ErrInvalidSessionID):
		render.Error(w, http.StatusBadRequest, "valid sessionId is required")
	case errors.Is(err, gate.ErrMissingEmail):
		render.Error(w, http.StatusBadRequest, "email is required")
	case errors.Is(err, gate.ErrMalformedCode):
		render.Error(w, http.StatusBadRequest, "malformed code")
	case errors.Is(err, gate.ErrNotAdmin):
		render.Error(w, http.StatusForbidden, "not an administrator")
	case errors.Is(err, gate.ErrInvalidCode), errors.Is(err, gate.ErrInvalidGrant), errors.Is(err, gate.ErrUnauthorized):
		render.Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, gate.ErrForbidden):
		render.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, gate.ErrDispatchFailed):
		log.Warn("otp dispatch failed", zap.Error(err))
		render.Error(w, http.StatusBadGateway, "could not send code")
	case errors.Is(err, gate.ErrStoreUnavailable), errors.Is(err, gate.ErrPolicyUnavailable):
		log.Error("gate unavailable", zap.Error(err))
		render.Error(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		log.Error("gate request failed", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "internal error")
	}
}
