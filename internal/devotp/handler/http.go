// Package handler serves GET /dev/otp. Only mounted when dev OTP mode is enabled and not production.
package handler

import (
	"net/http"
	"time"

	"github.com/ninadrathod/my-website/internal/devotp"
	"github.com/ninadrathod/my-website/internal/server/render"
)

const devOTPNote = "DEV MODE ONLY"

// Handler reads codes from the dev store.
type Handler struct {
	store devotp.Store
}

// New returns a dev OTP handler over store.
func New(store devotp.Store) *Handler {
	return &Handler{store: store}
}

type otpResponse struct {
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expiresAt"`
	Note      string    `json:"note"`
}

// GetOTP returns the plain code for ?sessionId= (or X-Session-ID). 404 if missing or expired.
func (h *Handler) GetOTP(w http.ResponseWriter, r *http.Request) {
	sessionID := render.SessionID(r)
	if sessionID == "" {
		render.Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	otp, exp, ok := h.store.Get(r.Context(), sessionID)
	if !ok {
		render.Error(w, http.StatusNotFound, "OTP not found or expired")
		return
	}
	render.JSON(w, http.StatusOK, otpResponse{OTP: otp, ExpiresAt: exp, Note: devOTPNote})
}
