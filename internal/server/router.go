package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	devotphandler "github.com/ninadrathod/my-website/internal/devotp/handler"
	galleryhandler "github.com/ninadrathod/my-website/internal/gallery/handler"
	gatehandler "github.com/ninadrathod/my-website/internal/gate/handler"
	healthhandler "github.com/ninadrathod/my-website/internal/health/handler"
	resumehandler "github.com/ninadrathod/my-website/internal/resume/handler"
	"github.com/ninadrathod/my-website/internal/telemetry/metrics"
)

// Deps holds the HTTP handlers. Nil handlers are not mounted, except Health, which falls back
// to an always-ready handler.
type Deps struct {
	Gate    *gatehandler.Handler
	Gallery *galleryhandler.Handler
	Resume  *resumehandler.Handler
	Health  *healthhandler.HTTP
	// DevOTP serves GET /dev/otp. Set only when dev OTP mode is enabled and not production.
	DevOTP      *devotphandler.Handler
	Metrics     *metrics.Metrics
	CORSOrigins []string
	// TracerProvider overrides the global provider for HTTP spans.
	TracerProvider trace.TracerProvider
	Log            *zap.Logger
}

// NewRouter builds the HTTP handler for every route.
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	health := deps.Health
	if health == nil {
		health = healthhandler.NewHTTP(nil, log)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(clientIP)
	r.Use(tracing(deps.TracerProvider))
	r.Use(instrument(log, deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Session-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", health.Live)
	r.Get("/ready", health.Ready)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
	if deps.Gate != nil {
		deps.Gate.Routes(r)
	}
	if deps.Gallery != nil {
		deps.Gallery.Routes(r)
	}
	if deps.Resume != nil {
		deps.Resume.Routes(r)
	}
	if deps.DevOTP != nil {
		r.Get("/dev/otp", deps.DevOTP.GetOTP)
	}
	return r
}
