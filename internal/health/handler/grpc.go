// Package handler exposes readiness over HTTP and the standard gRPC health protocol.
package handler

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/ninadrathod/my-website/internal/health"
)

// Server implements grpc.health.v1.Health over the readiness checker.
// The empty service name and ServiceName report overall readiness; others are NotFound.
type Server struct {
	healthpb.UnimplementedHealthServer
	checker *health.Checker
	log     *zap.Logger
}

// ServiceName is the service name reported by Check besides "".
const ServiceName = "portfolio.gate"

// NewServer returns a new Health gRPC server. checker may be nil (always serving).
func NewServer(checker *health.Checker, log *zap.Logger) *Server {
	if checker == nil {
		checker = health.NewChecker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{checker: checker, log: log}
}

// Check never returns a gRPC error for a failing dependency; it reports NOT_SERVING instead.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	if _, err := s.checker.Check(ctx); err != nil {
		s.log.Warn("grpc health: not serving", zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
