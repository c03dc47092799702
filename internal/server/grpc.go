// Package server assembles the HTTP router and the gRPC server.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ninadrathod/my-website/internal/health"
	healthhandler "github.com/ninadrathod/my-website/internal/health/handler"
	"github.com/ninadrathod/my-website/internal/server/interceptors"
)

// GRPCDeps holds the gRPC server's dependencies.
type GRPCDeps struct {
	// Checker backs grpc.health.v1.Health. If nil, Check always reports SERVING.
	Checker *health.Checker
	Log     *zap.Logger
}

var quietMethods = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
}

// NewGRPCServer returns a gRPC server with tracing, client IP and logging interceptors and
// every service registered.
func NewGRPCServer(deps GRPCDeps) *grpc.Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.ClientIPUnary(),
			interceptors.LoggingUnary(deps.Log, quietMethods),
		),
	)
	RegisterServices(s, deps)
	return s
}

// RegisterServices registers all gRPC services with the given server.
//
//   - grpc.health.v1.Health → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps GRPCDeps) {
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.Checker, deps.Log))
}
