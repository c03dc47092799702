package interceptors

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ninadrathod/my-website/internal/audit"
)

// ClientIPUnary stores the caller's address in the context for audit entries.
func ClientIPUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(audit.WithClientIP(ctx, ClientIP(ctx)), req)
	}
}
