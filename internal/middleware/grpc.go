// internal/middleware/grpc.go
package middleware

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/gurkanbulca/taskmanagement/internal/logger"
)

// UnaryLogging logs every unary call of the gRPC side server with the
// caller address and user agent attached to the context.
func UnaryLogging() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ctx = enrichGRPCContext(ctx)
		start := time.Now()

		resp, err := handler(ctx, req)

		logger.Debug(ctx, "grpc call completed",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
			"ip", GetIPAddressFromContext(ctx),
		)
		return resp, err
	}
}

func enrichGRPCContext(ctx context.Context) context.Context {
	if p, ok := peer.FromContext(ctx); ok {
		ip := p.Addr.String()
		if tcpAddr, ok := p.Addr.(*net.TCPAddr); ok {
			ip = tcpAddr.IP.String()
		} else if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx = context.WithValue(ctx, ContextKeyIPAddress, ip)
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for _, header := range []string{"user-agent", "grpc-user-agent", "x-user-agent"} {
			if values := md.Get(header); len(values) > 0 {
				ctx = context.WithValue(ctx, ContextKeyUserAgent, values[0])
				break
			}
		}
	}
	return ctx
}
