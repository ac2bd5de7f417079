// Package grpc provides the client-side helpers for the arena's health
// endpoint: dialing and readiness waiting.
package grpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial opens a plaintext client connection with trace propagation wired
// in. The connection is lazy; pair it with WaitForHealth to block until
// the server actually serves.
func Dial(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	base := []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	return gogrpc.NewClient(addr, append(base, opts...)...)
}
