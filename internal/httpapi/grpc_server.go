package httpapi

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"yardimpanel.org/internal/obs"
)

const serviceName = "panel-api"

type readinessChecker interface {
	Check(ctx context.Context) error
}

// HealthServer bridges the store readiness probe onto the standard gRPC
// health service so load balancers can watch the same signal /readyz exposes.
type HealthServer struct {
	inner     *health.Server
	readiness readinessChecker
}

// NewHealthServer creates the health service wrapper.
func NewHealthServer(r readinessChecker) *HealthServer {
	return &HealthServer{
		inner:     health.NewServer(),
		readiness: r,
	}
}

// Register attaches the health service to a gRPC server.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.inner)
}

// Refresh probes readiness once and publishes the result.
func (h *HealthServer) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.readiness.Check(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	obs.SetReady(status == healthpb.HealthCheckResponse_SERVING)
	h.inner.SetServingStatus("", status)
	h.inner.SetServingStatus(serviceName, status)
}

// Run refreshes the published status on the given interval until the context
// is cancelled.
func (h *HealthServer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Refresh(ctx)
		case <-ctx.Done():
			h.inner.Shutdown()
			return
		}
	}
}
