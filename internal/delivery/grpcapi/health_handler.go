package grpcapi

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check name of the exchange API. The empty name
// reports overall process health.
const ServiceName = "discoin.exchange"

// HealthHandler publishes grpc.health.v1 statuses driven by dependency pings.
type HealthHandler struct {
	server *health.Server
}

func NewHealthHandler() *HealthHandler {
	h := &HealthHandler{server: health.NewServer()}
	// до первой проверки хранилища
	h.SetServing(false)
	return h
}

func (h *HealthHandler) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.server)
}

func (h *HealthHandler) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}

// Shutdown reports NOT_SERVING for every service and ignores later updates.
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}

func (h *HealthHandler) Server() grpc_health_v1.HealthServer {
	return h.server
}
