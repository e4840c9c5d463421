package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/strokeguard/strokeguard/pkg/auth"
	"github.com/strokeguard/strokeguard/pkg/tlsutil"
)

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Address string

	// JWT enables bearer auth on Predict when non-nil.
	JWT *auth.JWTService

	// TLSCertFile and TLSKeyFile enable TLS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	Reflection bool

	// Ready sets the grpc.health.v1 status: SERVING when true.
	Ready bool
}

// Server wraps the gRPC server with inference service handlers.
type Server struct {
	address    string
	grpcServer *grpclib.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the inference service. A TLS
// configuration that cannot be loaded is an error.
func NewServer(handler InferenceServiceServer, cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	interceptors := []grpclib.UnaryServerInterceptor{loggingInterceptor(logger)}
	if cfg.JWT != nil {
		interceptors = append(interceptors, auth.UnaryAuthInterceptor(cfg.JWT, []string{
			MethodHealth,
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		}, auth.PredictRoles...))
	}

	serverOpts := []grpclib.ServerOption{grpclib.ChainUnaryInterceptor(interceptors...)}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("grpc: load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpclib.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile, "key", cfg.TLSKeyFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpclib.NewServer(serverOpts...)

	// Register health check service.
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	servingStatus := healthpb.HealthCheckResponse_NOT_SERVING
	if cfg.Ready {
		servingStatus = healthpb.HealthCheckResponse_SERVING
	}
	healthServer.SetServingStatus("", servingStatus)
	healthServer.SetServingStatus(ServiceName, servingStatus)

	RegisterInferenceServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    cfg.Address,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))
	return s.grpcServer.Serve(listener)
}

// Stop marks the service NOT_SERVING and gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.InfoContext(ctx, "rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
