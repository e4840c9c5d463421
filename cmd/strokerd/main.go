package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/strokeguard/strokeguard/internal/application/usecase"
	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/internal/infrastructure/artifact"
	"github.com/strokeguard/strokeguard/internal/infrastructure/config"
	"github.com/strokeguard/strokeguard/internal/infrastructure/messaging"
	"github.com/strokeguard/strokeguard/internal/infrastructure/postgres"
	"github.com/strokeguard/strokeguard/internal/infrastructure/telemetry"
	grpcpresentation "github.com/strokeguard/strokeguard/internal/presentation/grpc"
	"github.com/strokeguard/strokeguard/internal/presentation/rest"
	"github.com/strokeguard/strokeguard/pkg/auth"
	"github.com/strokeguard/strokeguard/pkg/kafka"
	"github.com/strokeguard/strokeguard/pkg/observability"
	pgpkg "github.com/strokeguard/strokeguard/pkg/postgres"
)

const serviceName = "strokeguard"

func main() {
	if err := run(); err != nil {
		slog.Error("strokerd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	logger.Info("starting strokeguard",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	// Initialize tracing.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer shutdown(context.Background()) //nolint:errcheck
		}
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer meterProvider.Shutdown(context.Background()) //nolint:errcheck

	predictionMetrics, err := telemetry.NewPredictionMetrics(otel.Meter(telemetry.MeterName))
	if err != nil {
		return err
	}

	// Optional startup report persistence and lifecycle events.
	var reports port.StartupReportRepository
	var dbCheck usecase.DependencyCheck
	if pgCfg := (pgpkg.Config{URL: cfg.DatabaseURL, ConnectTimeout: 10 * time.Second}); pgCfg.Enabled() {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pgpkg.NewPool(dbCtx, pgCfg)
		dbCancel()
		if err != nil {
			logger.Warn("database unavailable, startup reports will not be stored", "error", err)
		} else {
			defer pool.Close()
			reports = postgres.NewStartupReportRepository(pool)
			dbCheck = func(ctx context.Context) error { return pgpkg.HealthCheck(ctx, pool) }
			logger.Info("connected to database")
		}
	}

	var publisher port.EventPublisher = messaging.NewLogPublisher(logger)
	if kafkaCfg := (kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic, ClientID: serviceName}); kafkaCfg.Enabled() {
		producer, err := kafka.NewProducer(kafkaCfg)
		if err != nil {
			logger.Warn("kafka producer unavailable, lifecycle events will only be logged", "error", err)
		} else {
			defer producer.Close() //nolint:errcheck
			publisher = messaging.NewKafkaPublisher(producer, cfg.KafkaTopic, logger)
		}
	}

	// Load artifacts once.
	instance, _ := os.Hostname()
	ictx := usecase.NewBootstrap(artifact.NewFileStore(), reports, publisher, logger).Execute(ctx, usecase.BootstrapConfig{
		TransformPath: cfg.TransformPath,
		ModelPath:     cfg.ModelPath,
		Instance:      instance,
	})

	// Wire use cases.
	predictUC := usecase.NewPredictRisk(ictx, model.ValidateOptions{Strict: cfg.StrictValidation}, predictionMetrics, logger)
	healthUC := usecase.NewCheckHealth(ictx)
	if dbCheck != nil {
		healthUC.WithDependency("postgres", dbCheck)
	}

	var jwtService *auth.JWTService
	if cfg.AuthEnabled() {
		jwtService, err = newJWTService(cfg)
		if err != nil {
			return err
		}
		logger.Info("bearer auth enabled on predict")
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewInferenceHandler(predictUC, healthUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		JWT:         jwtService,
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
		Ready:       healthUC.Ready(),
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	var predictMW []rest.Middleware
	if cfg.RateLimitRPS > 0 {
		predictMW = append(predictMW, rest.RateLimitMiddleware(rest.NewRateLimiter(cfg.RateLimitRPS)))
	}
	if jwtService != nil {
		predictMW = append(predictMW, rest.AuthMiddleware(jwtService, auth.PredictRoles...))
	}

	httpMux := http.NewServeMux()
	rest.NewHandler(predictUC, healthUC, logger).RegisterRoutes(httpMux, rest.RouteOptions{
		Metrics: metricsHandler,
		Predict: predictMW,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      rest.Chain(httpMux, rest.LoggingMiddleware(logger)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("strokeguard started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"scorer_state", ictx.ScorerState().String(),
		"transform_loaded", ictx.TransformLoaded(),
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down strokeguard")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("strokeguard stopped")
	return runErr
}

func newJWTService(cfg *config.Config) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}
	if cfg.JWTPublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(cfg.JWTPublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("configure jwt: %w", err)
	}
	return svc, nil
}
