package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/dasmlab/notetrans/pkg/server"
	"github.com/dasmlab/notetrans/pkg/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	httpPort       int
	grpcPort       int
	healthInterval time.Duration
}

func newServeCmd(opts *options) *cobra.Command {
	so := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and gRPC health service",
		Long: `Run the HTTP API and the gRPC health service.

HTTP:
  POST /api/v1/translate   {"selection": "...", "editor": true}
  GET  /api/v1/settings    masked settings
  PUT  /api/v1/settings    {"key": "value", ...}
  GET  /health, /metrics

gRPC health reports SERVING while at least one provider is enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, so)
		},
	}

	cmd.Flags().IntVar(&so.httpPort, "port", 8080, "HTTP server port")
	cmd.Flags().IntVar(&so.grpcPort, "grpc-port", 50051, "gRPC health server port")
	cmd.Flags().DurationVar(&so.healthInterval, "health-interval", 15*time.Second, "How often the health status is refreshed from the settings")

	return cmd
}

func runServe(opts *options, so *serveOptions) error {
	logger := opts.newLogger()

	p, store, err := opts.newPipeline(logger)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"http_port": so.httpPort,
		"grpc_port": so.grpcPort,
		"timeout":   opts.timeout.String(),
		"log_level": logger.GetLevel().String(),
	}).Info("Starting notetrans server")

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", so.grpcPort))
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"port": so.grpcPort,
		}).Error("Failed to listen on port")
		return err
	}

	var grpcOpts []grpc.ServerOption
	grpcOpts = append(grpcOpts, grpc.Creds(insecure.NewCredentials()))
	grpcOpts = append(grpcOpts, grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
		MinTime:             15 * time.Second,
		PermitWithoutStream: true,
	}))
	grpcOpts = append(grpcOpts, grpc.KeepaliveParams(keepalive.ServerParameters{
		MaxConnectionIdle:     5 * time.Minute,
		MaxConnectionAge:      30 * time.Minute,
		MaxConnectionAgeGrace: 5 * time.Second,
		Time:                  30 * time.Second,
		Timeout:               10 * time.Second,
	}))

	s := grpc.NewServer(grpcOpts...)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	setHealth(healthServer, p, logger)

	// Enable reflection for grpcurl/debugging
	reflection.Register(s)

	healthCtx, healthCancel := context.WithCancel(context.Background())
	defer healthCancel()

	go func() {
		ticker := time.NewTicker(so.healthInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				setHealth(healthServer, p, logger)
			case <-healthCtx.Done():
				return
			}
		}
	}()
	logger.WithFields(logrus.Fields{
		"interval": so.healthInterval.String(),
	}).Info("Started health refresh goroutine")

	httpServer := server.NewHTTPServer(p, store, logger, so.httpPort)

	errChan := make(chan error, 2)
	go func() {
		logger.WithFields(logrus.Fields{
			"port": so.grpcPort,
		}).Info("gRPC server listening")
		if err := s.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve gRPC: %w", err)
		}
	}()
	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var serveErr error
	select {
	case serveErr = <-errChan:
		logger.WithError(serveErr).Error("Server error")
	case sig := <-sigChan:
		logger.WithFields(logrus.Fields{
			"signal": sig.String(),
		}).Info("Received signal, shutting down gracefully...")
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown failed")
	}

	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.Info("Server stopped gracefully")
	case <-ctx.Done():
		logger.Warn("Graceful shutdown timeout, forcing stop...")
		s.Stop()
	}

	return serveErr
}

// setHealth reports SERVING while the translate command is runnable.
func setHealth(hs *health.Server, p *service.Pipeline, logger *logrus.Logger) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if p.Runnable() {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	logger.WithField("status", status.String()).Debug("Health status refreshed")
}
