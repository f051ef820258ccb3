package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/app/background"
	"github.com/LavaJover/shvark-exchange-service/internal/app/setup"
	"github.com/LavaJover/shvark-exchange-service/internal/config"
	"github.com/LavaJover/shvark-exchange-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-exchange-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	appLogger, logCloser, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(appLogger)

	deps, err := setup.InitializeDependencies(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	useCases := setup.InitializeUseCases(deps)

	// HTTP API
	handler := handlers.NewExchangeHandler(useCases.ExchangeUsecase, useCases.BotUsecase)
	handler.Handle("GET /metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	// gRPC health
	grpcServer := grpc.NewServer()
	healthHandler := grpcapi.NewHealthHandler()
	healthHandler.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tasks := background.NewBackgroundTasks(deps.Probes, healthHandler)
	tasks.StartAll(ctx)

	go func() {
		slog.Info("gRPC server started", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "error", err)
			stop()
		}
	}()

	go func() {
		slog.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	healthHandler.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}
	grpcServer.GracefulStop()

	// дожидаемся уведомлений по уже одобренным транзакциям
	useCases.ExchangeUsecase.WaitNotifications()

	if err := deps.Close(); err != nil {
		slog.Error("failed to close dependencies", "error", err)
	}
	slog.Info("exchange service stopped")
}
