// Package server assembles and runs the gridfall arena service: the
// engine loop, the SQLite store, the HTTP gateway and a gRPC health
// endpoint for orchestration probes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	gatewayhttp "github.com/louisbranch/gridfall/internal/api/http"
	"github.com/louisbranch/gridfall/internal/arena/economy"
	"github.com/louisbranch/gridfall/internal/arena/engine"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/maps"
	"github.com/louisbranch/gridfall/internal/platform/config"
	"github.com/louisbranch/gridfall/internal/platform/otel"
	"github.com/louisbranch/gridfall/internal/platform/random"
	"github.com/louisbranch/gridfall/internal/storage/sqlite"
)

// Config holds the service's environment configuration.
type Config struct {
	HTTPPort   int    `env:"GRIDFALL_HTTP_PORT" envDefault:"8080"`
	HealthPort int    `env:"GRIDFALL_HEALTH_PORT" envDefault:"9090"`
	DBPath     string `env:"GRIDFALL_DB_PATH" envDefault:"gridfall.db"`
	Seed       int64  `env:"GRIDFALL_SEED"`
}

// Run assembles the service from the environment and blocks until the
// context ends.
func Run(ctx context.Context) error {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}

	shutdownTracing, err := otel.Setup(ctx, "gridfall-server")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("flush traces: %v", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	catalog, err := maps.NewEmbedded()
	if err != nil {
		return fmt.Errorf("load map catalog: %w", err)
	}

	hub := event.NewHub()
	seed := cfg.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return fmt.Errorf("seed dice: %w", err)
		}
	}
	eng := engine.New(engine.Config{
		Maps:    catalog,
		Journal: event.NewJournal(store, hub),
		Economy: economy.NewInMemoryLedger(),
		Results: store,
		Seed:    seed,
	})

	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()
	go eng.Run(engineCtx)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           gatewayhttp.New(eng, hub, store, store, catalog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		return fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthService := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthService)
	healthService.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 2)
	go func() {
		log.Printf("http gateway listening at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("serve http: %w", err)
			return
		}
		serveErr <- nil
	}()
	go func() {
		log.Printf("health endpoint listening at %v", healthListener.Addr())
		if err := grpcServer.Serve(healthListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- fmt.Errorf("serve health: %w", err)
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	healthService.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(stopCtx); err != nil {
		log.Printf("shutdown http gateway: %v", err)
	}
	grpcServer.GracefulStop()
	stopEngine()
	return nil
}
