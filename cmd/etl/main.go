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

	"github.com/couchcryptid/airport-awareness-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/airport-awareness-etl/internal/adapter/kafka"
	"github.com/couchcryptid/airport-awareness-etl/internal/config"
	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
	"github.com/couchcryptid/airport-awareness-etl/internal/observability"
	"github.com/couchcryptid/airport-awareness-etl/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	codec, err := pipeline.NewCodec(cfg.SinkEncoding)
	if err != nil {
		logger.Error("invalid sink encoding", "error", err)
		os.Exit(1)
	}

	ref := domain.NewReference(cfg.AirportICAO, domain.Coordinate{Lat: cfg.AirportLat, Lon: cfg.AirportLon}, cfg.TrailMaxJumpDeg)
	ref.Airspaces, err = loadAirspaces(cfg.AirspacesFile)
	if err != nil {
		logger.Error("failed to load airspaces", "path", cfg.AirspacesFile, "error", err)
		os.Exit(1)
	}
	trails := pipeline.NewTrailStore(cfg.TrailCacheSize, cfg.TrailMaxPoints, cfg.TrailTTL, metrics)
	logger.Info("reference airport", "icao", ref.ICAO, "lat", ref.Location.Lat, "lon", ref.Location.Lon,
		"airspaces", len(ref.Airspaces), "trail_cache_size", cfg.TrailCacheSize, "trail_ttl", cfg.TrailTTL, "sink_encoding", codec.ContentType())

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(ref, trails, codec, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, ref, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failing component cancels gctx and brings the service down.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return p.Run(gctx)
	})

	<-gctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		cancel()
		stop()
		os.Exit(1) //nolint:gocritic // deferred calls already run above
	}
	logger.Info("shutdown complete")
}

// loadAirspaces reads the airspace polygons from path. An empty path loads none.
func loadAirspaces(path string) ([]domain.Airspace, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return domain.DecodeAirspaces(data)
}
