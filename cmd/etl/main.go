// Command etl downloads the Philadelphia shooting-victims dataset, enriches
// it and writes per-year GeoJSON and daily-count files.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/shootings-etl/internal/adapter/carto"
	"github.com/couchcryptid/shootings-etl/internal/adapter/filesystem"
	kafkaadapter "github.com/couchcryptid/shootings-etl/internal/adapter/kafka"
	"github.com/couchcryptid/shootings-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/shootings-etl/internal/config"
	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/couchcryptid/shootings-etl/internal/observability"
	"github.com/couchcryptid/shootings-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := newRunLogger(cfg, uuid.NewString())
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	loaders := []pipeline.Loader{filesystem.NewWriter(cfg.OutputDir, metrics, logger)}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, metrics, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	extractor := carto.NewClient(cfg.CartoURL, cfg.CartoDataset, cfg.FetchTimeout, metrics, logger)
	p := pipeline.New(extractor, pipeline.NewTransformer(geocoder, logger), loaders, logger, metrics)

	summary, runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline failed", "error", runErr)
	} else {
		logger.Info("export complete", "output_dir", cfg.OutputDir, "incidents", summary.Fetched, "years", summary.Years)
	}

	// Push even on failure so the error counters reach the gateway.
	if err := observability.Push(context.WithoutCancel(ctx), cfg.PushgatewayURL, cfg.PushgatewayJob, metrics); err != nil {
		logger.Warn("metrics push failed", "error", err)
	}

	if runErr != nil {
		return 1
	}
	return 0
}

// newRunLogger tags every record of this run with its id and makes the
// result the slog default.
func newRunLogger(cfg *config.Config, runID string) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("run_id", runID)
	slog.SetDefault(logger)
	return logger
}
