package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	v1 "github.com/bruktdata-lab/listing-portal/internal/api/v1"
	corecfg "github.com/bruktdata-lab/listing-portal/internal/core/config"
	"github.com/bruktdata-lab/listing-portal/internal/migrations"
	"github.com/bruktdata-lab/listing-portal/internal/server"
	"github.com/bruktdata-lab/listing-portal/internal/source"
	"github.com/bruktdata-lab/listing-portal/internal/source/athena"
	"github.com/bruktdata-lab/listing-portal/internal/source/postgres"
	"github.com/bruktdata-lab/listing-portal/internal/source/s3meta"
)

func main() {
	configPath := flag.String("config", "portal.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "source", cfg.Source.Type, "host", cfg.Server.Host, "port", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize the observation source and metadata loader
	src, metaLoader, err := buildSource(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize observation source", "error", err)
		os.Exit(1)
	}

	// 3. Load filter-option metadata for both datasets. Failure is not
	// fatal - the portal starts with empty dropdown options.
	meta := loadMetadata(ctx, metaLoader, cfg.Metadata)

	// 4. Initialize the query API
	apiSvc := v1.NewService(src, src, meta, cfg.Query.DefaultStart())

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), src, cfg.Server.Mode)
	apiSvc.RegisterRoutes(srv.Engine)

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// buildSource constructs the configured backend plus the metadata loader that
// shares its AWS session (the postgres backend falls back to local metadata
// files).
func buildSource(ctx context.Context, cfg *corecfg.Config) (source.Source, *s3meta.Loader, error) {
	switch cfg.Source.Type {
	case "athena":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}

		pollInterval, err := time.ParseDuration(cfg.AWS.PollInterval)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid aws.poll_interval: %w", err)
		}

		client := athena.New(awsathena.NewFromConfig(awsCfg), athena.Config{
			Database:       cfg.AWS.AthenaDatabase,
			Workgroup:      cfg.AWS.AthenaWorkgroup,
			OutputLocation: cfg.AWS.OutputLocation(),
			CarsTable:      cfg.Query.CarsTable,
			HousesTable:    cfg.Query.HousesTable,
			PollInterval:   pollInterval,
		})
		loader := s3meta.NewLoader(awss3.NewFromConfig(awsCfg), cfg.AWS.Bucket, cfg.Metadata.LocalDir)
		return client, loader, nil

	case "postgres":
		adapter, err := postgres.NewAdapter(
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize postgres source: %w", err)
		}
		if err := migrations.RunMigrations(adapter.DB(), cfg.Database.AutoMigrate); err != nil {
			adapter.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		loader := s3meta.NewLoader(nil, "", cfg.Metadata.LocalDir)
		return adapter, loader, nil

	default:
		return nil, nil, fmt.Errorf("unsupported source type %q", cfg.Source.Type)
	}
}

// loadMetadata fetches both datasets' filter options concurrently.
func loadMetadata(ctx context.Context, loader *s3meta.Loader, cfg corecfg.MetadataConfig) v1.Metadata {
	var meta v1.Metadata

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts, err := loader.LoadCars(gctx, cfg.CarsKey)
		if err != nil {
			return fmt.Errorf("car metadata: %w", err)
		}
		meta.Cars = opts
		return nil
	})
	g.Go(func() error {
		opts, err := loader.LoadHouses(gctx, cfg.HousesKey)
		if err != nil {
			return fmt.Errorf("house metadata: %w", err)
		}
		meta.Houses = opts
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Warn("Could not load filter metadata, dropdown options start empty", "error", err)
	}
	return meta
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
