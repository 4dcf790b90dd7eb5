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

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/fraudscore/internal/application/usecase"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/port"
	"github.com/bibbank/fraudscore/internal/domain/service"
	"github.com/bibbank/fraudscore/internal/infrastructure/config"
	"github.com/bibbank/fraudscore/internal/infrastructure/enrich"
	"github.com/bibbank/fraudscore/internal/infrastructure/ingest"
	"github.com/bibbank/fraudscore/internal/infrastructure/messaging"
	"github.com/bibbank/fraudscore/internal/infrastructure/metrics"
	"github.com/bibbank/fraudscore/internal/infrastructure/ml"
	"github.com/bibbank/fraudscore/internal/infrastructure/postgres"
	"github.com/bibbank/fraudscore/internal/infrastructure/storage"
	grpcpresentation "github.com/bibbank/fraudscore/internal/presentation/grpc"
	"github.com/bibbank/fraudscore/internal/presentation/rest"
	"github.com/bibbank/fraudscore/internal/presentation/stream"
	"github.com/bibbank/fraudscore/pkg/auth"
	"github.com/bibbank/fraudscore/pkg/kafka"
	"github.com/bibbank/fraudscore/pkg/observability"
	pgpkg "github.com/bibbank/fraudscore/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fraudscored: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fraudscored stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("fraudscored stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting fraudscored",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    cfg.IsDevelopment(),
		})
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return err
	}
	defer meterProvider.Shutdown(context.Background())

	recorder, err := metrics.NewRecorder(meterProvider.Meter("github.com/bibbank/fraudscore"))
	if err != nil {
		return err
	}

	// Persistence.
	if cfg.MigrationsDir != "" {
		if err := pgpkg.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return err
		}
		logger.Info("migrations applied", "dir", cfg.MigrationsDir)
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pgpkg.NewPool(connectCtx, cfg.Postgres())
	cancelConnect()
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	uploads := postgres.NewUploadRepository(pool)
	visualStates := postgres.NewVisualStateRepository(pool)

	files, err := storage.NewLocalFileStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	// Scoring.
	loaded := ml.Load(ml.Options{
		ModelPath:    cfg.ModelPath,
		MetadataPath: cfg.ModelMetadataPath,
		RemoteAddr:   cfg.ModelRemoteAddr,
		RemoteCA:     cfg.ModelRemoteCA,
		Timeout:      cfg.ModelTimeout,
	}, logger)
	defer loaded.Close()

	enricher, closeEnricher, err := newEnricher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEnricher()

	// Messaging.
	var (
		publisher port.EventPublisher = messaging.NewLogPublisher(logger)
		producer  *kafka.Producer
	)
	if cfg.Kafka().Enabled() {
		producer, err = kafka.NewProducer(cfg.Kafka())
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = messaging.NewKafkaPublisher(producer, cfg.KafkaEventsTopic, logger)
		logger.Info("publishing events to kafka", "topic", cfg.KafkaEventsTopic)
	}

	// Use cases.
	predict := usecase.NewPredict(loaded.Scorer, loaded.Source, enricher, recorder)
	batch := service.NewBatchScorer(loaded.Scorer, enricher)
	parser := ingest.Parser{Limit: model.MaxBatchRows}
	listHistory := usecase.NewListHistory(uploads)

	jwtCfg, err := cfg.JWT()
	if err != nil {
		return err
	}
	jwtService, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return err
	}

	// HTTP.
	scoring := rest.NewScoringHandler(rest.UseCases{
		Predict:        predict,
		ScoreUpload:    usecase.NewScoreUpload(files, parser, batch, uploads, publisher, recorder, loaded.Source, logger),
		ListHistory:    listHistory,
		DownloadUpload: usecase.NewDownloadUpload(uploads, files),
		DeleteUpload:   usecase.NewDeleteUpload(uploads, files, logger),
		GetVisualState: usecase.NewGetVisualState(visualStates),
		SaveVisual:     usecase.NewSaveVisualState(visualStates),
	}, cfg.MaxUploadBytes, logger)

	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Scoring:        scoring,
			Health:         rest.NewHealthHandler(cfg.ServiceName, pool, logger),
			Metrics:        metricsHandler,
			JWT:            jwtService,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server starting", slog.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// gRPC.
	var grpcServer *grpcpresentation.Server
	if addr := cfg.GRPCAddress(); addr != "" {
		grpcServer, err = grpcpresentation.NewServer(
			grpcpresentation.NewFraudScoringHandler(predict, listHistory, logger),
			grpcpresentation.ServerConfig{
				Address:     addr,
				CertFile:    cfg.TLSCertFile,
				KeyFile:     cfg.TLSKeyFile,
				Reflection:  cfg.IsDevelopment(),
				ServiceName: cfg.ServiceName,
			},
			jwtService, logger,
		)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := grpcServer.Start(); err != nil {
				return fmt.Errorf("gRPC server error: %w", err)
			}
			return nil
		})
	}

	// Stream worker.
	if cfg.KafkaInputTopic != "" && cfg.Kafka().Enabled() {
		worker := stream.NewWorker(predict, publisher, logger)
		consumer, err := kafka.NewConsumer(cfg.Kafka(), cfg.KafkaInputTopic, worker.Handle, logger)
		if err != nil {
			return err
		}
		defer consumer.Close()
		g.Go(func() error {
			return consumer.Start(gctx)
		})
	}

	logger.Info("fraudscored started",
		slog.String("http_address", cfg.HTTPAddress()),
		slog.String("grpc_address", cfg.GRPCAddress()),
		slog.String("model", loaded.Source),
	)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down fraudscored")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if grpcServer != nil {
			grpcServer.Stop()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newEnricher builds the geo enricher when a GeoIP database is configured.
// The returned close function is always safe to call.
func newEnricher(cfg *config.Config, logger *slog.Logger) (port.RecordEnricher, func(), error) {
	if cfg.GeoIPDBPath == "" {
		return nil, func() {}, nil
	}

	mm, err := enrich.OpenMaxMind(cfg.GeoIPDBPath)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{mm.Close}

	var cache enrich.CountryCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache = enrich.NewRedisCache(client, cfg.GeoCacheTTL)
		closers = append(closers, client.Close)
		logger.Info("geo lookups cached in redis", "addr", cfg.RedisAddr, "ttl", cfg.GeoCacheTTL)
	}

	logger.Info("geo enrichment enabled", "db", cfg.GeoIPDBPath)
	return enrich.NewGeoEnricher(mm, cache, logger), func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close enrichment resource", "error", err)
			}
		}
	}, nil
}
