package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/iterator"

	"campusfinder/internal/adapter/api"
	"campusfinder/internal/adapter/api/handler"
	apimiddleware "campusfinder/internal/adapter/api/middleware"
	"campusfinder/internal/adapter/api/router"
	"campusfinder/internal/adapter/repository"
	domainrepo "campusfinder/internal/domain/repository"
	"campusfinder/internal/domain/service"
	"campusfinder/internal/infrastructure/database"
	"campusfinder/internal/infrastructure/firebase"
	"campusfinder/internal/infrastructure/messaging"
	"campusfinder/internal/infrastructure/metrics"
	"campusfinder/internal/infrastructure/ratelimit"
	"campusfinder/internal/infrastructure/storage"
	"campusfinder/internal/usecase"
	"campusfinder/pkg/config"
	"campusfinder/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	defer logger.Sync()

	ctx := context.Background()
	checks := map[string]handler.HealthCheck{}

	var reportRepo domainrepo.ReportRepository
	switch cfg.ReportStore {
	case config.ReportStoreFirestore:
		opts, err := firebase.ClientOptions(cfg)
		if err != nil {
			logger.Fatal("Failed to resolve Google credentials: %v", err)
		}

		firestoreClient, err := firebase.NewFirestoreClient(ctx, cfg, opts...)
		if err != nil {
			logger.Fatal("%v", err)
		}
		defer firestoreClient.Close()

		reportRepo = repository.NewFirestoreReportRepository(firestoreClient)
		checks["firestore"] = firestoreCheck(firestoreClient)

	case config.ReportStoreMongo:
		mongoClient, err := database.NewMongoConnection(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())

		db := mongoClient.Database(cfg.MongoDatabase)
		if err := repository.EnsureReportIndexes(ctx, db); err != nil {
			logger.Warn("Failed to ensure report indexes: %v", err)
		}

		reportRepo = repository.NewMongoReportRepository(db)
		checks["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }

	default:
		logger.Warn("Using in-memory report store; reports are lost on restart")
		reportRepo = repository.NewMemoryReportRepository()
	}

	if cfg.RedisAddr != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		reportRepo = repository.NewCachedReportRepository(reportRepo, redisClient, cfg.CacheTTL)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var imageStore service.ImageStore
	switch cfg.ImageStore {
	case config.ImageStoreMinio:
		minioStorage, err := storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
			Folder:    cfg.StorageFolder,
		})
		if err != nil {
			logger.Fatal("Failed to initialize MinIO storage: %v", err)
		}
		imageStore = minioStorage

	default:
		opts, err := firebase.ClientOptions(cfg)
		if err != nil {
			logger.Fatal("Failed to resolve Google credentials: %v", err)
		}

		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.StorageFolder, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		imageStore = storageClient
	}

	metricsManager := metrics.NewMetricsManager("campusfinder")

	submissionOpts := usecase.SubmissionOptions{
		UploadTimeout:      cfg.UploadTimeout,
		PersistenceTimeout: cfg.PersistenceTimeout,
		Metrics:            metricsManager,
	}
	if cfg.NatsURL != "" {
		publisher, err := messaging.NewNatsPublisher(cfg.NatsURL, cfg.NatsSubject)
		if err != nil {
			logger.Fatal("Failed to connect to NATS: %v", err)
		}
		defer publisher.Close()
		submissionOpts.Publisher = publisher
	}

	submissionUseCase := usecase.NewReportSubmissionUseCase(reportRepo, imageStore, submissionOpts)
	queryUseCase := usecase.NewReportQueryUseCase(reportRepo)

	handler.Setup(submissionUseCase, queryUseCase, cfg.MaxUploadSize)
	handler.SetupHealthHandler(checks)

	uploadLimiter := ratelimit.NewRateLimiter(cfg.UploadRateLimitPerMin, cfg.UploadRateLimitBurst)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	uploadLimiter.StartCleanupRoutine(10*time.Minute, stopCleanup)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(apimiddleware.Metrics(metricsManager))

	e.Validator = api.NewValidator()

	router.Setup(e, uploadLimiter, metricsManager, cfg.MaxUploadSize)

	go func() {
		logger.Info("Starting server on port %s (reports: %s, images: %s)", cfg.ServerPort, cfg.ReportStore, cfg.ImageStore)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	quit, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-quit.Done()

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

func firestoreCheck(client *firestore.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		iter := client.Collection("reports").Limit(1).Documents(ctx)
		defer iter.Stop()

		_, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		return err
	}
}
