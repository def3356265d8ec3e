package main

import (
	"context"
	"log"

	"filevault/config"
	"filevault/internal/cleanup"
	"filevault/internal/handler"
	"filevault/internal/progress"
	internalredis "filevault/internal/redis"
	"filevault/internal/repository"
	"filevault/internal/server"
	"filevault/internal/services"
	"filevault/internal/storage"
	"filevault/internal/upload"
	"filevault/internal/validation"
	"filevault/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	defer l.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := internalredis.NewClient(internalredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	store, err := storage.NewClient(ctx, storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PublicBase: cfg.S3PublicBase,
		PresignTTL: cfg.PresignTTL,
	})
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	progressStore := progress.NewRedisStore(redisClient)
	tracker := progress.NewTracker(progressStore, l)
	go tracker.Run(ctx, progress.CleanupInterval)

	orchestrator := upload.NewOrchestrator(store, tracker, upload.Config{
		PartSize:           cfg.Upload.PartSize,
		LargeFileThreshold: cfg.Upload.LargeFileThreshold,
		PartConcurrency:    cfg.Upload.PartConcurrency,
	}, l)

	fileService := services.NewFileService(
		repository.NewInMemoryFileRepository(),
		validation.New(cfg.Upload.MaxFileSize, l),
		orchestrator,
		store,
		upload.NewAdmissionController(cfg.Upload.MaxConcurrentLargeFiles),
		tracker,
		cfg.Upload,
		l,
	)

	cleaner := cleanup.NewTempCleaner(cfg.Upload.TempDir, cfg.Upload.TempMaxAge, l)
	go cleaner.Run(ctx)

	limiter := internalredis.NewRateLimiter(redisClient, internalredis.DefaultRateLimitConfig())

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		File: handler.NewFileHandler(fileService, store, cfg.Upload.TempDir, cfg.Upload.MaxFileSize, l),
	}, redisClient, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
