package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/forum-submission-api/api/swagger"
	"github.com/noah-isme/forum-submission-api/internal/handler"
	"github.com/noah-isme/forum-submission-api/internal/middleware"
	"github.com/noah-isme/forum-submission-api/internal/repository"
	"github.com/noah-isme/forum-submission-api/internal/service"
	"github.com/noah-isme/forum-submission-api/pkg/cache"
	"github.com/noah-isme/forum-submission-api/pkg/config"
	"github.com/noah-isme/forum-submission-api/pkg/database"
	"github.com/noah-isme/forum-submission-api/pkg/i18n"
	"github.com/noah-isme/forum-submission-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/forum-submission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/forum-submission-api/pkg/middleware/requestid"
	"github.com/noah-isme/forum-submission-api/pkg/storage"
)

// @title Forum Submission API
// @version 1.0.0
// @description Captures a student's forum posts as assignment submission text
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	readiness := map[string]handler.ReadinessCheck{"database": db.PingContext}

	var cacheRepo service.CacheRepository
	if cfg.Summary.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		redisRepo := repository.NewCacheRepository(client, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		readiness["redis"] = redisRepo.Ping
	}

	catalog, err := i18n.New()
	if err != nil {
		logr.Fatal("failed to build string table", zap.Error(err))
	}
	validate := validator.New()
	if err := catalog.RegisterValidator(validate); err != nil {
		logr.Fatal("failed to register validator translations", zap.Error(err))
	}

	store, err := storage.NewLocalStorage(cfg.Storage.BaseDir)
	if err != nil {
		logr.Fatal("failed to prepare submission storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	forumRepo := repository.NewForumRepository(db)
	configSvc := service.NewForumConfigService(repository.NewPluginConfigRepository(db), forumRepo, catalog, validate, logr)
	exportSvc := service.NewExportService(store, signer, service.ExportConfig{
		APIPrefix:  cfg.APIPrefix,
		IncludePDF: cfg.Storage.IncludePDF,
	}, logr, nil, nil)

	plugin := service.NewForumSubmissionPlugin(service.PluginDeps{
		Records:     repository.NewForumSubmissionRepository(db),
		Assignments: repository.NewAssignmentRepository(db),
		Config:      configSvc,
		Collector:   service.NewPostCollector(forumRepo, cfg.Forum.EnableTimedPosts, metrics, logr),
		Renderer:    service.NewPostRenderer(forumRepo, cfg.Forum, catalog, logr),
		Exports:     exportSvc,
		Cache:       service.NewCacheService(cacheRepo, metrics, cfg.Summary.TTL, logr, cfg.Summary.Enabled),
		Metrics:     metrics,
		Strings:     catalog,
		Logger:      logr,
		WWWRoot:     cfg.Forum.WWWRoot,
		SummaryTTL:  cfg.Summary.TTL,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	ops := handler.NewMetricsHandler(metrics, readiness, logr)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.RouteDeps{
		Forum:        handler.NewForumSubmissionHandler(plugin, exportSvc, validate),
		Tokens:       service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer),
		Capabilities: service.NewCapabilityService(),
		Audit:        repository.NewAuditRepository(db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "plugin", plugin.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
