package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sai-prashanth/scheduler-api/api/swagger"
	"github.com/sai-prashanth/scheduler-api/internal/handler"
	"github.com/sai-prashanth/scheduler-api/internal/middleware"
	"github.com/sai-prashanth/scheduler-api/internal/repository"
	"github.com/sai-prashanth/scheduler-api/internal/service"
	"github.com/sai-prashanth/scheduler-api/pkg/cache"
	"github.com/sai-prashanth/scheduler-api/pkg/config"
	"github.com/sai-prashanth/scheduler-api/pkg/database"
	"github.com/sai-prashanth/scheduler-api/pkg/logger"
	corsmiddleware "github.com/sai-prashanth/scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sai-prashanth/scheduler-api/pkg/middleware/requestid"
)

// @title Session Scheduler API
// @version 1.0.0
// @description Availability-aware session scheduling for client rosters
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, busy-feed caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	clientRepo := repository.NewClientRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	extractionSvc := service.NewExtractionService(nil, logr, service.ExtractionConfig{
		Enabled: cfg.Extraction.Enabled,
		BaseURL: cfg.Extraction.BaseURL,
		APIKey:  cfg.Extraction.APIKey,
		Model:   cfg.Extraction.Model,
		Timeout: cfg.Extraction.Timeout,
	})
	feedSvc := service.NewFeedService(nil, cacheRepo, logr, service.FeedConfig{
		URL:      cfg.CalendarFeed.URL,
		Timeout:  cfg.CalendarFeed.Timeout,
		CacheTTL: cfg.CalendarFeed.CacheTTL,
	})
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		OperatorEmail:        cfg.Auth.OperatorEmail,
		OperatorPasswordHash: cfg.Auth.OperatorPasswordHash,
		AccessTokenSecret:    cfg.JWT.Secret,
		AccessTokenExpiry:    cfg.JWT.Expiration,
		Issuer:               cfg.JWT.Issuer,
	})
	clientSvc := service.NewClientService(clientRepo, extractionSvc, validate, logr, cfg.Scheduling.MaxClientBatch)
	schedulerSvc := service.NewSchedulerService(clientRepo, feedSvc, metricsSvc, validate, logr, service.SchedulerConfig{
		Granularity: time.Duration(cfg.Scheduling.GranularityMinutes) * time.Minute,
		WorkingDays: cfg.Scheduling.WorkingDays,
		DayStart:    cfg.Scheduling.DayStart,
		DayEnd:      cfg.Scheduling.DayEnd,
		RunTTL:      cfg.Scheduling.RunTTL,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	clientHandler := handler.NewClientHandler(clientSvc)
	scheduleHandler := handler.NewScheduleHandler(schedulerSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", readiness(db))
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/clients", clientHandler.List)
	protected.POST("/clients/import", clientHandler.Import)
	protected.POST("/schedule/generate", scheduleHandler.Generate)
	protected.GET("/schedule/runs/:id", scheduleHandler.GetRun)
	protected.GET("/schedule/runs/:id/export", scheduleHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func readiness(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
