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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/finsight/fraudlens/api/swagger"
	"github.com/finsight/fraudlens/internal/handler"
	"github.com/finsight/fraudlens/internal/middleware"
	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/internal/repository"
	"github.com/finsight/fraudlens/internal/service"
	"github.com/finsight/fraudlens/pkg/cache"
	"github.com/finsight/fraudlens/pkg/config"
	"github.com/finsight/fraudlens/pkg/database"
	"github.com/finsight/fraudlens/pkg/logger"
	corsmiddleware "github.com/finsight/fraudlens/pkg/middleware/cors"
	reqidmiddleware "github.com/finsight/fraudlens/pkg/middleware/requestid"
)

// @title FraudLens API
// @version 0.1.0
// @description Fraud analysis service with human-in-the-loop review routing
// @BasePath /
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

	var (
		db          *sqlx.DB
		redisClient *redis.Client
		reviewRepo  interface {
			Create(ctx context.Context, record *models.ReviewRecord) error
			List(ctx context.Context, status *models.ReviewStatus) ([]models.ReviewRecord, error)
			FindByID(ctx context.Context, id string) (*models.ReviewRecord, error)
			Update(ctx context.Context, record *models.ReviewRecord) error
		}
		auditSink interface {
			CreateAuditLog(ctx context.Context, log *models.AuditLog) error
		}
	)

	switch cfg.Review.Store {
	case config.StorePostgres:
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		reviewRepo = repository.NewPostgresReviewRepository(db)
		auditSink = repository.NewAuditLogRepository(db)
	case config.StoreRedis:
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		reviewRepo = repository.NewRedisReviewRepository(redisClient)
		auditSink = repository.NewMemoryAuditLog()
	default:
		reviewRepo = repository.NewMemoryReviewRepository()
		auditSink = repository.NewMemoryAuditLog()
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var sender service.Sender
	if cfg.Notifications.Enabled && cfg.Notifications.SlackToken != "" {
		sender = service.NewSlackSender(cfg.Notifications)
	} else {
		sender = service.NewLogSender(logr)
	}
	notifications := service.NewNotificationService(sender, cfg.Notifications, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	reviewSvc := service.NewReviewService(reviewRepo, notifications, auditSink, metrics, validate, logr)
	evaluator := service.NewTriggerEvaluator(service.ThresholdsFromConfig(cfg.Review))
	authSvc := service.NewAuthService(cfg.JWT)

	offline := service.NewOfflineAnalyzer(nil)
	if cfg.Analysis.Provider != "offline" {
		logr.Warn("unknown analysis provider, using offline analyzer",
			zap.String("provider", cfg.Analysis.Provider))
	}
	analysisSvc := service.NewAnalysisService(nil, offline, cfg.Analysis.Timeout, logr)

	reviewHandler := handler.NewReviewHandler(reviewSvc)
	analysisHandler := handler.NewAnalysisHandler(analysisSvc, validate)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		readyCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(readyCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "database"})
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(readyCtx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "redis"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	analyze := api.Group("/analyze")
	analyze.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleAnalyst, models.RoleReviewer))
	analyze.Use(middleware.Audit(auditSink, models.AuditActionReviewCreate, "analysis"))
	analyze.Use(middleware.HITL(reviewSvc, evaluator, metrics, logr, middleware.HITLConfig{
		StoreTimeout: cfg.Review.StoreTimeout,
	}))
	analyze.POST("/transaction", analysisHandler.Analyze)

	reviews := api.Group("/reviews")
	reviews.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleReviewer, models.RoleAnalyst))
	reviews.GET("", reviewHandler.List)
	reviews.GET("/:id", reviewHandler.Get)
	reviews.POST("/:id/decision",
		middleware.RequireRoles(models.RoleAdmin, models.RoleReviewer),
		reviewHandler.Decide)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Review.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
