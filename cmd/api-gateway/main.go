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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-timetable-api/api/swagger"
	"github.com/noah-isme/campus-timetable-api/internal/handler"
	"github.com/noah-isme/campus-timetable-api/internal/middleware"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/repository"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	"github.com/noah-isme/campus-timetable-api/pkg/cache"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	"github.com/noah-isme/campus-timetable-api/pkg/database"
	"github.com/noah-isme/campus-timetable-api/pkg/jobs"
	"github.com/noah-isme/campus-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-timetable-api/pkg/middleware/requestid"
)

// @title Campus Timetable API
// @version 0.1.0
// @description Timetable assignment engine: automated generation, interactive editing and scenario management
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	catalogRepo := repository.NewCatalogRepository(db)
	scenarioRepo := repository.NewScenarioRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	catalogSvc := service.NewCatalogService(catalogRepo, logr)
	generationSvc := service.NewGenerationService(catalogSvc, cfg.Engine, logr)
	generationSvc.AttachObserver(metricsSvc)
	boardSvc := service.NewBoardService(catalogSvc, scenarioRepo, cfg.Engine, logr)
	scenarioSvc := service.NewScenarioService(scenarioRepo, db, generationSvc, boardSvc, cacheRepo, cfg.Scenarios, logr)
	exportSvc := service.NewExportService(scenarioRepo, catalogRepo, logr)

	queue := jobs.NewQueue("generation", generationSvc.Execute, jobs.QueueConfig{
		Workers:    cfg.Queue.Workers,
		BufferSize: cfg.Queue.BufferSize,
		Logger:     logr,
	})
	generationSvc.AttachQueue(queue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	queue.Start(ctx)
	defer queue.Stop()

	generationHandler := handler.NewGenerationHandler(generationSvc)
	boardHandler := handler.NewBoardHandler(boardSvc)
	scenarioHandler := handler.NewScenarioHandler(scenarioSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// auth is issued elsewhere; without a shared secret the API runs open,
	// which is only sensible in development
	editor := func() gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }()
	admin := editor
	if cfg.JWT.Secret != "" {
		verifier := middleware.NewTokenVerifier(cfg.JWT)
		api.Use(middleware.JWT(verifier))
		editor = middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)
		admin = middleware.RequireRoles(models.RoleAdmin)
	} else if cfg.Env == config.EnvProduction {
		logr.Sugar().Warnw("JWT secret not configured, API is unauthenticated")
	}

	timetable := api.Group("/timetable")
	{
		timetable.POST("/generate", editor, generationHandler.Generate)
		timetable.GET("/runs/:id", generationHandler.GetRun)
		timetable.POST("/runs/:id/cancel", editor, generationHandler.CancelRun)
	}

	board := api.Group("/board")
	{
		board.GET("/:scenarioId", boardHandler.View)
		board.GET("/:scenarioId/metrics", boardHandler.Metrics)
		board.POST("/:scenarioId/check", boardHandler.Check)
		board.POST("/:scenarioId/assignments", editor, boardHandler.Place)
		board.PUT("/:scenarioId/assignments/:assignmentId/move", editor, boardHandler.Move)
		board.PATCH("/:scenarioId/assignments/:assignmentId", editor, boardHandler.Edit)
		board.DELETE("/:scenarioId/assignments/:assignmentId", editor, boardHandler.Delete)
		board.DELETE("/:scenarioId", editor, boardHandler.Discard)
	}

	scenarios := api.Group("/scenarios")
	{
		scenarios.GET("", scenarioHandler.List)
		scenarios.POST("", editor, scenarioHandler.Save)
		scenarios.GET("/active", scenarioHandler.Active)
		scenarios.GET("/compare", scenarioHandler.Compare)
		scenarios.GET("/:id", scenarioHandler.Get)
		scenarios.POST("/:id/promote", admin, scenarioHandler.Promote)
		scenarios.GET("/:id/export", scenarioHandler.Export)
		scenarios.DELETE("/:id", admin, scenarioHandler.Delete)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
