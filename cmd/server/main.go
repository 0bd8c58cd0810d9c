package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sportsearch/internal/config"
	"sportsearch/internal/handler"
	"sportsearch/internal/repository"
	"sportsearch/internal/service"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("starting sportsearch",
		zap.String("version", Version),
		zap.String("commit", GitCommit))

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	logger.Info("connected to PostgreSQL")

	aiClient := service.NewOpenAIClient(&cfg.LLM, logger)
	if cfg.LLM.Enabled {
		logger.Info("language model client initialized",
			zap.String("api_base", cfg.LLM.APIBase),
			zap.String("model", cfg.LLM.Model))
	} else {
		logger.Warn("language model is disabled; query understanding will reject all input")
	}

	geoCache := service.NewGeoCache(cfg.Geocode.CacheSize)
	geocodingClient := service.NewNominatimClient(&cfg.Geocode)

	extractor := service.NewExtractor(aiClient, logger)
	temporal := service.NewTemporalResolver(aiClient, cfg.Search.HorizonDays, logger)
	geocoder := service.NewGeocoder(geocodingClient, geoCache, &cfg.Geocode, logger)
	assembler := service.NewAssembler(cfg.Search.DefaultLimit, cfg.Search.MaxLimit, cfg.Search.DefaultRadiusKm)
	pipeline := service.NewPipeline(extractor, temporal, geocoder, assembler, logger)
	ranker := service.NewRanker(cfg.Search.WeightDistance, cfg.Search.WeightTime)
	queryService := service.NewQueryService(pipeline, repo, ranker, logger)

	queryHandler := handler.NewQueryHandler(queryService, logger)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "sportsearch"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/query", queryHandler.Query)
		v1.GET("/competitions", queryHandler.Competitions)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zc.Level = level
	return zc.Build()
}
