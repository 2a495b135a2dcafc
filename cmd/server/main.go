package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cityscope/api/internal/config"
	"github.com/cityscope/api/internal/database"
	"github.com/cityscope/api/internal/dataset"
	"github.com/cityscope/api/internal/geoclient"
	"github.com/cityscope/api/internal/handlers"
	"github.com/cityscope/api/internal/logger"
	"github.com/cityscope/api/internal/middleware"
	"github.com/cityscope/api/internal/models"
	"github.com/cityscope/api/internal/repository"
	"github.com/cityscope/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	loadTimeout     = 60 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting CityScope API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"data_source": cfg.Dataset.Source,
	})

	if err := models.ValidateCategoryTable(); err != nil {
		log.Fatal("Place category table is invalid", err, nil)
	}

	// Load the historical dataset. A failed or empty load puts the server in
	// degraded mode (health stays up, data endpoints report unavailability)
	// rather than refusing to start.
	ctx := context.Background()
	store, db := loadDataset(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}

	// Google Maps client for geocode / nearby / walking-time lookups
	geo, err := geoclient.New(geoclient.Config{
		APIKey:       cfg.Geo.APIKey,
		Timeout:      cfg.Geo.Timeout,
		RateLimitRPS: cfg.Geo.RateLimitRPS,
		MaxAttempts:  cfg.Geo.MaxAttempts,
	})
	if err != nil {
		log.Fatal("Failed to create maps client", err, nil)
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, store, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize service layer
	searchService := services.NewSearchService(geo, store, log.WithComponent("search"))
	chartsService := services.NewChartsService(store, log.WithComponent("charts"))

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService)
	chartsHandler := handlers.NewChartsHandler(chartsService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/search", searchHandler.Search)
		v1.GET("/meta", chartsHandler.Meta)

		charts := v1.Group("/charts")
		{
			charts.GET("/monthly-trend", chartsHandler.MonthlyTrend)
			charts.GET("/crime-by-precinct", chartsHandler.CrimeByPrecinct)
			charts.GET("/crime-rent-scatter", chartsHandler.CrimeRentScatter)
			charts.GET("/rent-by-borough", chartsHandler.RentByBorough)
			charts.GET("/danger-heatmap", chartsHandler.DangerHeatmap)
			charts.GET("/danger-by-precinct", chartsHandler.DangerByPrecinct)
			charts.GET("/rent-trend", chartsHandler.RentTrend)
			charts.GET("/danger-trend", chartsHandler.DangerTrend)
			charts.GET("/rent-choropleth", chartsHandler.RentChoropleth)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}

// loadDataset builds the in-memory store from the configured source. Load
// failures log a warning and return an empty store; the returned database is
// non-nil only for the postgres source.
func loadDataset(ctx context.Context, cfg *config.Config, log *logger.Logger) (*dataset.Store, *database.Database) {
	switch cfg.Dataset.Source {
	case config.SourcePostgres:
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Warn("Failed to connect to database, starting in degraded mode", map[string]interface{}{
				"host":  cfg.Database.Host,
				"port":  cfg.Database.Port,
				"name":  cfg.Database.Name,
				"error": err.Error(),
			})
			return dataset.NewStore(nil), nil
		}

		loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()

		records, err := repository.NewRecordRepository(db).LoadAll(loadCtx)
		if err != nil {
			log.Warn("Failed to load dataset from database, starting in degraded mode", map[string]interface{}{
				"error": err.Error(),
			})
			return dataset.NewStore(nil), db
		}

		log.Info("Dataset loaded from database", map[string]interface{}{
			"records": len(records),
		})
		return dataset.NewStore(records), db

	default:
		records, stats, err := dataset.LoadCSVFile(cfg.Dataset.Path)
		if err != nil {
			log.Warn("Failed to load dataset file, starting in degraded mode", map[string]interface{}{
				"path":  cfg.Dataset.Path,
				"error": err.Error(),
			})
			return dataset.NewStore(nil), nil
		}

		log.Info("Dataset loaded from file", map[string]interface{}{
			"path":    cfg.Dataset.Path,
			"records": stats.Loaded,
			"skipped": stats.Skipped,
		})
		return dataset.NewStore(records), nil
	}
}
