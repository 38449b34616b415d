package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	sqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hanapbahay/server/config"
	"hanapbahay/server/internal/api"
	"hanapbahay/server/internal/auth"
	"hanapbahay/server/internal/database"
	"hanapbahay/server/internal/geocoding"
	"hanapbahay/server/internal/maintenance"
	"hanapbahay/server/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.DBPath)

	// Initialize database
	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Initialize geocoder
	cacheDir := filepath.Join(os.TempDir(), "hanapbahay", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cfg.Geocoding.Endpoint, cfg.Geocoding.UserAgent, cacheDir)

	// Initialize object storage
	store, err := storage.NewS3Store(context.Background(), cfg.Storage.Region, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize object storage")
	}

	// Initialize the maintenance pipeline over the same database file
	gormDB, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open maintenance database handle")
	}

	queue := maintenance.NewCleanupQueue(cfg.Maintenance.MaxBatchSize, logger)
	processor := maintenance.NewProcessor(gormDB, store, queue, cfg, logger)
	scheduler := maintenance.NewScheduler(db, gormDB, queue, geocoder, cfg, logger)

	queue.Start()
	processor.Start()
	scheduler.Start()
	defer func() {
		scheduler.Stop()
		processor.Stop()
		queue.Close()
	}()

	// Initialize handler
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	handler := api.NewHandler(db, logger, geocoder, store, tokens, cfg)
	handler.SetMaintenance(scheduler)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	api.SetupRoutes(router, handler, tokens)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
