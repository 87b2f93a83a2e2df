package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"driver-portal-api-server/config"
	"driver-portal-api-server/internal/api/routes"
	"driver-portal-api-server/internal/auth"
	"driver-portal-api-server/internal/database"
	"driver-portal-api-server/internal/s3"
	"driver-portal-api-server/internal/socket"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer logger.Sync()

	db, closeDB, err := database.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer closeDB()

	if err := database.SeedAdmin(db, cfg.Admin, logger); err != nil {
		logger.Fatal("failed to seed bootstrap admin", zap.Error(err))
	}

	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		logger.Fatal("failed to initialize S3 uploader", zap.Error(err))
	}

	codec := auth.NewCodec(cfg.JWT.Secret)
	wsHub := socket.NewHub(logger)

	router := routes.SetupRouter(db, s3Uploader, codec, wsHub, logger)

	logger.Info("starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}
