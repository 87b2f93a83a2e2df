package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"driver-portal-api-server/config"
	"driver-portal-api-server/internal/auth"
	"driver-portal-api-server/internal/models"
)

// SeedAdmin creates the bootstrap portal administrator when none exists
// for the configured email. Skipped entirely when no admin email is set.
func SeedAdmin(db *mongo.Database, cfg config.AdminConfig, logger *zap.Logger) error {
	if cfg.Email == "" {
		logger.Info("no bootstrap admin configured, seeding skipped")
		return nil
	}

	collection := db.Collection("admin_users")

	count, err := collection.CountDocuments(context.Background(), bson.M{"email": cfg.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("bootstrap admin already exists, seeding skipped", zap.String("email", cfg.Email))
		return nil
	}

	hashedPassword, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.AdminAccount{
		ID:        uuid.New().String(),
		Email:     cfg.Email,
		FullName:  cfg.FullName,
		Password:  hashedPassword,
		CreatedAt: time.Now(),
	}

	if _, err := collection.InsertOne(context.Background(), admin); err != nil {
		return err
	}

	logger.Info("bootstrap admin seeded", zap.String("email", cfg.Email))
	return nil
}
