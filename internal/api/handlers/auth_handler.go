package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"driver-portal-api-server/internal/auth"
	"driver-portal-api-server/internal/models"
)

type AuthHandler struct {
	DB     *mongo.Database
	Logger *zap.Logger
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin is the remote verification procedure behind admin sign-in.
// It answers with the matched identity only; the session credential is
// issued by the caller's session manager. Every failure mode gets the
// same 401 body so the response never reveals whether an email exists.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("admin_users")

	var account models.AdminAccount
	err := collection.FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&account)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Logger.Error("admin lookup failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, account.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	now := time.Now()
	_, err = collection.UpdateOne(context.Background(),
		bson.M{"adminID": account.ID},
		bson.M{"$set": bson.M{"lastLogin": now}},
	)
	if err != nil {
		// The sign-in still succeeds; lastLogin is advisory.
		h.Logger.Warn("failed to record last login", zap.String("adminID", account.ID), zap.Error(err))
	}

	user := account.User()
	user.LastLogin = &now

	h.Logger.Info("admin authenticated", zap.String("adminID", account.ID))
	c.JSON(http.StatusOK, user)
}
