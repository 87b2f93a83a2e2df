package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"driver-portal-api-server/internal/auth"
	"driver-portal-api-server/internal/models"
	"driver-portal-api-server/internal/s3"
	"driver-portal-api-server/internal/socket"
)

type DriverHandler struct {
	DB       *mongo.Database
	Uploader *s3.Uploader
	Hub      *socket.Hub
	Logger   *zap.Logger
}

type RegisterDriverRequest struct {
	FullName     string `form:"fullName" binding:"required"`
	CPF          string `form:"cpf" binding:"required"`
	CompanyName  string `form:"companyName" binding:"required"`
	CompanyID    string `form:"companyId" binding:"required"`
	Phone        string `form:"phone" binding:"required"`
	Email        string `form:"email" binding:"required,email"`
	LicensePlate string `form:"licensePlate"`
	Password     string `form:"password" binding:"required,min=6"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Register handles a driver application: multipart form fields plus the
// three identification photos, one file part per pose. The photo check
// runs before any account or database work.
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photos := make(map[models.PhotoType]*multipart.FileHeader, len(models.PhotoTypes))
	for _, pose := range models.PhotoTypes {
		file, err := c.FormFile(string(pose))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete photos", "missing": string(pose)})
			return
		}
		photos[pose] = file
	}

	cpf := digitsOnly(req.CPF)
	if len(cpf) != 11 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CPF must have 11 digits"})
		return
	}

	usersCollection := h.DB.Collection("users")

	count, err := usersCollection.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for account"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	newUser := models.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  hashedPassword,
		Role:      "driver",
		CreatedAt: time.Now(),
	}
	if _, err := usersCollection.InsertOne(context.Background(), newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	// Re-resolve the freshly created account; the application record hangs
	// off its identity, not off the request payload.
	var account models.User
	if err := usersCollection.FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&account); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve new account"})
		return
	}

	now := time.Now()
	driver := models.Driver{
		ID:           uuid.New().String(),
		UserID:       account.ID,
		FullName:     req.FullName,
		CPF:          cpf,
		CompanyName:  req.CompanyName,
		CompanyID:    req.CompanyID,
		Phone:        digitsOnly(req.Phone),
		Email:        req.Email,
		LicensePlate: strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := h.DB.Collection("drivers").InsertOne(context.Background(), driver); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save driver application"})
		return
	}

	if err := h.uploadPhotos(c.Request.Context(), driver.ID, photos); err != nil {
		// Completed uploads are not rolled back; the application stays
		// pending with whatever photos made it through.
		h.Logger.Error("photo upload failed", zap.String("driverID", driver.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.Broadcast(socket.Event{
		Type:     socket.EventDriverRegistered,
		DriverID: driver.ID,
		At:       time.Now(),
	})

	h.Logger.Info("driver registered", zap.String("driverID", driver.ID))
	c.JSON(http.StatusCreated, driver)
}

// uploadPhotos pushes the three stills to S3 and upserts one
// driver_photos document per pose. The uploads run concurrently; the
// first failure aborts the wait and is reported as-is.
func (h *DriverHandler) uploadPhotos(ctx context.Context, driverID string, photos map[models.PhotoType]*multipart.FileHeader) error {
	collection := h.DB.Collection("driver_photos")

	g, ctx := errgroup.WithContext(ctx)
	for pose, header := range photos {
		pose, header := pose, header
		g.Go(func() error {
			file, err := header.Open()
			if err != nil {
				return fmt.Errorf("failed to read photo %s: %w", pose, err)
			}
			defer file.Close()

			data, err := io.ReadAll(file)
			if err != nil {
				return fmt.Errorf("failed to read photo %s: %w", pose, err)
			}

			objectKey := fmt.Sprintf("%s/%s.jpg", driverID, pose)
			url, err := h.Uploader.UploadJPEG(ctx, bytes.NewReader(data), objectKey)
			if err != nil {
				return err
			}

			// One document per (driver, pose): a retake re-submitted later
			// replaces the URL instead of stacking a duplicate row.
			_, err = collection.UpdateOne(ctx,
				bson.M{"driverID": driverID, "photoType": pose},
				bson.M{
					"$set":         bson.M{"photoURL": url},
					"$setOnInsert": bson.M{"photoID": uuid.New().String(), "createdAt": time.Now()},
				},
				options.Update().SetUpsert(true),
			)
			if err != nil {
				return fmt.Errorf("failed to save photo record %s: %w", pose, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// List returns every driver application, newest first, with photos
// joined, filtered by the optional search and status query parameters.
func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.fetchAll(c.Request.Context())
	if err != nil {
		h.Logger.Error("failed to list drivers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query drivers"})
		return
	}

	filtered := FilterDrivers(drivers, c.Query("search"), c.Query("status"))
	c.JSON(http.StatusOK, filtered)
}

// Get returns one application with its photos.
func (h *DriverHandler) Get(c *gin.Context) {
	driverID := c.Param("id")

	var driver models.Driver
	err := h.DB.Collection("drivers").FindOne(context.Background(), bson.M{"driverID": driverID}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve driver"})
		}
		return
	}

	photos, err := h.fetchPhotos(context.Background(), driver.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve driver photos"})
		return
	}

	c.JSON(http.StatusOK, models.DriverWithPhotos{Driver: driver, Photos: photos})
}

// SetStatus approves or rejects an application. The status field is the
// only administratively mutable part of a driver record.
func (h *DriverHandler) SetStatus(c *gin.Context) {
	driverID := c.Param("id")

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return
	}

	collection := h.DB.Collection("drivers")
	result, err := collection.UpdateOne(context.Background(),
		bson.M{"driverID": driverID},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}},
	)
	if err != nil {
		h.Logger.Error("status update failed", zap.String("driverID", driverID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}

	var driver models.Driver
	if err := collection.FindOne(context.Background(), bson.M{"driverID": driverID}).Decode(&driver); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated driver"})
		return
	}

	h.Hub.Broadcast(socket.Event{
		Type:     socket.EventDriverStatusChanged,
		DriverID: driverID,
		Status:   req.Status,
		At:       time.Now(),
	})

	h.Logger.Info("driver status updated", zap.String("driverID", driverID), zap.String("status", req.Status))
	c.JSON(http.StatusOK, driver)
}

func (h *DriverHandler) fetchAll(ctx context.Context) ([]models.DriverWithPhotos, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("drivers").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}

	joined := make([]models.DriverWithPhotos, 0, len(drivers))
	for _, driver := range drivers {
		photos, err := h.fetchPhotos(ctx, driver.ID)
		if err != nil {
			return nil, err
		}
		joined = append(joined, models.DriverWithPhotos{Driver: driver, Photos: photos})
	}
	return joined, nil
}

func (h *DriverHandler) fetchPhotos(ctx context.Context, driverID string) ([]models.DriverPhoto, error) {
	cursor, err := h.DB.Collection("driver_photos").Find(ctx, bson.M{"driverID": driverID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var photos []models.DriverPhoto
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	if photos == nil {
		photos = []models.DriverPhoto{}
	}
	return photos, nil
}

// FilterDrivers applies the review filter: a case-insensitive substring
// search over name, CPF, email and company (OR-combined), and an exact
// status match unless status is empty or "all".
func FilterDrivers(drivers []models.DriverWithPhotos, search, status string) []models.DriverWithPhotos {
	out := make([]models.DriverWithPhotos, 0, len(drivers))
	needle := strings.ToLower(strings.TrimSpace(search))

	for _, d := range drivers {
		if status != "" && status != "all" && d.Status != status {
			continue
		}
		if needle != "" {
			haystacks := []string{d.FullName, d.CPF, d.Email, d.CompanyName}
			matched := false
			for _, hay := range haystacks {
				if strings.Contains(strings.ToLower(hay), needle) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
