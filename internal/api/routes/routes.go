package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"driver-portal-api-server/internal/api/handlers"
	"driver-portal-api-server/internal/api/middleware"
	"driver-portal-api-server/internal/auth"
	"driver-portal-api-server/internal/s3"
	"driver-portal-api-server/internal/socket"
)

// SetupRouter wires the handlers to their routes.
func SetupRouter(
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	codec *auth.Codec,
	wsHub *socket.Hub,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	authHandler := &handlers.AuthHandler{DB: db, Logger: logger}
	driverHandler := &handlers.DriverHandler{DB: db, Uploader: s3Uploader, Hub: wsHub, Logger: logger}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Codec: codec, Logger: logger}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket authenticates via query token inside the handler.
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/admin/login", authHandler.AdminLogin)
		}

		// Driver registration is the applicant-facing entry point.
		apiV1.POST("/register", driverHandler.Register)

		// === PROTECTED ROUTES ===
		// Review operations mutate application state and are re-checked
		// server-side; the client-side gate alone is not trusted.

		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate(codec))
		admin.Use(middleware.Authorize(auth.RoleAdmin))
		{
			drivers := admin.Group("/drivers")
			{
				drivers.GET("/", driverHandler.List)
				drivers.GET("/:id", driverHandler.Get)
				drivers.PUT("/:id/status", driverHandler.SetStatus)
			}
		}
	}

	return router
}
