package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/cattus-org/cattus-api/handlers"
	"github.com/cattus-org/cattus-api/initializers"
	"github.com/cattus-org/cattus-api/middleware"
	"github.com/cattus-org/cattus-api/pkg/notify"
	"github.com/cattus-org/cattus-api/repository"
	"github.com/cattus-org/cattus-api/websocket"
)

func main() {
	// .env is optional; real deployments pass everything via the environment.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		log.Fatal("JWT_SECRET must be set and at least 32 characters")
	}

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", dbURL)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		log.Printf("DB connection failed: %v, retrying in 2s...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Could not connect to database:", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("Migration driver error:", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		log.Fatal("Migration init error:", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("Migration failed:", err)
	}

	if err := initializers.InitDefaults(db); err != nil {
		log.Fatal("Failed to initialize default data:", err)
	}

	if err := initializers.InitMinio(); err != nil {
		log.Fatal("Failed to initialize MinIO:", err)
	}

	usersRepo := repository.NewUsersRepository(db)
	catsRepo := repository.NewCatsRepository(db)
	camerasRepo := repository.NewCamerasRepository(db)
	activitiesRepo := repository.NewActivitiesRepository(db)
	notificationsRepo := repository.NewNotificationsRepository(db)
	reportsRepo := repository.NewReportsRepository(db)
	companiesRepo := repository.NewCompaniesRepository(db)

	// Set Gin to release mode in production
	if os.Getenv("GIN_MODE") == "release" || strings.ToLower(os.Getenv("APP_ENV")) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Structured request ID and JSON access logs
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	// Panic recovery
	r.Use(gin.Recovery())

	// Configure trusted proxies for correct client IP handling in production
	trustedProxies := os.Getenv("TRUSTED_PROXIES")
	if trustedProxies != "" {
		parts := strings.Split(trustedProxies, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := r.SetTrustedProxies(parts); err != nil {
			log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
		}
	} else {
		// Default to loopback only; override via TRUSTED_PROXIES in production
		_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	}

	r.Use(middleware.CORSMiddleware())
	// Apply rate limiting globally after CORS but before routes
	r.Use(middleware.RateLimitMiddleware())

	// WebSocket hub carries the activity-changed pushes to the dashboards
	hub := websocket.NewHub()
	notifier := &notify.WSNotifier{Hub: hub}

	authHandler := handlers.NewAuthHandler(usersRepo, jwtSecret)
	catsHandler := handlers.NewCatsHandler(catsRepo)
	camerasHandler := handlers.NewCamerasHandler(camerasRepo)
	activitiesHandler := handlers.NewActivitiesHandler(activitiesRepo, catsRepo, camerasRepo, notifier)
	statusHandler := handlers.NewStatusHandler(catsRepo, activitiesRepo, notificationsRepo, notifier)
	notificationsHandler := handlers.NewNotificationsHandler(notificationsRepo)
	reportsHandler := handlers.NewReportsHandler(reportsRepo, catsRepo, activitiesRepo)
	uploadsHandler := handlers.NewUploadsHandler()
	usersHandler := handlers.NewUsersHandler(usersRepo, jwtSecret)
	companiesHandler := handlers.NewCompaniesHandler(companiesRepo, usersRepo)

	// Public endpoints
	r.GET("/health", handlers.HealthCheck)

	// Public endpoints with stricter auth rate limit
	authPublic := r.Group("/", middleware.RateLimitAuthMiddleware())
	authPublic.POST("/login", authHandler.Login)
	authPublic.POST("/companies", companiesHandler.RegisterCompany)
	authPublic.POST("/users/forgot-password", usersHandler.ForgotPassword)
	authPublic.POST("/users/reset-password", usersHandler.ResetPassword)

	auth := r.Group("/", handlers.AuthMiddleware(jwtSecret))
	{
		auth.GET("/ws", websocket.ServeWS(hub))

		auth.GET("/cats", catsHandler.ListCats)
		auth.POST("/cats", catsHandler.CreateCat)
		auth.GET("/cats/:catId", catsHandler.GetCat)
		auth.PATCH("/cats/:catId", catsHandler.UpdateCat)
		auth.DELETE("/cats/:catId", catsHandler.DeleteCat)
		auth.PATCH("/cats/:catId/favorite", catsHandler.SetFavorite)
		auth.GET("/cats/:catId/status", statusHandler.GetCatStatus)

		auth.GET("/cameras", camerasHandler.ListCameras)
		auth.POST("/cameras", camerasHandler.CreateCamera)
		auth.GET("/cameras/:cameraId", camerasHandler.GetCamera)
		auth.PATCH("/cameras/:cameraId", camerasHandler.UpdateCamera)
		auth.PATCH("/cameras/:cameraId/delete", camerasHandler.DeleteCamera)
		auth.PATCH("/cameras/:cameraId/restore", camerasHandler.RestoreCamera)

		auth.POST("/activities", activitiesHandler.CreateActivity)
		// The wildcard segment shares one name; gin rejects mixed wildcard
		// names at the same position.
		auth.PATCH("/activities/:id", activitiesHandler.UpdateActivity)
		auth.GET("/activities/camera/:cameraId", activitiesHandler.ListByCamera)
		auth.GET("/activities/:id/cat", activitiesHandler.ListByCat)
		auth.GET("/activities/:id/company", activitiesHandler.ListByCompany)

		auth.GET("/users", usersHandler.ListUsers)
		auth.POST("/users", usersHandler.CreateUser)
		auth.GET("/users/:id", usersHandler.GetUser)
		auth.PATCH("/users/:id", usersHandler.UpdateUser)
		auth.DELETE("/users/:id", usersHandler.DeleteUser)

		auth.GET("/companies/:id", companiesHandler.GetCompany)
		auth.PATCH("/companies/:id", companiesHandler.UpdateCompany)

		auth.GET("/notifications/unread", notificationsHandler.ListUnread)
		auth.POST("/notifications/mark-read", notificationsHandler.MarkRead)

		auth.POST("/reports/:catId", reportsHandler.GenerateReport)
		auth.GET("/reports/:catId", reportsHandler.ListReports)
		auth.GET("/reports/download/:reportId", reportsHandler.DownloadReport)

		auth.POST("/upload", uploadsHandler.UploadFile)
		auth.GET("/files/*key", uploadsHandler.GetFile)
	}

	r.Run(":8080")
}
