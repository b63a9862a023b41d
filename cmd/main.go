package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/joho/godotenv"

	"rentalbill/internal/analytics"
	"rentalbill/internal/caching"
	"rentalbill/internal/handlers"
	"rentalbill/internal/jobs/background"
	"rentalbill/internal/middleware"
	"rentalbill/internal/repositories"
	"rentalbill/internal/services"
	"rentalbill/pkg/database"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using process environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorage(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARNING: Could not ensure upload bucket exists: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	projectRepo := repositories.NewProjectRepo(pool)
	ownerRepo := repositories.NewProjectOwnerRepo(pool)
	historyRepo := repositories.NewHistoryRepo(pool)
	billRepo := repositories.NewBillRepo(pool)

	// Cache and services
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	authSvc := services.NewAuthService(userRepo, cacheSvc, jwtSecret)
	projectSvc := services.NewProjectService(projectRepo, ownerRepo)
	historySvc := services.NewHistoryService(historyRepo, projectRepo, ownerRepo)
	billSvc := services.NewBillService(billRepo, historyRepo)
	exportSvc := services.NewExportService()
	analyticsSvc := analytics.NewService(historyRepo, cacheSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(analyticsSvc, historyRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	userHandlers := handlers.NewUserHandlers(userRepo, authSvc)
	projectHandlers := handlers.NewProjectHandlers(projectSvc, storageSvc)
	historyHandlers := handlers.NewHistoryHandlers(historySvc, storageSvc, exportSvc)
	billHandlers := handlers.NewBillHandlers(billSvc)
	summaryHandlers := handlers.NewSummaryHandlers(analyticsSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)
	uploadHandlers := handlers.NewUploadHandlers(storageSvc)

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)

	e.POST("/login", authHandlers.Login)

	// Protected routes
	protected := e.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	protected.GET("/users", userHandlers.ListUsers, middleware.RequireCapability(middleware.CapListUsers))
	protected.POST("/users", userHandlers.CreateUser, middleware.RequireCapability(middleware.CapCreateUser))

	protected.GET("/projects", projectHandlers.ListProjects, middleware.RequireCapability(middleware.CapListProjects))
	protected.POST("/projects", projectHandlers.CreateProject, middleware.RequireCapability(middleware.CapCreateProject))
	protected.POST("/projects/:id/upload", projectHandlers.UploadProjectImage, middleware.RequireCapability(middleware.CapUploadProject))
	protected.GET("/project-owners", projectHandlers.ListOwners, middleware.RequireCapability(middleware.CapListOwners))

	protected.GET("/history", historyHandlers.ListHistory, middleware.RequireCapability(middleware.CapListHistory))
	protected.POST("/history", historyHandlers.CreateHistory, middleware.RequireCapability(middleware.CapCreateHistory))
	protected.POST("/history/:id/upload", historyHandlers.UploadHistoryImages, middleware.RequireCapability(middleware.CapUploadHistory))
	protected.GET("/history/export", historyHandlers.ExportHistory, middleware.RequireCapability(middleware.CapExportHistory))

	protected.GET("/bills", billHandlers.ListBills, middleware.RequireCapability(middleware.CapListBills))
	protected.POST("/bills", billHandlers.CreateBill, middleware.RequireCapability(middleware.CapCreateBills))

	protected.GET("/summary/monthly", summaryHandlers.MonthlySummary, middleware.RequireCapability(middleware.CapViewSummary))

	protected.GET("/uploads/:object", uploadHandlers.ServeUpload)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Rental billing server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
