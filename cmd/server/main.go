package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/atlaspharma/atlas-api/internal/config"
	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/handlers"
	"github.com/atlaspharma/atlas-api/internal/middleware"
	"github.com/atlaspharma/atlas-api/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create admin user if it doesn't exist
	if err := database.EnsureAdminUser(db, cfg); err != nil {
		log.Printf("Warning: Could not ensure admin user: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Initialize S3 storage for compliance documents. The marketplace runs
	// fine without it; document endpoints report unavailable instead.
	storage := initStorage(cfg)

	// Email + watchlist alerts
	emailService := services.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		log.Println("SMTP not configured, watchlist alert emails disabled")
	}
	alertService := services.NewAlertService(db, emailService)

	// Create handler with dependencies
	h := handlers.New(db, cfg, storage, alertService)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", middleware.AuthRequired(cfg), h.GetCurrentUser)
	auth.Post("/refresh", middleware.AuthRequired(cfg), h.RefreshToken)
	auth.Put("/profile", middleware.AuthRequired(cfg), h.UpdateProfile)

	// Marketplace routes (public browse, identity attached when present)
	marketplace := api.Group("/marketplace", middleware.AuthOptional(cfg))
	marketplace.Get("/listings", h.ListListings)
	marketplace.Get("/listings/:id", h.GetListing)
	marketplace.Get("/listings/:id/documents", middleware.AuthRequired(cfg), h.ListDocuments)
	marketplace.Get("/filters", h.GetFilterOptions)

	// Seller inventory routes (authenticated)
	inventory := api.Group("/inventory", middleware.AuthRequired(cfg))
	inventory.Get("/", h.ListMyRecords)
	inventory.Post("/", h.CreateRecord)
	inventory.Get("/:id", h.GetMyRecord)
	inventory.Put("/:id", h.UpdateRecord)
	inventory.Put("/:id/status", h.UpdateRecordStatus)
	inventory.Delete("/:id", h.DeleteRecord)
	inventory.Post("/:id/documents", h.UploadDocument)

	// Document routes (authenticated)
	documents := api.Group("/documents", middleware.AuthRequired(cfg))
	documents.Get("/:id/download", h.DownloadDocument)
	documents.Delete("/:id", h.DeleteDocument)

	// Watchlist routes (authenticated)
	watchlists := api.Group("/watchlists", middleware.AuthRequired(cfg))
	watchlists.Get("/", h.ListWatchlists)
	watchlists.Post("/", h.CreateWatchlist)
	watchlists.Get("/:id", h.GetWatchlist)
	watchlists.Put("/:id", h.UpdateWatchlist)
	watchlists.Delete("/:id", h.DeleteWatchlist)
	watchlists.Post("/:id/preview", h.PreviewWatchlist)

	// Inquiry routes (authenticated)
	inquiries := api.Group("/inquiries", middleware.AuthRequired(cfg))
	inquiries.Post("/", h.CreateInquiry)
	inquiries.Get("/mine", h.ListMyInquiries)
	inquiries.Get("/received", h.ListReceivedInquiries)
	inquiries.Put("/:id/status", h.UpdateInquiryStatus)

	// Admin routes (admin only)
	admin := api.Group("/admin", middleware.AuthRequired(cfg), middleware.AdminRequired())
	admin.Get("/users", h.ListUsers)
	admin.Get("/users/:id", h.GetUser)
	admin.Put("/users/:id", h.AdminUpdateUser)
	admin.Delete("/users/:id", h.DeleteUser)
	admin.Get("/stats", h.GetPlatformStats)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

func initStorage(cfg *config.Config) *services.StorageService {
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		log.Println("S3 credentials not configured, document storage disabled")
		return nil
	}

	storage, err := services.NewStorageService(
		cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize storage service: %v", err)
		return nil
	}

	if err := storage.EnsureBucket(context.Background()); err != nil {
		log.Printf("Warning: Failed to ensure S3 bucket exists: %v", err)
	}

	return storage
}
