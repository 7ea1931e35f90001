package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bazaar/internal/handlers"
	"bazaar/internal/middleware"
	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/internal/services"
	"bazaar/pkg/events"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("JWT_LIFETIME_HOURS", 24)
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "bazaar.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("RATE_LIMIT_MAX", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_EMAIL", "admin@example.com")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	var dialector gorm.Dialector
	switch viper.GetString("DB_DRIVER") {
	case "postgres":
		dialector = postgres.Open(viper.GetString("DB_DSN"))
	default:
		dialector = sqlite.Open(viper.GetString("DB_DSN"))
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Item{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Event publisher (optional) ---
	var mqClient *events.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = events.NewClient(events.Config{URL: url})
		if err != nil {
			log.Printf("Warning: events disabled, failed to connect to RabbitMQ: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)

	seedAdmin(userRepo)

	// --- Services ---
	tokenLifetime := time.Duration(viper.GetInt("JWT_LIFETIME_HOURS")) * time.Hour
	authService := services.NewAuthService(userRepo, mqClient, viper.GetString("JWT_SECRET"), tokenLifetime)
	itemService := services.NewItemService(itemRepo, categoryRepo, userRepo, mqClient)
	categoryService := services.NewCategoryService(categoryRepo, mqClient)
	userService := services.NewUserService(userRepo, itemRepo, categoryRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	userHandler := handlers.NewUserHandler(userService)
	healthHandler := handlers.NewHealthHandler()

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.New().String() },
	}))
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:               viper.GetInt("RATE_LIMIT_MAX"),
		Expiration:        time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Rate limit exceeded, retry later",
			})
		},
	}))

	// --- API Routes ---
	api := app.Group("/api")
	auth := middleware.AuthRequired(authService)
	admin := middleware.AdminRequired()

	healthHandler.RegisterRoutes(app, api)
	authHandler.RegisterRoutes(api, auth)
	itemHandler.RegisterRoutes(api, auth)
	categoryHandler.RegisterRoutes(api, auth, admin)
	userHandler.RegisterRoutes(api, auth, admin)

	// --- Event consumer ---
	// A worker that logs published catalog events. Real deployments would run
	// this in a separate process feeding search indexing or notifications.
	if mqClient != nil {
		if err := mqClient.Consume(func(msg amqp.Delivery) error {
			log.Printf("Received catalog event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}); err != nil {
			log.Printf("Failed to start event consumer: %v", err)
		}
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// errorHandler is the final handler: fiber routing errors keep their status,
// everything else becomes a generic 500 with no internal detail.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(code).JSON(fiber.Map{
			"error":   "internal",
			"message": "An unexpected error occurred",
		})
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   kindForStatus(code),
		"message": err.Error(),
	})
}

func kindForStatus(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusConflict:
		return "conflict"
	case fiber.StatusTooManyRequests:
		return "too_many_requests"
	default:
		return "error"
	}
}

// seedAdmin bootstraps the admin account from configuration. Without an
// ADMIN_PASSWORD the bootstrap is skipped entirely.
func seedAdmin(userRepo repositories.UserRepository) {
	password := viper.GetString("ADMIN_PASSWORD")
	if password == "" {
		return
	}
	username := viper.GetString("ADMIN_USERNAME")
	if existing, err := userRepo.GetByUsername(username); err == nil && existing != nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}
	admin := &models.User{
		Username: username,
		Email:    viper.GetString("ADMIN_EMAIL"),
		Password: string(hash),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := userRepo.Create(admin); err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Printf("Seeded admin user %s (ID: %d)", admin.Username, admin.ID)
}
