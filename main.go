package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aethex-api/config"
	"aethex-api/db"
	"aethex-api/handlers"
	"aethex-api/middleware"
	"aethex-api/services"
	"aethex-api/utils"
	"aethex-api/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		if err := db.Seed(gdb); err != nil {
			log.Fatal("failed to seed database:", err)
		}
	} else {
		log.Println("⚠️  AUTO_MIGRATE=false, assuming the schema is already in place")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Optional integrations ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️  Redis at %s unreachable, form rate limiting will fail open: %v", cfg.RedisAddr, err)
		}
		defer rdb.Close()
	} else {
		log.Println("⚠️  REDIS_ADDR not set, form rate limiting disabled")
	}

	var avatars services.AvatarStore
	if cfg.R2Enabled() {
		store, err := utils.NewR2Store(ctx, utils.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		avatars = store
	} else {
		log.Println("⚠️  R2 credentials not set, avatar uploads disabled")
	}

	var alerts services.AlertPublisher
	if cfg.DiscordWebhookURL != "" {
		dispatcher := workers.NewWebhookDispatcher(cfg.DiscordWebhookURL, 64)
		dispatcher.Start(ctx)
		alerts = dispatcher
	}

	// --- Services ---
	achievementService := services.NewAchievementService(gdb)
	roleService := services.NewRoleService(gdb)
	profileService := services.NewProfileService(gdb, achievementService, avatars)
	progressionService := services.NewProgressionService(gdb, achievementService)
	applicationService := services.NewApplicationService(gdb, achievementService, alerts)
	corpService := services.NewCorpService(gdb, roleService)
	projectService := services.NewProjectService(gdb, achievementService)
	donationService := services.NewDonationService(gdb, alerts)
	notificationService := services.NewNotificationService(gdb)

	maintenance := services.NewMaintenance(corpService, notificationService)
	if err := maintenance.Start(ctx); err != nil {
		log.Fatal("failed to start scheduler:", err)
	}
	defer maintenance.Shutdown()

	// --- HTTP ---
	app := fiber.New(fiber.Config{
		BodyLimit:    8 * 1024 * 1024, // avatars are capped lower in the service
		ReadTimeout:  30 * time.Second,
		ErrorHandler: jsonErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Retry-After",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	verifier := services.NewAuthVerifier(cfg.JWTSecret)
	limiter := middleware.NewRateLimiter(rdb)

	handlers.Setup(app, handlers.Deps{
		Profiles:      profileService,
		Progression:   progressionService,
		Achievements:  achievementService,
		Applications:  applicationService,
		Corp:          corpService,
		Roles:         roleService,
		Projects:      projectService,
		Donations:     donationService,
		Notifications: notificationService,

		UserAuth:      middleware.UserContextMiddleware(verifier, profileService),
		OptionalUser:  middleware.OptionalUser(verifier),
		StreamAuth:    middleware.SSEAuthMiddleware(verifier, profileService),
		ServiceOrUser: middleware.ServiceTokenOrUser(cfg.ServiceToken, verifier, profileService),
		FormLimit:     limiter.Limit("forms", cfg.FormRateLimit, time.Duration(cfg.FormRateWindowS)*time.Second),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", cfg.Origins())
	if alerts != nil {
		log.Println("✅ Staff alert webhook dispatcher running")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
