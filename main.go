package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"challenge-streak-system/handlers"
	"challenge-streak-system/middleware"
	"challenge-streak-system/models"
	"challenge-streak-system/services"
	"challenge-streak-system/telegram"
	"challenge-streak-system/utils"
	"challenge-streak-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable not set")
	}
	challengesFile := os.Getenv("CHALLENGES_FILE")
	if challengesFile == "" {
		challengesFile = "challenges.json"
	}

	tzName := os.Getenv("TZ")
	if tzName == "" {
		tzName = "Europe/Moscow"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatal("invalid TZ: ", err)
	}
	reminderAt := os.Getenv("REMINDER_AT")
	if reminderAt == "" {
		reminderAt = "06:00"
	}
	enforceAt := os.Getenv("ENFORCEMENT_AT")
	if enforceAt == "" {
		enforceAt = "23:30"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Challenge{},
		&models.ParticipantRecord{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	catalog, err := services.LoadCatalog(challengesFile)
	if err != nil {
		log.Fatal("failed to load challenge catalog: ", err)
	}
	if err := catalog.Seed(db); err != nil {
		log.Fatal("failed to seed challenge catalog: ", err)
	}

	r2Snapshots, err := utils.InitR2()
	if err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	// Assign through the nil check: a typed-nil *R2Snapshots stuffed into the
	// interface would look non-nil to the sweep's guard.
	var snapshots services.SnapshotSink
	if r2Snapshots != nil {
		snapshots = r2Snapshots
	} else {
		log.Println("⚠️  R2 not configured — participant snapshot backups disabled")
	}

	botClient := telegram.NewClient(botToken)
	messenger := telegram.NewMessenger(botClient)

	store := services.NewParticipantStore(db)
	enrollmentService := services.NewEnrollmentService(store, catalog, messenger)
	reportService := services.NewReportService(store, catalog)
	enforcementService := services.NewEnforcementService(store, catalog, messenger, snapshots)

	sched, err := enforcementService.StartDailyScheduler(loc, reminderAt, enforceAt)
	if err != nil {
		log.Fatal("failed to start daily scheduler: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := workers.NewUpdatePoller(botClient, enrollmentService, reportService, catalog)
	go poller.Start(ctx)

	handlers.SetupChallengeRoutes(app, catalog, enrollmentService, reportService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ Challenge catalog loaded: %d challenge(s)", len(catalog.All()))
	log.Println("✅ Telegram update poller running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
}
