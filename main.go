package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"match-stake-system/handlers"
	"match-stake-system/middleware"
	"match-stake-system/models"
	"match-stake-system/services"
	"match-stake-system/utils"
	"match-stake-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not fatal: fall through to the process environment.
		os.Stderr.WriteString("⚠️  No .env file found, reading environment variables directly\n")
	}
	if err := utils.InitLogger(); err != nil {
		panic(err)
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())
	app.Use(middleware.CallerContextMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: envOr("ALLOWED_ORIGINS", "http://localhost:3000"),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Caller-Address",
		MaxAge:       86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		utils.Log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		utils.Log.Fatalf("failed to initialize R2 client: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		utils.Log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.Match{},
		&models.MatchEvent{},
		&models.EventLogHead{},
		&models.PlayerRecord{},
		&models.AggregatorCursor{},
	); err != nil {
		utils.Log.Fatalf("failed to migrate database: %v", err)
	}

	operator := os.Getenv("OPERATOR_ADDRESS")
	if operator == "" {
		utils.Log.Fatal("OPERATOR_ADDRESS environment variable not set")
	}
	roles := services.RoleConfig{
		OperatorAddress: operator,
		CreatorAddress:  envOr("MATCH_CREATOR_ADDRESS", operator),
	}
	timeout := envDuration("STAKE_TIMEOUT", 24*time.Hour)
	pollInterval := envDuration("AGGREGATOR_POLL_INTERVAL", 5*time.Second)

	eventService := services.NewEventService(db)
	ledgerService := services.NewLedgerService(db, eventService)
	matchService := services.NewMatchService(db, ledgerService, eventService, roles, timeout)
	aggregatorService := services.NewAggregatorService(db, eventService)
	leaderboardService := services.NewLeaderboardService(db, eventService, aggregatorService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.PollEvents(ctx, aggregatorService, pollInterval)

	if utils.R2Enabled() {
		archiveClient := workers.NewEventArchiveClient(db, eventService)
		go workers.PollArchive(ctx, archiveClient, envDuration("ARCHIVE_POLL_INTERVAL", 1*time.Minute))
	}

	matchService.StartRefundScheduler()

	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupLedgerRoutes(app, ledgerService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)

	port := envOr("PORT", "5300")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			utils.Log.Errorf("Server error: %v", err)
		}
	}()

	utils.Log.Infof("✅ Server running on http://localhost:%s", port)
	utils.Log.Infof("✅ Leaderboard aggregator polling (every %s)", pollInterval)
	utils.Log.Infof("✅ Refund sweeper running (timeout %s)", timeout)
	if utils.R2Enabled() {
		utils.Log.Info("✅ Event archive worker running")
	}

	<-ctx.Done()
	utils.Log.Info("Shutting down server...")
	_ = app.Shutdown()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		utils.Log.Warnf("⚠️ Invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
