package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faberlic-mining/config"
	"faberlic-mining/handlers"
	"faberlic-mining/middleware"
	"faberlic-mining/models"
	"faberlic-mining/services"
	"faberlic-mining/utils"
	"faberlic-mining/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown APP_LOG_LEVEL %q, keeping info", cfg.LogLevel)
	}

	// Amounts go out as JSON numbers, as the web client expects.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var locker services.AccountLocker = services.NewLocalLocker()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect to redis:", err)
		}
		defer rdb.Close()
		locker = services.NewRedisLocker(rdb)
		log.Println("🔒 Per-account locks shared through Redis")
	}

	var store services.ObjectStore
	if cfg.R2Enabled() {
		r2, err := utils.NewR2Store(ctx, utils.R2Options{
			AccountID:       cfg.CloudflareAccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		store = r2
		log.Println("🪣 Order QR codes archived to R2")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	rng := services.NewRandomSource()
	ledger := services.NewLedger(db, locker, metrics, services.SystemClock)
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, services.SystemClock)
	vipService := services.NewVIPService(ledger)
	orderService := services.NewOrderService(ledger, rng, cfg.OrderOfferTTL, store)
	resetService := services.NewResetService(ledger)
	adminService := services.NewAdminService(db)
	transactionService := services.NewTransactionService(ledger, services.TransactionRules{
		MinDeposit:       cfg.MinDeposit,
		MinWithdrawal:    cfg.MinWithdrawal,
		CollectionWallet: cfg.CollectionWallet,
	})

	if err := vipService.EnsureDefaultTiers(ctx); err != nil {
		log.Fatal("failed to seed VIP tiers:", err)
	}
	if cfg.AdminLogin != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
			log.Fatal("failed to bootstrap administrator:", err)
		}
	}

	sched, err := services.StartMaintenanceScheduler(ctx, resetService, orderService)
	if err != nil {
		log.Fatal("failed to start scheduler:", err)
	}
	go workers.PollPlatformStats(ctx, adminService, workers.NewPlatformGauges(registry), 30*time.Second)

	app := fiber.New(fiber.Config{
		AppName:      "faberlic-mining",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(middleware.MetricsMiddleware(metrics))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origins(),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		MaxAge:       86400, // 24 hours
	}))

	handlers.SetupRoutes(app, handlers.Services{
		Auth:          authService,
		VIP:           vipService,
		Mining:        services.NewMiningService(ledger),
		Spin:          services.NewSpinService(ledger, rng),
		Orders:        orderService,
		Transactions:  transactionService,
		Notifications: services.NewNotificationService(db, services.SystemClock),
		Admin:         adminService,
	}, handlers.RouteOptions{
		AuthRatePerMinute: cfg.AuthRatePerMinute,
		MetricsToken:      cfg.MetricsToken,
		Gatherer:          registry,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.HTTPAddr)
	log.Println("✅ Daily reset sweep scheduled for 00:00 UTC, offer expiry every minute")
	log.Printf("✅ CORS configured for origins: %s", cfg.Origins())

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
