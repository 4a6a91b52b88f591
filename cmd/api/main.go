package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/config"
	"go-powder-ledger/internal/handler"
	"go-powder-ledger/internal/metrics"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"
	"go-powder-ledger/internal/service"
	"go-powder-ledger/internal/ws"
	"go-powder-ledger/pkg/database"
	"go-powder-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	cfg, dotenv, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()
	if !dotenv {
		zlog.Info(".env file not found, using process environment")
	}

	// Quantities go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// 2. Setup Database
	db, err := database.Open(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			zlog.Warn("database close failed", zap.Error(err))
		}
	}()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	if err := db.AutoMigrate(model.All()...); err != nil {
		zlog.Fatal("auto migrate failed", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	clk := clock.New()
	m := metrics.New()

	powderRepo := repository.NewPowderRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	gasRepo := repository.NewGasUsageRepo(db)
	taskRepo := repository.NewTaskRepo(db)
	statusRepo := repository.NewStatusCheckRepo(db)

	ledgerService := service.NewLedgerService(db, powderRepo, txRepo, wsHub, clk, m, zlog)
	usageService := service.NewUsageService(txRepo, gasRepo, wsHub, clk, m, zlog, cfg.AlertBaselineDays)
	dashService := service.NewDashboardService(powderRepo, usageService, clk)
	gasService := service.NewGasService(gasRepo, wsHub, clk, m, zlog)
	taskService := service.NewTaskService(taskRepo, statusRepo, clk)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Powder Ledger v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowedOrigins()}))

	// 6. Routes
	var secret []byte
	if cfg.AuthEnabled() {
		secret = []byte(cfg.JWTSecret)
	} else {
		zlog.Warn("JWT_SECRET not set, API is unauthenticated")
	}
	handler.SetupRoutes(app, handler.Handlers{
		Powder:    handler.NewPowderHandler(ledgerService),
		Dashboard: handler.NewDashboardHandler(dashService),
		Usage:     handler.NewUsageHandler(usageService),
		Gas:       handler.NewGasHandler(gasService),
		Task:      handler.NewTaskHandler(taskService),
	}, secret)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	stop()

	zlog.Info("server exited")
}
