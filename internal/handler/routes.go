package handler

import (
	"go-powder-ledger/internal/middleware"
	"go-powder-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything SetupRoutes mounts
type Handlers struct {
	Powder    *PowderHandler
	Dashboard *DashboardHandler
	Usage     *UsageHandler
	Gas       *GasHandler
	Task      *TaskHandler
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Powder ledger API"})
}

// SetupRoutes mounts the REST API under /api/v1. With an empty jwtSecret every
// route is open and writes are attributed to "system".
func SetupRoutes(app *fiber.App, h Handlers, jwtSecret []byte) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Get("/", Health)

	// ============ PROTECTED ROUTES ============
	protected := api
	requireScope := func(string) fiber.Handler {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if len(jwtSecret) > 0 {
		protected = api.Group("", middleware.RequireAuth(jwtSecret))
		requireScope = middleware.RequireScope
	}

	// Powder ledger
	protected.Get("/powders", h.Powder.GetPowders)
	protected.Get("/powders/summary", h.Dashboard.GetSummary)
	protected.Get("/powders/:id", h.Powder.GetPowder)
	protected.Post("/powders", requireScope(jwt.ScopeStockWrite), h.Powder.CreatePowder)
	protected.Patch("/powders/:id", requireScope(jwt.ScopeStockWrite), h.Powder.UpdatePowder)
	protected.Get("/powders/:id/transactions", h.Powder.GetTransactions)
	protected.Post("/powders/:id/transactions", requireScope(jwt.ScopeStockWrite), h.Powder.CreateTransaction)

	// Dashboard
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// Usage analytics
	protected.Get("/usage/:class/today", h.Usage.GetUsageToday)
	protected.Get("/usage/:class/trend", h.Usage.GetUsageTrend)
	protected.Get("/usage/:class/alert", h.Usage.GetUsageAlert)

	// Gas
	protected.Get("/gas/usage", h.Gas.GetGasUsage)
	protected.Post("/gas/usage", requireScope(jwt.ScopeGasWrite), h.Gas.RecordGasUsage)
	protected.Get("/gas/alert/today", h.Usage.GetGasAlertToday)

	// Tasks and status checks
	protected.Get("/tasks/today", h.Task.GetTodayTasks)
	protected.Post("/tasks", requireScope(jwt.ScopeTaskWrite), h.Task.CreateTask)
	protected.Patch("/tasks/:id", requireScope(jwt.ScopeTaskWrite), h.Task.UpdateTask)
	protected.Get("/status", h.Task.GetStatusChecks)
	protected.Post("/status", h.Task.CreateStatusCheck)
}
