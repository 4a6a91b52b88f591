package handler

import (
	"strconv"

	"go-powder-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetSummary returns the stock overview across all powders
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock summary"})
	}

	return c.JSON(summary)
}

// GetStockMovement returns daily received and consumed kg for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil {
		return errorResponse(c, service.ErrInvalidRange)
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
