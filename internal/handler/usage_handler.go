package handler

import (
	"strconv"

	"go-powder-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UsageHandler struct {
	service service.UsageService
}

func NewUsageHandler(s service.UsageService) *UsageHandler {
	return &UsageHandler{service: s}
}

// GET /api/v1/usage/:class/today
func (h *UsageHandler) GetUsageToday(c *fiber.Ctx) error {
	class, err := service.ParseResourceClass(c.Params("class"))
	if err != nil {
		return errorResponse(c, err)
	}

	usage, err := h.service.UsageToday(c.UserContext(), class)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(usage)
}

// GetUsageTrend returns a dense daily series ending today
// Query params: days (1..90, default 7)
func (h *UsageHandler) GetUsageTrend(c *fiber.Ctx) error {
	class, err := service.ParseResourceClass(c.Params("class"))
	if err != nil {
		return errorResponse(c, err)
	}
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil {
		return errorResponse(c, service.ErrInvalidRange)
	}

	series, err := h.service.UsageTrend(c.UserContext(), class, days)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"class":  class,
		"period": days,
		"data":   series,
	})
}

// GET /api/v1/usage/:class/alert
func (h *UsageHandler) GetUsageAlert(c *fiber.Ctx) error {
	class, err := service.ParseResourceClass(c.Params("class"))
	if err != nil {
		return errorResponse(c, err)
	}

	alert, err := h.service.AlertToday(c.UserContext(), class)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(alert)
}

// GET /api/v1/gas/alert/today
func (h *UsageHandler) GetGasAlertToday(c *fiber.Ctx) error {
	alert, err := h.service.GasAlertToday(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(alert)
}
