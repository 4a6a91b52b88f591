package handler

import (
	"go-powder-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type GasHandler struct {
	service service.GasService
}

func NewGasHandler(s service.GasService) *GasHandler {
	return &GasHandler{service: s}
}

// POST /api/v1/gas/usage
func (h *GasHandler) RecordGasUsage(c *fiber.Ctx) error {
	var req service.GasUsageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	usage, err := h.service.RecordGasUsage(c.UserContext(), &req, getOperator(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Gas usage recorded", "data": usage})
}

// GetGasUsage lists records for a day range
// Query params: from, to (YYYY-MM-DD, default the last 7 days)
func (h *GasHandler) GetGasUsage(c *fiber.Ctx) error {
	usages, err := h.service.ListGasUsage(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(usages)
}
