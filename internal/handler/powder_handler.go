package handler

import (
	"go-powder-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PowderHandler struct {
	service service.LedgerService
}

func NewPowderHandler(s service.LedgerService) *PowderHandler {
	return &PowderHandler{service: s}
}

// CreatePowder registers a powder with its opening stock
// POST /api/v1/powders
func (h *PowderHandler) CreatePowder(c *fiber.Ctx) error {
	var req service.CreatePowderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	powder, err := h.service.CreatePowder(c.UserContext(), &req, getOperator(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Powder created", "data": powder})
}

func (h *PowderHandler) GetPowders(c *fiber.Ctx) error {
	powders, err := h.service.ListPowders(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(powders)
}

func (h *PowderHandler) GetPowder(c *fiber.Ctx) error {
	powderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid powder ID"})
	}

	powder, err := h.service.GetBalance(c.UserContext(), powderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(powder)
}

// UpdatePowder patches metadata; the stock balance is read-only here
// PATCH /api/v1/powders/:id
func (h *PowderHandler) UpdatePowder(c *fiber.Ctx) error {
	powderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid powder ID"})
	}

	var req service.UpdatePowderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.PatchMetadata(c.UserContext(), powderID, &req, getOperator(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Powder updated", "data": updated})
}

// CreateTransaction receives or consumes stock
// POST /api/v1/powders/:id/transactions
func (h *PowderHandler) CreateTransaction(c *fiber.Ctx) error {
	powderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid powder ID"})
	}

	var req service.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	trx, err := h.service.RecordTransaction(c.UserContext(), powderID, &req, getOperator(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": trx})
}

// GetTransactions lists a powder's transactions oldest first
// Query params: from, to (RFC 3339 or YYYY-MM-DD)
func (h *PowderHandler) GetTransactions(c *fiber.Ctx) error {
	powderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid powder ID"})
	}

	from, err := parseTimeQuery(c.Query("from"), false)
	if err != nil {
		return errorResponse(c, err)
	}
	to, err := parseTimeQuery(c.Query("to"), true)
	if err != nil {
		return errorResponse(c, err)
	}

	transactions, err := h.service.ListTransactions(c.UserContext(), powderID, from, to)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(transactions)
}
