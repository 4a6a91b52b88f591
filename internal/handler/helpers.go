package handler

import (
	"errors"
	"time"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/middleware"
	"go-powder-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper untuk ambil operator dari JWT context (set by auth middleware)
func getOperator(c *fiber.Ctx) string {
	return middleware.Operator(c)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// clientErrors are rejected requests; the message is safe to return as is
var clientErrors = []error{
	service.ErrInvalidQuantity,
	service.ErrInsufficientStock,
	service.ErrInvalidTxType,
	service.ErrStockNotPatchable,
	service.ErrInvalidRange,
	service.ErrInvalidDate,
	service.ErrUnknownResourceClass,
}

// errorResponse maps service errors to status codes
func errorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrPowderNotFound) || errors.Is(err, service.ErrTaskNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	if errors.Is(err, service.ErrConcurrentUpdate) {
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	for _, clientErr := range clientErrors {
		if errors.Is(err, clientErr) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}

// parseTimeQuery accepts RFC 3339 or a bare YYYY-MM-DD day. A bare day used as
// the upper bound covers the whole day.
func parseTimeQuery(value string, upper bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	day, err := clock.ParseDay(value)
	if err != nil {
		return time.Time{}, service.ErrInvalidDate
	}
	if upper {
		return day.AddDate(0, 0, 1), nil
	}
	return day, nil
}
