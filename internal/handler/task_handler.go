package handler

import (
	"go-powder-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	service service.TaskService
}

func NewTaskHandler(s service.TaskService) *TaskHandler {
	return &TaskHandler{service: s}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req service.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	task, err := h.service.CreateTask(c.UserContext(), &req, getOperator(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Task created", "data": task})
}

func (h *TaskHandler) GetTodayTasks(c *fiber.Ctx) error {
	tasks, err := h.service.ListTodayTasks(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	taskID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var req service.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	task, err := h.service.UpdateTask(c.UserContext(), taskID, &req, getOperator(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Task updated", "data": task})
}

func (h *TaskHandler) CreateStatusCheck(c *fiber.Ctx) error {
	var req service.StatusCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	check, err := h.service.CreateStatusCheck(c.UserContext(), &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(check)
}

func (h *TaskHandler) GetStatusChecks(c *fiber.Ctx) error {
	checks, err := h.service.ListStatusChecks(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(checks)
}
