package service

import (
	"context"
	"fmt"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"

	"github.com/google/uuid"
)

type TaskService interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest, operator string) (*model.Task, error)
	ListTodayTasks(ctx context.Context) ([]model.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req *UpdateTaskRequest, operator string) (*model.Task, error)
	CreateStatusCheck(ctx context.Context, req *StatusCheckRequest) (*model.StatusCheck, error)
	ListStatusChecks(ctx context.Context) ([]model.StatusCheck, error)
}

type CreateTaskRequest struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Description *string          `json:"description"`
	Status      model.TaskStatus `json:"status" validate:"omitempty,oneof=pending in_progress done"`
	Assignee    *string          `json:"assignee" validate:"omitempty,max=255"`
	Date        string           `json:"date" validate:"omitempty,day"`
}

type UpdateTaskRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string           `json:"description"`
	Status      *model.TaskStatus `json:"status" validate:"omitempty,oneof=pending in_progress done"`
	Assignee    *string           `json:"assignee" validate:"omitempty,max=255"`
}

type StatusCheckRequest struct {
	ClientName string `json:"client_name" validate:"required,max=255"`
}

type taskService struct {
	taskRepo   repository.TaskRepository
	statusRepo repository.StatusCheckRepository
	clock      clock.Clock
}

func NewTaskService(tRepo repository.TaskRepository, sRepo repository.StatusCheckRepository, clk clock.Clock) TaskService {
	return &taskService{taskRepo: tRepo, statusRepo: sRepo, clock: clk}
}

func (s *taskService) CreateTask(ctx context.Context, req *CreateTaskRequest, operator string) (*model.Task, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Assignee:    req.Assignee,
		Date:        req.Date,
	}
	if task.Status == "" {
		task.Status = model.TaskPending
	}
	if task.Date == "" {
		task.Date = clock.Day(now)
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	task.CreatedBy = operator
	task.UpdatedBy = operator

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListTodayTasks(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.FindByDate(ctx, clock.Day(s.clock.Now()))
}

func (s *taskService) UpdateTask(ctx context.Context, id uuid.UUID, req *UpdateTaskRequest, operator string) (*model.Task, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Assignee != nil {
		task.Assignee = req.Assignee
	}
	task.UpdatedAt = s.clock.Now()
	task.UpdatedBy = operator

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *taskService) CreateStatusCheck(ctx context.Context, req *StatusCheckRequest) (*model.StatusCheck, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	check := &model.StatusCheck{ClientName: req.ClientName, Timestamp: s.clock.Now()}
	if err := s.statusRepo.Create(ctx, check); err != nil {
		return nil, fmt.Errorf("create status check: %w", err)
	}
	return check, nil
}

func (s *taskService) ListStatusChecks(ctx context.Context) ([]model.StatusCheck, error) {
	return s.statusRepo.FindAll(ctx)
}
