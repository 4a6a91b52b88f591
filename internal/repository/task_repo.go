package repository

import (
	"context"

	"go-powder-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	FindByDate(ctx context.Context, day string) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
}

type taskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db}
}

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByDate lists a day's tasks, newest first
func (r *taskRepo) FindByDate(ctx context.Context, day string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("task_date = ?", day).
		Order("created_at DESC").
		Limit(1000).
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

type StatusCheckRepository interface {
	Create(ctx context.Context, check *model.StatusCheck) error
	FindAll(ctx context.Context) ([]model.StatusCheck, error)
}

type statusCheckRepo struct {
	db *gorm.DB
}

func NewStatusCheckRepo(db *gorm.DB) StatusCheckRepository {
	return &statusCheckRepo{db}
}

func (r *statusCheckRepo) Create(ctx context.Context, check *model.StatusCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

func (r *statusCheckRepo) FindAll(ctx context.Context) ([]model.StatusCheck, error) {
	var checks []model.StatusCheck
	err := r.db.WithContext(ctx).Order("checked_at ASC").Limit(1000).Find(&checks).Error
	return checks, err
}
