package repository

import (
	"context"

	"go-powder-ledger/internal/model"

	"gorm.io/gorm"
)

type GasUsageRepository interface {
	Create(ctx context.Context, usage *model.GasUsage) error
	// FindByDateRange returns records whose day lies in [fromDay, toDay], both YYYY-MM-DD
	FindByDateRange(ctx context.Context, fromDay, toDay string) ([]model.GasUsage, error)
}

type gasUsageRepo struct {
	db *gorm.DB
}

func NewGasUsageRepo(db *gorm.DB) GasUsageRepository {
	return &gasUsageRepo{db}
}

func (r *gasUsageRepo) Create(ctx context.Context, usage *model.GasUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

func (r *gasUsageRepo) FindByDateRange(ctx context.Context, fromDay, toDay string) ([]model.GasUsage, error) {
	var usages []model.GasUsage
	err := r.db.WithContext(ctx).
		Where("usage_date >= ? AND usage_date <= ?", fromDay, toDay).
		Order("usage_date ASC, created_at ASC").
		Find(&usages).Error
	return usages, err
}
