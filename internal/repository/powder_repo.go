package repository

import (
	"context"
	"time"

	"go-powder-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PowderRepository interface {
	Create(ctx context.Context, powder *model.Powder) error
	FindAll(ctx context.Context) ([]model.Powder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Powder, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Summary(ctx context.Context) (*StockSummary, error)

	// LockByID and UpdateBalance take *gorm.DB (tx) so they run inside the ledger's transaction
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Powder, error)
	UpdateBalance(tx *gorm.DB, powder *model.Powder, newStock decimal.Decimal, at time.Time, updatedBy string) (bool, error)
}

// StockSummary is the cross-sectional view over all powders
type StockSummary struct {
	TotalSKUs     int64           `gorm:"column:total_skus" json:"total_skus"`
	TotalStock    decimal.Decimal `gorm:"column:total_stock" json:"total_stock_kg"`
	LowStockCount int64           `gorm:"column:low_stock_count" json:"low_stock_count"`
}

type powderRepo struct {
	db *gorm.DB
}

func NewPowderRepo(db *gorm.DB) PowderRepository {
	return &powderRepo{db}
}

func (r *powderRepo) Create(ctx context.Context, powder *model.Powder) error {
	return r.db.WithContext(ctx).Create(powder).Error
}

func (r *powderRepo) FindAll(ctx context.Context) ([]model.Powder, error) {
	var powders []model.Powder
	err := r.db.WithContext(ctx).Order("name ASC").Find(&powders).Error
	return powders, err
}

func (r *powderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Powder, error) {
	var powder model.Powder
	if err := r.db.WithContext(ctx).First(&powder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &powder, nil
}

func (r *powderRepo) UpdateMetadata(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Powder{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *powderRepo) Summary(ctx context.Context) (*StockSummary, error) {
	var summary StockSummary
	err := r.db.WithContext(ctx).Model(&model.Powder{}).
		Select(`
			COUNT(*) AS total_skus,
			COALESCE(SUM(current_stock_kg), 0) AS total_stock,
			COALESCE(SUM(CASE WHEN current_stock_kg < safety_stock_kg THEN 1 ELSE 0 END), 0) AS low_stock_count
		`).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// LockByID reads the powder row with SELECT ... FOR UPDATE where the dialect supports row locks
func (r *powderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Powder, error) {
	var powder model.Powder
	if err := forUpdate(tx).First(&powder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &powder, nil
}

// UpdateBalance writes the new stock only if the row still carries the version
// that was read. It reports false when another writer got there first.
func (r *powderRepo) UpdateBalance(tx *gorm.DB, powder *model.Powder, newStock decimal.Decimal, at time.Time, updatedBy string) (bool, error) {
	res := tx.Model(&model.Powder{}).
		Where("id = ? AND version = ?", powder.ID, powder.Version).
		Updates(map[string]interface{}{
			"current_stock_kg": newStock,
			"version":          powder.Version + 1,
			"updated_at":       at,
			"updated_by":       updatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// forUpdate adds a row lock clause; sqlite serializes writers itself and rejects FOR UPDATE
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
