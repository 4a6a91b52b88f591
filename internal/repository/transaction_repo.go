package repository

import (
	"context"
	"time"

	"go-powder-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows a read of the transaction log. From is inclusive,
// To is exclusive; zero values leave that side open.
type TransactionFilter struct {
	PowderID *uuid.UUID
	Type     model.TransactionType
	From     time.Time
	To       time.Time
}

// TransactionRepository is the append-only powder transaction log.
type TransactionRepository interface {
	Append(tx *gorm.DB, t *model.StockTransaction) error
	Find(ctx context.Context, f TransactionFilter) ([]model.StockTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Append inserts through tx so the row commits together with the balance update
func (r *transactionRepo) Append(tx *gorm.DB, t *model.StockTransaction) error {
	return tx.Create(t).Error
}

// Find returns matching transactions oldest first
func (r *transactionRepo) Find(ctx context.Context, f TransactionFilter) ([]model.StockTransaction, error) {
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{})
	if f.PowderID != nil {
		q = q.Where("powder_id = ?", *f.PowderID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if !f.From.IsZero() {
		q = q.Where("occurred_at >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("occurred_at < ?", f.To.UTC())
	}

	var transactions []model.StockTransaction
	err := q.Order("occurred_at ASC").Order("id ASC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	var t model.StockTransaction
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
