package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxReceive TransactionType = "receive"
	TxConsume TransactionType = "consume"
)

// Valid reports whether t is one of the two supported movement kinds.
func (t TransactionType) Valid() bool {
	return t == TxReceive || t == TxConsume
}

// StockTransaction is one immutable quantity movement of a powder.
type StockTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PowderID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_powder_tx_powder_time,priority:1" json:"powder_id"`
	Type      TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Quantity  decimal.Decimal `gorm:"column:quantity_kg;type:numeric;not null" json:"quantity_kg"`
	Note      *string         `gorm:"type:text" json:"note"`
	Timestamp time.Time       `gorm:"column:occurred_at;not null;index;index:idx_powder_tx_powder_time,priority:2" json:"timestamp"`
	CreatedBy string          `gorm:"type:varchar(255)" json:"created_by"`
}

func (StockTransaction) TableName() string {
	return "powder_transactions"
}

func (t *StockTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Signed returns the quantity with the sign it applies to the balance.
func (t *StockTransaction) Signed() decimal.Decimal {
	if t.Type == TxConsume {
		return t.Quantity.Neg()
	}
	return t.Quantity
}
