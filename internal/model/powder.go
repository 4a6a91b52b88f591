package model

import "github.com/shopspring/decimal"

// Powder is a tracked coating powder. CurrentStock is a cache over the
// powder's transaction log and is written only by the ledger.
type Powder struct {
	BaseModel
	Name         string           `gorm:"type:varchar(255);not null;index" json:"name"`
	Color        *string          `gorm:"type:varchar(100)" json:"color"`
	Supplier     *string          `gorm:"type:varchar(255)" json:"supplier"`
	CurrentStock decimal.Decimal  `gorm:"column:current_stock_kg;type:numeric;not null;default:0" json:"current_stock_kg"`
	SafetyStock  decimal.Decimal  `gorm:"column:safety_stock_kg;type:numeric;not null;default:0" json:"safety_stock_kg"`
	CostPerKg    *decimal.Decimal `gorm:"column:cost_per_kg;type:numeric" json:"cost_per_kg"`

	// Version is bumped on every balance write (optimistic check).
	Version int64 `gorm:"not null;default:0" json:"-"`
}

func (Powder) TableName() string {
	return "powders"
}

// IsLowStock reports current stock strictly below the safety threshold.
func (p *Powder) IsLowStock() bool {
	return p.CurrentStock.LessThan(p.SafetyStock)
}
