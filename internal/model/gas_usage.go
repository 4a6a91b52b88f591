package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultFuelType is recorded when a gas usage entry names no fuel.
const DefaultFuelType = "LPG"

// GasUsage is a day-keyed fuel consumption record. It carries no balance;
// records only feed usage analytics.
type GasUsage struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Date      string           `gorm:"column:usage_date;type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD, UTC
	FuelType  string           `gorm:"type:varchar(50);not null" json:"fuel_type"`
	Quantity  decimal.Decimal  `gorm:"type:numeric;not null" json:"quantity"`
	UnitCost  *decimal.Decimal `gorm:"type:numeric" json:"unit_cost"`
	TotalCost *decimal.Decimal `gorm:"type:numeric" json:"total_cost"`
	Note      *string          `gorm:"type:text" json:"note"`
	CreatedAt time.Time        `json:"created_at"`
	CreatedBy string           `gorm:"type:varchar(255)" json:"created_by"`
}

func (GasUsage) TableName() string {
	return "gas_usages"
}

func (g *GasUsage) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
