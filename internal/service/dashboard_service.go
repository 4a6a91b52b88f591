package service

import (
	"context"
	"fmt"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// StockMovement is one day's received and consumed kilograms across all powders.
type StockMovement struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

type DashboardService interface {
	GetSummary(ctx context.Context) (*repository.StockSummary, error)
	GetStockMovement(ctx context.Context, days int) ([]StockMovement, error)
}

type dashboardService struct {
	powderRepo repository.PowderRepository
	usage      UsageService
	clock      clock.Clock
}

func NewDashboardService(pRepo repository.PowderRepository, usage UsageService, clk clock.Clock) DashboardService {
	return &dashboardService{powderRepo: pRepo, usage: usage, clock: clk}
}

// GetSummary reads live balances on every call
func (s *dashboardService) GetSummary(ctx context.Context) (*repository.StockSummary, error) {
	summary, err := s.powderRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock summary: %w", err)
	}
	summary.TotalStock = summary.TotalStock.Round(2)
	return summary, nil
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]StockMovement, error) {
	if days < 1 || days > MaxTrendDays {
		return nil, ErrInvalidRange
	}
	end := clock.StartOfDay(s.clock.Now())
	start := end.AddDate(0, 0, -(days - 1))

	inbound, err := s.usage.LedgerAggregate(ctx, LedgerFilter{Type: model.TxReceive}, start, end)
	if err != nil {
		return nil, err
	}
	outbound, err := s.usage.LedgerAggregate(ctx, LedgerFilter{Type: model.TxConsume}, start, end)
	if err != nil {
		return nil, err
	}

	movement := make([]StockMovement, len(inbound))
	for i := range inbound {
		movement[i] = StockMovement{
			Date:     inbound[i].Date,
			Inbound:  inbound[i].Quantity,
			Outbound: outbound[i].Quantity,
		}
	}
	return movement, nil
}
