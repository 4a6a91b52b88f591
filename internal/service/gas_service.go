package service

import (
	"context"
	"fmt"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/metrics"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type GasService interface {
	RecordGasUsage(ctx context.Context, req *GasUsageRequest, operator string) (*model.GasUsage, error)
	ListGasUsage(ctx context.Context, from, to string) ([]model.GasUsage, error)
}

type GasUsageRequest struct {
	Date     string           `json:"date" validate:"omitempty,day"`
	FuelType string           `json:"fuel_type" validate:"omitempty,max=50"`
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost" validate:"omitempty,decimal_gte0"`
	Note     *string          `json:"note"`
}

type gasService struct {
	gasRepo  repository.GasUsageRepository
	notifier Notifier
	clock    clock.Clock
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewGasService(gRepo repository.GasUsageRepository, notifier Notifier, clk clock.Clock, m *metrics.Metrics, log *zap.Logger) GasService {
	return &gasService{
		gasRepo:  gRepo,
		notifier: notifierOrNop(notifier),
		clock:    clk,
		metrics:  m,
		log:      log.Named("gas"),
	}
}

func (s *gasService) RecordGasUsage(ctx context.Context, req *GasUsageRequest, operator string) (*model.GasUsage, error) {
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	usage := &model.GasUsage{
		Date:      req.Date,
		FuelType:  req.FuelType,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		Note:      req.Note,
		CreatedAt: now,
		CreatedBy: operator,
	}
	if usage.Date == "" {
		usage.Date = clock.Day(now)
	}
	if usage.FuelType == "" {
		usage.FuelType = model.DefaultFuelType
	}
	if usage.UnitCost != nil {
		total := usage.Quantity.Mul(*usage.UnitCost)
		usage.TotalCost = &total
	}

	if err := s.gasRepo.Create(ctx, usage); err != nil {
		return nil, fmt.Errorf("record gas usage: %w", err)
	}

	s.metrics.GasRecorded()
	s.log.Info("gas usage recorded",
		zap.String("date", usage.Date),
		zap.String("fuel_type", usage.FuelType),
		zap.String("quantity", usage.Quantity.String()),
	)
	s.notifier.Publish(EventGasUsage, "created", usage)
	return usage, nil
}

// ListGasUsage returns records for the inclusive day range. Empty bounds
// default to the last week ending today.
func (s *gasService) ListGasUsage(ctx context.Context, from, to string) ([]model.GasUsage, error) {
	today := clock.StartOfDay(s.clock.Now())
	if to == "" {
		to = clock.Day(today)
	}
	if from == "" {
		from = clock.Day(today.AddDate(0, 0, -(DefaultBaselineDays - 1)))
	}
	for _, day := range []string{from, to} {
		if _, err := clock.ParseDay(day); err != nil {
			return nil, ErrInvalidDate
		}
	}
	return s.gasRepo.FindByDateRange(ctx, from, to)
}
