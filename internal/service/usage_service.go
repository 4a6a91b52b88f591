package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/metrics"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ResourceClass selects which usage records the engine works over.
type ResourceClass string

const (
	ClassPowder ResourceClass = "powder"
	ClassGas    ResourceClass = "gas"
)

func ParseResourceClass(s string) (ResourceClass, error) {
	switch ResourceClass(s) {
	case ClassPowder, ClassGas:
		return ResourceClass(s), nil
	}
	return "", ErrUnknownResourceClass
}

const (
	DefaultBaselineDays = 7
	MaxTrendDays        = 90
)

// Alert thresholds.
var (
	alertRatio         = decimal.RequireFromString("1.5")
	alertMinWithBase   = decimal.NewFromInt(5)
	alertMinWithNoBase = decimal.NewFromInt(10)
)

// LedgerFilter narrows LedgerAggregate to one powder and/or transaction type.
type LedgerFilter struct {
	PowderID *uuid.UUID
	Type     model.TransactionType
}

type UsageToday struct {
	Class    ResourceClass   `json:"class"`
	Date     string          `json:"date"`
	Quantity decimal.Decimal `json:"total_qty"`
}

type UsageAlert struct {
	Class       ResourceClass    `json:"class"`
	Date        string           `json:"date"`
	TotalQty    decimal.Decimal  `json:"total_qty"`
	TotalCost   *decimal.Decimal `json:"total_cost"`
	BaselineAvg decimal.Decimal  `json:"baseline_avg"`
	Alert       bool             `json:"alert"`
}

type UsageService interface {
	LedgerAggregate(ctx context.Context, filter LedgerFilter, start, end time.Time) ([]DailyBucket, error)
	DailyTotal(ctx context.Context, class ResourceClass, day time.Time) (decimal.Decimal, error)
	RollingBaseline(ctx context.Context, class ResourceClass, asOf time.Time, windowDays int) (decimal.Decimal, error)
	UsageToday(ctx context.Context, class ResourceClass) (*UsageToday, error)
	UsageTrend(ctx context.Context, class ResourceClass, days int) ([]DailyBucket, error)
	AlertToday(ctx context.Context, class ResourceClass) (*UsageAlert, error)
	GasAlertToday(ctx context.Context) (*UsageAlert, error)
}

type usageService struct {
	txRepo       repository.TransactionRepository
	gasRepo      repository.GasUsageRepository
	notifier     Notifier
	clock        clock.Clock
	metrics      *metrics.Metrics
	log          *zap.Logger
	baselineDays int

	mu     sync.Mutex
	raised map[ResourceClass]string // last day an alert was raised, per class
}

func NewUsageService(tRepo repository.TransactionRepository, gRepo repository.GasUsageRepository,
	notifier Notifier, clk clock.Clock, m *metrics.Metrics, log *zap.Logger, baselineDays int) UsageService {
	if baselineDays <= 0 {
		baselineDays = DefaultBaselineDays
	}
	return &usageService{
		txRepo:       tRepo,
		gasRepo:      gRepo,
		notifier:     notifierOrNop(notifier),
		clock:        clk,
		metrics:      m,
		log:          log.Named("usage"),
		baselineDays: baselineDays,
		raised:       make(map[ResourceClass]string),
	}
}

func (s *usageService) LedgerAggregate(ctx context.Context, filter LedgerFilter, start, end time.Time) ([]DailyBucket, error) {
	if clock.StartOfDay(start).After(clock.StartOfDay(end)) {
		return []DailyBucket{}, nil
	}
	txs, err := s.txRepo.Find(ctx, repository.TransactionFilter{
		PowderID: filter.PowderID,
		Type:     filter.Type,
		From:     clock.StartOfDay(start),
		To:       clock.StartOfDay(end).AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return Aggregate(transactionEvents(txs), start, end), nil
}

func (s *usageService) DailyTotal(ctx context.Context, class ResourceClass, day time.Time) (decimal.Decimal, error) {
	events, err := s.events(ctx, class, day, day)
	if err != nil {
		return decimal.Zero, err
	}
	return sumDay(events, clock.Day(day)), nil
}

func (s *usageService) RollingBaseline(ctx context.Context, class ResourceClass, asOf time.Time, windowDays int) (decimal.Decimal, error) {
	if windowDays <= 0 {
		windowDays = s.baselineDays
	}
	start := clock.StartOfDay(asOf).AddDate(0, 0, -windowDays)
	end := clock.StartOfDay(asOf).AddDate(0, 0, -1)
	events, err := s.events(ctx, class, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return RollingBaseline(events, asOf, windowDays), nil
}

func (s *usageService) UsageToday(ctx context.Context, class ResourceClass) (*UsageToday, error) {
	today := s.clock.Now()
	total, err := s.DailyTotal(ctx, class, today)
	if err != nil {
		return nil, err
	}
	return &UsageToday{Class: class, Date: clock.Day(today), Quantity: total}, nil
}

func (s *usageService) UsageTrend(ctx context.Context, class ResourceClass, days int) ([]DailyBucket, error) {
	if days < 1 || days > MaxTrendDays {
		return nil, ErrInvalidRange
	}
	end := clock.StartOfDay(s.clock.Now())
	start := end.AddDate(0, 0, -(days - 1))
	events, err := s.events(ctx, class, start, end)
	if err != nil {
		return nil, err
	}
	return Aggregate(events, start, end), nil
}

// AlertToday compares today's total with the rolling baseline of the
// preceding days. Both are read in one pass over the window.
func (s *usageService) AlertToday(ctx context.Context, class ResourceClass) (*UsageAlert, error) {
	now := s.clock.Now()
	today := clock.StartOfDay(now)
	events, err := s.events(ctx, class, today.AddDate(0, 0, -s.baselineDays), today)
	if err != nil {
		return nil, err
	}

	day := clock.Day(today)
	res := &UsageAlert{
		Class:       class,
		Date:        day,
		TotalQty:    sumDay(events, day),
		BaselineAvg: RollingBaseline(events, now, s.baselineDays),
	}
	if class == ClassGas {
		res.TotalCost = sumCost(events, day)
	}
	res.Alert = EvaluateAlert(res.TotalQty, res.BaselineAvg)
	res.BaselineAvg = res.BaselineAvg.Round(2)

	if res.Alert && s.raiseOnce(class, day) {
		s.metrics.UsageAlert(string(class))
		s.log.Warn("usage above baseline",
			zap.String("class", string(class)),
			zap.String("date", day),
			zap.String("total_qty", res.TotalQty.String()),
			zap.String("baseline_avg", res.BaselineAvg.String()),
		)
		s.notifier.Publish(EventUsageAlert, string(class), res)
	}
	return res, nil
}

// raiseOnce reports whether this is the first alert for class on day. Polling
// the alert endpoint keeps returning alert=true without re-raising it.
func (s *usageService) raiseOnce(class ResourceClass, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raised[class] == day {
		return false
	}
	s.raised[class] = day
	return true
}

func (s *usageService) GasAlertToday(ctx context.Context) (*UsageAlert, error) {
	return s.AlertToday(ctx, ClassGas)
}

// events loads usage of the class for the UTC days [start, end].
func (s *usageService) events(ctx context.Context, class ResourceClass, start, end time.Time) ([]UsageEvent, error) {
	switch class {
	case ClassPowder:
		txs, err := s.txRepo.Find(ctx, repository.TransactionFilter{
			Type: model.TxConsume,
			From: clock.StartOfDay(start),
			To:   clock.StartOfDay(end).AddDate(0, 0, 1),
		})
		if err != nil {
			return nil, fmt.Errorf("load consume transactions: %w", err)
		}
		return transactionEvents(txs), nil
	case ClassGas:
		usages, err := s.gasRepo.FindByDateRange(ctx, clock.Day(start), clock.Day(end))
		if err != nil {
			return nil, fmt.Errorf("load gas usage: %w", err)
		}
		return gasEvents(usages), nil
	default:
		return nil, ErrUnknownResourceClass
	}
}

// RollingBaseline averages the per-day totals of the windowDays days strictly
// before asOf. Only days with at least one event count toward the divisor, so
// a quiet day does not pull the baseline down.
func RollingBaseline(events []UsageEvent, asOf time.Time, windowDays int) decimal.Decimal {
	end := clock.StartOfDay(asOf)
	start := end.AddDate(0, 0, -windowDays)

	totals := make(map[string]decimal.Decimal)
	for day, qty := range dayTotals(events) {
		d, err := clock.ParseDay(day)
		if err != nil || d.Before(start) || !d.Before(end) {
			continue
		}
		totals[day] = qty
	}
	if len(totals) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, qty := range totals {
		sum = sum.Add(qty)
	}
	return sum.Div(decimal.NewFromInt(int64(len(totals))))
}

// EvaluateAlert reports whether today's usage is anomalous against baseline.
// With history, usage must be at least 5 and strictly above 1.5x baseline.
// Without history, usage of 10 or more alerts.
func EvaluateAlert(today, baseline decimal.Decimal) bool {
	if baseline.IsPositive() {
		return today.GreaterThanOrEqual(alertMinWithBase) && today.GreaterThan(baseline.Mul(alertRatio))
	}
	if baseline.IsZero() {
		return today.GreaterThanOrEqual(alertMinWithNoBase)
	}
	return false
}

func sumDay(events []UsageEvent, day string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if e.Day == day {
			total = total.Add(e.Quantity)
		}
	}
	return total
}

func sumCost(events []UsageEvent, day string) *decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if e.Day == day && e.Cost != nil {
			total = total.Add(*e.Cost)
		}
	}
	return &total
}
