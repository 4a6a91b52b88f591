package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/metrics"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxBalanceAttempts bounds retries after losing an optimistic version check.
const maxBalanceAttempts = 5

var errVersionConflict = errors.New("powder version changed")

type LedgerService interface {
	CreatePowder(ctx context.Context, req *CreatePowderRequest, operator string) (*model.Powder, error)
	ListPowders(ctx context.Context) ([]model.Powder, error)
	GetBalance(ctx context.Context, id uuid.UUID) (*model.Powder, error)
	PatchMetadata(ctx context.Context, id uuid.UUID, req *UpdatePowderRequest, operator string) (*model.Powder, error)
	Receive(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, note *string, operator string) (*model.StockTransaction, error)
	Consume(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, note *string, operator string) (*model.StockTransaction, error)
	RecordTransaction(ctx context.Context, id uuid.UUID, req *TransactionRequest, operator string) (*model.StockTransaction, error)
	ListTransactions(ctx context.Context, id uuid.UUID, from, to time.Time) ([]model.StockTransaction, error)
}

type CreatePowderRequest struct {
	Name         string           `json:"name" validate:"required,max=255"`
	Color        *string          `json:"color" validate:"omitempty,max=100"`
	Supplier     *string          `json:"supplier" validate:"omitempty,max=255"`
	CurrentStock decimal.Decimal  `json:"current_stock_kg" validate:"decimal_gte0"`
	SafetyStock  decimal.Decimal  `json:"safety_stock_kg" validate:"decimal_gte0"`
	CostPerKg    *decimal.Decimal `json:"cost_per_kg" validate:"omitempty,decimal_gte0"`
}

// UpdatePowderRequest patches metadata. CurrentStock exists only so that a
// client trying to set the balance gets an explicit rejection.
type UpdatePowderRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Color        *string          `json:"color" validate:"omitempty,max=100"`
	Supplier     *string          `json:"supplier" validate:"omitempty,max=255"`
	SafetyStock  *decimal.Decimal `json:"safety_stock_kg" validate:"omitempty,decimal_gte0"`
	CostPerKg    *decimal.Decimal `json:"cost_per_kg" validate:"omitempty,decimal_gte0"`
	CurrentStock *decimal.Decimal `json:"current_stock_kg"`
}

type TransactionRequest struct {
	Type     model.TransactionType `json:"type"`
	Quantity decimal.Decimal       `json:"quantity_kg"`
	Note     *string               `json:"note"`
}

type ledgerService struct {
	db         *gorm.DB
	powderRepo repository.PowderRepository
	txRepo     repository.TransactionRepository
	notifier   Notifier
	clock      clock.Clock
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewLedgerService(db *gorm.DB, pRepo repository.PowderRepository, tRepo repository.TransactionRepository,
	notifier Notifier, clk clock.Clock, m *metrics.Metrics, log *zap.Logger) LedgerService {
	return &ledgerService{
		db:         db,
		powderRepo: pRepo,
		txRepo:     tRepo,
		notifier:   notifierOrNop(notifier),
		clock:      clk,
		metrics:    m,
		log:        log.Named("ledger"),
	}
}

func (s *ledgerService) CreatePowder(ctx context.Context, req *CreatePowderRequest, operator string) (*model.Powder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	powder := &model.Powder{
		Name:         req.Name,
		Color:        req.Color,
		Supplier:     req.Supplier,
		CurrentStock: req.CurrentStock,
		SafetyStock:  req.SafetyStock,
		CostPerKg:    req.CostPerKg,
	}
	powder.CreatedAt = now
	powder.UpdatedAt = now
	powder.CreatedBy = operator
	powder.UpdatedBy = operator

	if err := s.powderRepo.Create(ctx, powder); err != nil {
		return nil, fmt.Errorf("create powder: %w", err)
	}

	s.log.Info("powder created",
		zap.String("powder_id", powder.ID.String()),
		zap.String("name", powder.Name),
		zap.String("opening_stock_kg", powder.CurrentStock.String()),
	)
	s.notifier.Publish(EventStockUpdate, "powder_created", map[string]interface{}{
		"powder":  powder,
		"message": fmt.Sprintf("%s created powder '%s'", operator, powder.Name),
	})
	return powder, nil
}

func (s *ledgerService) ListPowders(ctx context.Context) ([]model.Powder, error) {
	return s.powderRepo.FindAll(ctx)
}

func (s *ledgerService) GetBalance(ctx context.Context, id uuid.UUID) (*model.Powder, error) {
	powder, err := s.powderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPowderNotFound)
	}
	return powder, nil
}

func (s *ledgerService) PatchMetadata(ctx context.Context, id uuid.UUID, req *UpdatePowderRequest, operator string) (*model.Powder, error) {
	if req.CurrentStock != nil {
		return nil, ErrStockNotPatchable
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updated_at": s.clock.Now(),
		"updated_by": operator,
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if req.Supplier != nil {
		fields["supplier"] = *req.Supplier
	}
	if req.SafetyStock != nil {
		fields["safety_stock_kg"] = *req.SafetyStock
	}
	if req.CostPerKg != nil {
		fields["cost_per_kg"] = *req.CostPerKg
	}

	if err := s.powderRepo.UpdateMetadata(ctx, id, fields); err != nil {
		return nil, notFound(err, ErrPowderNotFound)
	}
	powder, err := s.GetBalance(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(EventStockUpdate, "powder_updated", map[string]interface{}{
		"powder":  powder,
		"message": fmt.Sprintf("%s updated powder '%s'", operator, powder.Name),
	})
	return powder, nil
}

func (s *ledgerService) Receive(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, note *string, operator string) (*model.StockTransaction, error) {
	return s.apply(ctx, id, model.TxReceive, quantity, note, operator)
}

func (s *ledgerService) Consume(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, note *string, operator string) (*model.StockTransaction, error) {
	return s.apply(ctx, id, model.TxConsume, quantity, note, operator)
}

func (s *ledgerService) RecordTransaction(ctx context.Context, id uuid.UUID, req *TransactionRequest, operator string) (*model.StockTransaction, error) {
	if !req.Type.Valid() {
		return nil, ErrInvalidTxType
	}
	return s.apply(ctx, id, req.Type, req.Quantity, req.Note, operator)
}

func (s *ledgerService) ListTransactions(ctx context.Context, id uuid.UUID, from, to time.Time) ([]model.StockTransaction, error) {
	if _, err := s.GetBalance(ctx, id); err != nil {
		return nil, err
	}
	return s.txRepo.Find(ctx, repository.TransactionFilter{PowderID: &id, From: from, To: to})
}

// apply checks and moves the balance and appends the transaction as one unit.
// Either both writes commit or neither does.
func (s *ledgerService) apply(ctx context.Context, id uuid.UUID, txType model.TransactionType, quantity decimal.Decimal, note *string, operator string) (*model.StockTransaction, error) {
	if !quantity.IsPositive() {
		s.metrics.LedgerTransaction(string(txType), metrics.OutcomeRejected)
		return nil, ErrInvalidQuantity
	}

	for attempt := 1; attempt <= maxBalanceAttempts; attempt++ {
		trx, powder, err := s.applyOnce(ctx, id, txType, quantity, note, operator)
		switch {
		case err == nil:
			s.metrics.LedgerTransaction(string(txType), metrics.OutcomeApplied)
			s.log.Info("stock transaction applied",
				zap.String("powder_id", id.String()),
				zap.String("type", string(txType)),
				zap.String("quantity_kg", quantity.String()),
				zap.String("stock_kg", powder.CurrentStock.String()),
			)
			s.broadcastTransaction(trx, powder, operator)
			return trx, nil
		case errors.Is(err, errVersionConflict):
			s.metrics.LedgerConflict()
			s.log.Debug("balance version conflict, retrying", zap.String("powder_id", id.String()), zap.Int("attempt", attempt))
			continue
		case errors.Is(err, ErrPowderNotFound), errors.Is(err, ErrInsufficientStock):
			s.metrics.LedgerTransaction(string(txType), metrics.OutcomeRejected)
			return nil, err
		default:
			s.metrics.LedgerTransaction(string(txType), metrics.OutcomeFailed)
			s.log.Error("stock transaction failed", zap.String("powder_id", id.String()), zap.Error(err))
			return nil, err
		}
	}

	s.metrics.LedgerTransaction(string(txType), metrics.OutcomeFailed)
	return nil, ErrConcurrentUpdate
}

func (s *ledgerService) applyOnce(ctx context.Context, id uuid.UUID, txType model.TransactionType, quantity decimal.Decimal, note *string, operator string) (*model.StockTransaction, *model.Powder, error) {
	var trx *model.StockTransaction
	var powder *model.Powder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.powderRepo.LockByID(tx, id)
		if err != nil {
			return notFound(err, ErrPowderNotFound)
		}

		movement := &model.StockTransaction{
			PowderID:  id,
			Type:      txType,
			Quantity:  quantity,
			Note:      note,
			CreatedBy: operator,
		}
		newStock := current.CurrentStock.Add(movement.Signed())
		if newStock.IsNegative() {
			return ErrInsufficientStock
		}

		now := s.clock.Now()
		ok, err := s.powderRepo.UpdateBalance(tx, current, newStock, now, operator)
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		if !ok {
			return errVersionConflict
		}

		movement.Timestamp = now
		if err := s.txRepo.Append(tx, movement); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		current.CurrentStock = newStock
		current.Version++
		current.UpdatedAt = now
		current.UpdatedBy = operator
		trx, powder = movement, current
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return trx, powder, nil
}

// broadcastTransaction runs after commit so clients never see a rolled back movement
func (s *ledgerService) broadcastTransaction(trx *model.StockTransaction, powder *model.Powder, operator string) {
	verb := "received"
	if trx.Type == model.TxConsume {
		verb = "consumed"
	}
	s.notifier.Publish(EventStockUpdate, "transaction_created", map[string]interface{}{
		"transaction":  trx,
		"powder":       map[string]interface{}{"id": powder.ID, "name": powder.Name},
		"new_stock_kg": powder.CurrentStock,
		"low_stock":    powder.IsLowStock(),
		"message":      fmt.Sprintf("%s %s %s kg of '%s'", operator, verb, trx.Quantity.String(), powder.Name),
	})
}

// notFound maps gorm's missing-row error to the domain error and wraps anything else
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	if errors.Is(err, domainErr) {
		return err
	}
	return fmt.Errorf("lookup: %w", err)
}
