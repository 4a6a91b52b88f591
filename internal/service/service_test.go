package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/config"
	"go-powder-ledger/internal/metrics"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"
	"go-powder-ledger/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testStart = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type recordedEvent struct {
	Type   string
	Action string
	Data   interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(eventType, action string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Type: eventType, Action: action, Data: data})
}

func (n *recordingNotifier) byAction(action string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, e := range n.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	events  *recordingNotifier
	metrics *metrics.Metrics

	powders repository.PowderRepository
	txs     repository.TransactionRepository
	gasLog  repository.GasUsageRepository

	ledger    LedgerService
	usage     UsageService
	dashboard DashboardService
	gas       GasService
	tasks     TaskService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.Database{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:      db,
		clock:   clock.NewFakeClock(testStart),
		events:  &recordingNotifier{},
		metrics: metrics.New(),
		powders: repository.NewPowderRepo(db),
		txs:     repository.NewTransactionRepo(db),
		gasLog:  repository.NewGasUsageRepo(db),
	}
	log := zap.NewNop()
	f.ledger = NewLedgerService(db, f.powders, f.txs, f.events, f.clock, f.metrics, log)
	f.usage = NewUsageService(f.txs, f.gasLog, f.events, f.clock, f.metrics, log, DefaultBaselineDays)
	f.dashboard = NewDashboardService(f.powders, f.usage, f.clock)
	f.gas = NewGasService(f.gasLog, f.events, f.clock, f.metrics, log)
	f.tasks = NewTaskService(repository.NewTaskRepo(db), repository.NewStatusCheckRepo(db), f.clock)
	return f
}

func (f *fixture) createPowder(t *testing.T, name, stock, safety string) *model.Powder {
	t.Helper()
	p, err := f.ledger.CreatePowder(context.Background(), &CreatePowderRequest{
		Name:         name,
		CurrentStock: decimal.RequireFromString(stock),
		SafetyStock:  decimal.RequireFromString(safety),
	}, "tester")
	require.NoError(t, err)
	return p
}

// counterValue sums a counter's samples whose label values match labels,
// given in label-name order as the registry sorts them.
func counterValue(t *testing.T, m *metrics.Metrics, name string, labels ...string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			pairs := metric.GetLabel()
			if len(pairs) != len(labels) {
				continue
			}
			for i, lp := range pairs {
				if lp.GetValue() != labels[i] {
					continue next
				}
			}
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
