package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/config"
	"go-powder-ledger/internal/model"
	"go-powder-ledger/internal/repository"
	"go-powder-ledger/internal/service"
	"go-powder-ledger/pkg/database"
	"go-powder-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, secret []byte) *fiber.App {
	t.Helper()
	db, err := database.Open(config.Database{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "handler.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(model.All()...))

	clk := clock.NewFakeClock(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	powderRepo := repository.NewPowderRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	gasRepo := repository.NewGasUsageRepo(db)

	ledger := service.NewLedgerService(db, powderRepo, txRepo, nil, clk, nil, log)
	usage := service.NewUsageService(txRepo, gasRepo, nil, clk, nil, log, service.DefaultBaselineDays)

	app := fiber.New()
	SetupRoutes(app, Handlers{
		Powder:    NewPowderHandler(ledger),
		Dashboard: NewDashboardHandler(service.NewDashboardService(powderRepo, usage, clk)),
		Usage:     NewUsageHandler(usage),
		Gas:       NewGasHandler(service.NewGasService(gasRepo, nil, clk, nil, log)),
		Task:      NewTaskHandler(service.NewTaskService(repository.NewTaskRepo(db), repository.NewStatusCheckRepo(db), clk)),
	}, secret)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func createPowder(t *testing.T, app *fiber.App, stock, safety string) model.Powder {
	t.Helper()
	status, body := do(t, app, "POST", "/api/v1/powders", map[string]interface{}{
		"name":             "RAL 7016",
		"current_stock_kg": stock,
		"safety_stock_kg":  safety,
	}, "")
	require.Equal(t, 201, status, string(body))
	return decode[envelope[model.Powder]](t, body).Data
}

func TestHealth(t *testing.T) {
	status, body := do(t, newTestApp(t, nil), "GET", "/api/v1/", nil, "")
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), "Powder ledger API")
}

func TestPowderLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	p := createPowder(t, app, "5", "3")
	base := "/api/v1/powders/" + p.ID.String()

	status, body := do(t, app, "POST", base+"/transactions", map[string]interface{}{"type": "receive", "quantity_kg": 2}, "")
	require.Equal(t, 201, status, string(body))
	trx := decode[envelope[model.StockTransaction]](t, body).Data
	assert.Equal(t, model.TxReceive, trx.Type)
	assert.Equal(t, "system", trx.CreatedBy)

	status, body = do(t, app, "POST", base+"/transactions", map[string]interface{}{"type": "consume", "quantity_kg": "6"}, "")
	require.Equal(t, 201, status, string(body))

	status, body = do(t, app, "POST", base+"/transactions", map[string]interface{}{"type": "consume", "quantity_kg": 2}, "")
	assert.Equal(t, 400, status)
	assert.Contains(t, string(body), service.ErrInsufficientStock.Error())

	status, body = do(t, app, "GET", base, nil, "")
	require.Equal(t, 200, status)
	got := decode[model.Powder](t, body)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(1)))

	status, body = do(t, app, "GET", base+"/transactions?from=2026-10-16&to=2026-10-16", nil, "")
	require.Equal(t, 200, status)
	assert.Len(t, decode[[]model.StockTransaction](t, body), 2)

	status, body = do(t, app, "GET", "/api/v1/powders/summary", nil, "")
	require.Equal(t, 200, status)
	summary := decode[repository.StockSummary](t, body)
	assert.EqualValues(t, 1, summary.TotalSKUs)
	assert.EqualValues(t, 1, summary.LowStockCount)

	status, body = do(t, app, "GET", "/api/v1/powders", nil, "")
	require.Equal(t, 200, status)
	assert.Len(t, decode[[]model.Powder](t, body), 1)
}

func TestPowderErrors(t *testing.T) {
	app := newTestApp(t, nil)
	p := createPowder(t, app, "5", "0")
	base := "/api/v1/powders/" + p.ID.String()

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"bad id", "GET", "/api/v1/powders/not-a-uuid", nil, 400},
		{"unknown id", "GET", "/api/v1/powders/00000000-0000-0000-0000-000000000001", nil, 404},
		{"unknown powder transaction", "POST", "/api/v1/powders/00000000-0000-0000-0000-000000000001/transactions", map[string]interface{}{"type": "receive", "quantity_kg": 1}, 404},
		{"zero quantity", "POST", base + "/transactions", map[string]interface{}{"type": "receive", "quantity_kg": 0}, 400},
		{"negative quantity", "POST", base + "/transactions", map[string]interface{}{"type": "consume", "quantity_kg": -1}, 400},
		{"unknown type", "POST", base + "/transactions", map[string]interface{}{"type": "adjust", "quantity_kg": 1}, 400},
		{"stock patch", "PATCH", base, map[string]interface{}{"current_stock_kg": 50}, 400},
		{"missing name", "POST", "/api/v1/powders", map[string]interface{}{"current_stock_kg": 1}, 400},
		{"bad range", "GET", base + "/transactions?from=yesterday", nil, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, app, tc.method, tc.path, tc.body, "")
			assert.Equal(t, tc.status, status, string(body))
			assert.NotEmpty(t, decode[envelope[any]](t, body).Error)
		})
	}
}

func TestPatchPowder(t *testing.T) {
	app := newTestApp(t, nil)
	p := createPowder(t, app, "5", "0")

	status, body := do(t, app, "PATCH", "/api/v1/powders/"+p.ID.String(), map[string]interface{}{"color": "Anthracite", "safety_stock_kg": 6}, "")
	require.Equal(t, 200, status, string(body))
	updated := decode[envelope[model.Powder]](t, body).Data
	require.NotNil(t, updated.Color)
	assert.Equal(t, "Anthracite", *updated.Color)
	assert.True(t, updated.CurrentStock.Equal(decimal.NewFromInt(5)))
}

func TestUsageEndpoints(t *testing.T) {
	app := newTestApp(t, nil)
	p := createPowder(t, app, "50", "0")
	status, _ := do(t, app, "POST", "/api/v1/powders/"+p.ID.String()+"/transactions", map[string]interface{}{"type": "consume", "quantity_kg": 12}, "")
	require.Equal(t, 201, status)

	status, body := do(t, app, "GET", "/api/v1/usage/powder/today", nil, "")
	require.Equal(t, 200, status)
	today := decode[service.UsageToday](t, body)
	assert.True(t, today.Quantity.Equal(decimal.NewFromInt(12)))

	status, body = do(t, app, "GET", "/api/v1/usage/powder/trend?days=14", nil, "")
	require.Equal(t, 200, status)
	trend := decode[struct {
		Data []service.DailyBucket `json:"data"`
	}](t, body)
	require.Len(t, trend.Data, 14)
	assert.Equal(t, "2026-10-16", trend.Data[13].Date)

	status, body = do(t, app, "GET", "/api/v1/usage/powder/alert", nil, "")
	require.Equal(t, 200, status)
	assert.True(t, decode[service.UsageAlert](t, body).Alert)

	for _, path := range []string{"/api/v1/usage/powder/trend?days=91", "/api/v1/usage/powder/trend?days=x", "/api/v1/usage/water/today"} {
		status, _ = do(t, app, "GET", path, nil, "")
		assert.Equal(t, 400, status, path)
	}

	status, body = do(t, app, "GET", "/api/v1/dashboard/stock-movement?days=2", nil, "")
	require.Equal(t, 200, status)
	assert.Contains(t, string(body), `"period":2`)
}

func TestGasEndpoints(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, "POST", "/api/v1/gas/usage", map[string]interface{}{"quantity": 11, "unit_cost": "0.5"}, "")
	require.Equal(t, 201, status, string(body))
	usage := decode[envelope[model.GasUsage]](t, body).Data
	assert.Equal(t, "LPG", usage.FuelType)
	require.NotNil(t, usage.TotalCost)
	assert.True(t, usage.TotalCost.Equal(decimal.RequireFromString("5.5")))

	status, _ = do(t, app, "POST", "/api/v1/gas/usage", map[string]interface{}{"quantity": 0}, "")
	assert.Equal(t, 400, status)

	status, body = do(t, app, "GET", "/api/v1/gas/usage", nil, "")
	require.Equal(t, 200, status)
	assert.Len(t, decode[[]model.GasUsage](t, body), 1)

	status, body = do(t, app, "GET", "/api/v1/gas/alert/today", nil, "")
	require.Equal(t, 200, status)
	alert := decode[service.UsageAlert](t, body)
	assert.Equal(t, "2026-10-16", alert.Date)
	assert.True(t, alert.Alert, "11 with no history")
}

func TestTaskEndpoints(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, "POST", "/api/v1/tasks", map[string]interface{}{"title": "Rack parts"}, "")
	require.Equal(t, 201, status, string(body))
	task := decode[envelope[model.Task]](t, body).Data

	status, body = do(t, app, "PATCH", "/api/v1/tasks/"+task.ID.String(), map[string]interface{}{"status": "done"}, "")
	require.Equal(t, 200, status, string(body))
	assert.Equal(t, model.TaskDone, decode[envelope[model.Task]](t, body).Data.Status)

	status, _ = do(t, app, "PATCH", "/api/v1/tasks/00000000-0000-0000-0000-000000000001", map[string]interface{}{"status": "done"}, "")
	assert.Equal(t, 404, status)

	status, body = do(t, app, "GET", "/api/v1/tasks/today", nil, "")
	require.Equal(t, 200, status)
	assert.Len(t, decode[[]model.Task](t, body), 1)

	status, _ = do(t, app, "POST", "/api/v1/status", map[string]interface{}{"client_name": "kiosk"}, "")
	assert.Equal(t, 201, status)
	status, body = do(t, app, "GET", "/api/v1/status", nil, "")
	require.Equal(t, 200, status)
	assert.Len(t, decode[[]model.StatusCheck](t, body), 1)
}

func TestRoutesRequireTokenWhenSecretSet(t *testing.T) {
	secret := []byte("handler-secret")
	app := newTestApp(t, secret)

	status, _ := do(t, app, "GET", "/api/v1/", nil, "")
	assert.Equal(t, 200, status, "health stays public")

	status, _ = do(t, app, "GET", "/api/v1/powders", nil, "")
	assert.Equal(t, 401, status)

	gasOnly, err := jwt.GenerateToken(secret, "op-gas", "Gas Clerk", []string{jwt.ScopeGasWrite}, time.Hour)
	require.NoError(t, err)
	status, _ = do(t, app, "GET", "/api/v1/powders", nil, gasOnly)
	assert.Equal(t, 200, status)
	status, _ = do(t, app, "POST", "/api/v1/powders", map[string]interface{}{"name": "x"}, gasOnly)
	assert.Equal(t, 403, status)

	full, err := jwt.GenerateToken(secret, "op-lead", "Lead", jwt.AllScopes, time.Hour)
	require.NoError(t, err)
	status, body := do(t, app, "POST", "/api/v1/powders", map[string]interface{}{"name": "Signed"}, full)
	require.Equal(t, 201, status, string(body))
	assert.Equal(t, "op-lead", decode[envelope[model.Powder]](t, body).Data.CreatedBy)
}

func TestErrorResponseStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrPowderNotFound, 404},
		{service.ErrTaskNotFound, 404},
		{service.ErrConcurrentUpdate, 409},
		{&service.ValidationError{Field: "Name", Tag: "required"}, 400},
		{service.ErrInvalidRange, 400},
		{errors.New("connection reset"), 500},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return errorResponse(c, tc.err) })
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
	}
}
