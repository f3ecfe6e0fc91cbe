package ledger_api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/domain/receipt"
	"github.com/omnitrip-budget-ledger/internal/ledger"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/components"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
	"github.com/omnitrip-budget-ledger/internal/platform/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type constRandom struct{ f float64 }

func (r constRandom) Float64() float64 { return r.f }
func (r constRandom) Intn(int) int     { return 0 }

// memoryArchive stands in for the receipt archive; RecordReceipt archives directly.
type memoryArchive struct {
	mu       sync.Mutex
	receipts map[string]*budget.OrderReceipt
}

func (a *memoryArchive) RecordReceipt(ctx context.Context, r *budget.OrderReceipt) error {
	return a.Store(ctx, r)
}

func (a *memoryArchive) Store(_ context.Context, r *budget.OrderReceipt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.receipts[r.OrderID]; ok {
		return receipt.ErrAlreadyArchived{OrderID: r.OrderID}
	}
	a.receipts[r.OrderID] = r
	return nil
}

func (a *memoryArchive) GetByOrderID(_ context.Context, orderID string) (*budget.OrderReceipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.receipts[orderID]
	if !ok {
		return nil, receipt.ErrReceiptNotFound{OrderID: orderID}
	}
	return r, nil
}

func (a *memoryArchive) ListBySegment(_ context.Context, segmentID string, limit int) ([]*budget.OrderReceipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*budget.OrderReceipt
	for _, r := range a.receipts {
		if r.SegmentID == segmentID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, auth config.AuthConfig) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := newTestLogger()

	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Auth:        auth,
		Ledger:      config.LedgerConfig{SubscriberBuffer: 8},
		WorkerPool:  config.WorkerPoolConfig{Size: 2},
		Payment:     config.PaymentConfig{DeclineAbove: 5000, FailureRate: 0.1},
		Fulfillment: config.FulfillmentConfig{SuccessRate: 0.85},
	}

	store := ledger.NewStore(logger, ledger.Options{})
	archive := &memoryArchive{receipts: make(map[string]*budget.OrderReceipt)}
	workflow, release, err := components.CreateCheckoutWorkflow(logger, cfg, store, archive,
		gateway.WithRandom(constRandom{f: 0.5}),
		gateway.WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }),
	)
	require.NoError(t, err)
	t.Cleanup(release)

	return NewServer(logger, cfg, Services{
		Budget:         service.NewBudgetService(logger, store),
		PaymentMethods: service.NewPaymentMethodService(logger, store),
		Checkout:       workflow,
		Receipts:       service.NewReceiptService(archive),
		Events:         store,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func data[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope.Data
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, config.AuthConfig{JWTSecret: "s3cret"}).Handler()

	w := do(t, h, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestServer_CheckoutFlow(t *testing.T) {
	h := newTestServer(t, config.AuthConfig{}).Handler()

	w := do(t, h, http.MethodPut, "/api/v1/segments/trip_1/budget", map[string]any{"totalBudget": 2000}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/segments/trip_1/items", map[string]any{
		"type": "flight", "title": "Flight", "providerName": "SkyAir", "amount": 350,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := data[budget.Item](t, w)

	w = do(t, h, http.MethodGet, "/api/v1/segments/trip_1/accounting", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	acc := data[budget.Accounting](t, w)
	assert.Equal(t, 350.0, acc.BudgetItemsSpent)
	assert.Equal(t, 1650.0, acc.Remaining)

	w = do(t, h, http.MethodPost, "/api/v1/segments/trip_1/checkout", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := data[budget.OrderReceipt](t, w)
	assert.Equal(t, 350.0, r.Total)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "SKY-0", r.Items[0].Confirmation.ConfirmationCode)

	w = do(t, h, http.MethodGet, "/api/v1/segments/trip_1/accounting", nil, nil)
	assert.Equal(t, 350.0, data[budget.Accounting](t, w).BudgetItemsSpent)

	w = do(t, h, http.MethodDelete, "/api/v1/segments/trip_1/items/"+item.ID, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/receipts/"+r.OrderID, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/segments/trip_1/checkout", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_BearerAuth(t *testing.T) {
	h := newTestServer(t, config.AuthConfig{JWTSecret: "s3cret"}).Handler()

	w := do(t, h, http.MethodGet, "/api/v1/payment-methods", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "traveler-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	w = do(t, h, http.MethodGet, "/api/v1/payment-methods", nil, http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, data[service.PaymentMethods](t, w).Methods)
}
