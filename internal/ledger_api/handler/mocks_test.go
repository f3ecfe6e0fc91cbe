package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/checkout"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/middleware"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
	"github.com/omnitrip-budget-ledger/internal/planning"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) ListItems(ctx context.Context, segmentID string) []budget.Item {
	args := m.Called(ctx, segmentID)
	return args.Get(0).([]budget.Item)
}

func (m *MockBudgetService) AddItem(ctx context.Context, input service.NewItemInput) (budget.Item, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(budget.Item), args.Error(1)
}

func (m *MockBudgetService) AddItemFromDeal(ctx context.Context, segmentID string, deal budget.DealOption, source budget.ScheduleItem) (budget.Item, error) {
	args := m.Called(ctx, segmentID, deal, source)
	return args.Get(0).(budget.Item), args.Error(1)
}

func (m *MockBudgetService) UpdateItem(ctx context.Context, segmentID, itemID string, patch budget.ItemPatch) (budget.Item, error) {
	args := m.Called(ctx, segmentID, itemID, patch)
	return args.Get(0).(budget.Item), args.Error(1)
}

func (m *MockBudgetService) DeleteItem(ctx context.Context, segmentID, itemID string) error {
	args := m.Called(ctx, segmentID, itemID)
	return args.Error(0)
}

func (m *MockBudgetService) SetTotalBudget(ctx context.Context, segmentID string, amount float64) (budget.Accounting, error) {
	args := m.Called(ctx, segmentID, amount)
	return args.Get(0).(budget.Accounting), args.Error(1)
}

func (m *MockBudgetService) Accounting(ctx context.Context, segmentID string, schedule []budget.ScheduleItem) budget.Accounting {
	args := m.Called(ctx, segmentID, schedule)
	return args.Get(0).(budget.Accounting)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, req checkout.Request) (*budget.OrderReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.OrderReceipt), args.Error(1)
}

func (m *MockCheckoutService) Status(segmentID string) checkout.Step {
	args := m.Called(segmentID)
	return args.Get(0).(checkout.Step)
}

type MockAutoBudgetService struct {
	mock.Mock
}

func (m *MockAutoBudgetService) Apply(ctx context.Context, segmentID string, plan planning.Plan) (planning.Result, error) {
	args := m.Called(ctx, segmentID, plan)
	return args.Get(0).(planning.Result), args.Error(1)
}

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) GetReceipt(ctx context.Context, orderID string) (*budget.OrderReceipt, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.OrderReceipt), args.Error(1)
}

func (m *MockReceiptService) ListReceipts(ctx context.Context, segmentID string, limit int) ([]*budget.OrderReceipt, error) {
	args := m.Called(ctx, segmentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*budget.OrderReceipt), args.Error(1)
}

type MockPaymentMethodService struct {
	mock.Mock
}

func (m *MockPaymentMethodService) ListPaymentMethods(ctx context.Context) service.PaymentMethods {
	args := m.Called(ctx)
	return args.Get(0).(service.PaymentMethods)
}

func (m *MockPaymentMethodService) AddPaymentMethod(ctx context.Context, method budget.PaymentMethod) (budget.PaymentMethod, error) {
	args := m.Called(ctx, method)
	return args.Get(0).(budget.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodService) SelectPaymentMethod(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	return r
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.CorrelationIDHeader, "corr-test")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the envelope and decodes its data field into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var raw struct {
		Data          json.RawMessage `json:"data"`
		Error         *ErrorInfo      `json:"error"`
		CorrelationID string          `json:"correlation_id"`
		Meta          *MetaInfo       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return Response{Error: raw.Error, CorrelationID: raw.CorrelationID, Meta: raw.Meta}
}
