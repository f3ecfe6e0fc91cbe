package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newItemRouter(svc *MockBudgetService) http.Handler {
	h := NewItemHandler(newTestLogger(), svc)
	r := setupTestRouter()
	r.GET("/segments/:segmentId/items", h.List)
	r.POST("/segments/:segmentId/items", h.Create)
	r.POST("/segments/:segmentId/items/from-deal", h.CreateFromDeal)
	r.PATCH("/segments/:segmentId/items/:itemId", h.Update)
	r.DELETE("/segments/:segmentId/items/:itemId", h.Delete)
	return r
}

func TestItemHandler_List(t *testing.T) {
	svc := new(MockBudgetService)
	items := []budget.Item{{ID: "item_1", SegmentID: "trip_1", Title: "Flight", Amount: 350}}
	svc.On("ListItems", mock.Anything, "trip_1").Return(items).Once()

	rr := performRequest(newItemRouter(svc), http.MethodGet, "/segments/trip_1/items", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var body ItemListResponse
	resp := decodeData(t, rr, &body)
	assert.Equal(t, "corr-test", resp.CorrelationID)
	assert.Equal(t, "trip_1", body.SegmentID)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "item_1", body.Items[0].ID)
	svc.AssertExpectations(t)
}

func TestItemHandler_Create(t *testing.T) {
	amount := 350.0
	created := budget.Item{ID: "item_1", SegmentID: "trip_1", Title: "Flight", Amount: 350, Status: budget.ItemStatusPlanned}

	tests := []struct {
		name           string
		body           string
		setupMocks     func(svc *MockBudgetService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: `{"type":"flight","title":"Flight","providerName":"SkyAir","amount":350,"currency":"usd"}`,
			setupMocks: func(svc *MockBudgetService) {
				svc.On("AddItem", mock.Anything, service.NewItemInput{
					SegmentID: "trip_1", Type: budget.ItemTypeFlight, Title: "Flight",
					ProviderName: "SkyAir", Amount: &amount, Currency: "USD",
				}).Return(created, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate",
			body: `{"title":"Flight","amount":350}`,
			setupMocks: func(svc *MockBudgetService) {
				svc.On("AddItem", mock.Anything, mock.AnythingOfType("service.NewItemInput")).
					Return(budget.Item{}, budget.ErrDuplicateItem).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_ITEM",
		},
		{
			name: "id already taken",
			body: `{"id":"x","title":"Hotel","amount":200}`,
			setupMocks: func(svc *MockBudgetService) {
				svc.On("AddItem", mock.Anything, mock.AnythingOfType("service.NewItemInput")).
					Return(budget.Item{}, budget.ErrDuplicateItemID).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_ITEM_ID",
		},
		{
			name:           "negative amount rejected by binding",
			body:           `{"title":"Flight","amount":-1}`,
			setupMocks:     func(*MockBudgetService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "malformed json",
			body:           `{"title":`,
			setupMocks:     func(*MockBudgetService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name: "unknown type",
			body: `{"type":"spaceship"}`,
			setupMocks: func(svc *MockBudgetService) {
				svc.On("AddItem", mock.Anything, mock.AnythingOfType("service.NewItemInput")).
					Return(budget.Item{}, budget.ErrInvalidItemType).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name: "unexpected error",
			body: `{}`,
			setupMocks: func(svc *MockBudgetService) {
				svc.On("AddItem", mock.Anything, mock.AnythingOfType("service.NewItemInput")).
					Return(budget.Item{}, errors.New("boom")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBudgetService)
			tt.setupMocks(svc)

			rr := performRequest(newItemRouter(svc), http.MethodPost, "/segments/trip_1/items", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			var item budget.Item
			resp := decodeData(t, rr, &item)
			if tt.expectedCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.expectedCode, resp.Error.Code)
			} else {
				assert.Equal(t, "item_1", item.ID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestItemHandler_CreateFromDeal(t *testing.T) {
	deal := budget.DealOption{Title: "Hotel Aurora", Provider: "Booking", Price: 120}
	source := budget.ScheduleItem{ID: "s1", Activity: "Check in", Type: "hotel", Date: "2026-05-02"}

	t.Run("Created", func(t *testing.T) {
		svc := new(MockBudgetService)
		svc.On("AddItemFromDeal", mock.Anything, "trip_1", deal, source).
			Return(budget.Item{ID: "item_9", Type: budget.ItemTypeStay}, nil).Once()

		rr := performRequest(newItemRouter(svc), http.MethodPost, "/segments/trip_1/items/from-deal",
			`{"deal":{"title":"Hotel Aurora","provider":"Booking","price":120},"scheduleItem":{"id":"s1","activity":"Check in","type":"hotel","date":"2026-05-02","costEstimate":0,"bookingStatus":""}}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		svc := new(MockBudgetService)

		rr := performRequest(newItemRouter(svc), http.MethodPost, "/segments/trip_1/items/from-deal", `{"deal":{"price":120}}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "AddItemFromDeal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestItemHandler_Update(t *testing.T) {
	title := "Flight to Porto"

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "updated", expectedStatus: http.StatusOK},
		{name: "locked", err: budget.ErrItemLocked, expectedStatus: http.StatusConflict, expectedCode: "ITEM_LOCKED"},
		{name: "checkout running", err: budget.ErrCheckoutInProgress, expectedStatus: http.StatusConflict, expectedCode: "CHECKOUT_IN_PROGRESS"},
		{name: "not found", err: budget.ErrItemNotFound, expectedStatus: http.StatusNotFound, expectedCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBudgetService)
			svc.On("UpdateItem", mock.Anything, "trip_1", "item_1", budget.ItemPatch{Title: &title}).
				Return(budget.Item{ID: "item_1", Title: title}, tt.err).Once()

			rr := performRequest(newItemRouter(svc), http.MethodPatch, "/segments/trip_1/items/item_1",
				`{"title":"Flight to Porto","status":"confirmed"}`)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			resp := decodeData(t, rr, nil)
			if tt.expectedCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.expectedCode, resp.Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestItemHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"deleted or unknown", nil, http.StatusNoContent},
		{"confirmed is blocked", budget.ErrItemLocked, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBudgetService)
			svc.On("DeleteItem", mock.Anything, "trip_1", "item_1").Return(tt.err).Once()

			rr := performRequest(newItemRouter(svc), http.MethodDelete, "/segments/trip_1/items/item_1", "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
