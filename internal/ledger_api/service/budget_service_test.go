package service

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestBudgetService(t *testing.T) (*BudgetServiceImpl, *ledger.Store) {
	t.Helper()
	store := ledger.NewStore(newTestLogger(), ledger.Options{Now: func() time.Time { return fixedNow }})
	svc := NewBudgetService(newTestLogger(), store).(*BudgetServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func amountPtr(v float64) *float64 { return &v }

func TestBudgetServiceImpl_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("FillsDefaults", func(t *testing.T) {
		svc, _ := newTestBudgetService(t)

		item, err := svc.AddItem(ctx, NewItemInput{SegmentID: "trip_1"})

		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^item_1772366400000_[a-z0-9]{9}$`), item.ID)
		assert.Equal(t, budget.ItemSourceManual, item.Source)
		assert.Equal(t, budget.ItemTypeOther, item.Type)
		assert.Equal(t, "Unknown Item", item.Title)
		assert.Equal(t, "Generic", item.ProviderName)
		assert.Equal(t, 0.0, item.Amount)
		assert.Equal(t, budget.DefaultCurrency, item.Currency)
		assert.Equal(t, budget.ItemStatusPlanned, item.Status)
		assert.Equal(t, fixedNow, item.CreatedAt)
	})

	t.Run("DedupThroughPublicPath", func(t *testing.T) {
		svc, store := newTestBudgetService(t)
		input := NewItemInput{SegmentID: "trip_1", Type: budget.ItemTypeFlight, Title: "Flight", ProviderName: "SkyAir", Amount: amountPtr(350)}

		_, err := svc.AddItem(ctx, input)
		require.NoError(t, err)

		input.Title = "  FLIGHT "
		_, err = svc.AddItem(ctx, input)
		assert.ErrorIs(t, err, budget.ErrDuplicateItem)
		assert.Len(t, store.GetItems("trip_1"), 1)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		svc, store := newTestBudgetService(t)

		_, err := svc.AddItem(ctx, NewItemInput{SegmentID: "trip_1", Amount: amountPtr(-1)})
		assert.ErrorIs(t, err, budget.ErrInvalidAmount)

		_, err = svc.AddItem(ctx, NewItemInput{SegmentID: "trip_1", Type: "spaceship"})
		assert.ErrorIs(t, err, budget.ErrInvalidItemType)

		_, err = svc.AddItem(ctx, NewItemInput{SegmentID: "trip_1", Source: "fax"})
		assert.ErrorIs(t, err, budget.ErrInvalidItemSource)

		assert.Empty(t, store.GetItems("trip_1"))
	})

	t.Run("SuppliedIDMustBeUnique", func(t *testing.T) {
		svc, store := newTestBudgetService(t)

		_, err := svc.AddItem(ctx, NewItemInput{ID: "x", SegmentID: "trip_1", Title: "Flight", Amount: amountPtr(100)})
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, NewItemInput{ID: "x", SegmentID: "trip_1", Title: "Hotel", Amount: amountPtr(200)})
		assert.ErrorIs(t, err, budget.ErrDuplicateItemID)

		require.NoError(t, svc.DeleteItem(ctx, "trip_1", "x"))
		assert.Empty(t, store.GetItems("trip_1"))
	})
}

func TestBudgetServiceImpl_CheckoutLocksCart(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestBudgetService(t)
	existing, err := svc.AddItem(ctx, NewItemInput{SegmentID: "trip_1", Title: "Flight", Amount: amountPtr(350)})
	require.NoError(t, err)
	require.True(t, store.LockSegment("trip_1"))

	amount := 3000.0
	_, err = svc.UpdateItem(ctx, "trip_1", existing.ID, budget.ItemPatch{Amount: &amount})
	assert.ErrorIs(t, err, budget.ErrCheckoutInProgress)
	assert.ErrorIs(t, svc.DeleteItem(ctx, "trip_1", existing.ID), budget.ErrCheckoutInProgress)
	_, err = svc.AddItem(ctx, NewItemInput{SegmentID: "trip_1", Title: "Hotel", Amount: amountPtr(200)})
	assert.ErrorIs(t, err, budget.ErrCheckoutInProgress)

	items := store.GetItems("trip_1")
	require.Len(t, items, 1)
	assert.Equal(t, 350.0, items[0].Amount)
}

func TestBudgetServiceImpl_AddItemFromDeal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestBudgetService(t)
	deal := budget.DealOption{Title: "Hotel Aurora", Provider: "Booking", Price: 120}
	source := budget.ScheduleItem{ID: "s1", Activity: "Check in", Type: "hotel", Date: "2026-05-02"}

	item, err := svc.AddItemFromDeal(ctx, "trip_1", deal, source)
	require.NoError(t, err)
	assert.Equal(t, budget.ItemTypeStay, item.Type)
	assert.Equal(t, budget.ItemSourceSchedule, item.Source)
	assert.Equal(t, "2026-05-02", item.StartDate)
	assert.Equal(t, budget.DefaultCurrency, item.Currency)
	assert.Empty(t, item.Notes)

	_, err = svc.AddItemFromDeal(ctx, "trip_1", deal, source)
	assert.ErrorIs(t, err, budget.ErrDuplicateItem)

	deal.Price = -5
	_, err = svc.AddItemFromDeal(ctx, "trip_1", deal, source)
	assert.ErrorIs(t, err, budget.ErrInvalidAmount)
}

func TestBudgetServiceImpl_UpdateItem(t *testing.T) {
	ctx := context.Background()
	title := "Flight to Porto"
	negative := -10.0
	badType := budget.ItemType("spaceship")
	confirmed := budget.ItemStatusConfirmed

	tests := []struct {
		name          string
		status        budget.ItemStatus
		itemID        string
		patch         budget.ItemPatch
		expectedErr   error
		expectedTitle string
	}{
		{name: "planned item is edited", status: budget.ItemStatusPlanned, itemID: "item_1", patch: budget.ItemPatch{Title: &title}, expectedTitle: title},
		{name: "failed item is locked", status: budget.ItemStatusFailed, itemID: "item_1", patch: budget.ItemPatch{Title: &title}, expectedErr: budget.ErrItemLocked, expectedTitle: "Flight"},
		{name: "confirmed item is locked", status: budget.ItemStatusConfirmed, itemID: "item_1", patch: budget.ItemPatch{Title: &title}, expectedErr: budget.ErrItemLocked, expectedTitle: "Flight"},
		{name: "unknown item", status: budget.ItemStatusPlanned, itemID: "item_x", patch: budget.ItemPatch{Title: &title}, expectedErr: budget.ErrItemNotFound, expectedTitle: "Flight"},
		{name: "negative amount", status: budget.ItemStatusPlanned, itemID: "item_1", patch: budget.ItemPatch{Amount: &negative}, expectedErr: budget.ErrInvalidAmount, expectedTitle: "Flight"},
		{name: "unknown type", status: budget.ItemStatusPlanned, itemID: "item_1", patch: budget.ItemPatch{Type: &badType}, expectedErr: budget.ErrInvalidItemType, expectedTitle: "Flight"},
		{name: "status is ignored", status: budget.ItemStatusPlanned, itemID: "item_1", patch: budget.ItemPatch{Status: &confirmed, Title: &title}, expectedTitle: title},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestBudgetService(t)
			store.AddItem(budget.Item{ID: "item_1", SegmentID: "trip_1", Title: "Flight", Amount: 350, Status: tt.status})

			_, err := svc.UpdateItem(ctx, "trip_1", tt.itemID, tt.patch)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			stored, ok := store.GetItem("trip_1", "item_1")
			require.True(t, ok)
			assert.Equal(t, tt.expectedTitle, stored.Title)
			assert.Equal(t, tt.status, stored.Status)
		})
	}
}

func TestBudgetServiceImpl_DeleteItem(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		status        budget.ItemStatus
		itemID        string
		expectedErr   error
		expectedCount int
	}{
		{"planned is removed", budget.ItemStatusPlanned, "item_1", nil, 0},
		{"failed is removed", budget.ItemStatusFailed, "item_1", nil, 0},
		{"paid is blocked", budget.ItemStatusPaid, "item_1", budget.ErrItemLocked, 1},
		{"confirmed is blocked", budget.ItemStatusConfirmed, "item_1", budget.ErrItemLocked, 1},
		{"unknown is a no-op", budget.ItemStatusPlanned, "item_x", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestBudgetService(t)
			store.AddItem(budget.Item{ID: "item_1", SegmentID: "trip_1", Title: "Flight", Amount: 350, Status: tt.status})

			err := svc.DeleteItem(ctx, "trip_1", tt.itemID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, store.GetItems("trip_1"), tt.expectedCount)
		})
	}
}

func TestBudgetServiceImpl_Accounting(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestBudgetService(t)
	store.AddItem(budget.Item{ID: "item_1", SegmentID: "trip_1", Title: "Flight", Amount: 350})

	acc := svc.Accounting(ctx, "trip_1", nil)
	assert.Equal(t, 2000.0, acc.TotalBudget)
	assert.Equal(t, 350.0, acc.SpentTotal)
	assert.Equal(t, 1650.0, acc.Remaining)

	acc, err := svc.SetTotalBudget(ctx, "trip_1", 300)
	require.NoError(t, err)
	assert.Equal(t, -50.0, acc.Remaining)

	_, err = svc.SetTotalBudget(ctx, "trip_1", -1)
	assert.ErrorIs(t, err, budget.ErrInvalidAmount)

	withSchedule := svc.Accounting(ctx, "trip_1", []budget.ScheduleItem{
		{ID: "s1", CostEstimate: 100, BookingStatus: budget.BookingStatusBooked},
		{ID: "s2", CostEstimate: 999, BookingStatus: budget.BookingStatusPending},
	})
	assert.Equal(t, 100.0, withSchedule.ScheduleConfirmedSpent)
	assert.Equal(t, 450.0, withSchedule.SpentTotal)
}
