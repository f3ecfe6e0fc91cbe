package handler

import (
	"github.com/omnitrip-budget-ledger/internal/checkout"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// CreateItemRequest represents a manual add. Every field is optional.
type CreateItemRequest struct {
	ID           string            `json:"id"`
	Source       budget.ItemSource `json:"source"`
	Type         budget.ItemType   `json:"type"`
	Title        string            `json:"title"`
	ProviderName string            `json:"providerName"`
	Amount       *float64          `json:"amount" binding:"omitempty,min=0"`
	Currency     string            `json:"currency" binding:"omitempty,len=3"`
	StartDate    string            `json:"start_date"`
	EndDate      string            `json:"end_date"`
	Travelers    int               `json:"travelers" binding:"min=0"`
	Notes        string            `json:"notes"`
}

// UpdateItemRequest is a user edit. Status and outcome fields are not accepted.
type UpdateItemRequest struct {
	Type         *budget.ItemType `json:"type"`
	Title        *string          `json:"title"`
	ProviderName *string          `json:"providerName"`
	Amount       *float64         `json:"amount" binding:"omitempty,min=0"`
	Currency     *string          `json:"currency" binding:"omitempty,len=3"`
	StartDate    *string          `json:"start_date"`
	EndDate      *string          `json:"end_date"`
	Travelers    *int             `json:"travelers" binding:"omitempty,min=0"`
	Notes        *string          `json:"notes"`
}

// Patch converts the request into a ledger patch
func (r UpdateItemRequest) Patch() budget.ItemPatch {
	return budget.ItemPatch{
		Type:         r.Type,
		Title:        r.Title,
		ProviderName: r.ProviderName,
		Amount:       r.Amount,
		Currency:     r.Currency,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Travelers:    r.Travelers,
		Notes:        r.Notes,
	}
}

// AddFromDealRequest pairs a deal with the schedule entry it was found for
type AddFromDealRequest struct {
	Deal         budget.DealOption   `json:"deal"`
	ScheduleItem budget.ScheduleItem `json:"scheduleItem"`
}

// SetBudgetRequest sets a segment's ceiling
type SetBudgetRequest struct {
	TotalBudget *float64 `json:"totalBudget" binding:"required"`
}

// AccountingRequest carries the caller-owned schedule items
type AccountingRequest struct {
	ScheduleItems []budget.ScheduleItem `json:"scheduleItems"`
}

// ItemListResponse represents a segment cart
type ItemListResponse struct {
	SegmentID string        `json:"segmentId"`
	Items     []budget.Item `json:"items"`
}

// CheckoutStatusResponse reports the checkout progress step
type CheckoutStatusResponse struct {
	SegmentID string        `json:"segmentId"`
	Step      checkout.Step `json:"step"`
}

// AddPaymentMethodRequest registers a payment method
type AddPaymentMethodRequest struct {
	ID    string                   `json:"id"`
	Type  budget.PaymentMethodType `json:"type" binding:"required"`
	Label string                   `json:"label" binding:"required"`
	Last4 string                   `json:"last4" binding:"omitempty,len=4,numeric"`
	Brand string                   `json:"brand"`
}

// SelectPaymentMethodRequest selects a registered method
type SelectPaymentMethodRequest struct {
	ID string `json:"id" binding:"required"`
}

// ReceiptListParams are query parameters of the receipt list
type ReceiptListParams struct {
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}
