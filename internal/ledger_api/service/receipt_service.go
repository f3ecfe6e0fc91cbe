package service

import (
	"context"
	"fmt"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/domain/receipt"
)

const (
	defaultReceiptLimit = 20
	maxReceiptLimit     = 100
)

// ReceiptServiceImpl implements the ReceiptService interface over the archive
type ReceiptServiceImpl struct {
	repo receipt.Repository
}

// NewReceiptService creates a new receipt service
func NewReceiptService(repo receipt.Repository) ReceiptService {
	return &ReceiptServiceImpl{repo: repo}
}

func (s *ReceiptServiceImpl) GetReceipt(ctx context.Context, orderID string) (*budget.OrderReceipt, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// ListReceipts clamps limit to [1, 100]; zero means the default page size
func (s *ReceiptServiceImpl) ListReceipts(ctx context.Context, segmentID string, limit int) ([]*budget.OrderReceipt, error) {
	switch {
	case limit <= 0:
		limit = defaultReceiptLimit
	case limit > maxReceiptLimit:
		limit = maxReceiptLimit
	}

	receipts, err := s.repo.ListBySegment(ctx, segmentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts for segment %s: %w", segmentID, err)
	}
	return receipts, nil
}
