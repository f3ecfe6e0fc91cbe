package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/domain/receipt"
)

// DefaultReceiptCollection is the collection used when none is configured
const DefaultReceiptCollection = "order_receipts"

var _ receipt.Repository = (*ReceiptRepository)(nil)

type receiptDocument struct {
	budget.OrderReceipt `bson:",inline"`
	ArchivedAt          time.Time `bson:"archived_at"`
}

// ReceiptRepository implements the receipt.Repository interface for MongoDB
type ReceiptRepository struct {
	db         *mongo.Database
	collection string
	logger     *slog.Logger
	now        func() time.Time
}

// NewReceiptRepository creates a new MongoDB receipt repository
func NewReceiptRepository(logger *slog.Logger, db *mongo.Database, collection string) *ReceiptRepository {
	if collection == "" {
		collection = DefaultReceiptCollection
	}
	return &ReceiptRepository{
		db:         db,
		collection: collection,
		logger:     logger,
		now:        time.Now,
	}
}

// EnsureIndexes creates the unique order id index that makes Store idempotent
// and the segment listing index.
func (r *ReceiptRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(r.collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_order_id"),
		},
		{
			Keys:    bson.D{{Key: "segment_id", Value: 1}, {Key: "paid_at", Value: -1}},
			Options: options.Index().SetName("segment_paid_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create receipt indexes: %w", err)
	}
	return nil
}

// Store archives the receipt. A redelivered receipt hits the unique index and
// is reported as ErrAlreadyArchived.
func (r *ReceiptRepository) Store(ctx context.Context, rec *budget.OrderReceipt) error {
	doc := receiptDocument{OrderReceipt: *rec, ArchivedAt: r.now().UTC()}

	_, err := r.db.Collection(r.collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return receipt.ErrAlreadyArchived{OrderID: rec.OrderID}
		}
		r.logger.Error("Failed to archive receipt",
			"order_id", rec.OrderID,
			"error", err)
		return fmt.Errorf("failed to archive receipt: %w", err)
	}

	return nil
}

// GetByOrderID retrieves an archived receipt.
func (r *ReceiptRepository) GetByOrderID(ctx context.Context, orderID string) (*budget.OrderReceipt, error) {
	var doc receiptDocument
	err := r.db.Collection(r.collection).FindOne(ctx, bson.M{"order_id": orderID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, receipt.ErrReceiptNotFound{OrderID: orderID}
		}
		r.logger.Error("Failed to get receipt",
			"order_id", orderID,
			"error", err)
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return &doc.OrderReceipt, nil
}

// ListBySegment returns the segment's receipts, newest first.
func (r *ReceiptRepository) ListBySegment(ctx context.Context, segmentID string, limit int) ([]*budget.OrderReceipt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.db.Collection(r.collection).Find(ctx, bson.M{"segment_id": segmentID}, opts)
	if err != nil {
		r.logger.Error("Failed to list receipts",
			"segment_id", segmentID,
			"error", err)
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []receiptDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode receipts",
			"segment_id", segmentID,
			"error", err)
		return nil, fmt.Errorf("failed to decode receipts: %w", err)
	}

	receipts := make([]*budget.OrderReceipt, 0, len(docs))
	for i := range docs {
		receipts = append(receipts, &docs[i].OrderReceipt)
	}
	return receipts, nil
}
