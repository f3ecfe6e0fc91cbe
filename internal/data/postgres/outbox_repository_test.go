package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/omnitrip-budget-ledger/internal/domain/outbox"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_WithTx(t *testing.T) {
	repo := &OutboxRepository{querier: nil, logger: newTestLogger()}

	mockTx := pgx.Tx(nil)
	txRepo := repo.WithTx(mockTx)

	outboxRepo, ok := txRepo.(*OutboxRepository)
	require.True(t, ok)
	assert.Equal(t, mockTx, outboxRepo.querier)
	assert.Equal(t, repo.logger, outboxRepo.logger)
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	query := `INSERT INTO receipt_outbox \(order_id, segment_id, payload, status, attempts, created_at\)`

	newMessage := func() *outbox.Message {
		return &outbox.Message{
			OrderID:   "txn_1",
			SegmentID: "trip_1",
			Payload:   json.RawMessage(`{"orderId":"txn_1"}`),
			Status:    outbox.StatusPending,
			CreatedAt: time.Now(),
		}
	}

	t.Run("success", func(t *testing.T) {
		msg := newMessage()
		mock.ExpectQuery(query).
			WithArgs(msg.OrderID, msg.SegmentID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(42)))

		err := repo.Create(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, int64(42), msg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate order", func(t *testing.T) {
		msg := newMessage()
		mock.ExpectQuery(query).
			WithArgs(msg.OrderID, msg.SegmentID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, msg)
		assert.Equal(t, outbox.ErrDuplicateMessage{OrderID: "txn_1"}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		msg := newMessage()
		mock.ExpectQuery(query).
			WithArgs(msg.OrderID, msg.SegmentID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnError(errors.New("db error"))

		err := repo.Create(ctx, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create outbox message")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	query := `SELECT id, order_id, segment_id, payload, status, attempts, created_at, last_attempt_at\s+FROM receipt_outbox\s+WHERE status = \$1`
	columns := []string{"id", "order_id", "segment_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}

	t.Run("success", func(t *testing.T) {
		createdAt := time.Now().Add(-time.Minute)
		mock.ExpectQuery(query).
			WithArgs(outbox.StatusPending, 10).
			WillReturnRows(mock.NewRows(columns).
				AddRow(int64(1), "txn_1", "trip_1", []byte(`{"orderId":"txn_1"}`), outbox.StatusPending, 0, createdAt, nil).
				AddRow(int64(2), "txn_2", "trip_2", []byte(`{"orderId":"txn_2"}`), outbox.StatusPending, 2, createdAt, nil))

		messages, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "txn_1", messages[0].OrderID)
		assert.Equal(t, 2, messages[1].Attempts)
		assert.JSONEq(t, `{"orderId":"txn_2"}`, string(messages[1].Payload))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(outbox.StatusPending, 10).
			WillReturnError(errors.New("db down"))

		messages, err := repo.GetPending(ctx, 10)
		assert.Nil(t, messages)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get pending outbox messages")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE receipt_outbox\s+SET status = \$1, last_attempt_at = \$2\s+WHERE id = \$3`

	testCases := []struct {
		name        string
		setupMocks  func()
		expectedErr error
		errContains string
	}{
		{
			name: "success",
			setupMocks: func() {
				mock.ExpectExec(query).
					WithArgs(outbox.StatusProcessed, pgxmock.AnyArg(), int64(7)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "not found",
			setupMocks: func() {
				mock.ExpectExec(query).
					WithArgs(outbox.StatusProcessed, pgxmock.AnyArg(), int64(7)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectedErr: outbox.ErrMessageNotFound{ID: 7},
		},
		{
			name: "db error",
			setupMocks: func() {
				mock.ExpectExec(query).
					WithArgs(outbox.StatusProcessed, pgxmock.AnyArg(), int64(7)).
					WillReturnError(errors.New("db error"))
			},
			errContains: "failed to update outbox message status",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			err := repo.UpdateStatus(ctx, 7, outbox.StatusProcessed)
			switch {
			case tc.expectedErr != nil:
				assert.Equal(t, tc.expectedErr, err)
			case tc.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOutboxRepository_IncrementAttempts(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE receipt_outbox\s+SET attempts = attempts \+ 1, last_attempt_at = \$1\s+WHERE id = \$2`

	mock.ExpectExec(query).
		WithArgs(pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.IncrementAttempts(ctx, 3))

	mock.ExpectExec(query).
		WithArgs(pgxmock.AnyArg(), int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.Equal(t, outbox.ErrMessageNotFound{ID: 4}, repo.IncrementAttempts(ctx, 4))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_GetByOrderID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	query := `FROM receipt_outbox\s+WHERE order_id = \$1`
	columns := []string{"id", "order_id", "segment_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("txn_1").
			WillReturnRows(mock.NewRows(columns).
				AddRow(int64(1), "txn_1", "trip_1", []byte(`{}`), outbox.StatusProcessed, 1, time.Now(), nil))

		msg, err := repo.GetByOrderID(ctx, "txn_1")
		require.NoError(t, err)
		assert.Equal(t, outbox.StatusProcessed, msg.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("txn_9").
			WillReturnError(pgx.ErrNoRows)

		msg, err := repo.GetByOrderID(ctx, "txn_9")
		assert.Nil(t, msg)
		assert.IsType(t, outbox.ErrMessageNotFound{}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
