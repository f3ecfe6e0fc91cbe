package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// Mirror writes store snapshots to a SnapshotRepository in the background.
// Pending writes are coalesced per key so only the latest value is written.
type Mirror struct {
	repo    budget.SnapshotRepository
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	signal  chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewMirror creates a mirror. writeTimeout bounds each repository write.
func NewMirror(logger *slog.Logger, repo budget.SnapshotRepository, writeTimeout time.Duration) *Mirror {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Mirror{
		repo:    repo,
		logger:  logger.With("component", "ledger_mirror"),
		timeout: writeTimeout,
		pending: make(map[string][]byte),
		signal:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Persist queues value for key and returns immediately.
func (m *Mirror) Persist(key string, value []byte) {
	m.mu.Lock()
	m.pending[key] = value
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Start launches the writer goroutine. It exits when ctx is done or Close is called.
func (m *Mirror) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info("starting ledger mirror", "write_timeout", m.timeout)
	go func() {
		defer close(m.done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-m.signal:
				_ = m.Flush(context.Background())
			}
		}
	}()
}

// Flush synchronously writes every pending snapshot. Errors are logged and
// returned joined; failed keys are not retried unless written again.
func (m *Mirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	batch := m.pending
	m.pending = make(map[string][]byte)
	m.mu.Unlock()

	var errs []error
	for key, value := range batch {
		writeCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := m.repo.Save(writeCtx, key, value)
		cancel()
		if err != nil {
			m.logger.Error("failed to persist ledger snapshot", "key", key, "error", err)
			errs = append(errs, fmt.Errorf("failed to persist %s: %w", key, err))
			continue
		}
		m.logger.Debug("ledger snapshot persisted", "key", key, "bytes", len(value))
	}
	return errors.Join(errs...)
}

// Close stops the writer goroutine and flushes whatever is still pending.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if started {
		select {
		case <-m.stop:
		default:
			close(m.stop)
		}
		select {
		case <-m.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.Flush(ctx)
}
