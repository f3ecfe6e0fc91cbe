package budget

import "context"

// SnapshotRepository is the key-value store behind the ledger persistence mirror.
// Values are opaque JSON documents; Load returns ErrSnapshotNotFound for unknown keys.
type SnapshotRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
