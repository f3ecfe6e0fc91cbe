package memory

import (
	"context"
	"testing"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository()

	_, err := repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, budget.ErrSnapshotNotFound)

	value := []byte(`{"items":{}}`)
	require.NoError(t, repo.Save(ctx, "k", value))
	value[0] = 'X'

	got, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"items":{}}`, string(got), "stored value must not alias the caller's slice")

	require.NoError(t, repo.Save(ctx, "k", []byte(`{}`)))
	got, err = repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
}
