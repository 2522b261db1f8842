package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/haul-slips/internal/domain"
	"github.com/pkordes/haul-slips/internal/repo"
	"github.com/pkordes/haul-slips/testutil"
)

// newTestPostgresRepo opens a transaction and returns a SlipRepo backed by it.
// The transaction is rolled back when the test finishes, so no cleanup is needed.
func newTestPostgresRepo(t *testing.T) repo.SlipRepo {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewPostgresSlipRepo(tx)
}

func TestPostgresSlipRepo_InsertAndList(t *testing.T) {
	r := newTestPostgresRepo(t)
	ctx := context.Background()

	want := slipFixture("pg-a", "2024-05-01", baseTime)
	require.NoError(t, r.Insert(ctx, want))

	got, err := r.List(ctx, domain.DefaultListLimit)

	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, want.Record(), got[0].Record())
}

func TestPostgresSlipRepo_ListAll_Ordering(t *testing.T) {
	r := newTestPostgresRepo(t)
	ctx := context.Background()

	// Far-future dates keep these rows ahead of anything else in a shared test DB.
	require.NoError(t, r.Insert(ctx, slipFixture("pg-1", "2999-01-01", baseTime)))
	require.NoError(t, r.Insert(ctx, slipFixture("pg-2", "2999-01-02", baseTime)))
	require.NoError(t, r.Insert(ctx, slipFixture("pg-3", "2999-01-02", baseTime.Add(time.Second))))

	got, err := r.ListAll(ctx)

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, "pg-3", got[0].ID)
	assert.Equal(t, "pg-2", got[1].ID)
	assert.Equal(t, "pg-1", got[2].ID)
}

func TestPostgresSlipRepo_Insert_DuplicateID(t *testing.T) {
	r := newTestPostgresRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, slipFixture("pg-dup", "2024-05-01", baseTime)))
	err := r.Insert(ctx, slipFixture("pg-dup", "2024-05-01", baseTime))

	assert.ErrorIs(t, err, domain.ErrStorage)
}
