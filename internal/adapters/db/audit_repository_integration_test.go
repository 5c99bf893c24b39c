// internal/adapters/db/audit_repository_integration_test.go
package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pduarte/feira-be/internal/adapters/db"
	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
	"github.com/pduarte/feira-be/test/helpers"
)

func setupAuditRepo(t *testing.T) (*db.AuditRepository, *helpers.TestDB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := helpers.SetupTestDB(t)
	repo := db.NewAuditRepository(testDB.Database, helpers.TestLogger().Logger)
	return repo, testDB
}

func TestAuditRepository_RecordAndFind(t *testing.T) {
	ctx := context.Background()
	repo, testDB := setupAuditRepo(t)
	defer helpers.TruncateAllTables(t, testDB.PgxPool)

	event := &ports.ReconciliationEvent{
		ListID:       "feira-01",
		Operation:    ports.OpListEdit,
		Matched:      3,
		StaleRetries: 1,
	}
	require.NoError(t, repo.Record(ctx, event))
	assert.NotEqual(t, uuid.Nil, event.ID, "Record assigns an id when the caller did not")

	events, err := repo.FindByListID(ctx, "feira-01", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ports.OpListEdit, events[0].Operation)
	assert.Equal(t, 3, events[0].Matched)
	assert.Equal(t, 1, events[0].StaleRetries)
	assert.Empty(t, events[0].Failures)
}

func TestAuditRepository_FailuresRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, testDB := setupAuditRepo(t)
	defer helpers.TruncateAllTables(t, testDB.PgxPool)

	event := &ports.ReconciliationEvent{
		ListID:    "feira-01",
		Operation: ports.OpPurchase,
		Failed:    1,
		Failures: []domain.MatchingFailure{{
			ItemID:           "old-1",
			ProductID:        "prod-feijao",
			OrderedQuantity:  decimal.NewFromInt(3),
			ReceivedQuantity: decimal.NewFromInt(2),
			Reason:           "no recreated item with matching product and ordered quantity",
		}},
	}
	require.NoError(t, repo.Record(ctx, event))

	events, err := repo.FindByListID(ctx, "feira-01", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, events[0].Failures, 1)
	assert.Equal(t, "prod-feijao", events[0].Failures[0].ProductID)
	assert.True(t, events[0].Failures[0].OrderedQuantity.Equal(decimal.NewFromInt(3)))
}

func TestAuditRepository_FindOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo, testDB := setupAuditRepo(t)
	defer helpers.TruncateAllTables(t, testDB.PgxPool)

	older := &ports.ReconciliationEvent{
		ListID:    "feira-01",
		Operation: ports.OpListEdit,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	newer := &ports.ReconciliationEvent{
		ListID:    "feira-01",
		Operation: ports.OpTransferIn,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Record(ctx, older))
	require.NoError(t, repo.Record(ctx, newer))

	events, err := repo.FindByListID(ctx, "feira-01", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ports.OpTransferIn, events[0].Operation)
	assert.Equal(t, ports.OpListEdit, events[1].Operation)
}

func TestAuditRepository_FindScopedToList(t *testing.T) {
	ctx := context.Background()
	repo, testDB := setupAuditRepo(t)
	defer helpers.TruncateAllTables(t, testDB.PgxPool)

	require.NoError(t, repo.Record(ctx, &ports.ReconciliationEvent{
		ListID: "feira-01", Operation: ports.OpListEdit,
	}))
	require.NoError(t, repo.Record(ctx, &ports.ReconciliationEvent{
		ListID: "feira-02", Operation: ports.OpListEdit,
	}))

	events, err := repo.FindByListID(ctx, "feira-01", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "feira-01", events[0].ListID)
}

func TestAuditRepository_PruneOlderThan(t *testing.T) {
	ctx := context.Background()
	repo, testDB := setupAuditRepo(t)
	defer helpers.TruncateAllTables(t, testDB.PgxPool)

	stale := &ports.ReconciliationEvent{
		ListID:    "feira-01",
		Operation: ports.OpListEdit,
		CreatedAt: time.Now().UTC().Add(-100 * 24 * time.Hour),
	}
	recent := &ports.ReconciliationEvent{
		ListID:    "feira-01",
		Operation: ports.OpPurchase,
	}
	require.NoError(t, repo.Record(ctx, stale))
	require.NoError(t, repo.Record(ctx, recent))

	pruned, err := repo.PruneOlderThan(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	events, err := repo.FindByListID(ctx, "feira-01", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ports.OpPurchase, events[0].Operation)
}
