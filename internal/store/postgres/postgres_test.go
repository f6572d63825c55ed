package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pricematch/internal/config"
	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/store"
)

// testStore connects to PRICEMATCH_TEST_DATABASE_URL and resets the tables.
// Tests are skipped when the variable is unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("PRICEMATCH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PRICEMATCH_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, config.DatabaseConfig{URL: url, MaxConns: 4, MinConns: 0})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE supplier_items, master_items RESTART IDENTITY`)
	require.NoError(t, err)
	return s
}

func TestStoreLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, err := s.UpsertCatalog(ctx, []domain.MasterEntry{
		{Barcode: "4601234567890", Article: "ART-001", Name: "Смартфон Samsung Galaxy S23 Ultra 256GB Black", Code: "0000000001"},
		{Barcode: "", Article: "ART-002", Name: "Ноутбук Apple MacBook Air 13 M2 8/256", Code: "0000000002"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := s.CatalogSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "", entries[1].Barcode)

	n, err = s.InsertRecords(ctx, uuid.New(), []domain.CanonicalRecord{
		{Supplier: "s1", Name: "Samsung S23", Barcode: "4601234567890", Price: decimal.NewNullDecimal(decimal.RequireFromString("1234.56"))},
		{Supplier: "s1", Name: "Неизвестный товар"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := s.PendingRecords(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.True(t, pending[0].Price.Decimal.Equal(decimal.RequireFromString("1234.56")))
	assert.False(t, pending[1].Price.Valid)

	require.NoError(t, s.CommitOutcomes(ctx, []domain.MatchOutcome{
		{Record: pending[0], Entry: &entries[0], Confidence: 100, Kind: domain.KindBarcode},
		domain.Unmatched(pending[1]),
	}))

	matched, err := s.MatchedOutcomes(ctx)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "0000000001", matched[0].Entry.Code)

	unmatched, err := s.Results(ctx, store.ResultFilter{Status: store.StatusUnmatched})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, domain.KindNone, unmatched[0].Kind)

	out, err := s.ApplyOverride(ctx, pending[1].ID, entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindManual, out.Kind)

	// A stale automatic outcome does not replace the manual match.
	require.NoError(t, s.CommitOutcomes(ctx, []domain.MatchOutcome{domain.Unmatched(pending[1])}))
	matched, err = s.MatchedOutcomes(ctx)
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	_, err = s.ApplyOverride(ctx, 9999, entries[0].ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = s.ApplyOverride(ctx, pending[0].ID, 9999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	found, err := s.SearchCatalog(ctx, "macbook", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "0000000002", found[0].Code)
}

func TestStoreDeletedMasterReturnsRecordToReview(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.UpsertCatalog(ctx, []domain.MasterEntry{
		{Barcode: "4601234567890", Name: "Смартфон Samsung Galaxy S23", Code: "0000000001"},
		{Barcode: "4601234567891", Name: "Ноутбук Apple MacBook Air", Code: "0000000002"},
	})
	require.NoError(t, err)
	entries, err := s.CatalogSnapshot(ctx)
	require.NoError(t, err)

	_, err = s.InsertRecords(ctx, uuid.New(), []domain.CanonicalRecord{
		{Supplier: "s1", Name: "Samsung S23", Barcode: "4601234567890"},
		{Supplier: "s1", Name: "MacBook Air", Barcode: "4601234567891"},
	})
	require.NoError(t, err)
	pending, err := s.PendingRecords(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, s.CommitOutcomes(ctx, []domain.MatchOutcome{
		{Record: pending[0], Entry: &entries[0], Confidence: 100, Kind: domain.KindBarcode},
	}))
	_, err = s.ApplyOverride(ctx, pending[1].ID, entries[1].ID)
	require.NoError(t, err)

	pending, err = s.PendingRecords(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	_, err = s.pool.Exec(ctx, `DELETE FROM master_items`)
	require.NoError(t, err)

	pending, err = s.PendingRecords(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2, "both records are offered to the next run")

	unmatched, err := s.Results(ctx, store.ResultFilter{Status: store.StatusUnmatched})
	require.NoError(t, err)
	require.Len(t, unmatched, 2)
	for _, o := range unmatched {
		assert.Equal(t, domain.KindNone, o.Kind)
	}

	// The former manual match is no longer protected from automatic commits.
	_, err = s.UpsertCatalog(ctx, []domain.MasterEntry{
		{Barcode: "4601234567891", Name: "Ноутбук Apple MacBook Air", Code: "0000000003"},
	})
	require.NoError(t, err)
	entries, err = s.CatalogSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, s.CommitOutcomes(ctx, []domain.MatchOutcome{
		{Record: pending[1], Entry: &entries[0], Confidence: 100, Kind: domain.KindBarcode},
	}))
	matched, err := s.MatchedOutcomes(ctx)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "0000000003", matched[0].Entry.Code)
}
