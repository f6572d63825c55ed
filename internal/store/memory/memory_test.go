package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/store"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	ctx := context.Background()

	_, err := s.UpsertCatalog(ctx, []domain.MasterEntry{
		{Barcode: "4601234567890", Article: "ART-001", Name: "Смартфон Samsung Galaxy S23 Ultra 256GB Black", Code: "0000000001"},
		{Barcode: "4601234567891", Article: "ART-002", Name: "Ноутбук Apple MacBook Air 13 M2 8/256", Code: "0000000002"},
		{Barcode: "1111111111111", Article: "ART-006", Name: "Телевизор LG OLED 55 C1", Code: "0000000006"},
	})
	require.NoError(t, err)

	_, err = s.InsertRecords(ctx, uuid.New(), []domain.CanonicalRecord{
		{Supplier: "s1", Name: "Samsung S23", Barcode: "4601234567890"},
		{Supplier: "s1", Name: "MacBook Air", Article: "ART-002"},
		{Supplier: "s1", Name: "Неизвестный товар"},
	})
	require.NoError(t, err)
	return s
}

func TestInsertAndPending(t *testing.T) {
	s := seeded(t)

	pending, err := s.PendingRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{pending[0].ID, pending[1].ID, pending[2].ID})
}

func TestCommitOutcomes(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	entries, err := s.CatalogSnapshot(ctx)
	require.NoError(t, err)
	pending, err := s.PendingRecords(ctx)
	require.NoError(t, err)

	err = s.CommitOutcomes(ctx, []domain.MatchOutcome{
		{Record: pending[0], Entry: &entries[0], Confidence: 100, Kind: domain.KindBarcode},
		domain.Unmatched(pending[2]),
	})
	require.NoError(t, err)

	matched, err := s.MatchedOutcomes(ctx)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, int64(1), matched[0].Record.ID)
	assert.Equal(t, domain.KindBarcode, matched[0].Kind)

	pending, err = s.PendingRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestCommitOutcomesAllOrNothing(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	entries, _ := s.CatalogSnapshot(ctx)
	pending, _ := s.PendingRecords(ctx)

	err := s.CommitOutcomes(ctx, []domain.MatchOutcome{
		{Record: pending[0], Entry: &entries[0], Confidence: 100, Kind: domain.KindBarcode},
		{Record: domain.CanonicalRecord{ID: 999, Name: "ghost"}, Entry: &entries[1], Confidence: 100, Kind: domain.KindArticle},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	matched, err := s.MatchedOutcomes(ctx)
	require.NoError(t, err)
	assert.Empty(t, matched, "no outcome may be applied when the commit fails")
}

func TestCommitOutcomesKeepsManual(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	entries, _ := s.CatalogSnapshot(ctx)
	pending, _ := s.PendingRecords(ctx)

	_, err := s.ApplyOverride(ctx, pending[2].ID, entries[2].ID)
	require.NoError(t, err)

	// A run that read the record before the override must not clobber it.
	require.NoError(t, s.CommitOutcomes(ctx, []domain.MatchOutcome{domain.Unmatched(pending[2])}))

	results, err := s.Results(ctx, store.ResultFilter{Status: store.StatusMatched})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.KindManual, results[0].Kind)
	assert.Equal(t, int64(3), results[0].Entry.ID)
}

func TestApplyOverride(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	out, err := s.ApplyOverride(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.KindManual, out.Kind)
	assert.Equal(t, 100, out.Confidence)
	assert.Equal(t, "0000000001", out.Entry.Code)

	// Last override wins.
	out, err = s.ApplyOverride(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Entry.ID)

	tests := []struct {
		name     string
		recordID int64
		entryID  int64
	}{
		{"unknown record", 42, 1},
		{"unknown entry", 1, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ApplyOverride(ctx, tt.recordID, tt.entryID)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
		})
	}

	// Failed overrides leave record 1 untouched.
	results, err := s.Results(ctx, store.ResultFilter{Status: store.StatusMatched})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(3), results[0].Record.ID)
}

func TestResultsFilterAndPaging(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	_, err := s.ApplyOverride(ctx, 2, 2)
	require.NoError(t, err)

	all, err := s.Results(ctx, store.ResultFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	unmatched, err := s.Results(ctx, store.ResultFilter{Status: store.StatusUnmatched})
	require.NoError(t, err)
	require.Len(t, unmatched, 2)
	assert.Equal(t, int64(1), unmatched[0].Record.ID)
	assert.Equal(t, int64(3), unmatched[1].Record.ID)

	page, err := s.Results(ctx, store.ResultFilter{Page: store.Page{Skip: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(2), page[0].Record.ID)

	past, err := s.Results(ctx, store.ResultFilter{Page: store.Page{Skip: 10}})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestCatalogUpsertAndSearch(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	n, err := s.UpsertCatalog(ctx, []domain.MasterEntry{
		{Name: "Телевизор LG OLED 55 C1 (2021)", Barcode: "1111111111111", Article: "ART-006", Code: "0000000006"},
		{Name: "Игровая консоль Sony PlayStation 5", Barcode: "4601234567893", Article: "ART-004", Code: "0000000004"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := s.CatalogSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, int64(3), entries[2].ID)
	assert.Equal(t, "Телевизор LG OLED 55 C1 (2021)", entries[2].Name)
	assert.Equal(t, int64(4), entries[3].ID)

	found, err := s.SearchCatalog(ctx, "sony", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "0000000004", found[0].Code)

	found, err = s.SearchCatalog(ctx, "ART-00", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.SearchCatalog(ctx, "460123456789", 0)
	require.NoError(t, err)
	assert.Len(t, found, 3)

	page, err := s.ListCatalog(ctx, store.Page{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].ID)
}

func TestResultsReflectCatalogUpdates(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	_, err := s.ApplyOverride(ctx, 1, 1)
	require.NoError(t, err)
	_, err = s.UpsertCatalog(ctx, []domain.MasterEntry{{Name: "Samsung S23 Ultra", Code: "0000000001"}})
	require.NoError(t, err)

	matched, err := s.MatchedOutcomes(ctx)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Samsung S23 Ultra", matched[0].Entry.Name)
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.InsertRecords(ctx, uuid.New(), []domain.CanonicalRecord{{Name: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.PendingRecords(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
