// Package memory is an in-process store.Store used by the offline CLI and by
// tests. All methods are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/matching"
	"github.com/JonMunkholm/pricematch/internal/store"
)

type row struct {
	uploadID uuid.UUID
	outcome  domain.MatchOutcome
}

// Store keeps records and catalog entries in memory.
type Store struct {
	mu        sync.RWMutex
	rows      []row // ordered by record ID
	entries   []domain.MasterEntry
	nextRecID int64
	nextEntID int64
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{nextRecID: 1, nextEntID: 1}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// InsertRecords assigns IDs and appends records as pending.
func (s *Store) InsertRecords(ctx context.Context, uploadID uuid.UUID, records []domain.CanonicalRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		rec.ID = s.nextRecID
		s.nextRecID++
		s.rows = append(s.rows, row{uploadID: uploadID, outcome: domain.Unmatched(rec)})
	}
	return len(records), nil
}

// PendingRecords returns unmatched records ordered by ID.
func (s *Store) PendingRecords(ctx context.Context) ([]domain.CanonicalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CanonicalRecord
	for _, r := range s.rows {
		if o := s.view(r); !o.Matched() {
			out = append(out, o.Record)
		}
	}
	return out, nil
}

// CommitOutcomes validates every outcome before applying any of them.
func (s *Store) CommitOutcomes(ctx context.Context, outcomes []domain.MatchOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := make([]int, len(outcomes))
	for i, o := range outcomes {
		pos, ok := s.rowPos(o.Record.ID)
		if !ok {
			return domain.NewNotFoundError(domain.ResourceRecord, o.Record.ID)
		}
		positions[i] = pos
	}

	for i, o := range outcomes {
		r := &s.rows[positions[i]]
		if s.view(*r).Kind == domain.KindManual {
			continue
		}
		o.Record = r.outcome.Record
		r.outcome = o
	}
	return nil
}

// Results lists records with their outcomes.
func (s *Store) Results(ctx context.Context, filter store.ResultFilter) ([]domain.MatchOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := filter.Page.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var selected []domain.MatchOutcome
	for _, r := range s.rows {
		o := s.view(r)
		switch filter.Status {
		case store.StatusMatched:
			if !o.Matched() {
				continue
			}
		case store.StatusUnmatched:
			if o.Matched() {
				continue
			}
		}
		selected = append(selected, o)
	}
	return window(selected, page), nil
}

// MatchedOutcomes returns every matched record.
func (s *Store) MatchedOutcomes(ctx context.Context) ([]domain.MatchOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MatchOutcome
	for _, r := range s.rows {
		if o := s.view(r); o.Matched() {
			out = append(out, o)
		}
	}
	return out, nil
}

// ApplyOverride forces a manual match.
func (s *Store) ApplyOverride(ctx context.Context, recordID, entryID int64) (domain.MatchOutcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.MatchOutcome{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.rowPos(recordID)
	if !ok {
		return domain.MatchOutcome{}, domain.NewNotFoundError(domain.ResourceRecord, recordID)
	}
	entry, ok := s.entryByID(entryID)
	if !ok {
		return domain.MatchOutcome{}, domain.NewNotFoundError(domain.ResourceEntry, entryID)
	}

	rec := s.rows[pos].outcome.Record
	outcome, err := matching.ApplyOverride(&rec, &entry)
	if err != nil {
		return domain.MatchOutcome{}, err
	}
	s.rows[pos].outcome = outcome
	return outcome, nil
}

// CatalogSnapshot returns a copy of all entries ordered by ID.
func (s *Store) CatalogSnapshot(ctx context.Context) ([]domain.MasterEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MasterEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// ListCatalog returns a page of entries ordered by ID.
func (s *Store) ListCatalog(ctx context.Context, page store.Page) ([]domain.MasterEntry, error) {
	entries, err := s.CatalogSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return window(entries, page.Normalize()), nil
}

// SearchCatalog matches query as a case-insensitive substring of name,
// barcode or article.
func (s *Store) SearchCatalog(ctx context.Context, query string, limit int) ([]domain.MasterEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > store.SearchLimit {
		limit = store.SearchLimit
	}
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MasterEntry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Barcode), q) ||
			strings.Contains(strings.ToLower(e.Article), q) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// UpsertCatalog inserts new entries and updates existing ones by code.
// Entries keep their ID across updates.
func (s *Store) UpsertCatalog(ctx context.Context, entries []domain.MasterEntry) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byCode := make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		byCode[e.Code] = i
	}

	for _, e := range entries {
		if i, ok := byCode[e.Code]; ok {
			e.ID = s.entries[i].ID
			s.entries[i] = e
			continue
		}
		e.ID = s.nextEntID
		s.nextEntID++
		byCode[e.Code] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return len(entries), nil
}

// view resolves the stored outcome against the current catalog, the way a
// join would: the entry reflects later catalog updates.
func (s *Store) view(r row) domain.MatchOutcome {
	o := r.outcome
	if o.Entry == nil {
		return o
	}
	entry, ok := s.entryByID(o.Entry.ID)
	if !ok {
		return domain.Unmatched(o.Record)
	}
	o.Entry = &entry
	return o
}

// rowPos finds a record by ID; rows are kept in ID order.
func (s *Store) rowPos(id int64) (int, bool) {
	i := sort.Search(len(s.rows), func(i int) bool { return s.rows[i].outcome.Record.ID >= id })
	if i < len(s.rows) && s.rows[i].outcome.Record.ID == id {
		return i, true
	}
	return 0, false
}

func (s *Store) entryByID(id int64) (domain.MasterEntry, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].ID >= id })
	if i < len(s.entries) && s.entries[i].ID == id {
		return s.entries[i], true
	}
	return domain.MasterEntry{}, false
}

func window[T any](items []T, page store.Page) []T {
	if page.Skip >= len(items) {
		return []T{}
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-page.Skip)
	copy(out, items[page.Skip:end])
	return out
}
