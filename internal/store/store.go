// Package store defines the persistence boundary of the reconciliation
// service: supplier records with their current match outcome, and the
// reference catalog.
//
// Two implementations exist: postgres (pgx) for the server and memory for
// the offline CLI and tests. Both honor the same contract:
//   - CatalogSnapshot returns one consistent read of the catalog.
//   - CommitOutcomes is all-or-nothing and never overwrites a manual match.
//   - ApplyOverride fails with a domain.NotFoundError, and changes nothing,
//     when either ID is unknown.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

// Paging defaults.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
	SearchLimit  = 50
)

// Status filters results by match state.
type Status string

const (
	StatusAll       Status = ""
	StatusMatched   Status = "matched"
	StatusUnmatched Status = "unmatched"
)

// ParseStatus accepts "", "matched" or "unmatched". Anything else is treated
// as no filter.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusMatched, StatusUnmatched:
		return Status(s)
	default:
		return StatusAll
	}
}

// Page selects a window of an ordered listing.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps the page to valid bounds.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// ResultFilter selects supplier records for review.
type ResultFilter struct {
	Status Status
	Page   Page
}

// RecordStore persists supplier records and their outcomes.
type RecordStore interface {
	// InsertRecords appends records from one upload and returns how many
	// were stored. New records are pending.
	InsertRecords(ctx context.Context, uploadID uuid.UUID, records []domain.CanonicalRecord) (int, error)

	// PendingRecords returns every record without a match, ordered by ID.
	PendingRecords(ctx context.Context) ([]domain.CanonicalRecord, error)

	// CommitOutcomes stores the outcome of each record in one transaction.
	CommitOutcomes(ctx context.Context, outcomes []domain.MatchOutcome) error

	// Results lists records with their outcome, ordered by ID.
	Results(ctx context.Context, filter ResultFilter) ([]domain.MatchOutcome, error)

	// MatchedOutcomes returns every matched record, ordered by ID.
	MatchedOutcomes(ctx context.Context) ([]domain.MatchOutcome, error)

	// ApplyOverride forces record recordID to match catalog entry entryID.
	ApplyOverride(ctx context.Context, recordID, entryID int64) (domain.MatchOutcome, error)
}

// CatalogStore reads and maintains the reference catalog.
type CatalogStore interface {
	// CatalogSnapshot returns all entries ordered by ID.
	CatalogSnapshot(ctx context.Context) ([]domain.MasterEntry, error)

	ListCatalog(ctx context.Context, page Page) ([]domain.MasterEntry, error)

	// SearchCatalog returns up to limit entries whose name, barcode or
	// article contains query, case-insensitively.
	SearchCatalog(ctx context.Context, query string, limit int) ([]domain.MasterEntry, error)

	// UpsertCatalog inserts entries or updates existing ones by Code.
	UpsertCatalog(ctx context.Context, entries []domain.MasterEntry) (int, error)
}

// Store is the full persistence contract.
type Store interface {
	RecordStore
	CatalogStore
	Ping(ctx context.Context) error
}
