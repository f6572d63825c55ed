package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/store"
)

const entryColumns = `id, code_1c, name, barcode, article`

const upsertEntrySQL = `
INSERT INTO master_items (code_1c, name, barcode, article)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code_1c) DO UPDATE
SET name = EXCLUDED.name, barcode = EXCLUDED.barcode, article = EXCLUDED.article, updated_at = now()`

// likeEscaper escapes LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CatalogSnapshot reads the whole catalog in one statement, which Postgres
// evaluates against a single snapshot.
func (s *Store) CatalogSnapshot(ctx context.Context) ([]domain.MasterEntry, error) {
	return queryEntries(ctx, s.pool, `SELECT `+entryColumns+` FROM master_items ORDER BY id`)
}

// ListCatalog returns a page of entries ordered by ID.
func (s *Store) ListCatalog(ctx context.Context, page store.Page) ([]domain.MasterEntry, error) {
	page = page.Normalize()
	return queryEntries(ctx, s.pool,
		`SELECT `+entryColumns+` FROM master_items ORDER BY id OFFSET $1 LIMIT $2`, page.Skip, page.Limit)
}

// SearchCatalog runs a case-insensitive substring search.
func (s *Store) SearchCatalog(ctx context.Context, query string, limit int) ([]domain.MasterEntry, error) {
	if limit <= 0 || limit > store.SearchLimit {
		limit = store.SearchLimit
	}
	pattern := "%" + likeEscaper.Replace(query) + "%"
	return queryEntries(ctx, s.pool, `
SELECT `+entryColumns+` FROM master_items
WHERE name ILIKE $1 OR barcode ILIKE $1 OR article ILIKE $1
ORDER BY id LIMIT $2`, pattern, limit)
}

// UpsertCatalog inserts or updates entries by code in one transaction.
func (s *Store) UpsertCatalog(ctx context.Context, entries []domain.MasterEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(upsertEntrySQL, e.Code, e.Name, toPgText(e.Barcode), toPgText(e.Article))
		}

		br := tx.SendBatch(ctx, batch)
		for _, e := range entries {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("upsert master item %s: %w", e.Code, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func queryEntries(ctx context.Context, q DBTX, query string, args ...any) ([]domain.MasterEntry, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query master items: %w", err)
	}
	defer rows.Close()

	out := []domain.MasterEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate master items: %w", err)
	}
	return out, nil
}

func scanEntry(row pgx.Row) (domain.MasterEntry, error) {
	var (
		e                domain.MasterEntry
		barcode, article pgtype.Text
	)
	if err := row.Scan(&e.ID, &e.Code, &e.Name, &barcode, &article); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan master item: %w", err)
	}
	e.Barcode = barcode.String
	e.Article = article.String
	return e, nil
}
