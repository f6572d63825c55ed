package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/matching"
	"github.com/JonMunkholm/pricematch/internal/store"
)

var recordCopyColumns = []string{"upload_id", "supplier_name", "name", "barcode", "article", "price"}

const recordColumns = `s.id, s.supplier_name, s.name, s.barcode, s.article, s.price`

const resultSelect = `
SELECT ` + recordColumns + `,
       s.match_confidence, s.match_type,
       m.id, m.code_1c, m.name, m.barcode, m.article
FROM supplier_items s
LEFT JOIN master_items m ON m.id = s.matched_master_id`

// Automatic outcomes never replace a manual match made after the run read
// its pending records.
const updateOutcomeSQL = `
UPDATE supplier_items
SET is_matched = $2, matched_master_id = $3, match_confidence = $4, match_type = $5, matched_at = now()
WHERE id = $1 AND match_type IS DISTINCT FROM 'manual'`

const overrideSQL = `
UPDATE supplier_items
SET is_matched = true, matched_master_id = $2, match_confidence = $3, match_type = $4, matched_at = now()
WHERE id = $1`

// InsertRecords bulk loads records with COPY.
func (s *Store) InsertRecords(ctx context.Context, uploadID uuid.UUID, records []domain.CanonicalRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			toPgUUID(uploadID),
			r.Supplier,
			r.Name,
			toPgText(r.Barcode),
			toPgText(r.Article),
			toPgNumeric(r.Price),
		}
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"supplier_items"}, recordCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy supplier items: %w", err)
	}
	return int(n), nil
}

// PendingRecords returns unmatched records ordered by ID.
func (s *Store) PendingRecords(ctx context.Context) ([]domain.CanonicalRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+recordColumns+` FROM supplier_items s WHERE NOT s.is_matched ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("query pending records: %w", err)
	}
	defer rows.Close()

	var out []domain.CanonicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending records: %w", err)
	}
	return out, nil
}

// CommitOutcomes writes all outcomes in one transaction using a batch.
func (s *Store) CommitOutcomes(ctx context.Context, outcomes []domain.MatchOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, o := range outcomes {
			matched, entryID, confidence, kind := outcomeColumns(o)
			batch.Queue(updateOutcomeSQL, o.Record.ID, matched, entryID, confidence, kind)
		}

		br := tx.SendBatch(ctx, batch)
		for _, o := range outcomes {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("update outcome for record %d: %w", o.Record.ID, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
		return nil
	})
}

// Results lists records joined with their matched entry.
func (s *Store) Results(ctx context.Context, filter store.ResultFilter) ([]domain.MatchOutcome, error) {
	page := filter.Page.Normalize()

	query := resultSelect
	switch filter.Status {
	case store.StatusMatched:
		query += ` WHERE s.is_matched AND m.id IS NOT NULL`
	case store.StatusUnmatched:
		query += ` WHERE NOT s.is_matched OR m.id IS NULL`
	}
	query += ` ORDER BY s.id OFFSET $1 LIMIT $2`

	return queryOutcomes(ctx, s.pool, query, page.Skip, page.Limit)
}

// MatchedOutcomes returns every matched record for export.
func (s *Store) MatchedOutcomes(ctx context.Context) ([]domain.MatchOutcome, error) {
	return queryOutcomes(ctx, s.pool, resultSelect+` WHERE s.is_matched AND m.id IS NOT NULL ORDER BY s.id`)
}

// ApplyOverride locks the record, resolves the entry and records a manual
// match. Nothing is written when either row is missing.
func (s *Store) ApplyOverride(ctx context.Context, recordID, entryID int64) (domain.MatchOutcome, error) {
	var outcome domain.MatchOutcome

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		rec, err := scanRecord(tx.QueryRow(ctx,
			`SELECT `+recordColumns+` FROM supplier_items s WHERE s.id = $1 FOR UPDATE`, recordID))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError(domain.ResourceRecord, recordID)
		}
		if err != nil {
			return err
		}

		entry, err := scanEntry(tx.QueryRow(ctx,
			`SELECT `+entryColumns+` FROM master_items WHERE id = $1`, entryID))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError(domain.ResourceEntry, entryID)
		}
		if err != nil {
			return err
		}

		outcome, err = matching.ApplyOverride(&rec, &entry)
		if err != nil {
			return err
		}

		_, entryCol, confidence, kind := outcomeColumns(outcome)
		if _, err := tx.Exec(ctx, overrideSQL, recordID, entryCol, confidence, kind); err != nil {
			return fmt.Errorf("update record %d: %w", recordID, err)
		}
		return nil
	})
	if err != nil {
		return domain.MatchOutcome{}, err
	}
	return outcome, nil
}

func queryOutcomes(ctx context.Context, q DBTX, query string, args ...any) ([]domain.MatchOutcome, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := []domain.MatchOutcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (domain.CanonicalRecord, error) {
	var (
		rec              domain.CanonicalRecord
		barcode, article pgtype.Text
		price            pgtype.Numeric
	)
	if err := row.Scan(&rec.ID, &rec.Supplier, &rec.Name, &barcode, &article, &price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan supplier item: %w", err)
	}
	rec.Barcode = barcode.String
	rec.Article = article.String
	rec.Price = fromPgNumeric(price)
	return rec, nil
}

func scanOutcome(row pgx.Row) (domain.MatchOutcome, error) {
	var (
		rec                  domain.CanonicalRecord
		barcode, article     pgtype.Text
		price                pgtype.Numeric
		confidence           pgtype.Int4
		kind                 pgtype.Text
		entryID              pgtype.Int8
		code, name           pgtype.Text
		entryBarcode, entArt pgtype.Text
	)
	err := row.Scan(
		&rec.ID, &rec.Supplier, &rec.Name, &barcode, &article, &price,
		&confidence, &kind,
		&entryID, &code, &name, &entryBarcode, &entArt,
	)
	if err != nil {
		return domain.MatchOutcome{}, fmt.Errorf("scan result: %w", err)
	}
	rec.Barcode = barcode.String
	rec.Article = article.String
	rec.Price = fromPgNumeric(price)

	if !entryID.Valid {
		return domain.Unmatched(rec), nil
	}
	matchKind, err := fromPgKind(kind)
	if err != nil {
		return domain.MatchOutcome{}, fmt.Errorf("scan result %d: %w", rec.ID, err)
	}
	return domain.MatchOutcome{
		Record: rec,
		Entry: &domain.MasterEntry{
			ID:      entryID.Int64,
			Code:    code.String,
			Name:    name.String,
			Barcode: entryBarcode.String,
			Article: entArt.String,
		},
		Confidence: int(confidence.Int32),
		Kind:       matchKind,
	}, nil
}
