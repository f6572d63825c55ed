package postgres

// convert.go maps between domain values and pgtype values.
//
// Optional text fields are "" in the domain and NULL in the database.
// Prices travel as pgtype.Numeric built directly from the decimal's
// coefficient and exponent, so no float or string round trip is involved.

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgNumeric(d decimal.NullDecimal) pgtype.Numeric {
	if !d.Valid {
		return pgtype.Numeric{Valid: false}
	}
	return pgtype.Numeric{
		Int:   d.Decimal.Coefficient(),
		Exp:   d.Decimal.Exponent(),
		Valid: true,
	}
}

func fromPgNumeric(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromBigInt(n.Int, n.Exp))
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toPgInt8(id int64, valid bool) pgtype.Int8 {
	return pgtype.Int8{Int64: id, Valid: valid}
}

// outcomeColumns are the values written for one outcome.
func outcomeColumns(o domain.MatchOutcome) (matched bool, entryID pgtype.Int8, confidence pgtype.Int4, kind pgtype.Text) {
	kind = toPgText(string(o.Kind))
	if !o.Matched() {
		return false, pgtype.Int8{}, pgtype.Int4{Int32: 0, Valid: true}, kind
	}
	return true, toPgInt8(o.Entry.ID, true), pgtype.Int4{Int32: int32(o.Confidence), Valid: true}, kind
}

// fromPgKind reads a stored match_type. Unknown values are rejected rather
// than passed on to exports.
func fromPgKind(t pgtype.Text) (domain.MatchKind, error) {
	if !t.Valid {
		return domain.KindNone, nil
	}
	k := domain.MatchKind(t.String)
	if !k.Valid() {
		return "", fmt.Errorf("unknown match_type %q", t.String)
	}
	return k, nil
}
