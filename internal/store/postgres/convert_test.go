package postgres

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

func TestNumericRoundTrip(t *testing.T) {
	tests := []string{"0", "1234.56", "29990.5", "0.01", "1000000"}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			in := decimal.NewNullDecimal(decimal.RequireFromString(s))
			n := toPgNumeric(in)
			assert.True(t, n.Valid)

			out := fromPgNumeric(n)
			assert.True(t, out.Valid)
			assert.True(t, in.Decimal.Equal(out.Decimal), "got %s, want %s", out.Decimal, s)
		})
	}
}

func TestNumericNull(t *testing.T) {
	assert.False(t, toPgNumeric(decimal.NullDecimal{}).Valid)
	assert.False(t, fromPgNumeric(pgtype.Numeric{}).Valid)
	assert.False(t, fromPgNumeric(pgtype.Numeric{NaN: true, Valid: true}).Valid)
	assert.False(t, fromPgNumeric(pgtype.Numeric{Int: big.NewInt(1), InfinityModifier: pgtype.Infinity, Valid: true}).Valid)
}

func TestToPgText(t *testing.T) {
	assert.False(t, toPgText("").Valid)
	assert.Equal(t, pgtype.Text{String: "ART-001", Valid: true}, toPgText("ART-001"))
}

func TestOutcomeColumns(t *testing.T) {
	entry := domain.MasterEntry{ID: 7, Code: "c"}

	matched, entryID, confidence, kind := outcomeColumns(domain.MatchOutcome{
		Record: domain.CanonicalRecord{ID: 1}, Entry: &entry, Confidence: 86, Kind: domain.KindFuzzy,
	})
	assert.True(t, matched)
	assert.Equal(t, pgtype.Int8{Int64: 7, Valid: true}, entryID)
	assert.Equal(t, int32(86), confidence.Int32)
	assert.Equal(t, "fuzzy", kind.String)

	matched, entryID, confidence, kind = outcomeColumns(domain.Unmatched(domain.CanonicalRecord{ID: 2}))
	assert.False(t, matched)
	assert.False(t, entryID.Valid)
	assert.Equal(t, int32(0), confidence.Int32)
	assert.Equal(t, "none", kind.String)
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `100\%`, likeEscaper.Replace("100%"))
	assert.Equal(t, `a\_b`, likeEscaper.Replace("a_b"))
	assert.Equal(t, `c:\\dir`, likeEscaper.Replace(`c:\dir`))
}

func TestFromPgKind(t *testing.T) {
	tests := []struct {
		name    string
		in      pgtype.Text
		want    domain.MatchKind
		wantErr bool
	}{
		{name: "null", in: pgtype.Text{}, want: domain.KindNone},
		{name: "barcode", in: pgtype.Text{String: "barcode", Valid: true}, want: domain.KindBarcode},
		{name: "manual", in: pgtype.Text{String: "manual", Valid: true}, want: domain.KindManual},
		{name: "unknown", in: pgtype.Text{String: "guess", Valid: true}, wantErr: true},
		{name: "empty", in: pgtype.Text{String: "", Valid: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromPgKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
