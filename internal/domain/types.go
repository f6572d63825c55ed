// Package domain holds the types shared by the reconciliation engine and its
// collaborators: supplier records, catalog entries, match outcomes and the
// error taxonomy.
package domain

import "github.com/shopspring/decimal"

// CanonicalRecord is one supplier line item after ingestion, independent of
// the shape of the file it came from.
type CanonicalRecord struct {
	ID       int64               `json:"id"` // Assigned by the store; zero before persistence
	Supplier string              `json:"supplier_name"`
	Name     string              `json:"name"`
	Barcode  string              `json:"barcode,omitempty"`
	Article  string              `json:"article,omitempty"`
	Price    decimal.NullDecimal `json:"price"`
}

// HasPrice reports whether the record carries a price.
func (r CanonicalRecord) HasPrice() bool {
	return r.Price.Valid
}

// MasterEntry is one row of the reference catalog.
type MasterEntry struct {
	ID      int64  `json:"id"`
	Barcode string `json:"barcode,omitempty"`
	Article string `json:"article,omitempty"`
	Name    string `json:"name"`
	Code    string `json:"code_1c"` // External accounting code, unique across the catalog
}

// MatchKind identifies which tier produced a match.
type MatchKind string

const (
	KindBarcode MatchKind = "barcode"
	KindArticle MatchKind = "article"
	KindFuzzy   MatchKind = "fuzzy"
	KindManual  MatchKind = "manual"
	KindNone    MatchKind = "none"
)

// Valid reports whether k is one of the known match kinds.
func (k MatchKind) Valid() bool {
	switch k {
	case KindBarcode, KindArticle, KindFuzzy, KindManual, KindNone:
		return true
	}
	return false
}

// ExactConfidence is the confidence reported for barcode, article and manual matches.
const ExactConfidence = 100

// DefaultFuzzyThreshold is the minimum token-set score accepted as a fuzzy match.
const DefaultFuzzyThreshold = 80

// MatchOutcome is the result of reconciling one record against the catalog.
// Entry is nil when Kind is KindNone.
type MatchOutcome struct {
	Record     CanonicalRecord `json:"record"`
	Entry      *MasterEntry    `json:"master_item,omitempty"`
	Confidence int             `json:"match_confidence"`
	Kind       MatchKind       `json:"match_type"`
}

// Matched reports whether the outcome references a catalog entry.
func (o MatchOutcome) Matched() bool {
	return o.Entry != nil
}

// Unmatched builds the outcome for a record that stays pending review.
func Unmatched(rec CanonicalRecord) MatchOutcome {
	return MatchOutcome{Record: rec, Kind: KindNone}
}
