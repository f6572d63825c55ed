package matching

import (
	"github.com/JonMunkholm/pricematch/internal/domain"
)

// ApplyOverride forces record to match entry. The result always has kind
// manual and full confidence, whatever the record's previous outcome was.
// Applying the same override twice yields the same outcome; a later override
// of the same record replaces an earlier one.
func ApplyOverride(record *domain.CanonicalRecord, entry *domain.MasterEntry) (domain.MatchOutcome, error) {
	if record == nil {
		return domain.MatchOutcome{}, &domain.NotFoundError{Resource: domain.ResourceRecord, ID: "(nil)"}
	}
	if entry == nil {
		return domain.MatchOutcome{}, &domain.NotFoundError{Resource: domain.ResourceEntry, ID: "(nil)"}
	}

	e := *entry
	return domain.MatchOutcome{
		Record:     *record,
		Entry:      &e,
		Confidence: domain.ExactConfidence,
		Kind:       domain.KindManual,
	}, nil
}
