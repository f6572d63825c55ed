package service

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/logging"
	"github.com/JonMunkholm/pricematch/internal/store"
)

// Results lists supplier records with their current outcome.
func (s *Service) Results(ctx context.Context, filter store.ResultFilter) ([]domain.MatchOutcome, error) {
	filter.Page = filter.Page.Normalize()
	outcomes, err := s.store.Results(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return outcomes, nil
}

// ManualMatch binds record recordID to catalog entry entryID with kind
// manual and confidence 100, replacing any earlier outcome. Later automatic
// runs leave it alone.
func (s *Service) ManualMatch(ctx context.Context, recordID, entryID int64) (domain.MatchOutcome, error) {
	outcome, err := s.store.ApplyOverride(ctx, recordID, entryID)
	if err != nil {
		return domain.MatchOutcome{}, fmt.Errorf("manual match %d -> %d: %w", recordID, entryID, err)
	}

	logging.FromContext(ctx).Info("manual match applied",
		"record_id", recordID,
		"master_item_id", entryID,
		"code_1c", outcome.Entry.Code,
	)
	return outcome, nil
}
