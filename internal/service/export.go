package service

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/pricematch/internal/export"
	"github.com/JonMunkholm/pricematch/internal/logging"
)

// Export renders every matched record in the requested format.
// An unknown format fails before the store is read; with nothing matched
// the error is domain.ErrEmptyExport.
func (s *Service) Export(ctx context.Context, format string) ([]byte, export.Format, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, "", err
	}

	outcomes, err := s.store.MatchedOutcomes(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load matched outcomes: %w", err)
	}

	data, err := s.renderer.Render(f, outcomes)
	if err != nil {
		return nil, "", err
	}

	logging.FromContext(ctx).Info("export rendered",
		"format", string(f),
		"items", len(outcomes),
		"bytes", len(data),
	)
	return data, f, nil
}
