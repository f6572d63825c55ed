package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/pricematch/internal/catalog"
	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/logging"
	"github.com/JonMunkholm/pricematch/internal/matching"
	"github.com/JonMunkholm/pricematch/internal/runlock"
)

// RunResult reports one matching run.
type RunResult struct {
	RunID   string `json:"run_id"`
	Message string `json:"message"`
	matching.RunSummary
	Duration time.Duration `json:"-"`
}

// RunMatching matches every pending record against a catalog snapshot and
// commits the outcomes atomically. Only one run proceeds at a time; a
// concurrent call fails with runlock.ErrLocked. A run whose lock is lost
// midway fails with runlock.ErrLeaseLost. On error nothing is committed and
// the run is safe to retry.
func (s *Service) RunMatching(ctx context.Context) (RunResult, error) {
	lease, err := s.locker.Acquire(ctx)
	if err != nil {
		return RunResult{}, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.FromContext(ctx)

	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("release run lock", "error", err)
		}
	}()

	ctx, unbind := runlock.WithLease(ctx, lease)
	defer unbind()

	ctx, cancel := context.WithTimeout(ctx, s.matchTimeout)
	defer cancel()

	start := time.Now()

	pending, err := s.store.PendingRecords(ctx)
	if err != nil {
		return RunResult{}, runError(ctx, "load pending records", err)
	}

	entries, err := s.store.CatalogSnapshot(ctx)
	if err != nil {
		return RunResult{}, runError(ctx, "load catalog", err)
	}
	idx := catalog.Build(entries)

	outcomes, err := s.engine.Match(ctx, pending, idx)
	if err != nil {
		err = runError(ctx, "match records", err)
		log.Warn("matching run aborted", "pending", len(pending), "error", err)
		return RunResult{}, err
	}

	if !runlock.Held(lease) {
		log.Warn("matching run aborted before commit", "pending", len(pending), "error", runlock.ErrLeaseLost)
		return RunResult{}, fmt.Errorf("commit outcomes: %w", runlock.ErrLeaseLost)
	}
	if err := s.store.CommitOutcomes(ctx, outcomes); err != nil {
		return RunResult{}, runError(ctx, "commit outcomes", err)
	}

	summary := matching.Summary(outcomes)
	elapsed := time.Since(start)

	log.Info("matching run complete",
		"pending", len(pending),
		"catalog", idx.Len(),
		"matched", summary.Matched,
		"remaining", summary.Remaining,
		"barcode", summary.ByKind[domain.KindBarcode],
		"article", summary.ByKind[domain.KindArticle],
		"fuzzy", summary.ByKind[domain.KindFuzzy],
		"duration", elapsed,
	)

	return RunResult{
		RunID:      runID,
		Message:    "Matching run completed",
		RunSummary: summary,
		Duration:   elapsed,
	}, nil
}

// runError reports a lost run lock instead of the cancellation it caused.
func runError(ctx context.Context, step string, err error) error {
	if cause := context.Cause(ctx); errors.Is(cause, runlock.ErrLeaseLost) {
		err = cause
	}
	return fmt.Errorf("%s: %w", step, err)
}
