// Package matching reconciles canonical supplier records against a catalog
// index using a tiered strategy: exact barcode, exact article, then fuzzy
// name similarity. It also implements the manual override that replaces an
// automatic outcome.
package matching

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/pricematch/internal/catalog"
	"github.com/JonMunkholm/pricematch/internal/domain"
)

// Engine matches records against a catalog index. It holds no state between
// runs and is safe for concurrent use.
type Engine struct {
	// Threshold is the minimum TokenSetRatio accepted as a fuzzy match (1..100).
	Threshold int

	// Workers bounds the number of records scored concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets the fuzzy acceptance threshold. Values outside 1..100
// are ignored.
func WithThreshold(n int) Option {
	return func(e *Engine) {
		if n >= 1 && n <= 100 {
			e.Threshold = n
		}
	}
}

// WithWorkers sets the worker pool size. Values below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.Workers = n
		}
	}
}

// New creates an Engine with the default threshold.
func New(opts ...Option) *Engine {
	e := &Engine{Threshold: domain.DefaultFuzzyThreshold}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) threshold() int {
	if e.Threshold < 1 || e.Threshold > 100 {
		return domain.DefaultFuzzyThreshold
	}
	return e.Threshold
}

func (e *Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Match produces exactly one outcome per record, in input order. The index
// is only read. If ctx is cancelled the partial results are discarded and
// ctx.Err() is returned.
func (e *Engine) Match(ctx context.Context, records []domain.CanonicalRecord, idx *catalog.Index) ([]domain.MatchOutcome, error) {
	corpus := newCorpus(idx)
	threshold := e.threshold()
	outcomes := make([]domain.MatchOutcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = corpus.match(records[i], threshold)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// corpus pairs an index with the token sets of its entry names, computed
// once per run.
type corpus struct {
	idx    *catalog.Index
	tokens [][]string
}

func newCorpus(idx *catalog.Index) *corpus {
	entries := idx.Entries()
	c := &corpus{idx: idx, tokens: make([][]string, len(entries))}
	for i, entry := range entries {
		c.tokens[i] = tokenSet(Tokenize(entry.Name))
	}
	return c
}

// match applies the tiers in order; the first tier that produces a match wins.
func (c *corpus) match(rec domain.CanonicalRecord, threshold int) domain.MatchOutcome {
	if entry, ok := c.idx.LookupByBarcode(rec.Barcode); ok {
		return exact(rec, entry, domain.KindBarcode)
	}
	if entry, ok := c.idx.LookupByArticle(rec.Article); ok {
		return exact(rec, entry, domain.KindArticle)
	}
	if entry, score, ok := c.bestByName(rec.Name); ok && score >= threshold {
		return domain.MatchOutcome{
			Record:     rec,
			Entry:      &entry,
			Confidence: score,
			Kind:       domain.KindFuzzy,
		}
	}
	return domain.Unmatched(rec)
}

// bestByName returns the highest scoring entry. On ties the entry that comes
// first in catalog order wins.
func (c *corpus) bestByName(name string) (domain.MasterEntry, int, bool) {
	query := tokenSet(Tokenize(name))
	if len(query) == 0 {
		return domain.MasterEntry{}, 0, false
	}

	entries := c.idx.Entries()
	bestPos, bestScore := -1, 0
	for i := range entries {
		score := tokenSetScore(query, c.tokens[i])
		if score > bestScore {
			bestPos, bestScore = i, score
			if score == 100 {
				break
			}
		}
	}
	if bestPos < 0 {
		return domain.MasterEntry{}, 0, false
	}
	return entries[bestPos], bestScore, true
}

func exact(rec domain.CanonicalRecord, entry domain.MasterEntry, kind domain.MatchKind) domain.MatchOutcome {
	return domain.MatchOutcome{
		Record:     rec,
		Entry:      &entry,
		Confidence: domain.ExactConfidence,
		Kind:       kind,
	}
}

// RunSummary counts the outcomes of one matching run.
type RunSummary struct {
	Matched   int                      `json:"matched"`
	Remaining int                      `json:"remaining"`
	ByKind    map[domain.MatchKind]int `json:"by_kind"`
}

// Summary tallies outcomes by kind. Remaining counts records left unmatched.
func Summary(outcomes []domain.MatchOutcome) RunSummary {
	s := RunSummary{ByKind: make(map[domain.MatchKind]int)}
	for _, o := range outcomes {
		s.ByKind[o.Kind]++
		if o.Matched() {
			s.Matched++
		} else {
			s.Remaining++
		}
	}
	return s
}
