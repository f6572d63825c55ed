// Package service ties the reconciliation pipeline together: it ingests
// supplier uploads into the store, runs the matching engine over pending
// records under the run lock, applies reviewer overrides and renders exports.
//
// It is transport-agnostic. The HTTP server and the offline CLI both drive
// the same Service; only the store and lock implementations differ.
package service

import (
	"errors"
	"time"

	"github.com/JonMunkholm/pricematch/internal/config"
	"github.com/JonMunkholm/pricematch/internal/export"
	"github.com/JonMunkholm/pricematch/internal/ingest"
	"github.com/JonMunkholm/pricematch/internal/matching"
	"github.com/JonMunkholm/pricematch/internal/runlock"
	"github.com/JonMunkholm/pricematch/internal/store"
)

// Input errors detected before any file is parsed.
var (
	ErrSupplierRequired = errors.New("required field: supplier_name")
	ErrNoFile           = errors.New("no file provided")
	ErrFileTooLarge     = errors.New("file too large")
)

// Default operation timeouts.
const (
	DefaultUploadTimeout = 5 * time.Minute
	DefaultMatchTimeout  = 10 * time.Minute
)

// Service provides the reconciliation operations.
type Service struct {
	store      store.Store
	normalizer *ingest.Normalizer
	engine     *matching.Engine
	locker     runlock.Locker
	limiter    *UploadLimiter
	renderer   *export.Renderer

	maxFileSize   int64
	uploadTimeout time.Duration
	matchTimeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithNormalizer sets the ingestion normalizer (default: built-in synonyms).
func WithNormalizer(n *ingest.Normalizer) Option {
	return func(s *Service) { s.normalizer = n }
}

// WithEngine sets the matching engine.
func WithEngine(e *matching.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithLocker sets the run lock (default: in-process).
func WithLocker(l runlock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithUploadLimiter bounds concurrent uploads.
func WithUploadLimiter(l *UploadLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithRenderer sets the export renderer. Tests use it to pin the clock.
func WithRenderer(r *export.Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// WithMaxFileSize rejects uploads larger than n bytes. Zero disables the check.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) { s.maxFileSize = n }
}

// WithTimeouts overrides the upload and matching run timeouts.
// Non-positive values keep the defaults.
func WithTimeouts(upload, match time.Duration) Option {
	return func(s *Service) {
		if upload > 0 {
			s.uploadTimeout = upload
		}
		if match > 0 {
			s.matchTimeout = match
		}
	}
}

// New creates a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:         st,
		uploadTimeout: DefaultUploadTimeout,
		matchTimeout:  DefaultMatchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = ingest.NewNormalizer()
	}
	if s.engine == nil {
		s.engine = matching.New()
	}
	if s.locker == nil {
		s.locker = runlock.NewLocal()
	}
	if s.limiter == nil {
		s.limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	if s.renderer == nil {
		s.renderer = &export.Renderer{}
	}
	return s
}

// OptionsFromConfig translates application config into Service options.
// The locker is not included; callers pick Redis or local themselves.
func OptionsFromConfig(cfg *config.Config, normalizer *ingest.Normalizer) []Option {
	return []Option{
		WithNormalizer(normalizer),
		WithEngine(matching.New(
			matching.WithThreshold(cfg.Matching.Threshold),
			matching.WithWorkers(cfg.Matching.Workers),
		)),
		WithUploadLimiter(NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
		WithMaxFileSize(cfg.Upload.MaxFileSize),
		WithTimeouts(cfg.Upload.Timeout, cfg.Matching.Timeout),
	}
}

// Store returns the underlying store.
func (s *Service) Store() store.Store {
	return s.store
}

// UploadLimiter returns the upload limiter, for status and drain on shutdown.
func (s *Service) UploadLimiter() *UploadLimiter {
	return s.limiter
}

// MaxFileSize returns the upload size limit in bytes (0 = unlimited).
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}
