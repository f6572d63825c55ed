package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/logging"
	"github.com/JonMunkholm/pricematch/internal/store"
)

// ListCatalog returns one page of the catalog in ID order.
func (s *Service) ListCatalog(ctx context.Context, page store.Page) ([]domain.MasterEntry, error) {
	entries, err := s.store.ListCatalog(ctx, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return entries, nil
}

// SearchCatalog finds up to store.SearchLimit entries whose name, barcode or
// article contains query. A blank query returns nothing.
func (s *Service) SearchCatalog(ctx context.Context, query string) ([]domain.MasterEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.MasterEntry{}, nil
	}
	entries, err := s.store.SearchCatalog(ctx, query, store.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return entries, nil
}

// ImportResult reports a catalog import.
type ImportResult struct {
	FileName string `json:"file_name"`
	Entries  int    `json:"entries"`
}

// ImportCatalog reads a catalog file and upserts its entries by accounting
// code. The file is rejected whole on a FormatError.
func (s *Service) ImportCatalog(ctx context.Context, filename string, data []byte) (ImportResult, error) {
	if data == nil {
		return ImportResult{}, ErrNoFile
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return ImportResult{}, fmt.Errorf("%s: %w", filename, ErrFileTooLarge)
	}

	entries, err := s.normalizer.ReadCatalog(data, filename)
	if err != nil {
		return ImportResult{}, err
	}

	n, err := s.store.UpsertCatalog(ctx, entries)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import catalog %s: %w", filename, err)
	}

	logging.WithFields(ctx, "file", filename).Info("catalog imported", "entries", n)
	return ImportResult{FileName: filename, Entries: n}, nil
}
