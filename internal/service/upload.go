package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/pricematch/internal/logging"
)

// UploadResult reports what an upload stored.
type UploadResult struct {
	UploadID string `json:"upload_id"`
	Supplier string `json:"supplier_name"`
	FileName string `json:"file_name"`
	Records  int    `json:"records"`
	Message  string `json:"message"`
}

// Upload parses one supplier file and stores its records as pending.
// A FormatError rejects the whole file; nothing is stored.
func (s *Service) Upload(ctx context.Context, supplier, filename string, data []byte) (UploadResult, error) {
	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		return UploadResult{}, ErrSupplierRequired
	}
	if data == nil {
		return UploadResult{}, ErrNoFile
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return UploadResult{}, fmt.Errorf("%s: %w (%d bytes, limit %d)", filename, ErrFileTooLarge, len(data), s.maxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return UploadResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	log := logging.WithFields(ctx, "supplier", supplier, "file", filename)
	start := time.Now()

	records, err := s.normalizer.Normalize(data, filename, supplier)
	if err != nil {
		log.Warn("upload rejected", "error", err)
		return UploadResult{}, err
	}

	uploadID := uuid.New()
	n, err := s.store.InsertRecords(ctx, uploadID, records)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store records from %s: %w", filename, err)
	}

	log.Info("upload stored",
		"upload_id", uploadID.String(),
		"records", n,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	return UploadResult{
		UploadID: uploadID.String(),
		Supplier: supplier,
		FileName: filename,
		Records:  n,
		Message:  fmt.Sprintf("Successfully parsed and saved %d items from %s", n, filename),
	}, nil
}
