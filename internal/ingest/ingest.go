// Package ingest turns supplier price-list files into canonical records.
//
// Three source formats are accepted, chosen by the filename extension:
// delimited text (.csv), spreadsheets (.xlsx, .xls) and markup (.xml).
// Tabular sources have their header labels mapped to the semantic targets
// name, barcode, article and price through a configurable synonym table.
//
// Any failure to read the file as a whole is reported as a
// *domain.FormatError. Field-level problems never fail the file: an
// unparseable price becomes unset and a row without a name is skipped.
package ingest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

// Format identifies a supported source format.
type Format string

const (
	FormatDelimited   Format = "delimited"
	FormatSpreadsheet Format = "spreadsheet"
	FormatMarkup      Format = "markup"
)

var extFormats = map[string]Format{
	".csv":  FormatDelimited,
	".xlsx": FormatSpreadsheet,
	".xls":  FormatSpreadsheet,
	".xml":  FormatMarkup,
}

// DetectFormat returns the format for filename's extension.
func DetectFormat(filename string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}

// SupportedExtensions lists the accepted extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extFormats))
	for ext := range extFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalizer converts supplier files into canonical records. The zero value
// is not usable; construct with NewNormalizer.
type Normalizer struct {
	synonyms Synonyms
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSynonyms replaces the header synonym table.
func WithSynonyms(s Synonyms) Option {
	return func(n *Normalizer) {
		if len(s) > 0 {
			n.synonyms = s
		}
	}
}

// NewNormalizer creates a Normalizer with the default synonym table unless
// overridden.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{synonyms: DefaultSynonyms()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize is a convenience wrapper around NewNormalizer(opts...).Normalize.
func Normalize(data []byte, filename, supplier string, opts ...Option) ([]domain.CanonicalRecord, error) {
	return NewNormalizer(opts...).Normalize(data, filename, supplier)
}

// Normalize parses data according to filename's extension and returns the
// records in source order, each tagged with supplier.
func (n *Normalizer) Normalize(data []byte, filename, supplier string) ([]domain.CanonicalRecord, error) {
	format, ok := DetectFormat(filename)
	if !ok {
		ext := strings.ToLower(filepath.Ext(filename))
		if ext == "" {
			ext = "(none)"
		}
		return nil, domain.NewFormatError(filename,
			fmt.Sprintf("unsupported file format: %s (supported: %s)", ext, strings.Join(SupportedExtensions(), ", ")), nil)
	}

	supplier = strings.TrimSpace(supplier)

	switch format {
	case FormatDelimited:
		rows, err := readDelimited(data)
		if err != nil {
			return nil, domain.NewFormatError(filename, "failed to parse csv", err)
		}
		return n.tableRecords(rows, filename, supplier)

	case FormatSpreadsheet:
		rows, err := readSpreadsheet(data)
		if err != nil {
			return nil, domain.NewFormatError(filename, "failed to parse spreadsheet", err)
		}
		return n.tableRecords(rows, filename, supplier)

	default:
		records, err := readMarkup(data, supplier)
		if err != nil {
			return nil, domain.NewFormatError(filename, "failed to parse xml", err)
		}
		return records, nil
	}
}

func (n *Normalizer) tableRecords(rows [][]string, filename, supplier string) ([]domain.CanonicalRecord, error) {
	records, err := n.recordsFromTable(rows, supplier)
	if err != nil {
		return nil, domain.NewFormatError(filename, "cannot map columns", err)
	}
	return records, nil
}
