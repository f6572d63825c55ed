package ingest

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

var errNoCodeColumn = errors.New("no accounting code column")

// ReadCatalog parses a catalog file (.csv, .xlsx or .xls) into master entries.
// The header must carry a name and an accounting code column; barcode and
// article are optional. Rows missing a name or a code are skipped.
func (n *Normalizer) ReadCatalog(data []byte, filename string) ([]domain.MasterEntry, error) {
	format, ok := DetectFormat(filename)
	if !ok || format == FormatMarkup {
		ext := strings.ToLower(filepath.Ext(filename))
		return nil, domain.NewFormatError(filename, "unsupported catalog format: "+ext, nil)
	}

	var (
		rows [][]string
		err  error
	)
	if format == FormatDelimited {
		rows, err = readDelimited(data)
	} else {
		rows, err = readSpreadsheet(data)
	}
	if err != nil {
		return nil, domain.NewFormatError(filename, "failed to parse catalog", err)
	}
	if len(rows) == 0 {
		return nil, domain.NewFormatError(filename, "failed to parse catalog", errEmptyFile)
	}

	header, body := rows[0], rows[1:]
	cols, err := n.synonyms.mapColumns(catalogTargets, header, body)
	if err != nil {
		return nil, domain.NewFormatError(filename, "cannot map columns", err)
	}
	codePos := cols.pos(TargetCode)
	if codePos < 0 {
		return nil, domain.NewFormatError(filename, "cannot map columns", errNoCodeColumn)
	}

	entries := make([]domain.MasterEntry, 0, len(body))
	for _, row := range body {
		name := normalizeName(cellAt(row, cols.pos(TargetName)))
		code := cellAt(row, codePos)
		if name == "" || code == "" {
			continue
		}
		entries = append(entries, domain.MasterEntry{
			Code:    code,
			Name:    name,
			Barcode: normalizeBarcode(cellAt(row, cols.pos(TargetBarcode))),
			Article: normalizeArticle(cellAt(row, cols.pos(TargetArticle))),
		})
	}
	return entries, nil
}

// ReadCatalog is a convenience wrapper using the default synonym table.
func ReadCatalog(data []byte, filename string) ([]domain.MasterEntry, error) {
	return NewNormalizer().ReadCatalog(data, filename)
}
