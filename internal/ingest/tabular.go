package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

// errEmptyFile is returned when a tabular file has no header row.
var errEmptyFile = errors.New("file is empty")

// readDelimited parses CSV text. Russian exports use ';', so it is tried
// first; if that fails or yields a single-column header the text is
// re-parsed with ','.
func readDelimited(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, errEmptyFile
	}

	rows, err := parseDelimited(text, ';')
	if err == nil && len(rows) > 0 && len(rows[0]) >= 2 {
		return rows, nil
	}

	rows, err = parseDelimited(text, ',')
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func parseDelimited(text []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// ole2Signature opens every legacy BIFF (.xls) workbook. OOXML workbooks
// are zip archives and go through excelize.
var ole2Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// readSpreadsheet reads every row of the first worksheet. The workbook kind
// is taken from the content, not the extension.
func readSpreadsheet(data []byte) ([][]string, error) {
	if bytes.HasPrefix(data, ole2Signature) {
		return readBIFF(data)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

var errNoSheets = errors.New("workbook has no sheets")

// readBIFF reads the first worksheet of a legacy .xls workbook. The reader
// panics on some malformed streams; those surface as errors.
func readBIFF(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("open xls workbook: malformed stream: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	if wb == nil {
		return nil, errors.New("open xls workbook: no workbook stream")
	}
	if wb.NumSheets() == 0 {
		return nil, errNoSheets
	}

	sheet := wb.GetSheet(0)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := biffRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// biffRow returns row i, or nil for a gap in the sheet. WorkSheet.Row
// dereferences the missing row, so the panic is absorbed here.
func biffRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// recordsFromTable maps the header row and converts every data row with a
// non-blank name into a canonical record.
func (n *Normalizer) recordsFromTable(rows [][]string, supplier string) ([]domain.CanonicalRecord, error) {
	if len(rows) == 0 {
		return nil, errEmptyFile
	}
	header, body := rows[0], rows[1:]

	cols, err := n.synonyms.mapColumns(supplierTargets, header, body)
	if err != nil {
		if len(body) == 0 {
			// Header-only file: nothing to map, nothing to return.
			return []domain.CanonicalRecord{}, nil
		}
		return nil, err
	}

	namePos := cols.pos(TargetName)
	barcodePos := cols.pos(TargetBarcode)
	articlePos := cols.pos(TargetArticle)
	pricePos := cols.pos(TargetPrice)

	records := make([]domain.CanonicalRecord, 0, len(body))
	for _, row := range body {
		if isEmptyRow(row) {
			continue
		}
		name := normalizeName(cellAt(row, namePos))
		if name == "" {
			continue
		}
		records = append(records, domain.CanonicalRecord{
			Supplier: supplier,
			Name:     name,
			Barcode:  normalizeBarcode(cellAt(row, barcodePos)),
			Article:  normalizeArticle(cellAt(row, articlePos)),
			Price:    parsePrice(cellAt(row, pricePos)),
		})
	}
	return records, nil
}
