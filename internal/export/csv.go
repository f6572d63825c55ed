package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

var csvHeader = []string{"Код1С", "Номенклатура", "Поставщик", "АртикулПоставщика", "Штрихкод", "Цена"}

// RenderCSV writes a header row and one row per matched outcome, delimited
// by ';'. Fields are quoted only when they contain the delimiter, a quote or
// a line break.
func (r *Renderer) RenderCSV(outcomes []domain.MatchOutcome) ([]byte, error) {
	lines, err := matchedLines(outcomes)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range lines {
		row := []string{l.Code, l.Name, l.Supplier, l.Article, l.Barcode, l.Price}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
