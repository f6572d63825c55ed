package export

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

// SchemaVersion is written to the root element's ВерсияСхемы attribute.
const SchemaVersion = "2.03"

const timestampLayout = "2006-01-02T15:04:05"

type commerceInfo struct {
	XMLName       xml.Name `xml:"КоммерческаяИнформация"`
	SchemaVersion string   `xml:"ВерсияСхемы,attr"`
	GeneratedAt   string   `xml:"ДатаФормирования,attr"`
	Document      document `xml:"Документ"`
}

type document struct {
	Goods []good `xml:"Товары>Товар"`
}

type good struct {
	ID       string `xml:"Ид"`
	Name     string `xml:"Наименование"`
	Supplier string `xml:"Поставщик"`
	Article  string `xml:"АртикулПоставщика"`
	Barcode  string `xml:"Штрихкод"`
	Price    string `xml:"ЦенаЗаЕдиницу"`
}

// RenderXML writes an XML declaration followed by the document, indented by
// two spaces.
func (r *Renderer) RenderXML(outcomes []domain.MatchOutcome) ([]byte, error) {
	lines, err := matchedLines(outcomes)
	if err != nil {
		return nil, err
	}

	doc := commerceInfo{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   r.now().Format(timestampLayout),
		Document:      document{Goods: make([]good, len(lines))},
	}
	for i, l := range lines {
		doc.Document.Goods[i] = good{
			ID:       l.Code,
			Name:     l.Name,
			Supplier: l.Supplier,
			Article:  l.Article,
			Barcode:  l.Barcode,
			Price:    l.Price,
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
