package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

// itemTags lists the element names treated as line items, in priority order.
// The second name is only consulted when the first matches nothing.
var itemTags = []string{"Item", "Товар"}

// fieldTags lists the accepted child element names per target.
var fieldTags = map[Target][]string{
	TargetName:    {"Name", "Наименование", "Название"},
	TargetBarcode: {"Barcode", "Штрихкод"},
	TargetArticle: {"Article", "Артикул"},
	TargetPrice:   {"Price", "Цена"},
}

var errNoItems = errors.New("no item elements found")

// node is a generic XML element.
type node struct {
	XMLName  xml.Name
	Content  string `xml:",chardata"`
	Children []node `xml:",any"`
}

// field returns the text of the first direct child named by any of names
// that has non-blank content.
func (n *node) field(names []string) string {
	for _, name := range names {
		for i := range n.Children {
			c := &n.Children[i]
			if c.XMLName.Local != name {
				continue
			}
			if v := strings.TrimSpace(c.Content); v != "" {
				return v
			}
		}
	}
	return ""
}

// collect appends every descendant (including n itself) named tag.
func (n *node) collect(tag string, out []*node) []*node {
	if n.XMLName.Local == tag {
		out = append(out, n)
	}
	for i := range n.Children {
		out = n.Children[i].collect(tag, out)
	}
	return out
}

// readMarkup decodes an XML document into canonical records.
func readMarkup(data []byte, supplier string) ([]domain.CanonicalRecord, error) {
	dec := xml.NewDecoder(bytes.NewReader(skipBOM(data)))
	dec.CharsetReader = charsetReader

	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	var items []*node
	for _, tag := range itemTags {
		if items = root.collect(tag, nil); len(items) > 0 {
			break
		}
	}
	if len(items) == 0 {
		return nil, errNoItems
	}

	records := make([]domain.CanonicalRecord, 0, len(items))
	for _, item := range items {
		name := normalizeName(item.field(fieldTags[TargetName]))
		if name == "" {
			continue
		}
		records = append(records, domain.CanonicalRecord{
			Supplier: supplier,
			Name:     name,
			Barcode:  normalizeBarcode(item.field(fieldTags[TargetBarcode])),
			Article:  normalizeArticle(item.field(fieldTags[TargetArticle])),
			Price:    parsePrice(item.field(fieldTags[TargetPrice])),
		})
	}
	if len(records) == 0 {
		return nil, errors.New("no item has a name")
	}
	return records, nil
}
