// Package export renders matched outcomes into the two interchange formats
// accepted by the accounting system's import: semicolon-delimited CSV and a
// CommerceML-style XML document.
//
// Only matched outcomes are rendered. When none are matched the renderers
// return domain.ErrEmptyExport instead of an empty document.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

// Format is an export rendering.
type Format string

const (
	FormatCSV Format = "csv"
	FormatXML Format = "xml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (use csv or xml)", domain.ErrUnsupportedExportFormat, s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml"
	}
	return "text/csv"
}

// Filename returns the attachment name served for f.
func (f Format) Filename() string {
	return "export_1c." + string(f)
}

// Renderer renders export documents. Now supplies the generation timestamp
// written into XML documents; nil means time.Now.
type Renderer struct {
	Now func() time.Time
}

var defaultRenderer = &Renderer{}

// Render renders outcomes in the given format.
func Render(format Format, outcomes []domain.MatchOutcome) ([]byte, error) {
	return defaultRenderer.Render(format, outcomes)
}

// RenderCSV renders outcomes as semicolon-delimited CSV.
func RenderCSV(outcomes []domain.MatchOutcome) ([]byte, error) {
	return defaultRenderer.RenderCSV(outcomes)
}

// RenderXML renders outcomes as an XML document stamped with the current time.
func RenderXML(outcomes []domain.MatchOutcome) ([]byte, error) {
	return defaultRenderer.RenderXML(outcomes)
}

// Render renders outcomes in the given format.
func (r *Renderer) Render(format Format, outcomes []domain.MatchOutcome) ([]byte, error) {
	switch format {
	case FormatCSV:
		return r.RenderCSV(outcomes)
	case FormatXML:
		return r.RenderXML(outcomes)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
	}
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// line is one exported row, shared by both renderings.
type line struct {
	Code     string
	Name     string
	Supplier string
	Article  string
	Barcode  string
	Price    string
}

// matchedLines keeps matched outcomes in their original order.
func matchedLines(outcomes []domain.MatchOutcome) ([]line, error) {
	lines := make([]line, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Matched() {
			continue
		}
		l := line{
			Code:     o.Entry.Code,
			Name:     o.Entry.Name,
			Supplier: o.Record.Supplier,
			Article:  o.Record.Article,
			Barcode:  o.Record.Barcode,
		}
		if o.Record.HasPrice() {
			l.Price = o.Record.Price.Decimal.String()
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyExport
	}
	return lines, nil
}
