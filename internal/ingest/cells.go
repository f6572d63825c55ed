package ingest

// cells.go cleans individual cell values pulled from supplier files.
//
// Supplier exports are messy in predictable ways:
//   - Excel formula wrappers (="4601234567890") used to keep leading zeros
//   - Numeric barcode columns rendered as floats ("4601234567890.0")
//   - Prices with spaces as thousands separators and comma decimals ("1 234,56")
//
// None of these are errors: a value that cannot be cleaned becomes unset.
// Names keep their quote characters: 55" is an inch mark, not CSV quoting.

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// floatSuffix is left behind when a numeric column holding digit-string
// identifiers is coerced to text.
const floatSuffix = ".0"

// numericRegex matches plain numbers after separator cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// priceNoise is removed from price cells before parsing.
var priceNoise = strings.NewReplacer(
	" ", "",
	"\u00a0", "", // no-break space
	"\u202f", "", // narrow no-break space
	"\t", "",
	`"`, "",
	"\u20bd", "", // ruble sign
	"$", "",
	"\u20ac", "",
	"\u00a3", "",
)

// cleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula wrapper (="...")
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// normalizeName cleans an item name. Every source format goes through it.
func normalizeName(s string) string {
	return cleanCell(s)
}

// unquote cleans an identifier cell and drops stray quotes around it.
func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(cleanCell(s), `"`))
}

// normalizeBarcode trims the value and strips a trailing ".0" float artifact.
func normalizeBarcode(s string) string {
	return strings.TrimSuffix(unquote(s), floatSuffix)
}

// normalizeArticle trims the value.
func normalizeArticle(s string) string {
	return unquote(s)
}

// parsePrice converts a price cell to a decimal.
// Accepts comma or dot decimals and space thousands separators. When both
// separators are present the last one is the decimal mark.
// Returns an invalid NullDecimal for empty, unparseable or negative input.
func parsePrice(s string) decimal.NullDecimal {
	s = priceNoise.Replace(cleanCell(s))
	if s == "" {
		return decimal.NullDecimal{}
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = strings.ReplaceAll(s, ",", ".")
	}

	if !numericRegex.MatchString(s) {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// isNumeric reports whether a cleaned cell looks like a number.
func isNumeric(s string) bool {
	s = strings.ReplaceAll(priceNoise.Replace(s), ",", ".")
	return numericRegex.MatchString(s)
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cellAt returns the cleaned cell at pos, or "" when the row is short or pos < 0.
func cellAt(row []string, pos int) string {
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return cleanCell(row[pos])
}
