package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
)

// Target is a semantic field extracted from supplier files.
type Target string

const (
	TargetName    Target = "name"
	TargetBarcode Target = "barcode"
	TargetArticle Target = "article"
	TargetPrice   Target = "price"
	TargetCode    Target = "code"
)

// supplierTargets is the order in which supplier file headers are assigned.
var supplierTargets = []Target{TargetName, TargetBarcode, TargetArticle, TargetPrice}

// catalogTargets puts code ahead of article so "Код1С" is not taken as an
// article column through "код".
var catalogTargets = []Target{TargetName, TargetBarcode, TargetCode, TargetArticle}

// Synonyms maps each target to header substrings that identify it.
// Matching is case-insensitive containment: a header "Цена, руб." matches "цена".
type Synonyms map[Target][]string

// DefaultSynonyms returns the built-in Russian/English header vocabulary.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		TargetName:    {"наименование", "название", "товар", "name", "item", "номенклатура"},
		TargetBarcode: {"штрихкод", "barcode", "штрих-код", "ean", "штрих код"},
		TargetArticle: {"артикул", "article", "код", "sku"},
		TargetPrice:   {"цена", "price", "стоимость"},
		TargetCode:    {"код1с", "код 1с", "code_1c", "code1c", "code"},
	}
}

// LoadSynonyms reads a YAML synonym table:
//
//	name: [наименование, товар]
//	barcode: [штрихкод, ean]
//	article: [артикул, sku]
//	price: [цена, price]
//
// Targets missing from the file keep their default lists.
func LoadSynonyms(path string) (Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}
	return ParseSynonyms(data)
}

// ParseSynonyms decodes a YAML synonym table, merged over the defaults.
func ParseSynonyms(data []byte) (Synonyms, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}

	syn := DefaultSynonyms()
	for key, words := range raw {
		target := Target(strings.ToLower(strings.TrimSpace(key)))
		if _, known := syn[target]; !known {
			return nil, fmt.Errorf("parse synonyms: unknown target %q", key)
		}
		cleaned := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.TrimSpace(w); w != "" {
				cleaned = append(cleaned, w)
			}
		}
		if len(cleaned) > 0 {
			syn[target] = cleaned
		}
	}
	return syn, nil
}

// columnMap holds the header position chosen for each target (-1 if absent).
type columnMap map[Target]int

func (m columnMap) pos(t Target) int {
	if p, ok := m[t]; ok {
		return p
	}
	return -1
}

// mapColumns assigns header positions to targets. The first header containing
// any synonym of a target wins; a header claimed by an earlier target is not
// reused, so "Штрихкод" cannot also become the article column through "код".
// Without a name header the first text-typed column is used; if there is none
// the file is rejected.
func (s Synonyms) mapColumns(order []Target, header []string, rows [][]string) (columnMap, error) {
	fold := cases.Fold()
	labels := make([]string, len(header))
	for i, h := range header {
		labels[i] = fold.String(cleanCell(h))
	}

	mapping := make(columnMap, len(order))
	claimed := make(map[int]bool, len(order))
	for _, target := range order {
		words := make([]string, len(s[target]))
		for i, w := range s[target] {
			words[i] = fold.String(w)
		}
		for i, label := range labels {
			if !claimed[i] && containsAny(label, words) {
				mapping[target] = i
				claimed[i] = true
				break
			}
		}
	}

	if _, ok := mapping[TargetName]; !ok {
		pos := firstTextColumn(len(header), rows)
		if pos < 0 {
			return nil, fmt.Errorf("no name column")
		}
		mapping[TargetName] = pos
	}

	return mapping, nil
}

func containsAny(label string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(label, w) {
			return true
		}
	}
	return false
}

// firstTextColumn returns the first column holding at least one non-numeric
// value, or -1.
func firstTextColumn(width int, rows [][]string) int {
	for col := 0; col < width; col++ {
		for _, row := range rows {
			v := cellAt(row, col)
			if v != "" && !isNumeric(v) {
				return col
			}
		}
	}
	return -1
}
