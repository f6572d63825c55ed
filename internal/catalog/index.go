// Package catalog builds the in-memory lookup structures a matching run
// consults: exact barcode and article indices plus the name corpus.
//
// An Index is built from one catalog snapshot and is read-only afterwards,
// so it can be shared by concurrent matching workers.
package catalog

import (
	"github.com/JonMunkholm/pricematch/internal/domain"
)

// Index is an immutable view over a catalog snapshot.
type Index struct {
	entries   []domain.MasterEntry
	byBarcode map[string]int
	byArticle map[string]int
}

// Build indexes entries in the given order. When two entries share a barcode
// (or an article) the later one wins. Empty keys are not indexed.
func Build(entries []domain.MasterEntry) *Index {
	idx := &Index{
		entries:   make([]domain.MasterEntry, len(entries)),
		byBarcode: make(map[string]int, len(entries)),
		byArticle: make(map[string]int, len(entries)),
	}
	copy(idx.entries, entries)

	for i, e := range idx.entries {
		if e.Barcode != "" {
			idx.byBarcode[e.Barcode] = i
		}
		if e.Article != "" {
			idx.byArticle[e.Article] = i
		}
	}
	return idx
}

// LookupByBarcode returns the entry whose barcode equals key exactly.
func (x *Index) LookupByBarcode(key string) (domain.MasterEntry, bool) {
	return x.lookup(x.byBarcode, key)
}

// LookupByArticle returns the entry whose article equals key exactly.
func (x *Index) LookupByArticle(key string) (domain.MasterEntry, bool) {
	return x.lookup(x.byArticle, key)
}

func (x *Index) lookup(m map[string]int, key string) (domain.MasterEntry, bool) {
	if key == "" {
		return domain.MasterEntry{}, false
	}
	i, ok := m[key]
	if !ok {
		return domain.MasterEntry{}, false
	}
	return x.entries[i], true
}

// AllNames returns entry ID -> name for every entry.
func (x *Index) AllNames() map[int64]string {
	names := make(map[int64]string, len(x.entries))
	for _, e := range x.entries {
		names[e.ID] = e.Name
	}
	return names
}

// Entries returns the entries in catalog order. Callers must not modify the
// returned slice.
func (x *Index) Entries() []domain.MasterEntry {
	return x.entries
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.entries)
}
