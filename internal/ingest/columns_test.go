package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		rows   [][]string
		want   map[Target]int
	}{
		{
			name:   "russian headers",
			header: []string{"Штрихкод", "Артикул", "Наименование", "Цена"},
			want:   map[Target]int{TargetName: 2, TargetBarcode: 0, TargetArticle: 1, TargetPrice: 3},
		},
		{
			name:   "english mixed case",
			header: []string{"Item Name", "EAN", "SKU", "Unit PRICE"},
			want:   map[Target]int{TargetName: 0, TargetBarcode: 1, TargetArticle: 2, TargetPrice: 3},
		},
		{
			name:   "barcode column not reused as article",
			header: []string{"Номенклатура", "Штрихкод", "Цена"},
			want:   map[Target]int{TargetName: 0, TargetBarcode: 1, TargetArticle: -1, TargetPrice: 2},
		},
		{
			name:   "first matching header wins",
			header: []string{"Наименование", "Название", "Цена опт", "Цена розн"},
			want:   map[Target]int{TargetName: 0, TargetBarcode: -1, TargetArticle: -1, TargetPrice: 2},
		},
		{
			name:   "name falls back to first text column",
			header: []string{"A", "B"},
			rows:   [][]string{{"1", ""}, {"2", "Лампа"}},
			want:   map[Target]int{TargetName: 1, TargetBarcode: -1, TargetArticle: -1, TargetPrice: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultSynonyms().mapColumns(supplierTargets, tt.header, tt.rows)
			require.NoError(t, err)
			for target, pos := range tt.want {
				assert.Equal(t, pos, got.pos(target), "target %s", target)
			}
		})
	}
}

func TestMapColumnsNoName(t *testing.T) {
	_, err := DefaultSynonyms().mapColumns(supplierTargets, []string{"A", "B"}, [][]string{{"1", "2,5"}})
	require.Error(t, err)
}

func TestParseSynonyms(t *testing.T) {
	t.Run("merges over defaults", func(t *testing.T) {
		syn, err := ParseSynonyms([]byte("Name:\n  - продукт\n  - ' позиция '\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"продукт", "позиция"}, syn[TargetName])
		assert.Equal(t, DefaultSynonyms()[TargetBarcode], syn[TargetBarcode])
	})

	t.Run("empty list keeps defaults", func(t *testing.T) {
		syn, err := ParseSynonyms([]byte("price: []\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultSynonyms()[TargetPrice], syn[TargetPrice])
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := ParseSynonyms([]byte("colour: [цвет]\n"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseSynonyms([]byte("name: [unterminated\n"))
		require.Error(t, err)
	})
}

func TestLoadSynonyms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("article: [код поставщика]\n"), 0o600))

	syn, err := LoadSynonyms(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"код поставщика"}, syn[TargetArticle])

	_, err = LoadSynonyms(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
