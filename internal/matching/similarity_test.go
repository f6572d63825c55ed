package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Беспроводные наушники Sony WH-1000XM5", []string{"беспроводные", "наушники", "sony", "wh", "1000xm5"}},
		{"MacBook Air 13 M2 8/256", []string{"macbook", "air", "13", "m2", "8", "256"}},
		{"  Станция Макс (с Zigbee) ", []string{"станция", "макс", "с", "zigbee"}},
		{"---", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 100},
		{"abc", "", 0},
		{"sony", "sony", 100},
		{"kitten", "sitting", 57},
		{"ёлка", "елка", 75},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
			assert.Equal(t, tt.want, Ratio(tt.b, tt.a), "ratio must be symmetric")
		})
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		want    int
		atLeast int
		below   int
	}{
		{name: "reordered tokens", a: "Sony PlayStation 5", b: "PlayStation 5 Sony", want: 100},
		{name: "case insensitive", a: "SONY PLAYSTATION", b: "sony playstation", want: 100},
		{name: "repeated tokens ignored", a: "lg lg oled", b: "oled lg", want: 100},
		{name: "subset scores full", a: "Samsung Galaxy", b: "Смартфон Samsung Galaxy S23 Ultra", want: 100},
		{name: "empty side", a: "", b: "Sony", want: 0},
		{name: "punctuation only", a: "--- / ---", b: "Sony", want: 0},
		{
			name:    "hyphenated model number",
			a:       "Наушники Sony WH1000XM5 беспроводные",
			b:       "Беспроводные наушники Sony WH-1000XM5",
			want:    86,
		},
		{
			name:  "different products",
			a:     "Кофемашина Philips",
			b:     "Кофемашина DeLonghi Magnifica",
			below: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenSetRatio(tt.a, tt.b)
			switch {
			case tt.below > 0:
				assert.Less(t, got, tt.below)
			case tt.atLeast > 0:
				assert.GreaterOrEqual(t, got, tt.atLeast)
			default:
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, got, TokenSetRatio(tt.b, tt.a), "score must be symmetric")
		})
	}
}
