package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Acme Gym", "acme gym"},
		{"strips diacritics", "Café Olé", "cafe ole"},
		{"drops punctuation", "Joe's Gym & Fitness!", "joes gym fitness"},
		{"collapses whitespace", "  Acme\t Gym  ", "acme gym"},
		{"keeps digits", "Gym 24/7", "gym 247"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNameMatches(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "Acme Gym", "Acme Gym", true},
		{"case and punctuation", "ACME gym!", "acme Gym", true},
		{"containment", "Acme Gym Manama", "Acme Gym", true},
		{"reverse containment", "Acme Gym", "Acme Gym Manama", true},
		{"different", "Acme Gym", "Power Fitness", false},
		{"empty left", "", "Acme Gym", false},
		{"empty right", "Acme Gym", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameMatches(tt.a, tt.b))
		})
	}
}
