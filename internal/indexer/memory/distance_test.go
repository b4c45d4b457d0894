package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b           string
		transpositions bool
		max            int
		want           int
	}{
		{"hope", "hope", true, 1, 0},
		{"hope", "hopes", true, 1, 1},
		{"hope", "rope", true, 1, 1},
		{"hpoe", "hope", true, 1, 1},
		{"hpoe", "hope", false, 2, 2},
		{"hpoe", "hope", false, 1, 2},
		{"xyz123", "hope", true, 1, 2},
		{"", "a", true, 1, 1},
		{"крови", "кровь", true, 1, 1},
		{"ca", "abc", true, 3, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, editDistance(tt.a, tt.b, tt.transpositions, tt.max), "%s vs %s", tt.a, tt.b)
	}
}
