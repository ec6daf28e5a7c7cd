package photo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trims whitespace", []string{" beach ", "\tsunset"}, []string{"beach", "sunset"}},
		{"drops empties", []string{"beach", "", "   "}, []string{"beach"}},
		{"collapses duplicates keeping first-seen order", []string{"sunset", "sunset", "Beach"}, []string{"sunset", "Beach"}},
		{"case-sensitive names stay distinct", []string{"Beach", "beach"}, []string{"Beach", "beach"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTags(tt.in))
		})
	}
}
