package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"blanks dropped", []string{"", "  "}, []string{}},
		{"order kept", []string{" fr", "en ", "fr"}, []string{"fr", "en"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, SplitList("", ","))
	assert.Equal(t, []string{"1", "2"}, SplitList("1, 2,,1", ","))
}
