package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"firewall", "firewal", 1},
		{"smb1_protocol", "smb_protocol", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, levenshtein(tt.b, tt.a))
		})
	}
}

func TestSuggestIDs(t *testing.T) {
	ids := []string{"firewall", "guest_account", "remote_desktop", "realtime_protection", "smb1_protocol"}

	t.Run("close match", func(t *testing.T) {
		assert.Equal(t, []string{"firewall"}, suggestIDs("firewal", ids))
	})

	t.Run("exact match excluded", func(t *testing.T) {
		assert.NotContains(t, suggestIDs("firewall", ids), "firewall")
	})

	t.Run("at most three", func(t *testing.T) {
		many := []string{"aa", "ab", "ac", "ad", "ae"}
		assert.Len(t, suggestIDs("a", many), 3)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, suggestIDs("xyzxyzxyzxyzxyz", ids))
	})
}
