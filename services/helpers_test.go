package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodScoreTotal(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name string
		raw  *string
		want int
	}{
		{"json array", strPtr("[2,1]"), 3},
		{"comma separated", strPtr("2,1"), 3},
		{"single legacy number", strPtr("2"), 2},
		{"nil", nil, 0},
		{"empty string", strPtr(""), 0},
		{"whitespace only", strPtr("   "), 0},
		{"malformed json array", strPtr("[2,"), 0},
		{"json array with junk element", strPtr(`[2,"x",1]`), 0},
		{"csv with junk element skips it", strPtr("2,x,1"), 3},
		{"csv with spaces", strPtr(" 3 , 4 "), 7},
		{"negative periods", strPtr("[1,-1]"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodScoreTotal(tt.raw))
		})
	}
}
