package versioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentVersion(t *testing.T) {
	assert.Equal(t, "v2", CurrentVersion())
}

func TestInferVersion(t *testing.T) {
	ts := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name       string
		archivedAt *time.Time
		want       string
	}{
		{"nil timestamp falls back to default", nil, DefaultVersion},
		{"zero timestamp falls back to default", &time.Time{}, DefaultVersion},
		{"predates every release", ts(2022, time.January, 1), DefaultVersion},
		{"between v1 and v2 releases", ts(2024, time.March, 10), "v1"},
		{"exactly on v2 release date", ts(2024, time.July, 15), "v2"},
		{"after latest release", ts(2025, time.February, 2), "v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferVersion(tt.archivedAt))
		})
	}
}

func TestReleasesReturnsCopy(t *testing.T) {
	rs := Releases()
	rs[0].Tag = "mutated"
	assert.Equal(t, "v2", CurrentVersion())
}
