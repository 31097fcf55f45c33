package estimate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAwardYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-27", "2026-27", true},
		{" 2026–27 ", "2026-27", true}, // en dash
		{"2026—27", "2026-27", true},   // em dash
		{"2026/27", "", false},
		{"2026-2027", "", false},
		{"26-27", "", false},
		{"abcd-ef", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeAwardYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTable_MergesOverDefaults(t *testing.T) {
	table, err := ParseTable([]byte(`
award_years:
  "2027–28":
    max_grant: 7500
    min_grant: 750
  "2026-27":
    max_grant: 7400
    min_grant: 740
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-26", "2026-27", "2027-28"}, table.Years())
	assert.Equal(t, YearConfig{MaxGrant: 7500, MinGrant: 750}, table["2027-28"])
	assert.Equal(t, 7400, table["2026-27"].MaxGrant)
}

func TestParseTable_Rejects(t *testing.T) {
	_, err := ParseTable([]byte("award_years:\n  next-year:\n    max_grant: 1\n"))
	assert.ErrorContains(t, err, "invalid award year")

	_, err = ParseTable([]byte("award_years:\n  \"2027-28\":\n    max_grant: 100\n    min_grant: 200\n"))
	assert.ErrorContains(t, err, "min_grant")

	_, err = ParseTable([]byte("award_years: [1, 2"))
	assert.Error(t, err)
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), table)

	path := filepath.Join(t.TempDir(), "years.yaml")
	require.NoError(t, os.WriteFile(path, []byte("award_years:\n  \"2028-29\": {max_grant: 8000, min_grant: 800}\n"), 0o644))
	table, err = LoadTable(path)
	require.NoError(t, err)
	assert.Contains(t, table, "2028-29")

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
