package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricSchles/pfas-cancer-project/internal/table"
)

func TestAbbreviationTable(t *testing.T) {
	tbl := Abbreviations()
	assert.Len(t, tbl, 57)

	seen := map[string]string{}
	for name, code := range tbl {
		require.Len(t, code, 2, "code for %s", name)
		assert.Regexp(t, `^[A-Z]{2}$`, code)
		if prev, dup := seen[code]; dup {
			t.Fatalf("code %s used by both %s and %s", code, prev, name)
		}
		seen[code] = name
	}
}

func TestAbbreviationsReturnsCopy(t *testing.T) {
	tbl := Abbreviations()
	tbl["New York"] = "XX"
	code, ok := Lookup("New York")
	require.True(t, ok)
	assert.Equal(t, "NY", code)
}

func TestLookup(t *testing.T) {
	for name, want := range map[string]string{
		"Alabama":              "AL",
		"District of Columbia": "DC",
		"Puerto Rico":          "PR",
		"U.S. Virgin Islands":  "VI",
		"  Texas ":             "TX",
	} {
		got, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := Lookup("new york")
	assert.False(t, ok, "matching is case sensitive")
	_, ok = Lookup("United States")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	f := table.New("pop.csv", []string{"STATE", "POPESTIMATE2019"}, [][]string{
		{"New York", "19453561"},
		{"United States", "328239523"},
		{"Ohio", "11689100"},
		{"United States", "1"},
	})
	unmapped, err := Normalize(f)
	require.NoError(t, err)

	assert.Equal(t, []string{"State", "POPESTIMATE2019"}, f.Header)
	col, err := f.Column("State")
	require.NoError(t, err)
	assert.Equal(t, []string{"NY", "", "OH", ""}, col)
	assert.Equal(t, []string{"United States"}, unmapped)
}

func TestNormalizeMissingColumn(t *testing.T) {
	f := table.New("pop.csv", []string{"NAME"}, nil)
	_, err := Normalize(f)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestNormalizeIgnoresBlankNames(t *testing.T) {
	f := table.New("pop.csv", []string{"STATE", "POPESTIMATE2019"}, [][]string{
		{"Ohio", "1"},
		{"", "2"},
		{"  ", "3"},
	})
	unmapped, err := Normalize(f)
	require.NoError(t, err)
	assert.Empty(t, unmapped)

	col, err := f.Column("State")
	require.NoError(t, err)
	assert.Equal(t, []string{"OH", "", ""}, col)
}
