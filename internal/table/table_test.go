package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSVTrimsCellsAndBOM(t *testing.T) {
	in := utf8BOM + "State, Rate\n AL ,455.2\nAK,  399\n"
	f, err := DecodeCSV(strings.NewReader(in), ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"State", "Rate"}, f.Header)
	want := [][]string{{"AL", "455.2"}, {"AK", "399"}}
	if diff := cmp.Diff(want, f.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCSVPadsShortRows(t *testing.T) {
	f, err := DecodeCSV(strings.NewReader("a,b,c\n1\n1,2,3\n"), ',')
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"1", "", ""}, f.Rows[0])
}

func TestDecodeCSVEmptyInput(t *testing.T) {
	f, err := DecodeCSV(strings.NewReader(""), ',')
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Header)
}

func TestReadCSVSniffsTSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rates.tsv")
	require.NoError(t, os.WriteFile(p, []byte("State\tRate\nNY\t480\n"), 0o644))
	f, err := ReadCSV(p, 0)
	require.NoError(t, err)
	assert.Equal(t, "rates.tsv", f.Name)
	assert.Equal(t, []string{"NY", "480"}, f.Rows[0])
}

func TestWriteCSVRoundTrip(t *testing.T) {
	src := New("x", []string{"State", "note"}, [][]string{{"NY", "a, b"}, {"CA", `say "hi"`}})
	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, src))

	back, err := DecodeCSV(strings.NewReader(sb.String()), ',')
	require.NoError(t, err)
	assert.Equal(t, src.Header, back.Header)
	assert.Equal(t, src.Rows, back.Rows)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"12.5%", 12.5, true},
		{"1,234", 1234, true},
		{"1,234.5", 1234.5, true},
		{"1.234,5", 1234.5, true},
		{"0,5", 0.5, true},
		{"1 234", 1234, true},
		{"1\u00A0234", 1234, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		assert.Equal(t, c.ok, ok, "ParseNumber(%q) ok", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, "ParseNumber(%q)", c.in)
		}
	}
}

func TestFloatsReportsRow(t *testing.T) {
	f := New("cancer.csv", []string{"State", "Rate"}, [][]string{{"AL", "1"}, {"AK", "oops"}})
	_, err := f.Floats("Rate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadNumber))

	var ne *NumberError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, 2, ne.Row)
	assert.Equal(t, "Rate", ne.Column)
	assert.Equal(t, "oops", ne.Value)
}

func TestMissingColumn(t *testing.T) {
	f := New("pop.csv", []string{"STATE"}, nil)
	_, err := f.Column("State")
	require.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), "pop.csv")
	assert.False(t, f.Has("State"))
}

func TestWhereCopiesRows(t *testing.T) {
	f := New("fac", []string{"State", "NPDES_FLAG"}, [][]string{
		{"NY", "Y"}, {"NY", "N"}, {"CA", "Y"}, {"TX", ""},
	})
	yes, err := f.Where("NPDES_FLAG", "Y")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NY", "Y"}, {"CA", "Y"}}, yes.Rows)

	yes.Rows[0][0] = "XX"
	assert.Equal(t, "NY", f.Rows[0][0], "filtered frame must not alias the source")
}

func TestRenameAndMapColumn(t *testing.T) {
	f := New("pop", []string{"STATE", "POP"}, [][]string{{"ohio", "1"}})
	require.NoError(t, f.MapColumn("STATE", strings.ToUpper))
	require.NoError(t, f.Rename("STATE", "State"))
	assert.Equal(t, []string{"State", "POP"}, f.Header)
	assert.Equal(t, "OHIO", f.Rows[0][0])
	assert.ErrorIs(t, f.Rename("STATE", "x"), ErrColumnNotFound)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("facilities.ods", Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFloatsOrNaNKeepsBlankCells(t *testing.T) {
	f := New("cancer.csv", []string{"State", "Rate"}, [][]string{{"NY", "480"}, {"PR", ""}, {"GU", " "}})
	got, err := f.FloatsOrNaN("Rate")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 480.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))

	_, err = f.Floats("Rate")
	assert.ErrorIs(t, err, ErrBadNumber, "Floats stays strict")

	f.Rows[1][1] = "~"
	_, err = f.FloatsOrNaN("Rate")
	var ne *NumberError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, 2, ne.Row)
}
