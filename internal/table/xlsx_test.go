package table

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorkbook = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>
<sheet name="Notes" sheetId="1" r:id="rId1"/>
<sheet name="Data" sheetId="2" r:id="rId2"/>
</sheets>
</workbook>`

const testRels = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`

const testShared = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>State</t></si>
<si><t>NPDES_FLAG</t></si>
<si><r><t>New </t></r><r><t>York</t></r><rPh><t>ignored</t></rPh></si>
<si><t>Y</t></si>
</sst>`

const testNotes = `<worksheet><sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>readme</t></is></c></row></sheetData></worksheet>`

const testData = `<worksheet><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><t>Name</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t> NY </t></is></c><c r="B2" t="s"><v>3</v></c><c r="C2" t="s"><v>2</v></c></row>
<row r="3"><c r="A3" t="inlineStr"><is><t>CA</t></is></c><c r="C3"><v>7</v></c></row>
<row r="4"><c t="inlineStr"><is><t>TX</t></is></c><c t="inlineStr"><is><t>N</t></is></c></row>
</sheetData></worksheet>`

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"xl/workbook.xml":            testWorkbook,
		"xl/_rels/workbook.xml.rels": testRels,
		"xl/sharedStrings.xml":       testShared,
		"xl/worksheets/sheet1.xml":   testNotes,
		"xl/worksheets/sheet2.xml":   testData,
	}
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeXLSXByName(t *testing.T) {
	f, err := DecodeXLSX(buildWorkbook(t), "data", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"State", "NPDES_FLAG", "Name"}, f.Header)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"NY", "Y", "New York"}, f.Rows[0])
	assert.Equal(t, []string{"CA", "", "7"}, f.Rows[1], "gaps are filled from cell references")
	assert.Equal(t, []string{"TX", "N", ""}, f.Rows[2], "cells without references follow the previous cell")
}

func TestDecodeXLSXDefaultsToFirstSheet(t *testing.T) {
	f, err := DecodeXLSX(buildWorkbook(t), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"readme"}, f.Header)
	assert.Equal(t, 0, f.Len())
}

func TestDecodeXLSXUnknownSheet(t *testing.T) {
	_, err := DecodeXLSX(buildWorkbook(t), "Facilities", 0)
	require.ErrorIs(t, err, ErrSheetNotFound)
	assert.Contains(t, err.Error(), "Notes, Data")
}

func TestOpenXLSXThroughRegistry(t *testing.T) {
	p := filepath.Join(t.TempDir(), "facilities.xlsx")
	require.NoError(t, os.WriteFile(p, buildWorkbook(t), 0o644))

	f, err := Open(p, Options{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, "facilities.xlsx", f.Name)
	assert.Equal(t, 3, f.Len())
}

func TestColIndexFromRef(t *testing.T) {
	assert.Equal(t, 0, colIndexFromRef("A1"))
	assert.Equal(t, 25, colIndexFromRef("Z9"))
	assert.Equal(t, 26, colIndexFromRef("AA10"))
	assert.Equal(t, 27, colIndexFromRef("ab3"))
}
