package table

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrSheetNotFound is returned when a requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ReadXLSX loads one worksheet of a .xlsx workbook into a Frame. The first
// row is the header. If sheetName is empty the sheet is chosen by its
// 1-based sheetIndex (values <= 0 mean the first sheet).
func ReadXLSX(p string, sheetName string, sheetIndex int) (*Frame, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	frame, err := DecodeXLSX(b, sheetName, sheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	frame.Name = filepath.Base(p)
	return frame, nil
}

// DecodeXLSX is ReadXLSX over an in-memory workbook.
func DecodeXLSX(data []byte, sheetName string, sheetIndex int) (*Frame, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))
	shared := parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml"))

	target, err := resolveSheet(sheets, rels, sheetName, sheetIndex)
	if err != nil {
		return nil, err
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, fmt.Errorf("%w: missing part %s", ErrSheetNotFound, target)
	}
	rr := newSheetRowReader(sheetXML, shared)
	header, ok := rr.Next()
	if !ok {
		return &Frame{}, nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	frame := &Frame{Header: header}
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		frame.Append(row)
	}
	return frame, nil
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

func resolveSheet(sheets []wbSheet, rels map[string]string, sheetName string, sheetIndex int) (string, error) {
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, sheetName) {
				if rel, ok := rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		names := make([]string, len(sheets))
		for i, s := range sheets {
			names[i] = s.Name
		}
		return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheetName, strings.Join(names, ", "))
	}
	idx := sheetIndex
	if idx <= 0 {
		idx = 1
	}
	for _, s := range sheets {
		if s.SheetID == idx {
			if rel, ok := rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", idx)), nil
}

func parseWorkbook(data []byte) []wbSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []wbSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID = atoiSafe(a.Value)
			case "id":
				s.RID = a.Value
			}
		}
		sheets = append(sheets, s)
	}
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil
		}
		return b
	}
	return nil
}

// parseSharedStrings concatenates every <t> run inside each <si>, skipping
// phonetic hints.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT, inPhonetic bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			case "rPh":
				inPhonetic = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "rPh":
				inPhonetic = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT && !inPhonetic {
				buf.Write(se)
			}
		}
	}
}

type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the next <row> as a dense slice. Cells without an r attribute
// are placed after the previous cell.
func (r *sheetRowReader) Next() ([]string, bool) {
	var row []string
	inRow := false
	next := 0
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if inRow {
				return row, true
			}
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				inRow = true
				row = nil
				next = 0
				continue
			}
			if !inRow || se.Name.Local != "c" {
				continue
			}
			var ref, typ string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "r":
					ref = a.Value
				case "t":
					typ = a.Value
				}
			}
			col := next
			if ref != "" {
				col = colIndexFromRef(ref)
			}
			next = col + 1
			val := r.readCellValue(typ)
			if len(row) <= col {
				grown := make([]string, col+1)
				copy(grown, row)
				row = grown
			}
			row[col] = val
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

func (r *sheetRowReader) readCellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && ed.Name.Local == se.Name.Local {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				val += sb.String()
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx := atoiSafe(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			}
			return val
		}
	}
}

// colIndexFromRef maps a cell reference like "C12" to its 0-based column.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship targets to zip entry names.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
