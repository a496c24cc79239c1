package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const utf8BOM = "\uFEFF"

// ReadCSV loads a delimited text file into a Frame. If delim is 0 it is
// chosen from the file extension (tab for .tsv, comma otherwise).
func ReadCSV(path string, delim rune) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	frame, err := DecodeCSV(f, delim)
	if err != nil {
		return nil, err
	}
	frame.Name = filepath.Base(path)
	return frame, nil
}

// DecodeCSV reads a header row followed by data rows from r.
func DecodeCSV(r io.Reader, delim rune) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if delim != 0 {
		cr.Comma = delim
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Frame{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cleaned := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		cleaned[i] = strings.TrimSpace(h)
	}
	frame := &Frame{Header: cleaned}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", frame.Len()+1, err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		frame.Append(rec)
	}
	return frame, nil
}

// WriteCSV encodes the frame, header first, to w.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range f.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
