package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrColumnNotFound is returned when a named column is missing from a frame header.
	ErrColumnNotFound = errors.New("column not found")
	// ErrBadNumber is the sentinel wrapped by NumberError.
	ErrBadNumber = errors.New("malformed number")
)

// NumberError reports a cell that could not be parsed as a number.
// Row is 1-based and excludes the header.
type NumberError struct {
	Row    int
	Column string
	Value  string
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q as number", e.Row, e.Column, e.Value)
}

func (e *NumberError) Unwrap() error { return ErrBadNumber }

// Frame is an in-memory table of string cells with an ordered header.
// Every row has exactly len(Header) cells.
type Frame struct {
	Name   string
	Header []string
	Rows   [][]string
}

// New builds a frame, padding or truncating rows to the header width.
func New(name string, header []string, rows [][]string) *Frame {
	f := &Frame{Name: name, Header: append([]string(nil), header...)}
	for _, r := range rows {
		f.Append(r)
	}
	return f
}

// Len returns the number of data rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Append adds a row, normalizing its width to the header.
func (f *Frame) Append(row []string) {
	cp := make([]string, len(f.Header))
	copy(cp, row)
	f.Rows = append(f.Rows, cp)
}

// Index returns the position of the named column.
func (f *Frame) Index(name string) (int, error) {
	for i, h := range f.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q in %s", ErrColumnNotFound, name, f.displayName())
}

// Has reports whether the header contains name.
func (f *Frame) Has(name string) bool {
	_, err := f.Index(name)
	return err == nil
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, error) {
	idx, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Floats parses the named column as float64 values.
func (f *Frame) Floats(name string) ([]float64, error) {
	idx, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		x, ok := ParseNumber(r[idx])
		if !ok {
			return nil, &NumberError{Row: i + 1, Column: name, Value: r[idx]}
		}
		out[i] = x
	}
	return out, nil
}

// FloatsOrNaN is Floats except that blank cells become NaN instead of an
// error. Text that is present but not a number still fails.
func (f *Frame) FloatsOrNaN(name string) ([]float64, error) {
	idx, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		if strings.TrimSpace(strings.ReplaceAll(r[idx], "\u00A0", " ")) == "" {
			out[i] = math.NaN()
			continue
		}
		x, ok := ParseNumber(r[idx])
		if !ok {
			return nil, &NumberError{Row: i + 1, Column: name, Value: r[idx]}
		}
		out[i] = x
	}
	return out, nil
}

// Rename changes a column name in place.
func (f *Frame) Rename(from, to string) error {
	idx, err := f.Index(from)
	if err != nil {
		return err
	}
	f.Header[idx] = to
	return nil
}

// MapColumn replaces every cell of the named column with fn(cell).
func (f *Frame) MapColumn(name string, fn func(string) string) error {
	idx, err := f.Index(name)
	if err != nil {
		return err
	}
	for _, r := range f.Rows {
		r[idx] = fn(r[idx])
	}
	return nil
}

// Where returns a new frame holding rows whose column equals value.
// The returned frame shares no row storage with f.
func (f *Frame) Where(name, value string) (*Frame, error) {
	idx, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	out := &Frame{Name: f.Name, Header: append([]string(nil), f.Header...)}
	for _, r := range f.Rows {
		if r[idx] == value {
			out.Append(r)
		}
	}
	return out, nil
}

func (f *Frame) displayName() string {
	if f.Name == "" {
		return "table"
	}
	return f.Name
}

// ParseNumber parses a numeric cell, tolerating surrounding spaces, a trailing
// percent sign and comma or space thousands separators ("1,234.5", "1 234").
// Decimal commas are accepted when no dot is present and the comma is not
// followed by exactly three digits.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, " ", "")
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case cpos >= 0:
		if len(raw)-cpos-1 == 3 {
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.ReplaceAll(raw, ",", ".")
		}
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return x, true
}

