package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported indicates no registered reader handles a file extension.
var ErrUnsupported = errors.New("unsupported table format")

// Options selects how a file is decoded. Fields irrelevant to a format are ignored.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the extension.
	Delimiter rune
	// SheetName selects an XLSX worksheet; SheetIndex (1-based) is used when empty.
	SheetName  string
	SheetIndex int
}

// Reader decodes one on-disk tabular format.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*Frame, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// Open selects a reader by file name and loads the table.
func Open(path string, opt Options) (*Frame, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvReader) Read(path string, opt Options) (*Frame, error) {
	return ReadCSV(path, opt.Delimiter)
}

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

func (xlsxReader) Read(path string, opt Options) (*Frame, error) {
	return ReadXLSX(path, opt.SheetName, opt.SheetIndex)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
