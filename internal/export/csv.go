package export

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
	"github.com/EricSchles/pfas-cancer-project/internal/table"
	"github.com/EricSchles/pfas-cancer-project/internal/utils"
)

// WriteCSV writes the summary as a delimited text file, replacing any
// existing file atomically.
func WriteCSV(path string, s *pipeline.Summary) error {
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, s.Frame()); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
