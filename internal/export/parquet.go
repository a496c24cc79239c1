package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
	"github.com/EricSchles/pfas-cancer-project/internal/utils"
)

// SummarySchema returns the Arrow schema for a summary whose population
// column is popColumn.
func SummarySchema(popColumn string) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: pipeline.StateColumn, Type: arrow.BinaryTypes.String},
		{Name: pipeline.RateColumn, Type: arrow.PrimitiveTypes.Float64},
		{Name: pipeline.NPDESCountColumn, Type: arrow.PrimitiveTypes.Int64},
		{Name: pipeline.NoNPDESCountColumn, Type: arrow.PrimitiveTypes.Int64},
		{Name: pipeline.CountColumn, Type: arrow.PrimitiveTypes.Int64},
		{Name: popColumn, Type: arrow.PrimitiveTypes.Float64},
	}, nil)
}

// WriteParquet writes the summary as a gzip-compressed Parquet file.
func WriteParquet(path string, s *pipeline.Summary) error {
	schema := SummarySchema(s.Header()[5])

	allocator := memory.NewGoAllocator()
	b := array.NewRecordBuilder(allocator, schema)
	defer b.Release()
	for _, r := range s.Rows {
		b.Field(0).(*array.StringBuilder).Append(r.State)
		b.Field(1).(*array.Float64Builder).Append(r.Rate)
		b.Field(2).(*array.Int64Builder).Append(int64(r.NPDESCount))
		b.Field(3).(*array.Int64Builder).Append(int64(r.NoNPDESCount))
		b.Field(4).(*array.Int64Builder).Append(int64(r.Count))
		b.Field(5).(*array.Float64Builder).Append(r.Population)
	}
	record := b.NewRecord()
	defer record.Release()

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir parquet dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet: %w", err)
	}
	// The parquet writer closes out.
	w, err := pqarrow.NewFileWriter(
		schema,
		out,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Gzip)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("open parquet writer: %w", err)
	}
	if err := w.Write(record); err != nil {
		_ = w.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet: %w", err)
	}
	return nil
}
