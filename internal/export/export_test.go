package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricSchles/pfas-cancer-project/internal/model"
	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
)

func testSummary() *pipeline.Summary {
	return &pipeline.Summary{
		PopulationColumn: pipeline.DefaultPopulationColumn,
		Rows: []pipeline.Row{
			{State: "NY", Rate: 93377.0928, NPDESCount: 2, NoNPDESCount: 1, Count: 3, Population: 194.53561},
			{State: "CA", Rate: 158048.892, NPDESCount: 5, NoNPDESCount: 7, Count: 12, Population: 395.12223},
		},
	}
}

func TestWriteCSVCreatesDirectory(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out", "summary.csv")
	require.NoError(t, WriteCSV(p, testSummary()))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	want := "State,Rate,npdes_count,no_npdes_count,count,POPESTIMATE2019\n" +
		"NY,93377.0928,2,1,3,194.53561\n" +
		"CA,158048.892,5,7,12,395.12223\n"
	assert.Equal(t, want, string(b))
}

func TestWriteParquet(t *testing.T) {
	p := filepath.Join(t.TempDir(), "summary.parquet")
	require.NoError(t, WriteParquet(p, testSummary()))

	rdr, err := file.OpenParquetFile(p, false)
	require.NoError(t, err)
	defer rdr.Close()

	assert.EqualValues(t, 2, rdr.NumRows())
	sc := rdr.MetaData().Schema
	require.Equal(t, 6, sc.NumColumns())
	var names []string
	for i := 0; i < sc.NumColumns(); i++ {
		names = append(names, sc.Column(i).Name())
	}
	assert.Equal(t, testSummary().Header(), names)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	sum := testSummary()
	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, "run-1", first, sum, []string{"United States"}))
	require.NoError(t, store.SaveRun(ctx, "run-2", first.Add(time.Hour), &pipeline.Summary{}, nil))

	got, err := store.LoadSummary(ctx, "run-1")
	require.NoError(t, err)
	if diff := cmp.Diff(sum, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 2, runs[1].Rows)
	assert.Equal(t, []string{"United States"}, runs[1].Unmapped)
	assert.Empty(t, runs[0].Unmapped)
	assert.True(t, runs[1].CreatedAt.Equal(first))
	assert.False(t, runs[1].MAE.Valid)
}

func TestStoreSaveFit(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	sum := testSummary()
	require.NoError(t, store.SaveRun(ctx, "r", time.Now(), sum, nil))
	p := model.DefaultParams()
	p.Estimators = 10
	p.LearningRate = 0.1
	res, err := model.FitSummary(sum, p)
	require.NoError(t, err)
	require.NoError(t, store.SaveFit(ctx, "r", res))
	require.NoError(t, store.SaveFit(ctx, "r", res), "saving a fit twice replaces it")

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.True(t, runs[0].MAE.Valid)
	assert.InDelta(t, res.MAE, runs[0].MAE.Float64, 1e-9)
}

func TestStoreUnknownRun(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	_, err = store.LoadSummary(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s1, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveRun(context.Background(), "keep", time.Now(), testSummary(), nil))
	require.NoError(t, s1.Close())

	s2, err := OpenStore(path)
	require.NoError(t, err)
	defer s2.Close()
	runs, err := s2.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpenStoreRequiresPath(t *testing.T) {
	_, err := OpenStore("  ")
	assert.Error(t, err)
}

func TestExtractUpMigration(t *testing.T) {
	sql := "-- +migrate Up\nCREATE TABLE a (x INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (x INTEGER);\n", extractUpMigration(sql))
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}
