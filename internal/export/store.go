package export

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/EricSchles/pfas-cancer-project/internal/model"
	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationTable = "schema_migrations"

// ErrRunNotFound is returned when a run id has no stored summary.
var ErrRunNotFound = errors.New("run not found")

// Store persists pipeline runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// RunInfo is a stored run header.
type RunInfo struct {
	ID               string
	CreatedAt        time.Time
	PopulationColumn string
	Rows             int
	Unmapped         []string
	MAE              sql.NullFloat64
}

// OpenStore opens (creating if needed) a SQLite store at path and applies migrations.
func OpenStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &Store{sqlDB: sqlDB}
	if err := applyMigrations(sqlDB, migrationFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun stores a run header and its summary rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, id string, createdAt time.Time, sum *pipeline.Summary, unmapped []string) error {
	if unmapped == nil {
		unmapped = []string{}
	}
	names, err := json.Marshal(unmapped)
	if err != nil {
		return fmt.Errorf("marshal unmapped states: %w", err)
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, population_column, row_count, unmapped_states) VALUES (?, ?, ?, ?, ?)`,
		id, createdAt.UTC().UnixMilli(), sum.Header()[5], len(sum.Rows), string(names),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO state_summaries
		(run_id, position, state, rate, npdes_count, no_npdes_count, facility_count, population)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare summary insert: %w", err)
	}
	defer stmt.Close()
	for i, r := range sum.Rows {
		if _, err := stmt.ExecContext(ctx, id, i, r.State, r.Rate, r.NPDESCount, r.NoNPDESCount, r.Count, r.Population); err != nil {
			return fmt.Errorf("insert summary row %s: %w", r.State, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// SaveFit stores the in-sample fit figures and importances for a run.
func (s *Store) SaveFit(ctx context.Context, runID string, res *model.Result) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := res.Model.Params
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_fits (run_id, mae, mse, estimators, learning_rate) VALUES (?, ?, ?, ?, ?)`,
		runID, res.MAE, res.MSE, p.Estimators, p.LearningRate,
	); err != nil {
		return fmt.Errorf("insert fit: %w", err)
	}
	features := make([]string, 0, len(res.Importances))
	for f := range res.Importances {
		features = append(features, f)
	}
	sort.Strings(features)
	for _, f := range features {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_importances (run_id, feature, importance) VALUES (?, ?, ?)`,
			runID, f, res.Importances[f],
		); err != nil {
			return fmt.Errorf("insert importance %s: %w", f, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fit: %w", err)
	}
	return nil
}

// LoadSummary reads back the summary stored for a run, in original row order.
func (s *Store) LoadSummary(ctx context.Context, runID string) (*pipeline.Summary, error) {
	var popCol string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT population_column FROM runs WHERE id = ?`, runID).Scan(&popCol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("query run: %w", err)
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT state, rate, npdes_count, no_npdes_count, facility_count, population
		FROM state_summaries WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()
	sum := &pipeline.Summary{PopulationColumn: popCol}
	for rows.Next() {
		var r pipeline.Row
		if err := rows.Scan(&r.State, &r.Rate, &r.NPDESCount, &r.NoNPDESCount, &r.Count, &r.Population); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.Rows = append(sum.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return sum, nil
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT r.id, r.created_at, r.population_column, r.row_count, r.unmapped_states, f.mae
		FROM runs r LEFT JOIN run_fits f ON f.run_id = r.id
		ORDER BY r.created_at DESC, r.id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []RunInfo
	for rows.Next() {
		var (
			info     RunInfo
			created  int64
			unmapped string
		)
		if err := rows.Scan(&info.ID, &created, &info.PopulationColumn, &info.Rows, &unmapped, &info.MAE); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		info.CreatedAt = time.UnixMilli(created).UTC()
		if err := json.Unmarshal([]byte(unmapped), &info.Unmapped); err != nil {
			return nil, fmt.Errorf("unmarshal unmapped states: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// applyMigrations executes each embedded .sql file at most once, in name order.
func applyMigrations(sqlDB *sql.DB, migrations fs.FS, root string) error {
	entries, err := fs.ReadDir(migrations, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var found int
		err := sqlDB.QueryRow(`SELECT 1 FROM `+migrationTable+` WHERE name = ?`, file).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		content, err := fs.ReadFile(migrations, root+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		up := extractUpMigration(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}
		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`, file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// extractUpMigration returns the SQL between "-- +migrate Up" and "-- +migrate Down".
func extractUpMigration(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	i := strings.Index(content, up)
	if i == -1 {
		return content
	}
	rest := content[i+len(up):]
	if j := strings.Index(rest, down); j != -1 {
		return rest[:j]
	}
	return rest
}
