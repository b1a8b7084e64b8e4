package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	StatusSuccess RunStatus = "success"
	StatusFailed  RunStatus = "failed"
	StatusAborted RunStatus = "aborted"
)

// Run is one translation run recorded in the journal.
type Run struct {
	ID          string
	Kind        string
	InputPath   string
	ProjectFile string
	Mode        string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	FinishedAt  sql.NullTime
}

// SceneCheckpoint records that a scene's translation was saved durably.
type SceneCheckpoint struct {
	RunID       string
	SceneNumber int
	LineCount   int
	RecordedAt  time.Time
}

// Journal is a sqlite-backed record of runs and their scene checkpoints. It
// is observability for resumable runs, never load-bearing for the project
// file protocol.
type Journal struct {
	db *sql.DB
}

func NewJournal(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	journal := &Journal{db: db}
	if err := journal.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) init(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, k int) bool {
		return entries[i].Name() < entries[k].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := j.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := j.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// StartRun records a new run and returns its id.
func (j *Journal) StartRun(ctx context.Context, kind, inputPath, projectFile, mode string) (string, error) {
	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, input_path, project_file, mode, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, kind, inputPath, projectFile, mode, string(StatusRunning), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("record run start: %w", err)
	}
	return id, nil
}

// FinishRun marks a run as finished with the given status.
func (j *Journal) FinishRun(ctx context.Context, id string, status RunStatus, errMsg string) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// RecordSceneCheckpoint records that a scene's translated output was saved.
func (j *Journal) RecordSceneCheckpoint(ctx context.Context, runID string, sceneNumber, lineCount int) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO scene_checkpoints (run_id, scene_number, line_count, recorded_at)
		 VALUES (?, ?, ?, ?)`,
		runID, sceneNumber, lineCount, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record scene checkpoint: %w", err)
	}
	return nil
}

// LoadRuns returns all recorded runs, oldest first.
func (j *Journal) LoadRuns(ctx context.Context) ([]*Run, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, input_path, project_file, mode, status, COALESCE(error, ''), started_at, finished_at
		 FROM runs
		 ORDER BY started_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*Run, 0)
	for rows.Next() {
		run := &Run{}
		var status string
		if err := rows.Scan(&run.ID, &run.Kind, &run.InputPath, &run.ProjectFile, &run.Mode,
			&status, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Status = RunStatus(status)
		ret = append(ret, run)
	}
	return ret, rows.Err()
}

// LoadSceneCheckpoints returns the scene checkpoints of a run in order.
func (j *Journal) LoadSceneCheckpoints(ctx context.Context, runID string) ([]*SceneCheckpoint, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, scene_number, line_count, recorded_at
		 FROM scene_checkpoints
		 WHERE run_id = ?
		 ORDER BY recorded_at ASC, scene_number ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*SceneCheckpoint, 0)
	for rows.Next() {
		cp := &SceneCheckpoint{}
		if err := rows.Scan(&cp.RunID, &cp.SceneNumber, &cp.LineCount, &cp.RecordedAt); err != nil {
			return nil, err
		}
		ret = append(ret, cp)
	}
	return ret, rows.Err()
}
