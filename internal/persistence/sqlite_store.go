// Package persistence stores job state and stage artifacts in SQLite so the
// pipeline survives restarts without redoing finished work.
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

	"github.com/jmorelli/video-sub-pipeline/internal/jobs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
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
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
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

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.PipelineJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, video_path, file_id, source_language, target_language, provider, status, error, output_path, created_at, updated_at
		 FROM jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.PipelineJob, 0)
	for rows.Next() {
		var item jobs.PipelineJob
		var status string
		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.DedupeKey,
			&item.Payload.VideoPath,
			&item.Payload.FileID,
			&item.Payload.SourceLanguage,
			&item.Payload.TargetLanguage,
			&item.Payload.Provider,
			&status,
			&item.Error,
			&item.OutputPath,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = jobs.Status(status)
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.PipelineJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
			id, source, dedupe_key, video_path, file_id, source_language, target_language, provider, status, error, output_path, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			video_path=excluded.video_path,
			file_id=excluded.file_id,
			source_language=excluded.source_language,
			target_language=excluded.target_language,
			provider=excluded.provider,
			status=excluded.status,
			error=excluded.error,
			output_path=excluded.output_path,
			updated_at=excluded.updated_at`,
		job.ID,
		job.Source,
		job.DedupeKey,
		job.Payload.VideoPath,
		job.Payload.FileID,
		job.Payload.SourceLanguage,
		job.Payload.TargetLanguage,
		job.Payload.Provider,
		string(job.Status),
		job.Error,
		job.OutputPath,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// RecordArtifact stores the output path of a completed stage for a job.
func (s *SQLiteStore) RecordArtifact(ctx context.Context, jobID, stage, path string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO stage_artifacts (job_id, stage, path, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(job_id, stage) DO UPDATE SET
			path=excluded.path,
			updated_at=excluded.updated_at`,
		jobID,
		stage,
		path,
		time.Now().UTC(),
	)
	return err
}

// Artifacts returns the recorded stage outputs for a job, keyed by stage.
func (s *SQLiteStore) Artifacts(ctx context.Context, jobID string) (map[string]StageArtifact, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, stage, path, updated_at
		 FROM stage_artifacts
		 WHERE job_id = ?`,
		jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make(map[string]StageArtifact)
	for rows.Next() {
		var item StageArtifact
		if err := rows.Scan(&item.JobID, &item.Stage, &item.Path, &item.UpdatedAt); err != nil {
			return nil, err
		}
		ret[item.Stage] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// DeleteJobData removes all stage artifacts for a job.
func (s *SQLiteStore) DeleteJobData(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM stage_artifacts WHERE job_id = ?`, jobID)
	return err
}
