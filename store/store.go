// Package store keeps the history of tracking runs in a SQLite database so
// methods can be compared across videos.
package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/julianpalladino/football-tracking/report"
	"github.com/julianpalladino/football-tracking/types"
	"github.com/julianpalladino/football-tracking/utils"
)

// DB is a run history database
type DB struct {
	*sql.DB
}

// Open opens (and creates if needed) the run history at path
func Open(path string) (*DB, error) {
	if err := utils.EnsureDir(path); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			input_path        TEXT NOT NULL,
			conditions_path   TEXT,
			output_path       TEXT,
			method            TEXT NOT NULL,
			started_at        BIGINT NOT NULL,
			finished_at       BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS object_results (
			run_id            TEXT NOT NULL,
			position          INTEGER NOT NULL,
			name              TEXT NOT NULL,
			object_id         BIGINT NOT NULL,
			successful_frames BIGINT NOT NULL,
			total_frames      BIGINT NOT NULL,
			PRIMARY KEY (run_id, position),
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}

	return &DB{db}, nil
}

// RecordRun stores a run and its per-object results
func (db *DB) RecordRun(run report.Run) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, input_path, conditions_path, output_path, method, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.ConditionsPath, run.OutputPath, run.Method,
		run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
	)
	if err != nil {
		return errors.Wrapf(err, "inserting run %s", run.ID)
	}

	for i, obj := range run.Objects {
		_, err = tx.Exec(`
			INSERT INTO object_results (run_id, position, name, object_id, successful_frames, total_frames)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, obj.Name, obj.ID, int64(obj.Successful), int64(obj.Total),
		)
		if err != nil {
			return errors.Wrapf(err, "inserting result %d of run %s", i, run.ID)
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first
func (db *DB) RecentRuns(limit int) ([]report.Run, error) {
	rows, err := db.Query(`
		SELECT run_id, input_path, COALESCE(conditions_path, ''), COALESCE(output_path, ''), method, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []report.Run
	for rows.Next() {
		var run report.Run
		var started, finished int64
		if err := rows.Scan(&run.ID, &run.InputPath, &run.ConditionsPath, &run.OutputPath, &run.Method, &started, &finished); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(0, started).UTC()
		run.FinishedAt = time.Unix(0, finished).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		objects, err := db.objectResults(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Objects = objects
	}
	return runs, nil
}

func (db *DB) objectResults(runID string) ([]types.ObjectStats, error) {
	rows, err := db.Query(`
		SELECT name, object_id, successful_frames, total_frames
		FROM object_results
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []types.ObjectStats
	for rows.Next() {
		var s types.ObjectStats
		var successful, total int64
		if err := rows.Scan(&s.Name, &s.ID, &successful, &total); err != nil {
			return nil, err
		}
		s.Successful = uint64(successful)
		s.Total = uint64(total)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
