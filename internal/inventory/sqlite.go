/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"yardview/internal/domain"
	applog "yardview/internal/log"
	"yardview/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the local snapshot database schema. Bump on breaking
// changes and extend migrate accordingly.
const schemaVersion = 1

// SQLite is a snapshot inventory stored in a local database file.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (or creates) a snapshot database, enables WAL mode, and
// ensures the meta/version tables and inventory schema exist.
func OpenSQLite(path string) (*SQLite, error) {
	l := applog.WithComponent("inventory").With(slog.String("driver", "sqlite"), slog.String("path", path))
	if path == "" {
		return nil, errors.New("inventory: database path is required")
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	s := &SQLite{db: db, log: l}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Info("snapshot database ready")
	return s, nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id         INTEGER PRIMARY KEY CHECK(id=1),
			schema     INTEGER NOT NULL,
			app        TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS containers (
			id       TEXT PRIMARY KEY,
			x        REAL NOT NULL,
			y        REAL NOT NULL,
			z        REAL NOT NULL,
			type     TEXT NOT NULL DEFAULT '20ft',
			block_id TEXT NOT NULL DEFAULT '',
			row      INTEGER NOT NULL DEFAULT 0,
			lot      INTEGER NOT NULL DEFAULT 0,
			level    INTEGER NOT NULL DEFAULT 0,
			reserved INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_containers_block ON containers(block_id);`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`,
			schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if cur > schemaVersion {
			s.log.Warn("snapshot schema is newer than this build", slog.Int("db", cur), slog.Int("app", schemaVersion))
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Entities returns the full container table keyed by id.
func (s *SQLite) Entities(ctx context.Context) (map[string]domain.Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, x, y, z, type, block_id, row, lot, level FROM containers`)
	if err != nil {
		return nil, fmt.Errorf("query containers: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warn("rows close failed", slog.Any("err", err))
		}
	}()

	out := map[string]domain.Entity{}
	for rows.Next() {
		var e domain.Entity
		var typ string
		if err := rows.Scan(&e.ID, &e.Position.X, &e.Position.Y, &e.Position.Z,
			&typ, &e.BlockID, &e.Row, &e.Lot, &e.Level); err != nil {
			return nil, fmt.Errorf("scan container: %w", err)
		}
		e.Type = domain.ContainerType(typ)
		out[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Reserved returns the ids flagged reserved.
func (s *SQLite) Reserved(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM containers WHERE reserved = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query reserved: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Replace swaps the whole snapshot in one transaction.
func (s *SQLite) Replace(ctx context.Context, entities map[string]domain.Entity, reserved []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM containers`); err != nil {
		return fmt.Errorf("clear containers: %w", err)
	}
	res := make(map[string]struct{}, len(reserved))
	for _, id := range reserved {
		res[id] = struct{}{}
	}
	for _, e := range entities {
		flag := 0
		if _, ok := res[e.ID]; ok {
			flag = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO containers (id, x, y, z, type, block_id, row, lot, level, reserved)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Position.X, e.Position.Y, e.Position.Z,
			string(e.Type), e.BlockID, e.Row, e.Lot, e.Level, flag); err != nil {
			return fmt.Errorf("insert container %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info("snapshot replaced", slog.Int("containers", len(entities)), slog.Int("reserved", len(reserved)))
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
