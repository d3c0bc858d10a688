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
	"time"

	"yardview/internal/domain"
	applog "yardview/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres reads the live yard system's container inventory.
type Postgres struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenPostgres connects to the yard system database and verifies the
// connection. The schema is owned by the yard system; this client only reads.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("inventory: postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	l := applog.WithComponent("inventory").With(slog.String("driver", "postgres"))
	l.Info("yard system connected")
	return &Postgres{db: db, log: l}, nil
}

// Entities returns the full container table keyed by id.
func (p *Postgres) Entities(ctx context.Context) (map[string]domain.Entity, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, x, y, z, type, block_id, row, lot, level FROM containers`)
	if err != nil {
		return nil, fmt.Errorf("query containers: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			p.log.Warn("rows close failed", slog.Any("err", err))
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

// Reserved returns the ids flagged reserved in the yard system.
func (p *Postgres) Reserved(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM containers WHERE reserved ORDER BY id`)
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

// Close closes the connection pool.
func (p *Postgres) Close() error { return p.db.Close() }
