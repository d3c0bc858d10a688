/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yardview/internal/domain"
	"yardview/internal/inventory"
)

func TestLoadYardDataLayoutOnly(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "terminal.json")
	if err := os.WriteFile(layoutPath, []byte(`{"id": "T1", "blocks": [{"id": "B1", "lots": 4, "rows": 2}]}`), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}

	term, entities, reserved, err := LoadYardData(layoutPath, "")
	if err != nil {
		t.Fatalf("LoadYardData: %v", err)
	}
	if term.ID != "T1" || len(term.Blocks) != 1 {
		t.Fatalf("unexpected terminal: %+v", term)
	}
	if len(entities) != 0 || len(reserved) != 0 {
		t.Fatalf("expected empty inventory without a db, got %d/%d", len(entities), len(reserved))
	}
}

func TestLoadYardDataWithSnapshotDB(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "terminal.json")
	if err := os.WriteFile(layoutPath, []byte(`{"id": "T1", "blocks": [{"id": "B1", "lots": 4, "rows": 2}]}`), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}

	dbPath := filepath.Join(dir, "yard.sqlite")
	inv, err := inventory.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	seed := map[string]domain.Entity{
		"MSKU1": {ID: "MSKU1", Type: domain.Container20ft, BlockID: "B1"},
		"MSKU2": {ID: "MSKU2", Type: domain.Container20ft, BlockID: "B1"},
	}
	if err := inv.Replace(context.Background(), seed, []string{"MSKU2"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := inv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, entities, reserved, err := LoadYardData(layoutPath, dbPath)
	if err != nil {
		t.Fatalf("LoadYardData: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(entities))
	}
	if len(reserved) != 1 || reserved[0] != "MSKU2" {
		t.Fatalf("reserved = %v, want [MSKU2]", reserved)
	}
}

func TestLoadYardDataBadLayout(t *testing.T) {
	if _, _, _, err := LoadYardData(filepath.Join(t.TempDir(), "missing.json"), ""); err == nil {
		t.Fatalf("missing layout accepted")
	}
}
