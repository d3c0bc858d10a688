/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yardview/internal/domain"
)

func writeLayout(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeLayout(t, "terminal.json", `{
		"id": "T1",
		"name": "North Terminal",
		"zones": [{"id": "Z1", "type": "gate", "position": {"x": -20, "y": 0, "z": 0}}],
		"blocks": [
			{"id": "B1", "lots": 10, "rows": 4, "container_type": "20ft"},
			{"id": "B2", "position": {"x": 100, "y": 0, "z": 0}, "lots": 5, "rows": 4, "container_type": "40ft"}
		]
	}`)

	term, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if term.ID != "T1" || len(term.Blocks) != 2 || len(term.Zones) != 1 {
		t.Fatalf("unexpected terminal: %+v", term)
	}
	if term.Blocks[1].ContainerType != domain.Container40ft {
		t.Fatalf("B2 type = %q, want 40ft", term.Blocks[1].ContainerType)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeLayout(t, "terminal.yaml", strings.Join([]string{
		"id: T2",
		"name: South Terminal",
		"blocks:",
		"  - id: B1",
		"    lots: 8",
		"    rows: 3",
		"    container_type: 20ft",
	}, "\n"))

	term, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if term.ID != "T2" || len(term.Blocks) != 1 || term.Blocks[0].Lots != 8 {
		t.Fatalf("unexpected terminal: %+v", term)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeLayout(t, "terminal.json", `{"id": "T3", "blocks": [{"id": "B1"}]}`)
	term, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := term.Blocks[0]
	if b.Lots != 1 || b.Rows != 1 || b.ContainerType != domain.Container20ft {
		t.Fatalf("defaults not applied: %+v", b)
	}
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	// blocks items require an id.
	path := writeLayout(t, "terminal.json", `{"id": "T4", "blocks": [{"lots": 3}]}`)
	if _, err := Load(path); err == nil {
		t.Fatalf("schema violation accepted")
	}
}

func TestLoadRejectsDuplicateBlockIDs(t *testing.T) {
	path := writeLayout(t, "terminal.json", `{"id": "T5", "blocks": [{"id": "B1"}, {"id": "B1"}]}`)
	if _, err := Load(path); err == nil {
		t.Fatalf("duplicate block ids accepted")
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeLayout(t, "terminal.toml", `id = "T6"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("unknown extension accepted")
	}
}

func TestSlotPositionAccumulatesGaps(t *testing.T) {
	b := domain.Block{
		ID:            "B1",
		ContainerType: domain.Container20ft,
		Lots:          4,
		Rows:          2,
		LotGaps:       map[int]float32{1: 2.0},
	}

	p0 := SlotPosition(b, 0, 0, 0)
	if p0 != b.Position {
		t.Fatalf("lot 0 position = %+v, want block origin", p0)
	}

	// Lot 2 crosses lots 0 (default gap) and 1 (configured gap).
	p2 := SlotPosition(b, 2, 1, 1)
	wantX := 2*b.ContainerType.SlotLength() + DefaultLotGap + 2.0
	if p2.X != wantX {
		t.Fatalf("lot 2 X = %v, want %v", p2.X, wantX)
	}
	if p2.Z != domain.SlotWidth {
		t.Fatalf("row 1 Z = %v, want %v", p2.Z, domain.SlotWidth)
	}
	if p2.Y != domain.TierHeight {
		t.Fatalf("level 1 Y = %v, want %v", p2.Y, domain.TierHeight)
	}
}
