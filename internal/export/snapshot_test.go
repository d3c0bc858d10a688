/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"yardview/internal/domain"
)

func testYard() (domain.Terminal, map[string]domain.Entity) {
	term := domain.Terminal{
		ID:   "T1",
		Name: "North Terminal",
		Zones: []domain.Zone{
			{ID: "Z1", Type: "gate", Position: domain.Position{X: -30, Z: 0}, Width: 15, Depth: 20},
		},
		Blocks: []domain.Block{
			{ID: "B1", Lots: 10, Rows: 4, ContainerType: domain.Container20ft},
			{ID: "B2", Position: domain.Position{X: 100}, Lots: 5, Rows: 4, ContainerType: domain.Container40ft},
		},
	}
	entities := map[string]domain.Entity{
		"MSKU1": {ID: "MSKU1", Position: domain.Position{X: 0, Z: 0}, Type: domain.Container20ft, BlockID: "B1"},
		"MSKU2": {ID: "MSKU2", Position: domain.Position{X: 6.9, Z: 2.9}, Type: domain.Container20ft, BlockID: "B1"},
		"MSKU3": {ID: "MSKU3", Position: domain.Position{X: 100, Z: 0}, Type: domain.Container40ft, BlockID: "B2"},
	}
	return term, entities
}

func TestRenderSnapshotDrawsContainers(t *testing.T) {
	term, entities := testYard()
	img, err := RenderSnapshot(term, entities, SnapshotOptions{})
	if err != nil {
		t.Fatalf("RenderSnapshot: %v", err)
	}
	if img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		t.Fatalf("empty image %v", img.Bounds())
	}

	// Containers and outlines must leave non-background pixels behind.
	bg := img.RGBAAt(0, 0)
	diff := 0
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			if img.RGBAAt(x, y) != bg {
				diff++
			}
		}
	}
	if diff < 100 {
		t.Fatalf("only %d non-background pixels, nothing was drawn", diff)
	}
}

func TestRenderSnapshotEmptyYard(t *testing.T) {
	img, err := RenderSnapshot(domain.Terminal{ID: "T0"}, nil, SnapshotOptions{})
	if err != nil {
		t.Fatalf("RenderSnapshot: %v", err)
	}
	if img.Bounds().Dx() <= 0 {
		t.Fatalf("empty yard produced empty image")
	}
}

func TestRenderSnapshotRescale(t *testing.T) {
	term, entities := testYard()
	img, err := RenderSnapshot(term, entities, SnapshotOptions{Width: 256})
	if err != nil {
		t.Fatalf("RenderSnapshot: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Fatalf("width = %d, want 256", img.Bounds().Dx())
	}
}

func TestWriteSnapshotPNG(t *testing.T) {
	term, entities := testYard()
	path := filepath.Join(t.TempDir(), "yard.png")
	if err := WriteSnapshotPNG(path, term, entities, SnapshotOptions{}); err != nil {
		t.Fatalf("WriteSnapshotPNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	term, entities := testYard()
	path := filepath.Join(t.TempDir(), "yard.pdf")
	if err := WriteReport(path, term, entities, []string{"MSKU2"}, ReportOptions{}); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(b) < 4 || string(b[:4]) != "%PDF" {
		t.Fatalf("output does not look like a PDF (%d bytes)", len(b))
	}
}
