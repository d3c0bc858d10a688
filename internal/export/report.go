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
	"bytes"
	"fmt"
	"image/png"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"yardview/internal/domain"
	"yardview/internal/version"
)

// ReportOptions controls the occupancy report.
type ReportOptions struct {
	Title    string
	Snapshot SnapshotOptions
}

// WriteReport writes a one-page A4 occupancy report: per-block slot usage,
// totals, reserved count, and the top-down snapshot image.
func WriteReport(path string, t domain.Terminal, entities map[string]domain.Entity, reserved []string, opt ReportOptions) error {
	title := opt.Title
	if title == "" {
		title = t.Name
	}
	if title == "" {
		title = t.ID
	}

	perBlock := map[string]int{}
	for _, e := range entities {
		perBlock[e.BlockID]++
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - Yard Occupancy", title), true)
	pdf.SetAuthor("yardview", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Yard occupancy: %s", title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s by %s", time.Now().Format("2006-01-02 15:04"), version.String()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Block table
	pdf.SetFont("Helvetica", "B", 10)
	colW := []float64{30, 25, 30, 35, 30}
	head := []string{"Block", "Type", "Slots", "Containers", "Occupancy"}
	for i, hdr := range head {
		pdf.CellFormat(colW[i], 7, hdr, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	blocks := append([]domain.Block(nil), t.Blocks...)
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })

	totalSlots, totalContainers := 0, 0
	for _, b := range blocks {
		slots := b.Lots * b.Rows
		n := perBlock[b.ID]
		occ := 0.0
		if slots > 0 {
			occ = float64(n) / float64(slots) * 100
		}
		totalSlots += slots
		totalContainers += n

		pdf.CellFormat(colW[0], 7, b.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 7, string(b.ContainerType), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 7, fmt.Sprintf("%d x %d", b.Lots, b.Rows), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 7, fmt.Sprintf("%d", n), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[4], 7, fmt.Sprintf("%.0f%%", occ), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colW[0]+colW[1]+colW[2], 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(colW[3], 7, fmt.Sprintf("%d", totalContainers), "1", 0, "R", false, 0, "")
	occ := 0.0
	if totalSlots > 0 {
		occ = float64(totalContainers) / float64(totalSlots) * 100
	}
	pdf.CellFormat(colW[4], 7, fmt.Sprintf("%.0f%%", occ), "1", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Reserved containers: %d", len(reserved)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Embedded snapshot
	img, err := RenderSnapshot(t, entities, opt.Snapshot)
	if err != nil {
		return fmt.Errorf("report snapshot: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("report snapshot encode: %w", err)
	}
	imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("snapshot", imgOpt, &buf)
	// Fit to the content width; gofpdf keeps the aspect ratio with h=0.
	pdf.ImageOptions("snapshot", 10, pdf.GetY(), 190, 0, false, imgOpt, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
