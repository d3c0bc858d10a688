/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders offline artifacts from the yard data: a top-down PNG
// snapshot and a PDF occupancy report. Neither touches the live scene; both
// work from the same layout and inventory the viewer loads.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	"yardview/internal/domain"
	"yardview/internal/scene"
)

// SnapshotOptions controls top-down snapshot rendering.
// Zero values get reasonable defaults.
type SnapshotOptions struct {
	// Scale is pixels per world unit. Default 4.
	Scale float64
	// Width, when > 0, rescales the output to this pixel width.
	Width int
	// MarginWorld is the world-unit border around the yard. Default 10.
	MarginWorld float64

	Background  domain.Color
	BlockStroke domain.Color
	ZoneStroke  domain.Color
}

func (o SnapshotOptions) withDefaults() SnapshotOptions {
	if o.Scale <= 0 {
		o.Scale = 4
	}
	if o.MarginWorld <= 0 {
		o.MarginWorld = 10
	}
	if o.Background == (domain.Color{}) {
		o.Background = domain.Color{R: 245, G: 245, B: 245, A: 255}
	}
	if o.BlockStroke == (domain.Color{}) {
		o.BlockStroke = domain.Color{R: 60, G: 60, B: 60, A: 255}
	}
	if o.ZoneStroke == (domain.Color{}) {
		o.ZoneStroke = domain.Color{R: 150, G: 150, B: 170, A: 255}
	}
	return o
}

// RenderSnapshot draws the yard from above: block and zone outlines plus one
// filled cell per container in its stable palette color. X maps to image X,
// Z to image Y.
func RenderSnapshot(t domain.Terminal, entities map[string]domain.Entity, opt SnapshotOptions) (*image.RGBA, error) {
	opt = opt.withDefaults()

	minX, minZ, maxX, maxZ := yardBounds(t, entities)
	minX -= float32(opt.MarginWorld)
	minZ -= float32(opt.MarginWorld)
	maxX += float32(opt.MarginWorld)
	maxZ += float32(opt.MarginWorld)

	w := int(math.Ceil(float64(maxX-minX) * opt.Scale))
	h := int(math.Ceil(float64(maxZ-minZ) * opt.Scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("snapshot: degenerate yard bounds")
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(opt.Background)}, image.Point{}, draw.Src)

	px := func(x float32) int { return int(math.Round(float64(x-minX) * opt.Scale)) }
	pz := func(z float32) int { return int(math.Round(float64(z-minZ) * opt.Scale)) }

	zc := toRGBA(opt.ZoneStroke)
	for _, z := range t.Zones {
		zw, zd := z.Width, z.Depth
		if zw <= 0 {
			zw = 10
		}
		if zd <= 0 {
			zd = 10
		}
		strokeRect(img, px(z.Position.X), pz(z.Position.Z), px(z.Position.X+zw)-1, pz(z.Position.Z+zd)-1, zc)
	}

	bc := toRGBA(opt.BlockStroke)
	for _, b := range t.Blocks {
		bw := float32(b.Lots) * b.ContainerType.SlotLength()
		bd := float32(b.Rows) * domain.SlotWidth
		strokeRect(img, px(b.Position.X), pz(b.Position.Z), px(b.Position.X+bw)-1, pz(b.Position.Z+bd)-1, bc)
	}

	for id, e := range entities {
		c := scene.ColorFor(id)
		cw := e.Type.SlotLength()
		x0 := px(e.Position.X)
		y0 := pz(e.Position.Z)
		x1 := px(e.Position.X+cw) - 2
		y1 := pz(e.Position.Z+domain.SlotWidth) - 2
		fillRect(img, x0, y0, x1, y1, toRGBA(c))
	}

	if opt.Width > 0 && opt.Width != w {
		scaled := image.NewRGBA(image.Rect(0, 0, opt.Width, h*opt.Width/w))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
		img = scaled
	}
	return img, nil
}

// WriteSnapshotPNG renders the snapshot and writes it to path.
func WriteSnapshotPNG(path string, t domain.Terminal, entities map[string]domain.Entity, opt SnapshotOptions) error {
	img, err := RenderSnapshot(t, entities, opt)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func yardBounds(t domain.Terminal, entities map[string]domain.Entity) (minX, minZ, maxX, maxZ float32) {
	first := true
	grow := func(x0, z0, x1, z1 float32) {
		if first {
			minX, minZ, maxX, maxZ = x0, z0, x1, z1
			first = false
			return
		}
		if x0 < minX {
			minX = x0
		}
		if z0 < minZ {
			minZ = z0
		}
		if x1 > maxX {
			maxX = x1
		}
		if z1 > maxZ {
			maxZ = z1
		}
	}
	for _, b := range t.Blocks {
		bw := float32(b.Lots) * b.ContainerType.SlotLength()
		bd := float32(b.Rows) * domain.SlotWidth
		grow(b.Position.X, b.Position.Z, b.Position.X+bw, b.Position.Z+bd)
	}
	for _, z := range t.Zones {
		zw, zd := z.Width, z.Depth
		if zw <= 0 {
			zw = 10
		}
		if zd <= 0 {
			zd = 10
		}
		grow(z.Position.X, z.Position.Z, z.Position.X+zw, z.Position.Z+zd)
	}
	for _, e := range entities {
		grow(e.Position.X, e.Position.Z, e.Position.X+e.Type.SlotLength(), e.Position.Z+domain.SlotWidth)
	}
	if first {
		// Empty yard: render a fixed viewport around the origin.
		return -50, -50, 50, 50
	}
	return minX, minZ, maxX, maxZ
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
