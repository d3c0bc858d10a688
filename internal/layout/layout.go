/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package layout loads the static terminal description the viewer renders.
// JSON layouts are validated against an embedded schema before decoding so a
// malformed file is rejected at this boundary instead of surfacing later as a
// broken scene.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"yardview/internal/domain"
	applog "yardview/internal/log"
)

//go:embed schema.json
var schemaJSON []byte

// DefaultLotGap is the spacing inserted after a lot when the layout does not
// configure one.
const DefaultLotGap float32 = 0.4

// Load reads a terminal layout from a .json, .yaml or .yml file.
func Load(path string) (domain.Terminal, error) {
	l := applog.WithComponent("layout")
	var t domain.Terminal

	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read layout: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		t, err = decodeJSON(b)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &t)
	default:
		return t, fmt.Errorf("unsupported layout format %q", filepath.Ext(path))
	}
	if err != nil {
		return t, err
	}

	applyDefaults(&t)
	if err := validate(t); err != nil {
		return t, err
	}
	l.Info("layout loaded",
		slog.String("terminal", t.ID),
		slog.Int("blocks", len(t.Blocks)),
		slog.Int("zones", len(t.Zones)),
	)
	return t, nil
}

func decodeJSON(b []byte) (domain.Terminal, error) {
	var t domain.Terminal
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(b))
	if err != nil {
		return t, fmt.Errorf("validate layout: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return t, fmt.Errorf("invalid layout: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("decode layout: %w", err)
	}
	return t, nil
}

// applyDefaults fills the degrees of freedom the file may omit: slot grids
// default to a single slot and the container type defaults to 20ft.
func applyDefaults(t *domain.Terminal) {
	for i := range t.Blocks {
		b := &t.Blocks[i]
		if b.Lots <= 0 {
			b.Lots = 1
		}
		if b.Rows <= 0 {
			b.Rows = 1
		}
		if b.ContainerType == "" {
			b.ContainerType = domain.Container20ft
		}
	}
}

func validate(t domain.Terminal) error {
	if t.ID == "" {
		return errors.New("layout: terminal id is required")
	}
	seen := make(map[string]struct{}, len(t.Blocks))
	for _, b := range t.Blocks {
		if b.ID == "" {
			return errors.New("layout: block id is required")
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("layout: duplicate block id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
		if b.ContainerType != domain.Container20ft && b.ContainerType != domain.Container40ft {
			return fmt.Errorf("layout: block %q has unknown container type %q", b.ID, b.ContainerType)
		}
	}
	return nil
}

// LotGap returns the spacing after the given lot in a block, falling back to
// DefaultLotGap when the layout configures none.
func LotGap(b domain.Block, lot int) float32 {
	if g, ok := b.LotGaps[lot]; ok {
		return g
	}
	return DefaultLotGap
}

// SlotPosition computes the world position of a slot in a block's grid,
// accumulating configured lot gaps along X.
func SlotPosition(b domain.Block, lot, row, level int) domain.Position {
	x := b.Position.X
	for i := 0; i < lot; i++ {
		x += b.ContainerType.SlotLength() + LotGap(b, i)
	}
	return domain.Position{
		X: x,
		Y: b.Position.Y + float32(level)*domain.TierHeight,
		Z: b.Position.Z + float32(row)*domain.SlotWidth,
	}
}
