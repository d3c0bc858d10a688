/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// Core data model for the yard viewer: the terminal layout tree delivered by
// the layout provider and the container inventory delivered by the inventory
// provider. All world coordinates are float32, Y up.

// Position is a point in world space.
type Position struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
	Z float32 `json:"z" yaml:"z"`
}

// ContainerType governs slot pitch within a block.
type ContainerType string

const (
	Container20ft ContainerType = "20ft"
	Container40ft ContainerType = "40ft"
)

// SlotLength returns the slot pitch along X for a container type.
func (c ContainerType) SlotLength() float32 {
	if c == Container40ft {
		return 13
	}
	return 6.5
}

// Entity is a single container instance. Position is immutable for the
// session; visual lift offsets are applied on top of it, never written back.
type Entity struct {
	ID       string        `json:"id" yaml:"id"`
	Position Position      `json:"position" yaml:"position"`
	Type     ContainerType `json:"type" yaml:"type"`
	BlockID  string        `json:"block_id" yaml:"block_id"`
	Row      int           `json:"row" yaml:"row"`
	Lot      int           `json:"lot" yaml:"lot"`
	Level    int           `json:"level" yaml:"level"`
}

// Block is a yard sub-area organized into lots x rows of container slots.
type Block struct {
	ID            string          `json:"id" yaml:"id"`
	Position      Position        `json:"position" yaml:"position"`
	Rotation      float32         `json:"rotation" yaml:"rotation"`
	Lots          int             `json:"lots" yaml:"lots"`
	Rows          int             `json:"rows" yaml:"rows"`
	ContainerType ContainerType   `json:"container_type" yaml:"container_type"`
	RowLabels     []string        `json:"row_labels,omitempty" yaml:"row_labels,omitempty"`
	LotNumbers    []int           `json:"lot_numbers,omitempty" yaml:"lot_numbers,omitempty"`
	LotGaps       map[int]float32 `json:"lot_gaps,omitempty" yaml:"lot_gaps,omitempty"`
}

// Center returns the planar center of the block's slot grid.
func (b Block) Center() Position {
	ct := b.ContainerType
	w := float32(b.Lots) * ct.SlotLength()
	d := float32(b.Rows) * SlotWidth
	return Position{X: b.Position.X + w/2, Y: b.Position.Y, Z: b.Position.Z + d/2}
}

// SlotWidth is the slot pitch along Z, shared by all container types.
const SlotWidth float32 = 2.9

// TierHeight is the vertical pitch between stacking levels.
const TierHeight float32 = 2.6

// Zone is a non-block layout region (gate, road, warehouse footprint, ...).
type Zone struct {
	ID           string     `json:"id" yaml:"id"`
	Type         string     `json:"type" yaml:"type"`
	Position     Position   `json:"position" yaml:"position"`
	Rotation     float32    `json:"rotation" yaml:"rotation"`
	Width        float32    `json:"width,omitempty" yaml:"width,omitempty"`
	Depth        float32    `json:"depth,omitempty" yaml:"depth,omitempty"`
	CornerPoints []Position `json:"corner_points,omitempty" yaml:"corner_points,omitempty"`
}

// Terminal is the layout tree root delivered by the layout provider.
type Terminal struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Zones  []Zone  `json:"zones,omitempty" yaml:"zones,omitempty"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// FocusPoint is an explicit external focus request, optionally carrying a
// camera override.
type FocusPoint struct {
	Position Position  `json:"position" yaml:"position"`
	Camera   *Position `json:"camera,omitempty" yaml:"camera,omitempty"`
}

// PanelKind identifies a task panel. Panels are presentation-only forms.
type PanelKind string

const (
	PanelGateIn            PanelKind = "gate_in"
	PanelGateOut           PanelKind = "gate_out"
	PanelStuffing          PanelKind = "stuffing"
	PanelDestuffing        PanelKind = "destuffing"
	PanelPlugIn            PanelKind = "plug_in"
	PanelPlugOut           PanelKind = "plug_out"
	PanelCFSTask           PanelKind = "cfs_task"
	PanelPositionContainer PanelKind = "position_container"
	PanelReserved          PanelKind = "reserved"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}
