/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"yardview/internal/domain"
	"yardview/internal/geom"
)

// palette is the fixed container color set. Colors are assigned from a
// stable hash of the entity id so repeated loads render identically.
var palette = []domain.Color{
	{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff}, // red
	{R: 0x27, G: 0x60, B: 0x8b, A: 0xff}, // blue
	{R: 0x1e, G: 0x84, B: 0x49, A: 0xff}, // green
	{R: 0xd3, G: 0x8c, B: 0x12, A: 0xff}, // orange
	{R: 0x6c, G: 0x35, B: 0x83, A: 0xff}, // violet
	{R: 0x11, G: 0x75, B: 0x74, A: 0xff}, // teal
	{R: 0x7f, G: 0x8c, B: 0x8d, A: 0xff}, // gray
	{R: 0x93, G: 0x44, B: 0x16, A: 0xff}, // rust
}

// baseScale is the nominal container mesh scale before slot-pitch fitting.
var baseScale = mgl32.Vec3{1, 1, 1}

// longSlotXScale widens the container mesh along X in blocks configured for
// long (40ft) slots, so meshes match the slot pitch regardless of the
// entity's own nominal type.
const longSlotXScale float32 = 2

// Projection is the static per-instance baseline computed from the entity
// table and block list. It changes only when the data changes; the animator
// layers the live selection state on top of it every frame.
type Projection struct {
	Buffers *InstanceBuffers

	// BasePositions/BaseScales are the immutable baselines the animator
	// resets from. Same indexing as Buffers.
	BasePositions []mgl32.Vec3
	BaseScales    []mgl32.Vec3

	// StackOf groups entities sharing the same planar slot (rounded X,Z).
	StackOf map[string]string
	// BlockOf maps entity id to owning block id.
	BlockOf map[string]string
}

// StackKey returns the stack-group key for a world position: entities whose
// X,Z round to the same integers are physically stacked.
func StackKey(p mgl32.Vec3) string {
	return fmt.Sprintf("%d:%d", int(math.Round(float64(p.X()))), int(math.Round(float64(p.Z()))))
}

// ColorFor assigns a deterministic palette color from the entity id.
func ColorFor(id string) domain.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

// Project computes the static instance baseline for the given data. It is a
// pure function of its inputs and runs once per data change, not per frame.
// Empty inputs produce an empty (but valid) projection.
func Project(entities map[string]domain.Entity, blocks map[string]domain.Block) *Projection {
	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	n := len(ids)
	p := &Projection{
		Buffers: &InstanceBuffers{
			IDs:       ids,
			Index:     make(map[string]int, n),
			Positions: make([]mgl32.Vec3, n),
			Scales:    make([]mgl32.Vec3, n),
			Opacities: make([]float32, n),
			Colors:    make([]domain.Color, n),
		},
		BasePositions: make([]mgl32.Vec3, n),
		BaseScales:    make([]mgl32.Vec3, n),
		StackOf:       make(map[string]string, n),
		BlockOf:       make(map[string]string, n),
	}

	for i, id := range ids {
		e := entities[id]
		pos := geom.V(e.Position)
		scale := baseScale
		if b, ok := blocks[e.BlockID]; ok && b.ContainerType == domain.Container40ft {
			scale[0] *= longSlotXScale
		}

		p.Buffers.Index[id] = i
		p.Buffers.Positions[i] = pos
		p.Buffers.Scales[i] = scale
		p.Buffers.Opacities[i] = 1
		p.Buffers.Colors[i] = ColorFor(id)

		p.BasePositions[i] = pos
		p.BaseScales[i] = scale
		p.StackOf[id] = StackKey(pos)
		p.BlockOf[id] = e.BlockID
	}
	return p
}
