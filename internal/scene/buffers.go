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
	"github.com/go-gl/mathgl/mgl32"

	"yardview/internal/domain"
)

// InstanceBuffers are the flat per-instance arrays shared with the
// presentation layer. The projector fills them once per data change; after
// that only the animator rewrites them, in place, without reallocating.
type InstanceBuffers struct {
	IDs       []string
	Index     map[string]int
	Positions []mgl32.Vec3
	Scales    []mgl32.Vec3
	Opacities []float32
	Colors    []domain.Color
}

// Len returns the instance count.
func (b *InstanceBuffers) Len() int { return len(b.IDs) }

// Lookup returns the buffer slot for an id.
func (b *InstanceBuffers) Lookup(id string) (int, bool) {
	i, ok := b.Index[id]
	return i, ok
}

// TypeOf recovers the container footprint encoded in an instance's X scale.
func (b *InstanceBuffers) TypeOf(i int) domain.ContainerType {
	if b.Scales[i].X() >= longSlotXScale {
		return domain.Container40ft
	}
	return domain.Container20ft
}
