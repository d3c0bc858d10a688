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
	"yardview/internal/domain"
	"yardview/internal/scene"
)

// frameOpacityFloor is the opacity below which an instance is not worth
// rasterizing in the live view.
const frameOpacityFloor float32 = 0.05

// frameEntities converts the live instance buffers into drawable entities for
// the snapshot rasterizer. Hidden instances (faded out or zero-scaled by
// reserved mode) are dropped; each container's footprint is recovered from
// its instance scale so long slots draw at their true pitch.
func frameEntities(buf *scene.InstanceBuffers) map[string]domain.Entity {
	entities := make(map[string]domain.Entity, buf.Len())
	for i, id := range buf.IDs {
		if buf.Opacities[i] < frameOpacityFloor || buf.Scales[i].X() == 0 {
			continue
		}
		entities[id] = domain.Entity{
			ID:       id,
			Position: domain.Position{X: buf.Positions[i].X(), Y: buf.Positions[i].Y(), Z: buf.Positions[i].Z()},
			Type:     buf.TypeOf(i),
		}
	}
	return entities
}
