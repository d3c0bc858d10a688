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
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"yardview/internal/geom"
	"yardview/internal/store"
)

// Visual response constants. Lifts are additive on the baseline Y; opacities
// replace the baseline value outright.
const (
	blockLiftHeight float32 = 16
	stackLiftHeight float32 = 10

	// liftRate is the exponential approach rate (1/s) for lift and opacity
	// easing. ~6/s settles well under a second at any frame rate.
	liftRate float32 = 6

	dimmedOpacity   float32 = 0.1
	neighborOpacity float32 = 0.2

	// neighborRadius bounds the planar distance for "same row/bay vicinity"
	// dimming around a selected container.
	neighborRadius float32 = 3.0

	// settleEpsilon is the per-channel threshold below which an eased value
	// snaps to its target and the instance counts as settled.
	settleEpsilon float32 = 0.01
)

// Outline marks the highlighted instance for the presentation layer. The
// position tracks the animated instance, lift included, so the outline never
// lags the mesh it wraps.
type Outline struct {
	ID       string
	Position mgl32.Vec3
	Selected bool
}

// Animator rewrites the projection's instance buffers once per frame from the
// current store state: lift easing for selected groups, opacity dimming for
// everything that competes with the selection, and wholesale hiding in
// reserved mode. It owns no state beyond its easing scratch; the projection
// baselines are the single source it resets toward.
type Animator struct {
	st   *store.Store
	proj *Projection

	// lifts/opacities are the animated channel values, eased toward their
	// per-frame targets. Indexed like the projection buffers.
	lifts     []float32
	opacities []float32

	// flushes counts buffer rewrites still owed after the scene settles, so
	// the final resting values reach the buffers exactly once.
	flushes int
}

// NewAnimator creates an animator over a projection. Channels start at rest
// (no lift, full opacity) matching the freshly projected baseline.
func NewAnimator(st *store.Store, proj *Projection) *Animator {
	a := &Animator{st: st}
	a.Reset(proj)
	return a
}

// Reset rebinds the animator to a new projection after a data reload. All
// easing state restarts from the baseline.
func (a *Animator) Reset(proj *Projection) {
	n := proj.Buffers.Len()
	a.proj = proj
	a.lifts = make([]float32, n)
	a.opacities = make([]float32, n)
	for i := range a.opacities {
		a.opacities[i] = 1
	}
	a.flushes = 1
}

// Step eases every instance toward its target for the current state and
// rewrites the shared buffers. When all channels have settled it performs one
// final flush and then skips rewrites until the state changes again.
func (a *Animator) Step(dt time.Duration) {
	st := a.st.Snapshot()
	moving := a.ease(st, float32(dt.Seconds()))
	if moving {
		a.flushes = 1
	} else if a.flushes == 0 {
		return
	} else {
		a.flushes--
	}
	a.writeBuffers(st)
}

// ease advances all animated channels one frame and reports whether any
// channel is still away from its target.
func (a *Animator) ease(st store.State, dt float32) bool {
	reserved := st.ReservedActive()
	selC, selB := a.activeSelection(st)

	moving := false
	for i, id := range a.proj.Buffers.IDs {
		liftTarget := float32(0)
		opacityTarget := float32(1)

		switch {
		case reserved:
			// Reserved mode hides non-members outright; members rest at
			// their baseline with no lift.
			if _, ok := st.Reserved[id]; !ok {
				opacityTarget = 0
			}
		case selB != "":
			if a.proj.BlockOf[id] == selB {
				liftTarget = blockLiftHeight
			} else {
				opacityTarget = dimmedOpacity
			}
			if selC != "" && a.sameStack(id, selC) {
				liftTarget += stackLiftHeight
			}
		case selC != "":
			if a.sameStack(id, selC) {
				liftTarget = stackLiftHeight
			}
			// Dimming is independent of lift: stack-mates rise with the
			// selection and still dim like any other neighbor.
			if id != selC && a.nearSelected(i, selC) {
				opacityTarget = neighborOpacity
			}
		}

		a.lifts[i] = approachSnap(a.lifts[i], liftTarget, dt)
		a.opacities[i] = approachSnap(a.opacities[i], opacityTarget, dt)
		if a.lifts[i] != liftTarget || a.opacities[i] != opacityTarget {
			moving = true
		}
	}
	return moving
}

// writeBuffers pushes the animated values into the shared instance arrays.
func (a *Animator) writeBuffers(st store.State) {
	reserved := st.ReservedActive()
	buf := a.proj.Buffers
	for i, id := range buf.IDs {
		pos := a.proj.BasePositions[i]
		pos[1] += a.lifts[i]
		buf.Positions[i] = pos
		buf.Opacities[i] = a.opacities[i]

		scale := a.proj.BaseScales[i]
		if reserved {
			if _, ok := st.Reserved[id]; !ok {
				scale = mgl32.Vec3{}
			}
		}
		buf.Scales[i] = scale
	}
}

// OutlineFor returns the highlight outline for the current state, or nil when
// nothing is selected or hovered. Selection wins over hover; a stale id
// yields no outline.
func (a *Animator) OutlineFor(st store.State) *Outline {
	id := st.SelectedContainerID
	selected := true
	if id == "" || !a.known(id) {
		id = st.HoveredID
		selected = false
	}
	if id == "" || !a.known(id) {
		return nil
	}
	i := a.proj.Buffers.Index[id]
	pos := a.proj.BasePositions[i]
	pos[1] += a.lifts[i]
	return &Outline{ID: id, Position: pos, Selected: selected}
}

// activeSelection resolves the store's selection ids against the projection,
// dropping ids that no longer exist in the loaded data.
func (a *Animator) activeSelection(st store.State) (container, block string) {
	if a.known(st.SelectedContainerID) {
		container = st.SelectedContainerID
	}
	if st.SelectedBlockID != "" {
		if _, ok := a.st.Block(st.SelectedBlockID); ok {
			block = st.SelectedBlockID
		}
	}
	return container, block
}

func (a *Animator) known(id string) bool {
	if id == "" {
		return false
	}
	_, ok := a.proj.Buffers.Index[id]
	return ok
}

// sameStack reports whether id shares a planar stack slot with the selected
// container.
func (a *Animator) sameStack(id, selected string) bool {
	return a.proj.StackOf[id] == a.proj.StackOf[selected]
}

// nearSelected reports whether instance i sits within the dimming radius of
// the selected container on the ground plane.
func (a *Animator) nearSelected(i int, selected string) bool {
	j, ok := a.proj.Buffers.Index[selected]
	if !ok {
		return false
	}
	p, q := a.proj.BasePositions[i], a.proj.BasePositions[j]
	dx := float64(p.X() - q.X())
	dz := float64(p.Z() - q.Z())
	return math.Hypot(dx, dz) <= float64(neighborRadius)
}

// approachSnap eases cur toward target and snaps once within settleEpsilon,
// so channels reach their exact targets instead of crawling forever.
func approachSnap(cur, target, dt float32) float32 {
	next := geom.Approach(cur, target, liftRate, dt)
	if d := next - target; d < settleEpsilon && d > -settleEpsilon {
		return target
	}
	return next
}
