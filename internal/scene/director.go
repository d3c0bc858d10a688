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
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"yardview/internal/config"
	"yardview/internal/domain"
	"yardview/internal/geom"
	applog "yardview/internal/log"
	"yardview/internal/store"
)

// Pose is a camera position plus look-at target.
type Pose struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
}

// Framing offsets. These encode product-tuned "nice framing" choices; there
// is no formula behind them.
var (
	focusLookOffset    = mgl32.Vec3{8, 0, 0}
	focusEyeOffset     = mgl32.Vec3{-15, 30, 30}
	focusOverrideDepth = mgl32.Vec3{0, 0, 20}

	// Container framing when its block is also selected: the view nests
	// inside the block framing with less extra lift.
	nestedLookOffset = mgl32.Vec3{6, 25, 0}
	nestedEyeOffset  = mgl32.Vec3{-15, 25, 15}

	// Container framing with no block selected.
	soloLookOffset = mgl32.Vec3{8, 12, 0}
	soloEyeOffset  = mgl32.Vec3{-20, 20, 20}

	reservedLook = mgl32.Vec3{15, 0, 50}
	reservedEye  = mgl32.Vec3{-160, 220, 250}

	blockLookOffset = mgl32.Vec3{40, 16, 0}
	blockEyeOffset  = mgl32.Vec3{-25, 120, 160}
)

// poseEpsilon is the tolerance for "already there / already heading there".
const poseEpsilon float32 = 1e-3

// loadingPoseEpsilon is how close the camera must still be to the loading
// snap pose for load completion to animate back to the overview.
const loadingPoseEpsilon float32 = 1.0

// Tunables are the director's configurable timings and poses.
type Tunables struct {
	TransitionDur   time.Duration
	SpringDebounce  time.Duration
	SpringSuppress  time.Duration
	OverviewEye     mgl32.Vec3
	TopViewEye      mgl32.Vec3
	LoadingEye      mgl32.Vec3
	MaxTargetRadius float32
	GroundOffset    float32
}

// DefaultTunables returns the shipped framing constants.
func DefaultTunables() Tunables { return TunablesFrom(config.Defaults().Camera) }

// TunablesFrom converts the config camera section.
func TunablesFrom(c config.CameraConfig) Tunables {
	return Tunables{
		TransitionDur:   time.Duration(c.TransitionMs) * time.Millisecond,
		SpringDebounce:  time.Duration(c.SpringBackDebounceMs) * time.Millisecond,
		SpringSuppress:  time.Duration(c.SpringBackSuppressMs) * time.Millisecond,
		OverviewEye:     mgl32.Vec3{c.OverviewEye[0], c.OverviewEye[1], c.OverviewEye[2]},
		TopViewEye:      mgl32.Vec3{c.TopViewEye[0], c.TopViewEye[1], c.TopViewEye[2]},
		LoadingEye:      mgl32.Vec3{c.LoadingEye[0], c.LoadingEye[1], c.LoadingEye[2]},
		MaxTargetRadius: c.MaxTargetRadius,
		GroundOffset:    c.GroundOffset,
	}
}

type transition struct {
	fromEye, toEye       mgl32.Vec3
	fromTarget, toTarget mgl32.Vec3
	elapsed, duration    time.Duration
}

// Director owns the camera: it watches the store, consumes boundary signals,
// computes the canonical target pose by fixed priority, and drives eased
// transitions with cancellation and spring-back recovery.
type Director struct {
	st      *store.Store
	sched   *Scheduler
	signals *SignalQueue
	tun     Tunables
	log     *slog.Logger

	eye    mgl32.Vec3
	target mgl32.Vec3

	trans      *transition
	lastStart  time.Duration
	hasStarted bool
	spring     *Task

	// starts counts transition starts, for idempotence checks in tests.
	starts int

	unsub func()
}

// NewDirector wires a director to the store and the boundary signal queue.
// The camera begins at the standard overview pose.
func NewDirector(st *store.Store, sched *Scheduler, signals *SignalQueue, tun Tunables) *Director {
	d := &Director{
		st:      st,
		sched:   sched,
		signals: signals,
		tun:     tun,
		log:     applog.WithComponent("camera"),
		eye:     tun.OverviewEye,
	}
	d.unsub = st.Subscribe(d.onStoreChange)
	return d
}

// Close detaches the director from the store.
func (d *Director) Close() {
	if d.unsub != nil {
		d.unsub()
		d.unsub = nil
	}
}

// Pose returns the current camera pose, valid every frame.
func (d *Director) Pose() Pose { return Pose{Eye: d.eye, Target: d.target} }

// Transitioning reports whether an eased transition is in flight.
func (d *Director) Transitioning() bool { return d.trans != nil }

func (d *Director) onStoreChange(c store.Change) {
	switch c {
	case store.ChangeSelection, store.ChangeFocus, store.ChangeReserved, store.ChangePanel:
		st := d.st.Snapshot()
		if st.Loading {
			return
		}
		d.transitionTo(d.desiredPose(st))
	case store.ChangeLoading:
		d.onLoadingChange()
	}
}

func (d *Director) onLoadingChange() {
	st := d.st.Snapshot()
	if st.Loading {
		// Snap, not animate: the yard is not drawable yet.
		d.cancelTransition()
		d.eye = d.tun.LoadingEye
		d.target = mgl32.Vec3{}
		return
	}
	// Animate down only if the camera is still parked at the loading pose;
	// a user who already moved away keeps their view.
	if geom.AlmostEqual(d.eye, d.tun.LoadingEye, loadingPoseEpsilon) {
		d.transitionTo(Pose{Eye: d.tun.OverviewEye})
	}
}

// Step advances the director by one frame: boundary signals first, then
// scheduled tasks (spring-back debounce), then the in-flight transition.
func (d *Director) Step(dt time.Duration) {
	for _, sig := range d.signals.Drain() {
		d.handleSignal(sig)
	}
	d.sched.Advance(dt)
	d.advanceTransition(dt)
}

func (d *Director) handleSignal(sig Signal) {
	switch sig {
	case SignalTopView:
		if d.st.Snapshot().Loading {
			return
		}
		d.transitionTo(Pose{Eye: d.tun.TopViewEye})
	case SignalResetView:
		st := d.st.Snapshot()
		if st.Loading || st.SelectedBlockID != "" {
			return
		}
		d.transitionTo(Pose{Eye: d.tun.OverviewEye})
	case SignalManualControlChanged:
		d.target = geom.ClampTarget(d.target, d.tun.GroundOffset, d.tun.MaxTargetRadius)
	case SignalManualInteractionEnded:
		d.scheduleSpringBack()
	}
}

// SetManualPose applies a user-driven camera move. Manual input wins over
// any in-flight transition, which is cancelled rather than left to fight.
func (d *Director) SetManualPose(eye, target mgl32.Vec3) {
	d.cancelTransition()
	d.eye = eye
	d.target = geom.ClampTarget(target, d.tun.GroundOffset, d.tun.MaxTargetRadius)
}

// desiredPose resolves the canonical framing for the given state, in strict
// priority order. Stale ids resolve to the next rule down.
func (d *Director) desiredPose(st store.State) Pose {
	// 1. Explicit focus request.
	if st.Focus != nil {
		look := geom.V(st.Focus.Position).Add(focusLookOffset)
		if st.Focus.Camera != nil {
			return Pose{Eye: geom.V(*st.Focus.Camera).Add(focusOverrideDepth), Target: look}
		}
		return Pose{Eye: look.Add(focusEyeOffset), Target: look}
	}
	// 2. Selected container.
	if st.SelectedContainerID != "" {
		if e, ok := d.st.Entity(st.SelectedContainerID); ok {
			pos := geom.V(e.Position)
			if st.SelectedBlockID != "" {
				if _, ok := d.st.Block(st.SelectedBlockID); ok {
					look := pos.Add(nestedLookOffset)
					return Pose{Eye: look.Add(nestedEyeOffset), Target: look}
				}
			}
			look := pos.Add(soloLookOffset)
			return Pose{Eye: look.Add(soloEyeOffset), Target: look}
		}
	}
	// 3. Reserved display mode, entered either by a non-empty reserved set
	// or by opening the reserved panel.
	if st.ReservedActive() || st.ActivePanel == domain.PanelReserved {
		return Pose{Eye: reservedEye, Target: reservedLook}
	}
	// 4. Selected block.
	if st.SelectedBlockID != "" {
		if b, ok := d.st.Block(st.SelectedBlockID); ok {
			look := geom.V(b.Center()).Add(blockLookOffset)
			return Pose{Eye: look.Add(blockEyeOffset), Target: look}
		}
	}
	// 5. Standard overview.
	return Pose{Eye: d.tun.OverviewEye}
}

// transitionTo starts an eased transition toward p unless the camera is
// already there or already heading there (identical restarts are no-ops).
func (d *Director) transitionTo(p Pose) {
	if tr := d.trans; tr != nil {
		if geom.AlmostEqual(tr.toEye, p.Eye, poseEpsilon) && geom.AlmostEqual(tr.toTarget, p.Target, poseEpsilon) {
			return
		}
	} else if geom.AlmostEqual(d.eye, p.Eye, poseEpsilon) && geom.AlmostEqual(d.target, p.Target, poseEpsilon) {
		return
	}

	// Starting a transition supersedes any pending spring-back and cancels
	// whatever tween is in flight on eye or target.
	if d.spring != nil {
		d.spring.Cancel()
		d.spring = nil
	}
	d.trans = &transition{
		fromEye:    d.eye,
		toEye:      p.Eye,
		fromTarget: d.target,
		toTarget:   p.Target,
		duration:   d.tun.TransitionDur,
	}
	d.lastStart = d.sched.Now()
	d.hasStarted = true
	d.starts++
	d.log.Debug("camera transition",
		slog.Float64("eye_x", float64(p.Eye.X())),
		slog.Float64("eye_y", float64(p.Eye.Y())),
		slog.Float64("eye_z", float64(p.Eye.Z())),
	)
}

func (d *Director) cancelTransition() { d.trans = nil }

func (d *Director) advanceTransition(dt time.Duration) {
	tr := d.trans
	if tr == nil {
		return
	}
	tr.elapsed += dt
	if tr.elapsed >= tr.duration || tr.duration <= 0 {
		d.eye = tr.toEye
		d.target = tr.toTarget
		d.trans = nil
		return
	}
	k := geom.EaseInOutCubic(float32(tr.elapsed) / float32(tr.duration))
	d.eye = geom.Lerp(tr.fromEye, tr.toEye, k)
	d.target = geom.Lerp(tr.fromTarget, tr.toTarget, k)
}

// scheduleSpringBack re-frames the canonical pose after free-look ends.
// Suppressed within the guard window of the last intentional transition;
// debounced so rapid drag-end bursts coalesce; the debounce re-checks the
// guard at fire time so a newer transition always wins the race.
func (d *Director) scheduleSpringBack() {
	now := d.sched.Now()
	if d.hasStarted && now-d.lastStart < d.tun.SpringSuppress {
		return
	}
	if d.spring != nil {
		d.spring.Cancel()
	}
	d.spring = d.sched.After(d.tun.SpringDebounce, func() {
		if d.hasStarted && d.sched.Now()-d.lastStart < d.tun.SpringSuppress {
			return
		}
		st := d.st.Snapshot()
		if st.Loading {
			return
		}
		d.transitionTo(d.desiredPose(st))
	})
}
