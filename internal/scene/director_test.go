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
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"yardview/internal/domain"
	"yardview/internal/geom"
	"yardview/internal/store"
)

func newDirectorFixture(t *testing.T) (*store.Store, *SignalQueue, *Director) {
	t.Helper()
	st := store.New()
	term := domain.Terminal{ID: "T1", Blocks: []domain.Block{
		{ID: "B1", Lots: 10, Rows: 4, ContainerType: domain.Container20ft},
	}}
	entities := map[string]domain.Entity{
		"C1": {ID: "C1", Position: domain.Position{X: 10, Y: 0, Z: 5}, BlockID: "B1"},
	}
	st.ReplaceData(term, entities)

	q := NewSignalQueue()
	d := NewDirector(st, NewScheduler(), q, DefaultTunables())
	t.Cleanup(d.Close)
	return st, q, d
}

// settle steps well past the transition duration.
func settle(d *Director) { d.Step(2 * time.Second) }

func wantPose(t *testing.T, d *Director, eye, target mgl32.Vec3) {
	t.Helper()
	p := d.Pose()
	if !geom.AlmostEqual(p.Eye, eye, 1e-3) {
		t.Fatalf("eye = %v, want %v", p.Eye, eye)
	}
	if !geom.AlmostEqual(p.Target, target, 1e-3) {
		t.Fatalf("target = %v, want %v", p.Target, target)
	}
}

func TestDirectorStartsAtOverview(t *testing.T) {
	_, _, d := newDirectorFixture(t)
	wantPose(t, d, DefaultTunables().OverviewEye, mgl32.Vec3{})
	if d.Transitioning() {
		t.Fatalf("fresh director already transitioning")
	}
}

func TestContainerSelectionFraming(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	if !d.Transitioning() {
		t.Fatalf("selection did not start a transition")
	}
	settle(d)
	look := mgl32.Vec3{18, 12, 5}
	wantPose(t, d, look.Add(mgl32.Vec3{-20, 20, 20}), look)
}

func TestContainerInBlockFraming(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetSelectedBlock("B1")
	st.SetSelectedContainer("C1")
	settle(d)
	look := mgl32.Vec3{16, 25, 5}
	wantPose(t, d, look.Add(mgl32.Vec3{-15, 25, 15}), look)
}

func TestBlockFraming(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetSelectedBlock("B1")
	settle(d)
	// Grid center of 10 lots x 4 rows of 20ft slots.
	center := mgl32.Vec3{32.5, 0, 5.8}
	look := center.Add(mgl32.Vec3{40, 16, 0})
	wantPose(t, d, look.Add(mgl32.Vec3{-25, 120, 160}), look)
}

func TestFocusBeatsSelection(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	st.SetFocusPosition(&domain.FocusPoint{Position: domain.Position{}})
	settle(d)
	look := mgl32.Vec3{8, 0, 0}
	wantPose(t, d, look.Add(mgl32.Vec3{-15, 30, 30}), look)
}

func TestFocusCameraOverride(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetFocusPosition(&domain.FocusPoint{
		Position: domain.Position{X: 1, Y: 2, Z: 3},
		Camera:   &domain.Position{X: 100, Y: 50, Z: 100},
	})
	settle(d)
	wantPose(t, d, mgl32.Vec3{100, 50, 120}, mgl32.Vec3{9, 2, 3})
}

func TestReservedFraming(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetReserved([]string{"C1"})
	settle(d)
	wantPose(t, d, mgl32.Vec3{-160, 220, 250}, mgl32.Vec3{15, 0, 50})
}

func TestReservedPanelFrames(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.OpenPanel(domain.PanelReserved)
	settle(d)
	wantPose(t, d, mgl32.Vec3{-160, 220, 250}, mgl32.Vec3{15, 0, 50})

	// Closing the panel returns to the overview; other panels never frame
	// the reserved pose.
	st.ClosePanel()
	settle(d)
	wantPose(t, d, DefaultTunables().OverviewEye, mgl32.Vec3{})

	st.OpenPanel(domain.PanelGateIn)
	settle(d)
	wantPose(t, d, DefaultTunables().OverviewEye, mgl32.Vec3{})
}

func TestSelectionBeatsReserved(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	st.SetReserved([]string{"C1"})
	if d.starts != 1 {
		t.Fatalf("reserved re-framed an already-framed selection: %d starts", d.starts)
	}
	settle(d)
	look := mgl32.Vec3{18, 12, 5}
	wantPose(t, d, look.Add(mgl32.Vec3{-20, 20, 20}), look)
}

func TestIdempotentReselection(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	d.Step(100 * time.Millisecond)
	mid := d.Pose()

	st.SetSelectedContainer("C1")
	if d.starts != 1 {
		t.Fatalf("identical reselection restarted the transition: %d starts", d.starts)
	}
	if got := d.Pose(); !geom.AlmostEqual(got.Eye, mid.Eye, 1e-6) {
		t.Fatalf("reselection moved the camera mid-flight")
	}
	settle(d)
	look := mgl32.Vec3{18, 12, 5}
	wantPose(t, d, look.Add(mgl32.Vec3{-20, 20, 20}), look)
}

func TestStaleContainerIDFallsThrough(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetSelectedContainer("ghost")
	if d.Transitioning() || d.starts != 0 {
		t.Fatalf("stale id should resolve to overview, which the camera already holds")
	}
}

func TestSpringBackSuppressedInsideGuard(t *testing.T) {
	st, q, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	d.Step(200 * time.Millisecond)

	q.Publish(SignalManualInteractionEnded)
	d.Step(16 * time.Millisecond)
	if d.spring != nil {
		t.Fatalf("spring-back scheduled inside the guard window")
	}
	settle(d)
	if d.starts != 1 {
		t.Fatalf("starts = %d, want 1 (suppressed spring-back)", d.starts)
	}
}

func TestSpringBackAfterGuard(t *testing.T) {
	st, q, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	settle(d)

	d.SetManualPose(mgl32.Vec3{300, 300, 300}, mgl32.Vec3{0, 10, 0})
	q.Publish(SignalManualInteractionEnded)
	d.Step(40 * time.Millisecond)
	if d.starts != 1 {
		t.Fatalf("spring-back fired before the debounce elapsed")
	}
	d.Step(70 * time.Millisecond)
	if d.starts != 2 {
		t.Fatalf("starts = %d, want 2 (spring-back transition)", d.starts)
	}
	settle(d)
	look := mgl32.Vec3{18, 12, 5}
	wantPose(t, d, look.Add(mgl32.Vec3{-20, 20, 20}), look)
}

func TestSpringBackDebounceCoalesces(t *testing.T) {
	st, q, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	settle(d)
	d.SetManualPose(mgl32.Vec3{300, 300, 300}, mgl32.Vec3{0, 10, 0})

	q.Publish(SignalManualInteractionEnded)
	q.Publish(SignalManualInteractionEnded)
	d.Step(200 * time.Millisecond)

	if d.starts != 2 {
		t.Fatalf("starts = %d, want 2 (one coalesced spring-back)", d.starts)
	}
}

func TestSpringBackSupersededByNewTransition(t *testing.T) {
	st, q, d := newDirectorFixture(t)
	st.SetSelectedContainer("C1")
	settle(d)
	d.SetManualPose(mgl32.Vec3{300, 300, 300}, mgl32.Vec3{0, 10, 0})

	q.Publish(SignalManualInteractionEnded)
	d.Step(10 * time.Millisecond)
	st.SetFocusPosition(&domain.FocusPoint{Position: domain.Position{}})
	if d.starts != 2 {
		t.Fatalf("focus change did not start a transition")
	}
	settle(d)

	look := mgl32.Vec3{8, 0, 0}
	wantPose(t, d, look.Add(mgl32.Vec3{-15, 30, 30}), look)
	if d.starts != 2 {
		t.Fatalf("superseded spring-back still fired: %d starts", d.starts)
	}
}

func TestTopViewWorksWithBlockSelected(t *testing.T) {
	st, q, d := newDirectorFixture(t)
	st.SetSelectedBlock("B1")
	settle(d)

	q.Publish(SignalTopView)
	settle(d)
	wantPose(t, d, DefaultTunables().TopViewEye, mgl32.Vec3{})
}

func TestResetIgnoredWhileBlockSelected(t *testing.T) {
	st, q, d := newDirectorFixture(t)
	st.SetSelectedBlock("B1")
	settle(d)
	q.Publish(SignalTopView)
	settle(d)
	before := d.starts

	q.Publish(SignalResetView)
	settle(d)
	if d.starts != before {
		t.Fatalf("reset started a transition while a block is selected")
	}
	wantPose(t, d, DefaultTunables().TopViewEye, mgl32.Vec3{})
}

func TestResetReturnsToOverview(t *testing.T) {
	_, q, d := newDirectorFixture(t)
	d.SetManualPose(mgl32.Vec3{50, 80, 50}, mgl32.Vec3{10, 0, 10})
	q.Publish(SignalResetView)
	settle(d)
	wantPose(t, d, DefaultTunables().OverviewEye, mgl32.Vec3{})
}

func TestLoadingSnapAndReturn(t *testing.T) {
	st, q, d := newDirectorFixture(t)
	tun := DefaultTunables()

	st.SetLoading(true)
	wantPose(t, d, tun.LoadingEye, mgl32.Vec3{})
	if d.Transitioning() {
		t.Fatalf("loading pose must snap, not animate")
	}

	// Selection changes and view signals are inert during load.
	st.SetSelectedContainer("C1")
	q.Publish(SignalTopView)
	d.Step(16 * time.Millisecond)
	if d.Transitioning() {
		t.Fatalf("camera moved while loading")
	}
	wantPose(t, d, tun.LoadingEye, mgl32.Vec3{})

	st.SetLoading(false)
	if !d.Transitioning() {
		t.Fatalf("load completion did not animate back down")
	}
	settle(d)
	wantPose(t, d, tun.OverviewEye, mgl32.Vec3{})
}

func TestLoadingFinishKeepsManualPose(t *testing.T) {
	st, _, d := newDirectorFixture(t)
	st.SetLoading(true)
	d.SetManualPose(mgl32.Vec3{30, 60, 90}, mgl32.Vec3{5, 0, 5})

	st.SetLoading(false)
	if d.Transitioning() {
		t.Fatalf("load completion overrode a manual camera move")
	}
	wantPose(t, d, mgl32.Vec3{30, 60, 90}, mgl32.Vec3{5, 0, 5})
}

func TestManualTargetClamp(t *testing.T) {
	_, q, d := newDirectorFixture(t)
	d.SetManualPose(mgl32.Vec3{0, 100, 0}, mgl32.Vec3{1000, -50, 0})
	p := d.Pose()
	if p.Target.Y() != 0 {
		t.Fatalf("target dipped below ground: %v", p.Target)
	}
	if p.Target.X() > 400.001 {
		t.Fatalf("target escaped the horizontal boundary: %v", p.Target)
	}

	// Clamp also runs on the control-changed signal path.
	d.target = mgl32.Vec3{0, -20, 900}
	q.Publish(SignalManualControlChanged)
	d.Step(16 * time.Millisecond)
	p = d.Pose()
	if p.Target.Y() != 0 || p.Target.Z() > 400.001 {
		t.Fatalf("signal clamp failed: %v", p.Target)
	}
}
