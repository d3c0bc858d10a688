/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEaseInOutCubicEndpoints(t *testing.T) {
	if EaseInOutCubic(0) != 0 || EaseInOutCubic(1) != 1 {
		t.Fatalf("easing must be identity at endpoints")
	}
	if v := EaseInOutCubic(0.5); v < 0.49 || v > 0.51 {
		t.Fatalf("midpoint should be ~0.5, got %v", v)
	}
	// Clamped outside [0,1]
	if EaseInOutCubic(-1) != 0 || EaseInOutCubic(2) != 1 {
		t.Fatalf("easing must clamp out-of-range progress")
	}
	// ease-in-out: slow start
	if v := EaseInOutCubic(0.1); v >= 0.1 {
		t.Fatalf("expected slow start, got %v", v)
	}
}

func TestApproachConverges(t *testing.T) {
	v := float32(0)
	for i := 0; i < 600; i++ {
		v = Approach(v, 16, 8, 1.0/60)
	}
	if v < 15.99 || v > 16.01 {
		t.Fatalf("approach did not converge: %v", v)
	}
}

func TestApproachFrameRateIndependent(t *testing.T) {
	// Same wall-clock time at different tick rates lands close together.
	a := float32(0)
	for i := 0; i < 60; i++ {
		a = Approach(a, 10, 5, 1.0/60)
	}
	b := float32(0)
	for i := 0; i < 240; i++ {
		b = Approach(b, 10, 5, 1.0/240)
	}
	if d := a - b; d > 0.05 || d < -0.05 {
		t.Fatalf("frame-rate dependence: 60fps=%v 240fps=%v", a, b)
	}
}

func TestClampTarget(t *testing.T) {
	v := ClampTarget(mgl32.Vec3{0, -5, 0}, 0, 100)
	if v.Y() != 0 {
		t.Fatalf("ground clamp failed: %v", v)
	}
	v = ClampTarget(mgl32.Vec3{300, 10, 400}, 0, 100)
	r := v.X()*v.X() + v.Z()*v.Z()
	if r > 100*100+0.5 {
		t.Fatalf("radius clamp failed: %v", v)
	}
	if v.Y() != 10 {
		t.Fatalf("clamp must not disturb valid Y: %v", v)
	}
	// Inside bounds: untouched.
	in := mgl32.Vec3{10, 5, -20}
	if got := ClampTarget(in, 0, 100); got != in {
		t.Fatalf("in-bounds target modified: %v", got)
	}
}

func TestLerpAndAlmostEqual(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{10, 20, 30}
	m := Lerp(a, b, 0.5)
	if !AlmostEqual(m, mgl32.Vec3{5, 10, 15}, 1e-5) {
		t.Fatalf("lerp midpoint: %v", m)
	}
	if AlmostEqual(a, b, 1) {
		t.Fatalf("distinct vectors reported equal")
	}
}
