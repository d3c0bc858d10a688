/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package geom provides the 3D math helpers shared by the scene core:
// conversions between domain positions and mgl32 vectors, interpolation,
// easing, and the manual-control boundary clamp.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"yardview/internal/domain"
)

// V converts a domain position to a vector.
func V(p domain.Position) mgl32.Vec3 { return mgl32.Vec3{p.X, p.Y, p.Z} }

// P converts a vector back to a domain position.
func P(v mgl32.Vec3) domain.Position { return domain.Position{X: v.X(), Y: v.Y(), Z: v.Z()} }

// Lerp interpolates component-wise between a and b by t in [0,1].
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// EaseInOutCubic maps linear progress t in [0,1] to cubic eased progress.
func EaseInOutCubic(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Approach moves cur toward target with exponential smoothing at the given
// rate (1/s), scaled by the elapsed frame time so convergence speed does not
// depend on frame rate.
func Approach(cur, target, rate, dt float32) float32 {
	if dt <= 0 {
		return cur
	}
	k := 1 - float32(math.Exp(float64(-rate*dt)))
	return cur + (target-cur)*k
}

// ClampTarget constrains a manual-control orbit/pan target: the vertical
// coordinate never goes below ground, and the horizontal distance from the
// origin never exceeds maxRadius.
func ClampTarget(v mgl32.Vec3, ground, maxRadius float32) mgl32.Vec3 {
	y := v.Y()
	if y < ground {
		y = ground
	}
	x, z := v.X(), v.Z()
	if maxRadius > 0 {
		r := float32(math.Hypot(float64(x), float64(z)))
		if r > maxRadius {
			s := maxRadius / r
			x *= s
			z *= s
		}
	}
	return mgl32.Vec3{x, y, z}
}

// AlmostEqual reports whether two vectors are within eps on every axis.
func AlmostEqual(a, b mgl32.Vec3, eps float32) bool {
	return abs(a.X()-b.X()) <= eps && abs(a.Y()-b.Y()) <= eps && abs(a.Z()-b.Z()) <= eps
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
