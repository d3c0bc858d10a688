/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package scene is the viewer's presentation core: it projects the yard data
// into instanced draw buffers, animates them against the selection state, and
// drives the camera. The package has no rendering dependency; the frame loop
// calls Step and hands the resulting buffers and pose to whatever draws them.
package scene

import (
	"log/slog"
	"time"

	"yardview/internal/domain"
	applog "yardview/internal/log"
	"yardview/internal/store"
)

// Engine bundles the scene core behind a single frame-loop entry point.
type Engine struct {
	store    *store.Store
	sched    *Scheduler
	signals  *SignalQueue
	proj     *Projection
	director *Director
	animator *Animator
	log      *slog.Logger
}

// NewEngine assembles a scene core around a fresh, empty store.
func NewEngine(tun Tunables) *Engine {
	st := store.New()
	sched := NewScheduler()
	signals := NewSignalQueue()
	proj := Project(nil, nil)
	e := &Engine{
		store:    st,
		sched:    sched,
		signals:  signals,
		proj:     proj,
		director: NewDirector(st, sched, signals, tun),
		log:      applog.WithComponent("scene"),
	}
	e.animator = NewAnimator(st, proj)
	return e
}

// State exposes the shared store for selection and panel mutations.
func (e *Engine) State() *store.Store { return e.store }

// Close detaches the engine from its store subscriptions.
func (e *Engine) Close() { e.director.Close() }

// Signals exposes the boundary signal queue for the UI shell.
func (e *Engine) Signals() *SignalQueue { return e.signals }

// Director exposes the camera director for manual-control hooks.
func (e *Engine) Director() *Director { return e.director }

// Buffers returns the live instance buffers. Valid until the next Reload.
func (e *Engine) Buffers() *InstanceBuffers { return e.proj.Buffers }

// CameraPose returns the camera pose for the current frame.
func (e *Engine) CameraPose() Pose { return e.director.Pose() }

// Outline returns the highlight outline for the current frame, if any.
func (e *Engine) Outline() *Outline { return e.animator.OutlineFor(e.store.Snapshot()) }

// Reload replaces the yard data and rebuilds the static projection. Stale
// selection ids survive in the store and simply stop resolving.
func (e *Engine) Reload(t domain.Terminal, entities map[string]domain.Entity) {
	e.store.ReplaceData(t, entities)
	e.proj = Project(entities, blockIndex(t))
	e.animator.Reset(e.proj)
	e.log.Info("scene reloaded",
		slog.Int("entities", len(entities)),
		slog.Int("blocks", len(t.Blocks)),
	)
}

// Step advances one frame: the director first (signals, timers, camera
// transition), then the animator, so instance easing always sees the frame's
// final selection state before the buffers are rewritten.
func (e *Engine) Step(dt time.Duration) {
	e.director.Step(dt)
	e.animator.Step(dt)
}

func blockIndex(t domain.Terminal) map[string]domain.Block {
	m := make(map[string]domain.Block, len(t.Blocks))
	for _, b := range t.Blocks {
		m[b.ID] = b
	}
	return m
}
