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

import "sync"

// Signal is a fire-and-forget external request consumed once per tick.
type Signal int

const (
	// SignalTopView requests the top-down overview pose. Ignored while the
	// loading snap pose is active.
	SignalTopView Signal = iota
	// SignalResetView requests the initial overview pose. Ignored while a
	// block is selected; block framing takes precedence.
	SignalResetView
	// SignalManualControlChanged fires on every manual orbit/pan change and
	// triggers the boundary clamp.
	SignalManualControlChanged
	// SignalManualInteractionEnded fires when a drag/zoom gesture ends and
	// triggers spring-back evaluation.
	SignalManualInteractionEnded
)

// SignalQueue is a FIFO of boundary signals. Publishing never blocks; the
// director drains the queue at the start of each tick.
type SignalQueue struct {
	mu    sync.Mutex
	items []Signal
}

// NewSignalQueue creates an empty queue.
func NewSignalQueue() *SignalQueue { return &SignalQueue{} }

// Publish appends a signal.
func (q *SignalQueue) Publish(s Signal) {
	q.mu.Lock()
	q.items = append(q.items, s)
	q.mu.Unlock()
}

// Drain removes and returns all queued signals in arrival order.
func (q *SignalQueue) Drain() []Signal {
	q.mu.Lock()
	out := q.items
	q.items = nil
	q.mu.Unlock()
	return out
}
