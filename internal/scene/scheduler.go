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
	"sort"
	"time"
)

// Scheduler is a cooperative virtual-time scheduler. The frame loop advances
// it by the elapsed frame time; delayed tasks fire during Advance, in due
// order, on the advancing goroutine. There is no background goroutine and no
// wall-clock dependency, which keeps timing fully deterministic under test.
type Scheduler struct {
	now   time.Duration
	tasks []*Task
	seq   int
}

// Task is a cancellable delayed callback.
type Task struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
	done      bool
}

// Cancel invalidates the task; a cancelled task never fires.
func (t *Task) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Pending reports whether the task is still waiting to fire.
func (t *Task) Pending() bool { return t != nil && !t.cancelled && !t.done }

// NewScheduler creates a scheduler with virtual time at zero.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration { return s.now }

// After schedules fn to run once d has elapsed on the virtual clock.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	t := &Task{due: s.now + d, seq: s.seq, fn: fn}
	s.seq++
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves virtual time forward and fires all due tasks in (due, seq)
// order. Tasks scheduled by firing tasks run in the same Advance when their
// delay fits inside dt.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.due
		next.done = true
		if !next.cancelled {
			next.fn()
		}
	}
	s.now = target
	s.compact()
}

func (s *Scheduler) nextDue(limit time.Duration) *Task {
	var best *Task
	for _, t := range s.tasks {
		if t.done || t.cancelled || t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.done && !t.cancelled {
			live = append(live, t)
		}
	}
	s.tasks = live
	sort.Slice(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
}
