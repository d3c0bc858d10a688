/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package store holds the viewer's single source of truth: current selection,
// the open task panel, the entity table, and the layout tree. Setters apply
// the exclusion invariants synchronously before notifying observers, so no
// observer ever sees an inconsistent combination.
package store

import (
	"sync"

	"yardview/internal/domain"
)

// Change describes which part of the state a notification refers to.
type Change int

const (
	ChangeSelection Change = iota
	ChangeHover
	ChangePanel
	ChangeFocus
	ChangeReserved
	ChangeLoading
	ChangeData
)

// Observer receives synchronous notifications after each mutation.
type Observer func(Change)

// State is a consistent copy of the selection-relevant fields, taken under
// the store lock. Reserved is a reference to an immutable set: the store
// replaces the whole map on every SetReserved, never mutates it in place.
type State struct {
	SelectedContainerID string
	SelectedBlockID     string
	HoveredID           string
	Focus               *domain.FocusPoint
	Reserved            map[string]struct{}
	ActivePanel         domain.PanelKind
	Loading             bool
	Dragging            bool
}

// ReservedActive reports whether reserved display mode is on.
func (s State) ReservedActive() bool { return len(s.Reserved) > 0 }

// Store is the process-wide state container. Safe for concurrent use; all
// notifications are delivered synchronously on the mutating goroutine.
type Store struct {
	mu sync.Mutex

	entities map[string]domain.Entity
	blocks   map[string]domain.Block
	terminal domain.Terminal

	state State

	subs   map[int]Observer
	nextID int
}

// New creates an empty store; entities and blocks arrive via ReplaceData.
func New() *Store {
	return &Store{
		entities: map[string]domain.Entity{},
		blocks:   map[string]domain.Block{},
		subs:     map[int]Observer{},
	}
}

// Subscribe registers an observer and returns an unsubscribe function.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	obs := make([]Observer, 0, len(s.subs))
	for _, fn := range s.subs {
		obs = append(obs, fn)
	}
	s.mu.Unlock()
	for _, fn := range obs {
		fn(c)
	}
}

// Snapshot returns a consistent copy of the selection state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReplaceData swaps the entity table and layout tree wholesale.
// Stale selection ids are left as-is: every reader treats an id missing from
// the table as "nothing selected".
func (s *Store) ReplaceData(t domain.Terminal, entities map[string]domain.Entity) {
	s.mu.Lock()
	s.terminal = t
	s.entities = entities
	if s.entities == nil {
		s.entities = map[string]domain.Entity{}
	}
	s.blocks = make(map[string]domain.Block, len(t.Blocks))
	for _, b := range t.Blocks {
		s.blocks[b.ID] = b
	}
	s.mu.Unlock()
	s.notify(ChangeData)
}

// Entity looks up a container by id.
func (s *Store) Entity(id string) (domain.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	return e, ok
}

// Block looks up a block by id.
func (s *Store) Block(id string) (domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	return b, ok
}

// Entities returns the live entity table. Callers must treat it as read-only;
// the table is replaced, not mutated, on reload.
func (s *Store) Entities() map[string]domain.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities
}

// Terminal returns the current layout tree.
func (s *Store) Terminal() domain.Terminal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

// SetSelectedContainer selects a container (empty id deselects). A non-empty
// selection closes any open panel and clears hover.
func (s *Store) SetSelectedContainer(id string) {
	s.mu.Lock()
	s.state.SelectedContainerID = id
	if id != "" {
		s.state.ActivePanel = ""
		s.state.HoveredID = ""
	}
	s.mu.Unlock()
	s.notify(ChangeSelection)
}

// SetSelectedBlock selects a block (empty id deselects). A non-empty
// selection closes any open panel, clears hover, and drops any container
// selection belonging to a different block.
func (s *Store) SetSelectedBlock(id string) {
	s.mu.Lock()
	s.state.SelectedBlockID = id
	if id != "" {
		s.state.ActivePanel = ""
		s.state.HoveredID = ""
		if cid := s.state.SelectedContainerID; cid != "" {
			if e, ok := s.entities[cid]; !ok || e.BlockID != id {
				s.state.SelectedContainerID = ""
			}
		}
	}
	s.mu.Unlock()
	s.notify(ChangeSelection)
}

// SetHover updates the hovered instance. Hover is suppressed entirely while
// the camera is being dragged or while any selection is active.
func (s *Store) SetHover(id string) {
	s.mu.Lock()
	if s.state.Dragging || s.state.SelectedContainerID != "" || s.state.SelectedBlockID != "" {
		id = ""
	}
	changed := s.state.HoveredID != id
	s.state.HoveredID = id
	s.mu.Unlock()
	if changed {
		s.notify(ChangeHover)
	}
}

// SetDragging marks manual camera interaction; entering a drag clears hover.
func (s *Store) SetDragging(d bool) {
	s.mu.Lock()
	s.state.Dragging = d
	if d {
		s.state.HoveredID = ""
	}
	s.mu.Unlock()
	s.notify(ChangeHover)
}

// SetFocusPosition installs an explicit external focus request (nil clears).
func (s *Store) SetFocusPosition(fp *domain.FocusPoint) {
	s.mu.Lock()
	s.state.Focus = fp
	s.mu.Unlock()
	s.notify(ChangeFocus)
}

// SetReserved replaces the reserved container set. A non-empty set switches
// the display into reserved mode; it does not clear the stored selection.
func (s *Store) SetReserved(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.mu.Lock()
	if len(set) == 0 {
		s.state.Reserved = nil
	} else {
		s.state.Reserved = set
	}
	s.mu.Unlock()
	s.notify(ChangeReserved)
}

// OpenPanel opens a task panel; panels and selection are mutually exclusive,
// so any selection is cleared first.
func (s *Store) OpenPanel(kind domain.PanelKind) {
	s.mu.Lock()
	s.state.ActivePanel = kind
	s.state.SelectedContainerID = ""
	s.state.SelectedBlockID = ""
	s.state.HoveredID = ""
	s.mu.Unlock()
	s.notify(ChangePanel)
}

// ClosePanel closes the active panel, if any.
func (s *Store) ClosePanel() {
	s.mu.Lock()
	s.state.ActivePanel = ""
	s.mu.Unlock()
	s.notify(ChangePanel)
}

// SetLoading flags the layout/inventory load window.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.state.Loading = v
	s.mu.Unlock()
	s.notify(ChangeLoading)
}
