/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package store

import (
	"testing"

	"yardview/internal/domain"
)

func testTerminal() (domain.Terminal, map[string]domain.Entity) {
	t := domain.Terminal{
		ID: "T1",
		Blocks: []domain.Block{
			{ID: "B1", Lots: 2, Rows: 1, ContainerType: domain.Container40ft},
			{ID: "B2", Lots: 4, Rows: 2, ContainerType: domain.Container20ft},
		},
	}
	ents := map[string]domain.Entity{
		"C1": {ID: "C1", BlockID: "B1", Position: domain.Position{X: 10}},
		"C2": {ID: "C2", BlockID: "B2", Position: domain.Position{X: 50}},
	}
	return t, ents
}

// checkInvariants asserts the exclusion rules that must hold after every
// mutation: a panel excludes selection and vice versa, and hover never
// coexists with a selection or a drag.
func checkInvariants(t *testing.T, s State) {
	t.Helper()
	if s.ActivePanel != "" && (s.SelectedContainerID != "" || s.SelectedBlockID != "") {
		t.Fatalf("panel %q open while selection set: %+v", s.ActivePanel, s)
	}
	if s.HoveredID != "" && (s.SelectedContainerID != "" || s.SelectedBlockID != "" || s.Dragging) {
		t.Fatalf("hover coexists with selection/drag: %+v", s)
	}
}

func TestInvariantsHoldUnderMutationSequences(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)

	seq := []func(){
		func() { s.SetHover("C1") },
		func() { s.SetSelectedContainer("C1") },
		func() { s.OpenPanel(domain.PanelGateIn) },
		func() { s.SetSelectedBlock("B1") },
		func() { s.SetHover("C2") },
		func() { s.OpenPanel(domain.PanelStuffing) },
		func() { s.SetSelectedContainer("C2") },
		func() { s.SetDragging(true) },
		func() { s.SetHover("C1") },
		func() { s.SetDragging(false) },
		func() { s.SetSelectedContainer("") },
		func() { s.SetSelectedBlock("") },
		func() { s.SetHover("C1") },
	}
	for i, step := range seq {
		step()
		st := s.Snapshot()
		checkInvariants(t, st)
		_ = i
	}
}

func TestOpenPanelClearsSelection(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)

	s.SetSelectedBlock("B1")
	s.SetSelectedContainer("C1")
	s.OpenPanel(domain.PanelGateOut)
	st := s.Snapshot()
	if st.SelectedContainerID != "" || st.SelectedBlockID != "" {
		t.Fatalf("panel open must clear selection: %+v", st)
	}
	if st.ActivePanel != domain.PanelGateOut {
		t.Fatalf("panel not set: %+v", st)
	}
}

func TestSelectionClosesPanel(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)

	s.OpenPanel(domain.PanelCFSTask)
	s.SetSelectedContainer("C1")
	st := s.Snapshot()
	if st.ActivePanel != "" {
		t.Fatalf("selection must close panel: %+v", st)
	}
	s.OpenPanel(domain.PanelCFSTask)
	s.SetSelectedBlock("B2")
	if st := s.Snapshot(); st.ActivePanel != "" {
		t.Fatalf("block selection must close panel: %+v", st)
	}
}

func TestBlockSelectionDropsForeignContainer(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)

	s.SetSelectedContainer("C1") // belongs to B1
	s.SetSelectedBlock("B2")
	if st := s.Snapshot(); st.SelectedContainerID != "" {
		t.Fatalf("container of another block must be dropped: %+v", st)
	}

	s.SetSelectedContainer("C2") // belongs to B2, block still B2
	if st := s.Snapshot(); st.SelectedContainerID != "C2" {
		t.Fatalf("same-block container must survive: %+v", st)
	}
}

func TestReservedModeKeepsSelection(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)

	s.SetSelectedContainer("C1")
	s.SetReserved([]string{"C2"})
	st := s.Snapshot()
	if !st.ReservedActive() {
		t.Fatalf("reserved mode not active")
	}
	if st.SelectedContainerID != "C1" {
		t.Fatalf("reserved mode must not clear selection: %+v", st)
	}
	s.SetReserved(nil)
	if st := s.Snapshot(); st.ReservedActive() {
		t.Fatalf("reserved mode should clear")
	}
}

func TestHoverSuppressedWhileDraggingOrSelected(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)

	s.SetDragging(true)
	s.SetHover("C1")
	if st := s.Snapshot(); st.HoveredID != "" {
		t.Fatalf("hover must be suppressed while dragging")
	}
	s.SetDragging(false)
	s.SetSelectedContainer("C1")
	s.SetHover("C2")
	if st := s.Snapshot(); st.HoveredID != "" {
		t.Fatalf("hover must be suppressed while selected")
	}
	s.SetSelectedContainer("")
	s.SetHover("C2")
	if st := s.Snapshot(); st.HoveredID != "C2" {
		t.Fatalf("hover should work with no selection: %+v", st)
	}
}

func TestObserversSeePostInvariantState(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)

	var seen []State
	unsub := s.Subscribe(func(Change) { seen = append(seen, s.Snapshot()) })
	defer unsub()

	s.SetSelectedContainer("C1")
	s.OpenPanel(domain.PanelPlugIn)
	for _, st := range seen {
		checkInvariants(t, st)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := New()
	n := 0
	unsub := s.Subscribe(func(Change) { n++ })
	s.SetLoading(true)
	unsub()
	s.SetLoading(false)
	if n != 1 {
		t.Fatalf("expected exactly one notification, got %d", n)
	}
}

func TestReplaceDataLeavesStaleSelection(t *testing.T) {
	s := New()
	term, ents := testTerminal()
	s.ReplaceData(term, ents)
	s.SetSelectedContainer("C1")

	// Reload drops C1 from the table; the id stays but resolves to nothing.
	s.ReplaceData(term, map[string]domain.Entity{"C9": {ID: "C9"}})
	st := s.Snapshot()
	if st.SelectedContainerID != "C1" {
		t.Fatalf("stale id should remain in store: %+v", st)
	}
	if _, ok := s.Entity("C1"); ok {
		t.Fatalf("C1 should be gone from the table")
	}
}
