/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"strings"
	"testing"

	"yardview/internal/store"
)

func TestRecoverWritesReportAndExits(t *testing.T) {
	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = os.Exit }()

	st := store.New()
	st.SetSelectedContainer("MSKU1")

	func() {
		defer Recover(st)
		panic("kaboom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}

	entries, err := os.ReadDir(ReportDir())
	if err != nil {
		t.Fatalf("read report dir: %v", err)
	}
	var found string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log") {
			found = e.Name()
		}
	}
	if found == "" {
		t.Fatalf("no crash report written to %s", ReportDir())
	}

	b, err := os.ReadFile(ReportDir() + "/" + found)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	body := string(b)
	if !strings.Contains(body, "kaboom") {
		t.Fatalf("report missing panic value")
	}
	if !strings.Contains(body, "MSKU1") {
		t.Fatalf("report missing state dump")
	}
	if !strings.Contains(body, "Stack:") {
		t.Fatalf("report missing stacktrace")
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	called := false
	exitFn = func(int) { called = true }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover(nil)
	}()

	if called {
		t.Fatalf("Recover exited without a panic")
	}
}

func TestDumpStateIsJSON(t *testing.T) {
	st := store.New()
	st.SetSelectedBlock("B1")
	b := dumpState(st)
	if !strings.Contains(string(b), `"selected_block": "B1"`) {
		t.Fatalf("dump missing selection: %s", b)
	}
}
